package analysis

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/smoothdyn/internal/curve"
	"github.com/san-kum/smoothdyn/internal/dynamo"
	"github.com/san-kum/smoothdyn/internal/signal"
	"github.com/san-kum/smoothdyn/internal/sim"
	"github.com/san-kum/smoothdyn/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq, dt float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) * dt)
	}
	return out
}

func TestDominantFrequency(t *testing.T) {
	dt := 0.01
	data := sine(4, dt, 1000) // 10 s, 0.1 Hz bins
	assert.InDelta(t, 4.0, DominantFrequency(data, dt), 0.1)
}

func TestPowerSpectrumLength(t *testing.T) {
	ps := PowerSpectrum(sine(1, 0.01, 256))
	assert.Len(t, ps, 129)
	assert.InDelta(t, 0.0, ps[0], 1e-9, "mean is removed before the transform")
	assert.Nil(t, PowerSpectrum(nil))
}

func TestCrossingFrequency(t *testing.T) {
	dt := 0.001
	data := sine(2.5, dt, 4000)
	assert.InDelta(t, 2.5, CrossingFrequency(data, 0, dt), 1e-3)
	assert.Equal(t, 0.0, CrossingFrequency([]float64{1, 2, 3}, 0, dt))
}

func TestCrossingFrequencyMatchesDampedFrequency(t *testing.T) {
	style := curve.Custom{F: 1.5, Z: 0.25, R: 0}
	tr, err := tracker.FromStyle(style, dynamo.State{})
	require.NoError(t, err)

	dt := 0.001
	res, err := sim.New(tr).Run(context.Background(), signal.Constant(1), sim.Config{Dt: dt, Duration: 4})
	require.NoError(t, err)

	want := tr.Params().DampedFreq / (2 * math.Pi)
	got := CrossingFrequency(res.Positions(0), 1, dt)
	assert.InEpsilon(t, want, got, 0.01)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{1, 2, 3, 4})
	assert.InDelta(t, 2.5, s.Mean, 1e-12)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.InDelta(t, math.Sqrt(5.0/3), s.StdDev, 1e-12)

	assert.Equal(t, Summary{}, Summarize(nil))
	assert.Equal(t, Summary{Mean: 7, Min: 7, Max: 7}, Summarize([]float64{7}))
}

func TestPhasePortrait(t *testing.T) {
	res := &sim.Result{States: []dynamo.State{
		{Position: dynamo.Vec3{Y: 0}, Velocity: dynamo.Vec3{Y: 1}},
		{Position: dynamo.Vec3{Y: 1}, Velocity: dynamo.Vec3{Y: 0}},
		{Position: dynamo.Vec3{Y: 0}, Velocity: dynamo.Vec3{Y: -1}},
	}}

	p := PhasePortrait(res, 1)
	require.NotNil(t, p)
	assert.Equal(t, []Point{{0, 1}, {1, 0}, {0, -1}}, p.Points)
	assert.Nil(t, PhasePortrait(res, 3))

	art := PhasePortraitToASCII(p, 20, 10)
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	assert.Len(t, lines, 10)
	assert.Equal(t, 3, strings.Count(art, "•"))
}
