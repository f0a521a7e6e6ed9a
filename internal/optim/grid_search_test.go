package optim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/smoothdyn/internal/curve"
	"github.com/san-kum/smoothdyn/internal/dynamo"
	"github.com/san-kum/smoothdyn/internal/metrics"
	"github.com/san-kum/smoothdyn/internal/signal"
	"github.com/san-kum/smoothdyn/internal/sim"
)

func TestLinspace(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, Linspace(0, 1, 3))
	assert.Equal(t, []float64{2}, Linspace(2, 5, 1))
}

func TestNewGridSearchValidation(t *testing.T) {
	_, err := NewGridSearch([]string{"f"}, nil)
	assert.Error(t, err)

	_, err = NewGridSearch([]string{"q"}, [][]float64{{1}})
	assert.Error(t, err)

	_, err = NewGridSearch([]string{"z"}, [][]float64{{}})
	assert.Error(t, err)
}

func TestGridSearchFindsFastestWithoutOvershoot(t *testing.T) {
	g, err := NewGridSearch([]string{"f", "z"}, [][]float64{{0.5, 1, 2}, Linspace(0.2, 1.2, 6)})
	require.NoError(t, err)
	g.Limit("overshoot", 0.01)

	best, err := g.Search(context.Background(),
		curve.Raw{F: 1, Z: 1}, dynamo.State{}, signal.Constant(1),
		sim.Config{Dt: 1.0 / 120, Duration: 4},
		metrics.Default, "settling_time")
	require.NoError(t, err)

	assert.Equal(t, 2.0, best.Params.F, "highest frequency settles first")
	assert.GreaterOrEqual(t, best.Params.Z, 0.8, "low damping overshoots")
	assert.LessOrEqual(t, best.Metrics["overshoot"], 0.01)
}

func TestGridSearchSkipsInvalid(t *testing.T) {
	g, err := NewGridSearch([]string{"f"}, [][]float64{{0, -1}})
	require.NoError(t, err)

	_, err = g.Search(context.Background(), curve.Raw{Z: 1}, dynamo.State{}, signal.Constant(1),
		sim.Config{Dt: 0.01, Duration: 1}, metrics.Default, "overshoot")
	assert.ErrorContains(t, err, "no valid candidates")
}

func TestGridSearchUnknownObjective(t *testing.T) {
	g, err := NewGridSearch([]string{"z"}, [][]float64{{1}})
	require.NoError(t, err)

	_, err = g.Search(context.Background(), curve.Raw{F: 1}, dynamo.State{}, signal.Constant(1),
		sim.Config{Dt: 0.01, Duration: 1}, metrics.Default, "nope")
	assert.Error(t, err)
}
