// Package metrics provides step-response measurements observed tick by tick
// on the X axis of a tracker.
package metrics

import (
	"math"

	"github.com/san-kum/smoothdyn/internal/dynamo"
	"github.com/san-kum/smoothdyn/internal/sim"
)

// Overshoot is the peak excursion past the final target, as a fraction of
// the distance travelled from the first observed position.
type Overshoot struct {
	start, peak, trough float64
	target              float64
	samples             int
}

func NewOvershoot() *Overshoot { return &Overshoot{} }

func (o *Overshoot) Name() string { return "overshoot" }

func (o *Overshoot) Observe(x dynamo.State, target float64, t float64) {
	p := x.Position.X
	if o.samples == 0 {
		o.start, o.peak, o.trough = p, p, p
	}
	o.samples++
	o.peak = math.Max(o.peak, p)
	o.trough = math.Min(o.trough, p)
	o.target = target
}

func (o *Overshoot) Value() float64 {
	height := o.target - o.start
	if o.samples == 0 || height == 0 {
		return 0
	}
	if height > 0 {
		return math.Max(0, (o.peak-o.target)/height)
	}
	return math.Max(0, (o.target-o.trough)/-height)
}

func (o *Overshoot) Reset() { *o = Overshoot{} }

// SettlingTime is the last time the position was outside a relative band
// around the target. Zero means it never left the band.
type SettlingTime struct {
	band    float64
	scale   float64
	last    float64
	samples int
}

// NewSettlingTime uses band as a fraction of the larger of |target| and 1.
func NewSettlingTime(band float64) *SettlingTime {
	return &SettlingTime{band: band}
}

func (s *SettlingTime) Name() string { return "settling_time" }

func (s *SettlingTime) Observe(x dynamo.State, target float64, t float64) {
	s.samples++
	tol := s.band * math.Max(math.Abs(target), 1)
	if math.Abs(x.Position.X-target) > tol {
		s.last = t
	}
}

func (s *SettlingTime) Value() float64 { return s.last }

func (s *SettlingTime) Reset() {
	s.last = 0
	s.samples = 0
}

// SteadyStateError is the mean absolute tracking error over the trailing
// window of samples.
type SteadyStateError struct {
	window []float64
	next   int
	filled bool
}

func NewSteadyStateError(window int) *SteadyStateError {
	if window < 1 {
		window = 1
	}
	return &SteadyStateError{window: make([]float64, window)}
}

func (e *SteadyStateError) Name() string { return "steady_state_error" }

func (e *SteadyStateError) Observe(x dynamo.State, target float64, t float64) {
	e.window[e.next] = math.Abs(x.Position.X - target)
	e.next++
	if e.next == len(e.window) {
		e.next = 0
		e.filled = true
	}
}

func (e *SteadyStateError) Value() float64 {
	n := e.next
	if e.filled {
		n = len(e.window)
	}
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range e.window[:n] {
		sum += v
	}
	return sum / float64(n)
}

func (e *SteadyStateError) Reset() {
	for i := range e.window {
		e.window[i] = 0
	}
	e.next = 0
	e.filled = false
}

// Monotonic counts ticks where the position moved away from the target
// while still short of it. A critically damped step response scores 0.
type Monotonic struct {
	prev     float64
	reversal int
	samples  int
}

func NewMonotonic() *Monotonic { return &Monotonic{} }

func (m *Monotonic) Name() string { return "reversals" }

func (m *Monotonic) Observe(x dynamo.State, target float64, t float64) {
	p := x.Position.X
	if m.samples > 0 {
		short := (target-m.prev)*(target-p) > 0
		away := math.Abs(target-p) > math.Abs(target-m.prev)+1e-12
		if short && away {
			m.reversal++
		}
	}
	m.prev = p
	m.samples++
}

func (m *Monotonic) Value() float64 { return float64(m.reversal) }

func (m *Monotonic) Reset() { *m = Monotonic{} }

// Default is the metric set attached to every run.
func Default() []sim.Metric {
	return []sim.Metric{
		NewOvershoot(),
		NewSettlingTime(0.02),
		NewSteadyStateError(60),
		NewMonotonic(),
		NewStability(1e6),
	}
}
