package sim

import (
	"fmt"

	"github.com/san-kum/smoothdyn/internal/dynamo"
)

// Metric accumulates a scalar over the samples of one run.
type Metric interface {
	Name() string
	Observe(s dynamo.State, target float64, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(s dynamo.State, target float64, t float64)
}

type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 60,
		Duration:      5.0,
		ValidateState: true,
	}
}

// Result holds one sample per tick plus the initial state at t=0.
type Result struct {
	Times      []float64
	Targets    []float64
	States     []dynamo.State
	Metrics    map[string]float64
	StepsTaken int
	Errors     []error
}

// Positions returns the position component for axis 0..2 of every sample.
func (r *Result) Positions(axis int) []float64 {
	out := make([]float64, len(r.States))
	for i, s := range r.States {
		out[i] = s.Position.Component(axis)
	}
	return out
}

// Velocities returns the velocity component for axis 0..2 of every sample.
func (r *Result) Velocities(axis int) []float64 {
	out := make([]float64, len(r.States))
	for i, s := range r.States {
		out[i] = s.Velocity.Component(axis)
	}
	return out
}

type SimError struct {
	Time    float64
	Step    int
	Wrapped error
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e SimError) Unwrap() error {
	return e.Wrapped
}
