package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/smoothdyn/internal/dynamo"
	"github.com/san-kum/smoothdyn/internal/tracker"
)

// Simulator drives a single tracker toward a target on a fixed timestep.
type Simulator struct {
	tracker   *tracker.SecondOrder
	metrics   []Metric
	observers []Observer
}

func New(tr *tracker.SecondOrder) *Simulator {
	return &Simulator{
		tracker:   tr,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Simulator) Tracker() *tracker.SecondOrder {
	return s.tracker
}

// clock shifts an absolute-time target so the tracker, which samples its
// target at t = dt, sees the goal at the end of the current tick. The shift
// costs the slope: the tracker's one-ulp difference about dt becomes a
// difference about t+dt that floats cannot resolve once t grows, so the
// r term sees zero on most ticks. See SlopeResolved.
type clock struct {
	t      float64
	target dynamo.TargetFunc
}

func (c *clock) at(elapsed float64) float64 {
	return c.target(c.t + elapsed)
}

// Run steps the tracker for cfg.Duration and records every tick. Position
// and velocity follow the target for any signal, but on targets with a
// continuous slope (ramps, sines) r has almost no effect past the first
// tick; SlopeResolved reports when that applies.
func (s *Simulator) Run(ctx context.Context, target dynamo.TargetFunc, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		Times:   make([]float64, 0, steps+1),
		Targets: make([]float64, 0, steps+1),
		States:  make([]dynamo.State, 0, steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	c := &clock{target: target}
	sample := c.at
	dt := cfg.Dt

	x := s.tracker.State()
	result.Times = append(result.Times, 0)
	result.Targets = append(result.Targets, target(0))
	result.States = append(result.States, x)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		c.t = float64(i) * dt
		x = s.tracker.Update(dt, sample)
		t := float64(i+1) * dt
		goal := target(t)

		if cfg.ValidateState && !x.IsValid() {
			result.Errors = append(result.Errors, SimError{Time: t, Step: i, Wrapped: dynamo.ErrInvalidState})
			break
		}

		for _, m := range s.metrics {
			m.Observe(x, goal, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, goal, t)
		}

		result.StepsTaken++
		result.Times = append(result.Times, t)
		result.Targets = append(result.Targets, goal)
		result.States = append(result.States, x)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w, got %f", dynamo.ErrNonPositiveStep, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}

// RunWithCallback steps until Duration or until callback returns false. It
// records nothing; the callback sees every state including the initial one.
func (s *Simulator) RunWithCallback(ctx context.Context, target dynamo.TargetFunc, cfg Config, callback func(dynamo.State, float64, float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	c := &clock{target: target}
	sample := c.at
	x := s.tracker.State()
	steps := int(math.Round(cfg.Duration / cfg.Dt))

	for i := 0; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt
		if !callback(x, target(t), t) || i == steps {
			return nil
		}

		c.t = t
		x = s.tracker.Update(cfg.Dt, sample)

		if cfg.ValidateState && !x.IsValid() {
			return SimError{Time: t + cfg.Dt, Step: i, Wrapped: dynamo.ErrInvalidState}
		}
	}

	return nil
}
