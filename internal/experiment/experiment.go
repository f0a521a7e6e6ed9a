package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/smoothdyn/internal/config"
	"github.com/san-kum/smoothdyn/internal/curve"
	"github.com/san-kum/smoothdyn/internal/dynamo"
	"github.com/san-kum/smoothdyn/internal/sim"
	"github.com/san-kum/smoothdyn/internal/tracker"
)

// Experiment binds a run config to a tracker, a target signal and a
// simulator carrying the registry's default metrics.
type Experiment struct {
	cfg       *config.Config
	params    curve.Params
	target    dynamo.TargetFunc
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

func (e *Experiment) Setup(reg *Registry) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}

	style, err := reg.GetStyle(e.cfg.Style.Name, e.cfg.Style.F, e.cfg.Style.Z, e.cfg.Style.R)
	if err != nil {
		return err
	}
	p, err := curve.New(style)
	if err != nil {
		return err
	}
	target, err := e.cfg.Signal()
	if err != nil {
		return err
	}

	if p.R != 0 && !sim.SlopeResolved(target, e.cfg.SimConfig()) {
		slog.Warn("r has little effect on this target", "style", p.Style, "r", p.R, "target", e.cfg.Target.Kind)
	}

	e.params = p
	e.target = target
	e.simulator = sim.New(tracker.New(p, e.cfg.InitState()))
	for _, m := range reg.DefaultMetrics() {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.target, e.cfg.SimConfig())
}

// Spec describes the experiment for sim.Sweep.
func (e *Experiment) Spec(name string, reg *Registry) sim.Spec {
	return sim.Spec{
		Name:    name,
		Params:  e.params,
		Initial: e.cfg.InitState(),
		Target:  e.target,
		Metrics: reg.DefaultMetrics,
	}
}

func (e *Experiment) Params() curve.Params      { return e.params }
func (e *Experiment) Config() *config.Config    { return e.cfg }
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }
