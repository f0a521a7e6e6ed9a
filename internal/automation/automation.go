package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/smoothdyn/internal/config"
	"github.com/san-kum/smoothdyn/internal/curve"
	"github.com/san-kum/smoothdyn/internal/dynamo"
	"github.com/san-kum/smoothdyn/internal/experiment"
	"github.com/san-kum/smoothdyn/internal/sim"
	"github.com/san-kum/smoothdyn/internal/tracker"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the defaults) and overlays Config.
type ScenarioStep struct {
	Preset string        `yaml:"preset"`
	Config config.Config `yaml:",inline"`
	SaveAs string        `yaml:"save_as"`
}

// LoadScenario reads a scenario file. Fields a step leaves out keep the
// values of its preset.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Name        string      `yaml:"name"`
		Description string      `yaml:"description"`
		Steps       []yaml.Node `yaml:"steps"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	sc := &Scenario{Name: raw.Name, Description: raw.Description}
	for i, node := range raw.Steps {
		var head struct {
			Preset string `yaml:"preset"`
		}
		if err := node.Decode(&head); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}

		step := ScenarioStep{Preset: head.Preset, Config: *config.DefaultConfig()}
		if head.Preset != "" {
			p := config.GetPreset(head.Preset)
			if p == nil {
				return nil, fmt.Errorf("step %d: unknown preset: %s", i+1, head.Preset)
			}
			step.Config = *p
		}
		if err := node.Decode(&step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		sc.Steps = append(sc.Steps, step)
	}
	return sc, nil
}

// RunScenario executes the steps in order. It stops at the first failing
// step and returns the results gathered so far.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry) ([]*sim.Result, error) {
	results := make([]*sim.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		slog.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "style", step.Config.Style.Name)

		cfg := step.Config
		exp := experiment.New(&cfg)
		if err := exp.Setup(registry); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		results = append(results, result)
	}

	return results, nil
}

// ParameterSweep varies one of f, z or r of a custom style across a range
// while holding the others and the target fixed.
type ParameterSweep struct {
	Base      config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue float64
	Params     curve.Params
	Metrics    map[string]float64
	FinalState dynamo.State
}

// RunSweep runs every sweep point concurrently through sim.Sweep.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}
	target, err := sweep.Base.Signal()
	if err != nil {
		return nil, err
	}

	base, err := sweep.Base.Params()
	if err != nil {
		return nil, err
	}

	if sweep.ParamName == "r" && !sim.SlopeResolved(target, sweep.Base.SimConfig()) {
		slog.Warn("sweeping r on a target whose slope the tracker cannot resolve; results will barely differ",
			"target", sweep.Base.Target.Kind)
	}

	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	specs := make([]sim.Spec, 0, sweep.NumSteps)
	values := make([]float64, 0, sweep.NumSteps)

	for i := 0; i < sweep.NumSteps; i++ {
		val := sweep.ParamMin + float64(i)*paramStep
		raw := base.Raw
		switch sweep.ParamName {
		case "f":
			raw.F = val
		case "z":
			raw.Z = val
		case "r":
			raw.R = val
		default:
			return nil, fmt.Errorf("unknown sweep parameter: %s (want f, z or r)", sweep.ParamName)
		}

		p, err := curve.New(curve.Custom{F: raw.F, Z: raw.Z, R: raw.R})
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, val, err)
		}
		specs = append(specs, sim.Spec{
			Name:    fmt.Sprintf("%s=%g", sweep.ParamName, val),
			Params:  p,
			Initial: sweep.Base.InitState(),
			Target:  target,
			Metrics: registry.DefaultMetrics,
		})
		values = append(values, val)
	}

	runs, err := sim.Sweep(ctx, specs, sweep.Base.SimConfig())
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(runs))
	for i, res := range runs {
		results[i] = SweepResult{
			ParamValue: values[i],
			Params:     specs[i].Params,
			Metrics:    res.Metrics,
			FinalState: res.States[len(res.States)-1],
		}
	}
	return results, nil
}

// MonteCarloConfig runs a tracker under frame-time jitter: every tick uses
// a step drawn uniformly from Dt·[1-Jitter, 1+Jitter].
type MonteCarloConfig struct {
	Base      config.Config
	Jitter    float64
	NumTrials int
	Seed      int64
	// Tolerance is how close the final position must be to the final
	// target for a trial to count as settled.
	Tolerance float64
}

type MonteCarloResult struct {
	TrialID    int
	MinDt      float64
	MaxDt      float64
	FinalState dynamo.State
	FinalError float64
	Stable     bool
}

// RunMonteCarlo executes NumTrials jittered runs.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.Jitter < 0 || cfg.Jitter >= 1 {
		return nil, fmt.Errorf("jitter must be in [0, 1), got %g", cfg.Jitter)
	}
	if err := cfg.Base.Validate(); err != nil {
		return nil, err
	}
	p, err := cfg.Base.Params()
	if err != nil {
		return nil, err
	}
	target, err := cfg.Base.Signal()
	if err != nil {
		return nil, err
	}

	if p.R != 0 && !sim.SlopeResolved(target, cfg.Base.SimConfig()) {
		slog.Warn("r has little effect on this target", "r", p.R, "target", cfg.Base.Target.Kind)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	for trial := 0; trial < cfg.NumTrials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		tr := tracker.New(p, cfg.Base.InitState())
		res := MonteCarloResult{TrialID: trial, MinDt: math.Inf(1), Stable: true}

		t := 0.0
		for t < cfg.Base.Duration {
			dt := cfg.Base.Dt * (1 + cfg.Jitter*(2*rng.Float64()-1))
			res.MinDt = math.Min(res.MinDt, dt)
			res.MaxDt = math.Max(res.MaxDt, dt)

			now := t
			s := tr.Update(dt, func(e float64) float64 { return target(now + e) })
			t += dt
			if !s.IsValid() || s.Position.Norm() > 1e6 {
				res.Stable = false
				break
			}
		}

		res.FinalState = tr.State()
		res.FinalError = math.Abs(target(t) - res.FinalState.Position.X)
		if cfg.Tolerance > 0 && res.FinalError > cfg.Tolerance {
			res.Stable = false
		}
		results = append(results, res)

		if (trial+1)%10 == 0 {
			slog.Debug("monte carlo progress", "done", trial+1, "of", cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
