package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/smoothdyn/internal/analysis"
	"github.com/san-kum/smoothdyn/internal/automation"
	"github.com/san-kum/smoothdyn/internal/experiment"
	"github.com/san-kum/smoothdyn/internal/export"
	"github.com/san-kum/smoothdyn/internal/integrators"
	"github.com/san-kum/smoothdyn/internal/optim"
	"github.com/san-kum/smoothdyn/internal/sim"
	"github.com/san-kum/smoothdyn/internal/storage"
	"github.com/san-kum/smoothdyn/internal/tracker"
)

var (
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	// Monte Carlo
	jitter    float64
	trials    int
	seed      int64
	tolerance float64
	// Tuning
	objective    string
	maxOvershoot float64
	// SVG
	svgPhase bool
	svgOut   string
)

func studyCommands() []*cobra.Command {
	accuracyCmd := &cobra.Command{
		Use:   "accuracy [style]",
		Short: "compare the tracker and forward Euler with an RK45 reference",
		Args:  cobra.MaximumNArgs(1),
		RunE:  accuracyTable,
	}
	addRunFlags(accuracyCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [style]",
		Short: "sweep one of f, z or r and tabulate the response metrics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "z", "parameter to sweep (f, z, r)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.1, "sweep start")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 1.5, "sweep end")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 8, "number of sweep points")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [style]",
		Short: "run under random frame-time jitter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addRunFlags(monteCarloCmd)
	monteCarloCmd.Flags().Float64Var(&jitter, "jitter", 0.5, "relative dt jitter in [0, 1)")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 100, "number of trials")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	monteCarloCmd.Flags().Float64Var(&tolerance, "tol", 1e-2, "final error counted as settled")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search f and z for the best response",
		RunE:  runTune,
	}
	addRunFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&objective, "objective", "settling_time", "metric to minimize")
	tuneCmd.Flags().Float64Var(&maxOvershoot, "max-overshoot", 0.05, "reject candidates overshooting more than this")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	svgCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	svgCmd.Flags().BoolVar(&svgPhase, "phase", false, "export the phase portrait instead of the trace")
	svgCmd.Flags().StringVar(&svgOut, "out", "", "output file (default stdout)")
	svgCmd.Flags().IntVar(&axis, "axis", 0, "axis to export (0..2)")

	return []*cobra.Command{accuracyCmd, sweepCmd, monteCarloCmd, tuneCmd, scenarioCmd, svgCmd}
}

func accuracyTable(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	p, err := cfg.Params()
	if err != nil {
		return err
	}
	target, err := cfg.Signal()
	if err != nil {
		return err
	}
	sys := integrators.SecondOrderODE{Params: p, Target: target}
	ref := integrators.NewRK45(1e-10)
	if p.R != 0 && !sim.SlopeResolved(target, cfg.SimConfig()) {
		slog.Warn("the reference sees the target slope but the tracker does not; errors include the missing r term",
			"r", p.R, "target", cfg.Target.Kind)
	}

	fmt.Printf("accuracy of %s over %.1fs against RK45\n\n", p, cfg.Duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tTRACKER MAX ERR\tEULER MAX ERR")

	for _, dt := range []float64{0.1, 1.0 / 30, 1.0 / 60, 1.0 / 120, 1.0 / 1000} {
		tr := tracker.New(p, cfg.InitState())
		euler := integrators.NewEuler()
		es := cfg.InitState()
		rs := cfg.InitState()

		var trErr, eulerErr float64
		steps := int(math.Round(cfg.Duration / dt))
		for i := 0; i < steps; i++ {
			t := float64(i) * dt
			s := tr.Update(dt, func(e float64) float64 { return target(t + e) })
			es = euler.Step(sys, es, t, dt)
			rs, _ = ref.Integrate(sys, rs, t, t+dt, dt)

			trErr = math.Max(trErr, math.Abs(s.Position.X-rs.Position.X))
			eulerErr = math.Max(eulerErr, math.Abs(es.Position.X-rs.Position.X))
		}

		eulerCol := fmt.Sprintf("%.3e", eulerErr)
		if math.IsNaN(eulerErr) || math.IsInf(eulerErr, 0) || eulerErr > 1e6 {
			eulerCol = "diverged"
		}
		fmt.Fprintf(w, "%.4fs\t%.3e\t%s\n", dt, trErr, eulerCol)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      *cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	}, experiment.NewRegistry())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tK1\tK2\tK3\tOVERSHOOT\tSETTLING\tREVERSALS\n", sweepParam)
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.5f\t%.4f\t%.4f\t%.3fs\t%.0f\n",
			r.ParamValue, r.Params.K1, r.Params.K2, r.Params.K3,
			r.Metrics["overshoot"], r.Metrics["settling_time"], r.Metrics["reversals"])
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:      *cfg,
		Jitter:    jitter,
		NumTrials: trials,
		Seed:      seed,
		Tolerance: tolerance,
	})
	if err != nil {
		return err
	}

	errs := make([]float64, len(results))
	for i, r := range results {
		errs[i] = r.FinalError
		if !r.Stable {
			slog.Warn("trial did not settle", "trial", r.TrialID, "final_error", r.FinalError)
		}
	}
	stable, unstable := automation.MonteCarloStats(results)
	s := analysis.Summarize(errs)

	fmt.Printf("%d trials, dt %.4f ± %.0f%%\n", len(results), cfg.Dt, 100*jitter)
	fmt.Printf("settled: %d  unsettled: %d\n", stable, unstable)
	fmt.Printf("final error: mean %.3e  max %.3e\n", s.Mean, s.Max)
	return nil
}

func runTune(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	base, err := cfg.Params()
	if err != nil {
		return err
	}
	target, err := cfg.Signal()
	if err != nil {
		return err
	}

	g, err := optim.NewGridSearch([]string{"f", "z"}, [][]float64{
		optim.Linspace(0.5, 5, 10),
		optim.Linspace(0.2, 1.5, 14),
	})
	if err != nil {
		return err
	}
	g.Limit("overshoot", maxOvershoot)

	ctx, cancel := interruptContext()
	defer cancel()

	best, err := g.Search(ctx, base.Raw, cfg.InitState(), target, cfg.SimConfig(),
		experiment.NewRegistry().DefaultMetrics, objective)
	if err != nil {
		return err
	}

	fmt.Printf("best: %s\n", best.Params)
	printMetrics(best.Metrics)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}

	results, err := automation.RunScenario(ctx, sc, experiment.NewRegistry())
	for i, res := range results {
		step := sc.Steps[i]
		p, perr := step.Config.Params()
		if perr != nil {
			return perr
		}
		line := fmt.Sprintf("  %d. %s on %s: overshoot %.4f settling %.3fs",
			i+1, p.Style, step.Config.Target.Kind, res.Metrics["overshoot"], res.Metrics["settling_time"])
		if step.SaveAs != "" {
			runID, serr := st.Save(p, step.Config.Target.Kind, step.Config.SimConfig(), res)
			if serr != nil {
				return serr
			}
			line += fmt.Sprintf(" -> %s (%s)", step.SaveAs, runID)
		}
		fmt.Println(line)
	}
	return err
}

func exportSVG(cmd *cobra.Command, args []string) error {
	if err := checkAxis(); err != nil {
		return err
	}
	_, res, err := loadRun(args[0])
	if err != nil {
		return err
	}

	var svg string
	if svgPhase {
		svg = export.PhaseToSVG(analysis.PhasePortrait(res, axis), 600, 600, "#ff00ff")
	} else {
		svg = export.TraceToSVG(res, axis, 800, 300)
	}

	if svgOut == "" {
		_, err = fmt.Println(svg)
		return err
	}
	if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
		return err
	}
	slog.Info("svg written", "path", svgOut)
	return nil
}
