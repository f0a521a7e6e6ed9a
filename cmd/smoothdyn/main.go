package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/smoothdyn/internal/config"
	"github.com/san-kum/smoothdyn/internal/curve"
	"github.com/san-kum/smoothdyn/internal/dynamo"
	"github.com/san-kum/smoothdyn/internal/experiment"
	"github.com/san-kum/smoothdyn/internal/sim"
	"github.com/san-kum/smoothdyn/internal/storage"
	"github.com/san-kum/smoothdyn/internal/tracker"
	"github.com/san-kum/smoothdyn/internal/viz"
)

var (
	dataDir  string
	logLevel string
	dt       float64
	duration float64
	// Style parameters
	freq float64
	zeta float64
	resp float64
	// Target signal
	targetKind string
	from       float64
	to         float64
	at         float64
	amplitude  float64
	frequency  float64
	slope      float64
	// Initial position on every axis
	initPos float64
	// Config file
	configFile string
	// Preset name
	preset string
	// Print a trace plot after run
	showPlot bool
	// Phase plot axis
	axis int
	// Live view follows the arrow keys instead of a signal
	steer bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "smoothdyn",
		Short: "second-order motion tracking lab",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".smoothdyn", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [style]",
		Short: "run a tracker against a target and store the trace",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "plot the trace after the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot position against target",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&axis, "axis", 0, "axis to plot (0..2)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and response analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "position against velocity plot",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&axis, "axis", 0, "axis to plot (0..2)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and trace to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run trace to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets",
		RunE:  listPresets,
	}

	stylesCmd := &cobra.Command{
		Use:   "styles",
		Short: "list curve styles and their coefficients",
		RunE:  listStyles,
	}
	stylesCmd.Flags().Float64Var(&freq, "f", config.DefaultF, "natural frequency (Hz) for mechanical/custom")
	stylesCmd.Flags().Float64Var(&zeta, "z", config.DefaultZ, "damping ratio for mechanical/custom")
	stylesCmd.Flags().Float64Var(&resp, "r", config.DefaultR, "initial response for custom")

	compareCmd := &cobra.Command{
		Use:   "compare [style] [style] ...",
		Short: "run several styles on the same target concurrently",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareStyles,
	}
	addRunFlags(compareCmd)

	liveCmd := &cobra.Command{
		Use:   "live [style]",
		Short: "track a target live in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().BoolVar(&steer, "steer", false, "steer the target with the arrow keys")

	benchCmd := &cobra.Command{
		Use:   "bench [style]",
		Short: "benchmark tracker updates",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchStyle,
	}

	rsqrtCmd := &cobra.Command{
		Use:   "rsqrt [x] ...",
		Short: "compare the fast inverse square root with 1/math.Sqrt",
		RunE:  rsqrtTable,
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive preset picker",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, analyzeCmd, phaseCmd, exportCmd, exportJSONCmd, exportCSVCmd,
		presetsCmd, stylesCmd, compareCmd, liveCmd, benchCmd, rsqrtCmd, tuiCmd)
	rootCmd.AddCommand(studyCommands()...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&freq, "f", config.DefaultF, "natural frequency (Hz) for mechanical/custom")
	cmd.Flags().Float64Var(&zeta, "z", config.DefaultZ, "damping ratio for mechanical/custom")
	cmd.Flags().Float64Var(&resp, "r", config.DefaultR, "initial response for custom")
	cmd.Flags().StringVar(&targetKind, "target", "step", "target signal kind")
	cmd.Flags().Float64Var(&from, "from", 0, "target start value or offset")
	cmd.Flags().Float64Var(&to, "to", 1, "target end value (step, constant)")
	cmd.Flags().Float64Var(&at, "at", 0, "target switch time (step, ramp)")
	cmd.Flags().Float64Var(&amplitude, "amp", 1, "target amplitude (sine, square)")
	cmd.Flags().Float64Var(&frequency, "freq", 0.5, "target frequency in Hz (sine, square)")
	cmd.Flags().Float64Var(&slope, "slope", 1, "target slope (ramp)")
	cmd.Flags().Float64Var(&initPos, "init", 0, "initial position on every axis")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// resolveConfig layers defaults, then the preset, then the config file,
// then any flag set explicitly on the command line.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("f") {
		cfg.Style.F = freq
	}
	if flags.Changed("z") {
		cfg.Style.Z = zeta
	}
	if flags.Changed("r") {
		cfg.Style.R = resp
	}
	if flags.Changed("target") {
		cfg.Target.Kind = targetKind
	}
	if flags.Changed("from") {
		cfg.Target.From = from
	}
	if flags.Changed("to") {
		cfg.Target.To = to
	}
	if flags.Changed("at") {
		cfg.Target.At = at
	}
	if flags.Changed("amp") {
		cfg.Target.Amplitude = amplitude
	}
	if flags.Changed("freq") {
		cfg.Target.Frequency = frequency
	}
	if flags.Changed("slope") {
		cfg.Target.Slope = slope
	}
	if flags.Changed("init") {
		cfg.Init.Position = [3]float64{initPos, initPos, initPos}
	}
	if len(args) > 0 {
		cfg.Style.Name = args[0]
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	slog.Debug("resolved config", "style", cfg.Style.Name, "target", cfg.Target.Kind, "dt", cfg.Dt, "duration", cfg.Duration)
	return cfg, nil
}

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(experiment.NewRegistry()); err != nil {
		return err
	}
	p := exp.Params()

	ctx, cancel := interruptContext()
	defer cancel()

	fmt.Printf("tracking %s with %s...\n", cfg.Target.Kind, p.Style)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	for _, e := range result.Errors {
		slog.Warn("run stopped early", "err", e)
	}

	runID, err := st.Save(p, cfg.Target.Kind, cfg.SimConfig(), result)
	if err != nil {
		return err
	}
	slog.Info("run saved", "id", runID, "dir", dataDir)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("coefficients: %s\n", p)
	printMetrics(result.Metrics)

	if showPlot {
		fmt.Println()
		fmt.Println(viz.PlotTrace(result, 0, 80, 12, viz.TraceCaption(p.Style, p.K1, p.K2, p.K3)))
	}
	return nil
}

func printMetrics(m map[string]float64) {
	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range sortedKeys(m) {
		fmt.Fprintf(w, "  %s\t%.6f\n", viz.MetricLabel.Render(name), m[name])
	}
	w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTYLE\tF\tZ\tR\tTARGET\tDT\tDURATION")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%g\t%g\t%g\t%s\t%.4fs\t%.1fs\n",
			name, cfg.Style.Name, cfg.Style.F, cfg.Style.Z, cfg.Style.R, cfg.Target.Kind, cfg.Dt, cfg.Duration)
	}
	return w.Flush()
}

func listStyles(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STYLE\tF\tZ\tR\tK1\tK2\tK3")
	for _, name := range curve.Names() {
		style, err := curve.Parse(name, freq, zeta, resp)
		if err != nil {
			return err
		}
		p, err := curve.New(style)
		if err != nil {
			slog.Debug("style unavailable", "style", name, "err", err)
			fmt.Fprintf(w, "%s\t-\t-\t-\t-\t-\t-\t(%v)\n", name, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%.5f\t%.6f\t%.5f\n", name, p.F, p.Z, p.R, p.K1, p.K2, p.K3)
	}
	return w.Flush()
}

func compareStyles(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()

	specs := make([]sim.Spec, 0, len(args))
	var simCfg sim.Config
	for _, name := range args {
		cfg, err := resolveConfig(cmd, []string{name})
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		exp := experiment.New(cfg)
		if err := exp.Setup(reg); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		specs = append(specs, exp.Spec(name, reg))
		simCfg = cfg.SimConfig()
	}

	ctx, cancel := interruptContext()
	defer cancel()

	start := time.Now()
	results, err := sim.Sweep(ctx, specs, simCfg)
	if err != nil {
		return err
	}
	slog.Info("sweep finished", "runs", len(results), "elapsed", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STYLE\tK1\tK2\tK3\tOVERSHOOT\tSETTLING\tSS ERROR\tREVERSALS\tFINAL")
	for i, res := range results {
		p := specs[i].Params
		final := res.States[len(res.States)-1].Position.X
		fmt.Fprintf(w, "%s\t%.4f\t%.5f\t%.4f\t%.4f\t%.3fs\t%.2e\t%.0f\t%.4f\n",
			specs[i].Name, p.K1, p.K2, p.K3,
			res.Metrics["overshoot"], res.Metrics["settling_time"], res.Metrics["steady_state_error"],
			res.Metrics["reversals"], final)
	}
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	p, err := cfg.Params()
	if err != nil {
		return err
	}

	var target dynamo.TargetFunc
	if !steer {
		if target, err = cfg.Signal(); err != nil {
			return err
		}
	}

	return viz.Run(viz.NewModel(p.Style, p, target, cfg.InitState(), cfg.Dt))
}

func benchStyle(cmd *cobra.Command, args []string) error {
	name := config.DefaultStyle
	if len(args) > 0 {
		name = args[0]
	}
	style, err := curve.Parse(name, config.DefaultF, config.DefaultZ, config.DefaultR)
	if err != nil {
		return err
	}
	p, err := curve.New(style)
	if err != nil {
		return err
	}

	target := func(float64) float64 { return 1 }
	durations := []float64{1.0, 10.0, 60.0}
	dts := []float64{0.001, 1.0 / 60, 0.1}

	fmt.Printf("benchmarking %s\n\n", p.Style)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC\tNS/UPDATE")

	for _, dur := range durations {
		for _, step := range dts {
			tr := tracker.New(p, dynamo.State{})
			steps := int(math.Round(dur / step))

			start := time.Now()
			for i := 0; i < steps; i++ {
				tr.Update(step, target)
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%.1fs\t%.4fs\t%d\t%v\t%.0f\t%.1f\n",
				dur, step, steps, elapsed,
				float64(steps)/elapsed.Seconds(), float64(elapsed.Nanoseconds())/float64(steps))
		}
	}
	return w.Flush()
}

func rsqrtTable(cmd *cobra.Command, args []string) error {
	xs := []float64{0.01, 0.25, 1, 2, 10, 12345.678, 1e100}
	if len(args) > 0 {
		xs = xs[:0]
		for _, a := range args {
			var x float64
			if _, err := fmt.Sscanf(a, "%g", &x); err != nil {
				return fmt.Errorf("invalid number %q: %w", a, err)
			}
			if !(x > 0) || math.IsInf(x, 0) {
				return fmt.Errorf("%g: input must be positive and finite", x)
			}
			xs = append(xs, x)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "X\tINVSQRT\t1/SQRT\tREL ERR")
	for _, x := range xs {
		fast := dynamo.InvSqrt(x)
		exact := 1 / math.Sqrt(x)
		fmt.Fprintf(w, "%g\t%.12g\t%.12g\t%.2e\n", x, fast, exact, math.Abs(fast-exact)/exact)
	}
	return w.Flush()
}
