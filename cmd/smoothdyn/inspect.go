package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/smoothdyn/internal/analysis"
	"github.com/san-kum/smoothdyn/internal/sim"
	"github.com/san-kum/smoothdyn/internal/storage"
	"github.com/san-kum/smoothdyn/internal/viz"
)

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func loadRun(runID string) (*storage.RunMetadata, *sim.Result, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	res, err := st.LoadTrace(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(res.States) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, res, nil
}

func checkAxis() error {
	if axis < 0 || axis > 2 {
		return fmt.Errorf("axis must be 0, 1 or 2, got %d", axis)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTYLE\tTARGET\tTIME\tDURATION\tDT\tOVERSHOOT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.4fs\t%.4f\n",
			run.ID,
			run.Style,
			run.Target,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Metrics["overshoot"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	if err := checkAxis(); err != nil {
		return err
	}
	meta, res, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("style: %s\n", meta.Style)
	fmt.Printf("samples: %d\n\n", len(res.States))

	p := meta.Params
	fmt.Println(viz.PlotTrace(res, axis, 80, 12, viz.TraceCaption(p.Style, p.K1, p.K2, p.K3)))
	fmt.Println()
	fmt.Println(viz.PlotSeries(res.Velocities(axis), 80, 8, "velocity"))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, res, err := loadRun(args[0])
	if err != nil {
		return err
	}

	pos := res.Positions(0)
	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("style: %s (%s)\n\n", meta.Style, meta.Params)

	ps := analysis.PowerSpectrum(pos)
	if len(ps) > 8 {
		fmt.Println(viz.PlotSeries(ps[:len(ps)/4], 80, 12, "power spectrum (position)"))
		fmt.Println()
	}

	s := analysis.Summarize(pos)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "mean\t%.6f\n", s.Mean)
	fmt.Fprintf(w, "stddev\t%.6f\n", s.StdDev)
	fmt.Fprintf(w, "range\t[%.6f, %.6f]\n", s.Min, s.Max)

	fmt.Fprintf(w, "dominant frequency\t%.3f hz\n", analysis.DominantFrequency(pos, meta.Dt))
	level := res.Targets[len(res.Targets)-1]
	if cf := analysis.CrossingFrequency(pos, level, meta.Dt); cf > 0 {
		fmt.Fprintf(w, "crossing frequency\t%.3f hz (about %.3f)\n", cf, level)
	}
	if meta.Params.DampedFreq > 0 && meta.Params.Z < 1 {
		fmt.Fprintf(w, "expected ringing\t%.3f hz\n", meta.Params.DampedFreq/(2*math.Pi))
	}
	for _, name := range sortedKeys(res.Metrics) {
		fmt.Fprintf(w, "%s\t%.6f\n", name, res.Metrics[name])
	}
	return w.Flush()
}

func phasePlot(cmd *cobra.Command, args []string) error {
	if err := checkAxis(); err != nil {
		return err
	}
	meta, res, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("phase plot: %s\n", meta.ID)
	fmt.Printf("style: %s, axis %d (position → x, velocity → y)\n\n", meta.Style, axis)
	fmt.Println(analysis.PhasePortraitToASCII(analysis.PhasePortrait(res, axis), 70, 20))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, res, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, res)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, res, err := loadRun(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	if err := w.Write([]string{"time", "target", "x", "vx", "error"}); err != nil {
		return err
	}
	for i, s := range res.States {
		row := []string{
			strconv.FormatFloat(res.Times[i], 'f', 6, 64),
			strconv.FormatFloat(res.Targets[i], 'f', 6, 64),
			strconv.FormatFloat(s.Position.X, 'f', 6, 64),
			strconv.FormatFloat(s.Velocity.X, 'f', 6, 64),
			strconv.FormatFloat(res.Targets[i]-s.Position.X, 'f', 6, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
