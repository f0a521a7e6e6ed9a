package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/smoothdyn/internal/sim"
)

// PlotTrace draws the tracked position on axis against the target.
func PlotTrace(res *sim.Result, axis, width, height int, caption string) string {
	if res == nil || len(res.States) == 0 {
		return ""
	}
	pos := res.Positions(axis)
	if len(res.Targets) != len(pos) {
		return asciigraph.Plot(pos, asciigraph.Height(height), asciigraph.Width(width), asciigraph.Caption(caption))
	}

	return asciigraph.PlotMany([][]float64{res.Targets, pos},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.SeriesColors(asciigraph.Default, asciigraph.Cyan),
		asciigraph.Caption(caption),
	)
}

// PlotSeries draws one named series, as used for spectra and velocities.
func PlotSeries(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// TraceCaption labels a trace with its style coefficients.
func TraceCaption(style string, k1, k2, k3 float64) string {
	return fmt.Sprintf("%s  k1=%.4f k2=%.5f k3=%.4f  (target, position)", style, k1, k2, k3)
}
