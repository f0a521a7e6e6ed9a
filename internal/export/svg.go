package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/smoothdyn/internal/analysis"
	"github.com/san-kum/smoothdyn/internal/sim"
)

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (b bounds) pad() bounds {
	rangeX, rangeY := b.maxX-b.minX, b.maxY-b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	return bounds{
		minX: b.minX - rangeX*0.05, maxX: b.maxX + rangeX*0.05,
		minY: b.minY - rangeY*0.1, maxY: b.maxY + rangeY*0.1,
	}
}

func boundsOf(xs []float64, ys ...[]float64) bounds {
	b := bounds{minX: xs[0], maxX: xs[0], minY: ys[0][0], maxY: ys[0][0]}
	for _, x := range xs {
		b.minX, b.maxX = min(b.minX, x), max(b.maxX, x)
	}
	for _, series := range ys {
		for _, y := range series {
			b.minY, b.maxY = min(b.minY, y), max(b.maxY, y)
		}
	}
	return b.pad()
}

func header(sb *strings.Builder, width, height int) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
}

func path(sb *strings.Builder, xs, ys []float64, b bounds, width, height int, stroke string, dashed bool) {
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="1.5"`, stroke)
	if dashed {
		sb.WriteString(` stroke-dasharray="6,4"`)
	}
	sb.WriteString(` d="M`)
	for i := range xs {
		x := (xs[i] - b.minX) / (b.maxX - b.minX) * float64(width)
		y := float64(height) - (ys[i]-b.minY)/(b.maxY-b.minY)*float64(height)
		if i == 0 {
			fmt.Fprintf(sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString("\"/>\n")
}

// TraceToSVG draws the target (dashed) and the tracked position of one axis
// against time.
func TraceToSVG(res *sim.Result, axis, width, height int) string {
	if res == nil || len(res.States) < 2 || len(res.Times) != len(res.States) {
		return ""
	}

	pos := res.Positions(axis)
	series := [][]float64{pos}
	if len(res.Targets) == len(pos) {
		series = append(series, res.Targets)
	}
	b := boundsOf(res.Times, series...)

	var sb strings.Builder
	header(&sb, width, height)
	if len(series) == 2 {
		path(&sb, res.Times, res.Targets, b, width, height, "#888899", true)
	}
	path(&sb, res.Times, pos, b, width, height, "#00ffff", false)
	sb.WriteString("</svg>")
	return sb.String()
}

// PhaseToSVG draws a phase portrait as a single path.
func PhaseToSVG(portrait *analysis.PhasePortrait2D, width, height int, strokeColor string) string {
	if portrait == nil || len(portrait.Points) < 2 {
		return ""
	}

	xs := make([]float64, len(portrait.Points))
	ys := make([]float64, len(portrait.Points))
	for i, p := range portrait.Points {
		xs[i], ys[i] = p.X, p.Y
	}
	b := boundsOf(xs, ys)

	var sb strings.Builder
	header(&sb, width, height)
	path(&sb, xs, ys, b, width, height, strokeColor, false)
	sb.WriteString("</svg>")
	return sb.String()
}
