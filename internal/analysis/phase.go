package analysis

import (
	"strings"

	"github.com/san-kum/smoothdyn/internal/sim"
)

type Point struct {
	X, Y float64
}

// PhasePortrait2D holds position (X) against velocity (Y) for one axis.
type PhasePortrait2D struct {
	Axis   int
	Points []Point
}

// PhasePortrait extracts the phase trajectory of axis 0..2 from a run.
func PhasePortrait(res *sim.Result, axis int) *PhasePortrait2D {
	if res == nil || axis < 0 || axis > 2 {
		return nil
	}

	portrait := &PhasePortrait2D{
		Axis:   axis,
		Points: make([]Point, len(res.States)),
	}
	for i, s := range res.States {
		portrait.Points[i] = Point{X: s.Position.Component(axis), Y: s.Velocity.Component(axis)}
	}
	return portrait
}

// PhasePortraitToASCII plots the portrait on a width×height character grid
// with axes drawn where they cross the visible area.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := portrait.Points[0].X, portrait.Points[0].X
	minY, maxY := portrait.Points[0].Y, portrait.Points[0].Y
	for _, p := range portrait.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := 0; r < height; r++ {
			canvas[r][c] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := 0; c < width; c++ {
			canvas[r][c] = '─'
		}
	}

	for _, p := range portrait.Points {
		r, c := row(p.Y), col(p.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			canvas[r][c] = '•'
		}
	}

	var sb strings.Builder
	for _, line := range canvas {
		sb.WriteString(string(line))
		sb.WriteRune('\n')
	}
	return sb.String()
}
