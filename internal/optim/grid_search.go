package optim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/smoothdyn/internal/curve"
	"github.com/san-kum/smoothdyn/internal/dynamo"
	"github.com/san-kum/smoothdyn/internal/sim"
)

// GridSearch evaluates every combination of the f, z and r values it is
// given as a custom style and keeps the one with the lowest objective
// metric. Candidates whose constraint metrics exceed their limit are
// rejected.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	limits     map[string]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%d parameters but %d ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if name != "f" && name != "z" && name != "r" {
			return nil, fmt.Errorf("unknown parameter: %s (want f, z or r)", name)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("empty range for %s", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges, limits: map[string]float64{}}, nil
}

// Limit rejects candidates whose metric exceeds max.
func (g *GridSearch) Limit(metric string, max float64) *GridSearch {
	g.limits[metric] = max
	return g
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

type Candidate struct {
	Params  curve.Params
	Metrics map[string]float64
}

// Search runs all candidates concurrently from base, filling the swept
// parameters, and returns the best one. Invalid combinations such as f=0
// are skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	base curve.Raw,
	initial dynamo.State,
	target dynamo.TargetFunc,
	cfg sim.Config,
	metrics func() []sim.Metric,
	objective string,
) (*Candidate, error) {
	for _, name := range g.paramNames {
		if name == "r" && !sim.SlopeResolved(target, cfg) {
			slog.Warn("searching r on a target whose slope the tracker cannot resolve; r will barely matter")
		}
	}

	var specs []sim.Spec
	g.searchRecursive(0, base, func(raw curve.Raw) {
		p, err := curve.New(curve.Custom{F: raw.F, Z: raw.Z, R: raw.R})
		if err != nil {
			return
		}
		specs = append(specs, sim.Spec{
			Name:    p.String(),
			Params:  p,
			Initial: initial,
			Target:  target,
			Metrics: metrics,
		})
	})
	if len(specs) == 0 {
		return nil, fmt.Errorf("no valid candidates in grid")
	}

	results, err := sim.Sweep(ctx, specs, cfg)
	if err != nil {
		return nil, err
	}

	best := math.Inf(1)
	var found *Candidate
	for i, res := range results {
		val, ok := res.Metrics[objective]
		if !ok {
			return nil, fmt.Errorf("objective metric %q not recorded", objective)
		}
		if !g.admissible(res.Metrics) || len(res.Errors) > 0 {
			continue
		}
		if val < best {
			best = val
			found = &Candidate{Params: specs[i].Params, Metrics: res.Metrics}
		}
	}
	if found == nil {
		return nil, fmt.Errorf("no candidate satisfies the limits %v", g.limits)
	}
	return found, nil
}

func (g *GridSearch) admissible(m map[string]float64) bool {
	for name, max := range g.limits {
		if v, ok := m[name]; ok && v > max {
			return false
		}
	}
	return true
}

func (g *GridSearch) searchRecursive(depth int, current curve.Raw, visit func(curve.Raw)) {
	if depth == len(g.paramNames) {
		visit(current)
		return
	}

	for _, val := range g.ranges[depth] {
		next := current
		switch g.paramNames[depth] {
		case "f":
			next.F = val
		case "z":
			next.Z = val
		case "r":
			next.R = val
		}
		g.searchRecursive(depth+1, next, visit)
	}
}
