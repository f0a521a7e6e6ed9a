package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/smoothdyn/internal/curve"
	"github.com/san-kum/smoothdyn/internal/dynamo"
	"github.com/san-kum/smoothdyn/internal/tracker"
)

// Spec is one member of a sweep. Metrics is called once per run so no
// metric is shared between goroutines.
type Spec struct {
	Name    string
	Params  curve.Params
	Initial dynamo.State
	Target  dynamo.TargetFunc
	Metrics func() []Metric
}

// Sweep runs every spec on its own tracker concurrently and returns the
// results in spec order. The first error cancels the remaining runs.
func Sweep(ctx context.Context, specs []Spec, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(specs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, spec := range specs {
		g.Go(func() error {
			s := New(tracker.New(spec.Params, spec.Initial))
			if spec.Metrics != nil {
				for _, m := range spec.Metrics() {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(ctx, spec.Target, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
