package experiment

import (
	"github.com/san-kum/smoothdyn/internal/curve"
	"github.com/san-kum/smoothdyn/internal/metrics"
	"github.com/san-kum/smoothdyn/internal/signal"
	"github.com/san-kum/smoothdyn/internal/sim"
)

// Registry resolves the names accepted on the command line and in config
// files.
type Registry struct {
	metrics func() []sim.Metric
}

func NewRegistry() *Registry {
	return &Registry{metrics: metrics.Default}
}

func (r *Registry) GetStyle(name string, f, z, rr float64) (curve.Style, error) {
	return curve.Parse(name, f, z, rr)
}

func (r *Registry) ListStyles() []string  { return curve.Names() }
func (r *Registry) ListTargets() []string { return signal.Kinds() }

// DefaultMetrics returns a fresh metric set; metrics are stateful and
// must not be shared between runs.
func (r *Registry) DefaultMetrics() []sim.Metric {
	return r.metrics()
}
