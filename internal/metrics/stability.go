package metrics

import (
	"math"

	"github.com/san-kum/smoothdyn/internal/dynamo"
)

// Stability is the fraction of samples whose position and velocity stay
// within threshold on every axis.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(x dynamo.State, target float64, t float64) {
	s.samples++
	for i := 0; i < 3; i++ {
		if math.Abs(x.Position.Component(i)) > s.threshold || math.Abs(x.Velocity.Component(i)) > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
