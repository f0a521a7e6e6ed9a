package integrators

import "github.com/san-kum/smoothdyn/internal/dynamo"

// Euler is the explicit forward Euler scheme. It is unstable once dt
// exceeds roughly 2·k1 for the tracker equation.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys System, s dynamo.State, t float64, dt float64) dynamo.State {
	return axpy(s, sys.Derive(s, t), dt)
}
