package integrators

import "github.com/san-kum/smoothdyn/internal/dynamo"

type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(sys System, s dynamo.State, t, dt float64) dynamo.State {
	k1 := sys.Derive(s, t)
	k2 := sys.Derive(axpy(s, k1, dt*0.5), t+dt*0.5)
	k3 := sys.Derive(axpy(s, k2, dt*0.5), t+dt*0.5)
	k4 := sys.Derive(axpy(s, k3, dt), t+dt)

	dt6 := dt / 6.0
	s = axpy(s, k1, dt6)
	s = axpy(s, k2, 2*dt6)
	s = axpy(s, k3, 2*dt6)
	return axpy(s, k4, dt6)
}
