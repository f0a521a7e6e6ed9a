package integrators

import (
	"math"

	"github.com/san-kum/smoothdyn/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64
	tol      float64
}

func NewRK45(tol float64) *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
		tol:      tol,
	}
}

func flat(s dynamo.State) [6]float64 {
	return [6]float64{s.Position.X, s.Position.Y, s.Position.Z, s.Velocity.X, s.Velocity.Y, s.Velocity.Z}
}

// combine returns s + dt·Σ w[i]·k[i].
func combine(s dynamo.State, dt float64, k []dynamo.State, w []float64) dynamo.State {
	for i := range k {
		if w[i] != 0 {
			s = axpy(s, k[i], dt*w[i])
		}
	}
	return s
}

// Step takes one fifth-order step of exactly dt.
func (r *RK45) Step(sys System, s dynamo.State, t, dt float64) dynamo.State {
	next, _, _ := r.StepAdaptive(sys, s, t, dt)
	return next
}

// StepAdaptive takes one step of dt and returns the new state, the step
// size suggested for the next call, and the scaled error estimate. An
// error above 1 means the step should be retried with the suggested size.
func (r *RK45) StepAdaptive(sys System, s dynamo.State, t, dt float64) (dynamo.State, float64, float64) {
	k1 := sys.Derive(s, t)
	k2 := sys.Derive(combine(s, dt, []dynamo.State{k1}, []float64{b21}), t+a2*dt)
	k3 := sys.Derive(combine(s, dt, []dynamo.State{k1, k2}, []float64{b31, b32}), t+a3*dt)
	k4 := sys.Derive(combine(s, dt, []dynamo.State{k1, k2, k3}, []float64{b41, b42, b43}), t+a4*dt)
	k5 := sys.Derive(combine(s, dt, []dynamo.State{k1, k2, k3, k4}, []float64{b51, b52, b53, b54}), t+a5*dt)
	k6 := sys.Derive(combine(s, dt, []dynamo.State{k1, k2, k3, k4, k5}, []float64{b61, b62, b63, b64, b65}), t+dt)

	next := combine(s, dt, []dynamo.State{k1, k3, k4, k5, k6}, []float64{c1, c3, c4, c5, c6})
	k7 := sys.Derive(next, t+dt)

	errEst := combine(dynamo.State{}, dt, []dynamo.State{k1, k3, k4, k5, k6, k7}, []float64{dc1, dc3, dc4, dc5, dc6, dc7})

	x, d, e := flat(s), flat(k1), flat(errEst)
	errMax := 0.0
	for i := range x {
		scale := math.Abs(x[i]) + math.Abs(dt*d[i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(e[i])/scale)
	}

	errRatio := errMax / r.tol

	var dtNew float64
	switch {
	case errRatio > 1:
		dtNew = dt * math.Max(r.minScale, r.safety*math.Pow(errRatio, -0.25))
	case errRatio > 0:
		dtNew = dt * math.Min(r.maxScale, r.safety*math.Pow(errRatio, -0.2))
	default:
		dtNew = dt * r.maxScale
	}

	return next, dtNew, errRatio
}

// Integrate advances s from t0 to t1 with step size control, starting from
// dt0. Rejected steps are retried with the smaller suggested size.
func (r *RK45) Integrate(sys System, s dynamo.State, t0, t1, dt0 float64) (dynamo.State, int) {
	t, dt, steps := t0, dt0, 0
	for t < t1 {
		dt = math.Min(dt, t1-t)
		next, dtNew, errRatio := r.StepAdaptive(sys, s, t, dt)
		if errRatio <= 1 {
			s, t = next, t+dt
			steps++
		}
		dt = dtNew
	}
	return s, steps
}
