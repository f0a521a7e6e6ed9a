// Package integrators solves the continuous tracker equation
//
//	y + k1·y' + k2·y'' = x + k3·x'
//
// with classical explicit schemes. The results serve as a reference for the
// pole-matched update in package tracker.
package integrators

import (
	"math"

	"github.com/san-kum/smoothdyn/internal/curve"
	"github.com/san-kum/smoothdyn/internal/dynamo"
)

// System is a first-order ODE over a tracker state. The returned State
// holds the time derivatives: Position is dy/dt and Velocity is dv/dt.
type System interface {
	Derive(s dynamo.State, t float64) dynamo.State
}

type Integrator interface {
	Step(sys System, s dynamo.State, t, dt float64) dynamo.State
}

// SecondOrderODE is the continuous tracker driven by Target, using the
// undiscretized coefficients K1, K2 and K3.
type SecondOrderODE struct {
	Params curve.Params
	Target dynamo.TargetFunc
	// Slope is x'(t). When nil it is estimated by central difference.
	Slope dynamo.TargetFunc
}

func (o SecondOrderODE) slope(t float64) float64 {
	if o.Slope != nil {
		return o.Slope(t)
	}
	h := 1e-6 * math.Max(1, math.Abs(t))
	return (o.Target(t+h) - o.Target(t-h)) / (2 * h)
}

func (o SecondOrderODE) Derive(s dynamo.State, t float64) dynamo.State {
	p := o.Params
	drive := o.Target(t)
	if p.K3 != 0 {
		drive += p.K3 * o.slope(t)
	}

	y, v := s.Position, s.Velocity
	return dynamo.State{
		Position: v,
		Velocity: dynamo.Vec3{
			X: (drive - y.X - p.K1*v.X) / p.K2,
			Y: (drive - y.Y - p.K1*v.Y) / p.K2,
			Z: (drive - y.Z - p.K1*v.Z) / p.K2,
		},
	}
}

// axpy returns s + h·d.
func axpy(s, d dynamo.State, h float64) dynamo.State {
	return dynamo.State{
		Position: s.Position.Add(d.Position.Scale(h)),
		Velocity: s.Velocity.Add(d.Velocity.Scale(h)),
	}
}

// Solve advances s from t0 to t1 in fixed steps of dt, shortening the last
// step to land on t1.
func Solve(integ Integrator, sys System, s dynamo.State, t0, t1, dt float64) dynamo.State {
	t := t0
	for t < t1 {
		h := math.Min(dt, t1-t)
		s = integ.Step(sys, s, t, h)
		t += h
	}
	return s
}
