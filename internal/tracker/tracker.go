// Package tracker advances a second-order response toward a moving target.
//
// The update is applied to each axis of a [dynamo.Vec3] independently with
// the same coefficients:
//
//	k1s, k2s  = params.Stable(dt)
//	position += dt·velocity
//	velocity += dt·(x + k3·x' − position − k1s·velocity) / k2s
//
// where x and x' are the target and its numeric derivative sampled at t = dt.
package tracker

import (
	"github.com/san-kum/smoothdyn/internal/curve"
	"github.com/san-kum/smoothdyn/internal/dynamo"
)

// Step returns s advanced by dt toward target. The target and its slope are
// evaluated at t = dt, so the same scalar is both the integration step and
// the time argument; callers with an absolute clock shift the target
// themselves (see sim.Simulator).
//
// dt == 0 returns s unchanged. Non-finite targets propagate into the state.
func Step(p curve.Params, s dynamo.State, dt float64, target dynamo.TargetFunc) dynamo.State {
	if dt == 0 {
		return s
	}

	k1, k2 := p.Stable(dt)
	x := target(dt)
	xd := dynamo.Derivative(target, dt)
	drive := x + p.K3*xd

	y, yd := s.Position, s.Velocity

	y.X += dt * yd.X
	y.Y += dt * yd.Y
	y.Z += dt * yd.Z

	yd.X += dt * (drive - y.X - k1*yd.X) / k2
	yd.Y += dt * (drive - y.Y - k1*yd.Y) / k2
	yd.Z += dt * (drive - y.Z - k1*yd.Z) / k2

	return dynamo.State{Position: y, Velocity: yd}
}

// SecondOrder owns one tracker's coefficients and state. It is not safe for
// concurrent use; give each entity its own instance.
type SecondOrder struct {
	params curve.Params
	state  dynamo.State
}

func New(p curve.Params, initial dynamo.State) *SecondOrder {
	return &SecondOrder{params: p, state: initial}
}

// FromStyle derives the coefficients for style and returns a tracker at
// initial. Invalid styles fail here rather than on the first Update.
func FromStyle(style curve.Style, initial dynamo.State) (*SecondOrder, error) {
	p, err := curve.New(style)
	if err != nil {
		return nil, err
	}
	return New(p, initial), nil
}

// Update advances the tracker by dt and returns the new state.
func (t *SecondOrder) Update(dt float64, target dynamo.TargetFunc) dynamo.State {
	t.state = Step(t.params, t.state, dt, target)
	return t.state
}

func (t *SecondOrder) State() dynamo.State { return t.state }
func (t *SecondOrder) Reset(s dynamo.State) { t.state = s }
func (t *SecondOrder) Params() curve.Params { return t.params }
