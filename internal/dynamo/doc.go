// Package dynamo provides the numeric primitives shared by the smoothing
// tracker and its simulation harness.
//
// The package defines:
//
//   - [Vec3]: plain float64 3-vector used for tracker position and velocity
//   - [State]: position/velocity pair advanced by a tracker each tick
//   - [TargetFunc]: goal value as a function of time
//   - [InvSqrt]: fast approximate reciprocal square root
//   - [Derivative]: central-difference slope of a [TargetFunc]
//
// # Example
//
//	p, _ := curve.New(curve.SmoothDamped{})
//	tr := tracker.New(p, dynamo.State{})
//	s := tr.Update(1.0/60, func(t float64) float64 { return 1 })
//
// # Thread Safety
//
// Everything here is pure except [State], which is a value. Trackers built on
// top of these types are single-owner and must not be updated concurrently.
package dynamo
