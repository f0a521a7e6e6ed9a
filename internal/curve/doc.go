// Package curve derives second-order filter coefficients from user-facing
// response styles.
//
// A [Style] selects the raw frequency f, damping ratio z and initial
// response r. [New] turns it into immutable [Params]:
//
//	omega      = 2πf
//	dampedFreq = omega·sqrt(|z²-1|)
//	k1 = z/(πf)    k2 = 1/omega²    k3 = r·z/omega
//
// [Params.Stable] then picks per-step coefficients that match the
// continuous system's poles, which keeps the discrete update stable at step
// sizes far larger than 1/omega.
//
// # Parameters
//
//   - f: response speed in Hz. Keep within (0.01, 10).
//   - z: 0 never settles, (0,1) overshoots, 1 is critical, >1 is sluggish.
//   - r: 0 eases in, 1 follows the input, >1 overshoots it, <0 anticipates.
package curve
