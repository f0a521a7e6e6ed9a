package dynamo

import "math"

// rsqrtMagic is sqrt(2^1023) in the IEEE-754 double layout, the 64-bit
// counterpart of the classic 0x5f3759df.
const rsqrtMagic = 0x5FE6A09E667F3BC8

// InvSqrt approximates 1/sqrt(x) from the float64 bit pattern followed by
// three Newton-Raphson steps on g(y) = 1/y² - x. Relative error is below
// 1e-9 for finite x > 0.
//
// x must be positive and finite. Zero, negative, NaN or infinite input
// returns a value with no guaranteed meaning; callers on the hot path are
// expected to uphold the precondition.
func InvSqrt(x float64) float64 {
	y := math.Float64frombits(rsqrtMagic - math.Float64bits(x)>>1)
	y *= 1.5 - 0.5*x*y*y
	y *= 1.5 - 0.5*x*y*y
	y *= 1.5 - 0.5*x*y*y
	return y
}

// Derivative estimates f'(x) by central difference over the smallest
// representable step on either side of x.
//
// The step is one ulp, so the estimate is exact for functions that are
// locally linear at float64 resolution (x² at powers of two, constants) and
// can suffer catastrophic cancellation elsewhere. Callers that need a
// smoother slope should differentiate analytically.
func Derivative(f func(float64) float64, x float64) float64 {
	lo := math.Nextafter(x, math.Inf(-1))
	hi := math.Nextafter(x, math.Inf(1))
	return (f(hi) - f(lo)) / (hi - lo)
}
