package dynamo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// InvSqrt
// =============================================================================

func TestInvSqrtKnownValues(t *testing.T) {
	testCases := []struct {
		in   float64
		want float64
		tol  float64
		desc string
	}{
		{1.0, 1.0, 1e-9, "one"},
		{4.0, 0.5, 1e-6, "four"},
		{0.25, 2.0, 1e-6, "quarter"},
		{2.0, 1 / math.Sqrt2, 1e-9, "two"},
		{0.5, math.Sqrt2, 1e-9, "half"},
		{100.0, 0.1, 1e-9, "hundred"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got := InvSqrt(tc.in)
			assert.InDelta(t, tc.want, got, tc.tol, "InvSqrt(%g)", tc.in)
		})
	}
}

func TestInvSqrtRelativeErrorUnitInterval(t *testing.T) {
	for i := 1; i <= 10000; i++ {
		x := float64(i) / 10000
		exact := 1 / math.Sqrt(x)
		rel := math.Abs(InvSqrt(x)-exact) / exact
		require.Less(t, rel, 1e-9, "x=%g", x)
	}
}

func TestInvSqrtWideRange(t *testing.T) {
	for _, x := range []float64{1e-300, 1e-100, 1e-10, 3, 1e10, 1e100, 1e300} {
		exact := 1 / math.Sqrt(x)
		assert.InEpsilon(t, exact, InvSqrt(x), 1e-9, "x=%g", x)
	}
}

func TestInvSqrtMonotonicDecreasing(t *testing.T) {
	prev := InvSqrt(1e-6)
	for x := 1e-6 * 1.001; x < 1e6; x *= 1.001 {
		cur := InvSqrt(x)
		require.Greater(t, prev, cur, "x=%g", x)
		prev = cur
	}
}

// =============================================================================
// Derivative
// =============================================================================

func TestDerivativeSquareAtTwo(t *testing.T) {
	got := Derivative(func(x float64) float64 { return x * x }, 2)
	assert.InDelta(t, 4.0, got, 1e-9)
}

func TestDerivativeConstant(t *testing.T) {
	got := Derivative(func(float64) float64 { return 7 }, 1.5)
	assert.Equal(t, 0.0, got)
}

func TestDerivativeAtZero(t *testing.T) {
	got := Derivative(func(x float64) float64 { return x * x }, 0)
	assert.Equal(t, 0.0, got)
}

func TestDerivativeStepIsOneUlp(t *testing.T) {
	var samples []float64
	f := func(x float64) float64 {
		samples = append(samples, x)
		return x
	}
	Derivative(f, 1.0)

	require.Len(t, samples, 2)
	assert.Equal(t, math.Nextafter(1.0, 2), samples[0])
	assert.Equal(t, math.Nextafter(1.0, 0), samples[1])
}

func BenchmarkInvSqrt(b *testing.B) {
	x := 0.37
	var sink float64
	for i := 0; i < b.N; i++ {
		sink += InvSqrt(x)
	}
	_ = sink
}

func BenchmarkMathInvSqrt(b *testing.B) {
	x := 0.37
	var sink float64
	for i := 0; i < b.N; i++ {
		sink += 1 / math.Sqrt(x)
	}
	_ = sink
}
