package curve

import (
	"fmt"
	"math"

	"github.com/san-kum/smoothdyn/internal/dynamo"
)

// Params is the coefficient set derived once from a Style.
type Params struct {
	Raw

	Style string `json:"style"`

	Omega      float64 `json:"omega"`
	DampedFreq float64 `json:"damped_freq"`

	// Zeta is the step threshold below which Stable clamps k2 directly
	// instead of pole matching. It is zero, so the clamp only applies to
	// negative steps; the pole-matching terms use the damping ratio Z.
	Zeta float64 `json:"zeta"`

	K1 float64 `json:"k1"`
	K2 float64 `json:"k2"`
	K3 float64 `json:"k3"`
}

// New derives Params from a style. It fails with an error wrapping
// dynamo.ErrConfiguration for unimplemented styles, non-positive f,
// negative z, or non-finite inputs.
func New(style Style) (Params, error) {
	raw, err := style.raw()
	if err != nil {
		return Params{}, err
	}
	if err := validate(style.Name(), raw); err != nil {
		return Params{}, err
	}

	omega := 2 * math.Pi * raw.F
	return Params{
		Raw:        raw,
		Style:      style.Name(),
		Omega:      omega,
		DampedFreq: omega * math.Sqrt(math.Abs(raw.Z*raw.Z-1)),
		Zeta:       0,
		K1:         raw.Z / (math.Pi * raw.F),
		K2:         1 / (omega * omega),
		K3:         raw.R * raw.Z / omega,
	}, nil
}

// MustNew is New for package-level presets. It panics on error.
func MustNew(style Style) Params {
	p, err := New(style)
	if err != nil {
		panic(err)
	}
	return p
}

func validate(name string, raw Raw) error {
	bad := func(field string, v float64) error {
		return &dynamo.ConfigError{Style: name, Field: field, Value: v, Wrapped: dynamo.ErrConfiguration}
	}
	switch {
	case math.IsNaN(raw.F) || math.IsInf(raw.F, 0) || raw.F <= 0:
		return bad("f", raw.F)
	case math.IsNaN(raw.Z) || math.IsInf(raw.Z, 0) || raw.Z < 0:
		return bad("z", raw.Z)
	case math.IsNaN(raw.R) || math.IsInf(raw.R, 0):
		return bad("r", raw.R)
	}
	return nil
}

// Stable returns the k1 and k2 to use for a step of length dt.
//
// When omega·dt < Zeta, k1 is used as is and k2 is clamped to
// max(k2, dt²/2 + dt·k1/2, dt·k1). Otherwise k1 and k2 are chosen so the
// discrete update reproduces the continuous poles; those terms take the
// damping ratio Z, not Zeta. As dt approaches zero both branches tend to
// (K1, K2).
func (p Params) Stable(dt float64) (k1, k2 float64) {
	if p.Omega*dt < p.Zeta {
		return p.K1, math.Max(p.K2, math.Max(dt*dt/2+dt*p.K1/2, dt*p.K1))
	}

	t1 := math.Exp(-p.Z * p.Omega * dt)
	var trig float64
	if p.Z <= 1 {
		trig = math.Cos(dt * p.DampedFreq)
	} else {
		trig = math.Cosh(dt * p.DampedFreq)
	}
	alpha := 2 * t1 * trig
	beta := t1 * t1
	t2 := dt / (1 + beta - alpha)
	return (1 - beta) * t2, dt * t2
}

func (p Params) String() string {
	return fmt.Sprintf("%s f=%g z=%g r=%g (k1=%.4g k2=%.4g k3=%.4g)",
		p.Style, p.F, p.Z, p.R, p.K1, p.K2, p.K3)
}
