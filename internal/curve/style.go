package curve

import (
	"fmt"
	"sort"

	"github.com/san-kum/smoothdyn/internal/dynamo"
)

// Raw holds the style inputs before derivation.
type Raw struct {
	F float64 `json:"f" yaml:"f"`
	Z float64 `json:"z" yaml:"z"`
	R float64 `json:"r" yaml:"r"`
}

// Style selects a response curve. Exactly one concrete type is active per
// tracker.
type Style interface {
	Name() string
	raw() (Raw, error)
}

// Linear is the 1:1 preset: f=10, z=0, r=1. With z=0 it is undamped and
// oscillates about a constant target.
type Linear struct{}

// Bezier is a placeholder for a quadratic Bezier response. It has no
// coefficients yet and fails construction.
type Bezier struct{}

// SmoothDamped is critical damping at 1 Hz with an eased start.
type SmoothDamped struct{}

// Mechanical overshoots the input on start (r=2).
type Mechanical struct {
	F, Z float64
}

// Custom takes f, z and r as given.
type Custom struct {
	F, Z, R float64
}

func (Linear) Name() string       { return "linear" }
func (Bezier) Name() string       { return "bezier" }
func (SmoothDamped) Name() string { return "smooth" }
func (Mechanical) Name() string   { return "mechanical" }
func (Custom) Name() string       { return "custom" }

func (Linear) raw() (Raw, error)       { return Raw{F: 10, Z: 0, R: 1}, nil }
func (SmoothDamped) raw() (Raw, error) { return Raw{F: 1, Z: 1, R: 0}, nil }
func (m Mechanical) raw() (Raw, error) { return Raw{F: m.F, Z: m.Z, R: 2}, nil }
func (c Custom) raw() (Raw, error)     { return Raw{F: c.F, Z: c.Z, R: c.R}, nil }

func (b Bezier) raw() (Raw, error) {
	return Raw{}, &dynamo.ConfigError{Style: b.Name(), Wrapped: dynamo.ErrUnimplementedStyle}
}

var styleFactories = map[string]func(f, z, r float64) Style{
	"linear":     func(_, _, _ float64) Style { return Linear{} },
	"bezier":     func(_, _, _ float64) Style { return Bezier{} },
	"smooth":     func(_, _, _ float64) Style { return SmoothDamped{} },
	"mechanical": func(f, z, _ float64) Style { return Mechanical{F: f, Z: z} },
	"custom":     func(f, z, r float64) Style { return Custom{F: f, Z: z, R: r} },
}

// Parse returns the style registered under name. f, z and r are only read
// by the parameterized styles.
func Parse(name string, f, z, r float64) (Style, error) {
	fn, ok := styleFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown style: %s (available: %v)", name, Names())
	}
	return fn(f, z, r), nil
}

// Names lists the registered style names in sorted order.
func Names() []string {
	names := make([]string, 0, len(styleFactories))
	for name := range styleFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
