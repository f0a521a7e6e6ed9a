// Package signal builds target functions for driving a tracker: steps,
// ramps and periodic waves as functions of absolute time.
package signal

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/smoothdyn/internal/dynamo"
)

func Constant(v float64) dynamo.TargetFunc {
	return func(float64) float64 { return v }
}

// Step holds from until time at, then to.
func Step(at, from, to float64) dynamo.TargetFunc {
	return func(t float64) float64 {
		if t < at {
			return from
		}
		return to
	}
}

// Ramp starts at from and rises by slope per second after time at.
func Ramp(at, from, slope float64) dynamo.TargetFunc {
	return func(t float64) float64 {
		if t < at {
			return from
		}
		return from + slope*(t-at)
	}
}

// Sine oscillates about offset with the given amplitude and frequency in Hz.
func Sine(offset, amplitude, freq float64) dynamo.TargetFunc {
	w := 2 * math.Pi * freq
	return func(t float64) float64 {
		return offset + amplitude*math.Sin(w*t)
	}
}

// Square alternates between offset±amplitude, starting high.
func Square(offset, amplitude, freq float64) dynamo.TargetFunc {
	return func(t float64) float64 {
		phase := math.Mod(t*freq, 1)
		if phase < 0 {
			phase++
		}
		if phase < 0.5 {
			return offset + amplitude
		}
		return offset - amplitude
	}
}

// Config describes a target by kind. Fields not used by a kind are ignored.
type Config struct {
	Kind      string  `yaml:"kind" json:"kind"`
	From      float64 `yaml:"from" json:"from"`
	To        float64 `yaml:"to" json:"to"`
	At        float64 `yaml:"at" json:"at"`
	Amplitude float64 `yaml:"amplitude" json:"amplitude"`
	Frequency float64 `yaml:"frequency" json:"frequency"`
	Slope     float64 `yaml:"slope" json:"slope"`
}

var builders = map[string]func(c Config) (dynamo.TargetFunc, error){
	"constant": func(c Config) (dynamo.TargetFunc, error) { return Constant(c.To), nil },
	"step":     func(c Config) (dynamo.TargetFunc, error) { return Step(c.At, c.From, c.To), nil },
	"ramp":     func(c Config) (dynamo.TargetFunc, error) { return Ramp(c.At, c.From, c.Slope), nil },
	"sine": func(c Config) (dynamo.TargetFunc, error) {
		if c.Frequency <= 0 {
			return nil, fmt.Errorf("sine frequency must be positive, got %g", c.Frequency)
		}
		return Sine(c.From, c.Amplitude, c.Frequency), nil
	},
	"square": func(c Config) (dynamo.TargetFunc, error) {
		if c.Frequency <= 0 {
			return nil, fmt.Errorf("square frequency must be positive, got %g", c.Frequency)
		}
		return Square(c.From, c.Amplitude, c.Frequency), nil
	},
}

// Build returns the target function described by c.
func (c Config) Build() (dynamo.TargetFunc, error) {
	fn, ok := builders[c.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown target kind: %s (available: %v)", c.Kind, Kinds())
	}
	return fn(c)
}

// Kinds lists the registered target kinds in sorted order.
func Kinds() []string {
	kinds := make([]string, 0, len(builders))
	for k := range builders {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// UnitStep is the default target: 0 until t=0, then 1.
func UnitStep() Config {
	return Config{Kind: "step", From: 0, To: 1}
}
