package config

import (
	"sort"

	"github.com/san-kum/smoothdyn/internal/signal"
)

// Presets are named tunings for common motion-easing jobs.
var Presets = map[string]*Config{
	"camera": {
		Style:  StyleConfig{Name: "smooth"},
		Target: signal.Config{Kind: "step", From: 0, To: 10, At: 0.5},
		Dt:     1.0 / 60, Duration: 5.0,
	},
	"snappy": {
		Style:  StyleConfig{Name: "custom", F: 4, Z: 0.9, R: 1},
		Target: signal.Config{Kind: "square", From: 0, Amplitude: 1, Frequency: 0.5},
		Dt:     1.0 / 60, Duration: 6.0,
	},
	"bouncy": {
		Style:  StyleConfig{Name: "custom", F: 2, Z: 0.2, R: 0},
		Target: signal.UnitStep(),
		Dt:     1.0 / 120, Duration: 4.0,
	},
	"anticipate": {
		Style:  StyleConfig{Name: "custom", F: 1.5, Z: 0.7, R: -1.5},
		Target: signal.Config{Kind: "ramp", From: 0, Slope: 1, At: 0.5},
		Dt:     1.0 / 60, Duration: 5.0,
	},
	"robotic": {
		Style:  StyleConfig{Name: "mechanical", F: 1.5, Z: 0.5},
		Target: signal.Config{Kind: "sine", From: 0, Amplitude: 2, Frequency: 0.25},
		Dt:     1.0 / 60, Duration: 8.0,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
