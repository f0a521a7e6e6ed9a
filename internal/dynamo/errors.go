package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for tracker construction and simulation.
var (
	// ErrConfiguration indicates style parameters that cannot produce a
	// usable filter (zero or negative frequency, negative damping, NaN).
	ErrConfiguration = errors.New("dynamo: invalid curve configuration")

	// ErrUnimplementedStyle indicates a curve style that exists as a
	// placeholder only. It is a configuration error.
	ErrUnimplementedStyle = fmt.Errorf("%w: style not implemented", ErrConfiguration)

	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrNonPositiveStep indicates a simulation configured with dt <= 0.
	ErrNonPositiveStep = errors.New("dynamo: timestep must be positive")
)

// ConfigError wraps a configuration error with the offending field.
type ConfigError struct {
	Style   string
	Field   string
	Value   float64
	Wrapped error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Style, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s=%g: %v", e.Style, e.Field, e.Value, e.Wrapped)
}

func (e *ConfigError) Unwrap() error {
	return e.Wrapped
}
