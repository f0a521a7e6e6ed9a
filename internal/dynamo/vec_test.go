package dynamo

import (
	"math"
	"testing"
)

func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if got := a.Add(b); got != (Vec3{5, 7, 9}) {
		t.Errorf("add: got %v", got)
	}
	if got := b.Sub(a); got != (Vec3{3, 3, 3}) {
		t.Errorf("sub: got %v", got)
	}
	if got := a.Scale(2); got != (Vec3{2, 4, 6}) {
		t.Errorf("scale: got %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("dot: got %f", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 0, 4}.Normalize()
	if math.Abs(v.Norm()-1) > 1e-9 {
		t.Errorf("expected unit length, got %f", v.Norm())
	}
	if math.Abs(v.X-0.6) > 1e-9 || math.Abs(v.Z-0.8) > 1e-9 {
		t.Errorf("unexpected direction %v", v)
	}

	if z := (Vec3{}).Normalize(); z != (Vec3{}) {
		t.Errorf("zero vector should stay zero, got %v", z)
	}
}

func TestStateIsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"zero", State{}, true},
		{"finite", State{Position: Vec3{1, 2, 3}, Velocity: Vec3{-1, 0, 1}}, true},
		{"nan position", State{Position: Vec3{math.NaN(), 0, 0}}, false},
		{"inf velocity", State{Velocity: Vec3{0, 0, math.Inf(1)}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("expected %v, got %v", tt.valid, got)
			}
		})
	}
}

func TestConfigErrorUnwrap(t *testing.T) {
	err := &ConfigError{Style: "custom", Field: "f", Value: 0, Wrapped: ErrConfiguration}
	if err.Error() != "custom: f=0: dynamo: invalid curve configuration" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if err.Unwrap() != ErrConfiguration {
		t.Error("expected wrapped configuration error")
	}
}
