package dynamo

// TargetFunc returns the goal value at time t.
type TargetFunc func(t float64) float64

// State is the per-tracker position and velocity.
type State struct {
	Position Vec3
	Velocity Vec3
}

func (s State) IsValid() bool {
	return s.Position.IsValid() && s.Velocity.IsValid()
}

// Uniform returns a vector with all three components set to v.
func Uniform(v float64) Vec3 {
	return Vec3{v, v, v}
}
