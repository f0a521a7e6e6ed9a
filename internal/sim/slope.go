package sim

import (
	"math"

	"github.com/san-kum/smoothdyn/internal/dynamo"
)

// SlopeResolved reports whether the tracker's slope estimate follows target
// over a run with cfg. The tracker differentiates over one ulp of dt, but
// Run hands it the target shifted by the tick start, so both samples land
// near t+dt where floats are spaced far wider. On a target with a real
// slope they round to the same value on most ticks and the estimate is
// zero, with spikes where rounding crosses a float boundary. When this
// returns false the r term has almost no influence on the run.
//
// Jumps are ignored: the estimate misses them at any t.
func SlopeResolved(target dynamo.TargetFunc, cfg Config) bool {
	if cfg.Dt <= 0 {
		return true
	}
	steps := int(math.Round(cfg.Duration / cfg.Dt))
	c := &clock{target: target}
	for i := 0; i < steps; i++ {
		c.t = float64(i) * cfg.Dt
		ref, ok := smoothSlope(target, c.t+cfg.Dt, cfg.Dt/4)
		if !ok {
			continue
		}
		got := dynamo.Derivative(c.at, cfg.Dt)
		if math.Abs(got-ref) > 0.5*math.Abs(ref) {
			return false
		}
	}
	return true
}

// smoothSlope is a central difference about t. It fails where the target is
// flat or where halving h changes the estimate by more than a quarter, as
// it does across a jump.
func smoothSlope(f dynamo.TargetFunc, t, h float64) (float64, bool) {
	wide := (f(t+h) - f(t-h)) / (2 * h)
	narrow := (f(t+h/2) - f(t-h/2)) / h
	if math.IsNaN(wide) || math.IsNaN(narrow) || (wide == 0 && narrow == 0) {
		return 0, false
	}
	if math.Abs(wide-narrow) > 0.25*math.Max(math.Abs(wide), math.Abs(narrow)) {
		return 0, false
	}
	return narrow, true
}
