package tracker_test

import (
	"fmt"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/smoothdyn/internal/curve"
	"github.com/san-kum/smoothdyn/internal/dynamo"
	"github.com/san-kum/smoothdyn/internal/tracker"
)

func constant(v float64) dynamo.TargetFunc {
	return func(float64) float64 { return v }
}

// stepResponse drives a tracker from rest toward a unit target and returns
// the X positions after every tick.
func stepResponse(style curve.Style, dt, duration float64) []float64 {
	tr, err := tracker.FromStyle(style, dynamo.State{})
	Expect(err).NotTo(HaveOccurred())

	n := int(math.Round(duration / dt))
	out := make([]float64, n)
	for i := range out {
		out[i] = tr.Update(dt, constant(1)).Position.X
	}
	return out
}

func peak(xs []float64) float64 {
	m := math.Inf(-1)
	for _, x := range xs {
		m = math.Max(m, x)
	}
	return m
}

var _ = Describe("SecondOrder", func() {
	Describe("construction", func() {
		It("rejects the bezier placeholder", func() {
			tr, err := tracker.FromStyle(curve.Bezier{}, dynamo.State{})
			Expect(err).To(MatchError(dynamo.ErrUnimplementedStyle))
			Expect(tr).To(BeNil())
		})

		It("rejects a zero frequency", func() {
			_, err := tracker.FromStyle(curve.Custom{F: 0, Z: 1, R: 0}, dynamo.State{})
			Expect(err).To(MatchError(dynamo.ErrConfiguration))
		})

		It("keeps the initial state until updated", func() {
			init := dynamo.State{Position: dynamo.Vec3{X: 1, Y: 2, Z: 3}}
			tr, err := tracker.FromStyle(curve.SmoothDamped{}, init)
			Expect(err).NotTo(HaveOccurred())
			Expect(tr.State()).To(Equal(init))
			Expect(tr.Params().Style).To(Equal("smooth"))
		})
	})

	Describe("linear style", func() {
		It("tracks a constant target with zero mean error", func() {
			dt := 1e-4
			xs := stepResponse(curve.Linear{}, dt, 2.0)

			// 10 Hz undamped: average over the final second (10 full periods).
			tail := xs[len(xs)-10000:]
			sum := 0.0
			for _, x := range tail {
				sum += x
			}
			Expect(sum / float64(len(tail))).To(BeNumerically("~", 1.0, 1e-3))
			Expect(peak(xs)).To(BeNumerically("<", 2.0+1e-6))
		})

		It("stays on the target when started there", func() {
			tr, err := tracker.FromStyle(curve.Linear{}, dynamo.State{Position: dynamo.Uniform(3)})
			Expect(err).NotTo(HaveOccurred())
			for i := 0; i < 1000; i++ {
				tr.Update(0.001, constant(3))
			}
			Expect(tr.State().Position.X).To(BeNumerically("~", 3.0, 1e-12))
			Expect(tr.State().Velocity.X).To(BeNumerically("~", 0.0, 1e-12))
		})
	})

	Describe("smooth damped style", func() {
		for _, dt := range []float64{0.001, 0.01, 1.0 / 60, 0.1, 0.5} {
			dt := dt
			It(fmt.Sprintf("rises monotonically without overshoot at dt=%g", dt), func() {
				xs := stepResponse(curve.SmoothDamped{}, dt, 10)

				Expect(peak(xs)).To(BeNumerically("<=", 1.0+1e-9))
				for i := 1; i < len(xs); i++ {
					Expect(xs[i]).To(BeNumerically(">=", xs[i-1]-1e-12), "tick %d at dt=%g", i, dt)
				}
				Expect(xs[len(xs)-1]).To(BeNumerically("~", 1.0, 1e-6))
			})
		}
	})

	Describe("underdamped response", func() {
		const dt = 0.001

		It("overshoots less as damping increases", func() {
			prev := math.Inf(1)
			for _, z := range []float64{0.1, 0.2, 0.3, 0.5, 0.7, 0.9} {
				over := peak(stepResponse(curve.Custom{F: 1, Z: z, R: 0}, dt, 10)) - 1
				Expect(over).To(BeNumerically(">", 0))
				Expect(over).To(BeNumerically("<", prev), "z=%g", z)

				analytic := math.Exp(-z * math.Pi / math.Sqrt(1-z*z))
				Expect(over).To(BeNumerically("~", analytic, 0.01), "z=%g", z)
				prev = over
			}
		})

		It("oscillates at the damped natural frequency", func() {
			for _, z := range []float64{0.2, 0.3, 0.5} {
				style := curve.Custom{F: 1, Z: z, R: 0}
				p := curve.MustNew(style)
				xs := stepResponse(style, dt, 6)

				var crossings []float64
				for i := 1; i < len(xs); i++ {
					if (xs[i-1]-1)*(xs[i]-1) < 0 {
						crossings = append(crossings, float64(i)*dt)
					}
				}
				Expect(len(crossings)).To(BeNumerically(">=", 6))

				span := crossings[len(crossings)-1] - crossings[0]
				freq := float64(len(crossings)-1) / (2 * span)
				Expect(freq).To(BeNumerically("~", p.DampedFreq/(2*math.Pi), 0.02), "z=%g", z)
			}
		})
	})

	Describe("large steps", func() {
		It("stays bounded where explicit euler would diverge", func() {
			xs := stepResponse(curve.Custom{F: 10, Z: 0.5, R: 0}, 0.2, 20)
			for _, x := range xs {
				Expect(math.IsNaN(x)).To(BeFalse())
				Expect(math.Abs(x)).To(BeNumerically("<", 10))
			}
			Expect(xs[len(xs)-1]).To(BeNumerically("~", 1.0, 1e-3))
		})
	})

	Describe("Step", func() {
		p := curve.MustNew(curve.Custom{F: 2, Z: 0.6, R: 1})

		It("is the identity for a zero step", func() {
			s := dynamo.State{Position: dynamo.Vec3{X: 1, Y: -2, Z: 0.5}, Velocity: dynamo.Vec3{X: 3}}
			Expect(tracker.Step(p, s, 0, constant(10))).To(Equal(s))
		})

		It("applies the same dynamics to every axis", func() {
			s := dynamo.State{Position: dynamo.Uniform(0.25), Velocity: dynamo.Uniform(-1)}
			for i := 0; i < 100; i++ {
				s = tracker.Step(p, s, 0.01, constant(2))
			}
			Expect(s.Position.Y).To(Equal(s.Position.X))
			Expect(s.Position.Z).To(Equal(s.Position.X))
			Expect(s.Velocity.Y).To(Equal(s.Velocity.X))
		})

		It("keeps axes independent", func() {
			a := dynamo.State{Position: dynamo.Vec3{X: 0, Y: 5, Z: -5}}
			b := dynamo.State{Position: dynamo.Vec3{X: 0, Y: 0, Z: 0}}
			for i := 0; i < 50; i++ {
				a = tracker.Step(p, a, 0.01, constant(1))
				b = tracker.Step(p, b, 0.01, constant(1))
			}
			Expect(a.Position.X).To(Equal(b.Position.X))
			Expect(a.Position.Y).NotTo(Equal(b.Position.Y))
		})

		It("matches the tracker's in-place update", func() {
			s := dynamo.State{}
			tr := tracker.New(p, s)
			for i := 0; i < 10; i++ {
				s = tracker.Step(p, s, 0.02, constant(1))
				tr.Update(0.02, constant(1))
			}
			Expect(tr.State()).To(Equal(s))
		})

		It("samples the target at t = dt", func() {
			var seen []float64
			target := func(t float64) float64 {
				seen = append(seen, t)
				return 1
			}
			tracker.Step(p, dynamo.State{}, 0.05, target)
			Expect(seen).To(HaveLen(3))
			Expect(seen[0]).To(Equal(0.05))
			Expect(seen[1]).To(BeNumerically("~", 0.05, 1e-15))
		})
	})

	Describe("initial response", func() {
		const dt = 1.0 / 60
		identity := func(s float64) float64 { return s }

		It("reads a unit slope exactly from an unshifted ramp", func() {
			Expect(dynamo.Derivative(identity, dt)).To(Equal(1.0))
		})

		It("adds dt·K3/k2 to the first velocity", func() {
			still := curve.MustNew(curve.Custom{F: 1, Z: 0.5, R: 0})
			eager := curve.MustNew(curve.Custom{F: 1, Z: 0.5, R: 1})
			_, k2 := eager.Stable(dt)

			v0 := tracker.Step(still, dynamo.State{}, dt, identity).Velocity.X
			v1 := tracker.Step(eager, dynamo.State{}, dt, identity).Velocity.X

			Expect(eager.K3).To(BeNumerically(">", 0.05))
			Expect(v1 - v0).To(BeNumerically("~", dt*eager.K3/k2, 1e-12))
		})

		It("anticipates with larger r and lags with negative r", func() {
			v := func(r float64) float64 {
				p := curve.MustNew(curve.Custom{F: 1, Z: 0.5, R: r})
				return tracker.Step(p, dynamo.State{}, dt, identity).Velocity.X
			}
			Expect(v(2)).To(BeNumerically(">", v(1)))
			Expect(v(-1)).To(BeNumerically("<", v(0)))
		})
	})

	Describe("Reset", func() {
		It("replaces the state", func() {
			tr := tracker.New(curve.MustNew(curve.SmoothDamped{}), dynamo.State{})
			tr.Update(0.1, constant(1))
			tr.Reset(dynamo.State{})
			Expect(tr.State()).To(Equal(dynamo.State{}))
		})
	})
})
