// Package analysis characterizes recorded tracker trajectories.
//
//   - [PowerSpectrum], [DominantFrequency]: FFT via gonum's dsp/fourier
//   - [CrossingFrequency]: oscillation frequency from level crossings
//   - [Summarize]: mean, spread and range of a trace
//   - [PhasePortrait]: position/velocity plane of one axis, with ASCII rendering
//
// # Damped Frequency
//
// An underdamped tracker rings at dampedFreq/2π about its target:
//
//	f := analysis.CrossingFrequency(res.Positions(0), 1.0, dt)
package analysis
