package analysis

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CrossingFrequency estimates the oscillation frequency of data about level
// from the spacing of its crossings, interpolated between samples. It
// returns 0 when there are fewer than two crossings.
func CrossingFrequency(data []float64, level, dt float64) float64 {
	var first, last float64
	n := 0

	for i := 1; i < len(data); i++ {
		a, b := data[i-1]-level, data[i]-level
		if a*b >= 0 {
			continue
		}
		t := (float64(i-1) + a/(a-b)) * dt
		if n == 0 {
			first = t
		}
		last = t
		n++
	}

	if n < 2 || last == first {
		return 0
	}
	// Consecutive crossings are half a period apart.
	return float64(n-1) / (2 * (last - first))
}

type Summary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize returns basic statistics for data. An empty trace yields the
// zero Summary.
func Summarize(data []float64) Summary {
	if len(data) == 0 {
		return Summary{}
	}
	s := Summary{
		Mean: stat.Mean(data, nil),
		Min:  floats.Min(data),
		Max:  floats.Max(data),
	}
	if len(data) > 1 {
		s.StdDev = stat.StdDev(data, nil)
	}
	return s
}
