package match

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// SampleStats summarises the spread of per sample mean payoffs.
type SampleStats struct {
	Samples int
	MeanA   float64
	MeanB   float64
	StdDevA float64
	StdDevB float64
	StdErrA float64
	StdErrB float64
}

// Stats is only meaningful after Play. With a single sample the
// deviations are zero.
func (m *Match) Stats() SampleStats {
	n := len(m.sampleA)
	if n == 0 {
		return SampleStats{}
	}

	s := SampleStats{Samples: n}
	s.MeanA, s.StdDevA = meanStdDev(m.sampleA)
	s.MeanB, s.StdDevB = meanStdDev(m.sampleB)
	s.StdErrA = stat.StdErr(s.StdDevA, float64(n))
	s.StdErrB = stat.StdErr(s.StdDevB, float64(n))

	return s
}

func meanStdDev(x []float64) (float64, float64) {
	if len(x) < 2 {
		return x[0], 0
	}
	mean, std := stat.MeanStdDev(x, nil)
	if math.IsNaN(std) {
		std = 0
	}
	return mean, std
}
