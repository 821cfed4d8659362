package calculator

import (
	"errors"
	"math"
)

// PearsonCorrelation computes the correlation coefficient between two equal-
// length series. Returns an error when the series are too short, mismatched,
// or flat (zero variance).
func PearsonCorrelation(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.New("series length mismatch")
	}
	if len(a) < 2 {
		return 0, errors.New("not enough data for correlation")
	}

	n := float64(len(a))
	var sumA, sumB float64
	for i := range a {
		sumA += a[i]
		sumB += b[i]
	}
	meanA, meanB := sumA/n, sumB/n

	var cov, varA, varB float64
	for i := range a {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0, errors.New("zero variance series")
	}
	return cov / math.Sqrt(varA*varB), nil
}

// Returns is the bar-to-bar percentage change series of closes, one shorter
// than the input. Correlating returns rather than raw prices avoids spurious
// correlation from shared drift.
func Returns(closes []float64) []float64 {
	if len(closes) < 2 {
		return nil
	}
	out := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (closes[i]-closes[i-1])/closes[i-1])
	}
	return out
}
