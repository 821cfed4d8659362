package calculator

import (
	"math"
	"testing"

	"SignalPilot/internal/model"
)

func TestPearsonCorrelation(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"perfect positive", []float64{1, 2, 3, 4}, []float64{2, 4, 6, 8}, 1},
		{"perfect negative", []float64{1, 2, 3, 4}, []float64{8, 6, 4, 2}, -1},
		{"known mid", []float64{1, 2, 3, 4, 5}, []float64{2, 1, 4, 3, 5}, 0.8},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := PearsonCorrelation(tc.a, tc.b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("got %.6f, want %.6f", got, tc.want)
			}
		})
	}
}

func TestPearsonCorrelation_Errors(t *testing.T) {
	if _, err := PearsonCorrelation([]float64{1, 2}, []float64{1, 2, 3}); err == nil {
		t.Error("expected an error on length mismatch")
	}
	if _, err := PearsonCorrelation([]float64{1}, []float64{2}); err == nil {
		t.Error("expected an error on a single-point series")
	}
	if _, err := PearsonCorrelation([]float64{5, 5, 5}, []float64{1, 2, 3}); err == nil {
		t.Error("expected an error on a flat series")
	}
}

func TestReturns(t *testing.T) {
	got := Returns([]float64{100, 110, 99})
	want := []float64{0.1, -0.1}
	if len(got) != len(want) {
		t.Fatalf("got %d returns, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("returns[%d] = %.6f, want %.6f", i, got[i], want[i])
		}
	}

	if Returns([]float64{100}) != nil {
		t.Error("a single close has no returns")
	}

	// A zero close must not divide by zero.
	safe := Returns([]float64{100, 0, 50})
	if safe[1] != 0 {
		t.Errorf("return after a zero close must be 0, got %.6f", safe[1])
	}
}

func flatBars(n int, tr float64) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	for i := range bars {
		bars[i] = model.OHLCV{Open: 100, High: 100 + tr, Low: 100, Close: 100}
	}
	return bars
}

func TestCalculateATR_ConstantRange(t *testing.T) {
	// With every true range equal the smoothing is a fixed point.
	atr, err := CalculateATR(flatBars(30, 2), 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(atr-2) > 1e-9 {
		t.Errorf("constant-range ATR should equal the range, got %.6f", atr)
	}
}

func TestCalculateATR_GapCountsInTrueRange(t *testing.T) {
	// Second bar gaps up: true range measures from the prior close.
	bars := []model.OHLCV{
		{High: 101, Low: 99, Close: 100},
		{High: 112, Low: 110, Close: 111},
	}
	atr, err := CalculateATR(bars, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(atr-12) > 1e-9 {
		t.Errorf("gap ATR should be high-to-prior-close, got %.6f", atr)
	}
}

func TestCalculateATR_Errors(t *testing.T) {
	if _, err := CalculateATR(flatBars(10, 1), 14); err == nil {
		t.Error("expected an error with fewer than period+1 bars")
	}
	if _, err := CalculateATR(flatBars(10, 1), 0); err == nil {
		t.Error("expected an error on a non-positive period")
	}
}
