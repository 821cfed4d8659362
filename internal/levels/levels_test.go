package levels

import (
	"math"
	"testing"

	"SignalPilot/internal/model"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculate_HoldYieldsNoTrade(t *testing.T) {
	c := NewCalculator()
	if lv := c.Calculate(2650, model.DirectionHold, 12); !lv.IsZero() {
		t.Errorf("HOLD must yield the zero level set, got %+v", lv)
	}
	if lv := c.Calculate(0, model.DirectionBuy, 12); !lv.IsZero() {
		t.Errorf("non-positive price must yield the zero level set, got %+v", lv)
	}
}

func TestCalculate_BuyOrdering(t *testing.T) {
	c := NewCalculator()
	lv := c.Calculate(2650, model.DirectionBuy, 12)

	if lv.StopLoss != 2650-12 {
		t.Errorf("expected stop at price-ATR, got %.2f", lv.StopLoss)
	}
	if lv.TakeProfit1 != 2650+12 || lv.TakeProfit2 != 2650+18 || lv.TakeProfit3 != 2650+24 {
		t.Errorf("unexpected long targets: %.2f %.2f %.2f", lv.TakeProfit1, lv.TakeProfit2, lv.TakeProfit3)
	}
	if !(lv.StopLoss < lv.EntryLow && lv.EntryLow < lv.EntryHigh &&
		lv.EntryHigh < lv.TakeProfit1 && lv.TakeProfit1 < lv.TakeProfit2 && lv.TakeProfit2 < lv.TakeProfit3) {
		t.Errorf("long levels out of order: %+v", lv)
	}
}

func TestCalculate_SellOrdering(t *testing.T) {
	c := NewCalculator()
	lv := c.Calculate(2650, model.DirectionSell, 12)

	if lv.StopLoss != 2650+12 {
		t.Errorf("expected stop at price+ATR, got %.2f", lv.StopLoss)
	}
	// The short ladder runs its last target further out than the long ladder.
	if lv.TakeProfit1 != 2650-12 || lv.TakeProfit2 != 2650-18 || lv.TakeProfit3 != 2650-30 {
		t.Errorf("unexpected short targets: %.2f %.2f %.2f", lv.TakeProfit1, lv.TakeProfit2, lv.TakeProfit3)
	}
	if !(lv.StopLoss > lv.EntryHigh && lv.EntryHigh > lv.EntryLow &&
		lv.EntryLow > lv.TakeProfit1 && lv.TakeProfit1 > lv.TakeProfit2 && lv.TakeProfit2 > lv.TakeProfit3) {
		t.Errorf("short levels out of order: %+v", lv)
	}
}

func TestCalculate_EntryZoneWidth(t *testing.T) {
	c := NewCalculator()
	lv := c.Calculate(1000, model.DirectionBuy, 5)

	if !approx(lv.EntryLow, 999) || !approx(lv.EntryHigh, 1001) {
		t.Errorf("expected a 0.1%% entry zone around price, got [%.3f, %.3f]", lv.EntryLow, lv.EntryHigh)
	}
	if lv.ATR != 5 {
		t.Errorf("level set must carry the ATR used, got %.2f", lv.ATR)
	}
}

func TestCalculate_CustomLadder(t *testing.T) {
	c := &Calculator{
		BuyLadder:  [3]float64{0.5, 1.0, 3.0},
		SellLadder: [3]float64{0.5, 1.0, 3.0},
	}
	lv := c.Calculate(100, model.DirectionBuy, 2)

	if lv.TakeProfit1 != 101 || lv.TakeProfit2 != 102 || lv.TakeProfit3 != 106 {
		t.Errorf("custom ladder not applied: %.2f %.2f %.2f", lv.TakeProfit1, lv.TakeProfit2, lv.TakeProfit3)
	}
}
