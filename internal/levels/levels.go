// Package levels derives entry/stop/target prices from a volatility unit.
package levels

import (
	"SignalPilot/internal/model"
)

// entryZonePct is the half-width of the entry zone, tight for scalping.
const entryZonePct = 0.001

// Calculator derives trade levels from price and an ATR distance. The ladders
// are the TP distances in ATR multiples; the long and short ladders differ in
// the default table and are deliberately kept configurable.
type Calculator struct {
	BuyLadder  [3]float64
	SellLadder [3]float64
}

// NewCalculator returns a Calculator with the production ladders.
func NewCalculator() *Calculator {
	return &Calculator{
		BuyLadder:  [3]float64{1.0, 1.5, 2.0},
		SellLadder: [3]float64{1.0, 1.5, 2.5},
	}
}

// Calculate returns the level set for one signal. HOLD yields the zero value,
// meaning "no trade". atr is the unit distance; callers without a real ATR
// pass a percentage-of-price approximation.
func (c *Calculator) Calculate(price float64, direction model.Direction, atr float64) model.TradeLevels {
	if direction == model.DirectionHold || price <= 0 {
		return model.TradeLevels{}
	}

	lv := model.TradeLevels{
		EntryLow:  price * (1 - entryZonePct),
		EntryHigh: price * (1 + entryZonePct),
		ATR:       atr,
	}

	if direction == model.DirectionBuy {
		lv.StopLoss = price - atr
		lv.TakeProfit1 = price + atr*c.BuyLadder[0]
		lv.TakeProfit2 = price + atr*c.BuyLadder[1]
		lv.TakeProfit3 = price + atr*c.BuyLadder[2]
		return lv
	}

	lv.StopLoss = price + atr
	lv.TakeProfit1 = price - atr*c.SellLadder[0]
	lv.TakeProfit2 = price - atr*c.SellLadder[1]
	lv.TakeProfit3 = price - atr*c.SellLadder[2]
	return lv
}
