package model

// Direction is the trade bias emitted by the scoring engine.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
	DirectionHold Direction = "HOLD"
)

// FactorBreakdown reports the unsigned magnitude each factor group
// contributed to the final score. Trend folds in timeframe confluence and
// pullback quality; News folds in the macro regime and mirror-asset terms.
type FactorBreakdown struct {
	Trend       float64 `json:"trend"`
	Correlation float64 `json:"correlation"`
	Momentum    float64 `json:"momentum"`
	Volatility  float64 `json:"volatility"`
	News        float64 `json:"news"`
}

// SignalResult is the output of one engine evaluation. It is produced fresh
// per call and never mutated.
type SignalResult struct {
	Direction  Direction       `json:"direction"`
	Confidence int             `json:"confidence"` // 0..100
	Score      float64         `json:"score"`      // signed total before clamping
	Breakdown  FactorBreakdown `json:"breakdown"`
	Reasons    []string        `json:"reasons"` // ordered by evaluation sequence
}

// TradeLevels carries the risk-managed prices for a signal. A HOLD produces
// the zero value, meaning "no trade".
type TradeLevels struct {
	EntryLow    float64 `json:"entryLow"`
	EntryHigh   float64 `json:"entryHigh"`
	StopLoss    float64 `json:"stopLoss"`
	TakeProfit1 float64 `json:"takeProfit1"`
	TakeProfit2 float64 `json:"takeProfit2"`
	TakeProfit3 float64 `json:"takeProfit3,omitempty"`
	ATR         float64 `json:"atr"`
}

// IsZero reports whether the levels are the degenerate no-trade set.
func (l TradeLevels) IsZero() bool {
	return l == TradeLevels{}
}
