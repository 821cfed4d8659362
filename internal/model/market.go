package model

import "time"

// TrendLabel classifies the directional bias of a single timeframe.
type TrendLabel string

const (
	TrendBullish TrendLabel = "Bullish"
	TrendBearish TrendLabel = "Bearish"
	TrendNeutral TrendLabel = "Neutral"
)

// RiskRegime is the macro risk environment.
type RiskRegime string

const (
	RegimeRiskOn  RiskRegime = "Risk-On"
	RegimeRiskOff RiskRegime = "Risk-Off"
	RegimeNeutral RiskRegime = "Neutral"
)

// VolatilityLabel buckets current realized volatility.
type VolatilityLabel string

const (
	VolatilityLow      VolatilityLabel = "Low"
	VolatilityModerate VolatilityLabel = "Moderate"
	VolatilityExtreme  VolatilityLabel = "Extreme"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Quote is the latest traded price with its session OHLC.
type Quote struct {
	Symbol string
	Price  float64
	Open   float64
	High   float64
	Low    float64
}

// Indicators holds the indicator set for the evaluation timeframe.
type Indicators struct {
	RSI     float64
	EMAFast float64 // EMA(21)
	EMASlow float64 // EMA(200)
	ADX     float64
	MACD    float64
}

// TimeframeTrends labels the bias per timeframe, micro to daily.
type TimeframeTrends struct {
	M5  TrendLabel
	M15 TrendLabel
	H1  TrendLabel
	H4  TrendLabel
	D1  TrendLabel
}

// NewsSentiment is a pre-labelled news read for the symbol.
type NewsSentiment struct {
	Label    string  // "Bullish" / "Bearish" / "Neutral"
	Strength string  // "Low" / "Moderate" / "High"
	Score    float64 // -100 .. +100
}

// MarketSnapshot is everything the scoring engine knows about a symbol at one
// instant. Optional fields are pointers; nil means "not available" and
// contributes nothing to the score. A snapshot is never mutated after
// construction.
type MarketSnapshot struct {
	Symbol string
	Price  float64
	Open   float64
	High   float64
	Low    float64
	Close  float64

	Indicators Indicators
	Trends     TimeframeTrends
	Volatility VolatilityLabel
	Regime     RiskRegime

	// EMAExtension is how far price sits from EMA-fast, in percent.
	EMAExtension *float64
	// MirrorDelta is the recent move of a negatively-correlated mirror asset,
	// in percent. Positive means the mirror is rising.
	MirrorDelta *float64
	News        *NewsSentiment
}
