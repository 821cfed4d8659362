// Package collector assembles MarketSnapshots from the market-data provider.
// Every optional input degrades to a neutral default here, at the snapshot
// boundary, so the scoring engine never deals with missing data itself.
package collector

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"SignalPilot/internal/calculator"
	"SignalPilot/internal/marketdata"
	"SignalPilot/internal/model"
)

// Indicator parameters for the evaluation timeframe.
const (
	emaFastPeriod = 21
	emaSlowPeriod = 200
	rsiPeriod     = 14
	atrPeriod     = 14
	evalInterval  = "1h"

	correlationBars = 50
)

// Collector orchestrates provider calls into one immutable snapshot.
type Collector struct {
	fetcher marketdata.Fetcher
}

// New creates a Collector over the given fetcher.
func New(fetcher marketdata.Fetcher) *Collector {
	return &Collector{fetcher: fetcher}
}

// Snapshot builds the market view for one symbol. Only the quote is
// mandatory; every indicator that cannot be fetched is logged and replaced
// with its neutral value.
func (c *Collector) Snapshot(ctx context.Context, symbol string) (*model.MarketSnapshot, error) {
	quote, err := c.fetcher.Quote(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch quote: %w", err)
	}

	snap := &model.MarketSnapshot{
		Symbol:     symbol,
		Price:      quote.Price,
		Open:       quote.Open,
		High:       quote.High,
		Low:        quote.Low,
		Close:      quote.Price,
		Regime:     model.RegimeNeutral,
		Volatility: model.VolatilityModerate,
	}

	if ema, err := c.fetcher.EMA(ctx, symbol, emaFastPeriod, evalInterval); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("EMA21 unavailable, trend factor disabled")
	} else {
		snap.Indicators.EMAFast = ema
	}

	if ema, err := c.fetcher.EMA(ctx, symbol, emaSlowPeriod, evalInterval); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("EMA200 unavailable, trend factor disabled")
	} else {
		snap.Indicators.EMASlow = ema
	}

	if rsi, err := c.fetcher.RSI(ctx, symbol, rsiPeriod, evalInterval); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("RSI unavailable, defaulting to 50")
		snap.Indicators.RSI = 50
	} else {
		snap.Indicators.RSI = rsi
	}

	if adx, err := c.fetcher.ADX(ctx, symbol, rsiPeriod, evalInterval); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("ADX unavailable")
	} else {
		snap.Indicators.ADX = adx
	}

	if macd, err := c.fetcher.MACD(ctx, symbol, evalInterval); err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("MACD unavailable")
	} else {
		snap.Indicators.MACD = macd
	}

	snap.Trends = model.TimeframeTrends{
		M5:  c.trend(ctx, symbol, "5min"),
		M15: c.trend(ctx, symbol, "15min"),
		H1:  c.trend(ctx, symbol, "1h"),
		H4:  c.trend(ctx, symbol, "4h"),
		D1:  c.trend(ctx, symbol, "1day"),
	}

	atr := c.ATR(ctx, symbol, quote.Price)
	snap.Volatility = classifyVolatility(atr, quote.Price)

	if snap.Indicators.EMAFast > 0 {
		ext := (quote.Price - snap.Indicators.EMAFast) / snap.Indicators.EMAFast * 100
		snap.EMAExtension = &ext
	}

	return snap, nil
}

func (c *Collector) trend(ctx context.Context, symbol, interval string) model.TrendLabel {
	label, err := c.fetcher.Trend(ctx, symbol, interval)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Str("interval", interval).
			Msg("trend unavailable, treating as neutral")
		return model.TrendNeutral
	}
	return label
}

// ATR returns the volatility unit for the symbol: the provider's ATR when it
// has one, a bar-derived ATR second, and the per-asset percentage fallback
// last. Always positive for a positive price.
func (c *Collector) ATR(ctx context.Context, symbol string, price float64) float64 {
	if atr, err := c.fetcher.ATR(ctx, symbol, atrPeriod, evalInterval); err == nil && atr > 0 {
		return atr
	}

	if bars, err := c.fetcher.Series(ctx, symbol, evalInterval, atrPeriod*4); err == nil {
		if atr, err := calculator.CalculateATR(bars, atrPeriod); err == nil && atr > 0 {
			return atr
		}
	}

	mult := marketdata.FallbackATRMultiplier(symbol)
	log.Info().Str("symbol", symbol).Float64("multiplier", mult).
		Msg("using fallback ATR")
	return price * mult
}

// Correlation computes the benchmark correlation over recent daily returns.
// Anything that goes wrong degrades to 0, the neutral coefficient.
func (c *Collector) Correlation(ctx context.Context, symbol, benchmark string) float64 {
	if benchmark == "" || symbol == benchmark {
		return 1.0
	}

	a, err := c.fetcher.Series(ctx, symbol, "1day", correlationBars)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("correlation series unavailable")
		return 0
	}
	b, err := c.fetcher.Series(ctx, benchmark, "1day", correlationBars)
	if err != nil {
		log.Warn().Err(err).Str("symbol", benchmark).Msg("correlation series unavailable")
		return 0
	}

	n := min(len(a), len(b))
	closesA := make([]float64, n)
	closesB := make([]float64, n)
	for i := 0; i < n; i++ {
		closesA[i] = a[len(a)-n+i].Close
		closesB[i] = b[len(b)-n+i].Close
	}

	corr, err := calculator.PearsonCorrelation(calculator.Returns(closesA), calculator.Returns(closesB))
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Str("benchmark", benchmark).
			Msg("correlation calculation failed")
		return 0
	}
	return corr
}

// Volatility classification bands, ATR as a fraction of price.
const (
	volLowBelow     = 0.003
	volExtremeAbove = 0.02
)

func classifyVolatility(atr, price float64) model.VolatilityLabel {
	if price <= 0 || atr <= 0 {
		return model.VolatilityModerate
	}
	ratio := atr / price
	switch {
	case ratio < volLowBelow:
		return model.VolatilityLow
	case ratio > volExtremeAbove:
		return model.VolatilityExtreme
	}
	return model.VolatilityModerate
}
