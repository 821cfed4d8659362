package engine

import (
	"fmt"
	"math"
	"strings"

	"SignalPilot/internal/model"
)

// factor is one scored contribution with its human-readable trail.
type factor struct {
	Points  float64
	Reasons []string
}

func (f factor) note(format string, args ...any) factor {
	f.Reasons = append(f.Reasons, fmt.Sprintf(format, args...))
	return f
}

// crossoverDirection classifies the EMA-fast vs EMA-slow relation:
// +1 bullish, -1 bearish, 0 unknown or flat.
func crossoverDirection(ind model.Indicators) int {
	if ind.EMAFast == 0 || ind.EMASlow == 0 {
		return 0
	}
	switch {
	case ind.EMAFast > ind.EMASlow:
		return 1
	case ind.EMAFast < ind.EMASlow:
		return -1
	}
	return 0
}

// scoreTrend scores the EMA crossover, full weight when price confirms the
// crossover side, partial weight when it does not.
func (e *Engine) scoreTrend(snap *model.MarketSnapshot) factor {
	dir := crossoverDirection(snap.Indicators)
	if dir == 0 {
		return factor{}
	}

	fast := snap.Indicators.EMAFast
	if dir > 0 {
		if snap.Price > fast {
			return factor{Points: e.w.TrendFull}.
				note("Price above EMA21 with EMA21 above EMA200 (strong uptrend)")
		}
		return factor{Points: e.w.TrendPartial}.
			note("EMA21 above EMA200 but price below EMA21 (uptrend unconfirmed)")
	}
	if snap.Price < fast {
		return factor{Points: -e.w.TrendFull}.
			note("Price below EMA21 with EMA21 below EMA200 (strong downtrend)")
	}
	return factor{Points: -e.w.TrendPartial}.
		note("EMA21 below EMA200 but price above EMA21 (downtrend unconfirmed)")
}

// scorePullback detects a with-trend pullback entry at the fast EMA, or an
// extreme reversal when RSI leaves the neutral band on the wrong side of it.
// The two setups are mutually exclusive; the pullback wins.
func (e *Engine) scorePullback(snap *model.MarketSnapshot) factor {
	ind := snap.Indicators
	dir := crossoverDirection(ind)

	if dir != 0 && ind.RSI >= rsiNeutralLow && ind.RSI <= rsiNeutralHigh {
		proximity := math.Abs(snap.Price-ind.EMAFast) / ind.EMAFast
		onTrendSide := (dir > 0 && snap.Price >= ind.EMAFast) ||
			(dir < 0 && snap.Price <= ind.EMAFast)
		if proximity <= pullbackProximityPct && onTrendSide {
			if dir > 0 {
				return factor{Points: e.w.Pullback}.
					note("Pullback to EMA21 in an uptrend (scalping entry)")
			}
			return factor{Points: -e.w.Pullback}.
				note("Pullback to EMA21 in a downtrend (scalping entry)")
		}
		return factor{}
	}

	if ind.RSI < rsiNeutralLow && snap.Close < ind.EMAFast && ind.EMAFast > 0 {
		return factor{Points: e.w.Pullback}.
			note("Extreme oversold below EMA21, reversal setup")
	}
	if ind.RSI > rsiNeutralHigh && snap.Close > ind.EMAFast && ind.EMAFast > 0 {
		return factor{Points: -e.w.Pullback}.
			note("Extreme overbought above EMA21, reversal setup")
	}
	return factor{}
}

func trendSign(t model.TrendLabel) int {
	switch t {
	case model.TrendBullish:
		return 1
	case model.TrendBearish:
		return -1
	}
	return 0
}

// scoreConfluence scores multi-timeframe agreement. The macro bias comes from
// 1H/4H; the daily and the micro pair add on top of it. Disagreement scores
// nothing but leaves a caution in the trail.
func (e *Engine) scoreConfluence(snap *model.MarketSnapshot) factor {
	tr := snap.Trends
	h1, h4 := trendSign(tr.H1), trendSign(tr.H4)

	if h1 != 0 && h4 != 0 && h1 != h4 {
		return factor{}.note("Caution: 1H and 4H timeframes disagree, no confluence")
	}
	bias := h1
	if bias == 0 {
		bias = h4
	}
	if bias == 0 {
		return factor{}
	}
	if h1 != h4 {
		// Only one macro timeframe has an opinion; not enough for confluence.
		return factor{}.note("Caution: only one macro timeframe is directional")
	}

	side := strings.ToLower(string(tr.H1))
	f := factor{Points: e.w.MacroConfluence * float64(bias)}.
		note("1H and 4H timeframes agree (%s)", side)

	if trendSign(tr.D1) == bias {
		f.Points += e.w.DailyConfluence * float64(bias)
		f = f.note("Daily timeframe confirms the %s bias", side)
	}
	if trendSign(tr.M5) == bias && trendSign(tr.M15) == bias {
		f.Points += e.w.MicroConfluence * float64(bias)
		f = f.note("5m and 15m align with the %s bias", side)
	}
	return f
}

// scoreMomentum scores RSI past the momentum bands.
func (e *Engine) scoreMomentum(snap *model.MarketSnapshot) factor {
	rsi := snap.Indicators.RSI
	switch {
	case rsi == 0:
		return factor{} // indicator unavailable
	case rsi < rsiMomentumLow:
		return factor{Points: e.w.Momentum}.note("RSI %.0f signals bullish momentum build-up", rsi)
	case rsi > rsiMomentumHigh:
		return factor{Points: -e.w.Momentum}.note("RSI %.0f signals bearish momentum build-up", rsi)
	}
	return factor{}
}

// scoreVolatility only ever adds: moderate volatility stabilizes a signal,
// extremes contribute nothing rather than penalizing.
func (e *Engine) scoreVolatility(snap *model.MarketSnapshot) factor {
	if snap.Volatility == model.VolatilityModerate {
		return factor{Points: e.w.Volatility}.note("Moderate volatility supports the setup")
	}
	return factor{}
}

// scoreCorrelation scores the benchmark correlation relative to the baseline
// direction: strong coupling confirms the call, decoupling shaves it.
func (e *Engine) scoreCorrelation(correlation float64, baseline float64) factor {
	side := sign(baseline)
	if side == 0 {
		return factor{}
	}
	abs := math.Abs(correlation)
	switch {
	case abs > correlationConfirm:
		return factor{Points: e.w.CorrelationConfirm * float64(side)}.
			note("Benchmark correlation %.2f confirms the move", correlation)
	case abs < correlationDecouple:
		return factor{Points: -e.w.CorrelationDecouple * float64(side)}.
			note("Caution: correlation %.2f, decoupled from benchmark", correlation)
	}
	return factor{}
}

// safeHaven reports whether the symbol trades as a safe-haven asset.
func safeHaven(symbol string) bool {
	s := strings.ToUpper(symbol)
	for _, marker := range []string{"XAU", "GOLD", "XAG", "JPY", "CHF"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// scoreMacroNews folds in the macro risk regime, the EMA over-extension
// warning, the mirror-asset divergence check and the numeric news score.
// bias is the sign of the baseline score; regime and mirror terms scale or
// shave that bias rather than carrying their own direction.
func (e *Engine) scoreMacroNews(snap *model.MarketSnapshot, baseline float64) factor {
	var f factor
	bias := sign(baseline)

	// Macro regime alignment.
	if bias != 0 && snap.Regime != model.RegimeNeutral && snap.Regime != "" {
		regimeBias := 1 // favors risk assets
		if snap.Regime == model.RegimeRiskOff {
			regimeBias = -1
		}
		if safeHaven(snap.Symbol) {
			regimeBias = -regimeBias
		}
		if regimeBias == bias {
			f.Points += e.w.RegimeAligned * float64(bias)
			f = f.note("%s regime favors this asset class", snap.Regime)
		}
	}

	// Over-extension past EMA-fast: soft warning only, no score change.
	if ext := snap.EMAExtension; ext != nil && bias != 0 {
		if (bias > 0 && *ext > emaExtensionWarnPct) || (bias < 0 && *ext < -emaExtensionWarnPct) {
			f = f.note("Caution: price extended %.1f%% past EMA21, late entry risk", *ext)
		}
	}

	// A negatively-correlated mirror asset should move against us. Moving
	// with us means one of the two reads is wrong.
	if delta := snap.MirrorDelta; delta != nil && bias != 0 {
		if sign(*delta) == bias {
			f.Points -= e.w.MirrorDivergence * float64(bias)
			f = f.note("Warning: mirror asset moving the same way (%+.1f%%), divergence from expected inverse", *delta)
		}
	}

	// Numeric news sentiment, scaled.
	if news := snap.News; news != nil && news.Score != 0 {
		f.Points += news.Score * e.w.NewsScale
		if math.Abs(news.Score) > newsExtremePct {
			f = f.note("Warning: extreme news sentiment %.0f (%s)", news.Score, news.Label)
		} else if math.Abs(news.Score) > newsNotablePct {
			f = f.note("News sentiment %.0f (%s) weighs on the score", news.Score, news.Label)
		}
	}

	return f
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
