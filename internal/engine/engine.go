package engine

import (
	"fmt"
	"math"

	"SignalPilot/internal/model"
)

// Engine turns a market snapshot into a directional call with a confidence
// breakdown. Evaluate is pure: identical inputs always produce identical
// output, and evaluation never fails on missing optional data.
type Engine struct {
	w Weights
}

// New creates an Engine with the given weight table.
func New(w Weights) *Engine {
	return &Engine{w: w}
}

// Evaluate scores snap against the benchmark correlation and the symbol's
// historical stats. stats is a read snapshot from the journal; passing the
// zero value means "no history".
func (e *Engine) Evaluate(snap *model.MarketSnapshot, correlation float64, stats model.SymbolStats) *model.SignalResult {
	trend := e.scoreTrend(snap)
	pullback := e.scorePullback(snap)
	confluence := e.scoreConfluence(snap)
	momentum := e.scoreMomentum(snap)
	volatility := e.scoreVolatility(snap)

	baseline := trend.Points + pullback.Points + confluence.Points +
		momentum.Points + volatility.Points

	corr := e.scoreCorrelation(correlation, baseline)
	macro := e.scoreMacroNews(snap, baseline)

	total := baseline + corr.Points + macro.Points

	// Direction comes from the raw total; the reinforcement term scales
	// confidence only, never the call itself.
	direction := model.DirectionHold
	switch {
	case total >= decisionThreshold:
		direction = model.DirectionBuy
	case total <= -decisionThreshold:
		direction = model.DirectionSell
	}

	reasons := make([]string, 0, 8)
	reasons = append(reasons, trend.Reasons...)
	reasons = append(reasons, pullback.Reasons...)
	reasons = append(reasons, confluence.Reasons...)
	reasons = append(reasons, momentum.Reasons...)
	reasons = append(reasons, volatility.Reasons...)
	reasons = append(reasons, corr.Reasons...)
	reasons = append(reasons, macro.Reasons...)

	adjusted, adjustReason := e.reinforce(total, snap.Symbol, stats)
	if adjustReason != "" {
		reasons = append(reasons, adjustReason)
	}

	confidence := int(math.Round(math.Min(math.Abs(adjusted), 100)))

	return &model.SignalResult{
		Direction:  direction,
		Confidence: confidence,
		Score:      total,
		Breakdown: model.FactorBreakdown{
			Trend:       math.Abs(trend.Points) + math.Abs(pullback.Points) + math.Abs(confluence.Points),
			Correlation: math.Abs(corr.Points),
			Momentum:    math.Abs(momentum.Points),
			Volatility:  math.Abs(volatility.Points),
			News:        math.Abs(macro.Points),
		},
		Reasons: reasons,
	}
}

// reinforce scales the score magnitude by the symbol's historical win rate.
// This is the only feedback path from past outcomes into present decisions.
func (e *Engine) reinforce(total float64, symbol string, stats model.SymbolStats) (float64, string) {
	if stats.TotalTrades < minTradesForStats {
		return total, ""
	}
	switch {
	case stats.WinRate > winRateBoostAbove:
		return total * reinforceBoost,
			fmt.Sprintf("Historical win rate %d%% on %s raises confidence", stats.WinRate, symbol)
	case stats.WinRate < winRateCutBelow:
		return total * reinforceCut,
			fmt.Sprintf("Historical win rate %d%% on %s lowers confidence", stats.WinRate, symbol)
	}
	return total, ""
}
