package engine

// Weights holds the scoring contribution of every factor. The values are
// empirically tuned and are kept as named constants rather than re-derived;
// change them only against a labelled outcome history.
type Weights struct {
	TrendFull    float64 // crossover and price agree
	TrendPartial float64 // crossover without price confirmation
	Pullback     float64 // pullback entry / extreme reversal

	MacroConfluence float64 // 1H and 4H agree
	DailyConfluence float64 // daily agrees on top of 1H/4H
	MicroConfluence float64 // 5m and 15m agree with the macro bias

	Momentum   float64 // RSI past the momentum bands
	Volatility float64 // moderate volatility bonus

	CorrelationConfirm  float64 // |corr| above the confirm band
	CorrelationDecouple float64 // |corr| below the decouple band

	RegimeAligned    float64 // macro risk regime favors the call
	MirrorDivergence float64 // mirror asset moving with us instead of against
	NewsScale        float64 // multiplier on the numeric news score
}

// DefaultWeights returns the production scoring table.
func DefaultWeights() Weights {
	return Weights{
		TrendFull:    30,
		TrendPartial: 15,
		Pullback:     30,

		MacroConfluence: 25,
		DailyConfluence: 10,
		MicroConfluence: 10,

		Momentum:   25,
		Volatility: 10,

		CorrelationConfirm:  15,
		CorrelationDecouple: 5,

		RegimeAligned:    10,
		MirrorDivergence: 15,
		NewsScale:        0.2,
	}
}

// Fixed decision bands. These pair with the weights above and move together
// with them, so they stay here rather than in config.
const (
	// decisionThreshold is the |score| needed for a directional call.
	decisionThreshold = 50

	// rsiNeutralLow/High bound the band where RSI carries no reversal signal.
	rsiNeutralLow  = 30
	rsiNeutralHigh = 70

	// rsiMomentumLow/High trigger the momentum factor.
	rsiMomentumLow  = 35
	rsiMomentumHigh = 65

	// pullbackProximityPct is how close (in fraction of EMA-fast) price must
	// sit to the fast EMA to count as a pullback entry.
	pullbackProximityPct = 0.002

	// emaExtensionWarnPct is the over-extension past EMA-fast (percent) that
	// earns a chase warning.
	emaExtensionWarnPct = 3.0

	// correlationConfirm/Decouple bound the benchmark correlation factor.
	correlationConfirm  = 0.8
	correlationDecouple = 0.3

	// newsNotablePct / newsExtremePct annotate strong news scores.
	newsNotablePct = 30
	newsExtremePct = 70

	// Reinforcement: with at least minTradesForStats resolved trades, the
	// confidence magnitude is scaled by the symbol's historical win rate.
	minTradesForStats = 5
	winRateBoostAbove = 65
	winRateCutBelow   = 45
	reinforceBoost    = 1.1
	reinforceCut      = 0.8
)
