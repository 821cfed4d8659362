package collector

import (
	"context"
	"errors"
	"testing"

	"SignalPilot/internal/marketdata"
	"SignalPilot/internal/model"
)

func TestSnapshot_AssemblesFromProvider(t *testing.T) {
	fetcher := &marketdata.MockFetcher{
		Price:  2650,
		RSIVal: 28,
		ATRVal: 15,
		EMARefs: map[int]float64{
			21:  2640,
			200: 2600,
		},
		Trends: map[string]model.TrendLabel{
			"1h":   model.TrendBullish,
			"4h":   model.TrendBullish,
			"1day": model.TrendBullish,
		},
	}
	c := New(fetcher)

	snap, err := c.Snapshot(context.Background(), "XAUUSD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snap.Symbol != "XAUUSD" || snap.Price != 2650 {
		t.Errorf("quote not carried into the snapshot: %+v", snap)
	}
	if snap.Indicators.EMAFast != 2640 || snap.Indicators.EMASlow != 2600 {
		t.Errorf("EMAs not mapped by period: %+v", snap.Indicators)
	}
	if snap.Indicators.RSI != 28 {
		t.Errorf("expected RSI 28, got %.1f", snap.Indicators.RSI)
	}
	if snap.Trends.H1 != model.TrendBullish || snap.Trends.H4 != model.TrendBullish {
		t.Errorf("macro trends not mapped: %+v", snap.Trends)
	}
	if snap.Trends.M5 != model.TrendNeutral {
		t.Errorf("unmapped interval should be neutral, got %s", snap.Trends.M5)
	}
	if snap.EMAExtension == nil {
		t.Fatal("extension should be set when EMA21 is known")
	}
	if *snap.EMAExtension < 0.3 || *snap.EMAExtension > 0.5 {
		t.Errorf("extension for 2650 over 2640 should be ~0.38%%, got %.2f", *snap.EMAExtension)
	}
	// ATR 15 on 2650 is ~0.57% of price: moderate.
	if snap.Volatility != model.VolatilityModerate {
		t.Errorf("expected moderate volatility, got %s", snap.Volatility)
	}
}

func TestSnapshot_QuoteFailureIsFatal(t *testing.T) {
	c := New(&marketdata.MockFetcher{Err: errors.New("provider down")})
	if _, err := c.Snapshot(context.Background(), "XAUUSD"); err == nil {
		t.Fatal("a snapshot without a quote must fail")
	}
}

// failAfterQuote serves the quote but fails everything else. The snapshot
// must still come out with neutral indicator defaults.
type failAfterQuote struct {
	marketdata.MockFetcher
}

func (f *failAfterQuote) Quote(ctx context.Context, symbol string) (model.Quote, error) {
	return model.Quote{Symbol: symbol, Price: f.Price}, nil
}

func TestSnapshot_DegradesIndicatorsToNeutral(t *testing.T) {
	f := &failAfterQuote{}
	f.Price = 2650
	f.Err = errors.New("indicator endpoint down")
	c := New(f)

	snap, err := c.Snapshot(context.Background(), "XAUUSD")
	if err != nil {
		t.Fatalf("indicator failures must not fail the snapshot: %v", err)
	}
	if snap.Indicators.RSI != 50 {
		t.Errorf("RSI should default to 50, got %.1f", snap.Indicators.RSI)
	}
	if snap.Indicators.EMAFast != 0 || snap.Indicators.EMASlow != 0 {
		t.Errorf("missing EMAs should stay zero (trend disabled), got %+v", snap.Indicators)
	}
	for _, trend := range []model.TrendLabel{snap.Trends.M5, snap.Trends.H1, snap.Trends.D1} {
		if trend != model.TrendNeutral {
			t.Errorf("unavailable trends should be neutral, got %s", trend)
		}
	}
	// No provider ATR, no bars: the percentage fallback still yields a
	// positive moderate band for gold.
	if snap.Volatility != model.VolatilityModerate {
		t.Errorf("expected moderate volatility from fallback ATR, got %s", snap.Volatility)
	}
}

func TestATR_FallbackChain(t *testing.T) {
	ctx := context.Background()

	// Provider ATR wins when present.
	c := New(&marketdata.MockFetcher{Price: 2650, ATRVal: 12})
	if atr := c.ATR(ctx, "XAUUSD", 2650); atr != 12 {
		t.Errorf("expected provider ATR 12, got %.2f", atr)
	}

	// No provider ATR: derive from bars.
	bars := make([]model.OHLCV, 30)
	for i := range bars {
		bars[i] = model.OHLCV{Open: 2650, High: 2655, Low: 2645, Close: 2650}
	}
	c = New(&marketdata.MockFetcher{Price: 2650, Bars: bars})
	if atr := c.ATR(ctx, "XAUUSD", 2650); atr < 9.99 || atr > 10.01 {
		t.Errorf("expected bar-derived ATR ~10, got %.2f", atr)
	}

	// Nothing at all: percentage-of-price fallback, 1.2% for gold.
	c = New(&marketdata.MockFetcher{Price: 2650, Err: errors.New("down")})
	want := 2650 * 0.012
	if atr := c.ATR(ctx, "XAUUSD", 2650); atr != want {
		t.Errorf("expected fallback ATR %.2f, got %.2f", want, atr)
	}
}

func TestCorrelation(t *testing.T) {
	ctx := context.Background()

	c := New(&marketdata.MockFetcher{Price: 2650})
	if corr := c.Correlation(ctx, "XAUUSD", "XAUUSD"); corr != 1.0 {
		t.Errorf("self-correlation must be 1, got %.2f", corr)
	}
	if corr := c.Correlation(ctx, "XAUUSD", ""); corr != 1.0 {
		t.Errorf("an empty benchmark must short-circuit to 1, got %.2f", corr)
	}

	// Mock bars follow the same deterministic ramp for both symbols.
	if corr := c.Correlation(ctx, "XAUUSD", "SPX"); corr < 0.99 {
		t.Errorf("identical return series should correlate at 1, got %.4f", corr)
	}

	failing := New(&marketdata.MockFetcher{Err: errors.New("down")})
	if corr := failing.Correlation(ctx, "XAUUSD", "SPX"); corr != 0 {
		t.Errorf("series failures must degrade to 0, got %.2f", corr)
	}
}
