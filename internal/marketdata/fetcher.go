// Package marketdata talks to the market-data provider. The core treats it
// as a collaborator: anything it cannot supply degrades to a neutral input
// upstream instead of failing an evaluation.
package marketdata

import (
	"context"
	"time"

	"SignalPilot/internal/model"
)

// Fetcher defines the provider surface the collector and verifier consume.
type Fetcher interface {
	Quote(ctx context.Context, symbol string) (model.Quote, error)
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
	EMA(ctx context.Context, symbol string, period int, interval string) (float64, error)
	RSI(ctx context.Context, symbol string, period int, interval string) (float64, error)
	ADX(ctx context.Context, symbol string, period int, interval string) (float64, error)
	MACD(ctx context.Context, symbol, interval string) (float64, error)
	ATR(ctx context.Context, symbol string, period int, interval string) (float64, error)
	Trend(ctx context.Context, symbol, interval string) (model.TrendLabel, error)
	Series(ctx context.Context, symbol, interval string, size int) ([]model.OHLCV, error)
	Name() string
}

// MockFetcher returns controllable fixed data for development and testing.
// Zero fields fall back to values derived from Price.
type MockFetcher struct {
	Price   float64
	RSIVal  float64
	ADXVal  float64
	MACDVal float64
	ATRVal  float64
	EMARefs map[int]float64               // period -> value
	Trends  map[string]model.TrendLabel   // interval -> label
	Bars    []model.OHLCV
	Err     error // returned by every call when set
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Quote(_ context.Context, symbol string) (model.Quote, error) {
	if m.Err != nil {
		return model.Quote{}, m.Err
	}
	return model.Quote{
		Symbol: symbol,
		Price:  m.Price,
		Open:   m.Price * 0.999,
		High:   m.Price * 1.005,
		Low:    m.Price * 0.995,
	}, nil
}

func (m *MockFetcher) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	q, err := m.Quote(ctx, symbol)
	return q.Price, err
}

func (m *MockFetcher) EMA(_ context.Context, _ string, period int, _ string) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	if v, ok := m.EMARefs[period]; ok {
		return v, nil
	}
	return m.Price, nil
}

func (m *MockFetcher) RSI(_ context.Context, _ string, _ int, _ string) (float64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	if m.RSIVal != 0 {
		return m.RSIVal, nil
	}
	return 50, nil
}

func (m *MockFetcher) ADX(_ context.Context, _ string, _ int, _ string) (float64, error) {
	return m.ADXVal, m.Err
}

func (m *MockFetcher) MACD(_ context.Context, _, _ string) (float64, error) {
	return m.MACDVal, m.Err
}

func (m *MockFetcher) ATR(_ context.Context, _ string, _ int, _ string) (float64, error) {
	return m.ATRVal, m.Err
}

func (m *MockFetcher) Trend(_ context.Context, _, interval string) (model.TrendLabel, error) {
	if m.Err != nil {
		return model.TrendNeutral, m.Err
	}
	if t, ok := m.Trends[interval]; ok {
		return t, nil
	}
	return model.TrendNeutral, nil
}

func (m *MockFetcher) Series(_ context.Context, _, _ string, size int) ([]model.OHLCV, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars != nil {
		return m.Bars, nil
	}
	return generateMockBars(m.Price, size), nil
}

func generateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
