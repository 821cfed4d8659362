package verifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalPilot/internal/journal"
	"SignalPilot/internal/model"
)

// stubPrices serves fixed prices per symbol and counts fetches.
type stubPrices struct {
	prices  map[string]float64
	err     error
	fetches int
}

func (s *stubPrices) CurrentPrice(_ context.Context, symbol string) (float64, error) {
	s.fetches++
	if s.err != nil {
		return 0, s.err
	}
	return s.prices[symbol], nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func setup(t *testing.T, prices *stubPrices, now time.Time) (*journal.Journal, *Verifier) {
	t.Helper()
	jnl := journal.New(journal.NewMemoryStore())
	v := New(jnl, prices, Options{}).WithClock(fixedClock(now))
	return jnl, v
}

func TestVerifyPending_ClassifiesOutcomes(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	prices := &stubPrices{prices: map[string]float64{
		"XAUUSD": 2662, // above the BUY entry
		"BTCUSD": 63000, // below the SELL entry
		"EURUSD": 1.10, // unchanged
	}}
	jnl, v := setup(t, prices, base.Add(time.Hour))
	jnl.WithClock(fixedClock(base))

	buyID, err := jnl.LogSignal("XAUUSD", model.DirectionBuy, 2650, 85)
	require.NoError(t, err)
	sellID, err := jnl.LogSignal("BTCUSD", model.DirectionSell, 64000, 70)
	require.NoError(t, err)
	flatID, err := jnl.LogSignal("EURUSD", model.DirectionBuy, 1.10, 55)
	require.NoError(t, err)

	require.NoError(t, v.VerifyPending())

	outcomes := map[string]model.Outcome{}
	all, err := jnl.History(0)
	require.NoError(t, err)
	for _, e := range all {
		outcomes[e.ID] = e.Outcome
	}
	assert.Equal(t, model.OutcomeWin, outcomes[buyID], "price above BUY entry is a win")
	assert.Equal(t, model.OutcomeWin, outcomes[sellID], "price below SELL entry is a win")
	assert.Equal(t, model.OutcomeLoss, outcomes[flatID], "an unchanged price is a loss")
}

func TestVerifyPending_RespectsDwell(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	prices := &stubPrices{prices: map[string]float64{"XAUUSD": 2700}}
	jnl, v := setup(t, prices, base.Add(5*time.Minute)) // entry is 5m old, dwell is 15m
	jnl.WithClock(fixedClock(base))

	_, err := jnl.LogSignal("XAUUSD", model.DirectionBuy, 2650, 85)
	require.NoError(t, err)

	require.NoError(t, v.VerifyPending())
	assert.Zero(t, prices.fetches, "a fresh entry must not even be priced")

	pending, err := jnl.PendingSignals()
	require.NoError(t, err)
	assert.Len(t, pending, 1, "a fresh entry stays pending")

	// Once past the dwell the same entry resolves.
	v.WithClock(fixedClock(base.Add(20 * time.Minute)))
	require.NoError(t, v.VerifyPending())
	pending, err = jnl.PendingSignals()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestVerifyPending_FetchFailureLeavesPending(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	prices := &stubPrices{err: errors.New("provider down")}
	jnl, v := setup(t, prices, base.Add(time.Hour))
	jnl.WithClock(fixedClock(base))

	_, err := jnl.LogSignal("XAUUSD", model.DirectionBuy, 2650, 85)
	require.NoError(t, err)
	_, err = jnl.LogSignal("BTCUSD", model.DirectionSell, 64000, 70)
	require.NoError(t, err)

	require.NoError(t, v.VerifyPending(), "fetch failures never abort the batch")
	assert.Equal(t, 2, prices.fetches, "every entry past the dwell is attempted")

	pending, err := jnl.PendingSignals()
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestVerifyPending_SecondPassIsNoOp(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	prices := &stubPrices{prices: map[string]float64{"XAUUSD": 2700}}
	jnl, v := setup(t, prices, base.Add(time.Hour))
	jnl.WithClock(fixedClock(base))

	_, err := jnl.LogSignal("XAUUSD", model.DirectionBuy, 2650, 85)
	require.NoError(t, err)

	require.NoError(t, v.VerifyPending())
	require.NoError(t, v.VerifyPending())
	assert.Equal(t, 1, prices.fetches, "resolved entries drop out of later passes")
}

func TestClassify(t *testing.T) {
	cases := []struct {
		direction model.Direction
		entry     float64
		current   float64
		want      model.Outcome
	}{
		{model.DirectionBuy, 100, 101, model.OutcomeWin},
		{model.DirectionBuy, 100, 99, model.OutcomeLoss},
		{model.DirectionBuy, 100, 100, model.OutcomeLoss},
		{model.DirectionSell, 100, 99, model.OutcomeWin},
		{model.DirectionSell, 100, 101, model.OutcomeLoss},
		{model.DirectionSell, 100, 100, model.OutcomeLoss},
	}
	for _, tc := range cases {
		if got := classify(tc.direction, tc.entry, tc.current); got != tc.want {
			t.Errorf("classify(%s, %.0f, %.0f) = %s, want %s",
				tc.direction, tc.entry, tc.current, got, tc.want)
		}
	}
}
