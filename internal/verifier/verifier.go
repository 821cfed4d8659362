// Package verifier closes the loop: it periodically re-prices pending journal
// entries and writes back their WIN/LOSS outcome.
package verifier

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"SignalPilot/internal/journal"
	"SignalPilot/internal/model"
)

// PriceSource supplies the current price for a symbol. The context carries
// the per-fetch timeout; a hang on one symbol must not stall the pass.
type PriceSource interface {
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
}

// Verifier drains the journal's pending set on a fixed interval.
type Verifier struct {
	journal *journal.Journal
	prices  PriceSource

	interval     time.Duration
	dwell        time.Duration
	fetchTimeout time.Duration

	cron *cron.Cron
	now  func() time.Time
}

// Options tune the verification schedule.
type Options struct {
	Interval     time.Duration // pass period, default 30m
	Dwell        time.Duration // minimum entry age before it is verifiable, default 15m
	FetchTimeout time.Duration // per-symbol price fetch timeout, default 10s
}

// New creates a Verifier. Zero option fields fall back to defaults.
func New(j *journal.Journal, prices PriceSource, opts Options) *Verifier {
	if opts.Interval <= 0 {
		opts.Interval = 30 * time.Minute
	}
	if opts.Dwell <= 0 {
		opts.Dwell = 15 * time.Minute
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 10 * time.Second
	}
	return &Verifier{
		journal:      j,
		prices:       prices,
		interval:     opts.Interval,
		dwell:        opts.Dwell,
		fetchTimeout: opts.FetchTimeout,
		cron:         cron.New(),
		now:          time.Now,
	}
}

// WithClock overrides the age-check clock, for tests.
func (v *Verifier) WithClock(now func() time.Time) *Verifier {
	v.now = now
	return v
}

// Start begins the periodic passes.
func (v *Verifier) Start() {
	v.cron.Schedule(cron.Every(v.interval), cron.FuncJob(v.runPass))
	v.cron.Start()
	log.Info().Dur("interval", v.interval).Dur("dwell", v.dwell).
		Msg("outcome verifier started")
}

// Stop prevents new passes and blocks until an in-flight pass finishes.
func (v *Verifier) Stop() {
	<-v.cron.Stop().Done()
	log.Info().Msg("outcome verifier stopped")
}

func (v *Verifier) runPass() {
	if err := v.VerifyPending(); err != nil {
		log.Error().Err(err).Msg("verification pass failed")
	}
}

// VerifyPending performs one pass over the pending snapshot taken now.
// Entries logged while the pass runs wait for the next one. A failed price
// fetch leaves that entry pending and never aborts the batch.
func (v *Verifier) VerifyPending() error {
	pending, err := v.journal.PendingSignals()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}
	log.Info().Int("pending", len(pending)).Msg("verifying pending signals")

	for i := range pending {
		entry := &pending[i]

		age := v.now().Sub(entry.Timestamp)
		if age < v.dwell {
			continue // too fresh to judge; next pass will see it
		}

		ctx, cancel := context.WithTimeout(context.Background(), v.fetchTimeout)
		price, err := v.prices.CurrentPrice(ctx, entry.Symbol)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("id", entry.ID).Str("symbol", entry.Symbol).
				Msg("price fetch failed, entry stays pending")
			continue
		}

		outcome := classify(entry.Direction, entry.EntryPrice, price)
		if err := v.journal.UpdateLog(entry.ID, outcome, v.now(), price); err != nil {
			log.Error().Err(err).Str("id", entry.ID).Msg("resolve failed")
			continue
		}
		log.Info().Str("symbol", entry.Symbol).Str("direction", string(entry.Direction)).
			Str("outcome", string(outcome)).
			Float64("entry", entry.EntryPrice).Float64("current", price).
			Msg("signal verified")
	}
	return nil
}

// classify decides WIN/LOSS from the move since entry. An unchanged price
// counts as a loss: the signal earned nothing.
func classify(direction model.Direction, entryPrice, currentPrice float64) model.Outcome {
	switch direction {
	case model.DirectionBuy:
		if currentPrice > entryPrice {
			return model.OutcomeWin
		}
	case model.DirectionSell:
		if currentPrice < entryPrice {
			return model.OutcomeWin
		}
	}
	return model.OutcomeLoss
}
