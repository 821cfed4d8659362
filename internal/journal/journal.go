// Package journal is the append-only log of emitted signals and their
// eventual real-world outcome. Statistics are recomputed from the full log on
// every read so they can never drift from its contents.
package journal

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"SignalPilot/internal/model"
)

var (
	// ErrHoldNotLoggable marks a caller bug: HOLD signals are never journaled.
	ErrHoldNotLoggable = errors.New("journal: HOLD signals are not loggable")
	// ErrInvalidDirection marks an unknown direction value.
	ErrInvalidDirection = errors.New("journal: invalid direction")
)

// Store is the minimal persistence contract: append, idempotent
// update-by-id, full-scan read.
type Store interface {
	Append(e *model.JournalEntry) error
	// Resolve moves a PENDING entry to its terminal outcome. It returns false
	// when the entry is absent or already resolved, so repeated verification
	// passes are no-ops.
	Resolve(id string, outcome model.Outcome, verifiedAt time.Time, actualPrice float64) (bool, error)
	All() ([]model.JournalEntry, error)
	Pending() ([]model.JournalEntry, error)
	Close() error
}

// Journal wraps a Store with the signal lifecycle rules.
type Journal struct {
	store Store
	now   func() time.Time
}

// New creates a Journal over the given store.
func New(store Store) *Journal {
	return &Journal{store: store, now: time.Now}
}

// WithClock overrides the timestamp source, for tests.
func (j *Journal) WithClock(now func() time.Time) *Journal {
	j.now = now
	return j
}

// LogSignal appends a PENDING entry for an emitted BUY or SELL and returns
// its id. Logging a HOLD is a contract violation and fails loudly.
func (j *Journal) LogSignal(symbol string, direction model.Direction, entryPrice float64, confidence int) (string, error) {
	switch direction {
	case model.DirectionBuy, model.DirectionSell:
	case model.DirectionHold:
		return "", ErrHoldNotLoggable
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
	}

	entry := &model.JournalEntry{
		ID:         uuid.NewString(),
		Timestamp:  j.now(),
		Symbol:     symbol,
		Direction:  direction,
		EntryPrice: entryPrice,
		Confidence: confidence,
		Outcome:    model.OutcomePending,
	}
	if err := j.store.Append(entry); err != nil {
		return "", fmt.Errorf("append entry: %w", err)
	}

	log.Info().Str("id", entry.ID).Str("symbol", symbol).
		Str("direction", string(direction)).Float64("entry_price", entryPrice).
		Msg("signal journaled")
	return entry.ID, nil
}

// PendingSignals returns every unresolved entry in creation order.
func (j *Journal) PendingSignals() ([]model.JournalEntry, error) {
	return j.store.Pending()
}

// UpdateLog resolves a pending entry. Resolving an entry that is missing or
// already terminal is silently ignored; racing verification passes may both
// pick up the same long-pending entry and only the first write may count.
func (j *Journal) UpdateLog(id string, outcome model.Outcome, verifiedAt time.Time, actualPrice float64) error {
	if outcome != model.OutcomeWin && outcome != model.OutcomeLoss {
		return fmt.Errorf("journal: outcome %q is not terminal", outcome)
	}
	applied, err := j.store.Resolve(id, outcome, verifiedAt, actualPrice)
	if err != nil {
		return fmt.Errorf("resolve entry %s: %w", id, err)
	}
	if !applied {
		log.Debug().Str("id", id).Msg("entry already resolved or unknown, skipping")
	}
	return nil
}

// Stats returns the win-rate projection for one symbol.
func (j *Journal) Stats(symbol string) (model.SymbolStats, error) {
	return j.stats(symbol)
}

// AllStats returns the projection over the whole journal.
func (j *Journal) AllStats() (model.SymbolStats, error) {
	return j.stats("")
}

func (j *Journal) stats(symbol string) (model.SymbolStats, error) {
	entries, err := j.store.All()
	if err != nil {
		return model.SymbolStats{}, fmt.Errorf("read journal: %w", err)
	}

	var stats model.SymbolStats
	for i := range entries {
		e := &entries[i]
		if symbol != "" && e.Symbol != symbol {
			continue
		}
		switch e.Outcome {
		case model.OutcomeWin:
			stats.Wins++
		case model.OutcomeLoss:
			stats.Losses++
		}
	}
	stats.TotalTrades = stats.Wins + stats.Losses
	if stats.TotalTrades > 0 {
		stats.WinRate = int(math.Round(100 * float64(stats.Wins) / float64(stats.TotalTrades)))
	}
	return stats, nil
}

// History returns the most recent limit entries, newest first.
func (j *Journal) History(limit int) ([]model.JournalEntry, error) {
	entries, err := j.store.All()
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	// All() is creation-ordered; reverse and trim.
	out := make([]model.JournalEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// Close releases the underlying store.
func (j *Journal) Close() error {
	return j.store.Close()
}
