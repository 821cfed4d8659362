package model

import "time"

// Outcome is the lifecycle state of a journaled signal. It transitions
// PENDING -> WIN or PENDING -> LOSS exactly once; resolved entries are
// immutable.
type Outcome string

const (
	OutcomePending Outcome = "PENDING"
	OutcomeWin     Outcome = "WIN"
	OutcomeLoss    Outcome = "LOSS"
)

// JournalEntry is one emitted signal awaiting (or holding) its real-world
// outcome. Entries are append-only; they are never deleted.
type JournalEntry struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Symbol     string    `json:"symbol"`
	Direction  Direction `json:"direction"` // BUY or SELL only
	EntryPrice float64   `json:"entryPrice"`
	Confidence int       `json:"confidence"`
	Outcome    Outcome   `json:"outcome"`

	// Set only when the entry is resolved.
	VerifiedAt  time.Time `json:"verifiedAt,omitzero"`
	ActualPrice float64   `json:"actualPrice,omitempty"`
}

// Resolved reports whether the entry has reached a terminal outcome.
func (e *JournalEntry) Resolved() bool {
	return e.Outcome == OutcomeWin || e.Outcome == OutcomeLoss
}

// SymbolStats is a win-rate projection over resolved entries, scoped to one
// symbol or to the whole journal. It is derived on demand, never stored.
type SymbolStats struct {
	WinRate     int `json:"winRate"` // 0..100, rounded
	TotalTrades int `json:"totalTrades"`
	Wins        int `json:"wins"`
	Losses      int `json:"losses"`
}
