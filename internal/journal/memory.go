package journal

import (
	"sync"
	"time"

	"SignalPilot/internal/model"
)

// MemoryStore is an in-memory Store for tests and provider-less runs.
type MemoryStore struct {
	mu      sync.Mutex
	entries []model.JournalEntry
	index   map[string]int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[string]int)}
}

func (s *MemoryStore) Append(e *model.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index[e.ID] = len(s.entries)
	s.entries = append(s.entries, *e)
	return nil
}

func (s *MemoryStore) Resolve(id string, outcome model.Outcome, verifiedAt time.Time, actualPrice float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok || s.entries[i].Outcome != model.OutcomePending {
		return false, nil
	}
	s.entries[i].Outcome = outcome
	s.entries[i].VerifiedAt = verifiedAt
	s.entries[i].ActualPrice = actualPrice
	return true, nil
}

func (s *MemoryStore) All() ([]model.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.JournalEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *MemoryStore) Pending() ([]model.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.JournalEntry
	for _, e := range s.entries {
		if e.Outcome == model.OutcomePending {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
