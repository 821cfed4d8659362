package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalPilot/internal/model"
)

func newSQLiteStore(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func sampleEntry(id string, ts time.Time) *model.JournalEntry {
	return &model.JournalEntry{
		ID:         id,
		Timestamp:  ts,
		Symbol:     "XAUUSD",
		Direction:  model.DirectionBuy,
		EntryPrice: 2650.5,
		Confidence: 85,
		Outcome:    model.OutcomePending,
	}
}

func TestSQLiteStore_AppendAndReadBack(t *testing.T) {
	store, _ := newSQLiteStore(t)
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(sampleEntry("a", ts)))
	require.NoError(t, store.Append(sampleEntry("b", ts.Add(time.Minute))))

	all, err := store.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
	assert.Equal(t, model.DirectionBuy, all[0].Direction)
	assert.Equal(t, 2650.5, all[0].EntryPrice)
	assert.Equal(t, 85, all[0].Confidence)
	assert.True(t, all[0].Timestamp.Equal(ts), "timestamps round-trip at millisecond precision")
}

func TestSQLiteStore_ResolveIsIdempotent(t *testing.T) {
	store, _ := newSQLiteStore(t)
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(sampleEntry("a", ts)))

	verified := ts.Add(30 * time.Minute)
	applied, err := store.Resolve("a", model.OutcomeWin, verified, 2662)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = store.Resolve("a", model.OutcomeLoss, verified.Add(time.Hour), 2600)
	require.NoError(t, err)
	assert.False(t, applied, "a terminal entry must never be re-resolved")

	applied, err = store.Resolve("missing", model.OutcomeWin, verified, 1)
	require.NoError(t, err)
	assert.False(t, applied)

	all, err := store.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, model.OutcomeWin, all[0].Outcome)
	assert.Equal(t, 2662.0, all[0].ActualPrice)
	assert.True(t, all[0].VerifiedAt.Equal(verified))
}

func TestSQLiteStore_PendingFiltersTerminal(t *testing.T) {
	store, _ := newSQLiteStore(t)
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Append(sampleEntry("a", ts)))
	require.NoError(t, store.Append(sampleEntry("b", ts.Add(time.Minute))))
	_, err := store.Resolve("a", model.OutcomeLoss, ts.Add(time.Hour), 2600)
	require.NoError(t, err)

	pending, err := store.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "b", pending[0].ID)
}

func TestSQLiteStore_CreatesParentDirectory(t *testing.T) {
	// The default config points at data/signalpilot.db with no data/ on disk;
	// opening the store must create the directory, not fall over on the pragma.
	path := filepath.Join(t.TempDir(), "data", "journal.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(sampleEntry("a", ts)))

	all, err := store.All()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	store, path := newSQLiteStore(t)
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(sampleEntry("a", ts)))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	all, err := reopened.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, model.OutcomePending, all[0].Outcome)
}
