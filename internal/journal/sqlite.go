package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"SignalPilot/internal/model"
)

// SQLiteStore persists the journal so it survives process restarts.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations. The
// parent directory is created if it does not exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode: stats reads happen on the request path while the verifier writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite journal opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id           TEXT PRIMARY KEY,
			timestamp    INTEGER NOT NULL,
			symbol       TEXT NOT NULL,
			direction    TEXT NOT NULL,
			entry_price  REAL NOT NULL,
			confidence   INTEGER NOT NULL,
			outcome      TEXT NOT NULL,
			verified_at  INTEGER,
			actual_price REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_ts ON signals(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_outcome ON signals(outcome)`,
		`CREATE INDEX IF NOT EXISTS idx_signals_symbol ON signals(symbol)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Append(e *model.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO signals
		(id, timestamp, symbol, direction, entry_price, confidence, outcome)
		VALUES (?,?,?,?,?,?,?)`,
		e.ID, e.Timestamp.UnixMilli(), e.Symbol, string(e.Direction),
		e.EntryPrice, e.Confidence, string(e.Outcome),
	)
	return err
}

// Resolve flips a PENDING row to its terminal outcome. The outcome guard in
// the WHERE clause is what makes repeated passes idempotent.
func (s *SQLiteStore) Resolve(id string, outcome model.Outcome, verifiedAt time.Time, actualPrice float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`UPDATE signals
		SET outcome = ?, verified_at = ?, actual_price = ?
		WHERE id = ? AND outcome = ?`,
		string(outcome), verifiedAt.UnixMilli(), actualPrice,
		id, string(model.OutcomePending),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *SQLiteStore) All() ([]model.JournalEntry, error) {
	return s.query(`SELECT id, timestamp, symbol, direction, entry_price, confidence,
		outcome, verified_at, actual_price
		FROM signals ORDER BY timestamp ASC, id ASC`)
}

func (s *SQLiteStore) Pending() ([]model.JournalEntry, error) {
	return s.query(`SELECT id, timestamp, symbol, direction, entry_price, confidence,
		outcome, verified_at, actual_price
		FROM signals WHERE outcome = 'PENDING' ORDER BY timestamp ASC, id ASC`)
}

func (s *SQLiteStore) query(q string) ([]model.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.JournalEntry
	for rows.Next() {
		var (
			e           model.JournalEntry
			ts          int64
			direction   string
			outcome     string
			verifiedAt  sql.NullInt64
			actualPrice sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &ts, &e.Symbol, &direction, &e.EntryPrice,
			&e.Confidence, &outcome, &verifiedAt, &actualPrice); err != nil {
			return nil, err
		}
		e.Timestamp = time.UnixMilli(ts)
		e.Direction = model.Direction(direction)
		e.Outcome = model.Outcome(outcome)
		if verifiedAt.Valid {
			e.VerifiedAt = time.UnixMilli(verifiedAt.Int64)
		}
		if actualPrice.Valid {
			e.ActualPrice = actualPrice.Float64
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	log.Info().Msg("closing sqlite journal")
	return s.db.Close()
}
