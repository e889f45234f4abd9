// Package history persists per-action outcomes to a local SQLite database so
// the menu can show what already happened and when.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Outcome values recorded per action.
const (
	OutcomeOK      = "ok"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Record is one action outcome.
type Record struct {
	ID        int64
	RunID     string
	Wallet    string
	Action    string
	TxHash    string
	Outcome   string
	Detail    string
	CreatedAt time.Time
}

// Store wraps the SQLite connection.
type Store struct {
	conn *sql.DB
}

// Open opens or creates the history database at the given path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	// SQLite works best with a single connection.
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS action_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			wallet TEXT NOT NULL,
			action TEXT NOT NULL,
			tx_hash TEXT NOT NULL DEFAULT '',
			outcome TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_action_log_wallet ON action_log(wallet, created_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to migrate history database: %w", err)
	}
	return nil
}

// Append inserts one action record. CreatedAt defaults to now when unset.
func (s *Store) Append(r *Record) error {
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	res, err := s.conn.Exec(`
		INSERT INTO action_log (run_id, wallet, action, tx_hash, outcome, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.RunID, r.Wallet, r.Action, r.TxHash, r.Outcome, r.Detail, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert action record: %w", err)
	}
	r.ID, _ = res.LastInsertId()
	r.CreatedAt = createdAt
	return nil
}

// Recent returns the latest records for a wallet, newest first.
func (s *Store) Recent(wallet string, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.Query(`
		SELECT id, run_id, wallet, action, tx_hash, outcome, detail, created_at
		FROM action_log
		WHERE wallet = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, wallet, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query action log: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		r := &Record{}
		if err := rows.Scan(&r.ID, &r.RunID, &r.Wallet, &r.Action, &r.TxHash, &r.Outcome, &r.Detail, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan action record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
