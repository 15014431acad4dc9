package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Entry is one recorded search.
type Entry struct {
	ID          int64   `db:"id" json:"id"`
	Scenario    string  `db:"scenario" json:"scenario"`
	QueryText   string  `db:"query_text" json:"query_text"`
	Filters     string  `db:"filters" json:"filters"`
	ResultCount int     `db:"result_count" json:"result_count"`
	TopScore    float64 `db:"top_score" json:"top_score"`
	CreatedAt   string  `db:"created_at" json:"created_at"`
}

const schema = `
CREATE TABLE IF NOT EXISTS searches (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	scenario     TEXT NOT NULL,
	query_text   TEXT NOT NULL DEFAULT '',
	filters      TEXT NOT NULL DEFAULT '',
	result_count INTEGER NOT NULL DEFAULT 0,
	top_score    REAL NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches (created_at DESC);
`

// Store persists search history to SQLite.
type Store struct {
	db *sqlx.DB
}

// NewStore opens (and if needed initializes) the history database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping history db: %w", err)
	}
	return nil
}

// Record inserts a search entry. CreatedAt is set here when empty.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt == "" {
		e.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO searches (scenario, query_text, filters, result_count, top_score, created_at)
		VALUES (:scenario, :query_text, :filters, :result_count, :top_score, :created_at)`, e)
	if err != nil {
		return fmt.Errorf("insert search: %w", err)
	}
	return nil
}

// List returns the newest entries first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []Entry
	err := s.db.SelectContext(ctx, &entries, `
		SELECT id, scenario, query_text, filters, result_count, top_score, created_at
		FROM searches ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list searches: %w", err)
	}
	return entries, nil
}
