// Package journal keeps an append-only sqlite log of fetched snapshots.
// It is an audit/charting aid only; session state is never persisted and
// a restart always starts a fresh session.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/burnwatch/burnwatch/internal/core"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

type Entry struct {
	TakenAt      time.Time
	Status       core.Status
	Subscription core.QuotaFamily
	Search       core.QuotaFamily
	ToolCalls    core.QuotaFamily
}

func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("journal: creating DB dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("journal: opening DB: %w", err)
	}

	store := NewStore(db)
	if err := store.Init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			taken_at TEXT NOT NULL,
			status TEXT NOT NULL,
			subscription_limit REAL NOT NULL,
			subscription_used REAL NOT NULL,
			subscription_resets_at TEXT NOT NULL,
			search_limit REAL NOT NULL,
			search_used REAL NOT NULL,
			search_resets_at TEXT NOT NULL,
			tool_calls_limit REAL NOT NULL,
			tool_calls_used REAL NOT NULL,
			tool_calls_resets_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_taken_at ON snapshots(taken_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("journal: init schema: %w", err)
		}
	}
	return nil
}

// Append writes one snapshot row. Error snapshots carry no quota data and
// are skipped.
func (s *Store) Append(ctx context.Context, snap core.Snapshot) error {
	if snap.Status == core.StatusError || snap.Status == core.StatusAuth {
		return nil
	}
	takenAt := snap.Timestamp
	if takenAt.IsZero() {
		takenAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (
			taken_at, status,
			subscription_limit, subscription_used, subscription_resets_at,
			search_limit, search_used, search_resets_at,
			tool_calls_limit, tool_calls_used, tool_calls_resets_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		takenAt.UTC().Format(time.RFC3339Nano),
		string(snap.Status),
		snap.Subscription.Limit, snap.Subscription.Used, snap.Subscription.ResetsAt.UTC().Format(time.RFC3339Nano),
		snap.Search.Limit, snap.Search.Used, snap.Search.ResetsAt.UTC().Format(time.RFC3339Nano),
		snap.ToolCalls.Limit, snap.ToolCalls.Used, snap.ToolCalls.ResetsAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("journal: inserting snapshot: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT taken_at, status,
			subscription_limit, subscription_used, subscription_resets_at,
			search_limit, search_used, search_resets_at,
			tool_calls_limit, tool_calls_used, tool_calls_resets_at
		FROM snapshots ORDER BY taken_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("journal: querying snapshots: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			takenAt, status             string
			subReset, seaReset, tcReset string
			e                           Entry
		)
		if err := rows.Scan(
			&takenAt, &status,
			&e.Subscription.Limit, &e.Subscription.Used, &subReset,
			&e.Search.Limit, &e.Search.Used, &seaReset,
			&e.ToolCalls.Limit, &e.ToolCalls.Used, &tcReset,
		); err != nil {
			return nil, fmt.Errorf("journal: scanning row: %w", err)
		}
		e.Status = core.Status(status)
		e.TakenAt = parseStamp(takenAt)
		e.Subscription.ResetsAt = parseStamp(subReset)
		e.Search.ResetsAt = parseStamp(seaReset)
		e.ToolCalls.ResetsAt = parseStamp(tcReset)
		out = append(out, e)
	}
	return out, rows.Err()
}

func parseStamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
