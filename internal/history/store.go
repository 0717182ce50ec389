// Package history records harvest runs in a local SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Source run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

const memoryDSN = ":memory:"

// ErrRunNotFound is returned for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// SourceRun is the outcome of one adapter within a run.
type SourceRun struct {
	Source   string
	Status   string
	Error    string
	Count    int
	Duration time.Duration
}

// Run is one recorded harvest.
type Run struct {
	StartedAt  time.Time
	FinishedAt time.Time
	ID         string
	Digest     string
	Error      string
	Sources    []SourceRun
	Records    int
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Store persists runs.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path. ":memory:"
// opens a private in-memory database.
func Open(path string) (*Store, error) {
	if path != memoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()

		return nil, err
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`PRAGMA foreign_keys = ON;`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			records INTEGER NOT NULL,
			digest TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS source_runs (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			source TEXT NOT NULL,
			status TEXT NOT NULL,
			count INTEGER NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			duration_ms INTEGER NOT NULL,
			PRIMARY KEY (run_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to migrate history db: %w", err)
		}
	}

	return nil
}

// Record stores a run and its source outcomes.
func (s *Store) Record(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, records, digest, error) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, formatTime(run.StartedAt), formatTime(run.FinishedAt), run.Records, run.Digest, run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	for i, src := range run.Sources {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO source_runs (run_id, position, source, status, count, error, duration_ms) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, src.Source, src.Status, src.Count, src.Error, src.Duration.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert source run %s/%s: %w", run.ID, src.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}

	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, records, digest, error FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run

	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}

		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	for i := range runs {
		if runs[i].Sources, err = s.sources(ctx, runs[i].ID); err != nil {
			return nil, err
		}
	}

	return runs, nil
}

// Get returns one run by ID.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, records, digest, error FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	if err != nil {
		return nil, err
	}

	if run.Sources, err = s.sources(ctx, id); err != nil {
		return nil, err
	}

	return &run, nil
}

func (s *Store) sources(ctx context.Context, runID string) ([]SourceRun, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, status, count, error, duration_ms FROM source_runs WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list source runs for %s: %w", runID, err)
	}
	defer rows.Close()

	var out []SourceRun

	for rows.Next() {
		var (
			src SourceRun
			ms  int64
		)

		if err := rows.Scan(&src.Source, &src.Status, &src.Count, &src.Error, &ms); err != nil {
			return nil, fmt.Errorf("failed to scan source run: %w", err)
		}

		src.Duration = time.Duration(ms) * time.Millisecond
		out = append(out, src)
	}

	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run               Run
		started, finished string
	)

	if err := row.Scan(&run.ID, &started, &finished, &run.Records, &run.Digest, &run.Error); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, err
		}

		return run, fmt.Errorf("failed to scan run: %w", err)
	}

	run.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
	run.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)

	return run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
