// Package history keeps an audit trail of longpath runs in a SQLite
// database. Recording history is best-effort: a failure here is logged by
// the caller and never aborts or fails a run.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Run is a single scan-or-relocate invocation.
type Run struct {
	ID         string
	Target     string
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Matched    int
	Moved      int
	Skipped    int
	Failed     int
}

// Move is a per-entry outcome belonging to a run.
type Move struct {
	RunID       string
	Source      string
	Destination string
	Outcome     string
	Attempts    int
	Error       string
}

// NewRunID returns a fresh identifier for a run.
func NewRunID() string {
	return uuid.NewString()
}

// Store manages the SQLite run history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath and
// initializes the schema. The parent directory is created for file-based
// databases; ":memory:" is supported for tests.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// RecordRun stores a run and its per-entry moves in one transaction.
func (s *Store) RecordRun(ctx context.Context, run Run, moves []Move) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, target, dry_run, started_at, finished_at, matched, moved, skipped, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Target, run.DryRun, run.StartedAt, run.FinishedAt,
		run.Matched, run.Moved, run.Skipped, run.Failed)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, m := range moves {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO moves (run_id, source, destination, outcome, attempts, error)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, m.Source, m.Destination, m.Outcome, m.Attempts, m.Error)
		if err != nil {
			return fmt.Errorf("insert move: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit < 1 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, target, dry_run, started_at, finished_at, matched, moved, skipped, failed
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Target, &r.DryRun, &r.StartedAt, &r.FinishedAt,
			&r.Matched, &r.Moved, &r.Skipped, &r.Failed); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// MovesForRun returns the per-entry records of a run, in insertion order.
func (s *Store) MovesForRun(ctx context.Context, runID string) ([]Move, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, source, destination, outcome, attempts, error
		FROM moves
		WHERE run_id = ?
		ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query moves: %w", err)
	}
	defer rows.Close()

	var moves []Move
	for rows.Next() {
		var m Move
		if err := rows.Scan(&m.RunID, &m.Source, &m.Destination, &m.Outcome, &m.Attempts, &m.Error); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		moves = append(moves, m)
	}
	return moves, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
