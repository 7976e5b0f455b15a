// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package history keeps a SQLite record of past merge runs.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ManuGH/epgmerge/internal/persistence/sqlite"
)

const schemaVersion = 1

// Run is one recorded merge run.
type Run struct {
	ID         string
	Started    time.Time
	Finished   time.Time
	Output     string
	Channels   int
	Programmes int
	Err        string
	Feeds      []Feed
}

// Feed is the outcome of one feed within a run, in processing order.
type Feed struct {
	Name       string
	URL        string
	Status     string
	Err        string
	Bytes      int64
	Channels   int
	Programmes int
	Dropped    int
}

// Store persists runs.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the history database at path and migrates it.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlite.Open(ctx, path, sqlite.DefaultConfig())
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("history: migration failed: %w", err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	var current int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&current); err != nil {
		return err
	}
	if current >= schemaVersion {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at_ms INTEGER NOT NULL,
		finished_at_ms INTEGER NOT NULL,
		output TEXT NOT NULL,
		channels INTEGER NOT NULL,
		programmes INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at_ms);

	CREATE TABLE IF NOT EXISTS feed_results (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		url TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		bytes INTEGER NOT NULL,
		channels INTEGER NOT NULL,
		programmes INTEGER NOT NULL,
		dropped INTEGER NOT NULL,
		PRIMARY KEY (run_id, position)
	);
	`
	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return err
	}
	return tx.Commit()
}

// Record stores a run and its feed outcomes in one transaction.
func (s *Store) Record(ctx context.Context, run Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, started_at_ms, finished_at_ms, output, channels, programmes, error)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Started.UnixMilli(), run.Finished.UnixMilli(), run.Output, run.Channels, run.Programmes, run.Err,
	)
	if err != nil {
		return fmt.Errorf("history: insert run %s: %w", run.ID, err)
	}

	for i, f := range run.Feeds {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO feed_results (run_id, position, name, url, status, error, bytes, channels, programmes, dropped)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i, f.Name, f.URL, f.Status, f.Err, f.Bytes, f.Channels, f.Programmes, f.Dropped,
		)
		if err != nil {
			return fmt.Errorf("history: insert feed %s: %w", f.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history: commit: %w", err)
	}
	return nil
}

// Recent returns up to n runs, newest first, with their feeds.
func (s *Store) Recent(ctx context.Context, n int) ([]Run, error) {
	if n <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT id, started_at_ms, finished_at_ms, output, channels, programmes, error
	FROM runs ORDER BY started_at_ms DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished int64
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Output, &r.Channels, &r.Programmes, &r.Err); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		r.Started = time.UnixMilli(started).UTC()
		r.Finished = time.UnixMilli(finished).UTC()
		runs = append(runs, r)
	}
	err = errors.Join(rows.Err(), rows.Close())
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}

	// Single connection: feeds are loaded after the run cursor is closed.
	for i := range runs {
		feeds, err := s.feeds(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Feeds = feeds
	}
	return runs, nil
}

func (s *Store) feeds(ctx context.Context, runID string) ([]Feed, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT name, url, status, error, bytes, channels, programmes, dropped
	FROM feed_results WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("history: query feeds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var feeds []Feed
	for rows.Next() {
		var f Feed
		if err := rows.Scan(&f.Name, &f.URL, &f.Status, &f.Err, &f.Bytes, &f.Channels, &f.Programmes, &f.Dropped); err != nil {
			return nil, fmt.Errorf("history: scan feed: %w", err)
		}
		feeds = append(feeds, f)
	}
	return feeds, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
