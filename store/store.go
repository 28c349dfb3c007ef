/*
DESCRIPTION
  store.go provides a SQLite backed history of analysis runs, recording each
  run's summary, per frame speeds and sudden change events.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package store records analysis runs in a SQLite database so that results
// from many videos can be compared over time.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ausocean/fishflow/behavior"
)

// schemaSQL creates the runs, frame_speeds and events tables.
//
//go:embed schema.sql
var schemaSQL string

// ErrRunExists is returned when saving a run whose ID is already recorded.
var ErrRunExists = errors.New("run already recorded")

// Run summarises a recorded analysis run.
type Run struct {
	ID             string
	VideoPath      string
	StartedAt      time.Time
	FrameSkip      uint
	FramesAnalyzed int
	SuddenChanges  int
	MeanSpeed      float64
	MaxSpeed       float64
	FPS            float64
	ResultsDir     string
}

// RunFromResults returns the Run describing r.
func RunFromResults(r *behavior.Results, resultsDir string) Run {
	return Run{
		ID:             r.Metadata.RunID,
		VideoPath:      r.Metadata.VideoPath,
		StartedAt:      r.Metadata.StartedAt,
		FrameSkip:      r.Metadata.FrameSkip,
		FramesAnalyzed: r.Metadata.FramesAnalyzed,
		SuddenChanges:  len(r.Events),
		MeanSpeed:      r.Summary.Speed.Mean,
		MaxSpeed:       r.Summary.Speed.Max,
		FPS:            r.Metadata.FPS,
		ResultsDir:     resultsDir,
	}
}

// DB is a run history database.
type DB struct {
	db *sql.DB
}

// Open opens, creating if needed, the run history database at path.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("could not open run history: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{"PRAGMA foreign_keys = ON", "PRAGMA busy_timeout = 5000", schemaSQL} {
		_, err = db.ExecContext(ctx, stmt)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("could not initialise run history: %w", err)
		}
	}
	return &DB{db: db}, nil
}

// Close closes the database.
func (d *DB) Close() error { return d.db.Close() }

// SaveRun records a run along with its frame speeds and events in a single
// transaction. ErrRunExists is returned if the run ID is already recorded.
func (d *DB) SaveRun(ctx context.Context, r *behavior.Results, resultsDir string) error {
	run := RunFromResults(r, resultsDir)
	if run.ID == "" {
		return errors.New("run has no ID")
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, run.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("could not check run: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrRunExists, run.ID)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, video_path, started_at, frame_skip, frames_analyzed, sudden_changes, mean_speed, max_speed, fps, results_dir)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.VideoPath, run.StartedAt.UnixNano(), run.FrameSkip, run.FramesAnalyzed,
		run.SuddenChanges, run.MeanSpeed, run.MaxSpeed, run.FPS, run.ResultsDir,
	)
	if err != nil {
		return fmt.Errorf("could not insert run: %w", err)
	}

	frames, err := tx.PrepareContext(ctx, `
		INSERT INTO frame_speeds (run_id, frame_idx, average_speed, max_speed, motion)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("could not prepare frame insert: %w", err)
	}
	defer frames.Close()
	for _, f := range r.Frames {
		_, err = frames.ExecContext(ctx, run.ID, f.Index, f.MeanSpeed, f.MaxSpeed, f.Motion)
		if err != nil {
			return fmt.Errorf("could not insert frame %d: %w", f.Index, err)
		}
	}

	for _, e := range r.Events {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO events (run_id, frame, speed_change, description)
			VALUES (?, ?, ?, ?)`,
			run.ID, e.Frame, e.SpeedChange, e.Description,
		)
		if err != nil {
			return fmt.Errorf("could not insert event: %w", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("could not commit run: %w", err)
	}
	return nil
}

// Runs returns up to limit recorded runs, newest first. A limit of zero or
// less returns every run.
func (d *DB) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, video_path, started_at, frame_skip, frames_analyzed, sudden_changes, mean_speed, max_speed, fps, results_dir
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("could not query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started int64
		err = rows.Scan(&r.ID, &r.VideoPath, &started, &r.FrameSkip, &r.FramesAnalyzed, &r.SuddenChanges, &r.MeanSpeed, &r.MaxSpeed, &r.FPS, &r.ResultsDir)
		if err != nil {
			return nil, fmt.Errorf("could not scan run: %w", err)
		}
		r.StartedAt = time.Unix(0, started).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Speeds returns the recorded average speed of each frame pair of a run in
// frame order.
func (d *DB) Speeds(ctx context.Context, runID string) ([]float64, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT average_speed FROM frame_speeds WHERE run_id = ? ORDER BY frame_idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("could not query speeds: %w", err)
	}
	defer rows.Close()

	var speeds []float64
	for rows.Next() {
		var s float64
		err = rows.Scan(&s)
		if err != nil {
			return nil, fmt.Errorf("could not scan speed: %w", err)
		}
		speeds = append(speeds, s)
	}
	return speeds, rows.Err()
}

// Events returns the sudden change events of a run in frame order.
func (d *DB) Events(ctx context.Context, runID string) ([]behavior.Event, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT frame, speed_change, description FROM events WHERE run_id = ? ORDER BY frame`, runID)
	if err != nil {
		return nil, fmt.Errorf("could not query events: %w", err)
	}
	defer rows.Close()

	var events []behavior.Event
	for rows.Next() {
		var e behavior.Event
		err = rows.Scan(&e.Frame, &e.SpeedChange, &e.Description)
		if err != nil {
			return nil, fmt.Errorf("could not scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
