// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

// Package runlog records harness runs and their per-test outcomes
// in a local SQLite database for later querying.
package runlog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"reprotest.dev/pkg/internal/harness"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitemigration"
	"zombiezen.com/go/sqlite/sqlitex"
)

// A Journal is an open run database.
// Methods on Journal are safe to call concurrently.
type Journal struct {
	pool *sqlitemigration.Pool
}

// Open opens (creating if necessary) the run database at path.
// Schema migrations happen in the background;
// the first recording call waits for them.
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o777); err != nil {
			return nil, fmt.Errorf("open run log: %v", err)
		}
	}
	var schema sqlitemigration.Schema
	for i := 1; ; i++ {
		migration, err := fs.ReadFile(sqlFiles(), fmt.Sprintf("schema/%02d.sql", i))
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("open run log: read migrations: %v", err)
		}
		schema.Migrations = append(schema.Migrations, string(migration))
	}
	pool := sqlitemigration.NewPool(path, schema, sqlitemigration.Options{
		Flags:       sqlite.OpenCreate | sqlite.OpenReadWrite,
		PoolSize:    1,
		PrepareConn: prepareConn,
	})
	return &Journal{pool: pool}, nil
}

func prepareConn(conn *sqlite.Conn) error {
	if err := sqlitex.ExecuteTransient(conn, "PRAGMA journal_mode = wal;", nil); err != nil {
		return err
	}
	return sqlitex.ExecuteTransient(conn, "PRAGMA foreign_keys = on;", nil)
}

// Close releases the journal's database resources.
func (j *Journal) Close() error {
	return j.pool.Close()
}

// StartRun records the beginning of a harness run.
func (j *Journal) StartRun(ctx context.Context, id uuid.UUID, normalizer string, started time.Time) error {
	conn, err := j.pool.Get(ctx)
	if err != nil {
		return fmt.Errorf("record run %v: %w", id, err)
	}
	defer j.pool.Put(conn)
	err = sqlitex.ExecuteFS(conn, sqlFiles(), "start_run.sql", &sqlitex.ExecOptions{
		Named: map[string]any{
			":id":         id.String(),
			":normalizer": normalizer,
			":started_at": started.UTC().Format(time.RFC3339Nano),
		},
	})
	if err != nil {
		return fmt.Errorf("record run %v: %v", id, err)
	}
	return nil
}

// RecordResult records one test case's outcome within a run.
func (j *Journal) RecordResult(ctx context.Context, runID uuid.UUID, res harness.Result) error {
	conn, err := j.pool.Get(ctx)
	if err != nil {
		return fmt.Errorf("record result for %s: %w", res.Test, err)
	}
	defer j.pool.Put(conn)
	detail := ""
	if res.Err != nil {
		detail = res.Err.Error()
	}
	err = sqlitex.ExecuteFS(conn, sqlFiles(), "record_result.sql", &sqlitex.ExecOptions{
		Named: map[string]any{
			":run_id":      runID.String(),
			":test":        res.Test,
			":outcome":     Classify(res.Err).String(),
			":detail":      detail,
			":duration_ms": res.Duration.Milliseconds(),
		},
	})
	if err != nil {
		return fmt.Errorf("record result for %s: %v", res.Test, err)
	}
	return nil
}

// FinishRun records a run's completion and its aggregate failure count.
func (j *Journal) FinishRun(ctx context.Context, id uuid.UUID, finished time.Time, failed int) error {
	conn, err := j.pool.Get(ctx)
	if err != nil {
		return fmt.Errorf("finish run %v: %w", id, err)
	}
	defer j.pool.Put(conn)
	err = sqlitex.ExecuteFS(conn, sqlFiles(), "finish_run.sql", &sqlitex.ExecOptions{
		Named: map[string]any{
			":id":          id.String(),
			":finished_at": finished.UTC().Format(time.RFC3339Nano),
			":failed":      failed,
		},
	})
	if err != nil {
		return fmt.Errorf("finish run %v: %v", id, err)
	}
	return nil
}

// A RecordedRun is one recorded harness run.
// Finished is the zero time and Failed is -1
// for a run that never finished.
type RecordedRun struct {
	ID         uuid.UUID
	Normalizer string
	Started    time.Time
	Finished   time.Time
	Failed     int
}

// Runs returns every recorded run, oldest first.
func (j *Journal) Runs(ctx context.Context) ([]RecordedRun, error) {
	conn, err := j.pool.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer j.pool.Put(conn)
	var runs []RecordedRun
	err = sqlitex.ExecuteFS(conn, sqlFiles(), "list_runs.sql", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			id, err := uuid.Parse(stmt.GetText("id"))
			if err != nil {
				return err
			}
			started, err := time.Parse(time.RFC3339Nano, stmt.GetText("started_at"))
			if err != nil {
				return err
			}
			run := RecordedRun{
				ID:         id,
				Normalizer: stmt.GetText("normalizer"),
				Started:    started,
				Failed:     -1,
			}
			if finishedText := stmt.GetText("finished_at"); finishedText != "" {
				run.Finished, err = time.Parse(time.RFC3339Nano, finishedText)
				if err != nil {
					return err
				}
				run.Failed = int(stmt.GetInt64("failed"))
			}
			runs = append(runs, run)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %v", err)
	}
	return runs, nil
}

// A RecordedResult is one row of a run's recorded outcomes.
type RecordedResult struct {
	Test     string
	Outcome  Outcome
	Detail   string
	Duration time.Duration
}

// RunResults returns the recorded outcomes of the given run in test name order.
func (j *Journal) RunResults(ctx context.Context, runID uuid.UUID) ([]RecordedResult, error) {
	conn, err := j.pool.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read run %v: %w", runID, err)
	}
	defer j.pool.Put(conn)
	var results []RecordedResult
	err = sqlitex.ExecuteFS(conn, sqlFiles(), "run_results.sql", &sqlitex.ExecOptions{
		Named: map[string]any{
			":run_id": runID.String(),
		},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			outcome, err := ParseOutcome(stmt.GetText("outcome"))
			if err != nil {
				return err
			}
			results = append(results, RecordedResult{
				Test:     stmt.GetText("test"),
				Outcome:  outcome,
				Detail:   stmt.GetText("detail"),
				Duration: time.Duration(stmt.GetInt64("duration_ms")) * time.Millisecond,
			})
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("read run %v: %v", runID, err)
	}
	return results, nil
}

//go:embed sql
var rawSQLFiles embed.FS

func sqlFiles() fs.FS {
	fsys, err := fs.Sub(rawSQLFiles, "sql")
	if err != nil {
		panic(err)
	}
	return fsys
}
