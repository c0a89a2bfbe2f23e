package history

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	ferrors "git.home.luguber.info/inful/linklocal/internal/foundation/errors"

	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// SQLiteStore implements the run journal on SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates or opens a journal. Use ":memory:" for an in-memory database,
// or a file path for persistent storage; parent directories are created.
func Open(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "create history directory").
				WithContext("path", dbPath).Build()
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "open sqlite database").
			WithContext("path", dbPath).Build()
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "initialize schema").Build()
	}

	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		scope TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL DEFAULT 0,
		documents INTEGER NOT NULL DEFAULT 0,
		processed INTEGER NOT NULL DEFAULT 0,
		links INTEGER NOT NULL DEFAULT 0,
		downloaded INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		rewritten INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		document TEXT NOT NULL,
		url TEXT NOT NULL,
		local_path TEXT NOT NULL,
		success INTEGER NOT NULL,
		status_code INTEGER NOT NULL,
		bytes INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		error TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_attempts_run ON attempts(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// StartRun inserts a run in the running state.
func (s *SQLiteStore) StartRun(ctx context.Context, id, scope string, startedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, scope, status, started_at) VALUES (?, ?, ?, ?)",
		id, scope, StatusRunning, startedAt.UnixMilli(),
	)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryHistory, "insert run").WithContext("run_id", id).Build()
	}
	return nil
}

// RecordAttempt appends a download attempt to a run.
func (s *SQLiteStore) RecordAttempt(ctx context.Context, a Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (run_id, document, url, local_path, success, status_code, bytes, duration_ms, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.RunID, a.Document, a.URL, a.LocalPath, boolToInt(a.Success), a.StatusCode, a.Bytes,
		a.Duration.Milliseconds(), a.Error, a.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryHistory, "insert attempt").WithContext("run_id", a.RunID).Build()
	}
	return nil
}

// FinishRun stores the summary of a run and marks it finished.
func (s *SQLiteStore) FinishRun(ctx context.Context, id string, sum Summary, finishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, finished_at = ?, documents = ?, processed = ?, links = ?,
		 downloaded = ?, failed = ?, rewritten = ? WHERE id = ?`,
		StatusFor(sum), finishedAt.UnixMilli(), sum.Documents, sum.Processed, sum.Links,
		sum.Downloaded, sum.Failed, sum.Rewritten, id,
	)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryHistory, "update run").WithContext("run_id", id).Build()
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ferrors.WrapError(ErrRunNotFound, ferrors.CategoryHistory, "update run").WithContext("run_id", id).Build()
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, scope, status, started_at, finished_at, documents, processed, links, downloaded, failed, rewritten
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "query runs").Build()
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
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "iterate runs").Build()
	}
	return runs, nil
}

// GetRun returns one run by id.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, scope, status, started_at, finished_at, documents, processed, links, downloaded, failed, rewritten
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ferrors.WrapError(ErrRunNotFound, ferrors.CategoryHistory, "get run").WithContext("run_id", id).Build()
	}
	return run, err
}

// Attempts returns the attempts of a run in insertion order.
func (s *SQLiteStore) Attempts(ctx context.Context, runID string) ([]Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, document, url, local_path, success, status_code, bytes, duration_ms, error, created_at
		 FROM attempts WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "query attempts").Build()
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var a Attempt
		var success int
		var durationMS, createdAt int64
		if err := rows.Scan(&a.ID, &a.RunID, &a.Document, &a.URL, &a.LocalPath, &success,
			&a.StatusCode, &a.Bytes, &durationMS, &a.Error, &createdAt); err != nil {
			return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "scan attempt").Build()
		}
		a.Success = success != 0
		a.Duration = time.Duration(durationMS) * time.Millisecond
		a.CreatedAt = time.UnixMilli(createdAt)
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryHistory, "iterate attempts").Build()
	}
	return attempts, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var started, finished int64
	err := row.Scan(&r.ID, &r.Scope, &r.Status, &started, &finished,
		&r.Summary.Documents, &r.Summary.Processed, &r.Summary.Links,
		&r.Summary.Downloaded, &r.Summary.Failed, &r.Summary.Rewritten)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, ferrors.WrapError(err, ferrors.CategoryHistory, "scan run").Build()
	}
	r.StartedAt = time.UnixMilli(started)
	if finished > 0 {
		r.FinishedAt = time.UnixMilli(finished)
	}
	return r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
