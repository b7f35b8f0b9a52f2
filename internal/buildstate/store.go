// Package buildstate remembers what previous builds produced so unchanged
// pages can be skipped.
//
// State is kept in a SQLite database next to the output: one row per page
// holding the fingerprint of its last successful render, and one row per
// build holding its summary.
package buildstate

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	ferrors "git.home.luguber.info/inful/apidoc/internal/foundation/errors"
)

// Summary is the outcome of one build.
type Summary struct {
	Rendered int
	Skipped  int
	Failed   int
	Outcome  string
}

// PageRecord is the state of one successfully rendered page.
type PageRecord struct {
	Name        string
	Fingerprint string
	Output      string
	BuildID     string
}

// BuildRecord is a stored build.
type BuildRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Summary
}

// Store implements build state persistence using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (and creates when needed) the state database at path. Use
// ":memory:" for a throwaway store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, ferrors.FileSystemError("create state directory").
				WithCause(err).
				WithContext("path", path).
				Build()
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, ferrors.StateError("open state database").WithCause(err).
			WithContext("path", path).
			Build()
	}
	// An in-memory database only exists for the connection that created it.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, ferrors.StateError("initialize state schema").WithCause(err).
			WithContext("path", path).
			Build()
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		name TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		output TEXT NOT NULL,
		build_id TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		rendered INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		outcome TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginBuild records the start of a build and returns its id.
func (s *Store) BeginBuild(ctx context.Context, started time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (id, started_at) VALUES (?, ?)",
		id, started.UnixNano(),
	); err != nil {
		return "", ferrors.StateError("insert build").WithCause(err).Build()
	}
	return id, nil
}

// FinishBuild stores the summary of a build started with BeginBuild.
func (s *Store) FinishBuild(ctx context.Context, id string, finished time.Time, sum Summary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE builds SET finished_at = ?, rendered = ?, skipped = ?, failed = ?, outcome = ? WHERE id = ?",
		finished.UnixNano(), sum.Rendered, sum.Skipped, sum.Failed, sum.Outcome, id,
	)
	if err != nil {
		return ferrors.StateError("update build").WithCause(err).WithContext("build_id", id).Build()
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ferrors.NewError(ferrors.CategoryNotFound, "unknown build").WithContext("build_id", id).Build()
	}
	return nil
}

// LastBuild returns the most recently started build.
func (s *Store) LastBuild(ctx context.Context) (*BuildRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, started_at, finished_at, rendered, skipped, failed, outcome FROM builds ORDER BY started_at DESC LIMIT 1")
	var (
		rec      BuildRecord
		started  int64
		finished sql.NullInt64
		outcome  sql.NullString
	)
	err := row.Scan(&rec.ID, &started, &finished, &rec.Rendered, &rec.Skipped, &rec.Failed, &outcome)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ferrors.StateError("query last build").WithCause(err).Build()
	}
	rec.StartedAt = time.Unix(0, started)
	if finished.Valid {
		rec.FinishedAt = time.Unix(0, finished.Int64)
	}
	rec.Outcome = outcome.String
	return &rec, true, nil
}

// Page returns the stored record of a page.
func (s *Store) Page(ctx context.Context, name string) (*PageRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec := PageRecord{Name: name}
	err := s.db.QueryRowContext(ctx,
		"SELECT fingerprint, output, build_id FROM pages WHERE name = ?", name,
	).Scan(&rec.Fingerprint, &rec.Output, &rec.BuildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, ferrors.StateError("query page").WithCause(err).
			WithContext("page", name).
			Build()
	}
	return &rec, true, nil
}

// RecordPage stores the state of a successfully rendered page.
func (s *Store) RecordPage(ctx context.Context, rec PageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pages (name, fingerprint, output, build_id, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			output = excluded.output,
			build_id = excluded.build_id,
			updated_at = excluded.updated_at`,
		rec.Name, rec.Fingerprint, rec.Output, rec.BuildID, time.Now().UnixNano(),
	)
	if err != nil {
		return ferrors.StateError("record page").WithCause(err).
			WithContext("page", rec.Name).
			Build()
	}
	return nil
}

// ForgetPage drops the stored fingerprint of a page so the next build
// renders it again.
func (s *Store) ForgetPage(ctx context.Context, page string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM pages WHERE name = ?", page); err != nil {
		return ferrors.StateError("forget page").WithCause(err).
			WithContext("page", page).
			Build()
	}
	return nil
}
