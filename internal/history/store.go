package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Status values recorded for a run.
const (
	StatusAligned       = "aligned"
	StatusLowConfidence = "low_confidence"
	StatusManual        = "manual"
	StatusFailed        = "failed"
)

// Entry is one synchronization run.
type Entry struct {
	ID              string
	StartedAt       time.Time
	FinishedAt      time.Time
	ReferencePath   string
	InputPath       string
	OutputPath      string
	ReferenceOrigin string
	InputOrigin     string
	Offset          time.Duration
	Score           int
	Threshold       int
	Matched         bool
	Manual          bool
	DryRun          bool
	Status          string
	Error           string
}

// Store persists run entries in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or connects to the history database at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history database path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Record inserts entry, assigning an ID and timestamps when missing.
func (s *Store) Record(ctx context.Context, entry Entry) (Entry, error) {
	if s == nil || s.db == nil {
		return Entry{}, errors.New("history store unavailable")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if entry.StartedAt.IsZero() {
		entry.StartedAt = now
	}
	if entry.FinishedAt.IsZero() {
		entry.FinishedAt = now
	}
	if strings.TrimSpace(entry.Status) == "" {
		return Entry{}, errors.New("history entry status is required")
	}

	err := withBusyRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO runs (
				id, started_at, finished_at, reference_path, input_path, output_path,
				reference_origin, input_origin, offset_ms, score, threshold,
				matched, manual, dry_run, status, error_message
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.ID,
			entry.StartedAt.UTC().Format(time.RFC3339Nano),
			entry.FinishedAt.UTC().Format(time.RFC3339Nano),
			entry.ReferencePath,
			entry.InputPath,
			entry.OutputPath,
			entry.ReferenceOrigin,
			entry.InputOrigin,
			entry.Offset.Milliseconds(),
			entry.Score,
			entry.Threshold,
			boolToInt(entry.Matched),
			boolToInt(entry.Manual),
			boolToInt(entry.DryRun),
			entry.Status,
			entry.Error,
		)
		return err
	})
	if err != nil {
		return Entry{}, fmt.Errorf("insert history entry: %w", err)
	}
	return entry, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("history store unavailable")
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, reference_path, input_path, output_path,
                reference_origin, input_origin, offset_ms, score, threshold,
                matched, manual, dry_run, status, error_message
         FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		entry                   Entry
		started, finished       string
		offsetMS                int64
		matched, manual, dryRun int
	)
	if err := rows.Scan(
		&entry.ID, &started, &finished,
		&entry.ReferencePath, &entry.InputPath, &entry.OutputPath,
		&entry.ReferenceOrigin, &entry.InputOrigin,
		&offsetMS, &entry.Score, &entry.Threshold,
		&matched, &manual, &dryRun,
		&entry.Status, &entry.Error,
	); err != nil {
		return Entry{}, fmt.Errorf("scan history row: %w", err)
	}
	entry.StartedAt = parseTime(started)
	entry.FinishedAt = parseTime(finished)
	entry.Offset = time.Duration(offsetMS) * time.Millisecond
	entry.Matched = matched != 0
	entry.Manual = manual != 0
	entry.DryRun = dryRun != 0
	return entry, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
