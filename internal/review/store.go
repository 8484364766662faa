package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const storeFilename = "annotations.db"

const schema = `
CREATE TABLE IF NOT EXISTS annotations (
    record_key  TEXT PRIMARY KEY,
    label       TEXT NOT NULL,
    explanation TEXT NOT NULL DEFAULT '',
    updated_at  TEXT NOT NULL
);`

// Store persists a session's annotations in SQLite. The database lives
// inside the session staging directory, so it is removed with the
// session and nothing outlives it except an explicit export.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore creates or opens the annotation database inside dir.
func OpenStore(dir string) (*Store, error) {
	dbPath := filepath.Join(dir, storeFilename)
	db, err := sql.Open("sqlite", dbPath)
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
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save inserts or overwrites the annotation for its key.
func (s *Store) Save(ctx context.Context, a Annotation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO annotations (record_key, label, explanation, updated_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT(record_key) DO UPDATE SET
             label = excluded.label,
             explanation = excluded.explanation,
             updated_at = excluded.updated_at`,
		a.Key, string(a.Label), a.Explanation, a.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save annotation: %w", err)
	}
	return nil
}

// Get returns the annotation for key, or nil when none was saved.
func (s *Store) Get(ctx context.Context, key string) (*Annotation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT record_key, label, explanation, updated_at FROM annotations WHERE record_key = ?`, key)
	annotation, err := scanAnnotation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get annotation: %w", err)
	}
	return annotation, nil
}

// All returns every saved annotation keyed by record key.
func (s *Store) All(ctx context.Context) (map[string]Annotation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record_key, label, explanation, updated_at FROM annotations`)
	if err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	defer rows.Close()

	annotations := map[string]Annotation{}
	for rows.Next() {
		annotation, err := scanAnnotation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		annotations[annotation.Key] = *annotation
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	return annotations, nil
}

// Count returns the number of saved annotations.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM annotations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count annotations: %w", err)
	}
	return count, nil
}

func scanAnnotation(scan func(...any) error) (*Annotation, error) {
	var a Annotation
	var label, updatedAt string
	if err := scan(&a.Key, &label, &a.Explanation, &updatedAt); err != nil {
		return nil, err
	}
	a.Label = Label(label)
	if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		a.UpdatedAt = ts
	}
	return &a, nil
}
