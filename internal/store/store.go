// ABOUTME: SQLite persistence for the latest original and mimic clips
// ABOUTME: A single fixed record holding both raw blobs and their mime types
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrUnavailable wraps every storage failure
var ErrUnavailable = errors.New("local storage unavailable")

// recordKey is the only row ever written
const recordKey = "latest"

// Record is the persisted session. A nil blob means the clip is absent.
type Record struct {
	OriginalBlob []byte
	OriginalMime string
	MimicBlob    []byte
	MimicMime    string
	UpdatedAt    time.Time
}

// Empty reports whether neither clip is present
func (r *Record) Empty() bool {
	return r == nil || (len(r.OriginalBlob) == 0 && len(r.MimicBlob) == 0)
}

// SQLite stores the record in a sqlite database file
type SQLite struct {
	db *sql.DB
}

// Open creates or opens the database at path
func Open(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("%w: failed to create data directory: %v", ErrUnavailable, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", ErrUnavailable, err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS clips (
		key TEXT PRIMARY KEY,
		original_blob BLOB,
		original_mime TEXT,
		mimic_blob BLOB,
		mimic_mime TEXT,
		updated_at INTEGER NOT NULL
	);
	`

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to create table: %v", ErrUnavailable, err)
	}

	log.Printf("Clip store opened: %s", path)
	return &SQLite{db: db}, nil
}

// Close closes the database connection
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Get returns the stored record, or nil when nothing was saved
func (s *SQLite) Get(ctx context.Context) (*Record, error) {
	query := `SELECT original_blob, original_mime, mimic_blob, mimic_mime, updated_at
	          FROM clips WHERE key = ?`

	var (
		rec          Record
		originalMime sql.NullString
		mimicMime    sql.NullString
		updatedAt    int64
	)

	err := s.db.QueryRowContext(ctx, query, recordKey).Scan(
		&rec.OriginalBlob, &originalMime, &rec.MimicBlob, &mimicMime, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read record: %v", ErrUnavailable, err)
	}

	rec.OriginalMime = originalMime.String
	rec.MimicMime = mimicMime.String
	rec.UpdatedAt = time.UnixMilli(updatedAt)
	return &rec, nil
}

// Put replaces the stored record
func (s *SQLite) Put(ctx context.Context, rec Record) error {
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}

	query := `INSERT INTO clips (key, original_blob, original_mime, mimic_blob, mimic_mime, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?)
	          ON CONFLICT(key) DO UPDATE SET
	            original_blob = excluded.original_blob,
	            original_mime = excluded.original_mime,
	            mimic_blob = excluded.mimic_blob,
	            mimic_mime = excluded.mimic_mime,
	            updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query, recordKey,
		nullBlob(rec.OriginalBlob), nullString(rec.OriginalMime),
		nullBlob(rec.MimicBlob), nullString(rec.MimicMime),
		rec.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("%w: failed to write record: %v", ErrUnavailable, err)
	}
	return nil
}

// Delete removes the stored record
func (s *SQLite) Delete(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM clips WHERE key = ?`, recordKey); err != nil {
		return fmt.Errorf("%w: failed to delete record: %v", ErrUnavailable, err)
	}
	return nil
}

func nullBlob(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
