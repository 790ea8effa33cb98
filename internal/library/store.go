// Copyright Justin Henderson, 2026. All rights reserved.

// Package library persists per-track reconciliation decisions in SQLite.
// The store is insert-only: the first decision written for an ISRC is the
// record of truth, and it gates all further catalog calls for that track.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/JustinHenderson98/CleanMusicLocator/pkg/types"
)

// Store manages the track decision SQLite database.
type Store struct {
	db *sql.DB
}

// PutOutcome reports what a Put call did. Duplicate writes are an expected
// branch for batch-continuation logic, not an error.
type PutOutcome int

const (
	// PutInserted means the record was written.
	PutInserted PutOutcome = iota
	// PutDuplicate means a record for the ISRC already existed; the
	// stored record is unchanged.
	PutDuplicate
)

// String returns the outcome label.
func (o PutOutcome) String() string {
	if o == PutDuplicate {
		return "duplicate"
	}
	return "inserted"
}

// Open opens or creates the track database at dbPath and ensures the
// schema exists. A failure here is fatal to the run: without the store
// there is no dedup guarantee.
func Open(cfg types.StoreConfig) (*Store, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "music.db"
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS tracks (
			isrc TEXT PRIMARY KEY,
			is_explicit INTEGER NOT NULL,
			explicit_version_exists INTEGER NOT NULL,
			title TEXT,
			artist TEXT,
			year INTEGER,
			version TEXT,
			duration TEXT,
			valid_isrc INTEGER,
			failure_code TEXT,
			file_path TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tracks_clean_explicit
			ON tracks(is_explicit, explicit_version_exists)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Exists reports whether a decision for isrc has already been persisted.
func (s *Store) Exists(ctx context.Context, isrc string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM tracks WHERE isrc = ?`, isrc,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking track %s: %w", isrc, err)
	}
	return true, nil
}

// Get returns the persisted record for isrc, or nil when absent.
func (s *Store) Get(ctx context.Context, isrc string) (*types.TrackRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT isrc, is_explicit, explicit_version_exists, title, artist, year,
		        version, duration, valid_isrc, failure_code, file_path, created_at
		 FROM tracks WHERE isrc = ?`, isrc)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading track %s: %w", isrc, err)
	}
	return rec, nil
}

// Put inserts a new record. It returns PutDuplicate, not an error, when a
// record for the ISRC already exists; the stored record stays untouched.
// Any other failure means the store can no longer be trusted.
func (s *Store) Put(ctx context.Context, rec types.TrackRecord) (PutOutcome, error) {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tracks (isrc, is_explicit, explicit_version_exists, title,
		        artist, year, version, duration, valid_isrc, failure_code,
		        file_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ISRC, boolInt(rec.IsExplicit), boolInt(rec.ExplicitVersionExists),
		rec.Title, rec.Artist, rec.Year, rec.Version, rec.Duration,
		boolInt(rec.ValidISRC), rec.FailureCode, rec.FilePath,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return PutDuplicate, nil
		}
		return PutInserted, fmt.Errorf("inserting track %s: %w", rec.ISRC, err)
	}
	return PutInserted, nil
}

// CleanWithExplicit returns every clean track for which an explicit
// counterpart was found. This is the actionable output of the whole scan.
func (s *Store) CleanWithExplicit(ctx context.Context) ([]types.TrackRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT isrc, is_explicit, explicit_version_exists, title, artist, year,
		        version, duration, valid_isrc, failure_code, file_path, created_at
		 FROM tracks
		 WHERE is_explicit = 0 AND explicit_version_exists = 1
		 ORDER BY artist, title, isrc`)
	if err != nil {
		return nil, fmt.Errorf("querying clean tracks: %w", err)
	}
	defer rows.Close()

	var records []types.TrackRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning track row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating track rows: %w", err)
	}
	return records, nil
}

// Count returns the total number of persisted records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM tracks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting tracks: %w", err)
	}
	return n, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*types.TrackRecord, error) {
	var (
		rec                            types.TrackRecord
		isExplicit, hasExplicit, valid int
		createdAt                      string
	)
	err := row.Scan(&rec.ISRC, &isExplicit, &hasExplicit, &rec.Title,
		&rec.Artist, &rec.Year, &rec.Version, &rec.Duration, &valid,
		&rec.FailureCode, &rec.FilePath, &createdAt)
	if err != nil {
		return nil, err
	}
	rec.IsExplicit = isExplicit != 0
	rec.ExplicitVersionExists = hasExplicit != 0
	rec.ValidISRC = valid != 0
	if t, parseErr := time.Parse(time.RFC3339, createdAt); parseErr == nil {
		rec.CreatedAt = t
	}
	return &rec, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
