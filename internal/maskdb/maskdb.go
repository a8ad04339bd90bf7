// Package maskdb persists a catalog of mask-generation runs in SQLite.
package maskdb

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps the run-catalog database handle.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the catalog at path and applies pragmas.
// Call Migrate before first use.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}
	return &DB{db}, nil
}

// Migrate brings the catalog schema up to the latest embedded version.
// Running it on an up-to-date catalog is a no-op.
func (db *DB) Migrate() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migration setup: %w", err)
	}
	// Not closing m: that would close the shared DB connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// RunRecord describes one completed mask-generation run.
type RunRecord struct {
	RunID        string          `json:"run_id"`
	ImageFile    string          `json:"image_file"`
	PoniFile     string          `json:"poni_file"`
	MaskFile     string          `json:"mask_file"`
	UserFile     string          `json:"user_file,omitempty"`
	Settings     json.RawMessage `json:"settings,omitempty"`
	TotalPixels  int64           `json:"total_pixels"`
	MaskedPixels int64           `json:"masked_pixels"`
	DurationMs   int64           `json:"duration_ms"`
	CreatedAt    time.Time       `json:"created_at"`
}

// InsertRun stores a run record. A missing RunID is assigned a fresh
// UUID; a zero CreatedAt becomes the current time. Returns the run id.
func (db *DB) InsertRun(rec RunRecord) (string, error) {
	if rec.RunID == "" {
		rec.RunID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	settings := "{}"
	if len(rec.Settings) > 0 {
		settings = string(rec.Settings)
	}

	_, err := db.Exec(`
		INSERT INTO mask_runs (
			run_id, image_file, poni_file, mask_file, user_file,
			settings, total_pixels, masked_pixels, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID,
		rec.ImageFile,
		rec.PoniFile,
		rec.MaskFile,
		rec.UserFile,
		settings,
		rec.TotalPixels,
		rec.MaskedPixels,
		rec.DurationMs,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return rec.RunID, nil
}

// RunByID fetches one run record.
func (db *DB) RunByID(runID string) (*RunRecord, error) {
	row := db.QueryRow(`
		SELECT run_id, image_file, poni_file, mask_file, user_file,
		       settings, total_pixels, masked_pixels, duration_ms, created_at
		FROM mask_runs WHERE run_id = ?`, runID)
	rec, err := scanRun(row)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return rec, nil
}

// RecentRuns returns up to limit runs, newest first.
func (db *DB) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(`
		SELECT run_id, image_file, poni_file, mask_file, user_file,
		       settings, total_pixels, masked_pixels, duration_ms, created_at
		FROM mask_runs ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var recs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*RunRecord, error) {
	var rec RunRecord
	var settings, createdAt string
	err := s.Scan(
		&rec.RunID,
		&rec.ImageFile,
		&rec.PoniFile,
		&rec.MaskFile,
		&rec.UserFile,
		&settings,
		&rec.TotalPixels,
		&rec.MaskedPixels,
		&rec.DurationMs,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	rec.Settings = json.RawMessage(settings)
	rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	return &rec, nil
}
