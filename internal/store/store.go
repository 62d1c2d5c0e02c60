// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the food catalog, users, meal logs, daily
// summaries, and saved meal plans in a local SQLite database. The schema
// is managed by embedded goose migrations.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/pdiddy/nutriscan/pkg/types"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const dbFile = "nutriscan.db"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Store wraps the SQLite database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates DataDir/nutriscan.db and applies pending
// migrations. Migration progress is written to w.
func Open(ctx context.Context, cfg types.StoreConfig, w io.Writer) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := Migrate(ctx, db, w); err != nil {
		db.Close()
		return nil, err
	}
	return New(db), nil
}

// New wraps an already-migrated database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Migrate applies the embedded migrations to db.
func Migrate(ctx context.Context, db *sql.DB, w io.Writer) error {
	if w == nil {
		w = io.Discard
	}
	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(log.New(w, "", 0))
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("applying migrations: %w", err)
	}
	return nil
}

// SchemaVersion returns the version of the newest embedded migration, the
// schema a migrated database is at.
func SchemaVersion() (int64, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return 0, fmt.Errorf("listing migrations: %w", err)
	}
	var latest int64
	for _, name := range names {
		v, err := goose.NumericComponent(name)
		if err != nil {
			return 0, fmt.Errorf("migration %s: %w", name, err)
		}
		latest = max(latest, v)
	}
	return latest, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
