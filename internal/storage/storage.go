// Package storage provides the SQLite storage layer for Flowline.
//
// Each service owns one store file (analytics.db or crm.db) opened through
// database/sql with the cgo-free modernc.org/sqlite driver. Every method is
// a single statement group in its own implicit transaction; no connection or
// transaction is held across calls. The one exception is ConversationStats,
// which wraps its three aggregate reads in a read transaction so the counts
// are snapshot-consistent with each other.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is the stored timestamp format: RFC 3339 UTC at second
// precision. Fixed-width, so stored values order lexically and window
// cutoffs compare with plain >=.
const timeLayout = time.RFC3339

// DB wraps a sql.DB handle for one store file.
type DB struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if absent) the SQLite file at path, applies WAL and
// busy-timeout pragmas, and runs any unapplied migrations from migrationsFS.
// The returned DB owns the handle; callers hold it for the process lifetime
// and Close it on shutdown.
func Open(ctx context.Context, path string, migrationsFS fs.FS, logger *slog.Logger) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}

	if _, err := sqlDB.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("storage: set WAL mode: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("storage: set busy timeout: %w", err)
	}

	db := &DB{db: sqlDB, logger: logger}
	if err := db.RunMigrations(ctx, migrationsFS); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// Ping checks connectivity to the store.
func (db *DB) Ping(ctx context.Context) error {
	return db.db.PingContext(ctx)
}

// Close releases the underlying handle.
func (db *DB) Close() error {
	return db.db.Close()
}

// now returns the server-assigned creation timestamp for new rows.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

func formatTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("storage: parse timestamp %q: %w", s, err)
	}
	return t, nil
}
