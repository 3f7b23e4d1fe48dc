// Package testutil provides shared test infrastructure for tests that need
// a throwaway SQLite store.
//
// Usage:
//
//	db := testutil.OpenAnalyticsDB(t)   // migrated store in t.TempDir()
//	db := testutil.OpenCRMDB(t)
package testutil

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/flowline-ai/flowline/internal/storage"
	analyticsmigrations "github.com/flowline-ai/flowline/migrations/analytics"
	crmmigrations "github.com/flowline-ai/flowline/migrations/crm"
)

// TestLogger returns a logger that discards its output, keeping test logs
// readable; storage and service code still exercises the logging paths.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// OpenAnalyticsDB opens a migrated analytics store in a temp dir.
// The store is closed automatically when the test finishes.
func OpenAnalyticsDB(t *testing.T) *storage.DB {
	t.Helper()
	return open(t, "analytics.db", analyticsmigrations.FS)
}

// OpenCRMDB opens a migrated CRM store in a temp dir.
// The store is closed automatically when the test finishes.
func OpenCRMDB(t *testing.T) *storage.DB {
	t.Helper()
	return open(t, "crm.db", crmmigrations.FS)
}

func open(t *testing.T, name string, migrations fs.FS) *storage.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	db, err := storage.Open(context.Background(), path, migrations, TestLogger())
	if err != nil {
		t.Fatalf("testutil: open %s: %v", name, err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
