// Package dbtest opens migrated SQLite databases for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/vicu/vicu-api/internal/db"
)

// Open returns a fresh, fully migrated database in a temp dir.
func Open(t testing.TB) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	conn, err := db.Init(ctx, "sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(conn) })

	if err := db.RunMigrations(ctx, conn.DB, "sqlite"); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return conn
}
