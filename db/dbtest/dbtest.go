// Package dbtest opens throwaway SQLite databases with the production schema for tests.
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"eventhub/db"
)

// New returns a fresh database in t's temp dir. It is closed when the test ends.
func New(t testing.TB) *db.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eventhub.db")
	d, err := db.Open(context.Background(), db.DriverSQLite, "file:"+path, db.Pool{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	if err := d.CreateTables(context.Background()); err != nil {
		t.Fatalf("create tables: %v", err)
	}
	return d
}

// Exec runs setup statements and fails the test on the first error.
func Exec(t testing.TB, d *db.DB, stmts ...string) {
	t.Helper()
	for _, s := range stmts {
		if _, err := d.SQL().Exec(s); err != nil {
			t.Fatalf("exec %q: %v", s, err)
		}
	}
}

// Count returns SELECT COUNT(*) for the given query tail, e.g. "notifications WHERE event_id = 1".
func Count(t testing.TB, d *db.DB, from string, args ...any) int {
	t.Helper()
	var n int
	if err := d.SQL().QueryRow("SELECT COUNT(*) FROM "+from, args...).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", from, err)
	}
	return n
}
