package schema_test

import (
	"database/sql"
	"path/filepath"
	"testing"

	"sqlitedump/internal/dialect"

	_ "modernc.org/sqlite"
)

// openTestDB creates a database file from stmts and reopens it read-only.
func openTestDB(t *testing.T, stmts ...string) (*sql.DB, dialect.Dialect) {
	t.Helper()
	d := &dialect.SqliteDialect{}
	path := filepath.Join(t.TempDir(), "test.db")

	rw, err := sql.Open(d.DriverName(), d.DSN(path, false))
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range stmts {
		if _, err := rw.Exec(s); err != nil {
			rw.Close()
			t.Fatalf("exec %q: %v", s, err)
		}
	}
	if err := rw.Close(); err != nil {
		t.Fatal(err)
	}

	db, err := sql.Open(d.DriverName(), d.DSN(path, true))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db, d
}
