package engine_test

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"sqlitedump/internal/dialect"
	"sqlitedump/internal/engine"
	"sqlitedump/internal/schema"

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

// openScratchDB opens an empty in-memory database.
func openScratchDB(t *testing.T, d dialect.Dialect) *sql.DB {
	t.Helper()
	db, err := sql.Open(d.DriverName(), d.DSN(":memory:", false))
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func dumpText(t *testing.T, db *sql.DB, d dialect.Dialect, aopts schema.AnalyzeOptions, opts engine.DumpOptions) string {
	t.Helper()
	ctx := context.Background()
	tables, err := schema.Analyze(ctx, db, d, aopts)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := engine.Dump(ctx, db, d, tables, engine.NewTextSink(&buf), opts); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func withBanner(lines ...string) string {
	all := append(append([]string{}, engine.Banner...), lines...)
	return strings.Join(all, "\n") + "\n"
}
