package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sqlitedump/internal/engine"
	"sqlitedump/internal/schema"

	"github.com/go-test/deep"
)

func TestDump_DefaultElisionScenario(t *testing.T) {
	db, d := openTestDB(t,
		`CREATE TABLE t (id INTEGER, flag BOOLEAN DEFAULT 0, name TEXT)`,
		`INSERT INTO t VALUES (1, 0, NULL)`,
		`INSERT INTO t VALUES (2, 1, 'O''Brien')`,
	)

	got := dumpText(t, db, d, schema.AnalyzeOptions{}, engine.DumpOptions{})
	want := withBanner(
		"INSERT INTO t (id) VALUES (1);",
		"INSERT INTO t (id, flag, name) VALUES (2, 1, 'O''Brien');",
	)
	if got != want {
		t.Errorf("unexpected dump:\n%s\nwant:\n%s", got, want)
	}
}

func TestBanner(t *testing.T) {
	want := []string{
		"------------------------------------------------------------------------------",
		"-- sqlitedump is brought to you by Burly Burr Knife Sharpening in Seattle, WA",
		"-- Check out the upcoming appearances on burlyburr.com",
		"------------------------------------------------------------------------------",
	}
	if diff := deep.Equal(engine.Banner, want); diff != nil {
		t.Error(diff)
	}
	for _, l := range engine.Banner {
		if !strings.HasPrefix(l, "--") {
			t.Errorf("banner line is not a SQL comment: %q", l)
		}
	}
}

func TestDump_EmptyDatabaseIsBannerOnly(t *testing.T) {
	db, d := openTestDB(t, `CREATE TABLE t (id INTEGER)`)

	if got, want := dumpText(t, db, d, schema.AnalyzeOptions{}, engine.DumpOptions{}), withBanner(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got := dumpText(t, db, d, schema.AnalyzeOptions{}, engine.DumpOptions{SkipBanner: true}); got != "" {
		t.Errorf("expected no output without banner, got %q", got)
	}
}

func TestDump_ExclusionLeavesOtherTablesIdentical(t *testing.T) {
	db, d := openTestDB(t,
		`CREATE TABLE a (id INTEGER, v TEXT)`,
		`CREATE TABLE b (id INTEGER, v TEXT)`,
		`CREATE TABLE c (id INTEGER PRIMARY KEY AUTOINCREMENT, v TEXT DEFAULT 'x')`,
		`INSERT INTO a VALUES (1, 'a1'), (2, 'a2')`,
		`INSERT INTO b VALUES (1, 'b1')`,
		`INSERT INTO c (v) VALUES ('x'), ('y')`,
	)

	full := dumpText(t, db, d, schema.AnalyzeOptions{}, engine.DumpOptions{})
	filtered := dumpText(t, db, d, schema.AnalyzeOptions{ExcludeTables: []string{"b"}}, engine.DumpOptions{})

	var withoutB []string
	for _, line := range strings.Split(full, "\n") {
		if !strings.HasPrefix(line, "INSERT INTO b ") {
			withoutB = append(withoutB, line)
		}
	}
	if got, want := filtered, strings.Join(withoutB, "\n"); got != want {
		t.Errorf("filtered dump differs:\n%s\nwant:\n%s", got, want)
	}

	if strings.Contains(full, "sqlite_sequence") {
		t.Errorf("system table leaked into dump:\n%s", full)
	}
	if !strings.Contains(full, "INSERT INTO c (id, v) VALUES (1, 'x');") {
		t.Errorf("expected quoted default kept in table c:\n%s", full)
	}

	// system tables stay out even when named in the exclusion list
	sys := dumpText(t, db, d, schema.AnalyzeOptions{ExcludeTables: []string{"sqlite_sequence"}}, engine.DumpOptions{})
	if sys != full {
		t.Errorf("excluding a system table changed the dump")
	}
}

func TestDump_EmptyRowModes(t *testing.T) {
	db, d := openTestDB(t,
		`CREATE TABLE t (a INTEGER DEFAULT 1, b TEXT)`,
		`INSERT INTO t VALUES (1, NULL)`,
		`INSERT INTO t VALUES (2, NULL)`,
	)

	tests := []struct {
		mode engine.EmptyRowMode
		want []string
	}{
		{engine.EmptyRowEmpty, []string{"INSERT INTO t () VALUES ();", "INSERT INTO t (a) VALUES (2);"}},
		{engine.EmptyRowDefaultValues, []string{"INSERT INTO t DEFAULT VALUES;", "INSERT INTO t (a) VALUES (2);"}},
		{engine.EmptyRowSkip, []string{"INSERT INTO t (a) VALUES (2);"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := dumpText(t, db, d, schema.AnalyzeOptions{}, engine.DumpOptions{
				SkipBanner: true,
				Statement:  engine.StatementOptions{EmptyRow: tt.mode},
			})
			if want := strings.Join(tt.want, "\n") + "\n"; got != want {
				t.Errorf("got:\n%s\nwant:\n%s", got, want)
			}
		})
	}
}

func TestDump_UnquoteDefaults(t *testing.T) {
	db, d := openTestDB(t,
		`CREATE TABLE orders (id INTEGER, status TEXT DEFAULT 'new', note TEXT DEFAULT NULL)`,
		`INSERT INTO orders VALUES (1, 'new', NULL)`,
		`INSERT INTO orders VALUES (2, 'paid', 'late')`,
	)

	exact := dumpText(t, db, d, schema.AnalyzeOptions{}, engine.DumpOptions{SkipBanner: true})
	want := "INSERT INTO orders (id, status, note) VALUES (1, 'new', NULL);\n" +
		"INSERT INTO orders (id, status, note) VALUES (2, 'paid', 'late');\n"
	if exact != want {
		t.Errorf("got:\n%s\nwant:\n%s", exact, want)
	}

	unquoted := dumpText(t, db, d, schema.AnalyzeOptions{}, engine.DumpOptions{
		SkipBanner: true,
		Statement:  engine.StatementOptions{UnquoteDefaults: true},
	})
	want = "INSERT INTO orders (id) VALUES (1);\n" +
		"INSERT INTO orders (id, status, note) VALUES (2, 'paid', 'late');\n"
	if unquoted != want {
		t.Errorf("got:\n%s\nwant:\n%s", unquoted, want)
	}
}

func TestDump_QuoteIdentifiers(t *testing.T) {
	db, d := openTestDB(t,
		`CREATE TABLE "order lines" ("line no" INTEGER, "select" TEXT)`,
		`INSERT INTO "order lines" VALUES (1, 'x')`,
	)

	plain := dumpText(t, db, d, schema.AnalyzeOptions{}, engine.DumpOptions{SkipBanner: true})
	if want := "INSERT INTO order lines (line no, select) VALUES (1, 'x');\n"; plain != want {
		t.Errorf("got %q, want %q", plain, want)
	}

	quoted := dumpText(t, db, d, schema.AnalyzeOptions{}, engine.DumpOptions{
		SkipBanner: true,
		Statement:  engine.StatementOptions{QuoteIdentifiers: true},
	})
	if want := `INSERT INTO "order lines" ("line no", "select") VALUES (1, 'x');` + "\n"; quoted != want {
		t.Errorf("got %q, want %q", quoted, want)
	}
}

func TestDump_ValueKinds(t *testing.T) {
	db, d := openTestDB(t,
		`CREATE TABLE v (i INTEGER, r REAL, s TEXT, b BLOB, dt DATETIME, any_col)`,
		`INSERT INTO v VALUES (-5, 2.0, 'it''s', X'CAFE', '2024-05-06 07:08:09', 'TRUE')`,
	)

	got := dumpText(t, db, d, schema.AnalyzeOptions{}, engine.DumpOptions{SkipBanner: true})
	want := "INSERT INTO v (i, r, s, b, dt, any_col) VALUES (-5, 2.0, 'it''s', X'CAFE', '2024-05-06 07:08:09', 'TRUE');\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDump_Results(t *testing.T) {
	db, d := openTestDB(t,
		`CREATE TABLE a (id INTEGER DEFAULT 0)`,
		`CREATE TABLE b (id INTEGER)`,
		`INSERT INTO a VALUES (0), (1), (0)`,
		`INSERT INTO b VALUES (1)`,
	)
	ctx := context.Background()

	tables, err := schema.Analyze(ctx, db, d, schema.AnalyzeOptions{})
	if err != nil {
		t.Fatal(err)
	}

	var seen []string
	results, err := engine.Dump(ctx, db, d, tables, engine.NewTextSink(&strings.Builder{}), engine.DumpOptions{
		Statement: engine.StatementOptions{EmptyRow: engine.EmptyRowSkip},
		OnTable:   func(r engine.TableResult) { seen = append(seen, r.Table) },
	})
	if err != nil {
		t.Fatal(err)
	}

	expected := []engine.TableResult{
		{Table: "a", Rows: 3, Statements: 1},
		{Table: "b", Rows: 1, Statements: 1},
	}
	if diff := deep.Equal(results, expected); diff != nil {
		t.Error(diff)
	}
	if diff := deep.Equal(seen, []string{"a", "b"}); diff != nil {
		t.Error(diff)
	}
}

type failingSink struct{}

func (failingSink) Banner([]string) error { return nil }

func (failingSink) Statement(string, string) error { return errors.New("disk full") }

func (failingSink) Flush() error { return nil }

func TestDump_SinkErrorAborts(t *testing.T) {
	db, d := openTestDB(t,
		`CREATE TABLE t (id INTEGER)`,
		`INSERT INTO t VALUES (1), (2)`,
	)
	ctx := context.Background()
	tables, err := schema.Analyze(ctx, db, d, schema.AnalyzeOptions{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := engine.Dump(ctx, db, d, tables, failingSink{}, engine.DumpOptions{}); err == nil || err.Error() != "disk full" {
		t.Errorf("expected sink error, got %v", err)
	}
}

func TestBuildInsert_RowLengthMismatch(t *testing.T) {
	a := &engine.Assembler{Dialect: nil}
	tbl := &schema.Table{Name: "t", Columns: []*schema.Column{{Name: "a"}}}
	if _, _, err := a.BuildInsert(tbl, []any{1, 2}); err == nil {
		t.Error("expected error for misaligned row")
	}
}

func TestBuildInsert_UnsupportedValueFailsLoudly(t *testing.T) {
	a := &engine.Assembler{}
	tbl := &schema.Table{Name: "t", Columns: []*schema.Column{{Name: "a"}}}
	if _, _, err := a.BuildInsert(tbl, []any{struct{}{}}); !errors.Is(err, engine.ErrUnsupportedValue) {
		t.Errorf("expected ErrUnsupportedValue, got %v", err)
	}
}

func TestParseEmptyRowMode(t *testing.T) {
	for in, want := range map[string]engine.EmptyRowMode{
		"":               engine.EmptyRowEmpty,
		"empty":          engine.EmptyRowEmpty,
		"default-values": engine.EmptyRowDefaultValues,
		"skip":           engine.EmptyRowSkip,
	} {
		got, err := engine.ParseEmptyRowMode(in)
		if err != nil || got != want {
			t.Errorf("ParseEmptyRowMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := engine.ParseEmptyRowMode("none"); err == nil {
		t.Error("expected error for unknown mode")
	}
}
