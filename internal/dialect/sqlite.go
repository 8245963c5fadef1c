package dialect

import (
	"fmt"
	"net/url"
	"strings"
)

type SqliteDialect struct{}

// SystemTables are engine bookkeeping tables that never hold user data.
var SystemTables = []string{
	"sqlite_sequence",
	"sqlite_stat1",
	"sqlite_stat2",
	"sqlite_stat3",
	"sqlite_stat4",
	"sqlite_master",
	"sqlite_schema",
	"sqlite_temp_master",
	"sqlite_temp_schema",
}

func (d *SqliteDialect) DriverName() string {
	return "sqlite"
}

// DSN builds a URI filename for path. Read-only connections are opened with
// mode=ro and query_only so no statement can write to the file.
func (d *SqliteDialect) DSN(path string, readOnly bool) string {
	if path == ":memory:" {
		return "file::memory:"
	}
	u := url.URL{Scheme: "file", Opaque: (&url.URL{Path: path}).EscapedPath()}
	if readOnly {
		u.RawQuery = "mode=ro&_pragma=query_only(1)"
	}
	return u.String()
}

func (d *SqliteDialect) GetTablesQuery() string {
	return `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY rowid`
}

func (d *SqliteDialect) GetColumnsQuery() string {
	// cid, name, type, notnull, dflt_value, pk in physical column order
	return `SELECT cid, name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`
}

func (d *SqliteDialect) GetForeignKeysQuery() string {
	return `SELECT "table", "from", "to" FROM pragma_foreign_key_list(?) ORDER BY id, seq`
}

func (d *SqliteDialect) GetTableDefinitionQuery() string {
	return `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?`
}

// IsSystemTable reports whether name is reserved by the engine. SQLite
// refuses to create user tables with the sqlite_ prefix, so the prefix
// check covers internal tables the static list does not name.
func (d *SqliteDialect) IsSystemTable(name string) bool {
	for _, s := range SystemTables {
		if name == s {
			return true
		}
	}
	return strings.HasPrefix(strings.ToLower(name), "sqlite_")
}

// SelectRowsQuery selects each column through unary plus. The expression has
// no declared type, so the driver hands back the stored value untouched
// instead of converting date-like text to time.Time.
func (d *SqliteDialect) SelectRowsQuery(table string, cols []string) string {
	exprs := QuoteAll(cols, func(c string) string { return "+" + d.QuoteIdent(c) })
	if len(exprs) == 0 {
		exprs = []string{"NULL"}
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), d.QuoteIdent(table))
}

func (d *SqliteDialect) InsertStatement(table string, cols, vals []string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);", table, strings.Join(cols, ", "), strings.Join(vals, ", "))
}

func (d *SqliteDialect) DefaultValuesStatement(table string) string {
	return fmt.Sprintf("INSERT INTO %s DEFAULT VALUES;", table)
}

func (d *SqliteDialect) CountQuery(table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", d.QuoteIdent(table))
}

func (d *SqliteDialect) QuoteIdent(name string) string {
	return QuoteIdentifier(name)
}
