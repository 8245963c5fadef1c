package engine

import (
	"fmt"

	"sqlitedump/internal/dialect"
	"sqlitedump/internal/schema"
)

// EmptyRowMode decides what to emit for a row whose every column was elided.
type EmptyRowMode string

const (
	// EmptyRowEmpty emits INSERT INTO t () VALUES (); which some engines,
	// SQLite included, reject.
	EmptyRowEmpty EmptyRowMode = "empty"
	// EmptyRowDefaultValues emits INSERT INTO t DEFAULT VALUES;
	EmptyRowDefaultValues EmptyRowMode = "default-values"
	// EmptyRowSkip emits nothing for the row.
	EmptyRowSkip EmptyRowMode = "skip"
)

func ParseEmptyRowMode(s string) (EmptyRowMode, error) {
	switch m := EmptyRowMode(s); m {
	case "":
		return EmptyRowEmpty, nil
	case EmptyRowEmpty, EmptyRowDefaultValues, EmptyRowSkip:
		return m, nil
	default:
		return "", fmt.Errorf("invalid empty row mode %q (want %s, %s or %s)", s, EmptyRowEmpty, EmptyRowDefaultValues, EmptyRowSkip)
	}
}

type StatementOptions struct {
	// QuoteIdentifiers double-quotes table and column names in the output.
	// Off by default: names are written exactly as the catalog reports them.
	QuoteIdentifiers bool
	EmptyRow         EmptyRowMode
	// UnquoteDefaults elides with IsDefaultLiteral instead of IsDefault, so a
	// stored new matches DEFAULT 'new'.
	UnquoteDefaults bool
}

// Assembler turns scanned rows into INSERT statements.
type Assembler struct {
	Dialect dialect.Dialect
	Options StatementOptions
}

// BuildInsert assembles the statement for one row of t. Columns whose value
// IsDefault are left out along with their names. ok is false when the row
// produced no statement (all columns elided and EmptyRowSkip set).
func (a *Assembler) BuildInsert(t *schema.Table, row []any) (stmt string, ok bool, err error) {
	if len(row) != len(t.Columns) {
		return "", false, fmt.Errorf("table %s: row has %d values for %d columns", t.Name, len(row), len(t.Columns))
	}

	elide := IsDefault
	if a.Options.UnquoteDefaults {
		elide = IsDefaultLiteral
	}

	var colNames, colValues []string
	for i, col := range t.Columns {
		if elide(row[i], col) {
			continue
		}
		lit, err := EncodeValue(row[i], col.DeclaredType)
		if err != nil {
			return "", false, fmt.Errorf("table %s column %s: %w", t.Name, col.Name, err)
		}
		colNames = append(colNames, a.ident(col.Name))
		colValues = append(colValues, lit)
	}

	table := a.ident(t.Name)
	if len(colNames) == 0 {
		switch a.Options.EmptyRow {
		case EmptyRowSkip:
			return "", false, nil
		case EmptyRowDefaultValues:
			return a.Dialect.DefaultValuesStatement(table), true, nil
		}
	}
	return a.Dialect.InsertStatement(table, colNames, colValues), true, nil
}

// EncodeRow encodes every value of row without elision.
func EncodeRow(t *schema.Table, row []any) ([]string, error) {
	out := make([]string, len(row))
	for i, v := range row {
		var declared string
		if i < len(t.Columns) {
			declared = t.Columns[i].DeclaredType
		}
		lit, err := EncodeValue(v, declared)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", t.Name, err)
		}
		out[i] = lit
	}
	return out, nil
}

func (a *Assembler) ident(name string) string {
	if a.Options.QuoteIdentifiers {
		return a.Dialect.QuoteIdent(name)
	}
	return name
}
