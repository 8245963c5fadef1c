package schema

import (
	"context"
	"database/sql"
	"fmt"

	"sqlitedump/internal/dialect"

	"github.com/sirupsen/logrus"
)

// AnalyzeOptions controls which tables Analyze returns and in what order.
type AnalyzeOptions struct {
	// ExcludeTables are user table names dropped from the result (exact match).
	ExcludeTables []string
	// FKOrder sorts tables so referenced tables come before their dependents.
	// Without it tables keep catalog order.
	FKOrder bool
}

// ---------------------------------------------------------------------
// 1. Catalog Reading
// ---------------------------------------------------------------------

// Analyze reads the user tables of db with their columns and foreign keys.
// System tables are always dropped; there is no way to request them.
func Analyze(ctx context.Context, db *sql.DB, d dialect.Dialect, opts AnalyzeOptions) ([]*Table, error) {
	excluded := make(map[string]bool, len(opts.ExcludeTables))
	for _, name := range opts.ExcludeTables {
		excluded[name] = true
	}

	names, err := ListTables(ctx, db, d)
	if err != nil {
		return nil, err
	}

	var tables []*Table
	for _, name := range names {
		if d.IsSystemTable(name) {
			logrus.WithField("table", name).Debug("skipping system table")
			continue
		}
		if excluded[name] {
			logrus.WithField("table", name).Info("table excluded")
			continue
		}

		cols, err := ListColumns(ctx, db, d, name)
		if err != nil {
			return nil, err
		}
		t := &Table{Name: name, Columns: cols, Dependencies: []string{}}
		tables = append(tables, t)
	}

	if err := attachForeignKeys(ctx, db, d, tables); err != nil {
		return nil, err
	}

	if opts.FKOrder {
		return SortTablesByFKCount(tables), nil
	}
	return tables, nil
}

// ListTables returns every table name in the catalog, in catalog order.
func ListTables(ctx context.Context, db *sql.DB, d dialect.Dialect) ([]string, error) {
	rows, err := db.QueryContext(ctx, d.GetTablesQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}
	return names, nil
}

// ListColumns returns the column schema of table in physical column order.
func ListColumns(ctx context.Context, db *sql.DB, d dialect.Dialect, table string) ([]*Column, error) {
	rows, err := db.QueryContext(ctx, d.GetColumnsQuery(), table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns (table: %s): %w", table, err)
	}
	defer rows.Close()

	var cols []*Column
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, cType      string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &cType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column (table: %s): %w", table, err)
		}

		col := &Column{
			Name:         name,
			DeclaredType: cType,
			NotNull:      notNull != 0,
			PrimaryKey:   pk,
		}
		if dflt.Valid {
			expr := dflt.String
			col.Default = &expr
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns (table: %s): %w", table, err)
	}
	return cols, nil
}

func attachForeignKeys(ctx context.Context, db *sql.DB, d dialect.Dialect, tables []*Table) error {
	tableMap := make(map[string]*Table, len(tables))
	for _, t := range tables {
		tableMap[t.Name] = t
	}

	for _, t := range tables {
		fkRows, err := db.QueryContext(ctx, d.GetForeignKeysQuery(), t.Name)
		if err != nil {
			return fmt.Errorf("failed to query foreign keys (table: %s): %w", t.Name, err)
		}

		for fkRows.Next() {
			var rTable, cName, rCol sql.NullString
			if err := fkRows.Scan(&rTable, &cName, &rCol); err != nil {
				fkRows.Close()
				return fmt.Errorf("failed to scan foreign key (table: %s): %w", t.Name, err)
			}
			if !rTable.Valid || rTable.String == t.Name {
				continue
			}
			// references to excluded or missing tables don't constrain ordering
			if _, ok := tableMap[rTable.String]; !ok {
				continue
			}
			t.ForeignKeys = append(t.ForeignKeys, &ForeignKey{
				Column:    cName.String,
				RefTable:  rTable.String,
				RefColumn: rCol.String,
			})
			if !contains(t.Dependencies, rTable.String) {
				t.Dependencies = append(t.Dependencies, rTable.String)
			}
		}
		err = fkRows.Err()
		fkRows.Close()
		if err != nil {
			return fmt.Errorf("error iterating foreign keys (table: %s): %w", t.Name, err)
		}
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------
// 2. Sorting Algorithm (Topological / Greedy)
// ---------------------------------------------------------------------

// SortTablesByFKCount sorts tables by dependency order.
// It handles circular dependencies by using a scoring system.
func SortTablesByFKCount(tables []*Table) []*Table {
	var sorted []*Table
	processed := make(map[string]bool)
	byName := make(map[string]*Table, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}

	for len(sorted) < len(tables) {
		added := false

		// Pass 1: add tables whose dependencies are fully satisfied
		for _, t := range tables {
			if processed[t.Name] {
				continue
			}

			ready := true
			for _, dep := range t.Dependencies {
				if !processed[dep] {
					ready = false
					break
				}
			}

			if ready {
				sorted = append(sorted, t)
				processed[t.Name] = true
				added = true
			}
		}

		if added {
			continue
		}

		// Pass 2: nothing was ready, so there is a cycle. Break it with the
		// best scoring table: fewest unmet dependencies, bonus when one of
		// those dependencies points straight back at it.
		var best *Table
		bestScore := 0
		for _, t := range tables {
			if processed[t.Name] {
				continue
			}

			score := 0
			circular := false
			for _, dep := range t.Dependencies {
				if processed[dep] {
					continue
				}
				score -= 100
				if cand, ok := byName[dep]; ok && contains(cand.Dependencies, t.Name) {
					circular = true
				}
			}
			if circular {
				score += 500
			}

			// Tie-breaker: name, for deterministic output
			if best == nil || score > bestScore || (score == bestScore && t.Name < best.Name) {
				best = t
				bestScore = score
			}
		}

		if best == nil {
			logrus.Error("dependency sort stalled, remaining tables cannot be ordered")
			break
		}
		sorted = append(sorted, best)
		processed[best.Name] = true
		logrus.WithFields(logrus.Fields{"table": best.Name, "score": bestScore}).
			Debug("breaking circular dependency")
	}

	return sorted
}
