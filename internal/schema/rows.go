package schema

import (
	"context"
	"database/sql"
	"fmt"

	"sqlitedump/internal/dialect"
)

// ScanRows streams the rows of t in scan order, calling fn with one value per
// column, positionally aligned with t.Columns. The slice passed to fn is
// reused between calls; fn must copy anything it keeps.
//
// Values are the driver's raw kinds: int64, float64, string, []byte or nil.
func ScanRows(ctx context.Context, db *sql.DB, d dialect.Dialect, t *Table, fn func(row []any) error) error {
	rows, err := db.QueryContext(ctx, d.SelectRowsQuery(t.Name, t.ColumnNames()))
	if err != nil {
		return fmt.Errorf("failed to query rows (table: %s): %w", t.Name, err)
	}
	defer rows.Close()

	values := make([]any, len(t.Columns))
	ptrs := make([]any, len(t.Columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if len(ptrs) == 0 {
		// the query selects a single NULL placeholder
		var discard any
		ptrs = []any{&discard}
	}

	for rows.Next() {
		for i := range values {
			values[i] = nil
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("failed to scan row (table: %s): %w", t.Name, err)
		}
		if err := fn(values); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows (table: %s): %w", t.Name, err)
	}
	return nil
}

// CountRows returns the number of rows in table.
func CountRows(ctx context.Context, db *sql.DB, d dialect.Dialect, table string) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, d.CountQuery(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows (table: %s): %w", table, err)
	}
	return n, nil
}
