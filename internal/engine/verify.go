package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"sqlitedump/internal/dialect"
	"sqlitedump/internal/schema"
)

const (
	StatusOK         = "VERIFIED_OK"
	StatusMismatch   = "MISMATCH"
	StatusReplayFail = "REPLAY_FAIL"
)

// CopySchema creates every table of tables in dst using the definitions
// stored in src's catalog.
func CopySchema(ctx context.Context, src, dst *sql.DB, d dialect.Dialect, tables []*schema.Table) error {
	for _, t := range tables {
		var ddl sql.NullString
		if err := src.QueryRowContext(ctx, d.GetTableDefinitionQuery(), t.Name).Scan(&ddl); err != nil {
			return fmt.Errorf("failed to read definition (table: %s): %w", t.Name, err)
		}
		if !ddl.Valid {
			return fmt.Errorf("table %s has no stored definition", t.Name)
		}
		if _, err := dst.ExecContext(ctx, ddl.String); err != nil {
			return fmt.Errorf("failed to create table %s: %w", t.Name, err)
		}
	}
	return nil
}

// VerifyReplay replays the dump of src into scratch, which must already hold
// the same (empty) tables, and compares both databases table by table.
func VerifyReplay(ctx context.Context, src, scratch *sql.DB, d dialect.Dialect, tables []*schema.Table, opts DumpOptions) ([]schema.VerifyResult, error) {
	tx, err := scratch.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin replay: %w", err)
	}
	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	sink := NewExecSink(ctx, tx)
	opts.SkipBanner = true
	if _, err := Dump(ctx, src, d, tables, sink, opts); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit replay: %w", err)
	}
	tx = nil

	var results []schema.VerifyResult
	for _, t := range tables {
		res := schema.VerifyResult{TableName: t.Name, Status: StatusOK}

		res.Source, err = schema.CountRows(ctx, src, d, t.Name)
		if err != nil {
			return nil, err
		}
		res.Replayed, err = schema.CountRows(ctx, scratch, d, t.Name)
		if err != nil {
			return nil, err
		}

		if failure, ok := sink.Failures[t.Name]; ok {
			res.Status = StatusReplayFail
			res.ErrorMsg = failure.Error()
		} else if diff, err := compareTable(ctx, src, scratch, d, t); err != nil {
			return nil, err
		} else if diff != "" {
			res.Status = StatusMismatch
			res.ErrorMsg = diff
		}
		results = append(results, res)
	}
	return results, nil
}

// compareTable walks both copies of t in scan order and describes the first
// difference, or returns "" when they hold the same rows.
func compareTable(ctx context.Context, a, b *sql.DB, d dialect.Dialect, t *schema.Table) (string, error) {
	query := d.SelectRowsQuery(t.Name, t.ColumnNames())

	ra, err := a.QueryContext(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to query source rows (table: %s): %w", t.Name, err)
	}
	defer ra.Close()
	rb, err := b.QueryContext(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to query replayed rows (table: %s): %w", t.Name, err)
	}
	defer rb.Close()

	for n := 1; ; n++ {
		nextA, nextB := ra.Next(), rb.Next()
		switch {
		case !nextA && !nextB:
			if err := ra.Err(); err != nil {
				return "", err
			}
			return "", rb.Err()
		case !nextB:
			return fmt.Sprintf("row %d missing after replay", n), rb.Err()
		case !nextA:
			return fmt.Sprintf("row %d only present after replay", n), ra.Err()
		}

		va, err := scanEncoded(ra, t)
		if err != nil {
			return "", err
		}
		vb, err := scanEncoded(rb, t)
		if err != nil {
			return "", err
		}
		for i := range va {
			if va[i] != vb[i] {
				return fmt.Sprintf("row %d column %s: source %s, replayed %s", n, t.Columns[i].Name, va[i], vb[i]), nil
			}
		}
	}
}

func scanEncoded(rows *sql.Rows, t *schema.Table) ([]string, error) {
	values := make([]any, len(t.Columns))
	ptrs := make([]any, len(values))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("failed to scan row (table: %s): %w", t.Name, err)
	}
	return EncodeRow(t, values)
}

// Summarize counts results by status, e.g. "2 VERIFIED_OK, 1 MISMATCH".
func Summarize(results []schema.VerifyResult) string {
	counts := map[string]int{}
	var order []string
	for _, r := range results {
		if counts[r.Status] == 0 {
			order = append(order, r.Status)
		}
		counts[r.Status]++
	}
	parts := make([]string, len(order))
	for i, s := range order {
		parts[i] = fmt.Sprintf("%d %s", counts[s], s)
	}
	return strings.Join(parts, ", ")
}
