package engine

import (
	"context"
	"database/sql"
	"fmt"

	"sqlitedump/internal/dialect"
	"sqlitedump/internal/schema"

	"github.com/sirupsen/logrus"
)

// Banner opens every dump. Every line is a SQL comment so the output replays as is.
var Banner = []string{
	"------------------------------------------------------------------------------",
	"-- sqlitedump is brought to you by Burly Burr Knife Sharpening in Seattle, WA",
	"-- Check out the upcoming appearances on burlyburr.com",
	"------------------------------------------------------------------------------",
}

type DumpOptions struct {
	Statement StatementOptions
	// SkipBanner leaves the banner out of the output.
	SkipBanner bool
	// OnTable, when set, is called after each table is written.
	OnTable func(TableResult)
}

// TableResult counts what one table contributed to a dump.
type TableResult struct {
	Table      string
	Rows       int
	Statements int
}

// Dump writes the banner followed by one INSERT per row of every table, in
// the order given. Rows are streamed from the scan straight to sink.
// The first error aborts the dump; output already handed to sink stays.
func Dump(ctx context.Context, db *sql.DB, d dialect.Dialect, tables []*schema.Table, sink Sink, opts DumpOptions) ([]TableResult, error) {
	if !opts.SkipBanner {
		if err := sink.Banner(Banner); err != nil {
			return nil, fmt.Errorf("failed to write banner: %w", err)
		}
	}

	a := &Assembler{Dialect: d, Options: opts.Statement}
	var results []TableResult

	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res := TableResult{Table: t.Name}
		err := schema.ScanRows(ctx, db, d, t, func(row []any) error {
			res.Rows++
			stmt, ok, err := a.BuildInsert(t, row)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			res.Statements++
			return sink.Statement(t.Name, stmt)
		})
		if err != nil {
			return results, err
		}

		logrus.WithFields(logrus.Fields{
			"table":      t.Name,
			"rows":       res.Rows,
			"statements": res.Statements,
		}).Debug("table dumped")

		results = append(results, res)
		if opts.OnTable != nil {
			opts.OnTable(res)
		}
	}

	if err := sink.Flush(); err != nil {
		return results, fmt.Errorf("failed to flush output: %w", err)
	}
	return results, nil
}
