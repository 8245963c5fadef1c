package engine

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Sink receives the dump output in order: the banner once, then statements.
type Sink interface {
	Banner(lines []string) error
	Statement(table, stmt string) error
	Flush() error
}

// TextSink writes the dump as newline-terminated lines.
type TextSink struct {
	w *bufio.Writer
}

func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: bufio.NewWriter(w)}
}

func (s *TextSink) Banner(lines []string) error {
	for _, l := range lines {
		if err := s.line(l); err != nil {
			return err
		}
	}
	return nil
}

func (s *TextSink) Statement(_, stmt string) error {
	return s.line(stmt)
}

func (s *TextSink) Flush() error {
	return s.w.Flush()
}

func (s *TextSink) line(l string) error {
	if _, err := s.w.WriteString(l); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var (
	_ execer = (*sql.DB)(nil)
	_ execer = (*sql.Tx)(nil)
)

// ExecSink replays statements against a database. A failing statement is
// recorded against its table and replay carries on with the next one.
type ExecSink struct {
	Ctx  context.Context
	Exec execer

	Applied  map[string]int
	Failures map[string]error // first failure per table
}

func NewExecSink(ctx context.Context, exec execer) *ExecSink {
	return &ExecSink{
		Ctx:      ctx,
		Exec:     exec,
		Applied:  make(map[string]int),
		Failures: make(map[string]error),
	}
}

func (s *ExecSink) Banner([]string) error { return nil }

func (s *ExecSink) Statement(table, stmt string) error {
	if _, err := s.Exec.ExecContext(s.Ctx, stmt); err != nil {
		if _, seen := s.Failures[table]; !seen {
			s.Failures[table] = fmt.Errorf("replay %q: %w", stmt, err)
			logrus.WithFields(logrus.Fields{"table": table, "error": err}).Warn("statement failed on replay")
		}
		return nil
	}
	s.Applied[table]++
	return nil
}

func (s *ExecSink) Flush() error { return nil }
