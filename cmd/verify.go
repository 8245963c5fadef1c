package cmd

import (
	"database/sql"
	"fmt"
	"io"

	"sqlitedump/internal/engine"
	"sqlitedump/internal/schema"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <database-file>",
	Short: "Replay the dump into a scratch database and compare it with the source",
	Long: `verify copies the table definitions of the source into an in-memory
database, replays the generated INSERT statements there and compares
every table row by row. The source file is only read.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetDumpConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		src, d, err := openSource(ctx, args[0])
		if err != nil {
			return err
		}
		defer src.Close()

		scratch, err := sql.Open(d.DriverName(), d.DSN(":memory:", false))
		if err != nil {
			return fmt.Errorf("failed to open scratch db: %w", err)
		}
		defer scratch.Close()
		// every connection to :memory: is a separate database
		scratch.SetMaxOpenConns(1)

		logrus.WithField("file", args[0]).Info("analyzing schema")
		tables, err := schema.Analyze(ctx, src, d, cfg.AnalyzeOptions())
		if err != nil {
			return err
		}
		if err := engine.CopySchema(ctx, src, scratch, d, tables); err != nil {
			return err
		}

		opts := cfg.DumpOptions()
		stop := startProgress(cfg.Settings.Progress, "Replaying: ", len(tables), &opts)
		results, err := engine.VerifyReplay(ctx, src, scratch, d, tables, opts)
		stop()
		if err != nil {
			return err
		}

		if failed := printReport(cmd.OutOrStdout(), results); failed > 0 {
			return fmt.Errorf("verification failed: %s", engine.Summarize(results))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(verifyCmd)
}

// printReport writes the per-table summary and returns how many tables failed.
func printReport(w io.Writer, results []schema.VerifyResult) int {
	fmt.Fprintln(w, "Verification Report:")
	failed := 0
	for i, r := range results {
		icon := "✓"
		if r.Status != engine.StatusOK {
			icon = "!"
			failed++
		}
		fmt.Fprintf(w, "[%s] [%02d/%02d] %-20s : %d rows (Replayed: %d) - %s\n",
			icon, i+1, len(results), r.TableName, r.Source, r.Replayed, r.Status)
		if r.ErrorMsg != "" {
			fmt.Fprintf(w, "    └ %s\n", r.ErrorMsg)
		}
	}
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Tables: %d, Failed: %d\n", len(results), failed)
	return failed
}
