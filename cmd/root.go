package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"sqlitedump/internal/dialect"
	"sqlitedump/internal/engine"
	"sqlitedump/internal/schema"

	"github.com/gosuri/uiprogress"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrEngineUnavailable means the binary was built without the SQLite driver.
var ErrEngineUnavailable = errors.New("sqlite support is not available in this build")

// drivers lists the registered database/sql drivers.
var drivers = sql.Drivers

// Version is set at build time with -ldflags "-X sqlitedump/cmd.Version=...".
var Version = "dev"

var (
	cfgFile  string
	dryRun   bool
	noBanner bool
)

var RootCmd = &cobra.Command{
	Use:   "sqlitedump <database-file>",
	Short: "Export the rows of a SQLite database as INSERT statements",
	Long: `sqlitedump writes one INSERT statement per row of every user table to
standard output. Columns holding their declared default are left out.
The output carries no schema: replay it against an empty database
created with the same tables.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(viper.GetString("log.level"))
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Help()
		}

		cfg, err := GetDumpConfig()
		if err != nil {
			return err
		}
		if noBanner {
			cfg.Output.Banner = false
		}

		ctx := cmd.Context()

		db, d, err := openSource(ctx, args[0])
		if err != nil {
			return err
		}
		defer db.Close()

		// 1. Analyze
		logrus.WithField("file", args[0]).Info("analyzing schema")
		tables, err := schema.Analyze(ctx, db, d, cfg.AnalyzeOptions())
		if err != nil {
			return err
		}

		if dryRun {
			printPlan(cmd.OutOrStdout(), tables)
			return nil
		}

		// 2. Dump
		opts := cfg.DumpOptions()
		stop := startProgress(cfg.Settings.Progress, "Dumping: ", len(tables), &opts)
		results, err := engine.Dump(ctx, db, d, tables, engine.NewTextSink(cmd.OutOrStdout()), opts)
		stop()
		if err != nil {
			return err
		}

		total := 0
		for _, r := range results {
			total += r.Statements
		}
		logrus.WithFields(logrus.Fields{"tables": len(results), "statements": total}).Info("dump complete")
		return nil
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.Version = Version

	// Define flags
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sqlitedump.yaml)")
	RootCmd.PersistentFlags().String("log-level", "warn", "log level written to stderr (debug, info, warn, error)")
	RootCmd.PersistentFlags().StringSliceP("exclude-table", "e", []string{}, "comma-delimited list of table names to exclude")
	RootCmd.PersistentFlags().Bool("fk-order", false, "order tables so referenced tables come first")
	RootCmd.PersistentFlags().Bool("quote-identifiers", false, "double-quote table and column names in the output")
	RootCmd.PersistentFlags().String("empty-row", string(engine.EmptyRowEmpty), "statement for rows where every column is default: empty, default-values or skip")
	RootCmd.PersistentFlags().Bool("unquote-defaults", false, "read quoted and NULL column defaults as values when eliding")
	RootCmd.PersistentFlags().Bool("progress", false, "show a progress bar on stderr")
	RootCmd.Flags().BoolVar(&noBanner, "no-banner", false, "leave out the banner header")
	RootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the tables that would be exported and exit")

	// Bind flags to viper
	viper.BindPFlag("log.level", RootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("settings.exclude_tables", RootCmd.PersistentFlags().Lookup("exclude-table"))
	viper.BindPFlag("settings.fk_order", RootCmd.PersistentFlags().Lookup("fk-order"))
	viper.BindPFlag("settings.progress", RootCmd.PersistentFlags().Lookup("progress"))
	viper.BindPFlag("output.quote_identifiers", RootCmd.PersistentFlags().Lookup("quote-identifiers"))
	viper.BindPFlag("output.empty_row", RootCmd.PersistentFlags().Lookup("empty-row"))
	viper.BindPFlag("output.unquote_defaults", RootCmd.PersistentFlags().Lookup("unquote-defaults"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// 1. Executable Directory (Priority 1)
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}

		// 2. Current Directory (Priority 2)
		viper.AddConfigPath(".")

		viper.SetConfigName("sqlitedump")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("sqlitedump")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// openSource opens path read-only. The file must exist; the engine would
// otherwise report a bare "unable to open database file".
func openSource(ctx context.Context, path string) (*sql.DB, dialect.Dialect, error) {
	d, err := dialect.GetDialect("sqlite")
	if err != nil {
		return nil, nil, err
	}
	if !slices.Contains(drivers(), d.DriverName()) {
		return nil, nil, ErrEngineUnavailable
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("failed to open database: %s is a directory", path)
	}

	db, err := sql.Open(d.DriverName(), d.DSN(path, true))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	return db, d, nil
}

func printPlan(w io.Writer, tables []*schema.Table) {
	fmt.Fprintf(w, "Export plan (%d tables):\n", len(tables))
	for i, t := range tables {
		fmt.Fprintf(w, "[%02d] %s (columns: %d, dependencies: %v)\n", i+1, t.Name, len(t.Columns), t.Dependencies)
	}
}

// startProgress shows a per-table bar on stderr when enabled, hooking it into
// opts.OnTable. The returned func stops the bar.
func startProgress(enabled bool, label string, total int, opts *engine.DumpOptions) func() {
	if !enabled || total == 0 {
		return func() {}
	}

	p := uiprogress.New()
	p.SetOut(os.Stderr)
	p.Start()
	bar := p.AddBar(total).AppendCompleted().PrependElapsed()
	bar.PrependFunc(func(b *uiprogress.Bar) string {
		return label
	})

	next := opts.OnTable
	opts.OnTable = func(r engine.TableResult) {
		bar.Incr()
		if next != nil {
			next(r)
		}
	}
	return p.Stop
}
