package cmd

import (
	"fmt"

	"sqlitedump/internal/engine"
	"sqlitedump/internal/schema"

	"github.com/spf13/viper"
)

type DumpConfig struct {
	Settings SettingsConfig `mapstructure:"settings"`
	Output   OutputConfig   `mapstructure:"output"`
	Log      LogConfig      `mapstructure:"log"`

	emptyRow engine.EmptyRowMode // parsed from Output.EmptyRow
}

type SettingsConfig struct {
	ExcludeTables []string `mapstructure:"exclude_tables"`
	FKOrder       bool     `mapstructure:"fk_order"`
	Progress      bool     `mapstructure:"progress"`
}

type OutputConfig struct {
	QuoteIdentifiers bool   `mapstructure:"quote_identifiers"`
	EmptyRow         string `mapstructure:"empty_row"`
	UnquoteDefaults  bool   `mapstructure:"unquote_defaults"`
	Banner           bool   `mapstructure:"banner"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func init() {
	viper.SetDefault("settings.exclude_tables", []string{})
	viper.SetDefault("settings.fk_order", false)
	viper.SetDefault("settings.progress", false)
	viper.SetDefault("output.quote_identifiers", false)
	viper.SetDefault("output.empty_row", string(engine.EmptyRowEmpty))
	viper.SetDefault("output.unquote_defaults", false)
	viper.SetDefault("output.banner", true)
	viper.SetDefault("log.level", "warn")
}

// GetDumpConfig resolves the effective configuration (Flag > Env > Config > Default).
func GetDumpConfig() (*DumpConfig, error) {
	var cfg DumpConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	mode, err := engine.ParseEmptyRowMode(cfg.Output.EmptyRow)
	if err != nil {
		return nil, err
	}
	cfg.emptyRow = mode
	return &cfg, nil
}

func (c *DumpConfig) AnalyzeOptions() schema.AnalyzeOptions {
	return schema.AnalyzeOptions{
		ExcludeTables: c.Settings.ExcludeTables,
		FKOrder:       c.Settings.FKOrder,
	}
}

func (c *DumpConfig) DumpOptions() engine.DumpOptions {
	return engine.DumpOptions{
		Statement: engine.StatementOptions{
			QuoteIdentifiers: c.Output.QuoteIdentifiers,
			EmptyRow:         c.emptyRow,
			UnquoteDefaults:  c.Output.UnquoteDefaults,
		},
		SkipBanner: !c.Output.Banner,
	}
}
