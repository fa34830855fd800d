package main

import (
	"github.com/spf13/cobra"

	"fieldlens/internal/config"
	"fieldlens/internal/logging"
	"fieldlens/internal/version"
)

var (
	// logLevelFlag is the CLI --log-level flag value
	logLevelFlag string
	// logFormatFlag is the CLI --log-format flag value
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "fieldlens",
	Short: "fieldlens - CRM field usage analysis",
	Long: `fieldlens resolves, classifies, and reports where and how individual CRM
data fields are referenced by the automation layer: process-flow
definitions, rule-based triggers, and custom scripts.

It reconciles each logical field across its naming schemes (label, API
name, column name, field ID) and aggregates every observed reference into
a per-field usage profile.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("fieldlens version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format: human or json")
}

// newLogger builds a logger from flags, falling back to config values.
func newLogger(cfg *config.Config) *logging.Logger {
	format := logFormatFlag
	level := logLevelFlag
	if cfg != nil {
		if format == "" {
			format = cfg.Logging.Format
		}
		if level == "" {
			level = cfg.Logging.Level
		}
	}
	if format == "" {
		format = "human"
	}
	if level == "" {
		level = "info"
	}
	return logging.NewLogger(logging.Config{
		Format: logging.Format(format),
		Level:  logging.LogLevel(level),
	})
}
