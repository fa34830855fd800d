package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fieldlens/internal/config"
	"fieldlens/internal/storage"
)

var (
	runsDB           string
	runsFormat       string
	runsRunID        string
	runsUnreferenced bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List persisted analysis runs",
	Long: `List the analysis runs persisted to a SQLite snapshot database, or
the field profiles of one run.

Examples:
  fieldlens runs --db out/usage.db
  fieldlens runs --db out/usage.db --run-id 6f1c... --unreferenced`,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsDB, "db", "", "Snapshot database path (required)")
	runsCmd.Flags().StringVar(&runsFormat, "format", "human", "Output format (json, human)")
	runsCmd.Flags().StringVar(&runsRunID, "run-id", "", "Show the profiles of one run instead of the run list")
	runsCmd.Flags().BoolVar(&runsUnreferenced, "unreferenced", false, "With --run-id, only list unreferenced fields")
	_ = runsCmd.MarkFlagRequired("db")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	logger := newLogger(config.DefaultConfig())

	db, err := storage.Open(runsDB, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var resp interface{}
	if runsRunID != "" {
		resp, err = db.RunProfiles(runsRunID, runsUnreferenced)
	} else {
		resp, err = db.ListRuns()
	}
	if err != nil {
		return err
	}

	out, err := FormatResponse(resp, OutputFormat(runsFormat))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
