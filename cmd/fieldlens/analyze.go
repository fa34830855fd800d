package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fieldlens/internal/config"
	"fieldlens/internal/export"
	"fieldlens/internal/pipeline"
	"fieldlens/internal/storage"
)

var (
	analyzeInput        string
	analyzeOutput       string
	analyzeFormat       string
	analyzeExportFormat string
	analyzeAllowMissing bool
	analyzeDB           bool
	analyzeCompress     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full field usage analysis pipeline",
	Long: `Run the full analysis pipeline over an extraction directory.

Builds the field catalog from record-type metadata, pre-registers every
known field, then analyzes process flows, rules, and scripts in sequence.
The aggregated snapshot is exported to the output directory.

Examples:
  fieldlens analyze --input data/raw --output out
  fieldlens analyze --input data/raw --output out --export-format yaml --compress
  fieldlens analyze --input data/raw --output out --db
  fieldlens analyze --input data/raw --output out --allow-missing`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeInput, "input", "", "Extraction root directory (required)")
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "out", "Output directory for snapshot artifacts")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "human", "Console output format (json, human)")
	analyzeCmd.Flags().StringVar(&analyzeExportFormat, "export-format", "json", "Snapshot export format (json, yaml)")
	analyzeCmd.Flags().BoolVar(&analyzeAllowMissing, "allow-missing", false,
		"Treat a missing artifact directory as a warning instead of aborting")
	analyzeCmd.Flags().BoolVar(&analyzeDB, "db", false, "Also persist the snapshot to SQLite (usage.db)")
	analyzeCmd.Flags().BoolVar(&analyzeCompress, "compress", false, "zstd-compress the exported snapshot")
	_ = analyzeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(analyzeInput)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if analyzeAllowMissing {
		cfg.Input.AllowMissingDirs = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(cfg)

	p := pipeline.New(pipeline.Options{
		InputRoot: analyzeInput,
		Config:    cfg,
	}, logger)

	snap, err := p.Run()
	if err != nil {
		return err
	}

	exporter := export.NewExporter(analyzeOutput, logger)
	if _, err := exporter.Write(snap, export.Options{
		Format:   export.Format(analyzeExportFormat),
		Compress: analyzeCompress,
	}); err != nil {
		return err
	}

	if analyzeDB {
		db, err := storage.Open(filepath.Join(analyzeOutput, "usage.db"), logger)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		if err := db.SaveSnapshot(snap); err != nil {
			return err
		}
	}

	out, err := FormatResponse(snap, OutputFormat(analyzeFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
	return nil
}
