package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fieldlens/internal/export"
)

var (
	exportSnapshot string
	exportOutput   string
	exportFormat   string
	exportCompress bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Re-project a saved snapshot",
	Long: `Re-project a previously exported JSON snapshot into another format
without re-running the analysis.

Examples:
  fieldlens export --snapshot out/field_usage.json --format yaml
  fieldlens export --snapshot out/field_usage.json --format json --compress`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportSnapshot, "snapshot", "", "Path to a saved snapshot (.json or .json.zst) (required)")
	exportCmd.Flags().StringVar(&exportOutput, "output", "out", "Output directory")
	exportCmd.Flags().StringVar(&exportFormat, "format", "yaml", "Export format (json, yaml)")
	exportCmd.Flags().BoolVar(&exportCompress, "compress", false, "zstd-compress the exported artifact")
	_ = exportCmd.MarkFlagRequired("snapshot")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	logger := newLogger(nil)

	snap, err := export.ReadSnapshot(exportSnapshot)
	if err != nil {
		return fmt.Errorf("reading snapshot: %w", err)
	}

	exporter := export.NewExporter(exportOutput, logger)
	path, err := exporter.Write(snap, export.Options{
		Format:   export.Format(exportFormat),
		Compress: exportCompress,
	})
	if err != nil {
		return err
	}

	fmt.Println(path)
	return nil
}
