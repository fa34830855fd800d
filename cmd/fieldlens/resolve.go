package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"fieldlens/internal/config"
	"fieldlens/internal/errors"
	"fieldlens/internal/resolver"
)

var (
	resolveInput   string
	resolveAPIName string
	resolveColumn  string
	resolveLabel   string
	resolveID      string
	resolveFormat  string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <record-type>",
	Short: "Resolve one field identity",
	Long: `Resolve a field in a record type by exactly one of its naming schemes.

Examples:
  fieldlens resolve Deals --input data/raw --api-name Stage
  fieldlens resolve Deals --input data/raw --column POTENTIALCF156
  fieldlens resolve Deals --input data/raw --label "Flag Reason"
  fieldlens resolve Contacts --input data/raw --id 3193870000616809033`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&resolveInput, "input", "", "Extraction root directory (required)")
	resolveCmd.Flags().StringVar(&resolveAPIName, "api-name", "", "Lookup by API name")
	resolveCmd.Flags().StringVar(&resolveColumn, "column", "", "Lookup by storage column name")
	resolveCmd.Flags().StringVar(&resolveLabel, "label", "", "Lookup by display label")
	resolveCmd.Flags().StringVar(&resolveID, "id", "", "Lookup by field ID")
	resolveCmd.Flags().StringVar(&resolveFormat, "format", "json", "Output format (json, human)")
	_ = resolveCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	recordType := args[0]

	key := resolver.Key{
		APIName:    resolveAPIName,
		ColumnName: resolveColumn,
		Label:      resolveLabel,
		ID:         resolveID,
	}
	set := 0
	for _, v := range []string{resolveAPIName, resolveColumn, resolveLabel, resolveID} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return errors.New(errors.InvalidLookupKey,
			"exactly one of --api-name, --column, --label, --id must be set", nil)
	}

	cfg, err := config.Load(resolveInput)
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	res, err := resolver.LoadDir(filepath.Join(resolveInput, cfg.Input.MetadataDir), resolver.LoadOptions{
		AliasOverridesPath: cfg.Scan.AliasOverrides,
	}, logger)
	if err != nil {
		return err
	}

	identity, ok := res.Resolve(recordType, key)
	if !ok {
		return errors.New(errors.FieldNotFound,
			fmt.Sprintf("no field in %s matches the given key", recordType), nil)
	}

	out, err := FormatResponse(identity, OutputFormat(resolveFormat))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
