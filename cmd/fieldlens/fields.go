package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fieldlens/internal/config"
	"fieldlens/internal/pipeline"
	"fieldlens/internal/usage"
)

var (
	fieldsInput        string
	fieldsFormat       string
	fieldsUnreferenced bool
)

var fieldsCmd = &cobra.Command{
	Use:   "fields <record-type>",
	Short: "List field usage profiles for a record type",
	Long: `Run the analysis and list the usage profiles of one record type.

Examples:
  fieldlens fields Deals --input data/raw
  fieldlens fields Deals --input data/raw --unreferenced`,
	Args: cobra.ExactArgs(1),
	RunE: runFields,
}

func init() {
	fieldsCmd.Flags().StringVar(&fieldsInput, "input", "", "Extraction root directory (required)")
	fieldsCmd.Flags().StringVar(&fieldsFormat, "format", "human", "Output format (json, human)")
	fieldsCmd.Flags().BoolVar(&fieldsUnreferenced, "unreferenced", false, "Only list fields never referenced by automation")
	_ = fieldsCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(fieldsCmd)
}

func runFields(cmd *cobra.Command, args []string) error {
	recordType := args[0]

	cfg, err := config.Load(fieldsInput)
	if err != nil {
		return err
	}
	cfg.Input.AllowMissingDirs = true // a listing should not abort on partial extractions
	logger := newLogger(cfg)

	p := pipeline.New(pipeline.Options{InputRoot: fieldsInput, Config: cfg}, logger)
	snap, err := p.Run()
	if err != nil {
		return err
	}

	profiles := snap.Profiles[recordType]
	if profiles == nil {
		return fmt.Errorf("unknown record type: %s", recordType)
	}

	if fieldsUnreferenced {
		filtered := make([]*usage.Profile, 0, len(profiles))
		for _, p := range profiles {
			if !p.IsReferenced() {
				filtered = append(filtered, p)
			}
		}
		profiles = filtered
	}

	out, err := FormatResponse(profiles, OutputFormat(fieldsFormat))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
