// Package export projects an analysis snapshot into serialized artifacts
// for the reporting layer: pretty JSON or YAML, optionally zstd-compressed.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"fieldlens/internal/errors"
	"fieldlens/internal/logging"
	"fieldlens/internal/pipeline"
)

// Format selects the serialization of an exported snapshot.
type Format string

const (
	// FormatJSON exports pretty-printed JSON
	FormatJSON Format = "json"
	// FormatYAML exports YAML
	FormatYAML Format = "yaml"
)

// Options configures one export.
type Options struct {
	Format   Format
	Compress bool // write a zstd-compressed .zst artifact
}

// Exporter writes snapshot artifacts into an output directory.
type Exporter struct {
	outDir string
	logger *logging.Logger
}

// NewExporter creates an exporter writing into outDir.
func NewExporter(outDir string, logger *logging.Logger) *Exporter {
	return &Exporter{outDir: outDir, logger: logger}
}

// Write serializes the snapshot and returns the written file path.
func (e *Exporter) Write(snap *pipeline.Snapshot, opts Options) (string, error) {
	if err := os.MkdirAll(e.outDir, 0755); err != nil {
		return "", errors.New(errors.ExportFailed, "creating output directory", err)
	}

	data, ext, err := Marshal(snap, opts.Format)
	if err != nil {
		return "", err
	}

	name := "field_usage." + ext
	if opts.Compress {
		data, err = compress(data)
		if err != nil {
			return "", errors.New(errors.ExportFailed, "compressing snapshot", err)
		}
		name += ".zst"
	}

	path := filepath.Join(e.outDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.New(errors.ExportFailed, "writing snapshot", err)
	}

	e.logger.Info("snapshot exported", map[string]interface{}{
		"path": path, "bytes": len(data),
	})
	return path, nil
}

// Marshal serializes a snapshot without touching the filesystem.
func Marshal(snap *pipeline.Snapshot, format Format) (data []byte, ext string, err error) {
	switch format {
	case FormatJSON, "":
		data, err = json.MarshalIndent(snap, "", "  ")
		ext = "json"
	case FormatYAML:
		data, err = yaml.Marshal(snap)
		ext = "yaml"
	default:
		return nil, "", fmt.Errorf("unsupported export format: %s", format)
	}
	if err != nil {
		return nil, "", errors.New(errors.ExportFailed, "marshaling snapshot", err)
	}
	return data, ext, nil
}

// ReadSnapshot loads a previously exported JSON snapshot, transparently
// decompressing .zst artifacts.
func ReadSnapshot(path string) (*pipeline.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".zst" {
		data, err = decompress(data)
		if err != nil {
			return nil, err
		}
	}

	var snap pipeline.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return &snap, nil
}

func compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = enc.Close() }()
	return enc.EncodeAll(data, nil), nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
