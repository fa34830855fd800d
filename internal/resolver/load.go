package resolver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fieldlens/internal/logging"
)

// recordTypeDocument is the on-disk shape of one per-record-type metadata
// file produced by the extraction layer.
type recordTypeDocument struct {
	Metadata struct {
		APIName string `json:"api_name"`
	} `json:"metadata"`
	Fields struct {
		Fields []json.RawMessage `json:"fields"`
	} `json:"fields"`
}

// fieldDefinition is the subset of a raw field definition the catalog
// indexes. The full document is retained on FieldIdentity.Raw.
type fieldDefinition struct {
	FieldLabel string          `json:"field_label"`
	APIName    string          `json:"api_name"`
	ColumnName string          `json:"column_name"`
	ID         json.RawMessage `json:"id"` // string or number depending on exporter version
	DataType   string          `json:"data_type"`
}

// LoadOptions tunes catalog construction.
type LoadOptions struct {
	// AliasOverridesPath points at an optional aliases.toml document.
	AliasOverridesPath string
}

// LoadDir builds the resolver from a directory of per-record-type metadata
// files. Files that fail to parse are logged and skipped; the combined
// index file (all_modules.json) is ignored.
func LoadDir(dir string, opts LoadOptions, logger *logging.Logger) (*Resolver, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading metadata directory: %w", err)
	}

	r := New()

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") || e.Name() == "all_modules.json" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable metadata file", map[string]interface{}{
				"file": name, "error": err.Error(),
			})
			continue
		}

		var doc recordTypeDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			logger.Warn("skipping malformed metadata file", map[string]interface{}{
				"file": name, "error": err.Error(),
			})
			continue
		}

		recordType := doc.Metadata.APIName
		if recordType == "" {
			recordType = strings.TrimSuffix(name, ".json")
		}
		if len(doc.Fields.Fields) == 0 {
			logger.Debug("no fields in metadata file", map[string]interface{}{"file": name})
			continue
		}

		fields := make([]*FieldIdentity, 0, len(doc.Fields.Fields))
		for _, rawField := range doc.Fields.Fields {
			var def fieldDefinition
			if err := json.Unmarshal(rawField, &def); err != nil {
				continue
			}
			var raw map[string]interface{}
			_ = json.Unmarshal(rawField, &raw)

			fields = append(fields, &FieldIdentity{
				RecordType: recordType,
				Label:      def.FieldLabel,
				APIName:    def.APIName,
				ColumnName: def.ColumnName,
				ID:         idString(def.ID),
				DataType:   def.DataType,
				Raw:        raw,
			})
		}
		r.registerRecordType(recordType, fields)
	}

	overrides := map[string]string{}
	if opts.AliasOverridesPath != "" {
		overrides, err = LoadAliasOverrides(opts.AliasOverridesPath)
		if err != nil {
			return nil, fmt.Errorf("loading alias overrides: %w", err)
		}
	}
	r.buildAliases(overrides)

	logger.Info("field catalog built", map[string]interface{}{
		"recordTypes": len(r.fields),
		"fields":      r.FieldCount(),
	})
	return r, nil
}

// idString renders the id attribute, which older exporters emit as a JSON
// number, as the canonical numeric string. The raw token is kept as-is:
// field ids run to 19 digits and would lose precision through float64.
func idString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return s
}
