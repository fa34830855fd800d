package export

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"fieldlens/internal/logging"
	"fieldlens/internal/pipeline"
	"fieldlens/internal/usage"
)

func sampleSnapshot() *pipeline.Snapshot {
	p := &usage.Profile{
		RecordType: "Deals",
		Label:      "Stage",
		APIName:    "Stage",
		ColumnName: "STAGE",
		FieldID:    "1001",
		DataType:   "picklist",
		Reads: []usage.Event{{
			Kind:         usage.Read,
			Origin:       usage.OriginRule,
			OriginLabel:  "Rule: Stale deals (cond 1)",
			RecordType:   "Deals",
			FieldAPIName: "Stage",
			Detail:       map[string]interface{}{"comparator": "equal"},
		}},
	}
	return &pipeline.Snapshot{
		RunID:     "test-run",
		InputRoot: "/extract",
		Profiles:  map[string][]*usage.Profile{"Deals": {p}},
	}
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, logging.Discard())

	path, err := e.Write(sampleSnapshot(), Options{Format: FormatJSON})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "field_usage.json" {
		t.Errorf("path = %s", path)
	}

	snap, err := ReadSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	if snap.RunID != "test-run" || len(snap.Profiles["Deals"]) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.Profiles["Deals"][0].Reads[0].Detail["comparator"] != "equal" {
		t.Errorf("event detail lost in round trip")
	}
}

func TestWriteCompressed(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, logging.Discard())

	path, err := e.Write(sampleSnapshot(), Options{Format: FormatJSON, Compress: true})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(path, "field_usage.json.zst") {
		t.Errorf("path = %s", path)
	}

	// Compressed artifacts must read back transparently.
	snap, err := ReadSnapshot(path)
	if err != nil {
		t.Fatal(err)
	}
	if snap.RunID != "test-run" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestMarshalYAML(t *testing.T) {
	data, ext, err := Marshal(sampleSnapshot(), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if ext != "yaml" {
		t.Errorf("ext = %s", ext)
	}
	if !strings.Contains(string(data), "test-run") {
		t.Errorf("yaml output missing run id:\n%s", data)
	}
}

func TestMarshalDefaultsToJSON(t *testing.T) {
	data, ext, err := Marshal(sampleSnapshot(), "")
	if err != nil {
		t.Fatal(err)
	}
	if ext != "json" || !json.Valid(data) {
		t.Errorf("ext = %s, valid = %v", ext, json.Valid(data))
	}
}

func TestMarshalRejectsUnknownFormat(t *testing.T) {
	if _, _, err := Marshal(sampleSnapshot(), "xml"); err == nil {
		t.Fatal("expected an error for an unsupported format")
	}
}
