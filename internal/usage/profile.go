package usage

import (
	"fmt"
	"strings"
)

// Profile is the aggregated read/write/entry history of one field, keyed by
// (record type, field API name). The identity attributes are denormalized
// copies for display; an orphan profile (field referenced by automation but
// absent from the metadata catalog) leaves column/id empty and data type
// "unknown".
type Profile struct {
	RecordType string `json:"recordType"`
	Label      string `json:"label"`
	APIName    string `json:"apiName"`
	ColumnName string `json:"columnName"`
	FieldID    string `json:"fieldId"`
	DataType   string `json:"dataType"`

	Reads   []Event `json:"reads"`
	Writes  []Event `json:"writes"`
	Entries []Event `json:"entries"`
}

// IsReferenced reports whether any usage was recorded for this field.
func (p *Profile) IsReferenced() bool {
	return len(p.Reads) > 0 || len(p.Writes) > 0 || len(p.Entries) > 0
}

// IsOrphan reports whether this profile was created lazily for a field the
// catalog does not know.
func (p *Profile) IsOrphan() bool {
	return p.ColumnName == "" && p.FieldID == "" && p.DataType == "unknown"
}

// TotalUsages returns the combined event count across all three kinds.
func (p *Profile) TotalUsages() int {
	return len(p.Reads) + len(p.Writes) + len(p.Entries)
}

// Summary returns a compact usage string like "R:5 W:3 E:2", or "unused".
func (p *Profile) Summary() string {
	if !p.IsReferenced() {
		return "unused"
	}
	parts := make([]string, 0, 3)
	if len(p.Reads) > 0 {
		parts = append(parts, fmt.Sprintf("R:%d", len(p.Reads)))
	}
	if len(p.Writes) > 0 {
		parts = append(parts, fmt.Sprintf("W:%d", len(p.Writes)))
	}
	if len(p.Entries) > 0 {
		parts = append(parts, fmt.Sprintf("E:%d", len(p.Entries)))
	}
	return strings.Join(parts, " ")
}

// append routes an event to the list matching its kind. Unknown kinds are
// dropped; analyzers only construct the three declared kinds.
func (p *Profile) append(e Event) {
	switch e.Kind {
	case Read:
		p.Reads = append(p.Reads, e)
	case Write:
		p.Writes = append(p.Writes, e)
	case Entry:
		p.Entries = append(p.Entries, e)
	}
}
