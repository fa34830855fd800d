// Package resolver builds the canonical field-identity catalog from
// record-type metadata and resolves field references arriving under any of
// the four CRM naming schemes: display label, API name, storage column
// name, or numeric field ID.
//
// Field IDs are unique across the whole dataset; labels, API names and
// column names are unique only within a record type. Lookups never fail
// with an error: absence is an expected outcome that callers handle.
package resolver

import "fmt"

// FieldIdentity is the canonical representation of one field, unifying all
// of its naming variants. Immutable once the catalog is built.
type FieldIdentity struct {
	RecordType string                 `json:"recordType"`
	Label      string                 `json:"label"`
	APIName    string                 `json:"apiName"`
	ColumnName string                 `json:"columnName"`
	ID         string                 `json:"id"`
	DataType   string                 `json:"dataType"`
	Raw        map[string]interface{} `json:"-"` // full field definition from the metadata document
}

func (f *FieldIdentity) String() string {
	return fmt.Sprintf("Field(%s.%s)", f.RecordType, f.APIName)
}

// Key selects exactly one lookup scheme for Resolve. A zero Key, or a Key
// with more than one part set, resolves to not-found.
type Key struct {
	APIName    string
	ColumnName string
	Label      string
	ID         string
}

func (k Key) valid() bool {
	n := 0
	for _, v := range []string{k.APIName, k.ColumnName, k.Label, k.ID} {
		if v != "" {
			n++
		}
	}
	return n == 1
}

// ByAPIName returns a Key selecting lookup by API name.
func ByAPIName(name string) Key { return Key{APIName: name} }

// ByColumnName returns a Key selecting lookup by storage column name.
func ByColumnName(name string) Key { return Key{ColumnName: name} }

// ByLabel returns a Key selecting lookup by display label.
func ByLabel(label string) Key { return Key{Label: label} }

// ByID returns a Key selecting lookup by numeric field ID.
func ByID(id string) Key { return Key{ID: id} }
