package resolver

import (
	"sort"
)

// Resolver is the multi-key field identity catalog. Built once per analysis
// run, immutable afterwards. All record-type arguments are normalized
// through the alias map before any table access.
type Resolver struct {
	// per-record-type tables: recordType -> key -> identity
	byAPIName    map[string]map[string]*FieldIdentity
	byColumnName map[string]map[string]*FieldIdentity
	byLabel      map[string]map[string]*FieldIdentity
	byID         map[string]map[string]*FieldIdentity

	// flat ID table; field IDs are globally unique
	globalByID map[string]*FieldIdentity

	aliases map[string]string

	// recordType -> fields in registration order
	fields map[string][]*FieldIdentity
}

// New returns an empty resolver. Callers normally use LoadDir instead.
func New() *Resolver {
	return &Resolver{
		byAPIName:    make(map[string]map[string]*FieldIdentity),
		byColumnName: make(map[string]map[string]*FieldIdentity),
		byLabel:      make(map[string]map[string]*FieldIdentity),
		byID:         make(map[string]map[string]*FieldIdentity),
		globalByID:   make(map[string]*FieldIdentity),
		aliases:      make(map[string]string),
		fields:       make(map[string][]*FieldIdentity),
	}
}

// registerRecordType installs the per-record-type tables and indexes every
// field under each of its non-empty keys.
func (r *Resolver) registerRecordType(recordType string, fields []*FieldIdentity) {
	r.byAPIName[recordType] = make(map[string]*FieldIdentity)
	r.byColumnName[recordType] = make(map[string]*FieldIdentity)
	r.byLabel[recordType] = make(map[string]*FieldIdentity)
	r.byID[recordType] = make(map[string]*FieldIdentity)
	r.fields[recordType] = fields

	for _, f := range fields {
		if f.APIName != "" {
			r.byAPIName[recordType][f.APIName] = f
		}
		if f.ColumnName != "" {
			r.byColumnName[recordType][f.ColumnName] = f
		}
		if f.Label != "" {
			r.byLabel[recordType][f.Label] = f
		}
		if f.ID != "" {
			r.byID[recordType][f.ID] = f
			r.globalByID[f.ID] = f
		}
	}
}

// buildAliases activates the built-in alias table for every canonical
// record type present in the catalog, then layers on overrides.
func (r *Resolver) buildAliases(overrides map[string]string) {
	for alias, canonical := range builtinAliases {
		if _, ok := r.fields[canonical]; ok {
			r.aliases[alias] = canonical
		}
	}
	for alias, canonical := range overrides {
		r.aliases[alias] = canonical
	}
}

// Normalize resolves record-type aliases to the canonical API name.
func (r *Resolver) Normalize(recordType string) string {
	if canonical, ok := r.aliases[recordType]; ok {
		return canonical
	}
	return recordType
}

// Resolve finds a field identity in the given record type by exactly one of
// the four naming schemes. ID lookups try the record-type-scoped table
// first, then the global ID table, so a field is still found when the
// caller guessed the wrong record type. Absence is reported via the bool,
// never an error.
func (r *Resolver) Resolve(recordType string, key Key) (*FieldIdentity, bool) {
	if !key.valid() {
		return nil, false
	}
	recordType = r.Normalize(recordType)

	switch {
	case key.ID != "":
		if f, ok := r.byID[recordType][key.ID]; ok {
			return f, true
		}
		f, ok := r.globalByID[key.ID]
		return f, ok
	case key.APIName != "":
		f, ok := r.byAPIName[recordType][key.APIName]
		return f, ok
	case key.ColumnName != "":
		f, ok := r.byColumnName[recordType][key.ColumnName]
		return f, ok
	default:
		f, ok := r.byLabel[recordType][key.Label]
		return f, ok
	}
}

// ResolveByID finds a field by its globally unique ID, ignoring record
// types entirely.
func (r *Resolver) ResolveByID(id string) (*FieldIdentity, bool) {
	f, ok := r.globalByID[id]
	return f, ok
}

// RecordTypes returns all catalog record-type names, sorted.
func (r *Resolver) RecordTypes() []string {
	names := make([]string, 0, len(r.fields))
	for name := range r.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fields returns every field registered for a record type, after alias
// normalization.
func (r *Resolver) Fields(recordType string) []*FieldIdentity {
	return r.fields[r.Normalize(recordType)]
}

// FieldCount returns the total number of registered fields.
func (r *Resolver) FieldCount() int {
	n := 0
	for _, fs := range r.fields {
		n += len(fs)
	}
	return n
}
