package usage

import (
	"sort"
	"strings"
)

// Normalizer maps record-type aliases to their canonical name. The
// resolver's catalog satisfies this; the store applies it before every
// profile access so usage recorded under either name of an aliased record
// type accumulates into one profile.
type Normalizer interface {
	Normalize(recordType string) string
}

// identityNormalizer is used when no resolver is wired in (tests, partial
// pipelines).
type identityNormalizer struct{}

func (identityNormalizer) Normalize(recordType string) string { return recordType }

type profileKey struct {
	recordType string
	apiName    string
}

// Store owns every Profile exclusively and is their only mutator.
// Single-writer, batch-oriented: analyzers call it sequentially.
type Store struct {
	profiles  map[profileKey]*Profile
	normalize Normalizer
}

// NewStore creates an empty store. normalize may be nil.
func NewStore(normalize Normalizer) *Store {
	if normalize == nil {
		normalize = identityNormalizer{}
	}
	return &Store{
		profiles:  make(map[profileKey]*Profile),
		normalize: normalize,
	}
}

// RegisterField pre-registers a known field with an empty profile.
// Idempotent: the first registration of a (record type, api name) wins and
// later calls are no-ops.
func (s *Store) RegisterField(recordType, label, apiName, columnName, fieldID, dataType string) {
	recordType = s.normalize.Normalize(recordType)
	key := profileKey{recordType, apiName}
	if _, ok := s.profiles[key]; ok {
		return
	}
	s.profiles[key] = &Profile{
		RecordType: recordType,
		Label:      label,
		APIName:    apiName,
		ColumnName: columnName,
		FieldID:    fieldID,
		DataType:   dataType,
	}
}

// Record appends an event to the profile for its field, creating an orphan
// profile first when the field was never registered. Events are never
// removed or reclassified afterwards.
func (s *Store) Record(e Event) {
	e.RecordType = s.normalize.Normalize(e.RecordType)
	key := profileKey{e.RecordType, e.FieldAPIName}

	p, ok := s.profiles[key]
	if !ok {
		// Referenced by automation but unknown to the catalog. The api
		// name doubles as the display label; the empty column/id and
		// "unknown" type let reporting tell orphans apart from known
		// fields with zero events.
		p = &Profile{
			RecordType: e.RecordType,
			Label:      e.FieldAPIName,
			APIName:    e.FieldAPIName,
			DataType:   "unknown",
		}
		s.profiles[key] = p
	}
	p.append(e)
}

// Profile returns the profile for (record type, api name), if present.
func (s *Store) Profile(recordType, apiName string) (*Profile, bool) {
	p, ok := s.profiles[profileKey{s.normalize.Normalize(recordType), apiName}]
	return p, ok
}

// RecordTypes returns every record type holding at least one profile,
// sorted.
func (s *Store) RecordTypes() []string {
	seen := make(map[string]bool)
	for key := range s.profiles {
		seen[key.recordType] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RecordTypeProfiles returns all profiles for one record type, sorted by
// lowercase label.
func (s *Store) RecordTypeProfiles(recordType string) []*Profile {
	recordType = s.normalize.Normalize(recordType)
	out := make([]*Profile, 0)
	for key, p := range s.profiles {
		if key.recordType == recordType {
			out = append(out, p)
		}
	}
	sortProfiles(out)
	return out
}

// ReferencedFields returns every profile with at least one event, across
// all record types, sorted by (record type, lowercase label).
func (s *Store) ReferencedFields() []*Profile {
	return s.filter(func(p *Profile) bool { return p.IsReferenced() })
}

// UnreferencedFields returns every profile with zero events.
func (s *Store) UnreferencedFields() []*Profile {
	return s.filter(func(p *Profile) bool { return !p.IsReferenced() })
}

func (s *Store) filter(keep func(*Profile) bool) []*Profile {
	out := make([]*Profile, 0)
	for _, p := range s.profiles {
		if keep(p) {
			out = append(out, p)
		}
	}
	sortProfiles(out)
	return out
}

func sortProfiles(ps []*Profile) {
	sort.Slice(ps, func(i, j int) bool {
		if ps[i].RecordType != ps[j].RecordType {
			return ps[i].RecordType < ps[j].RecordType
		}
		return strings.ToLower(ps[i].Label) < strings.ToLower(ps[j].Label)
	})
}

// Stats are the store's global aggregate counters.
type Stats struct {
	TotalFields        int `json:"totalFields"`
	ReferencedFields   int `json:"referencedFields"`
	UnreferencedFields int `json:"unreferencedFields"`
	TotalReads         int `json:"totalReads"`
	TotalWrites        int `json:"totalWrites"`
	TotalEntries       int `json:"totalEntries"`
}

// Stats computes the aggregate counters over all profiles.
func (s *Store) Stats() Stats {
	st := Stats{TotalFields: len(s.profiles)}
	for _, p := range s.profiles {
		if p.IsReferenced() {
			st.ReferencedFields++
		}
		st.TotalReads += len(p.Reads)
		st.TotalWrites += len(p.Writes)
		st.TotalEntries += len(p.Entries)
	}
	st.UnreferencedFields = st.TotalFields - st.ReferencedFields
	return st
}
