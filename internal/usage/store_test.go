package usage

import (
	"testing"
)

type aliasNormalizer map[string]string

func (a aliasNormalizer) Normalize(recordType string) string {
	if canonical, ok := a[recordType]; ok {
		return canonical
	}
	return recordType
}

func readEvent(recordType, apiName string) Event {
	return Event{
		Kind:         Read,
		Origin:       OriginRule,
		OriginLabel:  "Rule: test",
		OriginID:     "r1",
		RecordType:   recordType,
		FieldAPIName: apiName,
	}
}

func TestRegisterFieldIdempotent(t *testing.T) {
	s := NewStore(nil)

	s.RegisterField("Deals", "Stage", "Stage", "STAGE", "1001", "picklist")
	s.RegisterField("Deals", "Renamed", "Stage", "OTHER", "9999", "text")

	p, ok := s.Profile("Deals", "Stage")
	if !ok {
		t.Fatal("profile not found")
	}
	// First registration wins.
	if p.Label != "Stage" || p.FieldID != "1001" {
		t.Errorf("second registration overwrote profile: %+v", p)
	}
	if s.Stats().TotalFields != 1 {
		t.Errorf("TotalFields = %d, want 1", s.Stats().TotalFields)
	}
}

func TestRecordAdditivity(t *testing.T) {
	s := NewStore(nil)
	s.RegisterField("Deals", "Stage", "Stage", "STAGE", "1001", "picklist")

	p, _ := s.Profile("Deals", "Stage")
	if p.IsReferenced() {
		t.Fatal("fresh profile must not be referenced")
	}

	kinds := []Kind{Read, Read, Write, Entry, Write, Read, Entry}
	for _, k := range kinds {
		e := readEvent("Deals", "Stage")
		e.Kind = k
		s.Record(e)
	}

	if got := p.TotalUsages(); got != len(kinds) {
		t.Errorf("TotalUsages = %d, want %d", got, len(kinds))
	}
	if len(p.Reads) != 3 || len(p.Writes) != 2 || len(p.Entries) != 2 {
		t.Errorf("lists = R:%d W:%d E:%d", len(p.Reads), len(p.Writes), len(p.Entries))
	}
	if !p.IsReferenced() {
		t.Error("profile with events must be referenced")
	}
	if got := p.Summary(); got != "R:3 W:2 E:2" {
		t.Errorf("Summary = %q", got)
	}
}

func TestOrphanProfileDistinction(t *testing.T) {
	s := NewStore(nil)
	s.RegisterField("Deals", "Stage", "Stage", "STAGE", "1001", "picklist")

	s.Record(readEvent("Deals", "Custom_Unknown"))

	orphan, ok := s.Profile("Deals", "Custom_Unknown")
	if !ok {
		t.Fatal("orphan profile not created")
	}
	if !orphan.IsOrphan() {
		t.Errorf("expected orphan markers, got %+v", orphan)
	}
	if orphan.Label != "Custom_Unknown" || orphan.DataType != "unknown" {
		t.Errorf("orphan profile = %+v", orphan)
	}

	known, _ := s.Profile("Deals", "Stage")
	if known.IsOrphan() {
		t.Error("registered field must not look like an orphan")
	}
	if known.IsReferenced() {
		t.Error("registered field without events must be unreferenced")
	}
	if known.Summary() != "unused" {
		t.Errorf("Summary = %q, want unused", known.Summary())
	}
}

func TestAliasAccumulation(t *testing.T) {
	s := NewStore(aliasNormalizer{"Potentials": "Deals"})
	s.RegisterField("Deals", "Stage", "Stage", "STAGE", "1001", "picklist")

	s.Record(readEvent("Deals", "Stage"))
	s.Record(readEvent("Potentials", "Stage"))

	p, ok := s.Profile("Deals", "Stage")
	if !ok {
		t.Fatal("profile not found")
	}
	if len(p.Reads) != 2 {
		t.Errorf("reads = %d, want 2 (aliased usage must accumulate)", len(p.Reads))
	}
	if _, ok := s.Profile("Potentials", "Stage"); !ok {
		t.Error("aliased lookup must reach the canonical profile")
	}
	if got := len(s.RecordTypeProfiles("Potentials")); got != 1 {
		t.Errorf("RecordTypeProfiles(Potentials) = %d profiles, want 1", got)
	}
}

func TestQueriesAndSorting(t *testing.T) {
	s := NewStore(nil)
	s.RegisterField("Deals", "zeta", "Zeta", "Z", "1", "text")
	s.RegisterField("Deals", "Alpha", "Alpha", "A", "2", "text")
	s.RegisterField("Accounts", "Name", "Name", "N", "3", "text")

	s.Record(readEvent("Deals", "Alpha"))

	profiles := s.RecordTypeProfiles("Deals")
	if len(profiles) != 2 {
		t.Fatalf("profiles = %d, want 2", len(profiles))
	}
	// Sorted by lowercase label.
	if profiles[0].APIName != "Alpha" || profiles[1].APIName != "Zeta" {
		t.Errorf("order = %s, %s", profiles[0].APIName, profiles[1].APIName)
	}

	if got := s.RecordTypes(); len(got) != 2 || got[0] != "Accounts" || got[1] != "Deals" {
		t.Errorf("RecordTypes = %v", got)
	}

	if got := len(s.ReferencedFields()); got != 1 {
		t.Errorf("ReferencedFields = %d, want 1", got)
	}
	if got := len(s.UnreferencedFields()); got != 2 {
		t.Errorf("UnreferencedFields = %d, want 2", got)
	}

	st := s.Stats()
	if st.TotalFields != 3 || st.ReferencedFields != 1 || st.UnreferencedFields != 2 || st.TotalReads != 1 {
		t.Errorf("Stats = %+v", st)
	}
}
