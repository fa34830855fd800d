package flows

import (
	"os"
	"path/filepath"
	"testing"

	"fieldlens/internal/logging"
	"fieldlens/internal/resolver"
	"fieldlens/internal/usage"
)

func testResolver(t *testing.T) *resolver.Resolver {
	t.Helper()

	dir := t.TempDir()
	doc := `{
		"metadata": {"api_name": "Deals"},
		"fields": {"fields": [
			{"field_label": "Stage", "api_name": "Stage", "column_name": "STAGE", "id": "1001", "data_type": "picklist"},
			{"field_label": "Discovery Notes", "api_name": "Discovery_Notes", "column_name": "POTENTIALCF10", "id": "1002", "data_type": "textarea"}
		]}
	}`
	if err := os.WriteFile(filepath.Join(dir, "Deals.json"), []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	r, err := resolver.LoadDir(dir, resolver.LoadOptions{}, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func writeFlowFixture(t *testing.T, transition string) string {
	t.Helper()

	dir := t.TempDir()
	flowDoc := `{"metadata": {"Id": "500", "Name": "Inside Sales Process"}}`
	if err := os.WriteFile(filepath.Join(dir, "inside_sales.json"), []byte(flowDoc), 0644); err != nil {
		t.Fatal(err)
	}

	transDir := filepath.Join(dir, "transitions")
	if err := os.MkdirAll(transDir, 0755); err != nil {
		t.Fatal(err)
	}
	name := "500_Discovery Call Completed_9001.json"
	if err := os.WriteFile(filepath.Join(transDir, name), []byte(transition), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

// One DURING field plus one AFTER field update must yield exactly one ENTRY
// and one WRITE event.
func TestTransitionEntryAndWrite(t *testing.T) {
	transition := `{
		"Name": "Discovery Call Completed",
		"Module": "Potentials",
		"FieldsMeta": {
			"primary": [
				{"Id": "1002", "Name": "POTENTIALCF10", "Label": "Discovery Notes"}
			]
		},
		"Fields": [
			{"Type": "Field", "Id": "1002", "Module": "Potentials", "IsNonMandatory": true},
			{"Type": "Info", "Id": "777"}
		],
		"Actions": {
			"Fieldupdate": [
				{"fieldId": "1001", "fieldLabel": "Stage", "fieldValue": "Discovery Completed", "Name": "Advance stage"}
			]
		}
	}`
	dir := writeFlowFixture(t, transition)

	res := testResolver(t)
	store := usage.NewStore(res)
	a := NewAnalyzer(res, store, logging.Discard())

	if err := a.AnalyzeAll(dir); err != nil {
		t.Fatalf("AnalyzeAll: %v", err)
	}

	stats := a.Stats()
	if stats.TransitionsProcessed != 1 {
		t.Fatalf("transitions = %d, want 1", stats.TransitionsProcessed)
	}
	if stats.EntryFieldsFound != 1 || stats.FieldUpdatesFound != 1 {
		t.Fatalf("entries = %d, writes = %d, want 1 and 1",
			stats.EntryFieldsFound, stats.FieldUpdatesFound)
	}

	// Alias normalization: Potentials accumulates under Deals.
	entry, ok := store.Profile("Deals", "Discovery_Notes")
	if !ok || len(entry.Entries) != 1 {
		t.Fatalf("Discovery_Notes profile = %+v, %v", entry, ok)
	}
	if mandatory, _ := entry.Entries[0].Detail["mandatory"].(bool); mandatory {
		t.Error("IsNonMandatory=true must record mandatory=false")
	}
	if entry.Entries[0].OriginLabel != "Inside Sales Process > Discovery Call Completed" {
		t.Errorf("origin label = %q", entry.Entries[0].OriginLabel)
	}

	write, ok := store.Profile("Deals", "Stage")
	if !ok || len(write.Writes) != 1 {
		t.Fatalf("Stage profile = %+v, %v", write, ok)
	}
	if write.Writes[0].Detail["value"] != "Discovery Completed" {
		t.Errorf("write value = %v", write.Writes[0].Detail["value"])
	}

	if len(a.Unresolved()) != 0 {
		t.Errorf("unexpected unresolved entries: %+v", a.Unresolved())
	}
}

// A DURING field without an IsNonMandatory key is optional; only an
// explicit false marks it mandatory.
func TestEntryMandatoryDefault(t *testing.T) {
	transition := `{
		"Name": "Collect",
		"Module": "Deals",
		"Fields": [
			{"Type": "Field", "Id": "1001", "Module": "Deals", "IsNonMandatory": false},
			{"Type": "Field", "Id": "1002", "Module": "Deals"}
		]
	}`
	dir := writeFlowFixture(t, transition)

	res := testResolver(t)
	store := usage.NewStore(res)
	a := NewAnalyzer(res, store, logging.Discard())

	if err := a.AnalyzeAll(dir); err != nil {
		t.Fatal(err)
	}

	stage, _ := store.Profile("Deals", "Stage")
	if stage == nil || len(stage.Entries) != 1 {
		t.Fatalf("Stage profile = %+v", stage)
	}
	if mandatory, _ := stage.Entries[0].Detail["mandatory"].(bool); !mandatory {
		t.Error("IsNonMandatory=false must record mandatory=true")
	}

	notes, _ := store.Profile("Deals", "Discovery_Notes")
	if notes == nil || len(notes.Entries) != 1 {
		t.Fatalf("Discovery_Notes profile = %+v", notes)
	}
	if mandatory, _ := notes.Entries[0].Detail["mandatory"].(bool); mandatory {
		t.Error("an absent IsNonMandatory key must record mandatory=false")
	}
}

// 19-digit ids exceed float64 precision; every digit must survive the
// document decode.
func TestNumericIdentifiersKeepDigits(t *testing.T) {
	metaDir := t.TempDir()
	doc := `{
		"metadata": {"api_name": "Deals"},
		"fields": {"fields": [
			{"field_label": "Region", "api_name": "Region", "column_name": "REGION", "id": 3193870000616809033, "data_type": "picklist"}
		]}
	}`
	if err := os.WriteFile(filepath.Join(metaDir, "Deals.json"), []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	res, err := resolver.LoadDir(metaDir, resolver.LoadOptions{}, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}

	transition := `{
		"Name": "Route",
		"Module": "Deals",
		"Fields": [{"Type": "Field", "Id": 3193870000616809033, "Module": "Deals"}],
		"Actions": {
			"Fieldupdate": [{"fieldId": 3193870000616809033, "fieldLabel": "Region", "fieldValue": "EMEA", "Name": "Set region"}]
		}
	}`
	dir := writeFlowFixture(t, transition)

	store := usage.NewStore(res)
	a := NewAnalyzer(res, store, logging.Discard())
	if err := a.AnalyzeAll(dir); err != nil {
		t.Fatal(err)
	}

	p, ok := store.Profile("Deals", "Region")
	if !ok || len(p.Entries) != 1 || len(p.Writes) != 1 {
		t.Fatalf("Region profile = %+v, %v", p, ok)
	}
	if len(a.Unresolved()) != 0 {
		t.Errorf("a numeric id must resolve without precision loss: %+v", a.Unresolved())
	}
}

func TestTransitionCriteriaRead(t *testing.T) {
	transition := `{
		"Name": "Qualify",
		"Module": "Deals",
		"CriteriaString": "(Stage == 'Discovery') && (Amount > 1000)"
	}`
	dir := writeFlowFixture(t, transition)

	res := testResolver(t)
	store := usage.NewStore(res)
	a := NewAnalyzer(res, store, logging.Discard())

	if err := a.AnalyzeAll(dir); err != nil {
		t.Fatal(err)
	}

	// The condition is recorded whole against the synthetic field, never
	// parsed into individual references.
	p, ok := store.Profile("Deals", CriteriaFieldName)
	if !ok || len(p.Reads) != 1 {
		t.Fatalf("criteria profile = %+v, %v", p, ok)
	}
	if p.Reads[0].Detail["criteriaString"] != "(Stage == 'Discovery') && (Amount > 1000)" {
		t.Errorf("criteria detail = %v", p.Reads[0].Detail)
	}
	if !p.IsOrphan() {
		t.Error("the synthetic criteria field is always an orphan profile")
	}
}

func TestUnresolvedFieldUpdateIsAudited(t *testing.T) {
	transition := `{
		"Name": "Close",
		"Module": "Deals",
		"Actions": {
			"Fieldupdate": [
				{"fieldId": "424242", "fieldLabel": "Ghost Field", "fieldValue": "x", "Name": "Set ghost"}
			]
		}
	}`
	dir := writeFlowFixture(t, transition)

	res := testResolver(t)
	store := usage.NewStore(res)
	a := NewAnalyzer(res, store, logging.Discard())

	if err := a.AnalyzeAll(dir); err != nil {
		t.Fatal(err)
	}

	// Unresolved references become best-effort events plus an audit entry,
	// never silently dropped.
	p, ok := store.Profile("Deals", "Ghost Field")
	if !ok || len(p.Writes) != 1 {
		t.Fatalf("ghost profile = %+v, %v", p, ok)
	}

	unresolved := a.Unresolved()
	if len(unresolved) != 1 {
		t.Fatalf("unresolved = %+v, want 1 entry", unresolved)
	}
	u := unresolved[0]
	if u.RecordType != "Deals" || u.Label != "Ghost Field" || u.FieldID != "424242" || u.Context != "field_update" {
		t.Errorf("audit entry = %+v", u)
	}
}

func TestMalformedTransitionSkipped(t *testing.T) {
	transition := `{"Name": "Good", "Module": "Deals", "CriteriaString": "x > 1"}`
	dir := writeFlowFixture(t, transition)
	bad := filepath.Join(dir, "transitions", "500_Bad_2.json")
	if err := os.WriteFile(bad, []byte(`{truncated`), 0644); err != nil {
		t.Fatal(err)
	}

	res := testResolver(t)
	store := usage.NewStore(res)
	a := NewAnalyzer(res, store, logging.Discard())

	if err := a.AnalyzeAll(dir); err != nil {
		t.Fatalf("a malformed file must not abort the pass: %v", err)
	}
	if a.Stats().TransitionsProcessed != 1 {
		t.Errorf("transitions = %d, want 1 (bad file skipped)", a.Stats().TransitionsProcessed)
	}
}

func TestScriptReferences(t *testing.T) {
	transition := `{
		"Name": "Handoff",
		"Module": "Deals",
		"Actions": {
			"Deluge": [
				{"Id": "7001", "Name": "notifyOwner"},
				{"Id": "7002", "Name": "syncBilling"}
			]
		}
	}`
	dir := writeFlowFixture(t, transition)

	res := testResolver(t)
	a := NewAnalyzer(res, usage.NewStore(res), logging.Discard())

	refs := a.ScriptReferences(dir)
	if len(refs) != 2 {
		t.Fatalf("refs = %+v, want 2", refs)
	}
	if refs[0].ScriptName != "notifyOwner" || refs[0].ScriptID != "7001" || refs[0].Transition != "Handoff" {
		t.Errorf("ref = %+v", refs[0])
	}
}

func TestMissingTransitionsDirContributesNothing(t *testing.T) {
	dir := t.TempDir()

	res := testResolver(t)
	store := usage.NewStore(res)
	a := NewAnalyzer(res, store, logging.Discard())

	if err := a.AnalyzeAll(dir); err != nil {
		t.Fatalf("missing transitions dir must be a warning, got %v", err)
	}
	if store.Stats().TotalReads+store.Stats().TotalWrites+store.Stats().TotalEntries != 0 {
		t.Error("expected zero events")
	}
}
