// Package flows analyzes process-flow definitions (guided multi-state
// workflows) for field usage. Each transition contributes ENTRY events for
// fields a user fills in, WRITE events for automatic field updates applied
// on exit, and one READ event for its gating condition text.
package flows

import "encoding/json"

// flowDocument is the on-disk shape of a process-flow index entry.
type flowDocument struct {
	Metadata struct {
		ID   json.RawMessage `json:"Id"`
		Name string          `json:"Name"`
	} `json:"metadata"`
	Processes []struct {
		ID   json.RawMessage `json:"Id"`
		Name string          `json:"Name"`
	} `json:"Processes"`
}

// transitionDocument is the on-disk shape of one per-transition file,
// named {flowId}_{transitionName}_{transitionId}.json.
type transitionDocument struct {
	Name       string `json:"Name"`
	RecordType string `json:"Module"`

	// DURING tab: fields presented to the user while in the source state.
	Fields []duringField `json:"Fields"`

	// Embedded field metadata block, keyed by an internal group name.
	FieldsMeta map[string][]fieldMeta `json:"FieldsMeta"`

	Actions struct {
		// AFTER tab: field updates applied automatically on exit.
		FieldUpdate []fieldUpdateAction `json:"Fieldupdate"`
		// Referenced scripts, resolved by the script analyzer.
		Scripts []scriptAction `json:"Deluge"`
	} `json:"Actions"`

	// Free-text boolean expression gating the transition.
	CriteriaString string `json:"CriteriaString"`
}

// duringField is one DURING tab entry. Entries with Type other than
// "Field" are instructional placeholders. IsNonMandatory is a pointer
// because the exporter omits the key for optional fields: absent means
// non-mandatory.
type duringField struct {
	Type           string          `json:"Type"`
	ID             json.RawMessage `json:"Id"`
	RecordType     string          `json:"Module"`
	IsNonMandatory *bool           `json:"IsNonMandatory"`
}

// fieldMeta is one embedded metadata entry: Name is the storage column
// name, not the API name.
type fieldMeta struct {
	ID    json.RawMessage `json:"Id"`
	Name  string          `json:"Name"`
	Label string          `json:"Label"`
}

// fieldUpdateAction is one AFTER tab automatic field update.
type fieldUpdateAction struct {
	FieldID     json.RawMessage `json:"fieldId"`
	FieldLabel  string          `json:"fieldLabel"`
	FieldValue  interface{}     `json:"fieldValue"`
	ActualValue interface{}     `json:"actualValue"`
	Name        string          `json:"Name"`
}

// scriptAction is one invoked-script reference on a transition.
type scriptAction struct {
	ID   json.RawMessage `json:"Id"`
	Name string          `json:"Name"`
}

// UnresolvedField is one audit entry for a field reference the resolver
// could not place. Recorded, never dropped.
type UnresolvedField struct {
	RecordType string `json:"recordType"`
	Label      string `json:"label"`
	FieldID    string `json:"fieldId"`
	Origin     string `json:"origin"`
	Context    string `json:"context"`
}

// ScriptReference is one flow→script cross-reference, correlated externally
// with the script analyzer's output.
type ScriptReference struct {
	ScriptName     string `json:"scriptName"`
	ScriptID       string `json:"scriptId"`
	Transition     string `json:"transition"`
	TransitionFile string `json:"transitionFile"`
	RecordType     string `json:"recordType"`
}

// Stats counts what one analysis pass saw.
type Stats struct {
	FlowsIndexed         int `json:"flowsIndexed"`
	TransitionsProcessed int `json:"transitionsProcessed"`
	FieldUpdatesFound    int `json:"fieldUpdatesFound"`
	EntryFieldsFound     int `json:"entryFieldsFound"`
	CriteriaFound        int `json:"criteriaFound"`
	UnresolvedFields     int `json:"unresolvedFields"`
}
