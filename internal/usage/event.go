// Package usage aggregates classified field-usage events into per-field
// profiles. The Store is the only mutator of profiles; analyzers submit
// immutable events and never touch profiles directly.
package usage

// Kind classifies how a field was referenced.
type Kind string

const (
	// Read means the field value is evaluated in a condition or read in a script
	Read Kind = "read"
	// Write means the field value is set or updated
	Write Kind = "write"
	// Entry means the field is presented to a user for manual input
	Entry Kind = "entry"
)

// Origin identifies which kind of automation artifact produced an event.
type Origin string

const (
	// OriginProcessFlow marks events from process-flow transitions
	OriginProcessFlow Origin = "process_flow"
	// OriginRule marks events from automation rules
	OriginRule Origin = "rule"
	// OriginScript marks events from custom scripts
	OriginScript Origin = "script"
)

// Event is one observed reference to a field. Events are append-only and
// never mutated after recording.
type Event struct {
	Kind         Kind                   `json:"kind"`
	Origin       Origin                 `json:"origin"`
	OriginLabel  string                 `json:"originLabel"` // e.g. "Inside Sales Process > Discovery Call Completed"
	OriginID     string                 `json:"originId"`
	RecordType   string                 `json:"recordType"`
	FieldAPIName string                 `json:"fieldApiName"`
	Detail       map[string]interface{} `json:"detail,omitempty"`
}
