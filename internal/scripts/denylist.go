package scripts

import (
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Denylist suppresses structural false positives: map variables that hold
// parameters, log payloads or API responses rather than records, and
// generic map keys that look like fields but never are.
type Denylist struct {
	variables map[string]bool // lowercased
	fields    map[string]bool // case-sensitive, matching CRM API names
}

// Variable names that conventionally hold non-field maps.
var noiseVariables = []string{
	"errLogMap", "inputParams", "headers", "params", "queryParams",
	"body", "response", "resp", "result", "config", "settings", "options",
}

// Map keys that look like fields but are structural.
var noiseFields = []string{
	"Function", "Email_Error", "Params", "See_Line", "Module",
	"Error", "status", "code", "message", "data", "details",
	"id", "select_query", "email", "user_name", "users",
	"name", "content", "result", "response", "info",
	"$se_module", "trigger", "workflow", "blueprint", "approval",
}

// DefaultDenylist returns the built-in denylists.
func DefaultDenylist() *Denylist {
	return newDenylist(noiseVariables, noiseFields)
}

func newDenylist(variables, fields []string) *Denylist {
	d := &Denylist{
		variables: make(map[string]bool, len(variables)),
		fields:    make(map[string]bool, len(fields)),
	}
	for _, v := range variables {
		d.variables[strings.ToLower(v)] = true
	}
	for _, f := range fields {
		d.fields[f] = true
	}
	return d
}

// NoiseVariable reports whether a variable name is a known non-record
// holder. Variable comparison is case-insensitive.
func (d *Denylist) NoiseVariable(name string) bool {
	return d.variables[strings.ToLower(name)]
}

// NoiseField reports whether a map key is a known non-field name.
func (d *Denylist) NoiseField(name string) bool {
	return d.fields[name]
}

// scanRulesFile is the on-disk shape of a scanrules.toml override document.
// Entries extend the built-in lists.
type scanRulesFile struct {
	NoiseVariables []string `toml:"noise_variables"`
	NoiseFields    []string `toml:"noise_fields"`
}

// LoadDenylist builds a denylist from the built-ins plus an optional TOML
// override file. A missing file yields the defaults.
func LoadDenylist(path string) (*Denylist, error) {
	d := DefaultDenylist()
	if path == "" {
		return d, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		return nil, err
	}

	var f scanRulesFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	for _, v := range f.NoiseVariables {
		d.variables[strings.ToLower(v)] = true
	}
	for _, fl := range f.NoiseFields {
		d.fields[fl] = true
	}
	return d, nil
}
