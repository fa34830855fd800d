// Package rules analyzes automation rules (trigger/condition/action
// definitions) for field usage. Criteria trees contribute READ events,
// field-update actions contribute WRITE events, and run-script actions are
// exported as cross-references for the script analyzer.
package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fieldlens/internal/logging"
	"fieldlens/internal/usage"
)

// Action types dispatched by declared type; anything else is ignored.
const (
	actionFieldUpdates = "field_updates"
	actionFunctions    = "functions"
)

// ruleDocument is the on-disk shape of one rule file. Rule documents carry
// field API names inline, so no local remap layer is needed here.
type ruleDocument struct {
	Name       string          `json:"name"`
	ID         json.RawMessage `json:"id"`
	RecordType struct {
		APIName string `json:"api_name"`
	} `json:"module"`
	Conditions []conditionBlock `json:"conditions"`
}

type conditionBlock struct {
	Sequence        int             `json:"sequence_number"`
	CriteriaDetails struct {
		Criteria json.RawMessage `json:"criteria"`
	} `json:"criteria_details"`
	InstantActions   actionList `json:"instant_actions"`
	ScheduledActions actionList `json:"scheduled_actions"`
}

type actionList struct {
	Actions []ruleAction `json:"actions"`
}

type ruleAction struct {
	Type         string          `json:"type"`
	Name         string          `json:"name"`
	ID           json.RawMessage `json:"id"`
	FieldAPIName string          `json:"field_api_name"`
	FieldValue   interface{}     `json:"field_value"`
	UpdateType   string          `json:"update_type"`
	RecordType   string          `json:"module"`

	// Present when a field update targets a related record type instead
	// of the rule's own.
	RelatedDetails *struct {
		RecordType struct {
			APIName string `json:"api_name"`
		} `json:"module"`
	} `json:"related_details"`
}

// criteriaNode is either a boolean group {group_operator, group: [...]}
// or a leaf comparison {field, comparator, value}.
type criteriaNode struct {
	GroupOperator string            `json:"group_operator"`
	Group         []json.RawMessage `json:"group"`
	Field         struct {
		APIName string `json:"api_name"`
	} `json:"field"`
	Comparator string      `json:"comparator"`
	Value      interface{} `json:"value"`
}

// ScriptReference is one rule→script cross-reference.
type ScriptReference struct {
	ScriptName string `json:"scriptName"`
	ScriptID   string `json:"scriptId"`
	Rule       string `json:"rule"`
	RecordType string `json:"recordType"`
}

// Stats counts what one analysis pass saw.
type Stats struct {
	RulesProcessed int `json:"rulesProcessed"`
	CriteriaReads  int `json:"criteriaReads"`
	FieldWrites    int `json:"fieldWrites"`
	ScriptRefs     int `json:"scriptRefs"`
}

// Analyzer extracts field usage from rule documents.
type Analyzer struct {
	store  *usage.Store
	logger *logging.Logger
	stats  Stats
}

// NewAnalyzer creates a rule analyzer writing into store.
func NewAnalyzer(store *usage.Store, logger *logging.Logger) *Analyzer {
	return &Analyzer{store: store, logger: logger}
}

// Stats returns the counters of the last AnalyzeAll pass.
func (a *Analyzer) Stats() Stats { return a.stats }

// AnalyzeAll processes every rule document under dir. Malformed files are
// logged and skipped.
func (a *Analyzer) AnalyzeAll(dir string) error {
	files, err := sortedRuleFiles(dir)
	if err != nil {
		return err
	}

	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			a.logger.Error("skipping unreadable rule", map[string]interface{}{
				"file": name, "error": err.Error(),
			})
			continue
		}

		var rule ruleDocument
		if err := json.Unmarshal(data, &rule); err != nil {
			a.logger.Error("skipping malformed rule", map[string]interface{}{
				"file": name, "error": err.Error(),
			})
			continue
		}

		a.analyzeRule(&rule, name)
		a.stats.RulesProcessed++
	}

	a.logger.Info("rule analysis complete", map[string]interface{}{
		"rules":         a.stats.RulesProcessed,
		"criteriaReads": a.stats.CriteriaReads,
		"fieldWrites":   a.stats.FieldWrites,
	})
	return nil
}

func (a *Analyzer) analyzeRule(rule *ruleDocument, filename string) {
	name := rule.Name
	if name == "" {
		name = strings.TrimSuffix(filename, ".json")
	}
	ruleID := idString(rule.ID)
	recordType := rule.RecordType.APIName
	if recordType == "" {
		a.logger.Debug("rule has no record type, skipping", map[string]interface{}{"rule": name})
		return
	}

	originLabel := "Rule: " + name

	for _, cond := range rule.Conditions {
		condLabel := fmt.Sprintf("%s (cond %d)", originLabel, cond.Sequence)

		if len(cond.CriteriaDetails.Criteria) > 0 {
			a.walkCriteria(cond.CriteriaDetails.Criteria, recordType, condLabel, ruleID)
		}
		for _, action := range cond.InstantActions.Actions {
			a.processAction(&action, recordType, condLabel, ruleID)
		}
		for _, action := range cond.ScheduledActions.Actions {
			a.processAction(&action, recordType, condLabel, ruleID)
		}
	}
}

// walkCriteria recurses through the criteria tree and emits one READ event
// per leaf comparison. Terminates on arbitrarily deep or wide trees; depth
// is never special-cased.
func (a *Analyzer) walkCriteria(raw json.RawMessage, recordType, originLabel, originID string) {
	var node criteriaNode
	if err := json.Unmarshal(raw, &node); err != nil {
		return
	}

	if len(node.Group) > 0 {
		for _, child := range node.Group {
			a.walkCriteria(child, recordType, originLabel, originID)
		}
		return
	}

	if node.Field.APIName == "" {
		return
	}

	a.store.Record(usage.Event{
		Kind:         usage.Read,
		Origin:       usage.OriginRule,
		OriginLabel:  originLabel,
		OriginID:     originID,
		RecordType:   recordType,
		FieldAPIName: node.Field.APIName,
		Detail: map[string]interface{}{
			"comparator": node.Comparator,
			"value":      node.Value,
		},
	})
	a.stats.CriteriaReads++
}

// processAction dispatches one action by its declared type. Run-script
// actions are counted only; they are resolved by the script analyzer via
// the ScriptReferences export. Unknown types are ignored without error.
func (a *Analyzer) processAction(action *ruleAction, recordType, originLabel, originID string) {
	switch action.Type {
	case actionFieldUpdates:
		a.processFieldUpdate(action, recordType, originLabel, originID)
	case actionFunctions:
		a.stats.ScriptRefs++
	}
}

func (a *Analyzer) processFieldUpdate(action *ruleAction, recordType, originLabel, originID string) {
	if action.FieldAPIName == "" {
		a.logger.Debug("field update without field name", map[string]interface{}{
			"action": action.Name,
		})
		return
	}

	// A field update may be routed to a related record type; the redirect
	// target keys the profile and stamps the event.
	target := recordType
	if action.RecordType != "" {
		target = action.RecordType
	}
	if action.RelatedDetails != nil && action.RelatedDetails.RecordType.APIName != "" {
		target = action.RelatedDetails.RecordType.APIName
	}

	a.store.Record(usage.Event{
		Kind:         usage.Write,
		Origin:       usage.OriginRule,
		OriginLabel:  originLabel,
		OriginID:     originID,
		RecordType:   target,
		FieldAPIName: action.FieldAPIName,
		Detail: map[string]interface{}{
			"value":      action.FieldValue,
			"updateType": action.UpdateType,
			"actionName": action.Name,
		},
	})
	a.stats.FieldWrites++
}

// ScriptReferences collects every run-script action across all rules under
// dir, mirroring the flow analyzer's export.
func (a *Analyzer) ScriptReferences(dir string) []ScriptReference {
	refs := make([]ScriptReference, 0)

	files, err := sortedRuleFiles(dir)
	if err != nil {
		return refs
	}

	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		var rule ruleDocument
		if err := json.Unmarshal(data, &rule); err != nil {
			continue
		}
		for _, cond := range rule.Conditions {
			for _, actions := range [][]ruleAction{cond.InstantActions.Actions, cond.ScheduledActions.Actions} {
				for _, action := range actions {
					if action.Type != actionFunctions {
						continue
					}
					refs = append(refs, ScriptReference{
						ScriptName: action.Name,
						ScriptID:   idString(action.ID),
						Rule:       rule.Name,
						RecordType: rule.RecordType.APIName,
					})
				}
			}
		}
	}
	return refs
}

func sortedRuleFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if name == "workflows_index.json" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// idString renders an id attribute that may arrive as a JSON string or
// number. The raw token is kept as-is: ids run to 19 digits and would lose
// precision through float64.
func idString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return s
}
