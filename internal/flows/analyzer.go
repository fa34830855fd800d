package flows

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fieldlens/internal/logging"
	"fieldlens/internal/resolver"
	"fieldlens/internal/usage"
)

// CriteriaFieldName is the synthetic field name transition conditions are
// recorded under. The condition text is deliberately not parsed into
// individual field references: free-text boolean expressions vary too much
// to parse reliably, so the whole condition is flagged as one READ.
const CriteriaFieldName = "_transition_criteria_"

// Analyzer extracts field usage from process-flow transitions.
type Analyzer struct {
	resolver *resolver.Resolver
	store    *usage.Store
	logger   *logging.Logger

	stats      Stats
	unresolved []UnresolvedField
}

// NewAnalyzer creates a process-flow analyzer writing into store.
func NewAnalyzer(res *resolver.Resolver, store *usage.Store, logger *logging.Logger) *Analyzer {
	return &Analyzer{resolver: res, store: store, logger: logger}
}

// Stats returns the counters of the last AnalyzeAll pass.
func (a *Analyzer) Stats() Stats { return a.stats }

// Unresolved returns the audit list of field references that survived no
// resolution fallback.
func (a *Analyzer) Unresolved() []UnresolvedField { return a.unresolved }

// AnalyzeAll processes every transition under dir. Malformed files are
// logged and skipped; a missing transitions/ subdirectory means the
// analyzer contributes nothing.
func (a *Analyzer) AnalyzeAll(dir string) error {
	transitionsDir := filepath.Join(dir, "transitions")
	if _, err := os.Stat(transitionsDir); os.IsNotExist(err) {
		a.logger.Warn("no transitions directory", map[string]interface{}{"dir": transitionsDir})
		return nil
	}

	flowNames, err := a.loadFlowIndex(dir)
	if err != nil {
		return err
	}
	a.stats.FlowsIndexed = len(flowNames)

	files, err := sortedJSONFiles(transitionsDir)
	if err != nil {
		return err
	}

	for _, name := range files {
		path := filepath.Join(transitionsDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			a.logger.Error("skipping unreadable transition", map[string]interface{}{
				"file": name, "error": err.Error(),
			})
			continue
		}

		var trans transitionDocument
		if err := json.Unmarshal(data, &trans); err != nil {
			a.logger.Error("skipping malformed transition", map[string]interface{}{
				"file": name, "error": err.Error(),
			})
			continue
		}

		stem := strings.TrimSuffix(name, ".json")
		// Filename shape: {flowId}_{transitionName}_{transitionId}
		flowID, _, _ := strings.Cut(stem, "_")
		flowName := flowNames[flowID]
		if flowName == "" {
			flowName = flowID
		}
		transName := trans.Name
		if transName == "" {
			transName = stem
		}
		recordType := a.resolver.Normalize(trans.RecordType)
		originLabel := fmt.Sprintf("%s > %s", flowName, transName)

		a.analyzeTransition(&trans, recordType, originLabel, stem)
		a.stats.TransitionsProcessed++
	}

	a.logger.Info("process-flow analysis complete", map[string]interface{}{
		"transitions":  a.stats.TransitionsProcessed,
		"fieldUpdates": a.stats.FieldUpdatesFound,
		"entryFields":  a.stats.EntryFieldsFound,
		"unresolved":   a.stats.UnresolvedFields,
	})
	return nil
}

// loadFlowIndex maps flow IDs to display names from the per-flow documents
// in dir. Three formats exist in the wild: metadata{Id,Name}, a Processes
// array, and a Name_ID filename.
func (a *Analyzer) loadFlowIndex(dir string) (map[string]string, error) {
	files, err := sortedJSONFiles(dir)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	for _, name := range files {
		if name == "blueprints_index.json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		var doc flowDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			a.logger.Debug("unparseable flow document", map[string]interface{}{
				"file": name, "error": err.Error(),
			})
			continue
		}

		id := idString(doc.Metadata.ID)
		if id != "" && doc.Metadata.Name != "" {
			names[id] = doc.Metadata.Name
			continue
		}
		for _, p := range doc.Processes {
			if pid := idString(p.ID); pid != "" {
				if p.Name != "" {
					names[pid] = p.Name
				} else {
					names[pid] = strings.TrimSuffix(name, ".json")
				}
			}
		}
		if id == "" {
			// Filename fallback: Name_ID.json
			stem := strings.TrimSuffix(name, ".json")
			if i := strings.LastIndex(stem, "_"); i > 0 && isDigits(stem[i+1:]) {
				names[stem[i+1:]] = stem[:i]
			}
		}
	}
	return names, nil
}

func (a *Analyzer) analyzeTransition(trans *transitionDocument, recordType, originLabel, originID string) {
	localMap := a.buildLocalFieldMap(trans, recordType)

	a.processDuringFields(trans, recordType, originLabel, originID, localMap)
	a.processFieldUpdates(trans, recordType, originLabel, originID, localMap)
	a.processCriteria(trans, recordType, originLabel, originID)
}

// buildLocalFieldMap turns the transition's embedded FieldsMeta block into
// a field-id → api-name map. Resolution order per entry: global id lookup,
// then record-type-scoped column name, then label. Unresolved entries keep
// the raw column name/label as a best-effort name.
func (a *Analyzer) buildLocalFieldMap(trans *transitionDocument, recordType string) map[string]string {
	fieldMap := make(map[string]string)

	for _, metaFields := range trans.FieldsMeta {
		for _, fm := range metaFields {
			fid := idString(fm.ID)
			if fid == "" {
				continue
			}

			identity, ok := a.resolver.ResolveByID(fid)
			if !ok && fm.Name != "" {
				identity, ok = a.resolver.Resolve(recordType, resolver.ByColumnName(fm.Name))
			}
			if !ok && fm.Label != "" {
				identity, ok = a.resolver.Resolve(recordType, resolver.ByLabel(fm.Label))
			}

			if ok {
				fieldMap[fid] = identity.APIName
			} else if fm.Name != "" {
				fieldMap[fid] = fm.Name
			} else if fm.Label != "" {
				fieldMap[fid] = fm.Label
			} else {
				fieldMap[fid] = fid
			}
		}
	}
	return fieldMap
}

// processDuringFields emits one ENTRY event per DURING tab field. Entries
// whose Type is not literally "Field" are instruction text, not fields.
func (a *Analyzer) processDuringFields(trans *transitionDocument, recordType, originLabel, originID string, fieldMap map[string]string) {
	for _, f := range trans.Fields {
		if f.Type != "Field" {
			continue
		}
		fid := idString(f.ID)
		if fid == "" {
			continue
		}

		// Absent IsNonMandatory means the field is optional.
		nonMandatory := true
		if f.IsNonMandatory != nil {
			nonMandatory = *f.IsNonMandatory
		}

		apiName := fieldMap[fid]
		label := ""
		if apiName == "" {
			if identity, ok := a.resolver.ResolveByID(fid); ok {
				apiName = identity.APIName
				label = identity.Label
			} else {
				apiName = fid
				a.logUnresolved(recordType, "ID:"+fid, fid, originLabel, "during_field")
			}
		} else if identity, ok := a.resolver.Resolve(recordType, resolver.ByAPIName(apiName)); ok {
			label = identity.Label
		}

		a.store.Record(usage.Event{
			Kind:         usage.Entry,
			Origin:       usage.OriginProcessFlow,
			OriginLabel:  originLabel,
			OriginID:     originID,
			RecordType:   recordType,
			FieldAPIName: apiName,
			Detail: map[string]interface{}{
				"mandatory":  !nonMandatory,
				"fieldLabel": label,
			},
		})
		a.stats.EntryFieldsFound++
	}
}

// processFieldUpdates emits one WRITE event per AFTER tab field update.
func (a *Analyzer) processFieldUpdates(trans *transitionDocument, recordType, originLabel, originID string, fieldMap map[string]string) {
	for _, fu := range trans.Actions.FieldUpdate {
		fid := idString(fu.FieldID)

		apiName := fieldMap[fid]
		if apiName == "" {
			if identity, ok := a.resolver.Resolve(recordType, resolver.ByLabel(fu.FieldLabel)); ok {
				apiName = identity.APIName
			} else if identity, ok := a.resolver.ResolveByID(fid); ok {
				apiName = identity.APIName
			} else {
				apiName = fu.FieldLabel
				a.logUnresolved(recordType, fu.FieldLabel, fid, originLabel, "field_update")
			}
		}

		a.store.Record(usage.Event{
			Kind:         usage.Write,
			Origin:       usage.OriginProcessFlow,
			OriginLabel:  originLabel,
			OriginID:     originID,
			RecordType:   recordType,
			FieldAPIName: apiName,
			Detail: map[string]interface{}{
				"value":       fu.FieldValue,
				"actualValue": fu.ActualValue,
				"updateName":  fu.Name,
				"fieldLabel":  fu.FieldLabel,
			},
		})
		a.stats.FieldUpdatesFound++
	}
}

// processCriteria records a non-blank condition string as a single READ on
// the synthetic criteria field, carrying the full text.
func (a *Analyzer) processCriteria(trans *transitionDocument, recordType, originLabel, originID string) {
	if strings.TrimSpace(trans.CriteriaString) == "" {
		return
	}

	a.store.Record(usage.Event{
		Kind:         usage.Read,
		Origin:       usage.OriginProcessFlow,
		OriginLabel:  originLabel,
		OriginID:     originID,
		RecordType:   recordType,
		FieldAPIName: CriteriaFieldName,
		Detail: map[string]interface{}{
			"criteriaString": trans.CriteriaString,
			"note":           "unparsed transition criteria",
		},
	})
	a.stats.CriteriaFound++
}

func (a *Analyzer) logUnresolved(recordType, label, fieldID, origin, context string) {
	a.stats.UnresolvedFields++
	a.unresolved = append(a.unresolved, UnresolvedField{
		RecordType: recordType,
		Label:      label,
		FieldID:    fieldID,
		Origin:     origin,
		Context:    context,
	})
}

// ScriptReferences collects every script invocation across all transitions
// under dir, for cross-referencing with the script analyzer's output.
func (a *Analyzer) ScriptReferences(dir string) []ScriptReference {
	refs := make([]ScriptReference, 0)
	transitionsDir := filepath.Join(dir, "transitions")

	files, err := sortedJSONFiles(transitionsDir)
	if err != nil {
		return refs
	}

	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(transitionsDir, name))
		if err != nil {
			continue
		}
		var trans transitionDocument
		if err := json.Unmarshal(data, &trans); err != nil {
			continue
		}
		for _, s := range trans.Actions.Scripts {
			refs = append(refs, ScriptReference{
				ScriptName:     s.Name,
				ScriptID:       idString(s.ID),
				Transition:     trans.Name,
				TransitionFile: name,
				RecordType:     trans.RecordType,
			})
		}
	}
	return refs
}

func sortedJSONFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// idString renders an Id attribute that may arrive as a JSON string or
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
