// Package scripts classifies field reads and writes in automation scripts
// without executing them. A two-phase variable-typing pass infers which
// variables are bound to CRM records and which maps feed update/create
// calls, then a single scan over the text classifies .get/.put call sites.
//
// This is a deliberately heuristic, high-recall classifier. Sound static
// analysis of a dynamically typed scripting language is not attempted;
// unresolved candidates are recorded with an explicit marker rather than
// dropped.
package scripts

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"fieldlens/internal/logging"
	"fieldlens/internal/resolver"
	"fieldlens/internal/usage"
)

const maxContextLen = 200

// Stats counts what one analysis pass saw.
type Stats struct {
	ScriptsProcessed int `json:"scriptsProcessed"`
	FieldReads       int `json:"fieldReads"`
	FieldWrites      int `json:"fieldWrites"`
	UnresolvedReads  int `json:"unresolvedReads"`
	UnresolvedWrites int `json:"unresolvedWrites"`
}

// Analyzer extracts field usage from script text.
type Analyzer struct {
	resolver *resolver.Resolver
	store    *usage.Store
	logger   *logging.Logger
	denylist *Denylist
	stats    Stats
}

// NewAnalyzer creates a script analyzer writing into store. denylist may be
// nil, in which case the built-in lists apply.
func NewAnalyzer(res *resolver.Resolver, store *usage.Store, denylist *Denylist, logger *logging.Logger) *Analyzer {
	if denylist == nil {
		denylist = DefaultDenylist()
	}
	return &Analyzer{resolver: res, store: store, denylist: denylist, logger: logger}
}

// Stats returns the counters of the last AnalyzeAll pass.
func (a *Analyzer) Stats() Stats { return a.stats }

// AnalyzeAll processes every .txt script under dir. Unreadable files are
// logged and skipped.
func (a *Analyzer) AnalyzeAll(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			a.logger.Error("skipping unreadable script", map[string]interface{}{
				"file": name, "error": err.Error(),
			})
			continue
		}

		content := string(data)
		stem := strings.TrimSuffix(name, ".txt")
		header := parseHeader(content, stem)
		a.analyzeScript(content, header)
		a.stats.ScriptsProcessed++
	}

	a.logger.Info("script analysis complete", map[string]interface{}{
		"scripts": a.stats.ScriptsProcessed,
		"reads":   a.stats.FieldReads,
		"writes":  a.stats.FieldWrites,
	})
	return nil
}

// scriptHeader holds the //-prefixed metadata lines preceding the body.
type scriptHeader struct {
	DisplayName string
	ID          string
	OriginID    string // file stem, used when no Id header is present
}

// parseHeader reads the small metadata header the extraction layer writes
// at the top of each script file.
func parseHeader(content, stem string) scriptHeader {
	h := scriptHeader{DisplayName: stem, OriginID: stem}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if i >= 5 {
			break
		}
		switch {
		case strings.HasPrefix(line, "// Display_Name:"), strings.HasPrefix(line, "// Function:"):
			if _, v, ok := strings.Cut(line, ":"); ok {
				h.DisplayName = strings.TrimSpace(v)
			}
		case strings.HasPrefix(line, "// Id:"):
			if _, v, ok := strings.Cut(line, ":"); ok {
				h.ID = strings.TrimSpace(v)
			}
		}
	}
	if h.ID != "" {
		h.OriginID = h.ID
	}
	return h
}

func (a *Analyzer) analyzeScript(content string, header scriptHeader) {
	lines := strings.Split(content, "\n")
	originLabel := "Script: " + header.DisplayName

	recordVars := a.findRecordVariables(content)
	mutationVars := a.findMutationVariables(content)

	// Scan pass: .get on record-bound variables.
	for _, match := range reDotGet.FindAllStringSubmatchIndex(content, -1) {
		varName := content[match[2]:match[3]]
		fieldName := content[match[4]:match[5]]

		if a.denylist.NoiseField(fieldName) {
			continue
		}
		recordType, ok := recordVars[varName]
		if !ok {
			continue
		}
		line := lineAt(content, match[0])

		detail := map[string]interface{}{"line": line}
		if _, resolved := a.resolver.Resolve(recordType, resolver.ByAPIName(fieldName)); !resolved {
			// Plausible but unknown to the catalog; useful signal, not noise.
			detail["unresolved"] = true
			a.stats.UnresolvedReads++
		} else {
			a.stats.FieldReads++
		}

		a.store.Record(usage.Event{
			Kind:         usage.Read,
			Origin:       usage.OriginScript,
			OriginLabel:  originLabel,
			OriginID:     header.OriginID,
			RecordType:   recordType,
			FieldAPIName: fieldName,
			Detail:       detail,
		})
	}

	// Scan pass: .put on mutation-bound variables.
	for _, match := range reDotPut.FindAllStringSubmatchIndex(content, -1) {
		varName := content[match[2]:match[3]]
		fieldName := content[match[4]:match[5]]

		if a.denylist.NoiseField(fieldName) || a.denylist.NoiseVariable(varName) {
			continue
		}
		recordType, ok := mutationVars[varName]
		if !ok {
			continue
		}
		line := lineAt(content, match[0])

		context := ""
		if line-1 < len(lines) {
			context = strings.TrimSpace(lines[line-1])
			if len(context) > maxContextLen {
				// Cut on a rune boundary so the context stays valid UTF-8.
				cut := maxContextLen
				for cut > 0 && !utf8.RuneStart(context[cut]) {
					cut--
				}
				context = context[:cut]
			}
		}

		detail := map[string]interface{}{"line": line, "context": context}
		if _, resolved := a.resolver.Resolve(recordType, resolver.ByAPIName(fieldName)); !resolved {
			detail["unresolved"] = true
			a.stats.UnresolvedWrites++
		} else {
			a.stats.FieldWrites++
		}

		a.store.Record(usage.Event{
			Kind:         usage.Write,
			Origin:       usage.OriginScript,
			OriginLabel:  originLabel,
			OriginID:     header.OriginID,
			RecordType:   recordType,
			FieldAPIName: fieldName,
			Detail:       detail,
		})
	}
}

// findRecordVariables is phase 1: variables assigned from a recognized
// read call are bound to that call's record type, and for-each iteration
// propagates a binding from the iterated collection to the loop variable.
func (a *Analyzer) findRecordVariables(content string) map[string]string {
	records := make(map[string]string)

	for _, re := range []*regexp.Regexp{reFetchByID, reSearch, reRelated} {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			records[m[1]] = a.resolver.Normalize(m[2])
		}
	}

	for _, m := range reForEach.FindAllStringSubmatch(content, -1) {
		iterVar, listVar := m[1], m[2]
		if recordType, ok := records[listVar]; ok {
			records[iterVar] = recordType
		}
	}
	return records
}

// findMutationVariables is phase 2: the map argument of an update call
// (third argument) or create call (second argument) is bound to the call's
// record type.
func (a *Analyzer) findMutationVariables(content string) map[string]string {
	mutations := make(map[string]string)

	for _, m := range reUpdateByID.FindAllStringSubmatch(content, -1) {
		mutations[m[3]] = a.resolver.Normalize(m[1])
	}
	for _, m := range reCreate.FindAllStringSubmatch(content, -1) {
		mutations[m[2]] = a.resolver.Normalize(m[1])
	}
	return mutations
}

// lineAt returns the 1-based line number of byte offset off.
func lineAt(content string, off int) int {
	return strings.Count(content[:off], "\n") + 1
}
