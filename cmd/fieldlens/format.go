package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"fieldlens/internal/pipeline"
	"fieldlens/internal/storage"
	"fieldlens/internal/usage"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *pipeline.Snapshot:
		return formatSnapshotHuman(v), nil
	case []*usage.Profile:
		return formatProfilesHuman(v), nil
	case []storage.RunInfo:
		return formatRunsHuman(v), nil
	case []storage.ProfileRow:
		return formatProfileRowsHuman(v), nil
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatSnapshotHuman(snap *pipeline.Snapshot) string {
	var b strings.Builder

	st := snap.FieldStats
	b.WriteString("Field usage analysis\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("Run:      %s\n", snap.RunID))
	b.WriteString(fmt.Sprintf("Input:    %s\n", snap.InputRoot))
	b.WriteString(fmt.Sprintf("Elapsed:  %s\n\n", snap.FinishedAt.Sub(snap.StartedAt)))

	b.WriteString(fmt.Sprintf("Fields:   %d total, %d referenced, %d unreferenced\n",
		st.TotalFields, st.ReferencedFields, st.UnreferencedFields))
	b.WriteString(fmt.Sprintf("Events:   %d reads, %d writes, %d entries\n\n",
		st.TotalReads, st.TotalWrites, st.TotalEntries))

	b.WriteString(fmt.Sprintf("Flows:    %d transitions, %d field updates, %d entry fields, %d unresolved\n",
		snap.FlowStats.TransitionsProcessed, snap.FlowStats.FieldUpdatesFound,
		snap.FlowStats.EntryFieldsFound, snap.FlowStats.UnresolvedFields))
	b.WriteString(fmt.Sprintf("Rules:    %d rules, %d criteria reads, %d field writes\n",
		snap.RuleStats.RulesProcessed, snap.RuleStats.CriteriaReads, snap.RuleStats.FieldWrites))
	b.WriteString(fmt.Sprintf("Scripts:  %d scripts, %d reads (%d unresolved), %d writes (%d unresolved)\n\n",
		snap.ScriptStats.ScriptsProcessed,
		snap.ScriptStats.FieldReads, snap.ScriptStats.UnresolvedReads,
		snap.ScriptStats.FieldWrites, snap.ScriptStats.UnresolvedWrites))

	recordTypes := make([]string, 0, len(snap.Profiles))
	for rt := range snap.Profiles {
		recordTypes = append(recordTypes, rt)
	}
	sort.Strings(recordTypes)

	b.WriteString("Per record type:\n")
	for _, rt := range recordTypes {
		referenced := 0
		for _, p := range snap.Profiles[rt] {
			if p.IsReferenced() {
				referenced++
			}
		}
		b.WriteString(fmt.Sprintf("  %-24s %4d fields, %4d referenced\n",
			rt, len(snap.Profiles[rt]), referenced))
	}
	return b.String()
}

func formatProfilesHuman(profiles []*usage.Profile) string {
	var b strings.Builder
	for _, p := range profiles {
		b.WriteString(fmt.Sprintf("%-40s %-32s %s\n", p.Label, p.APIName, p.Summary()))
	}
	b.WriteString(fmt.Sprintf("\n%d fields\n", len(profiles)))
	return b.String()
}

func formatRunsHuman(runs []storage.RunInfo) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(fmt.Sprintf("%s  %s\n", r.RunID, r.StartedAt))
		b.WriteString(fmt.Sprintf("  input:  %s\n", r.InputRoot))
		b.WriteString(fmt.Sprintf("  fields: %d total, %d referenced, %d unreferenced\n",
			r.TotalFields, r.Referenced, r.Unreferenced))
		b.WriteString(fmt.Sprintf("  events: %d reads, %d writes, %d entries\n",
			r.Reads, r.Writes, r.Entries))
	}
	b.WriteString(fmt.Sprintf("\n%d runs\n", len(runs)))
	return b.String()
}

func formatProfileRowsHuman(rows []storage.ProfileRow) string {
	var b strings.Builder
	for _, p := range rows {
		b.WriteString(fmt.Sprintf("%-16s %-40s %-32s %s\n", p.RecordType, p.Label, p.APIName, p.Summary))
	}
	b.WriteString(fmt.Sprintf("\n%d fields\n", len(rows)))
	return b.String()
}
