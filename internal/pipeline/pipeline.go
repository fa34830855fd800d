// Package pipeline sequences a full analysis run: build the field catalog,
// pre-register every known field, run the three source analyzers, and
// assemble the resulting snapshot. Strictly sequential over an immutable
// input tree, so "referenced" vs "known-but-unreferenced" vs "orphan" are
// well-defined at report time.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"fieldlens/internal/config"
	"fieldlens/internal/errors"
	"fieldlens/internal/flows"
	"fieldlens/internal/logging"
	"fieldlens/internal/resolver"
	"fieldlens/internal/rules"
	"fieldlens/internal/scripts"
	"fieldlens/internal/usage"
)

// Options configures a pipeline run.
type Options struct {
	// InputRoot is the extraction root containing the four artifact
	// directories.
	InputRoot string
	// Config supplies directory names and tuning-file paths; nil means
	// defaults.
	Config *config.Config
}

// Snapshot is the serializable result of one run, consumed by the
// reporting layer.
type Snapshot struct {
	RunID      string    `json:"runId"`
	InputRoot  string    `json:"inputRoot"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`

	FlowStats   flows.Stats   `json:"flowStats"`
	RuleStats   rules.Stats   `json:"ruleStats"`
	ScriptStats scripts.Stats `json:"scriptStats"`
	FieldStats  usage.Stats   `json:"fieldStats"`

	// Profiles per record type, sorted by record type and label.
	Profiles map[string][]*usage.Profile `json:"profiles"`

	// Audit list of process-flow field references no fallback resolved.
	UnresolvedFlowFields []flows.UnresolvedField `json:"unresolvedFlowFields"`

	// Cross-references for correlating automation artifacts with scripts.
	FlowScriptRefs []flows.ScriptReference `json:"flowScriptRefs"`
	RuleScriptRefs []rules.ScriptReference `json:"ruleScriptRefs"`
}

// Pipeline runs the analysis phases in order.
type Pipeline struct {
	opts   Options
	logger *logging.Logger
}

// New creates a pipeline.
func New(opts Options, logger *logging.Logger) *Pipeline {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	return &Pipeline{opts: opts, logger: logger}
}

// Run executes the full pipeline and returns the snapshot. Per-file
// failures inside analyzers are logged and skipped; only structural
// problems (missing directories, unreadable metadata) abort the run.
func (p *Pipeline) Run() (*Snapshot, error) {
	cfg := p.opts.Config
	started := time.Now().UTC()

	metadataDir := filepath.Join(p.opts.InputRoot, cfg.Input.MetadataDir)
	flowsDir := filepath.Join(p.opts.InputRoot, cfg.Input.FlowsDir)
	rulesDir := filepath.Join(p.opts.InputRoot, cfg.Input.RulesDir)
	scriptsDir := filepath.Join(p.opts.InputRoot, cfg.Input.ScriptsDir)

	// The metadata directory is always required: without it there is no
	// catalog and every classification would be an orphan.
	if err := p.requireDir(metadataDir); err != nil {
		return nil, err
	}
	// Fixed check order so repeated failures report the same directory.
	analyzerDirs := []struct {
		name string
		dir  string
	}{
		{"flows", flowsDir},
		{"rules", rulesDir},
		{"scripts", scriptsDir},
	}
	enabled := make(map[string]bool, len(analyzerDirs))
	for _, a := range analyzerDirs {
		err := p.requireDir(a.dir)
		switch {
		case err == nil:
			enabled[a.name] = true
		case cfg.Input.AllowMissingDirs:
			p.logger.Warn("input directory missing, analyzer disabled", map[string]interface{}{
				"analyzer": a.name, "dir": a.dir,
			})
		default:
			return nil, err
		}
	}

	// Phase 1: field catalog.
	p.logger.Info("building field catalog", map[string]interface{}{"dir": metadataDir})
	res, err := resolver.LoadDir(metadataDir, resolver.LoadOptions{
		AliasOverridesPath: cfg.Scan.AliasOverrides,
	}, p.logger)
	if err != nil {
		return nil, err
	}
	if res.FieldCount() == 0 {
		return nil, errors.New(errors.MetadataEmpty,
			fmt.Sprintf("no field metadata found under %s", metadataDir), nil)
	}

	// Phase 2: pre-register every known field so unreferenced fields are
	// distinguishable from orphans.
	store := usage.NewStore(res)
	for _, recordType := range res.RecordTypes() {
		for _, f := range res.Fields(recordType) {
			store.RegisterField(f.RecordType, f.Label, f.APIName, f.ColumnName, f.ID, f.DataType)
		}
	}
	p.logger.Info("fields pre-registered", map[string]interface{}{
		"fields": store.Stats().TotalFields,
	})

	snap := &Snapshot{
		RunID:     uuid.NewString(),
		InputRoot: p.opts.InputRoot,
		StartedAt: started,
		Profiles:  make(map[string][]*usage.Profile),
	}

	// Phase 3: process flows.
	if enabled["flows"] {
		fa := flows.NewAnalyzer(res, store, p.logger)
		if err := fa.AnalyzeAll(flowsDir); err != nil {
			return nil, errors.New(errors.ArtifactUnreadable, "process-flow analysis failed", err)
		}
		snap.FlowStats = fa.Stats()
		snap.UnresolvedFlowFields = fa.Unresolved()
		snap.FlowScriptRefs = fa.ScriptReferences(flowsDir)
	}

	// Phase 4: rules.
	if enabled["rules"] {
		ra := rules.NewAnalyzer(store, p.logger)
		if err := ra.AnalyzeAll(rulesDir); err != nil {
			return nil, errors.New(errors.ArtifactUnreadable, "rule analysis failed", err)
		}
		snap.RuleStats = ra.Stats()
		snap.RuleScriptRefs = ra.ScriptReferences(rulesDir)
	}

	// Phase 5: scripts.
	if enabled["scripts"] {
		denylist, err := scripts.LoadDenylist(cfg.Scan.ScanRules)
		if err != nil {
			return nil, err
		}
		sa := scripts.NewAnalyzer(res, store, denylist, p.logger)
		if err := sa.AnalyzeAll(scriptsDir); err != nil {
			return nil, errors.New(errors.ArtifactUnreadable, "script analysis failed", err)
		}
		snap.ScriptStats = sa.Stats()
	}

	// Phase 6: assemble.
	for _, recordType := range store.RecordTypes() {
		snap.Profiles[recordType] = store.RecordTypeProfiles(recordType)
	}
	snap.FieldStats = store.Stats()
	snap.FinishedAt = time.Now().UTC()

	p.logger.Info("analysis complete", map[string]interface{}{
		"runId":        snap.RunID,
		"totalFields":  snap.FieldStats.TotalFields,
		"referenced":   snap.FieldStats.ReferencedFields,
		"unreferenced": snap.FieldStats.UnreferencedFields,
		"reads":        snap.FieldStats.TotalReads,
		"writes":       snap.FieldStats.TotalWrites,
		"entries":      snap.FieldStats.TotalEntries,
		"elapsed":      snap.FinishedAt.Sub(snap.StartedAt).String(),
	})
	return snap, nil
}

func (p *Pipeline) requireDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return errors.New(errors.InputDirMissing,
			fmt.Sprintf("expected input directory %s", dir), err)
	}
	return nil
}
