package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	def := DefaultConfig()
	if *cfg != *def {
		t.Errorf("cfg = %+v, want %+v", cfg, def)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()

	cfg := DefaultConfig()
	cfg.Input.MetadataDir = "meta"
	cfg.Input.AllowMissingDirs = true
	cfg.Scan.AliasOverrides = "aliases.toml"
	cfg.Logging.Format = "json"

	if err := cfg.Save(root); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(root, ".fieldlens", "config.json")); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Input.MetadataDir != "meta" || !loaded.Input.AllowMissingDirs {
		t.Errorf("input = %+v", loaded.Input)
	}
	if loaded.Scan.AliasOverrides != "aliases.toml" {
		t.Errorf("scan = %+v", loaded.Scan)
	}
	if loaded.Logging.Format != "json" {
		t.Errorf("logging = %+v", loaded.Logging)
	}
}

func TestPartialFileKeepsDefaults(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".fieldlens")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	doc := `{"input": {"flowsDir": "processes"}}`
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Input.FlowsDir != "processes" {
		t.Errorf("flowsDir = %s", cfg.Input.FlowsDir)
	}
	if cfg.Input.MetadataDir != "modules" || cfg.Logging.Level != "info" {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}

	cfg.Input.RulesDir = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty directory name must fail validation")
	}

	cfg = DefaultConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown logging format must fail validation")
	}
}
