// Package config loads fieldlens configuration from
// <workspace>/.fieldlens/config.json, falling back to defaults when the
// file is absent.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the complete fieldlens configuration.
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Input   InputConfig   `json:"input" mapstructure:"input"`
	Scan    ScanConfig    `json:"scan" mapstructure:"scan"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// InputConfig names the artifact directories under the extraction root and
// controls how missing directories are treated.
type InputConfig struct {
	MetadataDir string `json:"metadataDir" mapstructure:"metadataDir"`
	FlowsDir    string `json:"flowsDir" mapstructure:"flowsDir"`
	RulesDir    string `json:"rulesDir" mapstructure:"rulesDir"`
	ScriptsDir  string `json:"scriptsDir" mapstructure:"scriptsDir"`

	// AllowMissingDirs downgrades a missing top-level directory from a
	// fatal error to a warning that disables the affected analyzer.
	AllowMissingDirs bool `json:"allowMissingDirs" mapstructure:"allowMissingDirs"`
}

// ScanConfig holds analyzer tuning files.
type ScanConfig struct {
	// AliasOverrides is an optional TOML file extending the record-type
	// alias map.
	AliasOverrides string `json:"aliasOverrides" mapstructure:"aliasOverrides"`
	// ScanRules is an optional TOML file extending the script-scan
	// denylists.
	ScanRules string `json:"scanRules" mapstructure:"scanRules"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Input: InputConfig{
			MetadataDir:      "modules",
			FlowsDir:         "blueprints",
			RulesDir:         "workflows",
			ScriptsDir:       "functions",
			AllowMissingDirs: false,
		},
		Scan: ScanConfig{},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load reads configuration from <root>/.fieldlens/config.json. A missing
// file yields the defaults.
func Load(root string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("input.metadataDir", "modules")
	v.SetDefault("input.flowsDir", "blueprints")
	v.SetDefault("input.rulesDir", "workflows")
	v.SetDefault("input.scriptsDir", "functions")
	v.SetDefault("logging.format", "human")
	v.SetDefault("logging.level", "info")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".fieldlens"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the configuration to <root>/.fieldlens/config.json.
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".fieldlens")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	for name, val := range map[string]string{
		"input.metadataDir": c.Input.MetadataDir,
		"input.flowsDir":    c.Input.FlowsDir,
		"input.rulesDir":    c.Input.RulesDir,
		"input.scriptsDir":  c.Input.ScriptsDir,
	} {
		if val == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}
	switch c.Logging.Format {
	case "", "human", "json":
	default:
		return fmt.Errorf("logging.format must be human or json, got %q", c.Logging.Format)
	}
	return nil
}
