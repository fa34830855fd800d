package resolver

import (
	"os"

	"github.com/BurntSushi/toml"
)

// builtinAliases maps legacy/internal record-type names to their canonical
// API name. The deal pipeline object carries two names depending on which
// subsystem emitted the artifact.
var builtinAliases = map[string]string{
	"Potentials":  "Deals",
	"Potential":   "Deals",
	"Salesorders": "Sales_Orders",
}

// AliasFile is the on-disk shape of an alias override document
// (aliases.toml). Entries here apply unconditionally, unlike built-ins
// which only activate when the canonical record type exists in the catalog.
type AliasFile struct {
	Aliases map[string]string `toml:"aliases"`
}

// LoadAliasOverrides reads a TOML alias override file. A missing file is
// not an error; it returns an empty map.
func LoadAliasOverrides(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}

	var f AliasFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Aliases == nil {
		f.Aliases = map[string]string{}
	}
	return f.Aliases, nil
}
