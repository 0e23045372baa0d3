package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Settings holds the declarative anonymisation rules as a nested
// mapping of schema name to table name to column name to a raw
// replacement template, for example (toml)
//
//	[rules.public.users]
//	email = "{{HASH(42)}}@anon.test"
//
// or the equivalent yaml
//
//	rules:
//	  public:
//	    users:
//	      email: "{{HASH(42)}}@anon.test"
type Settings struct {
	Rules map[string]map[string]map[string]string `toml:"rules" yaml:"rules"`
}

// LoadSettings reads a settings file in either toml or yaml format,
// chosen by file extension (toml unless the extension is .yaml or
// .yml). No validation is done beyond decoding; templates are checked
// when the rule catalog is compiled
func LoadSettings(path string) (Settings, error) {

	var settings Settings

	contents, err := os.ReadFile(path)
	if err != nil {
		return settings, fmt.Errorf("could not read settings file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(contents, &settings)
	default:
		err = toml.Unmarshal(contents, &settings)
	}
	if err != nil {
		return settings, fmt.Errorf("could not decode settings file %s: %w", path, err)
	}

	return settings, nil
}
