package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadSettingsToml(t *testing.T) {

	settings, err := LoadSettings("testdata/settings.toml")
	if err != nil {
		t.Fatalf("could not load toml settings: %s", err)
	}
	if len(settings.Rules["public"]["users"]) != 2 {
		t.Errorf("the users table should have two rules, got %d",
			len(settings.Rules["public"]["users"]))
	}
	if settings.Rules["public"]["users"]["email"] != "{{HASH(42)}}@anon.test" {
		t.Errorf("unexpected email template %q", settings.Rules["public"]["users"]["email"])
	}
}

// TestLoadSettingsYamlEquivalence checks that the yaml form of the
// settings decodes to the same structure as the toml form
func TestLoadSettingsYamlEquivalence(t *testing.T) {

	fromToml, err := LoadSettings("testdata/settings.toml")
	if err != nil {
		t.Fatalf("could not load toml settings: %s", err)
	}
	fromYaml, err := LoadSettings("testdata/settings.yaml")
	if err != nil {
		t.Fatalf("could not load yaml settings: %s", err)
	}
	if !reflect.DeepEqual(fromToml.Rules, fromYaml.Rules) {
		t.Errorf("toml and yaml settings differ:\n%v\n%v", fromToml.Rules, fromYaml.Rules)
	}
}

func TestLoadSettingsMissingFile(t *testing.T) {

	_, err := LoadSettings("testdata/nonesuch.toml")
	if err == nil {
		t.Error("missing settings file should fail")
	}
	t.Log(err)
}

func TestLoadSettingsBadToml(t *testing.T) {

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("rules = [not toml"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadSettings(path)
	if err == nil {
		t.Error("undecodable settings file should fail")
	}
	t.Log(err)
}

func TestNewRuleCatalog(t *testing.T) {

	settings := Settings{
		Rules: map[string]map[string]map[string]string{
			"public": {
				"users": {
					"email": "{{HASH(42)}}@anon.test",
					"city":  "{{PICK(Paris)}}",
				},
			},
			"example_schema": {
				"events": {
					"note": "{{BOGUS(1)}}", // degrades, never aborts
				},
			},
		},
	}

	catalog := NewRuleCatalog(settings)

	if len(catalog) != 2 {
		t.Errorf("catalog should have two tables, got %d", len(catalog))
	}
	rule, ok := catalog["public.users"]["email"]
	if !ok {
		t.Fatal("catalog should hold a rule for public.users email")
	}
	if got := rule.Apply("john@example.com", nil); got != "1454427110@anon.test" {
		t.Errorf("expected 1454427110@anon.test, got %q", got)
	}

	// a malformed template compiles to an empty replacement
	bogus := catalog["example_schema.events"]["note"]
	if got := bogus.Apply("v", nil); got != "" {
		t.Errorf("malformed template should yield empty output, got %q", got)
	}
}
