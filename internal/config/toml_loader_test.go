package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/clumpscn/domain"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, domain.DefaultConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestTomlConfigLoader_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `[detector]
fast_detection = false
similarity_modifier_of_variables_with_unknown_type = 0.5
shared_fields_to_fields_amount_minimum = 2
analyse_inherited_fields = true
name_similarity = "levenshtein"

[input]
paths_ignored_in_detection = ["**/generated/**"]

[output]
format = "json"
show_progress = false

[project]
name = "petclinic"
`)

	config, path, err := NewTomlConfigLoader().LoadConfig(dir)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if filepath.Base(path) != domain.DefaultConfigFileName {
		t.Errorf("Expected config path to end in %s, got %s", domain.DefaultConfigFileName, path)
	}

	d := config.Detector
	if d.FastDetection {
		t.Error("Expected fast_detection false")
	}
	if d.SimilarityModifierOfVariablesWithUnknownType != 0.5 {
		t.Errorf("Expected type modifier 0.5, got %v", d.SimilarityModifierOfVariablesWithUnknownType)
	}
	if d.SharedFieldsToFieldsAmountMinimum != 2 {
		t.Errorf("Expected fields minimum 2, got %d", d.SharedFieldsToFieldsAmountMinimum)
	}
	if d.SharedParametersToParametersAmountMinimum != domain.DefaultSharedParametersToParametersAmountMinimum {
		t.Errorf("Unset minimum should keep its default, got %d", d.SharedParametersToParametersAmountMinimum)
	}
	if !d.AnalyseInheritedFields {
		t.Error("Expected analyse_inherited_fields true")
	}
	if d.NameSimilarity != "levenshtein" {
		t.Errorf("Expected levenshtein, got %s", d.NameSimilarity)
	}
	if len(config.Input.PathsIgnoredInDetection) != 1 || config.Input.PathsIgnoredInDetection[0] != "**/generated/**" {
		t.Errorf("Unexpected ignore patterns: %v", config.Input.PathsIgnoredInDetection)
	}
	if config.Output.Format != "json" || config.Output.ShowProgress {
		t.Errorf("Unexpected output section: %+v", config.Output)
	}
	if config.Project.Name != "petclinic" || config.Project.TargetLanguage != domain.DefaultTargetLanguage {
		t.Errorf("Unexpected project section: %+v", config.Project)
	}
}

func TestTomlConfigLoader_WalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[output]\nformat = \"yaml\"\n")

	nested := filepath.Join(root, "build", "ast")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	config, path, err := NewTomlConfigLoader().LoadConfig(nested)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if path == "" {
		t.Fatal("Expected the parent config to be found")
	}
	if config.Output.Format != "yaml" {
		t.Errorf("Expected yaml, got %s", config.Output.Format)
	}
}

func TestTomlConfigLoader_NoFileGivesDefaults(t *testing.T) {
	dir := t.TempDir()
	loader := NewTomlConfigLoader()

	// A config higher up on the machine would leak into this test
	if found := loader.FindConfigFileFromPath(dir); found != "" {
		t.Skipf("found unrelated config at %s", found)
	}

	config, path, err := loader.LoadConfig(dir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("Expected no path, got %s", path)
	}
	if config.Detector.SharedFieldsToFieldsAmountMinimum != domain.DefaultSharedFieldsToFieldsAmountMinimum {
		t.Error("Expected defaults")
	}
}

func TestTomlConfigLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed toml", "[detector\nfast_detection = true", "failed to parse"},
		{"modifier out of range", "[detector]\nfields_of_classes_with_unknown_hierarchy_probability_modifier = 2.0", "between 0 and 1"},
		{"negative minimum", "[detector]\nshared_parameters_to_fields_amount_minimum = -1", "at least 1"},
		{"unknown format", "[output]\nformat = \"xml\"", "invalid output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := NewTomlConfigLoader().LoadFile(path)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTomlConfigLoader_ExplicitZeroModifier(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[detector]\nfast_detection = false\nsimilarity_modifier_of_variables_with_unknown_type = 0.0\n")
	config, err := NewTomlConfigLoader().LoadFile(path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if config.Detector.SimilarityModifierOfVariablesWithUnknownType != 0 {
		t.Errorf("Expected explicit zero to be kept, got %v", config.Detector.SimilarityModifierOfVariablesWithUnknownType)
	}
}
