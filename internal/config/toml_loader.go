package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/ludo-technologies/clumpscn/domain"
)

// ClumpscnTomlConfig represents the structure of .clumpscn.toml. Pointer
// fields distinguish unset values from explicit zeros.
type ClumpscnTomlConfig struct {
	Detector TomlDetectorConfig `toml:"detector"`
	Input    TomlInputConfig    `toml:"input"`
	Output   TomlOutputConfig   `toml:"output"`
	Project  TomlProjectConfig  `toml:"project"`
}

// TomlDetectorConfig represents the [detector] section
type TomlDetectorConfig struct {
	FastDetection           *bool `toml:"fast_detection"`
	TypeVariablesConsidered *bool `toml:"type_variables_considered"`

	SimilarityModifierOfVariablesWithUnknownType                        *float64 `toml:"similarity_modifier_of_variables_with_unknown_type"`
	FieldsOfClassesWithUnknownHierarchyProbabilityModifier              *float64 `toml:"fields_of_classes_with_unknown_hierarchy_probability_modifier"`
	MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier *float64 `toml:"methods_of_classes_or_interfaces_with_unknown_hierarchy_probability_modifier"`

	SharedFieldsToFieldsAmountMinimum         int `toml:"shared_fields_to_fields_amount_minimum"`
	SharedParametersToParametersAmountMinimum int `toml:"shared_parameters_to_parameters_amount_minimum"`
	SharedParametersToFieldsAmountMinimum     int `toml:"shared_parameters_to_fields_amount_minimum"`

	AnalyseInheritedFields *bool `toml:"analyse_inherited_fields"`

	NameSimilarity          string   `toml:"name_similarity"`
	NameSimilarityThreshold *float64 `toml:"name_similarity_threshold"`
	MaxGoroutines           int      `toml:"max_goroutines"`
}

// TomlInputConfig represents the [input] section
type TomlInputConfig struct {
	PathsIgnoredInDetection []string `toml:"paths_ignored_in_detection"`
}

// TomlOutputConfig represents the [output] section
type TomlOutputConfig struct {
	Format       string `toml:"format"`
	Path         string `toml:"path"`
	ShowProgress *bool  `toml:"show_progress"`
}

// TomlProjectConfig represents the [project] section
type TomlProjectConfig struct {
	Name           string `toml:"name"`
	URL            string `toml:"url"`
	Version        string `toml:"version"`
	TargetLanguage string `toml:"target_language"`
}

// TomlConfigLoader handles loading configuration from .clumpscn.toml
type TomlConfigLoader struct{}

// NewTomlConfigLoader creates a new TOML configuration loader
func NewTomlConfigLoader() *TomlConfigLoader {
	return &TomlConfigLoader{}
}

// LoadConfig finds .clumpscn.toml starting at startDir and walking up.
// Without a config file the defaults are returned and path is empty.
func (l *TomlConfigLoader) LoadConfig(startDir string) (config *Config, path string, err error) {
	path = l.FindConfigFileFromPath(startDir)
	if path == "" {
		return DefaultConfig(), "", nil
	}

	config, err = l.LoadFile(path)
	if err != nil {
		return nil, path, err
	}
	return config, path, nil
}

// LoadFile parses one TOML file and merges it over the defaults
func (l *TomlConfigLoader) LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var tomlConfig ClumpscnTomlConfig
	if err := toml.Unmarshal(data, &tomlConfig); err != nil {
		return nil, fmt.Errorf("failed to parse toml config %s: %w", path, err)
	}

	config := DefaultConfig()
	l.mergeTomlConfig(config, &tomlConfig)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return config, nil
}

// FindConfigFileFromPath walks up from startDir to the filesystem root.
// An empty startDir means the working directory; a file path starts at its directory.
func (l *TomlConfigLoader) FindConfigFileFromPath(startDir string) string {
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return ""
		}
		startDir = wd
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}

	for {
		configPath := filepath.Join(dir, domain.DefaultConfigFileName)
		if info, err := os.Stat(configPath); err == nil && !info.IsDir() {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func (l *TomlConfigLoader) mergeTomlConfig(defaults *Config, t *ClumpscnTomlConfig) {
	d := &defaults.Detector
	if t.Detector.FastDetection != nil {
		d.FastDetection = *t.Detector.FastDetection
	}
	if t.Detector.TypeVariablesConsidered != nil {
		d.TypeVariablesConsidered = *t.Detector.TypeVariablesConsidered
	}
	if t.Detector.SimilarityModifierOfVariablesWithUnknownType != nil {
		d.SimilarityModifierOfVariablesWithUnknownType = *t.Detector.SimilarityModifierOfVariablesWithUnknownType
	}
	if t.Detector.FieldsOfClassesWithUnknownHierarchyProbabilityModifier != nil {
		d.FieldsOfClassesWithUnknownHierarchyProbabilityModifier = *t.Detector.FieldsOfClassesWithUnknownHierarchyProbabilityModifier
	}
	if t.Detector.MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier != nil {
		d.MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier = *t.Detector.MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier
	}
	if t.Detector.SharedFieldsToFieldsAmountMinimum != 0 {
		d.SharedFieldsToFieldsAmountMinimum = t.Detector.SharedFieldsToFieldsAmountMinimum
	}
	if t.Detector.SharedParametersToParametersAmountMinimum != 0 {
		d.SharedParametersToParametersAmountMinimum = t.Detector.SharedParametersToParametersAmountMinimum
	}
	if t.Detector.SharedParametersToFieldsAmountMinimum != 0 {
		d.SharedParametersToFieldsAmountMinimum = t.Detector.SharedParametersToFieldsAmountMinimum
	}
	if t.Detector.AnalyseInheritedFields != nil {
		d.AnalyseInheritedFields = *t.Detector.AnalyseInheritedFields
	}
	if t.Detector.NameSimilarity != "" {
		d.NameSimilarity = t.Detector.NameSimilarity
	}
	if t.Detector.NameSimilarityThreshold != nil {
		d.NameSimilarityThreshold = *t.Detector.NameSimilarityThreshold
	}
	if t.Detector.MaxGoroutines != 0 {
		d.MaxGoroutines = t.Detector.MaxGoroutines
	}

	if len(t.Input.PathsIgnoredInDetection) > 0 {
		defaults.Input.PathsIgnoredInDetection = t.Input.PathsIgnoredInDetection
	}

	if t.Output.Format != "" {
		defaults.Output.Format = t.Output.Format
	}
	if t.Output.Path != "" {
		defaults.Output.Path = t.Output.Path
	}
	if t.Output.ShowProgress != nil {
		defaults.Output.ShowProgress = *t.Output.ShowProgress
	}

	if t.Project.Name != "" {
		defaults.Project.Name = t.Project.Name
	}
	if t.Project.URL != "" {
		defaults.Project.URL = t.Project.URL
	}
	if t.Project.Version != "" {
		defaults.Project.Version = t.Project.Version
	}
	if t.Project.TargetLanguage != "" {
		defaults.Project.TargetLanguage = t.Project.TargetLanguage
	}
}
