package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ludo-technologies/clumpscn/domain"
)

// EnvPrefix prefixes environment overrides, e.g. CLUMPSCN_DETECTOR_FAST_DETECTION
const EnvPrefix = "CLUMPSCN"

// Config represents the main configuration structure
type Config struct {
	// Detector holds the detection options
	Detector DetectorConfig `mapstructure:"detector" toml:"detector" yaml:"detector"`

	// Input holds AST loading configuration
	Input InputConfig `mapstructure:"input" toml:"input" yaml:"input"`

	// Output holds output formatting configuration
	Output OutputConfig `mapstructure:"output" toml:"output" yaml:"output"`

	// Project holds report metadata
	Project ProjectConfig `mapstructure:"project" toml:"project" yaml:"project"`
}

// DetectorConfig mirrors the detector options
type DetectorConfig struct {
	FastDetection           bool `mapstructure:"fast_detection" toml:"fast_detection" yaml:"fast_detection"`
	TypeVariablesConsidered bool `mapstructure:"type_variables_considered" toml:"type_variables_considered" yaml:"type_variables_considered"`

	SimilarityModifierOfVariablesWithUnknownType                        float64 `mapstructure:"similarity_modifier_of_variables_with_unknown_type" toml:"similarity_modifier_of_variables_with_unknown_type" yaml:"similarity_modifier_of_variables_with_unknown_type"`
	FieldsOfClassesWithUnknownHierarchyProbabilityModifier              float64 `mapstructure:"fields_of_classes_with_unknown_hierarchy_probability_modifier" toml:"fields_of_classes_with_unknown_hierarchy_probability_modifier" yaml:"fields_of_classes_with_unknown_hierarchy_probability_modifier"`
	MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier float64 `mapstructure:"methods_of_classes_or_interfaces_with_unknown_hierarchy_probability_modifier" toml:"methods_of_classes_or_interfaces_with_unknown_hierarchy_probability_modifier" yaml:"methods_of_classes_or_interfaces_with_unknown_hierarchy_probability_modifier"`

	SharedFieldsToFieldsAmountMinimum         int `mapstructure:"shared_fields_to_fields_amount_minimum" toml:"shared_fields_to_fields_amount_minimum" yaml:"shared_fields_to_fields_amount_minimum"`
	SharedParametersToParametersAmountMinimum int `mapstructure:"shared_parameters_to_parameters_amount_minimum" toml:"shared_parameters_to_parameters_amount_minimum" yaml:"shared_parameters_to_parameters_amount_minimum"`
	SharedParametersToFieldsAmountMinimum     int `mapstructure:"shared_parameters_to_fields_amount_minimum" toml:"shared_parameters_to_fields_amount_minimum" yaml:"shared_parameters_to_fields_amount_minimum"`

	AnalyseInheritedFields bool `mapstructure:"analyse_inherited_fields" toml:"analyse_inherited_fields" yaml:"analyse_inherited_fields"`

	NameSimilarity          string  `mapstructure:"name_similarity" toml:"name_similarity" yaml:"name_similarity"`
	NameSimilarityThreshold float64 `mapstructure:"name_similarity_threshold" toml:"name_similarity_threshold" yaml:"name_similarity_threshold"`

	// MaxGoroutines bounds the worker pool; 0 uses every CPU
	MaxGoroutines int `mapstructure:"max_goroutines" toml:"max_goroutines" yaml:"max_goroutines"`
}

// InputConfig holds AST loading configuration
type InputConfig struct {
	// PathsIgnoredInDetection are doublestar globs over class file paths
	PathsIgnoredInDetection []string `mapstructure:"paths_ignored_in_detection" toml:"paths_ignored_in_detection" yaml:"paths_ignored_in_detection"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv
	Format string `mapstructure:"format" toml:"format" yaml:"format"`

	// Path writes the report to a file instead of stdout
	Path string `mapstructure:"path" toml:"path" yaml:"path"`

	// ShowProgress renders a progress bar on interactive terminals
	ShowProgress bool `mapstructure:"show_progress" toml:"show_progress" yaml:"show_progress"`
}

// ProjectConfig holds report metadata. Empty values are probed from git.
type ProjectConfig struct {
	Name           string `mapstructure:"name" toml:"name" yaml:"name"`
	URL            string `mapstructure:"url" toml:"url" yaml:"url"`
	Version        string `mapstructure:"version" toml:"version" yaml:"version"`
	TargetLanguage string `mapstructure:"target_language" toml:"target_language" yaml:"target_language"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Detector: DetectorConfig{
			FastDetection:                                                       domain.DefaultFastDetection,
			TypeVariablesConsidered:                                             domain.DefaultTypeVariablesConsidered,
			SimilarityModifierOfVariablesWithUnknownType:                        domain.DefaultSimilarityModifierOfVariablesWithUnknownType,
			FieldsOfClassesWithUnknownHierarchyProbabilityModifier:              domain.DefaultFieldsOfClassesWithUnknownHierarchyProbabilityModifier,
			MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier: domain.DefaultMethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier,
			SharedFieldsToFieldsAmountMinimum:                                   domain.DefaultSharedFieldsToFieldsAmountMinimum,
			SharedParametersToParametersAmountMinimum:                           domain.DefaultSharedParametersToParametersAmountMinimum,
			SharedParametersToFieldsAmountMinimum:                               domain.DefaultSharedParametersToFieldsAmountMinimum,
			AnalyseInheritedFields:                                              domain.DefaultAnalyseInheritedFields,
			NameSimilarity:                                                      domain.DefaultNameSimilarity,
			NameSimilarityThreshold:                                             domain.DefaultNameSimilarityThreshold,
		},
		Input: InputConfig{
			PathsIgnoredInDetection: []string{},
		},
		Output: OutputConfig{
			Format:       string(domain.OutputFormatText),
			ShowProgress: true,
		},
		Project: ProjectConfig{
			TargetLanguage: domain.DefaultTargetLanguage,
		},
	}
}

// Validate checks the values a config file can get wrong on its own.
// Cross-option rules are enforced by the detector.
func (c *Config) Validate() error {
	if c.Output.Format != "" && !domain.OutputFormat(c.Output.Format).IsValid() {
		return fmt.Errorf("invalid output format %q, must be one of text, json, yaml, csv", c.Output.Format)
	}

	modifiers := map[string]float64{
		"similarity_modifier_of_variables_with_unknown_type":                           c.Detector.SimilarityModifierOfVariablesWithUnknownType,
		"fields_of_classes_with_unknown_hierarchy_probability_modifier":                c.Detector.FieldsOfClassesWithUnknownHierarchyProbabilityModifier,
		"methods_of_classes_or_interfaces_with_unknown_hierarchy_probability_modifier": c.Detector.MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier,
	}
	for name, value := range modifiers {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", name, value)
		}
	}

	minimums := map[string]int{
		"shared_fields_to_fields_amount_minimum":         c.Detector.SharedFieldsToFieldsAmountMinimum,
		"shared_parameters_to_parameters_amount_minimum": c.Detector.SharedParametersToParametersAmountMinimum,
		"shared_parameters_to_fields_amount_minimum":     c.Detector.SharedParametersToFieldsAmountMinimum,
	}
	for name, value := range minimums {
		if value < 1 {
			return fmt.Errorf("%s must be at least 1, got %d", name, value)
		}
	}

	if c.Detector.MaxGoroutines < 0 {
		return fmt.Errorf("max_goroutines must be >= 0, got %d", c.Detector.MaxGoroutines)
	}
	return nil
}

// newViper creates a viper instance seeded with every default so that
// environment overrides apply to keys absent from the file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := DefaultConfig()
	v.SetDefault("detector.fast_detection", d.Detector.FastDetection)
	v.SetDefault("detector.type_variables_considered", d.Detector.TypeVariablesConsidered)
	v.SetDefault("detector.similarity_modifier_of_variables_with_unknown_type", d.Detector.SimilarityModifierOfVariablesWithUnknownType)
	v.SetDefault("detector.fields_of_classes_with_unknown_hierarchy_probability_modifier", d.Detector.FieldsOfClassesWithUnknownHierarchyProbabilityModifier)
	v.SetDefault("detector.methods_of_classes_or_interfaces_with_unknown_hierarchy_probability_modifier", d.Detector.MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier)
	v.SetDefault("detector.shared_fields_to_fields_amount_minimum", d.Detector.SharedFieldsToFieldsAmountMinimum)
	v.SetDefault("detector.shared_parameters_to_parameters_amount_minimum", d.Detector.SharedParametersToParametersAmountMinimum)
	v.SetDefault("detector.shared_parameters_to_fields_amount_minimum", d.Detector.SharedParametersToFieldsAmountMinimum)
	v.SetDefault("detector.analyse_inherited_fields", d.Detector.AnalyseInheritedFields)
	v.SetDefault("detector.name_similarity", d.Detector.NameSimilarity)
	v.SetDefault("detector.name_similarity_threshold", d.Detector.NameSimilarityThreshold)
	v.SetDefault("detector.max_goroutines", d.Detector.MaxGoroutines)
	v.SetDefault("input.paths_ignored_in_detection", d.Input.PathsIgnoredInDetection)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.path", d.Output.Path)
	v.SetDefault("output.show_progress", d.Output.ShowProgress)
	v.SetDefault("project.name", d.Project.Name)
	v.SetDefault("project.url", d.Project.URL)
	v.SetDefault("project.version", d.Project.Version)
	v.SetDefault("project.target_language", d.Project.TargetLanguage)
	return v
}

// LoadConfig loads configuration from an explicit file of any type viper
// understands (toml, yaml, json). An empty path yields the defaults with
// environment overrides applied.
func LoadConfig(configPath string) (*Config, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	config := DefaultConfig()
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveConfig writes the configuration; the file extension picks the format
func SaveConfig(config *Config, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		v.SetConfigType(ext)
	} else {
		v.SetConfigType("yaml")
	}

	v.Set("detector", detectorMap(config.Detector))
	v.Set("input", map[string]interface{}{
		"paths_ignored_in_detection": config.Input.PathsIgnoredInDetection,
	})
	v.Set("output", map[string]interface{}{
		"format":        config.Output.Format,
		"path":          config.Output.Path,
		"show_progress": config.Output.ShowProgress,
	})
	v.Set("project", map[string]interface{}{
		"name":            config.Project.Name,
		"url":             config.Project.URL,
		"version":         config.Project.Version,
		"target_language": config.Project.TargetLanguage,
	})

	return v.WriteConfig()
}

func detectorMap(d DetectorConfig) map[string]interface{} {
	return map[string]interface{}{
		"fast_detection":                                                               d.FastDetection,
		"type_variables_considered":                                                    d.TypeVariablesConsidered,
		"similarity_modifier_of_variables_with_unknown_type":                           d.SimilarityModifierOfVariablesWithUnknownType,
		"fields_of_classes_with_unknown_hierarchy_probability_modifier":                d.FieldsOfClassesWithUnknownHierarchyProbabilityModifier,
		"methods_of_classes_or_interfaces_with_unknown_hierarchy_probability_modifier": d.MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier,
		"shared_fields_to_fields_amount_minimum":                                       d.SharedFieldsToFieldsAmountMinimum,
		"shared_parameters_to_parameters_amount_minimum":                               d.SharedParametersToParametersAmountMinimum,
		"shared_parameters_to_fields_amount_minimum":                                   d.SharedParametersToFieldsAmountMinimum,
		"analyse_inherited_fields":                                                     d.AnalyseInheritedFields,
		"name_similarity":                                                              d.NameSimilarity,
		"name_similarity_threshold":                                                    d.NameSimilarityThreshold,
		"max_goroutines":                                                               d.MaxGoroutines,
	}
}

// ToRequest converts the configuration into a detection request for path
func (c *Config) ToRequest(path string) *domain.DataClumpRequest {
	return &domain.DataClumpRequest{
		Path:                                                                path,
		OutputFormat:                                                        domain.OutputFormat(c.Output.Format),
		OutputPath:                                                          c.Output.Path,
		ShowProgress:                                                        c.Output.ShowProgress,
		IgnorePatterns:                                                      append([]string(nil), c.Input.PathsIgnoredInDetection...),
		FastDetection:                                                       domain.BoolPtr(c.Detector.FastDetection),
		TypeVariablesConsidered:                                             domain.BoolPtr(c.Detector.TypeVariablesConsidered),
		SimilarityModifierOfVariablesWithUnknownType:                        domain.Float64Ptr(c.Detector.SimilarityModifierOfVariablesWithUnknownType),
		FieldsOfClassesWithUnknownHierarchyProbabilityModifier:              domain.Float64Ptr(c.Detector.FieldsOfClassesWithUnknownHierarchyProbabilityModifier),
		MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier: domain.Float64Ptr(c.Detector.MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier),
		SharedFieldsToFieldsAmountMinimum:                                   c.Detector.SharedFieldsToFieldsAmountMinimum,
		SharedParametersToParametersAmountMinimum:                           c.Detector.SharedParametersToParametersAmountMinimum,
		SharedParametersToFieldsAmountMinimum:                               c.Detector.SharedParametersToFieldsAmountMinimum,
		AnalyseInheritedFields:                                              domain.BoolPtr(c.Detector.AnalyseInheritedFields),
		NameSimilarity:                                                      c.Detector.NameSimilarity,
		NameSimilarityThreshold:                                             c.Detector.NameSimilarityThreshold,
		MaxGoroutines:                                                       c.Detector.MaxGoroutines,
		TargetLanguage:                                                      c.Project.TargetLanguage,
		Project: domain.ProjectMetadata{
			Name:    c.Project.Name,
			URL:     c.Project.URL,
			Version: c.Project.Version,
		},
	}
}
