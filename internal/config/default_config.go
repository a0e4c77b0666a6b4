package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strconv"
	"text/template"

	"github.com/pelletier/go-toml/v2"

	"github.com/ludo-technologies/clumpscn/domain"
)

// defaultConfigTmpl contains the embedded default configuration template
//
//go:embed default_config.toml.tmpl
var defaultConfigTmpl string

// DefaultConfigValues holds all values used to render the default config template.
// All values are sourced from the domain package.
type DefaultConfigValues struct {
	FastDetection                                bool
	TypeVariablesConsidered                      bool
	SimilarityModifierOfVariablesWithUnknownType string
	FieldsModifier                               string
	MethodsModifier                              string
	SharedFieldsToFieldsAmountMinimum            int
	SharedParametersToParametersAmountMinimum    int
	SharedParametersToFieldsAmountMinimum        int
	AnalyseInheritedFields                       bool
	NameSimilarity                               string
	NameSimilarityThreshold                      string
	Format                                       string
	TargetLanguage                               string
}

// tomlFloat keeps a decimal point so TOML reads the value as a float
func tomlFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}

func newDefaultConfigValues() DefaultConfigValues {
	return DefaultConfigValues{
		FastDetection:                                domain.DefaultFastDetection,
		TypeVariablesConsidered:                      domain.DefaultTypeVariablesConsidered,
		SimilarityModifierOfVariablesWithUnknownType: tomlFloat(domain.DefaultSimilarityModifierOfVariablesWithUnknownType),
		FieldsModifier:                               tomlFloat(domain.DefaultFieldsOfClassesWithUnknownHierarchyProbabilityModifier),
		MethodsModifier:                              tomlFloat(domain.DefaultMethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier),
		SharedFieldsToFieldsAmountMinimum:            domain.DefaultSharedFieldsToFieldsAmountMinimum,
		SharedParametersToParametersAmountMinimum:    domain.DefaultSharedParametersToParametersAmountMinimum,
		SharedParametersToFieldsAmountMinimum:        domain.DefaultSharedParametersToFieldsAmountMinimum,
		AnalyseInheritedFields:                       domain.DefaultAnalyseInheritedFields,
		NameSimilarity:                               domain.DefaultNameSimilarity,
		NameSimilarityThreshold:                      tomlFloat(domain.DefaultNameSimilarityThreshold),
		Format:                                       string(domain.OutputFormatText),
		TargetLanguage:                               domain.DefaultTargetLanguage,
	}
}

// GenerateDefaultConfigTOML renders the default config template with domain values
// and returns the resulting TOML string.
func GenerateDefaultConfigTOML() (string, error) {
	tmpl, err := template.New("default_config").Parse(defaultConfigTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse default config template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newDefaultConfigValues()); err != nil {
		return "", fmt.Errorf("failed to render default config template: %w", err)
	}

	return buf.String(), nil
}

// LoadDefaultConfigFromTOML parses the rendered default config
func LoadDefaultConfigFromTOML() (*Config, error) {
	configTOML, err := GenerateDefaultConfigTOML()
	if err != nil {
		return nil, err
	}

	var tomlCfg ClumpscnTomlConfig
	if err := toml.Unmarshal([]byte(configTOML), &tomlCfg); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	loader := &TomlConfigLoader{}
	loader.mergeTomlConfig(cfg, &tomlCfg)
	return cfg, nil
}
