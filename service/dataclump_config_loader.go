package service

import (
	"github.com/ludo-technologies/clumpscn/domain"
	"github.com/ludo-technologies/clumpscn/internal/config"
)

// DataClumpConfigurationLoaderImpl implements the DataClumpConfigurationLoader interface
type DataClumpConfigurationLoaderImpl struct {
	tomlLoader *config.TomlConfigLoader
}

// NewDataClumpConfigurationLoader creates a new configuration loader service
func NewDataClumpConfigurationLoader() *DataClumpConfigurationLoaderImpl {
	return &DataClumpConfigurationLoaderImpl{
		tomlLoader: config.NewTomlConfigLoader(),
	}
}

// LoadConfig loads an explicit configuration file (toml, yaml or json)
func (cl *DataClumpConfigurationLoaderImpl) LoadConfig(path string) (*domain.DataClumpRequest, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return cfg.ToRequest(""), nil
}

// LoadDefaultConfig discovers .clumpscn.toml from the working directory,
// falling back to the built-in defaults
func (cl *DataClumpConfigurationLoaderImpl) LoadDefaultConfig() *domain.DataClumpRequest {
	req, _, err := cl.LoadConfigFor("")
	if err != nil {
		return config.DefaultConfig().ToRequest("")
	}
	return req
}

// LoadConfigFor discovers .clumpscn.toml from dir upwards. It returns the
// path of the file used, or "" when the defaults apply.
func (cl *DataClumpConfigurationLoaderImpl) LoadConfigFor(dir string) (*domain.DataClumpRequest, string, error) {
	cfg, path, err := cl.tomlLoader.LoadConfig(dir)
	if err != nil {
		return nil, path, domain.NewConfigError("failed to load "+domain.DefaultConfigFileName, err)
	}
	return cfg.ToRequest(""), path, nil
}

// MergeConfig overlays the set values of override onto base. Pointers and
// non-zero values count as set.
func (cl *DataClumpConfigurationLoaderImpl) MergeConfig(base *domain.DataClumpRequest, override *domain.DataClumpRequest) *domain.DataClumpRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	merged := *base

	if override.Path != "" {
		merged.Path = override.Path
	}
	if override.OutputFormat != "" {
		merged.OutputFormat = override.OutputFormat
	}
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	if override.OutputPath != "" {
		merged.OutputPath = override.OutputPath
	}
	if override.ShowProgress {
		merged.ShowProgress = true
	}
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}
	if len(override.IgnorePatterns) > 0 {
		merged.IgnorePatterns = override.IgnorePatterns
	}

	if override.FastDetection != nil {
		merged.FastDetection = override.FastDetection
	}
	if override.TypeVariablesConsidered != nil {
		merged.TypeVariablesConsidered = override.TypeVariablesConsidered
	}
	if override.SimilarityModifierOfVariablesWithUnknownType != nil {
		merged.SimilarityModifierOfVariablesWithUnknownType = override.SimilarityModifierOfVariablesWithUnknownType
	}
	if override.FieldsOfClassesWithUnknownHierarchyProbabilityModifier != nil {
		merged.FieldsOfClassesWithUnknownHierarchyProbabilityModifier = override.FieldsOfClassesWithUnknownHierarchyProbabilityModifier
	}
	if override.MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier != nil {
		merged.MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier = override.MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier
	}
	if override.SharedFieldsToFieldsAmountMinimum != 0 {
		merged.SharedFieldsToFieldsAmountMinimum = override.SharedFieldsToFieldsAmountMinimum
	}
	if override.SharedParametersToParametersAmountMinimum != 0 {
		merged.SharedParametersToParametersAmountMinimum = override.SharedParametersToParametersAmountMinimum
	}
	if override.SharedParametersToFieldsAmountMinimum != 0 {
		merged.SharedParametersToFieldsAmountMinimum = override.SharedParametersToFieldsAmountMinimum
	}
	if override.AnalyseInheritedFields != nil {
		merged.AnalyseInheritedFields = override.AnalyseInheritedFields
	}
	if override.NameSimilarity != "" {
		merged.NameSimilarity = override.NameSimilarity
	}
	if override.NameSimilarityThreshold != 0 {
		merged.NameSimilarityThreshold = override.NameSimilarityThreshold
	}
	if override.MaxGoroutines != 0 {
		merged.MaxGoroutines = override.MaxGoroutines
	}

	if override.TargetLanguage != "" {
		merged.TargetLanguage = override.TargetLanguage
	}
	merged.Project = mergeProject(base.Project, override.Project)

	return &merged
}

func mergeProject(base, override domain.ProjectMetadata) domain.ProjectMetadata {
	return domain.ProjectMetadata{
		URL:        firstNonEmpty(override.URL, base.URL),
		Name:       firstNonEmpty(override.Name, base.Name),
		Version:    firstNonEmpty(override.Version, base.Version),
		CommitHash: firstNonEmpty(override.CommitHash, base.CommitHash),
		Tag:        firstNonEmpty(override.Tag, base.Tag),
		CommitDate: firstNonEmpty(override.CommitDate, base.CommitDate),
		Dir:        firstNonEmpty(override.Dir, base.Dir),
	}
}
