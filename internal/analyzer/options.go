package analyzer

import (
	"fmt"

	"github.com/ludo-technologies/clumpscn/domain"
)

// Name similarity strategies
const (
	NameSimilarityExact       = "exact"
	NameSimilarityLevenshtein = "levenshtein"
)

// DetectorOptions configures a detection run. It is passed by value into
// every component and never mutated after validation.
type DetectorOptions struct {
	FastDetection           bool
	TypeVariablesConsidered bool

	SimilarityModifierOfVariablesWithUnknownType                        float64
	FieldsOfClassesWithUnknownHierarchyProbabilityModifier              float64
	MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier float64

	SharedFieldsToFieldsAmountMinimum         int
	SharedParametersToParametersAmountMinimum int
	SharedParametersToFieldsAmountMinimum     int

	AnalyseFieldsInClassesOrInterfacesInheritedFromSuperClassesOrInterfaces bool

	NameSimilarity          string
	NameSimilarityThreshold float64

	// MaxGoroutines bounds the worker pool; 0 means runtime.NumCPU().
	MaxGoroutines int
}

// DefaultDetectorOptions returns the default detection options
func DefaultDetectorOptions() DetectorOptions {
	return DetectorOptions{
		FastDetection:                                                           domain.DefaultFastDetection,
		TypeVariablesConsidered:                                                 domain.DefaultTypeVariablesConsidered,
		SimilarityModifierOfVariablesWithUnknownType:                            domain.DefaultSimilarityModifierOfVariablesWithUnknownType,
		FieldsOfClassesWithUnknownHierarchyProbabilityModifier:                  domain.DefaultFieldsOfClassesWithUnknownHierarchyProbabilityModifier,
		MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier:     domain.DefaultMethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier,
		SharedFieldsToFieldsAmountMinimum:                                       domain.DefaultSharedFieldsToFieldsAmountMinimum,
		SharedParametersToParametersAmountMinimum:                               domain.DefaultSharedParametersToParametersAmountMinimum,
		SharedParametersToFieldsAmountMinimum:                                   domain.DefaultSharedParametersToFieldsAmountMinimum,
		AnalyseFieldsInClassesOrInterfacesInheritedFromSuperClassesOrInterfaces: domain.DefaultAnalyseInheritedFields,
		NameSimilarity:                                                          domain.DefaultNameSimilarity,
		NameSimilarityThreshold:                                                 domain.DefaultNameSimilarityThreshold,
	}
}

// Validate rejects out-of-range values and contradictory combinations
func (o DetectorOptions) Validate() error {
	modifiers := []struct {
		name  string
		value float64
	}{
		{"similarityModifierOfVariablesWithUnknownType", o.SimilarityModifierOfVariablesWithUnknownType},
		{"fieldsOfClassesWithUnknownHierarchyProbabilityModifier", o.FieldsOfClassesWithUnknownHierarchyProbabilityModifier},
		{"methodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier", o.MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier},
		{"nameSimilarityThreshold", o.NameSimilarityThreshold},
	}
	for _, m := range modifiers {
		if m.value < 0 || m.value > 1 {
			return domain.NewConfigError(fmt.Sprintf("%s must be within [0,1], got %v", m.name, m.value), nil)
		}
	}

	minimums := []struct {
		name  string
		value int
	}{
		{"sharedFieldsToFieldsAmountMinimum", o.SharedFieldsToFieldsAmountMinimum},
		{"sharedParametersToParametersAmountMinimum", o.SharedParametersToParametersAmountMinimum},
		{"sharedParametersToFieldsAmountMinimum", o.SharedParametersToFieldsAmountMinimum},
	}
	for _, m := range minimums {
		if m.value < 1 {
			return domain.NewConfigError(fmt.Sprintf("%s must be >= 1, got %d", m.name, m.value), nil)
		}
	}

	if o.MaxGoroutines < 0 {
		return domain.NewConfigError(fmt.Sprintf("maxGoroutines must be >= 0, got %d", o.MaxGoroutines), nil)
	}

	switch o.NameSimilarity {
	case NameSimilarityExact, "":
	case NameSimilarityLevenshtein:
		if o.FastDetection {
			return domain.NewConfigError("levenshtein name similarity requires fastDetection to be disabled", nil)
		}
	default:
		return domain.NewConfigError(fmt.Sprintf("unknown name similarity strategy: %s", o.NameSimilarity), nil)
	}

	// The index keys on the exact type; partial type credit would lose candidates.
	if o.FastDetection && o.SimilarityModifierOfVariablesWithUnknownType > 0 && o.SimilarityModifierOfVariablesWithUnknownType != 1 {
		return domain.NewConfigError(
			"fastDetection is enabled but similarityModifierOfVariablesWithUnknownType is neither 0 nor 1; set it to 0 or 1 or disable fastDetection", nil)
	}

	return nil
}

// AsMap echoes the options under their report names
func (o DetectorOptions) AsMap() map[string]interface{} {
	nameSimilarity := o.NameSimilarity
	if nameSimilarity == "" {
		nameSimilarity = NameSimilarityExact
	}
	return map[string]interface{}{
		"fastDetection":                                                           o.FastDetection,
		"typeVariablesConsidered":                                                 o.TypeVariablesConsidered,
		"similarityModifierOfVariablesWithUnknownType":                            o.SimilarityModifierOfVariablesWithUnknownType,
		"fieldsOfClassesWithUnknownHierarchyProbabilityModifier":                  o.FieldsOfClassesWithUnknownHierarchyProbabilityModifier,
		"methodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier":     o.MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier,
		"sharedFieldsToFieldsAmountMinimum":                                       o.SharedFieldsToFieldsAmountMinimum,
		"sharedParametersToParametersAmountMinimum":                               o.SharedParametersToParametersAmountMinimum,
		"sharedParametersToFieldsAmountMinimum":                                   o.SharedParametersToFieldsAmountMinimum,
		"analyseFieldsInClassesOrInterfacesInheritedFromSuperClassesOrInterfaces": o.AnalyseFieldsInClassesOrInterfacesInheritedFromSuperClassesOrInterfaces,
		"nameSimilarity":                                                          nameSimilarity,
		"nameSimilarityThreshold":                                                 o.NameSimilarityThreshold,
	}
}
