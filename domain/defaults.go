package domain

// ============================================================================
// Detector defaults
// ============================================================================

const (
	// DefaultFastDetection enables the inverted index. Variables only match
	// when their signatures are exactly equal, so no candidate is lost.
	DefaultFastDetection = true

	// DefaultTypeVariablesConsidered controls whether generic type variables
	// (List<T>) count as declared types.
	DefaultTypeVariablesConsidered = false

	// DefaultSimilarityModifierOfVariablesWithUnknownType is the factor applied
	// when two variable types differ or one of them is unknown. 0 disqualifies
	// such pairs entirely.
	DefaultSimilarityModifierOfVariablesWithUnknownType = 0.0

	// DefaultFieldsOfClassesWithUnknownHierarchyProbabilityModifier damps
	// field clumps of classes whose ancestors are not all known. 0 skips them.
	DefaultFieldsOfClassesWithUnknownHierarchyProbabilityModifier = 0.0

	// DefaultMethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier
	// damps parameter clumps of methods in classes with unknown ancestors.
	DefaultMethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier = 0.0

	// DefaultSharedFieldsToFieldsAmountMinimum is the number of shared fields
	// two classes need for a fields_to_fields clump.
	DefaultSharedFieldsToFieldsAmountMinimum = 3

	// DefaultSharedParametersToParametersAmountMinimum is the number of shared
	// parameters two methods need for a parameters_to_parameters clump.
	DefaultSharedParametersToParametersAmountMinimum = 3

	// DefaultSharedParametersToFieldsAmountMinimum is the number of parameters
	// a method must share with the fields of a class.
	DefaultSharedParametersToFieldsAmountMinimum = 3

	// DefaultAnalyseInheritedFields includes superclass fields in the field
	// lists of subclasses. Off because inherited fields are not declared "in one place".
	DefaultAnalyseInheritedFields = false

	// DefaultNameSimilarity is the name matching strategy.
	DefaultNameSimilarity = "exact"

	// DefaultNameSimilarityThreshold is the lowest normalized edit similarity
	// the levenshtein matcher still accepts.
	DefaultNameSimilarityThreshold = 0.8
)

// ============================================================================
// Matching
// ============================================================================

const (
	// PairAcceptanceBound is the similarity a variable pair must exceed to be
	// counted as shared. It gates candidate pairs, it is not a report threshold.
	PairAcceptanceBound = 0.5
)

// ============================================================================
// Report
// ============================================================================

const (
	// ReportVersion is the version of the report wire format.
	ReportVersion = "0.1.120"

	// DetectorName is written to detector.name.
	DetectorName = "clumpscn"

	// DetectorURL is written to detector.url.
	DetectorURL = "https://github.com/ludo-technologies/clumpscn"

	// DefaultTargetLanguage is used when the request does not name one.
	DefaultTargetLanguage = "java"

	// DefaultConfigFileName is discovered by walking up from the input directory.
	DefaultConfigFileName = ".clumpscn.toml"
)
