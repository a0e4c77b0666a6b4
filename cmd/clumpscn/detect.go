package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ludo-technologies/clumpscn/app"
	"github.com/ludo-technologies/clumpscn/domain"
	"github.com/ludo-technologies/clumpscn/internal/config"
	"github.com/ludo-technologies/clumpscn/service"
)

// DetectCommand holds the flags of the detect command
type DetectCommand struct {
	fieldsMinimum             int
	parametersMinimum         int
	parametersToFieldsMinimum int

	fastDetection       bool
	typeVariables       bool
	inheritedFields     bool
	unknownTypeModifier float64
	fieldsModifier      float64
	methodsModifier     float64

	nameSimilarity string
	nameThreshold  float64
	maxGoroutines  int

	format     string
	output     string
	configPath string
	ignore     []string
	noProgress bool

	targetLanguage string
	projectName    string
	projectURL     string
	projectVersion string
	projectDir     string
}

// NewDetectCommand creates a new detect command
func NewDetectCommand() *DetectCommand {
	return &DetectCommand{}
}

// CreateCobraCommand creates the cobra command for data clump detection
func (d *DetectCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect <ast-dir>",
		Short: "Detect data clumps in an extracted AST directory",
		Long: `Detect data clumps in the entity model stored in <ast-dir>.

<ast-dir> holds one JSON document per top-level class or interface, as
written by an AST extractor. A single JSON file is accepted as well.

Settings are resolved in this order (later wins):
  1. built-in defaults
  2. .clumpscn.toml found by walking up from <ast-dir>, or --config
  3. CLUMPSCN_* environment variables (with --config)
  4. flags given on the command line

Examples:
  # Text report on stdout
  clumpscn detect ast/

  # JSON report written to a file
  clumpscn detect --format json --output reports/clumps.json ast/

  # Require four shared fields, ignore generated sources
  clumpscn detect --fields-minimum 4 --ignore "gen/**" ast/

  # Tolerate mismatched names by edit distance (needs the exhaustive search)
  clumpscn detect --fast-detection=false --name-similarity levenshtein ast/`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         d.runDetect,
	}

	flags := cmd.Flags()

	// Thresholds
	flags.IntVar(&d.fieldsMinimum, "fields-minimum", domain.DefaultSharedFieldsToFieldsAmountMinimum, "Shared fields needed for a fields-to-fields clump")
	flags.IntVar(&d.parametersMinimum, "parameters-minimum", domain.DefaultSharedParametersToParametersAmountMinimum, "Shared parameters needed for a parameters-to-parameters clump")
	flags.IntVar(&d.parametersToFieldsMinimum, "parameters-to-fields-minimum", domain.DefaultSharedParametersToFieldsAmountMinimum, "Shared variables needed for a parameters-to-fields clump")

	// Matching
	flags.BoolVar(&d.fastDetection, "fast-detection", domain.DefaultFastDetection, "Use the inverted index to prune candidates")
	flags.BoolVar(&d.typeVariables, "type-variables", domain.DefaultTypeVariablesConsidered, "Treat generic type variables as declared types")
	flags.BoolVar(&d.inheritedFields, "inherited-fields", domain.DefaultAnalyseInheritedFields, "Include fields inherited from superclasses")
	flags.Float64Var(&d.unknownTypeModifier, "unknown-type-modifier", domain.DefaultSimilarityModifierOfVariablesWithUnknownType, "Similarity factor for variables with differing or unknown types (0-1)")
	flags.Float64Var(&d.fieldsModifier, "fields-modifier", domain.DefaultFieldsOfClassesWithUnknownHierarchyProbabilityModifier, "Probability factor for classes with unknown ancestors (0-1)")
	flags.Float64Var(&d.methodsModifier, "methods-modifier", domain.DefaultMethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier, "Probability factor for methods of classes with unknown ancestors (0-1)")
	flags.StringVar(&d.nameSimilarity, "name-similarity", domain.DefaultNameSimilarity, "Name matching strategy (exact|levenshtein)")
	flags.Float64Var(&d.nameThreshold, "name-threshold", domain.DefaultNameSimilarityThreshold, "Lowest accepted levenshtein name similarity")
	flags.IntVar(&d.maxGoroutines, "max-goroutines", 0, "Worker limit for detection (0 = number of CPUs)")

	// Input and output
	flags.StringVar(&d.format, "format", string(domain.OutputFormatText), "Output format (text|json|yaml|csv)")
	flags.StringVarP(&d.output, "output", "o", "", "Write the report to this file instead of stdout")
	flags.StringVarP(&d.configPath, "config", "c", "", "Configuration file path (toml, yaml or json)")
	flags.StringSliceVar(&d.ignore, "ignore", nil, "Glob patterns over class file paths to skip")
	flags.BoolVar(&d.noProgress, "no-progress", false, "Disable the progress bar")

	// Report metadata
	flags.StringVar(&d.targetLanguage, "target-language", domain.DefaultTargetLanguage, "Language of the analyzed sources")
	flags.StringVar(&d.projectName, "project-name", "", "Project name written to the report")
	flags.StringVar(&d.projectURL, "project-url", "", "Project URL (defaults to the git origin remote)")
	flags.StringVar(&d.projectVersion, "project-version", "", "Project version written to the report")
	flags.StringVar(&d.projectDir, "project-dir", "", "Source tree probed for git metadata (defaults to <ast-dir>)")

	return cmd
}

// buildRequest turns explicitly set flags into a request. Unset flags stay
// zero so that configuration values survive the merge.
func (d *DetectCommand) buildRequest(cmd *cobra.Command, path string) (domain.DataClumpRequest, error) {
	tracker := config.TrackFlagSet(cmd.Flags())

	minimums := []struct {
		flag  string
		value int
	}{
		{"fields-minimum", d.fieldsMinimum},
		{"parameters-minimum", d.parametersMinimum},
		{"parameters-to-fields-minimum", d.parametersToFieldsMinimum},
	}
	for _, m := range minimums {
		if tracker.WasSet(m.flag) && m.value < 1 {
			return domain.DataClumpRequest{}, domain.NewInvalidInputError(fmt.Sprintf("--%s must be at least 1", m.flag), nil)
		}
	}

	format := strings.ToLower(tracker.MergeString("", d.format, "format"))

	req := domain.DataClumpRequest{
		Path:         path,
		OutputFormat: domain.OutputFormat(format),
		OutputWriter: cmd.OutOrStdout(),
		OutputPath:   d.output,
		ShowProgress: !d.noProgress,
		ConfigPath:   d.configPath,

		IgnorePatterns: tracker.MergeStringSlice(nil, d.ignore, "ignore"),

		SharedFieldsToFieldsAmountMinimum:         tracker.MergeInt(0, d.fieldsMinimum, "fields-minimum"),
		SharedParametersToParametersAmountMinimum: tracker.MergeInt(0, d.parametersMinimum, "parameters-minimum"),
		SharedParametersToFieldsAmountMinimum:     tracker.MergeInt(0, d.parametersToFieldsMinimum, "parameters-to-fields-minimum"),
		NameSimilarity:                            tracker.MergeString("", d.nameSimilarity, "name-similarity"),
		NameSimilarityThreshold:                   tracker.MergeFloat64(0, d.nameThreshold, "name-threshold"),
		MaxGoroutines:                             tracker.MergeInt(0, d.maxGoroutines, "max-goroutines"),

		TargetLanguage: tracker.MergeString("", d.targetLanguage, "target-language"),
		Project: domain.ProjectMetadata{
			Name:    d.projectName,
			URL:     d.projectURL,
			Version: d.projectVersion,
			Dir:     d.projectDir,
		},
	}

	if tracker.WasSet("fast-detection") {
		req.FastDetection = domain.BoolPtr(d.fastDetection)
	}
	if tracker.WasSet("type-variables") {
		req.TypeVariablesConsidered = domain.BoolPtr(d.typeVariables)
	}
	if tracker.WasSet("inherited-fields") {
		req.AnalyseInheritedFields = domain.BoolPtr(d.inheritedFields)
	}
	if tracker.WasSet("unknown-type-modifier") {
		req.SimilarityModifierOfVariablesWithUnknownType = domain.Float64Ptr(d.unknownTypeModifier)
	}
	if tracker.WasSet("fields-modifier") {
		req.FieldsOfClassesWithUnknownHierarchyProbabilityModifier = domain.Float64Ptr(d.fieldsModifier)
	}
	if tracker.WasSet("methods-modifier") {
		req.MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier = domain.Float64Ptr(d.methodsModifier)
	}

	return req, nil
}

func (d *DetectCommand) runDetect(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	req, err := d.buildRequest(cmd, args[0])
	if err != nil {
		return d.reportError(cmd, err)
	}

	detector := service.NewDataClumpService(logger)
	if !d.noProgress {
		progress := service.NewProgressManager()
		progress.SetWriter(cmd.ErrOrStderr())
		detector.SetProgressManager(progress)
	}

	formatter := service.NewDataClumpFormatter()
	if d.output != "" {
		formatter = service.NewPlainDataClumpFormatter()
	}

	useCase, err := app.NewDataClumpUseCaseBuilder().
		WithService(detector).
		WithFormatter(formatter).
		WithConfigLoader(service.NewDataClumpConfigurationLoader()).
		WithOutputWriter(service.NewFileOutputWriter(cmd.ErrOrStderr())).
		Build()
	if err != nil {
		return fmt.Errorf("failed to create data clump use case: %w", err)
	}

	response, err := useCase.Execute(cmd.Context(), req)
	if err != nil {
		return d.reportError(cmd, err)
	}

	logger.Info("detection finished",
		zap.Int("data_clumps", len(response.SortedKeys)),
		zap.Int64("duration_ms", response.DurationMs))
	return nil
}

// reportError prints a categorized error with recovery suggestions to stderr
func (d *DetectCommand) reportError(cmd *cobra.Command, err error) error {
	categorizer := service.NewErrorCategorizer()
	categorized := categorizer.Categorize(err)

	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "%s: %s\n", categorized.Category, categorized.Message)
	fmt.Fprintf(w, "  %v\n", err)
	if suggestions := categorizer.GetRecoverySuggestions(categorized.Category); len(suggestions) > 0 {
		fmt.Fprintln(w, "\nSuggestions:")
		for _, s := range suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	return categorized
}

// NewDetectCmd creates and returns the detect cobra command
func NewDetectCmd() *cobra.Command {
	return NewDetectCommand().CreateCobraCommand()
}
