package service

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ludo-technologies/clumpscn/domain"
	"github.com/ludo-technologies/clumpscn/internal/analyzer"
	"github.com/ludo-technologies/clumpscn/internal/model"
	"github.com/ludo-technologies/clumpscn/internal/version"
)

// DataClumpServiceImpl implements the DataClumpService interface
type DataClumpServiceImpl struct {
	logger   *zap.Logger
	progress domain.ProgressManager
	now      func() time.Time
}

// NewDataClumpService creates a new data clump service. A nil logger disables logging.
func NewDataClumpService(logger *zap.Logger) *DataClumpServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataClumpServiceImpl{
		logger: logger,
		now:    time.Now,
	}
}

// SetProgressManager enables progress reporting for requests with ShowProgress
func (s *DataClumpServiceImpl) SetProgressManager(pm domain.ProgressManager) {
	s.progress = pm
}

// Detect loads the AST directory, runs every strategy and assembles the report
func (s *DataClumpServiceImpl) Detect(ctx context.Context, req domain.DataClumpRequest) (*domain.DataClumpResponse, error) {
	if req.Path == "" {
		return nil, domain.NewInvalidInputError("no AST path given", nil)
	}

	options := DetectorOptionsFromRequest(req)
	detector, err := analyzer.NewDetector(options, s.logger)
	if err != nil {
		return nil, err
	}

	loader := model.NewLoader(req.IgnorePatterns, s.logger)
	project, err := loader.LoadDir(ctx, req.Path)
	if err != nil {
		return nil, err
	}

	var warnings []string
	stats := project.Stats()
	if stats.Classes == 0 {
		warnings = append(warnings, fmt.Sprintf("No classes or interfaces found in %s", req.Path))
	}

	if req.ShowProgress && s.progress != nil {
		pm := s.progress
		pm.Start()
		defer pm.Close()
		detector.SetProgressCallback(func(label string, done, total int) {
			pm.Describe(progressLabel(label))
			pm.Update(done, total)
		})
	}

	result, err := detector.Detect(ctx, project)
	if err != nil {
		if s.progress != nil && req.ShowProgress {
			s.progress.Complete(false)
		}
		return nil, err
	}
	if s.progress != nil && req.ShowProgress {
		s.progress.Complete(true)
	}

	report := s.buildReport(req, options, project, result)

	s.logger.Info("data clump detection finished",
		zap.String("path", req.Path),
		zap.Int("classes", stats.Classes),
		zap.Int("clumps", len(result.Keys)),
		zap.Duration("duration", result.Duration))

	return &domain.DataClumpResponse{
		Report:     report,
		SortedKeys: result.Keys,
		Warnings:   warnings,
		DurationMs: result.Duration.Milliseconds(),
		Version:    version.Version,
	}, nil
}

// progressLabel keeps the strategy part of "Strategy: container"
func progressLabel(label string) string {
	strategy, _, _ := strings.Cut(label, ":")
	return strategy
}

func (s *DataClumpServiceImpl) buildReport(req domain.DataClumpRequest, options analyzer.DetectorOptions, project *model.Project, result *analyzer.DetectionResult) *domain.DataClumpsReport {
	summary := result.Summary
	summary.Additional = probabilityStatistics(result)

	language := req.TargetLanguage
	if language == "" {
		language = domain.DefaultTargetLanguage
	}

	return &domain.DataClumpsReport{
		ReportVersion:   domain.ReportVersion,
		ReportTimestamp: s.now().UTC().Format(time.RFC3339),
		TargetLanguage:  language,
		ReportSummary:   summary,
		ProjectInfo:     buildProjectInfo(req.Project, projectDir(req.Path), project.Stats(), s.logger),
		Detector: domain.DetectorInfo{
			Name:    domain.DetectorName,
			URL:     domain.DetectorURL,
			Version: version.Version,
			Options: options.AsMap(),
		},
		DataClumps: result.DataClumps,
	}
}

// projectDir resolves the directory git is probed from
func projectDir(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	if !info.IsDir() {
		return filepath.Dir(path)
	}
	return path
}

// probabilityStatistics describes the probability distribution over all clumps
func probabilityStatistics(result *analyzer.DetectionResult) map[string]interface{} {
	additional := map[string]interface{}{}
	if len(result.Keys) == 0 {
		return additional
	}

	probabilities := make([]float64, len(result.Keys))
	for i, key := range result.Keys {
		probabilities[i] = result.DataClumps[key].Probability
	}

	mean, std := stat.MeanStdDev(probabilities, nil)
	if math.IsNaN(std) {
		std = 0
	}
	additional["probability_mean"] = mean
	additional["probability_std_dev"] = std
	additional["probability_min"] = floats.Min(probabilities)
	additional["probability_max"] = floats.Max(probabilities)
	return additional
}

// DetectorOptionsFromRequest fills unset request values from the defaults
func DetectorOptionsFromRequest(req domain.DataClumpRequest) analyzer.DetectorOptions {
	opts := analyzer.DefaultDetectorOptions()

	opts.FastDetection = domain.BoolValue(req.FastDetection, opts.FastDetection)
	opts.TypeVariablesConsidered = domain.BoolValue(req.TypeVariablesConsidered, opts.TypeVariablesConsidered)
	opts.SimilarityModifierOfVariablesWithUnknownType = domain.Float64Value(
		req.SimilarityModifierOfVariablesWithUnknownType, opts.SimilarityModifierOfVariablesWithUnknownType)
	opts.FieldsOfClassesWithUnknownHierarchyProbabilityModifier = domain.Float64Value(
		req.FieldsOfClassesWithUnknownHierarchyProbabilityModifier, opts.FieldsOfClassesWithUnknownHierarchyProbabilityModifier)
	opts.MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier = domain.Float64Value(
		req.MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier, opts.MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier)
	opts.AnalyseFieldsInClassesOrInterfacesInheritedFromSuperClassesOrInterfaces = domain.BoolValue(
		req.AnalyseInheritedFields, opts.AnalyseFieldsInClassesOrInterfacesInheritedFromSuperClassesOrInterfaces)

	if req.SharedFieldsToFieldsAmountMinimum != 0 {
		opts.SharedFieldsToFieldsAmountMinimum = req.SharedFieldsToFieldsAmountMinimum
	}
	if req.SharedParametersToParametersAmountMinimum != 0 {
		opts.SharedParametersToParametersAmountMinimum = req.SharedParametersToParametersAmountMinimum
	}
	if req.SharedParametersToFieldsAmountMinimum != 0 {
		opts.SharedParametersToFieldsAmountMinimum = req.SharedParametersToFieldsAmountMinimum
	}
	if req.NameSimilarity != "" {
		opts.NameSimilarity = req.NameSimilarity
	}
	if req.NameSimilarityThreshold != 0 {
		opts.NameSimilarityThreshold = req.NameSimilarityThreshold
	}
	opts.MaxGoroutines = req.MaxGoroutines

	return opts
}
