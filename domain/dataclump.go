package domain

import (
	"context"
	"io"
)

// DataClumpType discriminates the three clump kinds
type DataClumpType string

const (
	FieldsToFieldsDataClump         DataClumpType = "fields_to_fields_data_clump"
	ParametersToParametersDataClump DataClumpType = "parameters_to_parameters_data_clump"
	ParametersToFieldsDataClump     DataClumpType = "parameters_to_fields_data_clump"
)

// DataClumpRecordType is the constant value of DataClump.Type
const DataClumpRecordType = "data_clump"

// ProjectMetadata describes the analyzed project; empty values are probed from git
type ProjectMetadata struct {
	URL        string
	Name       string
	Version    string
	CommitHash string
	Tag        string
	CommitDate string
	// Dir is the project working tree used for git probing. Defaults to the AST path.
	Dir string
}

// DataClumpRequest represents a request for data clump detection
type DataClumpRequest struct {
	// Directory (or single file) holding extracted AST JSON documents
	Path string

	// Output configuration
	OutputFormat OutputFormat
	OutputWriter io.Writer
	OutputPath   string
	ShowProgress bool

	// Configuration
	ConfigPath string

	// Glob patterns over class file paths excluded at load time
	IgnorePatterns []string

	// Detector options. Pointers distinguish unset from explicit zero.
	FastDetection                                                       *bool
	TypeVariablesConsidered                                             *bool
	SimilarityModifierOfVariablesWithUnknownType                        *float64
	FieldsOfClassesWithUnknownHierarchyProbabilityModifier              *float64
	MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier *float64
	SharedFieldsToFieldsAmountMinimum                                   int
	SharedParametersToParametersAmountMinimum                           int
	SharedParametersToFieldsAmountMinimum                               int
	AnalyseInheritedFields                                              *bool
	NameSimilarity                                                      string
	NameSimilarityThreshold                                             float64
	MaxGoroutines                                                       int

	// Report metadata
	TargetLanguage string
	Project        ProjectMetadata
}

// Position is a source span in the report
type Position struct {
	StartLine   int `json:"startLine" yaml:"startLine"`
	StartColumn int `json:"startColumn" yaml:"startColumn"`
	EndLine     int `json:"endLine" yaml:"endLine"`
	EndColumn   int `json:"endColumn" yaml:"endColumn"`
}

// DataClumpTargetVariable is the variable a source variable was paired with
type DataClumpTargetVariable struct {
	Key       string    `json:"key" yaml:"key"`
	Name      string    `json:"name" yaml:"name"`
	Type      *string   `json:"type" yaml:"type"`
	Modifiers []string  `json:"modifiers" yaml:"modifiers"`
	Position  *Position `json:"position" yaml:"position"`
}

// DataClumpVariable is one matched source variable
type DataClumpVariable struct {
	Key         string                   `json:"key" yaml:"key"`
	Name        string                   `json:"name" yaml:"name"`
	Type        *string                  `json:"type" yaml:"type"`
	Probability float64                  `json:"probability" yaml:"probability"`
	Modifiers   []string                 `json:"modifiers" yaml:"modifiers"`
	Position    *Position                `json:"position" yaml:"position"`
	ToVariable  *DataClumpTargetVariable `json:"to_variable" yaml:"to_variable"`
}

// DataClump is one detected clump instance
type DataClump struct {
	Type                     string                        `json:"type" yaml:"type"`
	Key                      string                        `json:"key" yaml:"key"`
	Probability              float64                       `json:"probability" yaml:"probability"`
	FromFilePath             string                        `json:"from_file_path" yaml:"from_file_path"`
	FromClassOrInterfaceName string                        `json:"from_class_or_interface_name" yaml:"from_class_or_interface_name"`
	FromClassOrInterfaceKey  string                        `json:"from_class_or_interface_key" yaml:"from_class_or_interface_key"`
	FromMethodName           *string                       `json:"from_method_name" yaml:"from_method_name"`
	FromMethodKey            *string                       `json:"from_method_key" yaml:"from_method_key"`
	ToFilePath               string                        `json:"to_file_path" yaml:"to_file_path"`
	ToClassOrInterfaceName   string                        `json:"to_class_or_interface_name" yaml:"to_class_or_interface_name"`
	ToClassOrInterfaceKey    string                        `json:"to_class_or_interface_key" yaml:"to_class_or_interface_key"`
	ToMethodName             *string                       `json:"to_method_name" yaml:"to_method_name"`
	ToMethodKey              *string                       `json:"to_method_key" yaml:"to_method_key"`
	DataClumpType            DataClumpType                 `json:"data_clump_type" yaml:"data_clump_type"`
	DataClumpData            map[string]*DataClumpVariable `json:"data_clump_data" yaml:"data_clump_data"`
}

// ReportSummary aggregates counts over all clumps
type ReportSummary struct {
	AmountDataClumps                        int                    `json:"amount_data_clumps" yaml:"amount_data_clumps"`
	AmountFilesWithDataClumps               int                    `json:"amount_files_with_data_clumps" yaml:"amount_files_with_data_clumps"`
	AmountClassesOrInterfacesWithDataClumps int                    `json:"amount_classes_or_interfaces_with_data_clumps" yaml:"amount_classes_or_interfaces_with_data_clumps"`
	AmountMethodsWithDataClumps             int                    `json:"amount_methods_with_data_clumps" yaml:"amount_methods_with_data_clumps"`
	FieldsToFieldsDataClump                 int                    `json:"fields_to_fields_data_clump" yaml:"fields_to_fields_data_clump"`
	ParametersToFieldsDataClump             int                    `json:"parameters_to_fields_data_clump" yaml:"parameters_to_fields_data_clump"`
	ParametersToParametersDataClump         int                    `json:"parameters_to_parameters_data_clump" yaml:"parameters_to_parameters_data_clump"`
	Additional                              map[string]interface{} `json:"additional" yaml:"additional"`
}

// ProjectInfo describes the analyzed project
type ProjectInfo struct {
	ProjectURL                  *string                `json:"project_url" yaml:"project_url"`
	ProjectName                 *string                `json:"project_name" yaml:"project_name"`
	ProjectVersion              *string                `json:"project_version" yaml:"project_version"`
	ProjectCommitHash           *string                `json:"project_commit_hash" yaml:"project_commit_hash"`
	ProjectTag                  *string                `json:"project_tag" yaml:"project_tag"`
	ProjectCommitDate           *string                `json:"project_commit_date" yaml:"project_commit_date"`
	Additional                  map[string]interface{} `json:"additional" yaml:"additional"`
	NumberOfFiles               int                    `json:"number_of_files" yaml:"number_of_files"`
	NumberOfClassesOrInterfaces int                    `json:"number_of_classes_or_interfaces" yaml:"number_of_classes_or_interfaces"`
	NumberOfMethods             int                    `json:"number_of_methods" yaml:"number_of_methods"`
	NumberOfDataFields          int                    `json:"number_of_data_fields" yaml:"number_of_data_fields"`
	NumberOfMethodParameters    int                    `json:"number_of_method_parameters" yaml:"number_of_method_parameters"`
}

// DetectorInfo identifies the detector and echoes its options
type DetectorInfo struct {
	Name    string                 `json:"name" yaml:"name"`
	URL     string                 `json:"url" yaml:"url"`
	Version string                 `json:"version" yaml:"version"`
	Options map[string]interface{} `json:"options" yaml:"options"`
}

// DataClumpsReport is the wire contract consumed by downstream tooling
type DataClumpsReport struct {
	ReportVersion   string                `json:"report_version" yaml:"report_version"`
	ReportTimestamp string                `json:"report_timestamp" yaml:"report_timestamp"`
	TargetLanguage  string                `json:"target_language" yaml:"target_language"`
	ReportSummary   ReportSummary         `json:"report_summary" yaml:"report_summary"`
	ProjectInfo     ProjectInfo           `json:"project_info" yaml:"project_info"`
	Detector        DetectorInfo          `json:"detector" yaml:"detector"`
	DataClumps      map[string]*DataClump `json:"data_clumps" yaml:"data_clumps"`
}

// DataClumpResponse represents the complete detection result
type DataClumpResponse struct {
	Report *DataClumpsReport

	// Keys of Report.DataClumps in deterministic order
	SortedKeys []string

	Warnings []string
	Errors   []string

	// Metadata
	DurationMs int64
	Version    string
}

// DataClumpService defines the core business logic for data clump detection
type DataClumpService interface {
	// Detect loads the entity model at req.Path and runs all strategies
	Detect(ctx context.Context, req DataClumpRequest) (*DataClumpResponse, error)
}

// DataClumpConfigurationLoader defines the interface for loading detection configuration
type DataClumpConfigurationLoader interface {
	// LoadConfig loads configuration from the specified path
	LoadConfig(path string) (*DataClumpRequest, error)

	// LoadDefaultConfig loads the default configuration
	LoadDefaultConfig() *DataClumpRequest

	// MergeConfig merges CLI flags with configuration file
	MergeConfig(base *DataClumpRequest, override *DataClumpRequest) *DataClumpRequest
}

// DataClumpOutputFormatter defines the interface for formatting detection results
type DataClumpOutputFormatter interface {
	// Format formats the response according to the specified format
	Format(response *DataClumpResponse, format OutputFormat) (string, error)

	// Write writes the formatted output to the writer
	Write(response *DataClumpResponse, format OutputFormat, writer io.Writer) error
}

// DefaultDataClumpRequest returns a DataClumpRequest with default values
func DefaultDataClumpRequest() *DataClumpRequest {
	return &DataClumpRequest{
		OutputFormat:                                                        OutputFormatText,
		FastDetection:                                                       BoolPtr(DefaultFastDetection),
		TypeVariablesConsidered:                                             BoolPtr(DefaultTypeVariablesConsidered),
		SimilarityModifierOfVariablesWithUnknownType:                        Float64Ptr(DefaultSimilarityModifierOfVariablesWithUnknownType),
		FieldsOfClassesWithUnknownHierarchyProbabilityModifier:              Float64Ptr(DefaultFieldsOfClassesWithUnknownHierarchyProbabilityModifier),
		MethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier: Float64Ptr(DefaultMethodsOfClassesOrInterfacesWithUnknownHierarchyProbabilityModifier),
		SharedFieldsToFieldsAmountMinimum:                                   DefaultSharedFieldsToFieldsAmountMinimum,
		SharedParametersToParametersAmountMinimum:                           DefaultSharedParametersToParametersAmountMinimum,
		SharedParametersToFieldsAmountMinimum:                               DefaultSharedParametersToFieldsAmountMinimum,
		AnalyseInheritedFields:                                              BoolPtr(DefaultAnalyseInheritedFields),
		NameSimilarity:                                                      DefaultNameSimilarity,
		NameSimilarityThreshold:                                             DefaultNameSimilarityThreshold,
		TargetLanguage:                                                      DefaultTargetLanguage,
		IgnorePatterns:                                                      []string{},
	}
}

// BoolPtr returns a pointer to the given bool value
func BoolPtr(b bool) *bool {
	return &b
}

// BoolValue safely dereferences a bool pointer, returning defaultVal if nil
func BoolValue(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// Float64Ptr returns a pointer to the given float value
func Float64Ptr(f float64) *float64 {
	return &f
}

// Float64Value safely dereferences a float pointer, returning defaultVal if nil
func Float64Value(f *float64, defaultVal float64) float64 {
	if f == nil {
		return defaultVal
	}
	return *f
}

// StringPtr returns nil for empty strings so the report carries null
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
