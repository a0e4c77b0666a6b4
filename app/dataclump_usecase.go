package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/clumpscn/domain"
	svc "github.com/ludo-technologies/clumpscn/service"
)

// configDiscoverer is implemented by config loaders that can search for a
// config file relative to the detected project instead of the working directory
type configDiscoverer interface {
	LoadConfigFor(dir string) (*domain.DataClumpRequest, string, error)
}

// DataClumpUseCase orchestrates the data clump detection workflow
type DataClumpUseCase struct {
	service      domain.DataClumpService
	formatter    domain.DataClumpOutputFormatter
	configLoader domain.DataClumpConfigurationLoader
	output       domain.ReportWriter
}

// NewDataClumpUseCase creates a new data clump use case
func NewDataClumpUseCase(
	service domain.DataClumpService,
	formatter domain.DataClumpOutputFormatter,
	configLoader domain.DataClumpConfigurationLoader,
) *DataClumpUseCase {
	return &DataClumpUseCase{
		service:      service,
		formatter:    formatter,
		configLoader: configLoader,
		output:       svc.NewFileOutputWriter(nil),
	}
}

// prepare merges configuration before validation so that callers may leave
// options unset and rely on the config file or the built-in defaults.
func (uc *DataClumpUseCase) prepare(req domain.DataClumpRequest) (domain.DataClumpRequest, error) {
	finalReq, err := uc.loadAndMergeConfig(req)
	if err != nil {
		return req, wrap(err, domain.NewConfigError, "failed to load configuration")
	}

	if err := uc.validateRequest(finalReq); err != nil {
		return req, domain.NewInvalidInputError("invalid request", err)
	}
	return finalReq, nil
}

// wrap keeps domain errors intact so their code survives to the caller
func wrap(err error, wrapFunc func(string, error) error, message string) error {
	if domain.ErrorCode(err) != "" {
		return err
	}
	return wrapFunc(message, err)
}

// Execute performs detection and writes the formatted report
func (uc *DataClumpUseCase) Execute(ctx context.Context, req domain.DataClumpRequest) (*domain.DataClumpResponse, error) {
	finalReq, err := uc.prepare(req)
	if err != nil {
		return nil, err
	}

	response, err := uc.service.Detect(ctx, finalReq)
	if err != nil {
		return nil, wrap(err, domain.NewAnalysisError, "data clump detection failed")
	}

	var out io.Writer
	if finalReq.OutputPath == "" {
		out = finalReq.OutputWriter
	}
	if err := uc.output.Write(out, finalReq.OutputPath, finalReq.OutputFormat, func(w io.Writer) error {
		return uc.formatter.Write(response, finalReq.OutputFormat, w)
	}); err != nil {
		return nil, wrap(err, domain.NewOutputError, "failed to write output")
	}

	return response, nil
}

// DetectAndReturn performs detection and returns the response without formatting
func (uc *DataClumpUseCase) DetectAndReturn(ctx context.Context, req domain.DataClumpRequest) (*domain.DataClumpResponse, error) {
	if req.OutputWriter == nil && req.OutputPath == "" {
		req.OutputWriter = io.Discard
	}
	finalReq, err := uc.prepare(req)
	if err != nil {
		return nil, err
	}

	response, err := uc.service.Detect(ctx, finalReq)
	if err != nil {
		return nil, wrap(err, domain.NewAnalysisError, "data clump detection failed")
	}
	return response, nil
}

// validateRequest validates the merged request
func (uc *DataClumpUseCase) validateRequest(req domain.DataClumpRequest) error {
	if req.Path == "" {
		return fmt.Errorf("no AST path specified")
	}
	if req.OutputWriter == nil && req.OutputPath == "" {
		return fmt.Errorf("output writer or output path is required")
	}
	if req.OutputFormat != "" && !req.OutputFormat.IsValid() {
		return fmt.Errorf("unsupported output format: %s", req.OutputFormat)
	}

	minimums := []struct {
		name  string
		value int
	}{
		{"fields minimum", req.SharedFieldsToFieldsAmountMinimum},
		{"parameters minimum", req.SharedParametersToParametersAmountMinimum},
		{"parameters to fields minimum", req.SharedParametersToFieldsAmountMinimum},
	}
	for _, m := range minimums {
		if m.value < 0 {
			return fmt.Errorf("%s cannot be negative", m.name)
		}
	}
	if req.MaxGoroutines < 0 {
		return fmt.Errorf("max goroutines cannot be negative")
	}
	return nil
}

// loadAndMergeConfig loads configuration and overlays the request on top
func (uc *DataClumpUseCase) loadAndMergeConfig(req domain.DataClumpRequest) (domain.DataClumpRequest, error) {
	if uc.configLoader == nil {
		return req, nil
	}

	var configReq *domain.DataClumpRequest
	var err error

	switch discoverer, ok := uc.configLoader.(configDiscoverer); {
	case req.ConfigPath != "":
		configReq, err = uc.configLoader.LoadConfig(req.ConfigPath)
		if err != nil {
			return req, err
		}
	case ok && req.Path != "":
		configReq, _, err = discoverer.LoadConfigFor(searchDir(req.Path))
		if err != nil {
			return req, err
		}
	default:
		configReq = uc.configLoader.LoadDefaultConfig()
	}

	if configReq != nil {
		merged := uc.configLoader.MergeConfig(configReq, &req)
		return *merged, nil
	}
	return req, nil
}

// searchDir is where config discovery starts for an AST path
func searchDir(path string) string {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return filepath.Dir(path)
	}
	return path
}

// DataClumpUseCaseBuilder provides a builder pattern for creating DataClumpUseCase
type DataClumpUseCaseBuilder struct {
	service      domain.DataClumpService
	formatter    domain.DataClumpOutputFormatter
	configLoader domain.DataClumpConfigurationLoader
	output       domain.ReportWriter
}

// NewDataClumpUseCaseBuilder creates a new builder
func NewDataClumpUseCaseBuilder() *DataClumpUseCaseBuilder {
	return &DataClumpUseCaseBuilder{}
}

// WithService sets the detection service
func (b *DataClumpUseCaseBuilder) WithService(service domain.DataClumpService) *DataClumpUseCaseBuilder {
	b.service = service
	return b
}

// WithFormatter sets the output formatter
func (b *DataClumpUseCaseBuilder) WithFormatter(formatter domain.DataClumpOutputFormatter) *DataClumpUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithConfigLoader sets the configuration loader
func (b *DataClumpUseCaseBuilder) WithConfigLoader(configLoader domain.DataClumpConfigurationLoader) *DataClumpUseCaseBuilder {
	b.configLoader = configLoader
	return b
}

// WithOutputWriter sets the report writer
func (b *DataClumpUseCaseBuilder) WithOutputWriter(output domain.ReportWriter) *DataClumpUseCaseBuilder {
	b.output = output
	return b
}

// Build creates the DataClumpUseCase with the configured dependencies
func (b *DataClumpUseCaseBuilder) Build() (*DataClumpUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("data clump service is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}

	uc := NewDataClumpUseCase(b.service, b.formatter, b.configLoader)
	if b.output != nil {
		uc.output = b.output
	}
	return uc, nil
}
