package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ludo-technologies/clumpscn/domain"
	"github.com/ludo-technologies/clumpscn/service"
)

// Mock implementations
type mockDataClumpService struct {
	mock.Mock
}

func (m *mockDataClumpService) Detect(ctx context.Context, req domain.DataClumpRequest) (*domain.DataClumpResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DataClumpResponse), args.Error(1)
}

type mockDataClumpFormatter struct {
	mock.Mock
}

func (m *mockDataClumpFormatter) Format(response *domain.DataClumpResponse, format domain.OutputFormat) (string, error) {
	args := m.Called(response, format)
	return args.String(0), args.Error(1)
}

func (m *mockDataClumpFormatter) Write(response *domain.DataClumpResponse, format domain.OutputFormat, writer io.Writer) error {
	args := m.Called(response, format, writer)
	return args.Error(0)
}

type mockDataClumpConfigLoader struct {
	mock.Mock
}

func (m *mockDataClumpConfigLoader) LoadConfig(path string) (*domain.DataClumpRequest, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DataClumpRequest), args.Error(1)
}

func (m *mockDataClumpConfigLoader) LoadDefaultConfig() *domain.DataClumpRequest {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.DataClumpRequest)
}

func (m *mockDataClumpConfigLoader) MergeConfig(base *domain.DataClumpRequest, override *domain.DataClumpRequest) *domain.DataClumpRequest {
	args := m.Called(base, override)
	return args.Get(0).(*domain.DataClumpRequest)
}

// mockDiscoveringConfigLoader also searches for a config file near the AST path
type mockDiscoveringConfigLoader struct {
	mockDataClumpConfigLoader
}

func (m *mockDiscoveringConfigLoader) LoadConfigFor(dir string) (*domain.DataClumpRequest, string, error) {
	args := m.Called(dir)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*domain.DataClumpRequest), args.String(1), args.Error(2)
}

type mockReportWriter struct {
	mock.Mock
}

func (m *mockReportWriter) Write(writer io.Writer, outputPath string, format domain.OutputFormat, writeFunc func(io.Writer) error) error {
	args := m.Called(writer, outputPath, format)
	if err := args.Error(0); err != nil {
		return err
	}
	return writeFunc(io.Discard)
}

func sampleDataClumpResponse() *domain.DataClumpResponse {
	return &domain.DataClumpResponse{
		Report: &domain.DataClumpsReport{
			ReportVersion: domain.ReportVersion,
			DataClumps:    map[string]*domain.DataClump{},
		},
		SortedKeys: []string{},
		Version:    "test",
	}
}

func TestDataClumpUseCase_Execute(t *testing.T) {
	astDir := t.TempDir()

	tests := []struct {
		name string
		req  domain.DataClumpRequest
		setupMocks  func(*mockDataClumpService, *mockDataClumpFormatter)
		wantErrCode string
	}{
		{
			name: "successful detection",
			req: domain.DataClumpRequest{
				Path:         astDir,
				OutputFormat: domain.OutputFormatJSON,
				OutputWriter: &bytes.Buffer{},
			},
			setupMocks: func(s *mockDataClumpService, f *mockDataClumpFormatter) {
				s.On("Detect", mock.Anything, mock.Anything).Return(sampleDataClumpResponse(), nil)
				f.On("Write", mock.Anything, domain.OutputFormatJSON, mock.Anything).Return(nil)
			},
		},
		{
			name: "empty format falls through to the formatter",
			req: domain.DataClumpRequest{
				Path:         astDir,
				OutputWriter: &bytes.Buffer{},
			},
			setupMocks: func(s *mockDataClumpService, f *mockDataClumpFormatter) {
				s.On("Detect", mock.Anything, mock.Anything).Return(sampleDataClumpResponse(), nil)
				f.On("Write", mock.Anything, domain.OutputFormat(""), mock.Anything).Return(nil)
			},
		},
		{
			name:        "missing path",
			req:         domain.DataClumpRequest{OutputWriter: &bytes.Buffer{}},
			wantErrCode: domain.ErrCodeInvalidInput,
		},
		{
			name:        "missing output destination",
			req:         domain.DataClumpRequest{Path: astDir},
			wantErrCode: domain.ErrCodeInvalidInput,
		},
		{
			name: "unsupported format",
			req: domain.DataClumpRequest{
				Path:         astDir,
				OutputFormat: domain.OutputFormat("html"),
				OutputWriter: &bytes.Buffer{},
			},
			wantErrCode: domain.ErrCodeInvalidInput,
		},
		{
			name: "negative minimum",
			req: domain.DataClumpRequest{
				Path:                              astDir,
				OutputWriter:                      &bytes.Buffer{},
				SharedFieldsToFieldsAmountMinimum: -1,
			},
			wantErrCode: domain.ErrCodeInvalidInput,
		},
		{
			name: "foreign service error becomes an analysis error",
			req: domain.DataClumpRequest{
				Path:         astDir,
				OutputWriter: &bytes.Buffer{},
			},
			setupMocks: func(s *mockDataClumpService, f *mockDataClumpFormatter) {
				s.On("Detect", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))
			},
			wantErrCode: domain.ErrCodeAnalysisError,
		},
		{
			name: "domain service error keeps its code",
			req: domain.DataClumpRequest{
				Path:         astDir,
				OutputWriter: &bytes.Buffer{},
			},
			setupMocks: func(s *mockDataClumpService, f *mockDataClumpFormatter) {
				s.On("Detect", mock.Anything, mock.Anything).Return(nil, domain.NewFileNotFoundError(astDir, nil))
			},
			wantErrCode: domain.ErrCodeFileNotFound,
		},
		{
			name: "formatter error",
			req: domain.DataClumpRequest{
				Path:         astDir,
				OutputWriter: &bytes.Buffer{},
			},
			setupMocks: func(s *mockDataClumpService, f *mockDataClumpFormatter) {
				s.On("Detect", mock.Anything, mock.Anything).Return(sampleDataClumpResponse(), nil)
				f.On("Write", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("disk full"))
			},
			wantErrCode: domain.ErrCodeOutputError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockDataClumpService)
			formatter := new(mockDataClumpFormatter)
			if tt.setupMocks != nil {
				tt.setupMocks(svc, formatter)
			}

			uc := NewDataClumpUseCase(svc, formatter, nil)
			response, err := uc.Execute(context.Background(), tt.req)

			if tt.wantErrCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErrCode, domain.ErrorCode(err))
				assert.Nil(t, response)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, response)
			}
			svc.AssertExpectations(t)
			formatter.AssertExpectations(t)
		})
	}
}

func TestDataClumpUseCase_ExplicitConfigPath(t *testing.T) {
	astDir := t.TempDir()
	fileReq := &domain.DataClumpRequest{SharedFieldsToFieldsAmountMinimum: 4}
	req := domain.DataClumpRequest{
		Path:         astDir,
		ConfigPath:   "clumps.yaml",
		OutputWriter: &bytes.Buffer{},
	}
	merged := req
	merged.SharedFieldsToFieldsAmountMinimum = 4

	loader := new(mockDataClumpConfigLoader)
	loader.On("LoadConfig", "clumps.yaml").Return(fileReq, nil)
	loader.On("MergeConfig", fileReq, &req).Return(&merged)

	svc := new(mockDataClumpService)
	svc.On("Detect", mock.Anything, mock.MatchedBy(func(r domain.DataClumpRequest) bool {
		return r.SharedFieldsToFieldsAmountMinimum == 4
	})).Return(sampleDataClumpResponse(), nil)
	formatter := new(mockDataClumpFormatter)
	formatter.On("Write", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	uc := NewDataClumpUseCase(svc, formatter, loader)
	_, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	loader.AssertExpectations(t)
	loader.AssertNotCalled(t, "LoadDefaultConfig")
	svc.AssertExpectations(t)
}

func TestDataClumpUseCase_ConfigErrors(t *testing.T) {
	req := domain.DataClumpRequest{
		Path:         t.TempDir(),
		ConfigPath:   "missing.toml",
		OutputWriter: &bytes.Buffer{},
	}

	loader := new(mockDataClumpConfigLoader)
	loader.On("LoadConfig", "missing.toml").Return(nil, errors.New("no such file"))

	uc := NewDataClumpUseCase(new(mockDataClumpService), new(mockDataClumpFormatter), loader)
	_, err := uc.Execute(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeConfigError, domain.ErrorCode(err))
}

func TestDataClumpUseCase_DiscoversConfigNearPath(t *testing.T) {
	astDir := t.TempDir()
	discovered := &domain.DataClumpRequest{SharedParametersToParametersAmountMinimum: 5}
	req := domain.DataClumpRequest{Path: astDir, OutputWriter: &bytes.Buffer{}}
	merged := req
	merged.SharedParametersToParametersAmountMinimum = 5

	loader := new(mockDiscoveringConfigLoader)
	loader.On("LoadConfigFor", astDir).Return(discovered, filepath.Join(astDir, domain.DefaultConfigFileName), nil)
	loader.On("MergeConfig", discovered, &req).Return(&merged)

	svc := new(mockDataClumpService)
	svc.On("Detect", mock.Anything, merged).Return(sampleDataClumpResponse(), nil)

	uc := NewDataClumpUseCase(svc, new(mockDataClumpFormatter), loader)
	_, err := uc.DetectAndReturn(context.Background(), req)
	require.NoError(t, err)

	loader.AssertExpectations(t)
	svc.AssertExpectations(t)
}

func TestDataClumpUseCase_DetectAndReturn(t *testing.T) {
	svc := new(mockDataClumpService)
	svc.On("Detect", mock.Anything, mock.Anything).Return(sampleDataClumpResponse(), nil)
	formatter := new(mockDataClumpFormatter)

	uc := NewDataClumpUseCase(svc, formatter, nil)
	response, err := uc.DetectAndReturn(context.Background(), domain.DataClumpRequest{Path: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "test", response.Version)

	formatter.AssertNotCalled(t, "Write", mock.Anything, mock.Anything, mock.Anything)
}

func TestDataClumpUseCase_OutputPath(t *testing.T) {
	svc := new(mockDataClumpService)
	svc.On("Detect", mock.Anything, mock.Anything).Return(sampleDataClumpResponse(), nil)
	formatter := new(mockDataClumpFormatter)
	formatter.On("Write", mock.Anything, domain.OutputFormatCSV, mock.Anything).Return(nil)
	writer := new(mockReportWriter)
	writer.On("Write", nil, "out/report.csv", domain.OutputFormatCSV).Return(nil)

	uc, err := NewDataClumpUseCaseBuilder().
		WithService(svc).
		WithFormatter(formatter).
		WithOutputWriter(writer).
		Build()
	require.NoError(t, err)

	_, err = uc.Execute(context.Background(), domain.DataClumpRequest{
		Path:         t.TempDir(),
		OutputFormat: domain.OutputFormatCSV,
		OutputPath:   "out/report.csv",
		OutputWriter: &bytes.Buffer{},
	})
	require.NoError(t, err)
	writer.AssertExpectations(t)
	formatter.AssertExpectations(t)
}

func TestDataClumpUseCaseBuilder(t *testing.T) {
	t.Run("missing service", func(t *testing.T) {
		_, err := NewDataClumpUseCaseBuilder().WithFormatter(new(mockDataClumpFormatter)).Build()
		assert.Error(t, err)
	})

	t.Run("missing formatter", func(t *testing.T) {
		_, err := NewDataClumpUseCaseBuilder().WithService(new(mockDataClumpService)).Build()
		assert.Error(t, err)
	})

	t.Run("complete", func(t *testing.T) {
		uc, err := NewDataClumpUseCaseBuilder().
			WithService(new(mockDataClumpService)).
			WithFormatter(new(mockDataClumpFormatter)).
			WithConfigLoader(new(mockDataClumpConfigLoader)).
			Build()
		require.NoError(t, err)
		assert.NotNil(t, uc.output, "defaults to the file output writer")
	})
}

func TestDataClumpUseCase_EndToEnd(t *testing.T) {
	astDir := filepath.Join(t.TempDir(), "ast")
	require.NoError(t, os.MkdirAll(astDir, 0o755))
	for _, name := range []string{"Person", "Doctor"} {
		doc := map[string]interface{}{
			"key":       "src/" + name + ".java/class/" + name,
			"name":      name,
			"type":      "class",
			"file_path": "src/" + name + ".java",
			"methods":   map[string]interface{}{},
			"fields": map[string]interface{}{
				"street": map[string]interface{}{"name": "street", "type": "String", "modifiers": []string{"private"}},
				"city":   map[string]interface{}{"name": "city", "type": "String", "modifiers": []string{"private"}},
				"zip":    map[string]interface{}{"name": "zip", "type": "String", "modifiers": []string{"private"}},
			},
		}
		data, err := json.Marshal(doc)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(astDir, name+".json"), data, 0o644))
	}

	uc, err := NewDataClumpUseCaseBuilder().
		WithService(service.NewDataClumpService(zap.NewNop())).
		WithFormatter(service.NewPlainDataClumpFormatter()).
		WithConfigLoader(service.NewDataClumpConfigurationLoader()).
		Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	response, err := uc.Execute(context.Background(), domain.DataClumpRequest{
		Path:         astDir,
		OutputFormat: domain.OutputFormatJSON,
		OutputWriter: &buf,
	})
	require.NoError(t, err)
	assert.Len(t, response.SortedKeys, 2, "one clump per direction")

	var report domain.DataClumpsReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, domain.ReportVersion, report.ReportVersion)
	assert.Len(t, report.DataClumps, 2)
	assert.Equal(t, 2, report.ReportSummary.FieldsToFieldsDataClump)
}
