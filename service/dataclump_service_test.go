package service

import (
	"context"
	"io"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/clumpscn/domain"
)

const (
	personKey = "src/Person.java/class/Person"
	doctorKey = "src/Doctor.java/class/Doctor"
)

type recordingProgress struct {
	mu       sync.Mutex
	labels   map[string]bool
	updates  int
	started  bool
	complete *bool
	closed   bool
}

func newRecordingProgress() *recordingProgress {
	return &recordingProgress{labels: map[string]bool{}}
}

func (r *recordingProgress) Initialize(int) {}
func (r *recordingProgress) Start() { r.started = true }
func (r *recordingProgress) Complete(success bool) {
	r.complete = &success
}
func (r *recordingProgress) Update(processed, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
}
func (r *recordingProgress) Describe(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.labels[label] = true
}
func (r *recordingProgress) SetWriter(io.Writer) {}
func (r *recordingProgress) IsInteractive() bool { return true }
func (r *recordingProgress) Close() { r.closed = true }

func TestDataClumpService_Detect(t *testing.T) {
	dir := clinicAST(t)
	svc := NewDataClumpService(nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

	req := *domain.DefaultDataClumpRequest()
	req.Path = dir
	req.Project = domain.ProjectMetadata{Name: "clinic", Dir: t.TempDir()}

	resp, err := svc.Detect(context.Background(), req)
	require.NoError(t, err)
	report := resp.Report

	assert.Equal(t, domain.ReportVersion, report.ReportVersion)
	assert.Equal(t, "2024-03-01T12:00:00Z", report.ReportTimestamp)
	assert.Equal(t, "java", report.TargetLanguage)
	assert.Equal(t, domain.DetectorName, report.Detector.Name)
	assert.Equal(t, true, report.Detector.Options["fastDetection"])

	require.Len(t, report.DataClumps, 2, "one record per direction")
	assert.True(t, sort.StringsAreSorted(resp.SortedKeys))
	assert.Equal(t,
		"fields_to_fields_data_clump-src/Doctor.java-"+doctorKey+"-"+personKey+"-addresscontactInfoinsurance",
		resp.SortedKeys[0])

	forward := report.DataClumps[resp.SortedKeys[1]]
	assert.Equal(t, personKey, forward.FromClassOrInterfaceKey)
	assert.Equal(t, "Doctor", forward.ToClassOrInterfaceName)
	assert.Nil(t, forward.FromMethodName)
	assert.InDelta(t, 1.0, forward.Probability, 1e-9)
	assert.Len(t, forward.DataClumpData, 3)

	summary := report.ReportSummary
	assert.Equal(t, 2, summary.AmountDataClumps)
	assert.Equal(t, 2, summary.FieldsToFieldsDataClump)
	assert.Equal(t, 2, summary.AmountFilesWithDataClumps)
	assert.Equal(t, 2, summary.AmountClassesOrInterfacesWithDataClumps)
	assert.Equal(t, 0, summary.AmountMethodsWithDataClumps)
	assert.InDelta(t, 1.0, summary.Additional["probability_mean"], 1e-9)
	assert.InDelta(t, 0.0, summary.Additional["probability_std_dev"], 1e-9)

	info := report.ProjectInfo
	assert.Equal(t, "clinic", *info.ProjectName)
	assert.Nil(t, info.ProjectCommitHash, "temp dir is no git work tree")
	assert.Equal(t, 3, info.NumberOfFiles)
	assert.Equal(t, 3, info.NumberOfClassesOrInterfaces)
	assert.Equal(t, 9, info.NumberOfDataFields)

	assert.Empty(t, resp.Warnings)
}

func TestDataClumpService_DetectErrors(t *testing.T) {
	svc := NewDataClumpService(nil)

	tests := []struct {
		name     string
		mutate   func(r *domain.DataClumpRequest)
		wantCode string
	}{
		{
			name:     "empty path",
			mutate:   func(r *domain.DataClumpRequest) { r.Path = "" },
			wantCode: domain.ErrCodeInvalidInput,
		},
		{
			name: "invalid options",
			mutate: func(r *domain.DataClumpRequest) {
				r.Path = t.TempDir()
				r.FieldsOfClassesWithUnknownHierarchyProbabilityModifier = domain.Float64Ptr(3)
			},
			wantCode: domain.ErrCodeConfigError,
		},
		{
			name:     "missing directory",
			mutate:   func(r *domain.DataClumpRequest) { r.Path = filepath.Join(t.TempDir(), "absent") },
			wantCode: domain.ErrCodeFileNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := domain.DefaultDataClumpRequest()
			tt.mutate(req)
			_, err := svc.Detect(context.Background(), *req)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, domain.ErrorCode(err))
		})
	}
}

func TestDataClumpService_EmptyProject(t *testing.T) {
	req := domain.DefaultDataClumpRequest()
	req.Path = t.TempDir()

	resp, err := NewDataClumpService(nil).Detect(context.Background(), *req)
	require.NoError(t, err)
	assert.Empty(t, resp.Report.DataClumps)
	assert.Empty(t, resp.Report.ReportSummary.Additional)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "No classes")
}

func TestDataClumpService_IgnorePatterns(t *testing.T) {
	req := domain.DefaultDataClumpRequest()
	req.Path = clinicAST(t)
	req.IgnorePatterns = []string{"src/Doctor.java"}

	resp, err := NewDataClumpService(nil).Detect(context.Background(), *req)
	require.NoError(t, err)
	assert.Empty(t, resp.Report.DataClumps)
	assert.Equal(t, 2, resp.Report.ProjectInfo.NumberOfClassesOrInterfaces)
}

func TestDataClumpService_Progress(t *testing.T) {
	progress := newRecordingProgress()
	svc := NewDataClumpService(nil)
	svc.SetProgressManager(progress)

	req := domain.DefaultDataClumpRequest()
	req.Path = clinicAST(t)
	req.ShowProgress = true

	_, err := svc.Detect(context.Background(), *req)
	require.NoError(t, err)

	assert.True(t, progress.started)
	assert.True(t, progress.closed)
	require.NotNil(t, progress.complete)
	assert.True(t, *progress.complete)
	assert.Equal(t, 3, progress.updates, "one update per class for the field strategy")
	assert.True(t, progress.labels["Field Detector"])
}

func TestDataClumpService_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := domain.DefaultDataClumpRequest()
	req.Path = clinicAST(t)

	_, err := NewDataClumpService(nil).Detect(ctx, *req)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectorOptionsFromRequest(t *testing.T) {
	req := domain.DataClumpRequest{
		FastDetection:                         domain.BoolPtr(false),
		SharedParametersToFieldsAmountMinimum: 2,
		NameSimilarity:                        "levenshtein",
		MaxGoroutines:                         4,
	}

	opts := DetectorOptionsFromRequest(req)
	assert.False(t, opts.FastDetection)
	assert.Equal(t, 2, opts.SharedParametersToFieldsAmountMinimum)
	assert.Equal(t, domain.DefaultSharedFieldsToFieldsAmountMinimum, opts.SharedFieldsToFieldsAmountMinimum)
	assert.Equal(t, "levenshtein", opts.NameSimilarity)
	assert.Equal(t, domain.DefaultNameSimilarityThreshold, opts.NameSimilarityThreshold)
	assert.Equal(t, 4, opts.MaxGoroutines)
	assert.NoError(t, opts.Validate())
}
