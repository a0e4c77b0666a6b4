package analyzer

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/ludo-technologies/clumpscn/domain"
	"github.com/ludo-technologies/clumpscn/internal/model"
)

// ProgressFunc is called after each container. Calls are serialized.
type ProgressFunc func(label string, done, total int)

// DetectionResult holds every clump of one run
type DetectionResult struct {
	DataClumps map[string]*domain.DataClump

	// Keys lists DataClumps keys in sorted order
	Keys    []string
	Summary domain.ReportSummary

	// Per-strategy container counts and timings, for logging and reports
	Visited  map[domain.DataClumpType]int
	Duration time.Duration
}

// Detector runs the three strategies over a project
type Detector struct {
	options  DetectorOptions
	names    NameMatcher
	logger   *zap.Logger
	progress ProgressFunc
}

// NewDetector validates options eagerly; an invalid combination never
// reaches the strategies. A nil logger disables logging.
func NewDetector(options DetectorOptions, logger *zap.Logger) (*Detector, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		options: options,
		names:   NewNameMatcher(options.NameSimilarity, options.NameSimilarityThreshold),
		logger:  logger,
	}, nil
}

// SetProgressCallback installs a progress callback
func (d *Detector) SetProgressCallback(fn ProgressFunc) {
	d.progress = fn
}

// SetNameMatcher replaces the name term of the similarity scorer
func (d *Detector) SetNameMatcher(names NameMatcher) {
	if names != nil {
		d.names = names
	}
}

// Options returns the validated options
func (d *Detector) Options() DetectorOptions {
	return d.options
}

// Detect builds the inverted index once, then runs fields, parameter to
// parameter and parameter to field detection in that order.
func (d *Detector) Detect(ctx context.Context, project *model.Project) (*DetectionResult, error) {
	start := time.Now()

	if err := project.Validate(); err != nil {
		d.logger.Error("entity model violates ownership contract", zap.Error(err))
		return nil, err
	}

	det := newDetection(project, d.options, d.names)
	if det.index != nil {
		ff, pp, pf := det.index.Size()
		d.logger.Info("inverted index built",
			zap.Int("field_signatures", ff),
			zap.Int("parameter_signatures", pp),
			zap.Int("parameter_field_signatures", pf))
	}

	strategies := []Strategy{
		&FieldFieldStrategy{det},
		&ParameterParameterStrategy{det},
		&ParameterFieldStrategy{det},
	}

	result := &DetectionResult{
		DataClumps: make(map[string]*domain.DataClump),
		Visited:    make(map[domain.DataClumpType]int),
	}
	for _, s := range strategies {
		clumps, visited, err := d.run(ctx, s)
		if err != nil {
			return nil, err
		}
		result.Visited[s.Type()] = visited
		for _, c := range clumps {
			result.DataClumps[c.Key] = c
		}
		d.logger.Info("strategy finished",
			zap.String("strategy", string(s.Type())),
			zap.Int("containers", visited),
			zap.Int("clumps", len(clumps)))
	}

	result.Keys = make([]string, 0, len(result.DataClumps))
	for k := range result.DataClumps {
		result.Keys = append(result.Keys, k)
	}
	sort.Strings(result.Keys)
	result.Summary = Summarize(result.DataClumps)
	result.Duration = time.Since(start)

	d.logger.Info("detection finished",
		zap.Int("data_clumps", result.Summary.AmountDataClumps),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// run spreads the containers of one strategy over a bounded pool. Each
// container writes to its own slot, so no locking is needed until merge.
func (d *Detector) run(ctx context.Context, s Strategy) ([]*domain.DataClump, int, error) {
	keys := s.Containers()
	total := len(keys)
	slots := make([][]*domain.DataClump, total)

	workers := d.options.MaxGoroutines
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	var (
		mu   sync.Mutex
		done int
	)
	report := func(key string) {
		if d.progress == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done++
		d.progress(fmt.Sprintf("%s: %s", s.Label(), key), done, total)
	}

	p := pool.New().WithMaxGoroutines(workers).WithContext(ctx).WithCancelOnError().WithFirstError()
	for i, key := range keys {
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			clumps, err := detectContainer(s, key)
			if err != nil {
				d.logger.Error("container detection failed",
					zap.String("strategy", string(s.Type())),
					zap.String("container", key),
					zap.Error(err))
				return err
			}
			slots[i] = clumps
			report(key)
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, 0, err
	}
	// The pool may finish cleanly after the parent context was cancelled
	// between the last container and Wait.
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	var clumps []*domain.DataClump
	for _, slot := range slots {
		clumps = append(clumps, slot...)
	}
	return clumps, total, nil
}

// detectContainer turns a panic inside a strategy into a CONTRACT_VIOLATION
// error so one malformed container cannot take down the pool.
func detectContainer(s Strategy, key string) (clumps []*domain.DataClump, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.NewContractViolationError(
				fmt.Sprintf("%s panicked on %q: %v", s.Label(), key, r), nil)
		}
	}()
	return s.Detect(key)
}

// Summarize counts clumps per type and the distinct files, classes and
// methods they touch. Classes are counted on the from side only.
func Summarize(clumps map[string]*domain.DataClump) domain.ReportSummary {
	files := make(map[string]bool)
	classes := make(map[string]bool)
	methods := make(map[string]bool)
	summary := domain.ReportSummary{AmountDataClumps: len(clumps)}

	for _, c := range clumps {
		files[c.FromFilePath] = true
		files[c.ToFilePath] = true
		classes[c.FromClassOrInterfaceKey] = true
		if c.FromMethodKey != nil {
			methods[*c.FromMethodKey] = true
		}
		if c.ToMethodKey != nil {
			methods[*c.ToMethodKey] = true
		}

		switch c.DataClumpType {
		case domain.FieldsToFieldsDataClump:
			summary.FieldsToFieldsDataClump++
		case domain.ParametersToParametersDataClump:
			summary.ParametersToParametersDataClump++
		case domain.ParametersToFieldsDataClump:
			summary.ParametersToFieldsDataClump++
		}
	}

	summary.AmountFilesWithDataClumps = len(files)
	summary.AmountClassesOrInterfacesWithDataClumps = len(classes)
	summary.AmountMethodsWithDataClumps = len(methods)
	return summary
}
