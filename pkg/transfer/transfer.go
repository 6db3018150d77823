package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/saferoads/pkg/cleaner"
	"github.com/David-Botos/saferoads/pkg/loader"
	"github.com/David-Botos/saferoads/pkg/model"
)

// Source supplies the raw rows of one category for one year
type Source interface {
	Characteristics(year int) ([]model.RawCharacteristics, error)
	Locations(year int) ([]model.RawLocation, error)
	Vehicles(year int) ([]model.RawVehicle, error)
	Users(year int) ([]model.RawUser, error)
}

// Request selects what a run ingests
type Request struct {
	Years      []int
	AllYears   bool             // ingest every known year, always in replace mode
	Replace    bool             // replace the tables instead of appending
	Categories []model.Category // defaults to every category
}

// Manager runs the ingestion one category at a time
type Manager struct {
	source        Source
	dataCleaner   *cleaner.DataCleaner
	loader        *loader.Loader
	errorHandler  *ErrorHandler
	metrics       *TransferMetrics
	logger        *zap.Logger
	knownYears    []int
	loadReference bool
}

// NewManager creates a new transfer manager
func NewManager(src Source, dataCleaner *cleaner.DataCleaner, ld *loader.Loader, logger *zap.Logger) (*Manager, error) {
	if src == nil {
		return nil, errors.New("source cannot be nil")
	}
	if dataCleaner == nil {
		return nil, errors.New("cleaner cannot be nil")
	}
	if ld == nil {
		return nil, errors.New("loader cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	logger = logger.Named("transfer")
	return &Manager{
		source:       src,
		dataCleaner:  dataCleaner,
		loader:       ld,
		errorHandler: NewErrorHandler(logger),
		metrics:      NewTransferMetrics(logger),
		logger:       logger,
	}, nil
}

// WithKnownYears sets the years ingested by an all-years request
func (m *Manager) WithKnownYears(years []int) *Manager {
	m.knownYears = normalizeYears(years)
	return m
}

// WithReferenceTables makes successful runs also replace the vehicle type table
func (m *Manager) WithReferenceTables(load bool) *Manager {
	m.loadReference = load
	return m
}

// GetMetrics returns the metrics collected so far
func (m *Manager) GetMetrics() *TransferMetrics {
	return m.metrics
}

// GetErrorSummary returns error counts by category
func (m *Manager) GetErrorSummary() map[ErrorCategory]int {
	return m.errorHandler.GetErrorSummary()
}

// Run ingests every requested category and stops at the first failure.
// The summary is returned in both cases.
func (m *Manager) Run(ctx context.Context, req Request) (*TransferSummary, error) {
	years, mode, err := m.resolve(req)
	if err != nil {
		return nil, err
	}
	categories := req.Categories
	if len(categories) == 0 {
		categories = model.Categories
	}

	m.logger.Info("Starting ingestion",
		zap.Ints("years", years),
		zap.String("mode", string(mode)),
		zap.Int("tables", len(categories)))

	summary := NewTransferSummary(years, mode)
	defer func() {
		m.metrics.Complete()
		m.metrics.ApplyTo(summary)
		summary.Complete()
	}()

	for _, category := range categories {
		result, err := m.RunTable(ctx, NewTableJob(category, years, mode))
		summary.AddTableResult(*result)
		if err != nil {
			return summary, err
		}
	}

	if m.loadReference {
		result, err := m.loader.LoadReference(ctx)
		if err != nil {
			m.errorHandler.RecordError(NewErrorRecord(err))
			return summary, err
		}
		summary.ReferenceRows = result.RowsWritten
	}

	m.logger.Info("Ingestion completed",
		zap.Int("tables", summary.SuccessfulTables),
		zap.Int64("rowsRead", summary.TotalRowsRead),
		zap.Int64("rowsWritten", summary.TotalRowsWritten),
		zap.Duration("duration", time.Since(summary.StartTime)))
	return summary, nil
}

// RunTable aggregates the job's years and loads the result
func (m *Manager) RunTable(ctx context.Context, job TableJob) (*TableResult, error) {
	result := NewTableResult(job)
	logger := m.logger.With(
		zap.String("jobID", job.ID),
		zap.String("table", string(job.Category)),
		zap.Ints("years", job.Years))

	fail := func(err error) (*TableResult, error) {
		record := NewErrorRecord(err).WithJob(job)
		m.errorHandler.RecordError(record)
		result.Fail(record)
		m.metrics.RecordTable(*result)
		return result, err
	}

	meta := m.dataCleaner.Table(job.Category)
	if meta == nil {
		return fail(fmt.Errorf("unknown table %q", job.Category))
	}
	clean, err := m.yearCleaner(job.Category)
	if err != nil {
		return fail(err)
	}

	logger.Info("Aggregating years")
	start := time.Now()
	table, stats, err := Aggregate(ctx, meta, job.Years, clean)
	result.AggregateDuration = time.Since(start)
	result.Stats = stats
	result.RowsRead = int64(stats.RowsIn)
	result.RowsCleaned = int64(stats.RowsOut)
	if err != nil {
		return fail(err)
	}

	start = time.Now()
	loaded, err := m.loader.Load(ctx, table, job.Mode)
	result.LoadDuration = time.Since(start)
	if err != nil {
		return fail(err)
	}
	result.Mode = loaded.Mode
	result.RowsWritten = loaded.RowsWritten
	result.IndexOffset = loaded.IndexOffset

	result.Complete(true)
	m.metrics.RecordTable(*result)
	return result, nil
}

// resolve turns a request into sorted years and a load mode
func (m *Manager) resolve(req Request) ([]int, loader.Mode, error) {
	if req.AllYears {
		if len(m.knownYears) == 0 {
			return nil, "", errors.New("no known years configured")
		}
		return m.knownYears, loader.ModeReplace, nil
	}

	years := normalizeYears(req.Years)
	if len(years) == 0 {
		return nil, "", errors.New("no years requested")
	}
	for _, year := range years {
		if year < 1900 {
			return nil, "", fmt.Errorf("invalid year %d", year)
		}
	}

	if req.Replace {
		return years, loader.ModeReplace, nil
	}
	return years, loader.ModeAppend, nil
}

func (m *Manager) yearCleaner(category model.Category) (YearCleaner, error) {
	switch category {
	case model.CategoryCharacteristics:
		return cleanYear(category, m.source.Characteristics, m.dataCleaner.CleanCharacteristics), nil
	case model.CategoryLocations:
		return cleanYear(category, m.source.Locations, m.dataCleaner.CleanLocations), nil
	case model.CategoryVehicles:
		return cleanYear(category, m.source.Vehicles, m.dataCleaner.CleanVehicles), nil
	case model.CategoryUsers:
		return cleanYear(category, m.source.Users, m.dataCleaner.CleanUsers), nil
	default:
		return nil, fmt.Errorf("unknown table %q", category)
	}
}

// cleanYear binds a source reader to the cleaner of the same category
func cleanYear[T any](
	category model.Category,
	read func(year int) ([]T, error),
	clean func(year int, raws []T) ([]model.Row, model.CleaningStats, error),
) YearCleaner {
	return func(_ context.Context, year int) ([]model.Row, model.CleaningStats, error) {
		raws, err := read(year)
		if err != nil {
			return nil, model.CleaningStats{}, model.NewStepError(string(category), year, "read source", err)
		}
		return clean(year, raws)
	}
}
