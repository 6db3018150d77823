package transfer

import (
	"time"

	"github.com/google/uuid"

	"github.com/David-Botos/saferoads/pkg/loader"
	"github.com/David-Botos/saferoads/pkg/model"
)

// TableJob is the aggregation and load of one category over a set of years
type TableJob struct {
	ID        string // Unique job identifier, attached to every log line
	Category  model.Category
	Years     []int
	Mode      loader.Mode
	CreatedAt time.Time
}

// NewTableJob creates a job with a fresh identifier
func NewTableJob(category model.Category, years []int, mode loader.Mode) TableJob {
	return TableJob{
		ID:        uuid.New().String(),
		Category:  category,
		Years:     years,
		Mode:      mode,
		CreatedAt: time.Now(),
	}
}

// TableResult represents the outcome of a table job
type TableResult struct {
	JobID             string
	Table             string
	Years             []int
	Mode              loader.Mode // effective mode, replace when appending created the table
	Success           bool
	RowsRead          int64
	RowsCleaned       int64
	RowsWritten       int64
	IndexOffset       int64
	Stats             model.CleaningStats
	Error             *ErrorRecord
	StartTime         time.Time
	EndTime           time.Time
	AggregateDuration time.Duration
	LoadDuration      time.Duration
	Duration          time.Duration
}

// NewTableResult initializes a result for a job
func NewTableResult(job TableJob) *TableResult {
	return &TableResult{
		JobID:     job.ID,
		Table:     string(job.Category),
		Years:     job.Years,
		Mode:      job.Mode,
		StartTime: time.Now(),
	}
}

// Complete marks the job as complete and calculates duration
func (r *TableResult) Complete(success bool) {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Success = success
}

// Fail records err and completes the result as failed
func (r *TableResult) Fail(record ErrorRecord) {
	r.Error = &record
	r.Complete(false)
}

// TransferSummary represents the final outcome of a run
type TransferSummary struct {
	Years            []int
	Mode             loader.Mode
	Tables           []TableResult
	SuccessfulTables int
	FailedTables     int
	TotalRowsRead    int64
	TotalRowsWritten int64
	TotalCleaningOps int
	ReferenceRows    int64
	ErrorCategories  map[ErrorCategory]int
	PeakMemoryUsage  int64
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
	Throughput       float64 // rows/second
}

// NewTransferSummary initializes a new transfer summary
func NewTransferSummary(years []int, mode loader.Mode) *TransferSummary {
	return &TransferSummary{
		Years:           years,
		Mode:            mode,
		StartTime:       time.Now(),
		ErrorCategories: make(map[ErrorCategory]int),
	}
}

// AddTableResult incorporates a table result into the summary
func (s *TransferSummary) AddTableResult(result TableResult) {
	s.Tables = append(s.Tables, result)
	s.TotalRowsRead += result.RowsRead
	if !result.Success {
		s.FailedTables++
		if result.Error != nil {
			s.ErrorCategories[result.Error.Category]++
		}
		return
	}
	s.SuccessfulTables++
	s.TotalRowsWritten += result.RowsWritten
	s.TotalCleaningOps += result.Stats.Operations()
}

// Complete marks the run as complete and calculates throughput
func (s *TransferSummary) Complete() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
	if s.Duration.Seconds() > 0 {
		s.Throughput = float64(s.TotalRowsWritten) / s.Duration.Seconds()
	}
}

// Table returns the result for table, nil when the run never reached it
func (s *TransferSummary) Table(table string) *TableResult {
	for i := range s.Tables {
		if s.Tables[i].Table == table {
			return &s.Tables[i]
		}
	}
	return nil
}
