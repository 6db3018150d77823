package transfer

import (
	"encoding/json"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TableMetrics tracks one table across the run
type TableMetrics struct {
	Table             string
	Success           bool
	RowsRead          int64
	RowsCleaned       int64
	RowsWritten       int64
	AreaIDsCorrected  int
	TypesRemapped     int
	SafetyAbsent      int
	BirthYearsAbsent  int
	AggregateDuration time.Duration
	LoadDuration      time.Duration
}

// TransferMetrics tracks metrics for a run
type TransferMetrics struct {
	mu               sync.Mutex
	logger           *zap.Logger
	StartTime        time.Time
	EndTime          time.Time
	Tables           map[string]*TableMetrics
	order            []string
	TotalRowsRead    int64
	TotalRowsWritten int64
	TotalCleaningOps int
	PeakMemoryUsage  int64
	ErrorCounts      map[ErrorCategory]int
}

// NewTransferMetrics creates a new TransferMetrics instance
func NewTransferMetrics(logger *zap.Logger) *TransferMetrics {
	return &TransferMetrics{
		StartTime:   time.Now(),
		Tables:      make(map[string]*TableMetrics),
		ErrorCounts: make(map[ErrorCategory]int),
		logger:      logger,
	}
}

// RecordTable records metrics for a finished table job
func (tm *TransferMetrics) RecordTable(result TableResult) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.TotalRowsRead += result.RowsRead
	if result.Success {
		tm.TotalRowsWritten += result.RowsWritten
		tm.TotalCleaningOps += result.Stats.Operations()
	} else if result.Error != nil {
		tm.ErrorCounts[result.Error.Category]++
	}

	if _, ok := tm.Tables[result.Table]; !ok {
		tm.order = append(tm.order, result.Table)
	}
	tm.Tables[result.Table] = &TableMetrics{
		Table:             result.Table,
		Success:           result.Success,
		RowsRead:          result.RowsRead,
		RowsCleaned:       result.RowsCleaned,
		RowsWritten:       result.RowsWritten,
		AreaIDsCorrected:  result.Stats.AreaIDsCorrected,
		TypesRemapped:     result.Stats.VehicleTypesRemapped,
		SafetyAbsent:      result.Stats.SafetyCodesAbsent,
		BirthYearsAbsent:  result.Stats.BirthYearsAbsent,
		AggregateDuration: result.AggregateDuration,
		LoadDuration:      result.LoadDuration,
	}
	tm.sampleMemory()

	if tm.logger != nil {
		tm.logger.Info("Table job completed",
			zap.String("jobID", result.JobID),
			zap.String("table", result.Table),
			zap.Bool("success", result.Success),
			zap.Int64("rowsRead", result.RowsRead),
			zap.Int64("rowsWritten", result.RowsWritten),
			zap.Duration("aggregate", result.AggregateDuration),
			zap.Duration("load", result.LoadDuration))
	}
}

// sampleMemory keeps the peak heap usage seen between table jobs
func (tm *TransferMetrics) sampleMemory() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	if used := int64(m.HeapAlloc); used > tm.PeakMemoryUsage {
		tm.PeakMemoryUsage = used
	}
}

// Complete marks the end of the run
func (tm *TransferMetrics) Complete() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.EndTime = time.Now()
}

// Duration returns the run duration so far
func (tm *TransferMetrics) Duration() time.Duration {
	if tm.EndTime.IsZero() {
		return time.Since(tm.StartTime)
	}
	return tm.EndTime.Sub(tm.StartTime)
}

// CalculateThroughput returns rows written per second
func (tm *TransferMetrics) CalculateThroughput() float64 {
	seconds := tm.Duration().Seconds()
	if seconds <= 0 {
		return 0
	}
	return float64(tm.TotalRowsWritten) / seconds
}

// ApplyTo copies the run totals into summary
func (tm *TransferMetrics) ApplyTo(summary *TransferSummary) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	summary.PeakMemoryUsage = tm.PeakMemoryUsage
}

// formatBytes converts bytes to a human-readable string
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}

// GenerateMetricsReport renders the run as a plain text report
func (tm *TransferMetrics) GenerateMetricsReport() string {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, `
Ingestion Report
================
Duration:            %s
Rows Read:           %d
Rows Written:        %d
Cleaning Ops:        %d
Throughput:          %.2f rows/sec
Peak Memory Usage:   %s

Tables
------
`,
		formatDuration(tm.Duration()),
		tm.TotalRowsRead,
		tm.TotalRowsWritten,
		tm.TotalCleaningOps,
		tm.CalculateThroughput(),
		formatBytes(tm.PeakMemoryUsage))

	for _, name := range tm.order {
		m := tm.Tables[name]
		status := "ok"
		if !m.Success {
			status = "FAILED"
		}
		fmt.Fprintf(&sb, "- %s: %s, %d read, %d written, aggregate %s, load %s\n",
			m.Table, status, m.RowsRead, m.RowsWritten,
			formatDuration(m.AggregateDuration), formatDuration(m.LoadDuration))
	}

	if len(tm.ErrorCounts) > 0 {
		sb.WriteString("\nErrors\n------\n")
		categories := make([]ErrorCategory, 0, len(tm.ErrorCounts))
		for category := range tm.ErrorCounts {
			categories = append(categories, category)
		}
		sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
		for _, category := range categories {
			fmt.Fprintf(&sb, "- %s: %d\n", category, tm.ErrorCounts[category])
		}
	}

	return sb.String()
}

// ToJSON serializes metrics to JSON
func (tm *TransferMetrics) ToJSON() ([]byte, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	tables := make([]*TableMetrics, 0, len(tm.order))
	for _, name := range tm.order {
		tables = append(tables, tm.Tables[name])
	}

	return json.Marshal(struct {
		Duration         string                `json:"duration"`
		TotalRowsRead    int64                 `json:"totalRowsRead"`
		TotalRowsWritten int64                 `json:"totalRowsWritten"`
		TotalCleaningOps int                   `json:"totalCleaningOps"`
		Throughput       float64               `json:"throughput"`
		Tables           []*TableMetrics       `json:"tables"`
		Errors           map[ErrorCategory]int `json:"errors"`
	}{
		Duration:         formatDuration(tm.Duration()),
		TotalRowsRead:    tm.TotalRowsRead,
		TotalRowsWritten: tm.TotalRowsWritten,
		TotalCleaningOps: tm.TotalCleaningOps,
		Throughput:       tm.CalculateThroughput(),
		Tables:           tables,
		Errors:           tm.ErrorCounts,
	})
}
