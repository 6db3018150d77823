package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/saferoads/pkg/model"
)

// ErrorCategory groups failures by the stage that produced them
type ErrorCategory int

const (
	ErrorCategoryNone ErrorCategory = iota
	// ErrorCategoryInput covers missing or unreadable source files
	ErrorCategoryInput
	// ErrorCategoryTransformation covers rows a cleaner could not transform
	ErrorCategoryTransformation
	// ErrorCategoryKeyConstraint covers nil or repeated keys found before writing
	ErrorCategoryKeyConstraint
	// ErrorCategoryStore covers statements rejected by the store
	ErrorCategoryStore
	ErrorCategoryCancelled
	ErrorCategoryUnknown
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategoryInput:
		return "Input"
	case ErrorCategoryTransformation:
		return "Transformation"
	case ErrorCategoryKeyConstraint:
		return "KeyConstraint"
	case ErrorCategoryStore:
		return "Store"
	case ErrorCategoryCancelled:
		return "Cancelled"
	case ErrorCategoryUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Unknown(%d)", ec)
	}
}

// MarshalText lets categories key JSON objects by name
func (ec ErrorCategory) MarshalText() ([]byte, error) {
	return []byte(ec.String()), nil
}

// CategorizeError maps err to its category through the sentinel it wraps
func CategorizeError(err error) ErrorCategory {
	switch {
	case err == nil:
		return ErrorCategoryNone
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorCategoryCancelled
	case errors.Is(err, model.ErrYearNotFound):
		return ErrorCategoryInput
	case errors.Is(err, model.ErrMalformedTimestamp),
		errors.Is(err, model.ErrDuplicateKey),
		errors.Is(err, model.ErrUnknownVehicleType):
		return ErrorCategoryTransformation
	case errors.Is(err, model.ErrKeyConstraintViolation):
		return ErrorCategoryKeyConstraint
	case errors.Is(err, model.ErrStoreWriteFailure):
		return ErrorCategoryStore
	default:
		return ErrorCategoryUnknown
	}
}

// ErrorRecord represents a single pipeline failure
type ErrorRecord struct {
	Category  ErrorCategory
	JobID     string
	Table     string
	Year      int
	Step      string
	Row       int
	Error     error
	Message   string // Derived from Error but stored for serialization
	Timestamp time.Time
}

// NewErrorRecord classifies err and copies the location carried by a
// wrapped StepError
func NewErrorRecord(err error) ErrorRecord {
	record := ErrorRecord{
		Category:  CategorizeError(err),
		Error:     err,
		Timestamp: time.Now(),
	}
	if err == nil {
		return record
	}
	record.Message = err.Error()

	var stepErr *model.StepError
	if errors.As(err, &stepErr) {
		record.Table = stepErr.Category
		record.Year = stepErr.Year
		record.Step = stepErr.Step
		record.Row = stepErr.Row
	}
	return record
}

// WithJob adds job information to the error record
func (r ErrorRecord) WithJob(job TableJob) ErrorRecord {
	r.JobID = job.ID
	if r.Table == "" {
		r.Table = string(job.Category)
	}
	return r
}

// String returns a formatted error message
func (r ErrorRecord) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", r.Category))

	if r.Table != "" {
		sb.WriteString(fmt.Sprintf("Table: %s ", r.Table))
	}
	if r.Year != 0 {
		sb.WriteString(fmt.Sprintf("Year: %d ", r.Year))
	}
	if r.Step != "" {
		sb.WriteString(fmt.Sprintf("Step: %s ", r.Step))
	}
	if r.Row > 0 {
		sb.WriteString(fmt.Sprintf("Row: %d ", r.Row))
	}

	sb.WriteString("Error: " + r.Message)
	return sb.String()
}

// ErrorHandler records failures for the summary
type ErrorHandler struct {
	logger      *zap.Logger
	errorCounts map[ErrorCategory]int
	samples     []ErrorRecord
	maxSamples  int
	mu          sync.Mutex
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger:      logger,
		errorCounts: make(map[ErrorCategory]int),
		maxSamples:  5,
	}
}

// RecordError saves an error occurrence
func (eh *ErrorHandler) RecordError(record ErrorRecord) {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	eh.errorCounts[record.Category]++
	if len(eh.samples) < eh.maxSamples {
		eh.samples = append(eh.samples, record)
	}

	if eh.logger == nil {
		return
	}
	level := zap.ErrorLevel
	if record.Category == ErrorCategoryCancelled {
		level = zap.WarnLevel
	}
	eh.logger.Log(level, "Pipeline error",
		zap.String("category", record.Category.String()),
		zap.String("jobID", record.JobID),
		zap.String("table", record.Table),
		zap.Int("year", record.Year),
		zap.String("step", record.Step),
		zap.Int("row", record.Row),
		zap.String("error", record.Message))
}

// GetErrorSummary returns a copy of the error counts by category
func (eh *ErrorHandler) GetErrorSummary() map[ErrorCategory]int {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	summary := make(map[ErrorCategory]int, len(eh.errorCounts))
	for category, count := range eh.errorCounts {
		summary[category] = count
	}
	return summary
}

// GetErrorSamples returns the first recorded errors
func (eh *ErrorHandler) GetErrorSamples() []ErrorRecord {
	eh.mu.Lock()
	defer eh.mu.Unlock()

	return append([]ErrorRecord(nil), eh.samples...)
}
