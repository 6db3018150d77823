package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds, matched with errors.Is through StepError
var (
	ErrMalformedTimestamp     = errors.New("malformed timestamp")
	ErrDuplicateKey           = errors.New("duplicate key")
	ErrYearNotFound           = errors.New("year not found")
	ErrKeyConstraintViolation = errors.New("key constraint violation")
	ErrStoreWriteFailure      = errors.New("store write failure")
	ErrUnknownVehicleType     = errors.New("unknown vehicle type")
)

// StepError locates a failure: which table, which year and which
// transformation or load step. Row is the 1-based data row, 0 when the
// failure is not tied to a row.
type StepError struct {
	Category string
	Year     int
	Step     string
	Row      int
	Err      error
}

func (e *StepError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Category)
	if e.Year != 0 {
		sb.WriteString(fmt.Sprintf(" %d", e.Year))
	}
	if e.Step != "" {
		sb.WriteString(": " + e.Step)
	}
	if e.Row > 0 {
		sb.WriteString(fmt.Sprintf(" (row %d)", e.Row))
	}
	if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	}
	return sb.String()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// NewStepError wraps err with its location. A nil err stays nil.
func NewStepError(category string, year int, step string, err error) error {
	if err == nil {
		return nil
	}
	return &StepError{Category: category, Year: year, Step: step, Err: err}
}
