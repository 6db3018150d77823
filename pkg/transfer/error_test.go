package transfer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/David-Botos/saferoads/pkg/loader"
	"github.com/David-Botos/saferoads/pkg/model"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ErrorCategoryNone},
		{"missing year", fmt.Errorf("read: %w", model.ErrYearNotFound), ErrorCategoryInput},
		{"timestamp", model.NewStepError("characteristics", 2012, "combine datetime", model.ErrMalformedTimestamp), ErrorCategoryTransformation},
		{"duplicate", model.ErrDuplicateKey, ErrorCategoryTransformation},
		{"vehicle type", model.ErrUnknownVehicleType, ErrorCategoryTransformation},
		{"key", fmt.Errorf("%w: row 3", model.ErrKeyConstraintViolation), ErrorCategoryKeyConstraint},
		{"store", fmt.Errorf("%w: %w", model.ErrStoreWriteFailure, errors.New("disk full")), ErrorCategoryStore},
		{"cancelled", fmt.Errorf("load: %w", context.Canceled), ErrorCategoryCancelled},
		{"other", errors.New("boom"), ErrorCategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategorizeError(tt.err))
		})
	}
}

func TestNewErrorRecord(t *testing.T) {
	err := &model.StepError{
		Category: "users",
		Year:     2013,
		Step:     "split safety code",
		Row:      7,
		Err:      fmt.Errorf("%w: secu -1", model.ErrMalformedTimestamp),
	}
	job := NewTableJob(model.CategoryUsers, []int{2013}, loader.ModeAppend)

	record := NewErrorRecord(fmt.Errorf("run: %w", err)).WithJob(job)
	assert.Equal(t, ErrorCategoryTransformation, record.Category)
	assert.Equal(t, "users", record.Table)
	assert.Equal(t, 2013, record.Year)
	assert.Equal(t, "split safety code", record.Step)
	assert.Equal(t, 7, record.Row)
	assert.Equal(t, job.ID, record.JobID)
	assert.Contains(t, record.String(), "[Transformation] Table: users Year: 2013 Step: split safety code Row: 7")
}

func TestErrorHandlerSummary(t *testing.T) {
	eh := NewErrorHandler(zap.NewNop())
	for i := 0; i < 7; i++ {
		eh.RecordError(NewErrorRecord(model.ErrStoreWriteFailure))
	}
	eh.RecordError(NewErrorRecord(model.ErrYearNotFound))

	assert.Equal(t, map[ErrorCategory]int{ErrorCategoryStore: 7, ErrorCategoryInput: 1}, eh.GetErrorSummary())
	assert.Len(t, eh.GetErrorSamples(), 5)
}
