// pkg/loader/verifier.go
package loader

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/saferoads/pkg/connector"
	"github.com/David-Botos/saferoads/pkg/model"
)

// IntegrityIssue represents a data integrity issue
type IntegrityIssue struct {
	IssueType    string
	Description  string
	ColumnName   string
	AffectedRows int64
}

// VerificationReport contains the results of a table verification
type VerificationReport struct {
	Table             string
	VerificationTime  time.Time
	RowCountMatches   bool
	ExpectedRowCount  int64
	TargetRowCount    int64
	IntegrityVerified bool
	IntegrityIssues   []IntegrityIssue
	Duration          time.Duration
}

// OK reports whether every check passed
func (r *VerificationReport) OK() bool {
	return r.RowCountMatches && r.IntegrityVerified
}

// Verifier checks a loaded table against what was meant to be written
type Verifier struct {
	conn    connector.DatabaseConnector
	logger  *zap.Logger
	timeout time.Duration
}

// NewVerifier creates a new verifier
func NewVerifier(conn connector.DatabaseConnector, logger *zap.Logger) *Verifier {
	return &Verifier{
		conn:    conn,
		logger:  logger,
		timeout: connector.DefaultTimeout,
	}
}

// CountRows returns the number of rows in table
func (v *Verifier) CountRows(ctx context.Context, table string) (int64, error) {
	query := "SELECT COUNT(*) FROM " + v.conn.Dialect().QuoteIdentifier(table)

	var counts []int64
	if err := v.conn.QueryWithTimeout(ctx, &counts, query, v.timeout); err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", table, err)
	}
	if len(counts) == 0 {
		return 0, fmt.Errorf("no results returned from count query on %s", table)
	}
	return counts[0], nil
}

// VerifyRowCount verifies the table holds expected rows
func (v *Verifier) VerifyRowCount(ctx context.Context, table string, expected int64) (bool, int64, error) {
	v.logger.Debug("Verifying row count", zap.String("table", table))

	targetCount, err := v.CountRows(ctx, table)
	if err != nil {
		return false, 0, err
	}

	// Log the result
	matches := targetCount == expected
	if matches {
		v.logger.Info("Row count verification successful",
			zap.String("table", table),
			zap.Int64("count", targetCount))
	} else {
		v.logger.Warn("Row count mismatch",
			zap.String("table", table),
			zap.Int64("expectedCount", expected),
			zap.Int64("targetCount", targetCount),
			zap.Int64("difference", expected-targetCount))
	}

	return matches, targetCount, nil
}

// VerifyDataIntegrity checks NOT NULL columns and key uniqueness of a
// stored table
func (v *Verifier) VerifyDataIntegrity(ctx context.Context, metadata *model.TableMetadata) (bool, []IntegrityIssue, error) {
	issues, err := v.checkNullConstraints(ctx, metadata)
	if err != nil {
		return false, nil, fmt.Errorf("failed to check null constraints: %w", err)
	}

	if metadata.PrimaryKey != "" {
		pkIssues, err := v.checkPrimaryKeyUniqueness(ctx, metadata.Table, metadata.PrimaryKey)
		if err != nil {
			return false, nil, fmt.Errorf("failed to check primary key uniqueness: %w", err)
		}
		issues = append(issues, pkIssues...)
	}

	success := len(issues) == 0
	if !success {
		v.logger.Warn("Data integrity issues found",
			zap.String("table", metadata.Table),
			zap.Int("issues", len(issues)))
	}
	return success, issues, nil
}

// GenerateVerificationReport runs every check on a loaded table
func (v *Verifier) GenerateVerificationReport(
	ctx context.Context,
	metadata *model.TableMetadata,
	expected int64,
) (*VerificationReport, error) {
	startTime := time.Now()
	report := &VerificationReport{
		Table:            metadata.Table,
		VerificationTime: startTime,
		ExpectedRowCount: expected,
	}

	matches, targetCount, err := v.VerifyRowCount(ctx, metadata.Table, expected)
	if err != nil {
		return nil, err
	}
	report.RowCountMatches = matches
	report.TargetRowCount = targetCount

	integrity, issues, err := v.VerifyDataIntegrity(ctx, metadata)
	if err != nil {
		return nil, err
	}
	report.IntegrityVerified = integrity
	report.IntegrityIssues = issues

	report.Duration = time.Since(startTime)
	v.logger.Debug("Verification report completed",
		zap.String("table", metadata.Table),
		zap.Duration("duration", report.Duration),
		zap.Bool("rowCountMatch", report.RowCountMatches),
		zap.Bool("integrityVerified", report.IntegrityVerified))

	return report, nil
}

// checkNullConstraints verifies that non-nullable columns don't contain NULL values
func (v *Verifier) checkNullConstraints(ctx context.Context, metadata *model.TableMetadata) ([]IntegrityIssue, error) {
	dialect := v.conn.Dialect()
	issues := make([]IntegrityIssue, 0)

	for _, col := range metadata.Columns {
		if col.Nullable {
			continue
		}

		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NULL",
			dialect.QuoteIdentifier(metadata.Table), dialect.QuoteIdentifier(col.Name))

		var counts []int64
		if err := v.conn.QueryWithTimeout(ctx, &counts, query, v.timeout); err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}

		if len(counts) > 0 && counts[0] > 0 {
			issues = append(issues, IntegrityIssue{
				IssueType:    "NULL_CONSTRAINT_VIOLATION",
				Description:  "Non-nullable column contains NULL values",
				ColumnName:   col.Name,
				AffectedRows: counts[0],
			})
		}
	}

	return issues, nil
}

// checkPrimaryKeyUniqueness verifies that primary keys are unique
func (v *Verifier) checkPrimaryKeyUniqueness(ctx context.Context, table, key string) ([]IntegrityIssue, error) {
	dialect := v.conn.Dialect()
	quotedKey := dialect.QuoteIdentifier(key)

	// Count duplicate primary keys
	query := fmt.Sprintf(
		"SELECT COUNT(*) FROM %s GROUP BY %s HAVING COUNT(*) > 1 LIMIT 100",
		dialect.QuoteIdentifier(table), quotedKey)

	var groupCounts []int64
	if err := v.conn.QueryWithTimeout(ctx, &groupCounts, query, v.timeout); err != nil {
		return nil, err
	}

	if len(groupCounts) == 0 {
		return nil, nil
	}

	// Each duplicate group affects (count-1) rows
	var totalAffectedRows int64
	for _, count := range groupCounts {
		totalAffectedRows += count - 1
	}

	return []IntegrityIssue{{
		IssueType:    "PRIMARY_KEY_VIOLATION",
		Description:  fmt.Sprintf("Duplicate values found for primary key (%s)", key),
		ColumnName:   key,
		AffectedRows: totalAffectedRows,
	}}, nil
}
