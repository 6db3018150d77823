// pkg/loader/loader.go
package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/saferoads/pkg/connector"
	"github.com/David-Botos/saferoads/pkg/converter"
	"github.com/David-Botos/saferoads/pkg/model"
)

// Mode selects what happens to the rows already in the destination table
type Mode string

const (
	// ModeReplace swaps the destination for the loaded rows
	ModeReplace Mode = "replace"
	// ModeAppend adds the loaded rows after the existing ones
	ModeAppend Mode = "append"
)

// DefaultChunkSize is the number of rows per INSERT statement
const DefaultChunkSize = 100

// LoadResult describes one completed table load
type LoadResult struct {
	Table       string
	Mode        Mode // mode actually applied
	RowsWritten int64
	IndexOffset int64 // shift applied to the surrogate index in append mode
	Report      *VerificationReport
	Duration    time.Duration
}

// Loader writes aggregated tables into the store. Rows go to a staging
// table first; the destination only changes once every row is written and
// the key is declared.
type Loader struct {
	conn      connector.DatabaseConnector
	converter *converter.TypeConverter
	verifier  *Verifier
	chunkSize int
	timeout   time.Duration
	logger    *zap.Logger
}

// NewLoader creates a loader writing chunkSize rows per statement
func NewLoader(conn connector.DatabaseConnector, chunkSize int, logger *zap.Logger) (*Loader, error) {
	if conn == nil {
		return nil, errors.New("connector cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	logger = logger.Named("loader")
	typeConverter, err := converter.NewTypeConverter(logger, conn.Dialect().Name())
	if err != nil {
		return nil, err
	}

	return &Loader{
		conn:      conn,
		converter: typeConverter,
		verifier:  NewVerifier(conn, logger),
		chunkSize: chunkSize,
		timeout:   connector.DefaultTimeout,
		logger:    logger,
	}, nil
}

// WithTimeout bounds every statement and transaction of a load. A
// non-positive timeout keeps the current one.
func (l *Loader) WithTimeout(timeout time.Duration) *Loader {
	if timeout > 0 {
		l.timeout = timeout
		l.verifier.timeout = timeout
	}
	return l
}

// Load writes table to the store. Key violations are reported before
// anything is written. On any failure the destination keeps its previous
// content and the staging table is dropped.
func (l *Loader) Load(ctx context.Context, table *model.Table, mode Mode) (*LoadResult, error) {
	startTime := time.Now()
	meta := table.Metadata
	dialect := l.conn.Dialect()
	logger := l.logger.With(zap.String("table", meta.Table))

	if mode != ModeReplace && mode != ModeAppend {
		return nil, fmt.Errorf("unknown load mode %q", mode)
	}

	exists, err := connector.TableExists(ctx, l.conn.DB(), dialect, meta.Table)
	if err != nil {
		return nil, l.storeError(meta, "check destination", err)
	}

	if mode == ModeAppend && !exists {
		logger.Info("Destination table missing, appending creates it")
		mode = ModeReplace
	}

	result := &LoadResult{Table: meta.Table, Mode: mode}
	expectedRows := int64(table.Len())

	var existingKeys map[interface{}]struct{}
	if mode == ModeAppend {
		existingRows, err := l.verifier.CountRows(ctx, meta.Table)
		if err != nil {
			return nil, l.storeError(meta, "count existing rows", err)
		}
		expectedRows += existingRows

		if meta.RowIndex {
			offset, err := l.nextIndex(ctx, meta)
			if err != nil {
				return nil, l.storeError(meta, "read current index", err)
			}
			if err := offsetIndex(table.Rows, offset); err != nil {
				return nil, model.NewStepError(meta.Table, 0, "offset index", err)
			}
			result.IndexOffset = offset
		} else {
			existingKeys, err = l.existingKeys(ctx, meta)
			if err != nil {
				return nil, l.storeError(meta, "read existing keys", err)
			}
		}
	}

	if err := checkKeys(table, existingKeys); err != nil {
		return nil, model.NewStepError(meta.Table, 0, "check keys", err)
	}

	staging := stagingName(meta.Table, "staging")
	logger = logger.With(zap.String("staging", staging), zap.String("mode", string(mode)))
	logger.Info("Loading table", zap.Int("rows", table.Len()))

	// The staging table never outlives the load
	defer l.dropTable(context.WithoutCancel(ctx), staging)

	written, err := l.writeStaging(ctx, table, staging)
	result.RowsWritten = written
	if err != nil {
		return nil, err
	}
	if err := l.checkStaged(ctx, meta, staging, int64(table.Len())); err != nil {
		return nil, err
	}

	if err := l.publish(ctx, meta, staging, mode, exists); err != nil {
		return nil, l.storeError(meta, "publish", err)
	}

	report, err := l.verifier.GenerateVerificationReport(ctx, meta, expectedRows)
	if err != nil {
		return nil, l.storeError(meta, "verify", err)
	}
	result.Report = report
	if !report.OK() {
		return nil, l.storeError(meta, "verify", fmt.Errorf(
			"expected %d rows, found %d, %d integrity issues",
			report.ExpectedRowCount, report.TargetRowCount, len(report.IntegrityIssues)))
	}

	result.Duration = time.Since(startTime)
	logger.Info("Loaded table",
		zap.Int64("rowsWritten", result.RowsWritten),
		zap.Int64("indexOffset", result.IndexOffset),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// writeStaging creates the staging table, fills it chunk by chunk and
// declares the primary key
func (l *Loader) writeStaging(ctx context.Context, table *model.Table, staging string) (int64, error) {
	meta := table.Metadata
	dialect := l.conn.Dialect()

	columnDefs, err := l.converter.GenerateColumnDefinitions(meta, dialect.QuoteIdentifier)
	if err != nil {
		return 0, model.NewStepError(meta.Table, 0, "create staging table", err)
	}
	if _, err := l.conn.ExecWithTimeout(ctx, dialect.CreateTable(staging, columnDefs), l.timeout); err != nil {
		return 0, l.storeError(meta, "create staging table", err)
	}

	columns := meta.ColumnNames()
	chunkSize := connector.BatchSize(dialect, l.chunkSize, len(columns))

	var written int64
	for start := 0; start < table.Len(); start += chunkSize {
		end := start + chunkSize
		if end > table.Len() {
			end = table.Len()
		}

		values := make([][]interface{}, 0, end-start)
		for i := start; i < end; i++ {
			converted, err := l.converter.ConvertRow(meta, table.Rows[i])
			if err != nil {
				return written, l.storeError(meta, "write staging table", fmt.Errorf("row %d: %w", i+1, err))
			}
			values = append(values, converted)
		}

		chunkCtx, cancel := context.WithTimeout(ctx, l.timeout)
		n, err := connector.BatchInsert(chunkCtx, l.conn.DB(), dialect, staging, columns, values, chunkSize)
		cancel()
		written += n
		if err != nil {
			return written, l.storeError(meta, "write staging table", fmt.Errorf("rows %d-%d: %w", start+1, end, err))
		}

		l.logger.Debug("Wrote chunk",
			zap.String("table", staging),
			zap.Int("from", start+1),
			zap.Int("to", end))
	}

	if _, err := l.conn.ExecWithTimeout(ctx, dialect.AddPrimaryKey(staging, meta.PrimaryKey), l.timeout); err != nil {
		return written, l.storeError(meta, "declare primary key", err)
	}

	return written, nil
}

// checkStaged compares the staging row count with the rows loaded, while
// the destination is still untouched
func (l *Loader) checkStaged(ctx context.Context, meta *model.TableMetadata, staging string, want int64) error {
	got, err := l.verifier.CountRows(ctx, staging)
	if err != nil {
		return l.storeError(meta, "verify staging table", err)
	}
	if got != want {
		return l.storeError(meta, "verify staging table",
			fmt.Errorf("expected %d rows in %s, found %d", want, staging, got))
	}
	return nil
}

// publish makes the staging rows visible under the destination name
func (l *Loader) publish(ctx context.Context, meta *model.TableMetadata, staging string, mode Mode, exists bool) error {
	dialect := l.conn.Dialect()

	switch {
	case mode == ModeAppend:
		return l.inTx(ctx, dialect.InsertSelect(meta.Table, staging, meta.ColumnNames()))

	case !exists:
		_, err := l.conn.ExecWithTimeout(ctx, dialect.RenameTable(staging, meta.Table), l.timeout)
		return err

	default:
		backup := stagingName(meta.Table, "old")
		swap, cleanup := dialect.ReplaceTable(meta.Table, staging, backup)

		if dialect.TransactionalDDL() {
			if err := l.inTx(ctx, swap...); err != nil {
				return err
			}
		} else {
			// a single atomic statement on these stores
			for _, stmt := range swap {
				if _, err := l.conn.ExecWithTimeout(ctx, stmt, l.timeout); err != nil {
					return err
				}
			}
		}

		for _, stmt := range cleanup {
			if _, err := l.conn.ExecWithTimeout(ctx, stmt, l.timeout); err != nil {
				l.logger.Warn("Failed to drop previous table",
					zap.String("table", meta.Table),
					zap.String("statement", stmt),
					zap.Error(err))
			}
		}
		return nil
	}
}

// inTx runs statements in one transaction
func (l *Loader) inTx(ctx context.Context, statements ...string) error {
	txCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	tx, err := l.conn.DB().BeginTxx(txCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(txCtx, stmt); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				l.logger.Error("Rollback failed", zap.Error(rbErr))
			}
			return err
		}
	}

	return tx.Commit()
}

// nextIndex returns the first free surrogate index of the destination
func (l *Loader) nextIndex(ctx context.Context, meta *model.TableMetadata) (int64, error) {
	dialect := l.conn.Dialect()
	query := fmt.Sprintf("SELECT MAX(%s) FROM %s",
		dialect.QuoteIdentifier(meta.PrimaryKey), dialect.QuoteIdentifier(meta.Table))

	var maxIndex []sql.NullInt64
	if err := l.conn.QueryWithTimeout(ctx, &maxIndex, query, l.timeout); err != nil {
		return 0, err
	}
	if len(maxIndex) == 0 || !maxIndex[0].Valid {
		return 0, nil
	}
	return maxIndex[0].Int64 + 1, nil
}

// existingKeys reads every key already stored in the destination
func (l *Loader) existingKeys(ctx context.Context, meta *model.TableMetadata) (map[interface{}]struct{}, error) {
	dialect := l.conn.Dialect()
	query := fmt.Sprintf("SELECT %s FROM %s",
		dialect.QuoteIdentifier(meta.PrimaryKey), dialect.QuoteIdentifier(meta.Table))

	var keys []int64
	if err := l.conn.QueryWithTimeout(ctx, &keys, query, l.timeout); err != nil {
		return nil, err
	}

	existing := make(map[interface{}]struct{}, len(keys))
	for _, key := range keys {
		existing[key] = struct{}{}
	}
	return existing, nil
}

func (l *Loader) dropTable(ctx context.Context, table string) {
	if _, err := l.conn.ExecWithTimeout(ctx, l.conn.Dialect().DropTable(table), l.timeout); err != nil {
		l.logger.Warn("Failed to drop table", zap.String("table", table), zap.Error(err))
	}
}

func (l *Loader) storeError(meta *model.TableMetadata, step string, err error) error {
	return model.NewStepError(meta.Table, 0, step, fmt.Errorf("%w: %w", model.ErrStoreWriteFailure, err))
}

// stagingName returns a table name unique to one load
func stagingName(table, purpose string) string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s__%s_%s", table, purpose, id[:8])
}
