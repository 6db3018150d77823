// pkg/connector/sqlite.go
package connector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/David-Botos/saferoads/pkg/config"
)

// SQLiteConnector implements the DatabaseConnector interface for a local
// SQLite file
type SQLiteConnector struct {
	baseConnector
	cfg *config.SQLiteConfig
}

// NewSQLiteConnector opens the SQLite database at cfg.Path, creating it
// when missing
func NewSQLiteConnector(ctx context.Context, cfg *config.SQLiteConfig) (*SQLiteConnector, error) {
	logger := zap.L().Named("sqlite-connector")
	logger.Info("Opening SQLite database", zap.String("path", cfg.Path))

	db, err := open(ctx, SQLite, cfg.ConnectionString(), 5*time.Second)
	if err != nil {
		return nil, err
	}

	// One writer at a time
	ApplyConnectionSettings(db.DB, 1, 1, 0, 0)

	return &SQLiteConnector{
		baseConnector: baseConnector{db: db, dialect: SQLite, logger: logger, name: cfg.Path},
		cfg:           cfg,
	}, nil
}

// Validate checks the database answers and can create tables
func (c *SQLiteConnector) Validate(ctx context.Context) error {
	var version string
	if err := c.db.GetContext(ctx, &version, "SELECT sqlite_version()"); err != nil {
		return fmt.Errorf("failed to query SQLite version: %w", err)
	}
	c.logger.Info("Connected to SQLite", zap.String("version", version))

	if _, err := c.db.ExecContext(ctx, "CREATE TEMP TABLE _permission_check (id INTEGER)"); err != nil {
		return fmt.Errorf("permission validation failed: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, "DROP TABLE temp._permission_check"); err != nil {
		return fmt.Errorf("permission validation failed: %w", err)
	}
	return nil
}
