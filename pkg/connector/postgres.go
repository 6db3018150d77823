// pkg/connector/postgres.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"go.uber.org/zap"

	"github.com/David-Botos/saferoads/pkg/config"
)

// PostgresConnector implements the DatabaseConnector interface for PostgreSQL
type PostgresConnector struct {
	baseConnector
	cfg *config.PostgresConfig
}

// NewPostgresConnector creates and initializes a new PostgreSQL connector
func NewPostgresConnector(ctx context.Context, cfg *config.PostgresConfig) (*PostgresConnector, error) {
	logger := zap.L().Named("postgres-connector")

	// Log connection attempt
	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := open(ctx, Postgres, cfg.ConnectionString(), 5*time.Second)
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	ApplyConnectionSettings(
		db.DB,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	connector := &PostgresConnector{
		baseConnector: baseConnector{db: db, dialect: Postgres, logger: logger, name: cfg.Database},
		cfg:           cfg,
	}

	LogConnectionStats(logger, cfg.Database, db.DB)
	return connector, nil
}

// Validate checks the server answers and that the user may create tables
// in the current schema, where the loader keeps its staging tables. The
// check table is created inside a transaction that is rolled back.
func (c *PostgresConnector) Validate(ctx context.Context) error {
	var server struct {
		Version string         `db:"version"`
		Schema  sql.NullString `db:"schema"`
	}
	if err := c.db.GetContext(ctx, &server, "SELECT version() AS version, current_schema() AS schema"); err != nil {
		return fmt.Errorf("failed to query PostgreSQL version: %w", err)
	}
	if !server.Schema.Valid {
		return fmt.Errorf("no schema on the search_path of database %s", c.cfg.Database)
	}
	c.logger.Info("Connected to PostgreSQL",
		zap.String("version", server.Version),
		zap.String("schema", server.Schema.String))

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	check := Postgres.CreateTable("saferoads_permission_check", []string{Postgres.QuoteIdentifier("accident id") + " BIGINT NOT NULL"})
	if _, err := tx.ExecContext(ctx, check); err != nil {
		return fmt.Errorf("permission validation failed: %w", err)
	}
	if _, err := tx.ExecContext(ctx, Postgres.AddPrimaryKey("saferoads_permission_check", "accident id")); err != nil {
		return fmt.Errorf("permission validation failed: %w", err)
	}

	c.logger.Info("PostgreSQL connection validated",
		zap.String("database", c.cfg.Database),
		zap.String("host", c.cfg.Host))
	return nil
}
