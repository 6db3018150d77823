// pkg/connector/snowflake.go
package connector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/snowflakedb/gosnowflake"
	"go.uber.org/zap"

	"github.com/David-Botos/saferoads/pkg/config"
)

// SnowflakeConnector implements the DatabaseConnector interface for Snowflake
type SnowflakeConnector struct {
	baseConnector
	cfg *config.SnowflakeConfig
}

// NewSnowflakeConnector creates a new Snowflake connection
func NewSnowflakeConnector(ctx context.Context, cfg *config.SnowflakeConfig) (*SnowflakeConnector, error) {
	logger := zap.L().Named("snowflake-connector")

	// Log connection attempt (without credentials)
	logger.Info("Connecting to Snowflake",
		zap.String("account", cfg.Account),
		zap.String("user", cfg.User),
		zap.String("database", cfg.Database),
		zap.String("schema", cfg.Schema),
		zap.String("warehouse", cfg.Warehouse),
		zap.String("role", cfg.Role))

	dsn, err := cfg.ConnectionString()
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	db, err := open(ctx, Snowflake, dsn, 10*time.Second)
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

	connector := &SnowflakeConnector{
		baseConnector: baseConnector{db: db, dialect: Snowflake, logger: logger, name: cfg.Database},
		cfg:           cfg,
	}

	LogConnectionStats(logger, cfg.Database, db.DB)
	return connector, nil
}

// Validate checks the session landed in the configured database and schema
// and that a warehouse is available to run the loads
func (c *SnowflakeConnector) Validate(ctx context.Context) error {
	var session struct {
		Role      sql.NullString `db:"ROLE"`
		Database  sql.NullString `db:"DATABASE"`
		Schema    sql.NullString `db:"SCHEMA"`
		Warehouse sql.NullString `db:"WAREHOUSE"`
	}
	err := c.db.GetContext(ctx, &session, `SELECT CURRENT_ROLE() AS "ROLE", CURRENT_DATABASE() AS "DATABASE",
		CURRENT_SCHEMA() AS "SCHEMA", CURRENT_WAREHOUSE() AS "WAREHOUSE"`)
	if err != nil {
		return fmt.Errorf("failed to verify Snowflake access: %w", err)
	}

	c.logger.Info("Connected to Snowflake",
		zap.String("role", session.Role.String),
		zap.String("database", session.Database.String),
		zap.String("schema", session.Schema.String),
		zap.String("warehouse", session.Warehouse.String))

	switch {
	case !strings.EqualFold(session.Database.String, c.cfg.Database):
		return fmt.Errorf("session database is %q, expected %q", session.Database.String, c.cfg.Database)
	case !strings.EqualFold(session.Schema.String, c.cfg.Schema):
		return fmt.Errorf("schema %s not found in database %s", c.cfg.Schema, c.cfg.Database)
	case !session.Warehouse.Valid:
		return errors.New("no warehouse selected for the session")
	}
	return nil
}
