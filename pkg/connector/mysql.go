// pkg/connector/mysql.go
package connector

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/David-Botos/saferoads/pkg/config"
)

// MySQLConnector implements the DatabaseConnector interface for MySQL
type MySQLConnector struct {
	baseConnector
	cfg *config.MySQLConfig
}

// NewMySQLConnector creates and initializes a new MySQL connector
func NewMySQLConnector(ctx context.Context, cfg *config.MySQLConfig) (*MySQLConnector, error) {
	logger := zap.L().Named("mysql-connector")

	// Log connection attempt (without credentials)
	logger.Info("Connecting to MySQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("socket", cfg.Socket),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	db, err := open(ctx, MySQL, cfg.DSN(), 5*time.Second)
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	ApplyConnectionSettings(db.DB, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, 0)

	connector := &MySQLConnector{
		baseConnector: baseConnector{db: db, dialect: MySQL, logger: logger, name: cfg.Database},
		cfg:           cfg,
	}

	LogConnectionStats(logger, cfg.Database, db.DB)
	return connector, nil
}

// Validate verifies the MySQL connection and the right to create tables
func (c *MySQLConnector) Validate(ctx context.Context) error {
	var version string
	if err := c.db.GetContext(ctx, &version, "SELECT VERSION()"); err != nil {
		return fmt.Errorf("failed to query MySQL version: %w", err)
	}
	c.logger.Info("Connected to MySQL", zap.String("version", version))

	// Temporary tables live in one session, so pin a connection
	conn, err := c.db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "CREATE TEMPORARY TABLE _permission_check (id INT)"); err != nil {
		return fmt.Errorf("permission validation failed: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "DROP TEMPORARY TABLE _permission_check"); err != nil {
		return fmt.Errorf("permission validation failed: %w", err)
	}

	c.logger.Info("MySQL connection validated", zap.String("database", c.cfg.Database))
	return nil
}
