// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/saferoads/pkg/config"
)

// ConnectorFactory creates database connectors
type ConnectorFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.Config, logger *zap.Logger) *ConnectorFactory {
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateConnector connects to the store selected by the configuration
func (f *ConnectorFactory) CreateConnector(ctx context.Context) (DatabaseConnector, error) {
	f.logger.Info("Creating connector", zap.String("driver", f.cfg.StoreDriver))

	var (
		connector DatabaseConnector
		err       error
	)
	switch f.cfg.StoreDriver {
	case config.DriverMySQL:
		connector, err = NewMySQLConnector(ctx, f.cfg.MySQL)
	case config.DriverPostgres:
		connector, err = NewPostgresConnector(ctx, f.cfg.Postgres)
	case config.DriverSnowflake:
		connector, err = NewSnowflakeConnector(ctx, f.cfg.Snowflake)
	case config.DriverSQLite:
		connector, err = NewSQLiteConnector(ctx, f.cfg.SQLite)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", f.cfg.StoreDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s connector: %w", f.cfg.StoreDriver, err)
	}

	return connector, nil
}
