// pkg/config/database.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/snowflakedb/gosnowflake"
)

// MySQLConfig holds MySQL connection parameters. Socket takes precedence
// over Host and Port.
type MySQLConfig struct {
	User     string
	Password string
	Host     string
	Port     int
	Socket   string
	Database string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// Statement timeout
	StatementTimeout time.Duration
}

// PostgresConfig holds PostgreSQL connection parameters
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Statement timeout
	StatementTimeout time.Duration
}

// SnowflakeConfig holds Snowflake connection parameters
type SnowflakeConfig struct {
	User          string
	Password      string
	Account       string
	Warehouse     string
	Database      string // Default: SAFER_ROADS
	Schema        string // Default: PUBLIC
	Role          string
	Authenticator gosnowflake.AuthType

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// Query timeout
	QueryTimeout time.Duration
}

// SQLiteConfig holds the path of a local SQLite database file
type SQLiteConfig struct {
	Path string

	// Statement timeout
	StatementTimeout time.Duration
}

// LoadMySQLConfig loads MySQL configuration from environment variables
func LoadMySQLConfig() (*MySQLConfig, error) {
	user := os.Getenv("MYSQL_USER")
	if user == "" {
		return nil, errors.New("MYSQL_USER environment variable is required")
	}

	env := &envReader{}
	cfg := &MySQLConfig{
		User:     user,
		Password: os.Getenv("MYSQL_PASSWORD"),
		Host:     getEnv("MYSQL_HOST", "localhost"),
		Port:     env.Int("MYSQL_PORT", 3306),
		Socket:   getEnv("MYSQL_SOCKET", ""),
		Database: getEnv("MYSQL_DATABASE", "safer_roads"),

		MaxOpenConns:     env.Int("MYSQL_MAX_OPEN_CONNS", 10),
		MaxIdleConns:     env.Int("MYSQL_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:  env.Seconds("MYSQL_CONN_MAX_LIFETIME_SECONDS", 300),
		StatementTimeout: env.Seconds("MYSQL_STATEMENT_TIMEOUT_SECONDS", 300),
	}

	if err := env.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadPostgresConfig loads PostgreSQL configuration from environment variables
func LoadPostgresConfig() (*PostgresConfig, error) {
	user := os.Getenv("POSTGRES_USER")
	if user == "" {
		return nil, errors.New("POSTGRES_USER environment variable is required")
	}

	password := os.Getenv("POSTGRES_PASSWORD")
	if password == "" {
		return nil, errors.New("POSTGRES_PASSWORD environment variable is required")
	}

	database := getEnv("POSTGRES_DB", "safer_roads")

	env := &envReader{}
	cfg := &PostgresConfig{
		Host:     getEnv("POSTGRES_HOST", "localhost"),
		Port:     env.Int("POSTGRES_PORT", 5432),
		User:     user,
		Password: password,
		Database: database,
		SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxOpenConns:     env.Int("POSTGRES_MAX_OPEN_CONNS", 10),
		MaxIdleConns:     env.Int("POSTGRES_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:  env.Seconds("POSTGRES_CONN_MAX_LIFETIME_SECONDS", 1800),
		ConnMaxIdleTime:  env.Seconds("POSTGRES_CONN_MAX_IDLE_TIME_SECONDS", 600),
		StatementTimeout: env.Seconds("POSTGRES_STATEMENT_TIMEOUT_SECONDS", 300),
	}

	if err := env.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadSnowflakeConfig loads Snowflake configuration from environment variables
func LoadSnowflakeConfig() (*SnowflakeConfig, error) {
	user := os.Getenv("SNOWFLAKE_USER")
	if user == "" {
		return nil, errors.New("SNOWFLAKE_USER environment variable is required")
	}

	password := os.Getenv("SNOWFLAKE_PASSWORD")
	if password == "" {
		return nil, errors.New("SNOWFLAKE_PASSWORD environment variable is required")
	}

	account := os.Getenv("SNOWFLAKE_ACCOUNT")
	if account == "" {
		return nil, errors.New("SNOWFLAKE_ACCOUNT environment variable is required")
	}

	warehouse := os.Getenv("SNOWFLAKE_WAREHOUSE")
	if warehouse == "" {
		return nil, errors.New("SNOWFLAKE_WAREHOUSE environment variable is required")
	}

	authenticator, err := parseAuthenticator(getEnv("SNOWFLAKE_AUTHENTICATOR", "snowflake"))
	if err != nil {
		return nil, err
	}

	env := &envReader{}
	cfg := &SnowflakeConfig{
		User:          user,
		Password:      password,
		Account:       account,
		Warehouse:     warehouse,
		Database:      getEnv("SNOWFLAKE_DATABASE", "SAFER_ROADS"),
		Schema:        getEnv("SNOWFLAKE_SCHEMA", "PUBLIC"),
		Role:          getEnv("SNOWFLAKE_ROLE", ""),
		Authenticator: authenticator,

		MaxOpenConns:    env.Int("SNOWFLAKE_MAX_OPEN_CONNS", 10),
		MaxIdleConns:    env.Int("SNOWFLAKE_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: env.Seconds("SNOWFLAKE_CONN_MAX_LIFETIME_SECONDS", 600),
		ConnMaxIdleTime: env.Seconds("SNOWFLAKE_CONN_MAX_IDLE_TIME_SECONDS", 300),
		QueryTimeout:    env.Seconds("SNOWFLAKE_QUERY_TIMEOUT_SECONDS", 300),
	}

	if err := env.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadSQLiteConfig loads SQLite configuration from environment variables
func LoadSQLiteConfig() (*SQLiteConfig, error) {
	env := &envReader{}
	cfg := &SQLiteConfig{
		Path:             getEnv("SQLITE_PATH", "safer_roads.db"),
		StatementTimeout: env.Seconds("SQLITE_STATEMENT_TIMEOUT_SECONDS", 300),
	}

	if err := env.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseAuthenticator(name string) (gosnowflake.AuthType, error) {
	switch name {
	case "snowflake":
		return gosnowflake.AuthTypeSnowflake, nil
	case "oauth":
		return gosnowflake.AuthTypeOAuth, nil
	case "externalbrowser":
		return gosnowflake.AuthTypeExternalBrowser, nil
	case "username_password_mfa":
		return gosnowflake.AuthTypeUsernamePasswordMFA, nil
	case "jwt":
		return gosnowflake.AuthTypeJwt, nil
	case "okta":
		return gosnowflake.AuthTypeOkta, nil
	default:
		return gosnowflake.AuthTypeSnowflake, fmt.Errorf("unsupported SNOWFLAKE_AUTHENTICATOR %q", name)
	}
}

// DSN returns a go-sql-driver/mysql data source name. Timestamps are
// scanned into time.Time. The statement timeout bounds socket reads and
// writes, MySQL having no per-session statement timeout for writes.
func (c *MySQLConfig) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.DBName = c.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	if c.StatementTimeout > 0 {
		cfg.ReadTimeout = c.StatementTimeout
		cfg.WriteTimeout = c.StatementTimeout
	}
	if c.Socket != "" {
		cfg.Net = "unix"
		cfg.Addr = c.Socket
	} else {
		cfg.Net = "tcp"
		cfg.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	}
	return cfg.FormatDSN()
}

// ConnectionString returns a formatted PostgreSQL connection string
func (c *PostgresConfig) ConnectionString() string {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
	if c.StatementTimeout > 0 {
		connStr += fmt.Sprintf(" statement_timeout=%d", c.StatementTimeout.Milliseconds())
	}
	return connStr
}

// ConnectionString returns a formatted Snowflake DSN. The query timeout is
// a session parameter so it applies to every pooled connection.
func (c *SnowflakeConfig) ConnectionString() (string, error) {
	params := make(map[string]*string)
	if c.QueryTimeout > 0 {
		seconds := strconv.Itoa(int(c.QueryTimeout.Seconds()))
		params["STATEMENT_TIMEOUT_IN_SECONDS"] = &seconds
	}

	return gosnowflake.DSN(&gosnowflake.Config{
		Account:       c.Account,
		User:          c.User,
		Password:      c.Password,
		Database:      c.Database,
		Schema:        c.Schema,
		Warehouse:     c.Warehouse,
		Role:          c.Role,
		Authenticator: c.Authenticator,
		Params:        params,
	})
}

// ConnectionString returns the modernc.org/sqlite DSN. The statement
// timeout is how long a statement waits for a lock held by another writer.
func (c *SQLiteConfig) ConnectionString() string {
	busy := int64(5000)
	if c.StatementTimeout > 0 {
		busy = c.StatementTimeout.Milliseconds()
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", c.Path, busy)
}
