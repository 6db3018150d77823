// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/David-Botos/saferoads/pkg/cleaner"
	"github.com/David-Botos/saferoads/pkg/source"
)

// Store drivers
const (
	DriverMySQL     = "mysql"
	DriverPostgres  = "postgres"
	DriverSnowflake = "snowflake"
	DriverSQLite    = "sqlite"
)

// Config represents the application configuration
type Config struct {
	// Destination store. Only the configuration of StoreDriver is loaded.
	StoreDriver string
	MySQL       *MySQLConfig
	Postgres    *PostgresConfig
	Snowflake   *SnowflakeConfig
	SQLite      *SQLiteConfig

	// Source files
	DataDir     string
	FilePattern string
	KnownYears  []int

	// Transfer settings
	ChunkSize           int
	VehicleTypeMapping  string
	UniqueLocations     bool
	LoadReferenceTables bool

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables, reading a
// .env file in the working directory first when there is one
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}

	knownYears, err := getEnvAsYears("KNOWN_YEARS", []int{2010, 2011, 2012, 2013, 2014})
	if err != nil {
		return nil, err
	}

	env := &envReader{}
	cfg := &Config{
		// Default values
		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", DriverMySQL)),
		DataDir:             getEnv("DATA_DIR", "data"),
		FilePattern:         getEnv("FILE_PATTERN", source.DefaultPattern),
		KnownYears:          knownYears,
		ChunkSize:           env.Int("CHUNK_SIZE", 100),
		VehicleTypeMapping:  getEnv("VEHICLE_TYPE_MAPPING", string(cleaner.VehicleTypesPerYear)),
		UniqueLocations:     env.Bool("UNIQUE_LOCATIONS", false),
		LoadReferenceTables: env.Bool("LOAD_REFERENCE_TABLES", false),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "console"),
	}
	if err := env.Err(); err != nil {
		return nil, err
	}

	// Load the selected database configuration
	switch cfg.StoreDriver {
	case DriverMySQL:
		cfg.MySQL, err = LoadMySQLConfig()
	case DriverPostgres:
		cfg.Postgres, err = LoadPostgresConfig()
	case DriverSnowflake:
		cfg.Snowflake, err = LoadSnowflakeConfig()
	case DriverSQLite:
		cfg.SQLite, err = LoadSQLiteConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", cfg.StoreDriver, err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMySQL:
		if c.MySQL == nil {
			return errors.New("mysql configuration is required")
		}
	case DriverPostgres:
		if c.Postgres == nil {
			return errors.New("postgresql configuration is required")
		}
	case DriverSnowflake:
		if c.Snowflake == nil {
			return errors.New("snowflake configuration is required")
		}
	case DriverSQLite:
		if c.SQLite == nil {
			return errors.New("sqlite configuration is required")
		}
	default:
		return fmt.Errorf("unsupported store driver %q", c.StoreDriver)
	}

	if c.ChunkSize <= 0 {
		return errors.New("chunk size must be positive")
	}

	if len(c.KnownYears) == 0 {
		return errors.New("known years cannot be empty")
	}

	if !strings.Contains(c.FilePattern, "{year}") {
		return errors.New("file pattern must contain {year}")
	}

	if _, err := cleaner.ParseVehicleTypeMode(c.VehicleTypeMapping); err != nil {
		return err
	}

	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported log format %q", c.LogFormat)
	}

	return nil
}

// StatementTimeout returns the statement timeout of the selected store,
// zero when it has none
func (c *Config) StatementTimeout() time.Duration {
	switch {
	case c.MySQL != nil:
		return c.MySQL.StatementTimeout
	case c.Postgres != nil:
		return c.Postgres.StatementTimeout
	case c.Snowflake != nil:
		return c.Snowflake.QueryTimeout
	case c.SQLite != nil:
		return c.SQLite.StatementTimeout
	default:
		return 0
	}
}

// CleanerOptions returns the cleaning policies selected by the configuration
func (c *Config) CleanerOptions() cleaner.Options {
	mode, _ := cleaner.ParseVehicleTypeMode(c.VehicleTypeMapping)
	return cleaner.Options{
		VehicleTypeMode: mode,
		UniqueLocations: c.UniqueLocations,
	}
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// envReader parses typed environment variables. An unset variable yields
// the default; a set one that does not parse is recorded and reported by Err.
type envReader struct {
	errs []error
}

func (e *envReader) Int(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s %q: want an integer", key, valueStr))
		return defaultValue
	}
	return value
}

func (e *envReader) Bool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("invalid %s %q: want true or false", key, valueStr))
		return defaultValue
	}
	return value
}

// Seconds reads a whole number of seconds
func (e *envReader) Seconds(key string, defaultSeconds int) time.Duration {
	return time.Duration(e.Int(key, defaultSeconds)) * time.Second
}

func (e *envReader) Err() error {
	return errors.Join(e.errs...)
}

// getEnvAsYears parses a comma-separated list of years and ranges,
// e.g. "2010-2012,2014"
func getEnvAsYears(key string, defaultValue []int) ([]int, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}

	years, err := ParseYears(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return years, nil
}

// ParseYears parses a comma-separated list of years and inclusive ranges
func ParseYears(s string) ([]int, error) {
	var years []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		from, to, isRange := strings.Cut(part, "-")
		if !isRange {
			to = from
		}
		first, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("year %q: %w", part, err)
		}
		last, err := strconv.Atoi(strings.TrimSpace(to))
		if err != nil {
			return nil, fmt.Errorf("year %q: %w", part, err)
		}
		if last < first {
			return nil, fmt.Errorf("year range %q is reversed", part)
		}

		for y := first; y <= last; y++ {
			years = append(years, y)
		}
	}
	return years, nil
}
