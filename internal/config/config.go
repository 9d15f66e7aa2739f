package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"bikeshare-platform/pkg/database"
	"bikeshare-platform/pkg/logging"
)

// EnvPrefix prefixes every environment variable read by the platform.
const EnvPrefix = "BIKESHARE_"

// Config holds the configuration of every binary
type Config struct {
	Service   string          `env:"SERVICE_NAME" envDefault:"bikeshare-platform"`
	Version   string          `env:"VERSION" envDefault:"dev"`
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Database  DatabaseConfig  `envPrefix:"DB_"`
	Dataset   DatasetConfig   `envPrefix:"DATASET_"`
	Ingestion IngestionConfig `envPrefix:"INGEST_"`
	Logging   LoggingConfig   `envPrefix:"LOG_"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	Port            int           `env:"PORT" envDefault:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s" validate:"gt=0"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s" validate:"gt=0"`
}

// DatabaseConfig configures the optional SQL backing store
type DatabaseConfig struct {
	Driver          string        `env:"DRIVER" envDefault:"postgres" validate:"oneof=postgres sqlite"`
	Host            string        `env:"HOST" envDefault:"localhost" validate:"required_if=Driver postgres"`
	Port            int           `env:"PORT" envDefault:"5432" validate:"min=1,max=65535"`
	User            string        `env:"USER" envDefault:"bikeshare"`
	Password        string        `env:"PASSWORD"`
	Database        string        `env:"NAME" envDefault:"bikeshare" validate:"required_if=Driver postgres"`
	SSLMode         string        `env:"SSLMODE" envDefault:"disable" validate:"oneof=disable allow prefer require verify-ca verify-full"`
	Path            string        `env:"PATH" envDefault:"data/bikeshare.db" validate:"required_if=Driver sqlite"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10" validate:"min=1"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5" validate:"min=0"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
	ConnMaxIdleTime time.Duration `env:"CONN_MAX_IDLE_TIME" envDefault:"5m"`
}

// Dataset sources
const (
	SourceCSV      = "csv"
	SourceDatabase = "database"
)

// DatasetConfig selects where the record store is loaded from
type DatasetConfig struct {
	Source string `env:"SOURCE" envDefault:"csv" validate:"oneof=csv database"`
	Path   string `env:"PATH" envDefault:"data/day.csv" validate:"required_if=Source csv"`
}

// IngestionConfig configures cmd/ingester
type IngestionConfig struct {
	BatchSize int `env:"BATCH_SIZE" envDefault:"500" validate:"min=1,max=10000"`
}

// LoggingConfig configures the structured logger
type LoggingConfig struct {
	Level string `env:"LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
}

// LoadConfig reads an optional .env file, then the environment.
func LoadConfig(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv parses BIKESHARE_* environment variables, applying defaults.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("invalid configuration: DB max idle conns (%d) exceeds max open conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	return nil
}

// Connection converts the database section into a connection config
func (c DatabaseConfig) Connection() *database.Config {
	return &database.Config{
		Driver:          c.Driver,
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		Database:        c.Database,
		SSLMode:         c.SSLMode,
		Path:            c.Path,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		ConnMaxIdleTime: c.ConnMaxIdleTime,
	}
}

// LogLevel returns the configured level, defaulting to info.
func (c LoggingConfig) LogLevel() logging.LogLevel {
	return logging.ParseLevel(c.Level)
}

// Address returns the listen address of the HTTP server.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
