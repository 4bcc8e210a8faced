package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	DB   DBConfig   `yaml:"db"`
	Log  LogConfig  `yaml:"log"`
	OTLP OTLPConfig `yaml:"otlp"`
}

type DBConfig struct {
	Dialect        string        `yaml:"dialect"`
	DSN            string        `yaml:"dsn"`
	MaxOpenConns   int           `yaml:"max_open_conns"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	Isolation      string        `yaml:"isolation"`
	Migrate        bool          `yaml:"migrate"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type OTLPConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`
}

func Default() *Config {
	return &Config{
		DB: DBConfig{
			Dialect:        "mysql",
			DSN:            "user:pass@tcp(mysql:3306)/appdb?parseTime=true",
			MaxOpenConns:   10,
			ConnectTimeout: 30 * time.Second,
			Isolation:      "read_committed",
			Migrate:        true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		OTLP: OTLPConfig{
			ServiceName: "product-catalog",
			Environment: "development",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.DB.Dialect = getEnv("DB_DIALECT", c.DB.Dialect)
	c.DB.DSN = getEnv("DB_DSN", c.DB.DSN)
	c.DB.Isolation = getEnv("DB_ISOLATION", c.DB.Isolation)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	c.OTLP.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTLP.Endpoint)
	c.OTLP.ServiceName = getEnv("OTEL_SERVICE_NAME", c.OTLP.ServiceName)
	c.OTLP.Environment = getEnv("OTEL_ENVIRONMENT", c.OTLP.Environment)

	if v := os.Getenv("DB_MAX_OPEN_CONNS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DB_MAX_OPEN_CONNS: %w", err)
		}
		c.DB.MaxOpenConns = n
	}
	if v := os.Getenv("DB_CONNECT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("DB_CONNECT_TIMEOUT: %w", err)
		}
		c.DB.ConnectTimeout = d
	}
	if v := os.Getenv("DB_MIGRATE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DB_MIGRATE: %w", err)
		}
		c.DB.Migrate = b
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.DB.Dialect {
	case "mysql", "postgres":
	default:
		errs = append(errs, fmt.Errorf("db.dialect: unsupported %q", c.DB.Dialect))
	}
	if c.DB.DSN == "" {
		errs = append(errs, errors.New("db.dsn is required"))
	}
	if c.DB.MaxOpenConns < 0 {
		errs = append(errs, errors.New("db.max_open_conns must not be negative"))
	}
	if c.DB.ConnectTimeout <= 0 {
		errs = append(errs, errors.New("db.connect_timeout must be positive"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format: unsupported %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

func (c LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.Level))
	return level, err
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
