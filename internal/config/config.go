package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Dataset  DatasetConfig  `yaml:"dataset" envconfig:"DATASET"`
	Metrics  MetricsConfig  `yaml:"metrics" envconfig:"METRICS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL"`
	Format      string `yaml:"format" envconfig:"FORMAT"`
	Output      string `yaml:"output" envconfig:"OUTPUT"` // console, file or both
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	MaxSizeMB   int    `yaml:"max_size_mb" envconfig:"MAX_SIZE_MB"`
	MaxBackups  int    `yaml:"max_backups" envconfig:"MAX_BACKUPS"`
	MaxAgeDays  int    `yaml:"max_age_days" envconfig:"MAX_AGE_DAYS"`
	Compress    bool   `yaml:"compress" envconfig:"COMPRESS"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// DatasetConfig describes the sales source and the dashboard defaults
type DatasetConfig struct {
	Path             string   `yaml:"path" envconfig:"SOURCE"` // VGSALES_DATASET_SOURCE
	Format           string   `yaml:"format" envconfig:"FORMAT"`                 // auto, csv or xlsx
	MalformedRows    string   `yaml:"malformed_rows" envconfig:"MALFORMED_ROWS"` // skip or fail
	DefaultPlatforms []string `yaml:"default_platforms" envconfig:"DEFAULT_PLATFORMS"`
	DefaultGenres    []string `yaml:"default_genres" envconfig:"DEFAULT_GENRES"`
	SampleSize       int      `yaml:"sample_size" envconfig:"SAMPLE_SIZE"`
	TopGames         int      `yaml:"top_games" envconfig:"TOP_GAMES"`
	TopPublishers    int      `yaml:"top_publishers" envconfig:"TOP_PUBLISHERS"`
}

// MetricsConfig contains OpenTelemetry configuration
type MetricsConfig struct {
	Enabled     bool   `yaml:"enabled" envconfig:"ENABLED"`
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Tracing     string `yaml:"tracing" envconfig:"TRACING"` // none or stdout
}

// Load builds the configuration from defaults, the optional YAML file and
// VGSALES_* environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields without a matching env var are left untouched
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	if strings.TrimSpace(c.Dataset.Path) == "" {
		return fmt.Errorf("dataset path must be specified")
	}

	switch c.Dataset.Format {
	case "auto", "csv", "xlsx":
	default:
		return fmt.Errorf("invalid dataset format: %q", c.Dataset.Format)
	}

	switch c.Dataset.MalformedRows {
	case "skip", "fail":
	default:
		return fmt.Errorf("invalid malformed row policy: %q", c.Dataset.MalformedRows)
	}

	if c.Dataset.SampleSize <= 0 || c.Dataset.TopGames <= 0 || c.Dataset.TopPublishers <= 0 {
		return fmt.Errorf("dataset sample size and top-N limits must be positive")
	}

	switch c.Metrics.Tracing {
	case "none", "stdout":
	default:
		return fmt.Errorf("invalid tracing exporter: %q", c.Metrics.Tracing)
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "console"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvConfigFile); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			Output:     "console",
			FilePath:   DefaultLogFile,
			MaxSizeMB:  MaxLogFileSizeMB,
			MaxBackups: MaxLogFileBackups,
			MaxAgeDays: MaxLogFileAgeDays,
		},
		Dataset: DatasetConfig{
			Path:             DefaultDatasetPath,
			Format:           "auto",
			MalformedRows:    "skip",
			DefaultPlatforms: []string{"PS2", "X360", "Wii"},
			DefaultGenres:    []string{"Action", "Sports", "Shooter"},
			SampleSize:       DefaultSampleSize,
			TopGames:         DefaultTopGames,
			TopPublishers:    DefaultTopPublishers,
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			ServiceName: AppName,
			Tracing:     "none",
		},
	}
}
