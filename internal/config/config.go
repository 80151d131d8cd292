package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration. Defaults come from
// defaultConfig, overridden by an optional YAML file, overridden in turn by
// NSI_-prefixed environment variables.
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
	Index   IndexConfig   `yaml:"index" envconfig:"INDEX"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system locations. Relative paths are resolved
// against the executable directory by Paths.
type PathsConfig struct {
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	BatchesDir string `yaml:"batches_dir" envconfig:"BATCHES_DIR" validate:"required"`
	IndexFile  string `yaml:"index_file" envconfig:"INDEX_FILE" validate:"required"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// IndexConfig contains the index engine parameters. TrendWindowDays defaults
// to seven years; an earlier revision of the index used ten.
type IndexConfig struct {
	Topic              string `yaml:"topic" envconfig:"TOPIC" validate:"required"`
	MinHeadlineTokens  int    `yaml:"min_headline_tokens" envconfig:"MIN_HEADLINE_TOKENS" validate:"min=1"`
	ResampleWindowDays int    `yaml:"resample_window_days" envconfig:"RESAMPLE_WINDOW_DAYS" validate:"min=1"`
	SmoothingSpan      int    `yaml:"smoothing_span" envconfig:"SMOOTHING_SPAN" validate:"min=1"`
	TrendWindowDays    int    `yaml:"trend_window_days" envconfig:"TREND_WINDOW_DAYS" validate:"min=1"`
	Workers            int    `yaml:"workers" envconfig:"WORKERS" validate:"min=0"`
}

// defaultConfig returns the built-in configuration. Kept out of envconfig
// default tags so the YAML layer is not clobbered when an env var is absent.
func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{
			Level:    "info",
			Output:   "console",
			FilePath: "logs/indexer.log",
		},
		Paths: PathsConfig{
			DataDir:    "data",
			BatchesDir: "data/classified",
			IndexFile:  "data/index.csv",
			LogsDir:    "logs",
		},
		Index: IndexConfig{
			Topic:              "Economics",
			MinHeadlineTokens:  3,
			ResampleWindowDays: 365,
			SmoothingSpan:      100,
			TrendWindowDays:    2555,
			Workers:            0,
		},
	}
}

// Load builds the configuration. Starting from the defaults, the YAML file
// overlays the keys it sets, envconfig overlays the environment variables that
// are actually present, and the result is validated.
func Load() (*Config, error) {
	cfg := defaultConfig()

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		data, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := envconfig.Process("NSI", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks field constraints on the assembled configuration.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// getConfigFilePath returns the config file location, next to the executable
// unless overridden via NSI_CONFIG_FILE.
func getConfigFilePath() string {
	if path := os.Getenv("NSI_CONFIG_FILE"); path != "" {
		return path
	}
	execDir, err := getExecutableDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(execDir, "config.yaml")
}
