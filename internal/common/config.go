package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/cufe-extractor/constants"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Extract  ExtractConfig  `yaml:"extract"`
	Log      LogConfig      `yaml:"log"`
	Output   OutputConfig   `yaml:"output"`
}

// DatabaseConfig holds database-related configuration.
// Path is either a SQLite file path or a postgres:// DSN.
type DatabaseConfig struct {
	Path        string        `yaml:"path"`
	MaxConns    int32         `yaml:"max_conns"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// ExtractConfig holds text extraction configuration
type ExtractConfig struct {
	Backend   string `yaml:"backend"`   // auto | ledongthuc | pdfcpu | pdftotext
	Pdftotext string `yaml:"pdftotext"` // binary name or absolute path
	MaxPages  int    `yaml:"max_pages"` // 0 = no limit
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | text
}

// OutputConfig holds operator output configuration
type OutputConfig struct {
	PreviewLen int  `yaml:"preview_len"`
	NoColor    bool `yaml:"no_color"`
}

// Extraction backends
const (
	BackendAuto       = "auto"
	BackendLedongthuc = "ledongthuc"
	BackendPdfcpu     = "pdfcpu"
	BackendPdftotext  = "pdftotext"
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        constants.DefaultDBPath,
			MaxConns:    4,
			DialTimeout: 3 * time.Second,
			BusyTimeout: 5 * time.Second,
		},
		Extract: ExtractConfig{
			Backend:   BackendAuto,
			Pdftotext: "pdftotext",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Output: OutputConfig{
			PreviewLen: 50,
		},
	}
}

// LoadConfigFile loads defaults, then the YAML file at path (if any), then
// environment overrides.
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, ConfigError(fmt.Sprintf("reading config file %q", path), err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, ConfigError(fmt.Sprintf("parsing config file %q", path), err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Database.Path = getEnv("CUFE_DB_PATH", c.Database.Path)
	c.Database.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Database.DialTimeout)
	c.Database.BusyTimeout = getEnvAsDuration("DB_BUSY_TIMEOUT", c.Database.BusyTimeout)

	c.Extract.Backend = getEnv("CUFE_EXTRACT_BACKEND", c.Extract.Backend)
	c.Extract.Pdftotext = getEnv("PDFTOTEXT_BIN", c.Extract.Pdftotext)
	c.Extract.MaxPages = getEnvAsInt("CUFE_MAX_PAGES", c.Extract.MaxPages)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)

	c.Output.PreviewLen = getEnvAsInt("CUFE_PREVIEW_LEN", c.Output.PreviewLen)
	c.Output.NoColor = getEnvAsBool("NO_COLOR", c.Output.NoColor)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
		// NO_COLOR convention: any non-empty value disables colour
		return true
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return ConfigError("database path is required", ErrInvalidInput)
	}
	switch c.Extract.Backend {
	case BackendAuto, BackendLedongthuc, BackendPdfcpu, BackendPdftotext:
	default:
		return ConfigError(fmt.Sprintf("unknown extract backend %q", c.Extract.Backend), ErrInvalidInput)
	}
	if c.Extract.MaxPages < 0 {
		return ConfigError("max_pages must not be negative", ErrInvalidInput)
	}
	if c.Output.PreviewLen < 0 {
		return ConfigError("preview_len must not be negative", ErrInvalidInput)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return ConfigError(err.Error(), ErrInvalidInput)
	}
	return nil
}
