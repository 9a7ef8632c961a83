// Package config provides configuration loading and validation for the analyzer.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// StorageConfig describes the S3-compatible bucket that holds uploaded résumés.
type StorageConfig struct {
	Endpoint      string `json:"endpoint,omitempty"`        // Custom endpoint (Supabase, R2, MinIO); empty for AWS
	Region        string `json:"region,omitempty"`          // Bucket region, "auto" for R2
	Bucket        string `json:"bucket,omitempty"`          // Bucket name
	AccessKey     string `json:"access_key,omitempty"`      // Static access key (optional)
	SecretKey     string `json:"secret_key,omitempty"`      // Static secret key (optional)
	PublicBaseURL string `json:"public_base_url,omitempty"` // Prefix for public object URLs
	UsePathStyle  bool   `json:"use_path_style,omitempty"`  // Path-style addressing for self-hosted stores
}

// Enabled reports whether object storage is configured.
func (s StorageConfig) Enabled() bool {
	return s.Bucket != ""
}

// Config represents the application configuration. It can be loaded from a
// JSON file, from the environment, or both (file values act as defaults).
type Config struct {
	// Server
	Port        int `json:"port,omitempty"`          // HTTP port
	MaxUploadMB int `json:"max_upload_mb,omitempty"` // Multipart upload limit

	// Persistence
	DatabaseURL string        `json:"database_url,omitempty"` // PostgreSQL connection URL
	Storage     StorageConfig `json:"storage,omitempty"`

	// Requirements
	RequirementsFile string   `json:"requirements_file,omitempty"` // YAML job requirements fallback
	RequiredSkills   []string `json:"required_skills,omitempty"`   // Overrides the requirements provider for the CLI

	// Cache and messaging
	RedisURL string `json:"redis_url,omitempty"`
	CacheTTL string `json:"cache_ttl,omitempty"` // Go duration, e.g. "24h"
	AMQPURL  string `json:"amqp_url,omitempty"`
	Queue    string `json:"queue,omitempty"` // Upload event queue name

	// Logging
	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"` // json or pretty
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		Port:        8080,
		MaxUploadMB: 10,
		Storage: StorageConfig{
			Region: "us-east-1",
			Bucket: "",
		},
		CacheTTL:  "24h",
		Queue:     "resume.uploaded",
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads configuration from environment variables. Unset variables
// leave the corresponding field at its zero value.
func FromEnv() Config {
	return Config{
		Port:        getEnvInt("PORT", 0),
		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 0),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Storage: StorageConfig{
			Endpoint:      os.Getenv("STORAGE_ENDPOINT"),
			Region:        os.Getenv("STORAGE_REGION"),
			Bucket:        os.Getenv("STORAGE_BUCKET"),
			AccessKey:     os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey:     os.Getenv("STORAGE_SECRET_KEY"),
			PublicBaseURL: os.Getenv("STORAGE_PUBLIC_BASE_URL"),
			UsePathStyle:  getEnvBool("STORAGE_USE_PATH_STYLE", false),
		},
		RequirementsFile: os.Getenv("REQUIREMENTS_FILE"),
		RequiredSkills:   splitList(os.Getenv("REQUIRED_SKILLS")),
		RedisURL:         os.Getenv("REDIS_URL"),
		CacheTTL:         os.Getenv("CACHE_TTL"),
		AMQPURL:          os.Getenv("AMQP_URL"),
		Queue:            os.Getenv("AMQP_QUEUE"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		LogFormat:        os.Getenv("LOG_FORMAT"),
	}
}

// Load builds the effective configuration: environment values win, then the
// optional JSON file at path, then Defaults.
func Load(path string) (Config, error) {
	fileCfg := Defaults()
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		fileCfg = loaded.MergeWithDefaults(Defaults())
	}

	env := FromEnv()
	cfg := env.MergeWithDefaults(fileCfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.MaxUploadMB < 0 {
		return fmt.Errorf("config error: 'max_upload_mb' must be non-negative")
	}
	if c.CacheTTL != "" {
		if _, err := time.ParseDuration(c.CacheTTL); err != nil {
			return fmt.Errorf("config error: invalid 'cache_ttl': %w", err)
		}
	}
	if c.LogFormat != "" && c.LogFormat != "json" && c.LogFormat != "pretty" {
		return fmt.Errorf("config error: 'log_format' must be json or pretty")
	}

	// Validate file paths exist (if specified)
	if c.RequirementsFile != "" {
		if _, err := os.Stat(c.RequirementsFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: requirements file not found: %s", c.RequirementsFile)
		}
	}

	return nil
}

// CacheDuration returns the parsed CacheTTL, or zero when unset or invalid.
func (c *Config) CacheDuration() time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil {
		return 0
	}
	return d
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.RequirementsFile == "" {
		result.RequirementsFile = defaults.RequirementsFile
	}
	if result.RedisURL == "" {
		result.RedisURL = defaults.RedisURL
	}
	if result.CacheTTL == "" {
		result.CacheTTL = defaults.CacheTTL
	}
	if result.AMQPURL == "" {
		result.AMQPURL = defaults.AMQPURL
	}
	if result.Queue == "" {
		result.Queue = defaults.Queue
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if len(result.RequiredSkills) == 0 {
		result.RequiredSkills = defaults.RequiredSkills
	}

	// Storage: fill field by field so a bucket from the env can reuse a file endpoint
	s, d := &result.Storage, defaults.Storage
	if s.Endpoint == "" {
		s.Endpoint = d.Endpoint
	}
	if s.Region == "" {
		s.Region = d.Region
	}
	if s.Bucket == "" {
		s.Bucket = d.Bucket
	}
	if s.AccessKey == "" {
		s.AccessKey = d.AccessKey
	}
	if s.SecretKey == "" {
		s.SecretKey = d.SecretKey
	}
	if s.PublicBaseURL == "" {
		s.PublicBaseURL = d.PublicBaseURL
	}
	if !s.UsePathStyle {
		s.UsePathStyle = d.UsePathStyle
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.MaxUploadMB == 0 {
		result.MaxUploadMB = defaults.MaxUploadMB
	}

	return result
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
