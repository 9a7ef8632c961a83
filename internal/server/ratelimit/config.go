package ratelimit

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EndpointConfig is the token bucket for one route. Paths ending in "/"
// apply to every path below them.
type EndpointConfig struct {
	Path   string        `yaml:"path"`
	Method string        `yaml:"method"`
	Limit  int           `yaml:"limit"`  // requests per Window; 0 means unlimited
	Window time.Duration `yaml:"window"` // e.g. "1m"
	Burst  int           `yaml:"burst"`  // defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTimeout     time.Duration
	AllowList       map[string]bool // client IDs that are never limited
	DenyList        map[string]bool // client IDs that are always rejected
	EndpointConfigs []EndpointConfig
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		AllowList:       map[string]bool{},
		DenyList:        map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs limits the routes that write to storage more tightly
// than reads. GET /health is never limited.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/upload-resume", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/resumes", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/resumes/", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/resumes/", Method: "DELETE", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/job-requirements", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/analyze-resume", Method: "POST", Limit: 120, Window: time.Minute, Burst: 20},
	}
}

// LoadConfig builds the configuration from RATE_LIMIT_* environment
// variables. RATE_LIMIT_ENDPOINTS_FILE names a YAML list of EndpointConfig
// that replaces the default per-route limits.
func LoadConfig() (*Config, error) {
	if !envValue("RATE_LIMIT_ENABLED", true, strconv.ParseBool) {
		return &Config{Enabled: false}, nil
	}

	cfg := DefaultConfig()
	cfg.DefaultLimit = envValue("RATE_LIMIT_DEFAULT_LIMIT", cfg.DefaultLimit, strconv.Atoi)
	cfg.DefaultWindow = envValue("RATE_LIMIT_DEFAULT_WINDOW", cfg.DefaultWindow, time.ParseDuration)
	cfg.CleanupInterval = envValue("RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval, time.ParseDuration)
	cfg.IdleTimeout = envValue("RATE_LIMIT_IDLE_TIMEOUT", cfg.IdleTimeout, time.ParseDuration)
	cfg.AllowList = clientSet(os.Getenv("RATE_LIMIT_ALLOWLIST"))
	cfg.DenyList = clientSet(os.Getenv("RATE_LIMIT_DENYLIST"))

	if path := os.Getenv("RATE_LIMIT_ENDPOINTS_FILE"); path != "" {
		endpoints, err := LoadEndpointConfigs(path)
		if err != nil {
			return nil, err
		}
		cfg.EndpointConfigs = endpoints
	}
	return cfg, nil
}

// LoadEndpointConfigs reads per-route limits from a YAML file.
func LoadEndpointConfigs(path string) ([]EndpointConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate limit file %s: %w", path, err)
	}

	var endpoints []EndpointConfig
	if err := yaml.Unmarshal(data, &endpoints); err != nil {
		return nil, fmt.Errorf("failed to parse rate limit file %s: %w", path, err)
	}
	for i := range endpoints {
		ec := &endpoints[i]
		ec.Method = strings.ToUpper(strings.TrimSpace(ec.Method))
		if ec.Path == "" || ec.Method == "" {
			return nil, fmt.Errorf("rate limit entry %d: path and method are required", i)
		}
		if ec.Limit < 0 || ec.Burst < 0 {
			return nil, fmt.Errorf("rate limit entry %d (%s %s): limit and burst must be non-negative", i, ec.Method, ec.Path)
		}
		if ec.Limit > 0 && ec.Window <= 0 {
			return nil, fmt.Errorf("rate limit entry %d (%s %s): window is required", i, ec.Method, ec.Path)
		}
	}
	return endpoints, nil
}

// envValue parses key with parse, keeping fallback when unset or invalid.
func envValue[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := parse(raw)
	if err != nil {
		return fallback
	}
	return v
}

func clientSet(list string) map[string]bool {
	set := map[string]bool{}
	for _, id := range strings.Split(list, ",") {
		if id = strings.TrimSpace(id); id != "" {
			set[id] = true
		}
	}
	return set
}
