package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-yaml"
)

// validHTTPMethods contains the methods an endpoint classification may use.
var validHTTPMethods = map[string]bool{
	"GET": true, "HEAD": true, "POST": true, "PUT": true,
	"DELETE": true, "PATCH": true,
}

// Loader handles configuration loading and parsing
type Loader struct {
	envPattern *regexp.Regexp
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		envPattern: regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`),
	}
}

// Load reads and parses a configuration file
func (l *Loader) Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return l.Parse(data)
}

// Parse parses configuration from YAML bytes
func (l *Loader) Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := l.expandEnvVars(string(data))

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal YAML into config
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Validate configuration
	if err := l.validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} with environment variable values
func (l *Loader) expandEnvVars(input string) string {
	return l.envPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${")
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		return match // Keep original if env var not set
	})
}

// validate checks configuration for errors
func (l *Loader) validate(cfg *Config) error {
	if cfg.Server.Address == "" {
		return fmt.Errorf("server address is required")
	}

	switch cfg.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid cache backend: %s", cfg.Cache.Backend)
	}

	if cfg.Cache.Backend == "redis" && cfg.Cache.Redis.Addr == "" {
		return fmt.Errorf("redis backend requires cache.redis.addr")
	}

	if !strings.HasPrefix(cfg.Cache.APIPrefix, "/") {
		return fmt.Errorf("cache api_prefix must start with /: %s", cfg.Cache.APIPrefix)
	}

	if cfg.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("cache default_ttl must be positive")
	}

	for category, ttl := range cfg.Cache.Categories {
		if ttl <= 0 {
			return fmt.Errorf("cache category %q has non-positive TTL", category)
		}
	}

	seen := make(map[string]bool, len(cfg.Cache.Endpoints))
	for i, ep := range cfg.Cache.Endpoints {
		method := strings.ToUpper(ep.Method)
		if !validHTTPMethods[method] {
			return fmt.Errorf("cache endpoint %d: invalid method %q", i, ep.Method)
		}
		if !strings.HasPrefix(ep.Path, cfg.Cache.APIPrefix) {
			return fmt.Errorf("cache endpoint %d: path %q is outside api_prefix %q", i, ep.Path, cfg.Cache.APIPrefix)
		}
		if ep.Category == "" {
			return fmt.Errorf("cache endpoint %d: category is required", i)
		}
		key := method + " " + ep.Path
		if seen[key] {
			return fmt.Errorf("cache endpoint %d: duplicate classification for %s", i, key)
		}
		seen[key] = true
	}

	if cfg.RateLimit.Enabled && cfg.RateLimit.Rate <= 0 {
		return fmt.Errorf("rate_limit.rate must be positive when enabled")
	}

	return nil
}
