package config

import "time"

// Config represents the complete edgegate configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Admin     AdminConfig     `yaml:"admin"`
	Logging   LoggingConfig   `yaml:"logging"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Coalesce  CoalesceConfig  `yaml:"coalesce"`
}

// ServerConfig defines the main HTTP listener
type ServerConfig struct {
	Address        string        `yaml:"address"` // e.g. ":8080"
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
}

// AdminConfig defines the internal admin listener (stats, invalidation, metrics)
type AdminConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"` // e.g. "127.0.0.1:9090"
}

// LoggingConfig defines logger settings
type LoggingConfig struct {
	Level string        `yaml:"level"`
	File  LogFileConfig `yaml:"file"`
}

// LogFileConfig defines the optional rotating file sink (powered by lumberjack).
type LogFileConfig struct {
	Path       string `yaml:"path"` // empty disables the file sink
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// CacheConfig defines the response caching layer
type CacheConfig struct {
	Backend    string                   `yaml:"backend"`     // "memory" or "redis"
	APIPrefix  string                   `yaml:"api_prefix"`  // path space excluded from the page cache
	DefaultTTL time.Duration            `yaml:"default_ttl"` // fallback for unrecognized categories
	Categories map[string]time.Duration `yaml:"categories"`  // category → TTL
	Endpoints  []EndpointClassConfig    `yaml:"endpoints"`   // API endpoints classified into categories
	Memory     MemoryCacheConfig        `yaml:"memory"`
	Redis      RedisCacheConfig         `yaml:"redis"`
}

// EndpointClassConfig classifies one API endpoint into a response category
type EndpointClassConfig struct {
	Method   string `yaml:"method"`
	Path     string `yaml:"path"`
	Category string `yaml:"category"`
}

// MemoryCacheConfig defines the in-memory backing store
type MemoryCacheConfig struct {
	MaxEntries int `yaml:"max_entries"` // per logical store
}

// RedisCacheConfig defines the Redis backing store
type RedisCacheConfig struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix"` // logical store prefixes hang off this
	Retention time.Duration `yaml:"retention"`  // coarse key expiry in Redis
}

// RateLimitConfig defines token-bucket limiting on the API prefix
type RateLimitConfig struct {
	Enabled bool          `yaml:"enabled"`
	Rate    int           `yaml:"rate"`
	Burst   int           `yaml:"burst"`
	Period  time.Duration `yaml:"period"`
}

// CoalesceConfig defines optional request coalescing in front of the cache.
// Disabled by default: the baseline design accepts cache stampedes.
type CoalesceConfig struct {
	Enabled bool          `yaml:"enabled"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a Config populated with defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Admin: AdminConfig{
			Enabled: false,
			Address: "127.0.0.1:9090",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Cache: CacheConfig{
			Backend:    "memory",
			APIPrefix:  "/api/",
			DefaultTTL: 5 * time.Minute,
			Memory: MemoryCacheConfig{
				MaxEntries: 4096,
			},
			Redis: RedisCacheConfig{
				KeyPrefix: "eg:",
				Retention: 24 * time.Hour,
			},
		},
		RateLimit: RateLimitConfig{
			Enabled: false,
			Rate:    100,
			Period:  time.Second,
		},
		Coalesce: CoalesceConfig{
			Enabled: false,
			Timeout: 30 * time.Second,
		},
	}
}
