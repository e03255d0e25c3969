// Package config loads and validates the demo service configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrInvalid marks a configuration that fails validation.
var ErrInvalid = errors.New("config: invalid")

// Redis holds connection settings. Timeouts are milliseconds.
type Redis struct {
	URL                string `yaml:"url" toml:"url"`
	DialTimeoutMs      int    `yaml:"dial_timeout_ms" toml:"dial_timeout_ms"`
	ReadTimeoutMs      int    `yaml:"read_timeout_ms" toml:"read_timeout_ms"`
	WriteTimeoutMs     int    `yaml:"write_timeout_ms" toml:"write_timeout_ms"`
	OperationTimeoutMs int    `yaml:"operation_timeout_ms" toml:"operation_timeout_ms"`
	PoolSize           int    `yaml:"pool_size" toml:"pool_size"`
	ConnectAttempts    int    `yaml:"connect_attempts" toml:"connect_attempts"`
}

// Cache holds engine settings. Durations are minutes.
type Cache struct {
	Namespace                 string `yaml:"namespace" toml:"namespace"`
	CacheDurationMinutes      int    `yaml:"cache_duration_minutes" toml:"cache_duration_minutes"`
	AbsoluteExpirationMinutes int    `yaml:"absolute_expiration_minutes" toml:"absolute_expiration_minutes"`
	Disabled                  bool   `yaml:"disabled" toml:"disabled"`
	// Backend selects the store: redis, ristretto or bigcache.
	Backend string `yaml:"backend" toml:"backend"`
	// Envelope selects the stored entry format: cbor, msgpack, json or wire.
	Envelope string `yaml:"envelope" toml:"envelope"`
}

// HTTP holds demo server settings.
type HTTP struct {
	Addr            string `yaml:"addr" toml:"addr"`
	ShutdownTimeout string `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

type Config struct {
	Redis Redis `yaml:"redis" toml:"redis"`
	Cache Cache `yaml:"cache" toml:"cache"`
	HTTP  HTTP  `yaml:"http" toml:"http"`
}

// Default mirrors the settings the service ships with.
func Default() Config {
	return Config{
		Redis: Redis{
			URL:                "redis://localhost:6379/0",
			DialTimeoutMs:      5000,
			ReadTimeoutMs:      5000,
			WriteTimeoutMs:     5000,
			OperationTimeoutMs: 5000,
			PoolSize:           10,
			ConnectAttempts:    3,
		},
		Cache: Cache{
			Namespace:                 "asidecache",
			CacheDurationMinutes:      10,
			AbsoluteExpirationMinutes: 60,
			Envelope:                  "cbor",
			Backend:                   "redis",
		},
		HTTP: HTTP{
			Addr:            ":8080",
			ShutdownTimeout: "10s",
		},
	}
}

// Load reads path over Default. The format follows the extension: .yaml,
// .yml or .toml. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("%s: unsupported config format %q", path, ext)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the constraints the cache relies on.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Redis.URL == "" {
		bad("redis.url is required")
	}
	for name, v := range map[string]int{
		"redis.dial_timeout_ms":      c.Redis.DialTimeoutMs,
		"redis.read_timeout_ms":      c.Redis.ReadTimeoutMs,
		"redis.write_timeout_ms":     c.Redis.WriteTimeoutMs,
		"redis.operation_timeout_ms": c.Redis.OperationTimeoutMs,
	} {
		if v <= 0 {
			bad("%s must be > 0, got %d", name, v)
		}
	}
	if c.Redis.PoolSize < 0 {
		bad("redis.pool_size must not be negative")
	}
	if c.Cache.CacheDurationMinutes <= 0 {
		bad("cache.cache_duration_minutes must be > 0, got %d", c.Cache.CacheDurationMinutes)
	}
	if c.Cache.AbsoluteExpirationMinutes < c.Cache.CacheDurationMinutes {
		bad("cache.absolute_expiration_minutes (%d) must be >= cache_duration_minutes (%d)",
			c.Cache.AbsoluteExpirationMinutes, c.Cache.CacheDurationMinutes)
	}
	switch c.Cache.Envelope {
	case "", "cbor", "msgpack", "json", "wire":
	default:
		bad("cache.envelope %q is not one of cbor, msgpack, json, wire", c.Cache.Envelope)
	}
	switch c.Cache.Backend {
	case "", "redis", "ristretto", "bigcache":
	default:
		bad("cache.backend %q is not one of redis, ristretto, bigcache", c.Cache.Backend)
	}
	if _, err := time.ParseDuration(c.HTTP.ShutdownTimeout); c.HTTP.ShutdownTimeout != "" && err != nil {
		bad("http.shutdown_timeout: %v", err)
	}
	return errors.Join(errs...)
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func (r Redis) DialTimeout() time.Duration      { return ms(r.DialTimeoutMs) }
func (r Redis) ReadTimeout() time.Duration      { return ms(r.ReadTimeoutMs) }
func (r Redis) WriteTimeout() time.Duration     { return ms(r.WriteTimeoutMs) }
func (r Redis) OperationTimeout() time.Duration { return ms(r.OperationTimeoutMs) }

func (c Cache) CacheDuration() time.Duration {
	return time.Duration(c.CacheDurationMinutes) * time.Minute
}

func (c Cache) AbsoluteExpiration() time.Duration {
	return time.Duration(c.AbsoluteExpirationMinutes) * time.Minute
}

// Shutdown returns the graceful shutdown budget, 10s when unset.
func (h HTTP) Shutdown() time.Duration {
	d, err := time.ParseDuration(h.ShutdownTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}
