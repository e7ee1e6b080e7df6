// Package config loads process-level settings: where to listen, which
// parameter store and event sink to use, and how hard to retry. Vendor
// secrets are not here; they go through internal/config.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. IDPROOF_SERVER__ADDR.
const EnvPrefix = "IDPROOF_"

// Config is the root configuration.
type Config struct {
	Server         Server         `koanf:"server"`
	Log            Log            `koanf:"log"`
	ParameterStore ParameterStore `koanf:"parameter_store"`
	Redis          RedisConfig    `koanf:"redis"`
	Postgres       PostgresConfig `koanf:"postgres"`
	Kafka          KafkaConfig    `koanf:"kafka"`
	Tracing        Tracing        `koanf:"tracing"`
	Vendors        Vendors        `koanf:"vendors"`
	Retry          Retry          `koanf:"retry"`
	Callback       Callback       `koanf:"callback"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Log selects level and output format.
type Log struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json, text
}

// ParameterStore selects where vendor secrets come from when the environment
// does not have them.
type ParameterStore struct {
	Kind string `koanf:"kind"` // none, redis, postgres
}

// RedisConfig configures the shared Redis client.
type RedisConfig struct {
	URL          string        `koanf:"url"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// PostgresConfig configures the database handle.
type PostgresConfig struct {
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
}

// KafkaConfig configures the summary event publisher. No brokers means no
// publisher.
type KafkaConfig struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
	// Buffer bounds the in-process queue in front of the producer.
	Buffer int `koanf:"buffer"`
}

// Tracing configures OpenTelemetry.
type Tracing struct {
	Exporter    string `koanf:"exporter"` // none, stdout
	ServiceName string `koanf:"service_name"`
}

// Vendors selects live or mock adapters.
type Vendors struct {
	Mode        string        `koanf:"mode"` // live, mock
	Timeout     time.Duration `koanf:"timeout"`
	MockLatency time.Duration `koanf:"mock_latency"`
}

// Retry configures the attempt budget shared by vendor calls and delivery.
type Retry struct {
	MaxAttempts int           `koanf:"max_attempts"`
	BaseDelay   time.Duration `koanf:"base_delay"`
	MaxDelay    time.Duration `koanf:"max_delay"`
}

// Callback configures result delivery.
type Callback struct {
	Timeout time.Duration `koanf:"timeout"`
}

var defaults = map[string]any{
	"server.addr":             ":8080",
	"server.shutdown_timeout": 10 * time.Second,
	"log.level":               "info",
	"log.format":              "json",
	"parameter_store.kind":    "none",
	"redis.pool_size":         10,
	"redis.min_idle_conns":    2,
	"redis.dial_timeout":      5 * time.Second,
	"redis.read_timeout":      3 * time.Second,
	"redis.write_timeout":     3 * time.Second,
	"postgres.max_open_conns": 10,
	"postgres.max_idle_conns": 5,
	"kafka.topic":             "idproof.summaries",
	"kafka.buffer":            256,
	"tracing.exporter":        "none",
	"tracing.service_name":    "idproof",
	"vendors.mode":            "live",
	"vendors.timeout":         30 * time.Second,
	"vendors.mock_latency":    time.Duration(0),
	"retry.max_attempts":      3,
	"retry.base_delay":        time.Duration(0),
	"retry.max_delay":         2 * time.Second,
	"callback.timeout":        15 * time.Second,
}

// Load reads an optional YAML file and then environment overrides. An empty
// path or a missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	for key, value := range defaults {
		if !k.Exists(key) {
			if err := k.Set(key, value); err != nil {
				return nil, fmt.Errorf("set default %s: %w", key, err)
			}
		}
	}

	// Comma separated broker lists arrive as one string from the environment.
	if raw, ok := k.Get("kafka.brokers").(string); ok && raw != "" {
		if err := k.Set("kafka.brokers", splitList(raw)); err != nil {
			return nil, fmt.Errorf("set kafka brokers: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations that cannot work.
func (c *Config) Validate() error {
	switch c.ParameterStore.Kind {
	case "none":
	case "redis":
		if c.Redis.URL == "" {
			return errors.New("parameter_store.kind=redis requires redis.url")
		}
	case "postgres":
		if c.Postgres.DSN == "" {
			return errors.New("parameter_store.kind=postgres requires postgres.dsn")
		}
	default:
		return fmt.Errorf("unknown parameter_store.kind %q", c.ParameterStore.Kind)
	}
	switch c.Vendors.Mode {
	case "live", "mock":
	default:
		return fmt.Errorf("unknown vendors.mode %q", c.Vendors.Mode)
	}
	switch c.Tracing.Exporter {
	case "none", "stdout":
	default:
		return fmt.Errorf("unknown tracing.exporter %q", c.Tracing.Exporter)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
