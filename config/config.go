package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Backend names for the lock and fraud window stores.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Gateway modes.
const (
	GatewayModeSimulated = "simulated"
	GatewayModeHTTP      = "http"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Fraud     FraudConfig     `mapstructure:"fraud"`
	Lock      LockConfig      `mapstructure:"lock"`
	Audit     AuditConfig     `mapstructure:"audit"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// GatewayConfig selects and tunes the charge-authorization gateway.
// The simulator fields are ignored in http mode.
type GatewayConfig struct {
	Mode         string        `mapstructure:"mode"`
	URL          string        `mapstructure:"url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	FailureRate  float64       `mapstructure:"failure_rate"`
	DeclineAbove float64       `mapstructure:"decline_above"`
	MinLatency   time.Duration `mapstructure:"min_latency"`
	MaxLatency   time.Duration `mapstructure:"max_latency"`
}

type FraudConfig struct {
	Backend        string        `mapstructure:"backend"`
	LargeThreshold float64       `mapstructure:"large_threshold"` // reference currency units
	MaxLarge       int           `mapstructure:"max_large"`
	Window         time.Duration `mapstructure:"window"`
}

type LockConfig struct {
	Backend string `mapstructure:"backend"`
	// TTL bounds how long a Redis lock survives a crashed holder.
	TTL time.Duration `mapstructure:"ttl"`
}

type AuditConfig struct {
	Enabled bool `mapstructure:"enabled"` // persist attempts to PostgreSQL
}

type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int64         `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

// UsesRedis reports whether any component needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Lock.Backend == BackendRedis || c.Fraud.Backend == BackendRedis || c.RateLimit.Enabled
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	for name, backend := range map[string]string{"lock.backend": c.Lock.Backend, "fraud.backend": c.Fraud.Backend} {
		if backend != BackendMemory && backend != BackendRedis {
			return fmt.Errorf("%s: unknown backend %q", name, backend)
		}
	}
	switch c.Gateway.Mode {
	case GatewayModeSimulated:
	case GatewayModeHTTP:
		if c.Gateway.URL == "" {
			return fmt.Errorf("gateway.url is required in %s mode", GatewayModeHTTP)
		}
	default:
		return fmt.Errorf("gateway.mode: unknown mode %q", c.Gateway.Mode)
	}
	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway.timeout must be positive")
	}
	if c.Lock.Backend == BackendRedis && c.Lock.TTL <= c.Gateway.Timeout {
		return fmt.Errorf("lock.ttl (%s) must exceed gateway.timeout (%s) with the redis lock backend", c.Lock.TTL, c.Gateway.Timeout)
	}
	if c.Fraud.LargeThreshold <= 0 || c.Fraud.MaxLarge < 0 || c.Fraud.Window <= 0 {
		return fmt.Errorf("fraud: threshold and window must be positive")
	}
	if c.Gateway.MaxLatency < c.Gateway.MinLatency {
		return fmt.Errorf("gateway.max_latency must not be below gateway.min_latency")
	}
	return nil
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: PE_ (Payment Engine).
// Nested keys use underscore: PE_GATEWAY_TIMEOUT, PE_FRAUD_BACKEND, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "payment_engine")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("gateway.mode", GatewayModeSimulated)
	v.SetDefault("gateway.url", "")
	v.SetDefault("gateway.timeout", "5s")
	v.SetDefault("gateway.failure_rate", 0.15)
	v.SetDefault("gateway.decline_above", 10000)
	v.SetDefault("gateway.min_latency", "100ms")
	v.SetDefault("gateway.max_latency", "400ms")
	v.SetDefault("fraud.backend", BackendMemory)
	v.SetDefault("fraud.large_threshold", 5000)
	v.SetDefault("fraud.max_large", 3)
	v.SetDefault("fraud.window", "24h")
	v.SetDefault("lock.backend", BackendMemory)
	v.SetDefault("lock.ttl", "30s")
	v.SetDefault("audit.enabled", false)
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.limit", 100)
	v.SetDefault("ratelimit.window", "1m")

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: PE_GATEWAY_TIMEOUT -> gateway.timeout
	v.SetEnvPrefix("PE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; env vars can suffice.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
