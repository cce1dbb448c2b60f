// Package config defines the service configuration and its defaults.
package config

import "time"

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	KV        KVConfig        `mapstructure:"kv" yaml:"kv"`
	Traversal TraversalConfig `mapstructure:"traversal" yaml:"traversal"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	// Addr is the HTTP listen address.
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	// AllowedOrigins feeds the CORS handler.
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

type KVConfig struct {
	// Backend is "memory" or "redis".
	Backend     string `mapstructure:"backend" yaml:"backend"`
	RedisURL    string `mapstructure:"redis_url" yaml:"redis_url"`
	RedisPrefix string `mapstructure:"redis_prefix" yaml:"redis_prefix"`
}

type TraversalConfig struct {
	// MaxDepth caps depth-limited traversal and path length requests.
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
	// MaxPaths caps the number of paths a single request may return.
	MaxPaths int `mapstructure:"max_paths" yaml:"max_paths"`
}

type TelemetryConfig struct {
	// Endpoint is the OTLP/HTTP collector URL. Empty discards spans.
	Endpoint    string `mapstructure:"endpoint" yaml:"endpoint"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
}

const (
	DefaultAddr       = ":18085"
	BackendMemory     = "memory"
	BackendRedis      = "redis"
	DefaultRedisURL   = "redis://localhost:6379/0"
	DefaultServiceTag = "avtan"
)

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		KV: KVConfig{
			Backend:     BackendMemory,
			RedisURL:    DefaultRedisURL,
			RedisPrefix: "avtan:kv:",
		},
		Traversal: TraversalConfig{
			MaxDepth: 8,
			MaxPaths: 1000,
		},
		Telemetry: TelemetryConfig{
			ServiceName: DefaultServiceTag,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  true,
		},
	}
}
