package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes environment overrides, e.g. AVTAN_SERVER_ADDR.
const EnvPrefix = "AVTAN"

// SetDefaults registers every key of Default() on v so that environment
// variables and Unmarshal see the full key set.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("kv.backend", d.KV.Backend)
	v.SetDefault("kv.redis_url", d.KV.RedisURL)
	v.SetDefault("kv.redis_prefix", d.KV.RedisPrefix)
	v.SetDefault("traversal.max_depth", d.Traversal.MaxDepth)
	v.SetDefault("traversal.max_paths", d.Traversal.MaxPaths)
	v.SetDefault("telemetry.endpoint", d.Telemetry.Endpoint)
	v.SetDefault("telemetry.service_name", d.Telemetry.ServiceName)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
}

// Load resolves the configuration from v: defaults, then any config file
// already read into v, then AVTAN_* environment variables and bound flags.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is empty"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	switch c.KV.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.KV.RedisURL == "" {
			errs = append(errs, errors.New("kv.redis_url is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("kv.backend %q is not one of memory, redis", c.KV.Backend))
	}
	if c.Traversal.MaxDepth < 1 {
		errs = append(errs, errors.New("traversal.max_depth must be at least 1"))
	}
	if c.Traversal.MaxPaths < 1 {
		errs = append(errs, errors.New("traversal.max_paths must be at least 1"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SlogLevel maps the configured level name to a slog.Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// Marshal renders c as YAML.
func Marshal(c Config) ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out, nil
}
