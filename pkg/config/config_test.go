package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":18085", cfg.Server.Addr)
	assert.Equal(t, BackendMemory, cfg.KV.Backend)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromYAMLAndEnv(t *testing.T) {
	t.Setenv("AVTAN_KV_REDIS_URL", "redis://cache:6379/2")

	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
server:
  addr: "127.0.0.1:9000"
  shutdown_timeout: 3s
kv:
  backend: redis
traversal:
  max_depth: 3
log:
  level: debug
  json: false
`)))

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, BackendRedis, cfg.KV.Backend)
	assert.Equal(t, "redis://cache:6379/2", cfg.KV.RedisURL)
	assert.Equal(t, 3, cfg.Traversal.MaxDepth)
	assert.Equal(t, 1000, cfg.Traversal.MaxPaths)
	assert.False(t, cfg.Log.JSON)
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.Addr = ""
	cfg.KV.Backend = "etcd"
	cfg.Traversal.MaxDepth = 0
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"server.addr", "kv.backend", "traversal.max_depth", "log.level"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	out, err := Marshal(Default())
	require.NoError(t, err)
	assert.Contains(t, string(out), ":18085")
	assert.Contains(t, string(out), "shutdown_timeout: 10s")

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(out, &back))
	assert.Contains(t, back, "kv")
}
