package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/DrSkyle/avtan/pkg/config"
	"github.com/DrSkyle/avtan/pkg/version"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		cfgFile = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func resolved(t *testing.T, args ...string) config.Config {
	t.Helper()
	out, err := execute(t, args...)
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	return cfg
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version.String()+"\n", out)
}

func TestHelpListsCommands(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "serve")
	assert.Contains(t, out, "config")
	assert.Contains(t, out, "--log-level")
}

func TestConfigEnvOverride(t *testing.T) {
	t.Setenv("AVTAN_SERVER_ADDR", "127.0.0.1:9999")
	t.Setenv("AVTAN_TRAVERSAL_MAX_PATHS", "25")

	cfg := resolved(t, "config")
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, 25, cfg.Traversal.MaxPaths)
	assert.Equal(t, config.BackendMemory, cfg.KV.Backend)
	assert.Equal(t, config.Default().Server.ReadTimeout, cfg.Server.ReadTimeout)
}

func TestConfigInvalidEnv(t *testing.T) {
	t.Setenv("AVTAN_KV_BACKEND", "etcd")
	_, err := execute(t, "config")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kv.backend")
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "avtan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
kv:
  backend: redis
  redis_url: redis://cache:6379/2
traversal:
  max_depth: 3
`), 0o600))

	cfg := resolved(t, "config", "--config", path)
	assert.Equal(t, config.BackendRedis, cfg.KV.Backend)
	assert.Equal(t, "redis://cache:6379/2", cfg.KV.RedisURL)
	assert.Equal(t, 3, cfg.Traversal.MaxDepth)
	assert.Equal(t, config.DefaultAddr, cfg.Server.Addr)
}

func TestConfigFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("kv: {backend: redis\n"), 0o600))

	out, err := execute(t, "config", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config "+path)
	assert.Empty(t, out)
}

func TestConfigFileMissing(t *testing.T) {
	_, err := execute(t, "config", "--config", filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
