package app

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrSkyle/avtan/pkg/config"
	"github.com/DrSkyle/avtan/pkg/kv"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = 2 * time.Second
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.KV.Backend = "etcd"
	_, err := New(context.Background(), cfg, WithoutTelemetry(), WithLogOutput(&bytes.Buffer{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kv.backend")
}

func TestNewSelectsRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.KV.Backend = config.BackendRedis
	cfg.KV.RedisURL = "redis://" + mr.Addr() + "/0"

	svc, err := New(context.Background(), cfg, WithoutTelemetry(), WithLogOutput(&bytes.Buffer{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close(context.Background()) })

	_, ok := svc.KV.(*kv.RedisStore)
	assert.True(t, ok, "expected redis store, got %T", svc.KV)

	require.NoError(t, svc.KV.Add(context.Background(), "x", "1", 0))
	assert.True(t, mr.Exists(cfg.KV.RedisPrefix+"x"))
}

func TestNewRedisUnreachable(t *testing.T) {
	cfg := testConfig()
	cfg.KV.Backend = config.BackendRedis
	cfg.KV.RedisURL = "redis://127.0.0.1:1/0"

	_, err := New(context.Background(), cfg, WithoutTelemetry(), WithLogOutput(&bytes.Buffer{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open redis kv store")
}

func TestServeAndShutdown(t *testing.T) {
	var logs bytes.Buffer
	svc, err := New(context.Background(), testConfig(), WithoutTelemetry(), WithLogOutput(&logs))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close(context.Background()) })

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Contains(t, logs.String(), "avtan listening")
	assert.Contains(t, logs.String(), "shutting down")
}

func TestLoggerRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger(&buf, config.LogConfig{Level: "debug", JSON: false})
	require.NoError(t, err)

	l.Debug("dial", "redis_url", "redis://user:hunter2@db:6379", "addr", "db:6379")
	out := buf.String()
	assert.NotContains(t, out, "hunter2")
	assert.Contains(t, out, "redis_url=[REDACTED]")
	assert.True(t, strings.Contains(out, "addr=db:6379"))
}

func TestLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger(&bytes.Buffer{}, config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}

// brokenListener panics as soon as it is used.
type brokenListener struct{ net.Listener }

func (brokenListener) Addr() net.Addr { panic("listener has no address") }

func TestServeReportsPanic(t *testing.T) {
	var logs bytes.Buffer
	svc, err := New(context.Background(), testConfig(), WithoutTelemetry(), WithLogOutput(&logs))
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close(context.Background()) })

	err = svc.Serve(context.Background(), brokenListener{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listener has no address")
	assert.Contains(t, logs.String(), "critical failure")
}
