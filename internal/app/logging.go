package app

import (
	"io"
	"log/slog"

	"github.com/DrSkyle/avtan/pkg/config"
)

// NewLogger builds the service logger from cfg.
func NewLogger(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: redactSensitiveData}
	if cfg.JSON {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

var sensitiveKeys = map[string]bool{
	"password": true, "token": true, "secret": true, "api_key": true,
	"redis_url": true, "auth_token": true, "connection_string": true,
}

// redactSensitiveData scrubs sensitive keys from logs.
func redactSensitiveData(_ []string, a slog.Attr) slog.Attr {
	if sensitiveKeys[a.Key] {
		return slog.String(a.Key, "[REDACTED]")
	}
	return a
}
