// Package app assembles the graph service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"runtime/debug"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/DrSkyle/avtan/internal/api"
	"github.com/DrSkyle/avtan/pkg/config"
	"github.com/DrSkyle/avtan/pkg/graph"
	"github.com/DrSkyle/avtan/pkg/kv"
	"github.com/DrSkyle/avtan/pkg/query"
	"github.com/DrSkyle/avtan/pkg/telemetry"
	"github.com/DrSkyle/avtan/pkg/version"
)

// Service owns the graph collection, the key-value store and the HTTP server.
type Service struct {
	Graphs *graph.Collection
	KV     kv.Store
	Logger *slog.Logger
	Tracer trace.Tracer

	config        config.Config
	skipTelemetry bool
	logOutput     io.Writer
	shutdownOtel  func(context.Context) error
	server        *http.Server
}

// Option defines a functional configuration override.
type Option func(*Service)

// New builds a Service from cfg. Options run before any dependency is
// dialed, so a caller-provided store or logger replaces the default one.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	s := &Service{
		Graphs:    graph.NewCollection(),
		Tracer:    otel.Tracer("avtan/app"),
		config:    cfg,
		logOutput: os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.Logger == nil {
		l, err := NewLogger(s.logOutput, cfg.Log)
		if err != nil {
			return nil, err
		}
		s.Logger = l
	}
	slog.SetDefault(s.Logger)

	if !s.skipTelemetry {
		shutdown, err := telemetry.Init(ctx, telemetry.Options{
			ServiceName:    cfg.Telemetry.ServiceName,
			ServiceVersion: version.Current,
			Endpoint:       cfg.Telemetry.Endpoint,
		})
		if err != nil {
			s.Logger.Warn("telemetry disabled", "error", err)
		} else {
			s.shutdownOtel = shutdown
		}
	}

	if s.KV == nil {
		store, err := openStore(cfg.KV)
		if err != nil {
			return nil, err
		}
		s.KV = store
	}

	filters, err := query.NewCompiler()
	if err != nil {
		return nil, err
	}
	srv, err := api.New(api.Deps{
		Graphs:  s.Graphs,
		KV:      s.KV,
		Filters: filters,
		Logger:  s.Logger,
		Tracer:  telemetry.Tracer("avtan/api"),
		Metrics: api.NewMetrics("avtan"),
		Limits: api.Limits{
			MaxDepth: cfg.Traversal.MaxDepth,
			MaxPaths: cfg.Traversal.MaxPaths,
		},
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	if err != nil {
		return nil, err
	}

	s.server = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorLog:     slog.NewLogLogger(s.Logger.Handler(), slog.LevelWarn),
	}
	return s, nil
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.Logger = l
	}
}

// WithLogOutput redirects the default logger.
func WithLogOutput(w io.Writer) Option {
	return func(s *Service) {
		s.logOutput = w
	}
}

// WithKVStore replaces the configured key-value backend.
func WithKVStore(store kv.Store) Option {
	return func(s *Service) {
		s.KV = store
	}
}

// WithoutTelemetry leaves the global tracer provider untouched. Use it when
// embedding the service in a process that already configures OpenTelemetry.
func WithoutTelemetry() Option {
	return func(s *Service) {
		s.skipTelemetry = true
	}
}

func openStore(cfg config.KVConfig) (kv.Store, error) {
	switch cfg.Backend {
	case config.BackendRedis:
		store, err := kv.NewRedisStore(kv.RedisOptions{URL: cfg.RedisURL, Prefix: cfg.RedisPrefix})
		if err != nil {
			return nil, fmt.Errorf("open redis kv store: %w", err)
		}
		return store, nil
	default:
		return kv.NewMemoryStore(), nil
	}
}

// Handler exposes the HTTP handler, mainly for tests.
func (s *Service) Handler() http.Handler { return s.server.Handler }

// Serve accepts connections on ln until ctx is cancelled, then drains
// in-flight requests within the configured shutdown timeout.
func (s *Service) Serve(ctx context.Context, ln net.Listener) (err error) {
	defer s.recoverPanic(ctx, &err)

	ctx, span := s.Tracer.Start(ctx, "Service.Serve",
		trace.WithAttributes(attribute.String("net.listen", ln.Addr().String())))
	defer span.End()

	s.Logger.Info("avtan listening", "addr", ln.Addr().String(), "version", version.Current, "kv_backend", s.config.KV.Backend)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err = <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
	case <-ctx.Done():
		s.Logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.Server.ShutdownTimeout)
		defer cancel()
		err = s.server.Shutdown(shutdownCtx)
		<-errCh
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.config.Server.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Close releases the key-value store and flushes telemetry.
func (s *Service) Close(ctx context.Context) error {
	var errs []error
	if s.KV != nil {
		errs = append(errs, s.KV.Close())
	}
	if s.shutdownOtel != nil {
		errs = append(errs, s.shutdownOtel(ctx))
	}
	return errors.Join(errs...)
}

// recoverPanic turns a panic into *errp and records it on a span.
func (s *Service) recoverPanic(ctx context.Context, errp *error) {
	if r := recover(); r != nil {
		*errp = fmt.Errorf("serve panicked: %v", r)
		_, span := s.Tracer.Start(ctx, "CriticalPanic")
		stack := debug.Stack()
		span.RecordError(fmt.Errorf("%v", r), trace.WithStackTrace(true))
		span.SetStatus(codes.Error, "critical failure")
		span.SetAttributes(attribute.String("crash.reason", fmt.Sprintf("%v", r)))
		span.End()

		s.Logger.Error("critical failure", "error", r, "stack", string(stack))
	}
}
