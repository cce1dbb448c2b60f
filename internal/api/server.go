// Package api exposes graphs and the key-value store over HTTP and WebSocket.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/DrSkyle/avtan/pkg/graph"
	"github.com/DrSkyle/avtan/pkg/kv"
	"github.com/DrSkyle/avtan/pkg/query"
)

// Limits bounds the cost of traversal requests.
type Limits struct {
	MaxDepth int
	MaxPaths int
}

// Deps are the collaborators a Server needs. Graphs and KV are required.
type Deps struct {
	Graphs         *graph.Collection
	KV             kv.Store
	Filters        *query.Compiler
	Logger         *slog.Logger
	Tracer         trace.Tracer
	Metrics        *Metrics
	Limits         Limits
	AllowedOrigins []string
}

// Server holds the handlers. Build one with New and mount Handler().
type Server struct {
	graphs   *graph.Collection
	kv       kv.Store
	filters  *query.Compiler
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *Metrics
	limits   Limits
	origins  []string
	validate *validator.Validate
}

func New(d Deps) (*Server, error) {
	s := &Server{
		graphs:   d.Graphs,
		kv:       d.KV,
		filters:  d.Filters,
		logger:   d.Logger,
		tracer:   d.Tracer,
		metrics:  d.Metrics,
		limits:   d.Limits,
		origins:  d.AllowedOrigins,
		validate: newValidator(),
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("avtan/api")
	}
	if s.metrics == nil {
		s.metrics = NewMetrics("avtan")
	}
	if s.filters == nil {
		f, err := query.NewCompiler()
		if err != nil {
			return nil, err
		}
		s.filters = f
	}
	if s.limits.MaxDepth <= 0 {
		s.limits.MaxDepth = graph.DefaultMaxPathDepth
	}
	if s.limits.MaxPaths <= 0 {
		s.limits.MaxPaths = graph.DefaultPathLimit
	}
	if len(s.origins) == 0 {
		s.origins = []string{"*"}
	}
	s.metrics.graphs.Set(float64(s.graphs.Len()))
	return s, nil
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.recoverer)
	r.Use(s.requestLogger)
	r.Use(s.instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health)
	r.Handle("/metrics", s.metrics.Handler())

	r.Route("/graphs", func(r chi.Router) {
		r.Post("/", s.createGraph)
		r.Get("/", s.listGraphs)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.graphStats)
			r.Delete("/", s.deleteGraph)
			r.Post("/nodes", s.addNode)
			r.Get("/nodes/{id}", s.getNode)
			r.Post("/nodes/lookup", s.lookupNodes)
			r.Post("/nodes/search", s.searchNodes)
			r.Post("/bonds", s.addBond)
			r.Post("/traverse", s.traverse)
			r.Post("/paths", s.paths)
		})
	})

	r.Route("/kv", func(r chi.Router) {
		r.Get("/keys", s.kvKeys)
		r.Route("/values/{key}", func(r chi.Router) {
			r.Post("/", s.kvAdd)
			r.Get("/", s.kvGet)
			r.Put("/", s.kvUpdate)
			r.Delete("/", s.kvRemove)
		})
	})
	r.Get("/ws/kv", s.kvSocket)

	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
