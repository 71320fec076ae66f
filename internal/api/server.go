// Package api exposes the brand kit engine over HTTP.
//
// Routes:
//
//	GET  /v1/kits/{userID}            fetch a user's kit
//	PUT  /v1/kits/{userID}            replace a user's kit
//	POST /v1/kits/{userID}/composite  apply the kit to one image
//	POST /v1/kits/{userID}/batch      apply the kit to up to ten images
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/brandkit/pkg/batch"
	"github.com/matzehuels/brandkit/pkg/compose"
	"github.com/matzehuels/brandkit/pkg/kitstore"
)

// Server wires the engine packages behind an HTTP handler.
type Server struct {
	store        kitstore.Store
	compositor   *compose.Compositor
	orchestrator *batch.Orchestrator
	logger       *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates the API server.
func NewServer(store kitstore.Store, compositor *compose.Compositor, orchestrator *batch.Orchestrator, opts ...Option) *Server {
	s := &Server{
		store:        store,
		compositor:   compositor,
		orchestrator: orchestrator,
		logger:       log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1/kits/{userID}", func(r chi.Router) {
		r.Get("/", s.handleGetKit)
		r.Put("/", s.handlePutKit)
		r.Post("/composite", s.handleComposite)
		r.Post("/batch", s.handleBatch)
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
