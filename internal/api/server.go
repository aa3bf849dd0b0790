// Package api implements the HTTP layer of the notifier: the event ingestion
// endpoint, health check and metrics scrape. Handlers are methods on *Server.
package api

import (
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/nyashahama/wellness-notifier/internal/metrics"
	"github.com/nyashahama/wellness-notifier/internal/trigger"
)

// Config holds values read from environment variables at startup.
type Config struct {
	// SigningSecret is the shared HMAC secret for X-Event-Signature.
	// Empty disables verification.
	SigningSecret string
}

// Server holds all shared dependencies.
type Server struct {
	// dispatcher fans a decoded event out to the handlers.
	dispatcher trigger.Dispatcher

	validate *validator.Validate
	cfg      Config
	logger   *slog.Logger
}

// NewServer constructs the Server and wires the chi router. The returned
// http.Handler is ready to pass to http.Server.
func NewServer(dispatcher trigger.Dispatcher, cfg Config, logger *slog.Logger) http.Handler {
	s := &Server{
		dispatcher: dispatcher,
		validate:   newValidator(),
		cfg:        cfg,
		logger:     logger,
	}

	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	// ── Global middleware ─────────────────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggerMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// ── Health & metrics ──────────────────────────────────────────────────────
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// ── Events ────────────────────────────────────────────────────────────────
	r.Route("/api/events", func(r chi.Router) {
		r.With(s.requireSignature).Post("/survey-responses", s.handleSurveyResponse)
	})

	return r
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
