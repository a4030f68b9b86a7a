// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	service "github.com/okian/arete/internal/app"
	"github.com/okian/arete/internal/domain/catalog"
	"github.com/okian/arete/internal/domain/model"
	"github.com/okian/arete/internal/domain/progress"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	StatsProvider

	Login(ctx context.Context, username string) (service.Session, error)
	Logout(ctx context.Context) error
	ActiveUser(ctx context.Context) (string, error)

	LogMetric(ctx context.Context, username string, metric model.MetricID, value float64) (service.LogResult, error)
	UpdateGoals(ctx context.Context, username string, goals map[string]float64) (model.Goals, error)

	Dashboard(ctx context.Context, username string) (service.Dashboard, error)
	Progress(ctx context.Context, username string) (service.ProgressReport, error)
	History(ctx context.Context, username string, n int) ([]progress.DayRecord, error)
	Trend(ctx context.Context, username string, n int) ([]progress.DayRecord, error)

	Catalog() []catalog.MetricDefinition
	Ranks() []catalog.Rank
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	sessionHandler *SessionHandler
	userHandler    *UserHandler
	catalogHandler *CatalogHandler
	allowedOrigins []string
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithAllowedOrigins sets the CORS origins accepted by the router.
func WithAllowedOrigins(origins ...string) ServerOption {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		sessionHandler: NewSessionHandler(deps),
		userHandler:    NewUserHandler(deps),
		catalogHandler: NewCatalogHandler(deps),
		allowedOrigins: []string{"*"},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestID)
	r.Use(CORS(s.allowedOrigins))
	r.NotFound(handleNotFound)

	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	r.Get("/catalog", MetricsMiddleware(s.catalogHandler.HandleCatalog, "catalog"))

	r.Post("/session", MetricsMiddleware(s.sessionHandler.HandleLogin, "session"))
	r.Get("/session", MetricsMiddleware(s.sessionHandler.HandleActive, "session"))
	r.Delete("/session", MetricsMiddleware(s.sessionHandler.HandleLogout, "session"))

	r.Route("/users/{username}", func(ur chi.Router) {
		ur.Get("/dashboard", MetricsMiddleware(s.userHandler.HandleDashboard, "dashboard"))
		ur.Put("/goals", MetricsMiddleware(s.userHandler.HandleUpdateGoals, "goals"))
		ur.Post("/metrics/{metric}", MetricsMiddleware(s.userHandler.HandleLogMetric, "metrics"))
		ur.Get("/progress", MetricsMiddleware(s.userHandler.HandleProgress, "progress"))
		ur.Get("/history", MetricsMiddleware(s.userHandler.HandleHistory, "history"))
		ur.Get("/trend", MetricsMiddleware(s.userHandler.HandleTrend, "trend"))
	})
}

// Handler returns a fresh chi router with every route registered.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeFailure(w, "route", NewKind(r.Method+" "+r.URL.Path, ErrNotFound))
}

// writeFailure maps service errors onto status codes.
func writeFailure(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownMetric), errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, service.ErrNoActiveSession):
		writeError(w, http.StatusNotFound, "no_session", Wrap(op, err))
	case errors.Is(err, service.ErrInvalidUsername), errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
