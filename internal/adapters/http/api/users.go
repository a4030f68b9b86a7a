package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	service "github.com/okian/arete/internal/app"
	"github.com/okian/arete/internal/domain/model"
	"github.com/okian/arete/internal/domain/progress"
)

// UserDependencies defines the per-user tracking operations.
type UserDependencies interface {
	LogMetric(ctx context.Context, username string, metric model.MetricID, value float64) (service.LogResult, error)
	UpdateGoals(ctx context.Context, username string, goals map[string]float64) (model.Goals, error)
	Dashboard(ctx context.Context, username string) (service.Dashboard, error)
	Progress(ctx context.Context, username string) (service.ProgressReport, error)
	History(ctx context.Context, username string, n int) ([]progress.DayRecord, error)
	Trend(ctx context.Context, username string, n int) ([]progress.DayRecord, error)
}

// UserHandler handles the /users/{username} routes.
type UserHandler struct {
	deps UserDependencies
}

// NewUserHandler creates a new user handler.
func NewUserHandler(deps UserDependencies) *UserHandler {
	return &UserHandler{deps: deps}
}

type logRequest struct {
	Value json.RawMessage `json:"value"`
}

// HandleLogMetric handles POST /users/{username}/metrics/{metric} requests.
// The body is {"value": n}; an empty body logs 0.
func (h *UserHandler) HandleLogMetric(w http.ResponseWriter, r *http.Request) {
	const op = "api.log_metric"
	var req logRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	metric := model.MetricID(chi.URLParam(r, "metric"))
	res, err := h.deps.LogMetric(r.Context(), chi.URLParam(r, "username"), metric, coerceValue(req.Value))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleUpdateGoals handles PUT /users/{username}/goals requests.
func (h *UserHandler) HandleUpdateGoals(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_goals"
	var raw map[string]json.RawMessage
	if err := decodeBody(r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	in := make(map[string]float64, len(raw))
	for k, v := range raw {
		in[k] = coerceValue(v)
	}
	goals, err := h.deps.UpdateGoals(r.Context(), chi.URLParam(r, "username"), in)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// HandleDashboard handles GET /users/{username}/dashboard requests.
func (h *UserHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.dashboard"
	d, err := h.deps.Dashboard(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleProgress handles GET /users/{username}/progress requests.
func (h *UserHandler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	const op = "api.progress"
	p, err := h.deps.Progress(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleHistory handles GET /users/{username}/history?limit=N requests.
func (h *UserHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.history"
	n, err := windowParam(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	records, err := h.deps.History(r.Context(), chi.URLParam(r, "username"), n)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// HandleTrend handles GET /users/{username}/trend?days=N requests.
func (h *UserHandler) HandleTrend(w http.ResponseWriter, r *http.Request) {
	const op = "api.trend"
	n, err := windowParam(r, "days")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	records, err := h.deps.Trend(r.Context(), chi.URLParam(r, "username"), n)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// windowParam reads an optional non-negative integer query parameter.
// Absent means 0, which the service treats as its default window.
func windowParam(r *http.Request, name string) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New(name + " must not be negative")
	}
	return n, nil
}

// coerceValue turns a JSON form value into a number. Numbers pass through,
// numeric strings are parsed, booleans map to 1 and 0, anything else is 0.
func coerceValue(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return t
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
