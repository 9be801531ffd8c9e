// Package httpapi exposes notification actions and read-only worry views over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/example/worrybox/internal/core/worry"
	"github.com/example/worrybox/internal/ctxutil"
	"github.com/example/worrybox/internal/metrics"
	"github.com/example/worrybox/internal/ports/primary"
)

// WorryReader is the subset of primary.WorryService the HTTP layer reads from.
type WorryReader interface {
	Get(ctx context.Context, id string) (*worry.Worry, error)
	List(ctx context.Context, view worry.View) ([]*worry.Worry, error)
	History(ctx context.Context, id string) ([]*primary.Activity, error)
}

// Deps holds everything the router needs.
type Deps struct {
	Worries  WorryReader
	Actions  primary.NotificationActionService
	Metrics  metrics.Recorder
	Gatherer prometheus.Gatherer // nil disables /metrics
	Logger   zerolog.Logger

	RateLimit rate.Limit // requests per second across all clients; 0 disables limiting
	Burst     int
}

// NewRouter builds the chi router.
func NewRouter(d Deps) http.Handler {
	if d.Metrics == nil {
		d.Metrics = metrics.Nop{}
	}
	h := &handler{worries: d.Worries, actions: d.Actions, logger: d.Logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(d.Logger, d.Metrics))
	if d.RateLimit > 0 {
		r.Use(rateLimit(rate.NewLimiter(d.RateLimit, max(d.Burst, 1))))
	}

	r.Get("/healthz", h.health)
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(d.Gatherer))
	}

	r.Route("/worries", func(r chi.Router) {
		r.Get("/", h.listWorries)
		r.Get("/{id}", h.getWorry)
		r.Get("/{id}/history", h.worryHistory)
	})
	r.Post("/notifications/actions", h.notificationAction)

	return r
}

type handler struct {
	worries WorryReader
	actions primary.NotificationActionService
	logger  zerolog.Logger
}

// errorBody is the JSON error response.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// writeServiceError maps domain errors to HTTP statuses.
func (h *handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, worry.ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, worry.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, worry.ErrInvalidContent), errors.Is(err, primary.ErrUnknownAction):
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
	default:
		h.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
	}
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /worries?status=locked|unlocked|resolved|dismissed|released|all
func (h *handler) listWorries(w http.ResponseWriter, r *http.Request) {
	view := worry.View(r.URL.Query().Get("status"))
	if _, ok := worry.FilterFor(view); !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "unknown status "+strconv.Quote(string(view)))
		return
	}
	ws, err := h.worries.List(r.Context(), view)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if ws == nil {
		ws = []*worry.Worry{}
	}
	writeJSON(w, http.StatusOK, ws)
}

// GET /worries/{id}
func (h *handler) getWorry(w http.ResponseWriter, r *http.Request) {
	wr, err := h.worries.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wr)
}

// activityJSON is the wire form of one history entry.
type activityJSON struct {
	Action     string    `json:"action"`
	Source     string    `json:"source,omitempty"`
	FromStatus string    `json:"fromStatus,omitempty"`
	ToStatus   string    `json:"toStatus,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	At         time.Time `json:"at"`
}

// GET /worries/{id}/history
func (h *handler) worryHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.worries.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	out := make([]activityJSON, len(entries))
	for i, e := range entries {
		out[i] = activityJSON{Action: e.Action, Source: e.Source, FromStatus: e.FromStatus, ToStatus: e.ToStatus, Detail: e.Detail, At: e.At}
	}
	writeJSON(w, http.StatusOK, out)
}

// actionRequest is the body of POST /notifications/actions.
type actionRequest struct {
	ActionID string `json:"actionId"`
	WorryID  string `json:"worryId"`
}

// POST /notifications/actions
func (h *handler) notificationAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid JSON body")
		return
	}
	if req.ActionID == "" || req.WorryID == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "actionId and worryId are required")
		return
	}

	ctx := ctxutil.WithSource(r.Context(), ctxutil.SourceNotification)
	if err := h.actions.HandleAction(ctx, req.ActionID, req.WorryID); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
