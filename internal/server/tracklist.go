package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"packtrack/internal/models"
	"packtrack/internal/shared"
	"packtrack/internal/tasks"
)

// TracklistHandler serves the reconciled tracklist API for a series.
type TracklistHandler struct {
	engine *tasks.ReconcileEngine
	logger *log.Logger
}

// NewTracklistHandler creates a handler backed by the given engine.
func NewTracklistHandler(engine *tasks.ReconcileEngine, logger *log.Logger) *TracklistHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TracklistHandler{engine: engine, logger: logger}
}

// Routes returns the path patterns this handler serves.
func (h *TracklistHandler) Routes() []string {
	return []string{
		"GET /api/series/{id}/tracklist",
		"POST /api/series/{id}/flags/preexisting",
		"POST /api/series/{id}/flags/irrelevant",
		"POST /api/series/{id}/disc",
		"PUT /api/series/{id}/override",
		"DELETE /api/series/{id}/override",
	}
}

// ServeHTTP dispatches by method and trailing path segment.
func (h *TracklistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	seriesID := r.PathValue("id")

	switch {
	case r.Method == http.MethodGet:
		h.getTracklist(w, r, seriesID)
	case r.Method == http.MethodPost && pathEndsWith(r, "/flags/preexisting"):
		h.postFlags(w, r, seriesID, h.engine.SetPreexistingFlags)
	case r.Method == http.MethodPost && pathEndsWith(r, "/flags/irrelevant"):
		h.postFlags(w, r, seriesID, h.engine.SetIrrelevantFlags)
	case r.Method == http.MethodPost && pathEndsWith(r, "/disc"):
		h.postDisc(w, r, seriesID)
	case r.Method == http.MethodPut:
		h.putOverride(w, r, seriesID)
	case r.Method == http.MethodDelete:
		h.deleteOverride(w, r, seriesID)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func pathEndsWith(r *http.Request, suffix string) bool {
	path := r.URL.Path
	return len(path) >= len(suffix) && path[len(path)-len(suffix):] == suffix
}

func (h *TracklistHandler) getTracklist(w http.ResponseWriter, r *http.Request, seriesID string) {
	items, err := h.engine.Reconcile(r.Context(), nil, seriesID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, items)
}

func (h *TracklistHandler) postFlags(w http.ResponseWriter, r *http.Request, seriesID string, apply func(ctx context.Context, seriesID string, updates []models.FlagUpdate) error) {
	var updates []models.FlagUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeError(w, errors.Join(shared.ErrInvalidInput, err))
		return
	}

	if err := apply(r.Context(), seriesID, updates); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]int{"updated": len(updates)})
}

type discRequest struct {
	DiscNumber int               `json:"disc_number"`
	Action     models.DiscAction `json:"action"`
}

func (h *TracklistHandler) postDisc(w http.ResponseWriter, r *http.Request, seriesID string) {
	var req discRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.Join(shared.ErrInvalidInput, err))
		return
	}

	count, err := h.engine.ApplyDiscAction(r.Context(), seriesID, req.DiscNumber, req.Action)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]int{"updated": count})
}

func (h *TracklistHandler) putOverride(w http.ResponseWriter, r *http.Request, seriesID string) {
	var req models.OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, errors.Join(shared.ErrInvalidInput, err))
		return
	}

	if err := h.engine.SetOverride(r.Context(), seriesID, req); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TracklistHandler) deleteOverride(w http.ResponseWriter, r *http.Request, seriesID string) {
	externalID := r.URL.Query().Get("external_id")
	titleClean := r.URL.Query().Get("title")

	if err := h.engine.DeleteOverride(r.Context(), seriesID, externalID, titleClean); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps domain errors to HTTP status codes: not-found to 404,
// invalid input to 400, upstream failures to 502, everything else 500.
func (h *TracklistHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, shared.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, shared.ErrUpstreamUnavailable):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}

	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *TracklistHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

// LoggingMiddleware logs each request's method, path, status, and duration.
func LoggingMiddleware(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"duration", time.Since(start),
			)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
