// Package api provides the HTTP surface for the generation service.
// It exposes REST endpoints for job management and SSE for progress
// event streaming.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rashkid-n/datagenesis-53/internal/domain"
	"github.com/rashkid-n/datagenesis-53/internal/log"
	"github.com/rashkid-n/datagenesis-53/internal/progress"
	"github.com/rashkid-n/datagenesis-53/internal/service"
)

// Handler provides HTTP endpoints over the generation service.
type Handler struct {
	svc        *service.Service
	bufferSize int

	// defaultRowCount fills in submissions that omit row_count.
	defaultRowCount int
}

// HandlerConfig configures the API handler.
type HandlerConfig struct {
	Service         *service.Service
	EventBufferSize int
	DefaultRowCount int
}

// NewHandler creates an API handler wrapping the given service.
func NewHandler(cfg HandlerConfig) *Handler {
	return &Handler{
		svc:             cfg.Service,
		bufferSize:      cfg.EventBufferSize,
		defaultRowCount: cfg.DefaultRowCount,
	}
}

// Routes returns an http.Handler with all API routes registered.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	// Job management
	mux.HandleFunc("POST /generate", h.Generate)
	mux.HandleFunc("GET /status/{id}", h.Status)
	mux.HandleFunc("DELETE /jobs/{id}", h.Cancel)
	mux.HandleFunc("GET /jobs", h.History)

	// Progress streaming (SSE)
	mux.HandleFunc("GET /events", h.StreamEvents)

	// Operational
	mux.HandleFunc("GET /metrics", h.Metrics)
	mux.HandleFunc("GET /health", h.Health)

	return mux
}

// === Request/Response types ===

// GenerateRequest is the body for POST /generate.
type GenerateRequest struct {
	SourceData  []domain.Row            `json:"source_data,omitempty"`
	Schema      domain.Schema           `json:"schema"`
	Config      domain.GenerationConfig `json:"config"`
	Description string                  `json:"description,omitempty"`

	// Channel ties the submission to an SSE stream opened with the same
	// id, so the submitter gets personal deliveries of its job's events.
	Channel string `json:"channel,omitempty"`
}

// GenerateResponse is the body for a successful submission.
type GenerateResponse struct {
	JobID string `json:"job_id"`
}

// HistoryResponse is the body for GET /jobs.
type HistoryResponse struct {
	Jobs []domain.Job `json:"jobs"`
}

// HealthResponse is the body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the body for all error replies.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// === Handlers ===

// Generate handles POST /generate.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON body", err.Error())
		return
	}
	if len(req.Schema) == 0 {
		h.writeError(w, http.StatusBadRequest, "validation_error", "schema is required", "")
		return
	}
	if req.Config.RowCount < 0 {
		h.writeError(w, http.StatusBadRequest, "validation_error", "config.rowCount must not be negative", "")
		return
	}
	if req.Config.RowCount == 0 {
		req.Config.RowCount = h.defaultRowCount
	}

	jobID, err := h.svc.Submit(r.Context(), service.Request{
		SourceData:   req.SourceData,
		Schema:       req.Schema,
		Config:       req.Config,
		Description:  req.Description,
		OwnerChannel: req.Channel,
	})
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "submit_failed", "Failed to submit job", err.Error())
		return
	}

	h.writeJSON(w, http.StatusAccepted, GenerateResponse{JobID: jobID})
}

// Status handles GET /status/{id}.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.Status(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			h.writeError(w, http.StatusNotFound, "not_found", "Job not found", "")
			return
		}
		h.writeError(w, http.StatusInternalServerError, "status_failed", "Failed to read job status", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, job)
}

// Cancel handles DELETE /jobs/{id}.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Cancel(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		h.writeError(w, http.StatusNotFound, "not_found", "Job not found", "")
	case errors.Is(err, service.ErrJobFinished):
		h.writeError(w, http.StatusConflict, "already_finished", "Job already finished", "")
	case err != nil:
		h.writeError(w, http.StatusInternalServerError, "cancel_failed", "Failed to cancel job", err.Error())
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

// History handles GET /jobs. Accepts ?limit=N.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeError(w, http.StatusBadRequest, "validation_error", "limit must be a non-negative integer", "")
			return
		}
		limit = parsed
	}

	jobs, err := h.svc.History(r.Context(), limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "history_failed", "Failed to list jobs", err.Error())
		return
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	h.writeJSON(w, http.StatusOK, HistoryResponse{Jobs: jobs})
}

// Metrics handles GET /metrics.
func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Metrics(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "metrics_failed", "Failed to read metrics", err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, m)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

// StreamEvents handles GET /events. Accepts ?channel=<id>; without one a
// fresh channel id is assigned, usable only for broadcasts.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	channel := r.URL.Query().Get("channel")
	if channel == "" {
		channel = uuid.New().String()
	}

	conn := progress.NewChanConnection(h.bufferSize)
	h.svc.Attach(channel, conn)
	defer func() {
		h.svc.Detach(channel, conn)
		conn.Close()
	}()

	h.streamEvents(w, r, channel, conn.Events())
}

// === Helpers ===

func (h *Handler) streamEvents(w http.ResponseWriter, r *http.Request, channel string, events <-chan progress.Event) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "streaming_unsupported", "Streaming not supported", "")
		return
	}

	// Tell the client its channel id so it can tie submissions to this stream.
	_, _ = fmt.Fprintf(w, "event: connected\ndata: {\"channel\":%q}\n\n", channel)
	flusher.Flush()

	// Heartbeat ticker to keep connection alive
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Heartbeat comment, not a real event
			_, _ = fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		case event, ok := <-events:
			if !ok {
				return
			}

			data, err := json.Marshal(event)
			if err != nil {
				log.Error(log.CatHTTP, "Failed to marshal event", "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data)
			flusher.Flush()
		}
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error(log.CatHTTP, "Failed to encode JSON response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message, details string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}
