package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// HealthHandler reports service liveness and store reachability
type HealthHandler struct {
	service   DataServiceInterface
	assistant AssistantServiceInterface
	logger    *slog.Logger
	started   time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service DataServiceInterface, assistant AssistantServiceInterface, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service:   service,
		assistant: assistant,
		logger:    logger.With(slog.String("component", "health_handler")),
		started:   time.Now(),
	}
}

// Routes returns the health routes
func (h *HealthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/status", h.Status)
	return r
}

// StatusReport describes service health
type StatusReport struct {
	Status      string `json:"status"`
	Store       string `json:"store"`
	Records     int64  `json:"records"`
	FilesLoaded int    `json:"files_loaded"`
	Assistant   bool   `json:"assistant_configured"`
	Uptime      string `json:"uptime"`
}

// Status handles GET /api/status
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report := StatusReport{
		Status:    "ok",
		Store:     "ok",
		Assistant: h.assistant.Configured(),
		Uptime:    time.Since(h.started).Round(time.Second).String(),
	}

	if err := h.service.Healthy(ctx); err != nil {
		h.logger.WarnContext(ctx, "store unreachable", slog.String("error", err.Error()))
		report.Status = "degraded"
		report.Store = "unreachable"
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, report)
		return
	}

	if summary, err := h.service.DashboardSummary(ctx); err == nil && summary != nil {
		report.Records = summary.Stats.TotalRecords
		report.FilesLoaded = len(summary.UploadedFiles)
	}

	render.JSON(w, r, report)
}
