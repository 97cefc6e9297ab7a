// Package http implements the REST surface: upload, analytics, dashboard,
// enrolment status lookup, and the assistant endpoint.
package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"uidpulse/internal/analytics"
	apierrors "uidpulse/internal/errors"
	"uidpulse/internal/store"
)

// DataHandler handles upload and analytics HTTP requests
type DataHandler struct {
	service       DataServiceInterface
	maxUploadSize int64
	logger        *slog.Logger
}

// NewDataHandler creates a new data handler
func NewDataHandler(service DataServiceInterface, maxUploadSize int64, logger *slog.Logger) *DataHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = 32 << 20
	}
	return &DataHandler{
		service:       service,
		maxUploadSize: maxUploadSize,
		logger:        logger.With(slog.String("component", "data_handler")),
	}
}

// Routes returns the data routes
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/upload", h.Upload)
	r.Get("/analytics/anomalies", h.GetAnomalies)
	r.Get("/analytics/states", h.GetStateTrends)
	r.Get("/analytics/advanced", h.GetInsights)
	r.Get("/dashboard/summary", h.GetDashboardSummary)
	r.Post("/check-status", h.CheckStatus)

	return r
}

// UploadResponse reports a completed ingest
type UploadResponse struct {
	Success bool   `json:"success"`
	File    string `json:"file"`
	Records int    `json:"records"`
}

// Upload handles POST /api/upload with a multipart "file" part
func (h *DataHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		apierrors.WriteError(w, apierrors.InvalidRequestWithError(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apierrors.WriteError(w, apierrors.ErrValidation("file", "A file part is required"))
		return
	}
	defer file.Close()

	count, err := h.service.Ingest(ctx, header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrFileAlreadyLoaded):
			apierrors.WriteError(w, apierrors.ErrDuplicateFile)
		case isParsingError(err):
			apierrors.WriteError(w, apierrors.NewWithDetails(
				http.StatusBadRequest, "INVALID_FILE_TYPE", "File could not be parsed", err.Error()))
		default:
			h.logger.ErrorContext(ctx, "upload failed",
				slog.String("file", header.Filename),
				slog.String("error", err.Error()))
			apierrors.WriteError(w, apierrors.UploadFailedError(err))
		}
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, UploadResponse{Success: true, File: header.Filename, Records: count})
}

// GetAnomalies handles GET /api/analytics/anomalies
func (h *DataHandler) GetAnomalies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flags, err := h.service.Anomalies(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "anomaly detection failed", slog.String("error", err.Error()))
		apierrors.WriteError(w, apierrors.ErrInternalServer)
		return
	}

	render.JSON(w, r, map[string]any{
		"anomalies": flags,
		"count":     len(flags),
	})
}

// GetStateTrends handles GET /api/analytics/states?period=monthly
func (h *DataHandler) GetStateTrends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	granularity := analytics.ParseGranularity(r.URL.Query().Get("period"))

	rows, err := h.service.StateTrends(ctx, granularity)
	if err != nil {
		h.logger.ErrorContext(ctx, "state trends failed", slog.String("error", err.Error()))
		apierrors.WriteError(w, apierrors.ErrInternalServer)
		return
	}

	render.JSON(w, r, map[string]any{
		"period": granularity,
		"states": rows,
	})
}

// GetInsights handles GET /api/analytics/advanced
func (h *DataHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	insights, err := h.service.Insights(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "insight summary failed", slog.String("error", err.Error()))
		apierrors.WriteError(w, apierrors.ErrInternalServer)
		return
	}

	render.JSON(w, r, insights)
}

// GetDashboardSummary handles GET /api/dashboard/summary
func (h *DataHandler) GetDashboardSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	summary, err := h.service.DashboardSummary(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "dashboard summary failed", slog.String("error", err.Error()))
		apierrors.WriteError(w, apierrors.ErrInternalServer)
		return
	}

	render.JSON(w, r, summary)
}

// StatusRequest asks for the processing status of an enrolment ID
type StatusRequest struct {
	EID string `json:"eid"`
}

// StatusResponse reports the simulated enrolment pipeline position
type StatusResponse struct {
	EID     string `json:"eid"`
	Status  string `json:"status"`
	Step    int    `json:"step"`
	Details string `json:"details"`
}

// CheckStatus handles POST /api/check-status. The lookup is simulated from
// the EID's last digit; there is no real enrolment backend to query.
func (h *DataHandler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		apierrors.WriteError(w, apierrors.InvalidRequestWithError(err))
		return
	}
	if req.EID == "" {
		apierrors.WriteError(w, apierrors.ErrValidation("eid", "EID is required"))
		return
	}

	status, step := simulateStatus(req.EID)
	details := "Your enrolment is currently being processed at the Data Center."
	if status == "Generated" {
		details = "Aadhaar Generated successfully."
	}

	render.JSON(w, r, StatusResponse{
		EID:     req.EID,
		Status:  status,
		Step:    step,
		Details: details,
	})
}

func simulateStatus(eid string) (string, int) {
	switch eid[len(eid)-1] {
	case '1', '2', '3':
		return "Generated", 3
	case '4', '5':
		return "In Process", 1
	case '8', '9':
		return "Rejected", 3
	default:
		return "Validation Stage", 2
	}
}

func isParsingError(err error) bool {
	var appErr *apierrors.AppError
	return errors.As(err, &appErr) && appErr.Type == apierrors.ErrTypeParsing
}
