package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "uidpulse/internal/errors"
)

var validate = validator.New()

// AssistantHandler handles natural-language question requests
type AssistantHandler struct {
	service AssistantServiceInterface
	logger  *slog.Logger
}

// NewAssistantHandler creates a new assistant handler
func NewAssistantHandler(service AssistantServiceInterface, logger *slog.Logger) *AssistantHandler {
	return &AssistantHandler{
		service: service,
		logger:  logger.With(slog.String("component", "assistant_handler")),
	}
}

// Routes returns the assistant routes
func (h *AssistantHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/ask", h.Ask)
	return r
}

// AskRequest carries the user's question
type AskRequest struct {
	Question string `json:"question" validate:"required,min=3,max=2000"`
}

// AskResponse carries the generated analysis code
type AskResponse struct {
	Question string `json:"question"`
	Code     string `json:"code"`
}

// Ask handles POST /api/ask
func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.service.Configured() {
		apierrors.WriteError(w, apierrors.ErrAssistantUnavailable)
		return
	}

	var req AskRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		apierrors.WriteError(w, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := validate.Struct(&req); err != nil {
		apierrors.WriteError(w, apierrors.ErrValidation("question", "Question must be between 3 and 2000 characters"))
		return
	}

	code, err := h.service.Ask(ctx, req.Question)
	if err != nil {
		h.logger.ErrorContext(ctx, "assistant request failed", slog.String("error", err.Error()))
		var appErr *apierrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apierrors.ErrTypeNotFound {
			apierrors.WriteError(w, apierrors.ErrNoDataset)
			return
		}
		apierrors.WriteError(w, apierrors.AssistantError(err))
		return
	}

	render.JSON(w, r, AskResponse{Question: req.Question, Code: code})
}
