package services

import (
	"context"
	"log/slog"
	"strings"

	"uidpulse/internal/errors"
	"uidpulse/internal/llm"
	"uidpulse/internal/metrics"
)

// AssistantService answers natural-language questions about the loaded data
// by generating analysis code. The generated snippet is returned verbatim to
// the caller and never executed here.
type AssistantService struct {
	assistant llm.Assistant
	data      *DataService
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewAssistantService creates an AssistantService. A nil assistant means the
// feature is not configured; Ask then fails fast.
func NewAssistantService(assistant llm.Assistant, data *DataService, m *metrics.Metrics, logger *slog.Logger) *AssistantService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssistantService{assistant: assistant, data: data, metrics: m, logger: logger}
}

// Configured reports whether an assistant backend is available.
func (s *AssistantService) Configured() bool {
	return s.assistant != nil
}

// Ask generates analysis code for a question against the current snapshot.
func (s *AssistantService) Ask(ctx context.Context, question string) (string, error) {
	if s.assistant == nil {
		return "", errors.NewAssistantError("assistant not configured", nil)
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return "", errors.NewAppError(errors.ErrTypeValidation, "question must not be empty", nil)
	}

	d, err := s.data.Snapshot(ctx)
	if err != nil {
		s.metrics.AssistantCalls.WithLabelValues("failed").Inc()
		return "", err
	}
	if d.Len() == 0 {
		s.metrics.AssistantCalls.WithLabelValues("failed").Inc()
		return "", errors.NewNotFoundError("dataset")
	}

	code, err := s.assistant.GenerateCode(ctx, question, d)
	if err != nil {
		s.metrics.AssistantCalls.WithLabelValues("failed").Inc()
		return "", errors.NewAssistantError("generate code", err)
	}

	s.metrics.AssistantCalls.WithLabelValues("success").Inc()
	s.logger.InfoContext(ctx, "assistant answered",
		slog.Int("question_len", len(question)),
		slog.Int("code_len", len(code)))
	return code, nil
}
