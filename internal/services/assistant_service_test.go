package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uidpulse/internal/dataset"
	"uidpulse/internal/metrics"
)

type stubAssistant struct {
	code string
	err  error
}

func (s *stubAssistant) GenerateCode(ctx context.Context, question string, d *dataset.Dataset) (string, error) {
	return s.code, s.err
}

func TestAssistantService_Ask(t *testing.T) {
	data := newDataService(t)
	ctx := context.Background()
	_, err := data.Ingest(ctx, "january.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	svc := NewAssistantService(&stubAssistant{code: "result = 1"}, data, metrics.New(), slog.Default())

	code, err := svc.Ask(ctx, "how many enrolments?")
	require.NoError(t, err)
	assert.Equal(t, "result = 1", code)
}

func TestAssistantService_Ask_EmptyQuestion(t *testing.T) {
	data := newDataService(t)
	svc := NewAssistantService(&stubAssistant{}, data, metrics.New(), slog.Default())

	_, err := svc.Ask(context.Background(), "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "question must not be empty")
}

func TestAssistantService_Ask_NoDataset(t *testing.T) {
	data := newDataService(t)
	svc := NewAssistantService(&stubAssistant{code: "result = 1"}, data, metrics.New(), slog.Default())

	_, err := svc.Ask(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset not found")
}

func TestAssistantService_Ask_BackendError(t *testing.T) {
	data := newDataService(t)
	ctx := context.Background()
	_, err := data.Ingest(ctx, "january.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	svc := NewAssistantService(&stubAssistant{err: fmt.Errorf("quota exceeded")}, data, metrics.New(), slog.Default())

	_, err = svc.Ask(ctx, "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestAssistantService_NotConfigured(t *testing.T) {
	svc := NewAssistantService(nil, newDataService(t), metrics.New(), slog.Default())
	assert.False(t, svc.Configured())

	_, err := svc.Ask(context.Background(), "anything")
	assert.Error(t, err)
}
