package http

import (
	"context"
	"io"

	"uidpulse/internal/analytics"
	"uidpulse/internal/services"
)

// DataServiceInterface defines the data operations behind the handlers
type DataServiceInterface interface {
	Ingest(ctx context.Context, filename string, r io.Reader) (int, error)
	Anomalies(ctx context.Context) ([]analytics.AnomalyFlag, error)
	StateTrends(ctx context.Context, g analytics.Granularity) ([]analytics.TrendRow, error)
	Insights(ctx context.Context) (analytics.Insights, error)
	DashboardSummary(ctx context.Context) (*services.Summary, error)
	Healthy(ctx context.Context) error
}

// AssistantServiceInterface defines the assistant operations
type AssistantServiceInterface interface {
	Configured() bool
	Ask(ctx context.Context, question string) (string, error)
}
