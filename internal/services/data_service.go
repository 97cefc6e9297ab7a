// Package services implements the business operations behind the HTTP
// handlers: dataset ingestion, analytics runs, and the dashboard summary.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"uidpulse/internal/analytics"
	"uidpulse/internal/dataset"
	"uidpulse/internal/errors"
	"uidpulse/internal/ingest"
	"uidpulse/internal/metrics"
	"uidpulse/internal/store"
)

// DataService coordinates ingestion and analytics over the record store.
// Analytics always run against a fresh snapshot, so results reflect every
// upload completed before the call.
type DataService struct {
	store   *store.Store
	engine  *analytics.Engine
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewDataService creates a DataService.
func NewDataService(st *store.Store, engine *analytics.Engine, m *metrics.Metrics, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{store: st, engine: engine, metrics: m, logger: logger}
}

// Ingest parses an uploaded file, standardizes and enriches its columns, and
// stores the rows. Returns the number of records stored.
func (s *DataService) Ingest(ctx context.Context, filename string, r io.Reader) (int, error) {
	if !ingest.Allowed(filename) {
		s.metrics.UploadsTotal.WithLabelValues("rejected").Inc()
		return 0, errors.NewParsingError(fmt.Sprintf("unsupported file type: %s", filename), nil)
	}

	d, err := ingest.Parse(filename, r)
	if err != nil {
		s.metrics.UploadsTotal.WithLabelValues("failed").Inc()
		return 0, errors.NewParsingError(fmt.Sprintf("parse %s", filename), err)
	}
	ingest.Enrich(d)

	count, err := s.store.InsertDataset(ctx, d, filename)
	if err != nil {
		if err == store.ErrFileAlreadyLoaded {
			s.metrics.UploadsTotal.WithLabelValues("duplicate").Inc()
			return 0, err
		}
		s.metrics.UploadsTotal.WithLabelValues("failed").Inc()
		return 0, errors.NewStorageError(fmt.Sprintf("store %s", filename), err)
	}

	s.metrics.UploadsTotal.WithLabelValues("success").Inc()
	s.metrics.RowsStoredTotal.Add(float64(count))
	s.logger.InfoContext(ctx, "file ingested",
		slog.String("file", filename),
		slog.Int("records", count))
	return count, nil
}

// Anomalies runs z-score detection over the current snapshot.
func (s *DataService) Anomalies(ctx context.Context) ([]analytics.AnomalyFlag, error) {
	d, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	flags := s.engine.DetectAnomalies(ctx, d)
	s.metrics.AnomalyFlagsTotal.Add(float64(len(flags)))
	return flags, nil
}

// StateTrends aggregates enrolment measures per canonical state at the given
// granularity.
func (s *DataService) StateTrends(ctx context.Context, g analytics.Granularity) ([]analytics.TrendRow, error) {
	d, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.StateTrends(ctx, d, g), nil
}

// Insights computes the migration-hub and saturation-gap views.
func (s *DataService) Insights(ctx context.Context) (analytics.Insights, error) {
	d, err := s.snapshot(ctx)
	if err != nil {
		return analytics.Insights{}, err
	}
	return s.engine.Summarize(ctx, d), nil
}

// Summary describes the loaded data for the dashboard.
type Summary struct {
	Stats         *store.Stats `json:"stats"`
	UploadedFiles []string     `json:"uploaded_files"`
}

// DashboardSummary returns record aggregates plus the ingested file list.
func (s *DataService) DashboardSummary(ctx context.Context) (*Summary, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, errors.NewStorageError("dashboard stats", err)
	}
	files, err := s.store.UploadedFiles(ctx)
	if err != nil {
		return nil, errors.NewStorageError("uploaded files", err)
	}
	return &Summary{Stats: stats, UploadedFiles: files}, nil
}

// Healthy reports whether the record store is reachable.
func (s *DataService) Healthy(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// Snapshot exposes the current dataset, used by the assistant service to
// describe the live schema.
func (s *DataService) Snapshot(ctx context.Context) (*dataset.Dataset, error) {
	return s.snapshot(ctx)
}

func (s *DataService) snapshot(ctx context.Context) (*dataset.Dataset, error) {
	d, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, errors.NewStorageError("load snapshot", err)
	}
	return d, nil
}
