package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"uidpulse/internal/dataset"
)

// zScoreThreshold is the deviation above which a row is flagged. Matches the
// operational tuning for spotting fraud and data-entry errors in enrolment
// feeds.
const zScoreThreshold = 2.5

// Engine runs the aggregation and anomaly-detection pipeline over a dataset
// snapshot. All methods are pure functions of their inputs; the enclosing
// service is responsible for passing a consistent snapshot.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates an analytics engine. A nil logger falls back to the
// process default.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// DetectAnomalies flags rows whose enrolment count deviates from the mean of
// their region group by more than the threshold, using the sample standard
// deviation. Groups use the district column when present, falling back to
// the state column. A missing group or enrolment column yields an empty
// result, never an error.
func (e *Engine) DetectAnomalies(ctx context.Context, d *dataset.Dataset) []AnomalyFlag {
	resolver := dataset.NewResolver(d)

	groupCol, ok := resolver.Resolve(dataset.FieldSubRegion)
	if !ok {
		groupCol, ok = resolver.Resolve(dataset.FieldRegion)
	}
	if !ok {
		e.logger.DebugContext(ctx, "anomaly detection skipped: no region column")
		return []AnomalyFlag{}
	}
	enrolCol, ok := resolver.Resolve(dataset.FieldEnrolments)
	if !ok {
		e.logger.DebugContext(ctx, "anomaly detection skipped: no enrolment column")
		return []AnomalyFlag{}
	}
	dateCol, hasDate := resolver.Resolve(dataset.FieldDate)

	type groupStats struct {
		values []float64
		mean   float64
		std    float64
	}
	groups := make(map[string]*groupStats)
	for _, row := range d.Rows {
		value, ok := row.Float(enrolCol)
		if !ok {
			continue
		}
		key := row[groupCol]
		g, exists := groups[key]
		if !exists {
			g = &groupStats{}
			groups[key] = g
		}
		g.values = append(g.values, value)
	}

	for _, g := range groups {
		g.mean = mean(g.values)
		g.std = sampleStdDev(g.values, g.mean)
	}

	flags := []AnomalyFlag{}
	for _, row := range d.Rows {
		value, ok := row.Float(enrolCol)
		if !ok {
			continue
		}
		g := groups[row[groupCol]]
		std := g.std
		if std == 0 {
			// Zero-variance groups never flag: no variance means no
			// informative outlier. Substituting 1 avoids the division.
			std = 1
		}
		z := (value - g.mean) / std
		if z <= zScoreThreshold {
			continue
		}
		date := "N/A"
		if hasDate {
			if raw := row[dateCol]; raw != "" {
				date = raw
			}
		}
		flags = append(flags, AnomalyFlag{
			Region:     row[groupCol],
			Date:       date,
			Enrolments: value,
			Severity:   "High",
			Reason:     fmt.Sprintf("Spike of %.2fx standard deviation detected.", z),
		})
	}

	e.logger.InfoContext(ctx, "anomaly detection completed",
		slog.Int("rows", d.Len()),
		slog.Int("groups", len(groups)),
		slog.Int("flags", len(flags)))
	return flags
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev computes the ddof=1 standard deviation. Single-value groups
// have no defined sample deviation and report 0, which the caller treats as
// the zero-variance case.
func sampleStdDev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		diff := v - mean
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
