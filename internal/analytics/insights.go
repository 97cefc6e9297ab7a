package analytics

import (
	"context"
	"log/slog"
	"sort"

	"uidpulse/internal/dataset"
)

// insightLimit caps each societal trend view at five regions.
const insightLimit = 5

// Summarize derives the two fixed societal trend views: regions with the
// heaviest address-update activity in the adult segment (migration hubs) and
// regions with the lowest child enrolment (saturation gaps). An unresolvable
// column leaves the affected view empty, never fails the call.
func (e *Engine) Summarize(ctx context.Context, d *dataset.Dataset) Insights {
	segments := SegmentByAgeGroup(d)

	insights := Insights{
		MigrationHubs:  topRegions(segments.Slice(SegmentAdult), dataset.FieldUpdates, false),
		SaturationGaps: topRegions(segments.Slice(SegmentChild), dataset.FieldEnrolments, true),
	}

	e.logger.InfoContext(ctx, "societal insights summarized",
		slog.Int("rows", d.Len()),
		slog.Bool("segmented", segments.Policy() == SegmentByColumn),
		slog.Int("migration_hubs", len(insights.MigrationHubs)),
		slog.Int("saturation_gaps", len(insights.SaturationGaps)))
	return insights
}

// topRegions sums the measure per region and returns the five largest (or
// smallest, when ascending) totals. Ordering is deterministic: totals first,
// region label as the tiebreak.
func topRegions(d *dataset.Dataset, measureField string, ascending bool) []RegionTotal {
	resolver := dataset.NewResolver(d)
	groupCol, ok := resolver.Resolve(dataset.FieldSubRegion)
	if !ok {
		groupCol, ok = resolver.Resolve(dataset.FieldRegion)
	}
	if !ok {
		return []RegionTotal{}
	}
	measureCol, ok := resolver.Resolve(measureField)
	if !ok {
		return []RegionTotal{}
	}

	sums := make(map[string]float64)
	for _, row := range d.Rows {
		if v, ok := row.Float(measureCol); ok {
			sums[row[groupCol]] += v
		}
	}

	totals := make([]RegionTotal, 0, len(sums))
	for region, total := range sums {
		totals = append(totals, RegionTotal{Region: region, Total: total})
	}
	sort.Slice(totals, func(i, j int) bool {
		if totals[i].Total != totals[j].Total {
			if ascending {
				return totals[i].Total < totals[j].Total
			}
			return totals[i].Total > totals[j].Total
		}
		return totals[i].Region < totals[j].Region
	})

	if len(totals) > insightLimit {
		totals = totals[:insightLimit]
	}
	return totals
}
