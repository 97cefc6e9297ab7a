package analytics

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"uidpulse/internal/dataset"
	"uidpulse/internal/regions"
)

// measure is one of the four aggregated quantities. Its value function
// reports false when the row carries nothing usable for this measure.
type measure struct {
	name      string
	available bool
	value     func(row dataset.Record) (float64, bool)
}

// StateTrends buckets rows by canonical state and time granularity and
// returns per-state totals and series for the four measures. Rows whose
// state fails canonical normalization are dropped; datasets carrying only a
// district column derive the state from a static lookup with an "Other"
// fallback bucket. A missing date column yields an empty result because time
// bucketing is mandatory here.
func (e *Engine) StateTrends(ctx context.Context, d *dataset.Dataset, g Granularity) []TrendRow {
	resolver := dataset.NewResolver(d)

	var working *dataset.Dataset
	var stateCol string
	if col, ok := resolver.Resolve(dataset.FieldRegion); ok {
		working = regions.FilterToCanonical(d)
		stateCol = col
	} else if districtCol, ok := resolver.Resolve(dataset.FieldSubRegion); ok {
		working = deriveStates(d, districtCol)
		stateCol = derivedStateColumn
	} else {
		e.logger.DebugContext(ctx, "state trends skipped: no state or district column")
		return []TrendRow{}
	}

	resolver = dataset.NewResolver(working)
	dateCol, ok := resolver.Resolve(dataset.FieldDate)
	if !ok {
		e.logger.DebugContext(ctx, "state trends skipped: no date column")
		return []TrendRow{}
	}

	measures := []measure{
		directMeasure("enrolments", resolver, dataset.FieldEnrolments),
		directMeasure("updates", resolver, dataset.FieldUpdates),
		summedMeasure("demographic", resolver, dataset.FieldDemoTotal, dataset.FieldDemoBrackets),
		summedMeasure("biometric", resolver, dataset.FieldBioTotal, dataset.FieldBioBrackets),
	}

	// Grouped sums keyed by (state, bucket). Rows with unparseable dates are
	// excluded from bucketing entirely.
	type key struct{ state, bucket string }
	sums := make([]map[key]float64, len(measures))
	for i := range sums {
		sums[i] = make(map[key]float64)
	}
	states := make(map[string]struct{})
	buckets := make(map[string]struct{})

	for _, row := range working.Rows {
		date, ok := row.Date(dateCol)
		if !ok {
			continue
		}
		bucket := bucketKey(date, g)
		state := row[stateCol]
		states[state] = struct{}{}
		buckets[bucket] = struct{}{}
		for i, m := range measures {
			if !m.available {
				continue
			}
			if v, ok := m.value(row); ok {
				sums[i][key{state, bucket}] += v
			}
		}
	}

	bucketList := make([]string, 0, len(buckets))
	for b := range buckets {
		bucketList = append(bucketList, b)
	}
	sort.Strings(bucketList)

	stateList := make([]string, 0, len(states))
	for s := range states {
		stateList = append(stateList, s)
	}
	// Output order is sorted by state name; iteration order would otherwise
	// differ between runs.
	sort.Strings(stateList)

	rows := make([]TrendRow, 0, len(stateList))
	for _, state := range stateList {
		row := TrendRow{State: state}
		timelines := make([]map[string]float64, len(measures))
		totals := make([]float64, len(measures))
		for i, m := range measures {
			timeline := map[string]float64{}
			if m.available {
				// Missing (state, bucket) combinations are filled with zero.
				for _, b := range bucketList {
					v := sums[i][key{state, b}]
					timeline[b] = v
					totals[i] += v
				}
			}
			timelines[i] = timeline
		}
		row.TotalEnrolments = totals[0]
		row.TotalUpdates = totals[1]
		row.TotalDemographic = totals[2]
		row.TotalBiometric = totals[3]
		row.TimelineEnrolments = timelines[0]
		row.TimelineUpdates = timelines[1]
		row.TimelineDemographic = timelines[2]
		row.TimelineBiometric = timelines[3]
		rows = append(rows, row)
	}

	e.logger.InfoContext(ctx, "state trends aggregated",
		slog.String("granularity", string(g)),
		slog.Int("input_rows", d.Len()),
		slog.Int("states", len(rows)),
		slog.Int("buckets", len(bucketList)))
	return rows
}

// derivedStateColumn names the synthetic column added when the state is
// looked up from the district.
const derivedStateColumn = "state"

// deriveStates returns a copy of the dataset with a state column computed
// from the district lookup table. Unknown districts land in the "Other"
// bucket, which is intentionally not subject to canonical filtering.
func deriveStates(d *dataset.Dataset, districtCol string) *dataset.Dataset {
	out := dataset.New(append(append([]string(nil), d.Columns...), derivedStateColumn))
	for _, row := range d.Rows {
		copied := make(dataset.Record, len(row)+1)
		for k, v := range row {
			copied[k] = v
		}
		copied[derivedStateColumn] = regions.StateForDistrict(row[districtCol])
		out.Append(copied)
	}
	return out
}

// bucketKey derives the time-bucket key for a row's date.
func bucketKey(t time.Time, g Granularity) string {
	switch g {
	case Daily:
		return t.Format("2006-01-02")
	case Yearly:
		return t.Format("2006")
	default:
		return t.Format("2006-01")
	}
}

// directMeasure reads a single aggregate column.
func directMeasure(name string, r *dataset.Resolver, field string) measure {
	col, ok := r.Resolve(field)
	if !ok {
		return measure{name: name}
	}
	return measure{
		name:      name,
		available: true,
		value: func(row dataset.Record) (float64, bool) {
			return row.Float(col)
		},
	}
}

// summedMeasure prefers the aggregate column when present and otherwise sums
// the age-bracket sub-columns row-wise.
func summedMeasure(name string, r *dataset.Resolver, totalField, bracketField string) measure {
	if col, ok := r.Resolve(totalField); ok {
		return measure{
			name:      name,
			available: true,
			value: func(row dataset.Record) (float64, bool) {
				return row.Float(col)
			},
		}
	}
	cols := r.ResolveAll(bracketField)
	if len(cols) == 0 {
		return measure{name: name}
	}
	return measure{
		name:      name,
		available: true,
		value: func(row dataset.Record) (float64, bool) {
			sum := 0.0
			any := false
			for _, col := range cols {
				if v, ok := row.Float(col); ok {
					sum += v
					any = true
				}
			}
			return sum, any
		},
	}
}
