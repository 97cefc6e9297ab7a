package analytics

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uidpulse/internal/dataset"
)

func TestSegmentByAgeGroup_Policies(t *testing.T) {
	withColumn := dataset.New([]string{"district", "age_group", "updates"})
	withColumn.Append(dataset.Record{"district": "Patna", "age_group": SegmentAdult, "updates": "40"})
	withColumn.Append(dataset.Record{"district": "Patna", "age_group": SegmentChild, "updates": "5"})

	segments := SegmentByAgeGroup(withColumn)
	assert.Equal(t, SegmentByColumn, segments.Policy())
	assert.Equal(t, 1, segments.Slice(SegmentAdult).Len())
	assert.Equal(t, 1, segments.Slice(SegmentChild).Len())
	assert.Equal(t, 0, segments.Slice(SegmentYouth).Len())

	without := dataset.New([]string{"district", "updates"})
	without.Append(dataset.Record{"district": "Patna", "updates": "40"})

	segments = SegmentByAgeGroup(without)
	assert.Equal(t, SingleSegment, segments.Policy())
	// Every label falls back to the whole dataset.
	assert.Equal(t, 1, segments.Slice(SegmentAdult).Len())
	assert.Equal(t, 1, segments.Slice(SegmentChild).Len())
}

func TestSummarize_FallbackUsesWholeDataset(t *testing.T) {
	d := dataset.New([]string{"district", "enrolments", "updates"})
	for i, district := range []string{"Patna", "Gaya", "Mumbai", "Pune", "Lucknow", "Jaipur", "Bangalore"} {
		d.Append(dataset.Record{
			"district":   district,
			"enrolments": strconv.Itoa((i + 1) * 100),
			"updates":    strconv.Itoa((7 - i) * 10),
		})
	}

	insights := testEngine().Summarize(context.Background(), d)

	assert.LessOrEqual(t, len(insights.MigrationHubs), 5)
	assert.LessOrEqual(t, len(insights.SaturationGaps), 5)
	require.Len(t, insights.MigrationHubs, 5)
	require.Len(t, insights.SaturationGaps, 5)

	// Hubs sorted descending by update sum, gaps ascending by enrolment sum.
	assert.Equal(t, "Patna", insights.MigrationHubs[0].Region)
	assert.Equal(t, 70.0, insights.MigrationHubs[0].Total)
	assert.Equal(t, "Patna", insights.SaturationGaps[0].Region)
	assert.Equal(t, 100.0, insights.SaturationGaps[0].Total)

	for i := 1; i < len(insights.MigrationHubs); i++ {
		assert.GreaterOrEqual(t, insights.MigrationHubs[i-1].Total, insights.MigrationHubs[i].Total)
	}
	for i := 1; i < len(insights.SaturationGaps); i++ {
		assert.LessOrEqual(t, insights.SaturationGaps[i-1].Total, insights.SaturationGaps[i].Total)
	}
}

func TestSummarize_SegmentedDataset(t *testing.T) {
	d := dataset.New([]string{"district", "age_group", "enrolments", "updates"})
	// Adult rows drive migration hubs.
	d.Append(dataset.Record{"district": "Mumbai", "age_group": SegmentAdult, "updates": "200", "enrolments": "50"})
	d.Append(dataset.Record{"district": "Patna", "age_group": SegmentAdult, "updates": "40", "enrolments": "30"})
	// Child rows drive saturation gaps.
	d.Append(dataset.Record{"district": "Gaya", "age_group": SegmentChild, "updates": "1", "enrolments": "10"})
	d.Append(dataset.Record{"district": "Pune", "age_group": SegmentChild, "updates": "2", "enrolments": "90"})

	insights := testEngine().Summarize(context.Background(), d)

	require.Len(t, insights.MigrationHubs, 2)
	assert.Equal(t, "Mumbai", insights.MigrationHubs[0].Region)
	assert.Equal(t, 200.0, insights.MigrationHubs[0].Total)

	require.Len(t, insights.SaturationGaps, 2)
	assert.Equal(t, "Gaya", insights.SaturationGaps[0].Region)
	assert.Equal(t, 10.0, insights.SaturationGaps[0].Total)
}

func TestSummarize_TieBrokenByRegionLabel(t *testing.T) {
	d := dataset.New([]string{"district", "updates", "enrolments"})
	d.Append(dataset.Record{"district": "Zanskar", "updates": "50", "enrolments": "50"})
	d.Append(dataset.Record{"district": "Alwar", "updates": "50", "enrolments": "50"})

	insights := testEngine().Summarize(context.Background(), d)

	require.Len(t, insights.MigrationHubs, 2)
	assert.Equal(t, "Alwar", insights.MigrationHubs[0].Region)
	assert.Equal(t, "Zanskar", insights.MigrationHubs[1].Region)
}

func TestSummarize_MissingColumnsYieldEmptyViews(t *testing.T) {
	tests := []struct {
		name      string
		columns   []string
		wantHubs  int
		wantGaps  int
	}{
		{"no measure columns", []string{"district", "date"}, 0, 0},
		{"no region column", []string{"enrolments", "updates"}, 0, 0},
		{"only enrolments", []string{"district", "enrolments"}, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dataset.New(tt.columns)
			rec := dataset.Record{}
			for _, c := range tt.columns {
				rec[c] = "1"
			}
			rec["district"] = "Patna"
			d.Append(rec)

			insights := testEngine().Summarize(context.Background(), d)
			assert.Len(t, insights.MigrationHubs, tt.wantHubs)
			assert.Len(t, insights.SaturationGaps, tt.wantGaps)
		})
	}
}

func TestSummarize_EmptyDataset(t *testing.T) {
	d := dataset.New([]string{"district", "updates", "enrolments"})
	insights := testEngine().Summarize(context.Background(), d)
	assert.Empty(t, insights.MigrationHubs)
	assert.Empty(t, insights.SaturationGaps)
}
