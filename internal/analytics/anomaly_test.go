package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uidpulse/internal/dataset"
)

func testEngine() *Engine {
	return NewEngine(slog.Default())
}

func TestDetectAnomalies_SingleRowGroupsNeverFlag(t *testing.T) {
	d := dataset.New([]string{"District", "Enrolments"})
	d.Append(dataset.Record{"District": "Patna", "Enrolments": "120"})
	d.Append(dataset.Record{"District": "Gaya", "Enrolments": "110"})
	d.Append(dataset.Record{"District": "Delhi_NCR", "Enrolments": "600"})
	d.Append(dataset.Record{"District": "Mumbai", "Enrolments": "5000"})

	flags := testEngine().DetectAnomalies(context.Background(), d)
	assert.Empty(t, flags)
}

func TestDetectAnomalies_ZeroVarianceGroupNeverFlags(t *testing.T) {
	d := dataset.New([]string{"district", "enrolments"})
	for i := 0; i < 20; i++ {
		d.Append(dataset.Record{"district": "Patna", "enrolments": "100"})
	}

	flags := testEngine().DetectAnomalies(context.Background(), d)
	assert.Empty(t, flags)
}

func TestDetectAnomalies_FlagsSpike(t *testing.T) {
	d := dataset.New([]string{"district", "enrolments", "date"})
	for i := 0; i < 12; i++ {
		d.Append(dataset.Record{
			"district":   "Patna",
			"enrolments": "100",
			"date":       fmt.Sprintf("2024-01-%02d", i+1),
		})
	}
	d.Append(dataset.Record{"district": "Patna", "enrolments": "500", "date": "2024-01-20"})

	flags := testEngine().DetectAnomalies(context.Background(), d)

	require.Len(t, flags, 1)
	flag := flags[0]
	assert.Equal(t, "Patna", flag.Region)
	assert.Equal(t, "2024-01-20", flag.Date)
	assert.Equal(t, 500.0, flag.Enrolments)
	assert.Equal(t, "High", flag.Severity)
	assert.Regexp(t, `^Spike of \d+\.\d{2}x standard deviation detected\.$`, flag.Reason)
}

func TestDetectAnomalies_MissingColumnsYieldEmpty(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
	}{
		{"no region column", []string{"enrolments", "date"}},
		{"no enrolment column", []string{"district", "date"}},
		{"empty dataset", []string{"district", "enrolments"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dataset.New(tt.columns)
			flags := testEngine().DetectAnomalies(context.Background(), d)
			assert.NotNil(t, flags)
			assert.Empty(t, flags)
		})
	}
}

func TestDetectAnomalies_UnresolvedDateUsesPlaceholder(t *testing.T) {
	d := dataset.New([]string{"district", "enrolments"})
	for i := 0; i < 12; i++ {
		d.Append(dataset.Record{"district": "Gaya", "enrolments": "50"})
	}
	d.Append(dataset.Record{"district": "Gaya", "enrolments": "400"})

	flags := testEngine().DetectAnomalies(context.Background(), d)
	require.Len(t, flags, 1)
	assert.Equal(t, "N/A", flags[0].Date)
}

func TestDetectAnomalies_SkipsUnparseableValues(t *testing.T) {
	d := dataset.New([]string{"district", "enrolments"})
	for i := 0; i < 12; i++ {
		d.Append(dataset.Record{"district": "Pune", "enrolments": "80"})
	}
	d.Append(dataset.Record{"district": "Pune", "enrolments": "not-a-number"})
	d.Append(dataset.Record{"district": "Pune", "enrolments": "600"})

	flags := testEngine().DetectAnomalies(context.Background(), d)
	require.Len(t, flags, 1)
	assert.Equal(t, 600.0, flags[0].Enrolments)
}

func TestSampleStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	m := mean(values)
	assert.InDelta(t, 5.0, m, 1e-9)
	// ddof=1: variance 32/7
	assert.InDelta(t, 2.13809, sampleStdDev(values, m), 1e-4)

	assert.Zero(t, sampleStdDev([]float64{42}, 42))
	assert.Zero(t, sampleStdDev(nil, 0))
}
