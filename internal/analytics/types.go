package analytics

// AnomalyFlag marks a single row whose enrolment count deviates from its
// group by more than the detection threshold. Flags are derived fresh on
// every call and never persisted.
type AnomalyFlag struct {
	Region     string  `json:"region"`
	Date       string  `json:"date"`
	Enrolments float64 `json:"enrolments"`
	Severity   string  `json:"severity"`
	Reason     string  `json:"reason"`
}

// Granularity selects the time-bucket resolution for trend series.
type Granularity string

const (
	Daily   Granularity = "daily"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// ParseGranularity maps a request parameter to a Granularity, defaulting to
// monthly for empty or unknown values.
func ParseGranularity(s string) Granularity {
	switch Granularity(s) {
	case Daily, Yearly:
		return Granularity(s)
	default:
		return Monthly
	}
}

// TrendRow is the per-state aggregate emitted by StateTrends: four measure
// totals plus a time-bucket series for each measure.
type TrendRow struct {
	State               string             `json:"state"`
	TotalEnrolments     float64            `json:"total_enrolments"`
	TotalUpdates        float64            `json:"total_updates"`
	TotalDemographic    float64            `json:"total_demographic"`
	TotalBiometric      float64            `json:"total_biometric"`
	TimelineEnrolments  map[string]float64 `json:"timeline_enrolments"`
	TimelineUpdates     map[string]float64 `json:"timeline_updates"`
	TimelineDemographic map[string]float64 `json:"timeline_demographic"`
	TimelineBiometric   map[string]float64 `json:"timeline_biometric"`
}

// RegionTotal pairs a region label with a summed measure, used by the
// top-k/bottom-k insight views.
type RegionTotal struct {
	Region string  `json:"region"`
	Total  float64 `json:"total"`
}

// Insights holds the two fixed societal trend views.
type Insights struct {
	MigrationHubs  []RegionTotal `json:"migration_hubs"`
	SaturationGaps []RegionTotal `json:"saturation_gaps"`
}
