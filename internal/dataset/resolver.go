package dataset

import "strings"

// Logical field names understood by the resolver. Analytics code asks for
// these instead of hard-coding raw column spellings.
const (
	FieldRegion     = "region"
	FieldSubRegion  = "sub_region"
	FieldDate       = "date"
	FieldEnrolments = "enrolment_count"
	FieldUpdates    = "update_count"
	FieldDemoTotal  = "demographic_total"
	FieldBioTotal   = "biometric_total"
	FieldAgeGroup   = "age_group"
)

// Sub-measure logical fields. The demographic and biometric measures may be
// spread over age-bracket columns instead of a single aggregate column.
const (
	FieldDemoBrackets = "demographic_brackets"
	FieldBioBrackets  = "biometric_brackets"
)

// aliasTable maps each logical field to its accepted raw spellings, in
// priority order. When a dataset carries more than one valid alias the first
// entry here wins; resolution never depends on the dataset's column order.
var aliasTable = map[string][]string{
	FieldRegion:       {"state"},
	FieldSubRegion:    {"district"},
	FieldDate:         {"date"},
	FieldEnrolments:   {"enrolments", "total_enrolments"},
	FieldUpdates:      {"updates", "total_updates"},
	FieldDemoTotal:    {"total_demographic"},
	FieldBioTotal:     {"total_biometric"},
	FieldAgeGroup:     {"age_group"},
	FieldDemoBrackets: {"demo_age_5_17", "demo_age_17_"},
	FieldBioBrackets:  {"bio_age_5_17", "bio_age_17_"},
}

// Resolver maps logical fields to a single dataset's actual column names
// using case-insensitive matching. Construct one per dataset access; the
// case-folding scan over declared columns happens once, in NewResolver.
type Resolver struct {
	byLower map[string]string
}

// NewResolver indexes the dataset's declared columns for resolution.
func NewResolver(d *Dataset) *Resolver {
	byLower := make(map[string]string, len(d.Columns))
	for _, col := range d.Columns {
		key := strings.ToLower(strings.TrimSpace(col))
		if _, exists := byLower[key]; !exists {
			byLower[key] = col
		}
	}
	return &Resolver{byLower: byLower}
}

// Resolve returns the actual column backing the logical field, or false when
// no alias is present. Callers treat false as "this measure or dimension is
// unavailable" and skip the affected computation.
func (r *Resolver) Resolve(field string) (string, bool) {
	for _, alias := range aliasTable[field] {
		if col, ok := r.byLower[alias]; ok {
			return col, true
		}
	}
	return "", false
}

// ResolveAll returns every present alias column for the logical field, in
// alias-priority order. Used for sub-measure columns that are summed row-wise.
func (r *Resolver) ResolveAll(field string) []string {
	var cols []string
	for _, alias := range aliasTable[field] {
		if col, ok := r.byLower[alias]; ok {
			cols = append(cols, col)
		}
	}
	return cols
}
