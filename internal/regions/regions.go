// Package regions canonicalizes free-text state labels to the fixed set of
// 29 Indian states used as aggregation keys. Source files mix official
// names, spelling variants, union territories, and stray district or city
// entries; everything downstream assumes the closed vocabulary, so
// normalization is a mandatory gate rather than an enrichment.
package regions

import (
	"uidpulse/internal/dataset"
)

// Canonical is the closed set of 29 state labels accepted as first-class
// aggregation keys. Jammu and Kashmir is kept for historical datasets.
var Canonical = []string{
	"Andhra Pradesh",
	"Arunachal Pradesh",
	"Assam",
	"Bihar",
	"Chhattisgarh",
	"Goa",
	"Gujarat",
	"Haryana",
	"Himachal Pradesh",
	"Jharkhand",
	"Karnataka",
	"Kerala",
	"Madhya Pradesh",
	"Maharashtra",
	"Manipur",
	"Meghalaya",
	"Mizoram",
	"Nagaland",
	"Odisha",
	"Punjab",
	"Rajasthan",
	"Sikkim",
	"Tamil Nadu",
	"Telangana",
	"Tripura",
	"Uttar Pradesh",
	"Uttarakhand",
	"West Bengal",
	"Jammu and Kashmir",
}

var canonicalSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Canonical))
	for _, s := range Canonical {
		set[s] = struct{}{}
	}
	return set
}()

// variations maps known label variants to their canonical name. An empty
// value marks a label that is recognized but outside the canonical set
// (union territories, districts, cities); such rows are excluded from
// state-scoped aggregation rather than guessed at.
var variations = map[string]string{
	// Odisha
	"orissa": "Odisha",
	"ODISHA": "Odisha",
	"odisha": "Odisha",

	// West Bengal
	"west bengal":  "West Bengal",
	"West Bangal":  "West Bengal",
	"West  Bengal": "West Bengal",
	"Westbengal":   "West Bengal",
	"WEST BENGAL":  "West Bengal",
	"WESTBENGAL":   "West Bengal",
	"West Bengli":  "West Bengal",
	"west Bengal":  "West Bengal",

	// Chhattisgarh
	"Chhatisgarh": "Chhattisgarh",

	// Uttarakhand
	"Uttaranchal": "Uttarakhand",

	// Tamil Nadu
	"Tamilnadu": "Tamil Nadu",

	// Andhra Pradesh
	"andhra pradesh": "Andhra Pradesh",

	// Jammu and Kashmir
	"Jammu & Kashmir": "Jammu and Kashmir",

	// Union territories, excluded from the canonical set
	"Puducherry":  "",
	"Pondicherry": "",
	"Delhi":       "",
	"Chandigarh":  "",
	"Andaman and Nicobar Islands": "",
	"Andaman & Nicobar Islands":   "",
	"Ladakh":      "",
	"Lakshadweep": "",
	"Daman and Diu": "",
	"Daman & Diu":   "",
	"Dadra and Nagar Haveli and Daman and Diu": "",
	"Dadra and Nagar Haveli":                   "",
	"Dadra & Nagar Haveli":                     "",

	// Districts and cities seen in uploads, not states at all
	"Darbhanga":           "",
	"Jaipur":              "",
	"Madanapalle":         "",
	"Puttenahalli":        "",
	"Nagpur":              "",
	"Raja Annamalai Puram": "",
	"BALANAGAR":           "",
	"100000":              "",
}

// Normalize maps a raw state label to its canonical form. The second return
// is false when the label is empty, recognized as a non-state entry, or
// unknown; unknown labels are excluded, never guessed.
func Normalize(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if _, ok := canonicalSet[raw]; ok {
		return raw, true
	}
	if mapped, ok := variations[raw]; ok {
		if mapped == "" {
			return "", false
		}
		return mapped, true
	}
	return "", false
}

// IsCanonical reports whether the label is a member of the canonical set.
func IsCanonical(label string) bool {
	_, ok := canonicalSet[label]
	return ok
}

// FilterToCanonical returns a new dataset holding only the rows whose state
// label normalizes to a canonical name, with the label replaced by that
// name. The input dataset is not mutated. When no state column resolves, no
// row can qualify and the result is empty.
func FilterToCanonical(d *dataset.Dataset) *dataset.Dataset {
	out := dataset.New(append([]string(nil), d.Columns...))
	resolver := dataset.NewResolver(d)
	stateCol, ok := resolver.Resolve(dataset.FieldRegion)
	if !ok {
		return out
	}
	for _, row := range d.Rows {
		canonical, ok := Normalize(row[stateCol])
		if !ok {
			continue
		}
		copied := make(dataset.Record, len(row))
		for k, v := range row {
			copied[k] = v
		}
		copied[stateCol] = canonical
		out.Append(copied)
	}
	return out
}

// districtStates maps districts to their state for datasets that carry only
// a district column. Unknown districts fall back to OtherRegion; this path
// is deliberately looser than canonical normalization.
var districtStates = map[string]string{
	"Patna":       "Bihar",
	"Gaya":        "Bihar",
	"Muzaffarpur": "Bihar",
	"Purnia":      "Bihar",
	"Delhi_NCR":   "Delhi",
	"Mumbai":      "Maharashtra",
	"Pune":        "Maharashtra",
	"Bangalore":   "Karnataka",
	"Lucknow":     "Uttar Pradesh",
	"Varanasi":    "Uttar Pradesh",
	"Jaipur":      "Rajasthan",
}

// OtherRegion is the bucket for districts without a known state mapping.
const OtherRegion = "Other"

// StateForDistrict returns the state a district belongs to, or OtherRegion
// when the district is not in the lookup table.
func StateForDistrict(district string) string {
	if state, ok := districtStates[district]; ok {
		return state
	}
	return OtherRegion
}
