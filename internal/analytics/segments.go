package analytics

import (
	"uidpulse/internal/dataset"
)

// SegmentPolicy records how a dataset was split into age segments. It is
// selected once per dataset, not inferred per call.
type SegmentPolicy int

const (
	// SegmentByColumn slices the dataset on a declared age-group column.
	SegmentByColumn SegmentPolicy = iota
	// SingleSegment treats the whole dataset as one implicit segment when no
	// age-group column exists.
	SingleSegment
)

// Age segment labels as they appear in the age-group column of enrolment
// exports.
const (
	SegmentChild = "0-5"
	SegmentYouth = "5-18"
	SegmentAdult = "18+"
)

// Segments is an age-bracket view over one dataset snapshot.
type Segments struct {
	policy  SegmentPolicy
	whole   *dataset.Dataset
	byGroup map[string]*dataset.Dataset
}

// SegmentByAgeGroup partitions the dataset by its age-group column. Without
// such a column the whole dataset becomes a single implicit segment and
// every slice request falls back to it.
func SegmentByAgeGroup(d *dataset.Dataset) *Segments {
	resolver := dataset.NewResolver(d)
	groupCol, ok := resolver.Resolve(dataset.FieldAgeGroup)
	if !ok {
		return &Segments{policy: SingleSegment, whole: d}
	}

	byGroup := make(map[string]*dataset.Dataset)
	for _, row := range d.Rows {
		label := row[groupCol]
		slice, exists := byGroup[label]
		if !exists {
			slice = dataset.New(append([]string(nil), d.Columns...))
			byGroup[label] = slice
		}
		slice.Append(row)
	}
	return &Segments{policy: SegmentByColumn, whole: d, byGroup: byGroup}
}

// Policy reports how the segments were derived.
func (s *Segments) Policy() SegmentPolicy {
	return s.policy
}

// Slice returns the dataset subset for the given age segment. Under the
// single-segment policy every label maps to the whole dataset; under the
// column policy an absent label yields an empty slice.
func (s *Segments) Slice(label string) *dataset.Dataset {
	if s.policy == SingleSegment {
		return s.whole
	}
	if slice, ok := s.byGroup[label]; ok {
		return slice
	}
	return dataset.New(append([]string(nil), s.whole.Columns...))
}
