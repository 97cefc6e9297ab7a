package dataset

import (
	"strconv"
	"strings"
	"time"
)

// Record is a single row keyed by the dataset's actual column names.
// Cell values are kept as strings until a computation needs them typed.
type Record map[string]string

// Dataset is an ordered tabular snapshot sharing one schema. It is obtained
// fresh per operation from the record store; analytics treat it as immutable.
type Dataset struct {
	Columns []string
	Rows    []Record
}

// New creates an empty dataset with the given column order.
func New(columns []string) *Dataset {
	return &Dataset{Columns: columns, Rows: []Record{}}
}

// Append adds a row to the dataset.
func (d *Dataset) Append(r Record) {
	d.Rows = append(d.Rows, r)
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Clone returns a deep copy. Filters operate on clones so the input snapshot
// is never mutated.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Rows:    make([]Record, 0, len(d.Rows)),
	}
	for _, row := range d.Rows {
		copied := make(Record, len(row))
		for k, v := range row {
			copied[k] = v
		}
		out.Rows = append(out.Rows, copied)
	}
	return out
}

// Float parses the named cell as a number. Returns false for missing cells
// and unparseable values; callers exclude such rows from the computation
// needing the value, not from the dataset.
func (r Record) Float(column string) (float64, bool) {
	raw, ok := r[column]
	if !ok {
		return 0, false
	}
	raw = strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// dateLayouts are tried in order when parsing date cells. The record store
// writes ISO dates, but uploaded files arrive in several regional formats.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
}

// Date parses the named cell as a calendar date. Unparseable values report
// false and the row is excluded from date-scoped computations.
func (r Record) Date(column string) (time.Time, bool) {
	raw, ok := r[column]
	if !ok {
		return time.Time{}, false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
