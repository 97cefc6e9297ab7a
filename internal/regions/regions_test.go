package regions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uidpulse/internal/dataset"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   string
		wantOK bool
	}{
		{"canonical name returned unchanged", "Meghalaya", "Meghalaya", true},
		{"legacy spelling", "orissa", "Odisha", true},
		{"renamed state", "Uttaranchal", "Uttarakhand", true},
		{"spacing variant", "West  Bengal", "West Bengal", true},
		{"ampersand variant", "Jammu & Kashmir", "Jammu and Kashmir", true},
		{"union territory excluded", "Chandigarh", "", false},
		{"union territory spelling excluded", "Pondicherry", "", false},
		{"city entry excluded", "Nagpur", "", false},
		{"numeric junk excluded", "100000", "", false},
		{"unknown label fails closed", "Atlantis", "", false},
		{"empty label", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_ResultIsCanonicalAndIdempotent(t *testing.T) {
	inputs := append([]string(nil), Canonical...)
	inputs = append(inputs, "orissa", "Tamilnadu", "Chhatisgarh", "west bengal", "Delhi", "bogus")

	for _, raw := range inputs {
		got, ok := Normalize(raw)
		if !ok {
			continue
		}
		assert.True(t, IsCanonical(got), "normalize(%q) = %q must be canonical", raw, got)

		again, ok := Normalize(got)
		require.True(t, ok)
		assert.Equal(t, got, again, "normalize must be idempotent for %q", raw)
	}
}

func TestFilterToCanonical(t *testing.T) {
	d := dataset.New([]string{"State", "Enrolments"})
	d.Append(dataset.Record{"State": "Bihar", "Enrolments": "120"})
	d.Append(dataset.Record{"State": "orissa", "Enrolments": "80"})
	d.Append(dataset.Record{"State": "Delhi", "Enrolments": "600"})
	d.Append(dataset.Record{"State": "Atlantis", "Enrolments": "10"})

	filtered := FilterToCanonical(d)

	require.Equal(t, 2, filtered.Len())
	assert.LessOrEqual(t, filtered.Len(), d.Len())
	for _, row := range filtered.Rows {
		assert.True(t, IsCanonical(row["State"]))
	}
	assert.Equal(t, "Bihar", filtered.Rows[0]["State"])
	assert.Equal(t, "Odisha", filtered.Rows[1]["State"])

	// Input rows are untouched.
	assert.Equal(t, "orissa", d.Rows[1]["State"])
}

func TestFilterToCanonical_NoStateColumn(t *testing.T) {
	d := dataset.New([]string{"District", "Enrolments"})
	d.Append(dataset.Record{"District": "Patna", "Enrolments": "120"})

	filtered := FilterToCanonical(d)
	assert.Equal(t, 0, filtered.Len())
	assert.Equal(t, d.Columns, filtered.Columns)
}

func TestStateForDistrict(t *testing.T) {
	assert.Equal(t, "Bihar", StateForDistrict("Patna"))
	assert.Equal(t, "Maharashtra", StateForDistrict("Mumbai"))
	assert.Equal(t, OtherRegion, StateForDistrict("Shelbyville"))
}
