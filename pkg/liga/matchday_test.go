package liga

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMatchdayNumber(t *testing.T) {
	cases := []struct {
		identifier string
		want       int
		ok         bool
	}{
		{"spieltag-7_xg.csv", 7, true},
		{"Spieltag 12", 12, true},
		{"matchday-3", 3, true},
		{"MATCHDAY_21", 21, true},
		{"round-38", 38, true},
		{"3-matchday", 3, true},
		{"14 round", 14, true},
		{"spieltag-1_fixtures.csv", 1, true},
		{"fixtures.10.csv", 10, true},
		{"data_5_final", 5, true},

		{"spieltag-0_xg.csv", 0, false},
		{"season_xp.csv", 0, false},
		{"fixtures.csv", 0, false},
		{"", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.identifier, func(t *testing.T) {
			got, ok := ParseMatchdayNumber(tc.identifier)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

// The keyword patterns win over a bare digit run elsewhere in the name
func TestParseMatchdayNumberPrefersKeyword(t *testing.T) {
	got, ok := ParseMatchdayNumber("2025_spieltag-9_xg.csv")
	assert.True(t, ok)
	assert.Equal(t, 9, got)
}
