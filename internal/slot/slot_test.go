package slot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid(t *testing.T) {
	require.Len(t, All, 18)
	assert.Equal(t, "06:00", All[0])
	assert.Equal(t, "23:00", All[len(All)-1])

	for _, l := range All {
		assert.True(t, Valid(l), "grid label %q must be valid", l)
	}
}

func TestValid(t *testing.T) {
	cases := []struct {
		label string
		want  bool
	}{
		{"06:00", true},
		{"23:00", true},
		{"14:00", true},
		{"05:00", false}, // before opening
		{"24:00", false},
		{"14:30", false}, // not on the hour
		{"9:00", false},  // not fixed width
		{"1400", false},
		{"", false},
		{"ab:00", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Valid(tc.label), "Valid(%q)", tc.label)
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize([]string{"11:00", "09:00", "11:00", "10:00"})
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, got)

	assert.Empty(t, Normalize(nil))
}

func TestIntersect(t *testing.T) {
	reserved := []string{"10:00", "14:00"}

	assert.Empty(t, Intersect([]string{"11:00", "12:00"}, reserved))
	assert.Equal(t, []string{"10:00"}, Intersect([]string{"10:00", "11:00"}, reserved))
	assert.Equal(t, []string{"10:00", "14:00"}, Intersect([]string{"14:00", "10:00"}, reserved))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"", "15/03/2026", "2026-3-15", "2026-03-15T10:00:00Z", "yesterday"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, "ParseDate(%q)", bad)
	}
}

func TestStartTime(t *testing.T) {
	// The anchor is the earliest slot regardless of request order, also for
	// bookings spanning non-contiguous hours.
	start, err := StartTime("2026-03-15", []string{"19:00", "09:00"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC), start)

	_, err = StartTime("2026-03-15", nil)
	assert.Error(t, err)

	_, err = StartTime("not-a-date", []string{"09:00"})
	assert.Error(t, err)
}
