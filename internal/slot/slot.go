// Package slot defines the canonical hourly booking grid.
//
// A slot is one bookable hour on a fixed daily grid, identified by its
// fixed-width 24-hour start label ("06:00" .. "23:00"). Each label stands for
// the interval [start, start+1h). Because slots are discrete atomic units on a
// shared grid, conflict detection reduces to set intersection; no interval
// arithmetic is needed anywhere in the system.
package slot

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// The grid spans OpenHour to CloseHour inclusive start times.
const (
	OpenHour  = 6
	CloseHour = 23
)

// DateLayout is the calendar-day format used everywhere a booking date is
// stored, compared, or keyed. All date handling must normalize to this layout;
// two representations of the same day that do not match it would silently
// allow double-bookings.
const DateLayout = "2006-01-02"

// All is the fixed ordered grid of 18 slot labels.
var All = buildGrid()

func buildGrid() []string {
	grid := make([]string, 0, CloseHour-OpenHour+1)
	for h := OpenHour; h <= CloseHour; h++ {
		grid = append(grid, fmt.Sprintf("%02d:00", h))
	}
	return grid
}

// Valid reports whether label is a member of the canonical grid.
func Valid(label string) bool {
	if len(label) != 5 || label[2:] != ":00" {
		return false
	}
	h, err := strconv.Atoi(label[:2])
	if err != nil {
		return false
	}
	return h >= OpenHour && h <= CloseHour
}

// Normalize returns a sorted, deduplicated copy of labels. Labels are fixed
// width, so lexicographic order is chronological order.
func Normalize(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Intersect returns the sorted labels present in both sets.
func Intersect(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, l := range b {
		inB[l] = struct{}{}
	}
	var out []string
	for _, l := range Normalize(a) {
		if _, ok := inB[l]; ok {
			out = append(out, l)
		}
	}
	return out
}

// ParseDate parses a calendar date in DateLayout, rejecting anything with a
// time-of-day component. The result is midnight UTC of that day.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid booking date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}

// StartTime combines a booking date with the earliest label in slots, giving
// the booking's first committed hour. This is the anchor for the cancellation
// refund cutoff.
func StartTime(date string, slots []string) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	sorted := Normalize(slots)
	if len(sorted) == 0 {
		return time.Time{}, fmt.Errorf("empty slot set")
	}
	first := sorted[0]
	if !Valid(first) {
		return time.Time{}, fmt.Errorf("invalid slot label %q", first)
	}
	h, _ := strconv.Atoi(first[:2])
	return d.Add(time.Duration(h) * time.Hour), nil
}
