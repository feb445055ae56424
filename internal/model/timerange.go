package model

import "fmt"

// TimeRange is the number of trailing months the MRR chart shows.
type TimeRange string

const (
	Range3  TimeRange = "3"
	Range6  TimeRange = "6"
	Range12 TimeRange = "12"
)

// TimeRanges lists the selectable ranges in display order.
var TimeRanges = []TimeRange{Range3, Range6, Range12}

// Months returns the window length, or 12 for an unknown range.
func (r TimeRange) Months() int {
	switch r {
	case Range3:
		return 3
	case Range6:
		return 6
	default:
		return 12
	}
}

// Valid reports whether r is one of the selectable ranges.
func (r TimeRange) Valid() bool {
	return r == Range3 || r == Range6 || r == Range12
}

// Label is the selector caption, e.g. "3 derniers mois".
func (r TimeRange) Label() string {
	return fmt.Sprintf("%d derniers mois", r.Months())
}

// Next cycles 3 -> 6 -> 12 -> 3.
func (r TimeRange) Next() TimeRange {
	switch r {
	case Range3:
		return Range6
	case Range6:
		return Range12
	default:
		return Range3
	}
}

// ParseTimeRange validates a raw selector value.
func ParseTimeRange(s string) (TimeRange, error) {
	r := TimeRange(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid time range %q (want 3, 6 or 12)", s)
	}
	return r, nil
}
