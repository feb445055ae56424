package metrics

import (
	"fmt"
	"strconv"
	"strings"
)

var shortMonths = [12]string{
	"janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc.",
}

var longMonths = [12]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// ParseMonth splits "YYYY-MM" into year and month (1-12).
func ParseMonth(s string) (year, month int, err error) {
	y, m, ok := strings.Cut(s, "-")
	if !ok || len(y) != 4 || len(m) != 2 {
		return 0, 0, fmt.Errorf("month %q: want YYYY-MM", s)
	}
	year, err = strconv.Atoi(y)
	if err != nil {
		return 0, 0, fmt.Errorf("month %q: %w", s, err)
	}
	month, err = strconv.Atoi(m)
	if err != nil {
		return 0, 0, fmt.Errorf("month %q: %w", s, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month %q: out of range", s)
	}
	return year, month, nil
}

// ShortMonth returns the axis label for "YYYY-MM", e.g. "janv.". Unparseable
// input is returned unchanged.
func ShortMonth(s string) string {
	_, m, err := ParseMonth(s)
	if err != nil {
		return s
	}
	return shortMonths[m-1]
}

// LongMonth returns the tooltip label for "YYYY-MM", e.g. "janvier 2024".
// Unparseable input is returned unchanged.
func LongMonth(s string) string {
	y, m, err := ParseMonth(s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%s %d", longMonths[m-1], y)
}

// FormatDate renders "YYYY-MM-DD" as "DD/MM/YYYY". Unparseable input is
// returned unchanged.
func FormatDate(s string) string {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return s
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}
