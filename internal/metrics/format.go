// Package metrics derives display figures from the dashboard state: currency
// strings, affiliate payouts, goal progress, and month labels.
package metrics

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.French)

// FormatCurrency renders v with French digit grouping and a trailing euro
// sign, e.g. 12540 -> "12 540 €".
func FormatCurrency(v float64) string {
	return FormatNumber(v) + " €"
}

// FormatNumber renders v with French digit grouping and up to three
// fraction digits.
func FormatNumber(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

// FormatInt renders n with French digit grouping.
func FormatInt(n int) string {
	return printer.Sprint(number.Decimal(n))
}

// FormatThousands renders an axis label in rounded thousands, e.g. 12540 -> "13K".
func FormatThousands(v float64) string {
	return strconv.FormatInt(int64(roundHalfUp(v/1000)), 10) + "K"
}

// FormatPercent renders a 0-100 percentage with one decimal and a comma.
func FormatPercent(pct float64) string {
	return strings.Replace(fmt.Sprintf("%.1f %%", pct), ".", ",", 1)
}

// FormatSigned prefixes n with the given sign, e.g. ("+", 22) -> "+22".
func FormatSigned(sign string, n int) string {
	return sign + strconv.Itoa(n)
}

func roundHalfUp(v float64) float64 {
	if v < 0 {
		return -roundHalfUp(-v)
	}
	return float64(int64(v + 0.5))
}
