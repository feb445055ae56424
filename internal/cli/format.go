// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/theirongolddev/bunkerdash/internal/metrics"
)

// FormatDelta formats the change between two amounts with an explicit sign.
// e.g., (13000, 12540) -> "+460 €"
func FormatDelta(current, previous float64) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + metrics.FormatCurrency(delta)
	}
	return "-" + metrics.FormatCurrency(-delta)
}

// FormatNet formats gained minus lost with an explicit sign, e.g. "+17".
func FormatNet(gained, lost int) string {
	net := gained - lost
	if net >= 0 {
		return metrics.FormatSigned("+", net)
	}
	return metrics.FormatSigned("-", -net)
}

// FormatOverride returns "fixe" for a manual payout, "" otherwise.
func FormatOverride(fixed bool) string {
	if fixed {
		return "fixe"
	}
	return ""
}

// IsTerminal reports whether stream (a reader or writer) is an
// interactive terminal.
func IsTerminal(stream any) bool {
	f, ok := stream.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// DisableColor switches lipgloss to plain text, for piped output.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
