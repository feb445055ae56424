package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/bunkerdash/internal/tui/theme"
)

// Status is the right-hand side of the status bar.
type Status struct {
	Message string
	IsError bool
	// Detail is shown dimmed when there is no message, e.g. the last save.
	Detail string
}

// RenderStatusBar renders the bottom status bar: key hints on the left,
// the last action's outcome on the right.
func RenderStatusBar(width int, hints string, st Status) string {
	t := theme.Active

	base := lipgloss.NewStyle().Background(t.Surface)
	hintStyle := base.Foreground(t.TextMuted)

	var right string
	switch {
	case st.Message != "" && st.IsError:
		right = base.Foreground(t.Red).Bold(true).Render(st.Message + " ")
	case st.Message != "":
		right = base.Foreground(t.Green).Render(st.Message + " ")
	case st.Detail != "":
		right = base.Foreground(t.TextDim).Render(st.Detail + " ")
	}

	left := hintStyle.Render(" " + hints)
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return left + base.Render(strings.Repeat(" ", gap)) + right
}
