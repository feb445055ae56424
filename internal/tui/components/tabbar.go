package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/bunkerdash/internal/tui/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name string
	Key  rune
}

// Tabs defines all available tabs, in display order.
var Tabs = []Tab{
	{Name: "Tableau de bord", Key: '1'},
	{Name: "Clients", Key: '2'},
	{Name: "Activité", Key: '3'},
	{Name: "Affiliés", Key: '4'},
	{Name: "Paiements", Key: '5'},
}

// TabVisualWidth is the rendered width of a tab: one column of padding on
// each side, plus the "[k]" hint on inactive tabs.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name) + 2
	if !active {
		w += 3
	}
	return w
}

// RenderTabBar renders the tab bar with the given active index. Tabs are
// separated by a single column.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.SurfaceHover).
		Bold(true).
		Padding(0, 1)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Background(t.Surface).
		Padding(0, 1)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Background(t.Surface).
		Bold(true)

	sepStyle := lipgloss.NewStyle().Background(t.Surface)

	parts := make([]string, 0, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts = append(parts, activeStyle.Render(tab.Name))
			continue
		}
		hint := keyStyle.Render("[" + string(tab.Key) + "]")
		parts = append(parts, inactiveStyle.Render(tab.Name)+hint)
	}

	row := strings.Join(parts, sepStyle.Render(" "))
	return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(row)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
