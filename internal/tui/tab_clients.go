package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/bunkerdash/internal/metrics"
	"github.com/theirongolddev/bunkerdash/internal/tui/components"
	"github.com/theirongolddev/bunkerdash/internal/tui/theme"
)

// Card border, title, table header and rule, plus the footer line.
const tableChrome = 6

var clientColumns = []components.Column{
	{Title: "Nom", Min: 12, Weight: 3},
	{Title: "Téléphone", Min: 14, Weight: 1},
	{Title: "Intégration", Min: 12},
	{Title: "Compte publicitaire", Min: 12, Weight: 2},
	{Title: "Dépensé", Min: 12, Right: true},
}

// scrollWindow returns the [start, end) slice of n rows to show so that
// cursor stays visible.
func scrollWindow(n, cursor, visible int) (int, int) {
	if visible <= 0 || n <= visible {
		return 0, n
	}
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	return start, min(start+visible, n)
}

func (a App) renderClientsTab(cw int) string {
	t := theme.Active
	clients := a.state.Clients
	if len(clients) == 0 {
		return components.ContentCard("Clients", emptyHint("Aucun client.", "[n] ajouter un client"), cw)
	}

	cursor := a.cursor[tabClients]
	start, end := scrollWindow(len(clients), cursor, a.contentHeight()-tableChrome)

	rows := make([][]string, 0, end-start)
	total := 0.0
	for _, c := range clients {
		total += c.TotalSpent
	}
	for _, c := range clients[start:end] {
		phone := c.Phone
		if phone == "" {
			phone = "N/A"
		}
		rows = append(rows, []string{
			c.Name,
			phone,
			metrics.FormatDate(c.IntegrationDate),
			c.AdAccountID,
			metrics.FormatCurrency(c.TotalSpent),
		})
	}

	inner := components.CardInnerWidth(cw)
	var b strings.Builder
	b.WriteString(components.Table(clientColumns, rows, cursor-start, inner))
	b.WriteString("\n")
	b.WriteString(footer(inner,
		metrics.FormatInt(len(clients))+" clients",
		"Total dépensé "+metrics.FormatCurrency(total),
		t.TextMuted))
	return components.FocusedCard("Clients", b.String(), cw)
}

// footer lays out left and right text on one line of width w.
func footer(w int, left, right string, color lipgloss.Color) string {
	st := lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface)
	gap := max(w-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return st.Render(left + strings.Repeat(" ", gap) + right)
}

func emptyHint(msg, hint string) string {
	t := theme.Active
	return lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(msg) + "\n" +
		lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render(hint)
}
