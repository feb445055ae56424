// Package theme defines color themes for the dashboard TUI.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/bunkerdash/internal/metrics"
)

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name         string
	Background   lipgloss.Color // Main app background
	Surface      lipgloss.Color // Card/panel backgrounds
	SurfaceHover lipgloss.Color // Selected row, active tab
	Border       lipgloss.Color
	BorderAccent lipgloss.Color // Focused card, dialogs
	TextDim      lipgloss.Color
	TextMuted    lipgloss.Color
	TextPrimary  lipgloss.Color
	Accent       lipgloss.Color // Chart line, active states
	AccentBright lipgloss.Color
	AccentDim    lipgloss.Color // Chart area fill
	Green        lipgloss.Color
	Yellow       lipgloss.Color
	Orange       lipgloss.Color
	Red          lipgloss.Color
	Blue         lipgloss.Color
}

// Level returns the goal bar color for a progress level.
func (t Theme) Level(l metrics.Level) lipgloss.Color {
	switch l {
	case metrics.LevelLow:
		return t.Red
	case metrics.LevelMedium:
		return t.Yellow
	default:
		return t.Green
	}
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:         "flexoki-dark",
	Background:   lipgloss.Color("#100F0F"),
	Surface:      lipgloss.Color("#1C1B1A"),
	SurfaceHover: lipgloss.Color("#282726"),
	Border:       lipgloss.Color("#403E3C"),
	BorderAccent: lipgloss.Color("#3AA99F"),
	TextDim:      lipgloss.Color("#575653"),
	TextMuted:    lipgloss.Color("#878580"),
	TextPrimary:  lipgloss.Color("#FFFCF0"),
	Accent:       lipgloss.Color("#3AA99F"),
	AccentBright: lipgloss.Color("#5BC8BE"),
	AccentDim:    lipgloss.Color("#1A3533"),
	Green:        lipgloss.Color("#879A39"),
	Yellow:       lipgloss.Color("#D0A215"),
	Orange:       lipgloss.Color("#DA702C"),
	Red:          lipgloss.Color("#D14D41"),
	Blue:         lipgloss.Color("#4385BE"),
}

// Bunker mirrors the web page palette: slate surfaces, indigo accent.
var Bunker = Theme{
	Name:         "bunker",
	Background:   lipgloss.Color("#0F172A"),
	Surface:      lipgloss.Color("#1E293B"),
	SurfaceHover: lipgloss.Color("#334155"),
	Border:       lipgloss.Color("#334155"),
	BorderAccent: lipgloss.Color("#4F46E5"),
	TextDim:      lipgloss.Color("#64748B"),
	TextMuted:    lipgloss.Color("#94A3B8"),
	TextPrimary:  lipgloss.Color("#F1F5F9"),
	Accent:       lipgloss.Color("#6366F1"),
	AccentBright: lipgloss.Color("#818CF8"),
	AccentDim:    lipgloss.Color("#312E81"),
	Green:        lipgloss.Color("#10B981"),
	Yellow:       lipgloss.Color("#F59E0B"),
	Orange:       lipgloss.Color("#F97316"),
	Red:          lipgloss.Color("#EF4444"),
	Blue:         lipgloss.Color("#3B82F6"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:         "terminal",
	Background:   lipgloss.Color("0"),
	Surface:      lipgloss.Color("0"),
	SurfaceHover: lipgloss.Color("8"),
	Border:       lipgloss.Color("8"),
	BorderAccent: lipgloss.Color("6"),
	TextDim:      lipgloss.Color("8"),
	TextMuted:    lipgloss.Color("7"),
	TextPrimary:  lipgloss.Color("15"),
	Accent:       lipgloss.Color("6"),
	AccentBright: lipgloss.Color("14"),
	AccentDim:    lipgloss.Color("4"),
	Green:        lipgloss.Color("2"),
	Yellow:       lipgloss.Color("3"),
	Orange:       lipgloss.Color("3"),
	Red:          lipgloss.Color("1"),
	Blue:         lipgloss.Color("4"),
}

// All available themes.
var All = []Theme{FlexokiDark, Bunker, Terminal}

// ByName returns a theme by its name, defaulting to FlexokiDark.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active = ByName(name)
}
