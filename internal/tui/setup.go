package tui

import (
	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/bunkerdash/internal/config"
	"github.com/theirongolddev/bunkerdash/internal/model"
	"github.com/theirongolddev/bunkerdash/internal/tui/theme"
)

// SetupValues holds the answers of the configuration wizard.
type SetupValues struct {
	Theme     string
	TimeRange string
	Addr      string
	LogLevel  string
}

// SetupValuesFrom seeds the wizard with cfg.
func SetupValuesFrom(cfg config.Config) SetupValues {
	v := SetupValues{
		Theme:     cfg.Appearance.Theme,
		TimeRange: cfg.General.DefaultTimeRange,
		Addr:      cfg.Server.Addr,
		LogLevel:  cfg.General.LogLevel,
	}
	if v.TimeRange == "" {
		v.TimeRange = string(model.Range12)
	}
	return v
}

// Apply writes the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.Appearance.Theme = v.Theme
	cfg.General.DefaultTimeRange = v.TimeRange
	cfg.General.LogLevel = v.LogLevel
	if v.Addr != "" {
		cfg.Server.Addr = v.Addr
	}
}

// NewSetupForm builds the configuration wizard. Answers are written to vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	rangeOpts := make([]huh.Option[string], 0, len(model.TimeRanges))
	for _, r := range model.TimeRanges {
		rangeOpts = append(rangeOpts, huh.NewOption(r.Label(), string(r)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Bienvenue dans Dashboard Bunker AD").
				Description("Quelques réglages avant de commencer.\nRelancez `bunkerdash setup` à tout moment."),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Thème").
				Options(themeOpts...).
				Value(&vals.Theme),
			huh.NewSelect[string]().
				Title("Période du graphique MRR par défaut").
				Options(rangeOpts...).
				Value(&vals.TimeRange),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Adresse du serveur web").
				Description("Utilisée par `bunkerdash serve`.").
				Placeholder("127.0.0.1:8788").
				Value(&vals.Addr),
			huh.NewSelect[string]().
				Title("Niveau de journalisation").
				Options(
					huh.NewOption("debug", "debug"),
					huh.NewOption("info", "info"),
					huh.NewOption("warn", "warn"),
					huh.NewOption("error", "error"),
				).
				Value(&vals.LogLevel),
		),
	).WithTheme(huh.ThemeBase16())
}

// saveSetupConfig persists the wizard answers and applies the theme.
func (a *App) saveSetupConfig() error {
	cfg, _ := config.Load()
	a.setupVals.Apply(&cfg)
	theme.SetActive(cfg.Appearance.Theme)
	return config.Save(cfg)
}
