// Package tui provides the interactive Bubble Tea dashboard.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/bunkerdash/internal/config"
	"github.com/theirongolddev/bunkerdash/internal/dashboard"
	"github.com/theirongolddev/bunkerdash/internal/model"
	"github.com/theirongolddev/bunkerdash/internal/tui/components"
	"github.com/theirongolddev/bunkerdash/internal/tui/theme"
	"github.com/theirongolddev/bunkerdash/internal/view"
)

// StateSource is the persisted document, checked periodically so edits
// made by another process (e.g. the web view) show up.
type StateSource interface {
	Get(ctx context.Context) (*model.State, error)
	UpdatedAt(ctx context.Context) (time.Time, error)
}

// StateMsg carries the state after a dispatcher render.
type StateMsg struct {
	State *model.State
}

// ReloadMsg is sent when a background check of the stored document finishes.
// State is nil when nothing changed.
type ReloadMsg struct {
	State     *model.State
	UpdatedAt time.Time
	Err       error
}

const (
	tabDashboard = iota
	tabClients
	tabActivity
	tabAffiliates
	tabPayouts
	tabCount
)

// App is the root Bubble Tea model.
type App struct {
	dispatch *dashboard.Dispatcher
	source   StateSource
	renders  chan *model.State

	// Last rendered state; never mutated.
	state *model.State

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	cursor    [tabCount]int
	hover     int // hovered chart point, -1 for none

	// Open dialog
	form     *huh.Form
	formVals *formValues

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	status components.Status

	// External change detection
	refreshInterval time.Duration
	lastSeen        time.Time
	lastCheck       time.Time
	checking        bool
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
)

// Options configures NewApp.
type Options struct {
	// Source enables reloading edits made by other processes. May be nil.
	Source          StateSource
	RefreshInterval time.Duration
	// Setup forces the configuration wizard; it also runs when no config
	// file exists yet.
	Setup bool
}

// NewApp creates a new TUI app model driving d.
func NewApp(d *dashboard.Dispatcher, opts Options) App {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	vals := SetupValuesFrom(cfg)

	interval := opts.RefreshInterval
	if interval < time.Second {
		interval = 5 * time.Second
	}

	a := App{
		dispatch:        d,
		source:          opts.Source,
		renders:         make(chan *model.State, 1),
		state:           d.Store().State(),
		hover:           -1,
		setupVals:       &vals,
		needSetup:       opts.Setup || !config.Exists(),
		refreshInterval: interval,
		lastCheck:       time.Now(),
	}
	if a.source != nil {
		a.lastSeen, _ = a.source.UpdatedAt(context.Background())
	}
	if a.needSetup {
		a.setupForm = NewSetupForm(a.setupVals)
	}

	renders := a.renders
	d.OnRender(func(s *model.State) {
		select {
		case renders <- s:
		default:
			// Keep only the newest state.
			select {
			case <-renders:
			default:
			}
			select {
			case renders <- s:
			default:
			}
		}
	})
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseAllMotion,
		waitForRender(a.renders),
		tickCmd(),
	}
	if a.setupForm != nil {
		cmds = append(cmds, a.setupForm.Init())
	}
	return tea.Batch(cmds...)
}

func (a *App) startSetup() tea.Cmd {
	a.setupForm = NewSetupForm(a.setupVals)
	if a.width > 0 {
		a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
	}
	return a.setupForm.Init()
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		if a.form != nil {
			a.form = a.form.WithWidth(a.formWidth())
		}
		return a, nil

	case StateMsg:
		a.setState(msg.State)
		return a, waitForRender(a.renders)

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.source != nil && !a.checking && time.Since(a.lastCheck) >= a.refreshInterval {
			a.checking = true
			cmds = append(cmds, checkSourceCmd(a.source, a.lastSeen))
		}
		return a, tea.Batch(cmds...)

	case ReloadMsg:
		a.checking = false
		a.lastCheck = time.Now()
		if msg.Err != nil {
			a.status = components.Status{Message: "Rechargement impossible : " + msg.Err.Error(), IsError: true}
			return a, nil
		}
		if msg.State != nil {
			a.lastSeen = msg.UpdatedAt
			if err := a.dispatch.Replace(context.Background(), msg.State, false); err != nil {
				logrus.WithError(err).Warn("reload failed")
			}
			a.setState(a.dispatch.Store().State())
			a.status = components.Status{Detail: "Rechargé " + msg.UpdatedAt.Local().Format("15:04:05")}
		}
		return a, nil

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		if a.form != nil {
			return a.updateForm(msg)
		}
		return a.updateKey(msg)
	}

	// Forward unhandled messages (cursor blinks, etc.) to the active form.
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.form != nil {
		return a.updateForm(msg)
	}
	return a, nil
}

func (a *App) setState(s *model.State) {
	if s == nil {
		return
	}
	a.state = s
	a.clampCursors()
	if a.hover >= len(windowOf(s)) {
		a.hover = -1
	}
}

func (a *App) clampCursors() {
	counts := [tabCount]int{
		tabClients:    len(a.state.Clients),
		tabAffiliates: len(a.state.Affiliates),
		tabPayouts:    len(a.state.Affiliates),
	}
	for i := range a.cursor {
		a.cursor[i] = min(a.cursor[i], max(counts[i]-1, 0))
	}
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	if len(msg.Runes) == 1 {
		if tab := components.TabIdxByKey(msg.Runes[0]); tab >= 0 {
			a.activeTab = tab
			return a, nil
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "left", "shift+tab":
		a.activeTab = (a.activeTab - 1 + tabCount) % tabCount
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % tabCount
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case "h":
		a.moveHover(-1)
	case "l":
		a.moveHover(1)
	case "esc":
		a.hover = -1
		a.status = components.Status{}
	case "t":
		return a.cycleTimeRange()
	case "e", "enter":
		return a.edit()
	case "n":
		return a.create()
	case "m":
		return a.openModal(model.ModalMrrHistory, 0)
	case "a":
		return a.openModal(model.ModalClientActivity, 0)
	case "x", "delete":
		return a.confirmDelete()
	case "S":
		cmd := a.startSetup()
		return a, cmd
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	var n int
	switch a.activeTab {
	case tabClients:
		n = len(a.state.Clients)
	case tabAffiliates, tabPayouts:
		n = len(a.state.Affiliates)
	default:
		return
	}
	c := a.cursor[a.activeTab] + delta
	a.cursor[a.activeTab] = min(max(c, 0), max(n-1, 0))
}

func (a *App) moveHover(delta int) {
	if a.activeTab != tabDashboard {
		return
	}
	n := len(a.window())
	if n < 2 {
		return
	}
	if a.hover < 0 {
		if delta > 0 {
			a.hover = 0
		} else {
			a.hover = n - 1
		}
		return
	}
	a.hover = min(max(a.hover+delta, 0), n-1)
}

func (a App) cycleTimeRange() (tea.Model, tea.Cmd) {
	next := a.state.UI.MrrTimeRange.Next()
	form := map[string][]string{"range": {string(next)}}
	_, err := a.dispatch.Submit(context.Background(), dashboard.FormTimeRange, form)
	a.report(err, "")
	a.hover = -1
	a.setState(a.dispatch.Store().State())
	return a, nil
}

// edit opens the dialog for the selected row, or the tab's main dialog.
func (a App) edit() (tea.Model, tea.Cmd) {
	switch a.activeTab {
	case tabDashboard:
		return a.openModal(model.ModalKPIs, 0)
	case tabClients:
		if c, ok := a.selectedClient(); ok {
			return a.openModal(model.ModalClient, c.ID)
		}
	case tabActivity:
		return a.openModal(model.ModalClientActivity, 0)
	case tabAffiliates:
		if af, ok := a.selectedAffiliate(); ok {
			return a.openModal(model.ModalAffiliate, af.ID)
		}
	case tabPayouts:
		if af, ok := a.selectedAffiliate(); ok {
			return a.openModal(model.ModalPayout, af.ID)
		}
	}
	return a, nil
}

func (a App) create() (tea.Model, tea.Cmd) {
	switch a.activeTab {
	case tabDashboard:
		return a.openModal(model.ModalMrrHistory, 0)
	case tabClients:
		return a.openModal(model.ModalClient, 0)
	case tabActivity:
		return a.openModal(model.ModalClientActivity, 0)
	case tabAffiliates:
		return a.openModal(model.ModalAffiliate, 0)
	}
	return a, nil
}

func (a App) confirmDelete() (tea.Model, tea.Cmd) {
	var err error
	switch a.activeTab {
	case tabClients:
		c, ok := a.selectedClient()
		if !ok {
			return a, nil
		}
		err = a.dispatch.ConfirmDelete(model.KindClient, c.ID)
	case tabAffiliates:
		af, ok := a.selectedAffiliate()
		if !ok {
			return a, nil
		}
		err = a.dispatch.ConfirmDelete(model.KindAffiliate, af.ID)
	default:
		return a, nil
	}
	if err != nil {
		a.report(err, "")
		return a, nil
	}
	cmd := a.showForm(nil)
	return a, cmd
}

func (a App) selectedClient() (model.Client, bool) {
	i := a.cursor[tabClients]
	if i < 0 || i >= len(a.state.Clients) {
		return model.Client{}, false
	}
	return a.state.Clients[i], true
}

func (a App) selectedAffiliate() (model.Affiliate, bool) {
	i := a.cursor[a.activeTab]
	if i < 0 || i >= len(a.state.Affiliates) {
		return model.Affiliate{}, false
	}
	return a.state.Affiliates[i], true
}

func (a App) openModal(t model.ModalType, id int64) (tea.Model, tea.Cmd) {
	var data *model.ModalData
	if id != 0 {
		data = &model.ModalData{ID: id}
	}
	if err := a.dispatch.OpenModal(t, data); err != nil {
		a.report(err, "")
		return a, nil
	}
	cmd := a.showForm(nil)
	return a, cmd
}

// showForm builds the huh form for the dialog open in the store.
func (a *App) showForm(prev *formValues) tea.Cmd {
	a.state = a.dispatch.Store().State()
	mv := view.BuildModal(a.state)
	if mv == nil {
		a.form, a.formVals = nil, nil
		return nil
	}
	a.form, a.formVals = newModalForm(mv, prev)
	if a.width > 0 {
		a.form = a.form.WithWidth(a.formWidth())
	}
	return a.form.Init()
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		return a.submitForm()
	case huh.StateAborted:
		a.dispatch.CloseModal()
		a.form, a.formVals = nil, nil
		a.setState(a.dispatch.Store().State())
		return a, nil
	}
	return a, cmd
}

// submitForm runs the command behind the completed dialog. A rejected
// submission reopens the dialog with the entered values.
func (a App) submitForm() (tea.Model, tea.Cmd) {
	ctx := context.Background()
	vals := a.formVals

	var err error
	switch {
	case vals.confirm != nil && !*vals.confirm:
		a.dispatch.CloseModal()
	case vals.confirm != nil:
		_, err = a.dispatch.Delete(ctx)
		a.report(err, "Supprimé")
	default:
		_, err = a.dispatch.Submit(ctx, vals.formType(), vals.values())
		a.report(err, "Enregistré")
	}

	if err != nil {
		cmd := a.showForm(vals)
		return a, cmd
	}
	a.form, a.formVals = nil, nil
	a.setState(a.dispatch.Store().State())
	return a, nil
}

// report shows the outcome of an action in the status bar.
func (a *App) report(err error, ok string) {
	switch {
	case err != nil:
		a.status = components.Status{Message: err.Error(), IsError: true}
	case ok != "":
		a.status = components.Status{Message: ok}
	default:
		a.status = components.Status{}
	}
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		if err := a.saveSetupConfig(); err != nil {
			a.status = components.Status{Message: "Configuration non enregistrée : " + err.Error(), IsError: true}
		} else {
			a.status = components.Status{Message: "Configuration enregistrée"}
		}
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// contentHeight is the space between the one-line tab bar and status bar.
func (a App) contentHeight() int {
	return max(a.height-2, minContentHeight)
}

// contentLeft is the column where the centered content area starts.
func (a App) contentLeft() int {
	return (a.width - a.contentWidth()) / 2
}

func (a App) formWidth() int {
	return min(max(a.contentWidth()-8, 40), 72)
}

func (a App) window() []model.MrrPoint {
	return windowOf(a.state)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal trop étroit (%d colonnes)\n\n  Il faut au moins %d colonnes.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Raccourcis clavier"))
	b.WriteString("\n\n")

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"1-5", "Aller à l'onglet"},
			{"← →", "Onglet précédent / suivant"},
			{"j k", "Parcourir les listes"},
			{"h l", "Parcourir le graphique"},
		}},
		{"Actions", [][2]string{
			{"e Entrée", "Modifier"},
			{"n", "Ajouter"},
			{"x", "Supprimer"},
			{"m", "Historique du MRR"},
			{"a", "Activité clients"},
			{"t", "Changer la période"},
			{"S", "Configuration"},
			{"?", "Aide"},
			{"q", "Quitter"},
		}},
	}
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(sec.title))
		b.WriteString("\n")
		for _, bind := range sec.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Appuyez sur une touche pour fermer"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)

	hints := "[?]aide  [e]modifier  [n]ajouter  [x]supprimer  [t]période  [q]uitter"
	if a.form != nil {
		hints = "[tab]champ suivant  [entrée]valider  [esc]annuler"
	}
	statusBar := components.RenderStatusBar(w, hints, a.status)

	contentH := a.contentHeight()

	var content string
	if a.form != nil {
		content = a.renderForm(cw, contentH)
	} else {
		switch a.activeTab {
		case tabDashboard:
			content = a.renderDashboardTab(cw, contentH)
		case tabClients:
			content = a.renderClientsTab(cw)
		case tabActivity:
			content = a.renderActivityTab(cw)
		case tabAffiliates:
			content = a.renderAffiliatesTab(cw)
		case tabPayouts:
			content = a.renderPayoutsTab(cw)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderForm(cw, h int) string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 2).
		Render(a.form.View())
	return lipgloss.Place(cw, h, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Helpers ────────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// waitForRender blocks until the dispatcher renders a new state.
func waitForRender(ch chan *model.State) tea.Cmd {
	return func() tea.Msg {
		return StateMsg{State: <-ch}
	}
}

// checkSourceCmd reloads the stored document when it changed since seen.
func checkSourceCmd(src StateSource, seen time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		updated, err := src.UpdatedAt(ctx)
		if err != nil {
			return ReloadMsg{Err: err}
		}
		if updated.IsZero() || updated.Equal(seen) {
			return ReloadMsg{UpdatedAt: seen}
		}
		state, err := src.Get(ctx)
		if err != nil {
			return ReloadMsg{Err: err}
		}
		return ReloadMsg{State: state, UpdatedAt: updated}
	}
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// ─── Mouse Support ──────────────────────────────────────────────

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.showHelp || a.setupForm != nil || a.form != nil {
		return a, nil
	}

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		a.moveCursor(-1)
	case msg.Button == tea.MouseButtonWheelDown:
		a.moveCursor(1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft && msg.Y == 0:
		if tab := a.tabAtX(msg.X); tab >= 0 {
			a.activeTab = tab
		}
	case msg.Action == tea.MouseActionMotion && a.activeTab == tabDashboard:
		a.hover = a.chartHoverAt(msg.X, msg.Y)
	}
	return a, nil
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1
	}
	return -1
}
