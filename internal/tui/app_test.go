package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/bunkerdash/internal/config"
	"github.com/theirongolddev/bunkerdash/internal/dashboard"
	"github.com/theirongolddev/bunkerdash/internal/model"
)

type nopPersister struct{ saves int }

func (p *nopPersister) Save(context.Context, *model.State) { p.saves++ }

func newTestApp(t *testing.T) (App, *dashboard.Dispatcher, *nopPersister) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	require.NoError(t, config.Save(config.DefaultConfig()))

	p := &nopPersister{}
	d := dashboard.NewDispatcher(dashboard.NewStore(model.DefaultState()), p)
	a := NewApp(d, Options{})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App), d, p
}

func press(t *testing.T, a App, keys ...string) App {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEscape}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ := a.Update(msg)
		a = m.(App)
	}
	return a
}

func TestNewAppSkipsSetupWhenConfigExists(t *testing.T) {
	a, _, _ := newTestApp(t)
	assert.Nil(t, a.setupForm)
	assert.Equal(t, -1, a.hover)
}

func TestNumberKeysSwitchTabs(t *testing.T) {
	a, _, _ := newTestApp(t)
	a = press(t, a, "3")
	assert.Equal(t, tabActivity, a.activeTab)
	a = press(t, a, "5")
	assert.Equal(t, tabPayouts, a.activeTab)
	a = press(t, a, "1")
	assert.Equal(t, tabDashboard, a.activeTab)
}

func TestCursorIsClampedToRows(t *testing.T) {
	a, _, _ := newTestApp(t)
	a = press(t, a, "2")
	n := len(a.state.Clients)
	require.Positive(t, n)

	for i := 0; i < n+3; i++ {
		a = press(t, a, "j")
	}
	assert.Equal(t, n-1, a.cursor[tabClients])
	a = press(t, a, "k")
	assert.Equal(t, n-2, a.cursor[tabClients])

	// Other tabs keep their own cursor.
	assert.Zero(t, a.cursor[tabAffiliates])
}

func TestTimeRangeKeyCyclesAndPersists(t *testing.T) {
	a, d, p := newTestApp(t)
	before := a.state.UI.MrrTimeRange
	a = press(t, a, "t")
	assert.Equal(t, before.Next(), a.state.UI.MrrTimeRange)
	assert.Equal(t, before.Next(), d.Store().State().UI.MrrTimeRange)
	assert.Equal(t, 1, p.saves)
}

func TestHoverKeysStayInWindow(t *testing.T) {
	a, _, _ := newTestApp(t)
	n := len(a.window())
	require.GreaterOrEqual(t, n, 2)

	a = press(t, a, "l")
	assert.Equal(t, 0, a.hover)
	a = press(t, a, "h", "h")
	assert.Equal(t, 0, a.hover)
	a = press(t, a, "esc")
	assert.Equal(t, -1, a.hover)
	a = press(t, a, "h")
	assert.Equal(t, n-1, a.hover)
}

func TestDeleteClientThroughConfirmDialog(t *testing.T) {
	a, d, _ := newTestApp(t)
	a = press(t, a, "2")
	victim := a.state.Clients[0]

	a = press(t, a, "x")
	require.NotNil(t, a.form)
	require.NotNil(t, a.formVals.confirm)
	assert.Equal(t, model.ModalConfirmDelete, d.Store().Modal().Type)

	*a.formVals.confirm = true
	m, _ := a.submitForm()
	a = m.(App)

	assert.Nil(t, a.form)
	_, ok := a.state.ClientByID(victim.ID)
	assert.False(t, ok)
	assert.False(t, d.Store().Modal().IsOpen)
	assert.Equal(t, "Supprimé", a.status.Message)
}

func TestCancelledConfirmKeepsClient(t *testing.T) {
	a, d, _ := newTestApp(t)
	a = press(t, a, "2", "x")
	require.NotNil(t, a.formVals)

	m, _ := a.submitForm()
	a = m.(App)

	assert.Len(t, a.state.Clients, len(model.DefaultState().Clients))
	assert.False(t, d.Store().Modal().IsOpen)
}

func TestEditClientSubmitsForm(t *testing.T) {
	a, _, _ := newTestApp(t)
	a = press(t, a, "2", "e")
	require.NotNil(t, a.formVals)
	assert.Equal(t, string(model.ModalClient), a.formVals.formType())

	*a.formVals.text["name"] = "Boulangerie Martin"
	m, _ := a.submitForm()
	a = m.(App)

	assert.Nil(t, a.form)
	assert.Equal(t, "Boulangerie Martin", a.state.Clients[0].Name)
}

func TestRejectedFormReopensWithAnswers(t *testing.T) {
	a, d, _ := newTestApp(t)
	a = press(t, a, "e")
	require.NotNil(t, a.formVals)
	assert.Equal(t, string(model.ModalKPIs), a.formVals.formType())

	*a.formVals.text["mrr"] = "beaucoup"
	m, _ := a.submitForm()
	a = m.(App)

	require.NotNil(t, a.form)
	assert.True(t, a.status.IsError)
	assert.Equal(t, "beaucoup", *a.formVals.text["mrr"])
	assert.True(t, d.Store().Modal().IsOpen)
}

func TestViewRendersEveryTab(t *testing.T) {
	a, _, _ := newTestApp(t)
	for _, k := range []string{"1", "2", "3", "4", "5"} {
		a = press(t, a, k)
		out := a.View()
		assert.NotEmpty(t, out)
	}
	a = press(t, a, "?")
	assert.Contains(t, a.View(), "Raccourcis")
}

func TestTooNarrowTerminal(t *testing.T) {
	a, _, _ := newTestApp(t)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	a = m.(App)
	assert.NotContains(t, a.View(), "Tableau de bord")
}

func TestScrollWindowKeepsCursorVisible(t *testing.T) {
	start, end := scrollWindow(10, 0, 4)
	assert.Equal(t, [2]int{0, 4}, [2]int{start, end})
	start, end = scrollWindow(10, 7, 4)
	assert.Equal(t, [2]int{4, 8}, [2]int{start, end})
	start, end = scrollWindow(3, 2, 4)
	assert.Equal(t, [2]int{0, 3}, [2]int{start, end})
}
