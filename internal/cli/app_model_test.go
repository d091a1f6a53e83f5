package cli

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubView struct {
	id         ViewID
	title      string
	viewText   string
	initCmd    tea.Cmd
	updateSeen []tea.Msg
	closed     bool
}

func (v *stubView) Init() tea.Cmd { return v.initCmd }

func (v *stubView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	v.updateSeen = append(v.updateSeen, msg)
	return v, nil
}

func (v *stubView) View() string             { return v.viewText }
func (v *stubView) ID() ViewID               { return v.id }
func (v *stubView) ShortHelp() []key.Binding { return nil }
func (v *stubView) Title() string            { return v.title }
func (v *stubView) Close()                   { v.closed = true }

func newStubView(id ViewID, title, text string) *stubView {
	return &stubView{id: id, title: title, viewText: text}
}

func newTestModel(t *testing.T, app *App, home ViewID) appModel {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	m := newAppModel(ctx, app, home)
	t.Cleanup(m.close)
	return m
}

func TestNewAppModel_StartsAtDashboard(t *testing.T) {
	m := newTestModel(t, testApp(t), ViewDashboard)

	require.Len(t, m.viewStack, 1)
	assert.Equal(t, ViewDashboard, m.activeView().ID())
}

func TestNewAppModel_HomeSitsOnDashboard(t *testing.T) {
	m := newTestModel(t, testApp(t), ViewStopwatch)

	require.Len(t, m.viewStack, 2)
	assert.Equal(t, ViewDashboard, m.viewStack[0].ID())
	assert.Equal(t, ViewStopwatch, m.activeView().ID())
}

func TestAppModel_NavigationMessages(t *testing.T) {
	m := newTestModel(t, testApp(t), ViewDashboard)
	v2 := newStubView(ViewCountdown, "Countdown", "countdown view")
	v3 := newStubView(ViewStopwatch, "Stopwatch", "stopwatch view")

	model, cmd := m.Update(pushViewMsg{view: v2})
	m = model.(appModel)
	require.Nil(t, cmd)
	require.Len(t, m.viewStack, 2)
	assert.Equal(t, v2, m.activeView())

	model, cmd = m.Update(replaceViewMsg{view: v3})
	m = model.(appModel)
	require.Nil(t, cmd)
	require.Len(t, m.viewStack, 2)
	assert.Equal(t, v3, m.activeView())
	assert.True(t, v2.closed, "replaced view is closed")

	model, cmd = m.Update(popViewMsg{})
	m = model.(appModel)
	require.Nil(t, cmd)
	require.Len(t, m.viewStack, 1)
	assert.Equal(t, ViewDashboard, m.activeView().ID())
	assert.True(t, v3.closed, "popped view is closed")
}

func TestAppModel_PopKeepsDashboard(t *testing.T) {
	m := newTestModel(t, testApp(t), ViewDashboard)

	model, _ := m.Update(popViewMsg{})
	m = model.(appModel)
	require.Len(t, m.viewStack, 1)
	assert.Equal(t, ViewDashboard, m.activeView().ID())
}

func TestAppModel_OpenViewUnwindsToExisting(t *testing.T) {
	m := newTestModel(t, testApp(t), ViewDashboard)
	countdown := newStubView(ViewCountdown, "Countdown", "")
	form := newStubView(ViewForm, "Form", "")
	m.viewStack = append(m.viewStack, countdown, form)

	built := false
	model, _ := m.Update(openViewMsg{id: ViewCountdown, build: func() View {
		built = true
		return newStubView(ViewCountdown, "other", "")
	}})
	m = model.(appModel)

	assert.False(t, built, "an open view is reused")
	assert.Equal(t, countdown, m.activeView())
	assert.True(t, form.closed)
	assert.False(t, countdown.closed)
}

func TestAppModel_OpenViewPushesMissing(t *testing.T) {
	m := newTestModel(t, testApp(t), ViewDashboard)
	history := newStubView(ViewHistory, "History", "")

	model, _ := m.Update(openViewMsg{id: ViewHistory, build: func() View { return history }})
	m = model.(appModel)

	require.Len(t, m.viewStack, 2)
	assert.Equal(t, history, m.activeView())
}

func TestAppModel_WindowResizeForwardsToActiveView(t *testing.T) {
	m := newTestModel(t, testApp(t), ViewDashboard)
	v := newStubView(ViewHistory, "History", "history")
	m.viewStack = append(m.viewStack, v)

	model, cmd := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = model.(appModel)
	require.Nil(t, cmd)

	assert.Equal(t, 100, m.state.Width)
	assert.Equal(t, 30, m.state.Height)
	assert.NotZero(t, m.cmdBar.input.Width)
	require.Len(t, v.updateSeen, 1)
	assert.IsType(t, tea.WindowSizeMsg{}, v.updateSeen[0])
}

func TestAppModel_ViewDataReachesViewsUnderTheTop(t *testing.T) {
	m := newTestModel(t, testApp(t), ViewHistory)
	history := m.activeView().(*historyView)
	m.viewStack = append(m.viewStack, newStubView(ViewForm, "Form", ""))

	runs := []*domain.TimerRun{{ID: "abc", Kind: domain.KindCountdown, Planned: time.Minute, Elapsed: time.Minute, Completed: true}}
	model, _ := m.Update(historyLoadedMsg{view: history, runs: runs})
	m = model.(appModel)

	assert.False(t, history.loading)
	assert.Equal(t, runs, history.runs)
}

func TestAppModel_KeyHandling(t *testing.T) {
	t.Run("colon focuses command bar", func(t *testing.T) {
		m := newTestModel(t, testApp(t), ViewDashboard)
		require.False(t, m.cmdBar.Focused())

		model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{':'}})
		m = model.(appModel)
		require.Nil(t, cmd)
		assert.True(t, m.cmdBar.Focused())
	})

	t.Run("q quits outside forms", func(t *testing.T) {
		m := newTestModel(t, testApp(t), ViewDashboard)

		model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
		m = model.(appModel)
		require.NotNil(t, cmd)
		assert.True(t, m.quitting)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})

	t.Run("form receives q and esc", func(t *testing.T) {
		m := newTestModel(t, testApp(t), ViewDashboard)
		form := newStubView(ViewForm, "Form", "form")
		m.viewStack = append(m.viewStack, form)

		model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
		m = model.(appModel)
		require.Nil(t, cmd)
		assert.False(t, m.quitting)

		model, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		m = model.(appModel)
		require.Len(t, form.updateSeen, 2)
		assert.Equal(t, form, m.activeView(), "esc belongs to the form")
	})

	t.Run("esc pops a regular view", func(t *testing.T) {
		m := newTestModel(t, testApp(t), ViewDashboard)
		v := newStubView(ViewHistory, "History", "")
		m.viewStack = append(m.viewStack, v)

		model, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		m = model.(appModel)
		require.Len(t, m.viewStack, 1)
		assert.True(t, v.closed)
	})

	t.Run("ctrl+c quits even in forms", func(t *testing.T) {
		m := newTestModel(t, testApp(t), ViewDashboard)
		m.viewStack = append(m.viewStack, newStubView(ViewForm, "Form", ""))

		model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		m = model.(appModel)
		require.NotNil(t, cmd)
		assert.True(t, m.quitting)
	})
}

func TestAppModel_CommandOutputReplacesContent(t *testing.T) {
	m := newTestModel(t, testApp(t), ViewDashboard)
	m.viewStack = []View{newStubView(ViewDashboard, "Dashboard", "dashboard body")}

	model, _ := m.Update(cmdOutputMsg{output: "some output"})
	m = model.(appModel)
	view := m.View()
	assert.Contains(t, view, "some output")
	assert.NotContains(t, view, "dashboard body")

	// Any non-scroll key dismisses the output.
	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}})
	m = model.(appModel)
	assert.Contains(t, m.View(), "dashboard body")
}

func TestAppModel_WizardCompletePopsForm(t *testing.T) {
	m := newTestModel(t, testApp(t), ViewDashboard)
	form := newStubView(ViewForm, "Form", "")
	m.viewStack = append(m.viewStack, form)

	model, cmd := m.Update(wizardCompleteMsg{})
	m = model.(appModel)
	require.NotNil(t, cmd)
	require.Len(t, m.viewStack, 1)
	assert.True(t, form.closed)
}

func TestAppModel_HeaderShowsRunningTimers(t *testing.T) {
	app := testApp(t)
	m := newTestModel(t, app, ViewDashboard)
	model, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = model.(appModel)

	assert.NotContains(t, stripANSI(m.View()), "⏳")

	require.NoError(t, app.Timers.StartCountdown(5*time.Minute))
	assert.Eventually(t, func() bool {
		return app.Timers.CountdownText().Get() == "05:00"
	}, waitFor, time.Millisecond)
	assert.Contains(t, stripANSI(m.View()), "⏳ 05:00")
}
