// Package tui provides the Bubble Tea front end of the clicking game. It is a
// pure event sink: it renders what the game emits and forwards key presses.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fakeyudi/clickrush/internal/api"
	"github.com/fakeyudi/clickrush/internal/game"
	"github.com/fakeyudi/clickrush/internal/session"
)

// Controller is the part of *game.Game the UI drives.
type Controller interface {
	Start(ctx context.Context, username string) error
	Click(fallbackUsername string)
	ResolveUsername(name string)
	RefreshLeaderboard()
	LoadAchievements()
	RefreshUserAchievements(username string)
}

// Options configure the UI.
type Options struct {
	Username     string
	Duration     int           // seconds, shown before the first game
	RefreshEvery time.Duration // periodic leaderboard refresh; zero disables
	BannerFor    time.Duration // how long an achievement banner stays up
	OnRename     func(name string)
}

// ── Tab definitions ─────────────────

type tabID int

const (
	tabGame tabID = iota
	tabLeaderboard
	tabAchievements
	tabCount
)

var tabNames = [tabCount]string{"Game", "Leaderboard", "Achievements"}

type inputMode int

const (
	modePlay inputMode = iota
	modeEditName
	modePrompt // end-of-game username request
)

// ── Messages ────────────────────

type eventMsg struct{ ev session.Event }

type eventsClosedMsg struct{}

type refreshTickMsg struct{}

type bannerExpiredMsg struct{ id int }

type flashExpiredMsg struct{ id int }

type startResultMsg struct{ err error }

// ── Model ────────────────────

// Model is the root Bubble Tea model for the game.
type Model struct {
	ctrl   Controller
	events <-chan session.Event
	opts   Options

	username string
	mode     inputMode
	input    textinput.Model
	// start the game once the name has been entered
	startAfterEdit bool

	phase     session.Status
	clicks    int
	remaining int
	duration  int
	warning   bool
	status    string

	flash    string
	flashID  int
	banner   *api.Achievement
	bannerID int

	leaderboard    []api.LeaderboardEntry
	leaderboardErr error
	catalog        []api.Achievement
	catalogErr     error
	unlocked       []api.Achievement

	activeTab tabID
	viewports [tabCount]viewport.Model
	bar       progress.Model
	width     int
	height    int
	ready     bool
}

// New creates the model. events must be the channel the game emits into.
func New(ctrl Controller, events <-chan session.Event, opts Options) Model {
	if opts.BannerFor <= 0 {
		opts.BannerFor = 5 * time.Second
	}
	ti := textinput.New()
	ti.Placeholder = "your name"
	ti.CharLimit = 32
	ti.Width = 24

	return Model{
		ctrl:      ctrl,
		events:    events,
		opts:      opts,
		username:  strings.TrimSpace(opts.Username),
		input:     ti,
		phase:     session.StatusIdle,
		remaining: opts.Duration,
		duration:  opts.Duration,
		status:    "Press enter to start, or just start hitting space!",
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForEvent(m.events), m.loadPanels()}
	if m.opts.RefreshEvery > 0 {
		cmds = append(cmds, refreshAfter(m.opts.RefreshEvery))
	}
	return tea.Batch(cmds...)
}

func waitForEvent(ch <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{ev: ev}
	}
}

func refreshAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

// call runs f off the update loop; the game may be busy emitting to us.
func call(f func()) tea.Cmd {
	return func() tea.Msg {
		f()
		return nil
	}
}

func (m Model) loadPanels() tea.Cmd {
	ctrl, name := m.ctrl, m.username
	return call(func() {
		ctrl.RefreshLeaderboard()
		ctrl.LoadAchievements()
		if name != "" {
			ctrl.RefreshUserAchievements(name)
		}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode != modePlay {
			return m.updateInput(msg)
		}
		return m.updatePlay(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.bar.Width = min(max(msg.Width-20, 10), 60)
		m.initViewports()
		return m, nil

	case eventMsg:
		cmd := m.handleEvent(msg.ev)
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case eventsClosedMsg:
		return m, tea.Quit

	case refreshTickMsg:
		ctrl := m.ctrl
		return m, tea.Batch(call(ctrl.RefreshLeaderboard), refreshAfter(m.opts.RefreshEvery))

	case startResultMsg:
		if msg.err != nil {
			m.status = "Cannot start: " + msg.err.Error()
		}
		return m, nil

	case bannerExpiredMsg:
		if msg.id == m.bannerID {
			m.banner = nil
		}
		return m, nil

	case flashExpiredMsg:
		if msg.id == m.flashID {
			m.flash = ""
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.mode != modePlay {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) updatePlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case " ":
		ctrl, name := m.ctrl, m.username
		return m, call(func() { ctrl.Click(name) })
	case "enter":
		if m.username == "" {
			m.startAfterEdit = true
			m.status = "Enter your name to start the game."
			return m, m.beginInput(modeEditName, "")
		}
		return m, m.start()
	case "u":
		return m, m.beginInput(modeEditName, m.username)
	case "r":
		m.status = "Refreshing leaderboard…"
		return m, call(m.ctrl.RefreshLeaderboard)
	case "tab", "right":
		m.activeTab = (m.activeTab + 1) % tabCount
		return m, nil
	case "shift+tab", "left":
		m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
		return m, nil
	case "1", "2", "3":
		m.activeTab = tabID(msg.String()[0] - '1')
		return m, nil
	}
	if m.activeTab != tabGame {
		var cmd tea.Cmd
		m.viewports[m.activeTab], cmd = m.viewports[m.activeTab].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		name := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.endInput()
		if mode == modePrompt {
			if name != "" {
				m.setUsername(name)
			}
			m.status = "Saving score…"
			ctrl := m.ctrl
			return m, call(func() { ctrl.ResolveUsername(name) })
		}
		if name == "" {
			m.startAfterEdit = false
			m.status = "Name unchanged."
			return m, nil
		}
		cmds := []tea.Cmd{m.rename(name)}
		if m.startAfterEdit {
			m.startAfterEdit = false
			cmds = append(cmds, m.start())
		}
		return m, tea.Batch(cmds...)

	case "esc":
		mode := m.mode
		m.endInput()
		m.startAfterEdit = false
		if mode == modePrompt {
			m.status = "Score not saved."
			ctrl := m.ctrl
			return m, call(func() { ctrl.ResolveUsername("") })
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) beginInput(mode inputMode, value string) tea.Cmd {
	m.mode = mode
	m.activeTab = tabGame
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) endInput() {
	m.mode = modePlay
	m.input.Blur()
	m.input.Reset()
}

func (m *Model) setUsername(name string) {
	m.username = name
	if m.opts.OnRename != nil {
		m.opts.OnRename(name)
	}
}

func (m *Model) rename(name string) tea.Cmd {
	m.setUsername(name)
	m.unlocked = nil
	m.status = "Playing as " + name + "."
	ctrl := m.ctrl
	return call(func() { ctrl.RefreshUserAchievements(name) })
}

func (m *Model) start() tea.Cmd {
	ctrl, name := m.ctrl, m.username
	return func() tea.Msg {
		return startResultMsg{err: ctrl.Start(context.Background(), name)}
	}
}

// handleEvent folds one game event into the model.
func (m *Model) handleEvent(ev session.Event) tea.Cmd {
	switch ev := ev.(type) {
	case session.SessionStarted:
		m.phase = session.StatusCountingDown
		m.clicks = 0
		m.duration = ev.Duration
		m.remaining = ev.Duration
		m.warning = false
		m.status = "GET READY…"
		if ev.AutoStart {
			m.phase = session.StatusActive
		}
	case session.GoSignaled:
		m.phase = session.StatusActive
		m.status = "GO! Click as fast as you can!"
	case session.ClickRegistered:
		m.clicks = ev.Count
	case session.MilestoneReached:
		m.flashID++
		m.flash = fmt.Sprintf("🔥 %d clicks!", ev.Count)
		id := m.flashID
		return tea.Tick(time.Second, func(time.Time) tea.Msg { return flashExpiredMsg{id: id} })
	case session.TickOccurred:
		m.remaining = ev.Remaining
	case session.CountdownWarning:
		m.warning = true
	case session.GameEnded:
		m.phase = session.StatusEnded
		m.remaining = 0
		m.status = fmt.Sprintf("Time's up! Final score: %d clicks.", ev.Score)
	case game.UsernameRequested:
		m.status = fmt.Sprintf("You scored %d! Enter your name to save it (esc to skip).", ev.Score)
		return m.beginInput(modePrompt, "")
	case game.ScoreSubmitted:
		if ev.Rank > 0 {
			m.status = fmt.Sprintf("Score saved! %d clicks, rank #%d.", ev.Score, ev.Rank)
		} else {
			m.status = fmt.Sprintf("Score saved! %d clicks.", ev.Score)
		}
	case game.SubmissionFailed:
		m.status = "Failed to save score: " + ev.Err.Error()
	case game.ScoreNotSaved:
		m.status = fmt.Sprintf("Score of %d not saved.", ev.Score)
	case game.SessionReset:
		m.phase = session.StatusIdle
		m.warning = false
	case game.AchievementUnlocked:
		a := ev.Achievement
		m.bannerID++
		m.banner = &a
		id := m.bannerID
		return tea.Tick(m.opts.BannerFor, func(time.Time) tea.Msg { return bannerExpiredMsg{id: id} })
	case game.LeaderboardLoaded:
		m.leaderboardErr = ev.Err
		if ev.Err == nil {
			m.leaderboard = ev.Entries
		}
		m.refreshViewport(tabLeaderboard)
	case game.AchievementsLoaded:
		m.catalogErr = ev.Err
		if ev.Err == nil {
			m.catalog = ev.Catalog
		}
		m.refreshViewport(tabAchievements)
	case game.UserAchievementsLoaded:
		if ev.Err == nil && ev.Username == m.username {
			m.unlocked = ev.Achievements
			m.refreshViewport(tabAchievements)
		}
	}
	return nil
}

// ── Viewport management ───────────────────────────────────────────────────────

func (m *Model) initViewports() {
	// title(1) + tabRow(1) + statusBar(1) = 3 fixed rows
	vpHeight := m.height - 3
	if vpHeight < 1 {
		vpHeight = 1
	}
	for i := tabLeaderboard; i < tabCount; i++ {
		vp := viewport.New(m.width, vpHeight)
		vp.SetContent(m.renderTab(i))
		m.viewports[i] = vp
	}
}

func (m *Model) refreshViewport(t tabID) {
	if !m.ready {
		return
	}
	m.viewports[t].SetContent(m.renderTab(t))
}

// Run starts the TUI and blocks until the player quits.
func Run(ctrl Controller, events <-chan session.Event, opts Options) error {
	p := tea.NewProgram(New(ctrl, events, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
