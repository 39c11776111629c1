package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/burnwatch/burnwatch/internal/core"
	"github.com/burnwatch/burnwatch/internal/session"
)

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// SnapshotMsg carries one fetched snapshot plus the figures derived from
// it. The TUI holds no analytical state of its own; everything shown is
// computed upstream, once per snapshot.
type SnapshotMsg struct {
	Snapshot  core.Snapshot
	Usage     session.Usage
	Analytics session.Analytics
	Tracking  bool
	SessionAt time.Time // zero when tracking is off
}

// UpdateAvailableMsg surfaces the release check in the footer.
type UpdateAvailableMsg struct {
	Version string
}

type Model struct {
	snapshot  core.Snapshot
	usage     session.Usage
	analytics session.Analytics
	tracking  bool
	sessionAt time.Time

	width  int
	height int

	warnThreshold float64
	critThreshold float64

	hasData    bool
	refreshing bool
	now        time.Time

	updateVersion string

	onRefresh        func()
	onToggleTracking func()
}

func NewModel(warnThresh, critThresh float64) Model {
	return Model{
		warnThreshold: warnThresh,
		critThreshold: critThresh,
		now:           time.Now(),
	}
}

// SetOnRefresh sets a callback invoked when the user requests a manual refresh.
func (m *Model) SetOnRefresh(fn func()) {
	m.onRefresh = fn
}

// SetOnToggleTracking sets a callback invoked when the user flips session
// tracking. The upstream wiring re-seeds or clears the tracker and sends a
// fresh SnapshotMsg.
func (m *Model) SetOnToggleTracking(fn func()) {
	m.onToggleTracking = fn
}

func (m Model) Init() tea.Cmd {
	return tickCmd()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		return m, tickCmd()

	case SnapshotMsg:
		m.snapshot = msg.Snapshot
		m.usage = msg.Usage
		m.analytics = msg.Analytics
		m.tracking = msg.Tracking
		m.sessionAt = msg.SessionAt
		m.hasData = true
		m.refreshing = false
		return m, nil

	case UpdateAvailableMsg:
		m.updateVersion = msg.Version
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			if m.onRefresh != nil && !m.refreshing {
				m.refreshing = true
				m.onRefresh()
			}
			return m, nil
		case "t":
			if m.onToggleTracking != nil {
				m.onToggleTracking()
			}
			return m, nil
		}
	}
	return m, nil
}
