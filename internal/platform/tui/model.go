package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/doomcycle/internal/core"
	"github.com/vovakirdan/doomcycle/internal/session"
)

// Options configures the play screen.
type Options struct {
	TickInterval time.Duration // Wall-clock length of a month; 0 uses DefaultTickInterval
	Width        int
	Height       int
}

// Model is the Bubble Tea model for one game session.
type Model struct {
	host     *session.Host
	keys     KeyMap
	help     help.Model
	interval time.Duration

	cursor    int
	lastPhase core.Phase
	held      bool // Player paused the clock; distinct from crisis pause
	status    string
	width     int
	height    int
	quitting  bool
}

// NewModel creates a play screen over host. The host must already be
// started.
func NewModel(host *session.Host, opts Options) Model {
	h := help.New()
	h.ShowAll = false
	h.Width = opts.Width
	return Model{
		host:      host,
		keys:      DefaultKeyMap(),
		help:      h,
		interval:  opts.TickInterval,
		lastPhase: host.Engine().State().Phase,
		width:     opts.Width,
		height:    opts.Height,
	}
}

// Init starts the month clock.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.interval)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m = m.handleKey(msg)
		if m.quitting {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
	case TickMsg:
		m = m.handleTick()
		return m.syncPhase(), tickCmd(m.interval)
	}
	return m.syncPhase(), nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) Model {
	e := m.host.Engine()
	snap := e.State()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m
	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.optionCount(snap)-1 {
			m.cursor++
		}
		return m
	}

	switch snap.Phase {
	case core.PhaseSplash, core.PhaseSharedResult:
		if key.Matches(msg, m.keys.Select) {
			e.Initialize()
		}
	case core.PhaseSetup:
		switch {
		case key.Matches(msg, m.keys.Select):
			if m.cursor < len(snap.AvailableDevices) {
				e.SelectDevice(snap.AvailableDevices[m.cursor].ID)
				e.StartSimulation()
			}
		case key.Matches(msg, m.keys.Funding):
			e.SetFundingLevel(snap.FundingLevel.Next())
		}
	case core.PhaseSimulation:
		switch {
		case key.Matches(msg, m.keys.Ship):
			if e.CanShip() {
				e.ShipProduct()
				m.status = "Release shipped."
			} else {
				m.status = "Too much doom to ship right now."
			}
		case key.Matches(msg, m.keys.Funding):
			e.SetFundingLevel(snap.FundingLevel.Next())
		case key.Matches(msg, m.keys.Pause):
			m.held = !m.held
		case key.Matches(msg, m.keys.Share):
			m.status = m.shareLink(m.host.ShareURL)
		}
	case core.PhaseCrisis:
		switch {
		case key.Matches(msg, m.keys.Select):
			if c := snap.CurrentCrisis; c != nil && m.cursor < len(c.Choices) {
				e.ResolveCrisis(c.Choices[m.cursor].ID)
			}
		case key.Matches(msg, m.keys.Funding):
			e.SetFundingLevel(snap.FundingLevel.Next())
		}
	case core.PhaseAutopsy, core.PhaseVictory:
		switch {
		case key.Matches(msg, m.keys.Share):
			m.status = m.shareLink(m.host.ResultURL)
		case key.Matches(msg, m.keys.Reset), key.Matches(msg, m.keys.Select):
			e.Reset()
			e.Initialize()
		}
	}
	return m
}

// handleTick advances one month while the clock runs.
func (m Model) handleTick() Model {
	e := m.host.Engine()
	if e.State().Phase == core.PhaseSimulation && !m.held {
		e.AdvanceTime(1)
	}
	return m
}

// syncPhase resets per-screen state after a phase change.
func (m Model) syncPhase() Model {
	phase := m.host.Engine().State().Phase
	if phase != m.lastPhase {
		m.cursor = 0
		m.held = false
		if !phase.Terminal() {
			m.status = ""
		}
		m.lastPhase = phase
	}
	return m
}

func (m Model) optionCount(snap core.Snapshot) int {
	switch snap.Phase {
	case core.PhaseSetup:
		return len(snap.AvailableDevices)
	case core.PhaseCrisis:
		if snap.CurrentCrisis != nil {
			return len(snap.CurrentCrisis.Choices)
		}
	}
	return 0
}

func (m Model) shareLink(build func() (string, error)) string {
	link, err := build()
	if err != nil {
		return "Cannot build link: " + err.Error()
	}
	return link
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.render()
}

// Run starts the Bubble Tea program for host.
func Run(host *session.Host, opts Options) error {
	p := tea.NewProgram(
		NewModel(host, opts),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
