package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/vovakirdan/doomcycle/internal/storage"
)

const maxRuns = 100

// RunHistory is the part of the store the scoreboard reads.
type RunHistory interface {
	TopRuns(profile string, limit int) ([]storage.RunEntry, error)
	DeviceSummaries(profile string) ([]storage.DeviceSummary, error)
}

type scoreboardView int

const (
	viewRuns scoreboardView = iota
	viewDevices
)

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Switch key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Switch, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Switch, k.Quit}}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Switch: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "runs/devices"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel browses finished runs and per-device summaries.
type ScoreboardModel struct {
	store    RunHistory
	profile  string // "" shows every profile
	view     scoreboardView
	runs     []storage.RunEntry
	devices  []storage.DeviceSummary
	err      error
	table    table.Model
	help     help.Model
	keys     ScoreboardKeyMap
	width    int
	height   int
	quitting bool
}

// NewScoreboardModel creates a scoreboard over store.
func NewScoreboardModel(store RunHistory, profile string, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		store:   store,
		profile: profile,
		keys:    DefaultScoreboardKeyMap(),
		help:    help.New(),
		width:   width,
		height:  height,
	}
	m.load()
	m.table = m.createTable()
	return m
}

func (m *ScoreboardModel) load() {
	if m.store == nil {
		return
	}
	m.runs, m.err = m.store.TopRuns(m.profile, maxRuns)
	if m.err != nil {
		return
	}
	m.devices, m.err = m.store.DeviceSummaries(m.profile)
}

// createTable builds the table for the current view.
func (m ScoreboardModel) createTable() table.Model {
	var columns []table.Column
	var rows []table.Row

	switch m.view {
	case viewDevices:
		columns = []table.Column{
			{Title: "Device", Width: 20},
			{Title: "Runs", Width: 6},
			{Title: "Wins", Width: 6},
			{Title: "Best", Width: 6},
			{Title: "Avg doom", Width: 9},
			{Title: "Last played", Width: 16},
		}
		for _, d := range m.devices {
			rows = append(rows, table.Row{
				d.DeviceID,
				fmt.Sprintf("%d", d.Runs),
				fmt.Sprintf("%d", d.Wins),
				fmt.Sprintf("%d", d.BestMonths),
				fmt.Sprintf("%.1f", d.AvgDoom),
				humanize.Time(d.LastPlayed),
			})
		}
	default:
		columns = []table.Column{
			{Title: "Rank", Width: 6},
			{Title: "Device", Width: 20},
			{Title: "Outcome", Width: 9},
			{Title: "Months", Width: 7},
			{Title: "Doom", Width: 6},
			{Title: "Budget", Width: 13},
			{Title: "Date", Width: 13},
		}
		for i, r := range m.runs {
			rows = append(rows, table.Row{
				humanize.Ordinal(i + 1),
				r.DeviceID,
				string(r.Outcome),
				fmt.Sprintf("%d", r.Months),
				fmt.Sprintf("%.1f", r.DoomLevel),
				formatMoney(r.Budget),
				r.CreatedAt.Format("Jan 02 15:04"),
			})
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 5)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	return t
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Switch):
			if m.view == viewRuns {
				m.view = viewDevices
			} else {
				m.view = viewRuns
			}
			m.table = m.createTable()
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table = m.createTable()
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	title := "RUN HISTORY"
	if m.view == viewDevices {
		title = "DEVICES"
	}
	if m.profile != "" {
		title += " - " + m.profile
	}
	b.WriteString(titleStyle.MarginBottom(1).Render(title))
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(dangerStyle.Render("Cannot read history: " + m.err.Error()))
	case len(m.runs) == 0:
		b.WriteString(dimStyle.Italic(true).Padding(2, 4).Render("No finished runs yet.\nPlay one with 'doomcycle play'."))
	default:
		b.WriteString(panelStyle.Render(m.table.View()))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.help.View(m.keys)))
	return b.String()
}

// RunScoreboard runs the scoreboard screen.
func RunScoreboard(store RunHistory, profile string, width, height int) error {
	p := tea.NewProgram(
		NewScoreboardModel(store, profile, width, height),
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
