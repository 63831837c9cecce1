// Package tui provides the Bubble Tea front end for doomcycle: the play
// screen, the run history browser, and the SSH server that hosts them.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg advances the simulation clock by one month.
type TickMsg time.Time

// DefaultTickInterval is the wall-clock length of one simulated month.
const DefaultTickInterval = 700 * time.Millisecond

// tickCmd schedules the next TickMsg.
func tickCmd(interval time.Duration) tea.Cmd {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
