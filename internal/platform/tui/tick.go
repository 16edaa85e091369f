// Package tui is the Bubble Tea layer: the interactive player, the game
// picker and stats views, and the SSH front end. Models hold an engine
// session and advance it one turn per key press; nothing here ticks a
// simulation clock.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// flashFor is how long transient notices stay on screen.
const flashFor = 2 * time.Second

// flashMsg asks a model to drop its transient notice if it has expired.
type flashMsg time.Time

// flashTick schedules the expiry check for a notice set now.
func flashTick() tea.Cmd {
	return tea.Tick(flashFor, func(t time.Time) tea.Msg {
		return flashMsg(t)
	})
}
