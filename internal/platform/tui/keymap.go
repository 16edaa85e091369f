package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rulegrid/rulegrid/internal/core"
)

// PlayKeyMap holds the bindings of the play screen. Movement follows both
// arrows and WASD; undo and restart mirror the letters solutions are
// recorded with.
type PlayKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Left    key.Binding
	Right   key.Binding
	Action  key.Binding
	Wait    key.Binding
	Undo    key.Binding
	Restart key.Binding
	Help    key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// DefaultPlayKeyMap returns the default play bindings.
func DefaultPlayKeyMap() PlayKeyMap {
	return PlayKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "w"),
			key.WithHelp("↑/w", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "s"),
			key.WithHelp("↓/s", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "a"),
			key.WithHelp("←/a", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "d"),
			key.WithHelp("→/d", "right"),
		),
		Action: key.NewBinding(
			key.WithKeys("x", " ", "enter"),
			key.WithHelp("x/space", "action"),
		),
		Wait: key.NewBinding(
			key.WithKeys("."),
			key.WithHelp(".", "wait"),
		),
		Undo: key.NewBinding(
			key.WithKeys("z", "u"),
			key.WithHelp("z/u", "undo"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("q/esc", "leave"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp returns the bindings of the one-line help bar.
func (k PlayKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Action, k.Undo, k.Restart, k.Help, k.Back}
}

// FullHelp returns the bindings of the expanded help view.
func (k PlayKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.Action, k.Wait, k.Undo, k.Restart},
		{k.Help, k.Back, k.Quit},
	}
}

// InputFor translates a key message to the turn input it drives. ok is
// false for keys without an input meaning, such as help and quit.
func (k PlayKeyMap) InputFor(msg tea.KeyMsg) (core.Input, bool) {
	switch {
	case key.Matches(msg, k.Up):
		return core.InputUp, true
	case key.Matches(msg, k.Down):
		return core.InputDown, true
	case key.Matches(msg, k.Left):
		return core.InputLeft, true
	case key.Matches(msg, k.Right):
		return core.InputRight, true
	case key.Matches(msg, k.Action):
		return core.InputAction, true
	case key.Matches(msg, k.Wait):
		return core.InputWait, true
	case key.Matches(msg, k.Undo):
		return core.InputUndo, true
	case key.Matches(msg, k.Restart):
		return core.InputRestart, true
	default:
		return core.InputWait, false
	}
}

// ListKeyMap holds the bindings shared by the picker and stats screens.
type ListKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Tab    key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// DefaultListKeyMap returns the default list bindings.
func DefaultListKeyMap() ListKeyMap {
	return ListKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k", "w"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j", "s"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "select"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings of the one-line help bar.
func (k ListKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.Tab, k.Quit}
}

// FullHelp returns the bindings of the expanded help view.
func (k ListKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.Tab, k.Back, k.Quit},
	}
}
