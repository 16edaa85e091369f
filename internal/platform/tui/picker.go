package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rulegrid/rulegrid/internal/catalog"
	"github.com/rulegrid/rulegrid/internal/storage"
)

// PickerModel is the Bubble Tea model for the game picker.
type PickerModel struct {
	entries   []catalog.Entry
	solved    map[string]int // solved result count per game
	cursor    int
	width     int
	height    int
	keys      ListKeyMap
	help      help.Model
	quitting  bool
	openStats bool
	selected  *catalog.Entry
}

// NewPickerModel creates a picker over the catalog entries. With a store,
// each line shows how many solved runs the game has on record.
func NewPickerModel(entries []catalog.Entry, store *storage.Store) PickerModel {
	solved := make(map[string]int)
	if store != nil {
		if sums, err := store.AllSummaries(); err == nil {
			for _, s := range sums {
				solved[s.Game] = s.Solved
			}
		}
	}
	return PickerModel{
		entries: entries,
		solved:  solved,
		keys:    DefaultListKeyMap(),
		help:    help.New(),
	}
}

// Init initializes the picker model.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the picker.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	}
	return m, nil
}

// handleKey processes keyboard input for picker navigation.
func (m PickerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit), key.Matches(msg, m.keys.Back):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Select):
		if len(m.entries) > 0 {
			e := m.entries[m.cursor]
			m.selected = &e
			return m, tea.Quit
		}

	case key.Matches(msg, m.keys.Tab):
		m.openStats = true
		return m, tea.Quit
	}
	return m, nil
}

// View renders the picker.
func (m PickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(centerText("R U L E G R I D", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Pick a game", m.width))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(centerText("no games found", m.width))
		b.WriteString("\n")
	}
	for i, e := range m.entries {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%s — %s (%d levels)", cursor, e.Name, e.Title, e.Levels)
		if n := m.solved[e.Name]; n > 0 {
			line += fmt.Sprintf("  [%d solved]", n)
		}
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText(m.help.View(m.keys), m.width))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the chosen entry, or nil when none was chosen.
func (m PickerModel) Selected() *catalog.Entry {
	return m.selected
}

// IsQuitting returns true if the user left the picker.
func (m PickerModel) IsQuitting() bool {
	return m.quitting
}

// WantsStats returns true if the user switched to the stats screen.
func (m PickerModel) WantsStats() bool {
	return m.openStats
}

// centerText centers text within the given width.
func centerText(text string, width int) string {
	if len([]rune(text)) >= width {
		return text
	}
	padding := (width - len([]rune(text))) / 2
	return strings.Repeat(" ", padding) + text
}

// PickerResult holds the outcome of running the picker.
type PickerResult struct {
	Name       string
	WantsStats bool
	Quit       bool
}

// RunPicker runs the picker and returns the selection.
func RunPicker(entries []catalog.Entry, store *storage.Store) (PickerResult, error) {
	p := tea.NewProgram(NewPickerModel(entries, store), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return PickerResult{}, err
	}
	m, ok := final.(PickerModel)
	if !ok {
		return PickerResult{Quit: true}, nil
	}

	switch {
	case m.WantsStats():
		return PickerResult{WantsStats: true}, nil
	case m.Selected() != nil:
		return PickerResult{Name: m.Selected().Name}, nil
	default:
		return PickerResult{Quit: true}, nil
	}
}
