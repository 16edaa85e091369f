package tui

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rulegrid/rulegrid/internal/core"
	"github.com/rulegrid/rulegrid/internal/engine"
	"github.com/rulegrid/rulegrid/internal/replay"
	"github.com/rulegrid/rulegrid/internal/save"
	"github.com/rulegrid/rulegrid/internal/storage"
)

// PlayOptions configures one interactive playthrough.
type PlayOptions struct {
	Name     string         // catalog name, used as the results key
	Store    *storage.Store // nil disables result recording
	SavePath string         // empty disables progress saving
	State    *save.State    // loaded progress; nil starts fresh
	Sound    bool           // ring the terminal bell on sfx commands
}

// PlayModel is the Bubble Tea model of the play screen. Every key press
// becomes one engine input; the settled grid renders between turns.
type PlayModel struct {
	sess   *engine.Session
	opts   PlayOptions
	keys   PlayKeyMap
	help   help.Model
	screen *core.Screen

	recorded   string // solution characters of the current level
	levelStart time.Time

	flash    string
	flashSet time.Time

	width    int
	height   int
	err      error
	done     bool // left via the back binding; SSH returns to the picker
	quitting bool
}

// NewPlayModel creates a play model around a started session.
func NewPlayModel(sess *engine.Session, opts PlayOptions) PlayModel {
	if opts.State == nil {
		opts.State = save.New()
	}
	m := PlayModel{
		sess:       sess,
		opts:       opts,
		keys:       DefaultPlayKeyMap(),
		help:       help.New(),
		screen:     core.NewScreen(80, 24),
		levelStart: time.Now(),
	}
	// A session holding a checkpoint before its first turn resumed a saved
	// one, so the recorded solution continues past its marker.
	if sess.Checkpoint() != nil {
		m.recorded = opts.State.Solution(sess.Level())
	}
	return m
}

// Init implements tea.Model. Play is turn-based, nothing ticks.
func (m PlayModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h := msg.Height - 2 // room for the help bar
		if h < 4 {
			h = 4
		}
		m.screen.Resize(msg.Width, h)
		return m, nil

	case flashMsg:
		if time.Since(m.flashSet) >= flashFor {
			m.flash = ""
		}
		return m, nil
	}
	return m, nil
}

// handleKey processes keyboard input.
func (m PlayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		(&m).persist()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.done = true
		(&m).persist()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	in, ok := m.keys.InputFor(msg)
	if !ok {
		return m, nil
	}
	cmd := (&m).step(in)
	return m, cmd
}

// step advances the session one turn and reacts to what the turn did.
func (m *PlayModel) step(in core.Input) tea.Cmd {
	if m.sess.Status() != engine.StatusPlaying {
		return nil
	}
	level := m.sess.Level()
	turns := m.sess.Turns()

	res, err := m.sess.Step(in)
	if err != nil {
		m.err = err
		m.recordResult(level, storage.StatusFault, turns)
		return tea.Quit
	}
	if r, ok := in.Key(); ok {
		m.recorded += string(r)
	}

	var cmds []tea.Cmd
	if res.Sound && m.opts.Sound {
		// BEL leaves the layout alone, so writing past the renderer is safe.
		//nolint:errcheck // best-effort bell
		os.Stdout.WriteString("\a")
	}
	if res.Checkpoint != nil {
		m.saveCheckpoint()
		m.setFlash("checkpoint saved")
		cmds = append(cmds, flashTick())
	}
	if res.Won {
		m.finishLevel(level, turns+1)
		cmds = append(cmds, flashTick())
	}
	return tea.Batch(cmds...)
}

// finishLevel persists the completed level's solution and records the
// outcome, then points the save file at the next level.
func (m *PlayModel) finishLevel(level, turns int) {
	st := m.opts.State
	st.SetSolution(level, m.recorded)
	st.Checkpoint = nil
	m.recorded = ""

	if m.sess.Status() == engine.StatusComplete {
		// Finished games start over from the top, solutions retained.
		st.Level = 0
	} else {
		st.Level = m.sess.Level()
	}
	m.persist()

	if !m.sess.Game().Levels[level].IsMessage {
		m.recordResult(level, storage.StatusSolved, turns)
		m.setFlash(fmt.Sprintf("level %d solved", level+1))
	}
	m.levelStart = time.Now()
}

// saveCheckpoint persists the latched checkpoint. The solution is written
// with a trailing marker: inputs past a restored checkpoint cannot be
// replayed from the level start.
func (m *PlayModel) saveCheckpoint() {
	st := m.opts.State
	st.Level = m.sess.Level()
	st.Checkpoint = save.NewSnapshot(m.sess.Game(), m.sess.Checkpoint())
	st.SetSolution(m.sess.Level(), m.recorded+string(replay.Marker))
	m.persist()
}

// recordResult stores one play outcome, best effort.
func (m *PlayModel) recordResult(level int, status string, turns int) {
	if m.opts.Store == nil {
		return
	}
	//nolint:errcheck // best-effort record, play continues regardless
	m.opts.Store.RecordResult(storage.Result{
		Game:     m.opts.Name,
		Level:    level,
		Status:   status,
		Mode:     storage.ModePlay,
		Turns:    turns,
		Duration: time.Since(m.levelStart),
	})
}

// persist writes the save file, best effort.
func (m *PlayModel) persist() {
	if m.opts.SavePath == "" {
		return
	}
	//nolint:errcheck // best-effort save, play continues regardless
	m.opts.State.Write(m.opts.SavePath)
}

func (m *PlayModel) setFlash(text string) {
	m.flash = text
	m.flashSet = time.Now()
}

// Err returns the engine fault that ended the session, if any.
func (m PlayModel) Err() error {
	return m.err
}

// Done reports whether the player left the game screen without killing the
// whole program. The SSH front end then returns to the picker.
func (m PlayModel) Done() bool {
	return m.done
}

func (m PlayModel) title() string {
	if t := m.sess.Game().Title; t != "" {
		return t
	}
	return m.opts.Name
}

// View renders the current state to a string for display.
func (m PlayModel) View() string {
	if m.quitting || m.done || m.err != nil {
		return ""
	}
	drawSession(m.screen, m.sess, m.title(), m.flash)
	return RenderScreen(m.screen) + "\n" + m.help.View(m.keys)
}

// RunPlay runs one interactive session in the local terminal. The returned
// error is an engine fault or a terminal failure; leaving the game normally
// returns nil.
func RunPlay(sess *engine.Session, opts PlayOptions, altScreen bool) error {
	var popts []tea.ProgramOption
	if altScreen {
		popts = append(popts, tea.WithAltScreen())
	}
	p := tea.NewProgram(NewPlayModel(sess, opts), popts...)

	final, err := p.Run()
	if err != nil {
		return err
	}
	if pm, ok := final.(PlayModel); ok && pm.err != nil {
		return fmt.Errorf("engine fault: %w", pm.err)
	}
	return nil
}
