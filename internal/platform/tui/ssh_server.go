package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/rulegrid/rulegrid/internal/catalog"
	"github.com/rulegrid/rulegrid/internal/engine"
	"github.com/rulegrid/rulegrid/internal/storage"
)

// ServerConfig holds configuration for the SSH server.
type ServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23235").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key is auto-generated under DataDir.
	HostKeyPath string

	// DataDir is where the auto-generated host key lives.
	// If empty, ~/.rulegrid is used.
	DataDir string

	// DBPath is the path to the results database. Empty disables recording.
	DBPath string

	// GamesDir is an extra catalog directory served next to the builtins.
	GamesDir string

	// Seed seeds every session's randomness context, so remote players see
	// the same deterministic games.
	Seed int64

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration
}

// DefaultServerConfig returns a config with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Address:     ":23235",
		DBPath:      "~/.rulegrid/results.db",
		Seed:        1,
		IdleTimeout: 30 * time.Minute,
	}
}

// Server hosts the play TUI over SSH via Wish.
type Server struct {
	config ServerConfig
	server *ssh.Server
	store  *storage.Store
	cat    *catalog.Catalog
	logger *log.Logger
}

// NewServer creates a new SSH server with the given configuration.
func NewServer(cfg ServerConfig) (*Server, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "rulegrid-ssh",
	})

	var store *storage.Store
	if cfg.DBPath != "" {
		var err error
		store, err = storage.Open(cfg.DBPath)
		if err != nil {
			logger.Warn("could not open results database", "error", err)
			// Continue without storage
		}
	}

	srv := &Server{
		config: cfg,
		store:  store,
		cat:    catalog.New(cfg.GamesDir),
		logger: logger,
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		dataDir := cfg.DataDir
		if dataDir == "" {
			home, homeErr := os.UserHomeDir()
			if homeErr != nil {
				return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
			}
			dataDir = filepath.Join(home, ".rulegrid")
		}
		hostKeyPath = filepath.Join(dataDir, "host_key")
	}
	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *Server) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	model := NewSessionModel(s.cat, s.store, s.logger, s.config.Seed)
	model.width = pty.Window.Width
	model.height = pty.Window.Height

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *Server) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()

	<-done
	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.store != nil {
		s.store.Close()
	}
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *Server) Addr() string {
	return s.config.Address
}

// SessionModel manages the full remote session flow: picker -> play ->
// picker, with the stats screen on tab. This is the top-level model used
// for SSH sessions.
type SessionModel struct {
	cat    *catalog.Catalog
	store  *storage.Store
	logger *log.Logger
	seed   int64

	width  int
	height int

	picker   PickerModel
	play     *PlayModel
	stats    *StatsModel
	inPlay   bool
	inStats  bool
	quitting bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(cat *catalog.Catalog, store *storage.Store, logger *log.Logger, seed int64) SessionModel {
	return SessionModel{
		cat:    cat,
		store:  store,
		logger: logger,
		seed:   seed,
		picker: NewPickerModel(cat.List(), store),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.picker.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
	}

	switch {
	case m.inPlay && m.play != nil:
		return m.updatePlay(msg)
	case m.inStats && m.stats != nil:
		return m.updateStats(msg)
	default:
		return m.updatePicker(msg)
	}
}

// updatePicker handles updates when the picker is active.
func (m SessionModel) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	mod, cmd := m.picker.Update(msg)
	if pm, ok := mod.(PickerModel); ok {
		m.picker = pm
	}

	switch {
	case m.picker.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.picker.WantsStats():
		sm := NewStatsModel(m.store, m.width, m.height)
		m.stats = &sm
		m.inStats = true
		return m, m.stats.Init()

	case m.picker.Selected() != nil:
		return m, (&m).openGame(m.picker.Selected().Name)
	}
	return m, cmd
}

// openGame starts a play submodel for the picked game. Remote sessions get
// no save file; progress lives only as long as the connection.
func (m *SessionModel) openGame(name string) tea.Cmd {
	def, entry, err := m.cat.Open(name)
	if err != nil {
		m.logger.Warn("cannot open game", "game", name, "error", err)
		m.picker = NewPickerModel(m.cat.List(), m.store)
		return nil
	}
	sess, err := engine.NewSession(def, 0, m.seed)
	if err != nil {
		m.logger.Warn("cannot start session", "game", name, "error", err)
		m.picker = NewPickerModel(m.cat.List(), m.store)
		return nil
	}

	pm := NewPlayModel(sess, PlayOptions{Name: entry.Name, Store: m.store})
	if m.width > 0 {
		if mod, _ := pm.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height}); mod != nil {
			if p, ok := mod.(PlayModel); ok {
				pm = p
			}
		}
	}
	m.play = &pm
	m.inPlay = true
	return pm.Init()
}

// updatePlay handles updates when a game is active.
func (m SessionModel) updatePlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	mod, cmd := m.play.Update(msg)
	if pm, ok := mod.(PlayModel); ok {
		*m.play = pm
	}

	switch {
	case m.play.quitting:
		m.quitting = true
		return m, tea.Quit

	case m.play.Done() || m.play.Err() != nil:
		// The submodel asked to quit; swallow that and show the picker.
		if err := m.play.Err(); err != nil {
			m.logger.Error("session fault", "error", err)
		}
		m.inPlay = false
		m.play = nil
		m.picker = m.resizedPicker()
		return m, m.picker.Init()
	}
	return m, cmd
}

// updateStats handles updates when the stats screen is active.
func (m SessionModel) updateStats(msg tea.Msg) (tea.Model, tea.Cmd) {
	mod, cmd := m.stats.Update(msg)
	if sm, ok := mod.(StatsModel); ok {
		*m.stats = sm
	}

	switch {
	case m.stats.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.stats.IsGoingBack():
		m.inStats = false
		m.stats = nil
		m.picker = m.resizedPicker()
		return m, m.picker.Init()
	}
	return m, cmd
}

// resizedPicker builds a fresh picker carrying the current window size.
func (m SessionModel) resizedPicker() PickerModel {
	p := NewPickerModel(m.cat.List(), m.store)
	p.width = m.width
	p.height = m.height
	p.help.Width = m.width
	return p
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}
	switch {
	case m.inPlay && m.play != nil:
		return m.play.View()
	case m.inStats && m.stats != nil:
		return m.stats.View()
	default:
		return m.picker.View()
	}
}
