// Package tui provides the Bubble Tea terminal interface for Plume.
//
// The root model is a router over the session lifecycle: while the session
// restores it shows a progress screen, signed-out users get the login form,
// and signed-in users get the shell with its role-gated views. The router
// also owns every backend call; views emit request messages and the router
// turns them into commands, so no view holds a client reference.
package tui

import (
	"context"
	"errors"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"

	"github.com/plumehq/plume/internal/api"
	"github.com/plumehq/plume/internal/log"
	"github.com/plumehq/plume/internal/session"
)

type view int

const (
	viewRestoring view = iota // Session restore in progress
	viewLogin                 // Signed out
	viewShell                 // Signed in
)

// Model is the root Bubble Tea model.
type Model struct {
	sessions *session.Manager
	backend  *api.Client
	logger   log.Logger

	ctx       context.Context
	ctxCancel context.CancelFunc

	view  view
	login loginModel
	shell shellModel

	spinner   spinner.Model
	styles    Styles
	keys      keyMap
	lastCtrlC time.Time

	width  int
	height int

	viewBuf strings.Builder
}

// New creates the root model. Returns an error if required dependencies
// are nil.
//
// IMPORTANT: ctx MUST be the same context passed to tea.WithContext()
// to ensure consistent cancellation behavior.
func New(ctx context.Context, sessions *session.Manager, backend *api.Client, logger log.Logger) (*Model, error) {
	if ctx == nil {
		return nil, errors.New("tui.New: ctx is required")
	}
	if sessions == nil {
		return nil, errors.New("tui.New: session manager is required")
	}
	if backend == nil {
		return nil, errors.New("tui.New: backend client is required")
	}
	if logger == nil {
		logger = log.NewNop()
	}

	ctx, cancel := context.WithCancel(ctx)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	styles := DefaultStyles()
	keys := newKeyMap()

	return &Model{
		sessions:  sessions,
		backend:   backend,
		logger:    logger,
		ctx:       ctx,
		ctxCancel: cancel,
		view:      viewRestoring,
		login:     newLoginModel(styles, keys),
		spinner:   sp,
		styles:    styles,
		keys:      keys,
		width:     80,
		height:    24,
	}, nil
}

// Init implements tea.Model. The session restore runs as a command so the
// progress screen renders immediately.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.restoreSession())
}

// Update implements tea.Model.
//
//nolint:gocognit,gocyclo // Bubble Tea Update requires a type switch on all message types
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		cmds = append(cmds, cmd)
		if m.view == viewShell {
			m.shell, cmd = m.shell.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case sessionRestoredMsg:
		return m.handleRestored(msg)

	case loginSubmitMsg:
		return m, m.performLogin(msg.email, msg.password)

	case loginResultMsg:
		return m.handleLoginResult(msg)

	case logoutRequestMsg:
		// Logout is synchronous: the store clear happens before the next
		// frame and the login view appears immediately.
		m.sessions.Logout()
		m.view = viewLogin
		m.login = newLoginModel(m.styles, m.keys)
		return m, m.login.Init()

	case askSubmitMsg:
		return m, m.askQuery(m.sessions.Snapshot().User.ID, msg.query)

	case reloadCollectionsMsg:
		return m.forwardShell(msg, m.loadCollections())

	case openCollectionMsg:
		return m, m.loadDocuments(msg.name)

	case newCollectionMsg:
		return m, m.createCollection(msg.name)

	case removeDocumentMsg:
		return m, m.deleteDocument(msg.source, msg.collection)

	case removeTagMsg:
		return m, m.deleteDocumentsByTag(msg.tag)

	case uploadRequestMsg:
		input := msg.input
		input.UserID = m.sessions.Snapshot().User.ID
		return m, m.uploadDocument(input)

	case filterTagMsg:
		return m, m.loadDocumentsByTag(msg.tag)

	case reloadTagsMsg:
		return m, m.loadTags()

	case reloadHistoryMsg:
		return m, m.loadHistory(m.sessions.Snapshot().User.ID)

	case saveParamsRequestMsg:
		return m, m.saveParameters(m.sessions.Snapshot().User.ID, msg.params)

	case spinner.TickMsg:
		if m.view == viewRestoring {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m.forwardActive(msg)
	}

	return m.forwardActive(msg)
}

// handleRestored routes to the shell or the login form once the persisted
// session has been read.
func (m *Model) handleRestored(msg sessionRestoredMsg) (tea.Model, tea.Cmd) {
	if msg.state.Authenticated() {
		m.view = viewShell
		m.shell = newShellModel(msg.state, m.styles, m.keys)
		return m, tea.Batch(m.shell.Init(), m.resizeShell())
	}

	m.view = viewLogin
	return m, m.login.Init()
}

func (m *Model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	}

	m.view = viewShell
	m.shell = newShellModel(m.sessions.Snapshot(), m.styles, m.keys)
	return m, tea.Batch(m.shell.Init(), m.resizeShell())
}

// resizeShell replays the current window size so a freshly created shell
// lays out correctly.
func (m *Model) resizeShell() tea.Cmd {
	width, height := m.width, m.height
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: width, Height: height}
	}
}

// forwardShell delivers a message to the shell (so the emitting view can
// flip into its loading state) and also runs the matching backend command.
func (m *Model) forwardShell(msg tea.Msg, cmd tea.Cmd) (tea.Model, tea.Cmd) {
	var shellCmd tea.Cmd
	if m.view == viewShell {
		m.shell, shellCmd = m.shell.Update(msg)
	}
	return m, tea.Batch(cmd, shellCmd)
}

func (m *Model) forwardActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case viewLogin:
		m.login, cmd = m.login.Update(msg)
	case viewShell:
		m.shell, cmd = m.shell.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, m.cleanup()
	}

	k := msg.Key()
	if k.Mod&tea.ModCtrl != 0 && k.Code == 'c' {
		now := time.Now()
		// Double Ctrl+C within 1 second = quit
		if now.Sub(m.lastCtrlC) < time.Second {
			return m, m.cleanup()
		}
		m.lastCtrlC = now
		return m, nil
	}

	return m.forwardActive(msg)
}

// cleanup cancels outstanding backend calls and quits.
func (m *Model) cleanup() tea.Cmd {
	if m.ctxCancel != nil {
		m.ctxCancel()
		m.ctxCancel = nil
	}
	return tea.Quit
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	m.viewBuf.Reset()

	switch m.view {
	case viewRestoring:
		_, _ = m.viewBuf.WriteString(m.styles.RenderBanner())
		_, _ = m.viewBuf.WriteString("\n")
		_, _ = m.viewBuf.WriteString(m.spinner.View())
		_, _ = m.viewBuf.WriteString(m.styles.System.Render(" restoring session..."))
	case viewLogin:
		_, _ = m.viewBuf.WriteString(m.login.View())
	case viewShell:
		_, _ = m.viewBuf.WriteString(m.shell.View())
	}

	v := tea.NewView(m.viewBuf.String())
	v.AltScreen = true
	return v
}
