package tui

import (
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/plumehq/plume/internal/session"
)

// logoutRequestMsg asks the router to end the session.
type logoutRequestMsg struct{}

// tabID identifies one of the shell's views.
type tabID int

const (
	tabChat tabID = iota
	tabDocuments
	tabSettings
	tabHistory
)

var tabLabels = map[tabID]string{
	tabChat:      "Chat",
	tabDocuments: "Documents",
	tabSettings:  "Settings",
	tabHistory:   "History",
}

// tabsFor returns the views a role may open. Document management is
// admin-only; everything else is available to every signed-in user.
func tabsFor(role session.Role) []tabID {
	if role == session.RoleAdmin {
		return []tabID{tabChat, tabDocuments, tabSettings, tabHistory}
	}
	return []tabID{tabChat, tabSettings, tabHistory}
}

// Shell chrome: header, tab bar, separator, and the trailing status line.
const shellChromeLines = 4

// shellModel hosts the signed-in experience: a role-gated tab bar and one
// active view. Result messages are broadcast to every view so a slow
// response still lands after the user switches tabs.
type shellModel struct {
	user session.User
	tabs []tabID

	active  int
	visited map[tabID]bool

	chat      chatModel
	documents documentsModel
	settings  settingsModel
	history   historyModel

	styles Styles
	keys   keyMap
	width  int
	height int
}

func newShellModel(state session.State, styles Styles, keys keyMap) shellModel {
	return shellModel{
		user:      state.User,
		tabs:      tabsFor(state.User.Role),
		visited:   map[tabID]bool{tabChat: true},
		chat:      newChatModel(styles, keys),
		documents: newDocumentsModel(styles, keys),
		settings:  newSettingsModel(styles, keys).withParameters(state.Parameters, state.HasParameters),
		history:   newHistoryModel(styles, keys),
		styles:    styles,
		keys:      keys,
		width:     80,
		height:    24,
	}
}

func (s shellModel) Init() tea.Cmd {
	return s.chat.Init()
}

func (s shellModel) activeTab() tabID {
	return s.tabs[s.active]
}

func (s shellModel) Update(msg tea.Msg) (shellModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return s.handleKey(msg)

	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		return s.broadcast(s.viewSize())
	}

	// Everything else (results, spinner ticks, mouse) goes to every view.
	// Spinner ticks carry IDs, so only the owning spinner advances.
	return s.broadcast(msg)
}

// viewSize is the window size with the shell chrome subtracted.
func (s shellModel) viewSize() tea.WindowSizeMsg {
	return tea.WindowSizeMsg{
		Width:  s.width,
		Height: max(s.height-shellChromeLines, minViewport),
	}
}

func (s shellModel) broadcast(msg tea.Msg) (shellModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	s.chat, cmd = s.chat.Update(msg)
	cmds = append(cmds, cmd)
	s.documents, cmd = s.documents.Update(msg)
	cmds = append(cmds, cmd)
	s.settings, cmd = s.settings.Update(msg)
	cmds = append(cmds, cmd)
	s.history, cmd = s.history.Update(msg)
	cmds = append(cmds, cmd)

	return s, tea.Batch(cmds...)
}

func (s shellModel) handleKey(msg tea.KeyPressMsg) (shellModel, tea.Cmd) {
	switch {
	case key.Matches(msg, s.keys.Logout):
		return s, func() tea.Msg { return logoutRequestMsg{} }

	case key.Matches(msg, s.keys.PrevTab):
		return s.switchTab((s.active - 1 + len(s.tabs)) % len(s.tabs))

	case key.Matches(msg, s.keys.NextTab):
		return s.switchTab((s.active + 1) % len(s.tabs))

	case key.Matches(msg, s.keys.SwitchTab):
		// Digits switch views only when no text field would swallow them.
		if !s.capturingText() {
			if idx := int(msg.Key().Code - '1'); idx < len(s.tabs) {
				return s.switchTab(idx)
			}
			return s, nil
		}
	}

	return s.updateActive(msg)
}

// capturingText reports whether the active view currently owns free-text
// input, in which case printable keys must reach it untouched.
func (s shellModel) capturingText() bool {
	switch s.activeTab() {
	case tabChat:
		return true
	case tabDocuments:
		return s.documents.inputActive()
	case tabSettings:
		return s.settings.editing
	default:
		return false
	}
}

// switchTab activates a view, running its Init the first time it opens so
// data loads lazily.
func (s shellModel) switchTab(idx int) (shellModel, tea.Cmd) {
	s.active = idx
	tab := s.activeTab()

	var cmds []tea.Cmd
	if !s.visited[tab] {
		s.visited[tab] = true
		switch tab {
		case tabDocuments:
			cmds = append(cmds, s.documents.Init())
		case tabHistory:
			cmds = append(cmds, s.history.Init())
		}
	}

	// Resize the newly visible view in case the window changed while it
	// was hidden.
	var cmd tea.Cmd
	s, cmd = s.updateActive(s.viewSize())
	cmds = append(cmds, cmd)
	return s, tea.Batch(cmds...)
}

func (s shellModel) updateActive(msg tea.Msg) (shellModel, tea.Cmd) {
	var cmd tea.Cmd
	switch s.activeTab() {
	case tabChat:
		s.chat, cmd = s.chat.Update(msg)
	case tabDocuments:
		s.documents, cmd = s.documents.Update(msg)
	case tabSettings:
		s.settings, cmd = s.settings.Update(msg)
	case tabHistory:
		s.history, cmd = s.history.Update(msg)
	}
	return s, cmd
}

func (s shellModel) View() string {
	var b strings.Builder

	header := "Plume · " + s.user.Email + " (" + string(s.user.Role) + ")"
	_, _ = b.WriteString(s.styles.Title.Render(header))
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(s.renderTabs())
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(s.styles.Separator.Render(strings.Repeat("─", max(s.width, 1))))
	_, _ = b.WriteString("\n")

	switch s.activeTab() {
	case tabChat:
		_, _ = b.WriteString(s.chat.View())
	case tabDocuments:
		_, _ = b.WriteString(s.documents.View())
	case tabSettings:
		_, _ = b.WriteString(s.settings.View())
	case tabHistory:
		_, _ = b.WriteString(s.history.View())
	}

	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(s.styles.StatusBar.Render(helpLine(s.keys.NextTab, s.keys.Logout, s.keys.Quit)))

	return b.String()
}

func (s shellModel) renderTabs() string {
	parts := make([]string, 0, len(s.tabs))
	for i, tab := range s.tabs {
		label := tabLabels[tab]
		if i == s.active {
			parts = append(parts, s.styles.TabActive.Render(label))
		} else {
			parts = append(parts, s.styles.TabIdle.Render(label))
		}
	}
	return strings.Join(parts, " ")
}
