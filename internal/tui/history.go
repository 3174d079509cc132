package tui

import (
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"

	"github.com/plumehq/plume/internal/api"
)

// reloadHistoryMsg asks the router to fetch the user's query history.
type reloadHistoryMsg struct{}

// historyModel shows past queries and their answers as the backend
// returns them.
type historyModel struct {
	entries []api.HistoryEntry
	loaded  bool
	loading bool
	errText string

	viewport viewport.Model
	spinner  spinner.Model
	markdown *markdownRenderer
	styles   Styles
	keys     keyMap
	width    int
}

func newHistoryModel(styles Styles, keys keyMap) historyModel {
	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return historyModel{
		viewport: vp,
		spinner:  sp,
		markdown: newMarkdownRenderer(80),
		styles:   styles,
		keys:     keys,
		width:    80,
	}
}

func (h historyModel) Init() tea.Cmd {
	h.loading = true
	return tea.Batch(h.spinner.Tick,
		func() tea.Msg { return reloadHistoryMsg{} })
}

func (h historyModel) Update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, h.keys.Refresh):
			h.loading = true
			return h, tea.Batch(h.spinner.Tick,
				func() tea.Msg { return reloadHistoryMsg{} })
		case key.Matches(msg, h.keys.Up):
			h.viewport.ScrollUp(1)
		case key.Matches(msg, h.keys.Down):
			h.viewport.ScrollDown(1)
		case msg.Key().Code == tea.KeyPgUp:
			h.viewport.PageUp()
		case msg.Key().Code == tea.KeyPgDown:
			h.viewport.PageDown()
		}
		return h, nil

	case tea.WindowSizeMsg:
		h.width = msg.Width
		h.viewport.SetWidth(msg.Width)
		h.viewport.SetHeight(max(msg.Height-4, minViewport))
		h.markdown.UpdateWidth(msg.Width)
		h.rebuildViewport()
		return h, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		h.viewport, cmd = h.viewport.Update(msg)
		return h, cmd

	case spinner.TickMsg:
		if !h.loading {
			return h, nil
		}
		var cmd tea.Cmd
		h.spinner, cmd = h.spinner.Update(msg)
		return h, cmd

	case historyMsg:
		h.loading = false
		h.loaded = true
		if msg.err != nil {
			h.errText = msg.err.Error()
			return h, nil
		}
		h.errText = ""
		h.entries = msg.entries
		h.rebuildViewport()
		return h, nil
	}

	return h, nil
}

func (h *historyModel) rebuildViewport() {
	var b strings.Builder

	if len(h.entries) == 0 {
		_, _ = b.WriteString(h.styles.System.Render("no queries yet"))
	}

	for _, entry := range h.entries {
		_, _ = b.WriteString(h.styles.User.Render("You> "))
		_, _ = b.WriteString(entry.Query)
		_, _ = b.WriteString("\n")
		_, _ = b.WriteString(h.styles.Assistant.Render("Plume> "))
		_, _ = b.WriteString(h.markdown.Render(entry.Answer))
		if !entry.CreatedAt.IsZero() {
			_, _ = b.WriteString("\n")
			_, _ = b.WriteString(h.styles.System.Render(entry.CreatedAt.Local().Format("2006-01-02 15:04")))
		}
		_, _ = b.WriteString("\n\n")
	}

	h.viewport.SetContent(b.String())
}

func (h historyModel) View() string {
	var b strings.Builder

	_, _ = b.WriteString(h.styles.Title.Render("History"))
	_, _ = b.WriteString("\n\n")

	switch {
	case h.loading:
		_, _ = b.WriteString(h.spinner.View())
		_, _ = b.WriteString(h.styles.System.Render(" loading history..."))
	case h.errText != "":
		_, _ = b.WriteString(h.styles.Error.Render(h.errText))
	default:
		_, _ = b.WriteString(h.viewport.View())
	}

	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(h.styles.System.Render(helpLine(h.keys.Refresh) + " · ↑/↓ scroll"))

	return b.String()
}
