package tui

import (
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textarea"
	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/plumehq/plume/internal/api"
)

// askSubmitMsg asks the router to send a query to the backend.
type askSubmitMsg struct {
	query string
}

// Memory bounds to prevent unbounded growth.
const (
	maxMessages = 100
	maxHistory  = 100
)

// Message role constants for consistent display.
const (
	roleUser      = "user"
	roleAssistant = "assistant"
	roleSystem    = "system"
	roleError     = "error"
)

// Layout constants for viewport height calculation.
const (
	separatorLines = 2
	promptLines    = 1
	minViewport    = 3
)

type chatState int

const (
	chatInput    chatState = iota // Awaiting user input
	chatThinking                  // Query in flight
)

// chatMessage is a conversation entry for display.
type chatMessage struct {
	Role    string
	Text    string
	Sources []api.Source
}

// chatModel is the question-and-answer view. Answers are rendered as
// Markdown with their grounding sources listed underneath.
type chatModel struct {
	input      textarea.Model
	history    []string
	historyIdx int

	state    chatState
	spinner  spinner.Model
	viewport viewport.Model
	messages []chatMessage

	markdown *markdownRenderer
	styles   Styles
	keys     keyMap

	width  int
	height int
}

func newChatModel(styles Styles, keys keyMap) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Ask about your documents..."
	ta.SetHeight(1)
	ta.SetWidth(120)
	ta.ShowLineNumbers = false

	cleanStyle := textarea.StyleState{
		Base:        lipgloss.NewStyle(),
		Text:        lipgloss.NewStyle(),
		Placeholder: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Prompt:      lipgloss.NewStyle(),
	}
	ta.SetStyles(textarea.Styles{Focused: cleanStyle, Blurred: cleanStyle})
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(viewport.WithWidth(80), viewport.WithHeight(20))
	vp.MouseWheelEnabled = true
	vp.SoftWrap = true
	vp.KeyMap = viewport.KeyMap{} // keys are routed explicitly

	return chatModel{
		input:    ta,
		spinner:  sp,
		viewport: vp,
		history:  make([]string, 0, maxHistory),
		markdown: newMarkdownRenderer(80),
		styles:   styles,
		keys:     keys,
		width:    80,
	}
}

func (c chatModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, c.input.Focus())
}

func (c chatModel) Update(msg tea.Msg) (chatModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return c.handleKey(msg)

	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height

		inputHeight := c.input.Height() + promptLines
		vpHeight := max(msg.Height-separatorLines-inputHeight, minViewport)
		c.viewport.SetWidth(msg.Width)
		c.viewport.SetHeight(vpHeight)
		c.input.SetWidth(msg.Width - 4)
		c.markdown.UpdateWidth(msg.Width)
		c.rebuildViewport()
		return c, nil

	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		c.viewport, cmd = c.viewport.Update(msg)
		return c, cmd

	case spinner.TickMsg:
		if c.state != chatThinking {
			return c, nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		c.rebuildViewport()
		return c, cmd

	case answerMsg:
		c.state = chatInput
		if msg.err != nil {
			c.addMessage(chatMessage{Role: roleError, Text: msg.err.Error()})
		} else {
			c.addMessage(chatMessage{
				Role:    roleAssistant,
				Text:    msg.answer.Answer,
				Sources: msg.answer.Sources,
			})
		}
		c.rebuildViewport()
		c.viewport.GotoBottom()
		return c, c.input.Focus()
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c chatModel) handleKey(msg tea.KeyPressMsg) (chatModel, tea.Cmd) {
	k := msg.Key()

	switch {
	case key.Matches(msg, c.keys.Submit):
		if c.state == chatInput && k.Mod&tea.ModShift == 0 {
			return c.submit()
		}

	case key.Matches(msg, c.keys.Up):
		if c.state == chatInput && c.input.Line() == 0 {
			return c.navigateHistory(-1)
		}

	case key.Matches(msg, c.keys.Down):
		if c.state == chatInput && c.input.Line() == c.input.LineCount()-1 {
			return c.navigateHistory(1)
		}

	case k.Code == tea.KeyPgUp:
		c.viewport.PageUp()
		return c, nil

	case k.Code == tea.KeyPgDown:
		c.viewport.PageDown()
		return c, nil
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c chatModel) submit() (chatModel, tea.Cmd) {
	query := strings.TrimSpace(c.input.Value())
	if query == "" {
		return c, nil
	}

	c.history = append(c.history, query)
	if len(c.history) > maxHistory {
		c.history = c.history[len(c.history)-maxHistory:]
	}
	c.historyIdx = len(c.history)

	c.addMessage(chatMessage{Role: roleUser, Text: query})
	c.input.Reset()
	c.state = chatThinking
	c.rebuildViewport()
	c.viewport.GotoBottom()

	return c, tea.Batch(
		c.spinner.Tick,
		func() tea.Msg { return askSubmitMsg{query: query} },
	)
}

func (c chatModel) navigateHistory(delta int) (chatModel, tea.Cmd) {
	if len(c.history) == 0 {
		return c, nil
	}

	c.historyIdx += delta
	if c.historyIdx < 0 {
		c.historyIdx = 0
	}
	if c.historyIdx > len(c.history) {
		c.historyIdx = len(c.history)
	}

	if c.historyIdx == len(c.history) {
		c.input.SetValue("")
	} else {
		c.input.SetValue(c.history[c.historyIdx])
		c.input.CursorEnd()
	}
	return c, nil
}

// addMessage appends a message and enforces the maxMessages bound.
func (c *chatModel) addMessage(msg chatMessage) {
	c.messages = append(c.messages, msg)
	if len(c.messages) > maxMessages {
		c.messages = c.messages[len(c.messages)-maxMessages:]
	}
}

func (c *chatModel) rebuildViewport() {
	var b strings.Builder

	if len(c.messages) == 0 {
		_, _ = b.WriteString(c.styles.System.Render("Ask a question; answers cite the documents they came from."))
		_, _ = b.WriteString("\n\n")
	}

	for _, msg := range c.messages {
		switch msg.Role {
		case roleUser:
			_, _ = b.WriteString(c.styles.User.Render("You> "))
			_, _ = b.WriteString(msg.Text)
		case roleAssistant:
			_, _ = b.WriteString(c.styles.Assistant.Render("Plume> "))
			_, _ = b.WriteString(c.markdown.Render(msg.Text))
			if len(msg.Sources) > 0 {
				_, _ = b.WriteString("\n")
				_, _ = b.WriteString(c.renderSources(msg.Sources))
			}
		case roleSystem:
			_, _ = b.WriteString(c.styles.System.Render(msg.Text))
		case roleError:
			_, _ = b.WriteString(c.styles.Error.Render("Error: " + msg.Text))
		}
		_, _ = b.WriteString("\n\n")
	}

	if c.state == chatThinking {
		_, _ = b.WriteString(c.spinner.View())
		_, _ = b.WriteString(" Searching documents...\n\n")
	}

	c.viewport.SetContent(b.String())
}

func (c *chatModel) renderSources(sources []api.Source) string {
	var b strings.Builder
	_, _ = b.WriteString(c.styles.Source.Render("Sources:"))
	for _, src := range sources {
		_, _ = b.WriteString("\n")
		line := "  • " + src.Source
		if src.Collection != "" {
			line += " (" + src.Collection + ")"
		}
		_, _ = b.WriteString(c.styles.Source.Render(line))
	}
	return b.String()
}

func (c chatModel) View() string {
	var b strings.Builder

	_, _ = b.WriteString(c.viewport.View())
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(c.renderSeparator())
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(c.styles.Prompt.Render("> "))
	_, _ = b.WriteString(c.input.View())
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(c.renderSeparator())

	return b.String()
}

func (c chatModel) renderSeparator() string {
	width := c.width
	if width <= 0 {
		width = 80
	}
	return c.styles.Separator.Render(strings.Repeat("─", width))
}
