package tui

import (
	"errors"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/plumehq/plume/internal/api"
	"github.com/plumehq/plume/internal/session"
)

// loginErrorText maps a login failure to the line shown under the form.
func loginErrorText(err error) string {
	switch {
	case errors.Is(err, api.ErrInvalidCredentials):
		return "invalid email or password"
	case errors.Is(err, session.ErrLoginInProgress):
		return "a sign-in attempt is already running"
	default:
		return "sign-in failed: " + err.Error()
	}
}

// loginSubmitMsg asks the router to start a login attempt. Emitted by the
// login view; the router owns the session manager and issues the call.
type loginSubmitMsg struct {
	email    string
	password string
}

const (
	focusEmail = iota
	focusPassword
)

// loginModel is the credentials form shown to signed-out users.
type loginModel struct {
	email    textinput.Model
	password textinput.Model
	focus    int

	// submitting disables the form while a login is in flight so a second
	// Enter cannot start an overlapping attempt.
	submitting bool
	errText    string

	spinner spinner.Model
	styles  Styles
	keys    keyMap
	width   int
}

func newLoginModel(styles Styles, keys keyMap) loginModel {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 254
	email.SetWidth(40)

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 128
	password.SetWidth(40)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return loginModel{
		email:    email,
		password: password,
		spinner:  sp,
		styles:   styles,
		keys:     keys,
		width:    80,
	}
}

func (l loginModel) Init() tea.Cmd {
	return l.email.Focus()
}

func (l loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return l.handleKey(msg)

	case tea.WindowSizeMsg:
		l.width = msg.Width
		return l, nil

	case spinner.TickMsg:
		if !l.submitting {
			return l, nil
		}
		var cmd tea.Cmd
		l.spinner, cmd = l.spinner.Update(msg)
		return l, cmd

	case loginResultMsg:
		l.submitting = false
		if msg.err != nil {
			l.errText = loginErrorText(msg.err)
			l.password.Reset()
			return l, l.setFocus(focusPassword)
		}
		return l, nil
	}

	return l.updateInputs(msg)
}

func (l loginModel) handleKey(msg tea.KeyPressMsg) (loginModel, tea.Cmd) {
	if l.submitting {
		// The form is frozen while authenticating.
		return l, nil
	}

	switch {
	case key.Matches(msg, l.keys.NextTab, l.keys.Up, l.keys.Down):
		return l, l.setFocus((l.focus + 1) % 2)

	case key.Matches(msg, l.keys.Submit):
		if l.focus == focusEmail {
			return l, l.setFocus(focusPassword)
		}
		return l.submit()
	}

	return l.updateInputs(msg)
}

func (l loginModel) submit() (loginModel, tea.Cmd) {
	email := strings.TrimSpace(l.email.Value())
	password := l.password.Value()
	if email == "" || password == "" {
		l.errText = "email and password are required"
		return l, nil
	}

	l.submitting = true
	l.errText = ""
	return l, tea.Batch(
		l.spinner.Tick,
		func() tea.Msg { return loginSubmitMsg{email: email, password: password} },
	)
}

func (l *loginModel) setFocus(target int) tea.Cmd {
	l.focus = target
	if target == focusEmail {
		l.password.Blur()
		return l.email.Focus()
	}
	l.email.Blur()
	return l.password.Focus()
}

func (l loginModel) updateInputs(msg tea.Msg) (loginModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	l.email, cmd = l.email.Update(msg)
	cmds = append(cmds, cmd)
	l.password, cmd = l.password.Update(msg)
	cmds = append(cmds, cmd)

	return l, tea.Batch(cmds...)
}

func (l loginModel) View() string {
	var b strings.Builder

	_, _ = b.WriteString(l.styles.RenderBanner())
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(l.styles.Title.Render("Sign in"))
	_, _ = b.WriteString("\n\n")

	_, _ = b.WriteString(l.styles.Label.Render("Email"))
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(l.email.View())
	_, _ = b.WriteString("\n\n")
	_, _ = b.WriteString(l.styles.Label.Render("Password"))
	_, _ = b.WriteString("\n")
	_, _ = b.WriteString(l.password.View())
	_, _ = b.WriteString("\n\n")

	switch {
	case l.submitting:
		_, _ = b.WriteString(l.spinner.View())
		_, _ = b.WriteString(l.styles.System.Render(" signing in..."))
	case l.errText != "":
		_, _ = b.WriteString(l.styles.Error.Render(l.errText))
	default:
		_, _ = b.WriteString(l.styles.System.Render("enter to submit, tab to switch fields"))
	}
	_, _ = b.WriteString("\n")

	return b.String()
}
