package tui

import (
	"fmt"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/plumehq/plume/internal/api"
)

// saveParamsRequestMsg asks the router to persist new retrieval settings.
type saveParamsRequestMsg struct {
	params api.Parameters
}

// Editable fields, in display order.
type settingsField int

const (
	fieldModel settingsField = iota
	fieldChunkSize
	fieldChunkOverlap
	fieldThreshold
	fieldTopK
	fieldPrompt
	fieldCount
)

var fieldLabels = map[settingsField]string{
	fieldModel:        "Model",
	fieldChunkSize:    "Chunk size",
	fieldChunkOverlap: "Chunk overlap",
	fieldThreshold:    "Similarity threshold",
	fieldTopK:         "Results per query (k)",
	fieldPrompt:       "Prompt template",
}

// settingsModel lets the user inspect and edit their retrieval settings.
// The model name cycles through the backend's available models; the other
// fields open a free-text editor. Nothing reaches the backend until save.
type settingsModel struct {
	params api.Parameters
	loaded bool

	cursor  settingsField
	editing bool
	input   textinput.Model

	dirty   bool
	saving  bool
	status  string
	errText string

	spinner spinner.Model
	styles  Styles
	keys    keyMap
	width   int
}

func newSettingsModel(styles Styles, keys keyMap) settingsModel {
	input := textinput.New()
	input.CharLimit = 2048
	input.SetWidth(60)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return settingsModel{
		input:   input,
		spinner: sp,
		styles:  styles,
		keys:    keys,
		width:   80,
	}
}

// withParameters seeds the form from the session's cached settings.
func (s settingsModel) withParameters(params api.Parameters, loaded bool) settingsModel {
	s.params = params
	s.loaded = loaded
	s.dirty = false
	return s
}

func (s settingsModel) Update(msg tea.Msg) (settingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return s.handleKey(msg)

	case tea.WindowSizeMsg:
		s.width = msg.Width
		return s, nil

	case spinner.TickMsg:
		if !s.saving {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case parametersSavedMsg:
		s.saving = false
		if msg.err != nil {
			s.errText = msg.err.Error()
			return s, nil
		}
		s.params = msg.params
		s.dirty = false
		s.errText = ""
		s.status = "settings saved"
		return s, nil
	}

	if s.editing {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s settingsModel) handleKey(msg tea.KeyPressMsg) (settingsModel, tea.Cmd) {
	if s.editing {
		switch {
		case key.Matches(msg, s.keys.Back):
			s.editing = false
			s.input.Blur()
			return s, nil
		case key.Matches(msg, s.keys.Submit):
			return s.commitEdit()
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	switch {
	case key.Matches(msg, s.keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(msg, s.keys.Down):
		if s.cursor < fieldCount-1 {
			s.cursor++
		}
	case key.Matches(msg, s.keys.CycleModel):
		if s.cursor == fieldModel {
			delta := 1
			if msg.Key().Code == tea.KeyLeft {
				delta = -1
			}
			s = s.cycleModel(delta)
		}
	case key.Matches(msg, s.keys.Edit):
		if s.cursor != fieldModel {
			return s.beginEdit(), nil
		}
	case key.Matches(msg, s.keys.Save):
		return s.save()
	}
	return s, nil
}

func (s settingsModel) cycleModel(delta int) settingsModel {
	models := s.params.AvailableModels
	if len(models) == 0 {
		return s
	}
	idx := 0
	for i, name := range models {
		if name == s.params.ModelName {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(models)) % len(models)
	s.params.ModelName = models[idx]
	s.dirty = true
	s.status = ""
	return s
}

func (s settingsModel) beginEdit() settingsModel {
	s.editing = true
	s.errText = ""
	s.status = ""
	s.input.SetValue(s.fieldValue(s.cursor))
	s.input.CursorEnd()
	_ = s.input.Focus()
	return s
}

func (s settingsModel) commitEdit() (settingsModel, tea.Cmd) {
	value := strings.TrimSpace(s.input.Value())
	if err := s.applyField(s.cursor, value); err != nil {
		s.errText = err.Error()
		return s, nil
	}
	s.editing = false
	s.input.Blur()
	s.dirty = true
	s.errText = ""
	return s, nil
}

func (s *settingsModel) applyField(field settingsField, value string) error {
	switch field {
	case fieldChunkSize:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("chunk size must be a positive integer")
		}
		s.params.ChunkSize = n
	case fieldChunkOverlap:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("chunk overlap must be a non-negative integer")
		}
		s.params.ChunkOverlap = n
	case fieldThreshold:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 || f > 1 {
			return fmt.Errorf("similarity threshold must be between 0 and 1")
		}
		s.params.SimilarityThreshold = f
	case fieldTopK:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("k must be a positive integer")
		}
		s.params.TopK = n
	case fieldPrompt:
		s.params.PromptTemplate = value
	}
	return nil
}

func (s settingsModel) fieldValue(field settingsField) string {
	switch field {
	case fieldModel:
		return s.params.ModelName
	case fieldChunkSize:
		return strconv.Itoa(s.params.ChunkSize)
	case fieldChunkOverlap:
		return strconv.Itoa(s.params.ChunkOverlap)
	case fieldThreshold:
		return strconv.FormatFloat(s.params.SimilarityThreshold, 'f', -1, 64)
	case fieldTopK:
		return strconv.Itoa(s.params.TopK)
	case fieldPrompt:
		return s.params.PromptTemplate
	default:
		return ""
	}
}

func (s settingsModel) save() (settingsModel, tea.Cmd) {
	if s.saving {
		return s, nil
	}
	s.saving = true
	s.status = ""
	s.errText = ""
	params := s.params
	return s, tea.Batch(
		s.spinner.Tick,
		func() tea.Msg { return saveParamsRequestMsg{params: params} },
	)
}

func (s settingsModel) View() string {
	var b strings.Builder

	_, _ = b.WriteString(s.styles.Title.Render("Retrieval settings"))
	_, _ = b.WriteString("\n\n")

	if !s.loaded {
		_, _ = b.WriteString(s.styles.System.Render("settings not loaded yet; edits start from defaults"))
		_, _ = b.WriteString("\n\n")
	}

	for field := settingsField(0); field < fieldCount; field++ {
		label := fieldLabels[field]
		value := s.fieldValue(field)
		if field == fieldPrompt {
			value = truncate(value, 60)
		}

		line := fmt.Sprintf("  %-22s %s", label, s.styles.Value.Render(value))
		if field == s.cursor && !s.editing {
			line = s.styles.Selected.Render(fmt.Sprintf("> %-22s", label)) + " " + s.styles.Value.Render(value)
		}
		if field == s.cursor && s.editing {
			line = s.styles.Selected.Render(fmt.Sprintf("> %-22s", label)) + " " + s.input.View()
		}
		_, _ = b.WriteString(line)
		_, _ = b.WriteString("\n")
	}

	_, _ = b.WriteString("\n")
	switch {
	case s.saving:
		_, _ = b.WriteString(s.spinner.View())
		_, _ = b.WriteString(s.styles.System.Render(" saving..."))
	case s.errText != "":
		_, _ = b.WriteString(s.styles.Error.Render(s.errText))
	case s.status != "":
		_, _ = b.WriteString(s.styles.System.Render(s.status))
	case s.editing:
		_, _ = b.WriteString(s.styles.System.Render("enter to apply, esc to cancel"))
	case s.dirty:
		_, _ = b.WriteString(s.styles.System.Render("unsaved changes · ctrl+s to save"))
	default:
		_, _ = b.WriteString(s.styles.System.Render("↑/↓ select · " +
			helpLine(s.keys.Edit, s.keys.CycleModel, s.keys.Save)))
	}

	return b.String()
}

// truncate shortens s to at most width characters with a trailing ellipsis.
// Counts runes, not bytes, so a multi-byte character is never split.
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
