package tui

import (
	"strings"

	"charm.land/bubbles/v2/key"
)

// keyMap holds the key bindings every view dispatches on. Views match
// incoming keys with key.Matches and render their hint lines from the
// bindings' help text, so a rebind changes both at once.
type keyMap struct {
	Submit     key.Binding
	NextTab    key.Binding
	PrevTab    key.Binding
	SwitchTab  key.Binding
	Logout     key.Binding
	Quit       key.Binding
	Up         key.Binding
	Down       key.Binding
	Select     key.Binding
	Back       key.Binding
	New        key.Binding
	Delete     key.Binding
	DeleteTag  key.Binding
	Upload     key.Binding
	Filter     key.Binding
	Refresh    key.Binding
	Save       key.Binding
	Edit       key.Binding
	CycleModel key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		NextTab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
		PrevTab:    key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("s+tab", "prev view")),
		SwitchTab:  key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "jump to view")),
		Logout:     key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "log out")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "exit")),
		Up:         key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "up")),
		Down:       key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "down")),
		Select:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		New:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new collection")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		DeleteTag:  key.NewBinding(key.WithKeys("D", "shift+d"), key.WithHelp("D", "delete all tagged")),
		Upload:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "upload")),
		Filter:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "filter by tag")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Edit:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit")),
		CycleModel: key.NewBinding(key.WithKeys("left", "right"), key.WithHelp("←/→", "cycle value")),
	}
}

// helpLine renders "key desc · key desc" hints from bindings.
func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}
