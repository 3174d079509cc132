package tui

import (
	"strings"

	"charm.land/lipgloss/v2"
)

// Plume purple for branding.
const plumePurple = "#9D7CD8"

// PLUME ASCII art (filled block style).
var plumeArt = []string{
	"██████╗ ██╗     ██╗   ██╗███╗   ███╗███████╗",
	"██╔══██╗██║     ██║   ██║████╗ ████║██╔════╝",
	"██████╔╝██║     ██║   ██║██╔████╔██║█████╗  ",
	"██╔═══╝ ██║     ██║   ██║██║╚██╔╝██║██╔══╝  ",
	"██║     ███████╗╚██████╔╝██║ ╚═╝ ██║███████╗",
	"╚═╝     ╚══════╝ ╚═════╝ ╚═╝     ╚═╝╚══════╝",
}

// Styles contains all lipgloss styles for the TUI.
type Styles struct {
	Banner    lipgloss.Style
	Title     lipgloss.Style
	TabActive lipgloss.Style
	TabIdle   lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	System    lipgloss.Style
	Error     lipgloss.Style
	Prompt    lipgloss.Style
	Selected  lipgloss.Style
	Separator lipgloss.Style
	StatusBar lipgloss.Style
	Source    lipgloss.Style
}

// DefaultStyles returns the default style configuration.
func DefaultStyles() Styles {
	return Styles{
		Banner:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(plumePurple)),
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(plumePurple)),
		TabActive: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color(plumePurple)).Padding(0, 1),
		TabIdle:   lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Padding(0, 1),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color("246")),
		Value:     lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		User:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		System:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240")),
		Error:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		Selected:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("237")),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		StatusBar: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Source:    lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("109")),
	}
}

// RenderBanner returns the PLUME ASCII art banner as a styled string.
func (s Styles) RenderBanner() string {
	var b strings.Builder
	for _, line := range plumeArt {
		_, _ = b.WriteString(s.Banner.Render(line))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}
