package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles holds the terminal rendering styles for CLI output.
type Styles struct {
	Title   lipgloss.Style
	Done    lipgloss.Style
	Pending lipgloss.Style
	Break   lipgloss.Style
	Subtle  lipgloss.Style
	Error   lipgloss.Style
}

// DefaultStyles returns the default CLI styling.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1),
		Done: lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Break: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true),
		Subtle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),
	}
}

// PlainStyles returns unstyled output for non-terminal destinations.
func PlainStyles() Styles {
	return Styles{}
}

// outputStyles picks styled or plain rendering based on the destination.
func outputStyles() Styles {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		return DefaultStyles()
	}
	return PlainStyles()
}
