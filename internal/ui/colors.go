// Package ui holds the small set of colors and symbols shared by the
// dashboard and the one-shot subcommands.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Semantic colors for command output, as ANSI codes so they follow the
// terminal theme.
const (
	ColorSuccess lipgloss.Color = "2" // Green
	ColorError   lipgloss.Color = "1" // Red
	ColorMuted   lipgloss.Color = "8" // Gray (bright black)
)

var (
	successStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	failStyle    = lipgloss.NewStyle().Foreground(ColorError)
	mutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
)

// Success formats a line prefixed with a green check.
func Success(format string, args ...interface{}) string {
	return successStyle.Render(SymbolSuccess) + " " + fmt.Sprintf(format, args...)
}

// Fail formats a line prefixed with a red cross.
func Fail(format string, args ...interface{}) string {
	return failStyle.Render(SymbolFail) + " " + fmt.Sprintf(format, args...)
}

// Muted renders secondary text such as hints.
func Muted(s string) string {
	return mutedStyle.Render(s)
}
