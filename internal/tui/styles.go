package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Base styles for tapdeck TUI components
var (
	// Header style for titles and section headers
	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	// Label style for form field labels
	StyleLabel = lipgloss.NewStyle().
			Foreground(ColorText).
			Bold(true)

	// Success style for positive feedback
	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// Error style for error messages
	StyleError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	// Warning style for warnings
	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// Muted style for secondary text
	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// Subtle style for hints and descriptions
	StyleSubtle = lipgloss.NewStyle().
			Foreground(ColorSubtle).
			Italic(true)
)

const logoASCII = `
 _                  _           _
| |_ __ _ _ __   __| | ___  ___| | __
| __/ _` + "`" + ` | '_ \ / _` + "`" + ` |/ _ \/ __| |/ /
| || (_| | |_) | (_| |  __/ (__|   <
 \__\__,_| .__/ \__,_|\___|\___|_|\_\
         |_|                         `

// Logo returns the tapdeck ASCII art
func Logo() string {
	return StyleHeader.Render(strings.Trim(logoASCII, "\n"))
}
