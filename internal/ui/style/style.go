// Package style holds the colours and icons shared by the logger and the
// build summary.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Tilde   = "~"
	Dot     = "●"
	Circle  = "○"
)

// Text styles for the end-of-run summary.
var (
	Bold  = lipgloss.NewStyle().Bold(true)
	Faint = lipgloss.NewStyle().Foreground(Slate)
	Good  = lipgloss.NewStyle().Foreground(Green)
	Bad   = lipgloss.NewStyle().Foreground(Red)
	Note  = lipgloss.NewStyle().Foreground(Yellow)
)
