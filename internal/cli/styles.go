package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	SuccessColor = lipgloss.Color("#4ECDC4")
	WarningColor = lipgloss.Color("#FFE66D")
	ErrorColor   = lipgloss.Color("#FF6B6B")
	SubtleColor  = lipgloss.Color("#666666")

	TitleStyle   = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)
)

// Severity renders message in the style of a notification level
// ("success", "warning" or "error").
func Severity(level, message string) string {
	switch level {
	case "success":
		return SuccessStyle.Render("✓ " + message)
	case "warning":
		return WarningStyle.Render("! " + message)
	case "error":
		return ErrorStyle.Render("✗ " + message)
	default:
		return message
	}
}
