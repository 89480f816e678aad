package logging

import (
	"log/slog"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSecondary = lipgloss.Color("#06B6D4") // Cyan
	colorSuccess   = lipgloss.Color("#10B981") // Green
	colorWarning   = lipgloss.Color("#F59E0B") // Amber
	colorError     = lipgloss.Color("#EF4444") // Red
	colorMuted     = lipgloss.Color("#6B7280") // Gray

	styleTimestamp = lipgloss.NewStyle().Foreground(colorMuted)
	styleKey       = lipgloss.NewStyle().Foreground(colorSecondary)

	styleDebug = lipgloss.NewStyle().Foreground(colorMuted)
	styleInfo  = lipgloss.NewStyle().Foreground(colorSuccess)
	styleWarn  = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	styleError = lipgloss.NewStyle().Foreground(colorError).Bold(true)
)

func levelLabel(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return styleError.Render("ERROR")
	case l >= slog.LevelWarn:
		return styleWarn.Render("WARN ")
	case l >= slog.LevelInfo:
		return styleInfo.Render("INFO ")
	default:
		return styleDebug.Render("DEBUG")
	}
}
