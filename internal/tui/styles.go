package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/qiqi-070707/council-ai/internal/models"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7209b7"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	errorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#b91c1c"))
	doneStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#15803d"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6366f1"))
)

// badgeStyle renders a participant tag in its roster colours.
func badgeStyle(p models.Participant, active, selected bool) lipgloss.Style {
	s := lipgloss.NewStyle().
		Foreground(lipgloss.Color(p.Color)).
		Padding(0, 1)
	if active || selected {
		s = s.Background(lipgloss.Color(p.Background)).Bold(true)
	}
	if selected {
		s = s.Underline(true)
	}
	return s
}

func bubbleStyle(p models.Participant, width int) lipgloss.Style {
	s := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(p.Border)).
		Padding(0, 1)
	if width > 0 {
		s = s.Width(width)
	}
	return s
}
