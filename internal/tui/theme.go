package tui

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/vzwtim/swift-revise/internal/srs"
)

// Color palette. Calm study-app tones.
var (
	colPrimary = lipgloss.Color("#6366F1") // Indigo
	colAccent  = lipgloss.Color("#F59E0B") // Amber
	colSuccess = lipgloss.Color("#22C55E") // Green
	colError   = lipgloss.Color("#F43F5E") // Rose
	colText    = lipgloss.Color("#F8FAFC") // White
	colDim     = lipgloss.Color("#94A3B8") // Slate
	colBorder  = lipgloss.Color("#334155") // Dark slate
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colPrimary)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(colDim)

	bodyStyle = lipgloss.NewStyle().
			Foreground(colText)

	hintStyle = lipgloss.NewStyle().
			Foreground(colDim).
			Italic(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(colPrimary).
			Bold(true)

	correctStyle = lipgloss.NewStyle().
			Foreground(colSuccess).
			Bold(true)

	wrongStyle = lipgloss.NewStyle().
			Foreground(colError).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colBorder).
			Padding(1, 2)

	accentStyle = lipgloss.NewStyle().
			Foreground(colAccent).
			Bold(true)
)

// levelColor maps a mastery level to its display color.
func levelColor(l srs.MasteryLevel) color.Color {
	switch l {
	case srs.LevelPerfect, srs.LevelGreat:
		return colSuccess
	case srs.LevelGood:
		return colPrimary
	case srs.LevelBad, srs.LevelMiss:
		return colError
	default:
		return colDim
	}
}

// levelLabel is the short Japanese label shown next to a card.
func levelLabel(l srs.MasteryLevel) string {
	switch l {
	case srs.LevelPerfect:
		return "完璧"
	case srs.LevelGreat:
		return "得意"
	case srs.LevelGood:
		return "順調"
	case srs.LevelNew:
		return "未学習"
	case srs.LevelBad:
		return "苦手"
	case srs.LevelMiss:
		return "要対策"
	default:
		return string(l)
	}
}
