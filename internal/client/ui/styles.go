package ui

import "github.com/charmbracelet/lipgloss"

// Color palette - earthy tones for dark backgrounds
var (
	primaryColor   = lipgloss.Color("#E8C4A0") // Light warm beige
	secondaryColor = lipgloss.Color("#7EBB81") // Light forest green
	accentColor    = lipgloss.Color("#A8C9A4") // Soft sage green
	successColor   = lipgloss.Color("#B5D99C") // Bright sage
	mutedColor     = lipgloss.Color("#B8A890") // Light taupe
	dangerColor    = lipgloss.Color("#E07B7B")
	floorColor     = lipgloss.Color("#3A3A3A")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Padding(1, 2).
			Align(lipgloss.Center)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Italic(true).
			Align(lipgloss.Center)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)

	highlightStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	instructionStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Italic(true).
				Margin(1, 0)

	cursorStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	gameBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor)

	chatBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)

	scoreboardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondaryColor).
			Padding(0, 1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(dangerColor).
			Bold(true)
)

// Arena cells
var (
	floorCell = lipgloss.NewStyle().Foreground(floorColor).Render("·")

	selfStyle       = lipgloss.NewStyle().Foreground(successColor).Bold(true)
	enemyStyle      = lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	deadStyle       = lipgloss.NewStyle().Foreground(mutedColor)
	bulletStyle     = lipgloss.NewStyle().Foreground(dangerColor)
	ownBulletStyle  = lipgloss.NewStyle().Foreground(secondaryColor)
	heartStyle      = lipgloss.NewStyle().Foreground(dangerColor)
	chatSenderStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
)
