package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// updateLoading handles loading screen updates
func (m Model) updateLoading(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc", "q":
		return m, tea.Quit
	}
	return m, nil
}

// viewLoading renders the loading/connection screen
func (m Model) viewLoading() string {
	title := titleStyle.Render("✦ ARENA")
	subtitle := subtitleStyle.Render("Entering the arena...")

	dots := strings.Repeat(".", m.loadingDots)
	spinner := spinnerStyle.Render("◐◓◑◒"[m.loadingDots%4 : m.loadingDots%4+1])

	text := "Establishing connection"
	if m.waitingToRetry {
		text = "Retrying"
	}
	loadingText := lipgloss.NewStyle().
		Foreground(mutedColor).
		Render(text + dots)

	var errorMsg string
	if m.err != nil {
		errorMsg = errorStyle.Render("\n\n✗ Connection failed: " + m.err.Error())
		if m.reconnectAttempt >= m.maxReconnects {
			errorMsg += mutedStyle.Render("\nGave up. Press ESC to quit")
		}
	}

	mainContent := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		subtitle,
		"\n\n",
		spinner+" "+loadingText,
		errorMsg,
	)

	instructions := instructionStyle.Render(
		mutedStyle.Render("Connecting to ") + highlightStyle.Render(m.serverURL) + "  •  " +
			mutedStyle.Render("ESC to quit"))

	centeredMain := lipgloss.Place(m.width, m.height-5, lipgloss.Center, lipgloss.Center, mainContent)
	bottomInstructions := lipgloss.Place(m.width, 3, lipgloss.Center, lipgloss.Bottom, instructions)

	return centeredMain + "\n" + bottomInstructions
}
