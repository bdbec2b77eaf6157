package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yourusername/arena-server/internal/client/connection"
)

// connectionSuccessMsg is sent when connection is established
type connectionSuccessMsg struct{}

// connectionErrorMsg is sent when connection fails
type connectionErrorMsg struct {
	err error
}

// retryMsg fires once the backoff after a failed attempt has elapsed
type retryMsg struct{}

// connectionEventMsg wraps events from the connection manager
type connectionEventMsg struct {
	event connection.Event
}

// tickMsg is sent periodically for animations and projectile movement
type tickMsg time.Time

const frameInterval = 50 * time.Millisecond

// connectCmd attempts to connect to the server
func connectCmd(mgr *connection.Manager) tea.Cmd {
	return func() tea.Msg {
		if err := mgr.Connect(); err != nil {
			return connectionErrorMsg{err: err}
		}
		return connectionSuccessMsg{}
	}
}

// retryConnectCmd waits 2^attempt * 500ms before the next attempt
func retryConnectCmd(attempt int) tea.Cmd {
	delay := time.Duration(1<<attempt) * 500 * time.Millisecond
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return retryMsg{}
	})
}

// listenForEventsCmd blocks until the manager reports the next event
func listenForEventsCmd(events <-chan connection.Event) tea.Cmd {
	return func() tea.Msg {
		return connectionEventMsg{event: <-events}
	}
}

// tickCmd returns a command that sends tick messages for animations
func tickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
