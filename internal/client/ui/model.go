package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/yourusername/arena-server/internal/client/connection"
)

// ViewState represents the current view in the TUI
type ViewState int

const (
	ViewLoading ViewState = iota
	ViewMainGame
)

// Model is the main Bubble Tea model
type Model struct {
	viewState ViewState
	connMgr   *connection.Manager   // single connection manager, reused across reconnects
	eventChan chan connection.Event // events pushed by the manager

	width  int
	height int
	err    error

	// Loading screen
	loadingDots      int
	serverURL        string
	reconnectAttempt int
	maxReconnects    int
	waitingToRetry   bool

	// Identity assigned by the server
	playerID string
	nickname string

	// Chat system
	chat            *ChatPanel
	chatInput       []rune
	chatInputActive bool
}

// NewModel creates a new Bubble Tea model with a connection manager
func NewModel(serverURL string) Model {
	connMgr := connection.NewManager(serverURL)
	eventChan := make(chan connection.Event, 256)

	// when the server sends events, push them to the channel
	connMgr.OnEvent(func(event connection.Event) {
		eventChan <- event
	})

	return Model{
		viewState:     ViewLoading,
		connMgr:       connMgr,
		eventChan:     eventChan,
		width:         80,
		height:        24,
		serverURL:     serverURL,
		maxReconnects: 5,
		chat:          NewChatPanel(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		connectCmd(m.connMgr),
		tickCmd(),
		listenForEventsCmd(m.eventChan),
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.viewState {
		case ViewLoading:
			return m.updateLoading(msg)
		case ViewMainGame:
			return m.updateMainGame(msg)
		}

	case connectionSuccessMsg:
		// the main view opens on the welcome event
		m.reconnectAttempt = 0
		m.waitingToRetry = false
		m.err = nil
		return m, nil

	case connectionErrorMsg:
		m.err = msg.err
		m.reconnectAttempt++
		if m.reconnectAttempt < m.maxReconnects {
			m.waitingToRetry = true
			return m, retryConnectCmd(m.reconnectAttempt)
		}
		m.waitingToRetry = false
		return m, nil

	case retryMsg:
		if m.viewState == ViewLoading && m.reconnectAttempt < m.maxReconnects {
			m.waitingToRetry = false
			return m, connectCmd(m.connMgr)
		}
		return m, nil

	case connectionEventMsg:
		return m.handleConnectionEvent(msg.event)

	case tickMsg:
		if m.viewState == ViewLoading {
			m.loadingDots = (m.loadingDots + 1) % 4
		} else {
			m.connMgr.State().Prune()
		}
		return m, tickCmd()
	}

	return m, nil
}

// View renders the current view
func (m Model) View() string {
	switch m.viewState {
	case ViewLoading:
		return m.viewLoading()
	case ViewMainGame:
		return m.viewMainGame()
	}
	return ""
}

// Disconnect safely disconnects the connection manager
func (m *Model) Disconnect() {
	if m.connMgr != nil {
		m.connMgr.Disconnect()
	}
}

// Add new event handlers below when you add new event types in connection/events.go
func (m Model) handleConnectionEvent(event connection.Event) (tea.Model, tea.Cmd) {
	listen := listenForEventsCmd(m.eventChan)

	switch e := event.(type) {
	case connection.WelcomeEvent:
		m.playerID = e.PlayerID
		m.nickname = e.Nickname
		m.viewState = ViewMainGame
		m.chat.AddNotice("You are " + e.Nickname)
		return m, listen

	case connection.DisconnectedEvent:
		// lost the arena: back to the loading screen and try again
		wasPlaying := m.viewState == ViewMainGame
		m.viewState = ViewLoading
		m.err = e.Error
		if wasPlaying && m.reconnectAttempt < m.maxReconnects {
			m.reconnectAttempt++
			m.waitingToRetry = true
			return m, tea.Batch(listen, retryConnectCmd(m.reconnectAttempt))
		}
		return m, listen

	case connection.ChatEvent:
		m.chat.AddMessage(e.Nickname, e.Message, e.PlayerID == m.playerID)
		return m, listen

	case connection.NoticeEvent:
		m.chat.AddNotice(e.Text)
		return m, listen

	default:
		// state changes are picked up by the next render
		return m, listen
	}
}
