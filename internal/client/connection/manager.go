package connection

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yourusername/arena-server/internal/logger"
	"github.com/yourusername/arena-server/internal/protocol"
)

const writeWait = 10 * time.Second

// Manager manages the WebSocket connection to the arena server
type Manager struct {
	serverURL     string
	conn          *websocket.Conn
	state         *State
	eventCallback func(Event)
	connected     bool
	mu            sync.RWMutex
	writeMu       sync.Mutex // gorilla allows one concurrent writer
	done          chan struct{}
}

// NewManager creates a new connection manager
func NewManager(serverURL string) *Manager {
	return &Manager{
		serverURL: serverURL,
		state:     NewState(),
		done:      make(chan struct{}),
	}
}

// OnEvent sets the callback for events
func (m *Manager) OnEvent(callback func(Event)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.eventCallback = callback
}

// Connect establishes a WebSocket connection to the server
func (m *Manager) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.Dial(m.serverURL, nil)
	if err != nil {
		m.sendEvent(DisconnectedEvent{Error: err})
		return err
	}

	m.mu.Lock()
	m.conn = conn
	m.connected = true
	// fresh state and done channel per attempt so reconnecting works
	m.state = NewState()
	m.done = make(chan struct{})
	m.mu.Unlock()

	go m.readPump()

	m.sendEvent(ConnectedEvent{})
	return nil
}

// Disconnect closes the WebSocket connection
func (m *Manager) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return
	}
	m.connected = false

	select {
	case <-m.done:
	default:
		close(m.done)
	}

	if m.conn != nil {
		m.writeMu.Lock()
		m.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		m.writeMu.Unlock()
		m.conn.Close()
	}
}

// IsConnected returns whether the manager is connected
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// State returns the mirror of the arena for the current connection
func (m *Manager) State() *State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

//// FROM CLIENT -> SERVER MESSAGES ////

// Move reports our position and facing
func (m *Manager) Move(x, y, angle float64) error {
	if err := m.sendMessage(protocol.NewUpdate(protocol.PlayerUpdates{X: &x, Y: &y, Angle: &angle})); err != nil {
		return err
	}
	m.State().MoveSelf(x, y, angle)
	return nil
}

// Shoot fires a projectile from (x, y) along angle
func (m *Manager) Shoot(x, y, angle float64) error {
	return m.sendMessage(protocol.NewShoot(x, y, angle))
}

// Chat sends a chat line to everyone
func (m *Manager) Chat(message string) error {
	return m.sendMessage(protocol.NewChat(message))
}

// RequestRespawn asks to come back before the automatic respawn
func (m *Manager) RequestRespawn() error {
	return m.sendMessage(protocol.NewRespawnRequest())
}

////////////////////////////////////////////

// sendMessage sends a message to the server
func (m *Manager) sendMessage(env protocol.Envelope) error {
	m.mu.RLock()
	conn, connected := m.conn, m.connected
	m.mu.RUnlock()

	if !connected || conn == nil {
		return websocket.ErrCloseSent
	}

	msg, err := protocol.EncodeMessage(env)
	if err != nil {
		return err
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, msg)
}

// readPump reads messages from the WebSocket connection
func (m *Manager) readPump() {
	m.mu.RLock()
	conn, state, done := m.conn, m.state, m.done
	m.mu.RUnlock()

	var readErr error
	defer func() {
		m.mu.Lock()
		if m.conn == conn {
			m.connected = false
		}
		conn.Close()
		m.mu.Unlock()
		m.sendEvent(DisconnectedEvent{Error: readErr})
	}()

	for {
		select {
		case <-done:
			return
		default:
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.Client.Warn("websocket error: %v", err)
				readErr = err
			}
			return
		}
		m.handleMessage(state, message)
	}
}

// handleMessage processes incoming messages
func (m *Manager) handleMessage(state *State, data []byte) {
	msg, err := protocol.DecodeMessage(data)
	if err != nil {
		logger.Client.Warn("error decoding message: %v", err)
		return
	}
	events, err := state.Apply(msg)
	if err != nil {
		logger.Client.Debug("unhandled %s: %v", msg.Type, err)
		return
	}
	for _, ev := range events {
		m.sendEvent(ev)
	}
}

// sendEvent sends an event to the callback if set
func (m *Manager) sendEvent(event Event) {
	m.mu.RLock()
	callback := m.eventCallback
	m.mu.RUnlock()

	if callback != nil {
		callback(event)
	}
}
