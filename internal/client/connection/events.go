package connection

// Event represents events from the connection manager
type Event interface {
	isEvent()
}

// ConnectedEvent is sent when connection is established
type ConnectedEvent struct{}

func (ConnectedEvent) isEvent() {}

// DisconnectedEvent is sent when connection is lost
type DisconnectedEvent struct {
	Error error
}

func (DisconnectedEvent) isEvent() {}

// WelcomeEvent is sent once the server has assigned us a player
type WelcomeEvent struct {
	PlayerID string
	Nickname string
}

func (WelcomeEvent) isEvent() {}

// StateChangedEvent is sent whenever the mirrored arena changed
type StateChangedEvent struct{}

func (StateChangedEvent) isEvent() {}

// NoticeEvent is a one-line description of something that happened in the
// arena (joins, hits, deaths, respawns, departures).
type NoticeEvent struct {
	Text string
}

func (NoticeEvent) isEvent() {}

// ChatEvent carries a chat line from any player, including ourselves
type ChatEvent struct {
	PlayerID string
	Nickname string
	Message  string
}

func (ChatEvent) isEvent() {}
