package game

import "github.com/yourusername/arena-server/internal/protocol"

// Broadcaster delivers frames to connected players. Delivery is best effort:
// implementations must not fail the caller because one peer is gone.
type Broadcaster interface {
	// Send delivers env to a single player.
	Send(to string, env protocol.Envelope)
	// Broadcast delivers env to every player except exclude ("" excludes nobody).
	Broadcast(env protocol.Envelope, exclude string)
}
