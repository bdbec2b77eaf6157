package game

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/yourusername/arena-server/internal/protocol"
)

// Sessions turns join/leave and inbound client frames into world mutations
// and the broadcasts that announce them. Every handler tolerates a player
// that has already gone away.
type Sessions struct {
	world     *World
	respawner *Respawner
	bus       Broadcaster
	cfg       Config
	rng       *rand.Rand
	names     NameGenerator
	now       func() time.Time
}

type SessionsOption func(*Sessions)

// WithClock replaces time.Now for projectile timestamps.
func WithClock(now func() time.Time) SessionsOption {
	return func(s *Sessions) { s.now = now }
}

// WithNames replaces the nickname generator.
func WithNames(names NameGenerator) SessionsOption {
	return func(s *Sessions) { s.names = names }
}

func NewSessions(world *World, respawner *Respawner, bus Broadcaster, cfg Config, rng *rand.Rand, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		world:     world,
		respawner: respawner,
		bus:       bus,
		cfg:       cfg,
		rng:       rng,
		names:     MilitaryNames,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Join creates the player for a new connection, pushes the full state to
// it and tells everyone else.
func (s *Sessions) Join(id string) *Player {
	if p, ok := s.world.Player(id); ok {
		return p
	}
	x, y := s.cfg.RandomSpawn(s.rng)
	p := &Player{
		ID:       id,
		Nickname: s.names(s.rng),
		X:        x,
		Y:        y,
		Lives:    s.cfg.InitialLives,
		Alive:    true,
	}
	s.world.AddPlayer(p)

	s.bus.Send(id, protocol.NewInit(id, s.world.Snapshot()))
	s.bus.Broadcast(protocol.NewPlayerJoined(p.Snapshot()), id)
	return p
}

// Update merges the whitelisted fields and echoes them to everyone but the sender.
func (s *Sessions) Update(id string, u protocol.PlayerUpdates) bool {
	p, ok := s.world.Player(id)
	if !ok {
		return false
	}
	accepted := p.Apply(u)
	if accepted.Empty() {
		return false
	}
	s.bus.Broadcast(protocol.NewPlayerUpdated(id, accepted), id)
	return true
}

// Shoot spawns a projectile owned by id. The sender is included in the
// broadcast because it needs the server-assigned id.
func (s *Sessions) Shoot(id string, x, y, angle float64) (*Projectile, bool) {
	if _, ok := s.world.Player(id); !ok {
		return nil, false
	}
	b := &Projectile{
		ID:        s.world.NextProjectileID(),
		OwnerID:   id,
		X:         x,
		Y:         y,
		Angle:     angle,
		Speed:     s.cfg.ProjectileSpeed,
		CreatedAt: s.now(),
		TTL:       s.cfg.ProjectileTTL,
	}
	s.world.AddProjectile(b)
	s.bus.Broadcast(protocol.NewBulletFired(b.Snapshot()), "")
	return b, true
}

// Chat relays a message, cut to ChatMaxLen runes, to every player.
func (s *Sessions) Chat(id, message string) bool {
	p, ok := s.world.Player(id)
	if !ok {
		return false
	}
	s.bus.Broadcast(protocol.NewChatMessage(id, p.Nickname, truncateRunes(message, s.cfg.ChatMaxLen)), "")
	return true
}

// RequestRespawn revives a dead player right away. The pending automatic
// respawn is cancelled first so it cannot fire a second time.
func (s *Sessions) RequestRespawn(id string) bool {
	p, ok := s.world.Player(id)
	if !ok || p.Alive {
		return false
	}
	s.respawner.Cancel(id)
	return s.respawner.Respawn(id)
}

// Leave removes the player and announces it. Its projectiles stay in flight.
func (s *Sessions) Leave(id string) bool {
	s.respawner.Cancel(id)
	if !s.world.RemovePlayer(id) {
		return false
	}
	s.bus.Broadcast(protocol.NewPlayerLeft(id), "")
	return true
}

// Handle decodes one inbound frame from id and dispatches it. Malformed
// frames return an error and change nothing.
func (s *Sessions) Handle(id string, data []byte) error {
	msg, err := protocol.DecodeMessage(data)
	if err != nil {
		return err
	}

	switch msg.Type {
	case protocol.MsgUpdate:
		payload, err := decodeValid[protocol.UpdatePayload](msg)
		if err != nil {
			return err
		}
		s.Update(id, *payload.Updates)

	case protocol.MsgShoot:
		payload, err := decodeValid[protocol.ShootPayload](msg)
		if err != nil {
			return err
		}
		s.Shoot(id, *payload.X, *payload.Y, *payload.Angle)

	case protocol.MsgChat:
		payload, err := decodeValid[protocol.ChatPayload](msg)
		if err != nil {
			return err
		}
		s.Chat(id, *payload.Message)

	case protocol.MsgRespawnRequest:
		s.RequestRespawn(id)

	default:
		return fmt.Errorf("%w: %q", protocol.ErrUnknownType, msg.Type)
	}
	return nil
}

type validator interface {
	Validate() error
}

func decodeValid[T validator](msg *protocol.Message) (T, error) {
	payload, err := protocol.DecodePayload[T](msg)
	if err != nil {
		return payload, err
	}
	if err := payload.Validate(); err != nil {
		return payload, fmt.Errorf("%s: %w", msg.Type, err)
	}
	return payload, nil
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
