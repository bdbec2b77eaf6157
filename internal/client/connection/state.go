package connection

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/yourusername/arena-server/internal/game"
	"github.com/yourusername/arena-server/internal/protocol"
)

type bullet struct {
	protocol.Bullet
	receivedAt time.Time
}

// State mirrors the arena from the event stream.
type State struct {
	mu      sync.RWMutex
	selfID  string
	players map[string]protocol.Player
	bullets map[int64]*bullet
	tuning  game.Config // geometry and tick rate used to predict projectiles
	now     func() time.Time
}

// NewState creates an empty mirror
func NewState() *State {
	return &State{
		players: make(map[string]protocol.Player),
		bullets: make(map[int64]*bullet),
		tuning:  game.DefaultConfig(),
		now:     time.Now,
	}
}

// Snapshot is a copy of the mirrored arena safe to render from.
type Snapshot struct {
	SelfID  string
	Players []protocol.Player // sorted by nickname
	Bullets []protocol.Bullet // at locally predicted positions
}

// Self returns our own player, if the server has told us who we are.
func (s Snapshot) Self() (protocol.Player, bool) {
	for _, p := range s.Players {
		if p.ID == s.SelfID {
			return p, true
		}
	}
	return protocol.Player{}, false
}

// SelfID returns the id assigned by the server, or "" before init.
func (s *State) SelfID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selfID
}

// Player looks up one player by id.
func (s *State) Player(id string) (protocol.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	return p, ok
}

// MoveSelf records our own pose; the server does not echo it back.
func (s *State) MoveSelf(x, y, angle float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[s.selfID]
	if !ok {
		return
	}
	p.X, p.Y, p.Angle = x, y, angle
	s.players[s.selfID] = p
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{SelfID: s.selfID}
	for _, p := range s.players {
		snap.Players = append(snap.Players, p)
	}
	slices.SortFunc(snap.Players, func(a, b protocol.Player) int {
		return cmp.Or(cmp.Compare(a.Nickname, b.Nickname), cmp.Compare(a.ID, b.ID))
	})
	now := s.now()
	for _, b := range s.bullets {
		snap.Bullets = append(snap.Bullets, b.at(now, s.tuning.TickRate))
	}
	slices.SortFunc(snap.Bullets, func(a, b protocol.Bullet) int { return cmp.Compare(a.ID, b.ID) })
	return snap
}

// Apply folds one server message into the mirror and returns the events it
// produced for the UI.
func (s *State) Apply(msg *protocol.Message) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg.Type {
	case protocol.MsgInit:
		ev, err := protocol.DecodePayload[protocol.InitEvent](msg)
		if err != nil {
			return nil, err
		}
		s.selfID = ev.PlayerID
		s.players = make(map[string]protocol.Player, len(ev.GameState.Players))
		for id, p := range ev.GameState.Players {
			s.players[id] = p
		}
		s.bullets = make(map[int64]*bullet, len(ev.GameState.Bullets))
		for _, b := range ev.GameState.Bullets {
			s.bullets[b.ID] = &bullet{Bullet: b, receivedAt: s.now()}
		}
		return []Event{
			WelcomeEvent{PlayerID: ev.PlayerID, Nickname: s.players[ev.PlayerID].Nickname},
			StateChangedEvent{},
		}, nil

	case protocol.MsgPlayerJoined:
		ev, err := protocol.DecodePayload[protocol.PlayerJoinedEvent](msg)
		if err != nil {
			return nil, err
		}
		s.players[ev.Player.ID] = ev.Player
		return []Event{
			NoticeEvent{Text: ev.Player.Nickname + " joined"},
			StateChangedEvent{},
		}, nil

	case protocol.MsgPlayerUpdated:
		ev, err := protocol.DecodePayload[protocol.PlayerUpdatedEvent](msg)
		if err != nil {
			return nil, err
		}
		p, ok := s.players[ev.PlayerID]
		if !ok {
			return nil, nil
		}
		if ev.Updates.X != nil {
			p.X = *ev.Updates.X
		}
		if ev.Updates.Y != nil {
			p.Y = *ev.Updates.Y
		}
		if ev.Updates.Angle != nil {
			p.Angle = *ev.Updates.Angle
		}
		s.players[ev.PlayerID] = p
		return []Event{StateChangedEvent{}}, nil

	case protocol.MsgBulletFired:
		ev, err := protocol.DecodePayload[protocol.BulletFiredEvent](msg)
		if err != nil {
			return nil, err
		}
		s.bullets[ev.Bullet.ID] = &bullet{Bullet: ev.Bullet, receivedAt: s.now()}
		return []Event{StateChangedEvent{}}, nil

	case protocol.MsgChatMessage:
		ev, err := protocol.DecodePayload[protocol.ChatMessageEvent](msg)
		if err != nil {
			return nil, err
		}
		return []Event{ChatEvent{PlayerID: ev.PlayerID, Nickname: ev.Nickname, Message: ev.Message}}, nil

	case protocol.MsgPlayerHit:
		ev, err := protocol.DecodePayload[protocol.PlayerHitEvent](msg)
		if err != nil {
			return nil, err
		}
		delete(s.bullets, ev.BulletID)
		p, ok := s.players[ev.PlayerID]
		if !ok {
			return []Event{StateChangedEvent{}}, nil
		}
		p.Lives, p.IsAlive, p.Respawning = ev.Lives, ev.IsAlive, ev.Respawning
		s.players[ev.PlayerID] = p

		shooter := s.nickname(ev.ShooterID)
		text := fmt.Sprintf("%s hit %s (%d lives left)", shooter, p.Nickname, p.Lives)
		if !p.IsAlive {
			text = fmt.Sprintf("%s eliminated %s", shooter, p.Nickname)
		}
		return []Event{NoticeEvent{Text: text}, StateChangedEvent{}}, nil

	case protocol.MsgPlayerRespawn:
		ev, err := protocol.DecodePayload[protocol.PlayerRespawnEvent](msg)
		if err != nil {
			return nil, err
		}
		s.players[ev.PlayerID] = ev.Player
		return []Event{
			NoticeEvent{Text: ev.Player.Nickname + " is back"},
			StateChangedEvent{},
		}, nil

	case protocol.MsgPlayerLeft:
		ev, err := protocol.DecodePayload[protocol.PlayerLeftEvent](msg)
		if err != nil {
			return nil, err
		}
		name := s.nickname(ev.PlayerID)
		delete(s.players, ev.PlayerID)
		return []Event{NoticeEvent{Text: name + " left"}, StateChangedEvent{}}, nil
	}

	return nil, fmt.Errorf("%w: %q", protocol.ErrUnknownType, msg.Type)
}

// Prune drops mirrored projectiles that have left the arena or outlived
// their ttl by now.
func (s *State) Prune() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, b := range s.bullets {
		age := now.Sub(b.receivedAt)
		if age > time.Duration(b.TTL)*time.Millisecond {
			delete(s.bullets, id)
			continue
		}
		p := b.at(now, s.tuning.TickRate)
		if !s.tuning.InBounds(p.X, p.Y) {
			delete(s.bullets, id)
		}
	}
}

// at predicts where the server has moved b by now.
func (b *bullet) at(now time.Time, tickRate int) protocol.Bullet {
	dist := b.Speed * float64(tickRate) * now.Sub(b.receivedAt).Seconds()
	p := b.Bullet
	p.X += math.Cos(b.Angle) * dist
	p.Y += math.Sin(b.Angle) * dist
	return p
}

func (s *State) nickname(id string) string {
	if p, ok := s.players[id]; ok {
		return p.Nickname
	}
	return "someone"
}
