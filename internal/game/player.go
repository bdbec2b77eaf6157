package game

import "github.com/yourusername/arena-server/internal/protocol"

// Player is one connected participant. Respawn scheduling is kept by the
// Respawner, not here.
type Player struct {
	ID         string
	Nickname   string
	X, Y       float64
	Angle      float64
	Lives      int
	Alive      bool
	Respawning bool
}

// Apply merges client-reported fields. Only position and facing are
// writable; everything else is server owned. It returns the accepted subset.
func (p *Player) Apply(u protocol.PlayerUpdates) protocol.PlayerUpdates {
	var accepted protocol.PlayerUpdates
	if u.X != nil {
		p.X = *u.X
		accepted.X = u.X
	}
	if u.Y != nil {
		p.Y = *u.Y
		accepted.Y = u.Y
	}
	if u.Angle != nil {
		p.Angle = *u.Angle
		accepted.Angle = u.Angle
	}
	return accepted
}

// Hit takes one life from a living player and reports whether it was lethal.
// Lives never go below zero and the death transition happens once.
func (p *Player) Hit() (killed bool) {
	if !p.Alive {
		return false
	}
	if p.Lives > 0 {
		p.Lives--
	}
	if p.Lives == 0 {
		p.Alive = false
		p.Respawning = true
		return true
	}
	return false
}

// revive puts the player back in play at (x, y) with full lives.
func (p *Player) revive(x, y float64, lives int) {
	p.X, p.Y = x, y
	p.Lives = lives
	p.Alive = true
	p.Respawning = false
}

func (p *Player) Snapshot() protocol.Player {
	return protocol.Player{
		ID:         p.ID,
		Nickname:   p.Nickname,
		X:          p.X,
		Y:          p.Y,
		Angle:      p.Angle,
		Lives:      p.Lives,
		IsAlive:    p.Alive,
		Respawning: p.Respawning,
	}
}
