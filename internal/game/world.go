package game

import (
	"slices"

	"github.com/yourusername/arena-server/internal/protocol"
)

// World is the shared game state: players by id (kept in join order),
// the projectiles in flight and the projectile id counter. It has no locks;
// a single goroutine owns it.
type World struct {
	players          map[string]*Player
	order            []string
	projectiles      []*Projectile
	lastProjectileID int64
}

func NewWorld() *World {
	return &World{
		players: make(map[string]*Player),
	}
}

// AddPlayer stores p, replacing nothing: an existing id is left untouched.
func (w *World) AddPlayer(p *Player) bool {
	if _, ok := w.players[p.ID]; ok {
		return false
	}
	w.players[p.ID] = p
	w.order = append(w.order, p.ID)
	return true
}

func (w *World) Player(id string) (*Player, bool) {
	p, ok := w.players[id]
	return p, ok
}

// RemovePlayer deletes the player. No tombstone is kept.
func (w *World) RemovePlayer(id string) bool {
	if _, ok := w.players[id]; !ok {
		return false
	}
	delete(w.players, id)
	if i := slices.Index(w.order, id); i >= 0 {
		w.order = slices.Delete(w.order, i, i+1)
	}
	return true
}

// Players returns the players in join order.
func (w *World) Players() []*Player {
	out := make([]*Player, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.players[id])
	}
	return out
}

func (w *World) NumPlayers() int { return len(w.players) }

// NextProjectileID allocates the next id. Ids start at 1 and are never reused.
func (w *World) NextProjectileID() int64 {
	w.lastProjectileID++
	return w.lastProjectileID
}

func (w *World) LastProjectileID() int64 { return w.lastProjectileID }

func (w *World) AddProjectile(b *Projectile) {
	w.projectiles = append(w.projectiles, b)
}

// Projectiles returns the active projectiles in spawn order. The slice is
// owned by the world.
func (w *World) Projectiles() []*Projectile { return w.projectiles }

// SetProjectiles replaces the active collection after a step has filtered it.
func (w *World) SetProjectiles(bs []*Projectile) { w.projectiles = bs }

func (w *World) NumProjectiles() int { return len(w.projectiles) }

// Snapshot renders the full state for an init frame
func (w *World) Snapshot() protocol.GameState {
	state := protocol.GameState{
		Players:      make(map[string]protocol.Player, len(w.players)),
		Bullets:      make([]protocol.Bullet, 0, len(w.projectiles)),
		LastBulletID: w.lastProjectileID,
	}
	for id, p := range w.players {
		state.Players[id] = p.Snapshot()
	}
	for _, b := range w.projectiles {
		state.Bullets = append(state.Bullets, b.Snapshot())
	}
	return state
}
