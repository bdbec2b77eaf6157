package game

import (
	"math"
	"time"

	"github.com/yourusername/arena-server/internal/protocol"
)

// Engine advances the world by one fixed tick at a time.
type Engine struct {
	world     *World
	respawner *Respawner
	bus       Broadcaster
	cfg       Config
	tick      uint64
}

func NewEngine(world *World, respawner *Respawner, bus Broadcaster, cfg Config) *Engine {
	return &Engine{
		world:     world,
		respawner: respawner,
		bus:       bus,
		cfg:       cfg,
	}
}

// Tick returns how many steps have run.
func (e *Engine) Tick() uint64 { return e.tick }

// Step runs one tick at time now: due respawns fire first, then every
// projectile moves, expires, collides or leaves the arena. A projectile hits
// at most one player per tick and is removed in the same step.
func (e *Engine) Step(now time.Time) {
	e.tick++
	e.respawner.FireDue(now)

	players := e.world.Players()
	active := e.world.Projectiles()
	kept := active[:0]
	for _, b := range active {
		b.Advance()

		if b.Conflict || b.Expired(now) {
			continue
		}
		if e.collide(b, players, now) {
			continue
		}
		if !e.cfg.InBounds(b.X, b.Y) {
			continue
		}
		kept = append(kept, b)
	}
	// Clear the tail so dropped projectiles can be collected.
	for i := len(kept); i < len(active); i++ {
		active[i] = nil
	}
	e.world.SetProjectiles(kept)
}

func (e *Engine) collide(b *Projectile, players []*Player, now time.Time) bool {
	for _, p := range players {
		if p.ID == b.OwnerID || !p.Alive {
			continue
		}
		if math.Hypot(p.X-b.X, p.Y-b.Y) >= e.cfg.CollisionRadius {
			continue
		}

		b.Conflict = true
		if p.Hit() {
			e.respawner.Schedule(p.ID, now.Add(e.cfg.RespawnDelay))
		}
		e.bus.Broadcast(protocol.NewPlayerHit(p.Snapshot(), b.ID, b.OwnerID), "")
		return true
	}
	return false
}
