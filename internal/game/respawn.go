package game

import (
	"math/rand/v2"
	"sort"
	"time"

	"github.com/yourusername/arena-server/internal/protocol"
)

// Respawner keeps at most one pending respawn per player, keyed by id, and
// owns the respawn transition shared by the timer and manual requests.
// Pending entries are fired by the engine through FireDue.
type Respawner struct {
	world   *World
	bus     Broadcaster
	cfg     Config
	rng     *rand.Rand
	pending map[string]time.Time
}

func NewRespawner(world *World, bus Broadcaster, cfg Config, rng *rand.Rand) *Respawner {
	return &Respawner{
		world:   world,
		bus:     bus,
		cfg:     cfg,
		rng:     rng,
		pending: make(map[string]time.Time),
	}
}

// Schedule arms a respawn for id at the given time. It refuses to arm a
// second one while one is pending.
func (r *Respawner) Schedule(id string, at time.Time) bool {
	if _, ok := r.pending[id]; ok {
		return false
	}
	r.pending[id] = at
	return true
}

// Cancel disarms the pending respawn for id, if any.
func (r *Respawner) Cancel(id string) bool {
	if _, ok := r.pending[id]; !ok {
		return false
	}
	delete(r.pending, id)
	return true
}

func (r *Respawner) Pending(id string) (time.Time, bool) {
	at, ok := r.pending[id]
	return at, ok
}

func (r *Respawner) NumPending() int { return len(r.pending) }

// FireDue runs every respawn whose time has come, earliest first, and
// returns how many players came back.
func (r *Respawner) FireDue(now time.Time) int {
	var due []string
	for id, at := range r.pending {
		if !at.After(now) {
			due = append(due, id)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		ai, aj := r.pending[due[i]], r.pending[due[j]]
		if ai.Equal(aj) {
			return due[i] < due[j]
		}
		return ai.Before(aj)
	})

	n := 0
	for _, id := range due {
		if r.Respawn(id) {
			n++
		}
	}
	return n
}

// Respawn brings the player back at a fresh spawn point with full lives and
// announces it. The pending entry is discarded either way.
func (r *Respawner) Respawn(id string) bool {
	delete(r.pending, id)

	p, ok := r.world.Player(id)
	if !ok {
		return false
	}
	x, y := r.cfg.RandomSpawn(r.rng)
	p.revive(x, y, r.cfg.InitialLives)

	r.bus.Broadcast(protocol.NewPlayerRespawn(p.Snapshot()), "")
	return true
}
