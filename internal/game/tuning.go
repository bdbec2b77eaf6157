package game

import (
	"math/rand/v2"
	"time"
)

// Gameplay constants clients rely on.
const (
	InitialLives    = 3
	RespawnDelay    = 5000 * time.Millisecond
	TickRate        = 60
	CollisionRadius = 40.0
	ProjectileSpeed = 10.0 // units per tick
	ProjectileTTL   = 3000 * time.Millisecond
	ArenaWidth      = 800.0
	ArenaHeight     = 600.0
	SpawnMargin     = 50.0 // spawns never land closer than this to an edge
	DespawnMargin   = 50.0 // projectiles survive this far past the visible area
	ChatMaxLen      = 200  // runes
)

// Config carries the tuning used by Sessions, Engine and Respawner. Tests
// shorten durations through it; the server runs DefaultConfig.
type Config struct {
	InitialLives    int
	RespawnDelay    time.Duration
	TickRate        int
	CollisionRadius float64
	ProjectileSpeed float64
	ProjectileTTL   time.Duration
	ArenaWidth      float64
	ArenaHeight     float64
	SpawnMargin     float64
	DespawnMargin   float64
	ChatMaxLen      int
}

func DefaultConfig() Config {
	return Config{
		InitialLives:    InitialLives,
		RespawnDelay:    RespawnDelay,
		TickRate:        TickRate,
		CollisionRadius: CollisionRadius,
		ProjectileSpeed: ProjectileSpeed,
		ProjectileTTL:   ProjectileTTL,
		ArenaWidth:      ArenaWidth,
		ArenaHeight:     ArenaHeight,
		SpawnMargin:     SpawnMargin,
		DespawnMargin:   DespawnMargin,
		ChatMaxLen:      ChatMaxLen,
	}
}

// TickInterval is the time between two engine steps.
func (c Config) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / TickRate
	}
	return time.Second / time.Duration(c.TickRate)
}

// InBounds reports whether (x, y) lies strictly inside the despawn rectangle.
func (c Config) InBounds(x, y float64) bool {
	m := c.DespawnMargin
	return x > -m && x < c.ArenaWidth+m && y > -m && y < c.ArenaHeight+m
}

// RandomSpawn picks a point in [margin, size-margin) on both axes.
func (c Config) RandomSpawn(r *rand.Rand) (x, y float64) {
	m := c.SpawnMargin
	x = m + r.Float64()*(c.ArenaWidth-2*m)
	y = m + r.Float64()*(c.ArenaHeight-2*m)
	return x, y
}
