package game

import (
	"math"
	"time"

	"github.com/yourusername/arena-server/internal/protocol"
)

// Projectile is one shot in flight
type Projectile struct {
	ID        int64
	OwnerID   string
	X, Y      float64
	Angle     float64
	Speed     float64
	CreatedAt time.Time
	TTL       time.Duration
	// Conflict is set the moment the projectile hits someone; it is removed
	// in the same step.
	Conflict bool
}

// Advance moves the projectile one tick along its heading.
func (b *Projectile) Advance() {
	b.X += math.Cos(b.Angle) * b.Speed
	b.Y += math.Sin(b.Angle) * b.Speed
}

func (b *Projectile) Expired(now time.Time) bool {
	return now.Sub(b.CreatedAt) > b.TTL
}

func (b *Projectile) Snapshot() protocol.Bullet {
	return protocol.Bullet{
		ID:        b.ID,
		PlayerID:  b.OwnerID,
		X:         b.X,
		Y:         b.Y,
		Angle:     b.Angle,
		Speed:     b.Speed,
		Conflict:  b.Conflict,
		CreatedAt: b.CreatedAt.UnixMilli(),
		TTL:       b.TTL.Milliseconds(),
	}
}
