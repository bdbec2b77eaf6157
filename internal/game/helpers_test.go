package game

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/yourusername/arena-server/internal/protocol"
)

type frame struct {
	to        string // set for Send
	exclude   string // set for Broadcast
	broadcast bool
	env       protocol.Envelope
}

// recorder is a Broadcaster that keeps everything it is given.
type recorder struct {
	frames []frame
}

func (r *recorder) Send(to string, env protocol.Envelope) {
	r.frames = append(r.frames, frame{to: to, env: env})
}

func (r *recorder) Broadcast(env protocol.Envelope, exclude string) {
	r.frames = append(r.frames, frame{exclude: exclude, broadcast: true, env: env})
}

func (r *recorder) ofType(t protocol.MessageType) []frame {
	var out []frame
	for _, f := range r.frames {
		if f.env.EnvelopeType() == t {
			out = append(out, f)
		}
	}
	return out
}

func (r *recorder) reset() { r.frames = nil }

type fixture struct {
	cfg       Config
	now       time.Time
	world     *World
	bus       *recorder
	respawner *Respawner
	sessions  *Sessions
	engine    *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		cfg:   DefaultConfig(),
		now:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		world: NewWorld(),
		bus:   &recorder{},
	}
	rng := rand.New(rand.NewPCG(1, 2))
	f.respawner = NewRespawner(f.world, f.bus, f.cfg, rng)
	f.sessions = NewSessions(f.world, f.respawner, f.bus, f.cfg, rng,
		WithClock(func() time.Time { return f.now }),
		WithNames(func(*rand.Rand) string { return "Tester" }),
	)
	f.engine = NewEngine(f.world, f.respawner, f.bus, f.cfg)
	return f
}

// step advances the clock by one tick and runs the engine.
func (f *fixture) step() {
	f.now = f.now.Add(f.cfg.TickInterval())
	f.engine.Step(f.now)
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) place(t *testing.T, id string, x, y float64) *Player {
	t.Helper()
	p, ok := f.world.Player(id)
	if !ok {
		t.Fatalf("player %q not in world", id)
	}
	p.X, p.Y = x, y
	return p
}

func (f *fixture) mustPlayer(t *testing.T, id string) *Player {
	t.Helper()
	p, ok := f.world.Player(id)
	if !ok {
		t.Fatalf("player %q not in world", id)
	}
	return p
}
