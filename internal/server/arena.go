package server

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/arena-server/internal/game"
	"github.com/yourusername/arena-server/internal/logger"
)

var (
	ErrArenaClosed = errors.New("server: arena closed")
	ErrDuplicateID = errors.New("server: player id already in use")
)

// Arena owns the world and every connection. All mutation happens on the
// goroutine running Run: joins, inbound frames and leaves arrive through
// the inbox, ticks through the ticker, so handlers never overlap.
type Arena struct {
	cfg       game.Config
	world     *game.World
	registry  *Registry
	respawner *game.Respawner
	sessions  *game.Sessions
	engine    *game.Engine

	inbox chan any
	done  chan struct{}

	clock func() time.Time
	newID func() string
	rng   *rand.Rand
	names game.NameGenerator
	log   *logger.Logger
}

// Status is a point-in-time summary of the arena.
type Status struct {
	Players         int    `json:"players"`
	Bullets         int    `json:"bullets"`
	Connections     int    `json:"connections"`
	PendingRespawns int    `json:"pendingRespawns"`
	Tick            uint64 `json:"tick"`
	LastBulletID    int64  `json:"lastBulletId"`
}

type joinCmd struct {
	conn  Conn
	reply chan joinResult
}

type joinResult struct {
	id  string
	err error
}

type messageCmd struct {
	playerID string
	data     []byte
}

type leaveCmd struct {
	playerID string
}

type statusCmd struct {
	reply chan Status
}

type ArenaOption func(*Arena)

func WithClock(now func() time.Time) ArenaOption {
	return func(a *Arena) { a.clock = now }
}

// WithIDs replaces uuid player ids.
func WithIDs(next func() string) ArenaOption {
	return func(a *Arena) { a.newID = next }
}

func WithRand(r *rand.Rand) ArenaOption {
	return func(a *Arena) { a.rng = r }
}

func WithNames(names game.NameGenerator) ArenaOption {
	return func(a *Arena) { a.names = names }
}

func WithLogger(l *logger.Logger) ArenaOption {
	return func(a *Arena) { a.log = l }
}

// NewArena builds an arena; call Run to start it.
func NewArena(cfg game.Config, opts ...ArenaOption) *Arena {
	a := &Arena{
		cfg:   cfg,
		inbox: make(chan any, 256),
		done:  make(chan struct{}),
		clock: time.Now,
		newID: uuid.NewString,
		names: game.MilitaryNames,
		log:   logger.Arena,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rng == nil {
		a.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}

	a.world = game.NewWorld()
	a.registry = NewRegistry(a.log)
	a.respawner = game.NewRespawner(a.world, a.registry, cfg, a.rng)
	a.sessions = game.NewSessions(a.world, a.respawner, a.registry, cfg, a.rng,
		game.WithClock(a.clock),
		game.WithNames(a.names),
	)
	a.engine = game.NewEngine(a.world, a.respawner, a.registry, cfg)
	return a
}

// Run processes commands and ticks until ctx is cancelled, then closes every
// connection. It must be called once.
func (a *Arena) Run(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.TickInterval())
	defer ticker.Stop()
	defer a.shutdown()

	a.log.Info("arena running at %d Hz (%dx%d)", a.cfg.TickRate, int(a.cfg.ArenaWidth), int(a.cfg.ArenaHeight))

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-a.inbox:
			a.handleCommand(cmd)
		case <-ticker.C:
			a.engine.Step(a.clock())
		}
		a.reap()
	}
}

// Join registers conn as a new player and returns its id once the init
// frame has been queued on it. ctx only bounds the wait for the inbox: once
// the join is queued the arena owns conn, so Join waits for the result.
func (a *Arena) Join(ctx context.Context, conn Conn) (string, error) {
	reply := make(chan joinResult, 1)
	if err := a.submit(ctx, joinCmd{conn: conn, reply: reply}); err != nil {
		return "", err
	}
	select {
	case res := <-reply:
		return res.id, res.err
	case <-a.done:
		return "", ErrArenaClosed
	}
}

// Deliver queues an inbound frame from playerID.
func (a *Arena) Deliver(playerID string, data []byte) error {
	return a.submit(context.Background(), messageCmd{playerID: playerID, data: data})
}

// Leave queues the disconnect of playerID. Leaving twice is harmless.
func (a *Arena) Leave(playerID string) error {
	return a.submit(context.Background(), leaveCmd{playerID: playerID})
}

func (a *Arena) Status(ctx context.Context) (Status, error) {
	reply := make(chan Status, 1)
	if err := a.submit(ctx, statusCmd{reply: reply}); err != nil {
		return Status{}, err
	}
	select {
	case st := <-reply:
		return st, nil
	case <-a.done:
		return Status{}, ErrArenaClosed
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
}

func (a *Arena) submit(ctx context.Context, cmd any) error {
	select {
	case <-a.done:
		return ErrArenaClosed
	default:
	}
	select {
	case a.inbox <- cmd:
		return nil
	case <-a.done:
		return ErrArenaClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Arena) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case joinCmd:
		id := a.newID()
		if !a.registry.Add(id, c.conn) {
			a.log.Error("refusing connection: id %s is already in use", id)
			c.conn.Close()
			c.reply <- joinResult{err: ErrDuplicateID}
			return
		}
		p := a.sessions.Join(id)
		a.log.Info("player %s (%s) joined, %d online", id, p.Nickname, a.registry.Len())
		c.reply <- joinResult{id: id}

	case messageCmd:
		if !a.registry.Has(c.playerID) {
			return
		}
		if err := a.sessions.Handle(c.playerID, c.data); err != nil {
			a.log.Warn("discarding malformed message from %s: %v", c.playerID, err)
		}

	case leaveCmd:
		a.disconnect(c.playerID)

	case statusCmd:
		c.reply <- Status{
			Players:         a.world.NumPlayers(),
			Bullets:         a.world.NumProjectiles(),
			Connections:     a.registry.Len(),
			PendingRespawns: a.respawner.NumPending(),
			Tick:            a.engine.Tick(),
			LastBulletID:    a.world.LastProjectileID(),
		}
	}
}

func (a *Arena) disconnect(id string) {
	if !a.registry.Remove(id) {
		return
	}
	a.sessions.Leave(id)
	a.log.Info("player %s left, %d online", id, a.registry.Len())
}

// reap drops connections whose sends failed. Announcing a departure can
// fail further sends, so it loops until nothing is left.
func (a *Arena) reap() {
	for {
		failed := a.registry.DrainFailed()
		if len(failed) == 0 {
			return
		}
		for _, id := range failed {
			a.log.Warn("dropping slow or broken connection %s", id)
			a.disconnect(id)
		}
	}
}

func (a *Arena) shutdown() {
	close(a.done)
	for _, id := range a.registry.IDs() {
		a.registry.Remove(id)
	}
	a.log.Info("arena stopped after %d ticks", a.engine.Tick())
}
