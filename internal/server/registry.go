package server

import (
	"errors"
	"slices"

	"github.com/yourusername/arena-server/internal/logger"
	"github.com/yourusername/arena-server/internal/protocol"
)

var (
	ErrQueueFull  = errors.New("server: outbound queue full")
	ErrConnClosed = errors.New("server: connection closed")
)

// Conn is one client channel as seen by the arena. Send must not block.
type Conn interface {
	Send([]byte) error
	Close() error
}

// Registry maps player ids to their connections and fans frames out to them.
// It implements game.Broadcaster. A failed delivery is only recorded; the
// arena reaps failed connections once the current unit of work is done.
type Registry struct {
	conns  map[string]Conn
	order  []string
	failed []string
	log    *logger.Logger
}

func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Server
	}
	return &Registry{
		conns: make(map[string]Conn),
		log:   log,
	}
}

func (r *Registry) Add(id string, conn Conn) bool {
	if _, ok := r.conns[id]; ok {
		return false
	}
	r.conns[id] = conn
	r.order = append(r.order, id)
	return true
}

// Remove forgets the connection and closes it. Removing twice is a no-op.
func (r *Registry) Remove(id string) bool {
	conn, ok := r.conns[id]
	if !ok {
		return false
	}
	delete(r.conns, id)
	if i := slices.Index(r.order, id); i >= 0 {
		r.order = slices.Delete(r.order, i, i+1)
	}
	if err := conn.Close(); err != nil {
		r.log.Debug("close %s: %v", id, err)
	}
	return true
}

func (r *Registry) Has(id string) bool {
	_, ok := r.conns[id]
	return ok
}

func (r *Registry) Len() int { return len(r.conns) }

// IDs returns the registered ids in join order.
func (r *Registry) IDs() []string { return slices.Clone(r.order) }

// Send delivers env to one player.
func (r *Registry) Send(to string, env protocol.Envelope) {
	conn, ok := r.conns[to]
	if !ok {
		return
	}
	data, err := protocol.EncodeMessage(env)
	if err != nil {
		r.log.Error("encode %s: %v", env.EnvelopeType(), err)
		return
	}
	r.deliver(to, conn, data)
}

// Broadcast encodes env once and delivers it to everyone except exclude.
func (r *Registry) Broadcast(env protocol.Envelope, exclude string) {
	data, err := protocol.EncodeMessage(env)
	if err != nil {
		r.log.Error("encode %s: %v", env.EnvelopeType(), err)
		return
	}
	for _, id := range r.order {
		if id == exclude {
			continue
		}
		r.deliver(id, r.conns[id], data)
	}
}

// DrainFailed returns the ids whose sends failed since the last call.
func (r *Registry) DrainFailed() []string {
	failed := r.failed
	r.failed = nil
	return failed
}

func (r *Registry) deliver(id string, conn Conn, data []byte) {
	if err := conn.Send(data); err != nil {
		if !slices.Contains(r.failed, id) {
			r.log.Warn("send to %s failed: %v", id, err)
			r.failed = append(r.failed, id)
		}
	}
}
