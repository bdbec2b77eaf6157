package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yourusername/arena-server/internal/config"
	"github.com/yourusername/arena-server/internal/logger"
	"github.com/yourusername/arena-server/internal/protocol"
	"golang.org/x/time/rate"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second    //time allowed to read the next pong message from client
	pingPeriod = (pongWait * 9) / 10 //send pings to client with this period. must be less than pongWait
)

// Client is one websocket connection. Frames queued with Send are written
// by writePump, one text frame per event.
type Client struct {
	ID      string
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn, cfg config.Config) *Client {
	return &Client{
		conn:    conn,
		send:    make(chan []byte, cfg.OutboundQueue),
		limiter: rate.NewLimiter(rate.Limit(cfg.InboundRate), cfg.InboundBurst),
	}
}

// Send queues data without blocking.
func (c *Client) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops writePump once the queued frames are flushed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	return nil
}

// readPump pumps frames from the websocket connection into the arena
func (c *Client) readPump(arena *Arena, maxMessageBytes int64) {
	defer func() {
		arena.Leave(c.ID)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageBytes)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Server.Warn("websocket error from %s: %v", c.ID, err)
			}
			return
		}
		if c.throttled(message) {
			logger.Server.Debug("rate limited %s, dropping update", c.ID)
			continue
		}
		if err := arena.Deliver(c.ID, message); err != nil {
			return
		}
	}
}

// throttled reports whether message is a position update over the
// connection's budget. Shots, chat and respawn requests are never dropped;
// frames without a readable type share the update budget.
func (c *Client) throttled(message []byte) bool {
	var h protocol.Header
	if err := json.Unmarshal(message, &h); err == nil && h.Type != protocol.MsgUpdate {
		return false
	}
	return !c.limiter.Allow()
}

// writePump pumps queued frames from the arena to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Server.Debug("write to %s: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Server exposes the arena over HTTP.
type Server struct {
	arena    *Arena
	cfg      config.Config
	upgrader websocket.Upgrader
}

func NewServer(arena *Arena, cfg config.Config) *Server {
	return &Server{
		arena: arena,
		cfg:   cfg,
		upgrader: websocket.Upgrader{ //upgrade HTTP connections to WebSocket connections
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // browser clients may be served from anywhere
			},
		},
	}
}

// Routes returns the handler for /ws, /status and, when configured, the
// static client files.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWebSocket)
	mux.HandleFunc("/status", s.HandleStatus)
	if s.cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}
	return mux
}

// HandleWebSocket upgrades the request and joins the connection to the arena
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Server.Warn("upgrade error: %v", err)
		return
	}

	client := newClient(conn, s.cfg)
	id, err := s.arena.Join(r.Context(), client)
	if err != nil {
		logger.Server.Warn("join failed for %s: %v", r.RemoteAddr, err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "arena unavailable"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	client.ID = id
	logger.Server.Debug("connection %s from %s", id, r.RemoteAddr)

	go client.writePump()
	go client.readPump(s.arena, s.cfg.MaxMessageBytes)
}

// HandleStatus reports arena counters as JSON.
func (s *Server) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	st, err := s.arena.Status(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		logger.Server.Warn("write status: %v", err)
	}
}
