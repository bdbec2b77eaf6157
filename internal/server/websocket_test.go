package server

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
	"github.com/yourusername/arena-server/internal/config"
	"github.com/yourusername/arena-server/internal/game"
	"github.com/yourusername/arena-server/internal/protocol"
)

func newTestServer(t *testing.T, cfg config.Config) (*httptest.Server, string) {
	t.Helper()
	arena := startArena(t, game.DefaultConfig())
	srv := httptest.NewServer(NewServer(arena, cfg).Routes())
	t.Cleanup(srv.Close)
	return srv, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func writeEnvelope(t *testing.T, conn *websocket.Conn, env protocol.Envelope) {
	t.Helper()
	data, err := protocol.EncodeMessage(env)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write: %v", err)
	}
}

// waitFor reads frames until one of type typ arrives. Every frame must hold
// exactly one JSON object.
func waitFor[T any](t *testing.T, conn *websocket.Conn, typ protocol.MessageType) T {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	defer conn.SetReadDeadline(time.Time{})
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read waiting for %s: %v", typ, err)
		}
		if kind != websocket.TextMessage {
			t.Fatalf("frame kind = %d, want text", kind)
		}
		msg, err := protocol.DecodeMessage(data)
		if err != nil {
			t.Fatalf("decode %q: %v", data, err)
		}
		if msg.Type != typ {
			continue
		}
		v, err := protocol.DecodePayload[T](msg)
		if err != nil {
			t.Fatalf("decode %s: %v", typ, err)
		}
		return v
	}
}

func TestWebSocketDuel(t *testing.T) {
	_, url := newTestServer(t, config.Default())

	connA := dial(t, url)
	initA := waitFor[protocol.InitEvent](t, connA, protocol.MsgInit)

	connB := dial(t, url)
	initB := waitFor[protocol.InitEvent](t, connB, protocol.MsgInit)
	if _, ok := initB.GameState.Players[initA.PlayerID]; !ok {
		t.Fatalf("B's snapshot is missing A")
	}
	if got := waitFor[protocol.PlayerJoinedEvent](t, connA, protocol.MsgPlayerJoined); got.Player.ID != initB.PlayerID {
		t.Fatalf("playerJoined = %+v", got)
	}

	x, y := 130.0, 100.0
	writeEnvelope(t, connB, protocol.NewUpdate(protocol.PlayerUpdates{X: &x, Y: &y}))
	waitFor[protocol.PlayerUpdatedEvent](t, connA, protocol.MsgPlayerUpdated)

	writeEnvelope(t, connA, protocol.NewShoot(100, 100, 0))
	if fired := waitFor[protocol.BulletFiredEvent](t, connA, protocol.MsgBulletFired); fired.Bullet.ID != 1 {
		t.Fatalf("first bullet id = %d", fired.Bullet.ID)
	}
	hit := waitFor[protocol.PlayerHitEvent](t, connB, protocol.MsgPlayerHit)
	if hit.PlayerID != initB.PlayerID || hit.Lives != game.InitialLives-1 {
		t.Fatalf("playerHit = %+v", hit)
	}

	writeEnvelope(t, connB, protocol.NewChat(strings.Repeat("ж", 300)))
	chat := waitFor[protocol.ChatMessageEvent](t, connA, protocol.MsgChatMessage)
	if utf8.RuneCountInString(chat.Message) != game.ChatMaxLen {
		t.Fatalf("chat has %d runes", utf8.RuneCountInString(chat.Message))
	}

	connB.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	connB.Close()
	if left := waitFor[protocol.PlayerLeftEvent](t, connA, protocol.MsgPlayerLeft); left.PlayerID != initB.PlayerID {
		t.Fatalf("playerLeft = %+v", left)
	}
}

func TestWebSocketOversizedFrameDisconnects(t *testing.T) {
	cfg := config.Default()
	cfg.MaxMessageBytes = 64
	_, url := newTestServer(t, cfg)

	watcher := dial(t, url)
	waitFor[protocol.InitEvent](t, watcher, protocol.MsgInit)
	conn := dial(t, url)
	init := waitFor[protocol.InitEvent](t, conn, protocol.MsgInit)

	writeEnvelope(t, conn, protocol.NewChat(strings.Repeat("x", 256)))
	if left := waitFor[protocol.PlayerLeftEvent](t, watcher, protocol.MsgPlayerLeft); left.PlayerID != init.PlayerID {
		t.Fatalf("playerLeft = %+v", left)
	}
}

func TestStatusEndpoint(t *testing.T) {
	srv, url := newTestServer(t, config.Default())
	conn := dial(t, url)
	waitFor[protocol.InitEvent](t, conn, protocol.MsgInit)

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d", resp.StatusCode)
	}
	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Players != 1 || st.Connections != 1 {
		t.Fatalf("status = %+v", st)
	}
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>arena</h1>"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.StaticDir = dir
	srv, _ := newTestServer(t, cfg)

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status code = %d", resp.StatusCode)
	}
}

// countUntil reads frames until n of type stop have arrived and returns how
// many of each type were seen on the way.
func countUntil(t *testing.T, conn *websocket.Conn, stop protocol.MessageType, n int) map[protocol.MessageType]int {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	defer conn.SetReadDeadline(time.Time{})
	seen := make(map[protocol.MessageType]int)
	for seen[stop] < n {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read after %v: %v", seen, err)
		}
		msg, err := protocol.DecodeMessage(data)
		if err != nil {
			t.Fatalf("decode %q: %v", data, err)
		}
		seen[msg.Type]++
	}
	return seen
}

func TestWebSocketSixtyHertzClientKeepsEveryShot(t *testing.T) {
	_, url := newTestServer(t, config.Default())
	watcher := dial(t, url)
	waitFor[protocol.InitEvent](t, watcher, protocol.MsgInit)
	shooter := dial(t, url)
	waitFor[protocol.InitEvent](t, shooter, protocol.MsgInit)
	waitFor[protocol.PlayerJoinedEvent](t, watcher, protocol.MsgPlayerJoined)

	// one update per frame for a second, firing every third frame
	for i := 0; i < 60; i++ {
		x, y := 100+float64(i), 100.0
		writeEnvelope(t, shooter, protocol.NewUpdate(protocol.PlayerUpdates{X: &x, Y: &y}))
		if i%3 == 2 {
			writeEnvelope(t, shooter, protocol.NewShoot(x, y, math.Pi/2))
		}
		time.Sleep(time.Second / 60)
	}

	seen := countUntil(t, watcher, protocol.MsgBulletFired, 20)
	if seen[protocol.MsgPlayerUpdated] != 60 {
		t.Fatalf("watcher saw %d of 60 updates", seen[protocol.MsgPlayerUpdated])
	}
}

func TestWebSocketThrottleDropsOnlyUpdates(t *testing.T) {
	cfg := config.Default()
	cfg.InboundRate = 1
	cfg.InboundBurst = 1
	_, url := newTestServer(t, cfg)
	watcher := dial(t, url)
	waitFor[protocol.InitEvent](t, watcher, protocol.MsgInit)
	shooter := dial(t, url)
	waitFor[protocol.InitEvent](t, shooter, protocol.MsgInit)
	waitFor[protocol.PlayerJoinedEvent](t, watcher, protocol.MsgPlayerJoined)

	for i := 0; i < 20; i++ {
		for j := 0; j < 3; j++ {
			x := 100 + float64(i*3+j)
			writeEnvelope(t, shooter, protocol.NewUpdate(protocol.PlayerUpdates{X: &x}))
		}
		writeEnvelope(t, shooter, protocol.NewShoot(100, 100, math.Pi/2))
	}
	writeEnvelope(t, shooter, protocol.NewChat("still here"))

	seen := countUntil(t, watcher, protocol.MsgChatMessage, 1)
	if seen[protocol.MsgBulletFired] != 20 {
		t.Fatalf("watcher saw %d of 20 shots", seen[protocol.MsgBulletFired])
	}
	if n := seen[protocol.MsgPlayerUpdated]; n == 0 || n >= 60 {
		t.Fatalf("watcher saw %d updates, want some but not all of 60", n)
	}
}

func TestWebSocketLongMultibyteChatIsTruncated(t *testing.T) {
	srv, url := newTestServer(t, config.Default())
	watcher := dial(t, url)
	waitFor[protocol.InitEvent](t, watcher, protocol.MsgInit)
	talker := dial(t, url)
	init := waitFor[protocol.InitEvent](t, talker, protocol.MsgInit)

	// about 10 KB of two-byte runes
	writeEnvelope(t, talker, protocol.NewChat(strings.Repeat("ж", 5000)))
	chat := waitFor[protocol.ChatMessageEvent](t, watcher, protocol.MsgChatMessage)
	if chat.PlayerID != init.PlayerID || chat.Message != strings.Repeat("ж", game.ChatMaxLen) {
		t.Fatalf("chat from %s has %d runes", chat.PlayerID, utf8.RuneCountInString(chat.Message))
	}
	waitFor[protocol.ChatMessageEvent](t, talker, protocol.MsgChatMessage)

	resp, err := http.Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	defer resp.Body.Close()
	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Connections != 2 {
		t.Fatalf("talker was disconnected: %+v", st)
	}
}
