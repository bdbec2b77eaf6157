// Package client holds the alternative termloop renderer; the default
// Bubble Tea interface lives in ui.
package client

import (
	"fmt"
	"math"
	"sync"

	tl "github.com/JoelOtter/termloop"
	"github.com/yourusername/arena-server/internal/client/connection"
	"github.com/yourusername/arena-server/internal/game"
	"github.com/yourusername/arena-server/internal/logger"
	"github.com/yourusername/arena-server/internal/protocol"
)

const (
	worldWidth  = game.ArenaWidth
	worldHeight = game.ArenaHeight
	moveStep    = 10.0
	turnStep    = math.Pi / 16
	hudLines    = 4
)

// TermloopGame renders the arena with termloop. It has no chat input;
// chat and notices scroll along the bottom.
type TermloopGame struct {
	game    *tl.Game
	connMgr *connection.Manager

	mu       sync.Mutex
	playerID string
	log      []string
}

// NewTermloopGame creates a game bound to connMgr. Connect after this so
// the welcome event is not missed.
func NewTermloopGame(connMgr *connection.Manager) *TermloopGame {
	game := tl.NewGame()
	game.Screen().SetFps(30)
	level := tl.NewBaseLevel(tl.Cell{
		Bg: tl.ColorBlack,
		Fg: tl.ColorWhite,
		Ch: ' ',
	})
	game.Screen().SetLevel(level)

	tg := &TermloopGame{
		game:    game,
		connMgr: connMgr,
	}
	level.AddEntity(&arenaView{game: tg})

	connMgr.OnEvent(tg.handleEvent)
	return tg
}

// Start blocks until the player quits
func (tg *TermloopGame) Start() {
	tg.game.Start()
}

// Stop ends the termloop game
func (tg *TermloopGame) Stop() {
	tg.game.End()
}

func (tg *TermloopGame) handleEvent(ev connection.Event) {
	tg.mu.Lock()
	defer tg.mu.Unlock()

	switch e := ev.(type) {
	case connection.WelcomeEvent:
		tg.playerID = e.PlayerID
		tg.appendLog("you are " + e.Nickname)
	case connection.ChatEvent:
		tg.appendLog(e.Nickname + ": " + e.Message)
	case connection.NoticeEvent:
		tg.appendLog(e.Text)
	case connection.DisconnectedEvent:
		tg.appendLog("disconnected, press ESC to quit")
	}
}

func (tg *TermloopGame) appendLog(line string) {
	tg.log = append(tg.log, line)
	if len(tg.log) > hudLines {
		tg.log = tg.log[len(tg.log)-hudLines:]
	}
}

func (tg *TermloopGame) self() (protocol.Player, bool) {
	tg.mu.Lock()
	id := tg.playerID
	tg.mu.Unlock()
	return tg.connMgr.State().Player(id)
}

// arenaView draws the mirrored arena and turns key presses into requests
type arenaView struct {
	game *TermloopGame
}

func (v *arenaView) Draw(screen *tl.Screen) {
	state := v.game.connMgr.State()
	state.Prune()
	snap := state.Snapshot()

	w, h := screen.Size()
	rows := h - hudLines - 1
	if w <= 0 || rows <= 0 {
		return
	}

	for _, b := range snap.Bullets {
		if c, r, ok := cellOf(b.X, b.Y, w, rows); ok {
			screen.RenderCell(c, r+1, &tl.Cell{Fg: tl.ColorRed, Ch: '•'})
		}
	}
	for _, p := range snap.Players {
		c, r, ok := cellOf(p.X, p.Y, w, rows)
		if !ok {
			continue
		}
		cell := &tl.Cell{Fg: tl.ColorYellow, Ch: 'O'}
		switch {
		case !p.IsAlive:
			cell = &tl.Cell{Fg: tl.ColorWhite, Ch: 'x'}
		case p.ID == snap.SelfID:
			cell = &tl.Cell{Fg: tl.ColorGreen, Ch: '@'}
		}
		screen.RenderCell(c, r+1, cell)
	}

	header := fmt.Sprintf("Players: %d | Bullets: %d", len(snap.Players), len(snap.Bullets))
	if self, ok := snap.Self(); ok {
		header = fmt.Sprintf("%s | lives %d | %s", self.Nickname, self.Lives, header)
		if !self.IsAlive {
			header += " | down, R to respawn"
		}
	}
	renderText(screen, 0, 0, header, tl.ColorWhite)

	v.game.mu.Lock()
	lines := append([]string(nil), v.game.log...)
	v.game.mu.Unlock()
	for i, line := range lines {
		renderText(screen, 0, rows+1+i, line, tl.ColorCyan)
	}
}

func (v *arenaView) Tick(event tl.Event) {
	if event.Type != tl.EventKey {
		return
	}
	if event.Key == tl.KeyEsc || event.Key == tl.KeyCtrlC {
		logger.Client.Info("leaving the arena")
		v.game.connMgr.Disconnect()
		v.game.Stop()
		return
	}

	self, ok := v.game.self()
	if !ok {
		return
	}
	mgr := v.game.connMgr

	switch {
	case event.Key == tl.KeySpace && self.IsAlive:
		mgr.Shoot(self.X, self.Y, self.Angle)
	case event.Ch == 'r' && !self.IsAlive:
		mgr.RequestRespawn()
	case !self.IsAlive:
		// down: no movement until respawn
	case event.Ch == 'w' || event.Key == tl.KeyArrowUp:
		mgr.Move(self.X, math.Max(0, self.Y-moveStep), self.Angle)
	case event.Ch == 's' || event.Key == tl.KeyArrowDown:
		mgr.Move(self.X, math.Min(worldHeight, self.Y+moveStep), self.Angle)
	case event.Ch == 'a':
		mgr.Move(math.Max(0, self.X-moveStep), self.Y, self.Angle)
	case event.Ch == 'd':
		mgr.Move(math.Min(worldWidth, self.X+moveStep), self.Y, self.Angle)
	case event.Key == tl.KeyArrowLeft:
		mgr.Move(self.X, self.Y, math.Remainder(self.Angle-turnStep, 2*math.Pi))
	case event.Key == tl.KeyArrowRight:
		mgr.Move(self.X, self.Y, math.Remainder(self.Angle+turnStep, 2*math.Pi))
	}
}

func cellOf(x, y float64, cols, rows int) (int, int, bool) {
	if x < 0 || x >= worldWidth || y < 0 || y >= worldHeight {
		return 0, 0, false
	}
	return int(x / worldWidth * float64(cols)), int(y / worldHeight * float64(rows)), true
}

func renderText(screen *tl.Screen, x, y int, text string, fg tl.Attr) {
	i := 0
	for _, ch := range text {
		screen.RenderCell(x+i, y, &tl.Cell{Fg: fg, Ch: ch})
		i++
	}
}
