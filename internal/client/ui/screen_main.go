package ui

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yourusername/arena-server/internal/client/connection"
	"github.com/yourusername/arena-server/internal/game"
	"github.com/yourusername/arena-server/internal/protocol"
)

const (
	worldWidth  = game.ArenaWidth
	worldHeight = game.ArenaHeight
	moveStep    = 10.0
	turnStep    = math.Pi / 16
	maxChatLen  = game.ChatMaxLen // runes, the server truncates anything longer
)

// updateMainGame handles the arena screen
func (m Model) updateMainGame(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.chatInputActive {
		return m.updateChatInput(msg)
	}

	switch msg.String() {
	case "ctrl+c", "esc":
		m.connMgr.Disconnect()
		return m, tea.Quit

	case "enter", "t":
		m.chatInputActive = true
		m.chatInput = m.chatInput[:0]
		return m, nil

	case "w", "up":
		m.move(0, -moveStep, 0)
	case "s", "down":
		m.move(0, moveStep, 0)
	case "a":
		m.move(-moveStep, 0, 0)
	case "d":
		m.move(moveStep, 0, 0)
	case "left":
		m.move(0, 0, -turnStep)
	case "right":
		m.move(0, 0, turnStep)

	case " ":
		if self, ok := m.self(); ok && self.IsAlive {
			m.connMgr.Shoot(self.X, self.Y, self.Angle)
		}

	case "r":
		if self, ok := m.self(); ok && !self.IsAlive {
			m.connMgr.RequestRespawn()
		}
	}

	return m, nil
}

func (m Model) updateChatInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.chatInputActive = false
		m.chatInput = m.chatInput[:0]
	case tea.KeyEnter:
		if text := strings.TrimSpace(string(m.chatInput)); text != "" {
			m.connMgr.Chat(text)
		}
		m.chatInputActive = false
		m.chatInput = m.chatInput[:0]
	case tea.KeyBackspace:
		if len(m.chatInput) > 0 {
			m.chatInput = m.chatInput[:len(m.chatInput)-1]
		}
	case tea.KeySpace:
		m.chatInput = appendLimited(m.chatInput, ' ')
	case tea.KeyRunes:
		m.chatInput = appendLimited(m.chatInput, msg.Runes...)
	}
	return m, nil
}

func appendLimited(in []rune, rs ...rune) []rune {
	for _, r := range rs {
		if len(in) >= maxChatLen {
			break
		}
		in = append(in, r)
	}
	return in
}

func (m Model) self() (protocol.Player, bool) {
	return m.connMgr.State().Player(m.playerID)
}

// move shifts and turns our player, clamped to the arena
func (m Model) move(dx, dy, dAngle float64) {
	self, ok := m.self()
	if !ok || !self.IsAlive {
		return
	}
	x := clamp(self.X+dx, 0, worldWidth)
	y := clamp(self.Y+dy, 0, worldHeight)
	angle := math.Remainder(self.Angle+dAngle, 2*math.Pi)
	m.connMgr.Move(x, y, angle)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// viewMainGame renders the arena next to the scoreboard and chat
func (m Model) viewMainGame() string {
	snap := m.connMgr.State().Snapshot()

	sideWidth := 34
	gameWidth := m.width - sideWidth - 8
	contentHeight := m.height - 6
	if gameWidth < 20 {
		gameWidth = 20
	}
	if contentHeight < 10 {
		contentHeight = 10
	}

	gameBox := gameBoxStyle.
		Width(gameWidth).
		Height(contentHeight).
		Render(renderArena(snap, gameWidth, contentHeight))

	scoreboard := m.renderScoreboard(snap, sideWidth)
	chatHeight := contentHeight - lipgloss.Height(scoreboard) - 4
	chatBox := chatBoxStyle.
		Width(sideWidth).
		Height(max(chatHeight, 3)).
		Render(m.renderChat(sideWidth, max(chatHeight, 3)))

	side := lipgloss.JoinVertical(lipgloss.Left, scoreboard, chatBox, m.renderChatInputBox(sideWidth))
	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, gameBox, side)

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, m.renderStatusBar(snap))
}

// toCell maps world coordinates onto a cols x rows grid
func toCell(x, y float64, cols, rows int) (int, int, bool) {
	if x < 0 || x >= worldWidth || y < 0 || y >= worldHeight {
		return 0, 0, false
	}
	return int(x / worldWidth * float64(cols)), int(y / worldHeight * float64(rows)), true
}

// renderArena draws projectiles first so players stay visible on top
func renderArena(snap connection.Snapshot, cols, rows int) string {
	grid := make([][]string, rows)
	for r := range grid {
		grid[r] = make([]string, cols)
		for c := range grid[r] {
			grid[r][c] = floorCell
		}
	}

	for _, b := range snap.Bullets {
		if c, r, ok := toCell(b.X, b.Y, cols, rows); ok {
			style := bulletStyle
			if b.PlayerID == snap.SelfID {
				style = ownBulletStyle
			}
			grid[r][c] = style.Render("•")
		}
	}

	for _, p := range snap.Players {
		c, r, ok := toCell(p.X, p.Y, cols, rows)
		if !ok {
			continue
		}
		switch {
		case !p.IsAlive:
			grid[r][c] = deadStyle.Render("x")
		case p.ID == snap.SelfID:
			grid[r][c] = selfStyle.Render(facingGlyph(p.Angle))
		default:
			grid[r][c] = enemyStyle.Render(facingGlyph(p.Angle))
		}
	}

	var sb strings.Builder
	for r, row := range grid {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for _, cell := range row {
			sb.WriteString(cell)
		}
	}
	return sb.String()
}

// facingGlyph picks one of eight arrows for angle (radians, y grows down)
func facingGlyph(angle float64) string {
	arrows := []string{"→", "↘", "↓", "↙", "←", "↖", "↑", "↗"}
	i := int(math.Round(angle/(math.Pi/4))) % 8
	if i < 0 {
		i += 8
	}
	return arrows[i]
}

func lifeBar(p protocol.Player) string {
	if !p.IsAlive {
		return deadStyle.Render("respawning")
	}
	return heartStyle.Render(strings.Repeat("♥", max(p.Lives, 0)))
}

func (m Model) renderScoreboard(snap connection.Snapshot, width int) string {
	lines := []string{highlightStyle.Render(fmt.Sprintf("Players (%d)", len(snap.Players)))}
	for _, p := range snap.Players {
		name := p.Nickname
		if p.ID == snap.SelfID {
			name = selfStyle.Render(name)
		}
		lines = append(lines, name+" "+lifeBar(p))
	}
	return scoreboardStyle.Width(width).Render(strings.Join(lines, "\n"))
}

func (m Model) renderChat(width, height int) string {
	var lines []string
	for _, msg := range m.chat.Last(height) {
		line := mutedStyle.Render("» " + msg.Content)
		if msg.Sender != "" {
			sender := chatSenderStyle
			if msg.IsOwn {
				sender = selfStyle
			}
			line = sender.Render(msg.Sender+":") + " " + msg.Content
		}
		lines = append(lines, lipgloss.NewStyle().MaxWidth(width).Render(line))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderChatInputBox(width int) string {
	if !m.chatInputActive {
		return inputBoxStyle.Width(width).Render(mutedStyle.Render("ENTER to chat"))
	}
	return inputBoxStyle.Width(width).Render(string(m.chatInput) + cursorStyle.Render("▌"))
}

func (m Model) renderStatusBar(snap connection.Snapshot) string {
	keys := "WASD move • ←/→ aim • SPACE fire • ENTER chat • ESC quit"
	status := "connected as " + m.nickname
	if self, ok := snap.Self(); ok && !self.IsAlive {
		keys = "R respawn now • " + keys
		status = errorStyle.Render("you are down")
	}
	return instructionStyle.Render(status + "  •  " + keys)
}
