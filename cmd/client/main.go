package main

import (
	"flag"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yourusername/arena-server/internal/client"
	"github.com/yourusername/arena-server/internal/client/connection"
	"github.com/yourusername/arena-server/internal/client/ui"
	"github.com/yourusername/arena-server/internal/logger"
)

func main() {
	serverURL := flag.String("server", "ws://localhost:2345/ws", "WebSocket server URL")
	useTermloop := flag.Bool("termloop", false, "Use termloop for game rendering")
	logFile := flag.String("log", "", "write logs to this file (the terminal belongs to the game)")
	flag.Parse()

	logger.SetOutput(io.Discard)
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.SetOutput(os.Stderr)
			logger.Client.Fatal("open log file: %v", err)
		}
		defer f.Close()
		logger.SetOutput(f)
		logger.SetGlobalLogLevel(logger.DEBUG)
	}

	if *useTermloop {
		runTermloopGame(*serverURL)
		return
	}
	runBubbleTea(*serverURL)
}

// runBubbleTea runs the Bubble Tea interface
func runBubbleTea(serverURL string) {
	model := ui.NewModel(serverURL)
	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if m, ok := final.(ui.Model); ok {
		m.Disconnect()
	}
	if err != nil {
		logger.SetOutput(os.Stderr)
		logger.Client.Fatal("%v", err)
	}
}

// runTermloopGame connects first, then hands the terminal to termloop
func runTermloopGame(serverURL string) {
	mgr := connection.NewManager(serverURL)
	game := client.NewTermloopGame(mgr)
	if err := mgr.Connect(); err != nil {
		logger.SetOutput(os.Stderr)
		logger.Client.Fatal("failed to connect: %v", err)
	}
	defer mgr.Disconnect()

	logger.Client.Info("starting termloop game against %s", serverURL)
	game.Start()
}
