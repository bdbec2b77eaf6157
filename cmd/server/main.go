package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yourusername/arena-server/internal/config"
	"github.com/yourusername/arena-server/internal/game"
	"github.com/yourusername/arena-server/internal/logger"
	"github.com/yourusername/arena-server/internal/server"
)

func main() {
	envFile := flag.String("env", ".env", "optional dotenv file")
	addr := flag.String("addr", "", "HTTP service address (overrides ARENA_ADDR)")
	static := flag.String("static", "", "directory of client files to serve at / (overrides STATIC_DIR)")
	logLevel := flag.String("log-level", "", "DEBUG, INFO, WARN or ERROR (overrides LOG_LEVEL)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.Server.Fatal("config: %v", err)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *static != "" {
		cfg.StaticDir = *static
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Server.Fatal("config: %v", err)
	}
	logger.SetGlobalLogLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	arena := server.NewArena(game.DefaultConfig())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		arena.Run(ctx)
	}()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.NewServer(arena, cfg).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          logger.Server.Std(),
	}

	go func() {
		logger.Server.Info("listening on %s", cfg.Addr)
		if cfg.StaticDir != "" {
			logger.Server.Info("serving static files from %s", cfg.StaticDir)
		}
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Server.Error("listen: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Server.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Server.Warn("shutdown: %v", err)
	}
	wg.Wait()
	logger.Server.Info("bye")
}
