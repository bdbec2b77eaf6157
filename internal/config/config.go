// Package config loads server settings from an optional .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultAddr            = ":2345"
	DefaultOutboundQueue   = 256
	DefaultInboundRate     = 120.0 // position updates per second per connection
	DefaultInboundBurst    = 240
	DefaultMaxMessageBytes = 64 << 10
)

// Config holds process-level settings. Gameplay constants live in game.Config.
type Config struct {
	Addr            string
	StaticDir       string // empty disables static hosting
	LogLevel        string
	OutboundQueue   int
	InboundRate     float64
	InboundBurst    int
	MaxMessageBytes int64
}

// Default returns the settings used when nothing is configured
func Default() Config {
	return Config{
		Addr:            DefaultAddr,
		LogLevel:        "INFO",
		OutboundQueue:   DefaultOutboundQueue,
		InboundRate:     DefaultInboundRate,
		InboundBurst:    DefaultInboundBurst,
		MaxMessageBytes: DefaultMaxMessageBytes,
	}
}

// Load reads envFile (if it exists) into the process environment without
// overriding variables that are already set, then builds a Config from it.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables, falling back to Default.
func FromEnv() (Config, error) {
	cfg := Default()
	cfg.Addr = GetEnv("ARENA_ADDR", cfg.Addr)
	cfg.StaticDir = GetEnv("STATIC_DIR", cfg.StaticDir)
	cfg.LogLevel = GetEnv("LOG_LEVEL", cfg.LogLevel)

	var err error
	if cfg.OutboundQueue, err = envInt("OUTBOUND_QUEUE", cfg.OutboundQueue); err != nil {
		return Config{}, err
	}
	if cfg.InboundBurst, err = envInt("INBOUND_BURST", cfg.InboundBurst); err != nil {
		return Config{}, err
	}
	if cfg.InboundRate, err = envFloat("INBOUND_RATE", cfg.InboundRate); err != nil {
		return Config{}, err
	}
	maxBytes, err := envInt("MAX_MESSAGE_BYTES", int(cfg.MaxMessageBytes))
	if err != nil {
		return Config{}, err
	}
	cfg.MaxMessageBytes = int64(maxBytes)

	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("config: ARENA_ADDR is empty")
	case c.OutboundQueue <= 0:
		return fmt.Errorf("config: OUTBOUND_QUEUE must be > 0, got %d", c.OutboundQueue)
	case c.InboundRate <= 0:
		return fmt.Errorf("config: INBOUND_RATE must be > 0, got %v", c.InboundRate)
	case c.InboundBurst <= 0:
		return fmt.Errorf("config: INBOUND_BURST must be > 0, got %d", c.InboundBurst)
	case c.MaxMessageBytes <= 0:
		return fmt.Errorf("config: MAX_MESSAGE_BYTES must be > 0, got %d", c.MaxMessageBytes)
	}
	return nil
}

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return f, nil
}
