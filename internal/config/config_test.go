package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var keys = []string{
	"ARENA_ADDR", "STATIC_DIR", "LOG_LEVEL", "OUTBOUND_QUEUE",
	"INBOUND_RATE", "INBOUND_BURST", "MAX_MESSAGE_BYTES",
}

// clearEnv unsets every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("cfg = %+v, want defaults %+v", cfg, Default())
	}
	if cfg.Addr != ":2345" {
		t.Fatalf("addr = %q", cfg.Addr)
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	body := "ARENA_ADDR=:9000\nOUTBOUND_QUEUE=32\nINBOUND_RATE=7.5\nSTATIC_DIR=public\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.OutboundQueue != 32 || cfg.InboundRate != 7.5 || cfg.StaticDir != "public" {
		t.Fatalf("unexpected cfg %+v", cfg)
	}
}

func TestEnvironmentWinsOverFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("ARENA_ADDR", ":7000")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("ARENA_ADDR=:9000\n"), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7000" {
		t.Fatalf("addr = %q, want :7000", cfg.Addr)
	}
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		key, value, wantInErr string
	}{
		{"OUTBOUND_QUEUE", "lots", "OUTBOUND_QUEUE"},
		{"OUTBOUND_QUEUE", "0", "OUTBOUND_QUEUE"},
		{"INBOUND_RATE", "-1", "INBOUND_RATE"},
		{"MAX_MESSAGE_BYTES", "x", "MAX_MESSAGE_BYTES"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			_, err := FromEnv()
			if err == nil || !strings.Contains(err.Error(), tt.wantInErr) {
				t.Fatalf("err = %v, want mention of %s", err, tt.wantInErr)
			}
		})
	}
}
