package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func capture(t *testing.T, level LogLevel) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevNoColor, prevLevel := color.NoColor, GlobalLogLevel()
	color.NoColor = true
	SetOutput(&buf)
	SetGlobalLogLevel(level)
	t.Cleanup(func() {
		color.NoColor = prevNoColor
		SetOutput(os.Stderr)
		SetGlobalLogLevel(prevLevel)
	})
	return &buf
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t, WARN)

	l := New("TEST")
	l.Info("hidden %d", 1)
	l.Warn("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "[WARN] [TEST] shown 2") {
		t.Fatalf("missing warn line: %q", out)
	}
}

func TestStdWritesAtErrorLevel(t *testing.T) {
	buf := capture(t, ERROR)

	New("HTTP").Std().Println("accept failed")
	if !strings.Contains(buf.String(), "[ERROR] [HTTP] accept failed") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", DEBUG, false},
		{"INFO", INFO, false},
		{"", INFO, false},
		{"warning", WARN, false},
		{"Error", ERROR, false},
		{"loud", INFO, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) err = %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
