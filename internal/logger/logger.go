// Package logger provides leveled, per-component loggers with coloured level tags.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// LogLevel orders messages by severity
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps DEBUG/INFO/WARN/ERROR (any case) to a level.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO", "":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

var levelColors = map[LogLevel]*color.Color{
	DEBUG: color.New(color.FgWhite),
	INFO:  color.New(color.FgCyan, color.Bold),
	WARN:  color.New(color.FgYellow),
	ERROR: color.New(color.FgRed, color.Bold),
}

var (
	mu          sync.RWMutex
	globalLevel = INFO
	std         = log.New(os.Stderr, "", log.LstdFlags)
)

// Logger writes messages tagged with a component name.
type Logger struct {
	component string
}

// Component loggers
var (
	Server = New("SERVER")
	Arena  = New("ARENA")
	Client = New("CLIENT")
)

func New(component string) *Logger {
	return &Logger{component: component}
}

// SetGlobalLogLevel drops every message below level.
func SetGlobalLogLevel(level LogLevel) {
	mu.Lock()
	defer mu.Unlock()
	globalLevel = level
}

// GlobalLogLevel returns the current threshold
func GlobalLogLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return globalLevel
}

// SetOutput redirects all loggers.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

// Std returns a standard library logger that writes through l at ERROR level,
// for APIs such as http.Server.ErrorLog.
func (l *Logger) Std() *log.Logger {
	return log.New(writerFunc(func(p []byte) (int, error) {
		l.log(ERROR, "%s", strings.TrimRight(string(p), "\n"))
		return len(p), nil
	}), "", 0)
}

func (l *Logger) Debug(format string, args ...any) { l.log(DEBUG, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.log(INFO, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.log(WARN, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.log(ERROR, format, args...) }

// Fatal logs at ERROR and exits.
func (l *Logger) Fatal(format string, args ...any) {
	l.log(ERROR, format, args...)
	os.Exit(1)
}

func (l *Logger) log(level LogLevel, format string, args ...any) {
	if level < GlobalLogLevel() {
		return
	}
	tag := levelColors[level].Sprintf("[%s]", level)
	std.Printf("%s [%s] %s", tag, l.component, fmt.Sprintf(format, args...))
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
