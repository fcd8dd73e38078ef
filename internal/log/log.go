// Package log writes leveled, categorised lines to the debug log and
// republishes each line for the TUI log overlay.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/zjrosen/propdesk/internal/pubsub"
)

// Level is a log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// Category tags the subsystem a line came from.
type Category string

const (
	CatHTTP    Category = "http"
	CatRepo    Category = "repo"
	CatCache   Category = "cache"
	CatList    Category = "list"
	CatConfig  Category = "config"
	CatUI      Category = "ui"
	CatAuth    Category = "auth"
	CatExport  Category = "export"
	CatServer  Category = "server"
	CatWatcher Category = "watcher"
)

type logger struct {
	mu       sync.Mutex
	w        io.Writer
	minLevel Level
	broker   *pubsub.Broker[string]
}

// defaultLogger is nil until Init or InitWriter; logging before that is a
// no-op.
var defaultLogger *logger

// Init appends debug output to the file at path. The returned func closes it.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600) //nolint:gosec // G304: debug log path from flag or env
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	InitWriter(f, LevelDebug)
	return func() { _ = f.Close() }, nil
}

// InitWriter sends lines at minLevel and above to w.
func InitWriter(w io.Writer, minLevel Level) {
	defaultLogger = &logger{w: w, minLevel: minLevel, broker: pubsub.NewBroker[string]()}
}

func Debug(cat Category, msg string, fields ...any) { write(LevelDebug, cat, msg, fields) }
func Info(cat Category, msg string, fields ...any)  { write(LevelInfo, cat, msg, fields) }
func Warn(cat Category, msg string, fields ...any)  { write(LevelWarn, cat, msg, fields) }
func Error(cat Category, msg string, fields ...any) { write(LevelError, cat, msg, fields) }

// ErrorErr logs at error level with err appended as the error field.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	text := "<nil>"
	if err != nil {
		text = err.Error()
	}
	write(LevelError, cat, msg, append(fields, "error", text))
}

// 2025-12-06T10:45:00 [ERROR] [http] message key=value key2=value2
func write(level Level, cat Category, msg string, fields []any) {
	l := defaultLogger
	if l == nil || level < l.minLevel {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] [%s] %s", time.Now().Format("2006-01-02T15:04:05"), level, cat, msg)
	for i := 0; i < len(fields); i += 2 {
		if i+1 == len(fields) {
			fmt.Fprintf(&b, " %v=<missing>", fields[i])
			break
		}
		fmt.Fprintf(&b, " %v=%v", fields[i], fields[i+1])
	}
	b.WriteByte('\n')
	entry := b.String()

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.w, entry)
	l.broker.Publish(pubsub.CreatedEvent, entry)
}

// LogEvent carries one formatted line.
type LogEvent = pubsub.Event[string]

// LogListener delivers LogEvents as tea messages.
type LogListener = pubsub.ContinuousListener[string]

// NewListener subscribes to log lines until ctx is done. It returns nil
// when logging is off.
func NewListener(ctx context.Context) *LogListener {
	if defaultLogger == nil {
		return nil
	}
	return pubsub.NewContinuousListener(ctx, defaultLogger.broker)
}
