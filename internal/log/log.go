// Package log is a small leveled key/value logger writing to stderr.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	default:
		return "ERROR"
	}
}

// Logger writes timestamped lines of the form
//
//	2025-01-01T00:00:00Z [LEVEL] msg key=value ...
type Logger struct {
	mu  sync.Mutex
	out io.Writer
	min Level
}

// New returns a logger writing to out at the given minimum level.
func New(out io.Writer, min Level) *Logger {
	return &Logger{out: out, min: min}
}

var std = New(os.Stderr, LevelInfo)

// SetLevel adjusts the package logger's minimum level.
func SetLevel(min Level) {
	std.mu.Lock()
	std.min = min
	std.mu.Unlock()
}

func Debug(msg string, kv ...any) { std.log(LevelDebug, msg, kv...) }
func Info(msg string, kv ...any)  { std.log(LevelInfo, msg, kv...) }
func Error(msg string, err error, kv ...any) {
	std.log(LevelError, msg, append([]any{"err", err}, kv...)...)
}

func (l *Logger) Debug(msg string, kv ...any) { l.log(LevelDebug, msg, kv...) }
func (l *Logger) Info(msg string, kv ...any)  { l.log(LevelInfo, msg, kv...) }
func (l *Logger) Error(msg string, err error, kv ...any) {
	l.log(LevelError, msg, append([]any{"err", err}, kv...)...)
}

func (l *Logger) log(level Level, msg string, kv ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.min {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().UTC().Format(time.RFC3339))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)
	// kv comes in pairs; a dangling value is dropped.
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, " %s=%v", key, kv[i+1])
	}
	b.WriteByte('\n')
	io.WriteString(l.out, b.String())
}
