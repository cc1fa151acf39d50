package utils

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
)

// LogLevel orders log severities.
type LogLevel int32

const (
	Debug   LogLevel = 10
	Info    LogLevel = 20
	Warning LogLevel = 30
	Error   LogLevel = 40
)

// Logger is a leveled key-value logger scoped to one component. Values are
// rendered with %v, so types with redacting String methods stay redacted.
type Logger struct {
	logger *log.Logger
	level  atomic.Int32
}

// NewLogger creates a logger with a component prefix. The default level is
// Info unless one is given.
func NewLogger(prefix string, level ...LogLevel) *Logger {
	l := &Logger{
		logger: log.New(os.Stdout, fmt.Sprintf("[%s] ", prefix), log.LstdFlags),
	}
	if len(level) > 0 {
		l.level.Store(int32(level[0]))
	} else {
		l.level.Store(int32(Info))
	}
	return l
}

// SetLevel changes the minimum severity that gets emitted.
func (l *Logger) SetLevel(level LogLevel) {
	l.level.Store(int32(level))
}

func (l *Logger) Debug(msg string, keyvals ...any) { l.emit(Debug, "DEBUG", msg, keyvals...) }
func (l *Logger) Info(msg string, keyvals ...any)  { l.emit(Info, "INFO", msg, keyvals...) }
func (l *Logger) Warn(msg string, keyvals ...any)  { l.emit(Warning, "WARN", msg, keyvals...) }
func (l *Logger) Error(msg string, keyvals ...any) { l.emit(Error, "ERROR", msg, keyvals...) }

func (l *Logger) emit(level LogLevel, tag, msg string, keyvals ...any) {
	if int32(level) < l.level.Load() {
		return
	}
	line := fmt.Sprintf("[%s] %s", tag, msg)
	for i := 0; i+1 < len(keyvals); i += 2 {
		line += fmt.Sprintf(" %v=%v", keyvals[i], keyvals[i+1])
	}
	l.logger.Println(line)
}
