package log

import (
	"sync"
)

type logger struct {
	handler Handler
	fields  []Field
	// shared by every logger derived through With
	level *levelVar
}

type levelVar struct {
	mu    sync.RWMutex
	level Level
}

func (v *levelVar) get() Level {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.level
}

func (v *levelVar) set(level Level) {
	v.mu.Lock()
	v.level = level
	v.mu.Unlock()
}

// NewLogger returns a Logger that passes entries at or above level to handler.
func NewLogger(level Level, handler Handler) Logger {
	return &logger{
		handler: handler,
		fields:  nil,
		level:   &levelVar{level: level},
	}
}

func (l *logger) Log(level Level, message string, fields ...Field) {
	if l.level.get() < level {
		return
	}

	if len(l.fields) == 0 {
		l.handler.Handle(level, message, fields)
		return
	}

	all := make([]Field, 0, len(l.fields)+len(fields))
	all = append(all, l.fields...)
	all = append(all, fields...)
	l.handler.Handle(level, message, all)
}

// With returns a child logger that prefixes fields to every entry.
// Children share the parent's level.
func (l *logger) With(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &logger{
		handler: l.handler,
		fields:  merged,
		level:   l.level,
	}
}

func (l *logger) SetLevel(level Level) {
	l.level.set(level)
}

type noopLogger struct{}

// Noop returns a Logger that discards everything.
func Noop() Logger {
	return noopLogger{}
}

func (noopLogger) Log(_ Level, _ string, _ ...Field) {}

func (noopLogger) SetLevel(_ Level) {}

func (l noopLogger) With(_ ...Field) Logger {
	return l
}
