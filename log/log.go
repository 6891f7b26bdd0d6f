// Package log is a small leveled, structured logger.
//
// Levels follow syslog severities, lower is more severe. A Logger filters by
// level and hands every accepted entry to a Handler together with its fields.
package log

import "strings"

// Handler writes a single accepted log entry.
type Handler interface {
	Handle(level Level, message string, fields []Field)
}

// Logger logs messages at a given level with optional fields.
type Logger interface {
	Log(level Level, message string, fields ...Field)
	With(fields ...Field) Logger
	SetLevel(level Level)
}

const (
	// LevelEmergency the system is unusable.
	LevelEmergency Level = iota
	// LevelAlert action must be taken immediately.
	LevelAlert
	// LevelCritical a component failed in a way that can stop the process.
	LevelCritical
	// LevelError an operation failed but the process keeps running.
	LevelError
	// LevelWarning something unexpected that may turn into a problem,
	// a lagging consumer for example.
	LevelWarning
	// LevelNotice significant but normal events such as startup and shutdown.
	LevelNotice
	// LevelInfo general operational messages.
	LevelInfo
	// LevelDebug internal state useful while debugging.
	LevelDebug
)

// Level is the severity of a log entry.
type Level uint8

func (l Level) String() string {
	switch l {
	case LevelEmergency:
		return "EMERGENCY"
	case LevelAlert:
		return "ALERT"
	case LevelCritical:
		return "CRITICAL"
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARNING"
	case LevelNotice:
		return "NOTICE"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "INFO"
	}
}

// LevelFromString parses a level name case-insensitively.
// Unknown names map to LevelInfo.
func LevelFromString(level string) Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "EMERGENCY":
		return LevelEmergency
	case "ALERT":
		return LevelAlert
	case "CRITICAL":
		return LevelCritical
	case "ERROR":
		return LevelError
	case "WARNING", "WARN":
		return LevelWarning
	case "NOTICE":
		return LevelNotice
	case "INFO":
		return LevelInfo
	case "DEBUG":
		return LevelDebug
	default:
		return LevelInfo
	}
}
