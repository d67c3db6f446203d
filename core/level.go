package core

import "strings"

// Level represents the logging level.
type Level int8

const (
	// TraceLevel logs are the most detailed diagnostic output.
	TraceLevel Level = iota - 2
	// DebugLevel logs are typically voluminous, and are usually disabled in production.
	DebugLevel
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs are more important than Info, but don't need individual human review.
	WarnLevel
	// ErrorLevel logs are high-priority. If an application is running smoothly,
	// it shouldn't generate any error-level logs.
	ErrorLevel
)

// Levels lists every level from least to most severe.
var Levels = []Level{TraceLevel, DebugLevel, InfoLevel, WarnLevel, ErrorLevel}

// String returns a lower-case ASCII representation of the log level.
func (l Level) String() string {
	switch l {
	case TraceLevel:
		return "trace"
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "unknown"
	}
}

// CapitalString returns an all-caps ASCII representation of the log level.
func (l Level) CapitalString() string {
	return strings.ToUpper(l.String())
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= TraceLevel && l <= ErrorLevel
}

// ParseLevel parses a level based on the lower-case or all-caps ASCII
// representation of the log level. If the provided ASCII representation
// is invalid an error is returned.
func ParseLevel(text string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(text)) {
	case "TRACE":
		return TraceLevel, nil
	case "DEBUG":
		return DebugLevel, nil
	case "INFO":
		return InfoLevel, nil
	case "WARN", "WARNING":
		return WarnLevel, nil
	case "ERROR":
		return ErrorLevel, nil
	default:
		return InfoLevel, &ParseLevelError{text}
	}
}

// ParseLevelError is returned when parsing an invalid level string.
type ParseLevelError struct {
	text string
}

func (e *ParseLevelError) Error() string {
	return "invalid level: " + e.text
}
