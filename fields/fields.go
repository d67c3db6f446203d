package fields

// Standard field names used across all backends.
// This ensures consistent field naming regardless of the engine behind a logger.
const (
	// Core logging fields
	TimestampField = "timestamp"
	LevelField     = "level"
	MessageField   = "message"
	CallerField    = "caller"

	// ComponentField carries the id of the calling component
	ComponentField = "component"

	// Error fields
	ErrorField      = "error"
	StacktraceField = "stacktrace"
)

// aliases maps the names engines use natively to the standard names.
var aliases = map[string]string{
	"ts":        TimestampField,
	"time":      TimestampField,
	"timestamp": TimestampField,
	"level":     LevelField,
	"msg":       MessageField,
	"message":   MessageField,
	"caller":    CallerField,
	"source":    CallerField,
	"logger":    ComponentField,
	"component": ComponentField,
	"err":       ErrorField,
	"error":     ErrorField,
}

// Standard returns the standard name for a native field name, or name itself
// when there is no mapping.
func Standard(name string) string {
	if mapped, ok := aliases[name]; ok {
		return mapped
	}
	return name
}
