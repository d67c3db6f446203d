package core

import (
	"context"
	"sync/atomic"
)

// loggingEnabled is the process-wide kill switch checked on every call.
var loggingEnabled atomic.Bool

func init() {
	loggingEnabled.Store(true)
}

// Open turns logging on for every registry and backend.
func Open() { loggingEnabled.Store(true) }

// Close turns logging off; no entry reaches any backend until Open is called.
func Close() { loggingEnabled.Store(false) }

// IsOpen reports whether logging is on.
func IsOpen() bool { return loggingEnabled.Load() }

type prefixKey struct{}

// WithPrefix returns a context whose log messages are prefixed with prefix.
func WithPrefix(ctx context.Context, prefix string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, prefixKey{}, prefix)
}

// ClearPrefix returns a context that carries no message prefix.
func ClearPrefix(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	if PrefixFrom(ctx) == "" {
		return ctx
	}
	return context.WithValue(ctx, prefixKey{}, "")
}

// PrefixFrom returns the message prefix carried by ctx, if any.
func PrefixFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	prefix, _ := ctx.Value(prefixKey{}).(string)
	return prefix
}
