// Package unilog is a logging facade whose backend is chosen at runtime.
//
// Callers log through a Logger bound to a backend identifier. Backends are
// registered in a Registry under case-insensitive ids; the built-in ids are
// "console" (the default, always available), "slog", "zap", "zerolog" and
// "logrus". A backend is checked lazily on first use, and each calling package
// gets its own cached backend handle:
//
//	log := unilog.MustOf("zap")
//	log.Info("listening on %s", addr)
//	log.Error("request %s failed", id, err) // trailing error becomes the cause
//
// The package-level functions log through the global Logger, which starts on
// the console backend and can be switched with SetGlobal or Init.
package unilog
