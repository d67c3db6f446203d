package unilog

import (
	"context"

	"github.com/pkg/errors"

	"github.com/kart-io/unilog/core"
)

// orErrorDepth is callerDepth plus the orError frame.
const orErrorDepth = callerDepth + 1

// newFailure builds the error returned when a conditional helper fails. The
// message follows the same formatting rules as logging; cause, when set, is
// wrapped so errors.Cause and errors.Is still reach it.
func newFailure(cause error, template string, args ...any) error {
	msg := template
	if formatted, err := core.Format(template, args...); err == nil {
		msg = formatted.Message
	}
	if cause != nil {
		return errors.Wrap(cause, msg)
	}
	return errors.New(msg)
}

func (l Logger) orError(level core.Level, fail bool, cause error, template string, args ...any) error {
	if fail {
		return newFailure(cause, template, args...)
	}
	if cause != nil {
		args = append(args[:len(args):len(args)], cause)
	}
	l.log(context.Background(), orErrorDepth, level, template, args...)
	return nil
}

func (l Logger) orPanic(level core.Level, fail bool, cause error, template string, args ...any) {
	if fail {
		panic(newFailure(cause, template, args...))
	}
	if cause != nil {
		args = append(args[:len(args):len(args)], cause)
	}
	l.log(context.Background(), orErrorDepth, level, template, args...)
}

// TraceOrError returns an error built from template when fail is true, and
// otherwise logs at TRACE with cause attached and returns nil.
func (l Logger) TraceOrError(fail bool, cause error, template string, args ...any) error {
	return l.orError(core.TraceLevel, fail, cause, template, args...)
}

// DebugOrError is TraceOrError at DEBUG.
func (l Logger) DebugOrError(fail bool, cause error, template string, args ...any) error {
	return l.orError(core.DebugLevel, fail, cause, template, args...)
}

// InfoOrError is TraceOrError at INFO.
func (l Logger) InfoOrError(fail bool, cause error, template string, args ...any) error {
	return l.orError(core.InfoLevel, fail, cause, template, args...)
}

// WarnOrError is TraceOrError at WARN.
func (l Logger) WarnOrError(fail bool, cause error, template string, args ...any) error {
	return l.orError(core.WarnLevel, fail, cause, template, args...)
}

// ErrorOrError is TraceOrError at ERROR.
func (l Logger) ErrorOrError(fail bool, cause error, template string, args ...any) error {
	return l.orError(core.ErrorLevel, fail, cause, template, args...)
}

// TraceOrPanic panics with an error built from template when fail is true,
// and otherwise logs at TRACE with cause attached.
func (l Logger) TraceOrPanic(fail bool, cause error, template string, args ...any) {
	l.orPanic(core.TraceLevel, fail, cause, template, args...)
}

// DebugOrPanic is TraceOrPanic at DEBUG.
func (l Logger) DebugOrPanic(fail bool, cause error, template string, args ...any) {
	l.orPanic(core.DebugLevel, fail, cause, template, args...)
}

// InfoOrPanic is TraceOrPanic at INFO.
func (l Logger) InfoOrPanic(fail bool, cause error, template string, args ...any) {
	l.orPanic(core.InfoLevel, fail, cause, template, args...)
}

// WarnOrPanic is TraceOrPanic at WARN.
func (l Logger) WarnOrPanic(fail bool, cause error, template string, args ...any) {
	l.orPanic(core.WarnLevel, fail, cause, template, args...)
}

// ErrorOrPanic is TraceOrPanic at ERROR.
func (l Logger) ErrorOrPanic(fail bool, cause error, template string, args ...any) {
	l.orPanic(core.ErrorLevel, fail, cause, template, args...)
}

// TraceOrError is Logger.TraceOrError on the global Logger.
func TraceOrError(fail bool, cause error, template string, args ...any) error {
	return Global().orError(core.TraceLevel, fail, cause, template, args...)
}

// DebugOrError is Logger.DebugOrError on the global Logger.
func DebugOrError(fail bool, cause error, template string, args ...any) error {
	return Global().orError(core.DebugLevel, fail, cause, template, args...)
}

// InfoOrError is Logger.InfoOrError on the global Logger.
func InfoOrError(fail bool, cause error, template string, args ...any) error {
	return Global().orError(core.InfoLevel, fail, cause, template, args...)
}

// WarnOrError is Logger.WarnOrError on the global Logger.
func WarnOrError(fail bool, cause error, template string, args ...any) error {
	return Global().orError(core.WarnLevel, fail, cause, template, args...)
}

// ErrorOrError is Logger.ErrorOrError on the global Logger.
func ErrorOrError(fail bool, cause error, template string, args ...any) error {
	return Global().orError(core.ErrorLevel, fail, cause, template, args...)
}

// TraceOrPanic is Logger.TraceOrPanic on the global Logger.
func TraceOrPanic(fail bool, cause error, template string, args ...any) {
	Global().orPanic(core.TraceLevel, fail, cause, template, args...)
}

// DebugOrPanic is Logger.DebugOrPanic on the global Logger.
func DebugOrPanic(fail bool, cause error, template string, args ...any) {
	Global().orPanic(core.DebugLevel, fail, cause, template, args...)
}

// InfoOrPanic is Logger.InfoOrPanic on the global Logger.
func InfoOrPanic(fail bool, cause error, template string, args ...any) {
	Global().orPanic(core.InfoLevel, fail, cause, template, args...)
}

// WarnOrPanic is Logger.WarnOrPanic on the global Logger.
func WarnOrPanic(fail bool, cause error, template string, args ...any) {
	Global().orPanic(core.WarnLevel, fail, cause, template, args...)
}

// ErrorOrPanic is Logger.ErrorOrPanic on the global Logger.
func ErrorOrPanic(fail bool, cause error, template string, args ...any) {
	Global().orPanic(core.ErrorLevel, fail, cause, template, args...)
}
