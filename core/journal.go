package core

import (
	"context"
	"fmt"
	"time"

	"github.com/kart-io/unilog/errors"
)

// Journal is a backend-bound handle for one calling component. Journals are
// created and cached by their Factory and never change after creation.
type Journal struct {
	factory   *Factory
	handle    any
	component string
}

// Factory returns the owning factory.
func (j *Journal) Factory() *Factory { return j.factory }

// Handle returns the backend-native logger.
func (j *Journal) Handle() any { return j.handle }

// Component returns the component id the journal is bound to.
func (j *Journal) Component() string { return j.component }

// Enabled reports whether level would be written. It never fails: backend
// errors are reported on the diagnostic stream and read as false.
func (j *Journal) Enabled(level Level) bool {
	if !IsOpen() {
		return false
	}
	ok, err := j.factory.enabled(j.handle, level)
	if err != nil {
		j.factory.report(errors.NewError(errors.BackendInvocationFailure, j.factory.name,
			fmt.Sprintf("enabled check for %s failed on %q", level, j.component), err))
		return false
	}
	return ok
}

// Log formats and writes one entry attributed to caller. A trailing error in
// args is carried as the entry's cause. Formatting and backend failures are
// reported on the diagnostic stream and the entry is dropped.
func (j *Journal) Log(ctx context.Context, caller Frame, level Level, template string, args ...any) {
	if !IsOpen() {
		return
	}

	formatted, err := Format(template, args...)
	if err != nil {
		j.drop(level, err)
		return
	}

	msg := formatted.Message
	if prefix := PrefixFrom(ctx); prefix != "" {
		msg = prefix + msg
	}

	entry := &Entry{
		Time:      time.Now(),
		Level:     level,
		Component: j.component,
		Caller:    caller,
		Message:   msg,
		Cause:     formatted.Cause,
	}
	if err := j.factory.emit(j.handle, entry); err != nil {
		j.drop(level, errors.NewError(errors.BackendInvocationFailure, j.factory.name,
			fmt.Sprintf("emit %s entry for %q failed", level, j.component), err))
		return
	}
	j.factory.metrics.Emitted(level.String())
}

func (j *Journal) drop(level Level, err error) {
	le, ok := err.(*errors.LoggerError)
	if !ok {
		le = errors.NewError(errors.BackendInvocationFailure, j.factory.name, "entry dropped", err)
	}
	if le.Type == errors.FormattingFailure {
		le.Component = j.factory.name
	}
	j.factory.metrics.Dropped(level.String(), le.Type.String())
	j.factory.report(le)
}

func (j *Journal) String() string {
	return "Journal: " + j.factory.name + "/" + j.component
}
