// Package chlog wires the ambient structured-logging convention shared by
// the dispatch and pool packages: a thin wrapper around logiface, backed by
// stumpy's JSON writer, whose zero value is always a safe no-op.
package chlog

import (
	"io"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is a nil-safe structured logger. The zero value discards
// everything; use New to get one backed by stumpy.
type Logger struct {
	l *logiface.Logger[*stumpy.Event]
}

// New builds a Logger writing newline-delimited JSON to w. A nil w defaults
// to os.Stderr, matching stumpy's own default.
func New(w io.Writer) Logger {
	var opts []stumpy.Option
	if w != nil {
		opts = append(opts, stumpy.WithWriter(w))
	}
	return Logger{l: stumpy.L.New(stumpy.WithStumpy(opts...))}
}

func (g Logger) enabled() bool { return g.l != nil }

// Event is a single in-progress log record. An Event with a nil builder
// discards every field written to it, so call sites never need to guard on
// Logger.enabled.
type Event struct {
	b *logiface.Builder[*stumpy.Event]
}

// Str attaches a string field.
func (e Event) Str(key, val string) Event {
	if e.b != nil {
		e.b = e.b.Str(key, val)
	}
	return e
}

// Err attaches an error field.
func (e Event) Err(err error) Event {
	if e.b != nil {
		e.b = e.b.Err(err)
	}
	return e
}

// Dur attaches a duration field.
func (e Event) Dur(key string, d time.Duration) Event {
	if e.b != nil {
		e.b = e.b.Dur(key, d)
	}
	return e
}

// Int attaches an int field.
func (e Event) Int(key string, val int) Event {
	if e.b != nil {
		e.b = e.b.Int(key, val)
	}
	return e
}

// Log emits the event with msg, discarding it entirely if the builder is
// nil (disabled level) or the Logger is the zero value.
func (e Event) Log(msg string) {
	if e.b != nil {
		e.b.Log(msg)
	}
}

func (g Logger) build(level logiface.Level) Event {
	if !g.enabled() {
		return Event{}
	}
	return Event{b: g.l.Build(level)}
}

// Debug starts a debug-level event.
func (g Logger) Debug() Event { return g.build(logiface.LevelDebug) }

// Info starts an informational-level event.
func (g Logger) Info() Event { return g.build(logiface.LevelInformational) }

// Warning starts a warning-level event.
func (g Logger) Warning() Event { return g.build(logiface.LevelWarning) }

// Err starts an error-level event.
func (g Logger) Err() Event { return g.build(logiface.LevelError) }
