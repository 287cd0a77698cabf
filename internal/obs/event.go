// Package obs carries acquisition and session diagnostics as structured
// events, so callers can log or count them without the fetch chain knowing
// which mechanism is in use.
package obs

import (
	"time"

	"github.com/google/uuid"
)

// Kind identifies what happened.
type Kind string

const (
	AttemptStarted  Kind = "attempt_started"
	TierSucceeded   Kind = "tier_succeeded"
	TierFailed      Kind = "tier_failed"
	TierSkipped     Kind = "tier_skipped"
	FellBack        Kind = "fell_back"
	StateChanged    Kind = "state_changed"
	RefreshRejected Kind = "refresh_rejected"
)

// Event is one diagnostic occurrence. Fields that do not apply are zero.
type Event struct {
	Kind      Kind
	AttemptID string
	Tier      string
	State     string
	Records   int
	Duration  time.Duration
	Err       error
	At        time.Time
}

// Hook receives events. Implementations must be safe for concurrent use and
// must not block.
type Hook interface {
	Emit(Event)
}

// HookFunc adapts a function to Hook.
type HookFunc func(Event)

func (f HookFunc) Emit(e Event) { f(e) }

// Nop discards events.
var Nop Hook = HookFunc(func(Event) {})

type multi []Hook

func (m multi) Emit(e Event) {
	for _, h := range m {
		h.Emit(e)
	}
}

// Multi fans an event out to every non-nil hook.
func Multi(hooks ...Hook) Hook {
	out := make(multi, 0, len(hooks))
	for _, h := range hooks {
		if h != nil {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return Nop
	}
	return out
}

// NewAttemptID returns an id correlating the events of one resolution attempt.
func NewAttemptID() string { return uuid.NewString() }
