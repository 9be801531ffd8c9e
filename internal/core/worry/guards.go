// Package worry contains the pure business logic for the worry lifecycle.
// Guards are pure functions that evaluate preconditions without side effects.
package worry

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
	Kind    error  // Sentinel the reason wraps (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
// The returned error wraps Kind so callers can match it with errors.Is.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	if r.Kind == nil {
		return fmt.Errorf("%s", r.Reason)
	}
	return fmt.Errorf("%w: %s", r.Kind, r.Reason)
}

func allow() GuardResult { return GuardResult{Allowed: true} }

func deny(kind error, format string, args ...any) GuardResult {
	return GuardResult{Allowed: false, Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// ContentContext provides the free-text fields checked on create, release and edit.
type ContentContext struct {
	Content string
	Action  string
}

// CreateContext provides context for worry creation guards.
type CreateContext struct {
	ContentContext
	UnlockAt time.Time
}

// TransitionContext provides context for status transition guards.
type TransitionContext struct {
	WorryID string
	Status  Status
	Event   Event
}

// AutoUnlockContext provides context for the time-based unlock guard.
type AutoUnlockContext struct {
	Status   Status
	UnlockAt time.Time
	Now      time.Time
}

// SnoozeContext provides context for snooze guards.
type SnoozeContext struct {
	TransitionContext
	Duration time.Duration
}

// CanUseContent evaluates whether content and action text are acceptable.
// Rules:
// - Content must be non-empty after trimming
// - Content and action must fit their length limits
func CanUseContent(ctx ContentContext) GuardResult {
	content := strings.TrimSpace(ctx.Content)
	if content == "" {
		return deny(ErrInvalidContent, "content must not be empty")
	}
	if n := utf8.RuneCountInString(content); n > MaxContentLength {
		return deny(ErrInvalidContent, "content is %d characters, limit is %d", n, MaxContentLength)
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(ctx.Action)); n > MaxActionLength {
		return deny(ErrInvalidContent, "action is %d characters, limit is %d", n, MaxActionLength)
	}
	return allow()
}

// CanCreate evaluates whether a locked worry can be created.
// Rules:
// - Content rules from CanUseContent
// - UnlockAt must be set
func CanCreate(ctx CreateContext) GuardResult {
	if r := CanUseContent(ctx.ContentContext); !r.Allowed {
		return r
	}
	if ctx.UnlockAt.IsZero() {
		return deny(ErrInvalidContent, "unlock time must be set")
	}
	return allow()
}

// CanRelease evaluates whether a worry can be released.
func CanRelease(ctx ContentContext) GuardResult {
	return CanUseContent(ContentContext{Content: ctx.Content})
}

// CanApply evaluates whether event may fire from the worry's current status.
func CanApply(ctx TransitionContext) GuardResult {
	if !ctx.Status.Valid() {
		return deny(ErrInvalidTransition, "worry %s has unknown status %q", ctx.WorryID, ctx.Status)
	}
	if _, ok := NextStatus(ctx.Status, ctx.Event); !ok {
		return deny(ErrInvalidTransition, "cannot %s worry %s (current status: %s)", ctx.Event, ctx.WorryID, ctx.Status)
	}
	return allow()
}

// CanAutoUnlock evaluates whether a worry is due for the time-based unlock.
// Rules:
// - Status must be locked
// - UnlockAt must not be after now
func CanAutoUnlock(ctx AutoUnlockContext) GuardResult {
	if ctx.Status != StatusLocked {
		return deny(ErrInvalidTransition, "only locked worries unlock (current status: %s)", ctx.Status)
	}
	if ctx.UnlockAt.After(ctx.Now) {
		return deny(ErrInvalidTransition, "unlock time %s has not been reached", ctx.UnlockAt.Format(time.RFC3339))
	}
	return allow()
}

// CanSnooze evaluates whether a worry can be snoozed.
// Rules:
// - Status must allow snooze (locked or unlocked)
// - Duration must be positive
func CanSnooze(ctx SnoozeContext) GuardResult {
	ctx.Event = EventSnooze
	if r := CanApply(ctx.TransitionContext); !r.Allowed {
		return r
	}
	if ctx.Duration <= 0 {
		return deny(ErrInvalidTransition, "snooze duration must be positive (got %s)", ctx.Duration)
	}
	return allow()
}

// IsIdempotentDismiss reports whether a dismiss on a worry in status is a no-op.
func IsIdempotentDismiss(status Status) bool {
	return status == StatusDismissed
}
