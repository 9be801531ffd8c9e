// Package worry contains the pure business logic for the worry lifecycle.
// This is part of the Functional Core - no I/O, only pure functions.
package worry

// Event is something that happens to an existing worry.
type Event string

const (
	EventUnlock     Event = "unlock"
	EventResolve    Event = "resolve"
	EventDismiss    Event = "dismiss"
	EventSnooze     Event = "snooze"
	EventReschedule Event = "reschedule" // edit of unlockAt
	EventEdit       Event = "edit"       // edit of content/action
	EventReflect    Event = "reflect"    // edit of reflection metadata
)

// transitions is the complete lifecycle table. A (status, event) pair that is
// absent is rejected. Dismiss from dismissed is handled as an idempotent no-op
// before the table is consulted.
var transitions = map[Status]map[Event]Status{
	StatusLocked: {
		EventUnlock:     StatusUnlocked,
		EventDismiss:    StatusDismissed,
		EventSnooze:     StatusLocked,
		EventReschedule: StatusLocked,
		EventEdit:       StatusLocked,
		EventReflect:    StatusLocked,
	},
	StatusUnlocked: {
		EventResolve: StatusResolved,
		EventDismiss: StatusDismissed,
		EventSnooze:  StatusLocked,
		EventEdit:    StatusUnlocked,
		EventReflect: StatusUnlocked,
	},
	StatusResolved: {
		EventReflect: StatusResolved,
	},
	StatusDismissed: {
		EventReflect: StatusDismissed,
	},
}

// NextStatus returns the status reached by applying event to from.
// The boolean is false when the transition is not part of the lifecycle.
func NextStatus(from Status, event Event) (Status, bool) {
	next, ok := transitions[from][event]
	return next, ok
}

// InitialStatus returns the status of a newly created worry.
func InitialStatus() Status {
	return StatusLocked
}

// ReleasedStatus returns the status of a worry created through release.
func ReleasedStatus() Status {
	return StatusDismissed
}
