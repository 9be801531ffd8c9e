// Package effects defines effect types as data structures representing I/O operations.
// This is the foundation of the Functional Core / Imperative Shell pattern.
// Effects are pure data - they describe what should happen, not how.
package effects

import "time"

// Effect is the base interface for all effects.
// Effects represent I/O operations as data that can be interpreted by the shell.
type Effect interface {
	// EffectType returns a string identifier for the effect type.
	EffectType() string
}

// Notification operations.
const (
	NotificationSchedule = "schedule"
	NotificationCancel   = "cancel"
)

// NotificationEffect represents a call into the notification scheduler.
type NotificationEffect struct {
	Operation      string // "schedule" or "cancel"
	NotificationID int32
	WorryID        string
	FireAt         time.Time // schedule only
	Body           string    // worry content shown with the alert, schedule only
	Action         string    // optional payload action, schedule only
}

func (e NotificationEffect) EffectType() string { return "notification" }

// PersistEffect represents a full rewrite of one key-value document.
type PersistEffect struct {
	Key  string // e.g. "worries", "preferences", "stats"
	Data any    // Marshalled to JSON by the shell
}

func (e PersistEffect) EffectType() string { return "persist" }
