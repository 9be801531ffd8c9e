// Package worry contains the pure business logic for the worry lifecycle.
// This is part of the Functional Core - no I/O, only pure functions.
package worry

import (
	"errors"
	"time"
)

// Status represents the lifecycle state of a worry.
type Status string

const (
	StatusLocked    Status = "locked"
	StatusUnlocked  Status = "unlocked"
	StatusResolved  Status = "resolved"
	StatusDismissed Status = "dismissed"
)

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusLocked, StatusUnlocked, StatusResolved, StatusDismissed:
		return true
	}
	return false
}

// Terminal reports whether no further transitions leave s.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusDismissed
}

// NoNotification is the NotificationID of a worry with no live notification.
const NoNotification int32 = 0

// Length limits for free-text fields, counted in runes.
const (
	MaxContentLength = 500
	MaxActionLength  = 500
	MaxNoteLength    = 1000
)

var (
	// ErrNotFound is returned when an operation references an unknown worry id.
	ErrNotFound = errors.New("worry not found")
	// ErrInvalidTransition is returned when an event is not allowed from the current status.
	ErrInvalidTransition = errors.New("invalid worry transition")
	// ErrInvalidContent is returned when content or action text fails validation.
	ErrInvalidContent = errors.New("invalid worry content")
)

// Worry is the journaling entity: a recorded concern and its lifecycle.
// JSON field names are the persisted document format.
type Worry struct {
	ID              string     `json:"id"`
	Content         string     `json:"content"`
	Action          string     `json:"action,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UnlockAt        time.Time  `json:"unlockAt"`
	UnlockedAt      *time.Time `json:"unlockedAt,omitempty"`
	ResolvedAt      *time.Time `json:"resolvedAt,omitempty"`
	ResolutionNote  string     `json:"resolutionNote,omitempty"`
	DismissedAt     *time.Time `json:"dismissedAt,omitempty"`
	ReleasedAt      *time.Time `json:"releasedAt,omitempty"`
	Status          Status     `json:"status"`
	NotificationID  int32      `json:"notificationId"`
	SnoozeCount     int        `json:"snoozeCount,omitempty"`
	Category        string     `json:"category,omitempty"`
	Tags            []string   `json:"tags,omitempty"`
	BestOutcome     string     `json:"bestOutcome,omitempty"`
	TalkedToSomeone *bool      `json:"talkedToSomeone,omitempty"`
}

// IsReleased reports whether the worry was created through release.
func (w Worry) IsReleased() bool {
	return w.ReleasedAt != nil
}

// HasLiveNotification reports whether a notification is currently scheduled for the worry.
func (w Worry) HasLiveNotification() bool {
	return IsValidNotificationID(w.NotificationID)
}

// Clone returns a deep copy so callers never share pointer fields with the store.
func (w Worry) Clone() Worry {
	c := w
	c.UnlockedAt = cloneTime(w.UnlockedAt)
	c.ResolvedAt = cloneTime(w.ResolvedAt)
	c.DismissedAt = cloneTime(w.DismissedAt)
	c.ReleasedAt = cloneTime(w.ReleasedAt)
	if w.Tags != nil {
		c.Tags = append([]string(nil), w.Tags...)
	}
	if w.TalkedToSomeone != nil {
		v := *w.TalkedToSomeone
		c.TalkedToSomeone = &v
	}
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
