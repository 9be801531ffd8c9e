// Package stats contains the pure counter logic for the usage stats document.
package stats

import "time"

// Stats is the persisted usage counters document.
type Stats struct {
	Created       int        `json:"created"`
	Released      int        `json:"released"`
	Resolved      int        `json:"resolved"`
	Dismissed     int        `json:"dismissed"`
	Snoozed       int        `json:"snoozed"`
	Unlocked      int        `json:"unlocked"`
	Deleted       int        `json:"deleted"`
	LastCheckInAt *time.Time `json:"lastCheckInAt,omitempty"`
}

// Kind names a countable lifecycle occurrence.
type Kind string

const (
	KindCreated   Kind = "created"
	KindReleased  Kind = "released"
	KindResolved  Kind = "resolved"
	KindDismissed Kind = "dismissed"
	KindSnoozed   Kind = "snoozed"
	KindUnlocked  Kind = "unlocked"
	KindDeleted   Kind = "deleted"
)

// Record returns s with the counter for k increased by n and the check-in time set to now.
func Record(s Stats, k Kind, n int, now time.Time) Stats {
	switch k {
	case KindCreated:
		s.Created += n
	case KindReleased:
		s.Released += n
	case KindResolved:
		s.Resolved += n
	case KindDismissed:
		s.Dismissed += n
	case KindSnoozed:
		s.Snoozed += n
	case KindUnlocked:
		s.Unlocked += n
	case KindDeleted:
		s.Deleted += n
	}
	s.LastCheckInAt = &now
	return s
}

// ResolutionRate is resolved worries as a fraction of all worries that left
// the locked/unlocked cycle (resolved + dismissed, releases excluded).
func ResolutionRate(s Stats) float64 {
	closed := s.Resolved + s.Dismissed
	if closed == 0 {
		return 0
	}
	return float64(s.Resolved) / float64(closed)
}
