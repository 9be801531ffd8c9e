package secondary

import (
	"context"
	"time"
)

// ActivityLog defines the secondary port for the per-worry history trail.
type ActivityLog interface {
	// Append records one lifecycle change.
	Append(ctx context.Context, entry *ActivityRecord) error

	// ListForWorry returns the history of one worry, oldest first.
	ListForWorry(ctx context.Context, worryID string) ([]*ActivityRecord, error)

	// Prune deletes entries recorded before the cutoff and returns how many were removed.
	Prune(ctx context.Context, before time.Time) (int, error)
}

// ActivityRecord represents one history entry as stored in persistence.
type ActivityRecord struct {
	ID         int64
	WorryID    string
	Action     string // create, release, unlock, resolve, dismiss, snooze, edit, delete
	Source     string // cli, http, notification, dispatcher
	FromStatus string
	ToStatus   string
	Detail     string
	CreatedAt  time.Time
}
