package primary

import (
	"context"
	"time"

	"github.com/example/worrybox/internal/core/worry"
)

// WorryService defines the primary port for worry lifecycle operations.
// Every returned worry is a copy; mutating it does not affect the store.
type WorryService interface {
	// Load reads the stored collection, reconciles the notification journal
	// and unlocks anything that expired while the process was not running.
	Load(ctx context.Context) error

	// Create records a new locked worry and schedules its unlock notification.
	Create(ctx context.Context, req CreateWorryRequest) (*worry.Worry, error)

	// Release records a worry that is let go immediately.
	Release(ctx context.Context, content string) (*worry.Worry, error)

	// Edit merges the provided fields into an existing worry.
	Edit(ctx context.Context, req EditWorryRequest) (*worry.Worry, error)

	// Resolve closes an unlocked worry with an optional note.
	Resolve(ctx context.Context, id, note string) (*worry.Worry, error)

	// Dismiss closes a locked or unlocked worry without resolution.
	Dismiss(ctx context.Context, id string) (*worry.Worry, error)

	// Snooze pushes the unlock time to now+d and relocks the worry.
	Snooze(ctx context.Context, id string, d time.Duration) (*worry.Worry, error)

	// UnlockNow unlocks a locked worry ahead of its unlock time.
	UnlockNow(ctx context.Context, id string) (*worry.Worry, error)

	// Delete removes a worry. Returns false when the id is unknown.
	Delete(ctx context.Context, id string) (bool, error)

	// CheckAndUnlockExpired unlocks every locked worry whose unlock time has passed.
	CheckAndUnlockExpired(ctx context.Context) ([]*worry.Worry, error)

	// Get retrieves a worry by ID.
	Get(ctx context.Context, id string) (*worry.Worry, error)

	// List returns the worries in a view, ordered by unlock time.
	List(ctx context.Context, view worry.View) ([]*worry.Worry, error)

	// History returns the activity trail of a worry, oldest first.
	History(ctx context.Context, id string) ([]*Activity, error)

	// PruneHistory deletes activity entries older than the given age.
	PruneHistory(ctx context.Context, olderThan time.Duration) (int, error)

	// Views
	Locked(ctx context.Context) []*worry.Worry
	Unlocked(ctx context.Context) []*worry.Worry
	Resolved(ctx context.Context) []*worry.Worry
	Dismissed(ctx context.Context) []*worry.Worry
	Released(ctx context.Context) []*worry.Worry
	All(ctx context.Context) []*worry.Worry
}

// CreateWorryRequest contains parameters for creating a worry.
// A zero UnlockAt means "now + the preferred default delay".
type CreateWorryRequest struct {
	Content  string
	Action   string
	UnlockAt time.Time
	Category string
	Tags     []string
}

// EditWorryRequest contains parameters for editing a worry.
// Nil fields are left unchanged.
type EditWorryRequest struct {
	ID              string
	Content         *string
	Action          *string
	UnlockAt        *time.Time
	Category        *string
	Tags            *[]string
	BestOutcome     *string
	TalkedToSomeone *bool
}

// Activity is one entry of a worry's history.
type Activity struct {
	Action     string
	Source     string
	FromStatus string
	ToStatus   string
	Detail     string
	At         time.Time
}
