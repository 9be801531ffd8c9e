package secondary

import (
	"context"
	"time"
)

// NotificationPayload is the data delivered back when a notification fires or
// the user acts on it.
type NotificationPayload struct {
	WorryID string
	Title   string
	Body    string
	Action  string // suggested follow-up text shown with the alert
}

// NotificationScheduler defines the secondary port for one-shot local notifications.
type NotificationScheduler interface {
	// Schedule arranges for a notification with the given id to fire at fireAt.
	Schedule(ctx context.Context, id int32, fireAt time.Time, payload NotificationPayload) error

	// Cancel withdraws a pending notification. Cancelling an unknown or
	// already delivered id is not an error.
	Cancel(ctx context.Context, id int32) error
}

// NotificationQueue is implemented by schedulers that hold pending
// notifications themselves and need a dispatcher to deliver them.
type NotificationQueue interface {
	// Due returns pending notifications whose fire time is at or before now,
	// earliest first.
	Due(ctx context.Context, now time.Time, limit int) ([]*ScheduledNotificationRecord, error)

	// MarkDelivered records that a notification has been shown.
	MarkDelivered(ctx context.Context, id int32, at time.Time) error
}

// Scheduled notification statuses.
const (
	NotificationStatusPending   = "pending"
	NotificationStatusDelivered = "delivered"
	NotificationStatusCancelled = "cancelled"
)

// ScheduledNotificationRecord represents a notification as stored by a queueing scheduler.
type ScheduledNotificationRecord struct {
	ID          int32
	WorryID     string
	Title       string
	Body        string
	Action      string
	FireAt      time.Time
	Status      string
	CreatedAt   time.Time
	DeliveredAt *time.Time
}

// NotificationLookup reads a single stored notification by id.
type NotificationLookup interface {
	GetByID(ctx context.Context, id int32) (*ScheduledNotificationRecord, error)
}

// AlertSink defines the secondary port through which due notifications are shown.
type AlertSink interface {
	Alert(ctx context.Context, n *ScheduledNotificationRecord) error
}
