package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/worrybox/internal/ports/secondary"
)

// NotificationQueue implements secondary.NotificationScheduler and
// secondary.NotificationQueue with SQLite. Pending rows are delivered by the
// notification dispatcher.
type NotificationQueue struct {
	db *sql.DB
}

// NewNotificationQueue creates a new SQLite notification queue.
func NewNotificationQueue(db *sql.DB) *NotificationQueue {
	return &NotificationQueue{db: db}
}

// Schedule stores a pending notification. Scheduling an id again replaces it.
func (q *NotificationQueue) Schedule(ctx context.Context, id int32, fireAt time.Time, payload secondary.NotificationPayload) error {
	var action sql.NullString
	if payload.Action != "" {
		action = sql.NullString{String: payload.Action, Valid: true}
	}

	_, err := q.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO scheduled_notifications (id, worry_id, title, body, action, fire_at, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, 'pending', ?)`,
		id, payload.WorryID, payload.Title, payload.Body, action, fireAt.UnixMilli(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule notification %d: %w", id, err)
	}
	return nil
}

// Cancel marks a pending notification cancelled.
func (q *NotificationQueue) Cancel(ctx context.Context, id int32) error {
	_, err := q.db.ExecContext(ctx,
		"UPDATE scheduled_notifications SET status = 'cancelled' WHERE id = ? AND status = 'pending'",
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to cancel notification %d: %w", id, err)
	}
	return nil
}

const notificationColumns = "id, worry_id, title, body, action, fire_at, status, created_at, delivered_at"

// Due returns pending notifications whose fire time has passed, earliest first.
func (q *NotificationQueue) Due(ctx context.Context, now time.Time, limit int) ([]*secondary.ScheduledNotificationRecord, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+notificationColumns+" FROM scheduled_notifications WHERE status = 'pending' AND fire_at <= ? ORDER BY fire_at, id LIMIT ?",
		now.UnixMilli(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list due notifications: %w", err)
	}
	defer rows.Close()

	var out []*secondary.ScheduledNotificationRecord
	for rows.Next() {
		r, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetByID retrieves a stored notification.
func (q *NotificationQueue) GetByID(ctx context.Context, id int32) (*secondary.ScheduledNotificationRecord, error) {
	row := q.db.QueryRowContext(ctx, "SELECT "+notificationColumns+" FROM scheduled_notifications WHERE id = ?", id)
	r, err := scanNotification(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("notification %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// MarkDelivered records delivery of a pending notification.
func (q *NotificationQueue) MarkDelivered(ctx context.Context, id int32, at time.Time) error {
	res, err := q.db.ExecContext(ctx,
		"UPDATE scheduled_notifications SET status = 'delivered', delivered_at = ? WHERE id = ? AND status = 'pending'",
		at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification %d delivered: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark notification %d delivered: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("notification %d is not pending", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (*secondary.ScheduledNotificationRecord, error) {
	var (
		r           secondary.ScheduledNotificationRecord
		action      sql.NullString
		fireAt      int64
		createdAt   time.Time
		deliveredAt sql.NullTime
	)
	if err := row.Scan(&r.ID, &r.WorryID, &r.Title, &r.Body, &action, &fireAt, &r.Status, &createdAt, &deliveredAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}
	r.Action = action.String
	r.FireAt = time.UnixMilli(fireAt).UTC()
	r.CreatedAt = createdAt
	if deliveredAt.Valid {
		t := deliveredAt.Time
		r.DeliveredAt = &t
	}
	return &r, nil
}

// Ensure NotificationQueue implements the interfaces
var (
	_ secondary.NotificationScheduler = (*NotificationQueue)(nil)
	_ secondary.NotificationQueue     = (*NotificationQueue)(nil)
)

var _ secondary.NotificationLookup = (*NotificationQueue)(nil)
