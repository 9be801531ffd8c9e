package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/worrybox/internal/ports/secondary"
)

// ActivityLog implements secondary.ActivityLog with SQLite.
type ActivityLog struct {
	db *sql.DB
}

// NewActivityLog creates a new SQLite activity log.
func NewActivityLog(db *sql.DB) *ActivityLog {
	return &ActivityLog{db: db}
}

// Append records one history entry and sets its ID.
func (l *ActivityLog) Append(ctx context.Context, entry *secondary.ActivityRecord) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := l.db.ExecContext(ctx,
		"INSERT INTO worry_activity (worry_id, action, source, from_status, to_status, detail, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		entry.WorryID, entry.Action, nullString(entry.Source), nullString(entry.FromStatus), nullString(entry.ToStatus), nullString(entry.Detail), createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// ListForWorry returns a worry's history, oldest first.
func (l *ActivityLog) ListForWorry(ctx context.Context, worryID string) ([]*secondary.ActivityRecord, error) {
	rows, err := l.db.QueryContext(ctx,
		"SELECT id, worry_id, action, source, from_status, to_status, detail, created_at FROM worry_activity WHERE worry_id = ? ORDER BY id",
		worryID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var out []*secondary.ActivityRecord
	for rows.Next() {
		var (
			r                                secondary.ActivityRecord
			source, fromStatus, toStatus, dt sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.WorryID, &r.Action, &source, &fromStatus, &toStatus, &dt, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		r.Source = source.String
		r.FromStatus = fromStatus.String
		r.ToStatus = toStatus.String
		r.Detail = dt.String
		out = append(out, &r)
	}
	return out, rows.Err()
}

// Prune deletes entries recorded before the cutoff.
func (l *ActivityLog) Prune(ctx context.Context, before time.Time) (int, error) {
	result, err := l.db.ExecContext(ctx, "DELETE FROM worry_activity WHERE created_at < ?", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune activity: %w", err)
	}

	count, _ := result.RowsAffected()
	return int(count), nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// Ensure ActivityLog implements the interface
var _ secondary.ActivityLog = (*ActivityLog)(nil)
