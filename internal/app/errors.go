package app

import "fmt"

// SchedulingError reports a Notification Port failure.
type SchedulingError struct {
	Op             string // "schedule" or "cancel"
	NotificationID int32
	WorryID        string
	Err            error
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("failed to %s notification %d for worry %s: %v", e.Op, e.NotificationID, e.WorryID, e.Err)
}

func (e *SchedulingError) Unwrap() error { return e.Err }

// PersistenceError reports a Persistence Port failure.
type PersistenceError struct {
	Op  string // "get", "set" or "remove"
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
