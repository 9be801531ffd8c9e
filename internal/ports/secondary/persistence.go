// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "context"

// Document keys used with KeyValueStore. Each key holds one JSON document
// that is rewritten in full on every save.
const (
	KeyWorries             = "worries"
	KeyPreferences         = "preferences"
	KeyStats               = "stats"
	KeyNotificationIntents = "notification_intents"
)

// KeyValueStore defines the secondary port for durable document storage.
// Values are opaque serialized documents; the store never inspects them.
type KeyValueStore interface {
	// Get returns the value stored under key. The boolean is false when the
	// key has never been written or was removed.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// NotificationIntentRecord is one journal entry: a notification that was
// handed to the scheduler but may not yet be reflected in the stored worries.
type NotificationIntentRecord struct {
	NotificationID int32  `json:"notificationId"`
	WorryID        string `json:"worryId"`
	FireAt         string `json:"fireAt"`
}
