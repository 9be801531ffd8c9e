package primary

import (
	"context"
	"errors"
)

// Notification action identifiers delivered by the notification host.
const (
	ActionDone   = "done"
	ActionSnooze = "snooze"
	ActionOpen   = "open"
)

// ErrUnknownAction is returned for an action id the application does not handle.
var ErrUnknownAction = errors.New("unknown notification action")

// NotificationActionService defines the primary port for inbound notification actions.
type NotificationActionService interface {
	// HandleAction applies the user's response to a delivered notification.
	HandleAction(ctx context.Context, actionID, worryID string) error
}
