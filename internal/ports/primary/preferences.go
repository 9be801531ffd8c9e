package primary

import (
	"context"

	"github.com/example/worrybox/internal/core/preferences"
)

// PreferencesService defines the primary port for user settings.
type PreferencesService interface {
	// Get returns the stored preferences, or defaults when none are stored.
	Get(ctx context.Context) (preferences.Preferences, error)

	// Update validates and stores a partial change.
	Update(ctx context.Context, u preferences.Update) (preferences.Preferences, error)

	// Reset restores and stores the defaults.
	Reset(ctx context.Context) (preferences.Preferences, error)
}
