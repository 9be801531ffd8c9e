// Package preferences contains the pure business logic for user settings.
// Guards are pure functions that evaluate preconditions without side effects.
package preferences

import (
	"fmt"
	"time"
)

// Theme is the UI colour scheme preference.
type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

// MaxDelay bounds every user-configurable duration.
const MaxDelay = 365 * 24 * time.Hour

// Preferences is the persisted settings document.
type Preferences struct {
	DefaultUnlockDelay   Duration `json:"defaultUnlockDelay"`
	SnoozeDuration       Duration `json:"snoozeDuration"`
	NotificationsEnabled bool     `json:"notificationsEnabled"`
	OnboardingComplete   bool     `json:"onboardingComplete"`
	Theme                Theme    `json:"theme"`
}

// Defaults returns the settings used when nothing has been stored yet.
func Defaults() Preferences {
	return Preferences{
		DefaultUnlockDelay:   Duration(24 * time.Hour),
		SnoozeDuration:       Duration(time.Hour),
		NotificationsEnabled: true,
		Theme:                ThemeSystem,
	}
}

// Update carries a partial change. Nil means "leave unchanged".
type Update struct {
	DefaultUnlockDelay   *time.Duration
	SnoozeDuration       *time.Duration
	NotificationsEnabled *bool
	OnboardingComplete   *bool
	Theme                *Theme
}

// Apply merges u into p after validating the merged result.
func Apply(p Preferences, u Update) (Preferences, error) {
	next := p
	if u.DefaultUnlockDelay != nil {
		next.DefaultUnlockDelay = Duration(*u.DefaultUnlockDelay)
	}
	if u.SnoozeDuration != nil {
		next.SnoozeDuration = Duration(*u.SnoozeDuration)
	}
	if u.NotificationsEnabled != nil {
		next.NotificationsEnabled = *u.NotificationsEnabled
	}
	if u.OnboardingComplete != nil {
		next.OnboardingComplete = *u.OnboardingComplete
	}
	if u.Theme != nil {
		next.Theme = *u.Theme
	}
	if err := Validate(next); err != nil {
		return p, err
	}
	return next, nil
}

// Validate checks every field of p.
// Rules:
// - Durations must be positive and at most MaxDelay
// - Theme must be system, light or dark
func Validate(p Preferences) error {
	if err := validateDelay("default unlock delay", time.Duration(p.DefaultUnlockDelay)); err != nil {
		return err
	}
	if err := validateDelay("snooze duration", time.Duration(p.SnoozeDuration)); err != nil {
		return err
	}
	switch p.Theme {
	case ThemeSystem, ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("unknown theme %q (want system, light or dark)", p.Theme)
	}
	return nil
}

func validateDelay(name string, d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%s must be positive (got %s)", name, d)
	}
	if d > MaxDelay {
		return fmt.Errorf("%s must be at most %s (got %s)", name, MaxDelay, d)
	}
	return nil
}

// FillDefaults replaces zero values left by older documents with defaults.
func FillDefaults(p Preferences) Preferences {
	d := Defaults()
	if p.DefaultUnlockDelay == 0 {
		p.DefaultUnlockDelay = d.DefaultUnlockDelay
	}
	if p.SnoozeDuration == 0 {
		p.SnoozeDuration = d.SnoozeDuration
	}
	if p.Theme == "" {
		p.Theme = d.Theme
	}
	return p
}
