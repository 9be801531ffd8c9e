package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/example/worrybox/internal/core/effects"
	"github.com/example/worrybox/internal/core/preferences"
	"github.com/example/worrybox/internal/ports/primary"
	"github.com/example/worrybox/internal/ports/secondary"
)

// PreferencesServiceImpl implements the PreferencesService interface.
type PreferencesServiceImpl struct {
	mu       sync.Mutex
	store    secondary.KeyValueStore
	executor EffectExecutor
	logger   zerolog.Logger
}

// NewPreferencesService creates a new PreferencesService with injected dependencies.
func NewPreferencesService(store secondary.KeyValueStore, logger zerolog.Logger) *PreferencesServiceImpl {
	return &PreferencesServiceImpl{
		store:    store,
		executor: NewEffectExecutor(store, nil, logger),
		logger:   logger,
	}
}

// Get returns the stored preferences, or defaults when none are stored.
func (s *PreferencesServiceImpl) Get(ctx context.Context) (preferences.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

func (s *PreferencesServiceImpl) read(ctx context.Context) (preferences.Preferences, error) {
	p := preferences.Defaults()
	data, ok, err := s.store.Get(ctx, secondary.KeyPreferences)
	if err != nil {
		return p, &PersistenceError{Op: "get", Key: secondary.KeyPreferences, Err: err}
	}
	if !ok {
		return p, nil
	}
	var stored preferences.Preferences
	if err := decodeJSON(data, &stored); err != nil {
		s.logger.Warn().Err(err).Msg("stored preferences are unreadable, using defaults")
		return p, nil
	}
	return preferences.FillDefaults(stored), nil
}

// Update validates and stores a partial change.
func (s *PreferencesServiceImpl) Update(ctx context.Context, u preferences.Update) (preferences.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(ctx)
	if err != nil {
		return current, err
	}
	next, err := preferences.Apply(current, u)
	if err != nil {
		return current, err
	}
	if err := s.write(ctx, next); err != nil {
		return current, err
	}
	s.logger.Info().Msg("preferences updated")
	return next, nil
}

// Reset restores and stores the defaults.
func (s *PreferencesServiceImpl) Reset(ctx context.Context) (preferences.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := preferences.Defaults()
	if err := s.write(ctx, d); err != nil {
		return d, err
	}
	return d, nil
}

func (s *PreferencesServiceImpl) write(ctx context.Context, p preferences.Preferences) error {
	return s.executor.Execute(ctx, []effects.Effect{effects.PersistEffect{Key: secondary.KeyPreferences, Data: p}})
}

// Ensure PreferencesServiceImpl implements the interface
var _ primary.PreferencesService = (*PreferencesServiceImpl)(nil)
