// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/example/worrybox/internal/core/effects"
	"github.com/example/worrybox/internal/ports/secondary"
)

// NotificationTitle is the title of every unlock notification.
const NotificationTitle = "A worry is ready to revisit"

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place I/O happens.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// DefaultEffectExecutor implements EffectExecutor against the two ports.
type DefaultEffectExecutor struct {
	store    secondary.KeyValueStore
	notifier secondary.NotificationScheduler
	logger   zerolog.Logger
}

// NewEffectExecutor creates a new DefaultEffectExecutor.
func NewEffectExecutor(store secondary.KeyValueStore, notifier secondary.NotificationScheduler, logger zerolog.Logger) *DefaultEffectExecutor {
	return &DefaultEffectExecutor{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Execute processes a slice of effects, executing each in sequence.
// It stops at the first failure. Port failures are returned as
// *SchedulingError or *PersistenceError.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	for _, eff := range effs {
		e.logger.Debug().Str("effect", eff.EffectType()).Msg("executing effect")
		if err := e.executeOne(ctx, eff); err != nil {
			return fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect) error {
	switch typed := eff.(type) {
	case effects.NotificationEffect:
		return e.executeNotification(ctx, typed)
	case effects.PersistEffect:
		return e.executePersist(ctx, typed)
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) executeNotification(ctx context.Context, eff effects.NotificationEffect) error {
	var err error
	switch eff.Operation {
	case effects.NotificationSchedule:
		err = e.notifier.Schedule(ctx, eff.NotificationID, eff.FireAt, secondary.NotificationPayload{
			WorryID: eff.WorryID,
			Title:   NotificationTitle,
			Body:    eff.Body,
			Action:  eff.Action,
		})
	case effects.NotificationCancel:
		err = e.notifier.Cancel(ctx, eff.NotificationID)
	default:
		return fmt.Errorf("unknown notification operation: %s", eff.Operation)
	}
	if err != nil {
		return &SchedulingError{Op: eff.Operation, NotificationID: eff.NotificationID, WorryID: eff.WorryID, Err: err}
	}
	return nil
}

func (e *DefaultEffectExecutor) executePersist(ctx context.Context, eff effects.PersistEffect) error {
	if eff.Data == nil {
		if err := e.store.Remove(ctx, eff.Key); err != nil {
			return &PersistenceError{Op: "remove", Key: eff.Key, Err: err}
		}
		return nil
	}
	data, err := json.Marshal(eff.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", eff.Key, err)
	}
	if err := e.store.Set(ctx, eff.Key, data); err != nil {
		return &PersistenceError{Op: "set", Key: eff.Key, Err: err}
	}
	return nil
}
