package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/example/worrybox/internal/core/worry"
	"github.com/example/worrybox/internal/ctxutil"
	"github.com/example/worrybox/internal/metrics"
	"github.com/example/worrybox/internal/ports/primary"
)

// NotificationActionServiceImpl implements the NotificationActionService interface.
type NotificationActionServiceImpl struct {
	worries primary.WorryService
	prefs   primary.PreferencesService
	metrics metrics.Recorder
	logger  zerolog.Logger
}

// NewNotificationActionService creates a new NotificationActionService with injected dependencies.
func NewNotificationActionService(worries primary.WorryService, prefs primary.PreferencesService, rec metrics.Recorder, logger zerolog.Logger) *NotificationActionServiceImpl {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &NotificationActionServiceImpl{
		worries: worries,
		prefs:   prefs,
		metrics: rec,
		logger:  logger,
	}
}

// HandleAction applies the user's response to a delivered notification.
//   - done: unlock if still locked, then resolve without a note
//   - snooze: snooze by the preferred snooze duration
//   - open: unlock anything whose time has come
func (s *NotificationActionServiceImpl) HandleAction(ctx context.Context, actionID, worryID string) error {
	if ctxutil.SourceFromContext(ctx) == "" {
		ctx = ctxutil.WithSource(ctx, ctxutil.SourceNotification)
	}

	var err error
	switch actionID {
	case primary.ActionDone:
		err = s.done(ctx, worryID)
	case primary.ActionSnooze:
		err = s.snooze(ctx, worryID)
	case primary.ActionOpen:
		err = s.open(ctx, worryID)
	default:
		return fmt.Errorf("%w: %q", primary.ErrUnknownAction, actionID)
	}

	s.metrics.RecordNotificationAction(actionID)
	if err != nil {
		s.logger.Warn().Err(err).Str("action", actionID).Str("worry_id", worryID).Msg("notification action failed")
		return err
	}
	s.logger.Info().Str("action", actionID).Str("worry_id", worryID).Msg("notification action handled")
	return nil
}

func (s *NotificationActionServiceImpl) done(ctx context.Context, worryID string) error {
	w, err := s.worries.Get(ctx, worryID)
	if err != nil {
		return err
	}
	if w.Status == worry.StatusLocked {
		if _, err := s.worries.UnlockNow(ctx, worryID); err != nil {
			return fmt.Errorf("failed to unlock before resolving: %w", err)
		}
	}
	_, err = s.worries.Resolve(ctx, worryID, "")
	return err
}

func (s *NotificationActionServiceImpl) snooze(ctx context.Context, worryID string) error {
	p, err := s.prefs.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read snooze duration: %w", err)
	}
	_, err = s.worries.Snooze(ctx, worryID, p.SnoozeDuration.Std())
	return err
}

func (s *NotificationActionServiceImpl) open(ctx context.Context, worryID string) error {
	if _, err := s.worries.Get(ctx, worryID); err != nil {
		return err
	}
	_, err := s.worries.CheckAndUnlockExpired(ctx)
	return err
}

// Ensure NotificationActionServiceImpl implements the interface
var _ primary.NotificationActionService = (*NotificationActionServiceImpl)(nil)
