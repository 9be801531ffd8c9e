package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/example/worrybox/internal/ctxutil"
	"github.com/example/worrybox/internal/metrics"
	"github.com/example/worrybox/internal/ports/primary"
	"github.com/example/worrybox/internal/ports/secondary"
)

// Dispatcher defaults.
const (
	DefaultDispatchInterval = 30 * time.Second
	DefaultDispatchBatch    = 50
)

// NotificationDispatcher delivers due notifications on hosts without an OS
// alarm service and runs the periodic expiry check.
type NotificationDispatcher struct {
	queue    secondary.NotificationQueue
	sink     secondary.AlertSink
	worries  primary.WorryService
	prefs    primary.PreferencesService
	limiter  *rate.Limiter
	interval time.Duration
	batch    int
	metrics  metrics.Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

// DispatcherConfig holds the tunables of a NotificationDispatcher.
type DispatcherConfig struct {
	Interval  time.Duration
	Batch     int
	RateLimit rate.Limit // alerts per second
	Burst     int
}

// NewNotificationDispatcher creates a dispatcher. Zero config values fall back to defaults.
func NewNotificationDispatcher(queue secondary.NotificationQueue, sink secondary.AlertSink, worries primary.WorryService, prefs primary.PreferencesService, cfg DispatcherConfig, rec metrics.Recorder, logger zerolog.Logger) *NotificationDispatcher {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultDispatchInterval
	}
	if cfg.Batch <= 0 {
		cfg.Batch = DefaultDispatchBatch
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = rate.Limit(1)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &NotificationDispatcher{
		queue:    queue,
		sink:     sink,
		worries:  worries,
		prefs:    prefs,
		limiter:  rate.NewLimiter(cfg.RateLimit, cfg.Burst),
		interval: cfg.Interval,
		batch:    cfg.Batch,
		metrics:  rec,
		logger:   logger,
		now:      time.Now,
	}
}

// Run dispatches once immediately and then every interval until ctx is done.
func (d *NotificationDispatcher) Run(ctx context.Context) error {
	ctx = ctxutil.WithSource(ctx, ctxutil.SourceDispatcher)
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if _, err := d.Tick(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error().Err(err).Msg("dispatch failed")
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick delivers every due notification and then unlocks expired worries.
// It returns the number of notifications delivered.
func (d *NotificationDispatcher) Tick(ctx context.Context) (int, error) {
	due, err := d.queue.Due(ctx, d.now(), d.batch)
	if err != nil {
		return 0, fmt.Errorf("failed to list due notifications: %w", err)
	}

	show := true
	if d.prefs != nil {
		p, err := d.prefs.Get(ctx)
		if err != nil {
			d.logger.Warn().Err(err).Msg("failed to read preferences, showing notifications")
		} else {
			show = p.NotificationsEnabled
		}
	}

	delivered := 0
	for _, n := range due {
		if show {
			if err := d.limiter.Wait(ctx); err != nil {
				return delivered, err
			}
			if err := d.sink.Alert(ctx, n); err != nil {
				d.logger.Warn().Err(err).Int32("notification_id", n.ID).Msg("failed to show notification")
				continue
			}
		}
		if err := d.queue.MarkDelivered(ctx, n.ID, d.now()); err != nil {
			d.logger.Warn().Err(err).Int32("notification_id", n.ID).Msg("failed to mark notification delivered")
			continue
		}
		delivered++
	}
	if delivered > 0 {
		d.metrics.RecordDispatched(delivered)
		d.logger.Info().Int("delivered", delivered).Msg("notifications dispatched")
	}

	if _, err := d.worries.CheckAndUnlockExpired(ctx); err != nil {
		return delivered, fmt.Errorf("failed to unlock expired worries: %w", err)
	}
	return delivered, nil
}
