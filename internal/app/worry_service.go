package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/worrybox/internal/core/effects"
	"github.com/example/worrybox/internal/core/preferences"
	"github.com/example/worrybox/internal/core/stats"
	"github.com/example/worrybox/internal/core/worry"
	"github.com/example/worrybox/internal/ctxutil"
	"github.com/example/worrybox/internal/metrics"
	"github.com/example/worrybox/internal/ports/primary"
	"github.com/example/worrybox/internal/ports/secondary"
)

// WorryServiceImpl implements the WorryService interface.
// It owns the in-memory collection; the KeyValueStore holds a mirror that is
// rewritten in full after every mutation. All operations are serialized.
type WorryServiceImpl struct {
	mu sync.Mutex

	store    secondary.KeyValueStore
	executor EffectExecutor
	prefs    primary.PreferencesService
	stats    primary.StatsService
	activity secondary.ActivityLog
	metrics  metrics.Recorder
	logger   zerolog.Logger

	now               func() time.Time
	newID             func() string
	newNotificationID func() int32

	loaded  bool
	worries []worry.Worry
	intents []secondary.NotificationIntentRecord
}

// WorryOption configures a WorryServiceImpl.
type WorryOption func(*WorryServiceImpl)

// WithPreferences supplies the default unlock delay for creates without an unlock time.
func WithPreferences(p primary.PreferencesService) WorryOption {
	return func(s *WorryServiceImpl) { s.prefs = p }
}

// WithStats enables usage counters.
func WithStats(st primary.StatsService) WorryOption {
	return func(s *WorryServiceImpl) { s.stats = st }
}

// WithActivityLog enables the per-worry history trail.
func WithActivityLog(a secondary.ActivityLog) WorryOption {
	return func(s *WorryServiceImpl) { s.activity = a }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.Recorder) WorryOption {
	return func(s *WorryServiceImpl) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) WorryOption {
	return func(s *WorryServiceImpl) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) WorryOption {
	return func(s *WorryServiceImpl) { s.now = now }
}

// WithIDGenerators overrides worry and notification id generation.
func WithIDGenerators(newID func() string, newNotificationID func() int32) WorryOption {
	return func(s *WorryServiceImpl) {
		s.newID = newID
		s.newNotificationID = newNotificationID
	}
}

// NewWorryService creates a new WorryService with injected dependencies.
func NewWorryService(store secondary.KeyValueStore, notifier secondary.NotificationScheduler, opts ...WorryOption) *WorryServiceImpl {
	s := &WorryServiceImpl{
		store:             store,
		metrics:           metrics.Nop{},
		logger:            zerolog.Nop(),
		now:               time.Now,
		newID:             worry.NewID,
		newNotificationID: worry.NewNotificationID,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.executor = NewEffectExecutor(store, notifier, s.logger)
	return s
}

// clock returns the current time normalized for storage.
func (s *WorryServiceImpl) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// ============================================================================
// Loading and the notification intent journal
// ============================================================================

// Load reads the stored collection, reconciles the notification journal and
// unlocks anything that expired while the process was not running.
func (s *WorryServiceImpl) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = false
	if err := s.ensureLoaded(ctx); err != nil {
		return err
	}
	s.reconcileIntents(ctx)
	_, err := s.unlockExpired(ctx)
	return err
}

func (s *WorryServiceImpl) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	var ws []worry.Worry
	if err := s.readDocument(ctx, secondary.KeyWorries, &ws); err != nil {
		return err
	}
	var intents []secondary.NotificationIntentRecord
	if err := s.readDocument(ctx, secondary.KeyNotificationIntents, &intents); err != nil {
		return err
	}

	s.worries = ws
	s.intents = intents
	s.loaded = true
	s.updateGauges()
	s.logger.Debug().Int("worries", len(ws)).Int("intents", len(intents)).Msg("worries loaded")
	return nil
}

func (s *WorryServiceImpl) readDocument(ctx context.Context, key string, dst any) error {
	data, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return &PersistenceError{Op: "get", Key: key, Err: err}
	}
	if !ok || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// reconcileIntents cancels every journalled notification that no stored worry
// claims as its live notification. Intents that cannot be cancelled stay in
// the journal for the next load.
func (s *WorryServiceImpl) reconcileIntents(ctx context.Context) {
	if len(s.intents) == 0 {
		return
	}
	live := make(map[int32]bool, len(s.worries))
	for _, w := range s.worries {
		if w.HasLiveNotification() {
			live[w.NotificationID] = true
		}
	}

	var kept []secondary.NotificationIntentRecord
	for _, in := range s.intents {
		if live[in.NotificationID] {
			continue
		}
		op := effects.NotificationEffect{Operation: effects.NotificationCancel, NotificationID: in.NotificationID, WorryID: in.WorryID}
		if err := s.executor.Execute(ctx, []effects.Effect{op}); err != nil {
			s.logger.Warn().Err(err).Int32("notification_id", in.NotificationID).Msg("failed to cancel orphaned notification")
			kept = append(kept, in)
			continue
		}
		s.logger.Info().Int32("notification_id", in.NotificationID).Str("worry_id", in.WorryID).Msg("cancelled orphaned notification")
	}
	s.intents = kept
	s.writeIntents(ctx)
}

// recordIntents journals every schedule in ops before any of them run.
func (s *WorryServiceImpl) recordIntents(ctx context.Context, ops []effects.NotificationEffect) error {
	added := false
	for _, op := range ops {
		if op.Operation != effects.NotificationSchedule {
			continue
		}
		s.intents = append(s.intents, secondary.NotificationIntentRecord{
			NotificationID: op.NotificationID,
			WorryID:        op.WorryID,
			FireAt:         op.FireAt.Format(time.RFC3339Nano),
		})
		added = true
	}
	if !added {
		return nil
	}
	if err := s.executor.Execute(ctx, []effects.Effect{s.intentsEffect()}); err != nil {
		s.forgetIntents(ctx, scheduledIDs(ops), false)
		s.metrics.RecordPersistFailure(secondary.KeyNotificationIntents)
		return err
	}
	return nil
}

// forgetIntents drops journal entries for ids and optionally writes the journal.
func (s *WorryServiceImpl) forgetIntents(ctx context.Context, ids []int32, write bool) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[int32]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := s.intents[:0:0]
	for _, in := range s.intents {
		if !drop[in.NotificationID] {
			kept = append(kept, in)
		}
	}
	s.intents = kept
	if write {
		s.writeIntents(ctx)
	}
}

// writeIntents stores the journal. A failure leaves stale entries behind,
// which the next load reconciles, so it is only logged.
func (s *WorryServiceImpl) writeIntents(ctx context.Context) {
	if err := s.executor.Execute(ctx, []effects.Effect{s.intentsEffect()}); err != nil {
		s.metrics.RecordPersistFailure(secondary.KeyNotificationIntents)
		s.logger.Warn().Err(err).Msg("failed to write notification journal")
	}
}

func (s *WorryServiceImpl) intentsEffect() effects.PersistEffect {
	if len(s.intents) == 0 {
		return effects.PersistEffect{Key: secondary.KeyNotificationIntents}
	}
	return effects.PersistEffect{Key: secondary.KeyNotificationIntents, Data: s.intents}
}

func scheduledIDs(ops []effects.NotificationEffect) []int32 {
	var ids []int32
	for _, op := range ops {
		if op.Operation == effects.NotificationSchedule {
			ids = append(ids, op.NotificationID)
		}
	}
	return ids
}

// ============================================================================
// Commit pipeline
// ============================================================================

// mutation describes one planned change to the collection.
type mutation struct {
	action   string
	before   *worry.Worry // nil for an insert
	plan     worry.Plan
	remove   bool
	statKind stats.Kind
	detail   string
}

// apply runs the plan's notification calls and commits the result.
// A notification failure leaves the collection untouched.
func (s *WorryServiceImpl) apply(ctx context.Context, m mutation) (*worry.Worry, error) {
	ops := m.plan.NotificationOps
	if err := s.recordIntents(ctx, ops); err != nil {
		return nil, err
	}
	executed, err := s.runOps(ctx, ops)
	if err != nil {
		settled := s.compensate(ctx, executed, m.before)
		s.forgetIntents(ctx, append(unexecutedSchedules(ops, executed), settled...), true)
		return nil, err
	}
	return s.commit(ctx, m, executed)
}

// runOps executes notification calls in order, stopping at the first failure.
func (s *WorryServiceImpl) runOps(ctx context.Context, ops []effects.NotificationEffect) ([]effects.NotificationEffect, error) {
	executed := make([]effects.NotificationEffect, 0, len(ops))
	for _, op := range ops {
		if err := s.executor.Execute(ctx, []effects.Effect{op}); err != nil {
			s.metrics.RecordSchedulingFailure(op.Operation)
			s.logger.Error().Err(err).Str("worry_id", op.WorryID).Str("op", op.Operation).Msg("notification call failed")
			return executed, err
		}
		executed = append(executed, op)
	}
	return executed, nil
}

func unexecutedSchedules(ops, executed []effects.NotificationEffect) []int32 {
	return scheduledIDs(ops[len(executed):])
}

// commit persists the collection with the mutation applied and then swaps it
// in. On a persist failure memory keeps the previous collection.
func (s *WorryServiceImpl) commit(ctx context.Context, m mutation, executed []effects.NotificationEffect) (*worry.Worry, error) {
	next := s.nextCollection(m)
	if err := s.executor.Execute(ctx, []effects.Effect{effects.PersistEffect{Key: secondary.KeyWorries, Data: next}}); err != nil {
		s.metrics.RecordPersistFailure(secondary.KeyWorries)
		s.logger.Error().Err(err).Str("worry_id", m.plan.Worry.ID).Str("action", m.action).Msg("failed to persist worries")
		settled := s.compensate(ctx, executed, m.before)
		s.forgetIntents(ctx, settled, true)
		return nil, err
	}
	s.worries = next
	s.forgetIntents(ctx, scheduledIDs(m.plan.NotificationOps), true)
	s.afterCommit(ctx, m)

	w := m.plan.Worry.Clone()
	return &w, nil
}

func (s *WorryServiceImpl) nextCollection(m mutation) []worry.Worry {
	next := make([]worry.Worry, 0, len(s.worries)+1)
	id := m.plan.Worry.ID
	replaced := false
	for _, w := range s.worries {
		if w.ID != id {
			next = append(next, w)
			continue
		}
		replaced = true
		if !m.remove {
			next = append(next, m.plan.Worry)
		}
	}
	if !replaced && !m.remove {
		next = append(next, m.plan.Worry)
	}
	return next
}

// compensate undoes executed notification calls after a later step failed:
// new schedules are cancelled and a cancelled notification of a still-locked
// worry is scheduled again. It returns the schedule ids it cancelled.
func (s *WorryServiceImpl) compensate(ctx context.Context, executed []effects.NotificationEffect, before *worry.Worry) []int32 {
	var settled []int32
	for i := len(executed) - 1; i >= 0; i-- {
		op := executed[i]
		var undo effects.NotificationEffect
		switch op.Operation {
		case effects.NotificationSchedule:
			undo = effects.NotificationEffect{Operation: effects.NotificationCancel, NotificationID: op.NotificationID, WorryID: op.WorryID}
		case effects.NotificationCancel:
			if before == nil || before.Status != worry.StatusLocked {
				continue
			}
			undo = effects.NotificationEffect{
				Operation:      effects.NotificationSchedule,
				NotificationID: op.NotificationID,
				WorryID:        before.ID,
				FireAt:         before.UnlockAt,
				Body:           before.Content,
				Action:         before.Action,
			}
		default:
			continue
		}
		if err := s.executor.Execute(ctx, []effects.Effect{undo}); err != nil {
			s.logger.Warn().Err(err).Int32("notification_id", op.NotificationID).Msg("failed to roll back notification call")
			continue
		}
		if op.Operation == effects.NotificationSchedule {
			settled = append(settled, op.NotificationID)
		}
	}
	return settled
}

func (s *WorryServiceImpl) afterCommit(ctx context.Context, m mutation) {
	s.metrics.RecordTransition(m.action)
	s.updateGauges()
	if m.statKind != "" && s.stats != nil {
		s.stats.Record(ctx, m.statKind, 1)
	}
	from := ""
	if m.before != nil {
		from = string(m.before.Status)
	}
	to := string(m.plan.Worry.Status)
	if m.remove {
		to = ""
	}
	s.appendActivity(ctx, m.plan.Worry.ID, m.action, from, to, m.detail)
	s.logger.Info().Str("worry_id", m.plan.Worry.ID).Str("action", m.action).Str("status", to).Msg("worry updated")
}

func (s *WorryServiceImpl) appendActivity(ctx context.Context, worryID, action, from, to, detail string) {
	if s.activity == nil {
		return
	}
	err := s.activity.Append(ctx, &secondary.ActivityRecord{
		WorryID:    worryID,
		Action:     action,
		Source:     ctxutil.SourceFromContext(ctx),
		FromStatus: from,
		ToStatus:   to,
		Detail:     detail,
		CreatedAt:  s.clock(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("worry_id", worryID).Msg("failed to record activity")
	}
}

func (s *WorryServiceImpl) updateGauges() {
	c := worry.Summarize(s.worries)
	s.metrics.SetLive(string(worry.ViewLocked), c.Locked)
	s.metrics.SetLive(string(worry.ViewUnlocked), c.Unlocked)
	s.metrics.SetLive(string(worry.ViewResolved), c.Resolved)
	s.metrics.SetLive(string(worry.ViewDismissed), c.Dismissed)
	s.metrics.SetLive(string(worry.ViewReleased), c.Released)
}

// find returns a copy of the worry with id.
func (s *WorryServiceImpl) find(id string) (worry.Worry, error) {
	for _, w := range s.worries {
		if w.ID == id {
			return w.Clone(), nil
		}
	}
	return worry.Worry{}, fmt.Errorf("%w: %s", worry.ErrNotFound, id)
}

// lockedLookup acquires the lock, loads the collection and finds id.
// On success the caller must release s.mu.
func (s *WorryServiceImpl) lockedLookup(ctx context.Context, id string) (worry.Worry, error) {
	s.mu.Lock()
	if err := s.ensureLoaded(ctx); err != nil {
		s.mu.Unlock()
		return worry.Worry{}, err
	}
	w, err := s.find(id)
	if err != nil {
		s.mu.Unlock()
		return worry.Worry{}, err
	}
	return w, nil
}

// ============================================================================
// Lifecycle operations
// ============================================================================

// Create records a new locked worry and schedules its unlock notification.
func (s *WorryServiceImpl) Create(ctx context.Context, req primary.CreateWorryRequest) (*worry.Worry, error) {
	unlockAt := req.UnlockAt
	if unlockAt.IsZero() {
		unlockAt = s.clock().Add(s.defaultUnlockDelay(ctx))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	plan, err := worry.PlanCreate(worry.CreateInput{
		ID:             s.newID(),
		Content:        req.Content,
		Action:         req.Action,
		UnlockAt:       unlockAt.UTC(),
		Now:            s.clock(),
		NotificationID: s.newNotificationID(),
		Category:       req.Category,
		Tags:           req.Tags,
	})
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, mutation{action: "create", plan: plan, statKind: stats.KindCreated})
}

func (s *WorryServiceImpl) defaultUnlockDelay(ctx context.Context) time.Duration {
	d := preferences.Defaults().DefaultUnlockDelay.Std()
	if s.prefs == nil {
		return d
	}
	p, err := s.prefs.Get(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to read preferences, using default unlock delay")
		return d
	}
	return p.DefaultUnlockDelay.Std()
}

// Release records a worry that is let go immediately.
func (s *WorryServiceImpl) Release(ctx context.Context, content string) (*worry.Worry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	plan, err := worry.PlanRelease(worry.ReleaseInput{ID: s.newID(), Content: content, Now: s.clock()})
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, mutation{action: "release", plan: plan, statKind: stats.KindReleased})
}

// Edit merges the provided fields into an existing worry.
//
// When UnlockAt changes on a locked worry the old notification is cancelled
// and a new one scheduled. If either call fails the remaining field changes
// are still committed and the *SchedulingError is returned together with the
// committed worry: a failed cancel keeps the old unlock time and notification,
// a failed schedule keeps the new unlock time with no live notification.
func (s *WorryServiceImpl) Edit(ctx context.Context, req primary.EditWorryRequest) (*worry.Worry, error) {
	current, err := s.lockedLookup(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	in := worry.EditInput{
		Content:         req.Content,
		Action:          req.Action,
		UnlockAt:        req.UnlockAt,
		Category:        req.Category,
		Tags:            req.Tags,
		BestOutcome:     req.BestOutcome,
		TalkedToSomeone: req.TalkedToSomeone,
	}
	if in.UnlockAt != nil {
		at := in.UnlockAt.UTC()
		in.UnlockAt = &at
		in.NewNotificationID = s.newNotificationID()
	}

	plan, err := worry.PlanEdit(current, in)
	if err != nil {
		return nil, err
	}
	if !plan.Changed {
		return &current, nil
	}

	ops := plan.NotificationOps
	if err := s.recordIntents(ctx, ops); err != nil {
		return nil, err
	}
	executed, schedErr := s.runOps(ctx, ops)
	if schedErr != nil {
		failed := ops[len(executed)]
		if failed.Operation == effects.NotificationCancel {
			plan.Worry.UnlockAt = current.UnlockAt
			plan.Worry.NotificationID = current.NotificationID
		} else {
			plan.Worry.NotificationID = worry.NoNotification
		}
	}

	w, err := s.commit(ctx, mutation{action: "edit", before: &current, plan: plan}, executed)
	if err != nil {
		return nil, err
	}
	return w, schedErr
}

// Resolve closes an unlocked worry with an optional note.
func (s *WorryServiceImpl) Resolve(ctx context.Context, id, note string) (*worry.Worry, error) {
	current, err := s.lockedLookup(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	plan, err := worry.PlanResolve(current, note, s.clock())
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, mutation{action: "resolve", before: &current, plan: plan, statKind: stats.KindResolved, detail: plan.Worry.ResolutionNote})
}

// Dismiss closes a locked or unlocked worry without resolution.
// Dismissing an already dismissed worry changes nothing.
func (s *WorryServiceImpl) Dismiss(ctx context.Context, id string) (*worry.Worry, error) {
	current, err := s.lockedLookup(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	plan, err := worry.PlanDismiss(current, s.clock())
	if err != nil {
		return nil, err
	}
	if !plan.Changed {
		return &current, nil
	}
	return s.apply(ctx, mutation{action: "dismiss", before: &current, plan: plan, statKind: stats.KindDismissed})
}

// Snooze pushes the unlock time to now+d and relocks the worry.
func (s *WorryServiceImpl) Snooze(ctx context.Context, id string, d time.Duration) (*worry.Worry, error) {
	current, err := s.lockedLookup(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	plan, err := worry.PlanSnooze(current, worry.SnoozeInput{
		Duration:          d,
		Now:               s.clock(),
		NewNotificationID: s.newNotificationID(),
	})
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, mutation{action: "snooze", before: &current, plan: plan, statKind: stats.KindSnoozed, detail: d.String()})
}

// UnlockNow unlocks a locked worry ahead of its unlock time.
func (s *WorryServiceImpl) UnlockNow(ctx context.Context, id string) (*worry.Worry, error) {
	current, err := s.lockedLookup(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	plan, err := worry.PlanUnlock(current, s.clock(), true)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, mutation{action: "unlock", before: &current, plan: plan, statKind: stats.KindUnlocked, detail: "manual"})
}

// Delete removes a worry, cancelling its notification first.
// An unknown id is a no-op reported as false.
func (s *WorryServiceImpl) Delete(ctx context.Context, id string) (bool, error) {
	current, err := s.lockedLookup(ctx, id)
	if errors.Is(err, worry.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer s.mu.Unlock()

	plan := worry.PlanDelete(current)
	if _, err := s.apply(ctx, mutation{action: "delete", before: &current, plan: plan, remove: true, statKind: stats.KindDeleted}); err != nil {
		return false, err
	}
	return true, nil
}

// CheckAndUnlockExpired unlocks every locked worry whose unlock time has
// passed and persists the collection once if anything changed. A worry whose
// notification cannot be cancelled stays locked; those failures are joined
// into the returned error alongside the worries that did unlock.
func (s *WorryServiceImpl) CheckAndUnlockExpired(ctx context.Context) ([]*worry.Worry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	return s.unlockExpired(ctx)
}

func (s *WorryServiceImpl) unlockExpired(ctx context.Context) ([]*worry.Worry, error) {
	now := s.clock()
	due := worry.Select(s.worries, worry.DueForUnlock(now))
	if len(due) == 0 {
		return nil, nil
	}

	var errs []error
	changed := make(map[string]worry.Worry, len(due))
	cancelled := make(map[string][]effects.NotificationEffect, len(due))
	for _, w := range due {
		plan, err := worry.PlanUnlock(w, now, false)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		executed, err := s.runOps(ctx, plan.NotificationOps)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		changed[w.ID] = plan.Worry
		cancelled[w.ID] = executed
	}
	if len(changed) == 0 {
		return nil, errors.Join(errs...)
	}

	next := make([]worry.Worry, len(s.worries))
	unlocked := make([]*worry.Worry, 0, len(changed))
	for i, w := range s.worries {
		if u, ok := changed[w.ID]; ok {
			next[i] = u
			c := u.Clone()
			unlocked = append(unlocked, &c)
			continue
		}
		next[i] = w
	}

	if err := s.executor.Execute(ctx, []effects.Effect{effects.PersistEffect{Key: secondary.KeyWorries, Data: next}}); err != nil {
		s.metrics.RecordPersistFailure(secondary.KeyWorries)
		s.logger.Error().Err(err).Int("worries", len(changed)).Msg("failed to persist expired unlocks")
		for _, w := range due {
			if ops, ok := cancelled[w.ID]; ok {
				before := w
				s.compensate(ctx, ops, &before)
			}
		}
		return nil, errors.Join(append(errs, err)...)
	}
	s.worries = next

	for _, w := range unlocked {
		s.metrics.RecordTransition("unlock")
		s.appendActivity(ctx, w.ID, "unlock", string(worry.StatusLocked), string(worry.StatusUnlocked), "expired")
	}
	s.updateGauges()
	if s.stats != nil {
		s.stats.Record(ctx, stats.KindUnlocked, len(unlocked))
	}
	s.logger.Info().Int("worries", len(unlocked)).Msg("unlocked expired worries")
	return unlocked, errors.Join(errs...)
}

// ============================================================================
// Queries
// ============================================================================

// Get retrieves a worry by ID.
func (s *WorryServiceImpl) Get(ctx context.Context, id string) (*worry.Worry, error) {
	w, err := s.lockedLookup(ctx, id)
	if err != nil {
		return nil, err
	}
	s.mu.Unlock()
	return &w, nil
}

// List returns the worries in a view, ordered by unlock time.
func (s *WorryServiceImpl) List(ctx context.Context, view worry.View) ([]*worry.Worry, error) {
	filter, ok := worry.FilterFor(view)
	if !ok {
		return nil, fmt.Errorf("unknown view %q", view)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	selected := worry.Select(s.worries, filter)
	worry.SortByUnlockAt(selected)
	out := make([]*worry.Worry, len(selected))
	for i := range selected {
		c := selected[i].Clone()
		out[i] = &c
	}
	return out, nil
}

func (s *WorryServiceImpl) view(ctx context.Context, v worry.View) []*worry.Worry {
	ws, err := s.List(ctx, v)
	if err != nil {
		s.logger.Warn().Err(err).Str("view", string(v)).Msg("failed to list worries")
		return nil
	}
	return ws
}

// Locked returns worries waiting for their unlock time.
func (s *WorryServiceImpl) Locked(ctx context.Context) []*worry.Worry {
	return s.view(ctx, worry.ViewLocked)
}

// Unlocked returns worries ready to be revisited.
func (s *WorryServiceImpl) Unlocked(ctx context.Context) []*worry.Worry {
	return s.view(ctx, worry.ViewUnlocked)
}

// Resolved returns resolved worries.
func (s *WorryServiceImpl) Resolved(ctx context.Context) []*worry.Worry {
	return s.view(ctx, worry.ViewResolved)
}

// Dismissed returns dismissed worries, excluding released ones.
func (s *WorryServiceImpl) Dismissed(ctx context.Context) []*worry.Worry {
	return s.view(ctx, worry.ViewDismissed)
}

// Released returns worries created through release.
func (s *WorryServiceImpl) Released(ctx context.Context) []*worry.Worry {
	return s.view(ctx, worry.ViewReleased)
}

// All returns every worry.
func (s *WorryServiceImpl) All(ctx context.Context) []*worry.Worry {
	return s.view(ctx, worry.ViewAll)
}

// History returns the activity trail of a worry, oldest first.
// History outlives the worry itself, so unknown ids are not an error.
func (s *WorryServiceImpl) History(ctx context.Context, id string) ([]*primary.Activity, error) {
	if s.activity == nil {
		return nil, nil
	}
	records, err := s.activity.ListForWorry(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	out := make([]*primary.Activity, len(records))
	for i, r := range records {
		out[i] = &primary.Activity{
			Action:     r.Action,
			Source:     r.Source,
			FromStatus: r.FromStatus,
			ToStatus:   r.ToStatus,
			Detail:     r.Detail,
			At:         r.CreatedAt,
		}
	}
	return out, nil
}

// PruneHistory deletes activity entries older than olderThan.
func (s *WorryServiceImpl) PruneHistory(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("prune age must be positive (got %s)", olderThan)
	}
	if s.activity == nil {
		return 0, nil
	}
	n, err := s.activity.Prune(ctx, s.clock().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int("removed", n).Dur("older_than", olderThan).Msg("pruned activity history")
	return n, nil
}

// Ensure WorryServiceImpl implements the interface
var _ primary.WorryService = (*WorryServiceImpl)(nil)
