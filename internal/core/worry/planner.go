// Package worry contains the pure business logic for the worry lifecycle.
// This file contains pure planner functions that compute the next worry state
// and the notification effects needed to get there.
package worry

import (
	"strings"
	"time"

	"github.com/example/worrybox/internal/core/effects"
)

// Plan is the outcome of a lifecycle planner: the worry as it should look
// after the operation, plus the notification calls that must succeed first.
type Plan struct {
	Worry           Worry
	NotificationOps []effects.NotificationEffect
	Changed         bool
}

// CancelOp returns the planned cancel, if any.
func (p Plan) CancelOp() (effects.NotificationEffect, bool) {
	return p.findOp(effects.NotificationCancel)
}

// ScheduleOp returns the planned schedule, if any.
func (p Plan) ScheduleOp() (effects.NotificationEffect, bool) {
	return p.findOp(effects.NotificationSchedule)
}

func (p Plan) findOp(op string) (effects.NotificationEffect, bool) {
	for _, e := range p.NotificationOps {
		if e.Operation == op {
			return e, true
		}
	}
	return effects.NotificationEffect{}, false
}

// CreateInput contains everything needed to plan a new locked worry.
// All values are pre-computed by the caller - no I/O or randomness in the planner.
type CreateInput struct {
	ID             string
	Content        string
	Action         string
	UnlockAt       time.Time
	Now            time.Time
	NotificationID int32
	Category       string
	Tags           []string
}

// PlanCreate plans a worry in the locked state with a notification at UnlockAt.
func PlanCreate(in CreateInput) (Plan, error) {
	guard := CanCreate(CreateContext{
		ContentContext: ContentContext{Content: in.Content, Action: in.Action},
		UnlockAt:       in.UnlockAt,
	})
	if err := guard.Error(); err != nil {
		return Plan{}, err
	}

	w := Worry{
		ID:             in.ID,
		Content:        strings.TrimSpace(in.Content),
		Action:         strings.TrimSpace(in.Action),
		CreatedAt:      in.Now,
		UnlockAt:       in.UnlockAt,
		Status:         InitialStatus(),
		NotificationID: in.NotificationID,
		Category:       in.Category,
		Tags:           normalizeTags(in.Tags),
	}

	return Plan{
		Worry:           w,
		NotificationOps: []effects.NotificationEffect{scheduleOp(w)},
		Changed:         true,
	}, nil
}

// ReleaseInput contains everything needed to plan a released worry.
type ReleaseInput struct {
	ID      string
	Content string
	Now     time.Time
}

// PlanRelease plans a worry that is dismissed at birth. No notification is involved.
func PlanRelease(in ReleaseInput) (Plan, error) {
	if err := CanRelease(ContentContext{Content: in.Content}).Error(); err != nil {
		return Plan{}, err
	}
	now := in.Now
	w := Worry{
		ID:          in.ID,
		Content:     strings.TrimSpace(in.Content),
		CreatedAt:   now,
		UnlockAt:    now,
		ReleasedAt:  &now,
		DismissedAt: &now,
		Status:      ReleasedStatus(),
	}
	return Plan{Worry: w, Changed: true}, nil
}

// PlanUnlock plans the locked -> unlocked transition.
// A manual unlock ignores UnlockAt; an automatic one requires it to have passed.
func PlanUnlock(w Worry, now time.Time, manual bool) (Plan, error) {
	if manual {
		if err := CanApply(TransitionContext{WorryID: w.ID, Status: w.Status, Event: EventUnlock}).Error(); err != nil {
			return Plan{}, err
		}
	} else {
		if err := CanAutoUnlock(AutoUnlockContext{Status: w.Status, UnlockAt: w.UnlockAt, Now: now}).Error(); err != nil {
			return Plan{}, err
		}
	}

	next := w.Clone()
	ops := cancelOps(next)
	next.Status = StatusUnlocked
	next.UnlockedAt = &now
	next.NotificationID = NoNotification
	return Plan{Worry: next, NotificationOps: ops, Changed: true}, nil
}

// PlanResolve plans the unlocked -> resolved transition.
func PlanResolve(w Worry, note string, now time.Time) (Plan, error) {
	if err := CanApply(TransitionContext{WorryID: w.ID, Status: w.Status, Event: EventResolve}).Error(); err != nil {
		return Plan{}, err
	}
	next := w.Clone()
	next.Status = StatusResolved
	next.ResolvedAt = &now
	next.ResolutionNote = strings.TrimSpace(note)
	return Plan{Worry: next, Changed: true}, nil
}

// PlanDismiss plans a transition to dismissed. Dismissing an already
// dismissed worry yields an unchanged plan.
func PlanDismiss(w Worry, now time.Time) (Plan, error) {
	if IsIdempotentDismiss(w.Status) {
		return Plan{Worry: w.Clone()}, nil
	}
	if err := CanApply(TransitionContext{WorryID: w.ID, Status: w.Status, Event: EventDismiss}).Error(); err != nil {
		return Plan{}, err
	}
	next := w.Clone()
	ops := cancelOps(next)
	next.Status = StatusDismissed
	next.DismissedAt = &now
	next.NotificationID = NoNotification
	return Plan{Worry: next, NotificationOps: ops, Changed: true}, nil
}

// SnoozeInput contains everything needed to plan a snooze.
type SnoozeInput struct {
	Duration          time.Duration
	Now               time.Time
	NewNotificationID int32
}

// PlanSnooze plans moving UnlockAt to now+Duration and returning to locked.
func PlanSnooze(w Worry, in SnoozeInput) (Plan, error) {
	guard := CanSnooze(SnoozeContext{
		TransitionContext: TransitionContext{WorryID: w.ID, Status: w.Status},
		Duration:          in.Duration,
	})
	if err := guard.Error(); err != nil {
		return Plan{}, err
	}

	next := w.Clone()
	ops := cancelOps(next)
	next.Status = StatusLocked
	next.UnlockAt = in.Now.Add(in.Duration)
	next.UnlockedAt = nil
	next.NotificationID = in.NewNotificationID
	next.SnoozeCount++
	ops = append(ops, scheduleOp(next))
	return Plan{Worry: next, NotificationOps: ops, Changed: true}, nil
}

// EditInput carries the fields to merge. Nil means "leave unchanged".
type EditInput struct {
	Content           *string
	Action            *string
	UnlockAt          *time.Time
	Category          *string
	Tags              *[]string
	BestOutcome       *string
	TalkedToSomeone   *bool
	NewNotificationID int32 // used only when UnlockAt changes
}

func (in EditInput) touchesText() bool {
	return in.Content != nil || in.Action != nil
}

func (in EditInput) touchesReflection() bool {
	return in.Category != nil || in.Tags != nil || in.BestOutcome != nil || in.TalkedToSomeone != nil
}

// PlanEdit plans a field merge. Changing UnlockAt on a locked worry plans a
// cancel of the current notification followed by a schedule at the new time.
// Text edits are allowed while locked or unlocked; reflection metadata in any status.
func PlanEdit(w Worry, in EditInput) (Plan, error) {
	rescheduling := in.UnlockAt != nil && !in.UnlockAt.Equal(w.UnlockAt)

	if in.touchesText() {
		if err := CanApply(TransitionContext{WorryID: w.ID, Status: w.Status, Event: EventEdit}).Error(); err != nil {
			return Plan{}, err
		}
	}
	if rescheduling {
		if err := CanApply(TransitionContext{WorryID: w.ID, Status: w.Status, Event: EventReschedule}).Error(); err != nil {
			return Plan{}, err
		}
	}
	if in.touchesReflection() {
		if err := CanApply(TransitionContext{WorryID: w.ID, Status: w.Status, Event: EventReflect}).Error(); err != nil {
			return Plan{}, err
		}
	}

	next := w.Clone()
	content, action := next.Content, next.Action
	if in.Content != nil {
		content = *in.Content
	}
	if in.Action != nil {
		action = *in.Action
	}
	if in.touchesText() {
		if err := CanUseContent(ContentContext{Content: content, Action: action}).Error(); err != nil {
			return Plan{}, err
		}
	}
	next.Content = strings.TrimSpace(content)
	next.Action = strings.TrimSpace(action)

	if in.Category != nil {
		next.Category = *in.Category
	}
	if in.Tags != nil {
		next.Tags = normalizeTags(*in.Tags)
	}
	if in.BestOutcome != nil {
		next.BestOutcome = *in.BestOutcome
	}
	if in.TalkedToSomeone != nil {
		v := *in.TalkedToSomeone
		next.TalkedToSomeone = &v
	}

	var ops []effects.NotificationEffect
	if rescheduling {
		ops = cancelOps(next)
		next.UnlockAt = *in.UnlockAt
		next.NotificationID = in.NewNotificationID
		ops = append(ops, scheduleOp(next))
	}

	changed := rescheduling || in.touchesText() || in.touchesReflection()
	return Plan{Worry: next, NotificationOps: ops, Changed: changed}, nil
}

// PlanDelete plans the notification cleanup for removing a worry.
func PlanDelete(w Worry) Plan {
	return Plan{Worry: w.Clone(), NotificationOps: cancelOps(w), Changed: true}
}

func cancelOps(w Worry) []effects.NotificationEffect {
	if !w.HasLiveNotification() {
		return nil
	}
	return []effects.NotificationEffect{{
		Operation:      effects.NotificationCancel,
		NotificationID: w.NotificationID,
		WorryID:        w.ID,
	}}
}

func scheduleOp(w Worry) effects.NotificationEffect {
	return effects.NotificationEffect{
		Operation:      effects.NotificationSchedule,
		NotificationID: w.NotificationID,
		WorryID:        w.ID,
		FireAt:         w.UnlockAt,
		Body:           w.Content,
		Action:         w.Action,
	}
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
