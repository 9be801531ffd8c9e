package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/worrybox/internal/core/preferences"
	"github.com/example/worrybox/internal/core/worry"
	"github.com/example/worrybox/internal/ctxutil"
	"github.com/example/worrybox/internal/ports/primary"
)

func newTestActionService(f *worryFixture) *NotificationActionServiceImpl {
	return NewNotificationActionService(f.svc, f.prefs, nil, zerolog.Nop())
}

func TestNotificationActionService_Done(t *testing.T) {
	tests := []struct {
		name   string
		unlock bool
	}{
		{"locked worry", false},
		{"unlocked worry", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newWorryFixture(t)
			ctx := context.Background()
			w := mustCreate(t, f, "Exam", testNow.Add(time.Hour))
			if tt.unlock {
				if _, err := f.svc.UnlockNow(ctx, w.ID); err != nil {
					t.Fatalf("UnlockNow() error = %v", err)
				}
			}

			if err := newTestActionService(f).HandleAction(ctx, primary.ActionDone, w.ID); err != nil {
				t.Fatalf("HandleAction(done) error = %v", err)
			}

			got, _ := f.svc.Get(ctx, w.ID)
			if got.Status != worry.StatusResolved {
				t.Errorf("Status = %q, want resolved", got.Status)
			}
			if got.ResolutionNote != "" {
				t.Errorf("ResolutionNote = %q, want empty", got.ResolutionNote)
			}
		})
	}
}

func TestNotificationActionService_Snooze(t *testing.T) {
	f := newWorryFixture(t)
	ctx := context.Background()
	f.prefs.prefs.SnoozeDuration = preferences.Duration(15 * time.Minute)
	w := mustCreate(t, f, "Exam", testNow.Add(time.Hour))
	if _, err := f.svc.UnlockNow(ctx, w.ID); err != nil {
		t.Fatalf("UnlockNow() error = %v", err)
	}

	if err := newTestActionService(f).HandleAction(ctx, primary.ActionSnooze, w.ID); err != nil {
		t.Fatalf("HandleAction(snooze) error = %v", err)
	}

	got, _ := f.svc.Get(ctx, w.ID)
	if got.Status != worry.StatusLocked {
		t.Errorf("Status = %q, want locked", got.Status)
	}
	if !got.UnlockAt.Equal(testNow.Add(15 * time.Minute)) {
		t.Errorf("UnlockAt = %v, want now+15m", got.UnlockAt)
	}
}

func TestNotificationActionService_Open(t *testing.T) {
	f := newWorryFixture(t)
	ctx := context.Background()
	w := mustCreate(t, f, "Exam", testNow.Add(time.Minute))
	f.clock.Advance(time.Hour)

	if err := newTestActionService(f).HandleAction(ctx, primary.ActionOpen, w.ID); err != nil {
		t.Fatalf("HandleAction(open) error = %v", err)
	}

	got, _ := f.svc.Get(ctx, w.ID)
	if got.Status != worry.StatusUnlocked {
		t.Errorf("Status = %q, want unlocked", got.Status)
	}
}

func TestNotificationActionService_Errors(t *testing.T) {
	f := newWorryFixture(t)
	svc := newTestActionService(f)
	ctx := context.Background()

	if err := svc.HandleAction(ctx, "archive", "w-1"); !errors.Is(err, primary.ErrUnknownAction) {
		t.Errorf("HandleAction(archive) error = %v, want ErrUnknownAction", err)
	}
	for _, action := range []string{primary.ActionDone, primary.ActionSnooze, primary.ActionOpen} {
		if err := svc.HandleAction(ctx, action, "nope"); !errors.Is(err, worry.ErrNotFound) {
			t.Errorf("HandleAction(%s, nope) error = %v, want ErrNotFound", action, err)
		}
	}
}

func TestNotificationActionService_RecordsSource(t *testing.T) {
	f := newWorryFixture(t)
	ctx := context.Background()
	w := mustCreate(t, f, "Exam", testNow.Add(time.Hour))

	if err := newTestActionService(f).HandleAction(ctx, primary.ActionDone, w.ID); err != nil {
		t.Fatalf("HandleAction(done) error = %v", err)
	}

	history, _ := f.svc.History(ctx, w.ID)
	if len(history) != 3 {
		t.Fatalf("history length = %d, want create, unlock, resolve", len(history))
	}
	for _, h := range history[1:] {
		if h.Source != ctxutil.SourceNotification {
			t.Errorf("%s source = %q, want notification", h.Action, h.Source)
		}
	}
}
