package app

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/worrybox/internal/core/stats"
	"github.com/example/worrybox/internal/ports/primary"
	"github.com/example/worrybox/internal/ports/secondary"
)

func newTestStatsService() (*StatsServiceImpl, *mockKVStore) {
	store := newMockKVStore()
	svc := NewStatsService(store, zerolog.Nop())
	svc.now = func() time.Time { return testNow }
	return svc, store
}

func TestStatsService_Record(t *testing.T) {
	svc, _ := newTestStatsService()
	ctx := context.Background()

	svc.Record(ctx, stats.KindCreated, 1)
	svc.Record(ctx, stats.KindCreated, 2)
	svc.Record(ctx, stats.KindResolved, 1)
	svc.Record(ctx, stats.KindDeleted, 0)

	summary, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.Counters.Created != 3 {
		t.Errorf("Created = %d, want 3", summary.Counters.Created)
	}
	if summary.Counters.Resolved != 1 {
		t.Errorf("Resolved = %d, want 1", summary.Counters.Resolved)
	}
	if summary.Counters.Deleted != 0 {
		t.Errorf("Deleted = %d, want 0", summary.Counters.Deleted)
	}
}

func TestStatsService_Record_WriteFailureIsSwallowed(t *testing.T) {
	svc, store := newTestStatsService()
	store.setErr[secondary.KeyStats] = errBoom

	svc.Record(context.Background(), stats.KindCreated, 1)

	if store.setCalls[secondary.KeyStats] != 1 {
		t.Errorf("stats writes = %d, want 1 attempt", store.setCalls[secondary.KeyStats])
	}
}

func TestStatsService_Summary_LiveCounts(t *testing.T) {
	f := newWorryFixture(t)
	ctx := context.Background()
	statsSvc := NewStatsService(f.store, zerolog.Nop())
	f.svc = NewWorryService(f.store, f.sched,
		WithStats(statsSvc),
		WithClock(f.clock.Now),
		WithIDGenerators(f.ids.nextID, f.ids.nextNotificationID),
	)

	a := mustCreate(t, f, "A", testNow.Add(time.Hour))
	b := mustCreate(t, f, "B", testNow.Add(time.Hour))
	if _, err := f.svc.UnlockNow(ctx, a.ID); err != nil {
		t.Fatalf("UnlockNow() error = %v", err)
	}
	if _, err := f.svc.Resolve(ctx, a.ID, ""); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, err := f.svc.Dismiss(ctx, b.ID); err != nil {
		t.Fatalf("Dismiss() error = %v", err)
	}
	if _, err := f.svc.Release(ctx, "C"); err != nil {
		t.Fatalf("Release() error = %v", err)
	}

	summary, err := statsSvc.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}
	if summary.Live.Dismissed != 1 || summary.Live.Resolved != 1 || summary.Live.Released != 1 || summary.Live.Locked != 0 {
		t.Errorf("Live = %+v, want 1 resolved, 1 dismissed, 1 released", summary.Live)
	}
	if summary.Counters.Created != 2 || summary.Counters.Released != 1 {
		t.Errorf("Counters = %+v", summary.Counters)
	}
	if summary.ResolutionRate != 0.5 {
		t.Errorf("ResolutionRate = %v, want 0.5", summary.ResolutionRate)
	}
}

var _ primary.StatsService = (*mockStatsService)(nil)
