package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/example/worrybox/internal/core/preferences"
	"github.com/example/worrybox/internal/core/stats"
	"github.com/example/worrybox/internal/ports/primary"
	"github.com/example/worrybox/internal/ports/secondary"
)

var errBoom = errors.New("boom")

// ============================================================================
// Mock Implementations
// ============================================================================

// mockKVStore implements secondary.KeyValueStore for testing.
type mockKVStore struct {
	mu          sync.Mutex
	data        map[string][]byte
	getErr      error
	setErr      map[string]error
	removeErr   error
	setCalls    map[string]int
	removeCalls map[string]int
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{
		data:        make(map[string][]byte),
		setErr:      make(map[string]error),
		setCalls:    make(map[string]int),
		removeCalls: make(map[string]int),
	}
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *mockKVStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls[key]++
	if err := m.setErr[key]; err != nil {
		return err
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *mockKVStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeCalls[key]++
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.data, key)
	return nil
}

func (m *mockKVStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// mockScheduler implements secondary.NotificationScheduler for testing.
type mockScheduler struct {
	pending        map[int32]time.Time
	payloads       map[int32]secondary.NotificationPayload
	scheduleCalls  []int32
	cancelCalls    []int32
	scheduleErr    error
	scheduleErrFor map[int32]error
	cancelErr      error
}

func newMockScheduler() *mockScheduler {
	return &mockScheduler{
		pending:  make(map[int32]time.Time),
		payloads: make(map[int32]secondary.NotificationPayload),
	}
}

func (m *mockScheduler) Schedule(ctx context.Context, id int32, fireAt time.Time, payload secondary.NotificationPayload) error {
	m.scheduleCalls = append(m.scheduleCalls, id)
	if m.scheduleErr != nil {
		return m.scheduleErr
	}
	if err := m.scheduleErrFor[id]; err != nil {
		return err
	}
	m.pending[id] = fireAt
	m.payloads[id] = payload
	return nil
}

func (m *mockScheduler) Cancel(ctx context.Context, id int32) error {
	m.cancelCalls = append(m.cancelCalls, id)
	if m.cancelErr != nil {
		return m.cancelErr
	}
	delete(m.pending, id)
	return nil
}

func (m *mockScheduler) resetCalls() {
	m.scheduleCalls = nil
	m.cancelCalls = nil
}

// mockPreferencesService implements primary.PreferencesService for testing.
type mockPreferencesService struct {
	prefs  preferences.Preferences
	getErr error
}

func newMockPreferencesService() *mockPreferencesService {
	return &mockPreferencesService{prefs: preferences.Defaults()}
}

func (m *mockPreferencesService) Get(ctx context.Context) (preferences.Preferences, error) {
	if m.getErr != nil {
		return preferences.Preferences{}, m.getErr
	}
	return m.prefs, nil
}

func (m *mockPreferencesService) Update(ctx context.Context, u preferences.Update) (preferences.Preferences, error) {
	next, err := preferences.Apply(m.prefs, u)
	if err != nil {
		return m.prefs, err
	}
	m.prefs = next
	return next, nil
}

func (m *mockPreferencesService) Reset(ctx context.Context) (preferences.Preferences, error) {
	m.prefs = preferences.Defaults()
	return m.prefs, nil
}

// mockStatsService implements primary.StatsService for testing.
type mockStatsService struct {
	recorded map[stats.Kind]int
}

func newMockStatsService() *mockStatsService {
	return &mockStatsService{recorded: make(map[stats.Kind]int)}
}

func (m *mockStatsService) Record(ctx context.Context, kind stats.Kind, n int) {
	m.recorded[kind] += n
}

func (m *mockStatsService) Summary(ctx context.Context) (*primary.StatsSummary, error) {
	return &primary.StatsSummary{}, nil
}

// mockActivityLog implements secondary.ActivityLog for testing.
type mockActivityLog struct {
	entries   []*secondary.ActivityRecord
	appendErr error
}

func (m *mockActivityLog) Append(ctx context.Context, entry *secondary.ActivityRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockActivityLog) ListForWorry(ctx context.Context, worryID string) ([]*secondary.ActivityRecord, error) {
	var out []*secondary.ActivityRecord
	for _, e := range m.entries {
		if e.WorryID == worryID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockActivityLog) Prune(ctx context.Context, before time.Time) (int, error) {
	kept := m.entries[:0]
	removed := 0
	for _, e := range m.entries {
		if e.CreatedAt.Before(before) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	m.entries = kept
	return removed, nil
}

// testClock is a settable clock.
type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// idSequence hands out deterministic worry and notification ids.
type idSequence struct {
	worries       int
	notifications int32
}

func (q *idSequence) nextID() string {
	q.worries++
	return fmt.Sprintf("w-%d", q.worries)
}

func (q *idSequence) nextNotificationID() int32 {
	q.notifications++
	return 100 + q.notifications
}

// worryFixture bundles a service with its mocks.
type worryFixture struct {
	svc      *WorryServiceImpl
	store    *mockKVStore
	sched    *mockScheduler
	prefs    *mockPreferencesService
	stats    *mockStatsService
	activity *mockActivityLog
	clock    *testClock
	ids      *idSequence
}

var testNow = time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)

func newWorryFixture(t *testing.T) *worryFixture {
	t.Helper()
	f := &worryFixture{
		store:    newMockKVStore(),
		sched:    newMockScheduler(),
		prefs:    newMockPreferencesService(),
		stats:    newMockStatsService(),
		activity: &mockActivityLog{},
		clock:    &testClock{t: testNow},
		ids:      &idSequence{},
	}
	f.svc = f.newService()
	return f
}

// newService builds a service over the fixture's store and scheduler,
// as a restarted process would.
func (f *worryFixture) newService() *WorryServiceImpl {
	return NewWorryService(f.store, f.sched,
		WithPreferences(f.prefs),
		WithStats(f.stats),
		WithActivityLog(f.activity),
		WithClock(f.clock.Now),
		WithIDGenerators(f.ids.nextID, f.ids.nextNotificationID),
	)
}
