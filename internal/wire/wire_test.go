package wire

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/example/worrybox/internal/adapters/filesystem"
	"github.com/example/worrybox/internal/adapters/memory"
	"github.com/example/worrybox/internal/adapters/sqlite"
	"github.com/example/worrybox/internal/config"
	"github.com/example/worrybox/internal/db"
	"github.com/example/worrybox/internal/ports/secondary"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(":memory:", zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestOpenStore(t *testing.T) {
	database := openTestDB(t)

	tests := []struct {
		driver string
		check  func(t *testing.T, s any)
	}{
		{driver: config.DriverSQLite, check: func(t *testing.T, s any) {
			if _, ok := s.(*sqlite.KeyValueStore); !ok {
				t.Errorf("store = %T, want *sqlite.KeyValueStore", s)
			}
		}},
		{driver: config.DriverFS, check: func(t *testing.T, s any) {
			if _, ok := s.(*filesystem.KeyValueStore); !ok {
				t.Errorf("store = %T, want *filesystem.KeyValueStore", s)
			}
		}},
		{driver: config.DriverMemory, check: func(t *testing.T, s any) {
			if _, ok := s.(*memory.KeyValueStore); !ok {
				t.Errorf("store = %T, want *memory.KeyValueStore", s)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			c := config.Default()
			c.DataDir = t.TempDir()
			c.Store.Driver = tt.driver

			s, closeFn, err := OpenStore(context.Background(), c, database)
			if err != nil {
				t.Fatalf("OpenStore() error = %v", err)
			}
			if closeFn != nil {
				t.Errorf("OpenStore(%s) returned a close func, want nil", tt.driver)
			}
			tt.check(t, s)

			if err := s.Set(context.Background(), "worries", []byte(`[]`)); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, ok, err := s.Get(context.Background(), "worries")
			if err != nil || !ok || string(got) != "[]" {
				t.Errorf("Get() = %q, %v, %v, want [] true nil", got, ok, err)
			}
		})
	}
}

func TestOpenStore_Errors(t *testing.T) {
	database := openTestDB(t)

	for _, driver := range []string{"redis", config.DriverPostgres, config.DriverS3} {
		t.Run(driver, func(t *testing.T) {
			c := config.Default()
			c.Store.Driver = driver
			if _, _, err := OpenStore(context.Background(), c, database); err == nil {
				t.Errorf("OpenStore(%s) with no connection settings should fail", driver)
			}
		})
	}
}

type stubSink struct {
	err   error
	calls int
}

func (s *stubSink) Alert(ctx context.Context, n *secondary.ScheduledNotificationRecord) error {
	s.calls++
	return s.err
}

func TestFanoutSink(t *testing.T) {
	logger = zerolog.Nop()
	n := &secondary.ScheduledNotificationRecord{ID: 1, WorryID: "w-1"}

	primarySink, extra := &stubSink{}, &stubSink{err: errors.New("tmux gone")}
	if err := (fanoutSink{primarySink, extra}).Alert(context.Background(), n); err != nil {
		t.Errorf("Alert() = %v, want nil when only a secondary sink fails", err)
	}
	if primarySink.calls != 1 || extra.calls != 1 {
		t.Errorf("calls = %d, %d, want 1, 1", primarySink.calls, extra.calls)
	}

	failing, extra := &stubSink{err: errors.New("closed")}, &stubSink{}
	if err := (fanoutSink{failing, extra}).Alert(context.Background(), n); err == nil {
		t.Error("Alert() = nil, want the primary sink's error")
	}
	if extra.calls != 0 {
		t.Error("secondary sinks should not run after the primary fails")
	}
}
