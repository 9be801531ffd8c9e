package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/worrybox/internal/core/preferences"
	"github.com/example/worrybox/internal/ports/secondary"
)

func newTestPreferencesService() (*PreferencesServiceImpl, *mockKVStore) {
	store := newMockKVStore()
	return NewPreferencesService(store, zerolog.Nop()), store
}

func TestPreferencesService_Get_Defaults(t *testing.T) {
	svc, _ := newTestPreferencesService()

	got, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != preferences.Defaults() {
		t.Errorf("Get() = %+v, want defaults", got)
	}
}

func TestPreferencesService_Get_FillsMissingFields(t *testing.T) {
	svc, store := newTestPreferencesService()
	store.data[secondary.KeyPreferences] = []byte(`{"snoozeDuration":"30m","notificationsEnabled":false}`)

	got, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.SnoozeDuration.Std() != 30*time.Minute {
		t.Errorf("SnoozeDuration = %v, want 30m", got.SnoozeDuration.Std())
	}
	if got.NotificationsEnabled {
		t.Error("NotificationsEnabled = true, want stored false")
	}
	if got.DefaultUnlockDelay != preferences.Defaults().DefaultUnlockDelay {
		t.Errorf("DefaultUnlockDelay = %v, want default", got.DefaultUnlockDelay.Std())
	}
	if got.Theme != preferences.ThemeSystem {
		t.Errorf("Theme = %q, want system", got.Theme)
	}
}

func TestPreferencesService_Get_Corrupt(t *testing.T) {
	svc, store := newTestPreferencesService()
	store.data[secondary.KeyPreferences] = []byte(`{not json`)

	got, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v, want defaults without error", err)
	}
	if got != preferences.Defaults() {
		t.Errorf("Get() = %+v, want defaults", got)
	}
}

func TestPreferencesService_Get_StoreFailure(t *testing.T) {
	svc, store := newTestPreferencesService()
	store.getErr = errBoom

	_, err := svc.Get(context.Background())

	var persistErr *PersistenceError
	if !errors.As(err, &persistErr) {
		t.Errorf("Get() error = %v, want *PersistenceError", err)
	}
}

func TestPreferencesService_Update(t *testing.T) {
	delay := 3 * time.Hour
	zero := time.Duration(0)
	dark := preferences.ThemeDark
	neon := preferences.Theme("neon")

	tests := []struct {
		name    string
		update  preferences.Update
		wantErr bool
		check   func(t *testing.T, p preferences.Preferences)
	}{
		{
			name:   "default delay",
			update: preferences.Update{DefaultUnlockDelay: &delay},
			check: func(t *testing.T, p preferences.Preferences) {
				if p.DefaultUnlockDelay.Std() != delay {
					t.Errorf("DefaultUnlockDelay = %v, want %v", p.DefaultUnlockDelay.Std(), delay)
				}
			},
		},
		{
			name:   "theme",
			update: preferences.Update{Theme: &dark},
			check: func(t *testing.T, p preferences.Preferences) {
				if p.Theme != preferences.ThemeDark {
					t.Errorf("Theme = %q, want dark", p.Theme)
				}
			},
		},
		{name: "zero snooze", update: preferences.Update{SnoozeDuration: &zero}, wantErr: true},
		{name: "unknown theme", update: preferences.Update{Theme: &neon}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestPreferencesService()

			got, err := svc.Update(context.Background(), tt.update)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Update() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if store.setCalls[secondary.KeyPreferences] != 0 {
					t.Error("invalid update was written")
				}
				return
			}
			tt.check(t, got)

			reread, _ := svc.Get(context.Background())
			if reread != got {
				t.Errorf("Get() after Update = %+v, want %+v", reread, got)
			}
		})
	}
}

func TestPreferencesService_Update_WriteFailure(t *testing.T) {
	svc, store := newTestPreferencesService()
	store.setErr[secondary.KeyPreferences] = errBoom
	dark := preferences.ThemeDark

	got, err := svc.Update(context.Background(), preferences.Update{Theme: &dark})

	if !errors.Is(err, errBoom) {
		t.Errorf("Update() error = %v, want errBoom", err)
	}
	if got.Theme != preferences.ThemeSystem {
		t.Errorf("Update() returned %q, want previous value", got.Theme)
	}
}

func TestPreferencesService_Reset(t *testing.T) {
	svc, _ := newTestPreferencesService()
	ctx := context.Background()
	dark := preferences.ThemeDark
	if _, err := svc.Update(ctx, preferences.Update{Theme: &dark}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := svc.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if got != preferences.Defaults() {
		t.Errorf("Reset() = %+v, want defaults", got)
	}
	if reread, _ := svc.Get(ctx); reread.Theme != preferences.ThemeSystem {
		t.Errorf("Theme after reset = %q, want system", reread.Theme)
	}
}
