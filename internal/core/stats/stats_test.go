package stats

import (
	"testing"
	"time"
)

func TestRecord(t *testing.T) {
	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.UTC)
	var s Stats
	s = Record(s, KindCreated, 1, now)
	s = Record(s, KindCreated, 1, now)
	s = Record(s, KindUnlocked, 3, now)
	s = Record(s, KindResolved, 1, now)

	if s.Created != 2 {
		t.Errorf("Created = %d, want 2", s.Created)
	}
	if s.Unlocked != 3 {
		t.Errorf("Unlocked = %d, want 3", s.Unlocked)
	}
	if s.Resolved != 1 {
		t.Errorf("Resolved = %d, want 1", s.Resolved)
	}
	if s.LastCheckInAt == nil || !s.LastCheckInAt.Equal(now) {
		t.Errorf("LastCheckInAt = %v, want %v", s.LastCheckInAt, now)
	}
}

func TestRecord_DoesNotMutateInput(t *testing.T) {
	before := Stats{Created: 1}
	_ = Record(before, KindCreated, 1, time.Now())
	if before.Created != 1 || before.LastCheckInAt != nil {
		t.Errorf("input mutated: %+v", before)
	}
}

func TestResolutionRate(t *testing.T) {
	tests := []struct {
		name string
		s    Stats
		want float64
	}{
		{"nothing closed", Stats{Created: 3}, 0},
		{"all resolved", Stats{Resolved: 2}, 1},
		{"half", Stats{Resolved: 1, Dismissed: 1}, 0.5},
		{"releases ignored", Stats{Resolved: 1, Dismissed: 3, Released: 10}, 0.25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolutionRate(tt.s); got != tt.want {
				t.Errorf("ResolutionRate() = %v, want %v", got, tt.want)
			}
		})
	}
}
