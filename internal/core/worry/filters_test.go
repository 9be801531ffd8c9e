package worry

import (
	"testing"
	"time"
)

func sampleCollection() []Worry {
	released := fixedNow
	return []Worry{
		{ID: "a", Status: StatusLocked, UnlockAt: fixedNow.Add(-time.Hour)},
		{ID: "b", Status: StatusLocked, UnlockAt: fixedNow.Add(time.Hour)},
		{ID: "c", Status: StatusUnlocked},
		{ID: "d", Status: StatusResolved},
		{ID: "e", Status: StatusDismissed},
		{ID: "f", Status: StatusDismissed, ReleasedAt: &released},
	}
}

func ids(ws []Worry) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.ID
	}
	return out
}

func TestFilterFor(t *testing.T) {
	tests := []struct {
		view View
		want []string
	}{
		{ViewAll, []string{"a", "b", "c", "d", "e", "f"}},
		{ViewLocked, []string{"a", "b"}},
		{ViewUnlocked, []string{"c"}},
		{ViewResolved, []string{"d"}},
		{ViewDismissed, []string{"e"}},
		{ViewReleased, []string{"f"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.view), func(t *testing.T) {
			f, ok := FilterFor(tt.view)
			if !ok {
				t.Fatalf("FilterFor(%q) not found", tt.view)
			}
			got := ids(Select(sampleCollection(), f))
			if len(got) != len(tt.want) {
				t.Fatalf("Select() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Select()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}

	if _, ok := FilterFor("archived"); ok {
		t.Error(`FilterFor("archived") found, want unknown`)
	}
}

func TestDueForUnlock(t *testing.T) {
	got := ids(Select(sampleCollection(), DueForUnlock(fixedNow)))
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("DueForUnlock() = %v, want [a]", got)
	}
}

func TestSelect_ReturnsCopies(t *testing.T) {
	ws := []Worry{{ID: "a", Status: StatusLocked, Tags: []string{"x"}}}
	out := Select(ws, ByStatus(StatusLocked))
	out[0].Tags[0] = "changed"
	if ws[0].Tags[0] != "x" {
		t.Error("Select() shares tag slice with input")
	}
}

func TestSummarize(t *testing.T) {
	c := Summarize(sampleCollection())
	want := Counts{Total: 6, Locked: 2, Unlocked: 1, Resolved: 1, Dismissed: 1, Released: 1}
	if c != want {
		t.Errorf("Summarize() = %+v, want %+v", c, want)
	}
}

func TestSortByUnlockAt(t *testing.T) {
	ws := []Worry{
		{ID: "late", UnlockAt: fixedNow.Add(2 * time.Hour)},
		{ID: "early", UnlockAt: fixedNow},
		{ID: "tie-second", UnlockAt: fixedNow.Add(time.Hour), CreatedAt: fixedNow.Add(time.Minute)},
		{ID: "tie-first", UnlockAt: fixedNow.Add(time.Hour), CreatedAt: fixedNow},
	}
	SortByUnlockAt(ws)
	want := []string{"early", "tie-first", "tie-second", "late"}
	for i, id := range ids(ws) {
		if id != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, id, want[i])
		}
	}
}
