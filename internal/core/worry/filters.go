package worry

import (
	"sort"
	"time"
)

// Filter selects worries for a read-only view.
type Filter func(Worry) bool

// Select returns copies of the worries matching f, in input order.
func Select(ws []Worry, f Filter) []Worry {
	out := make([]Worry, 0, len(ws))
	for _, w := range ws {
		if f(w) {
			out = append(out, w.Clone())
		}
	}
	return out
}

// ByStatus matches worries in status s.
func ByStatus(s Status) Filter {
	return func(w Worry) bool { return w.Status == s }
}

// IsDismissedNotReleased matches dismissed worries that did not come from release.
func IsDismissedNotReleased(w Worry) bool {
	return w.Status == StatusDismissed && !w.IsReleased()
}

// IsReleased matches worries created through release.
func IsReleased(w Worry) bool {
	return w.IsReleased()
}

// DueForUnlock matches locked worries whose unlock time has passed.
func DueForUnlock(now time.Time) Filter {
	return func(w Worry) bool {
		return CanAutoUnlock(AutoUnlockContext{Status: w.Status, UnlockAt: w.UnlockAt, Now: now}).Allowed
	}
}

// View names the filtered views exposed to callers.
type View string

const (
	ViewAll       View = "all"
	ViewLocked    View = "locked"
	ViewUnlocked  View = "unlocked"
	ViewResolved  View = "resolved"
	ViewDismissed View = "dismissed"
	ViewReleased  View = "released"
)

// FilterFor returns the filter backing a view, or false for an unknown name.
func FilterFor(v View) (Filter, bool) {
	switch v {
	case ViewAll, "":
		return func(Worry) bool { return true }, true
	case ViewLocked:
		return ByStatus(StatusLocked), true
	case ViewUnlocked:
		return ByStatus(StatusUnlocked), true
	case ViewResolved:
		return ByStatus(StatusResolved), true
	case ViewDismissed:
		return IsDismissedNotReleased, true
	case ViewReleased:
		return IsReleased, true
	}
	return nil, false
}

// SortByUnlockAt orders worries by unlock time, earliest first, ties by creation.
func SortByUnlockAt(ws []Worry) {
	sort.SliceStable(ws, func(i, j int) bool {
		if ws[i].UnlockAt.Equal(ws[j].UnlockAt) {
			return ws[i].CreatedAt.Before(ws[j].CreatedAt)
		}
		return ws[i].UnlockAt.Before(ws[j].UnlockAt)
	})
}

// Counts is a per-view tally over a collection.
type Counts struct {
	Total     int
	Locked    int
	Unlocked  int
	Resolved  int
	Dismissed int // excludes released
	Released  int
}

// Summarize tallies a collection into Counts.
func Summarize(ws []Worry) Counts {
	var c Counts
	for _, w := range ws {
		c.Total++
		switch {
		case w.Status == StatusLocked:
			c.Locked++
		case w.Status == StatusUnlocked:
			c.Unlocked++
		case w.Status == StatusResolved:
			c.Resolved++
		case w.IsReleased():
			c.Released++
		case w.Status == StatusDismissed:
			c.Dismissed++
		}
	}
	return c
}
