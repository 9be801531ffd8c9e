// Package cli contains the adapters that render service results for the terminal.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/example/worrybox/internal/core/worry"
	"github.com/example/worrybox/internal/ports/primary"
	"github.com/example/worrybox/internal/ports/secondary"
)

// TimeLayout is how timestamps are printed.
const TimeLayout = "2006-01-02 15:04"

// WorryAdapter is a thin adapter that translates CLI operations to WorryService calls.
// It depends only on port interfaces, enabling easy testing with mocks.
type WorryAdapter struct {
	service       primary.WorryService
	stats         primary.StatsService
	notifications secondary.NotificationLookup
	out           io.Writer
}

// NewWorryAdapter creates a new WorryAdapter.
func NewWorryAdapter(service primary.WorryService, stats primary.StatsService, out io.Writer) *WorryAdapter {
	return &WorryAdapter{
		service: service,
		stats:   stats,
		out:     out,
	}
}

// WithNotifications lets Show report the alert state of a locked worry.
func (a *WorryAdapter) WithNotifications(lookup secondary.NotificationLookup) *WorryAdapter {
	a.notifications = lookup
	return a
}

// settled prints the outcome of a mutating call. A call that returns both a
// worry and an error committed its change but could not update the
// notification; that is reported as a warning.
func (a *WorryAdapter) settled(w *worry.Worry, err error, verb string) (*worry.Worry, error) {
	if err != nil && w == nil {
		return nil, err
	}
	fmt.Fprintf(a.out, "%s %s %s: %s\n", color.GreenString("✓"), verb, w.ID, w.Content)
	if w.Status == worry.StatusLocked {
		fmt.Fprintf(a.out, "  unlocks %s\n", w.UnlockAt.Local().Format(TimeLayout))
	}
	if err != nil {
		fmt.Fprintf(a.out, "%s %v\n", color.YellowString("⚠"), err)
	}
	return w, nil
}

// Create records a new locked worry.
func (a *WorryAdapter) Create(ctx context.Context, req primary.CreateWorryRequest) (*worry.Worry, error) {
	w, err := a.service.Create(ctx, req)
	return a.settled(w, err, "Locked away")
}

// Release records a worry that is let go straight away.
func (a *WorryAdapter) Release(ctx context.Context, content string) (*worry.Worry, error) {
	w, err := a.service.Release(ctx, content)
	return a.settled(w, err, "Released")
}

// Edit applies a partial change.
func (a *WorryAdapter) Edit(ctx context.Context, req primary.EditWorryRequest) (*worry.Worry, error) {
	w, err := a.service.Edit(ctx, req)
	return a.settled(w, err, "Updated")
}

// Resolve closes an unlocked worry.
func (a *WorryAdapter) Resolve(ctx context.Context, id, note string) (*worry.Worry, error) {
	w, err := a.service.Resolve(ctx, id, note)
	return a.settled(w, err, "Resolved")
}

// Dismiss closes a worry without resolution.
func (a *WorryAdapter) Dismiss(ctx context.Context, id string) (*worry.Worry, error) {
	w, err := a.service.Dismiss(ctx, id)
	return a.settled(w, err, "Dismissed")
}

// Snooze relocks a worry for d.
func (a *WorryAdapter) Snooze(ctx context.Context, id string, d time.Duration) (*worry.Worry, error) {
	w, err := a.service.Snooze(ctx, id, d)
	return a.settled(w, err, "Snoozed")
}

// Unlock opens a locked worry early.
func (a *WorryAdapter) Unlock(ctx context.Context, id string) (*worry.Worry, error) {
	w, err := a.service.UnlockNow(ctx, id)
	return a.settled(w, err, "Unlocked")
}

// Delete removes a worry.
func (a *WorryAdapter) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := a.service.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if !removed {
		fmt.Fprintf(a.out, "No worry %s, nothing deleted.\n", id)
		return false, nil
	}
	fmt.Fprintf(a.out, "%s Deleted worry %s\n", color.GreenString("✓"), id)
	return true, nil
}

// Check unlocks everything that is due and lists what was unlocked.
func (a *WorryAdapter) Check(ctx context.Context) ([]*worry.Worry, error) {
	unlocked, err := a.service.CheckAndUnlockExpired(ctx)
	if len(unlocked) == 0 && err == nil {
		fmt.Fprintln(a.out, "Nothing to unlock.")
		return nil, nil
	}
	for _, w := range unlocked {
		fmt.Fprintf(a.out, "%s Unlocked %s: %s\n", color.GreenString("✓"), w.ID, w.Content)
	}
	if err != nil {
		return unlocked, fmt.Errorf("some worries stayed locked: %w", err)
	}
	return unlocked, nil
}

// List prints the worries in a view as a table.
func (a *WorryAdapter) List(ctx context.Context, view worry.View) ([]*worry.Worry, error) {
	worries, err := a.service.List(ctx, view)
	if err != nil {
		return nil, fmt.Errorf("failed to list worries: %w", err)
	}

	if len(worries) == 0 {
		fmt.Fprintln(a.out, "No worries found.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Put one in the box:")
		fmt.Fprintln(a.out, `  worrybox add "the thing on my mind" --in 2h`)
		return worries, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tUNLOCKS\tCONTENT")
	fmt.Fprintln(w, "--\t------\t-------\t-------")
	for _, wr := range worries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			wr.ID,
			statusLabel(wr),
			wr.UnlockAt.Local().Format(TimeLayout),
			truncate(wr.Content, 48),
		)
	}
	w.Flush()
	return worries, nil
}

// Show displays details for a single worry.
func (a *WorryAdapter) Show(ctx context.Context, id string) (*worry.Worry, error) {
	w, err := a.service.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get worry: %w", err)
	}

	fmt.Fprintf(a.out, "\nWorry: %s\n", w.ID)
	fmt.Fprintf(a.out, "Content:  %s\n", w.Content)
	if w.Action != "" {
		fmt.Fprintf(a.out, "Action:   %s\n", w.Action)
	}
	fmt.Fprintf(a.out, "Status:   %s\n", statusLabel(w))
	fmt.Fprintf(a.out, "Created:  %s\n", w.CreatedAt.Local().Format(TimeLayout))
	fmt.Fprintf(a.out, "Unlocks:  %s\n", w.UnlockAt.Local().Format(TimeLayout))
	if line := a.alertLine(ctx, w); line != "" {
		fmt.Fprintf(a.out, "Alert:    %s\n", line)
	}
	if w.SnoozeCount > 0 {
		fmt.Fprintf(a.out, "Snoozed:  %d time(s)\n", w.SnoozeCount)
	}
	if w.Category != "" {
		fmt.Fprintf(a.out, "Category: %s\n", w.Category)
	}
	if len(w.Tags) > 0 {
		fmt.Fprintf(a.out, "Tags:     %s\n", strings.Join(w.Tags, ", "))
	}
	if w.ResolutionNote != "" {
		fmt.Fprintf(a.out, "Note:     %s\n", w.ResolutionNote)
	}
	if w.BestOutcome != "" {
		fmt.Fprintf(a.out, "Best outcome: %s\n", w.BestOutcome)
	}
	if w.TalkedToSomeone != nil {
		fmt.Fprintf(a.out, "Talked to someone: %t\n", *w.TalkedToSomeone)
	}
	fmt.Fprintln(a.out)
	return w, nil
}

func (a *WorryAdapter) alertLine(ctx context.Context, w *worry.Worry) string {
	if a.notifications == nil || !w.HasLiveNotification() {
		return ""
	}
	n, err := a.notifications.GetByID(ctx, w.NotificationID)
	if err != nil {
		return fmt.Sprintf("#%d (not queued)", w.NotificationID)
	}
	if n.DeliveredAt != nil {
		return fmt.Sprintf("#%d %s at %s", n.ID, n.Status, n.DeliveredAt.Local().Format(TimeLayout))
	}
	return fmt.Sprintf("#%d %s for %s", n.ID, n.Status, n.FireAt.Local().Format(TimeLayout))
}

// History prints the activity trail of a worry.
func (a *WorryAdapter) History(ctx context.Context, id string) ([]*primary.Activity, error) {
	entries, err := a.service.History(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintf(a.out, "No history recorded for %s.\n", id)
		return entries, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "WHEN\tACTION\tSOURCE\tCHANGE\tDETAIL")
	for _, e := range entries {
		change := e.ToStatus
		if e.FromStatus != "" && e.FromStatus != e.ToStatus {
			change = e.FromStatus + " → " + e.ToStatus
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.At.Local().Format(TimeLayout), e.Action, e.Source, change, e.Detail)
	}
	w.Flush()
	return entries, nil
}

// PruneHistory deletes activity entries older than olderThan.
func (a *WorryAdapter) PruneHistory(ctx context.Context, olderThan time.Duration) (int, error) {
	n, err := a.service.PruneHistory(ctx, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	fmt.Fprintf(a.out, "%s Pruned %d history entries\n", color.GreenString("✓"), n)
	return n, nil
}

// Stats prints the counters and live counts.
func (a *WorryAdapter) Stats(ctx context.Context) (*primary.StatsSummary, error) {
	s, err := a.stats.Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "In the box now\t")
	fmt.Fprintf(w, "  locked\t%d\n", s.Live.Locked)
	fmt.Fprintf(w, "  unlocked\t%d\n", s.Live.Unlocked)
	fmt.Fprintf(w, "  resolved\t%d\n", s.Live.Resolved)
	fmt.Fprintf(w, "  dismissed\t%d\n", s.Live.Dismissed)
	fmt.Fprintf(w, "  released\t%d\n", s.Live.Released)
	fmt.Fprintln(w, "All time\t")
	fmt.Fprintf(w, "  created\t%d\n", s.Counters.Created)
	fmt.Fprintf(w, "  snoozed\t%d\n", s.Counters.Snoozed)
	fmt.Fprintf(w, "  unlocked\t%d\n", s.Counters.Unlocked)
	fmt.Fprintf(w, "  deleted\t%d\n", s.Counters.Deleted)
	fmt.Fprintf(w, "Resolution rate\t%.0f%%\n", s.ResolutionRate*100)
	w.Flush()
	return s, nil
}

// Export formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat is returned by Export for an unsupported format.
var ErrUnknownFormat = errors.New("unknown export format")

// exportDoc is the archive written by Export.
type exportDoc struct {
	ExportedAt time.Time      `json:"exportedAt" yaml:"exported_at"`
	Worries    []exportWorry  `json:"worries" yaml:"worries"`
	Stats      *exportSummary `json:"stats,omitempty" yaml:"stats,omitempty"`
}

type exportWorry struct {
	ID              string     `json:"id" yaml:"id"`
	Content         string     `json:"content" yaml:"content"`
	Action          string     `json:"action,omitempty" yaml:"action,omitempty"`
	Status          string     `json:"status" yaml:"status"`
	Released        bool       `json:"released,omitempty" yaml:"released,omitempty"`
	CreatedAt       time.Time  `json:"createdAt" yaml:"created_at"`
	UnlockAt        time.Time  `json:"unlockAt" yaml:"unlock_at"`
	ClosedAt        *time.Time `json:"closedAt,omitempty" yaml:"closed_at,omitempty"`
	ResolutionNote  string     `json:"resolutionNote,omitempty" yaml:"resolution_note,omitempty"`
	SnoozeCount     int        `json:"snoozeCount,omitempty" yaml:"snooze_count,omitempty"`
	Category        string     `json:"category,omitempty" yaml:"category,omitempty"`
	Tags            []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	BestOutcome     string     `json:"bestOutcome,omitempty" yaml:"best_outcome,omitempty"`
	TalkedToSomeone *bool      `json:"talkedToSomeone,omitempty" yaml:"talked_to_someone,omitempty"`
}

type exportSummary struct {
	Created        int     `json:"created" yaml:"created"`
	Resolved       int     `json:"resolved" yaml:"resolved"`
	Dismissed      int     `json:"dismissed" yaml:"dismissed"`
	Released       int     `json:"released" yaml:"released"`
	Snoozed        int     `json:"snoozed" yaml:"snoozed"`
	ResolutionRate float64 `json:"resolutionRate" yaml:"resolution_rate"`
}

// Export writes every worry and the stats summary to the adapter's output.
func (a *WorryAdapter) Export(ctx context.Context, format string, now time.Time) error {
	worries, err := a.service.List(ctx, worry.ViewAll)
	if err != nil {
		return fmt.Errorf("failed to list worries: %w", err)
	}

	doc := exportDoc{ExportedAt: now.UTC(), Worries: make([]exportWorry, len(worries))}
	for i, w := range worries {
		doc.Worries[i] = toExport(w)
	}
	if a.stats != nil {
		s, err := a.stats.Summary(ctx)
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}
		doc.Stats = &exportSummary{
			Created:        s.Counters.Created,
			Resolved:       s.Counters.Resolved,
			Dismissed:      s.Counters.Dismissed,
			Released:       s.Counters.Released,
			Snoozed:        s.Counters.Snoozed,
			ResolutionRate: s.ResolutionRate,
		}
	}

	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w %q (want json or yaml)", ErrUnknownFormat, format)
	}
}

func toExport(w *worry.Worry) exportWorry {
	out := exportWorry{
		ID:              w.ID,
		Content:         w.Content,
		Action:          w.Action,
		Status:          string(w.Status),
		Released:        w.IsReleased(),
		CreatedAt:       w.CreatedAt,
		UnlockAt:        w.UnlockAt,
		ResolutionNote:  w.ResolutionNote,
		SnoozeCount:     w.SnoozeCount,
		Category:        w.Category,
		Tags:            w.Tags,
		BestOutcome:     w.BestOutcome,
		TalkedToSomeone: w.TalkedToSomeone,
	}
	switch {
	case w.ResolvedAt != nil:
		out.ClosedAt = w.ResolvedAt
	case w.DismissedAt != nil:
		out.ClosedAt = w.DismissedAt
	}
	return out
}

func statusLabel(w *worry.Worry) string {
	switch {
	case w.IsReleased():
		return color.CyanString("released")
	case w.Status == worry.StatusLocked:
		return color.BlueString("locked")
	case w.Status == worry.StatusUnlocked:
		return color.YellowString("unlocked")
	case w.Status == worry.StatusResolved:
		return color.GreenString("resolved")
	default:
		return string(w.Status)
	}
}

func truncate(s string, n int) string {
	r := []rune(strings.ReplaceAll(s, "\n", " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}
