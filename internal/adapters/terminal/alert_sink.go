// Package terminal shows due notifications on a terminal.
package terminal

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/example/worrybox/internal/ports/secondary"
)

// AlertSink implements secondary.AlertSink by printing to a writer.
type AlertSink struct {
	mu  sync.Mutex
	out io.Writer
}

// NewAlertSink creates a sink writing to out.
func NewAlertSink(out io.Writer) *AlertSink {
	return &AlertSink{out: out}
}

// Alert prints a notification with the follow-up commands for it.
func (s *AlertSink) Alert(ctx context.Context, n *secondary.ScheduledNotificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	title := color.New(color.FgYellow, color.Bold).Sprint(n.Title)
	if _, err := fmt.Fprintf(s.out, "🔔 %s\n   %s\n", title, n.Body); err != nil {
		return fmt.Errorf("failed to write alert: %w", err)
	}
	if n.Action != "" {
		fmt.Fprintf(s.out, "   next step: %s\n", n.Action)
	}
	fmt.Fprintf(s.out, "   %s  worrybox notify done %s | snooze %s | open %s\n",
		color.New(color.FgCyan).Sprint("→"), n.WorryID, n.WorryID, n.WorryID)
	return nil
}

// Ensure AlertSink implements the interface
var _ secondary.AlertSink = (*AlertSink)(nil)
