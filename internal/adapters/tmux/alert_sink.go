// Package tmux shows due notifications inside a running tmux server: a
// transient status-line message plus a window option that status formats
// can reference as #{@worrybox_alert}.
package tmux

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/GianlucaP106/gotmux/gotmux"

	"github.com/example/worrybox/internal/ports/secondary"
)

// AlertOption is the window option holding the latest alert text.
const AlertOption = "@worrybox_alert"

// displayMillis is how long display-message keeps the alert on screen.
const displayMillis = "8000"

// windowTagger sets an option on the windows of a session ("" means every session).
type windowTagger interface {
	TagWindows(session, key, value string) error
}

// AlertSink implements secondary.AlertSink on tmux.
type AlertSink struct {
	tagger  windowTagger
	session string
	run     func(args ...string) error
}

// NewAlertSink connects to the default tmux server. When session is empty
// every session is tagged.
func NewAlertSink(session string) (*AlertSink, error) {
	t, err := gotmux.DefaultTmux()
	if err != nil {
		return nil, fmt.Errorf("failed to create tmux client: %w", err)
	}
	return &AlertSink{
		tagger:  &gotmuxTagger{tmux: t},
		session: session,
		run:     runTmux,
	}, nil
}

// Alert tags the session's windows and flashes the message on attached clients.
func (s *AlertSink) Alert(ctx context.Context, n *secondary.ScheduledNotificationRecord) error {
	msg := FormatAlert(n)
	if err := s.tagger.TagWindows(s.session, AlertOption, msg); err != nil {
		return fmt.Errorf("failed to tag tmux windows: %w", err)
	}
	args := []string{"display-message", "-d", displayMillis}
	if s.session != "" {
		args = append(args, "-t", s.session)
	}
	if err := s.run(append(args, escapeFormat(msg))...); err != nil {
		return fmt.Errorf("failed to display tmux message: %w", err)
	}
	return nil
}

// FormatAlert renders n as a single status-line message.
func FormatAlert(n *secondary.ScheduledNotificationRecord) string {
	body := strings.Join(strings.Fields(n.Body), " ")
	return fmt.Sprintf("🔔 %s: %s (worrybox notify open %s)", n.Title, body, n.WorryID)
}

// escapeFormat keeps tmux from expanding #{...} sequences in user text.
func escapeFormat(s string) string {
	return strings.ReplaceAll(s, "#", "##")
}

func runTmux(args ...string) error {
	out, err := exec.Command("tmux", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("tmux %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return nil
}

// gotmuxTagger tags windows through the gotmux client.
type gotmuxTagger struct {
	tmux *gotmux.Tmux
}

func (g *gotmuxTagger) TagWindows(session, key, value string) error {
	sessions, err := g.tmux.ListSessions()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	found := false
	for _, sess := range sessions {
		if session != "" && sess.Name != session {
			continue
		}
		found = true
		windows, err := sess.ListWindows()
		if err != nil {
			return fmt.Errorf("failed to list windows of %s: %w", sess.Name, err)
		}
		for _, w := range windows {
			if err := w.SetOption(key, value); err != nil {
				return fmt.Errorf("failed to set %s on %s: %w", key, sess.Name, err)
			}
		}
	}
	if !found {
		if session != "" {
			return fmt.Errorf("tmux session %q not found", session)
		}
		return fmt.Errorf("no tmux sessions running")
	}
	return nil
}

// Ensure AlertSink implements the interface
var _ secondary.AlertSink = (*AlertSink)(nil)
