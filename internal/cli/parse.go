package cli

import (
	"fmt"
	"strings"
	"time"
)

// Layouts accepted by --at, tried in order. Layouts without a zone are
// read in local time.
var atLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseUnlockAt resolves the --at / --in flags. Both empty yields the zero
// time, which lets the service apply the preferred default delay.
func parseUnlockAt(at, in string, now time.Time) (time.Time, error) {
	if at != "" && in != "" {
		return time.Time{}, fmt.Errorf("use either --at or --in, not both")
	}
	if in != "" {
		d, err := time.ParseDuration(in)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --in %q: %w", in, err)
		}
		if d <= 0 {
			return time.Time{}, fmt.Errorf("--in must be positive (got %s)", d)
		}
		return now.Add(d), nil
	}
	if at == "" {
		return time.Time{}, nil
	}
	for _, layout := range atLayouts {
		if t, err := time.ParseInLocation(layout, at, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --at %q (want RFC3339 or \"2006-01-02 15:04\")", at)
}

// parseTags splits a comma-separated tag list, dropping empty entries.
func parseTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
