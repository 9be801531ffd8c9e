package primary

import (
	"context"

	"github.com/example/worrybox/internal/core/stats"
	"github.com/example/worrybox/internal/core/worry"
)

// StatsService defines the primary port for usage statistics.
type StatsService interface {
	// Record bumps a counter. Failures are logged, never returned.
	Record(ctx context.Context, kind stats.Kind, n int)

	// Summary combines stored counters with live per-view counts.
	Summary(ctx context.Context) (*StatsSummary, error)
}

// StatsSummary is the combined statistics view.
type StatsSummary struct {
	Counters       stats.Stats
	Live           worry.Counts
	ResolutionRate float64
}
