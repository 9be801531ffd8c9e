package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/worrybox/internal/core/effects"
	"github.com/example/worrybox/internal/core/stats"
	"github.com/example/worrybox/internal/core/worry"
	"github.com/example/worrybox/internal/ports/primary"
	"github.com/example/worrybox/internal/ports/secondary"
)

// StatsServiceImpl implements the StatsService interface.
// Counter writes are best effort: a failure is logged and never surfaces to
// the lifecycle operation that triggered it.
type StatsServiceImpl struct {
	mu       sync.Mutex
	store    secondary.KeyValueStore
	executor EffectExecutor
	logger   zerolog.Logger
	now      func() time.Time
}

// NewStatsService creates a new StatsService with injected dependencies.
func NewStatsService(store secondary.KeyValueStore, logger zerolog.Logger) *StatsServiceImpl {
	return &StatsServiceImpl{
		store:    store,
		executor: NewEffectExecutor(store, nil, logger),
		logger:   logger,
		now:      time.Now,
	}
}

// Record bumps a counter.
func (s *StatsServiceImpl) Record(ctx context.Context, kind stats.Kind, n int) {
	if n <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.read(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("failed to read stats")
		return
	}
	next := stats.Record(current, kind, n, s.now().UTC().Truncate(time.Millisecond))
	if err := s.executor.Execute(ctx, []effects.Effect{effects.PersistEffect{Key: secondary.KeyStats, Data: next}}); err != nil {
		s.logger.Warn().Err(err).Str("kind", string(kind)).Msg("failed to write stats")
	}
}

func (s *StatsServiceImpl) read(ctx context.Context) (stats.Stats, error) {
	var st stats.Stats
	data, ok, err := s.store.Get(ctx, secondary.KeyStats)
	if err != nil {
		return st, &PersistenceError{Op: "get", Key: secondary.KeyStats, Err: err}
	}
	if !ok {
		return st, nil
	}
	if err := decodeJSON(data, &st); err != nil {
		s.logger.Warn().Err(err).Msg("stored stats are unreadable, starting from zero")
		return stats.Stats{}, nil
	}
	return st, nil
}

// Summary combines stored counters with live per-view counts taken from the
// stored worries document.
func (s *StatsServiceImpl) Summary(ctx context.Context) (*primary.StatsSummary, error) {
	s.mu.Lock()
	counters, err := s.read(ctx)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var ws []worry.Worry
	data, ok, err := s.store.Get(ctx, secondary.KeyWorries)
	if err != nil {
		return nil, &PersistenceError{Op: "get", Key: secondary.KeyWorries, Err: err}
	}
	if ok {
		if err := decodeJSON(data, &ws); err != nil {
			return nil, err
		}
	}

	return &primary.StatsSummary{
		Counters:       counters,
		Live:           worry.Summarize(ws),
		ResolutionRate: stats.ResolutionRate(counters),
	}, nil
}

// Ensure StatsServiceImpl implements the interface
var _ primary.StatsService = (*StatsServiceImpl)(nil)
