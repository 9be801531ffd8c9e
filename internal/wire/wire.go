// Package wire provides dependency injection for the worrybox application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	cliadapter "github.com/example/worrybox/internal/adapters/cli"
	"github.com/example/worrybox/internal/adapters/filesystem"
	"github.com/example/worrybox/internal/adapters/httpapi"
	"github.com/example/worrybox/internal/adapters/memory"
	"github.com/example/worrybox/internal/adapters/postgres"
	"github.com/example/worrybox/internal/adapters/s3store"
	"github.com/example/worrybox/internal/adapters/sqlite"
	"github.com/example/worrybox/internal/adapters/terminal"
	tmuxadapter "github.com/example/worrybox/internal/adapters/tmux"
	"github.com/example/worrybox/internal/app"
	"github.com/example/worrybox/internal/config"
	"github.com/example/worrybox/internal/db"
	"github.com/example/worrybox/internal/logging"
	"github.com/example/worrybox/internal/metrics"
	"github.com/example/worrybox/internal/ports/primary"
	"github.com/example/worrybox/internal/ports/secondary"
)

var (
	homeDir string

	cfg                *config.Config
	logger             zerolog.Logger
	registry           *prometheus.Registry
	recorder           metrics.Recorder
	database           *sql.DB
	queue              *sqlite.NotificationQueue
	worryService       *app.WorryServiceImpl
	preferencesService primary.PreferencesService
	statsService       primary.StatsService
	actionService      primary.NotificationActionService
	closers            []func() error
	once               sync.Once
)

// SetHome overrides the settings directory. It must be called before any
// other function in this package.
func SetHome(dir string) {
	homeDir = dir
}

// Home returns the settings directory: the one given to SetHome, or ~/.worrybox.
func Home() (string, error) {
	if homeDir != "" {
		return homeDir, nil
	}
	return config.DefaultDir()
}

// Config returns the resolved configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the process logger.
func Logger() zerolog.Logger {
	once.Do(initServices)
	return logger
}

// WorryService returns the singleton WorryService instance.
func WorryService() primary.WorryService {
	once.Do(initServices)
	return worryService
}

// PreferencesService returns the singleton PreferencesService instance.
func PreferencesService() primary.PreferencesService {
	once.Do(initServices)
	return preferencesService
}

// StatsService returns the singleton StatsService instance.
func StatsService() primary.StatsService {
	once.Do(initServices)
	return statsService
}

// NotificationActionService returns the singleton NotificationActionService instance.
func NotificationActionService() primary.NotificationActionService {
	once.Do(initServices)
	return actionService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	dir, err := Home()
	if err != nil {
		fatal(err)
	}

	loaded, err := config.Load(dir)
	if err != nil {
		fatal(err)
	}
	cfg = loaded
	logger = logging.New(os.Stderr, cfg.LogLevel, cfg.LogPretty)

	registry = prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder = metrics.NewCollector(registry)

	// The sqlite database always backs the notification queue and the
	// activity history, whichever driver holds the documents.
	database, err = db.Open(db.DefaultPath(cfg.DataDir), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	closers = append(closers, database.Close)

	ctx := context.Background()
	store, closeStore, err := OpenStore(ctx, cfg, database)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}
	if closeStore != nil {
		closers = append(closers, closeStore)
	}

	queue = sqlite.NewNotificationQueue(database)
	activity := sqlite.NewActivityLog(database)

	// Create services (primary ports implementation)
	preferencesService = app.NewPreferencesService(store, logger)
	statsService = app.NewStatsService(store, logger)
	worryService = app.NewWorryService(store, queue,
		app.WithPreferences(preferencesService),
		app.WithStats(statsService),
		app.WithActivityLog(activity),
		app.WithMetrics(recorder),
		app.WithLogger(logger),
	)
	actionService = app.NewNotificationActionService(worryService, preferencesService, recorder, logger)

	if err := worryService.Load(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to load worries")
	}
}

// OpenStore selects the Persistence Port backend named by c.Store.Driver.
// The returned close function may be nil.
func OpenStore(ctx context.Context, c *config.Config, database *sql.DB) (secondary.KeyValueStore, func() error, error) {
	switch c.Store.Driver {
	case config.DriverSQLite, "":
		return sqlite.NewKeyValueStore(database), nil, nil
	case config.DriverFS:
		s, err := filesystem.NewKeyValueStore(c.DataDir)
		return s, nil, err
	case config.DriverMemory:
		return memory.NewKeyValueStore(), nil, nil
	case config.DriverPostgres:
		s, err := postgres.Open(ctx, c.Store.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.DriverS3:
		s, err := s3store.New(ctx, s3store.Config{
			Bucket:    c.Store.Bucket,
			Prefix:    c.Store.Prefix,
			Region:    c.Store.Region,
			Endpoint:  c.Store.Endpoint,
			PathStyle: c.Store.PathStyle,
		})
		return s, nil, err
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
}

// Close releases the database and store connections.
func Close() error {
	var first error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil && first == nil {
			first = err
		}
	}
	closers = nil
	return first
}

// WorryAdapter returns a new WorryAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func WorryAdapter() *cliadapter.WorryAdapter {
	return WorryAdapterWithOutput(os.Stdout)
}

// WorryAdapterWithOutput returns a new WorryAdapter writing to the given output.
func WorryAdapterWithOutput(out io.Writer) *cliadapter.WorryAdapter {
	once.Do(initServices)
	return cliadapter.NewWorryAdapter(worryService, statsService, out).WithNotifications(queue)
}

// Dispatcher returns a new NotificationDispatcher delivering to out, and to
// tmux when tmux alerts are enabled.
func Dispatcher(out io.Writer) *app.NotificationDispatcher {
	once.Do(initServices)
	var sink secondary.AlertSink = terminal.NewAlertSink(out)
	if cfg.TmuxAlerts {
		tmuxSink, err := tmuxadapter.NewAlertSink(cfg.TmuxSession)
		if err != nil {
			logger.Warn().Err(err).Msg("tmux alerts disabled")
		} else {
			sink = fanoutSink{sink, tmuxSink}
		}
	}
	return app.NewNotificationDispatcher(queue, sink, worryService, preferencesService,
		app.DispatcherConfig{
			Interval:  cfg.Interval(),
			Batch:     cfg.DispatchBatch,
			RateLimit: rate.Limit(cfg.DispatchRate),
			Burst:     cfg.DispatchBurst,
		},
		recorder, logger)
}

// HTTPHandler returns the HTTP router serving notification actions and worry views.
func HTTPHandler() http.Handler {
	once.Do(initServices)
	return httpapi.NewRouter(httpapi.Deps{
		Worries:   worryService,
		Actions:   actionService,
		Metrics:   recorder,
		Gatherer:  registry,
		Logger:    logger,
		RateLimit: rate.Limit(cfg.RateLimit),
		Burst:     cfg.RateBurst,
	})
}

// fanoutSink shows each alert on every sink. The first sink is primary: its
// failure fails the alert, later sinks only log.
type fanoutSink []secondary.AlertSink

func (f fanoutSink) Alert(ctx context.Context, n *secondary.ScheduledNotificationRecord) error {
	if err := f[0].Alert(ctx, n); err != nil {
		return err
	}
	for _, s := range f[1:] {
		if err := s.Alert(ctx, n); err != nil {
			logger.Warn().Err(err).Int32("notification_id", n.ID).Msg("secondary alert sink failed")
		}
	}
	return nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "worrybox: %v\n", err)
	os.Exit(1)
}
