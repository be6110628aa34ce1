package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/randalmurphal/timebuddy/internal/config"
	"github.com/randalmurphal/timebuddy/internal/db"
	"github.com/randalmurphal/timebuddy/internal/db/driver"
	"github.com/randalmurphal/timebuddy/internal/events"
	"github.com/randalmurphal/timebuddy/internal/ml"
	"github.com/randalmurphal/timebuddy/internal/schedule"
)

// loadConfig loads configuration honoring the --config flag.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger builds the process logger; --verbose enables debug level.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openStore opens the configured storage backend, migrated and ready.
func openStore(cfg *config.Config) (*db.Store, error) {
	switch cfg.Storage.Driver {
	case "postgres":
		return db.OpenStoreWithDialect(cfg.Storage.DSN, driver.DialectPostgres)
	default:
		return db.OpenStore(cfg.Storage.Path)
	}
}

// appContext bundles the wired application pieces for a command.
type appContext struct {
	cfg       *config.Config
	store     *db.Store
	oracle    *ml.Client
	publisher events.Publisher
	engine    *schedule.Engine
	logger    *slog.Logger
}

// buildApp wires storage, oracle client, and engine from configuration.
func buildApp(pub events.Publisher) (*appContext, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := newLogger()

	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	if pub == nil {
		pub = events.NewNopPublisher()
	}

	oracle := ml.New(cfg.ML.BaseURL, cfg.ML.Timeout, logger)

	engine := schedule.New(schedule.Config{
		Store:               store,
		Publisher:           pub,
		Retrainer:           oracle,
		Logger:              logger,
		RetrainTriggerCount: cfg.ML.RetrainTriggerCount,
	})

	return &appContext{
		cfg:       cfg,
		store:     store,
		oracle:    oracle,
		publisher: pub,
		engine:    engine,
		logger:    logger,
	}, nil
}

// Close releases the app's resources.
func (a *appContext) Close() {
	_ = a.store.Close()
	a.publisher.Close()
}
