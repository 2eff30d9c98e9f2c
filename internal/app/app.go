// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the engine lifecycle.
package app

import (
	"fmt"
	"log/slog"

	"github.com/thall/resona/internal/adapter/config"
	"github.com/thall/resona/internal/adapter/eventbus"
	"github.com/thall/resona/internal/adapter/fetch"
	"github.com/thall/resona/internal/adapter/media/mock"
	"github.com/thall/resona/internal/adapter/media/sim"
	"github.com/thall/resona/internal/adapter/store"
	"github.com/thall/resona/internal/logger"
	"github.com/thall/resona/internal/ports"
	"github.com/thall/resona/internal/service"
)

// Application is the root structure that holds all dependencies. It
// follows constructor-based dependency injection: NewApplication wires
// everything, Shutdown tears it down in reverse order.
type Application struct {
	// Core dependencies
	logger *slog.Logger

	// Infrastructure
	eventBus ports.EventBus
	store    *store.BoltStore
	element  ports.MediaElement
	fetcher  ports.Fetcher

	// Services
	resolverService *service.ResolverService
	playerService   *service.PlayerService
	queueService    *service.QueueService
	libraryService  *service.LibraryService
	settingsService *service.SettingsService
}

// Options selects between production and test wiring.
type Options struct {
	// Config overrides the loaded configuration when non-nil
	Config *config.Config

	// UseMockMedia swaps the clock-driven element for the mock
	UseMockMedia bool

	// FilePicker enables interactive re-import when the host has one
	FilePicker ports.FilePicker
}

// NewApplication creates the engine with all dependencies wired.
func NewApplication(opts Options) (*Application, error) {
	app := &Application{}

	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = loaded
	}

	app.logger = logger.NewLogger(logger.Config{
		Level:  logger.ParseLevel(cfg.Logging.Level),
		Format: cfg.Logging.Format,
	})
	app.logger.Info("initializing engine",
		slog.String("version", GetVersionInfo().FullString()),
		slog.String("data_dir", cfg.Storage.DataDir))

	syncBus := eventbus.NewSyncEventBus()
	syncBus.SetLogger(app.logger.With(slog.String("component", "eventbus")))
	app.eventBus = syncBus

	boltStore, err := store.NewBoltStore(
		app.logger.With(slog.String("component", "store")),
		cfg.Storage.DataDir,
		store.Options{QuotaBytes: cfg.Storage.CacheCeilingBytes},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open durable store: %w", err)
	}
	app.store = boltStore

	app.fetcher = fetch.NewHTTPFetcher(
		app.logger.With(slog.String("component", "fetch")),
		fetch.Options{
			Timeout:      cfg.Network.FetchTimeout,
			ProbeAddr:    cfg.Network.ProbeAddr,
			ProbeTimeout: cfg.Network.ProbeTimeout,
		},
	)

	if opts.UseMockMedia {
		app.element = mock.NewElement()
	} else {
		app.element = sim.NewElement(
			app.logger.With(slog.String("component", "media")),
			cfg.Playback.ProgressInterval,
		)
	}

	app.resolverService = service.NewResolverService(
		app.logger.With(slog.String("service", "resolver")),
		app.store,
		app.store,
		app.fetcher,
		opts.FilePicker,
		cfg.Storage.CacheCeilingBytes,
	)

	app.playerService = service.NewPlayerService(
		app.logger.With(slog.String("service", "player")),
		app.element,
		app.resolverService,
		app.eventBus,
	)

	app.queueService = service.NewQueueService(
		app.logger.With(slog.String("service", "queue")),
		app.playerService,
		app.eventBus,
	)

	app.libraryService = service.NewLibraryService(
		app.logger.With(slog.String("service", "library")),
		app.store,
		app.store,
		app.fetcher,
		app.eventBus,
	)

	app.settingsService = service.NewSettingsService(
		app.logger.With(slog.String("service", "settings")),
		app.store,
		app.eventBus,
	)

	// Restore persisted preferences and seed the sequencer with the
	// persisted catalog.
	app.settingsService.Restore(app.playerService)
	app.queueService.SetLibrary(app.libraryService.AllSongs())

	app.logger.Info("engine initialized",
		slog.Int("songs", len(app.libraryService.AllSongs())))

	return app, nil
}

// Player exposes the transport controller.
func (a *Application) Player() *service.PlayerService { return a.playerService }

// Queue exposes the queue and sequencer.
func (a *Application) Queue() *service.QueueService { return a.queueService }

// Library exposes the song catalog.
func (a *Application) Library() *service.LibraryService { return a.libraryService }

// EventBus exposes the bus for host UI subscriptions.
func (a *Application) EventBus() ports.EventBus { return a.eventBus }

// Shutdown tears down services in reverse order of creation.
func (a *Application) Shutdown() {
	a.logger.Info("shutting down engine")

	if a.settingsService != nil {
		a.settingsService.Shutdown()
	}
	if a.libraryService != nil {
		a.libraryService.Shutdown()
	}
	if a.queueService != nil {
		a.queueService.Shutdown()
	}
	if a.playerService != nil {
		if err := a.playerService.Shutdown(); err != nil {
			a.logger.Warn("failed to shutdown player", slog.Any("error", err))
		}
	}
	if a.resolverService != nil {
		a.resolverService.Shutdown()
	}
	if a.element != nil {
		if err := a.element.Close(); err != nil {
			a.logger.Warn("failed to close media element", slog.Any("error", err))
		}
	}
	if a.eventBus != nil {
		if err := a.eventBus.Close(); err != nil {
			a.logger.Warn("failed to close event bus", slog.Any("error", err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close store", slog.Any("error", err))
		}
	}

	a.logger.Info("shutdown complete")
}
