// Package app wires configuration, storage, the event bus, and the three
// application modules into one runnable unit.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"

	"github.com/parkside-league/league-hub/api"
	leagueservice "github.com/parkside-league/league-hub/app/modules/league/application"
	scheduleservice "github.com/parkside-league/league-hub/app/modules/schedule/application"
	tournamentservice "github.com/parkside-league/league-hub/app/modules/tournament/application"
	tournamentdb "github.com/parkside-league/league-hub/app/modules/tournament/infrastructure/repositories"
	"github.com/parkside-league/league-hub/config"
	"github.com/parkside-league/league-hub/internal/db/bundb"
	"github.com/parkside-league/league-hub/internal/eventbus"
	"github.com/parkside-league/league-hub/internal/observability"
)

// App holds the assembled application.
type App struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry

	PubSub   *eventbus.PubSub
	WMRouter *message.Router

	League     *leagueservice.LeagueService
	Schedule   *scheduleservice.ScheduleService
	Tournament *tournamentservice.TournamentService

	httpServer *http.Server
	db         *bun.DB
}

// NewApp initializes the application from the given config file.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := observability.NewLogger(&cfg.Observability)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	pubsub := eventbus.NewPubSub(logger)
	wmRouter, err := eventbus.NewRouter(logger, registry)
	if err != nil {
		return nil, fmt.Errorf("failed to build event router: %w", err)
	}

	a := &App{
		Cfg:      cfg,
		Logger:   logger,
		Registry: registry,
		PubSub:   pubsub,
		WMRouter: wmRouter,
	}

	repo, err := a.tournamentRepository(ctx)
	if err != nil {
		return nil, err
	}

	a.League = leagueservice.NewLeagueService(cfg.League, logger, pubsub)
	a.Schedule = scheduleservice.NewScheduleService(cfg.League, a.League, logger, pubsub)
	a.Tournament = tournamentservice.NewTournamentService(repo, logger, pubsub)

	a.registerEventHandlers()

	if err := a.Tournament.Restore(ctx); err != nil {
		return nil, fmt.Errorf("failed to restore tournament: %w", err)
	}
	if cfg.League.WorkbookPath != "" {
		// A missing or broken workbook should not keep the server from
		// starting; standings stay unavailable until a reload or upload.
		if err := a.League.Reload(ctx); err != nil {
			logger.Warn("initial workbook load failed",
				slog.String("path", cfg.League.WorkbookPath),
				slog.Any("error", err),
			)
		}
	}

	handlers := &api.Handlers{
		League:     a.League,
		Schedule:   a.Schedule,
		Tournament: a.Tournament,
		Logger:     logger,
	}
	a.httpServer = &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewRouter(cfg.HTTP, handlers, registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return a, nil
}

// tournamentRepository selects Postgres when a DSN is configured and the
// JSON file store otherwise.
func (a *App) tournamentRepository(ctx context.Context) (tournamentdb.Repository, error) {
	if a.Cfg.Postgres.DSN == "" {
		a.Logger.Info("using file-backed tournament store",
			slog.String("path", a.Cfg.Tournament.DataPath),
		)
		return &tournamentdb.FileStore{Path: a.Cfg.Tournament.DataPath}, nil
	}

	db, err := bundb.NewDB(ctx, a.Cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.db = db
	return &tournamentdb.TournamentDBImpl{DB: db}, nil
}

// registerEventHandlers attaches the audit subscribers. They only log; all
// state changes happen synchronously in the services.
func (a *App) registerEventHandlers() {
	sub := a.PubSub.Subscriber()

	a.WMRouter.AddNoPublisherHandler(
		"standings_audit",
		eventbus.TopicStandingsComputed,
		sub,
		func(msg *message.Message) error {
			a.Logger.Info("standings computed", slog.String("payload", string(msg.Payload)))
			return nil
		},
	)
	a.WMRouter.AddNoPublisherHandler(
		"weekly_plan_audit",
		eventbus.TopicWeeklyPlanCreated,
		sub,
		func(msg *message.Message) error {
			a.Logger.Info("weekly plan created", slog.String("payload", string(msg.Payload)))
			return nil
		},
	)
	a.WMRouter.AddNoPublisherHandler(
		"tournament_audit",
		eventbus.TopicTournamentUpdated,
		sub,
		func(msg *message.Message) error {
			a.Logger.Info("tournament updated", slog.String("payload", string(msg.Payload)))
			return nil
		},
	)
}

// Run starts the event router and the HTTP server and blocks until the
// context is canceled or a server fails.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		if err := a.WMRouter.Run(ctx); err != nil {
			errCh <- fmt.Errorf("event router stopped: %w", err)
		}
	}()
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server stopped: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown stops the HTTP server, the event bus, and the database.
func (a *App) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var errs []error
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := a.WMRouter.Close(); err != nil {
		errs = append(errs, fmt.Errorf("event router close: %w", err))
	}
	if err := a.PubSub.Close(); err != nil {
		errs = append(errs, fmt.Errorf("pubsub close: %w", err))
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}
	return errors.Join(errs...)
}
