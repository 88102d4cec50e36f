package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/gameweek-draft/external/account"
	"github.com/riskibarqy/gameweek-draft/external/footballdata"
	"github.com/riskibarqy/gameweek-draft/internal/config"
	"github.com/riskibarqy/gameweek-draft/internal/domain/minigame"
	"github.com/riskibarqy/gameweek-draft/internal/domain/room"
	"github.com/riskibarqy/gameweek-draft/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/gameweek-draft/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/gameweek-draft/internal/interfaces/httpapi"
	"github.com/riskibarqy/gameweek-draft/internal/platform/id"
	"github.com/riskibarqy/gameweek-draft/internal/platform/logging"
	"github.com/riskibarqy/gameweek-draft/internal/platform/resilience"
	"github.com/riskibarqy/gameweek-draft/internal/usecase"
)

// App is the wired HTTP server plus the resources it owns.
type App struct {
	Server  *http.Server
	closers []func() error
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	logger = logging.OrDefault(logger)
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	app := &App{}
	drafts, rooms, err := app.openStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	clock := clockwork.NewRealClock()
	fixtures := footballdata.NewClient(footballdata.ClientConfig{
		BaseURL:     cfg.FootballDataBaseURL,
		Token:       cfg.FootballDataToken,
		Competition: cfg.FootballDataCompetition,
		Season:      cfg.FootballDataSeason,
		Timeout:     cfg.FootballDataTimeout,
		MaxRetries:  cfg.FootballDataMaxRetries,
		CacheTTL:    cfg.FixturesCacheTTL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FootballDataCircuitEnabled,
			FailureThreshold: cfg.FootballDataCircuitFailureCount,
			OpenTimeout:      cfg.FootballDataCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FootballDataCircuitHalfOpenMaxReq,
		},
		Logger: logger.Named("footballdata"),
		Clock:  clock,
	})
	verifier := account.NewClient(account.ClientConfig{
		HTTPClient: &http.Client{
			Timeout:   cfg.AccountTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		BaseURL:        cfg.AccountBaseURL,
		IntrospectPath: cfg.AccountIntrospectPath,
		AdminKey:       cfg.AccountAdminKey,
		Timeout:        cfg.AccountTimeout,
		CacheTTL:       cfg.AccountCacheTTL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.AccountCircuitEnabled,
			FailureThreshold: cfg.AccountCircuitFailureCount,
			OpenTimeout:      cfg.AccountCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AccountCircuitHalfOpenMaxReq,
		},
		Logger: logger.Named("account"),
		Clock:  clock,
	})

	scoringSvc := usecase.NewScoringService(drafts, rooms, fixtures, clock, logger)
	handler := httpapi.NewHandler(
		usecase.NewFixtureService(fixtures, clock),
		usecase.NewRoomService(rooms, clock, logger),
		usecase.NewSessionService(
			drafts,
			rooms,
			fixtures,
			id.NewUUIDGenerator(),
			minigame.RandomShuffler{},
			clock,
			usecase.SessionServiceConfig{
				FixturesPerSession: cfg.FixturesPerSession,
				Retry: resilience.RetryConfig{
					MaxAttempts:    cfg.StoreTxMaxAttempts,
					InitialBackoff: cfg.StoreTxInitialBackoff,
					MaxBackoff:     cfg.StoreTxMaxBackoff,
				},
			},
			logger,
		),
		scoringSvc,
		usecase.NewLeaderboardService(drafts, rooms, cfg.LeaderboardMaxConcurrency, logger),
		usecase.NewJobService(drafts, scoringSvc, cfg.JobWorkerCount, logger),
		logger,
	)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	app.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return app, nil
}

func (a *App) openStores(ctx context.Context, cfg config.Config, logger *logging.Logger) (minigame.Repository, room.Repository, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := openPostgres(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, db.Close)
		logger.Info("store ready", "driver", config.StorePostgres, "database", dbNameFromURL(cfg.DBURL))
		return postgres.NewDraftRepository(db), postgres.NewRoomRepository(db), nil
	case config.StoreMemory, "":
		logger.Warn("store ready", "driver", config.StoreMemory, "note", "state is lost on restart")
		return memory.NewDraftRepository(), memory.NewRoomRepository(), nil
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

// Close releases everything New opened, in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
