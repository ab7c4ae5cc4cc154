package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/biplovsubedi/prediction-league/external/fplapi"
	"github.com/biplovsubedi/prediction-league/internal/config"
	"github.com/biplovsubedi/prediction-league/internal/domain/gameweek"
	"github.com/biplovsubedi/prediction-league/internal/domain/player"
	"github.com/biplovsubedi/prediction-league/internal/domain/prediction"
	"github.com/biplovsubedi/prediction-league/internal/domain/score"
	"github.com/biplovsubedi/prediction-league/internal/domain/standing"
	"github.com/biplovsubedi/prediction-league/internal/domain/syncstate"
	"github.com/biplovsubedi/prediction-league/internal/domain/team"
	"github.com/biplovsubedi/prediction-league/internal/infrastructure/repository/memory"
	"github.com/biplovsubedi/prediction-league/internal/infrastructure/repository/postgres"
	"github.com/biplovsubedi/prediction-league/internal/interfaces/httpapi"
	"github.com/biplovsubedi/prediction-league/internal/platform/cache"
	"github.com/biplovsubedi/prediction-league/internal/platform/logging"
	"github.com/biplovsubedi/prediction-league/internal/scheduler"
	"github.com/biplovsubedi/prediction-league/internal/usecase"
)

type repositories struct {
	teams       team.Repository
	gameweeks   gameweek.Repository
	players     player.Repository
	predictions prediction.Repository
	standings   standing.Repository
	scores      score.Repository
	syncState   syncstate.Repository
}

// Application owns the HTTP server, the background sync scheduler,
// and the resources both need closed on shutdown.
type Application struct {
	Server    *http.Server
	Scheduler *scheduler.Scheduler

	db     *sqlx.DB
	logger *logging.Logger
}

func New(cfg config.Config, logger *logging.Logger, accessLogger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, db, err := buildRepositories(cfg)
	if err != nil {
		return nil, err
	}

	fplClient := fplapi.NewClient(fplapi.ClientConfig{
		BaseURL:          cfg.FPLBaseURL,
		Timeout:          cfg.FPLTimeout,
		MaxRetries:       cfg.FPLMaxRetries,
		BreakerThreshold: cfg.FPLBreakerThreshold,
		BreakerTimeout:   cfg.FPLBreakerTimeout,
		Logger:           logger,
	})

	var viewCache *cache.Store
	var tableCache *cache.Store
	if cfg.CacheEnabled {
		viewCache = cache.NewStore(cfg.CacheTTL)
		tableCache = cache.NewStore(cfg.CacheTTL)
	}

	scoringSvc := usecase.NewScoringService(repos.predictions, repos.standings, repos.scores, repos.gameweeks, logger)
	syncSvc := usecase.NewSyncService(
		fplClient,
		repos.teams,
		repos.gameweeks,
		repos.standings,
		repos.syncState,
		scoringSvc,
		usecase.SyncConfig{Season: cfg.Season, DebounceWindow: cfg.SyncDebounce},
		logger,
	)
	leaderboardSvc := usecase.NewLeaderboardService(repos.scores, repos.gameweeks, repos.players, viewCache, logger)
	playerSvc := usecase.NewPlayerService(repos.players, repos.scores, repos.predictions, repos.teams, logger)
	importSvc := usecase.NewPredictionImportService(repos.players, repos.predictions, repos.teams, logger)
	recomputeSvc := usecase.NewRecomputeService(repos.gameweeks, scoringSvc, logger)

	syncScheduler := scheduler.New(syncSvc, cfg.Season, cfg.SchedulerInterval, logger)

	handler := httpapi.NewHandler(
		leaderboardSvc,
		playerSvc,
		syncSvc,
		recomputeSvc,
		importSvc,
		fplClient,
		syncScheduler,
		tableCache,
		cfg.Season,
		logger,
	)
	router := httpapi.NewRouter(handler, accessLogger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Application{
		Server:    server,
		Scheduler: syncScheduler,
		db:        db,
		logger:    logger,
	}, nil
}

// Close releases resources that outlive the HTTP server. Call after
// the server has shut down.
func (a *Application) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func buildRepositories(cfg config.Config) (repositories, *sqlx.DB, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := otelsqlx.Open("postgres", cfg.DBURL,
			otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		)
		if err != nil {
			return repositories{}, nil, fmt.Errorf("open postgres: %w", err)
		}

		return repositories{
			teams:       postgres.NewTeamRepository(db),
			gameweeks:   postgres.NewGameweekRepository(db),
			players:     postgres.NewPlayerRepository(db),
			predictions: postgres.NewPredictionRepository(db),
			standings:   postgres.NewStandingRepository(db),
			scores:      postgres.NewScoreRepository(db),
			syncState:   postgres.NewSyncStateRepository(db),
		}, db, nil
	default:
		return repositories{
			teams:       memory.NewTeamRepository(memory.SeedTeams()),
			gameweeks:   memory.NewGameweekRepository(memory.SeedGameweeks()),
			players:     memory.NewPlayerRepository(memory.SeedPlayers()),
			predictions: memory.NewPredictionRepository(memory.SeedPredictions()),
			standings:   memory.NewStandingRepository(),
			scores:      memory.NewScoreRepository(),
			syncState:   memory.NewSyncStateRepository(),
		}, nil, nil
	}
}
