package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/courtsidehq/parlay-league/external/jobqueue"
	"github.com/courtsidehq/parlay-league/external/oddsfeed"
	"github.com/courtsidehq/parlay-league/internal/config"
	"github.com/courtsidehq/parlay-league/internal/domain/bet"
	"github.com/courtsidehq/parlay-league/internal/domain/league"
	"github.com/courtsidehq/parlay-league/internal/domain/ledger"
	"github.com/courtsidehq/parlay-league/internal/domain/odds"
	"github.com/courtsidehq/parlay-league/internal/domain/week"
	"github.com/courtsidehq/parlay-league/internal/infrastructure/account/heimdall"
	"github.com/courtsidehq/parlay-league/internal/infrastructure/repository/memory"
	"github.com/courtsidehq/parlay-league/internal/infrastructure/repository/postgres"
	"github.com/courtsidehq/parlay-league/internal/interfaces/httpapi"
	"github.com/courtsidehq/parlay-league/internal/platform/cache"
	idgen "github.com/courtsidehq/parlay-league/internal/platform/id"
	"github.com/courtsidehq/parlay-league/internal/platform/logging"
	"github.com/courtsidehq/parlay-league/internal/platform/resilience"
	"github.com/courtsidehq/parlay-league/internal/usecase"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// NewHTTPServer assembles the full service: repositories, use cases,
// external clients and the HTTP router. The returned cleanup closes
// resources the server holds (currently the database pool) and must be
// called after shutdown.
func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		leagueRepo  league.Repository
		weekRepo    week.Repository
		balanceRepo ledger.Repository
		betRepo     bet.Repository
		cleanup     = func() {}
	)

	if strings.TrimSpace(cfg.DBURL) == "" {
		logger.Info("DB_URL is empty, using in-memory repositories")
		leagueRepo = memory.NewLeagueRepository()
		weekRepo = memory.NewWeekRepository()
		balanceRepo = memory.NewBalanceRepository()
		betRepo = memory.NewBetRepository()
	} else {
		db, err := openDB(cfg)
		if err != nil {
			return nil, nil, err
		}
		cleanup = func() {
			_ = db.Close()
		}
		leagueRepo = postgres.NewLeagueRepository(db)
		weekRepo = postgres.NewWeekRepository(db)
		balanceRepo = postgres.NewBalanceRepository(db)
		betRepo = postgres.NewBetRepository(db)
	}

	scheduler, err := week.NewScheduler()
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("build week scheduler: %w", err)
	}
	idGen := idgen.NewRandomGenerator()

	leagueSvc := usecase.NewLeagueService(leagueRepo, idGen)
	bettingSvc := usecase.NewBettingService(leagueRepo, weekRepo, balanceRepo, betRepo, scheduler, idGen)
	leaderboardSvc := usecase.NewLeaderboardService(leagueRepo, weekRepo, balanceRepo, bettingSvc)
	feedSvc := usecase.NewFeedService(newOddsFeedProvider(cfg), newFeedCache(cfg))
	jobSvc := usecase.NewJobOrchestratorService(leagueRepo, bettingSvc, newJobQueue(cfg, logger), logging.Default())

	verifier := heimdall.NewClient(
		&http.Client{Timeout: cfg.AccountTimeout},
		cfg.AccountBaseURL,
		cfg.AccountIntrospectURL,
		cfg.AccountAdminKey,
		resilience.CircuitBreakerConfig{
			Enabled:          cfg.AccountCircuitEnabled,
			FailureThreshold: cfg.AccountCircuitFailureCount,
			OpenTimeout:      cfg.AccountCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AccountCircuitHalfOpenMaxReq,
		},
		logger,
	)

	handler := httpapi.NewHandler(leagueSvc, bettingSvc, leaderboardSvc, feedSvc, jobSvc, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

func newFeedCache(cfg config.Config) *cache.Store {
	if !cfg.CacheEnabled {
		return nil
	}
	return cache.NewStore(cfg.CacheTTL)
}

func newOddsFeedProvider(cfg config.Config) usecase.OddsFeedProvider {
	if !cfg.OddsFeedEnabled {
		return oddsFeedDisabled{}
	}
	return oddsfeed.NewClient(oddsfeed.ClientConfig{
		BaseURL:     cfg.OddsFeedBaseURL,
		SportKey:    cfg.OddsFeedSportKey,
		APIKeys:     cfg.OddsFeedAPIKeys,
		Timeout:     cfg.OddsFeedTimeout,
		MaxRetries:  cfg.OddsFeedMaxRetries,
		PropWorkers: cfg.OddsFeedPropWorkers,
		Logger:      logging.Default(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.OddsFeedCircuitEnabled,
			FailureThreshold: cfg.OddsFeedCircuitFailureCount,
			OpenTimeout:      cfg.OddsFeedCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.OddsFeedCircuitHalfOpenMaxReq,
		},
	})
}

func newJobQueue(cfg config.Config, logger *slog.Logger) usecase.JobQueue {
	if !cfg.QStashEnabled {
		return usecase.NewNoopJobQueue()
	}
	return jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
		BaseURL:          cfg.QStashBaseURL,
		Token:            cfg.QStashToken,
		TargetBaseURL:    cfg.QStashTargetBaseURL,
		Retries:          cfg.QStashRetries,
		InternalJobToken: cfg.InternalJobToken,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.QStashCircuitEnabled,
			FailureThreshold: cfg.QStashCircuitFailureCount,
			OpenTimeout:      cfg.QStashCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
		},
	}, logger)
}

var errOddsFeedDisabled = crerr.New("odds feed is disabled")

// oddsFeedDisabled stands in for the provider when no feed is configured.
// The board degrades to empty; prop lookups surface the outage.
type oddsFeedDisabled struct{}

func (oddsFeedDisabled) FetchGames(context.Context) ([]odds.RawGame, error) {
	return nil, errOddsFeedDisabled
}

func (oddsFeedDisabled) FetchPlayerProps(context.Context, string) ([]odds.RawPropQuote, error) {
	return nil, errOddsFeedDisabled
}
