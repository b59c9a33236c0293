package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/velvetden/cardledger/internal/config"
	"github.com/velvetden/cardledger/internal/domain/alias"
	"github.com/velvetden/cardledger/internal/domain/player"
	"github.com/velvetden/cardledger/internal/domain/round"
	"github.com/velvetden/cardledger/internal/domain/stats"
	"github.com/velvetden/cardledger/internal/infrastructure/account/gatehouse"
	cacherepo "github.com/velvetden/cardledger/internal/infrastructure/repository/cache"
	"github.com/velvetden/cardledger/internal/infrastructure/repository/memory"
	"github.com/velvetden/cardledger/internal/infrastructure/repository/postgres"
	"github.com/velvetden/cardledger/internal/interfaces/httpapi"
	basecache "github.com/velvetden/cardledger/internal/platform/cache"
	"github.com/velvetden/cardledger/internal/platform/logging"
	"github.com/velvetden/cardledger/internal/platform/resilience"
	"github.com/velvetden/cardledger/internal/usecase"
)

type repositories struct {
	rounds  round.Repository
	players player.Repository
	stats   stats.Repository
	aliases alias.Repository
}

// NewHTTPServer wires repositories, services and the HTTP router. The
// returned cleanup closes the database handle when one was opened.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(context.Context) error, error) {
	repos, cleanup, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		repos.stats = cacherepo.NewStatsRepository(repos.stats, store)
		repos.aliases = cacherepo.NewAliasRepository(repos.aliases, store)
		repos.players = cacherepo.NewPlayerRepository(repos.players, store)
	}

	ingestSvc := usecase.NewIngestService(
		repos.rounds,
		repos.players,
		repos.stats,
		logger,
		cfg.ImportDecodeWorkers,
		cfg.StatsChunkSize,
	)
	leaderboardSvc := usecase.NewLeaderboardService(repos.stats, repos.aliases, repos.players)

	verifier := gatehouse.NewClient(gatehouse.Config{
		BaseURL:        cfg.GatehouseBaseURL,
		IntrospectPath: cfg.GatehouseIntrospectPath,
		Timeout:        cfg.GatehouseTimeout,
		CacheTTL:       cfg.GatehouseCacheTTL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.GatehouseCircuitEnabled,
			FailureThreshold: cfg.GatehouseCircuitFailureCount,
			OpenTimeout:      cfg.GatehouseCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.GatehouseCircuitHalfOpenMaxReq,
		},
	}, logger)

	handler := httpapi.NewHandler(ingestSvc, leaderboardSvc, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		cleanupErr := cleanup(context.Background())
		if cleanupErr != nil {
			logger.Warn("cleanup after wiring failure", "error", cleanupErr)
		}
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	if strings.TrimSpace(cfg.DBURL) == "" {
		logger.Info("storage backend", "kind", "memory")
		return repositories{
			rounds:  memory.NewRoundRepository(),
			players: memory.NewPlayerRepository(nil),
			stats:   memory.NewStatsRepository(),
			aliases: memory.NewAliasRepository(nil),
		}, noop, nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return repositories{}, nil, err
	}

	logger.Info("storage backend", "kind", "postgres", "db_name", dbNameFromURL(cfg.DBURL))
	return repositories{
			rounds:  postgres.NewRoundRepository(db),
			players: postgres.NewPlayerRepository(db),
			stats:   postgres.NewStatsRepository(db),
			aliases: postgres.NewAliasRepository(db),
		}, func(context.Context) error {
			return db.Close()
		}, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	return db, nil
}
