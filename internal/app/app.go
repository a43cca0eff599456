package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/game-leaderboard/internal/config"
	"github.com/riskibarqy/game-leaderboard/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/game-leaderboard/internal/infrastructure/repository/redisboard"
	"github.com/riskibarqy/game-leaderboard/internal/interfaces/httpapi"
	"github.com/riskibarqy/game-leaderboard/internal/platform/logging"
	"github.com/riskibarqy/game-leaderboard/internal/platform/resilience"
	"github.com/riskibarqy/game-leaderboard/internal/usecase"
)

// NewHTTPServer wires the durable store, the redis-backed ranking and
// name caches, and the HTTP layer into a ready-to-run server. The
// returned cleanup closes every connection the wiring opened.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}

	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)
	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	leaderboardClient := newRedisClient(cfg, cfg.RedisLeaderboardDB)
	userCacheClient := newRedisClient(cfg, cfg.RedisUserCacheDB)
	gameCacheClient := newRedisClient(cfg, cfg.RedisGameCacheDB)

	cleanup := func() {
		closeQuietly(logger, "postgres", db.Close)
		closeQuietly(logger, "redis leaderboard", leaderboardClient.Close)
		closeQuietly(logger, "redis user cache", userCacheClient.Close)
		closeQuietly(logger, "redis game cache", gameCacheClient.Close)
	}

	retryer := resilience.NewRetryer(resilience.RetryConfig{
		MaxAttempts: cfg.CacheRetryAttempts,
		BaseDelay:   cfg.CacheRetryBaseDelay,
	}, redisboard.IsTransient)

	// One breaker per redis logical DB; each trips independently.
	rankingIndex := redisboard.NewRankingIndex(leaderboardClient, retryer, newBreaker(cfg))
	userNameCache := redisboard.NewNameCache(userCacheClient, retryer, newBreaker(cfg))
	gameNameCache := redisboard.NewNameCache(gameCacheClient, retryer, newBreaker(cfg))

	userRepo := postgres.NewUserRepository(db)
	gameRepo := postgres.NewGameRepository(db)
	scoreRepo := postgres.NewScoreRepository(db)

	userNames := usecase.NewUserNameResolver(userNameCache, userRepo, logger)
	gameNames := usecase.NewGameNameResolver(gameNameCache, gameRepo, logger)

	userSvc := usecase.NewUserService(userRepo, userNameCache, logger)
	gameSvc := usecase.NewGameService(gameRepo, gameNameCache, logger)
	scoreSvc := usecase.NewScoreService(scoreRepo, userRepo, gameRepo, rankingIndex, logger)
	leaderboardSvc := usecase.NewLeaderboardService(rankingIndex, userRepo, userNames, gameNames, logger)
	rebuildSvc := usecase.NewRebuildService(gameRepo, scoreRepo, rankingIndex, cfg.RebuildWorkers, logger)

	handler := httpapi.NewHandler(userSvc, gameSvc, scoreSvc, leaderboardSvc, rebuildSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

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

func newRedisClient(cfg config.Config, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       db,
	})
}

func newBreaker(cfg config.Config) *resilience.CircuitBreaker {
	if !cfg.CacheCircuitEnabled {
		return nil
	}

	return resilience.NewCircuitBreaker(
		cfg.CacheCircuitFailureCount,
		cfg.CacheCircuitOpenTimeout,
		cfg.CacheCircuitHalfOpenMaxReq,
	)
}

func closeQuietly(logger *logging.Logger, name string, close func() error) {
	if err := close(); err != nil {
		logger.Warn("close "+name, "error", err)
	}
}
