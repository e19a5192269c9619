package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/rift-scout/external/ddragon"
	"github.com/riskibarqy/rift-scout/external/riot"
	"github.com/riskibarqy/rift-scout/internal/config"
	"github.com/riskibarqy/rift-scout/internal/domain/account"
	infracache "github.com/riskibarqy/rift-scout/internal/infrastructure/cache"
	"github.com/riskibarqy/rift-scout/internal/interfaces/httpapi"
	"github.com/riskibarqy/rift-scout/internal/platform/cache"
	"github.com/riskibarqy/rift-scout/internal/platform/logging"
	"github.com/riskibarqy/rift-scout/internal/platform/resilience"
	"github.com/riskibarqy/rift-scout/internal/usecase"
)

// NewHTTPServer wires the Riot clients, cache backend and match view pipeline behind the
// HTTP router. The returned closer releases backend connections after shutdown.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	limiter := resilience.NewLimiter(cfg.RiotRatePerSecond, cfg.RiotRateBurst)
	riotClient := riot.NewClient(riot.ClientConfig{
		APIKey:          cfg.RiotAPIKey,
		Platform:        cfg.RiotPlatform,
		Region:          cfg.RiotRegion,
		PlatformBaseURL: cfg.RiotPlatformBaseURL,
		RegionalBaseURL: cfg.RiotRegionalBaseURL,
		Timeout:         cfg.RiotTimeout,
		Limiter:         limiter,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.RiotCircuitEnabled,
			FailureThreshold: cfg.RiotCircuitFailureCount,
			OpenTimeout:      cfg.RiotCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.RiotCircuitHalfOpenMaxReq,
		},
		Logger: logger,
	})
	breakerLogger := logger.Named("circuit_breaker")
	riotClient.Breaker().OnStateChange(func(name string, from, to resilience.CircuitState) {
		if to == resilience.CircuitStateOpen {
			breakerLogger.Warn("circuit breaker state changed", "breaker", name, "from", from, "to", to)
			return
		}
		breakerLogger.Info("circuit breaker state changed", "breaker", name, "from", from, "to", to)
	})

	catalog := ddragon.NewClient(ddragon.ClientConfig{
		BaseURL: cfg.DDragonBaseURL,
		Locale:  cfg.DDragonLocale,
		TTL:     cfg.DDragonTTL,
		Timeout: cfg.RiotTimeout,
		Logger:  logger,
	})

	healthChecks := map[string]httpapi.HealthCheck{
		"riot": func(context.Context) error {
			if state := riotClient.Breaker().State(); state == resilience.CircuitStateOpen {
				return fmt.Errorf("riot circuit breaker is %s", state)
			}
			return nil
		},
	}

	store, closer := buildCache(cfg, logger, healthChecks)

	retry := resilience.RetryPolicy{
		MaxAttempts:     cfg.RiotMaxAttempts,
		InitialInterval: cfg.RiotBackoffInitial,
		MaxInterval:     cfg.RiotBackoffMax,
		Multiplier:      2,
		Jitter:          0.2,
	}

	var directory account.Directory = riotClient
	var usecaseCache usecase.CacheStore
	if store != nil {
		directory = infracache.NewCachedDirectory(riotClient, store, cfg.AccountCacheTTL)
		usecaseCache = store
	}

	usecaseLogger := logger.Named("usecase")
	resolver := usecase.NewAccountResolver(directory, retry, usecaseLogger)
	locator := usecase.NewMatchLocator(riotClient, riotClient, catalog, retry, usecaseLogger)
	history := usecase.NewHistoryFetcher(riotClient, usecaseCache, usecase.HistoryFetcherConfig{
		CacheTTL:      cfg.HistoryCacheTTL,
		Retry:         retry,
		DetailWorkers: cfg.HistoryWorkers,
		LoadTimeout:   cfg.SummaryDeadline,
	}, usecaseLogger)
	matchViews := usecase.NewMatchViewService(resolver, locator, history, riotClient, usecaseCache, usecase.MatchViewConfig{
		MaxGames:       cfg.HistoryMaxGames,
		Workers:        cfg.SummaryWorkers,
		Deadline:       cfg.SummaryDeadline,
		PerformanceTTL: cfg.PerformanceCacheTTL,
	}, usecaseLogger)

	upstream := func() httpapi.UpstreamStatus {
		return httpapi.UpstreamStatus{
			BreakerState: riotClient.Breaker().State(),
			Limiter:      limiter.Stats(),
		}
	}

	handler := httpapi.NewHandler(matchViews, upstream, healthChecks, logger.Named("http"))
	router := httpapi.NewRouter(handler, logger.Named("http"), cfg.SwaggerEnabled, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	logger.Info("match view pipeline ready",
		"riot_platform", cfg.RiotPlatform,
		"riot_region", cfg.RiotRegion,
		"cache_backend", cfg.CacheBackend,
		"history_max_games", cfg.HistoryMaxGames,
		"summary_workers", cfg.SummaryWorkers,
		"summary_deadline", cfg.SummaryDeadline.String(),
	)

	return server, closer, nil
}

// buildCache returns a nil store when caching is off. Redis registers its own health check.
func buildCache(cfg config.Config, logger *logging.Logger, checks map[string]httpapi.HealthCheck) (infracache.ByteStore, func() error) {
	noClose := func() error { return nil }

	switch cfg.CacheBackend {
	case config.CacheBackendNone:
		return nil, noClose
	case config.CacheBackendRedis:
		redisCfg := infracache.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.RedisKeyPrefix,
		}
		client := infracache.NewRedisClient(redisCfg)
		store := infracache.NewRedisStore(client, redisCfg, logger)
		checks["cache"] = store.Ping
		return store, client.Close
	default:
		return cache.NewStore(cfg.CacheMaxEntries), noClose
	}
}
