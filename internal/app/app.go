package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/stock-service/config"
	"github.com/guttosm/stock-service/internal/api"
	"github.com/guttosm/stock-service/internal/cache"
	"github.com/guttosm/stock-service/internal/logger"
	"github.com/guttosm/stock-service/internal/service"
	"github.com/guttosm/stock-service/internal/storage"
)

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Connects to PostgreSQL using InitPostgres().
//   - Connects to Redis when configured; an unreachable Redis disables the
//     cache instead of failing startup.
//   - Wires repository → service → handler → router.
//   - Registers health and readiness probes for every live dependency.
//   - Provides a cleanup function to close resources.
func InitializeApp(cfg *config.Config) (*gin.Engine, func(), error) {
	// Connect to PostgreSQL
	// indirection for unit testing
	db, err := postgresOpener(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize postgres: %w", err)
	}

	checks := map[string]api.PingFunc{"postgres": db.PingContext}
	closers := []func() error{db.Close}

	// Optional price cache
	var priceCache cache.PriceCache
	if cfg.Redis.Enabled() {
		rc, err := redisOpener(cfg)
		if err != nil {
			logger.L().Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, cache disabled")
		} else {
			priceCache = rc
			checks["redis"] = rc.Ping
			closers = append(closers, rc.Close)
		}
	}

	// Initialize repository layer (responsible for DB access)
	repo := storage.NewTickerRepository(db)

	// Initialize service layer (business logic)
	svc := service.NewStockService(repo, priceCache)

	// Setup Gin router with routes and probes
	router, err := api.NewRouter(
		api.NewStockHandler(svc),
		api.NewHealthHandler(checks),
		api.Options{
			BasePath:       cfg.Server.BasePath,
			RequestTimeout: cfg.Server.RequestTimeout,
			RateLimit:      cfg.Server.RateLimitPerMinute,
			CORSOrigins:    cfg.Server.CORSAllowedOrigins,
		},
	)
	if err != nil {
		for _, c := range closers {
			_ = c()
		}
		return nil, nil, fmt.Errorf("failed to build router: %w", err)
	}

	// Cleanup resources on shutdown
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	return router, cleanup, nil
}

// InitRedis connects the price cache and verifies the connection.
func InitRedis(cfg *config.Config) (*cache.RedisPriceCache, error) {
	client := cache.NewRedisClient(cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	rc := cache.NewRedisPriceCache(client, cfg.Redis.CacheTTL)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, err
	}
	return rc, nil
}

// redisOpener is an indirection used by InitializeApp; overridden in tests.
var redisOpener = InitRedis
