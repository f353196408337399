package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/stock-service/docs"
	"github.com/guttosm/stock-service/internal/domain/dto"
	"github.com/guttosm/stock-service/internal/middleware"
)

// Options tunes the router built by NewRouter.
type Options struct {
	BasePath       string        // prefix for "/" and "/stock/{min}", e.g. "/stock-service"
	RequestTimeout time.Duration // per-request deadline; 0 disables
	RateLimit      int           // requests per minute per client IP; 0 disables
	CORSOrigins    []string      // empty or "*" allows every origin
}

// NewRouter creates a Gin engine with routes configured.
//
// Responsibilities:
//   - Registers global middlewares (RequestID, Logger, Recovery, ErrorHandler,
//     Metrics, CORS, RateLimiter, Timeout).
//   - Answers unknown paths with 404 and known paths with a wrong method
//     with 405, both as fail envelopes.
//   - Mounts Swagger docs (/swagger/*any) and Prometheus metrics (/metrics);
//     the served document carries opts.BasePath.
//   - Mounts health probes and the stock routes under opts.BasePath.
//
// Returns an error when the stock routes cannot be registered.
func NewRouter(stock *StockHandler, health *HealthHandler, opts Options) (*gin.Engine, error) {
	router := gin.New()
	router.HandleMethodNotAllowed = true
	// "/stock/5/" and "/stock" fall through to NoRoute instead of a 301 page.
	router.RedirectTrailingSlash = false

	docs.SwaggerInfo.BasePath = docsBasePath(opts.BasePath)

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.Metrics(),
		middleware.CORS(opts.CORSOrigins),
		middleware.RateLimiter(opts.RateLimit, time.Minute),
		middleware.Timeout(opts.RequestTimeout),
	)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.Fail(dto.MessageNotFound, nil))
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, dto.Fail(dto.MessageMethodNotAllowed, nil))
	})

	// ─── Swagger & metrics ────────────────────────
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/metrics", middleware.MetricsHandler())

	// ─── Health ───────────────────────────────────
	if health != nil {
		health.Register(router, opts.BasePath)
	}

	// ─── Stock API ────────────────────────────────
	if stock != nil {
		if err := Register(router.Group(opts.BasePath), stock.Routes()); err != nil {
			return nil, err
		}
	}

	return router, nil
}

func docsBasePath(base string) string {
	if base == "" {
		return "/"
	}
	return base
}
