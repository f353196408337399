package main

//
//  @title           stock-service API
//  @version         1.0
//  @description     Stock ticker prices by time window.
//  @termsOfService  https://github.com/guttosm/stock-service
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/stock-service
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        stock
//  @tag.description Stock ticker prices by time window
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/guttosm/stock-service/config"
	_ "github.com/guttosm/stock-service/docs" // swagger docs
	"github.com/guttosm/stock-service/internal/app"
	"github.com/guttosm/stock-service/internal/ingestion"
	"github.com/guttosm/stock-service/internal/logger"
)

// crashGuard turns a panic outside request handling into a logged fatal
// exit. Deferred at the top of main and of every long-lived goroutine.
func crashGuard(where string) {
	if r := recover(); r != nil {
		logger.L().Fatal().
			Str("where", where).
			Str("panic", fmt.Sprintf("%v", r)).
			Bytes("stack", debug.Stack()).
			Msg("unexpected failure, exiting")
	}
}

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		defer crashGuard("http listener")
		logger.L().Info().Str("port", port).Str("protocol", config.ProtocolHTTP).Msg("HTTP listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// main is the entry point of the stock-service application.
//
// Modes (selected via --mode flag):
//   - api:    Starts the HTTP API (default).
//   - ingest: Loads *.csv price files from --dir into Postgres.
//
// Configuration errors are fatal and happen before any listener binds.
func main() {
	defer crashGuard("main")
	ctx := context.Background()

	// Initialize JSON logger first so configuration errors are logged
	logger.Init()

	// Load configuration from environment or .env file
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.L().Fatal().Err(err).Msg("FATAL ERROR: configuration is invalid, please check .env settings")
	}

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "api", "Mode: api or ingest")
	dir := flag.String("dir", "./data/input", "Directory with .csv price files")
	parallel := flag.Int("parallel", 0, "How many files to process concurrently (0=auto up to CPU, max 8)")
	force := flag.Bool("force", false, "Reprocess files even if already ingested (deletes their previous rows)")
	port := flag.String("port", cfg.Server.Port, "Port for API mode")
	flag.Parse()
	cfg.Server.Port = *port

	switch *mode {
	case "ingest":
		logger.L().Info().Str("dir", *dir).Msg("running ingestion")

		// Direct DB connection for ingestion
		db, err := app.InitPostgres(cfg)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("db connect error")
		}
		defer func() { _ = db.Close() }()

		opts := ingestion.Options{Parallel: *parallel, Force: *force}
		if err := ingestion.ProcessDirectory(ctx, *dir, db, opts); err != nil {
			logger.L().Fatal().Err(err).Msg("ingestion failed")
		}
		logger.L().Info().Msg("ingestion completed successfully")

	case "api":
		router, cleanup, err := app.InitializeApp(cfg)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		switch cfg.Server.Protocol {
		case config.ProtocolHTTP:
			server := startServer(router, cfg.Server.Port)
			gracefulShutdown(ctx, server, cleanup)
		default:
			logger.L().Fatal().Str("protocol", cfg.Server.Protocol).Msg("unsupported protocol")
		}

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
