// @title BudgetPro API
// @version 1.0
// @description Expense ledger, analytics and reports for BudgetPro
// @BasePath /api/v1
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/budgetpro/budgetpro-backend/internal/amqp"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/backend"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/config"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/handler"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/middleware"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/repository/storage"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/service"
	"github.com/dafibh/budgetpro/budgetpro-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	// Open snapshot storage
	store, err := backend.Open(ctx, backend.ConfigFromApp(cfg), log.Logger)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StorageBackend).Msg("Failed to open storage backend")
	}
	defer store.Cleanup()

	// Events go to connected browsers and, when configured, to the broker
	hub := websocket.NewHub()
	publishers := websocket.MultiPublisher{hub}
	if cfg.AMQP.Enabled() {
		amqpPublisher, err := amqp.NewPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange, log.Logger)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to AMQP broker, continuing without event forwarding")
		} else {
			defer amqpPublisher.Close()
			publishers = append(publishers, amqpPublisher)
			log.Info().Str("exchange", cfg.AMQP.Exchange).Msg("Forwarding events to AMQP")
		}
	}

	// Report storage is optional; without it exports are streamed back
	var reportStorage storage.ReportRepository
	if cfg.S3.Enabled() {
		s3Repo, err := storage.NewS3ReportRepository(ctx, cfg.S3)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize S3 report storage, exports will be streamed")
		} else {
			reportStorage = s3Repo
			log.Info().Str("bucket", cfg.S3.Bucket).Msg("Report storage enabled")
		}
	}

	// Initialize services
	sessions := service.NewSessionStore(store.Repository, publishers, log.Logger)
	ledgerService := service.NewLedgerService(sessions, cfg.Catalog.CurrencySymbol, cfg.Catalog.DefaultCategories)
	recurringService := service.NewRecurringService(sessions)
	chartService := service.NewChartService(cfg.Catalog.Palette)
	analyticsService := service.NewAnalyticsService(sessions, chartService)
	reportService := service.NewReportService(analyticsService, reportStorage, cfg.Catalog.CurrencySymbol, cfg.S3.URLExpiry)

	// Start background workers
	sweeper := service.NewSessionSweeper(sessions, log.Logger, service.SessionSweeperConfig{
		Interval: cfg.SweepInterval,
		IdleTTL:  cfg.SessionIdleTTL,
	})
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()
	sweeper.Start(workerCtx)

	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, middleware.DefaultBurstSize)
	defer rateLimiter.Stop()

	// Initialize handlers
	handlers := handler.Handlers{
		Session:   handler.NewSessionHandler(sessions),
		Ledger:    handler.NewLedgerHandler(ledgerService),
		Recurring: handler.NewRecurringHandler(recurringService),
		Analytics: handler.NewAnalyticsHandler(analyticsService),
		Report:    handler.NewReportHandler(reportService),
		WebSocket: handler.NewWebSocketHandler(hub, cfg.CORSOrigins),
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, middleware.HeaderUserEmail, middleware.HeaderUserNickname},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":   "ok",
			"backend":  cfg.StorageBackend,
			"sessions": sessions.Count(),
		})
	})

	// Register API routes
	handler.RegisterRoutes(e, handlers, rateLimiter)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.StorageBackend).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	sweeper.Stop()

	// Retry any saves that failed while serving
	if err := sessions.FlushAll(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to flush sessions")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			event := log.Info()
			if res.Status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Str("user_key", middleware.GetUserKey(c)).
				Msg("request")

			return nil
		}
	}
}
