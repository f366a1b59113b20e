package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Desla-ai/Doeum/internal/auth"
	"github.com/Desla-ai/Doeum/internal/config"
	"github.com/Desla-ai/Doeum/internal/database"
	"github.com/Desla-ai/Doeum/internal/handlers"
	"github.com/Desla-ai/Doeum/internal/logging"
	"github.com/Desla-ai/Doeum/internal/metrics"
	"github.com/Desla-ai/Doeum/internal/middleware"
	"github.com/Desla-ai/Doeum/internal/payment"
	"github.com/Desla-ai/Doeum/internal/repository"
	"github.com/Desla-ai/Doeum/internal/services"
	"github.com/Desla-ai/Doeum/internal/telemetry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.New("info", "json").Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	logging.Configure(logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	shutdownTracing := telemetry.Setup(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)

	// Initialize JWT
	auth.InitJWT(cfg.Auth.JWTSecret)

	// Connect to database
	db, err := database.Connect(cfg.GetDSN())
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	m := metrics.New()
	repo := repository.NewRepository(db)

	// Initialize services
	payoutService, err := services.NewPayoutService(payment.NewStubGateway(), repo, cfg.Payment.PlatformFeePercent)
	if err != nil {
		logger.Fatalf("Failed to configure payouts: %v", err)
	}
	requestService := services.NewRequestService(repo, m)
	proposalService := services.NewProposalService(repo, m)
	orderService := services.NewOrderService(repo, payoutService, m)
	chatService := services.NewChatService(repo, m)
	addressService := services.NewAddressService(repo)
	profileService := services.NewProfileService(repo)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	limiter.StartCleanup(ctx, time.Minute, 10*time.Minute)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics(m))

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", handlers.HealthCheck(db))
	router.GET("/metrics", gin.WrapH(m.Handler()))

	handlers.RegisterRoutes(router, handlers.Handlers{
		Requests: handlers.NewRequestHandler(requestService, proposalService),
		Orders:   handlers.NewOrderHandler(orderService),
		Chat:     handlers.NewChatHandler(chatService),
		Users:    handlers.NewUserHandler(profileService, addressService),
	}, auth.AuthMiddleware(cfg.Auth.CookieName), limiter.Handler())

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           otelhttp.NewHandler(router, cfg.Telemetry.ServiceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		logger.Infof("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stop()

	// Graceful shutdown with 5 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Tracer shutdown failed")
	}

	logger.Info("Server exited")
}
