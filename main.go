package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"quotewizard/config"
	"quotewizard/cron"
	"quotewizard/database"
	"quotewizard/database/repository"
	"quotewizard/handlers"
	"quotewizard/middleware"
	"quotewizard/routes"
	"quotewizard/services/address"
	"quotewizard/services/checkout"
	"quotewizard/services/gateway"
	"quotewizard/services/wizard"
	"quotewizard/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	if err := checkProductionConfig(cfg); err != nil {
		logger.Fatal("main: refusing to start", zap.Error(err))
	}
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database.InitDB()
	utils.InitCache()

	// repositories.
	bookingRepo := repository.NewMongoBookingRepo(database.Database())

	// background confirmation.
	queueOpts := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
	queue := asynq.NewClient(queueOpts)
	defer queue.Close()
	worker := cron.InitConfirmationWorker(bookingRepo, logger)

	// services.
	checkoutSvc := checkout.NewService(bookingRepo, queue, logger)

	pricing := gateway.NewPricingClient(cfg.PricingURL, cfg.PricingAPIKey)
	payments := gateway.NewStripePayments(cfg.StripeKey, cfg.PaymentCurrency, logger)
	// The lock outlives the slowest allowed submission.
	ledger := gateway.NewRedisResultCache(utils.GetCacheClient(), cfg.SubmissionCacheTTL, cfg.GatewayTimeout+10*time.Second)
	quoteGateway := gateway.NewQuoteGateway(pricing, payments, ledger, logger)

	sessions := wizard.NewSessionManager(wizard.Dependencies{
		Validator:     wizard.NewValidator(time.Now, config.Location()),
		Gateway:       quoteGateway,
		Checkout:      checkoutSvc,
		Logger:        logger,
		SubmitTimeout: cfg.GatewayTimeout,
	}, cfg.SessionTTL)
	go sessions.Run(ctx, time.Minute)

	lookup := address.New(cfg.AddressLookup, cfg.GoogleAPIKey, logger)

	utils.StartHealthMonitor(ctx, []*redis.Client{utils.GetCacheClient()}, database.MongoClient)

	// Create the Gin router.
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	routes.RegisterRoutes(router, &handlers.HandlerBundle{
		Wizard:  handlers.NewWizardHandler(sessions),
		Address: handlers.NewAddressHandler(lookup),
	})

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("main: starting server", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GatewayTimeout+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	if err := database.Close(shutdownCtx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}
