package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/awadhalla/souq/internal"
	"github.com/awadhalla/souq/internal/billing"
	"github.com/awadhalla/souq/internal/handler"
	"github.com/awadhalla/souq/internal/idempotency"
	"github.com/awadhalla/souq/internal/middleware"
	"github.com/awadhalla/souq/internal/notify"
	"github.com/awadhalla/souq/internal/repository"
	"github.com/awadhalla/souq/internal/router"
	"github.com/awadhalla/souq/internal/routes"
	"github.com/awadhalla/souq/internal/service"
	"github.com/awadhalla/souq/internal/shipping"
	"github.com/awadhalla/souq/internal/tax"
	"github.com/awadhalla/souq/internal/telemetry"
	"github.com/awadhalla/souq/internal/worker"
)

func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	// Verify database connection
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	// Initialize pgx connection pool for application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	// Initialize repository
	repo := repository.NewPostgres(pool)

	// Webhook event deduplication. Redis keeps claims across restarts and
	// replicas; the in-memory store is a dev fallback.
	var events idempotency.Store
	if cfg.RedisUrl != "" {
		opt, err := redis.ParseURL(cfg.RedisUrl)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opt)
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
		events = idempotency.NewRedisStore(client, 24*time.Hour)
		logger.Info("Redis event store initialized")
	} else {
		events = idempotency.NewMemoryStore(24*time.Hour, 10000)
		logger.Warn("REDIS_URL not set, using in-memory webhook deduplication")
	}

	// Initialize Stripe billing provider
	logger.Info("Initializing Stripe billing provider...")
	stripeConfig := billing.StripeConfig{
		APIKey:        cfg.Stripe.SecretKey,
		WebhookSecret: cfg.Stripe.WebhookSecret,
		Currency:      cfg.Stripe.Currency,
		SuccessURL:    cfg.Stripe.SuccessURL,
		CancelURL:     cfg.Stripe.CancelURL,
	}
	billingProvider, err := billing.NewStripeProvider(stripeConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize Stripe provider: %w", err)
	}
	logger.Info("Stripe billing provider initialized", "test_mode", stripeConfig.IsTestMode())

	// Shipping fees and tax windows come from the database, managed over the
	// admin API.
	shippingProvider := shipping.NewStoreProvider(repo)
	taxCalculator := tax.NewStoreCalculator(repo)
	notifier := notify.NewStoreNotifier(repo, logger)

	// Initialize services
	cartService := service.NewCartService(repo)
	orderService := service.NewOrderService(repo, notifier)
	checkoutService := service.NewCheckoutService(
		repo,
		cartService,
		billingProvider,
		shippingProvider,
		taxCalculator,
		notifier,
	)
	paymentService := service.NewPaymentService(repo)
	pickDropService := service.NewPickDropService(repo, notifier)
	notificationService := service.NewNotificationService(repo)
	configService := service.NewConfigService(repo)
	webhookService := service.NewWebhookService(repo, orderService, cartService, events, logger)

	// Background sweep for card orders whose gateway session was abandoned
	// and whose expiry webhook never arrived.
	sweeper := worker.NewSweeper(orderService, worker.Config{}, logger)
	go sweeper.Start(ctx)

	// Build route dependencies
	orderHandler := handler.NewOrderHandler(orderService)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService)
	pickDropHandler := handler.NewPickDropHandler(pickDropService)

	// Checkout creates orders and gateway sessions, so it gets a stricter
	// limiter on top of the global one.
	checkoutRateLimiter := middleware.NewRateLimiter(middleware.StrictRateLimiterConfig())

	apiDeps := routes.APIDeps{
		Cart:            handler.NewCartHandler(cartService),
		Checkout:        checkoutHandler,
		Order:           orderHandler,
		Payment:         handler.NewPaymentHandler(paymentService),
		PickDrop:        pickDropHandler,
		Notification:    handler.NewNotificationHandler(notificationService),
		CheckoutLimiter: checkoutRateLimiter.Middleware,
	}
	adminDeps := routes.AdminDeps{
		Order:    orderHandler,
		PickDrop: pickDropHandler,
		Config:   handler.NewConfigHandler(configService),
	}
	webhookDeps := routes.WebhookDeps{
		Stripe: handler.NewWebhookHandler(billingProvider, webhookService),
	}

	// Initialize middleware
	metrics := middleware.NewMetrics("souq")
	telemetry.InitBusinessMetrics("souq")

	securityConfig := middleware.DefaultSecurityHeadersConfig()
	if cfg.Env == "dev" {
		securityConfig.HSTSMaxAge = 0 // Disable HSTS in development
	}

	defaultRateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())

	// Create router and register routes
	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		middleware.WithClientIP(),
		metrics.Middleware,
		middleware.SecurityHeaders(securityConfig),
		middleware.MaxBodySize(middleware.SmallMaxBodySize),
		middleware.Timeout(middleware.DefaultTimeout),
		defaultRateLimiter.Middleware,
		router.Logger(logger),
		middleware.WithUser(cfg.JWTSecret),
		middleware.WithRequestLogger(logger),
	)

	// Metrics endpoint (no auth required, but should be protected in production via firewall)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		metrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Register route groups
	routes.RegisterAPIRoutes(r, apiDeps)
	routes.RegisterAdminRoutes(r, adminDeps)
	routes.RegisterWebhookRoutes(r, webhookDeps)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting server", "address", addr)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
