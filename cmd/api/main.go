package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/archive"
	"storefront/internal/audit"
	"storefront/internal/auth"
	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/metrics"
	"storefront/internal/ratelimit"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"
	"storefront/internal/validation"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting storefront API server")

	if mismatch := cfg.Checkout.DeliveryMethodMismatch(); len(mismatch) > 0 {
		logger.Warn().
			Strs("storefront_methods", mismatch).
			Strs("accepted_methods", cfg.Checkout.DeliveryMethods).
			Msg("storefront offers delivery methods the server will reject")
	}

	trustedProxies, err := cfg.Server.TrustedProxyPrefixes()
	if err != nil {
		return fmt.Errorf("failed to parse trusted proxies: %w", err)
	}
	if len(trustedProxies) == 0 {
		logger.Info().Msg("no trusted proxies configured, X-Forwarded-For is ignored")
	}

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, cfg.Database.ConnectionString(), logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	limiter, closeLimiter := newLimiter(ctx, cfg.Redis, logger)
	defer closeLimiter()

	metrics.Register()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	addressRepo := repository.NewAddressRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	discountRepo := repository.NewDiscountRepository(pool, logger)
	auditRepo := repository.NewAuditRepository(pool, logger)

	// Critical alerts go to the log and, when configured, a webhook
	alerters := audit.MultiAlerter{audit.NewLogAlerter(logger)}
	if cfg.Alerts.WebhookURL != "" {
		alerters = append(alerters, audit.NewWebhookAlerter(cfg.Alerts.WebhookURL, nil, cfg.Alerts.Timeout))
	}
	dispatcher := audit.NewDispatcher(alerters, cfg.Alerts.Timeout, logger)
	defer dispatcher.Wait()

	auditFactory := audit.NewFactory(auditRepo, dispatcher, logger)

	// Initialize validators
	constraints := validation.NewConstraintValidator(
		productRepo,
		addressRepo,
		discountRepo,
		cfg.Checkout.DeliveryMethods,
		logger,
	)
	validator := validation.NewValidator(validation.RulesFromConfig(cfg.Checkout), constraints)

	exporter := archive.NewExporter(auditRepo, archive.NewSinkFromConfig(ctx, cfg.Archive, logger), logger)
	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)

	// Initialize services
	productService := service.NewProductService(productRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, logger)
	auditService := service.NewAuditService(auditRepo, exporter, logger)
	checkoutService := service.NewCheckoutService(service.CheckoutDeps{
		Orders:    orderRepo,
		Addresses: addressRepo,
		Carts:     cartRepo,
		Discounts: discountRepo,
		Validator: validator,
		Audit:     auditFactory,
		Limiter:   limiter,
	}, cfg.Checkout, cfg.Payment, logger)

	// Initialize router
	mux := router.New(router.Handlers{
		Health:   handler.NewHealthHandler(pool, logger),
		Product:  handler.NewProductHandler(productService, logger),
		Checkout: handler.NewCheckoutHandler(checkoutService, logger),
		Order:    handler.NewOrderHandler(orderService, logger),
		Audit:    handler.NewAuditHandler(auditService, logger),
	}, tokens, cfg.Auth.APIKey, trustedProxies, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed, flushing pending alerts")
	}

	return nil
}

// newLimiter shares failure budgets through Redis when configured and keeps
// them in process otherwise.
func newLimiter(ctx context.Context, cfg config.RedisConfig, logger zerolog.Logger) (ratelimit.Limiter, func()) {
	if cfg.Addr == "" {
		logger.Info().Msg("using in-memory checkout limiter (Redis not configured)")
		return ratelimit.NewMemoryLimiter(ratelimit.MemoryConfig{}), func() {}
	}

	client, err := ratelimit.NewRedisClient(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("addr", cfg.Addr).
			Msg("failed to connect to Redis, falling back to in-memory checkout limiter")
		return ratelimit.NewMemoryLimiter(ratelimit.MemoryConfig{}), func() {}
	}

	return ratelimit.NewRedisLimiter(client, "storefront:"), func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close Redis client")
		}
	}
}
