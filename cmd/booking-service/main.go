package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Missray24/missray-cab-app-sub000/internal/auth"
	"github.com/Missray24/missray-cab-app-sub000/internal/billing"
	bookingpg "github.com/Missray24/missray-cab-app-sub000/internal/booking/repo/postgres"
	"github.com/Missray24/missray-cab-app-sub000/internal/booking/usecase"
	"github.com/Missray24/missray-cab-app-sub000/internal/cache"
	"github.com/Missray24/missray-cab-app-sub000/internal/config"
	"github.com/Missray24/missray-cab-app-sub000/internal/db"
	"github.com/Missray24/missray-cab-app-sub000/internal/events"
	"github.com/Missray24/missray-cab-app-sub000/internal/log"
	"github.com/Missray24/missray-cab-app-sub000/internal/metrics"
	"github.com/Missray24/missray-cab-app-sub000/internal/notification"
	"github.com/Missray24/missray-cab-app-sub000/internal/ratelimit"
	"github.com/Missray24/missray-cab-app-sub000/internal/routing"
	"github.com/Missray24/missray-cab-app-sub000/internal/tracing"
	"github.com/Missray24/missray-cab-app-sub000/internal/transport/rest"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *config.Config
	var err error
	if _, statErr := os.Stat(configPath); statErr == nil {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	if err := log.Init(cfg.Log.Level); err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}
	logger := log.L(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init(tracing.Config{
			ServiceName:    cfg.AppName,
			ServiceVersion: "1.0.0",
			Environment:    os.Getenv("ENVIRONMENT"),
			JaegerEndpoint: cfg.Tracing.JaegerEndpoint,
			SamplingRatio:  cfg.Tracing.SamplingRatio,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		defer shutdown()
	}

	pool, err := db.NewPool(ctx, &db.Config{
		DSN:      cfg.Postgres.DSN,
		MaxConns: cfg.Postgres.MaxConns,
	})
	if err != nil {
		logger.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()

	store, err := bookingpg.NewStoreWithPool(pool.Pool)
	if err != nil {
		logger.Fatal("Failed to create store", zap.Error(err))
	}

	redisCache, err := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Warn("Redis unavailable, quoting without catalog cache", zap.Error(err))
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	planner := buildPlanner(cfg, logger)
	provider := buildBillingProvider(cfg, logger)
	publisher := buildPublisher(cfg, logger)
	defer publisher.Close()
	mailer := buildMailer(ctx, cfg, logger)

	cacheTTL := time.Duration(cfg.Pricing.TierCacheTTL) * time.Second
	quotes := usecase.NewQuoteUseCase(store.Tiers(), store.Options(), redisCache, cacheTTL, logger)
	bookings := usecase.NewBookingUseCase(store.Bookings(), quotes, planner, publisher, mailer, logger)
	checkout := usecase.NewCheckoutUseCase(store.Bookings(), quotes, provider, publisher, mailer, cfg.Pricing.VATPercent, logger)
	tariffs := usecase.NewTariffUseCase(store.Tiers(), store.Options(), quotes, logger)

	var validator auth.Validator
	if cfg.Auth.PublicKeyPEM != "" {
		validator, err = auth.NewJWTValidator(cfg.Auth.PublicKeyPEM)
		if err != nil {
			logger.Fatal("Failed to initialize JWT validator", zap.Error(err))
		}
	} else {
		logger.Fatal("auth.public_key_pem is required")
	}

	var limiter *ratelimit.RedisLimiter
	if redisCache != nil {
		limiter = ratelimit.NewRedisLimiter(redisCache.Client(), time.Minute, 60)
	}

	handler := rest.NewHandler(quotes, bookings, checkout, tariffs, planner, logger)
	router := rest.NewRouter(handler, validator, limiter, logger)

	metricsServer := metrics.NewServer(cfg.Metrics)
	go func() {
		if err := metricsServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		logger.Info("Starting HTTP server", zap.String("address", cfg.HTTP.Address))
		if err := router.Start(cfg.HTTP.Address); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := router.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Metrics shutdown failed", zap.Error(err))
	}
}

func buildPlanner(cfg *config.Config, logger *zap.Logger) routing.Planner {
	if cfg.Maps.APIKey == "" {
		logger.Warn("No Maps API key configured, trips will be priced at tier minimum")
		return routing.NoopPlanner{}
	}
	planner, err := routing.NewGooglePlanner(cfg.Maps.APIKey, cfg.Maps.Language, cfg.Maps.Region, logger)
	if err != nil {
		logger.Fatal("Failed to initialize route planner", zap.Error(err))
	}
	return planner
}

func buildBillingProvider(cfg *config.Config, logger *zap.Logger) billing.Provider {
	if cfg.Billing.Provider == "mock" {
		logger.Warn("Using mock billing provider")
		return billing.NewMockProvider()
	}
	provider, err := billing.NewStripeProvider(
		cfg.Billing.StripeSecret,
		cfg.Billing.StripeWebhookSecret,
		cfg.Billing.SuccessURL,
		cfg.Billing.CancelURL,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to initialize billing provider", zap.Error(err))
	}
	return provider
}

func buildPublisher(cfg *config.Config, logger *zap.Logger) events.Publisher {
	if !cfg.Kafka.Enabled {
		return events.NewNoopPublisher()
	}
	publisher, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Kafka publisher", zap.Error(err))
	}
	return publisher
}

func buildMailer(ctx context.Context, cfg *config.Config, logger *zap.Logger) notification.Mailer {
	if !cfg.Mail.Enabled {
		return notification.NoopMailer{}
	}
	mailer, err := notification.NewSESMailer(ctx, cfg.Mail.Region, cfg.Mail.Sender, logger)
	if err != nil {
		logger.Fatal("Failed to initialize mailer", zap.Error(err))
	}
	return mailer
}
