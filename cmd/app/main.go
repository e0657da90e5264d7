package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Naim3097/BOOX/config"
	"github.com/Naim3097/BOOX/internal/bootstrap"
	"github.com/Naim3097/BOOX/internal/cache"
	"github.com/Naim3097/BOOX/internal/kafka"
	"github.com/Naim3097/BOOX/internal/leanx"
	"github.com/Naim3097/BOOX/internal/logger"
	"github.com/Naim3097/BOOX/internal/obs"
	"github.com/Naim3097/BOOX/internal/repository"
	"github.com/Naim3097/BOOX/internal/service/booking"
	"github.com/Naim3097/BOOX/internal/service/payment"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, cfg.Tracing, cfg.Gateway.Environment)
	if err != nil {
		lg.Fatal("init tracer", zap.Error(err))
	}
	defer shutdownTracer(context.Background())

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		lg.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Payment.BillCacheTTLSeconds)*time.Second)
	if err := redisCache.Ping(ctx); err != nil {
		lg.Warn("redis unreachable; bill reuse and webhook dedup degrade to pass-through", zap.Error(err))
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, lg)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		lg.Warn("kafka unreachable; payment events will not be published", zap.Error(err))
	}

	resolver := leanx.NewCredentialResolver(cfg.Gateway.AuthToken, cfg.Gateway.CollectionUUID)
	if collection, err := resolver.Resolve(); err != nil {
		lg.Error("payment gateway not configured", zap.Error(err))
	} else {
		lg.Info("payment gateway configured",
			zap.String("endpoint", cfg.Gateway.Endpoint()),
			zap.String("collection_source", collection.Source),
		)
	}
	gateway := leanx.NewClient(cfg.Gateway.Endpoint(), cfg.Gateway.AuthToken, cfg.Gateway.Timeout())

	paymentService := payment.NewPaymentService(gateway, resolver,
		payment.WithBillCache(redisCache),
		payment.WithWebhookSecret(cfg.Gateway.WebhookSecret),
		payment.WithLogger(lg.Named("payment")),
	)

	bookingRepo := repository.NewBookingRepository(pool)
	bookingService := booking.NewBookingService(
		bookingRepo,
		producer,
		cfg.Kafka.PaymentsTopic,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithDeduplicator(redisCache, time.Duration(cfg.Payment.WebhookDedupTTLSeconds)*time.Second),
		booking.WithLogger(lg.Named("booking")),
	)

	if err := bootstrap.Run(ctx, cfg, bootstrap.Deps{
		Payments: paymentService,
		Bookings: bookingService,
		Logger:   lg,
	}); err != nil {
		lg.Fatal("server error", zap.Error(err))
	}
}
