package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Naim3097/BOOX/config"
	"github.com/Naim3097/BOOX/internal/email"
	"github.com/Naim3097/BOOX/internal/kafka"
	"github.com/Naim3097/BOOX/internal/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// The worker turns payment events into customer notifications. It never
// writes booking state.
func main() {
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

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, lg.Named("consumer"))
	defer consumer.Close()

	sender := email.NewSender(lg.Named("email"))

	lg.Info("worker started", zap.String("topic", cfg.Kafka.NotificationsTopic))
	if err := consumer.Consume(ctx, sender.Send); err != nil {
		lg.Error("consumer stopped", zap.Error(err))
		return
	}
	lg.Info("worker stopped")
}
