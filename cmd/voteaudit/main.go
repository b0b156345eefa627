package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vncsmyrnk/enquesta/internal/adapters/events"
	"github.com/vncsmyrnk/enquesta/internal/config"
	"github.com/vncsmyrnk/enquesta/internal/core/services"
)

const (
	consumerGroup  = "vote-audit"
	reportInterval = 10 * time.Second
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load("voteaudit", os.Args[1:])
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if len(cfg.KafkaBrokers) == 0 {
		logger.Error("KAFKA_BROKERS required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := events.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, consumerGroup)
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Error("failed to close consumer", "error", err)
		}
	}()

	audit := services.NewAuditService(consumer, reportInterval, services.WithLogger(logger))

	logger.Info("auditing vote events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic, "group", consumerGroup)
	if err := audit.Run(ctx); err != nil {
		logger.Error("audit stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("audit finished")
}
