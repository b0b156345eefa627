package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/enquesta/internal/adapters/codegen"
	"github.com/vncsmyrnk/enquesta/internal/adapters/events"
	"github.com/vncsmyrnk/enquesta/internal/adapters/handler/http"
	"github.com/vncsmyrnk/enquesta/internal/adapters/metrics"
	"github.com/vncsmyrnk/enquesta/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/enquesta/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/enquesta/internal/adapters/repository/redis"
	"github.com/vncsmyrnk/enquesta/internal/config"
	"github.com/vncsmyrnk/enquesta/internal/core/ports"
	"github.com/vncsmyrnk/enquesta/internal/core/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load("server", os.Args[1:])
	if err != nil {
		return err
	}
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pollRepo, closeStore, err := openPollRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	var publisher ports.VoteEventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kp.Close()
		publisher = kp
		logger.Info("publishing vote events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	reg := metrics.NewRegistry()
	opts := []services.Option{services.WithLogger(logger)}

	pollSvc := services.NewPollService(pollRepo, codegen.NewNanoIDGenerator(codegen.DefaultCodeLength), cfg.AdminKeySalt, opts...)
	voteSvc := services.NewVoteService(pollRepo, publisher, metrics.NewAdmissionMetrics(reg), services.VoteServiceConfig{
		MaxAttempts:  cfg.VoteMaxAttempts,
		IdentitySalt: cfg.IdentitySalt,
		EmbedPolicy:  cfg.EmbedPolicy,
	}, opts...)

	handler := http.NewHandler(http.Handlers{
		Poll:    http.NewPollHandler(pollSvc, http.SiteInfo{PublicOrigin: cfg.PublicOrigin, BrandName: cfg.BrandName}),
		Vote:    http.NewVoteHandler(voteSvc),
		Embed:   http.NewEmbedHandler(pollSvc),
		Metrics: metrics.Handler(reg),
	}, http.RouterConfig{
		AllowedOrigins:    cfg.CORSAllowedOrigins,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
	})

	server := &stdhttp.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening",
			"addr", server.Addr,
			"store", cfg.Store,
			"embed_policy", cfg.EmbedPolicy,
			"trust_proxy_headers", cfg.TrustProxyHeaders,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

func openPollRepository(ctx context.Context, cfg config.Config) (ports.PollRepository, func(), error) {
	switch cfg.Store {
	case config.StoreMemory:
		slog.Warn("using in-memory poll store, data is lost on restart")
		return memory.NewPollRepository(), func() {}, nil

	case config.StoreRedis:
		client, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return redis.NewPollRepository(client), func() { client.Close() }, nil

	default:
		db, err := sql.Open("postgres", cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to reach database: %w", err)
		}
		return postgres.NewPollRepository(db), func() { db.Close() }, nil
	}
}
