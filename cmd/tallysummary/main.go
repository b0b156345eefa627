package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/vncsmyrnk/enquesta/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/enquesta/internal/config"
	"github.com/vncsmyrnk/enquesta/internal/core/services"
)

func main() {
	cfg, err := config.Load("tallysummary", os.Args[1:])
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		slog.Error("failed to reach database", "error", err)
		os.Exit(1)
	}

	pollRepo := postgres.NewPollRepository(db)
	resultRepo := postgres.NewPollResultRepository(db)
	summaryService := services.NewSummaryService(pollRepo, resultRepo)

	// Bound the job so a stuck connection cannot hang the schedule.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	slog.Info("starting tally summarization job")
	start := time.Now()

	if err := summaryService.SummarizeAllPolls(ctx); err != nil {
		slog.Error("error summarizing tallies", "error", err)
		os.Exit(1)
	}

	slog.Info("tally summarization completed", "elapsed", time.Since(start))
}
