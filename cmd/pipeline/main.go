package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/noneca/meli-sync/configs"
	"github.com/noneca/meli-sync/internal/extractor"
	"github.com/noneca/meli-sync/internal/meli"
	"github.com/noneca/meli-sync/internal/pipeline"
	"github.com/noneca/meli-sync/internal/storage"
)

// detailRequestsPerSecond paces per-item detail and enrichment fetches.
const detailRequestsPerSecond = 2.0

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	appConfig := configs.AppLoad()

	if len(appConfig.Pipeline.Sellers) == 0 {
		logger.Error("No sellers configured, set SELLER_IDS")
		os.Exit(1)
	}

	store, err := storage.New(appConfig.DBDSN, logger)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	limiter := meli.NewRateLimiter(appConfig.Meli.RateLimit)
	tokens := meli.NewTokenManager(&appConfig.Meli, logger)
	client := meli.NewClient(&appConfig.Meli, limiter, tokens, logger)
	ext := extractor.New(client, detailRequestsPerSecond, logger)

	svc := pipeline.New(ext, store, &appConfig.Pipeline, logger)

	// Run with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Pipeline started",
		"sellers", len(appConfig.Pipeline.Sellers),
		"track", appConfig.Pipeline.Track,
	)

	results := svc.Run(ctx)

	for _, t := range results.Tracks {
		logger.Info("Track result",
			"seller", t.SellerID,
			"track", t.Track,
			"success", t.Success,
			"records", t.Records,
			"error", t.Error,
			"duration", t.Duration,
		)
	}

	if results.Failed() {
		logger.Warn("Pipeline finished with failures", "duration", results.End.Sub(results.Start))
		os.Exit(1)
	}

	logger.Info("Pipeline finished", "duration", results.End.Sub(results.Start))
}
