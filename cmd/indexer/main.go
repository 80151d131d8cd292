package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"nsicli/internal/batches"
	"nsicli/internal/config"
	"nsicli/internal/index"
	"nsicli/internal/infrastructure"
	"nsicli/internal/store"
)

func main() {
	mode := flag.String("mode", "append", "append | rebuild")
	batchesDir := flag.String("batches", "", "directory containing classified batch CSV files (defaults to configured batches dir)")
	out := flag.String("out", "", "index store path, extension selects encoding .csv|.xlsx (defaults to configured index file)")
	asOfFlag := flag.String("as-of", "", "processing date YYYY-MM-DD for the incomplete-day guard (defaults to today)")
	fromFlag := flag.String("from", "", "rebuild only: earliest batch period to include, YYYY-MM or YYYY-MM-DD")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if *batchesDir == "" {
		*batchesDir = paths.BatchesDir
	}
	if *out == "" {
		*out = paths.IndexFile
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	if !filepath.IsAbs(cfg.Logging.FilePath) {
		cfg.Logging.FilePath = paths.GetLogPath(filepath.Base(cfg.Logging.FilePath))
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	asOf := time.Now()
	if *asOfFlag != "" {
		asOf, err = time.Parse("2006-01-02", *asOfFlag)
		if err != nil {
			logger.Error("Invalid -as-of date", slog.String("value", *asOfFlag), slog.String("error", err.Error()))
			os.Exit(2)
		}
	}

	var periodStart time.Time
	if *fromFlag != "" {
		for _, layout := range []string{"2006-01-02", "2006-01"} {
			if periodStart, err = time.Parse(layout, *fromFlag); err == nil {
				break
			}
		}
		if err != nil {
			logger.Error("Invalid -from period", slog.String("value", *fromFlag), slog.String("error", err.Error()))
			os.Exit(2)
		}
	}

	runID := uuid.New().String()
	ctx := infrastructure.WithRunID(context.Background(), runID)

	logger.Info("Starting sentiment index run",
		slog.String("mode", *mode),
		slog.String("run_id", runID),
		slog.String("batches_dir", *batchesDir),
		slog.String("index_file", *out),
		slog.String("as_of", index.Day(asOf).Format("2006-01-02")))

	fileStore, err := store.New(*out, logger)
	if err != nil {
		logger.Error("Invalid index store path", slog.String("error", err.Error()))
		os.Exit(2)
	}
	source := batches.NewDir(*batchesDir, logger)
	pipeline := index.NewPipeline(logger, index.PipelineConfig{
		Filter: index.FilterConfig{
			Topic:             cfg.Index.Topic,
			MinHeadlineTokens: cfg.Index.MinHeadlineTokens,
		},
		ResampleWindow: cfg.Index.ResampleWindowDays,
	})
	controller := index.NewController(logger, pipeline, source, fileStore, index.SmoothingConfig{
		Span:            cfg.Index.SmoothingSpan,
		TrendWindowDays: cfg.Index.TrendWindowDays,
	}, cfg.Index.Workers)

	var result index.Series
	switch *mode {
	case "rebuild":
		result, err = controller.Rebuild(ctx, asOf, periodStart)
	case "append":
		result, err = controller.Append(ctx, asOf)
	default:
		logger.Error("Unknown mode", slog.String("mode", *mode))
		os.Exit(2)
	}
	if err != nil {
		var overlap *index.OverlapError
		switch {
		case errors.As(err, &overlap):
			logger.Error("Overlapping batches detected, refusing to persist",
				slog.String("date", overlap.Date.Format("2006-01-02")))
		case errors.Is(err, index.ErrStoreCorrupt):
			logger.Error("Index store is corrupt, run a full rebuild",
				slog.String("error", err.Error()))
		default:
			logger.Error("Index run failed", slog.String("error", err.Error()))
		}
		os.Exit(1)
	}

	logger.Info("Index run completed",
		slog.String("mode", *mode),
		slog.Int("rows", len(result)))
	fmt.Printf("Sentiment index %s complete: %d rows\n", *mode, len(result))
}
