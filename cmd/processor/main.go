package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"climbingpill/internal/assessment"
	"climbingpill/internal/config"
	"climbingpill/internal/dataprocessing"
	"climbingpill/internal/exporter"
	"climbingpill/internal/infrastructure"
	"climbingpill/internal/services"
)

// The processor is the batch entry point: it loads the configured
// source, derives the full analytics snapshot once and writes the
// reports to disk.
func main() {
	outDir := flag.String("out", "reports", "output directory for derived reports")
	format := flag.String("format", "both", "report format: json, csv or both")
	flag.Parse()

	if *format != "json" && *format != "csv" && *format != "both" {
		slog.Error("invalid format", slog.String("format", *format))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("failed to initialize logger, using default", slog.String("error", err.Error()))
		logger = slog.Default()
	}

	ctx := infrastructure.ContextWithTraceID(context.Background())

	logger.InfoContext(ctx, "starting batch derivation",
		slog.String("source_mode", cfg.Sources.Mode),
		slog.String("output_dir", *outDir),
		slog.String("format", *format))

	svc, err := buildAnalyticsService(ctx, cfg, logger)
	if err != nil {
		logger.ErrorContext(ctx, "failed to build analytics service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := svc.Refresh(ctx); err != nil {
		logger.ErrorContext(ctx, "source load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	writer := exporter.NewReportWriter(*outDir, logger)
	if err := writeReports(ctx, svc, writer, *format); err != nil {
		logger.ErrorContext(ctx, "failed to write reports", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "batch derivation complete", slog.String("output_dir", *outDir))
}

func buildAnalyticsService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*services.AnalyticsService, error) {
	loader, err := services.NewSourceLoader(ctx, cfg.Sources, logger)
	if err != nil {
		return nil, fmt.Errorf("create source loader: %w", err)
	}

	scorer, err := assessment.NewScorer(assessment.DefaultWeights(), logger)
	if err != nil {
		return nil, fmt.Errorf("create scorer: %w", err)
	}

	parser := dataprocessing.NewParser(scorer, logger)
	summarizer := dataprocessing.NewSummarizer(logger, dataprocessing.DefaultSummarizerConfig())

	return services.NewAnalyticsService(loader, parser, summarizer, logger), nil
}

func writeReports(ctx context.Context, svc *services.AnalyticsService, writer *exporter.ReportWriter, format string) error {
	summaries, err := svc.UserSummaries(ctx, "")
	if err != nil {
		return err
	}

	if format == "json" || format == "both" {
		overview, err := svc.Overview(ctx)
		if err != nil {
			return err
		}
		activity, err := svc.MonthlyActivity(ctx)
		if err != nil {
			return err
		}
		growth, err := svc.Growth(ctx)
		if err != nil {
			return err
		}
		utilization, err := svc.Utilization(ctx)
		if err != nil {
			return err
		}
		roster, err := svc.CoachRoster(ctx)
		if err != nil {
			return err
		}

		overviewReport := map[string]interface{}{
			"overview":    overview,
			"activity":    activity,
			"growth":      growth,
			"utilization": utilization,
		}
		if err := writer.WriteJSON("overview.json", overviewReport); err != nil {
			return err
		}
		if err := writer.WriteJSON("users.json", summaries); err != nil {
			return err
		}
		if err := writer.WriteJSON("coaches.json", roster); err != nil {
			return err
		}
	}

	if format == "csv" || format == "both" {
		if err := writer.UserSummariesCSV("users.csv", summaries); err != nil {
			return err
		}
	}
	return nil
}
