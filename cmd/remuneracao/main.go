package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aluiziolira/go-remuneracao/config"
	"github.com/aluiziolira/go-remuneracao/export"
	"github.com/aluiziolira/go-remuneracao/fetcher"
	"github.com/aluiziolira/go-remuneracao/models"
	"github.com/aluiziolira/go-remuneracao/parser"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid environment: %v\n", err)
		os.Exit(1)
	}

	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Remuneration endpoint URL")
	flag.StringVar(&cfg.APIKeyFile, "key-file", cfg.APIKeyFile, "File holding the portal API key")
	flag.StringVar(&cfg.IdentifiersFile, "cpf-file", cfg.IdentifiersFile, "File with one CPF per line")
	flag.StringVar(&cfg.Period, "period", cfg.Period, "Reference month in YYYYMM form (prompted when empty)")
	flag.StringVar(&cfg.OutputDir, "out-dir", cfg.OutputDir, "Directory for exported files")
	flag.StringVar(&cfg.OutputFormat, "format", cfg.OutputFormat, "Row export format: xlsx, csv, or both")
	flag.IntVar(&cfg.MaxRetries, "max-retries", cfg.MaxRetries, "Transport retries per request")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-request timeout")
	flag.DurationVar(&cfg.RequestInterval, "interval", cfg.RequestInterval, "Pause between identifiers")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus metrics listen address (e.g. :9090)")
	flag.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Enable verbose logging")
	flag.Parse()
	cfg.OutputFormat = strings.ToLower(cfg.OutputFormat)

	logger, level := newLogger(cfg.Verbose)
	slog.SetDefault(logger.With(slog.String("run_id", uuid.NewString())))
	slog.SetLogLoggerLevel(level.Level())

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	apiKey, err := config.LoadAPIKey(cfg.APIKeyFile)
	if err != nil {
		slog.Error("loading api key", slog.String("file", cfg.APIKeyFile), slog.Any("error", err))
		os.Exit(1)
	}

	ids, rejected, err := parser.ReadIdentifiersFile(cfg.IdentifiersFile, cfg.DedupeMaxSize)
	if err != nil {
		slog.Error("reading identifiers", slog.String("file", cfg.IdentifiersFile), slog.Any("error", err))
		os.Exit(1)
	}
	if len(ids) == 0 {
		slog.Error("no valid identifiers found", slog.String("file", cfg.IdentifiersFile))
		os.Exit(1)
	}
	slog.Info("identifiers loaded", slog.Int("valid", len(ids)), slog.Int("rejected", len(rejected)))

	if cfg.Period == "" {
		period, err := config.PromptPeriod(os.Stdin, os.Stdout, config.DefaultPeriod)
		if err != nil {
			slog.Error("invalid period", slog.Any("error", err))
			os.Exit(1)
		}
		cfg.Period = period
	}

	f, err := fetcher.New(cfg, apiKey)
	if err != nil {
		slog.Error("initialising fetcher", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received, exporting partial results")
	}()

	var metricsServer *http.Server
	if cfg.MetricsAddr != "" && f.Metrics != nil {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(f.Metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	result, err := f.Run(ctx, ids, cfg.Period)
	if err != nil {
		var forbidden fetcher.ErrForbidden
		switch {
		case errors.As(err, &forbidden):
			slog.Error("lookups stopped: access denied", slog.Any("error", err))
		case errors.Is(err, context.Canceled):
			slog.Warn("lookups interrupted", slog.Int("attempted", result.Attempted), slog.Int("total", len(ids)))
		default:
			slog.Error("lookups stopped", slog.Any("error", err))
		}
	}

	rows := parser.Normalize(result.Records)
	outputs := exportResults(cfg, result, rows)

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(result, len(ids), len(rows), outputs)
}

// exportResults writes every output that has data and returns the paths
// written. Failures are logged and skipped.
func exportResults(cfg *config.Config, result *models.FetchResult, rows []models.Row) []string {
	var outputs []string

	if len(rows) == 0 {
		slog.Info("no remuneration data to export")
	} else {
		if paths, err := writeRows(cfg, rows); err != nil {
			slog.Error("exporting rows", slog.Any("error", err))
		} else {
			outputs = append(outputs, paths...)
		}
	}

	archive := filepath.Join(cfg.OutputDir, export.ArchiveName(cfg.Period))
	switch err := export.WriteRawArchive(archive, result.Records); {
	case err == nil:
		outputs = append(outputs, archive)
		slog.Info("raw records saved", slog.String("file", archive), slog.Int("records", len(result.Records)))
	case errors.Is(err, export.ErrNothingToExport):
	default:
		slog.Warn("could not save raw records", slog.String("file", archive), slog.Any("error", err))
	}

	reports := []struct {
		name   string
		header string
		ids    []string
	}{
		{name: export.ErroredReportName, header: export.ErroredHeader, ids: result.Errored},
		{name: export.NoDataReportName, header: export.NoDataHeader, ids: result.NoData},
	}
	for _, report := range reports {
		path := filepath.Join(cfg.OutputDir, report.name)
		written, err := export.WriteReport(path, report.header, report.ids)
		if err != nil {
			slog.Error("writing report", slog.String("file", path), slog.Any("error", err))
			continue
		}
		if written {
			outputs = append(outputs, path)
			slog.Info("report saved", slog.String("file", path), slog.Int("identifiers", len(report.ids)))
		}
	}

	return outputs
}

func writeRows(cfg *config.Config, rows []models.Row) ([]string, error) {
	writer, err := export.NewRowWriter(cfg.OutputFormat, cfg.OutputDir, cfg.Period)
	if err != nil {
		return nil, err
	}
	if err := writer.Write(rows); err != nil {
		writer.Close()
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	var paths []string
	for _, w := range writer.Writers() {
		paths = append(paths, w.Path())
		slog.Info("rows exported", slog.String("file", w.Path()), slog.Int("rows", len(rows)))
	}
	return paths, nil
}

func printSummary(result *models.FetchResult, total, rows int, outputs []string) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	if result.Halted {
		fmt.Println("Lookup stopped early")
	} else {
		fmt.Println("Lookup complete")
	}

	fmt.Printf("  Period:        %s\n", result.Period)
	fmt.Printf("  Identifiers:   %d of %d attempted\n", result.Attempted, total)
	fmt.Printf("  With data:     %d\n", len(result.WithData))
	fmt.Printf("  Without data:  %d\n", len(result.NoData))
	fmt.Printf("  Errors:        %d\n", len(result.Errored))
	if len(result.ErrorsByType) > 0 {
		fmt.Printf("  Error types:   %v\n", result.ErrorsByType)
	}
	fmt.Printf("  Records:       %d\n", len(result.Records))
	fmt.Printf("  Rows:          %d\n", rows)
	fmt.Printf("  Requests:      %d\n", result.RequestCount)
	fmt.Printf("  Retries:       %d\n", result.RetryCount)
	fmt.Printf("  429 waits:     %d\n", result.RateLimitWaits)
	fmt.Printf("  Duration:      %v\n", result.EndTime.Sub(result.StartTime).Round(time.Millisecond))
	for _, out := range outputs {
		fmt.Printf("  Output file:   %s\n", out)
	}
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
