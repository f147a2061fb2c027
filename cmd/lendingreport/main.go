package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cecbur/RebtelAssignment-sub000/config"
	"github.com/cecbur/RebtelAssignment-sub000/queries/associatedbooks"
	"github.com/cecbur/RebtelAssignment-sub000/queries/mostactivepatrons"
	"github.com/cecbur/RebtelAssignment-sub000/queries/mostloanedbooks"
	"github.com/cecbur/RebtelAssignment-sub000/queries/readingpace"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "lendingreport:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, time.Now(), stderr)
	if err != nil {
		return err
	}

	if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", opts.EnvFile, err)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, shutdownTelemetry, err := NewObservability(ctx, cfg.Observability, logger)
	if err != nil {
		return fmt.Errorf("setting up observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", "error", err.Error())
		}
	}()

	source, closeSource, err := OpenLoanStore(ctx, cfg.Postgres, obs)
	if err != nil {
		return fmt.Errorf("opening loan store: %w", err)
	}
	defer closeSource()

	store, closeStore, err := OpenResultStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening result store: %w", err)
	}
	defer closeStore()

	handlers, err := BuildHandlers(source, store, cfg, obs, opts.Limit, time.Now)
	if err != nil {
		return err
	}

	if opts.Warm {
		return warm(ctx, handlers, cfg.Observability, obs, logger)
	}

	report, err := buildReport(ctx, handlers, opts)
	if err != nil {
		return err
	}

	return writeReport(stdout, report)
}

func buildReport(ctx context.Context, h Handlers, opts Options) (Report, error) {
	report := Report{}
	wants := func(name string) bool { return opts.Report == name || opts.Report == reportAll }

	if wants(reportMostLoaned) {
		result, err := h.MostLoaned.Handle(ctx, mostloanedbooks.BuildQuery(opts.Limit))
		if err != nil {
			return nil, fmt.Errorf("most loaned books: %w", err)
		}
		report.addMostLoaned(result)
	}

	if wants(reportMostActive) {
		result, err := h.MostActive.Handle(ctx, mostactivepatrons.BuildQuery(opts.From, opts.To, opts.Limit))
		if err != nil {
			return nil, fmt.Errorf("most active patrons: %w", err)
		}
		report.addMostActive(result, opts.From, opts.To)
	}

	// With -report all the patron and book sections are only printed when their id is given.
	if wants(reportPace) && opts.PatronID != 0 {
		result, err := h.Pace.Handle(ctx, readingpace.BuildQuery(opts.PatronID))
		if err != nil {
			return nil, fmt.Errorf("reading pace: %w", err)
		}
		report.addReadingPace(result)
	}

	if wants(reportPaceLeaderboard) {
		result, err := h.Leaderboard.Handle(ctx, readingpace.BuildLeaderboardQuery(opts.Limit))
		if err != nil {
			return nil, fmt.Errorf("pace leaderboard: %w", err)
		}
		report.addLeaderboard(result)
	}

	if wants(reportAssociated) && opts.BookID != 0 {
		result, err := h.Associated.Handle(ctx, associatedbooks.BuildQuery(opts.BookID, opts.Limit))
		if err != nil {
			return nil, fmt.Errorf("associated books: %w", err)
		}
		report.addAssociated(result)
	}

	return report, nil
}

func warm(ctx context.Context, h Handlers, cfg config.ObservabilityConfig, obs Observability, logger *slog.Logger) error {
	if h.Warmer == nil {
		return errors.New("-warm needs a cache backend and cache.warm_schedule")
	}

	if err := h.Warmer.RunAll(ctx); err != nil {
		logger.Warn("initial cache warm run failed", "error", err.Error())
	}

	if err := h.Warmer.Start(); err != nil {
		return err
	}
	defer func() { <-h.Warmer.Stop().Done() }()

	var server *http.Server
	if obs.Registry != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{}))
		server = &http.Server{Addr: cfg.PrometheusAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err.Error())
			}
		}()
	}

	logger.Info("cache warmer started", "jobs", h.Warmer.Jobs(), "next_run", h.Warmer.Next(time.Now()))
	<-ctx.Done()
	logger.Info("cache warmer stopping")

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	}

	return nil
}

func newLogger(cfg config.LogConfig, output io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	handlerOptions := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(output, handlerOptions)), nil
	}

	return slog.New(slog.NewTextHandler(output, handlerOptions)), nil
}
