package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"budget/internal/cli"
	apphttp "budget/internal/http"
	applog "budget/internal/log"
	"budget/internal/metrics"
	"budget/internal/middleware/ratelimit"
	"budget/internal/tracker"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.Fatal(applog.New(applog.DefaultConfig()), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, applog.ComponentApp, os.Stdout)

	ctx, stop := cli.SignalContext()
	defer stop()

	t := tracker.NewWithBudget(cfg.Budget(), logger)
	m := metrics.New()

	integrations, err := cli.SetupIntegrations(ctx, cfg, t, m, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize integrations", err)
	}
	defer func() {
		if err := integrations.Close(); err != nil {
			logger.Error("Failed to close integrations", applog.NewFields().WithError(err).ToSlice()...)
		}
	}()

	limitCfg := ratelimit.DefaultConfig()
	limitCfg.RequestsPerMinute = cfg.RateLimitPerMinute
	limiter := ratelimit.NewLimiter(limitCfg)

	opts := []apphttp.Option{apphttp.WithRateLimiter(limiter)}
	if integrations.Journal != nil {
		opts = append(opts, apphttp.WithReadinessCheck(applog.ComponentJournal, integrations.Journal.Ping))
	}
	if integrations.AMQP != nil {
		opts = append(opts, apphttp.WithReadinessCheck(applog.ComponentAMQP, integrations.AMQP.Ping))
	}
	srv := apphttp.NewServer(":"+cfg.Port, t, m, logger, opts...)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting spese server",
			"port", cfg.Port,
			"initial_budget", cfg.Budget().String(),
			"journal", cfg.JournalEnabled(),
			"amqp", cfg.AMQPEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		limiter.Run(gctx, func(removed int) {
			logger.Debug("Idle rate limit clients removed", "removed", removed)
		})
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		cli.Fatal(logger, "Server error", err)
	}
	logger.Info("Server stopped gracefully")
}
