// Package cli provides the process bootstrap shared by the paydash
// subcommands: environment, logging, configuration and the render
// service with its optional recorders.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"paydash/internal/amqp"
	"paydash/internal/config"
	"paydash/internal/journal"
	applog "paydash/internal/log"
	"paydash/internal/report"
	"paydash/internal/services"
	"paydash/internal/theme"
)

// SetupLogger initializes structured logging at the given level and sets
// it as the default logger.
func SetupLogger(level string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(level)
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// applies overrides before validating.
func LoadAndValidateConfig(override func(*config.Config)) (*config.Config, error) {
	cfg := config.Load()
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Runtime bundles what a subcommand needs to render reports.
type Runtime struct {
	Config  *config.Config
	Logger  *applog.Logger
	Theme   theme.Theme
	Service *services.RenderService
	Journal *journal.SQLiteJournal
}

// Close releases the journal and AMQP connections.
func (r *Runtime) Close() error {
	return r.Service.Close()
}

// NewRuntime loads the theme and wires the render service. The journal and
// AMQP publisher are attached only when configured; an unreachable broker
// is logged and skipped so the dashboard keeps working. The journal records
// inline, events are published from a background queue.
func NewRuntime(cfg *config.Config, logger *applog.Logger) (*Runtime, error) {
	t, err := theme.Load(cfg.ThemeFile)
	if err != nil {
		return nil, fmt.Errorf("load theme: %w", err)
	}

	rt := &Runtime{Config: cfg, Logger: logger, Theme: t}
	var recorders []services.Recorder

	if cfg.JournalEnabled() {
		j, err := journal.Open(cfg.JournalDBPath, logger)
		if err != nil {
			return nil, fmt.Errorf("open render journal %s: %w", cfg.JournalDBPath, err)
		}
		rt.Journal = j
		recorders = append(recorders, j)
		logger.Info("Render journal enabled", "path", cfg.JournalDBPath)
	}

	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, render events disabled", applog.FieldError, err.Error())
		} else {
			recorders = append(recorders, services.NewAsyncRecorder(client, 0, logger))
			logger.Info("Render events enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	gen := report.NewGenerator(t, report.Variant(cfg.Variant))
	rt.Service = services.NewRenderService(cfg.DataFile, gen, logger, recorders...)
	return rt, nil
}

// GracefulShutdown returns a context cancelled on SIGINT or SIGTERM. Once
// cancelled, cleanup runs with a deadline of timeout and done is closed.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
			return
		}
		logger.Info("Shutdown complete")
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
