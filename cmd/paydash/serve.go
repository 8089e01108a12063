package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"paydash/internal/cli"
	apphttp "paydash/internal/http"
	applog "paydash/internal/log"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	Long: `Starts the web dashboard. Every page load, API call and chart image reads
the records file again, so edits show up on the next reload.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default $PORT or 8081)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if servePort != "" {
		cfg.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}

	opts := apphttp.Options{
		Addr:          ":" + cfg.Port,
		Renderer:      rt.Service,
		Theme:         rt.Theme,
		Logger:        rt.Logger,
		RenderTimeout: cfg.RenderTimeout,
	}
	if rt.Journal != nil {
		opts.Journal = rt.Journal
	}
	srv := apphttp.NewServer(opts)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error",
				applog.FieldOperation, applog.OpShutdown,
				applog.FieldError, err.Error())
		}
		if err := rt.Close(); err != nil {
			logger.Error("Closing recorders failed", applog.FieldError, err.Error())
		}
	})

	logger.Info("Starting paydash server",
		"port", cfg.Port,
		applog.FieldOperation, applog.OpStartup,
		applog.FieldSource, cfg.DataFile,
		applog.FieldVariant, cfg.Variant)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		rt.Close()
		return err
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
	return nil
}
