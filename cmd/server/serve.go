package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sebasr/device-timeseries/internal/ingest"
	"github.com/sebasr/device-timeseries/internal/server"
)

const shutdownTimeout = 15 * time.Second

var listenPort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and MQTT subscriber (default command)",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenPort, "port", "", "HTTP port (overrides PORT)")
	rootCmd.AddCommand(serveCmd)

	// Make serve the default command.
	rootCmd.RunE = runServe
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if listenPort != "" {
		a.cfg.Server.Port = listenPort
	}

	router := server.New(&server.Dependencies{
		Config:     a.cfg,
		DB:         a.db,
		DeviceRepo: a.devices,
		Fetcher:    a.fetcher,
		Latest:     a.latest,
		Ingestor:   a.ingestor,
		Logger:     a.logger,
	})

	srv := &http.Server{
		Addr:              ":" + a.cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("starting server", zap.String("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if a.cfg.MQTT.Enabled() {
		sub := ingest.NewSubscriber(a.cfg.MQTT, a.devices, a.ingestor, a.cfg.Timeseries.IngestTimeout, a.logger)
		g.Go(func() error { return sub.Run(gctx) })
	} else {
		a.logger.Info("MQTT ingestion disabled")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Error("server exited with error", zap.Error(err))
		return err
	}

	a.logger.Info("shutdown complete")
	return nil
}
