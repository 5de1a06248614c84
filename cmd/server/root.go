package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sebasr/device-timeseries/internal/config"
	"github.com/sebasr/device-timeseries/internal/database"
	"github.com/sebasr/device-timeseries/internal/logging"
	"github.com/sebasr/device-timeseries/internal/repository"
	"github.com/sebasr/device-timeseries/internal/timeseries"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "device-timeseries",
	Short: "Time-series storage and aggregation for fielded IoT devices",
	Long: `device-timeseries ingests sensor telemetry over HTTP and MQTT, stores raw
samples in PostgreSQL or SQLite and serves resolution-aware range reads and
batched latest-value reads.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if cfgFile != "" {
			_ = os.Setenv("CONFIG_FILE", cfgFile)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (overrides CONFIG_FILE)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds the components shared by every subcommand
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       *database.DB
	devices  *repository.SQLDeviceRepository
	samples  *repository.SQLSampleRepository
	fetcher  *timeseries.Fetcher
	latest   *timeseries.LatestFetcher
	ingestor *timeseries.Ingestor
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.ApplySchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("database ready", zap.String("driver", cfg.Database.Driver))

	devices := repository.NewSQLDeviceRepository(db)
	samples := repository.NewSQLSampleRepository(db)

	engine, err := timeseries.NewEngine(cfg.Timeseries.AggregationEngine, samples, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		devices:  devices,
		samples:  samples,
		fetcher:  timeseries.NewFetcher(devices, samples, engine, cfg.Timeseries, logger),
		latest:   timeseries.NewLatestFetcher(devices, samples, logger),
		ingestor: timeseries.NewIngestor(devices, samples, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("error closing database", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
