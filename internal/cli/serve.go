package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"sustainapi/internal/dataset"
	"sustainapi/internal/db"
	"sustainapi/internal/http/handlers"
	"sustainapi/internal/http/server"
	"sustainapi/internal/telemetry"
)

const telemetryShutdownTimeout = 5 * time.Second

func newServeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *globalOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	shutdownTracing, err := telemetry.Setup(ctx, cfg, Version)
	if err != nil {
		return fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("%s otel shutdown: %v", cfg.ServiceName, err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := handlers.NewMetrics(reg)

	storeOpts := []dataset.StoreOption{dataset.WithObserver(metrics.ObserveLoad)}

	var gdb *gorm.DB
	if cfg.DatabaseURL != "" {
		gdb, err = db.Connect(cfg)
		if err != nil {
			return fmt.Errorf("failed to connect database: %w", err)
		}
		db.StartRetentionWorker(gdb)
		storeOpts = append(storeOpts, dataset.WithObserver(db.LoadRecorder(gdb, cfg.LoadRetentionDays)))
		log.Printf("dataset load audit enabled (retention %d days)", cfg.LoadRetentionDays)
	}

	store := dataset.NewStore(cfg.DataFile, storeOpts...)
	if !cfg.LazyLoad || cfg.RequireData {
		if err := store.Ensure(); err != nil {
			if cfg.RequireData {
				return err
			}
			log.Printf("warning: %v; serving with data_loaded=false", err)
		}
	} else {
		log.Printf("lazy load enabled; %s will be read on first data request", cfg.DataFile)
	}

	srv := server.New(server.Options{
		Config:   cfg,
		Store:    store,
		DB:       gdb,
		Metrics:  metrics,
		Gatherer: reg,
	})
	defer srv.Close()

	return srv.ListenAndServe(ctx)
}
