package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkarlsen/pulse/internal/analytics"
	"github.com/mkarlsen/pulse/internal/api"
	"github.com/mkarlsen/pulse/internal/loader"
	"github.com/mkarlsen/pulse/internal/logger"
	"github.com/mkarlsen/pulse/internal/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Pulse server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	log.Info("starting Pulse server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	var reg *metrics.Registry
	var opts []loader.Option
	if cfg.Metrics.Enabled {
		reg = metrics.NewRegistry()
		opts = append(opts, loader.WithObserver(reg))
	}

	l, store, err := buildLoader(cfg, log, opts...)
	if err != nil {
		return err
	}
	defer store.Close()

	reports, err := buildReports(cfg, log)
	if err != nil {
		return err
	}

	server := api.NewServer(api.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		APIKey:      cfg.Server.APIKey,
		MetricsPath: cfg.Metrics.Path,
	}, api.Deps{
		Prices:         l,
		Engine:         analytics.NewEngine(log),
		Reports:        reports,
		Registry:       reg,
		RiskFree:       cfg.Analytics.RiskFree,
		PeriodsPerYear: cfg.Analytics.PeriodsPerYear,
	}, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down Pulse server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
