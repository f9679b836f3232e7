package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mkarlsen/pulse/internal/archive"
	"github.com/mkarlsen/pulse/internal/cache"
	"github.com/mkarlsen/pulse/internal/config"
	"github.com/mkarlsen/pulse/internal/loader"
	"github.com/mkarlsen/pulse/internal/provider"
)

// loadConfig reads the --config file, falling back to defaults.
func loadConfig(log *zap.Logger) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Defaults()
		log.Warn("no config file specified, using defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// buildProviders resolves the configured provider order into a chain.
func buildProviders(cfg *config.Config) []provider.Provider {
	var out []provider.Provider
	for _, name := range cfg.Providers.Order {
		switch name {
		case "stooq":
			out = append(out, provider.NewStooq())
		case "yahoo":
			out = append(out, provider.NewYahoo())
		}
	}
	return out
}

// buildLoader wires the price loader over the configured tiers.
func buildLoader(cfg *config.Config, log *zap.Logger, opts ...loader.Option) (*loader.Loader, *cache.PriceStore, error) {
	store, err := cache.NewPriceStore(cfg.Cache.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening price store: %w", err)
	}

	opts = append(opts, loader.WithRetryPolicy(provider.RetryPolicy{
		MaxAttempts: cfg.Providers.Retry.MaxAttempts,
		BaseWait:    cfg.Providers.Retry.BaseWait,
		MaxWait:     cfg.Providers.Retry.MaxWait,
	}))

	l := loader.New(store, cache.NewRangeCache(cfg.Cache.RangeSize), buildProviders(cfg), log, opts...)
	return l, store, nil
}

// buildReports wires the configured archive backend, or returns nil
// when archiving is not configured.
func buildReports(cfg *config.Config, log *zap.Logger) (*archive.Reports, error) {
	var store archive.Storage
	var err error

	switch cfg.Archive.Type {
	case "localfs":
		store, err = archive.NewLocalFS(cfg.Archive.Path)
	case "s3":
		store, err = archive.NewS3(archive.S3Config{
			Bucket:    cfg.Archive.S3.Bucket,
			Endpoint:  cfg.Archive.S3.Endpoint,
			Region:    cfg.Archive.S3.Region,
			AccessKey: cfg.Archive.S3.AccessKey,
			SecretKey: cfg.Archive.S3.SecretKey,
			Prefix:    cfg.Archive.S3.Prefix,
		})
	default:
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("building archive storage: %w", err)
	}
	return archive.NewReports(store, log, cfg.Cache.TTL), nil
}
