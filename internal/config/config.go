package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mkarlsen/pulse/internal/core"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	Mode   string `mapstructure:"mode"`
	APIKey string `mapstructure:"api_key"`
}

type CacheConfig struct {
	RangeSize int           `mapstructure:"range_size"`
	TTL       time.Duration `mapstructure:"ttl"`
	DBPath    string        `mapstructure:"db_path"`
}

type ProvidersConfig struct {
	// Order lists providers by priority, e.g. ["stooq", "yahoo"].
	Order []string    `mapstructure:"order"`
	Retry RetryConfig `mapstructure:"retry"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseWait    time.Duration `mapstructure:"base_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
}

type AnalyticsConfig struct {
	RiskFree       float64 `mapstructure:"risk_free"`
	PeriodsPerYear int     `mapstructure:"periods_per_year"`
	Benchmark      string  `mapstructure:"benchmark"`
}

type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Mode: "release",
		},
		Cache: CacheConfig{
			RangeSize: 256,
			TTL:       15 * time.Minute,
			DBPath:    "pulse.db",
		},
		Providers: ProvidersConfig{
			Order: []string{"stooq", "yahoo"},
			Retry: RetryConfig{
				MaxAttempts: 5,
				BaseWait:    4 * time.Second,
				MaxWait:     60 * time.Second,
			},
		},
		Analytics: AnalyticsConfig{
			RiskFree:       0.0,
			PeriodsPerYear: 252,
			Benchmark:      "SPY",
		},
		Archive: ArchiveConfig{
			Type: "localfs",
			Path: "archive",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	// Cache validation
	if c.Cache.RangeSize < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("range_size must be positive, got %d", c.Cache.RangeSize))
	}
	if c.Cache.TTL < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("ttl cannot be negative, got %s", c.Cache.TTL))
	}
	if c.Cache.DBPath == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("cache db_path required"))
	}

	// Provider validation
	if len(c.Providers.Order) == 0 {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("at least one provider required"))
	}
	for _, name := range c.Providers.Order {
		switch name {
		case "stooq", "yahoo":
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown provider %q", name))
		}
	}
	if c.Providers.Retry.MaxAttempts < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_attempts must be positive, got %d", c.Providers.Retry.MaxAttempts))
	}

	// Analytics validation
	if c.Analytics.PeriodsPerYear < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("periods_per_year must be positive, got %d", c.Analytics.PeriodsPerYear))
	}

	// Archive validation
	switch c.Archive.Type {
	case "localfs":
		if c.Archive.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive path required for localfs"))
		}
	case "s3":
		if c.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("s3 bucket required when archive type is s3"))
		}
	case "":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type %q", c.Archive.Type))
	}

	return nil
}
