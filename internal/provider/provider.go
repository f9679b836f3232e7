// Package provider implements remote daily-price sources. Each provider
// exposes the same narrow fetch capability so the loader can try them
// in priority order.
package provider

import (
	"context"
	"time"

	"github.com/mkarlsen/pulse/internal/core"
)

// Provider fetches daily close prices for a symbol and date window.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// FetchDaily returns daily (date, close) observations inside
	// [start, end]. Transient failures are marked retryable via
	// core.MarkTransient; empty or malformed payloads are not.
	FetchDaily(ctx context.Context, symbol string, start, end time.Time) (core.Series, error)
}
