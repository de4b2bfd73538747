// Package store provides the synchronous string key/value persistence the
// board snapshots itself into.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yurufuwa/board/pkg/config"
	"github.com/yurufuwa/board/pkg/logging"
)

var (
	// ErrNotFound is returned by Get for an absent key
	ErrNotFound = errors.New("key not found")
	// ErrQuotaExceeded is returned by Set when the write would exceed the store's capacity
	ErrQuotaExceeded = errors.New("store quota exceeded")
)

// Store is a string-keyed, string-valued persistent store
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Open creates the store selected by cfg.Driver
func Open(ctx context.Context, cfg *config.StoreConfig, logLevel string) (Store, error) {
	logger := logging.WithComponent("store")

	switch cfg.Driver {
	case config.DriverMemory:
		logger.Info("Using in-memory store", zap.Int("quota_bytes", cfg.QuotaBytes))
		return NewMemory(cfg.QuotaBytes), nil
	case config.DriverRedis:
		return NewRedis(ctx, cfg.URL)
	case config.DriverSQLite, config.DriverPostgres:
		return NewSQL(ctx, cfg.Driver, cfg.URL, logLevel)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
