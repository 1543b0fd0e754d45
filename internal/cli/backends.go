package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eshaffer321/resale-ledger/internal/infrastructure/config"
	"github.com/eshaffer321/resale-ledger/internal/infrastructure/lock"
	"github.com/eshaffer321/resale-ledger/internal/infrastructure/storage"
)

// Backends are the storage and locking connections a command runs on.
type Backends struct {
	Store       *storage.Storage
	Locker      lock.Locker
	closeLocker func() error
}

// OpenBackends connects to the configured database and lock backend.
func OpenBackends(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backends, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	store, err := storage.Open(cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	locker, closeLocker, err := lock.FromConfig(ctx, cfg.Locking)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize locking: %w", err)
	}

	return &Backends{Store: store, Locker: locker, closeLocker: closeLocker}, nil
}

// Close releases both connections.
func (b *Backends) Close() error {
	lockErr := b.closeLocker()
	if err := b.Store.Close(); err != nil {
		return err
	}
	return lockErr
}
