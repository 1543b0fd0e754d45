// Package recalc recomputes and persists every item's allocated cost for a
// session. It is the single writer of allocated costs: every change to a
// session's fees, a store purchase's amounts, or the set of registered items
// ends with a call to Recalculate.
package recalc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eshaffer321/resale-ledger/internal/domain/allocator"
	"github.com/eshaffer321/resale-ledger/internal/domain/inventory"
	"github.com/eshaffer321/resale-ledger/internal/infrastructure/lock"
	"github.com/eshaffer321/resale-ledger/internal/infrastructure/storage"
)

// ErrNotFound is returned when the session does not exist.
var ErrNotFound = storage.ErrNotFound

// Store is what recalculation needs from storage.
type Store interface {
	storage.AllocationStore
	ListSessionIDs(ctx context.Context) ([]string, error)
}

// Result describes one recalculation.
type Result struct {
	SessionID    string
	Plan         *allocator.SessionPlan
	ItemsUpdated int
	DryRun       bool
	Duration     time.Duration
}

// Failure is a session that could not be recalculated in a batch run.
type Failure struct {
	SessionID string
	Err       error
}

// BatchResult is the outcome of RecalculateAll or PreviewAll. Each session commits or rolls
// back on its own.
type BatchResult struct {
	Succeeded []*Result
	Failed    []Failure
}

// Service recalculates allocated costs.
type Service struct {
	store  Store
	locker lock.Locker
	logger *slog.Logger
}

// NewService creates a recalculation service. A nil locker falls back to an
// in-process lock.
func NewService(store Store, locker lock.Locker, logger *slog.Logger) *Service {
	if locker == nil {
		locker = lock.NewLocal()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  store,
		locker: locker,
		logger: logger.With("component", "recalc"),
	}
}

// Recalculate reads the session, its store purchases and their items in one
// transaction, plans the allocation and overwrites every item's allocated
// cost. Either every item is written or none is.
func (s *Service) Recalculate(ctx context.Context, sessionID string) (*Result, error) {
	return s.run(ctx, sessionID, false)
}

// Preview computes the allocation the next Recalculate would persist without
// writing anything.
func (s *Service) Preview(ctx context.Context, sessionID string) (*Result, error) {
	return s.run(ctx, sessionID, true)
}

// RecalculateAll recalculates every session in turn. A failing session is
// recorded and the run moves on; sessions already written stay written.
func (s *Service) RecalculateAll(ctx context.Context) (*BatchResult, error) {
	return s.runAll(ctx, false)
}

// PreviewAll previews every session in turn, recording failures like
// RecalculateAll. Nothing is written.
func (s *Service) PreviewAll(ctx context.Context) (*BatchResult, error) {
	return s.runAll(ctx, true)
}

func (s *Service) runAll(ctx context.Context, dryRun bool) (*BatchResult, error) {
	ids, err := s.store.ListSessionIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	batch := &BatchResult{}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return batch, err
		}
		res, err := s.run(ctx, id, dryRun)
		if err != nil {
			batch.Failed = append(batch.Failed, Failure{SessionID: id, Err: err})
			continue
		}
		batch.Succeeded = append(batch.Succeeded, res)
	}

	s.logger.Info("batch recalculation finished",
		"sessions", len(ids),
		"succeeded", len(batch.Succeeded),
		"failed", len(batch.Failed),
		"dry_run", dryRun,
	)
	return batch, nil
}

func (s *Service) run(ctx context.Context, sessionID string, dryRun bool) (*Result, error) {
	start := time.Now()

	if !dryRun {
		unlock, err := s.locker.Lock(ctx, "session:"+sessionID)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", sessionID, err)
		}
		defer unlock()
	}

	var plan *allocator.SessionPlan
	err := s.store.WithAllocationTx(ctx, dryRun, func(tx storage.AllocationTx) error {
		snap, err := loadSnapshot(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		plan, err = allocator.Plan(*snap)
		if err != nil {
			return err
		}

		if dryRun || len(plan.ItemCosts) == 0 {
			return nil
		}
		return tx.SetAllocatedCosts(ctx, plan.ItemCosts)
	})
	if err != nil {
		level := slog.LevelError
		if errors.Is(err, ErrNotFound) {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "recalculation failed",
			"session_id", sessionID,
			"dry_run", dryRun,
			"error", err,
		)
		return nil, err
	}

	res := &Result{
		SessionID: sessionID,
		Plan:      plan,
		DryRun:    dryRun,
		Duration:  time.Since(start),
	}
	if !dryRun {
		res.ItemsUpdated = len(plan.ItemCosts)
	}

	s.logger.Info("recalculated session",
		"session_id", sessionID,
		"dry_run", dryRun,
		"store_purchases", len(plan.StorePurchases),
		"items", len(plan.ItemCosts),
		"common_cost", plan.CommonCost,
		"apportion_drift", plan.ApportionDrift(),
		"duration_ms", res.Duration.Milliseconds(),
	)
	for _, sp := range plan.StorePurchases {
		s.logger.Debug("store purchase allocation",
			"session_id", sessionID,
			"store_purchase_id", sp.StorePurchaseID,
			"subtotal", sp.Subtotal,
			"apportioned", sp.ApportionedShare,
			"total_cost", sp.TotalCost,
			"registered_items", sp.RegisteredItems,
			"expected_items", sp.ExpectedItems,
			"per_item_cost", sp.PerItemCost,
			"rounding_drift", sp.RoundingDrift,
		)
	}

	return res, nil
}

func loadSnapshot(ctx context.Context, tx storage.AllocationTx, sessionID string) (*inventory.SessionSnapshot, error) {
	session, err := tx.LockSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	storePurchases, err := tx.ListStorePurchases(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list store purchases for session %s: %w", sessionID, err)
	}

	snap := &inventory.SessionSnapshot{
		Session:        *session,
		StorePurchases: make([]inventory.StorePurchaseSnapshot, 0, len(storePurchases)),
	}
	for _, sp := range storePurchases {
		items, err := tx.ListItems(ctx, sp.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list items for store purchase %s: %w", sp.ID, err)
		}
		snap.StorePurchases = append(snap.StorePurchases, inventory.StorePurchaseSnapshot{
			StorePurchase: sp,
			Items:         items,
		})
	}
	return snap, nil
}
