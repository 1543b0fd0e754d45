package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/eshaffer321/resale-ledger/internal/domain/inventory"
)

// WithAllocationTx runs fn against one transaction so that the session, its
// store purchases and their items are read as one snapshot and the resulting
// allocated costs are written all-or-nothing.
func (s *Storage) WithAllocationTx(ctx context.Context, readOnly bool, fn func(tx AllocationTx) error) error {
	return s.withTx(ctx, readOnly, func(tx *sql.Tx) error {
		return fn(&allocationTx{tx: tx, dialect: s.dialect, readOnly: readOnly})
	})
}

type allocationTx struct {
	tx       *sql.Tx
	dialect  dialect
	readOnly bool
}

func (a *allocationTx) LockSession(ctx context.Context, id string) (*inventory.Session, error) {
	suffix := a.dialect.lockSuffix
	if a.readOnly {
		suffix = ""
	}
	return getSession(ctx, a.tx, id, suffix)
}

func (a *allocationTx) ListStorePurchases(ctx context.Context, sessionID string) ([]inventory.StorePurchase, error) {
	return listStorePurchases(ctx, a.tx, sessionID)
}

func (a *allocationTx) ListItems(ctx context.Context, storePurchaseID string) ([]inventory.Item, error) {
	return listItems(ctx, a.tx, storePurchaseID)
}

// SetAllocatedCosts writes every cost in item ID order. An item that vanished
// mid-transaction fails the whole write with ErrNotFound.
func (a *allocationTx) SetAllocatedCosts(ctx context.Context, costs map[string]int64) error {
	if a.readOnly {
		return ErrReadOnlyTx
	}

	ids := make([]string, 0, len(costs))
	for id := range costs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		res, err := a.tx.ExecContext(ctx, `UPDATE items SET allocated_cost = ? WHERE id = ?`, costs[id], id)
		if err != nil {
			return fmt.Errorf("set allocated cost for item %s: %w", id, err)
		}
		if err := expectOne(res, "item", id); err != nil {
			return err
		}
	}
	return nil
}
