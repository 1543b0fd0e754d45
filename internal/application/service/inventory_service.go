package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/resale-ledger/internal/application/recalc"
	"github.com/eshaffer321/resale-ledger/internal/domain/inventory"
	"github.com/eshaffer321/resale-ledger/internal/domain/money"
	"github.com/eshaffer321/resale-ledger/internal/infrastructure/storage"
)

// MaxBulkItems caps a single BulkCreateItems call.
const MaxBulkItems = 500

// Recalculator is the part of recalc.Service the inventory service drives.
type Recalculator interface {
	Recalculate(ctx context.Context, sessionID string) (*recalc.Result, error)
}

// InventoryService owns sessions, store purchases and items. Every write that
// changes an allocation input is followed by a recalculation of the owning
// session before the call returns.
type InventoryService struct {
	storage storage.Repository
	recalc  Recalculator
	logger  *slog.Logger
	now     func() time.Time
	newID   func() string
}

// NewInventoryService creates an inventory service.
func NewInventoryService(store storage.Repository, recalculator Recalculator, logger *slog.Logger) *InventoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InventoryService{
		storage: store,
		recalc:  recalculator,
		logger:  logger.With("component", "inventory"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (s *InventoryService) recalculate(ctx context.Context, sessionID, cause string) error {
	res, err := s.recalc.Recalculate(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("recalculate session %s after %s: %w", sessionID, cause, err)
	}
	s.logger.Debug("allocation refreshed",
		"session_id", sessionID,
		"cause", cause,
		"items_updated", res.ItemsUpdated,
	)
	return nil
}

// ---- sessions ----

// CreateSession validates and stores a new session. A new session has no
// store purchases, so there is nothing to allocate yet.
func (s *InventoryService) CreateSession(ctx context.Context, session *inventory.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}
	session.ID = s.newID()
	if err := s.storage.CreateSession(ctx, session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	s.logger.Info("session created", "session_id", session.ID, "name", session.Name)
	return nil
}

// GetSession returns a session by ID.
func (s *InventoryService) GetSession(ctx context.Context, id string) (*inventory.Session, error) {
	return s.storage.GetSession(ctx, id)
}

// ListSessions returns sessions newest first.
func (s *InventoryService) ListSessions(ctx context.Context, filters storage.SessionFilters) ([]inventory.Session, error) {
	return s.storage.ListSessions(ctx, filters)
}

// UpdateSession replaces the session's fields and refreshes its allocation.
func (s *InventoryService) UpdateSession(ctx context.Context, session *inventory.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}
	if err := s.storage.UpdateSession(ctx, session); err != nil {
		return err
	}
	return s.recalculate(ctx, session.ID, "session update")
}

// DeleteSession removes a session that owns no store purchases.
func (s *InventoryService) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.storage.GetSession(ctx, id); err != nil {
		return err
	}
	n, err := s.storage.CountStorePurchases(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("session %s has %d store purchases: %w", id, n, inventory.ErrSessionInUse)
	}
	if err := s.storage.DeleteSession(ctx, id); err != nil {
		return err
	}
	s.logger.Info("session deleted", "session_id", id)
	return nil
}

// ---- store purchases ----

// CreateStorePurchase adds a store purchase to an existing session and
// re-apportions the session's common cost.
func (s *InventoryService) CreateStorePurchase(ctx context.Context, sp *inventory.StorePurchase) error {
	if sp.PriceInputMode == "" {
		sp.PriceInputMode = inventory.PriceInputBatch
	}
	if err := sp.Validate(); err != nil {
		return err
	}
	if _, err := s.storage.GetSession(ctx, sp.SessionID); err != nil {
		return err
	}
	sp.ID = s.newID()
	if err := s.storage.CreateStorePurchase(ctx, sp); err != nil {
		return fmt.Errorf("failed to create store purchase: %w", err)
	}
	s.logger.Info("store purchase created",
		"store_purchase_id", sp.ID,
		"session_id", sp.SessionID,
		"store", sp.StoreName,
	)
	return s.recalculate(ctx, sp.SessionID, "store purchase create")
}

// GetStorePurchase returns a store purchase by ID.
func (s *InventoryService) GetStorePurchase(ctx context.Context, id string) (*inventory.StorePurchase, error) {
	return s.storage.GetStorePurchase(ctx, id)
}

// ListStorePurchases returns a session's store purchases in creation order.
func (s *InventoryService) ListStorePurchases(ctx context.Context, sessionID string) ([]inventory.StorePurchase, error) {
	if _, err := s.storage.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.storage.ListStorePurchases(ctx, sessionID)
}

// UpdateStorePurchase replaces a store purchase's fields. The owning session
// cannot change.
func (s *InventoryService) UpdateStorePurchase(ctx context.Context, sp *inventory.StorePurchase) error {
	existing, err := s.storage.GetStorePurchase(ctx, sp.ID)
	if err != nil {
		return err
	}
	sp.SessionID = existing.SessionID
	if sp.PriceInputMode == "" {
		sp.PriceInputMode = existing.PriceInputMode
	}
	if err := sp.Validate(); err != nil {
		return err
	}
	if err := s.storage.UpdateStorePurchase(ctx, sp); err != nil {
		return err
	}
	return s.recalculate(ctx, sp.SessionID, "store purchase update")
}

// DeleteStorePurchase removes a store purchase that has no items.
func (s *InventoryService) DeleteStorePurchase(ctx context.Context, id string) error {
	sp, err := s.storage.GetStorePurchase(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.storage.CountItems(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("store purchase %s has %d items: %w", id, n, inventory.ErrStorePurchaseInUse)
	}
	if err := s.storage.DeleteStorePurchase(ctx, id); err != nil {
		return err
	}
	s.logger.Info("store purchase deleted", "store_purchase_id", id, "session_id", sp.SessionID)
	return s.recalculate(ctx, sp.SessionID, "store purchase delete")
}

// ---- items ----

// CreateItem registers one item.
func (s *InventoryService) CreateItem(ctx context.Context, it *inventory.Item) error {
	sp, err := s.storage.GetStorePurchase(ctx, it.StorePurchaseID)
	if err != nil {
		return err
	}
	if err := s.prepareItem(it); err != nil {
		return err
	}
	if err := s.storage.CreateItems(ctx, []*inventory.Item{it}); err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return s.recalculate(ctx, sp.SessionID, "item create")
}

// BulkCreateItems registers n copies of template against one store purchase
// and recalculates once.
func (s *InventoryService) BulkCreateItems(ctx context.Context, storePurchaseID string, n int, template inventory.Item) ([]*inventory.Item, error) {
	if n < 1 || n > MaxBulkItems {
		return nil, fmt.Errorf("%w: count must be between 1 and %d, got %d", inventory.ErrValidation, MaxBulkItems, n)
	}
	sp, err := s.storage.GetStorePurchase(ctx, storePurchaseID)
	if err != nil {
		return nil, err
	}

	items := make([]*inventory.Item, n)
	for i := range items {
		it := template
		it.StorePurchaseID = storePurchaseID
		if template.Name != "" && n > 1 {
			it.Name = fmt.Sprintf("%s #%d", template.Name, i+1)
		}
		if err := s.prepareItem(&it); err != nil {
			return nil, err
		}
		items[i] = &it
	}

	if err := s.storage.CreateItems(ctx, items); err != nil {
		return nil, fmt.Errorf("failed to create items: %w", err)
	}
	s.logger.Info("items created", "store_purchase_id", storePurchaseID, "count", n)

	if err := s.recalculate(ctx, sp.SessionID, "bulk item create"); err != nil {
		return items, err
	}
	return items, nil
}

func (s *InventoryService) prepareItem(it *inventory.Item) error {
	if it.Status == "" {
		it.Status = inventory.StatusInStock
	}
	it.AllocatedCost = nil
	if err := it.Validate(); err != nil {
		return err
	}
	it.ID = s.newID()
	return nil
}

// GetItem returns an item by ID.
func (s *InventoryService) GetItem(ctx context.Context, id string) (*inventory.Item, error) {
	return s.storage.GetItem(ctx, id)
}

// ListItems returns a store purchase's items in registration order.
func (s *InventoryService) ListItems(ctx context.Context, storePurchaseID string) ([]inventory.Item, error) {
	if _, err := s.storage.GetStorePurchase(ctx, storePurchaseID); err != nil {
		return nil, err
	}
	return s.storage.ListItems(ctx, storePurchaseID)
}

// UpdateItem replaces an item's user-entered fields. None of them feed the
// allocation, so no recalculation runs.
func (s *InventoryService) UpdateItem(ctx context.Context, it *inventory.Item) error {
	existing, err := s.storage.GetItem(ctx, it.ID)
	if err != nil {
		return err
	}
	it.StorePurchaseID = existing.StorePurchaseID
	it.AllocatedCost = existing.AllocatedCost
	if it.Status == "" {
		it.Status = existing.Status
	}
	if it.Status != inventory.StatusSold {
		it.SalePrice = nil
		it.SoldAt = nil
	} else {
		// Edits to a sold item keep the recorded sale unless it is replaced.
		if it.SalePrice == nil {
			it.SalePrice = existing.SalePrice
		}
		if it.SoldAt == nil {
			it.SoldAt = existing.SoldAt
		}
	}
	if err := it.Validate(); err != nil {
		return err
	}
	return s.storage.UpdateItem(ctx, it)
}

// MarkSold records a sale. A zero soldAt means now.
func (s *InventoryService) MarkSold(ctx context.Context, id string, salePrice int64, soldAt time.Time) (*inventory.Item, error) {
	if err := money.Validate("sale_price", salePrice); err != nil {
		return nil, err
	}
	it, err := s.storage.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if soldAt.IsZero() {
		soldAt = s.now()
	}
	soldAt = soldAt.UTC()

	it.Status = inventory.StatusSold
	it.SalePrice = money.Ptr(salePrice)
	it.SoldAt = &soldAt
	if err := s.storage.UpdateItem(ctx, it); err != nil {
		return nil, err
	}
	s.logger.Info("item sold", "item_id", id, "sale_price", salePrice)
	return it, nil
}

// ItemProfit returns the realized profit of a sold, allocated item. ok is
// false while the item is unsold or has no allocated cost yet.
func (s *InventoryService) ItemProfit(ctx context.Context, id string) (inventory.Profit, bool, error) {
	it, err := s.storage.GetItem(ctx, id)
	if err != nil {
		return inventory.Profit{}, false, err
	}
	p, ok := inventory.ItemProfit(*it)
	return p, ok, nil
}

// DeleteItem removes an item and spreads its store purchase's cost over the
// items that remain.
func (s *InventoryService) DeleteItem(ctx context.Context, id string) error {
	it, err := s.storage.GetItem(ctx, id)
	if err != nil {
		return err
	}
	sp, err := s.storage.GetStorePurchase(ctx, it.StorePurchaseID)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteItem(ctx, id); err != nil {
		return err
	}
	return s.recalculate(ctx, sp.SessionID, "item delete")
}
