package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eshaffer321/resale-ledger/internal/domain/inventory"
)

const storePurchaseColumns = `id, session_id, store_name, product_amount, shipping_cost, commission_fee,
	item_count, price_input_mode, created_at, updated_at`

// CreateStorePurchase inserts a store purchase under its session.
func (s *Storage) CreateStorePurchase(ctx context.Context, sp *inventory.StorePurchase) error {
	now := s.now()
	sp.CreatedAt, sp.UpdatedAt = now, now

	_, err := s.db.ExecContext(ctx, `
	INSERT INTO store_purchases (`+storePurchaseColumns+`)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sp.ID, sp.SessionID, sp.StoreName,
		nullInt(sp.ProductAmount), nullInt(sp.ShippingCost), nullInt(sp.CommissionFee),
		sp.ItemCount, string(sp.PriceInputMode), sp.CreatedAt, sp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert store purchase: %w", err)
	}
	return nil
}

// GetStorePurchase retrieves a store purchase by ID
func (s *Storage) GetStorePurchase(ctx context.Context, id string) (*inventory.StorePurchase, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+storePurchaseColumns+` FROM store_purchases WHERE id = ?`, id)
	sp, err := scanStorePurchase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("store purchase %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get store purchase %s: %w", id, err)
	}
	return sp, nil
}

// ListStorePurchases returns the session's store purchases in creation order.
func (s *Storage) ListStorePurchases(ctx context.Context, sessionID string) ([]inventory.StorePurchase, error) {
	return listStorePurchases(ctx, s.db, sessionID)
}

func listStorePurchases(ctx context.Context, q querier, sessionID string) ([]inventory.StorePurchase, error) {
	rows, err := q.QueryContext(ctx, `
	SELECT `+storePurchaseColumns+` FROM store_purchases
	WHERE session_id = ?
	ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list store purchases for session %s: %w", sessionID, err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]inventory.StorePurchase, 0)
	for rows.Next() {
		sp, err := scanStorePurchase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sp)
	}
	return out, rows.Err()
}

// CountStorePurchases returns how many store purchases the session owns.
func (s *Storage) CountStorePurchases(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM store_purchases WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count store purchases: %w", err)
	}
	return n, nil
}

// UpdateStorePurchase overwrites the editable fields. session_id is left alone.
func (s *Storage) UpdateStorePurchase(ctx context.Context, sp *inventory.StorePurchase) error {
	sp.UpdatedAt = s.now()

	res, err := s.db.ExecContext(ctx, `
	UPDATE store_purchases
	SET store_name = ?, product_amount = ?, shipping_cost = ?, commission_fee = ?,
	    item_count = ?, price_input_mode = ?, updated_at = ?
	WHERE id = ?`,
		sp.StoreName, nullInt(sp.ProductAmount), nullInt(sp.ShippingCost), nullInt(sp.CommissionFee),
		sp.ItemCount, string(sp.PriceInputMode), sp.UpdatedAt, sp.ID,
	)
	if err != nil {
		return fmt.Errorf("update store purchase %s: %w", sp.ID, err)
	}
	return expectOne(res, "store purchase", sp.ID)
}

// DeleteStorePurchase removes a store purchase. The foreign key on items
// rejects the delete while it still owns items.
func (s *Storage) DeleteStorePurchase(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM store_purchases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete store purchase %s: %w", id, err)
	}
	return expectOne(res, "store purchase", id)
}

func scanStorePurchase(r rowScanner) (*inventory.StorePurchase, error) {
	var (
		sp                    inventory.StorePurchase
		product, ship, commis sql.NullInt64
		mode                  string
	)
	if err := r.Scan(
		&sp.ID, &sp.SessionID, &sp.StoreName,
		&product, &ship, &commis,
		&sp.ItemCount, &mode, &sp.CreatedAt, &sp.UpdatedAt,
	); err != nil {
		return nil, err
	}
	sp.ProductAmount = intPtr(product)
	sp.ShippingCost = intPtr(ship)
	sp.CommissionFee = intPtr(commis)
	sp.PriceInputMode = inventory.PriceInputMode(mode)
	return &sp, nil
}
