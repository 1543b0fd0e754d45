package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/eshaffer321/resale-ledger/internal/domain/inventory"
)

const itemColumns = `id, store_purchase_id, name, purchase_cost, allocated_cost,
	status, list_price, sale_price, sold_at, created_at, updated_at`

// CreateItems inserts items in one transaction. allocated_cost always starts
// NULL, whatever the caller put in AllocatedCost.
func (s *Storage) CreateItems(ctx context.Context, items []*inventory.Item) error {
	if len(items) == 0 {
		return nil
	}

	now := s.now()
	return s.withTx(ctx, false, func(tx *sql.Tx) error {
		for _, it := range items {
			it.CreatedAt, it.UpdatedAt = now, now
			it.AllocatedCost = nil

			_, err := tx.ExecContext(ctx, `
			INSERT INTO items (id, store_purchase_id, name, purchase_cost, status,
			                   list_price, sale_price, sold_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				it.ID, it.StorePurchaseID, it.Name, nullInt(it.PurchaseCost), string(it.Status),
				nullInt(it.ListPrice), nullInt(it.SalePrice), nullTime(it.SoldAt),
				it.CreatedAt, it.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("insert item %s: %w", it.ID, err)
			}
		}
		return nil
	})
}

// GetItem retrieves an item by ID
func (s *Storage) GetItem(ctx context.Context, id string) (*inventory.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	it, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	return it, nil
}

// ListItems returns the store purchase's registered items in creation order.
func (s *Storage) ListItems(ctx context.Context, storePurchaseID string) ([]inventory.Item, error) {
	return listItems(ctx, s.db, storePurchaseID)
}

func listItems(ctx context.Context, q querier, storePurchaseID string) ([]inventory.Item, error) {
	rows, err := q.QueryContext(ctx, `
	SELECT `+itemColumns+` FROM items
	WHERE store_purchase_id = ?
	ORDER BY created_at, id`, storePurchaseID)
	if err != nil {
		return nil, fmt.Errorf("list items for store purchase %s: %w", storePurchaseID, err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]inventory.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

// CountItems returns how many items are registered against the store purchase.
func (s *Storage) CountItems(ctx context.Context, storePurchaseID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE store_purchase_id = ?`, storePurchaseID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// UpdateItem overwrites the user-editable fields. It never writes
// allocated_cost or store_purchase_id.
func (s *Storage) UpdateItem(ctx context.Context, it *inventory.Item) error {
	it.UpdatedAt = s.now()

	res, err := s.db.ExecContext(ctx, `
	UPDATE items
	SET name = ?, purchase_cost = ?, status = ?, list_price = ?, sale_price = ?, sold_at = ?, updated_at = ?
	WHERE id = ?`,
		it.Name, nullInt(it.PurchaseCost), string(it.Status),
		nullInt(it.ListPrice), nullInt(it.SalePrice), nullTime(it.SoldAt),
		it.UpdatedAt, it.ID,
	)
	if err != nil {
		return fmt.Errorf("update item %s: %w", it.ID, err)
	}
	return expectOne(res, "item", it.ID)
}

// DeleteItem removes an item.
func (s *Storage) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	return expectOne(res, "item", id)
}

func scanItem(r rowScanner) (*inventory.Item, error) {
	var (
		it                                inventory.Item
		purchase, allocated, listP, saleP sql.NullInt64
		status                            string
		soldAt                            sql.NullTime
	)
	if err := r.Scan(
		&it.ID, &it.StorePurchaseID, &it.Name, &purchase, &allocated,
		&status, &listP, &saleP, &soldAt, &it.CreatedAt, &it.UpdatedAt,
	); err != nil {
		return nil, err
	}
	it.PurchaseCost = intPtr(purchase)
	it.AllocatedCost = intPtr(allocated)
	it.Status = inventory.ItemStatus(status)
	it.ListPrice = intPtr(listP)
	it.SalePrice = intPtr(saleP)
	it.SoldAt = timePtr(soldAt)
	return &it, nil
}
