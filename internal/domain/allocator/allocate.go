package allocator

import (
	"fmt"

	"github.com/eshaffer321/resale-ledger/internal/domain/inventory"
	"github.com/eshaffer321/resale-ledger/internal/domain/money"
)

// TotalCost is everything a store purchase must recover through its items:
// its own subtotal plus its apportioned share of the session's common cost.
func TotalCost(sp inventory.StorePurchase, apportioned int64) (int64, error) {
	if err := money.Validate("apportioned_common_cost", apportioned); err != nil {
		return 0, err
	}
	subtotal, err := Subtotal(sp)
	if err != nil {
		return 0, err
	}
	return money.Add(subtotal, apportioned)
}

// Allocate computes each registered item's allocated cost, keyed by item ID.
//
// The divisor is the number of items actually registered, not the store
// purchase's expected ItemCount. Every item receives the same value in both
// price input modes; an item's PurchaseCost is a reference value only and is
// never used as a weight. No registered items yields an empty map.
func Allocate(sp inventory.StorePurchase, apportioned int64, items []inventory.Item) (map[string]int64, error) {
	perItem, err := PerItemCost(sp, apportioned, len(items))
	if err != nil {
		return nil, err
	}

	allocations := make(map[string]int64, len(items))
	if len(items) == 0 {
		return allocations, nil
	}
	for _, it := range items {
		allocations[it.ID] = perItem
	}
	return allocations, nil
}

// PerItemCost is the uniform value Allocate assigns to each of registered items.
// It returns 0 when registered is 0.
func PerItemCost(sp inventory.StorePurchase, apportioned int64, registered int) (int64, error) {
	if !sp.PriceInputMode.Valid() {
		return 0, fmt.Errorf("%w: %q on store purchase %s", ErrInvalidPriceMode, sp.PriceInputMode, sp.ID)
	}

	total, err := TotalCost(sp, apportioned)
	if err != nil {
		return 0, fmt.Errorf("store purchase %s: %w", sp.ID, err)
	}

	if registered == 0 {
		return 0, nil
	}

	// batch and individual share one policy: even division over registered items.
	perItem, err := money.Divide(total, registered)
	if err != nil {
		return 0, fmt.Errorf("store purchase %s: %w", sp.ID, err)
	}
	return perItem, nil
}
