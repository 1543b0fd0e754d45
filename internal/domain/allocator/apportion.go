package allocator

import (
	"fmt"

	"github.com/eshaffer321/resale-ledger/internal/domain/inventory"
	"github.com/eshaffer321/resale-ledger/internal/domain/money"
)

// Apportion distributes the session's common cost across its store purchases
// in proportion to each one's subtotal. The result is keyed by store purchase ID.
//
// A session with no store purchases, or whose subtotals are all zero, yields
// zero shares rather than an error.
func Apportion(session inventory.Session, storePurchases []inventory.StorePurchase) (map[string]int64, error) {
	common, err := CommonCost(session)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", session.ID, err)
	}

	subtotals := make([]int64, len(storePurchases))
	var total int64
	for i, sp := range storePurchases {
		st, err := Subtotal(sp)
		if err != nil {
			return nil, fmt.Errorf("store purchase %s: %w", sp.ID, err)
		}
		subtotals[i] = st
		if total, err = money.Add(total, st); err != nil {
			return nil, fmt.Errorf("session %s subtotal: %w", session.ID, err)
		}
	}

	shares := make(map[string]int64, len(storePurchases))
	if total == 0 {
		for _, sp := range storePurchases {
			shares[sp.ID] = 0
		}
		return shares, nil
	}

	for i, sp := range storePurchases {
		share, err := money.Share(common, subtotals[i], total)
		if err != nil {
			return nil, fmt.Errorf("store purchase %s: %w", sp.ID, err)
		}
		shares[sp.ID] = share
	}

	return shares, nil
}
