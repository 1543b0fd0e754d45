package allocator

import (
	"fmt"

	"github.com/eshaffer321/resale-ledger/internal/domain/inventory"
	"github.com/eshaffer321/resale-ledger/internal/domain/money"
)

// StorePurchasePlan is the allocation breakdown for one store purchase.
type StorePurchasePlan struct {
	StorePurchaseID  string `json:"store_purchase_id"`
	StoreName        string `json:"store_name"`
	Subtotal         int64  `json:"subtotal"`
	ApportionedShare int64  `json:"apportioned_share"`
	TotalCost        int64  `json:"total_cost"`
	ExpectedItems    int    `json:"expected_items"`
	RegisteredItems  int    `json:"registered_items"`
	PerItemCost      int64  `json:"per_item_cost"`
	// RoundingDrift is the sum of allocated item costs minus TotalCost.
	RoundingDrift int64 `json:"rounding_drift"`
}

// SessionPlan is the full allocation for one session.
type SessionPlan struct {
	SessionID        string              `json:"session_id"`
	CommonCost       int64               `json:"common_cost"`
	ApportionedTotal int64               `json:"apportioned_total"`
	StorePurchases   []StorePurchasePlan `json:"store_purchases"`
	// ItemCosts maps every registered item ID to its allocated cost.
	ItemCosts map[string]int64 `json:"item_costs"`
}

// ApportionDrift is the apportioned total minus the common cost. Its absolute
// value is at most len(StorePurchases)-1.
func (p *SessionPlan) ApportionDrift() int64 {
	return p.ApportionedTotal - p.CommonCost
}

// Plan apportions the session's common cost once and allocates every store
// purchase's total across its registered items. It is pure: the snapshot is
// not modified.
func Plan(snap inventory.SessionSnapshot) (*SessionPlan, error) {
	storePurchases := make([]inventory.StorePurchase, len(snap.StorePurchases))
	for i, sps := range snap.StorePurchases {
		storePurchases[i] = sps.StorePurchase
	}

	common, err := CommonCost(snap.Session)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", snap.Session.ID, err)
	}

	shares, err := Apportion(snap.Session, storePurchases)
	if err != nil {
		return nil, err
	}

	plan := &SessionPlan{
		SessionID:      snap.Session.ID,
		CommonCost:     common,
		StorePurchases: make([]StorePurchasePlan, 0, len(snap.StorePurchases)),
		ItemCosts:      make(map[string]int64, snap.ItemCount()),
	}

	for _, sps := range snap.StorePurchases {
		sp := sps.StorePurchase
		share := shares[sp.ID]
		if plan.ApportionedTotal, err = money.Add(plan.ApportionedTotal, share); err != nil {
			return nil, fmt.Errorf("session %s apportioned total: %w", snap.Session.ID, err)
		}

		allocations, err := Allocate(sp, share, sps.Items)
		if err != nil {
			return nil, err
		}

		// Allocate already validated every amount; these cannot fail.
		subtotal, _ := Subtotal(sp)
		total, _ := TotalCost(sp, share)
		perItem, _ := PerItemCost(sp, share, len(sps.Items))

		spPlan := StorePurchasePlan{
			StorePurchaseID:  sp.ID,
			StoreName:        sp.StoreName,
			Subtotal:         subtotal,
			ApportionedShare: share,
			TotalCost:        total,
			ExpectedItems:    sp.ItemCount,
			RegisteredItems:  len(sps.Items),
			PerItemCost:      perItem,
		}
		if len(sps.Items) > 0 {
			spPlan.RoundingDrift = perItem*int64(len(sps.Items)) - total
		}
		plan.StorePurchases = append(plan.StorePurchases, spPlan)

		for id, cost := range allocations {
			plan.ItemCosts[id] = cost
		}
	}

	return plan, nil
}
