package inventory

import "github.com/eshaffer321/resale-ledger/internal/domain/money"

// Profit is the realized result of selling one item.
type Profit struct {
	ItemID        string `json:"item_id"`
	SalePrice     int64  `json:"sale_price"`
	AllocatedCost int64  `json:"allocated_cost"`
	Profit        int64  `json:"profit"`
	// ROIBasisPoints is profit / allocated cost in 1/100 of a percent,
	// rounded half-up on its magnitude, so losses round away from zero like
	// gains do. Zero when the allocated cost is zero or the ratio does not
	// fit in int64.
	ROIBasisPoints int64 `json:"roi_bps"`
}

// ItemProfit returns the item's profit once it has both a sale price and an
// allocated cost; ok is false otherwise.
func ItemProfit(it Item) (p Profit, ok bool) {
	if it.SalePrice == nil || it.AllocatedCost == nil {
		return Profit{}, false
	}
	p = Profit{
		ItemID:        it.ID,
		SalePrice:     *it.SalePrice,
		AllocatedCost: *it.AllocatedCost,
		Profit:        *it.SalePrice - *it.AllocatedCost,
	}
	if p.AllocatedCost > 0 {
		p.ROIBasisPoints = roiBasisPoints(p.Profit, p.AllocatedCost)
	}
	return p, true
}

func roiBasisPoints(profit, cost int64) int64 {
	magnitude := profit
	if profit < 0 {
		magnitude = -profit
	}
	bps, err := money.Share(magnitude, 10000, cost)
	if err != nil {
		return 0
	}
	if profit < 0 {
		return -bps
	}
	return bps
}
