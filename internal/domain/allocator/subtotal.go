// Package allocator turns the three levels of purchase costs into one
// allocated cost per item.
//
// A session's common cost is apportioned across its store purchases by their
// share of the session's subtotal:
//
//	share = round(commonCost * subtotal / sessionTotal)
//
// and each store purchase's total (subtotal + share) is divided evenly across
// its registered items:
//
//	itemCost = round((subtotal + share) / registeredItems)
//
// Shares are rounded independently, so their sum may drift from the common
// cost by up to n-1 for n store purchases. The drift is reported, never
// redistributed.
package allocator

import (
	"errors"

	"github.com/eshaffer321/resale-ledger/internal/domain/inventory"
	"github.com/eshaffer321/resale-ledger/internal/domain/money"
)

var (
	// ErrInvalidAmount is money.ErrInvalidAmount, re-exported for callers of this package.
	ErrInvalidAmount = money.ErrInvalidAmount

	// ErrOverflow is money.ErrOverflow, re-exported for callers of this package.
	ErrOverflow = money.ErrOverflow

	// ErrInvalidPriceMode is returned for a store purchase with an unknown price input mode.
	ErrInvalidPriceMode = errors.New("invalid price input mode")
)

// Subtotal is a store purchase's own direct cost:
// product amount + shipping + commission, absent fields counting as 0.
func Subtotal(sp inventory.StorePurchase) (int64, error) {
	return money.Sum(
		[]string{"product_amount", "shipping_cost", "commission_fee"},
		sp.ProductAmount, sp.ShippingCost, sp.CommissionFee,
	)
}

// CommonCost is the session's shared cost to be apportioned.
func CommonCost(s inventory.Session) (int64, error) {
	return s.CommonCost()
}
