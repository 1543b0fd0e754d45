// Package inventory defines the purchasing hierarchy tracked by the ledger:
// a Session owns StorePurchases, a StorePurchase owns Items.
package inventory

import (
	"errors"
	"fmt"
	"time"

	"github.com/eshaffer321/resale-ledger/internal/domain/money"
)

// PriceInputMode records how a store purchase's prices were entered.
type PriceInputMode string

const (
	// PriceInputIndividual means each item was priced separately.
	PriceInputIndividual PriceInputMode = "individual"
	// PriceInputBatch means one bulk price was paid for all items.
	PriceInputBatch PriceInputMode = "batch"
)

// Valid reports whether m is a known price input mode.
func (m PriceInputMode) Valid() bool {
	return m == PriceInputIndividual || m == PriceInputBatch
}

// ItemStatus tracks an item through listing and sale.
type ItemStatus string

const (
	StatusInStock ItemStatus = "in_stock"
	StatusListed  ItemStatus = "listed"
	StatusSold    ItemStatus = "sold"
)

// Valid reports whether s is a known item status.
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusInStock, StatusListed, StatusSold:
		return true
	}
	return false
}

var (
	// ErrValidation is returned for malformed entity fields.
	ErrValidation = errors.New("validation failed")
	// ErrSessionInUse is returned when deleting a session that still owns store purchases.
	ErrSessionInUse = errors.New("session still has store purchases")
	// ErrStorePurchaseInUse is returned when deleting a store purchase that still owns items.
	ErrStorePurchaseInUse = errors.New("store purchase still has items")
)

// Session is one purchasing trip and its shared costs.
type Session struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	PurchasedOn        time.Time `json:"purchased_on"`
	TransportationCost *int64    `json:"transportation_cost,omitempty"`
	TransferFee        *int64    `json:"transfer_fee,omitempty"`
	AgencyFee          *int64    `json:"agency_fee,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// CommonCost is the sum of the session's shared costs, absent fields counting as 0.
func (s Session) CommonCost() (int64, error) {
	return money.Sum(
		[]string{"transportation_cost", "transfer_fee", "agency_fee"},
		s.TransportationCost, s.TransferFee, s.AgencyFee,
	)
}

// Validate checks the session's amounts.
func (s Session) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: session name is required", ErrValidation)
	}
	if _, err := s.CommonCost(); err != nil {
		return err
	}
	return nil
}

// StorePurchase is one store's worth of goods bought during a session.
type StorePurchase struct {
	ID             string         `json:"id"`
	SessionID      string         `json:"session_id"`
	StoreName      string         `json:"store_name"`
	ProductAmount  *int64         `json:"product_amount,omitempty"`
	ShippingCost   *int64         `json:"shipping_cost,omitempty"`
	CommissionFee  *int64         `json:"commission_fee,omitempty"`
	ItemCount      int            `json:"item_count"`
	PriceInputMode PriceInputMode `json:"price_input_mode"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Validate checks the store purchase's amounts, expected count and price mode.
func (sp StorePurchase) Validate() error {
	if sp.SessionID == "" {
		return fmt.Errorf("%w: session id is required", ErrValidation)
	}
	if sp.ItemCount < 0 {
		return fmt.Errorf("%w: item_count is %d", ErrValidation, sp.ItemCount)
	}
	if !sp.PriceInputMode.Valid() {
		return fmt.Errorf("%w: unknown price input mode %q", ErrValidation, sp.PriceInputMode)
	}
	for name, v := range map[string]*int64{
		"product_amount": sp.ProductAmount,
		"shipping_cost":  sp.ShippingCost,
		"commission_fee": sp.CommissionFee,
	} {
		if err := money.Validate(name, money.ValueOrZero(v)); err != nil {
			return err
		}
	}
	return nil
}

// Item is one physical unit for resale.
type Item struct {
	ID              string     `json:"id"`
	StorePurchaseID string     `json:"store_purchase_id"`
	Name            string     `json:"name"`
	PurchaseCost    *int64     `json:"purchase_cost,omitempty"`
	AllocatedCost   *int64     `json:"allocated_cost"`
	Status          ItemStatus `json:"status"`
	ListPrice       *int64     `json:"list_price,omitempty"`
	SalePrice       *int64     `json:"sale_price,omitempty"`
	SoldAt          *time.Time `json:"sold_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Validate checks the item's user-entered fields. AllocatedCost is not checked:
// it is never user input.
func (it Item) Validate() error {
	if it.StorePurchaseID == "" {
		return fmt.Errorf("%w: store purchase id is required", ErrValidation)
	}
	if !it.Status.Valid() {
		return fmt.Errorf("%w: unknown item status %q", ErrValidation, it.Status)
	}
	for name, v := range map[string]*int64{
		"purchase_cost": it.PurchaseCost,
		"list_price":    it.ListPrice,
		"sale_price":    it.SalePrice,
	} {
		if err := money.Validate(name, money.ValueOrZero(v)); err != nil {
			return err
		}
	}
	if it.Status == StatusSold && it.SalePrice == nil {
		return fmt.Errorf("%w: sold item needs a sale price", ErrValidation)
	}
	return nil
}

// StorePurchaseSnapshot is a store purchase together with its registered items.
type StorePurchaseSnapshot struct {
	StorePurchase StorePurchase
	Items         []Item
}

// SessionSnapshot is everything allocation needs for one session, read at a
// single point in time.
type SessionSnapshot struct {
	Session        Session
	StorePurchases []StorePurchaseSnapshot
}

// ItemCount returns the number of registered items across the session.
func (s SessionSnapshot) ItemCount() int {
	n := 0
	for _, sp := range s.StorePurchases {
		n += len(sp.Items)
	}
	return n
}
