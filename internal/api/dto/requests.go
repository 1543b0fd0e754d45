package dto

import (
	"time"

	"github.com/eshaffer321/resale-ledger/internal/domain/inventory"
)

// Request bodies carry no allocated_cost: it is computed, never entered.

// SessionRequest creates or replaces a session.
type SessionRequest struct {
	Name               string    `json:"name"`
	PurchasedOn        time.Time `json:"purchased_on"`
	TransportationCost *int64    `json:"transportation_cost"`
	TransferFee        *int64    `json:"transfer_fee"`
	AgencyFee          *int64    `json:"agency_fee"`
}

// ToSession converts the request to a domain session.
func (r SessionRequest) ToSession(id string) *inventory.Session {
	return &inventory.Session{
		ID:                 id,
		Name:               r.Name,
		PurchasedOn:        r.PurchasedOn,
		TransportationCost: r.TransportationCost,
		TransferFee:        r.TransferFee,
		AgencyFee:          r.AgencyFee,
	}
}

// StorePurchaseRequest creates or replaces a store purchase.
type StorePurchaseRequest struct {
	StoreName      string `json:"store_name"`
	ProductAmount  *int64 `json:"product_amount"`
	ShippingCost   *int64 `json:"shipping_cost"`
	CommissionFee  *int64 `json:"commission_fee"`
	ItemCount      int    `json:"item_count"`
	PriceInputMode string `json:"price_input_mode"`
}

// ToStorePurchase converts the request to a domain store purchase.
func (r StorePurchaseRequest) ToStorePurchase(id, sessionID string) *inventory.StorePurchase {
	return &inventory.StorePurchase{
		ID:             id,
		SessionID:      sessionID,
		StoreName:      r.StoreName,
		ProductAmount:  r.ProductAmount,
		ShippingCost:   r.ShippingCost,
		CommissionFee:  r.CommissionFee,
		ItemCount:      r.ItemCount,
		PriceInputMode: inventory.PriceInputMode(r.PriceInputMode),
	}
}

// ItemRequest creates or replaces an item.
type ItemRequest struct {
	Name         string `json:"name"`
	PurchaseCost *int64 `json:"purchase_cost"`
	Status       string `json:"status"`
	ListPrice    *int64 `json:"list_price"`
}

// ToItem converts the request to a domain item.
func (r ItemRequest) ToItem(id, storePurchaseID string) *inventory.Item {
	return &inventory.Item{
		ID:              id,
		StorePurchaseID: storePurchaseID,
		Name:            r.Name,
		PurchaseCost:    r.PurchaseCost,
		Status:          inventory.ItemStatus(r.Status),
		ListPrice:       r.ListPrice,
	}
}

// BulkItemsRequest registers Count copies of Item.
type BulkItemsRequest struct {
	Count int         `json:"count"`
	Item  ItemRequest `json:"item"`
}

// SellRequest marks an item sold. A missing sold_at means now.
type SellRequest struct {
	SalePrice *int64     `json:"sale_price"`
	SoldAt    *time.Time `json:"sold_at"`
}

// SessionListParams represents query parameters for listing sessions.
type SessionListParams struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// DefaultSessionListParams returns default values for session list params.
func DefaultSessionListParams() SessionListParams {
	return SessionListParams{
		Limit:  50,
		Offset: 0,
	}
}
