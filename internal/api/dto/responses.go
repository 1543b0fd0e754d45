package dto

import (
	"time"

	"github.com/eshaffer321/resale-ledger/internal/application/recalc"
	"github.com/eshaffer321/resale-ledger/internal/domain/allocator"
	"github.com/eshaffer321/resale-ledger/internal/domain/inventory"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse creates a healthy response stamped with the current time.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// SessionResponse represents a session in API responses.
type SessionResponse struct {
	inventory.Session
	CommonCost     int64                   `json:"common_cost"`
	StorePurchases []StorePurchaseResponse `json:"store_purchases,omitempty"`
}

// SessionListResponse is returned when listing sessions.
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// StorePurchaseResponse represents a store purchase in API responses.
type StorePurchaseResponse struct {
	inventory.StorePurchase
	Subtotal        int64          `json:"subtotal"`
	RegisteredItems *int           `json:"registered_items,omitempty"`
	Items           []ItemResponse `json:"items,omitempty"`
}

// ItemResponse represents an item in API responses.
type ItemResponse struct {
	inventory.Item
	Profit *inventory.Profit `json:"profit,omitempty"`
}

// BulkItemsResponse is returned by the bulk item endpoint.
type BulkItemsResponse struct {
	Items []ItemResponse `json:"items"`
	Count int            `json:"count"`
}

// AllocationResponse is the allocation breakdown for one session.
type AllocationResponse struct {
	SessionID        string                        `json:"session_id"`
	DryRun           bool                          `json:"dry_run"`
	CommonCost       int64                         `json:"common_cost"`
	ApportionedTotal int64                         `json:"apportioned_total"`
	ApportionDrift   int64                         `json:"apportion_drift"`
	ItemsUpdated     int                           `json:"items_updated"`
	StorePurchases   []allocator.StorePurchasePlan `json:"store_purchases"`
	ItemCosts        map[string]int64              `json:"item_costs"`
}

// NewSessionResponse converts a session.
func NewSessionResponse(s inventory.Session) SessionResponse {
	// Stored sessions always have valid amounts.
	common, _ := s.CommonCost()
	return SessionResponse{Session: s, CommonCost: common}
}

// NewStorePurchaseResponse converts a store purchase.
func NewStorePurchaseResponse(sp inventory.StorePurchase) StorePurchaseResponse {
	subtotal, _ := allocator.Subtotal(sp)
	return StorePurchaseResponse{StorePurchase: sp, Subtotal: subtotal}
}

// NewItemResponse converts an item, attaching its profit once it has one.
func NewItemResponse(it inventory.Item) ItemResponse {
	resp := ItemResponse{Item: it}
	if p, ok := inventory.ItemProfit(it); ok {
		resp.Profit = &p
	}
	return resp
}

// NewItemResponses converts a list of items.
func NewItemResponses(items []inventory.Item) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, NewItemResponse(it))
	}
	return out
}

// NewAllocationResponse converts a recalculation result.
func NewAllocationResponse(res *recalc.Result) AllocationResponse {
	return AllocationResponse{
		SessionID:        res.SessionID,
		DryRun:           res.DryRun,
		CommonCost:       res.Plan.CommonCost,
		ApportionedTotal: res.Plan.ApportionedTotal,
		ApportionDrift:   res.Plan.ApportionDrift(),
		ItemsUpdated:     res.ItemsUpdated,
		StorePurchases:   res.Plan.StorePurchases,
		ItemCosts:        res.Plan.ItemCosts,
	}
}
