package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/resale-ledger/internal/api/dto"
	"github.com/eshaffer321/resale-ledger/internal/application/service"
)

// ItemsHandler handles item-related HTTP requests.
type ItemsHandler struct {
	*Base
}

// NewItemsHandler creates a new items handler.
func NewItemsHandler(inv *service.InventoryService) *ItemsHandler {
	return &ItemsHandler{Base: NewBase(inv)}
}

// Create handles POST /api/store-purchases/:id/items.
func (h *ItemsHandler) Create(c *gin.Context) {
	var req dto.ItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	it := req.ToItem("", c.Param("id"))
	if err := h.inventory.CreateItem(ctx, it); err != nil {
		h.WriteError(c, "store purchase", err)
		return
	}

	// Reload to pick up the allocated cost written by the recalculation.
	created, err := h.inventory.GetItem(ctx, it.ID)
	if err != nil {
		h.WriteError(c, "item", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewItemResponse(*created))
}

// BulkCreate handles POST /api/store-purchases/:id/items/bulk.
func (h *ItemsHandler) BulkCreate(c *gin.Context) {
	var req dto.BulkItemsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	spID := c.Param("id")
	template := req.Item.ToItem("", spID)
	if _, err := h.inventory.BulkCreateItems(ctx, spID, req.Count, *template); err != nil {
		h.WriteError(c, "store purchase", err)
		return
	}

	items, err := h.inventory.ListItems(ctx, spID)
	if err != nil {
		h.WriteError(c, "store purchase", err)
		return
	}
	c.JSON(http.StatusCreated, dto.BulkItemsResponse{
		Items: dto.NewItemResponses(items),
		Count: req.Count,
	})
}

// Get handles GET /api/items/:id.
func (h *ItemsHandler) Get(c *gin.Context) {
	it, err := h.inventory.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.WriteError(c, "item", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewItemResponse(*it))
}

// Update handles PUT /api/items/:id.
func (h *ItemsHandler) Update(c *gin.Context) {
	var req dto.ItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	it := req.ToItem(c.Param("id"), "")
	if err := h.inventory.UpdateItem(ctx, it); err != nil {
		h.WriteError(c, "item", err)
		return
	}

	updated, err := h.inventory.GetItem(ctx, it.ID)
	if err != nil {
		h.WriteError(c, "item", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewItemResponse(*updated))
}

// Sell handles POST /api/items/:id/sell.
func (h *ItemsHandler) Sell(c *gin.Context) {
	var req dto.SellRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.SalePrice == nil {
		c.JSON(http.StatusUnprocessableEntity, dto.ValidationError("sale_price is required"))
		return
	}

	var soldAt time.Time
	if req.SoldAt != nil {
		soldAt = *req.SoldAt
	}

	it, err := h.inventory.MarkSold(c.Request.Context(), c.Param("id"), *req.SalePrice, soldAt)
	if err != nil {
		h.WriteError(c, "item", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewItemResponse(*it))
}

// Delete handles DELETE /api/items/:id.
func (h *ItemsHandler) Delete(c *gin.Context) {
	if err := h.inventory.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		h.WriteError(c, "item", err)
		return
	}
	c.Status(http.StatusNoContent)
}
