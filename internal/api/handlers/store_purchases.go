package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/resale-ledger/internal/api/dto"
	"github.com/eshaffer321/resale-ledger/internal/application/service"
)

// StorePurchasesHandler handles store purchase HTTP requests.
type StorePurchasesHandler struct {
	*Base
}

// NewStorePurchasesHandler creates a new store purchases handler.
func NewStorePurchasesHandler(inv *service.InventoryService) *StorePurchasesHandler {
	return &StorePurchasesHandler{Base: NewBase(inv)}
}

// Create handles POST /api/sessions/:id/store-purchases.
func (h *StorePurchasesHandler) Create(c *gin.Context) {
	var req dto.StorePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	sp := req.ToStorePurchase("", c.Param("id"))
	if err := h.inventory.CreateStorePurchase(c.Request.Context(), sp); err != nil {
		h.WriteError(c, "session", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewStorePurchaseResponse(*sp))
}

// Get handles GET /api/store-purchases/:id, including its items.
func (h *StorePurchasesHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	sp, err := h.inventory.GetStorePurchase(ctx, id)
	if err != nil {
		h.WriteError(c, "store purchase", err)
		return
	}
	items, err := h.inventory.ListItems(ctx, id)
	if err != nil {
		h.WriteError(c, "store purchase", err)
		return
	}

	response := dto.NewStorePurchaseResponse(*sp)
	registered := len(items)
	response.RegisteredItems = &registered
	response.Items = dto.NewItemResponses(items)
	c.JSON(http.StatusOK, response)
}

// Update handles PUT /api/store-purchases/:id.
func (h *StorePurchasesHandler) Update(c *gin.Context) {
	var req dto.StorePurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	sp := req.ToStorePurchase(c.Param("id"), "")
	if err := h.inventory.UpdateStorePurchase(ctx, sp); err != nil {
		h.WriteError(c, "store purchase", err)
		return
	}

	updated, err := h.inventory.GetStorePurchase(ctx, sp.ID)
	if err != nil {
		h.WriteError(c, "store purchase", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewStorePurchaseResponse(*updated))
}

// Delete handles DELETE /api/store-purchases/:id.
func (h *StorePurchasesHandler) Delete(c *gin.Context) {
	if err := h.inventory.DeleteStorePurchase(c.Request.Context(), c.Param("id")); err != nil {
		h.WriteError(c, "store purchase", err)
		return
	}
	c.Status(http.StatusNoContent)
}
