package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/resale-ledger/internal/api/dto"
	"github.com/eshaffer321/resale-ledger/internal/application/recalc"
)

// Allocator is the part of recalc.Service exposed over HTTP.
type Allocator interface {
	Recalculate(ctx context.Context, sessionID string) (*recalc.Result, error)
	Preview(ctx context.Context, sessionID string) (*recalc.Result, error)
}

// AllocationHandler exposes the recalculation trigger.
type AllocationHandler struct {
	*Base
	recalc Allocator
}

// NewAllocationHandler creates a new allocation handler.
func NewAllocationHandler(r Allocator) *AllocationHandler {
	return &AllocationHandler{Base: NewBase(nil), recalc: r}
}

// Recalculate handles POST /api/sessions/:id/recalculate.
func (h *AllocationHandler) Recalculate(c *gin.Context) {
	res, err := h.recalc.Recalculate(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.WriteError(c, "session", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAllocationResponse(res))
}

// Preview handles GET /api/sessions/:id/allocation. Nothing is written.
func (h *AllocationHandler) Preview(c *gin.Context) {
	res, err := h.recalc.Preview(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.WriteError(c, "session", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAllocationResponse(res))
}
