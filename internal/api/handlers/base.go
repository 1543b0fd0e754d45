package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/resale-ledger/internal/api/dto"
	"github.com/eshaffer321/resale-ledger/internal/application/service"
	"github.com/eshaffer321/resale-ledger/internal/domain/allocator"
	"github.com/eshaffer321/resale-ledger/internal/domain/inventory"
	"github.com/eshaffer321/resale-ledger/internal/domain/money"
	"github.com/eshaffer321/resale-ledger/internal/infrastructure/lock"
	"github.com/eshaffer321/resale-ledger/internal/infrastructure/storage"
)

// Base provides shared functionality for all handlers.
type Base struct {
	inventory *service.InventoryService
}

// NewBase creates a new base handler with the given inventory service.
func NewBase(inv *service.InventoryService) *Base {
	return &Base{inventory: inv}
}

// WriteError maps err onto a status code and a dto.APIError body. resource
// names the thing looked up, for not-found messages.
func (b *Base) WriteError(c *gin.Context, resource string, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.NotFoundError(resource))
	case errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, money.ErrOverflow),
		errors.Is(err, inventory.ErrValidation),
		errors.Is(err, allocator.ErrInvalidPriceMode):
		c.JSON(http.StatusUnprocessableEntity, dto.ValidationError(err.Error()))
	case errors.Is(err, inventory.ErrSessionInUse),
		errors.Is(err, inventory.ErrStorePurchaseInUse),
		errors.Is(err, lock.ErrNotAcquired):
		c.JSON(http.StatusConflict, dto.ConflictError(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, dto.InternalError())
	}
}

// BindJSON decodes the request body, writing a 400 on failure.
func (b *Base) BindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, dto.BadRequestError("invalid request body: "+err.Error()))
		return false
	}
	return true
}

// ParseIntParam parses an integer query parameter with a default value.
func ParseIntParam(c *gin.Context, name string, defaultVal int) int {
	val := c.Query(name)
	if val == "" {
		return defaultVal
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return parsed
}
