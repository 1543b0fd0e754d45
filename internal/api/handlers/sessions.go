package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/resale-ledger/internal/api/dto"
	"github.com/eshaffer321/resale-ledger/internal/application/service"
	"github.com/eshaffer321/resale-ledger/internal/infrastructure/storage"
)

// SessionsHandler handles session-related HTTP requests.
type SessionsHandler struct {
	*Base
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(inv *service.InventoryService) *SessionsHandler {
	return &SessionsHandler{Base: NewBase(inv)}
}

// List handles GET /api/sessions.
func (h *SessionsHandler) List(c *gin.Context) {
	params := dto.DefaultSessionListParams()
	params.Limit = ParseIntParam(c, "limit", params.Limit)
	params.Offset = ParseIntParam(c, "offset", params.Offset)
	if params.Limit < 1 || params.Limit > 200 {
		params.Limit = 50
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	sessions, err := h.inventory.ListSessions(c.Request.Context(), storage.SessionFilters{
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		h.WriteError(c, "sessions", err)
		return
	}

	response := dto.SessionListResponse{
		Sessions: make([]dto.SessionResponse, 0, len(sessions)),
		Limit:    params.Limit,
		Offset:   params.Offset,
	}
	for _, s := range sessions {
		response.Sessions = append(response.Sessions, dto.NewSessionResponse(s))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/sessions/:id, including the session's store purchases.
func (h *SessionsHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	id := c.Param("id")

	session, err := h.inventory.GetSession(ctx, id)
	if err != nil {
		h.WriteError(c, "session", err)
		return
	}
	storePurchases, err := h.inventory.ListStorePurchases(ctx, id)
	if err != nil {
		h.WriteError(c, "session", err)
		return
	}

	response := dto.NewSessionResponse(*session)
	for _, sp := range storePurchases {
		response.StorePurchases = append(response.StorePurchases, dto.NewStorePurchaseResponse(sp))
	}
	c.JSON(http.StatusOK, response)
}

// Create handles POST /api/sessions.
func (h *SessionsHandler) Create(c *gin.Context) {
	var req dto.SessionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	session := req.ToSession("")
	if err := h.inventory.CreateSession(c.Request.Context(), session); err != nil {
		h.WriteError(c, "session", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSessionResponse(*session))
}

// Update handles PUT /api/sessions/:id.
func (h *SessionsHandler) Update(c *gin.Context) {
	var req dto.SessionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	session := req.ToSession(c.Param("id"))
	if err := h.inventory.UpdateSession(ctx, session); err != nil {
		h.WriteError(c, "session", err)
		return
	}

	updated, err := h.inventory.GetSession(ctx, session.ID)
	if err != nil {
		h.WriteError(c, "session", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionResponse(*updated))
}

// Delete handles DELETE /api/sessions/:id.
func (h *SessionsHandler) Delete(c *gin.Context) {
	if err := h.inventory.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		h.WriteError(c, "session", err)
		return
	}
	c.Status(http.StatusNoContent)
}
