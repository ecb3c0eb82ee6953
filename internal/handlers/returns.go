package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tienda-backoffice/internal/apperrors"
	"tienda-backoffice/internal/middleware"
	"tienda-backoffice/internal/returns"
)

// ReturnHandler serves the return workflow.
type ReturnHandler struct {
	returns *returns.Service
	logger  *zap.Logger
}

// NewReturnHandler creates a return handler.
func NewReturnHandler(svc *returns.Service, logger *zap.Logger) *ReturnHandler {
	return &ReturnHandler{returns: svc, logger: logger}
}

// Create records a return for the authenticated user.
func (h *ReturnHandler) Create(c *gin.Context) {
	var in returns.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("returns.Create", err.Error()))
		return
	}
	ret, err := h.returns.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, ret)
}

// Get returns one return with its lines.
func (h *ReturnHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ret, err := h.returns.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ret)
}

// List returns all returns. ?mine=true restricts to the caller's own,
// ?sale_id=N filters by originating sale.
func (h *ReturnHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	if c.Query("mine") == "true" {
		rets, err := h.returns.ListByUser(ctx, middleware.UserID(c))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, rets)
		return
	}
	if raw := c.Query("sale_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, h.logger, apperrors.Validation("returns.List", "invalid sale_id"))
			return
		}
		rets, err := h.returns.ListBySale(ctx, uint(id))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, rets)
		return
	}
	rets, err := h.returns.List(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rets)
}

// UpdateStatus moves a return through its lifecycle.
func (h *ReturnHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in statusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("returns.UpdateStatus", err.Error()))
		return
	}
	ret, err := h.returns.UpdateStatus(c.Request.Context(), id, in.Status, in.Notes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, ret)
}

// Stats returns return aggregates.
func (h *ReturnHandler) Stats(c *gin.Context) {
	stats, err := h.returns.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
