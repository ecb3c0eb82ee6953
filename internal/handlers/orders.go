package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tienda-backoffice/internal/apperrors"
	"tienda-backoffice/internal/middleware"
	"tienda-backoffice/internal/orders"
)

// OrderHandler serves purchase orders to suppliers.
type OrderHandler struct {
	orders *orders.Service
	logger *zap.Logger
}

// NewOrderHandler creates a purchase order handler.
func NewOrderHandler(svc *orders.Service, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: svc, logger: logger}
}

// Create records a purchase order for the authenticated user.
func (h *OrderHandler) Create(c *gin.Context) {
	var in orders.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("orders.Create", err.Error()))
		return
	}
	order, err := h.orders.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// Get returns one purchase order with its lines.
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// List returns all purchase orders. ?supplier_id=N filters by supplier.
func (h *OrderHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	if raw := c.Query("supplier_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, h.logger, apperrors.Validation("orders.List", "invalid supplier_id"))
			return
		}
		out, err := h.orders.ListBySupplier(ctx, uint(id))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, out)
		return
	}
	out, err := h.orders.List(ctx)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UpdateStatus moves an order through its lifecycle. Marking it entregado
// credits stock.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in statusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("orders.UpdateStatus", err.Error()))
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), id, in.Status, in.Notes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Stats returns purchase order aggregates.
func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.orders.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
