package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tienda-backoffice/internal/apperrors"
	"tienda-backoffice/internal/middleware"
	"tienda-backoffice/internal/sales"
)

// SaleHandler serves the sale workflow.
type SaleHandler struct {
	sales  *sales.Service
	logger *zap.Logger
}

// NewSaleHandler creates a sale handler.
func NewSaleHandler(svc *sales.Service, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{sales: svc, logger: logger}
}

// Create records a sale for the authenticated user.
func (h *SaleHandler) Create(c *gin.Context) {
	var in sales.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("sales.Create", err.Error()))
		return
	}
	sale, err := h.sales.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

// Get returns one sale with its lines.
func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	sale, err := h.sales.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// List returns all sales. ?mine=true restricts to the caller's own.
func (h *SaleHandler) List(c *gin.Context) {
	if c.Query("mine") == "true" {
		sales, err := h.sales.ListByUser(c.Request.Context(), middleware.UserID(c))
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, sales)
		return
	}
	sales, err := h.sales.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sales)
}

type statusInput struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}

// UpdateStatus changes a sale's status.
func (h *SaleHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in statusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("sales.UpdateStatus", err.Error()))
		return
	}
	sale, err := h.sales.UpdateStatus(c.Request.Context(), id, in.Status, in.Notes)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

// Stats returns sale aggregates.
func (h *SaleHandler) Stats(c *gin.Context) {
	stats, err := h.sales.GetStats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
