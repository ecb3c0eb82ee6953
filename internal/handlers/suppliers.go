package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tienda-backoffice/internal/apperrors"
	"tienda-backoffice/internal/models"
)

// SupplierHandler serves the supplier registry.
type SupplierHandler struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSupplierHandler creates a supplier handler.
func NewSupplierHandler(db *gorm.DB, logger *zap.Logger) *SupplierHandler {
	return &SupplierHandler{db: db, logger: logger}
}

type supplierInput struct {
	Name string `json:"name" binding:"required"`
	City string `json:"city"`
}

// List returns all suppliers.
func (h *SupplierHandler) List(c *gin.Context) {
	var suppliers []models.Supplier
	if err := h.db.Order("name asc").Find(&suppliers).Error; err != nil {
		respondError(c, h.logger, apperrors.Storage("suppliers.List", err))
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

// Get returns one supplier.
func (h *SupplierHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var supplier models.Supplier
	if err := h.db.First(&supplier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, h.logger, apperrors.NotFound("suppliers.Get", "supplier"))
			return
		}
		respondError(c, h.logger, apperrors.Storage("suppliers.Get", err))
		return
	}
	c.JSON(http.StatusOK, supplier)
}

// Create registers a supplier.
func (h *SupplierHandler) Create(c *gin.Context) {
	var in supplierInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("suppliers.Create", err.Error()))
		return
	}
	supplier := models.Supplier{Name: in.Name, City: in.City}
	if err := h.db.Create(&supplier).Error; err != nil {
		respondError(c, h.logger, apperrors.Storage("suppliers.Create", err))
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

// Update replaces a supplier's details.
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in supplierInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("suppliers.Update", err.Error()))
		return
	}
	res := h.db.Model(&models.Supplier{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name": in.Name,
		"city": in.City,
	})
	if res.Error != nil {
		respondError(c, h.logger, apperrors.Storage("suppliers.Update", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, h.logger, apperrors.NotFound("suppliers.Update", "supplier"))
		return
	}
	var supplier models.Supplier
	if err := h.db.First(&supplier, id).Error; err != nil {
		respondError(c, h.logger, apperrors.Storage("suppliers.Update", err))
		return
	}
	c.JSON(http.StatusOK, supplier)
}

// Delete removes a supplier. Products keep their supplier_id pointing at
// the removed row; history stays intact.
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res := h.db.Delete(&models.Supplier{}, id)
	if res.Error != nil {
		respondError(c, h.logger, apperrors.Storage("suppliers.Delete", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, h.logger, apperrors.NotFound("suppliers.Delete", "supplier"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "supplier deleted"})
}
