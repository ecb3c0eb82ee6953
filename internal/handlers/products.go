package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tienda-backoffice/internal/apperrors"
	"tienda-backoffice/internal/models"
	"tienda-backoffice/internal/stock"
)

// ProductHandler serves the product catalog. Catalog updates never touch
// Quantity; stock moves through sales, returns, delivered purchase orders
// and the explicit AdjustStock correction, all via the ledger.
type ProductHandler struct {
	db                *gorm.DB
	ledger            *stock.Ledger
	logger            *zap.Logger
	lowStockThreshold int
}

// NewProductHandler creates a product handler.
func NewProductHandler(db *gorm.DB, ledger *stock.Ledger, logger *zap.Logger, lowStockThreshold int) *ProductHandler {
	return &ProductHandler{db: db, ledger: ledger, logger: logger, lowStockThreshold: lowStockThreshold}
}

type productInput struct {
	Name            string          `json:"name" binding:"required"`
	Description     string          `json:"description"`
	Size            string          `json:"size"`
	Color           string          `json:"color"`
	AcquisitionCost decimal.Decimal `json:"acquisition_cost"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	Quantity        int             `json:"quantity"`
	SupplierID      *uint           `json:"supplier_id"`
}

// List returns active products. ?all=true includes discontinued ones.
func (h *ProductHandler) List(c *gin.Context) {
	q := h.db.Order("name asc")
	if c.Query("all") != "true" {
		q = q.Where("active = ?", true)
	}
	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		respondError(c, h.logger, apperrors.Storage("products.List", err))
		return
	}
	c.JSON(http.StatusOK, products)
}

// Get returns one product.
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var product models.Product
	if err := h.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, h.logger, apperrors.NotFound("products.Get", "product"))
			return
		}
		respondError(c, h.logger, apperrors.Storage("products.Get", err))
		return
	}
	c.JSON(http.StatusOK, product)
}

// Create adds a product. The initial quantity is the opening stock count.
func (h *ProductHandler) Create(c *gin.Context) {
	var in productInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("products.Create", err.Error()))
		return
	}
	if in.Quantity < 0 {
		respondError(c, h.logger, apperrors.Validation("products.Create", "quantity must not be negative"))
		return
	}
	if in.SalePrice.IsNegative() || in.AcquisitionCost.IsNegative() {
		respondError(c, h.logger, apperrors.Validation("products.Create", "prices must not be negative"))
		return
	}
	product := models.Product{
		Name:            in.Name,
		Description:     in.Description,
		Size:            in.Size,
		Color:           in.Color,
		AcquisitionCost: in.AcquisitionCost,
		SalePrice:       in.SalePrice,
		Quantity:        in.Quantity,
		SupplierID:      in.SupplierID,
		Active:          true,
	}
	if err := h.db.Create(&product).Error; err != nil {
		respondError(c, h.logger, apperrors.Storage("products.Create", err))
		return
	}
	h.logger.Info("product created",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name))
	c.JSON(http.StatusCreated, product)
}

// Update changes a product's catalog fields. Quantity is deliberately
// excluded; stock moves only through the ledger.
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in productInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("products.Update", err.Error()))
		return
	}
	if in.SalePrice.IsNegative() || in.AcquisitionCost.IsNegative() {
		respondError(c, h.logger, apperrors.Validation("products.Update", "prices must not be negative"))
		return
	}
	res := h.db.Model(&models.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":             in.Name,
		"description":      in.Description,
		"size":             in.Size,
		"color":            in.Color,
		"acquisition_cost": in.AcquisitionCost,
		"sale_price":       in.SalePrice,
		"supplier_id":      in.SupplierID,
	})
	if res.Error != nil {
		respondError(c, h.logger, apperrors.Storage("products.Update", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, h.logger, apperrors.NotFound("products.Update", "product"))
		return
	}
	var product models.Product
	if err := h.db.First(&product, id).Error; err != nil {
		respondError(c, h.logger, apperrors.Storage("products.Update", err))
		return
	}
	c.JSON(http.StatusOK, product)
}

// Deactivate retires a product from the catalog without deleting its
// sale history.
func (h *ProductHandler) Deactivate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res := h.db.Model(&models.Product{}).Where("id = ?", id).Update("active", false)
	if res.Error != nil {
		respondError(c, h.logger, apperrors.Storage("products.Deactivate", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, h.logger, apperrors.NotFound("products.Deactivate", "product"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deactivated"})
}

type stockAdjustInput struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}

// AdjustStock applies a manual inventory correction through the ledger,
// for physical counts that disagree with the recorded quantity.
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in stockAdjustInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, h.logger, apperrors.Validation("products.AdjustStock", err.Error()))
		return
	}
	err := h.db.Transaction(func(tx *gorm.DB) error {
		return h.ledger.Correct(tx, id, in.Delta)
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.logger.Info("inventory corrected",
		zap.Uint("product_id", id),
		zap.Int("delta", in.Delta),
		zap.String("reason", in.Reason))
	var product models.Product
	if err := h.db.First(&product, id).Error; err != nil {
		respondError(c, h.logger, apperrors.Storage("products.AdjustStock", err))
		return
	}
	c.JSON(http.StatusOK, product)
}

// LowStock lists active products at or below the restock threshold.
func (h *ProductHandler) LowStock(c *gin.Context) {
	var products []models.Product
	err := h.db.Where("active = ? AND quantity <= ?", true, h.lowStockThreshold).
		Order("quantity asc").Find(&products).Error
	if err != nil {
		respondError(c, h.logger, apperrors.Storage("products.LowStock", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"threshold": h.lowStockThreshold,
		"products":  products,
	})
}
