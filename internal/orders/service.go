package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tienda-backoffice/internal/apperrors"
	"tienda-backoffice/internal/models"
	"tienda-backoffice/internal/stock"
)

// Service manages purchase orders to suppliers. Creating an order has no
// stock effect; stock is credited once, in one transaction, when the order
// is marked entregado.
type Service struct {
	db     *gorm.DB
	ledger *stock.Ledger
	logger *zap.Logger
}

// NewService creates a purchase order service.
func NewService(db *gorm.DB, ledger *stock.Ledger, logger *zap.Logger) *Service {
	return &Service{db: db, ledger: ledger, logger: logger}
}

// LineInput is one ordered product entry.
type LineInput struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateInput is the purchase order creation payload.
type CreateInput struct {
	SupplierID       *uint       `json:"supplier_id"`
	OrderDate        *time.Time  `json:"order_date"`
	ExpectedDelivery *time.Time  `json:"expected_delivery"`
	Notes            string      `json:"notes"`
	Lines            []LineInput `json:"lines"`
}

var orderStatuses = map[string]bool{
	models.OrderPending:   true,
	models.OrderConfirmed: true,
	models.OrderInTransit: true,
	models.OrderDelivered: true,
	models.OrderCancelled: true,
}

// Create records a purchase order in pendiente. On-hand quantities do not
// move until delivery.
func (s *Service) Create(ctx context.Context, userID uint, in CreateInput) (*models.PurchaseOrder, error) {
	const op = "orders.Create"

	if len(in.Lines) == 0 {
		return nil, apperrors.Validation(op, "at least one line is required")
	}
	for i, line := range in.Lines {
		if line.Quantity <= 0 {
			return nil, apperrors.Validation(op, fmt.Sprintf("line %d: quantity must be positive", i+1))
		}
		if line.UnitPrice.IsNegative() {
			return nil, apperrors.Validation(op, fmt.Sprintf("line %d: unit price must not be negative", i+1))
		}
	}

	orderDate := time.Now()
	if in.OrderDate != nil {
		orderDate = *in.OrderDate
	}

	var order models.PurchaseOrder
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.SupplierID != nil {
			var supplier models.Supplier
			if err := tx.First(&supplier, *in.SupplierID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFound(op, fmt.Sprintf("supplier %d", *in.SupplierID))
				}
				return apperrors.Storage(op, err)
			}
		}

		total := decimal.Zero
		lines := make([]models.PurchaseOrderLine, 0, len(in.Lines))
		for _, line := range in.Lines {
			var product models.Product
			if err := tx.First(&product, line.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFound(op, fmt.Sprintf("product %d", line.ProductID))
				}
				return apperrors.Storage(op, err)
			}
			subtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(subtotal)
			lines = append(lines, models.PurchaseOrderLine{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Subtotal:  subtotal,
			})
		}

		order = models.PurchaseOrder{
			UserID:           userID,
			SupplierID:       in.SupplierID,
			OrderDate:        orderDate,
			ExpectedDelivery: in.ExpectedDelivery,
			Status:           models.OrderPending,
			Total:            total,
			Notes:            in.Notes,
			Lines:            lines,
		}
		if err := tx.Create(&order).Error; err != nil {
			return apperrors.Storage(op, err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("purchase order rejected",
			zap.Uint("user_id", userID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("purchase order created",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", userID),
		zap.String("total", order.Total.String()))
	return &order, nil
}

// GetByID returns a purchase order with its lines.
func (s *Service) GetByID(ctx context.Context, id uint) (*models.PurchaseOrder, error) {
	const op = "orders.GetByID"
	var order models.PurchaseOrder
	err := s.db.WithContext(ctx).Preload("Lines").First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(op, fmt.Sprintf("purchase order %d", id))
		}
		return nil, apperrors.Storage(op, err)
	}
	return &order, nil
}

// List returns all purchase orders, newest first.
func (s *Service) List(ctx context.Context) ([]models.PurchaseOrder, error) {
	var orders []models.PurchaseOrder
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&orders).Error
	if err != nil {
		return nil, apperrors.Storage("orders.List", err)
	}
	return orders, nil
}

// ListBySupplier returns the orders placed with one supplier, newest first.
func (s *Service) ListBySupplier(ctx context.Context, supplierID uint) ([]models.PurchaseOrder, error) {
	var orders []models.PurchaseOrder
	err := s.db.WithContext(ctx).Where("supplier_id = ?", supplierID).
		Order("created_at desc").Find(&orders).Error
	if err != nil {
		return nil, apperrors.Storage("orders.ListBySupplier", err)
	}
	return orders, nil
}

// UpdateStatus moves a purchase order through its lifecycle. The transition
// into entregado credits every line's quantity to stock inside the same
// transaction. entregado is terminal: a delivered order cannot change
// status again, so stock is credited at most once.
func (s *Service) UpdateStatus(ctx context.Context, id uint, status, notes string) (*models.PurchaseOrder, error) {
	const op = "orders.UpdateStatus"
	if !orderStatuses[status] {
		return nil, apperrors.Validation(op, fmt.Sprintf("unknown status %q", status))
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.PurchaseOrder
		if err := tx.Preload("Lines").First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound(op, fmt.Sprintf("purchase order %d", id))
			}
			return apperrors.Storage(op, err)
		}

		if order.Status == models.OrderDelivered {
			return apperrors.Conflict(op, fmt.Sprintf("purchase order %d is already delivered", id))
		}
		if status == models.OrderDelivered {
			for _, line := range order.Lines {
				if err := s.ledger.Adjust(tx, line.ProductID, line.Quantity, stock.OpPurchase); err != nil {
					return err
				}
			}
		}

		res := tx.Model(&models.PurchaseOrder{}).Where("id = ?", id).
			Updates(map[string]interface{}{"status": status, "notes": notes})
		if res.Error != nil {
			return apperrors.Storage(op, res.Error)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if status == models.OrderDelivered {
		s.logger.Info("purchase order delivered, stock credited",
			zap.Uint("order_id", id))
	}
	return s.GetByID(ctx, id)
}

// Stats summarizes purchase orders.
type Stats struct {
	TotalOrders int64           `json:"total_orders"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
	Pending     int64           `json:"pending"`
	InTransit   int64           `json:"in_transit"`
}

// GetStats aggregates order counts and the spend on delivered orders.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	const op = "orders.GetStats"
	var stats Stats
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.PurchaseOrder{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, apperrors.Storage(op, err)
	}
	row := db.Model(&models.PurchaseOrder{}).Where("status = ?", models.OrderDelivered).
		Select("COALESCE(SUM(total), 0)").Row()
	if err := row.Scan(&stats.TotalSpent); err != nil {
		return nil, apperrors.Storage(op, err)
	}
	err := db.Model(&models.PurchaseOrder{}).Where("status = ?", models.OrderPending).
		Count(&stats.Pending).Error
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}
	err = db.Model(&models.PurchaseOrder{}).Where("status = ?", models.OrderInTransit).
		Count(&stats.InTransit).Error
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}
	return &stats, nil
}
