package sales

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

// Service runs the sale workflow: one transaction covering the header, its
// lines and the stock debit. Either all of it commits or none of it does.
type Service struct {
	db     *gorm.DB
	ledger *stock.Ledger
	logger *zap.Logger
}

// NewService creates a sales service.
func NewService(db *gorm.DB, ledger *stock.Ledger, logger *zap.Logger) *Service {
	return &Service{db: db, ledger: ledger, logger: logger}
}

// LineInput is one requested product entry.
type LineInput struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateInput is the sale creation payload.
type CreateInput struct {
	ClientID      *uint       `json:"client_id"`
	SaleDate      *time.Time  `json:"sale_date"`
	PaymentMethod string      `json:"payment_method"`
	Notes         string      `json:"notes"`
	Lines         []LineInput `json:"lines"`
}

var paymentMethods = map[string]bool{
	models.PayCash:     true,
	models.PayCard:     true,
	models.PayTransfer: true,
	models.PayOther:    true,
}

func validateLines(op string, lines []LineInput) error {
	if len(lines) == 0 {
		return apperrors.Validation(op, "at least one line is required")
	}
	for i, line := range lines {
		if line.Quantity <= 0 {
			return apperrors.Validation(op, fmt.Sprintf("line %d: quantity must be positive", i+1))
		}
		if line.UnitPrice.IsNegative() {
			return apperrors.Validation(op, fmt.Sprintf("line %d: unit price must not be negative", i+1))
		}
	}
	return nil
}

// Create validates availability, records the sale and debits stock, all
// inside one transaction. Partial sales are never observable.
func (s *Service) Create(ctx context.Context, userID uint, in CreateInput) (*models.Sale, error) {
	const op = "sales.Create"

	if !paymentMethods[in.PaymentMethod] {
		return nil, apperrors.Validation(op, fmt.Sprintf("unknown payment method %q", in.PaymentMethod))
	}
	if err := validateLines(op, in.Lines); err != nil {
		return nil, err
	}

	saleDate := time.Now()
	if in.SaleDate != nil {
		saleDate = *in.SaleDate
	}

	var sale models.Sale
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		total := decimal.Zero
		lines := make([]models.SaleLine, 0, len(in.Lines))

		for _, line := range in.Lines {
			if err := s.ledger.Adjust(tx, line.ProductID, line.Quantity, stock.OpSale); err != nil {
				return err
			}
			subtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(subtotal)
			lines = append(lines, models.SaleLine{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
				Subtotal:  subtotal,
			})
		}

		sale = models.Sale{
			UserID:        userID,
			ClientID:      in.ClientID,
			SaleDate:      saleDate,
			Total:         total,
			PaymentMethod: in.PaymentMethod,
			Status:        models.SaleCompleted,
			Notes:         in.Notes,
			Lines:         lines,
		}
		if err := tx.Create(&sale).Error; err != nil {
			return apperrors.Storage(op, err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("sale rejected",
			zap.Uint("user_id", userID),
			zap.Int("lines", len(in.Lines)),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("sale created",
		zap.Uint("sale_id", sale.ID),
		zap.Uint("user_id", userID),
		zap.String("total", sale.Total.String()))
	return &sale, nil
}

// GetByID returns a sale with its lines.
func (s *Service) GetByID(ctx context.Context, id uint) (*models.Sale, error) {
	const op = "sales.GetByID"
	var sale models.Sale
	err := s.db.WithContext(ctx).Preload("Lines").First(&sale, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(op, fmt.Sprintf("sale %d", id))
		}
		return nil, apperrors.Storage(op, err)
	}
	return &sale, nil
}

// List returns all sales, newest first.
func (s *Service) List(ctx context.Context) ([]models.Sale, error) {
	var sales []models.Sale
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&sales).Error
	if err != nil {
		return nil, apperrors.Storage("sales.List", err)
	}
	return sales, nil
}

// ListByUser returns the sales recorded by one user, newest first.
func (s *Service) ListByUser(ctx context.Context, userID uint) ([]models.Sale, error) {
	var sales []models.Sale
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&sales).Error
	if err != nil {
		return nil, apperrors.Storage("sales.ListByUser", err)
	}
	return sales, nil
}

var saleStatuses = map[string]bool{
	models.SaleCompleted: true,
	models.SalePending:   true,
	models.SaleCancelled: true,
}

// UpdateStatus changes a sale's status and notes. Stock is not touched;
// refunds go through the return workflow.
func (s *Service) UpdateStatus(ctx context.Context, id uint, status, notes string) (*models.Sale, error) {
	const op = "sales.UpdateStatus"
	if !saleStatuses[status] {
		return nil, apperrors.Validation(op, fmt.Sprintf("unknown status %q", status))
	}
	res := s.db.WithContext(ctx).Model(&models.Sale{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "notes": notes})
	if res.Error != nil {
		return nil, apperrors.Storage(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NotFound(op, fmt.Sprintf("sale %d", id))
	}
	return s.GetByID(ctx, id)
}

// Stats summarizes completed sales.
type Stats struct {
	TotalSales   int64           `json:"total_sales"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	SalesToday   int64           `json:"sales_today"`
	RevenueToday decimal.Decimal `json:"revenue_today"`
}

// GetStats aggregates completed sales, overall and for the current day.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	const op = "sales.GetStats"
	var stats Stats
	db := s.db.WithContext(ctx)

	err := db.Model(&models.Sale{}).Where("status = ?", models.SaleCompleted).
		Count(&stats.TotalSales).Error
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}
	row := db.Model(&models.Sale{}).Where("status = ?", models.SaleCompleted).
		Select("COALESCE(SUM(total), 0)").Row()
	if err := row.Scan(&stats.TotalRevenue); err != nil {
		return nil, apperrors.Storage(op, err)
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	err = db.Model(&models.Sale{}).
		Where("status = ? AND sale_date BETWEEN ? AND ?", models.SaleCompleted, midnight, now).
		Count(&stats.SalesToday).Error
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}
	row = db.Model(&models.Sale{}).
		Where("status = ? AND sale_date BETWEEN ? AND ?", models.SaleCompleted, midnight, now).
		Select("COALESCE(SUM(total), 0)").Row()
	if err := row.Scan(&stats.RevenueToday); err != nil {
		return nil, apperrors.Storage(op, err)
	}
	return &stats, nil
}
