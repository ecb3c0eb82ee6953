package returns

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

// Service runs the return workflow. Creating a return writes the header and
// its lines and credits stock back, all in one transaction. The header starts
// in pendiente; approval is a separate status change.
type Service struct {
	db     *gorm.DB
	ledger *stock.Ledger
	logger *zap.Logger
}

// NewService creates a returns service.
func NewService(db *gorm.DB, ledger *stock.Ledger, logger *zap.Logger) *Service {
	return &Service{db: db, ledger: ledger, logger: logger}
}

// LineInput is one returned product entry.
type LineInput struct {
	ProductID      uint            `json:"product_id"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	SpecificReason string          `json:"specific_reason"`
}

// CreateInput is the return creation payload. SaleID is optional: walk-in
// returns without a ticket are accepted.
type CreateInput struct {
	SaleID     *uint       `json:"sale_id"`
	ClientID   *uint       `json:"client_id"`
	ReturnDate *time.Time  `json:"return_date"`
	Reason     string      `json:"reason"`
	Notes      string      `json:"notes"`
	Lines      []LineInput `json:"lines"`
}

var returnReasons = map[string]bool{
	models.ReasonDefect:      true,
	models.ReasonWrongSize:   true,
	models.ReasonUnsatisfied: true,
	models.ReasonOther:       true,
}

var returnStatuses = map[string]bool{
	models.ReturnPending:   true,
	models.ReturnApproved:  true,
	models.ReturnRejected:  true,
	models.ReturnCompleted: true,
}

// Create records a return and credits the returned quantities back to stock
// inside one transaction. The header is created in pendiente.
func (s *Service) Create(ctx context.Context, userID uint, in CreateInput) (*models.Return, error) {
	const op = "returns.Create"

	if !returnReasons[in.Reason] {
		return nil, apperrors.Validation(op, fmt.Sprintf("unknown return reason %q", in.Reason))
	}
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

	returnDate := time.Now()
	if in.ReturnDate != nil {
		returnDate = *in.ReturnDate
	}

	var ret models.Return
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.SaleID != nil {
			var sale models.Sale
			if err := tx.First(&sale, *in.SaleID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.NotFound(op, fmt.Sprintf("sale %d", *in.SaleID))
				}
				return apperrors.Storage(op, err)
			}
		}

		total := decimal.Zero
		lines := make([]models.ReturnLine, 0, len(in.Lines))
		for _, line := range in.Lines {
			if err := s.ledger.Adjust(tx, line.ProductID, line.Quantity, stock.OpReturn); err != nil {
				return err
			}
			subtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			total = total.Add(subtotal)
			lines = append(lines, models.ReturnLine{
				ProductID:      line.ProductID,
				Quantity:       line.Quantity,
				UnitPrice:      line.UnitPrice,
				Subtotal:       subtotal,
				SpecificReason: line.SpecificReason,
			})
		}

		ret = models.Return{
			UserID:     userID,
			SaleID:     in.SaleID,
			ClientID:   in.ClientID,
			ReturnDate: returnDate,
			Reason:     in.Reason,
			Status:     models.ReturnPending,
			Total:      total,
			Notes:      in.Notes,
			Lines:      lines,
		}
		if err := tx.Create(&ret).Error; err != nil {
			return apperrors.Storage(op, err)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("return rejected",
			zap.Uint("user_id", userID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("return created",
		zap.Uint("return_id", ret.ID),
		zap.Uint("user_id", userID),
		zap.String("reason", ret.Reason),
		zap.String("total", ret.Total.String()))
	return &ret, nil
}

// GetByID returns a return with its lines.
func (s *Service) GetByID(ctx context.Context, id uint) (*models.Return, error) {
	const op = "returns.GetByID"
	var ret models.Return
	err := s.db.WithContext(ctx).Preload("Lines").First(&ret, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound(op, fmt.Sprintf("return %d", id))
		}
		return nil, apperrors.Storage(op, err)
	}
	return &ret, nil
}

// List returns all returns, newest first.
func (s *Service) List(ctx context.Context) ([]models.Return, error) {
	var rets []models.Return
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&rets).Error
	if err != nil {
		return nil, apperrors.Storage("returns.List", err)
	}
	return rets, nil
}

// ListByUser returns the returns recorded by one user, newest first.
func (s *Service) ListByUser(ctx context.Context, userID uint) ([]models.Return, error) {
	var rets []models.Return
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&rets).Error
	if err != nil {
		return nil, apperrors.Storage("returns.ListByUser", err)
	}
	return rets, nil
}

// ListBySale returns the returns filed against one sale.
func (s *Service) ListBySale(ctx context.Context, saleID uint) ([]models.Return, error) {
	var rets []models.Return
	err := s.db.WithContext(ctx).Where("sale_id = ?", saleID).Order("created_at desc").Find(&rets).Error
	if err != nil {
		return nil, apperrors.Storage("returns.ListBySale", err)
	}
	return rets, nil
}

// UpdateStatus moves a return through its lifecycle. Stock was already
// credited at creation; status changes do not touch it.
func (s *Service) UpdateStatus(ctx context.Context, id uint, status, notes string) (*models.Return, error) {
	const op = "returns.UpdateStatus"
	if !returnStatuses[status] {
		return nil, apperrors.Validation(op, fmt.Sprintf("unknown status %q", status))
	}
	res := s.db.WithContext(ctx).Model(&models.Return{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "notes": notes})
	if res.Error != nil {
		return nil, apperrors.Storage(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.NotFound(op, fmt.Sprintf("return %d", id))
	}
	return s.GetByID(ctx, id)
}

// Stats summarizes returns by status and reason.
type Stats struct {
	TotalReturns  int64            `json:"total_returns"`
	TotalRefunded decimal.Decimal  `json:"total_refunded"`
	Pending       int64            `json:"pending"`
	ByReason      map[string]int64 `json:"by_reason"`
}

// GetStats aggregates return counts and the refunded amount.
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	const op = "returns.GetStats"
	stats := Stats{ByReason: make(map[string]int64)}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Return{}).Count(&stats.TotalReturns).Error; err != nil {
		return nil, apperrors.Storage(op, err)
	}
	row := db.Model(&models.Return{}).Select("COALESCE(SUM(total), 0)").Row()
	if err := row.Scan(&stats.TotalRefunded); err != nil {
		return nil, apperrors.Storage(op, err)
	}
	err := db.Model(&models.Return{}).Where("status = ?", models.ReturnPending).
		Count(&stats.Pending).Error
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}

	rows, err := db.Model(&models.Return{}).
		Select("reason, COUNT(*)").Group("reason").Rows()
	if err != nil {
		return nil, apperrors.Storage(op, err)
	}
	defer rows.Close()
	for rows.Next() {
		var reason string
		var count int64
		if err := rows.Scan(&reason, &count); err != nil {
			return nil, apperrors.Storage(op, err)
		}
		stats.ByReason[reason] = count
	}
	return &stats, nil
}
