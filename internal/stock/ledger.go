package stock

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tienda-backoffice/internal/apperrors"
	"tienda-backoffice/internal/models"
)

// Operation names the business reason for a stock adjustment and fixes its
// direction: sales debit, purchases and returns credit.
type Operation string

const (
	OpSale     Operation = "venta"
	OpPurchase Operation = "compra"
	OpReturn   Operation = "devolucion"
)

// Ledger is the single mutation point for Product.Quantity. Callers pass
// their open transaction so the adjustment commits or rolls back with the
// rest of their workflow.
type Ledger struct{}

// NewLedger returns a Ledger.
func NewLedger() *Ledger { return &Ledger{} }

// Adjust applies one stock movement inside tx.
//
// For sales the decrement is conditional on sufficient stock, so the
// non-negativity invariant holds even under concurrent debits: the UPDATE
// only matches when quantity >= qty. An unmatched row after the product was
// just read with enough on hand means another transaction won the race.
func (l *Ledger) Adjust(tx *gorm.DB, productID uint, qty int, op Operation) error {
	const opName = "stock.Adjust"

	if qty <= 0 {
		return apperrors.Validation(opName, fmt.Sprintf("quantity must be positive, got %d", qty))
	}

	var product models.Product
	err := tx.First(&product, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound(opName, fmt.Sprintf("product %d", productID))
		}
		return apperrors.Storage(opName, err)
	}

	switch op {
	case OpSale:
		if product.Quantity < qty {
			return apperrors.InsufficientStock(opName, product.Name, product.Quantity, qty)
		}
		res := tx.Model(&models.Product{}).
			Where("id = ? AND quantity >= ?", productID, qty).
			UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
		if res.Error != nil {
			return apperrors.Storage(opName, res.Error)
		}
		if res.RowsAffected == 0 {
			// Lost the row lock race between read and write.
			return apperrors.Conflict(opName, fmt.Sprintf("concurrent stock update on product %d", productID))
		}
	case OpPurchase, OpReturn:
		res := tx.Model(&models.Product{}).
			Where("id = ?", productID).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", qty))
		if res.Error != nil {
			return apperrors.Storage(opName, res.Error)
		}
	default:
		return apperrors.Validation(opName, fmt.Sprintf("unknown operation %q", op))
	}

	return nil
}

// Correct applies a manual inventory correction of delta units, for counts
// taken on the shop floor. A positive delta adds stock; a negative delta
// removes it under the same non-negativity guard as a sale debit.
func (l *Ledger) Correct(tx *gorm.DB, productID uint, delta int) error {
	const opName = "stock.Correct"

	if delta == 0 {
		return apperrors.Validation(opName, "delta must not be zero")
	}

	var product models.Product
	err := tx.First(&product, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound(opName, fmt.Sprintf("product %d", productID))
		}
		return apperrors.Storage(opName, err)
	}

	if delta > 0 {
		res := tx.Model(&models.Product{}).
			Where("id = ?", productID).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", delta))
		if res.Error != nil {
			return apperrors.Storage(opName, res.Error)
		}
		return nil
	}

	remove := -delta
	if product.Quantity < remove {
		return apperrors.InsufficientStock(opName, product.Name, product.Quantity, remove)
	}
	res := tx.Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", productID, remove).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", remove))
	if res.Error != nil {
		return apperrors.Storage(opName, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.Conflict(opName, fmt.Sprintf("concurrent stock update on product %d", productID))
	}
	return nil
}
