package orders

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tienda-backoffice/internal/apperrors"
	"tienda-backoffice/internal/database"
	"tienda-backoffice/internal/models"
	"tienda-backoffice/internal/stock"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return NewService(db, stock.NewLedger(), zaptest.NewLogger(t)), db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, qty int) models.Product {
	t.Helper()
	p := models.Product{Name: name, Quantity: qty, Active: true}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func TestCreateOrderDoesNotTouchStock(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	p := seedProduct(t, db, "Jeans", 4)
	supplier := models.Supplier{Name: "Textiles del Norte"}
	require.NoError(t, db.Create(&supplier).Error)

	order, err := svc.Create(ctx, 1, CreateInput{
		SupplierID: &supplier.ID,
		Lines:      []LineInput{{ProductID: p.ID, Quantity: 20, UnitPrice: decimal.NewFromInt(8)}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(160)), "total = %s", order.Total)

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 4, got.Quantity, "ordering must not change on-hand stock")
}

func TestDeliveryCreditsStockOnce(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	p := seedProduct(t, db, "Abrigo", 2)
	order, err := svc.Create(ctx, 1, CreateInput{
		Lines: []LineInput{{ProductID: p.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(25)}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, models.OrderInTransit, "")
	require.NoError(t, err)

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 2, got.Quantity, "in transit must not credit stock")

	delivered, err := svc.UpdateStatus(ctx, order.ID, models.OrderDelivered, "recibido completo")
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, delivered.Status)

	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 12, got.Quantity)

	// a second delivery is rejected and does not credit again
	_, err = svc.UpdateStatus(ctx, order.ID, models.OrderDelivered, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 12, got.Quantity)
}

func TestDeliveredOrderStatusIsFinal(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	p := seedProduct(t, db, "Sudadera", 0)
	order, err := svc.Create(ctx, 1, CreateInput{
		Lines: []LineInput{{ProductID: p.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(12)}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, models.OrderDelivered, "")
	require.NoError(t, err)

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	require.Equal(t, 10, got.Quantity)

	// regressing a delivered order would open the door to a second
	// delivery and a double credit
	_, err = svc.UpdateStatus(ctx, order.ID, models.OrderPending, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	fetched, err := svc.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderDelivered, fetched.Status)

	_, err = svc.UpdateStatus(ctx, order.ID, models.OrderDelivered, "")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))

	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 10, got.Quantity, "stock must be credited exactly once")
}

func TestCreateOrderValidation(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Saco", 1)

	_, err := svc.Create(ctx, 1, CreateInput{})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.Create(ctx, 1, CreateInput{
		Lines: []LineInput{{ProductID: p.ID, Quantity: 0, UnitPrice: decimal.NewFromInt(1)}},
	})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	missing := uint(9999)
	_, err = svc.Create(ctx, 1, CreateInput{
		SupplierID: &missing,
		Lines:      []LineInput{{ProductID: p.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
	})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = svc.Create(ctx, 1, CreateInput{
		Lines: []LineInput{{ProductID: 9999, Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
	})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestOrderListBySupplier(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	p := seedProduct(t, db, "Corbata", 0)
	s1 := models.Supplier{Name: "Proveedor A"}
	s2 := models.Supplier{Name: "Proveedor B"}
	require.NoError(t, db.Create(&s1).Error)
	require.NoError(t, db.Create(&s2).Error)

	for _, sup := range []*models.Supplier{&s1, &s1, &s2} {
		_, err := svc.Create(ctx, 1, CreateInput{
			SupplierID: &sup.ID,
			Lines:      []LineInput{{ProductID: p.ID, Quantity: 1, UnitPrice: decimal.NewFromInt(4)}},
		})
		require.NoError(t, err)
	}

	orders, err := svc.ListBySupplier(ctx, s1.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestOrderGetStats(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Sombrero", 0)

	first, err := svc.Create(ctx, 1, CreateInput{
		Lines: []LineInput{{ProductID: p.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, 1, CreateInput{
		Lines: []LineInput{{ProductID: p.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(10)}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, first.ID, models.OrderDelivered, "")
	require.NoError(t, err)

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.Pending)
	assert.True(t, stats.TotalSpent.Equal(decimal.NewFromInt(50)), "spent = %s", stats.TotalSpent)
}
