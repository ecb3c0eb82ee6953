package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tienda-backoffice/internal/database"
	"tienda-backoffice/internal/models"
	"tienda-backoffice/internal/stock"
)

func newProductRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	h := NewProductHandler(db, stock.NewLedger(), zaptest.NewLogger(t), 5)
	r := gin.New()
	r.GET("/products", h.List)
	r.GET("/products/low-stock", h.LowStock)
	r.GET("/products/:id", h.Get)
	r.POST("/products", h.Create)
	r.PUT("/products/:id", h.Update)
	r.PATCH("/products/:id/stock", h.AdjustStock)
	r.DELETE("/products/:id", h.Deactivate)
	return r, db
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProductCreateAndGet(t *testing.T) {
	r, _ := newProductRouter(t)

	w := doJSON(r, http.MethodPost, "/products",
		`{"name":"Vestido rojo","size":"M","sale_price":"45.50","quantity":12}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(r, http.MethodGet, "/products/1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Vestido rojo")
	assert.Contains(t, w.Body.String(), "45.5")
}

func TestProductCreateValidation(t *testing.T) {
	r, _ := newProductRouter(t)

	// name is required
	w := doJSON(r, http.MethodPost, "/products", `{"size":"M"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/products", `{"name":"X","quantity":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/products", `{"name":"X","sale_price":"-2"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductGetUnknownIs404(t *testing.T) {
	r, _ := newProductRouter(t)

	w := doJSON(r, http.MethodGet, "/products/99", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductUpdateDoesNotTouchQuantity(t *testing.T) {
	r, db := newProductRouter(t)

	p := models.Product{Name: "Blusa", Quantity: 9, Active: true}
	require.NoError(t, db.Create(&p).Error)

	w := doJSON(r, http.MethodPut, fmt.Sprintf("/products/%d", p.ID),
		`{"name":"Blusa floral","sale_price":"30","quantity":999}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, "Blusa floral", got.Name)
	assert.Equal(t, 9, got.Quantity, "catalog updates must not move stock")
}

func TestProductDeactivateHidesFromList(t *testing.T) {
	r, db := newProductRouter(t)

	p := models.Product{Name: "Descontinuado", Quantity: 1, Active: true}
	require.NoError(t, db.Create(&p).Error)

	w := doJSON(r, http.MethodDelete, fmt.Sprintf("/products/%d", p.ID), "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/products", "")
	assert.NotContains(t, w.Body.String(), "Descontinuado")

	w = doJSON(r, http.MethodGet, "/products?all=true", "")
	assert.Contains(t, w.Body.String(), "Descontinuado")
}

func TestAdjustStock(t *testing.T) {
	r, db := newProductRouter(t)

	p := models.Product{Name: "Camisa", Quantity: 10, Active: true}
	require.NoError(t, db.Create(&p).Error)

	w := doJSON(r, http.MethodPatch, fmt.Sprintf("/products/%d/stock", p.ID),
		`{"delta":-3,"reason":"conteo fisico"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 7, got.Quantity)

	w = doJSON(r, http.MethodPatch, fmt.Sprintf("/products/%d/stock", p.ID),
		`{"delta":5}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 12, got.Quantity)
}

func TestAdjustStockRejections(t *testing.T) {
	r, db := newProductRouter(t)

	p := models.Product{Name: "Camisa", Quantity: 2, Active: true}
	require.NoError(t, db.Create(&p).Error)

	// removal past zero
	w := doJSON(r, http.MethodPatch, fmt.Sprintf("/products/%d/stock", p.ID),
		`{"delta":-5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	assert.Equal(t, 2, got.Quantity)

	// zero delta fails binding
	w = doJSON(r, http.MethodPatch, fmt.Sprintf("/products/%d/stock", p.ID),
		`{"delta":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPatch, "/products/999/stock", `{"delta":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLowStockReport(t *testing.T) {
	r, db := newProductRouter(t)

	low := models.Product{Name: "Casi agotado", Quantity: 2, Active: true, SalePrice: decimal.NewFromInt(10)}
	full := models.Product{Name: "Surtido", Quantity: 80, Active: true, SalePrice: decimal.NewFromInt(10)}
	require.NoError(t, db.Create(&low).Error)
	require.NoError(t, db.Create(&full).Error)

	w := doJSON(r, http.MethodGet, "/products/low-stock", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Casi agotado")
	assert.NotContains(t, w.Body.String(), "Surtido")
	assert.Contains(t, w.Body.String(), `"threshold":5`)
}
