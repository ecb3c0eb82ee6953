package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User - a back-office account. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Username     string     `gorm:"uniqueIndex;size:50" json:"username"`
	Email        string     `gorm:"size:120" json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `gorm:"size:80" json:"first_name"`
	LastName     string     `gorm:"size:80" json:"last_name"`
	Phone        string     `gorm:"size:30" json:"phone"`
	Active       bool       `gorm:"default:true" json:"active"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	Roles        []Role     `gorm:"many2many:user_roles" json:"roles,omitempty"`
}

// Role - named permission bundle. Permissions is a JSON-encoded array of
// capability tokens; "*" grants everything. Parse it with
// auth.ParsePermissions - never read it as a raw string elsewhere.
type Role struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"uniqueIndex;size:50" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	Permissions string `gorm:"type:json" json:"permissions"`
}

// Product - the clothing inventory. Quantity is the authoritative on-hand
// count and is only mutated through the stock ledger.
type Product struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"size:120" json:"name"`
	Description     string          `json:"description"`
	Size            string          `gorm:"size:20" json:"size"`
	Color           string          `gorm:"size:40" json:"color"`
	AcquisitionCost decimal.Decimal `gorm:"type:decimal(10,2)" json:"acquisition_cost"`
	SalePrice       decimal.Decimal `gorm:"type:decimal(10,2)" json:"sale_price"`
	Quantity        int             `json:"quantity"`
	SupplierID      *uint           `json:"supplier_id,omitempty"`
	Active          bool            `gorm:"default:true" json:"active"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Client - a store customer.
type Client struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FirstName  string    `gorm:"size:80" json:"first_name"`
	LastName   string    `gorm:"size:80" json:"last_name"`
	Phone      string    `gorm:"size:30" json:"phone"`
	Street     string    `gorm:"size:120" json:"street"`
	District   string    `gorm:"size:80" json:"district"`
	PostalCode string    `gorm:"size:10" json:"postal_code"`
	City       string    `gorm:"size:80" json:"city"`
	State      string    `gorm:"size:80" json:"state"`
	Frequent   bool      `json:"frequent"`
	CreatedAt  time.Time `json:"created_at"`
}

// Supplier - where purchase orders go.
type Supplier struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120" json:"name"`
	City      string    `gorm:"size:80" json:"city"`
	CreatedAt time.Time `json:"created_at"`
}

// Sale statuses.
const (
	SaleCompleted = "completada"
	SalePending   = "pendiente"
	SaleCancelled = "cancelada"
)

// Payment methods.
const (
	PayCash     = "efectivo"
	PayCard     = "tarjeta"
	PayTransfer = "transferencia"
	PayOther    = "otro"
)

// Sale - transaction header. Total always equals the sum of line subtotals;
// it is computed inside the creating transaction, never patched afterwards.
type Sale struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	UserID        uint            `json:"user_id"`
	ClientID      *uint           `json:"client_id,omitempty"`
	SaleDate      time.Time       `json:"sale_date"`
	Total         decimal.Decimal `gorm:"type:decimal(10,2)" json:"total"`
	PaymentMethod string          `gorm:"size:20" json:"payment_method"`
	Status        string          `gorm:"size:20" json:"status"`
	Notes         string          `json:"notes"`
	CreatedAt     time.Time       `json:"created_at"`
	Lines         []SaleLine      `gorm:"foreignKey:SaleID" json:"lines,omitempty"`
}

// SaleLine - one product entry in a sale. UnitPrice is a snapshot taken at
// sale time; Subtotal = Quantity x UnitPrice.
type SaleLine struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	SaleID    uint            `json:"sale_id"`
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2)" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2)" json:"subtotal"`
	CreatedAt time.Time       `json:"created_at"`
}

// Return statuses.
const (
	ReturnPending   = "pendiente"
	ReturnApproved  = "aprobada"
	ReturnRejected  = "rechazada"
	ReturnCompleted = "completada"
)

// Return reasons.
const (
	ReasonDefect      = "defecto"
	ReasonWrongSize   = "talla_incorrecta"
	ReasonUnsatisfied = "no_satisfecho"
	ReasonOther       = "otro"
)

// Return - a refund against (optionally) a prior sale. Creating one credits
// stock back inside the same transaction.
type Return struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	UserID     uint            `json:"user_id"`
	SaleID     *uint           `json:"sale_id,omitempty"`
	ClientID   *uint           `json:"client_id,omitempty"`
	ReturnDate time.Time       `json:"return_date"`
	Reason     string          `gorm:"size:30" json:"reason"`
	Status     string          `gorm:"size:20" json:"status"`
	Total      decimal.Decimal `gorm:"type:decimal(10,2)" json:"total"`
	Notes      string          `json:"notes"`
	CreatedAt  time.Time       `json:"created_at"`
	Lines      []ReturnLine    `gorm:"foreignKey:ReturnID" json:"lines,omitempty"`
}

// ReturnLine - one returned product.
type ReturnLine struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	ReturnID       uint            `json:"return_id"`
	ProductID      uint            `json:"product_id"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(10,2)" json:"unit_price"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(10,2)" json:"subtotal"`
	SpecificReason string          `gorm:"size:255" json:"specific_reason"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Purchase order statuses.
const (
	OrderPending   = "pendiente"
	OrderConfirmed = "confirmado"
	OrderInTransit = "en_camino"
	OrderDelivered = "entregado"
	OrderCancelled = "cancelado"
)

// PurchaseOrder - inbound order to a supplier. Stock is only credited when
// the order is marked delivered.
type PurchaseOrder struct {
	ID               uint                `gorm:"primaryKey" json:"id"`
	UserID           uint                `json:"user_id"`
	SupplierID       *uint               `json:"supplier_id,omitempty"`
	OrderDate        time.Time           `json:"order_date"`
	ExpectedDelivery *time.Time          `json:"expected_delivery,omitempty"`
	Status           string              `gorm:"size:20" json:"status"`
	Total            decimal.Decimal     `gorm:"type:decimal(10,2)" json:"total"`
	Notes            string              `json:"notes"`
	CreatedAt        time.Time           `json:"created_at"`
	Lines            []PurchaseOrderLine `gorm:"foreignKey:PurchaseOrderID" json:"lines,omitempty"`
}

// PurchaseOrderLine - one product entry in a purchase order.
type PurchaseOrderLine struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	PurchaseOrderID uint            `json:"purchase_order_id"`
	ProductID       uint            `json:"product_id"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(10,2)" json:"unit_price"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(10,2)" json:"subtotal"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Shift statuses.
const (
	ShiftActive    = "activo"
	ShiftCompleted = "completado"
	ShiftAbsent    = "ausente"
)

// Shift - a scheduled work shift for an employee.
type Shift struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `json:"user_id"`
	Date      string    `gorm:"size:10" json:"date"` // YYYY-MM-DD
	TimeIn    string    `gorm:"size:5" json:"time_in"`
	TimeOut   string    `gorm:"size:5" json:"time_out"`
	Status    string    `gorm:"size:20" json:"status"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// Attendance statuses.
const (
	AttPresent   = "presente"
	AttAbsent    = "ausente"
	AttLate      = "tardanza"
	AttLeftEarly = "salida_temprana"
)

// Attendance - an actual clock-in record, as opposed to the scheduled Shift.
type Attendance struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `json:"user_id"`
	Date      string    `gorm:"size:10" json:"date"`
	TimeIn    string    `gorm:"size:5" json:"time_in"`
	TimeOut   string    `gorm:"size:5" json:"time_out"`
	Status    string    `gorm:"size:20" json:"status"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}
