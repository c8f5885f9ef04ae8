package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Branch struct {
	ID        uuid.UUID   `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	Address   pgtype.Text `db:"address" json:"address"`
	Phone     pgtype.Text `db:"phone" json:"phone"`
	IsActive  bool        `db:"is_active" json:"is_active"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

type User struct {
	ID             uuid.UUID   `db:"id" json:"id"`
	BranchID       uuid.UUID   `db:"branch_id" json:"branch_id"`
	Email          string      `db:"email" json:"email"`
	HashedPassword string      `db:"hashed_password" json:"hashed_password"`
	FullName       string      `db:"full_name" json:"full_name"`
	Role           string      `db:"role" json:"role"`
	Pin            pgtype.Text `db:"pin" json:"pin"`
	IsActive       bool        `db:"is_active" json:"is_active"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at" json:"updated_at"`
}

type Category struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	BranchID    uuid.UUID   `db:"branch_id" json:"branch_id"`
	Name        string      `db:"name" json:"name"`
	Description pgtype.Text `db:"description" json:"description"`
	SortOrder   int32       `db:"sort_order" json:"sort_order"`
	IsActive    bool        `db:"is_active" json:"is_active"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

type MenuItem struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	BranchID    uuid.UUID      `db:"branch_id" json:"branch_id"`
	CategoryID  uuid.UUID      `db:"category_id" json:"category_id"`
	Name        string         `db:"name" json:"name"`
	Description pgtype.Text    `db:"description" json:"description"`
	Price       pgtype.Numeric `db:"price" json:"price"`
	Station     pgtype.Text    `db:"station" json:"station"`
	IsAvailable bool           `db:"is_available" json:"is_available"`
	IsActive    bool           `db:"is_active" json:"is_active"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

type Order struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	BranchID    uuid.UUID      `db:"branch_id" json:"branch_id"`
	OrderNumber string         `db:"order_number" json:"order_number"`
	OrderType   string         `db:"order_type" json:"order_type"`
	Status      string         `db:"status" json:"status"`
	TableNumber pgtype.Text    `db:"table_number" json:"table_number"`
	Notes       pgtype.Text    `db:"notes" json:"notes"`
	TotalAmount pgtype.Numeric `db:"total_amount" json:"total_amount"`
	CreatedBy   uuid.UUID      `db:"created_by" json:"created_by"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

type OrderItem struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	OrderID    uuid.UUID      `db:"order_id" json:"order_id"`
	MenuItemID uuid.UUID      `db:"menu_item_id" json:"menu_item_id"`
	Name       string         `db:"name" json:"name"`
	Quantity   int32          `db:"quantity" json:"quantity"`
	UnitPrice  pgtype.Numeric `db:"unit_price" json:"unit_price"`
	Subtotal   pgtype.Numeric `db:"subtotal" json:"subtotal"`
	Station    pgtype.Text    `db:"station" json:"station"`
	Notes      pgtype.Text    `db:"notes" json:"notes"`
}

type InventoryItem struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	BranchID     uuid.UUID      `db:"branch_id" json:"branch_id"`
	Name         string         `db:"name" json:"name"`
	Unit         string         `db:"unit" json:"unit"`
	CurrentStock pgtype.Numeric `db:"current_stock" json:"current_stock"`
	ReorderLevel pgtype.Numeric `db:"reorder_level" json:"reorder_level"`
	IsActive     bool           `db:"is_active" json:"is_active"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

type PurchaseOrder struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	BranchID       uuid.UUID      `db:"branch_id" json:"branch_id"`
	PoNumber       string         `db:"po_number" json:"po_number"`
	SupplierName   string         `db:"supplier_name" json:"supplier_name"`
	Status         string         `db:"status" json:"status"`
	Subtotal       pgtype.Numeric `db:"subtotal" json:"subtotal"`
	DiscountAmount pgtype.Numeric `db:"discount_amount" json:"discount_amount"`
	TaxAmount      pgtype.Numeric `db:"tax_amount" json:"tax_amount"`
	NetCost        pgtype.Numeric `db:"net_cost" json:"net_cost"`
	Notes          pgtype.Text    `db:"notes" json:"notes"`
	ExpectedDate   pgtype.Date    `db:"expected_date" json:"expected_date"`
	CreatedBy      uuid.UUID      `db:"created_by" json:"created_by"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

type PurchaseOrderLine struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	PurchaseOrderID  uuid.UUID      `db:"purchase_order_id" json:"purchase_order_id"`
	InventoryItemID  uuid.UUID      `db:"inventory_item_id" json:"inventory_item_id"`
	Quantity         pgtype.Numeric `db:"quantity" json:"quantity"`
	UnitCost         pgtype.Numeric `db:"unit_cost" json:"unit_cost"`
	LineTotal        pgtype.Numeric `db:"line_total" json:"line_total"`
	ReceivedQuantity pgtype.Numeric `db:"received_quantity" json:"received_quantity"`
}

type GoodsReceipt struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	BranchID        uuid.UUID   `db:"branch_id" json:"branch_id"`
	GrnNumber       string      `db:"grn_number" json:"grn_number"`
	PurchaseOrderID uuid.UUID   `db:"purchase_order_id" json:"purchase_order_id"`
	Notes           pgtype.Text `db:"notes" json:"notes"`
	ReceivedBy      uuid.UUID   `db:"received_by" json:"received_by"`
	ReceivedAt      time.Time   `db:"received_at" json:"received_at"`
}

type GoodsReceiptLine struct {
	ID                  uuid.UUID      `db:"id" json:"id"`
	GoodsReceiptID      uuid.UUID      `db:"goods_receipt_id" json:"goods_receipt_id"`
	PurchaseOrderLineID uuid.UUID      `db:"purchase_order_line_id" json:"purchase_order_line_id"`
	InventoryItemID     uuid.UUID      `db:"inventory_item_id" json:"inventory_item_id"`
	Quantity            pgtype.Numeric `db:"quantity" json:"quantity"`
}

type StockAdjustment struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	BranchID        uuid.UUID      `db:"branch_id" json:"branch_id"`
	InventoryItemID uuid.UUID      `db:"inventory_item_id" json:"inventory_item_id"`
	QuantityDelta   pgtype.Numeric `db:"quantity_delta" json:"quantity_delta"`
	StockAfter      pgtype.Numeric `db:"stock_after" json:"stock_after"`
	Reason          string         `db:"reason" json:"reason"`
	Notes           pgtype.Text    `db:"notes" json:"notes"`
	CreatedBy       uuid.UUID      `db:"created_by" json:"created_by"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

type StockCount struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	BranchID         uuid.UUID      `db:"branch_id" json:"branch_id"`
	InventoryItemID  uuid.UUID      `db:"inventory_item_id" json:"inventory_item_id"`
	ExpectedQuantity pgtype.Numeric `db:"expected_quantity" json:"expected_quantity"`
	CountedQuantity  pgtype.Numeric `db:"counted_quantity" json:"counted_quantity"`
	Notes            pgtype.Text    `db:"notes" json:"notes"`
	CountedBy        uuid.UUID      `db:"counted_by" json:"counted_by"`
	CountedAt        time.Time      `db:"counted_at" json:"counted_at"`
}

type KdsProfile struct {
	ID                uuid.UUID `db:"id" json:"id"`
	BranchID          uuid.UUID `db:"branch_id" json:"branch_id"`
	Name              string    `db:"name" json:"name"`
	Stations          []string  `db:"stations" json:"stations"`
	OrderTypes        []string  `db:"order_types" json:"order_types"`
	ShowModifiers     bool      `db:"show_modifiers" json:"show_modifiers"`
	AlertAfterMinutes int32     `db:"alert_after_minutes" json:"alert_after_minutes"`
	IsDefault         bool      `db:"is_default" json:"is_default"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

type Deal struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	BranchID      uuid.UUID      `db:"branch_id" json:"branch_id"`
	Name          string         `db:"name" json:"name"`
	Description   pgtype.Text    `db:"description" json:"description"`
	DiscountType  string         `db:"discount_type" json:"discount_type"`
	DiscountValue pgtype.Numeric `db:"discount_value" json:"discount_value"`
	StartsAt      time.Time      `db:"starts_at" json:"starts_at"`
	EndsAt        time.Time      `db:"ends_at" json:"ends_at"`
	IsActive      bool           `db:"is_active" json:"is_active"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

type CmsPage struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Slug        string    `db:"slug" json:"slug"`
	Title       string    `db:"title" json:"title"`
	Body        string    `db:"body" json:"body"`
	IsPublished bool      `db:"is_published" json:"is_published"`
	CreatedBy   uuid.UUID `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
