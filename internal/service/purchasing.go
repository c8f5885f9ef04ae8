package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/kiwari-pos/backoffice/internal/database"
	"github.com/kiwari-pos/backoffice/internal/enum"
)

const (
	poNumberConstraint  = "purchase_orders_branch_id_po_number_key"
	grnNumberConstraint = "goods_receipts_branch_id_grn_number_key"
)

// Errors returned by the purchasing service.
var (
	ErrSupplierRequired           = errors.New("supplier_name is required")
	ErrEmptyLines                 = errors.New("lines are required")
	ErrInvalidInventoryItemID     = errors.New("invalid inventory_item_id")
	ErrInventoryItemNotFound      = errors.New("inventory item not found in branch")
	ErrInvalidLineQuantity        = errors.New("quantity must be > 0")
	ErrInvalidUnitCost            = errors.New("unit_cost must be >= 0")
	ErrInvalidAmount              = errors.New("discount_amount and tax_amount must be >= 0")
	ErrNegativeNetCost            = errors.New("net cost cannot be negative")
	ErrLineMismatch               = errors.New("quantities and unit costs differ in length")
	ErrInvalidExpectedDate        = errors.New("invalid expected_date, use YYYY-MM-DD")
	ErrPurchaseOrderNotFound      = errors.New("purchase order not found")
	ErrPurchaseOrderNotReceivable = errors.New("purchase order is not open for receiving")
	ErrInvalidPOLineID            = errors.New("invalid purchase_order_line_id")
	ErrUnknownPOLine              = errors.New("line does not belong to purchase order")
	ErrOverReceipt                = errors.New("received quantity exceeds outstanding quantity")
)

// PurchaseStore defines the DB methods used for purchase orders and goods
// receipts. Satisfied by *database.Queries.
type PurchaseStore interface {
	GetInventoryItem(ctx context.Context, arg database.GetInventoryItemParams) (database.InventoryItem, error)
	GetNextPONumber(ctx context.Context, branchID uuid.UUID) (int32, error)
	CreatePurchaseOrder(ctx context.Context, arg database.CreatePurchaseOrderParams) (database.PurchaseOrder, error)
	CreatePurchaseOrderLine(ctx context.Context, arg database.CreatePurchaseOrderLineParams) (database.PurchaseOrderLine, error)
	GetPurchaseOrderForUpdate(ctx context.Context, arg database.GetPurchaseOrderParams) (database.PurchaseOrder, error)
	ListPurchaseOrderLines(ctx context.Context, purchaseOrderID uuid.UUID) ([]database.PurchaseOrderLine, error)
	UpdatePurchaseOrderStatus(ctx context.Context, arg database.UpdatePurchaseOrderStatusParams) (database.PurchaseOrder, error)
	AddReceivedQuantity(ctx context.Context, arg database.AddReceivedQuantityParams) (database.PurchaseOrderLine, error)
	GetNextGRNNumber(ctx context.Context, branchID uuid.UUID) (int32, error)
	CreateGoodsReceipt(ctx context.Context, arg database.CreateGoodsReceiptParams) (database.GoodsReceipt, error)
	CreateGoodsReceiptLine(ctx context.Context, arg database.CreateGoodsReceiptLineParams) (database.GoodsReceiptLine, error)
	AddInventoryStock(ctx context.Context, arg database.AddInventoryStockParams) (database.InventoryItem, error)
}

type NewPurchaseStore func(db database.DBTX) PurchaseStore

// PurchaseService handles purchase orders and goods receipts.
type PurchaseService struct {
	pool     TxBeginner
	newStore NewPurchaseStore
}

func NewPurchaseService(pool TxBeginner, newStore NewPurchaseStore) *PurchaseService {
	return &PurchaseService{pool: pool, newStore: newStore}
}

type CreatePurchaseOrderRequest struct {
	BranchID       uuid.UUID
	CreatedBy      uuid.UUID
	SupplierName   string
	Notes          string
	ExpectedDate   string
	DiscountAmount string
	TaxAmount      string
	Lines          []PurchaseOrderLineRequest
}

type PurchaseOrderLineRequest struct {
	InventoryItemID string
	Quantity        string
	UnitCost        string
}

type PurchaseOrderResult struct {
	PurchaseOrder database.PurchaseOrder
	Lines         []database.PurchaseOrderLine
}

// PurchaseTotals is the cost breakdown of a purchase order.
type PurchaseTotals struct {
	LineTotals []decimal.Decimal
	Subtotal   decimal.Decimal
	Discount   decimal.Decimal
	Tax        decimal.Decimal
	NetCost    decimal.Decimal
}

// ComputePurchaseTotals returns subtotal = Σ quantity × unit cost and
// net cost = subtotal − discount + tax.
func ComputePurchaseTotals(quantities, unitCosts []decimal.Decimal, discount, tax decimal.Decimal) (PurchaseTotals, error) {
	if len(quantities) != len(unitCosts) {
		return PurchaseTotals{}, ErrLineMismatch
	}
	if discount.IsNegative() || tax.IsNegative() {
		return PurchaseTotals{}, ErrInvalidAmount
	}
	t := PurchaseTotals{
		LineTotals: make([]decimal.Decimal, len(quantities)),
		Subtotal:   decimal.Zero,
		Discount:   discount,
		Tax:        tax,
	}
	for i := range quantities {
		t.LineTotals[i] = quantities[i].Mul(unitCosts[i]).Round(2)
		t.Subtotal = t.Subtotal.Add(t.LineTotals[i])
	}
	t.NetCost = t.Subtotal.Sub(discount).Add(tax)
	if t.NetCost.IsNegative() {
		return PurchaseTotals{}, ErrNegativeNetCost
	}
	return t, nil
}

type parsedLine struct {
	itemID   uuid.UUID
	quantity decimal.Decimal
	unitCost decimal.Decimal
}

// CreatePurchaseOrder validates lines, computes totals and stores a DRAFT
// purchase order with its lines.
func (s *PurchaseService) CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResult, error) {
	if req.SupplierName == "" {
		return nil, ErrSupplierRequired
	}
	if len(req.Lines) == 0 {
		return nil, ErrEmptyLines
	}

	lines := make([]parsedLine, len(req.Lines))
	quantities := make([]decimal.Decimal, len(req.Lines))
	costs := make([]decimal.Decimal, len(req.Lines))
	for i, l := range req.Lines {
		id, err := uuid.Parse(l.InventoryItemID)
		if err != nil {
			return nil, fmt.Errorf("line[%d]: %w", i, ErrInvalidInventoryItemID)
		}
		qty, err := decimal.NewFromString(l.Quantity)
		if err != nil || !qty.IsPositive() {
			return nil, fmt.Errorf("line[%d]: %w", i, ErrInvalidLineQuantity)
		}
		cost, err := decimal.NewFromString(l.UnitCost)
		if err != nil || cost.IsNegative() {
			return nil, fmt.Errorf("line[%d]: %w", i, ErrInvalidUnitCost)
		}
		lines[i] = parsedLine{itemID: id, quantity: qty, unitCost: cost}
		quantities[i], costs[i] = qty, cost
	}

	discount, err := parseAmount(req.DiscountAmount)
	if err != nil {
		return nil, ErrInvalidAmount
	}
	tax, err := parseAmount(req.TaxAmount)
	if err != nil {
		return nil, ErrInvalidAmount
	}
	totals, err := ComputePurchaseTotals(quantities, costs, discount, tax)
	if err != nil {
		return nil, err
	}

	expected := pgtype.Date{}
	if req.ExpectedDate != "" {
		d, err := time.Parse("2006-01-02", req.ExpectedDate)
		if err != nil {
			return nil, ErrInvalidExpectedDate
		}
		expected = pgtype.Date{Time: d, Valid: true}
	}

	return retryOnConflict(poNumberConstraint, func() (*PurchaseOrderResult, error) {
		return s.createPurchaseOrderTx(ctx, req, lines, totals, expected)
	})
}

func (s *PurchaseService) createPurchaseOrderTx(ctx context.Context, req CreatePurchaseOrderRequest, lines []parsedLine, totals PurchaseTotals, expected pgtype.Date) (*PurchaseOrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	for i, l := range lines {
		if _, err := store.GetInventoryItem(ctx, database.GetInventoryItemParams{ID: l.itemID, BranchID: req.BranchID}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("line[%d]: %w", i, ErrInventoryItemNotFound)
			}
			return nil, fmt.Errorf("line[%d]: get inventory item: %w", i, err)
		}
	}

	nextNum, err := store.GetNextPONumber(ctx, req.BranchID)
	if err != nil {
		return nil, fmt.Errorf("get next po number: %w", err)
	}

	po, err := store.CreatePurchaseOrder(ctx, database.CreatePurchaseOrderParams{
		BranchID:       req.BranchID,
		PoNumber:       fmt.Sprintf("PO-%06d", nextNum),
		SupplierName:   req.SupplierName,
		Subtotal:       database.Numeric(totals.Subtotal),
		DiscountAmount: database.Numeric(totals.Discount),
		TaxAmount:      database.Numeric(totals.Tax),
		NetCost:        database.Numeric(totals.NetCost),
		Notes:          database.Text(req.Notes),
		ExpectedDate:   expected,
		CreatedBy:      req.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create purchase order: %w", err)
	}

	created := make([]database.PurchaseOrderLine, len(lines))
	for i, l := range lines {
		created[i], err = store.CreatePurchaseOrderLine(ctx, database.CreatePurchaseOrderLineParams{
			PurchaseOrderID: po.ID,
			InventoryItemID: l.itemID,
			Quantity:        database.Numeric(l.quantity),
			UnitCost:        database.Numeric(l.unitCost),
			LineTotal:       database.Numeric(totals.LineTotals[i]),
		})
		if err != nil {
			return nil, fmt.Errorf("line[%d]: create purchase order line: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &PurchaseOrderResult{PurchaseOrder: po, Lines: created}, nil
}

// SubmitPurchaseOrder moves a DRAFT purchase order to ORDERED.
func (s *PurchaseService) SubmitPurchaseOrder(ctx context.Context, branchID, id uuid.UUID) (database.PurchaseOrder, error) {
	return s.transition(ctx, branchID, id, enum.PurchaseOrderStatusOrdered)
}

// CancelPurchaseOrder cancels a DRAFT or ORDERED purchase order.
func (s *PurchaseService) CancelPurchaseOrder(ctx context.Context, branchID, id uuid.UUID) (database.PurchaseOrder, error) {
	return s.transition(ctx, branchID, id, enum.PurchaseOrderStatusCancelled)
}

func (s *PurchaseService) transition(ctx context.Context, branchID, id uuid.UUID, to string) (database.PurchaseOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.PurchaseOrder{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	po, err := store.GetPurchaseOrderForUpdate(ctx, database.GetPurchaseOrderParams{ID: id, BranchID: branchID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.PurchaseOrder{}, ErrPurchaseOrderNotFound
		}
		return database.PurchaseOrder{}, fmt.Errorf("get purchase order: %w", err)
	}
	if err := ValidatePurchaseOrderTransition(po.Status, to); err != nil {
		return database.PurchaseOrder{}, err
	}

	updated, err := store.UpdatePurchaseOrderStatus(ctx, database.UpdatePurchaseOrderStatusParams{
		ID: id, BranchID: branchID, Status: to, CurrentStatus: po.Status,
	})
	if err != nil {
		return database.PurchaseOrder{}, fmt.Errorf("update purchase order status: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return database.PurchaseOrder{}, fmt.Errorf("commit tx: %w", err)
	}
	return updated, nil
}

type ReceiveGoodsRequest struct {
	BranchID        uuid.UUID
	PurchaseOrderID uuid.UUID
	ReceivedBy      uuid.UUID
	Notes           string
	Lines           []ReceiveLineRequest
}

type ReceiveLineRequest struct {
	PurchaseOrderLineID string
	Quantity            string
}

type GoodsReceiptResult struct {
	Receipt       database.GoodsReceipt
	Lines         []database.GoodsReceiptLine
	PurchaseOrder database.PurchaseOrder
}

type receiveLine struct {
	poLine   database.PurchaseOrderLine
	quantity decimal.Decimal
}

// ReceiveGoods records a goods received note against an open purchase order.
// In one transaction it stores the note and its lines, adds the quantities to
// stock, bumps the received quantities and moves the purchase order to
// PARTIALLY_RECEIVED or RECEIVED.
func (s *PurchaseService) ReceiveGoods(ctx context.Context, req ReceiveGoodsRequest) (*GoodsReceiptResult, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyLines
	}
	ids := make([]uuid.UUID, len(req.Lines))
	qtys := make([]decimal.Decimal, len(req.Lines))
	for i, l := range req.Lines {
		id, err := uuid.Parse(l.PurchaseOrderLineID)
		if err != nil {
			return nil, fmt.Errorf("line[%d]: %w", i, ErrInvalidPOLineID)
		}
		qty, err := decimal.NewFromString(l.Quantity)
		if err != nil || !qty.IsPositive() {
			return nil, fmt.Errorf("line[%d]: %w", i, ErrInvalidLineQuantity)
		}
		ids[i], qtys[i] = id, qty
	}

	return retryOnConflict(grnNumberConstraint, func() (*GoodsReceiptResult, error) {
		return s.receiveGoodsTx(ctx, req, ids, qtys)
	})
}

func (s *PurchaseService) receiveGoodsTx(ctx context.Context, req ReceiveGoodsRequest, ids []uuid.UUID, qtys []decimal.Decimal) (*GoodsReceiptResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	po, err := store.GetPurchaseOrderForUpdate(ctx, database.GetPurchaseOrderParams{
		ID: req.PurchaseOrderID, BranchID: req.BranchID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPurchaseOrderNotFound
		}
		return nil, fmt.Errorf("get purchase order: %w", err)
	}
	if po.Status != enum.PurchaseOrderStatusOrdered && po.Status != enum.PurchaseOrderStatusPartiallyReceived {
		return nil, ErrPurchaseOrderNotReceivable
	}

	poLines, err := store.ListPurchaseOrderLines(ctx, po.ID)
	if err != nil {
		return nil, fmt.Errorf("list purchase order lines: %w", err)
	}
	received := make(map[uuid.UUID]decimal.Decimal, len(poLines))
	byID := make(map[uuid.UUID]database.PurchaseOrderLine, len(poLines))
	for _, l := range poLines {
		byID[l.ID] = l
		received[l.ID] = database.ToDecimal(l.ReceivedQuantity)
	}

	toReceive := make([]receiveLine, len(ids))
	for i, id := range ids {
		line, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("line[%d]: %w", i, ErrUnknownPOLine)
		}
		after := received[id].Add(qtys[i])
		if after.GreaterThan(database.ToDecimal(line.Quantity)) {
			return nil, fmt.Errorf("line[%d]: %w", i, ErrOverReceipt)
		}
		received[id] = after
		toReceive[i] = receiveLine{poLine: line, quantity: qtys[i]}
	}

	nextNum, err := store.GetNextGRNNumber(ctx, req.BranchID)
	if err != nil {
		return nil, fmt.Errorf("get next grn number: %w", err)
	}
	grn, err := store.CreateGoodsReceipt(ctx, database.CreateGoodsReceiptParams{
		BranchID:        req.BranchID,
		GrnNumber:       fmt.Sprintf("GRN-%06d", nextNum),
		PurchaseOrderID: po.ID,
		Notes:           database.Text(req.Notes),
		ReceivedBy:      req.ReceivedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create goods receipt: %w", err)
	}

	grnLines := make([]database.GoodsReceiptLine, len(toReceive))
	for i, l := range toReceive {
		qty := database.Numeric(l.quantity)
		grnLines[i], err = store.CreateGoodsReceiptLine(ctx, database.CreateGoodsReceiptLineParams{
			GoodsReceiptID:      grn.ID,
			PurchaseOrderLineID: l.poLine.ID,
			InventoryItemID:     l.poLine.InventoryItemID,
			Quantity:            qty,
		})
		if err != nil {
			return nil, fmt.Errorf("line[%d]: create goods receipt line: %w", i, err)
		}
		if _, err := store.AddReceivedQuantity(ctx, database.AddReceivedQuantityParams{ID: l.poLine.ID, Quantity: qty}); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("line[%d]: %w", i, ErrOverReceipt)
			}
			return nil, fmt.Errorf("line[%d]: add received quantity: %w", i, err)
		}
		if _, err := store.AddInventoryStock(ctx, database.AddInventoryStockParams{ID: l.poLine.InventoryItemID, Delta: qty}); err != nil {
			return nil, fmt.Errorf("line[%d]: add inventory stock: %w", i, err)
		}
	}

	status := enum.PurchaseOrderStatusReceived
	for _, l := range poLines {
		if received[l.ID].LessThan(database.ToDecimal(l.Quantity)) {
			status = enum.PurchaseOrderStatusPartiallyReceived
			break
		}
	}
	updated, err := store.UpdatePurchaseOrderStatus(ctx, database.UpdatePurchaseOrderStatusParams{
		ID: po.ID, BranchID: req.BranchID, Status: status, CurrentStatus: po.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("update purchase order status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return &GoodsReceiptResult{Receipt: grn, Lines: grnLines, PurchaseOrder: updated}, nil
}
