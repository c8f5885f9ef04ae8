package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/kiwari-pos/backoffice/internal/database"
	"github.com/kiwari-pos/backoffice/internal/enum"
)

var (
	ErrInvalidReason     = errors.New("invalid reason")
	ErrInvalidDelta      = errors.New("quantity_delta must be a non-zero number")
	ErrNegativeStock     = errors.New("adjustment would make stock negative")
	ErrInvalidCountValue = errors.New("counted_quantity must be >= 0")
)

// StockStore defines the DB methods used for stock movements.
type StockStore interface {
	GetInventoryItemForUpdate(ctx context.Context, arg database.GetInventoryItemParams) (database.InventoryItem, error)
	AddInventoryStock(ctx context.Context, arg database.AddInventoryStockParams) (database.InventoryItem, error)
	CreateStockAdjustment(ctx context.Context, arg database.CreateStockAdjustmentParams) (database.StockAdjustment, error)
	CreateStockCount(ctx context.Context, arg database.CreateStockCountParams) (database.StockCount, error)
}

type NewStockStore func(db database.DBTX) StockStore

type StockService struct {
	pool     TxBeginner
	newStore NewStockStore
}

func NewStockService(pool TxBeginner, newStore NewStockStore) *StockService {
	return &StockService{pool: pool, newStore: newStore}
}

type AdjustStockRequest struct {
	BranchID        uuid.UUID
	InventoryItemID uuid.UUID
	CreatedBy       uuid.UUID
	Delta           string
	Reason          string
	Notes           string
}

// AdjustStock applies a signed delta to an item and records why. Stock may
// not go below zero.
func (s *StockService) AdjustStock(ctx context.Context, req AdjustStockRequest) (database.StockAdjustment, error) {
	if !enum.IsAdjustmentReason(req.Reason) {
		return database.StockAdjustment{}, ErrInvalidReason
	}
	delta, err := decimal.NewFromString(req.Delta)
	if err != nil || delta.IsZero() {
		return database.StockAdjustment{}, ErrInvalidDelta
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.StockAdjustment{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	item, err := store.GetInventoryItemForUpdate(ctx, database.GetInventoryItemParams{
		ID: req.InventoryItemID, BranchID: req.BranchID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.StockAdjustment{}, ErrInventoryItemNotFound
		}
		return database.StockAdjustment{}, fmt.Errorf("get inventory item: %w", err)
	}
	if database.ToDecimal(item.CurrentStock).Add(delta).IsNegative() {
		return database.StockAdjustment{}, ErrNegativeStock
	}

	updated, err := store.AddInventoryStock(ctx, database.AddInventoryStockParams{
		ID: item.ID, Delta: database.Numeric(delta),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.StockAdjustment{}, ErrNegativeStock
		}
		return database.StockAdjustment{}, fmt.Errorf("add inventory stock: %w", err)
	}

	adj, err := store.CreateStockAdjustment(ctx, database.CreateStockAdjustmentParams{
		BranchID:        req.BranchID,
		InventoryItemID: item.ID,
		QuantityDelta:   database.Numeric(delta),
		StockAfter:      updated.CurrentStock,
		Reason:          req.Reason,
		Notes:           database.Text(req.Notes),
		CreatedBy:       req.CreatedBy,
	})
	if err != nil {
		return database.StockAdjustment{}, fmt.Errorf("create stock adjustment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.StockAdjustment{}, fmt.Errorf("commit tx: %w", err)
	}
	return adj, nil
}

type RecordStockCountRequest struct {
	BranchID        uuid.UUID
	InventoryItemID uuid.UUID
	CountedBy       uuid.UUID
	Counted         string
	Notes           string
}

// RecordStockCount stores a physical count next to the system quantity at
// the moment of counting. Stock itself is not changed; corrections go through
// AdjustStock with COUNT_CORRECTION.
func (s *StockService) RecordStockCount(ctx context.Context, req RecordStockCountRequest) (database.StockCount, error) {
	counted, err := decimal.NewFromString(req.Counted)
	if err != nil || counted.IsNegative() {
		return database.StockCount{}, ErrInvalidCountValue
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.StockCount{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)
	item, err := store.GetInventoryItemForUpdate(ctx, database.GetInventoryItemParams{
		ID: req.InventoryItemID, BranchID: req.BranchID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.StockCount{}, ErrInventoryItemNotFound
		}
		return database.StockCount{}, fmt.Errorf("get inventory item: %w", err)
	}

	sc, err := store.CreateStockCount(ctx, database.CreateStockCountParams{
		BranchID:         req.BranchID,
		InventoryItemID:  item.ID,
		ExpectedQuantity: item.CurrentStock,
		CountedQuantity:  database.Numeric(counted),
		Notes:            database.Text(req.Notes),
		CountedBy:        req.CountedBy,
	})
	if err != nil {
		return database.StockCount{}, fmt.Errorf("create stock count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return database.StockCount{}, fmt.Errorf("commit tx: %w", err)
	}
	return sc, nil
}
