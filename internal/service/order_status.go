package service

import (
	"errors"

	"github.com/kiwari-pos/backoffice/internal/enum"
)

var (
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

var orderTransitions = map[string][]string{
	enum.OrderStatusNew:       {enum.OrderStatusPreparing, enum.OrderStatusCancelled},
	enum.OrderStatusPreparing: {enum.OrderStatusReady, enum.OrderStatusCancelled},
	enum.OrderStatusReady:     {enum.OrderStatusCompleted, enum.OrderStatusCancelled},
}

// ValidateOrderTransition checks a kitchen status change. COMPLETED and
// CANCELLED are terminal.
func ValidateOrderTransition(from, to string) error {
	if !enum.IsOrderStatus(to) {
		return ErrInvalidStatus
	}
	for _, next := range orderTransitions[from] {
		if next == to {
			return nil
		}
	}
	return ErrInvalidTransition
}

var purchaseOrderTransitions = map[string][]string{
	enum.PurchaseOrderStatusDraft:             {enum.PurchaseOrderStatusOrdered, enum.PurchaseOrderStatusCancelled},
	enum.PurchaseOrderStatusOrdered:           {enum.PurchaseOrderStatusPartiallyReceived, enum.PurchaseOrderStatusReceived, enum.PurchaseOrderStatusCancelled},
	enum.PurchaseOrderStatusPartiallyReceived: {enum.PurchaseOrderStatusPartiallyReceived, enum.PurchaseOrderStatusReceived},
}

// ValidatePurchaseOrderTransition checks a purchase order status change.
// PARTIALLY_RECEIVED may repeat as further receipts arrive.
func ValidatePurchaseOrderTransition(from, to string) error {
	if !enum.IsPurchaseOrderStatus(to) {
		return ErrInvalidStatus
	}
	for _, next := range purchaseOrderTransitions[from] {
		if next == to {
			return nil
		}
	}
	return ErrInvalidTransition
}
