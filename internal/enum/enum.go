package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusNew       = "NEW"
	OrderStatusPreparing = "PREPARING"
	OrderStatusReady     = "READY"
	OrderStatusCompleted = "COMPLETED"
	OrderStatusCancelled = "CANCELLED"
)

const (
	PurchaseOrderStatusDraft             = "DRAFT"
	PurchaseOrderStatusOrdered           = "ORDERED"
	PurchaseOrderStatusPartiallyReceived = "PARTIALLY_RECEIVED"
	PurchaseOrderStatusReceived          = "RECEIVED"
	PurchaseOrderStatusCancelled         = "CANCELLED"
)

// ── Group C: Borderline (CHECK constrained in DB) ──

const (
	UserRoleOwner   = "OWNER"
	UserRoleManager = "MANAGER"
	UserRoleCashier = "CASHIER"
	UserRoleKitchen = "KITCHEN"
)

const (
	OrderTypeDineIn   = "DINE_IN"
	OrderTypeTakeaway = "TAKEAWAY"
	OrderTypeDelivery = "DELIVERY"
)

const (
	AdjustmentReasonWastage         = "WASTAGE"
	AdjustmentReasonDamage          = "DAMAGE"
	AdjustmentReasonCountCorrection = "COUNT_CORRECTION"
	AdjustmentReasonReturn          = "RETURN"
	AdjustmentReasonOther           = "OTHER"
)

const (
	DiscountTypePercentage = "PERCENTAGE"
	DiscountTypeFixed      = "FIXED_AMOUNT"
)

// ── Group B: Configurable labels (no DB constraint) ──

const (
	StationGrill    = "GRILL"
	StationBeverage = "BEVERAGE"
	StationRice     = "RICE"
	StationDessert  = "DESSERT"
)

func IsUserRole(s string) bool {
	switch s {
	case UserRoleOwner, UserRoleManager, UserRoleCashier, UserRoleKitchen:
		return true
	}
	return false
}

func IsOrderType(s string) bool {
	switch s {
	case OrderTypeDineIn, OrderTypeTakeaway, OrderTypeDelivery:
		return true
	}
	return false
}

func IsOrderStatus(s string) bool {
	switch s {
	case OrderStatusNew, OrderStatusPreparing, OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

func IsPurchaseOrderStatus(s string) bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusOrdered, PurchaseOrderStatusPartiallyReceived,
		PurchaseOrderStatusReceived, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

func IsAdjustmentReason(s string) bool {
	switch s {
	case AdjustmentReasonWastage, AdjustmentReasonDamage, AdjustmentReasonCountCorrection,
		AdjustmentReasonReturn, AdjustmentReasonOther:
		return true
	}
	return false
}

func IsDiscountType(s string) bool {
	return s == DiscountTypePercentage || s == DiscountTypeFixed
}

func IsStation(s string) bool {
	switch s {
	case StationGrill, StationBeverage, StationRice, StationDessert:
		return true
	}
	return false
}
