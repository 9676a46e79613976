package payments

import "time"

// PaymentStatus enumerates payment states. Only completed payments
// count toward paid totals.
type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusCompleted PaymentStatus = "completed"
	StatusFailed    PaymentStatus = "failed"
	StatusRefunded  PaymentStatus = "refunded"
)

// ValidStatus reports whether s is a known payment status.
func ValidStatus(s PaymentStatus) bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

// Payment is a ledger entry against exactly one order or purchase order.
type Payment struct {
	ID              int64         `json:"id"`
	OrderID         *int64        `json:"order_id,omitempty"`
	PurchaseOrderID *int64        `json:"purchase_order_id,omitempty"`
	Amount          float64       `json:"amount"`
	Method          string        `json:"payment_method"`
	Status          PaymentStatus `json:"status"`
	Notes           string        `json:"notes"`
	PaymentDate     time.Time     `json:"payment_date"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	DeletedAt       *time.Time    `json:"deleted_at,omitempty"`
}

// PaymentWithContext is a listing row joined with the owner's
// counterparty name.
type PaymentWithContext struct {
	Payment
	CustomerName string `json:"customer_name,omitempty"`
	SupplierName string `json:"supplier_name,omitempty"`
}

// Owner identifies the order or purchase order a payment belongs to.
// Exactly one field is non-zero.
type Owner struct {
	OrderID         int64
	PurchaseOrderID int64
}

// ForOrder returns the Owner for a sales order.
func ForOrder(id int64) Owner {
	return Owner{OrderID: id}
}

// ForPurchaseOrder returns the Owner for a purchase order.
func ForPurchaseOrder(id int64) Owner {
	return Owner{PurchaseOrderID: id}
}

// Valid reports whether exactly one owner side is set.
func (o Owner) Valid() bool {
	return (o.OrderID > 0) != (o.PurchaseOrderID > 0)
}

// Result is what CreatePayment hands back to callers: the inserted row
// plus the recomputed ledger position of the owner.
type Result struct {
	Payment     Payment `json:"payment"`
	TotalPaid   float64 `json:"total_paid"`
	Remaining   float64 `json:"remaining"`
	OwnerStatus string  `json:"owner_status"`
}

// ListFilter narrows the payment listing.
type ListFilter struct {
	OrderID         int64
	PurchaseOrderID int64
	Status          string
	IncludeDeleted  bool
	Limit           int
	Offset          int
}
