package procurement

import "time"

// POStatus enumerates the purchase order lifecycle. 'completed' is only
// ever set by the payment ledger when the balance reaches zero.
type POStatus string

const (
	StatusPending   POStatus = "pending"
	StatusOrdered   POStatus = "ordered"
	StatusReceived  POStatus = "received"
	StatusCancelled POStatus = "cancelled"
	StatusCompleted POStatus = "completed"
)

// SettableStatus reports whether s may be written through the status
// endpoint.
func SettableStatus(s POStatus) bool {
	switch s {
	case StatusPending, StatusOrdered, StatusReceived, StatusCancelled:
		return true
	}
	return false
}

// PurchaseOrder is a supplier order. TotalAmount is authoritative;
// PaymentAmount and Balance are cached aggregates kept in sync by the
// payment ledger.
type PurchaseOrder struct {
	ID            int64      `json:"id"`
	PONumber      string     `json:"po_number"`
	SupplierID    int64      `json:"supplier_id"`
	Status        POStatus   `json:"status"`
	TotalAmount   float64    `json:"total_amount"`
	PaymentAmount float64    `json:"payment_amount"`
	Balance       float64    `json:"balance"`
	PaymentMethod string     `json:"payment_method"`
	Notes         string     `json:"notes"`
	OrderDate     time.Time  `json:"order_date"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`

	Items []PurchaseOrderItem `json:"items,omitempty"`
}

// PurchaseOrderItem is a line on a purchase order.
type PurchaseOrderItem struct {
	ID              int64   `json:"id"`
	PurchaseOrderID int64   `json:"purchase_order_id"`
	ProductID       int64   `json:"product_id"`
	Quantity        int     `json:"quantity"`
	UnitCost        float64 `json:"unit_cost"`
	TotalCost       float64 `json:"total_cost"`

	ProductName string `json:"product_name,omitempty"`
}

// POWithSupplier is a listing row joined with supplier context and live
// payment aggregates.
type POWithSupplier struct {
	PurchaseOrder
	SupplierName     string  `json:"supplier_name"`
	PaidTotal        float64 `json:"paid_total"`
	RemainingBalance float64 `json:"remaining_balance"`
}

// SoldProduct records how many units of a PO's product have been sold.
type SoldProduct struct {
	ProductID int64
	Name      string
	TotalSold int
}

// ItemDisposition is what deletion needs to know about one line item:
// current stock plus whether anything else references the product.
type ItemDisposition struct {
	ProductID    int64
	Quantity     int
	Stock        int
	OtherPOCount int
	SoldCount    int
}

// ListFilter narrows the purchase order listing.
type ListFilter struct {
	Status     string
	SupplierID int64
	Query      string
	Limit      int
	Offset     int
}
