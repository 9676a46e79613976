package refunds

import "time"

// RefundStatus is the refund workflow state.
type RefundStatus string

const (
	StatusPending   RefundStatus = "pending"
	StatusApproved  RefundStatus = "approved"
	StatusProcessed RefundStatus = "processed"
	StatusCompleted RefundStatus = "completed"
	StatusCancelled RefundStatus = "cancelled"
)

// ValidStatus reports whether s is a known workflow state.
func ValidStatus(s RefundStatus) bool {
	switch s {
	case StatusPending, StatusApproved, StatusProcessed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Refund is money returned against a completed sales order.
type Refund struct {
	ID           int64        `json:"id"`
	OrderID      int64        `json:"order_id"`
	Amount       float64      `json:"amount"`
	Reason       string       `json:"reason"`
	RefundDate   time.Time    `json:"refund_date"`
	RefundMethod string       `json:"refund_method,omitempty"`
	Status       RefundStatus `json:"status"`
	EmployeeID   *int64       `json:"employee_id,omitempty"`
	Notes        string       `json:"notes,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// RefundDetail adds order and people context for listings.
type RefundDetail struct {
	Refund
	OrderTotal   float64 `json:"order_total"`
	CustomerName string  `json:"customer_name,omitempty"`
	EmployeeName string  `json:"employee_name,omitempty"`
}

// OrderSnapshot is the slice of the order a refund decision needs.
type OrderSnapshot struct {
	TotalAmount float64
	Status      string
}

// ListFilter narrows the refund listing.
type ListFilter struct {
	Status   string
	OrderID  int64
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}
