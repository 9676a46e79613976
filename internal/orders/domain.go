package orders

import "time"

// OrderStatus enumerates the sales order lifecycle.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
)

// ValidStatus reports whether s is a known order status.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// Order is a sales order. TotalAmount is fixed at creation from the
// client-supplied total and is authoritative for payment caps.
type Order struct {
	ID               int64       `json:"id"`
	CustomerID       int64       `json:"customer_id"`
	TotalAmount      float64     `json:"total_amount"`
	Status           OrderStatus `json:"status"`
	PaymentMethod    string      `json:"payment_method"`
	Notes            string      `json:"notes"`
	DeliveryRequired bool        `json:"delivery_required"`
	DeliveryFee      float64     `json:"delivery_fee"`
	OrderDate        time.Time   `json:"order_date"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
	DeletedAt        *time.Time  `json:"deleted_at,omitempty"`

	Items []OrderItem `json:"items,omitempty"`
}

// OrderItem is a line on a sales order, fixed at creation time.
type OrderItem struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Discount  float64 `json:"discount"`

	ProductName string `json:"product_name,omitempty"`
}

// OrderWithCustomer is a listing row joined with customer context and
// live payment aggregates.
type OrderWithCustomer struct {
	Order
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	PhoneNumber     string  `json:"phone_number"`
	CalculatedTotal float64 `json:"calculated_total"`
	TotalPaid       float64 `json:"total_paid"`
}

// OrderDetail is the single-order view: the order, its items, its
// payments and the derived paid/remaining amounts.
type OrderDetail struct {
	Order
	TotalPaid float64          `json:"total_paid"`
	Remaining float64          `json:"remaining"`
	Payments  []PaymentSummary `json:"payments"`
}

// PaymentSummary is the slice of payment fields shown on an order view.
type PaymentSummary struct {
	ID          int64     `json:"id"`
	Amount      float64   `json:"amount"`
	Method      string    `json:"payment_method"`
	Status      string    `json:"status"`
	PaymentDate time.Time `json:"payment_date"`
}

// ListFilter narrows the order listing.
type ListFilter struct {
	Status         string
	CustomerID     int64
	DateFrom       string
	DateTo         string
	Query          string
	IncludeDeleted bool
	Limit          int
	Offset         int
}
