package payments

// CreatePaymentRequest records a payment against exactly one of an
// order or a purchase order.
type CreatePaymentRequest struct {
	OrderID         *int64  `json:"order_id" validate:"omitempty,gt=0"`
	PurchaseOrderID *int64  `json:"purchase_order_id" validate:"omitempty,gt=0"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	Method          string  `json:"payment_method"`
	Status          string  `json:"status" validate:"omitempty,oneof=pending completed failed refunded"`
	Notes           string  `json:"notes"`
}

// UpdatePaymentRequest edits non-structural payment fields. Changing
// the owner is not supported.
type UpdatePaymentRequest struct {
	Amount *float64 `json:"amount" validate:"omitempty,gt=0"`
	Method *string  `json:"payment_method"`
	Status *string  `json:"status" validate:"omitempty,oneof=pending completed failed refunded"`
	Notes  *string  `json:"notes"`
}
