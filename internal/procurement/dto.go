package procurement

// CreatePORequest is the payload for creating a purchase order. The
// total is recorded as supplied, not recomputed from the items.
type CreatePORequest struct {
	SupplierID    int64                 `json:"supplier_id" validate:"required,gt=0"`
	Total         float64               `json:"total" validate:"gte=0"`
	PaymentMethod string                `json:"payment_method"`
	Notes         string                `json:"notes"`
	Items         []CreatePOItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreatePOItemRequest is one requested line.
type CreatePOItemRequest struct {
	ProductID int64   `json:"product_id" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	UnitCost  float64 `json:"unit_price" validate:"required,gt=0"`
}

// UpdatePOItemRequest rewrites an existing purchase order line. The
// line total is recomputed from quantity and unit cost.
type UpdatePOItemRequest struct {
	Quantity int     `json:"quantity" validate:"required,gt=0"`
	UnitCost float64 `json:"unit_price" validate:"required,gt=0"`
}

// UpdatePOStatusRequest transitions the purchase order status.
// 'completed' cannot be set directly, only by the payment ledger.
type UpdatePOStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending ordered received cancelled"`
}

// UpdatePOPaymentRequest records an incremental payment against the
// purchase order through the payment ledger.
type UpdatePOPaymentRequest struct {
	PaymentAmount float64 `json:"payment_amount" validate:"required,gt=0"`
	PaymentMethod string  `json:"payment_method"`
	Notes         string  `json:"notes"`
}
