package orders

// CreateOrderRequest is the payload for creating a sales order. The
// total is recorded as supplied by the client, not recomputed.
type CreateOrderRequest struct {
	CustomerID      int64                    `json:"customer_id" validate:"required,gt=0"`
	Total           float64                  `json:"total" validate:"required,gt=0"`
	Status          string                   `json:"status" validate:"omitempty,oneof=pending processing completed cancelled refunded"`
	PaymentMethod   string                   `json:"payment_method"`
	Notes           string                   `json:"notes"`
	DeliveryEnabled bool                     `json:"delivery_enabled"`
	DeliveryAmount  float64                  `json:"delivery_amount" validate:"gte=0"`
	Items           []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateOrderItemRequest is one requested line.
type CreateOrderItemRequest struct {
	ProductID    int64   `json:"product_id" validate:"required,gt=0"`
	Quantity     int     `json:"quantity" validate:"required,gt=0"`
	Price        float64 `json:"price" validate:"required,gt=0"`
	Discount     float64 `json:"discount" validate:"gte=0"`
	DiscountType string  `json:"discount_type" validate:"omitempty,oneof=usd percent"`
}

// UpdateStatusRequest changes the order status; the optional fields are
// written alongside when present.
type UpdateStatusRequest struct {
	Status        string  `json:"status" validate:"required,oneof=pending processing completed cancelled refunded"`
	PaymentMethod *string `json:"payment_method,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// UpdateOrderItemRequest rewrites one order line.
type UpdateOrderItemRequest struct {
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64 `json:"unit_price" validate:"required,gt=0"`
	Discount  float64 `json:"discount" validate:"gte=0"`
}
