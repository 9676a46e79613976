package catalog

// CreateProductRequest is the payload for creating a product.
type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	SKU         string  `json:"sku"`
	Barcode     string  `json:"barcode"`
	Price       float64 `json:"price" validate:"gte=0"`
	CostPrice   float64 `json:"cost_price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	CategoryID  *int64  `json:"category_id" validate:"omitempty,gt=0"`
	SupplierID  *int64  `json:"supplier_id" validate:"omitempty,gt=0"`
}

// UpdateProductRequest edits product fields; nil fields are untouched.
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	SKU         *string  `json:"sku"`
	Barcode     *string  `json:"barcode"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	CostPrice   *float64 `json:"cost_price" validate:"omitempty,gte=0"`
	CategoryID  *int64   `json:"category_id" validate:"omitempty,gt=0"`
	SupplierID  *int64   `json:"supplier_id" validate:"omitempty,gt=0"`
}

// UpdateStockRequest adjusts the stock level directly.
type UpdateStockRequest struct {
	Quantity  int    `json:"quantity" validate:"gte=0"`
	Operation string `json:"operation" validate:"omitempty,oneof=set add subtract"`
}

// RestockRequest adds stock at a given unit cost through the
// weighted-average cost calculation.
type RestockRequest struct {
	Quantity  int     `json:"quantity" validate:"required,gt=0"`
	CostPrice float64 `json:"cost_price" validate:"required,gt=0"`
}
