package catalog

import "time"

// Product is a sellable item. Price and CostPrice are maintained by the
// weighted-average restock path; QuantityInStock never goes negative.
type Product struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	SKU             string     `json:"sku"`
	Barcode         string     `json:"barcode"`
	Price           float64    `json:"price"`
	CostPrice       float64    `json:"cost_price"`
	QuantityInStock int        `json:"quantity_in_stock"`
	CategoryID      *int64     `json:"category_id"`
	SupplierID      *int64     `json:"supplier_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

// ProductWithRefs is a listing row joined with category and supplier
// names.
type ProductWithRefs struct {
	Product
	CategoryName string `json:"category_name"`
	SupplierName string `json:"supplier_name"`
}

// ClearBinReport summarizes a recycle bin purge. Products still
// referenced by order or purchase order items stay in the bin.
type ClearBinReport struct {
	TotalSoftDeleted int `json:"total_soft_deleted"`
	Deleted          int `json:"deleted"`
	Blocked          int `json:"blocked"`
}

// ListFilter narrows the product listing.
type ListFilter struct {
	Query          string
	CategoryID     int64
	SupplierID     int64
	IncludeDeleted bool
	DeletedOnly    bool
	Sort           string
	Order          string
	Limit          int
	Offset         int
}
