package suppliers

import "time"

// Supplier is a vendor on purchase orders. The column is `name`; the
// API field stays company_name for the existing clients.
type Supplier struct {
	ID            int64      `json:"id"`
	Name          string     `json:"company_name"`
	ContactPerson string     `json:"contact_person"`
	Phone         string     `json:"phone"`
	Address       string     `json:"address"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// CreateSupplierRequest is the payload for creating a supplier.
type CreateSupplierRequest struct {
	CompanyName   string `json:"company_name" validate:"required"`
	ContactPerson string `json:"contact_person" validate:"required"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
}

// UpdateSupplierRequest edits supplier fields; nil fields are untouched.
type UpdateSupplierRequest struct {
	CompanyName   *string `json:"company_name"`
	ContactPerson *string `json:"contact_person"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
}

// ListFilter narrows the supplier listing.
type ListFilter struct {
	Query          string
	IncludeDeleted bool
	Limit          int
	Offset         int
}
