package customers

import "time"

// Customer is a buyer on sales orders.
type Customer struct {
	ID          int64      `json:"id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	PhoneNumber string     `json:"phone_number"`
	Address     string     `json:"address"`
	JoinDate    *time.Time `json:"join_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// CreateCustomerRequest is the payload for creating a customer.
type CreateCustomerRequest struct {
	FirstName   string     `json:"first_name" validate:"required"`
	LastName    string     `json:"last_name" validate:"required"`
	PhoneNumber string     `json:"phone_number"`
	Address     string     `json:"address"`
	JoinDate    *time.Time `json:"join_date"`
}

// UpdateCustomerRequest edits customer fields; nil fields are untouched.
type UpdateCustomerRequest struct {
	FirstName   *string    `json:"first_name"`
	LastName    *string    `json:"last_name"`
	PhoneNumber *string    `json:"phone_number"`
	Address     *string    `json:"address"`
	JoinDate    *time.Time `json:"join_date"`
}

// ListFilter narrows the customer listing.
type ListFilter struct {
	Query          string
	IncludeDeleted bool
	Limit          int
	Offset         int
}
