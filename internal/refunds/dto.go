package refunds

import "time"

// CreateRefundRequest opens a refund against a completed order. Status
// defaults to pending.
type CreateRefundRequest struct {
	OrderID      int64      `json:"order_id" validate:"required,gt=0"`
	Amount       float64    `json:"amount" validate:"required,gt=0"`
	Reason       string     `json:"reason" validate:"required"`
	RefundDate   *time.Time `json:"refund_date"`
	RefundMethod string     `json:"refund_method"`
	Status       string     `json:"status" validate:"omitempty,oneof=pending approved processed completed cancelled"`
	EmployeeID   *int64     `json:"employee_id" validate:"omitempty,gt=0"`
	Notes        string     `json:"notes"`
}

// UpdateRefundRequest edits refund fields; nil fields are untouched.
type UpdateRefundRequest struct {
	Amount       *float64      `json:"amount" validate:"omitempty,gt=0"`
	Reason       *string       `json:"reason"`
	RefundDate   *time.Time    `json:"refund_date"`
	RefundMethod *string       `json:"refund_method"`
	Status       *RefundStatus `json:"status"`
	EmployeeID   *int64        `json:"employee_id" validate:"omitempty,gt=0"`
	Notes        *string       `json:"notes"`
}

// UpdateRefundStatusRequest transitions the refund workflow state.
type UpdateRefundStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
