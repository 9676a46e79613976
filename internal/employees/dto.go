package employees

import "time"

// CreateEmployeeRequest is the payload for hiring an employee. Role
// defaults to worker and status to active when omitted.
type CreateEmployeeRequest struct {
	FirstName  string     `json:"first_name" validate:"required"`
	LastName   string     `json:"last_name" validate:"required"`
	Email      string     `json:"email" validate:"omitempty,email"`
	Phone      string     `json:"phone"`
	Address    string     `json:"address"`
	Role       string     `json:"role"`
	Status     string     `json:"status" validate:"omitempty,oneof=active inactive"`
	DailyPay   float64    `json:"daily_pay" validate:"gte=0"`
	HourlyRate float64    `json:"hourly_rate" validate:"gte=0"`
	HireDate   *time.Time `json:"hire_date"`
}

// UpdateEmployeeRequest edits employee fields; nil fields are untouched.
type UpdateEmployeeRequest struct {
	FirstName  *string    `json:"first_name"`
	LastName   *string    `json:"last_name"`
	Email      *string    `json:"email" validate:"omitempty,email"`
	Phone      *string    `json:"phone"`
	Address    *string    `json:"address"`
	Role       *string    `json:"role"`
	Status     *string    `json:"status" validate:"omitempty,oneof=active inactive"`
	DailyPay   *float64   `json:"daily_pay" validate:"omitempty,gte=0"`
	HourlyRate *float64   `json:"hourly_rate" validate:"omitempty,gte=0"`
	HireDate   *time.Time `json:"hire_date"`
}

// TimeEntryRequest creates or rewrites a worked day.
type TimeEntryRequest struct {
	Date     time.Time `json:"date" validate:"required"`
	ClockIn  string    `json:"clock_in" validate:"required"`
	ClockOut string    `json:"clock_out"`
}

// WithdrawalRequest creates or rewrites a cash advance.
type WithdrawalRequest struct {
	Amount float64    `json:"amount" validate:"required,gt=0"`
	Date   *time.Time `json:"date"`
	Notes  string     `json:"notes"`
}
