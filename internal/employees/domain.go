package employees

import "time"

// Employee is a staff member. Daily pay and hourly rate coexist so
// both salaried and hourly staff fit the same record.
type Employee struct {
	ID         int64      `json:"id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone"`
	Address    string     `json:"address"`
	Role       string     `json:"role"`
	Status     string     `json:"status"`
	DailyPay   float64    `json:"daily_pay"`
	HourlyRate float64    `json:"hourly_rate"`
	HireDate   *time.Time `json:"hire_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// TimeEntry is one worked day. Clock times are wall-clock HH:MM
// strings; clock_out stays empty while the shift is open.
type TimeEntry struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	Date       time.Time `json:"date"`
	ClockIn    string    `json:"clock_in"`
	ClockOut   string    `json:"clock_out,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Withdrawal is a cash advance against wages.
type Withdrawal struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	Amount     float64   `json:"amount"`
	Date       time.Time `json:"date"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ListFilter narrows the employee listing.
type ListFilter struct {
	Query          string
	Status         string
	IncludeDeleted bool
	Limit          int
	Offset         int
}
