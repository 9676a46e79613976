package employees

import (
	"context"
	"fmt"
	"regexp"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

// clockPattern accepts 24-hour wall-clock times like 9:30 or 17:05.
var clockPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// Service implements employee management: contact uniqueness, the
// one-entry-per-day time sheet and wage withdrawals.
type Service struct {
	repo RepositoryPort
}

// NewService constructs Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns a page of employees.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Employee, int, error) {
	return s.repo.List(ctx, filter)
}

// Get returns a single employee.
func (s *Service) Get(ctx context.Context, id int64) (Employee, error) {
	return s.repo.Get(ctx, id)
}

// Create hires an employee. Email and phone must not collide with any
// live employee.
func (s *Service) Create(ctx context.Context, req CreateEmployeeRequest) (Employee, error) {
	if req.Email != "" {
		inUse, err := s.repo.EmailInUse(ctx, req.Email, 0)
		if err != nil {
			return Employee{}, err
		}
		if inUse {
			return Employee{}, fmt.Errorf("%w: email %s already exists", httpx.ErrDuplicate, req.Email)
		}
	}
	if req.Phone != "" {
		inUse, err := s.repo.PhoneInUse(ctx, req.Phone, 0)
		if err != nil {
			return Employee{}, err
		}
		if inUse {
			return Employee{}, fmt.Errorf("%w: phone number %s already exists", httpx.ErrDuplicate, req.Phone)
		}
	}

	role := req.Role
	if role == "" {
		role = "worker"
	}
	status := req.Status
	if status == "" {
		status = "active"
	}
	return s.repo.Insert(ctx, Employee{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		Role:       role,
		Status:     status,
		DailyPay:   req.DailyPay,
		HourlyRate: req.HourlyRate,
		HireDate:   req.HireDate,
	})
}

// Update edits an employee. Uniqueness checks exclude the employee's
// own row so resubmitting unchanged contact details still succeeds.
func (s *Service) Update(ctx context.Context, id int64, req UpdateEmployeeRequest) (Employee, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return Employee{}, err
	}
	if req.Email != nil && *req.Email != "" {
		inUse, err := s.repo.EmailInUse(ctx, *req.Email, id)
		if err != nil {
			return Employee{}, err
		}
		if inUse {
			return Employee{}, fmt.Errorf("%w: email %s already exists", httpx.ErrDuplicate, *req.Email)
		}
	}
	if req.Phone != nil && *req.Phone != "" {
		inUse, err := s.repo.PhoneInUse(ctx, *req.Phone, id)
		if err != nil {
			return Employee{}, err
		}
		if inUse {
			return Employee{}, fmt.Errorf("%w: phone number %s already exists", httpx.ErrDuplicate, *req.Phone)
		}
	}
	return s.repo.Update(ctx, id, req)
}

// Remove soft-deletes an employee.
func (s *Service) Remove(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

// Restore brings a soft-deleted employee back.
func (s *Service) Restore(ctx context.Context, id int64) (Employee, error) {
	return s.repo.Restore(ctx, id)
}

// ClearBin permanently removes soft-deleted employees.
func (s *Service) ClearBin(ctx context.Context) (int64, error) {
	return s.repo.ClearBin(ctx)
}

func validateClock(clockIn, clockOut string) error {
	if !clockPattern.MatchString(clockIn) {
		return fmt.Errorf("%w: invalid clock in time %q, use HH:MM", httpx.ErrValidation, clockIn)
	}
	if clockOut != "" && !clockPattern.MatchString(clockOut) {
		return fmt.Errorf("%w: invalid clock out time %q, use HH:MM", httpx.ErrValidation, clockOut)
	}
	return nil
}

// ListTimeEntries returns the employee's time sheet.
func (s *Service) ListTimeEntries(ctx context.Context, employeeID int64) ([]TimeEntry, error) {
	if _, err := s.repo.Get(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.repo.ListTimeEntries(ctx, employeeID)
}

// AddTimeEntry records a worked day. One entry per employee per date.
func (s *Service) AddTimeEntry(ctx context.Context, employeeID int64, req TimeEntryRequest) (TimeEntry, error) {
	if _, err := s.repo.Get(ctx, employeeID); err != nil {
		return TimeEntry{}, err
	}
	if err := validateClock(req.ClockIn, req.ClockOut); err != nil {
		return TimeEntry{}, err
	}
	exists, err := s.repo.TimeEntryExistsForDate(ctx, employeeID, req.Date)
	if err != nil {
		return TimeEntry{}, err
	}
	if exists {
		return TimeEntry{}, fmt.Errorf("%w: time entry already exists for this date", httpx.ErrDuplicate)
	}
	return s.repo.InsertTimeEntry(ctx, TimeEntry{
		EmployeeID: employeeID,
		Date:       req.Date,
		ClockIn:    req.ClockIn,
		ClockOut:   req.ClockOut,
	})
}

// UpdateTimeEntry rewrites a worked day.
func (s *Service) UpdateTimeEntry(ctx context.Context, employeeID, entryID int64, req TimeEntryRequest) (TimeEntry, error) {
	if err := validateClock(req.ClockIn, req.ClockOut); err != nil {
		return TimeEntry{}, err
	}
	return s.repo.UpdateTimeEntry(ctx, employeeID, entryID, TimeEntry{
		Date:     req.Date,
		ClockIn:  req.ClockIn,
		ClockOut: req.ClockOut,
	})
}

// RemoveTimeEntry deletes a worked day.
func (s *Service) RemoveTimeEntry(ctx context.Context, employeeID, entryID int64) error {
	return s.repo.DeleteTimeEntry(ctx, employeeID, entryID)
}

// ListWithdrawals returns the employee's cash advances.
func (s *Service) ListWithdrawals(ctx context.Context, employeeID int64) ([]Withdrawal, error) {
	if _, err := s.repo.Get(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.repo.ListWithdrawals(ctx, employeeID)
}

// AddWithdrawal records a cash advance against wages.
func (s *Service) AddWithdrawal(ctx context.Context, employeeID int64, req WithdrawalRequest) (Withdrawal, error) {
	if _, err := s.repo.Get(ctx, employeeID); err != nil {
		return Withdrawal{}, err
	}
	w := Withdrawal{EmployeeID: employeeID, Amount: req.Amount, Notes: req.Notes}
	if req.Date != nil {
		w.Date = *req.Date
	}
	return s.repo.InsertWithdrawal(ctx, w)
}

// UpdateWithdrawal rewrites a cash advance.
func (s *Service) UpdateWithdrawal(ctx context.Context, employeeID, withdrawalID int64, req WithdrawalRequest) (Withdrawal, error) {
	w := Withdrawal{Amount: req.Amount, Notes: req.Notes}
	if req.Date != nil {
		w.Date = *req.Date
	}
	return s.repo.UpdateWithdrawal(ctx, employeeID, withdrawalID, w)
}

// RemoveWithdrawal deletes a cash advance.
func (s *Service) RemoveWithdrawal(ctx context.Context, employeeID, withdrawalID int64) error {
	return s.repo.DeleteWithdrawal(ctx, employeeID, withdrawalID)
}
