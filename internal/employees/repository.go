package employees

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	List(ctx context.Context, filter ListFilter) ([]Employee, int, error)
	Get(ctx context.Context, id int64) (Employee, error)
	Insert(ctx context.Context, e Employee) (Employee, error)
	Update(ctx context.Context, id int64, req UpdateEmployeeRequest) (Employee, error)
	EmailInUse(ctx context.Context, email string, excludeID int64) (bool, error)
	PhoneInUse(ctx context.Context, phone string, excludeID int64) (bool, error)
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) (Employee, error)
	ClearBin(ctx context.Context) (int64, error)

	ListTimeEntries(ctx context.Context, employeeID int64) ([]TimeEntry, error)
	TimeEntryExistsForDate(ctx context.Context, employeeID int64, date time.Time) (bool, error)
	InsertTimeEntry(ctx context.Context, entry TimeEntry) (TimeEntry, error)
	UpdateTimeEntry(ctx context.Context, employeeID, entryID int64, entry TimeEntry) (TimeEntry, error)
	DeleteTimeEntry(ctx context.Context, employeeID, entryID int64) error

	ListWithdrawals(ctx context.Context, employeeID int64) ([]Withdrawal, error)
	InsertWithdrawal(ctx context.Context, w Withdrawal) (Withdrawal, error)
	UpdateWithdrawal(ctx context.Context, employeeID, withdrawalID int64, w Withdrawal) (Withdrawal, error)
	DeleteWithdrawal(ctx context.Context, employeeID, withdrawalID int64) error
}

// Repository persists employees in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const employeeColumns = `id, first_name, last_name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(address, ''),
	role, status, COALESCE(daily_pay, 0), COALESCE(hourly_rate, 0), hire_date, created_at, updated_at, deleted_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Phone, &e.Address,
		&e.Role, &e.Status, &e.DailyPay, &e.HourlyRate, &e.HireDate, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, fmt.Errorf("%w: employee", httpx.ErrNotFound)
		}
		return Employee{}, err
	}
	return e, nil
}

// List returns a filtered page of employees.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Employee, int, error) {
	where := ` WHERE 1=1`
	var args []any
	if !filter.IncludeDeleted {
		where += ` AND deleted_at IS NULL`
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(` AND status = $%d`, len(args))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		where += fmt.Sprintf(` AND (first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)`, n, n, n, n)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM employees`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+employeeColumns+` FROM employees`+where+
			fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []Employee{}
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.Email, &e.Phone, &e.Address,
			&e.Role, &e.Status, &e.DailyPay, &e.HourlyRate, &e.HireDate, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, e)
	}
	return result, total, rows.Err()
}

// Get loads a single employee.
func (r *Repository) Get(ctx context.Context, id int64) (Employee, error) {
	return scanEmployee(r.pool.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = $1 AND deleted_at IS NULL`, id))
}

// Insert stores a new employee.
func (r *Repository) Insert(ctx context.Context, e Employee) (Employee, error) {
	return scanEmployee(r.pool.QueryRow(ctx,
		`INSERT INTO employees (first_name, last_name, email, phone, address, role, status, daily_pay, hourly_rate, hire_date)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, COALESCE($10, NOW()))
		 RETURNING `+employeeColumns,
		e.FirstName, e.LastName, e.Email, e.Phone, e.Address, e.Role, e.Status, e.DailyPay, e.HourlyRate, e.HireDate))
}

// Update writes the non-nil fields.
func (r *Repository) Update(ctx context.Context, id int64, req UpdateEmployeeRequest) (Employee, error) {
	set := `updated_at = NOW()`
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		set += fmt.Sprintf(`, %s = $%d`, col, len(args))
	}
	if req.FirstName != nil {
		add("first_name", *req.FirstName)
	}
	if req.LastName != nil {
		add("last_name", *req.LastName)
	}
	if req.Email != nil {
		add("email", *req.Email)
	}
	if req.Phone != nil {
		add("phone", *req.Phone)
	}
	if req.Address != nil {
		add("address", *req.Address)
	}
	if req.Role != nil {
		add("role", *req.Role)
	}
	if req.Status != nil {
		add("status", *req.Status)
	}
	if req.DailyPay != nil {
		add("daily_pay", *req.DailyPay)
	}
	if req.HourlyRate != nil {
		add("hourly_rate", *req.HourlyRate)
	}
	if req.HireDate != nil {
		add("hire_date", *req.HireDate)
	}
	args = append(args, id)
	return scanEmployee(r.pool.QueryRow(ctx,
		fmt.Sprintf(`UPDATE employees SET %s WHERE id = $%d AND deleted_at IS NULL RETURNING %s`,
			set, len(args), employeeColumns), args...))
}

// EmailInUse reports whether another live employee holds the email.
func (r *Repository) EmailInUse(ctx context.Context, email string, excludeID int64) (bool, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM employees WHERE email = $1 AND id != $2 AND deleted_at IS NULL`, email, excludeID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PhoneInUse reports whether another live employee holds the phone number.
func (r *Repository) PhoneInUse(ctx context.Context, phone string, excludeID int64) (bool, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM employees WHERE phone = $1 AND id != $2 AND deleted_at IS NULL`, phone, excludeID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// SoftDelete marks an employee deleted. Time entries and withdrawals
// stay in place so a restore brings the full record back.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE employees SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: employee", httpx.ErrNotFound)
	}
	return nil
}

// Restore clears the soft-delete marker.
func (r *Repository) Restore(ctx context.Context, id int64) (Employee, error) {
	return scanEmployee(r.pool.QueryRow(ctx,
		`UPDATE employees SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL RETURNING `+employeeColumns, id))
}

// ClearBin permanently removes soft-deleted employees with their time
// entries and withdrawals.
func (r *Repository) ClearBin(ctx context.Context) (int64, error) {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM employee_time_entries WHERE employee_id IN (SELECT id FROM employees WHERE deleted_at IS NOT NULL)`); err != nil {
		return 0, err
	}
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM employee_withdrawals WHERE employee_id IN (SELECT id FROM employees WHERE deleted_at IS NOT NULL)`); err != nil {
		return 0, err
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM employees WHERE deleted_at IS NOT NULL`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const timeEntryColumns = `id, employee_id, date, clock_in, COALESCE(clock_out, ''), created_at, updated_at`

func scanTimeEntry(row pgx.Row) (TimeEntry, error) {
	var t TimeEntry
	err := row.Scan(&t.ID, &t.EmployeeID, &t.Date, &t.ClockIn, &t.ClockOut, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TimeEntry{}, fmt.Errorf("%w: time entry", httpx.ErrNotFound)
		}
		return TimeEntry{}, err
	}
	return t, nil
}

// ListTimeEntries returns the employee's worked days, newest first.
func (r *Repository) ListTimeEntries(ctx context.Context, employeeID int64) ([]TimeEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+timeEntryColumns+` FROM employee_time_entries
		 WHERE employee_id = $1 ORDER BY date DESC, created_at DESC`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []TimeEntry{}
	for rows.Next() {
		var t TimeEntry
		if err := rows.Scan(&t.ID, &t.EmployeeID, &t.Date, &t.ClockIn, &t.ClockOut, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// TimeEntryExistsForDate reports whether the employee already has an
// entry on the date.
func (r *Repository) TimeEntryExistsForDate(ctx context.Context, employeeID int64, date time.Time) (bool, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM employee_time_entries WHERE employee_id = $1 AND date = $2`, employeeID, date).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// InsertTimeEntry stores a worked day.
func (r *Repository) InsertTimeEntry(ctx context.Context, entry TimeEntry) (TimeEntry, error) {
	return scanTimeEntry(r.pool.QueryRow(ctx,
		`INSERT INTO employee_time_entries (employee_id, date, clock_in, clock_out)
		 VALUES ($1, $2, $3, NULLIF($4, ''))
		 RETURNING `+timeEntryColumns,
		entry.EmployeeID, entry.Date, entry.ClockIn, entry.ClockOut))
}

// UpdateTimeEntry rewrites a worked day, scoped to the employee.
func (r *Repository) UpdateTimeEntry(ctx context.Context, employeeID, entryID int64, entry TimeEntry) (TimeEntry, error) {
	return scanTimeEntry(r.pool.QueryRow(ctx,
		`UPDATE employee_time_entries
		 SET date = $1, clock_in = $2, clock_out = NULLIF($3, ''), updated_at = NOW()
		 WHERE id = $4 AND employee_id = $5
		 RETURNING `+timeEntryColumns,
		entry.Date, entry.ClockIn, entry.ClockOut, entryID, employeeID))
}

// DeleteTimeEntry removes a worked day, scoped to the employee.
func (r *Repository) DeleteTimeEntry(ctx context.Context, employeeID, entryID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM employee_time_entries WHERE id = $1 AND employee_id = $2`, entryID, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: time entry", httpx.ErrNotFound)
	}
	return nil
}

const withdrawalColumns = `id, employee_id, amount, date, COALESCE(notes, ''), created_at, updated_at`

func scanWithdrawal(row pgx.Row) (Withdrawal, error) {
	var w Withdrawal
	err := row.Scan(&w.ID, &w.EmployeeID, &w.Amount, &w.Date, &w.Notes, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Withdrawal{}, fmt.Errorf("%w: withdrawal", httpx.ErrNotFound)
		}
		return Withdrawal{}, err
	}
	return w, nil
}

// ListWithdrawals returns the employee's cash advances, newest first.
func (r *Repository) ListWithdrawals(ctx context.Context, employeeID int64) ([]Withdrawal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+withdrawalColumns+` FROM employee_withdrawals
		 WHERE employee_id = $1 ORDER BY date DESC, created_at DESC`, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Withdrawal{}
	for rows.Next() {
		var w Withdrawal
		if err := rows.Scan(&w.ID, &w.EmployeeID, &w.Amount, &w.Date, &w.Notes, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// InsertWithdrawal stores a cash advance.
func (r *Repository) InsertWithdrawal(ctx context.Context, w Withdrawal) (Withdrawal, error) {
	return scanWithdrawal(r.pool.QueryRow(ctx,
		`INSERT INTO employee_withdrawals (employee_id, amount, date, notes)
		 VALUES ($1, $2, COALESCE($3, NOW()), NULLIF($4, ''))
		 RETURNING `+withdrawalColumns,
		w.EmployeeID, w.Amount, nullableTime(w.Date), w.Notes))
}

// UpdateWithdrawal rewrites a cash advance, scoped to the employee.
func (r *Repository) UpdateWithdrawal(ctx context.Context, employeeID, withdrawalID int64, w Withdrawal) (Withdrawal, error) {
	return scanWithdrawal(r.pool.QueryRow(ctx,
		`UPDATE employee_withdrawals
		 SET amount = $1, date = COALESCE($2, date), notes = NULLIF($3, ''), updated_at = NOW()
		 WHERE id = $4 AND employee_id = $5
		 RETURNING `+withdrawalColumns,
		w.Amount, nullableTime(w.Date), w.Notes, withdrawalID, employeeID))
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// DeleteWithdrawal removes a cash advance, scoped to the employee.
func (r *Repository) DeleteWithdrawal(ctx context.Context, employeeID, withdrawalID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM employee_withdrawals WHERE id = $1 AND employee_id = $2`, withdrawalID, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: withdrawal", httpx.ErrNotFound)
	}
	return nil
}
