package refunds

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
	List(ctx context.Context, filter ListFilter) ([]RefundDetail, int, error)
	Get(ctx context.Context, id int64) (RefundDetail, error)
	Insert(ctx context.Context, r Refund) (Refund, error)
	Update(ctx context.Context, id int64, req UpdateRefundRequest) (Refund, error)
	UpdateStatus(ctx context.Context, id int64, status RefundStatus) (Refund, error)
	Delete(ctx context.Context, id int64) error
	OrderSnapshot(ctx context.Context, orderID int64) (OrderSnapshot, error)
	EmployeeExists(ctx context.Context, employeeID int64) (bool, error)
}

// Repository persists refunds in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const refundColumns = `id, order_id, amount, COALESCE(reason, ''), refund_date, COALESCE(refund_method, ''),
	status, employee_id, COALESCE(notes, ''), created_at, updated_at`

func scanRefund(row pgx.Row) (Refund, error) {
	var r Refund
	err := row.Scan(&r.ID, &r.OrderID, &r.Amount, &r.Reason, &r.RefundDate, &r.RefundMethod,
		&r.Status, &r.EmployeeID, &r.Notes, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Refund{}, fmt.Errorf("%w: refund", httpx.ErrNotFound)
		}
		return Refund{}, err
	}
	return r, nil
}

const refundDetailQuery = `SELECT r.id, r.order_id, r.amount, COALESCE(r.reason, ''), r.refund_date,
	COALESCE(r.refund_method, ''), r.status, r.employee_id, COALESCE(r.notes, ''), r.created_at, r.updated_at,
	COALESCE(o.total_amount, 0),
	COALESCE(c.first_name || ' ' || c.last_name, ''),
	COALESCE(e.first_name || ' ' || e.last_name, '')
	FROM refunds r
	LEFT JOIN orders o ON r.order_id = o.id
	LEFT JOIN customers c ON o.customer_id = c.id
	LEFT JOIN employees e ON r.employee_id = e.id`

func scanRefundDetail(row pgx.Row) (RefundDetail, error) {
	var d RefundDetail
	err := row.Scan(&d.ID, &d.OrderID, &d.Amount, &d.Reason, &d.RefundDate, &d.RefundMethod,
		&d.Status, &d.EmployeeID, &d.Notes, &d.CreatedAt, &d.UpdatedAt,
		&d.OrderTotal, &d.CustomerName, &d.EmployeeName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RefundDetail{}, fmt.Errorf("%w: refund", httpx.ErrNotFound)
		}
		return RefundDetail{}, err
	}
	return d, nil
}

// List returns a filtered page of refunds with order and people context.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]RefundDetail, int, error) {
	where := ` WHERE 1=1`
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(` AND r.status = $%d`, len(args))
	}
	if filter.OrderID != 0 {
		args = append(args, filter.OrderID)
		where += fmt.Sprintf(` AND r.order_id = $%d`, len(args))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		where += fmt.Sprintf(` AND DATE(r.refund_date) >= DATE($%d)`, len(args))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		where += fmt.Sprintf(` AND DATE(r.refund_date) <= DATE($%d)`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM refunds r`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	rows, err := r.pool.Query(ctx, refundDetailQuery+where+
		fmt.Sprintf(` ORDER BY r.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []RefundDetail{}
	for rows.Next() {
		var d RefundDetail
		if err := rows.Scan(&d.ID, &d.OrderID, &d.Amount, &d.Reason, &d.RefundDate, &d.RefundMethod,
			&d.Status, &d.EmployeeID, &d.Notes, &d.CreatedAt, &d.UpdatedAt,
			&d.OrderTotal, &d.CustomerName, &d.EmployeeName); err != nil {
			return nil, 0, err
		}
		result = append(result, d)
	}
	return result, total, rows.Err()
}

// Get loads a single refund with its context.
func (r *Repository) Get(ctx context.Context, id int64) (RefundDetail, error) {
	return scanRefundDetail(r.pool.QueryRow(ctx, refundDetailQuery+` WHERE r.id = $1`, id))
}

// Insert stores a new refund.
func (r *Repository) Insert(ctx context.Context, ref Refund) (Refund, error) {
	return scanRefund(r.pool.QueryRow(ctx,
		`INSERT INTO refunds (order_id, amount, reason, refund_date, refund_method, status, employee_id, notes)
		 VALUES ($1, $2, $3, COALESCE($4, NOW()), NULLIF($5, ''), $6, $7, NULLIF($8, ''))
		 RETURNING `+refundColumns,
		ref.OrderID, ref.Amount, ref.Reason, nullableTime(ref.RefundDate), ref.RefundMethod,
		ref.Status, ref.EmployeeID, ref.Notes))
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Update writes the non-nil fields.
func (r *Repository) Update(ctx context.Context, id int64, req UpdateRefundRequest) (Refund, error) {
	set := `updated_at = NOW()`
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		set += fmt.Sprintf(`, %s = $%d`, col, len(args))
	}
	if req.Amount != nil {
		add("amount", *req.Amount)
	}
	if req.Reason != nil {
		add("reason", *req.Reason)
	}
	if req.RefundDate != nil {
		add("refund_date", *req.RefundDate)
	}
	if req.RefundMethod != nil {
		add("refund_method", *req.RefundMethod)
	}
	if req.Status != nil {
		add("status", *req.Status)
	}
	if req.EmployeeID != nil {
		add("employee_id", *req.EmployeeID)
	}
	if req.Notes != nil {
		add("notes", *req.Notes)
	}
	args = append(args, id)
	return scanRefund(r.pool.QueryRow(ctx,
		fmt.Sprintf(`UPDATE refunds SET %s WHERE id = $%d RETURNING %s`,
			set, len(args), refundColumns), args...))
}

// UpdateStatus transitions the workflow state.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status RefundStatus) (Refund, error) {
	return scanRefund(r.pool.QueryRow(ctx,
		`UPDATE refunds SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING `+refundColumns,
		status, id))
}

// Delete removes a refund permanently.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM refunds WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: refund", httpx.ErrNotFound)
	}
	return nil
}

// OrderSnapshot reads the order fields the refund guards need.
func (r *Repository) OrderSnapshot(ctx context.Context, orderID int64) (OrderSnapshot, error) {
	var snap OrderSnapshot
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(total_amount, 0), status FROM orders WHERE id = $1 AND deleted_at IS NULL`, orderID).
		Scan(&snap.TotalAmount, &snap.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OrderSnapshot{}, fmt.Errorf("%w: order", httpx.ErrNotFound)
		}
		return OrderSnapshot{}, err
	}
	return snap, nil
}

// EmployeeExists reports whether the employee is on record.
func (r *Repository) EmployeeExists(ctx context.Context, employeeID int64) (bool, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM employees WHERE id = $1 AND deleted_at IS NULL`, employeeID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
