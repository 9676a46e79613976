package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

// Repository persists customers in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const customerColumns = `id, first_name, last_name, COALESCE(phone_number, ''), COALESCE(address, ''),
	join_date, created_at, updated_at, deleted_at`

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.PhoneNumber, &c.Address,
		&c.JoinDate, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, fmt.Errorf("%w: customer", httpx.ErrNotFound)
		}
		return Customer{}, err
	}
	return c, nil
}

// List returns a filtered page of customers.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Customer, int, error) {
	where := ` WHERE 1=1`
	var args []any
	if !filter.IncludeDeleted {
		where += ` AND deleted_at IS NULL`
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		where += fmt.Sprintf(` AND (first_name ILIKE $%d OR last_name ILIKE $%d OR phone_number ILIKE $%d)`, n, n, n)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+customerColumns+` FROM customers`+where+
			fmt.Sprintf(` ORDER BY id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []Customer{}
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.PhoneNumber, &c.Address,
			&c.JoinDate, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, c)
	}
	return result, total, rows.Err()
}

// Get loads a single customer.
func (r *Repository) Get(ctx context.Context, id int64) (Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1 AND deleted_at IS NULL`, id))
}

// Create inserts a customer.
func (r *Repository) Create(ctx context.Context, req CreateCustomerRequest) (Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx,
		`INSERT INTO customers (first_name, last_name, phone_number, address, join_date)
		 VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))
		 RETURNING `+customerColumns,
		req.FirstName, req.LastName, req.PhoneNumber, req.Address, req.JoinDate))
}

// Update writes the non-nil fields.
func (r *Repository) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (Customer, error) {
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
	if req.PhoneNumber != nil {
		add("phone_number", *req.PhoneNumber)
	}
	if req.Address != nil {
		add("address", *req.Address)
	}
	if req.JoinDate != nil {
		add("join_date", *req.JoinDate)
	}
	args = append(args, id)
	return scanCustomer(r.pool.QueryRow(ctx,
		fmt.Sprintf(`UPDATE customers SET %s WHERE id = $%d AND deleted_at IS NULL RETURNING %s`,
			set, len(args), customerColumns), args...))
}

// SoftDelete marks a customer deleted.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE customers SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: customer", httpx.ErrNotFound)
	}
	return nil
}

// Restore clears the soft-delete marker.
func (r *Repository) Restore(ctx context.Context, id int64) (Customer, error) {
	return scanCustomer(r.pool.QueryRow(ctx,
		`UPDATE customers SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL RETURNING `+customerColumns, id))
}

// ClearBin permanently removes soft-deleted customers.
func (r *Repository) ClearBin(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE deleted_at IS NOT NULL`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
