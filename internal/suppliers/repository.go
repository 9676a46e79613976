package suppliers

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

// Repository persists suppliers in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const supplierColumns = `id, name, COALESCE(contact_person, ''), COALESCE(phone, ''), COALESCE(address, ''),
	created_at, updated_at, deleted_at`

func scanSupplier(row pgx.Row) (Supplier, error) {
	var s Supplier
	err := row.Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Phone, &s.Address,
		&s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Supplier{}, fmt.Errorf("%w: supplier", httpx.ErrNotFound)
		}
		return Supplier{}, err
	}
	return s, nil
}

// List returns a filtered page of suppliers.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Supplier, int, error) {
	where := ` WHERE 1=1`
	var args []any
	if !filter.IncludeDeleted {
		where += ` AND deleted_at IS NULL`
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		where += fmt.Sprintf(` AND (name ILIKE $%d OR contact_person ILIKE $%d OR phone ILIKE $%d)`, n, n, n)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+supplierColumns+` FROM suppliers`+where+
			fmt.Sprintf(` ORDER BY id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []Supplier{}
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Phone, &s.Address,
			&s.CreatedAt, &s.UpdatedAt, &s.DeletedAt); err != nil {
			return nil, 0, err
		}
		result = append(result, s)
	}
	return result, total, rows.Err()
}

// Get loads a single supplier.
func (r *Repository) Get(ctx context.Context, id int64) (Supplier, error) {
	return scanSupplier(r.pool.QueryRow(ctx,
		`SELECT `+supplierColumns+` FROM suppliers WHERE id = $1 AND deleted_at IS NULL`, id))
}

// Create inserts a supplier.
func (r *Repository) Create(ctx context.Context, req CreateSupplierRequest) (Supplier, error) {
	return scanSupplier(r.pool.QueryRow(ctx,
		`INSERT INTO suppliers (name, contact_person, phone, address)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+supplierColumns,
		req.CompanyName, req.ContactPerson, req.Phone, req.Address))
}

// Update writes the non-nil fields.
func (r *Repository) Update(ctx context.Context, id int64, req UpdateSupplierRequest) (Supplier, error) {
	set := `updated_at = NOW()`
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		set += fmt.Sprintf(`, %s = $%d`, col, len(args))
	}
	if req.CompanyName != nil {
		add("name", *req.CompanyName)
	}
	if req.ContactPerson != nil {
		add("contact_person", *req.ContactPerson)
	}
	if req.Phone != nil {
		add("phone", *req.Phone)
	}
	if req.Address != nil {
		add("address", *req.Address)
	}
	args = append(args, id)
	return scanSupplier(r.pool.QueryRow(ctx,
		fmt.Sprintf(`UPDATE suppliers SET %s WHERE id = $%d AND deleted_at IS NULL RETURNING %s`,
			set, len(args), supplierColumns), args...))
}

// SoftDelete marks a supplier deleted.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE suppliers SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: supplier", httpx.ErrNotFound)
	}
	return nil
}

// Restore clears the soft-delete marker.
func (r *Repository) Restore(ctx context.Context, id int64) (Supplier, error) {
	return scanSupplier(r.pool.QueryRow(ctx,
		`UPDATE suppliers SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL RETURNING `+supplierColumns, id))
}
