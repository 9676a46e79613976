package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

// RepositoryPort abstracts the employee store for the service.
type RepositoryPort interface {
	GetByUsername(ctx context.Context, username string) (Employee, error)
	GetByID(ctx context.Context, id int64) (Employee, error)
}

// Repository reads employee accounts from the admins table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const adminColumns = `id, username, COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(role, 'admin'), password, created_at`

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.Username, &e.FirstName, &e.LastName, &e.Role, &e.PasswordHash, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Employee{}, fmt.Errorf("%w: employee", httpx.ErrNotFound)
		}
		return Employee{}, err
	}
	return e, nil
}

// GetByUsername loads an account by username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (Employee, error) {
	return scanEmployee(r.pool.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE username = $1`, username))
}

// GetByID loads an account by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (Employee, error) {
	return scanEmployee(r.pool.QueryRow(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = $1`, id))
}
