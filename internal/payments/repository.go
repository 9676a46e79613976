package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abed1srour/POS-backend/internal/platform/db"
	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64, includeDeleted bool) (Payment, error)
	List(ctx context.Context, filter ListFilter) ([]PaymentWithContext, int, error)
	Update(ctx context.Context, id int64, req UpdatePaymentRequest) (Payment, error)
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	ClearBin(ctx context.Context) (int64, error)
}

// TxRepository exposes the statement-level operations of one payment
// transaction.
type TxRepository interface {
	OwnerSnapshot(ctx context.Context, owner Owner) (total float64, status string, err error)
	CompletedPaidTotal(ctx context.Context, owner Owner) (float64, error)
	Insert(ctx context.Context, p Payment) (Payment, error)
	SyncPurchaseOrderAggregates(ctx context.Context, poID int64, paid float64) (balance float64, status string, err error)
	CompleteOrder(ctx context.Context, orderID int64) error
}

// Repository persists payments in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx executes the callback inside a transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

const paymentColumns = `id, order_id, purchase_order_id, amount, COALESCE(payment_method, ''), status,
	COALESCE(notes, ''), payment_date, created_at, updated_at, deleted_at`

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.PurchaseOrderID, &p.Amount, &p.Method, &p.Status,
		&p.Notes, &p.PaymentDate, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, fmt.Errorf("%w: payment", httpx.ErrNotFound)
		}
		return Payment{}, err
	}
	return p, nil
}

// Get loads a single payment row.
func (r *Repository) Get(ctx context.Context, id int64, includeDeleted bool) (Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	return scanPayment(r.pool.QueryRow(ctx, query, id))
}

// List returns a filtered page of payments joined with the owner's
// counterparty name.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]PaymentWithContext, int, error) {
	where := ` WHERE 1=1`
	var args []any
	if !filter.IncludeDeleted {
		where += ` AND p.deleted_at IS NULL`
	}
	if filter.OrderID != 0 {
		args = append(args, filter.OrderID)
		where += fmt.Sprintf(` AND p.order_id = $%d`, len(args))
	}
	if filter.PurchaseOrderID != 0 {
		args = append(args, filter.PurchaseOrderID)
		where += fmt.Sprintf(` AND p.purchase_order_id = $%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(` AND p.status = $%d`, len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payments p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query := `SELECT p.id, p.order_id, p.purchase_order_id, p.amount, COALESCE(p.payment_method, ''), p.status,
		COALESCE(p.notes, ''), p.payment_date, p.created_at, p.updated_at, p.deleted_at,
		COALESCE(c.first_name || ' ' || c.last_name, ''), COALESCE(s.name, '')
		FROM payments p
		LEFT JOIN orders o ON p.order_id = o.id
		LEFT JOIN customers c ON o.customer_id = c.id
		LEFT JOIN purchase_orders po ON p.purchase_order_id = po.id
		LEFT JOIN suppliers s ON po.supplier_id = s.id` + where +
		fmt.Sprintf(` ORDER BY p.payment_date DESC, p.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []PaymentWithContext{}
	for rows.Next() {
		var row PaymentWithContext
		if err := rows.Scan(&row.ID, &row.OrderID, &row.PurchaseOrderID, &row.Amount, &row.Method, &row.Status,
			&row.Notes, &row.PaymentDate, &row.CreatedAt, &row.UpdatedAt, &row.DeletedAt,
			&row.CustomerName, &row.SupplierName); err != nil {
			return nil, 0, err
		}
		result = append(result, row)
	}
	return result, total, rows.Err()
}

// Update writes non-structural fields verbatim.
func (r *Repository) Update(ctx context.Context, id int64, req UpdatePaymentRequest) (Payment, error) {
	set := `updated_at = NOW()`
	var args []any
	if req.Amount != nil {
		args = append(args, *req.Amount)
		set += fmt.Sprintf(`, amount = $%d`, len(args))
	}
	if req.Method != nil {
		args = append(args, *req.Method)
		set += fmt.Sprintf(`, payment_method = $%d`, len(args))
	}
	if req.Status != nil {
		args = append(args, *req.Status)
		set += fmt.Sprintf(`, status = $%d`, len(args))
	}
	if req.Notes != nil {
		args = append(args, *req.Notes)
		set += fmt.Sprintf(`, notes = $%d`, len(args))
	}
	args = append(args, id)
	return scanPayment(r.pool.QueryRow(ctx,
		fmt.Sprintf(`UPDATE payments SET %s WHERE id = $%d AND deleted_at IS NULL RETURNING %s`,
			set, len(args), paymentColumns), args...))
}

// Restore clears the soft-delete marker.
func (r *Repository) Restore(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE payments SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: deleted payment", httpx.ErrNotFound)
	}
	return nil
}

// ClearBin permanently removes soft-deleted payments.
func (r *Repository) ClearBin(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM payments WHERE deleted_at IS NOT NULL`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SoftDelete marks a payment deleted without touching the owner's
// status. A completion flip caused by this payment is not reverted.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE payments SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: payment", httpx.ErrNotFound)
	}
	return nil
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) OwnerSnapshot(ctx context.Context, owner Owner) (float64, string, error) {
	var query string
	var id int64
	switch {
	case owner.OrderID > 0:
		query = `SELECT total_amount, status FROM orders WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
		id = owner.OrderID
	case owner.PurchaseOrderID > 0:
		query = `SELECT COALESCE(total_amount, total, 0), status FROM purchase_orders WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
		id = owner.PurchaseOrderID
	default:
		return 0, "", fmt.Errorf("%w: payment owner must be exactly one of order or purchase order", httpx.ErrValidation)
	}

	var total float64
	var status string
	if err := r.tx.QueryRow(ctx, query, id).Scan(&total, &status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, "", fmt.Errorf("%w: payment owner", httpx.ErrNotFound)
		}
		return 0, "", err
	}
	return total, status, nil
}

func (r *txRepository) CompletedPaidTotal(ctx context.Context, owner Owner) (float64, error) {
	return CompletedPaidTotal(ctx, r.tx, owner)
}

func (r *txRepository) Insert(ctx context.Context, p Payment) (Payment, error) {
	return scanPayment(r.tx.QueryRow(ctx,
		`INSERT INTO payments (order_id, purchase_order_id, amount, payment_method, status, notes, payment_date)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW())
		 RETURNING `+paymentColumns,
		p.OrderID, p.PurchaseOrderID, p.Amount, p.Method, p.Status, p.Notes))
}

func (r *txRepository) SyncPurchaseOrderAggregates(ctx context.Context, poID int64, paid float64) (float64, string, error) {
	var balance float64
	var status string
	err := r.tx.QueryRow(ctx,
		`UPDATE purchase_orders
		 SET payment_amount = $1,
		     balance = GREATEST(COALESCE(total_amount, total, 0) - $1, 0),
		     status = CASE WHEN COALESCE(total_amount, total, 0) - $1 <= 0 THEN 'completed' ELSE status END,
		     updated_at = NOW()
		 WHERE id = $2
		 RETURNING balance, status`, paid, poID).Scan(&balance, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, "", fmt.Errorf("%w: purchase order", httpx.ErrNotFound)
		}
		return 0, "", err
	}
	return balance, status, nil
}

func (r *txRepository) CompleteOrder(ctx context.Context, orderID int64) error {
	_, err := r.tx.Exec(ctx,
		`UPDATE orders SET status = 'completed', updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, orderID)
	return err
}
