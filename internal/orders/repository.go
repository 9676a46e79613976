package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abed1srour/POS-backend/internal/inventory"
	"github.com/abed1srour/POS-backend/internal/payments"
	"github.com/abed1srour/POS-backend/internal/platform/db"
	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64, includeDeleted bool) (Order, error)
	List(ctx context.Context, filter ListFilter) ([]OrderWithCustomer, int, error)
	ListPayments(ctx context.Context, orderID int64) ([]PaymentSummary, error)
	CompletedPaidTotal(ctx context.Context, orderID int64) (float64, error)
	UpdateFields(ctx context.Context, id int64, status OrderStatus, paymentMethod, notes *string) (Order, error)
	Restore(ctx context.Context, id int64) error
	ClearBin(ctx context.Context) (int64, error)

	GetItem(ctx context.Context, itemID int64) (OrderItem, error)
	ListItemRows(ctx context.Context, orderID int64, limit, offset int) ([]OrderItem, int, error)
	UpdateItem(ctx context.Context, itemID int64, quantity int, unitPrice, discount float64) (OrderItem, error)
	DeleteItem(ctx context.Context, itemID int64) error
	ActivePaymentCount(ctx context.Context, orderID int64) (int, error)
}

// TxRepository exposes the statement-level operations used inside a
// single order transaction.
type TxRepository interface {
	InsertOrder(ctx context.Context, o Order) (Order, error)
	InsertItem(ctx context.Context, item OrderItem) error
	GetProductForSale(ctx context.Context, productID int64) (stock int, price float64, err error)
	DecrementStock(ctx context.Context, productID int64, qty int) error
	IncrementStock(ctx context.Context, productID int64, qty int) error
	ListItems(ctx context.Context, orderID int64) ([]OrderItem, error)
	UpdateFields(ctx context.Context, id int64, status OrderStatus, paymentMethod, notes *string) (Order, error)
	SoftDelete(ctx context.Context, id int64) error
}

// Repository persists sales orders in PostgreSQL.
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

const orderColumns = `id, customer_id, total_amount, status, COALESCE(payment_method, ''), COALESCE(notes, ''),
	COALESCE(delivery_required, FALSE), COALESCE(delivery_fee, 0), order_date, created_at, updated_at, deleted_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.TotalAmount, &o.Status, &o.PaymentMethod, &o.Notes,
		&o.DeliveryRequired, &o.DeliveryFee, &o.OrderDate, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, fmt.Errorf("%w: order", httpx.ErrNotFound)
		}
		return Order{}, err
	}
	return o, nil
}

// Get loads an order row with its items.
func (r *Repository) Get(ctx context.Context, id int64, includeDeleted bool) (Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	o, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return Order{}, err
	}
	items, err := listItems(ctx, r.pool, id)
	if err != nil {
		return Order{}, err
	}
	o.Items = items
	return o, nil
}

// List returns a filtered page of orders with customer context and
// live payment totals.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]OrderWithCustomer, int, error) {
	where := ` WHERE 1=1`
	var args []any
	if !filter.IncludeDeleted {
		where += ` AND o.deleted_at IS NULL`
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		where += fmt.Sprintf(` AND (o.id::text ILIKE $%d OR c.first_name ILIKE $%d OR c.last_name ILIKE $%d OR o.status ILIKE $%d)`, n, n, n, n)
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(` AND o.status = $%d`, len(args))
	}
	if filter.CustomerID != 0 {
		args = append(args, filter.CustomerID)
		where += fmt.Sprintf(` AND o.customer_id = $%d`, len(args))
	}
	if filter.DateFrom != "" {
		args = append(args, filter.DateFrom)
		where += fmt.Sprintf(` AND DATE(o.order_date) >= $%d`, len(args))
	}
	if filter.DateTo != "" {
		args = append(args, filter.DateTo)
		where += fmt.Sprintf(` AND DATE(o.order_date) <= $%d`, len(args))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM orders o LEFT JOIN customers c ON o.customer_id = c.id` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query := `SELECT o.id, o.customer_id, o.total_amount, o.status, COALESCE(o.payment_method, ''), COALESCE(o.notes, ''),
		COALESCE(o.delivery_required, FALSE), COALESCE(o.delivery_fee, 0), o.order_date, o.created_at, o.updated_at, o.deleted_at,
		COALESCE(c.first_name, ''), COALESCE(c.last_name, ''), COALESCE(c.phone_number, ''),
		COALESCE((SELECT SUM(oi.quantity * oi.unit_price - oi.discount) FROM order_items oi WHERE oi.order_id = o.id), 0),
		COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.order_id = o.id AND p.deleted_at IS NULL AND p.status = 'completed'), 0)
		FROM orders o
		LEFT JOIN customers c ON o.customer_id = c.id` + where +
		fmt.Sprintf(` ORDER BY o.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []OrderWithCustomer{}
	for rows.Next() {
		var row OrderWithCustomer
		if err := rows.Scan(&row.ID, &row.CustomerID, &row.TotalAmount, &row.Status, &row.PaymentMethod, &row.Notes,
			&row.DeliveryRequired, &row.DeliveryFee, &row.OrderDate, &row.CreatedAt, &row.UpdatedAt, &row.DeletedAt,
			&row.FirstName, &row.LastName, &row.PhoneNumber, &row.CalculatedTotal, &row.TotalPaid); err != nil {
			return nil, 0, err
		}
		result = append(result, row)
	}
	return result, total, rows.Err()
}

// ListPayments returns the non-deleted payments recorded against an order.
func (r *Repository) ListPayments(ctx context.Context, orderID int64) ([]PaymentSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, amount, COALESCE(payment_method, ''), status, payment_date
		 FROM payments WHERE order_id = $1 AND deleted_at IS NULL
		 ORDER BY payment_date DESC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []PaymentSummary{}
	for rows.Next() {
		var p PaymentSummary
		if err := rows.Scan(&p.ID, &p.Amount, &p.Method, &p.Status, &p.PaymentDate); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// CompletedPaidTotal delegates to the payment ledger's canonical query.
func (r *Repository) CompletedPaidTotal(ctx context.Context, orderID int64) (float64, error) {
	return payments.CompletedPaidTotal(ctx, r.pool, payments.ForOrder(orderID))
}

// UpdateFields writes the status and optional fields outside any restock path.
func (r *Repository) UpdateFields(ctx context.Context, id int64, status OrderStatus, paymentMethod, notes *string) (Order, error) {
	return updateFields(ctx, r.pool, id, status, paymentMethod, notes)
}

// Restore clears the soft-delete marker.
func (r *Repository) Restore(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: deleted order", httpx.ErrNotFound)
	}
	return nil
}

// ClearBin permanently removes soft-deleted orders.
func (r *Repository) ClearBin(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE deleted_at IS NOT NULL`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const itemColumns = `oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, COALESCE(oi.discount, 0), COALESCE(p.name, '')`

func scanItem(row pgx.Row) (OrderItem, error) {
	var item OrderItem
	err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.Discount, &item.ProductName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OrderItem{}, fmt.Errorf("%w: order item", httpx.ErrNotFound)
		}
		return OrderItem{}, err
	}
	return item, nil
}

// GetItem loads a single line with product context.
func (r *Repository) GetItem(ctx context.Context, itemID int64) (OrderItem, error) {
	return scanItem(r.pool.QueryRow(ctx,
		`SELECT `+itemColumns+`
		 FROM order_items oi
		 LEFT JOIN products p ON oi.product_id = p.id
		 WHERE oi.id = $1`, itemID))
}

// ListItemRows pages through order lines, optionally scoped to one order.
func (r *Repository) ListItemRows(ctx context.Context, orderID int64, limit, offset int) ([]OrderItem, int, error) {
	where := ``
	var args []any
	if orderID != 0 {
		args = append(args, orderID)
		where = ` WHERE oi.order_id = $1`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM order_items oi`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+itemColumns+`
		 FROM order_items oi
		 LEFT JOIN products p ON oi.product_id = p.id`+where+
			fmt.Sprintf(` ORDER BY oi.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []OrderItem{}
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.Discount, &item.ProductName); err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

// UpdateItem rewrites a line's quantity, price and discount.
func (r *Repository) UpdateItem(ctx context.Context, itemID int64, quantity int, unitPrice, discount float64) (OrderItem, error) {
	var item OrderItem
	err := r.pool.QueryRow(ctx,
		`UPDATE order_items SET quantity = $1, unit_price = $2, discount = $3
		 WHERE id = $4
		 RETURNING id, order_id, product_id, quantity, unit_price, COALESCE(discount, 0)`,
		quantity, unitPrice, discount, itemID).
		Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.Discount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OrderItem{}, fmt.Errorf("%w: order item", httpx.ErrNotFound)
		}
		return OrderItem{}, err
	}
	return item, nil
}

// DeleteItem removes a line permanently.
func (r *Repository) DeleteItem(ctx context.Context, itemID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM order_items WHERE id = $1`, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order item", httpx.ErrNotFound)
	}
	return nil
}

// ActivePaymentCount counts the live payments recorded against an order.
func (r *Repository) ActivePaymentCount(ctx context.Context, orderID int64) (int, error) {
	return payments.ActiveCount(ctx, r.pool, payments.ForOrder(orderID))
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertOrder(ctx context.Context, o Order) (Order, error) {
	return scanOrder(r.tx.QueryRow(ctx,
		`INSERT INTO orders (customer_id, total_amount, status, payment_method, notes, delivery_required, delivery_fee, order_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		 RETURNING `+orderColumns,
		o.CustomerID, o.TotalAmount, o.Status, o.PaymentMethod, o.Notes, o.DeliveryRequired, o.DeliveryFee))
}

func (r *txRepository) InsertItem(ctx context.Context, item OrderItem) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO order_items (order_id, product_id, quantity, unit_price, discount)
		 VALUES ($1, $2, $3, $4, $5)`,
		item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.Discount)
	return err
}

func (r *txRepository) GetProductForSale(ctx context.Context, productID int64) (int, float64, error) {
	var stock int
	var price float64
	err := r.tx.QueryRow(ctx,
		`SELECT COALESCE(quantity_in_stock, 0), COALESCE(price, 0)
		 FROM products WHERE id = $1 AND deleted_at IS NULL`, productID).Scan(&stock, &price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, fmt.Errorf("%w: product %d", httpx.ErrNotFound, productID)
		}
		return 0, 0, err
	}
	return stock, price, nil
}

func (r *txRepository) DecrementStock(ctx context.Context, productID int64, qty int) error {
	return inventory.DecrementStock(ctx, r.tx, productID, qty)
}

func (r *txRepository) IncrementStock(ctx context.Context, productID int64, qty int) error {
	return inventory.IncrementStock(ctx, r.tx, productID, qty)
}

func (r *txRepository) ListItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	return listItems(ctx, r.tx, orderID)
}

func (r *txRepository) UpdateFields(ctx context.Context, id int64, status OrderStatus, paymentMethod, notes *string) (Order, error) {
	return updateFields(ctx, r.tx, id, status, paymentMethod, notes)
}

func (r *txRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.tx.Exec(ctx, `UPDATE orders SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order", httpx.ErrNotFound)
	}
	return nil
}

func listItems(ctx context.Context, dbx db.DBTX, orderID int64) ([]OrderItem, error) {
	rows, err := dbx.Query(ctx,
		`SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, COALESCE(oi.discount, 0), COALESCE(p.name, '')
		 FROM order_items oi
		 LEFT JOIN products p ON oi.product_id = p.id
		 WHERE oi.order_id = $1
		 ORDER BY oi.id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []OrderItem{}
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice, &item.Discount, &item.ProductName); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func updateFields(ctx context.Context, dbx db.DBTX, id int64, status OrderStatus, paymentMethod, notes *string) (Order, error) {
	set := `status = $1, updated_at = NOW()`
	args := []any{status}
	if paymentMethod != nil {
		args = append(args, *paymentMethod)
		set += fmt.Sprintf(`, payment_method = $%d`, len(args))
	}
	if notes != nil {
		args = append(args, *notes)
		set += fmt.Sprintf(`, notes = $%d`, len(args))
	}
	args = append(args, id)
	return scanOrder(dbx.QueryRow(ctx,
		fmt.Sprintf(`UPDATE orders SET %s WHERE id = $%d AND deleted_at IS NULL RETURNING %s`, set, len(args), orderColumns),
		args...))
}
