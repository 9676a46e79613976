package procurement

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
	Get(ctx context.Context, id int64) (PurchaseOrder, error)
	List(ctx context.Context, filter ListFilter) ([]POWithSupplier, int, error)
	SoldProducts(ctx context.Context, poID int64) ([]SoldProduct, error)
	GetItem(ctx context.Context, itemID int64) (PurchaseOrderItem, error)
	ListItemRows(ctx context.Context, poID int64, limit, offset int) ([]PurchaseOrderItem, int, error)
	UpdateItem(ctx context.Context, itemID int64, quantity int, unitCost float64) (PurchaseOrderItem, error)
	DeleteItem(ctx context.Context, itemID int64) error
	Balance(ctx context.Context, poID int64) (float64, error)
}

// TxRepository exposes the statement-level operations used inside a
// purchase order transaction.
type TxRepository interface {
	Insert(ctx context.Context, po PurchaseOrder) (PurchaseOrder, error)
	InsertItem(ctx context.Context, item PurchaseOrderItem) error
	ProductExists(ctx context.Context, productID int64) (bool, error)
	ListItems(ctx context.Context, poID int64) ([]PurchaseOrderItem, error)
	UpdateStatus(ctx context.Context, id int64, status POStatus) (PurchaseOrder, error)
	RestockWithAverageCost(ctx context.Context, productID int64, qty int, unitCost float64) error
	DecrementStockClamped(ctx context.Context, productID int64, qty int) error
	CompletedPaidTotal(ctx context.Context, poID int64) (float64, error)
	CountPaymentRows(ctx context.Context, poID int64) (int, error)
	SyncAggregates(ctx context.Context, poID int64, paid, balance float64) error
	ItemDispositions(ctx context.Context, poID int64) ([]ItemDisposition, error)
	HardDeleteProduct(ctx context.Context, productID int64) error
	HardDelete(ctx context.Context, poID int64) error
}

// Repository persists purchase orders in PostgreSQL.
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

const poColumns = `id, po_number, supplier_id, status, COALESCE(total_amount, 0), COALESCE(payment_amount, 0),
	COALESCE(balance, 0), COALESCE(payment_method, ''), COALESCE(notes, ''), order_date, created_at, updated_at, deleted_at`

func scanPO(row pgx.Row) (PurchaseOrder, error) {
	var po PurchaseOrder
	err := row.Scan(&po.ID, &po.PONumber, &po.SupplierID, &po.Status, &po.TotalAmount, &po.PaymentAmount,
		&po.Balance, &po.PaymentMethod, &po.Notes, &po.OrderDate, &po.CreatedAt, &po.UpdatedAt, &po.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrder{}, fmt.Errorf("%w: purchase order", httpx.ErrNotFound)
		}
		return PurchaseOrder{}, err
	}
	return po, nil
}

// Get loads a purchase order with its items.
func (r *Repository) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	po, err := scanPO(r.pool.QueryRow(ctx,
		`SELECT `+poColumns+` FROM purchase_orders WHERE id = $1 AND deleted_at IS NULL`, id))
	if err != nil {
		return PurchaseOrder{}, err
	}
	items, err := listItems(ctx, r.pool, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	po.Items = items
	return po, nil
}

// List returns a filtered page of purchase orders with supplier context
// and live payment aggregates.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]POWithSupplier, int, error) {
	where := ` WHERE po.deleted_at IS NULL`
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(` AND po.status = $%d`, len(args))
	}
	if filter.SupplierID != 0 {
		args = append(args, filter.SupplierID)
		where += fmt.Sprintf(` AND po.supplier_id = $%d`, len(args))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		where += fmt.Sprintf(` AND (po.po_number ILIKE $%d OR s.name ILIKE $%d)`, n, n)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM purchase_orders po LEFT JOIN suppliers s ON po.supplier_id = s.id` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query := `SELECT po.id, po.po_number, po.supplier_id, po.status, COALESCE(po.total_amount, 0), COALESCE(po.payment_amount, 0),
		COALESCE(po.balance, 0), COALESCE(po.payment_method, ''), COALESCE(po.notes, ''), po.order_date, po.created_at, po.updated_at, po.deleted_at,
		COALESCE(s.name, ''),
		COALESCE((SELECT SUM(p.amount) FROM payments p
			WHERE p.purchase_order_id = po.id AND p.deleted_at IS NULL AND p.status = 'completed'), 0) AS paid_total,
		GREATEST(COALESCE(po.total_amount, 0) - COALESCE((SELECT SUM(p.amount) FROM payments p
			WHERE p.purchase_order_id = po.id AND p.deleted_at IS NULL AND p.status = 'completed'), 0), 0) AS remaining_balance
		FROM purchase_orders po
		LEFT JOIN suppliers s ON po.supplier_id = s.id` + where +
		fmt.Sprintf(` ORDER BY po.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []POWithSupplier{}
	for rows.Next() {
		var row POWithSupplier
		if err := rows.Scan(&row.ID, &row.PONumber, &row.SupplierID, &row.Status, &row.TotalAmount, &row.PaymentAmount,
			&row.Balance, &row.PaymentMethod, &row.Notes, &row.OrderDate, &row.CreatedAt, &row.UpdatedAt, &row.DeletedAt,
			&row.SupplierName, &row.PaidTotal, &row.RemainingBalance); err != nil {
			return nil, 0, err
		}
		result = append(result, row)
	}
	return result, total, rows.Err()
}

// SoldProducts returns the PO's products that appear in sales order
// items of non-deleted orders together with the quantities sold.
func (r *Repository) SoldProducts(ctx context.Context, poID int64) ([]SoldProduct, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT poi.product_id, COALESCE(p.name, ''), COALESCE(SUM(oi.quantity), 0) AS total_sold
		 FROM purchase_order_items poi
		 LEFT JOIN products p ON poi.product_id = p.id
		 LEFT JOIN order_items oi ON poi.product_id = oi.product_id
		 LEFT JOIN orders o ON oi.order_id = o.id AND o.deleted_at IS NULL
		 WHERE poi.purchase_order_id = $1
		 GROUP BY poi.product_id, p.name
		 HAVING COALESCE(SUM(oi.quantity), 0) > 0`, poID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []SoldProduct{}
	for rows.Next() {
		var sp SoldProduct
		if err := rows.Scan(&sp.ProductID, &sp.Name, &sp.TotalSold); err != nil {
			return nil, err
		}
		result = append(result, sp)
	}
	return result, rows.Err()
}

const itemColumns = `poi.id, poi.purchase_order_id, poi.product_id, poi.quantity, poi.unit_cost,
	COALESCE(poi.total_cost, 0), COALESCE(p.name, '')`

func scanItem(row pgx.Row) (PurchaseOrderItem, error) {
	var item PurchaseOrderItem
	err := row.Scan(&item.ID, &item.PurchaseOrderID, &item.ProductID, &item.Quantity,
		&item.UnitCost, &item.TotalCost, &item.ProductName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrderItem{}, fmt.Errorf("%w: purchase order item", httpx.ErrNotFound)
		}
		return PurchaseOrderItem{}, err
	}
	return item, nil
}

// GetItem loads a single purchase order line with its product name.
func (r *Repository) GetItem(ctx context.Context, itemID int64) (PurchaseOrderItem, error) {
	return scanItem(r.pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM purchase_order_items poi
		 LEFT JOIN products p ON poi.product_id = p.id
		 WHERE poi.id = $1`, itemID))
}

// ListItemRows returns a page of purchase order lines, optionally
// filtered to one purchase order.
func (r *Repository) ListItemRows(ctx context.Context, poID int64, limit, offset int) ([]PurchaseOrderItem, int, error) {
	where := ``
	var args []any
	if poID != 0 {
		args = append(args, poID)
		where = ` WHERE poi.purchase_order_id = $1`
	}

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM purchase_order_items poi`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM purchase_order_items poi
		 LEFT JOIN products p ON poi.product_id = p.id`+where+
			fmt.Sprintf(` ORDER BY poi.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := []PurchaseOrderItem{}
	for rows.Next() {
		var item PurchaseOrderItem
		if err := rows.Scan(&item.ID, &item.PurchaseOrderID, &item.ProductID, &item.Quantity,
			&item.UnitCost, &item.TotalCost, &item.ProductName); err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

// UpdateItem rewrites the line and keeps total_cost derived from it.
func (r *Repository) UpdateItem(ctx context.Context, itemID int64, quantity int, unitCost float64) (PurchaseOrderItem, error) {
	var item PurchaseOrderItem
	err := r.pool.QueryRow(ctx,
		`UPDATE purchase_order_items
		 SET quantity = $1, unit_cost = $2, total_cost = $1 * $2
		 WHERE id = $3
		 RETURNING id, purchase_order_id, product_id, quantity, unit_cost, COALESCE(total_cost, 0)`,
		quantity, unitCost, itemID).
		Scan(&item.ID, &item.PurchaseOrderID, &item.ProductID, &item.Quantity, &item.UnitCost, &item.TotalCost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseOrderItem{}, fmt.Errorf("%w: purchase order item", httpx.ErrNotFound)
		}
		return PurchaseOrderItem{}, err
	}
	return item, nil
}

// DeleteItem removes the line.
func (r *Repository) DeleteItem(ctx context.Context, itemID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM purchase_order_items WHERE id = $1`, itemID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: purchase order item", httpx.ErrNotFound)
	}
	return nil
}

// Balance reads the purchase order's cached outstanding balance.
func (r *Repository) Balance(ctx context.Context, poID int64) (float64, error) {
	var balance float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(balance, 0) FROM purchase_orders WHERE id = $1`, poID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: purchase order", httpx.ErrNotFound)
		}
		return 0, err
	}
	return balance, nil
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) Insert(ctx context.Context, po PurchaseOrder) (PurchaseOrder, error) {
	return scanPO(r.tx.QueryRow(ctx,
		`INSERT INTO purchase_orders (po_number, supplier_id, status, total_amount, balance, payment_method, notes, order_date)
		 VALUES ($1, $2, $3, $4, $4, $5, $6, NOW())
		 RETURNING `+poColumns,
		po.PONumber, po.SupplierID, po.Status, po.TotalAmount, po.PaymentMethod, po.Notes))
}

func (r *txRepository) InsertItem(ctx context.Context, item PurchaseOrderItem) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO purchase_order_items (purchase_order_id, product_id, quantity, unit_cost, total_cost)
		 VALUES ($1, $2, $3, $4, $5)`,
		item.PurchaseOrderID, item.ProductID, item.Quantity, item.UnitCost, item.TotalCost)
	return err
}

func (r *txRepository) ProductExists(ctx context.Context, productID int64) (bool, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `SELECT id FROM products WHERE id = $1`, productID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *txRepository) ListItems(ctx context.Context, poID int64) ([]PurchaseOrderItem, error) {
	return listItems(ctx, r.tx, poID)
}

func (r *txRepository) UpdateStatus(ctx context.Context, id int64, status POStatus) (PurchaseOrder, error) {
	received := ``
	if status == StatusReceived {
		received = `, received_date = NOW()`
	}
	return scanPO(r.tx.QueryRow(ctx,
		`UPDATE purchase_orders SET status = $1, updated_at = NOW()`+received+`
		 WHERE id = $2 AND deleted_at IS NULL RETURNING `+poColumns, status, id))
}

func (r *txRepository) RestockWithAverageCost(ctx context.Context, productID int64, qty int, unitCost float64) error {
	_, err := inventory.AddStockWithAverageCost(ctx, r.tx, productID, qty, unitCost)
	return err
}

func (r *txRepository) DecrementStockClamped(ctx context.Context, productID int64, qty int) error {
	return inventory.DecrementStockClamped(ctx, r.tx, productID, qty)
}

func (r *txRepository) CompletedPaidTotal(ctx context.Context, poID int64) (float64, error) {
	return payments.CompletedPaidTotal(ctx, r.tx, payments.ForPurchaseOrder(poID))
}

func (r *txRepository) CountPaymentRows(ctx context.Context, poID int64) (int, error) {
	return payments.CountRows(ctx, r.tx, payments.ForPurchaseOrder(poID))
}

func (r *txRepository) SyncAggregates(ctx context.Context, poID int64, paid, balance float64) error {
	_, err := r.tx.Exec(ctx,
		`UPDATE purchase_orders
		 SET payment_amount = $1,
		     balance = $2,
		     status = CASE WHEN $2::numeric = 0::numeric THEN 'completed' ELSE status END,
		     updated_at = NOW()
		 WHERE id = $3`, paid, balance, poID)
	return err
}

func (r *txRepository) ItemDispositions(ctx context.Context, poID int64) ([]ItemDisposition, error) {
	rows, err := r.tx.Query(ctx,
		`SELECT poi.product_id, poi.quantity, COALESCE(p.quantity_in_stock, 0),
		        (SELECT COUNT(*) FROM purchase_order_items poi2
		           WHERE poi2.product_id = poi.product_id AND poi2.purchase_order_id != $1),
		        (SELECT COUNT(*) FROM order_items oi WHERE oi.product_id = poi.product_id)
		 FROM purchase_order_items poi
		 LEFT JOIN products p ON poi.product_id = p.id
		 WHERE poi.purchase_order_id = $1`, poID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []ItemDisposition{}
	for rows.Next() {
		var d ItemDisposition
		if err := rows.Scan(&d.ProductID, &d.Quantity, &d.Stock, &d.OtherPOCount, &d.SoldCount); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (r *txRepository) HardDeleteProduct(ctx context.Context, productID int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	return err
}

func (r *txRepository) HardDelete(ctx context.Context, poID int64) error {
	if _, err := r.tx.Exec(ctx, `DELETE FROM purchase_order_items WHERE purchase_order_id = $1`, poID); err != nil {
		return err
	}
	_, err := r.tx.Exec(ctx, `DELETE FROM purchase_orders WHERE id = $1`, poID)
	return err
}

func listItems(ctx context.Context, dbx db.DBTX, poID int64) ([]PurchaseOrderItem, error) {
	rows, err := dbx.Query(ctx,
		`SELECT poi.id, poi.purchase_order_id, poi.product_id, poi.quantity, poi.unit_cost,
		        COALESCE(poi.total_cost, 0), COALESCE(p.name, '')
		 FROM purchase_order_items poi
		 LEFT JOIN products p ON poi.product_id = p.id
		 WHERE poi.purchase_order_id = $1
		 ORDER BY poi.id`, poID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []PurchaseOrderItem{}
	for rows.Next() {
		var item PurchaseOrderItem
		if err := rows.Scan(&item.ID, &item.PurchaseOrderID, &item.ProductID, &item.Quantity,
			&item.UnitCost, &item.TotalCost, &item.ProductName); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
