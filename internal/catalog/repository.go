package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abed1srour/POS-backend/internal/inventory"
	"github.com/abed1srour/POS-backend/internal/platform/db"
	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

// Repository persists products in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const productColumns = `p.id, p.name, COALESCE(p.description, ''), COALESCE(p.sku, ''), COALESCE(p.barcode, ''),
	COALESCE(p.price, 0), COALESCE(p.cost_price, 0), COALESCE(p.quantity_in_stock, 0),
	p.category_id, p.supplier_id, p.created_at, p.updated_at, p.deleted_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.SKU, &p.Barcode,
		&p.Price, &p.CostPrice, &p.QuantityInStock,
		&p.CategoryID, &p.SupplierID, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, fmt.Errorf("%w: product", httpx.ErrNotFound)
		}
		return Product{}, err
	}
	return p, nil
}

var sortColumns = map[string]string{
	"id":                "p.id",
	"name":              "p.name",
	"price":             "p.price",
	"cost_price":        "p.cost_price",
	"quantity_in_stock": "p.quantity_in_stock",
	"created_at":        "p.created_at",
}

// List returns a filtered page of products with category and supplier
// names.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]ProductWithRefs, int, error) {
	where := ` WHERE 1=1`
	var args []any
	switch {
	case filter.DeletedOnly:
		where += ` AND p.deleted_at IS NOT NULL`
	case !filter.IncludeDeleted:
		where += ` AND p.deleted_at IS NULL`
	}
	if filter.CategoryID != 0 {
		args = append(args, filter.CategoryID)
		where += fmt.Sprintf(` AND p.category_id = $%d`, len(args))
	}
	if filter.SupplierID != 0 {
		args = append(args, filter.SupplierID)
		where += fmt.Sprintf(` AND p.supplier_id = $%d`, len(args))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		where += fmt.Sprintf(` AND (p.name ILIKE $%d OR p.description ILIKE $%d OR p.sku ILIKE $%d OR p.barcode ILIKE $%d)`, n, n, n, n)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortCol, ok := sortColumns[filter.Sort]
	if !ok {
		sortCol = "p.id"
	}
	dir := "DESC"
	if filter.Order == "asc" {
		dir = "ASC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query := `SELECT ` + productColumns + `, COALESCE(c.name, ''), COALESCE(s.name, '')
		FROM products p
		LEFT JOIN categories c ON p.category_id = c.id
		LEFT JOIN suppliers s ON p.supplier_id = s.id` + where +
		fmt.Sprintf(` ORDER BY %s %s LIMIT $%d OFFSET $%d`, sortCol, dir, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []ProductWithRefs{}
	for rows.Next() {
		var row ProductWithRefs
		if err := rows.Scan(&row.ID, &row.Name, &row.Description, &row.SKU, &row.Barcode,
			&row.Price, &row.CostPrice, &row.QuantityInStock,
			&row.CategoryID, &row.SupplierID, &row.CreatedAt, &row.UpdatedAt, &row.DeletedAt,
			&row.CategoryName, &row.SupplierName); err != nil {
			return nil, 0, err
		}
		result = append(result, row)
	}
	return result, total, rows.Err()
}

// Get loads a single product.
func (r *Repository) Get(ctx context.Context, id int64, includeDeleted bool) (Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`
	if !includeDeleted {
		query += ` AND p.deleted_at IS NULL`
	}
	return scanProduct(r.pool.QueryRow(ctx, query, id))
}

// Create inserts a product.
func (r *Repository) Create(ctx context.Context, req CreateProductRequest) (Product, error) {
	return scanProduct(r.pool.QueryRow(ctx,
		`INSERT INTO products (name, description, sku, barcode, price, cost_price, quantity_in_stock, category_id, supplier_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+productColumns,
		req.Name, req.Description, req.SKU, req.Barcode, req.Price, req.CostPrice, req.Stock, req.CategoryID, req.SupplierID))
}

// Update writes the non-nil fields.
func (r *Repository) Update(ctx context.Context, id int64, req UpdateProductRequest) (Product, error) {
	set := `updated_at = NOW()`
	var args []any
	add := func(col string, v any) {
		args = append(args, v)
		set += fmt.Sprintf(`, %s = $%d`, col, len(args))
	}
	if req.Name != nil {
		add("name", *req.Name)
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.SKU != nil {
		add("sku", *req.SKU)
	}
	if req.Barcode != nil {
		add("barcode", *req.Barcode)
	}
	if req.Price != nil {
		add("price", *req.Price)
	}
	if req.CostPrice != nil {
		add("cost_price", *req.CostPrice)
	}
	if req.CategoryID != nil {
		add("category_id", *req.CategoryID)
	}
	if req.SupplierID != nil {
		add("supplier_id", *req.SupplierID)
	}
	args = append(args, id)
	return scanProduct(r.pool.QueryRow(ctx,
		fmt.Sprintf(`UPDATE products p SET %s WHERE p.id = $%d AND p.deleted_at IS NULL RETURNING %s`,
			set, len(args), productColumns), args...))
}

// SetStock writes an absolute stock quantity.
func (r *Repository) SetStock(ctx context.Context, id int64, quantity int) (Product, error) {
	return scanProduct(r.pool.QueryRow(ctx,
		`UPDATE products p SET quantity_in_stock = $1, updated_at = NOW()
		 WHERE p.id = $2 AND p.deleted_at IS NULL RETURNING `+productColumns, quantity, id))
}

// Restock adds stock at a unit cost through the inventory ledger's
// weighted-average calculation, inside its own transaction.
func (r *Repository) Restock(ctx context.Context, id int64, quantity int, costPrice float64) (inventory.Stock, error) {
	var stock inventory.Stock
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		stock, err = inventory.AddStockWithAverageCost(ctx, tx, id, quantity, costPrice)
		return err
	})
	if err != nil {
		return inventory.Stock{}, err
	}
	return stock, nil
}

// SoftDelete marks a product deleted.
func (r *Repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product", httpx.ErrNotFound)
	}
	return nil
}

// Restore clears the soft-delete marker.
func (r *Repository) Restore(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: deleted product", httpx.ErrNotFound)
	}
	return nil
}

// ClearBin purges soft-deleted products that nothing references.
// Products still present on order or purchase order items are left in
// the bin and reported as blocked.
func (r *Repository) ClearBin(ctx context.Context) (ClearBinReport, error) {
	var report ClearBinReport
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE deleted_at IS NOT NULL`).Scan(&report.TotalSoftDeleted); err != nil {
		return ClearBinReport{}, err
	}

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM products p
		 WHERE p.deleted_at IS NOT NULL
		 AND NOT EXISTS (SELECT 1 FROM order_items oi WHERE oi.product_id = p.id)
		 AND NOT EXISTS (SELECT 1 FROM purchase_order_items poi WHERE poi.product_id = p.id)`)
	if err != nil {
		return ClearBinReport{}, err
	}
	report.Deleted = int(tag.RowsAffected())
	report.Blocked = report.TotalSoftDeleted - report.Deleted
	return report, nil
}
