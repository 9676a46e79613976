// Package inventory owns product stock quantities and cost basis. All
// operations run inside a caller-managed transaction so that multi-line
// order and purchase-order mutations stay atomic.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/abed1srour/POS-backend/internal/platform/db"
	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

// Stock is a snapshot of a product's inventory state.
type Stock struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity_in_stock"`
	CostPrice float64 `json:"cost_price"`
	Price     float64 `json:"price"`
}

// AddStockWithAverageCost replenishes a product at the given unit cost,
// recomputing the weighted-average cost basis and scaling the selling
// price to keep the existing margin ratio. Must run inside the caller's
// transaction.
func AddStockWithAverageCost(ctx context.Context, dbx db.DBTX, productID int64, qty int, unitCost float64) (Stock, error) {
	if qty <= 0 {
		return Stock{}, fmt.Errorf("%w: restock quantity must be positive", httpx.ErrValidation)
	}
	if unitCost <= 0 {
		return Stock{}, fmt.Errorf("%w: unit cost must be positive", httpx.ErrValidation)
	}

	cur := Stock{ProductID: productID}
	err := dbx.QueryRow(ctx,
		`SELECT COALESCE(quantity_in_stock, 0), COALESCE(cost_price, 0), COALESCE(price, 0)
		 FROM products WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
		productID).Scan(&cur.Quantity, &cur.CostPrice, &cur.Price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Stock{}, fmt.Errorf("%w: product %d", httpx.ErrNotFound, productID)
		}
		return Stock{}, err
	}

	next := ApplyRestock(cur, qty, unitCost)

	_, err = dbx.Exec(ctx,
		`UPDATE products
		 SET quantity_in_stock = $1, cost_price = $2, price = $3, updated_at = NOW()
		 WHERE id = $4`,
		next.Quantity, next.CostPrice, next.Price, productID)
	if err != nil {
		return Stock{}, err
	}
	return next, nil
}

// ApplyRestock computes the post-restock stock state. With zero current
// stock the incoming cost becomes the cost price verbatim and the selling
// price is left as-is (both still pass through the rounding rule).
func ApplyRestock(cur Stock, qty int, unitCost float64) Stock {
	var newCost, newPrice float64
	if cur.Quantity == 0 {
		newCost = unitCost
		newPrice = cur.Price
	} else {
		totalQty := float64(cur.Quantity + qty)
		newCost = (float64(cur.Quantity)*cur.CostPrice + float64(qty)*unitCost) / totalQty
		// Scale the selling price so the margin ratio over cost is preserved.
		marginRatio := 0.0
		if cur.CostPrice > 0 {
			marginRatio = (cur.Price - cur.CostPrice) / cur.CostPrice
		}
		newPrice = newCost + newCost*marginRatio
	}
	return Stock{
		ProductID: cur.ProductID,
		Quantity:  cur.Quantity + qty,
		CostPrice: RoundPrice(newCost),
		Price:     RoundPrice(newPrice),
	}
}

// RoundPrice rounds to the nearest whole unit: fractional parts below 0.5
// round down, 0.5 and above round up. This intentionally discards cents
// to match the historical pricing behaviour.
func RoundPrice(v float64) float64 {
	whole := math.Floor(v)
	if v-whole < 0.5 {
		return whole
	}
	return whole + 1
}

// DecrementStock subtracts qty guarded by the current stock level. The
// predicate on the UPDATE is the source of truth: zero rows affected
// means the product has insufficient stock (or does not exist) and the
// enclosing transaction must abort.
func DecrementStock(ctx context.Context, dbx db.DBTX, productID int64, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: decrement quantity must be positive", httpx.ErrValidation)
	}
	tag, err := dbx.Exec(ctx,
		`UPDATE products
		 SET quantity_in_stock = quantity_in_stock - $1, updated_at = NOW()
		 WHERE id = $2 AND quantity_in_stock >= $1`,
		qty, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %d", httpx.ErrInsufficientStock, productID)
	}
	return nil
}

// IncrementStock adds qty back unconditionally (restock on cancel/delete).
func IncrementStock(ctx context.Context, dbx db.DBTX, productID int64, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: increment quantity must be positive", httpx.ErrValidation)
	}
	tag, err := dbx.Exec(ctx,
		`UPDATE products
		 SET quantity_in_stock = COALESCE(quantity_in_stock, 0) + $1, updated_at = NOW()
		 WHERE id = $2`,
		qty, productID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %d", httpx.ErrNotFound, productID)
	}
	return nil
}

// DecrementStockClamped subtracts qty but floors the result at zero.
// Used when reversing a received purchase order, where intervening sales
// may have consumed part of the received quantity.
func DecrementStockClamped(ctx context.Context, dbx db.DBTX, productID int64, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: decrement quantity must be positive", httpx.ErrValidation)
	}
	_, err := dbx.Exec(ctx,
		`UPDATE products
		 SET quantity_in_stock = GREATEST(COALESCE(quantity_in_stock, 0) - $1, 0), updated_at = NOW()
		 WHERE id = $2`,
		qty, productID)
	return err
}
