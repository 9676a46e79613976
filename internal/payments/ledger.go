package payments

import (
	"context"
	"fmt"

	"github.com/abed1srour/POS-backend/internal/platform/db"
)

// ownerClause returns the WHERE fragment binding a query to the owner's
// foreign key at placeholder position 1.
func ownerClause(o Owner) (string, int64, error) {
	switch {
	case o.OrderID > 0 && o.PurchaseOrderID == 0:
		return "order_id = $1", o.OrderID, nil
	case o.PurchaseOrderID > 0 && o.OrderID == 0:
		return "purchase_order_id = $1", o.PurchaseOrderID, nil
	default:
		return "", 0, fmt.Errorf("payment owner must be exactly one of order or purchase order")
	}
}

// CompletedPaidTotal sums the completed, non-deleted payments of the
// owner. Every paid-total and remaining-balance computation in the
// system goes through this query.
func CompletedPaidTotal(ctx context.Context, dbx db.DBTX, owner Owner) (float64, error) {
	clause, id, err := ownerClause(owner)
	if err != nil {
		return 0, err
	}
	var total float64
	err = dbx.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments
		 WHERE `+clause+` AND status = 'completed' AND deleted_at IS NULL`, id).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum completed payments: %w", err)
	}
	return total, nil
}

// ActiveCount counts the non-deleted payment rows referencing the owner.
// Item mutation gates use this: once any live payment exists the owner's
// lines are frozen.
func ActiveCount(ctx context.Context, dbx db.DBTX, owner Owner) (int, error) {
	clause, id, err := ownerClause(owner)
	if err != nil {
		return 0, err
	}
	var n int
	err = dbx.QueryRow(ctx,
		`SELECT COUNT(*) FROM payments WHERE `+clause+` AND deleted_at IS NULL`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active payments: %w", err)
	}
	return n, nil
}

// CountRows counts every payment row referencing the owner, soft-deleted
// ones included. Deletion gates use this to require a fully cleared
// payment history.
func CountRows(ctx context.Context, dbx db.DBTX, owner Owner) (int, error) {
	clause, id, err := ownerClause(owner)
	if err != nil {
		return 0, err
	}
	var n int
	err = dbx.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE `+clause, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count payments: %w", err)
	}
	return n, nil
}
