package procurement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abed1srour/POS-backend/internal/payments"
	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

// PaymentsPort is the payment ledger surface procurement records
// incremental payments through.
type PaymentsPort interface {
	Create(ctx context.Context, req payments.CreatePaymentRequest) (payments.Result, error)
}

// Service implements the purchase order engine: creation without stock
// effect, receipt-driven weighted-average restock, the sold-goods
// cancellation guard, and payment-gated hard deletion.
type Service struct {
	repo   RepositoryPort
	ledger PaymentsPort
}

// NewService constructs Service.
func NewService(repo RepositoryPort, ledger PaymentsPort) *Service {
	return &Service{repo: repo, ledger: ledger}
}

// Create inserts the purchase order and its items. Stock does not move
// until the order is received.
func (s *Service) Create(ctx context.Context, req CreatePORequest) (PurchaseOrder, error) {
	var created PurchaseOrder
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		po, err := tx.Insert(ctx, PurchaseOrder{
			PONumber:      fmt.Sprintf("PO-%d", time.Now().UnixMilli()),
			SupplierID:    req.SupplierID,
			Status:        StatusPending,
			TotalAmount:   req.Total,
			PaymentMethod: req.PaymentMethod,
			Notes:         req.Notes,
		})
		if err != nil {
			return fmt.Errorf("insert purchase order: %w", err)
		}

		for _, item := range req.Items {
			exists, err := tx.ProductExists(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: product %d", httpx.ErrNotFound, item.ProductID)
			}
			if err := tx.InsertItem(ctx, PurchaseOrderItem{
				PurchaseOrderID: po.ID,
				ProductID:       item.ProductID,
				Quantity:        item.Quantity,
				UnitCost:        item.UnitCost,
				TotalCost:       float64(item.Quantity) * item.UnitCost,
			}); err != nil {
				return fmt.Errorf("insert purchase order item: %w", err)
			}
		}

		created = po
		return nil
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	return s.repo.Get(ctx, created.ID)
}

// UpdateStatus transitions the purchase order. Receiving restocks every
// line at weighted average cost; cancelling a received order pulls the
// stock back out, clamped at zero. Cancellation is refused outright
// while any of the order's products have been sold.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req UpdatePOStatusRequest) (PurchaseOrder, error) {
	newStatus := POStatus(req.Status)
	if !SettableStatus(newStatus) {
		return PurchaseOrder{}, fmt.Errorf("%w: unknown purchase order status %q", httpx.ErrValidation, req.Status)
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return PurchaseOrder{}, err
	}

	if newStatus == StatusCancelled {
		sold, err := s.repo.SoldProducts(ctx, id)
		if err != nil {
			return PurchaseOrder{}, fmt.Errorf("check sold products: %w", err)
		}
		if len(sold) > 0 {
			names := make([]string, 0, len(sold))
			for _, sp := range sold {
				names = append(names, fmt.Sprintf("%s (%d sold)", sp.Name, sp.TotalSold))
			}
			return PurchaseOrder{}, fmt.Errorf("%w: cannot cancel purchase order, the following products have been sold: %s",
				httpx.ErrConflict, strings.Join(names, ", "))
		}
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if _, err := tx.UpdateStatus(ctx, id, newStatus); err != nil {
			return err
		}

		if newStatus == StatusReceived && existing.Status != StatusReceived {
			items, err := tx.ListItems(ctx, id)
			if err != nil {
				return fmt.Errorf("list purchase order items: %w", err)
			}
			for _, item := range items {
				if err := tx.RestockWithAverageCost(ctx, item.ProductID, item.Quantity, item.UnitCost); err != nil {
					return err
				}
			}
		}

		if newStatus == StatusCancelled && existing.Status == StatusReceived {
			items, err := tx.ListItems(ctx, id)
			if err != nil {
				return fmt.Errorf("list purchase order items: %w", err)
			}
			for _, item := range items {
				if err := tx.DecrementStockClamped(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	return s.repo.Get(ctx, id)
}

// Remove hard-deletes a purchase order. Aggregates are recomputed from
// the payment ledger first so stale caches cannot block or permit the
// wrong outcome, then the payment-history, received-status and balance
// gates run in order. Line products left unreferenced and never sold
// are hard-deleted; everything else gets a clamped stock decrement.
func (s *Service) Remove(ctx context.Context, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		paid, err := tx.CompletedPaidTotal(ctx, id)
		if err != nil {
			return err
		}
		balance := existing.TotalAmount - paid
		if balance < 0 {
			balance = 0
		}

		rowCount, err := tx.CountPaymentRows(ctx, id)
		if err != nil {
			return err
		}
		if rowCount > 0 {
			return fmt.Errorf("%w: payments exist for this purchase order, delete or refund them first", httpx.ErrConflict)
		}

		if balance != existing.Balance || paid != existing.PaymentAmount {
			if err := tx.SyncAggregates(ctx, id, paid, balance); err != nil {
				return fmt.Errorf("resync purchase order aggregates: %w", err)
			}
		}

		if existing.Status == StatusReceived {
			return fmt.Errorf("%w: cannot delete received purchase orders", httpx.ErrConflict)
		}

		allowCancelledUnpaid := existing.Status == StatusCancelled && paid == 0
		if !allowCancelledUnpaid && balance > 0 {
			return fmt.Errorf("%w: purchase order has a remaining balance of %.2f, must be fully paid before deletion",
				httpx.ErrConflict, balance)
		}

		dispositions, err := tx.ItemDispositions(ctx, id)
		if err != nil {
			return fmt.Errorf("inspect purchase order items: %w", err)
		}
		for _, d := range dispositions {
			if d.ProductID == 0 {
				continue
			}
			if d.OtherPOCount == 0 && d.SoldCount == 0 {
				if err := tx.HardDeleteProduct(ctx, d.ProductID); err != nil {
					return fmt.Errorf("delete product %d: %w", d.ProductID, err)
				}
				continue
			}
			if err := tx.DecrementStockClamped(ctx, d.ProductID, d.Quantity); err != nil {
				return err
			}
		}

		return tx.HardDelete(ctx, id)
	})
}

// UpdatePayment records an incremental payment against the purchase
// order through the payment ledger, which keeps the cached aggregates
// and the completion flip consistent with every other payment path.
func (s *Service) UpdatePayment(ctx context.Context, id int64, req UpdatePOPaymentRequest) (PurchaseOrder, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return PurchaseOrder{}, err
	}

	method := req.PaymentMethod
	if method == "" {
		method = "cash"
	}
	poID := id
	_, err := s.ledger.Create(ctx, payments.CreatePaymentRequest{
		PurchaseOrderID: &poID,
		Amount:          req.PaymentAmount,
		Method:          method,
		Status:          string(payments.StatusCompleted),
		Notes:           req.Notes,
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	return s.repo.Get(ctx, id)
}

// ListItems returns a page of purchase order lines, optionally scoped
// to one purchase order.
func (s *Service) ListItems(ctx context.Context, poID int64, limit, offset int) ([]PurchaseOrderItem, int, error) {
	return s.repo.ListItemRows(ctx, poID, limit, offset)
}

// GetItem returns a single purchase order line.
func (s *Service) GetItem(ctx context.Context, itemID int64) (PurchaseOrderItem, error) {
	return s.repo.GetItem(ctx, itemID)
}

// UpdateItem rewrites a line. Lines freeze as soon as the purchase
// order carries an outstanding balance: the recorded cost basis backs
// the supplier debt and must not drift under it.
func (s *Service) UpdateItem(ctx context.Context, itemID int64, req UpdatePOItemRequest) (PurchaseOrderItem, error) {
	existing, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return PurchaseOrderItem{}, err
	}
	balance, err := s.repo.Balance(ctx, existing.PurchaseOrderID)
	if err != nil {
		return PurchaseOrderItem{}, err
	}
	if balance > 0 {
		return PurchaseOrderItem{}, fmt.Errorf("%w: purchase order %d has an outstanding balance, items cannot be modified until it is fully paid",
			httpx.ErrConflict, existing.PurchaseOrderID)
	}
	return s.repo.UpdateItem(ctx, itemID, req.Quantity, req.UnitCost)
}

// RemoveItem deletes a line, under the same outstanding-balance freeze
// as UpdateItem.
func (s *Service) RemoveItem(ctx context.Context, itemID int64) error {
	existing, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	balance, err := s.repo.Balance(ctx, existing.PurchaseOrderID)
	if err != nil {
		return err
	}
	if balance > 0 {
		return fmt.Errorf("%w: purchase order %d has an outstanding balance, items cannot be deleted until it is fully paid",
			httpx.ErrConflict, existing.PurchaseOrderID)
	}
	return s.repo.DeleteItem(ctx, itemID)
}

// Get returns a purchase order with its items.
func (s *Service) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of purchase orders.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]POWithSupplier, int, error) {
	return s.repo.List(ctx, filter)
}
