package payments

import (
	"context"
	"fmt"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

// Service implements the payment ledger. Paid totals only ever count
// completed, non-deleted payments.
type Service struct {
	repo RepositoryPort
}

// NewService constructs Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create records a payment against exactly one order or purchase order.
// Completed payments are capped at the owner's remaining balance; the
// owner's aggregates and completion status are updated in the same
// transaction as the insert.
func (s *Service) Create(ctx context.Context, req CreatePaymentRequest) (Result, error) {
	var owner Owner
	if req.OrderID != nil {
		owner.OrderID = *req.OrderID
	}
	if req.PurchaseOrderID != nil {
		owner.PurchaseOrderID = *req.PurchaseOrderID
	}
	if !owner.Valid() {
		return Result{}, fmt.Errorf("%w: payment must reference exactly one of order_id or purchase_order_id", httpx.ErrValidation)
	}

	status := PaymentStatus(req.Status)
	if status == "" {
		status = StatusCompleted
	}

	var result Result
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		total, ownerStatus, err := tx.OwnerSnapshot(ctx, owner)
		if err != nil {
			return err
		}
		if ownerStatus == "cancelled" {
			name := "order"
			if owner.PurchaseOrderID > 0 {
				name = "purchase order"
			}
			return fmt.Errorf("%w: cannot record a payment against a cancelled %s", httpx.ErrConflict, name)
		}

		paid, err := tx.CompletedPaidTotal(ctx, owner)
		if err != nil {
			return err
		}
		if status == StatusCompleted && paid+req.Amount > total {
			return fmt.Errorf("%w: payment of %.2f exceeds remaining balance of %.2f",
				httpx.ErrConflict, req.Amount, total-paid)
		}

		payment, err := tx.Insert(ctx, Payment{
			OrderID:         req.OrderID,
			PurchaseOrderID: req.PurchaseOrderID,
			Amount:          req.Amount,
			Method:          req.Method,
			Status:          status,
			Notes:           req.Notes,
		})
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		newPaid, err := tx.CompletedPaidTotal(ctx, owner)
		if err != nil {
			return err
		}

		result = Result{
			Payment:     payment,
			TotalPaid:   newPaid,
			Remaining:   total - newPaid,
			OwnerStatus: ownerStatus,
		}
		if result.Remaining < 0 {
			result.Remaining = 0
		}

		if owner.PurchaseOrderID > 0 {
			_, syncedStatus, err := tx.SyncPurchaseOrderAggregates(ctx, owner.PurchaseOrderID, newPaid)
			if err != nil {
				return err
			}
			result.OwnerStatus = syncedStatus
			return nil
		}

		if newPaid >= total && ownerStatus != "completed" {
			if err := tx.CompleteOrder(ctx, owner.OrderID); err != nil {
				return fmt.Errorf("complete order: %w", err)
			}
			result.OwnerStatus = "completed"
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// Remove soft-deletes a payment. A completion flip the payment caused
// earlier is left in place.
func (s *Service) Remove(ctx context.Context, id int64) error {
	return s.repo.SoftDelete(ctx, id)
}

// Restore reverses a soft delete.
func (s *Service) Restore(ctx context.Context, id int64) (Payment, error) {
	if err := s.repo.Restore(ctx, id); err != nil {
		return Payment{}, err
	}
	return s.repo.Get(ctx, id, false)
}

// Update edits non-structural fields. The owner's aggregates are not
// recomputed here.
func (s *Service) Update(ctx context.Context, id int64, req UpdatePaymentRequest) (Payment, error) {
	if _, err := s.repo.Get(ctx, id, false); err != nil {
		return Payment{}, err
	}
	return s.repo.Update(ctx, id, req)
}

// Get returns a single payment.
func (s *Service) Get(ctx context.Context, id int64) (Payment, error) {
	return s.repo.Get(ctx, id, false)
}

// List returns a page of payments.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]PaymentWithContext, int, error) {
	return s.repo.List(ctx, filter)
}

// ClearBin permanently purges soft-deleted payments.
func (s *Service) ClearBin(ctx context.Context) (int64, error) {
	return s.repo.ClearBin(ctx)
}
