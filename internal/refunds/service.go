package refunds

import (
	"context"
	"fmt"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

// Service implements the refund workflow. Refunds only open against
// completed orders, never for more than the order total, and a
// completed refund can no longer be deleted.
type Service struct {
	repo RepositoryPort
}

// NewService constructs Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns a page of refunds.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]RefundDetail, int, error) {
	return s.repo.List(ctx, filter)
}

// Get returns a single refund.
func (s *Service) Get(ctx context.Context, id int64) (RefundDetail, error) {
	return s.repo.Get(ctx, id)
}

// Create opens a refund against a completed order.
func (s *Service) Create(ctx context.Context, req CreateRefundRequest) (Refund, error) {
	order, err := s.repo.OrderSnapshot(ctx, req.OrderID)
	if err != nil {
		return Refund{}, err
	}
	if order.Status != "completed" {
		return Refund{}, fmt.Errorf("%w: can only refund completed orders", httpx.ErrConflict)
	}
	if req.Amount > order.TotalAmount {
		return Refund{}, fmt.Errorf("%w: refund amount %.2f exceeds order total %.2f",
			httpx.ErrValidation, req.Amount, order.TotalAmount)
	}
	if req.EmployeeID != nil {
		exists, err := s.repo.EmployeeExists(ctx, *req.EmployeeID)
		if err != nil {
			return Refund{}, err
		}
		if !exists {
			return Refund{}, fmt.Errorf("%w: employee %d", httpx.ErrNotFound, *req.EmployeeID)
		}
	}

	status := RefundStatus(req.Status)
	if status == "" {
		status = StatusPending
	}
	ref := Refund{
		OrderID:      req.OrderID,
		Amount:       req.Amount,
		Reason:       req.Reason,
		RefundMethod: req.RefundMethod,
		Status:       status,
		EmployeeID:   req.EmployeeID,
		Notes:        req.Notes,
	}
	if req.RefundDate != nil {
		ref.RefundDate = *req.RefundDate
	}
	return s.repo.Insert(ctx, ref)
}

// Update edits refund fields.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRefundRequest) (Refund, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return Refund{}, err
	}
	if req.Status != nil && !ValidStatus(*req.Status) {
		return Refund{}, fmt.Errorf("%w: unknown refund status %q", httpx.ErrValidation, *req.Status)
	}
	if req.EmployeeID != nil {
		exists, err := s.repo.EmployeeExists(ctx, *req.EmployeeID)
		if err != nil {
			return Refund{}, err
		}
		if !exists {
			return Refund{}, fmt.Errorf("%w: employee %d", httpx.ErrNotFound, *req.EmployeeID)
		}
	}
	return s.repo.Update(ctx, id, req)
}

// UpdateStatus transitions the workflow state.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req UpdateRefundStatusRequest) (Refund, error) {
	status := RefundStatus(req.Status)
	if !ValidStatus(status) {
		return Refund{}, fmt.Errorf("%w: unknown refund status %q", httpx.ErrValidation, req.Status)
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return Refund{}, err
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// Remove deletes a refund. Completed refunds represent money already
// returned and stay on record.
func (s *Service) Remove(ctx context.Context, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.Status == StatusCompleted {
		return fmt.Errorf("%w: completed refunds cannot be deleted", httpx.ErrConflict)
	}
	return s.repo.Delete(ctx, id)
}
