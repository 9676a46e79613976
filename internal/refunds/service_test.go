package refunds

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

type memoryRepo struct {
	refunds   map[int64]*Refund
	orders    map[int64]OrderSnapshot
	employees map[int64]bool
	nextID    int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		refunds:   make(map[int64]*Refund),
		orders:    make(map[int64]OrderSnapshot),
		employees: make(map[int64]bool),
	}
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter) ([]RefundDetail, int, error) {
	var result []RefundDetail
	for _, ref := range r.refunds {
		if filter.Status != "" && string(ref.Status) != filter.Status {
			continue
		}
		if filter.OrderID != 0 && ref.OrderID != filter.OrderID {
			continue
		}
		result = append(result, RefundDetail{Refund: *ref})
	}
	return result, len(result), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (RefundDetail, error) {
	ref, ok := r.refunds[id]
	if !ok {
		return RefundDetail{}, httpx.ErrNotFound
	}
	return RefundDetail{Refund: *ref}, nil
}

func (r *memoryRepo) Insert(ctx context.Context, ref Refund) (Refund, error) {
	r.nextID++
	ref.ID = r.nextID
	if ref.RefundDate.IsZero() {
		ref.RefundDate = time.Now()
	}
	r.refunds[ref.ID] = &ref
	return ref, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, req UpdateRefundRequest) (Refund, error) {
	ref, ok := r.refunds[id]
	if !ok {
		return Refund{}, httpx.ErrNotFound
	}
	if req.Amount != nil {
		ref.Amount = *req.Amount
	}
	if req.Reason != nil {
		ref.Reason = *req.Reason
	}
	if req.Status != nil {
		ref.Status = *req.Status
	}
	if req.Notes != nil {
		ref.Notes = *req.Notes
	}
	return *ref, nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id int64, status RefundStatus) (Refund, error) {
	ref, ok := r.refunds[id]
	if !ok {
		return Refund{}, httpx.ErrNotFound
	}
	ref.Status = status
	return *ref, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.refunds[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(r.refunds, id)
	return nil
}

func (r *memoryRepo) OrderSnapshot(ctx context.Context, orderID int64) (OrderSnapshot, error) {
	snap, ok := r.orders[orderID]
	if !ok {
		return OrderSnapshot{}, httpx.ErrNotFound
	}
	return snap, nil
}

func (r *memoryRepo) EmployeeExists(ctx context.Context, employeeID int64) (bool, error) {
	return r.employees[employeeID], nil
}

func TestCreateOnlyRefundsCompletedOrders(t *testing.T) {
	repo := newMemoryRepo()
	repo.orders[1] = OrderSnapshot{TotalAmount: 100, Status: "pending"}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateRefundRequest{OrderID: 1, Amount: 50, Reason: "damaged goods"})
	require.ErrorIs(t, err, httpx.ErrConflict)

	repo.orders[1] = OrderSnapshot{TotalAmount: 100, Status: "completed"}
	ref, err := svc.Create(context.Background(), CreateRefundRequest{OrderID: 1, Amount: 50, Reason: "damaged goods"})
	require.NoError(t, err)
	require.Equal(t, StatusPending, ref.Status)
}

func TestCreateCapsAmountAtOrderTotal(t *testing.T) {
	repo := newMemoryRepo()
	repo.orders[1] = OrderSnapshot{TotalAmount: 100, Status: "completed"}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateRefundRequest{OrderID: 1, Amount: 120, Reason: "damaged goods"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateChecksEmployeeReference(t *testing.T) {
	repo := newMemoryRepo()
	repo.orders[1] = OrderSnapshot{TotalAmount: 100, Status: "completed"}
	svc := NewService(repo)

	missing := int64(7)
	_, err := svc.Create(context.Background(), CreateRefundRequest{OrderID: 1, Amount: 50, Reason: "damaged goods", EmployeeID: &missing})
	require.ErrorIs(t, err, httpx.ErrNotFound)

	repo.employees[7] = true
	ref, err := svc.Create(context.Background(), CreateRefundRequest{OrderID: 1, Amount: 50, Reason: "damaged goods", EmployeeID: &missing})
	require.NoError(t, err)
	require.Equal(t, int64(7), *ref.EmployeeID)
}

func TestCreateRejectsUnknownOrder(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), CreateRefundRequest{OrderID: 99, Amount: 50, Reason: "damaged goods"})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestUpdateStatusValidatesWorkflowState(t *testing.T) {
	repo := newMemoryRepo()
	repo.orders[1] = OrderSnapshot{TotalAmount: 100, Status: "completed"}
	svc := NewService(repo)
	ctx := context.Background()

	ref, err := svc.Create(ctx, CreateRefundRequest{OrderID: 1, Amount: 50, Reason: "damaged goods"})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, ref.ID, UpdateRefundStatusRequest{Status: "reversed"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	updated, err := svc.UpdateStatus(ctx, ref.ID, UpdateRefundStatusRequest{Status: "approved"})
	require.NoError(t, err)
	require.Equal(t, StatusApproved, updated.Status)
}

func TestRemoveBlockedForCompletedRefunds(t *testing.T) {
	repo := newMemoryRepo()
	repo.orders[1] = OrderSnapshot{TotalAmount: 100, Status: "completed"}
	svc := NewService(repo)
	ctx := context.Background()

	ref, err := svc.Create(ctx, CreateRefundRequest{OrderID: 1, Amount: 50, Reason: "damaged goods"})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, ref.ID, UpdateRefundStatusRequest{Status: "completed"})
	require.NoError(t, err)

	err = svc.Remove(ctx, ref.ID)
	require.ErrorIs(t, err, httpx.ErrConflict)

	_, err = svc.UpdateStatus(ctx, ref.ID, UpdateRefundStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, ref.ID))
}
