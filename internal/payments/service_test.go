package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

type memoryOwner struct {
	total     float64
	status    string
	balance   float64
	paidCache float64
}

type memoryRepo struct {
	orders   map[int64]*memoryOwner
	pos      map[int64]*memoryOwner
	payments map[int64]*Payment
	nextID   int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		orders:   make(map[int64]*memoryOwner),
		pos:      make(map[int64]*memoryOwner),
		payments: make(map[int64]*Payment),
	}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) Get(ctx context.Context, id int64, includeDeleted bool) (Payment, error) {
	p, ok := r.payments[id]
	if !ok || (!includeDeleted && p.DeletedAt != nil) {
		return Payment{}, httpx.ErrNotFound
	}
	return *p, nil
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter) ([]PaymentWithContext, int, error) {
	var result []PaymentWithContext
	for _, p := range r.payments {
		if p.DeletedAt != nil && !filter.IncludeDeleted {
			continue
		}
		result = append(result, PaymentWithContext{Payment: *p})
	}
	return result, len(result), nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, req UpdatePaymentRequest) (Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return Payment{}, httpx.ErrNotFound
	}
	if req.Amount != nil {
		p.Amount = *req.Amount
	}
	if req.Status != nil {
		p.Status = PaymentStatus(*req.Status)
	}
	return *p, nil
}

func (r *memoryRepo) SoftDelete(ctx context.Context, id int64) error {
	p, ok := r.payments[id]
	if !ok || p.DeletedAt != nil {
		return httpx.ErrNotFound
	}
	now := time.Now()
	p.DeletedAt = &now
	return nil
}

func (r *memoryRepo) Restore(ctx context.Context, id int64) error {
	p, ok := r.payments[id]
	if !ok || p.DeletedAt == nil {
		return httpx.ErrNotFound
	}
	p.DeletedAt = nil
	return nil
}

func (r *memoryRepo) ClearBin(ctx context.Context) (int64, error) {
	var n int64
	for id, p := range r.payments {
		if p.DeletedAt != nil {
			delete(r.payments, id)
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) completedPaid(owner Owner) float64 {
	var sum float64
	for _, p := range r.payments {
		if p.DeletedAt != nil || p.Status != StatusCompleted {
			continue
		}
		if owner.OrderID > 0 && p.OrderID != nil && *p.OrderID == owner.OrderID {
			sum += p.Amount
		}
		if owner.PurchaseOrderID > 0 && p.PurchaseOrderID != nil && *p.PurchaseOrderID == owner.PurchaseOrderID {
			sum += p.Amount
		}
	}
	return sum
}

func (tx *memoryTx) OwnerSnapshot(ctx context.Context, owner Owner) (float64, string, error) {
	if owner.OrderID > 0 {
		o, ok := tx.repo.orders[owner.OrderID]
		if !ok {
			return 0, "", httpx.ErrNotFound
		}
		return o.total, o.status, nil
	}
	po, ok := tx.repo.pos[owner.PurchaseOrderID]
	if !ok {
		return 0, "", httpx.ErrNotFound
	}
	return po.total, po.status, nil
}

func (tx *memoryTx) CompletedPaidTotal(ctx context.Context, owner Owner) (float64, error) {
	return tx.repo.completedPaid(owner), nil
}

func (tx *memoryTx) Insert(ctx context.Context, p Payment) (Payment, error) {
	tx.repo.nextID++
	p.ID = tx.repo.nextID
	p.PaymentDate = time.Now()
	tx.repo.payments[p.ID] = &p
	return p, nil
}

func (tx *memoryTx) SyncPurchaseOrderAggregates(ctx context.Context, poID int64, paid float64) (float64, string, error) {
	po, ok := tx.repo.pos[poID]
	if !ok {
		return 0, "", httpx.ErrNotFound
	}
	po.paidCache = paid
	po.balance = po.total - paid
	if po.balance < 0 {
		po.balance = 0
	}
	if po.balance == 0 {
		po.status = "completed"
	}
	return po.balance, po.status, nil
}

func (tx *memoryTx) CompleteOrder(ctx context.Context, orderID int64) error {
	o, ok := tx.repo.orders[orderID]
	if !ok {
		return httpx.ErrNotFound
	}
	o.status = "completed"
	return nil
}

func orderRef(id int64) *int64 { return &id }

func TestCreateRejectsOverpayment(t *testing.T) {
	repo := newMemoryRepo()
	repo.orders[1] = &memoryOwner{total: 100, status: "pending"}
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreatePaymentRequest{OrderID: orderRef(1), Amount: 60, Status: "completed"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreatePaymentRequest{OrderID: orderRef(1), Amount: 50, Status: "completed"})
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Contains(t, err.Error(), "40.00")

	// Pending payments are recorded but never count toward the cap.
	_, err = svc.Create(ctx, CreatePaymentRequest{OrderID: orderRef(1), Amount: 50, Status: "pending"})
	require.NoError(t, err)
	require.InDelta(t, 60, repo.completedPaid(ForOrder(1)), 0.001)
}

func TestCreateFlipsOrderToCompleted(t *testing.T) {
	repo := newMemoryRepo()
	repo.orders[7] = &memoryOwner{total: 100, status: "pending"}
	svc := NewService(repo)
	ctx := context.Background()

	res, err := svc.Create(ctx, CreatePaymentRequest{OrderID: orderRef(7), Amount: 40, Status: "completed"})
	require.NoError(t, err)
	require.InDelta(t, 60, res.Remaining, 0.001)
	require.Equal(t, "pending", repo.orders[7].status)

	res, err = svc.Create(ctx, CreatePaymentRequest{OrderID: orderRef(7), Amount: 60, Status: "completed"})
	require.NoError(t, err)
	require.InDelta(t, 0, res.Remaining, 0.001)
	require.Equal(t, "completed", res.OwnerStatus)
	require.Equal(t, "completed", repo.orders[7].status)
}

func TestCreateResyncsPurchaseOrderAggregates(t *testing.T) {
	repo := newMemoryRepo()
	repo.pos[3] = &memoryOwner{total: 500, status: "ordered", balance: 500}
	svc := NewService(repo)
	ctx := context.Background()

	poID := int64(3)
	res, err := svc.Create(ctx, CreatePaymentRequest{PurchaseOrderID: &poID, Amount: 200, Status: "completed"})
	require.NoError(t, err)
	require.InDelta(t, 300, res.Remaining, 0.001)
	require.InDelta(t, 200, repo.pos[3].paidCache, 0.001)
	require.Equal(t, "ordered", repo.pos[3].status)

	res, err = svc.Create(ctx, CreatePaymentRequest{PurchaseOrderID: &poID, Amount: 300, Status: "completed"})
	require.NoError(t, err)
	require.Equal(t, "completed", res.OwnerStatus)
	require.Equal(t, "completed", repo.pos[3].status)
	require.InDelta(t, 0, repo.pos[3].balance, 0.001)
}

func TestCreateRejectsCancelledOwner(t *testing.T) {
	repo := newMemoryRepo()
	repo.orders[2] = &memoryOwner{total: 100, status: "cancelled"}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreatePaymentRequest{OrderID: orderRef(2), Amount: 10})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestCreateRequiresExactlyOneOwner(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreatePaymentRequest{Amount: 10})
	require.ErrorIs(t, err, httpx.ErrValidation)

	orderID, poID := int64(1), int64(2)
	_, err = svc.Create(ctx, CreatePaymentRequest{OrderID: &orderID, PurchaseOrderID: &poID, Amount: 10})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestRemoveDoesNotRevertCompletion(t *testing.T) {
	repo := newMemoryRepo()
	repo.orders[9] = &memoryOwner{total: 50, status: "pending"}
	svc := NewService(repo)
	ctx := context.Background()

	res, err := svc.Create(ctx, CreatePaymentRequest{OrderID: orderRef(9), Amount: 50, Status: "completed"})
	require.NoError(t, err)
	require.Equal(t, "completed", repo.orders[9].status)

	require.NoError(t, svc.Remove(ctx, res.Payment.ID))
	require.Equal(t, "completed", repo.orders[9].status)

	// The deleted payment no longer counts toward the paid total.
	require.InDelta(t, 0, repo.completedPaid(ForOrder(9)), 0.001)
}
