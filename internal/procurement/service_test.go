package procurement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/abed1srour/POS-backend/internal/inventory"
	"github.com/abed1srour/POS-backend/internal/payments"
	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

type memoryProduct struct {
	stock     int
	costPrice float64
	price     float64
	soldCount int
}

type memoryRepo struct {
	products   map[int64]*memoryProduct
	pos        map[int64]*PurchaseOrder
	items      map[int64][]PurchaseOrderItem
	paid       map[int64]float64
	payRows    map[int64]int
	nextID     int64
	nextItemID int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		products: make(map[int64]*memoryProduct),
		pos:      make(map[int64]*PurchaseOrder),
		items:    make(map[int64][]PurchaseOrderItem),
		paid:     make(map[int64]float64),
		payRows:  make(map[int64]int),
	}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	po, ok := r.pos[id]
	if !ok {
		return PurchaseOrder{}, httpx.ErrNotFound
	}
	result := *po
	result.Items = append([]PurchaseOrderItem(nil), r.items[id]...)
	return result, nil
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter) ([]POWithSupplier, int, error) {
	var result []POWithSupplier
	for _, po := range r.pos {
		result = append(result, POWithSupplier{PurchaseOrder: *po})
	}
	return result, len(result), nil
}

func (r *memoryRepo) SoldProducts(ctx context.Context, poID int64) ([]SoldProduct, error) {
	var result []SoldProduct
	for _, item := range r.items[poID] {
		if p, ok := r.products[item.ProductID]; ok && p.soldCount > 0 {
			result = append(result, SoldProduct{ProductID: item.ProductID, Name: "product", TotalSold: p.soldCount})
		}
	}
	return result, nil
}

func (r *memoryRepo) GetItem(ctx context.Context, itemID int64) (PurchaseOrderItem, error) {
	for _, items := range r.items {
		for _, item := range items {
			if item.ID == itemID {
				return item, nil
			}
		}
	}
	return PurchaseOrderItem{}, httpx.ErrNotFound
}

func (r *memoryRepo) ListItemRows(ctx context.Context, poID int64, limit, offset int) ([]PurchaseOrderItem, int, error) {
	var result []PurchaseOrderItem
	for id, items := range r.items {
		if poID != 0 && id != poID {
			continue
		}
		result = append(result, items...)
	}
	return result, len(result), nil
}

func (r *memoryRepo) UpdateItem(ctx context.Context, itemID int64, quantity int, unitCost float64) (PurchaseOrderItem, error) {
	for poID, items := range r.items {
		for i, item := range items {
			if item.ID == itemID {
				item.Quantity = quantity
				item.UnitCost = unitCost
				item.TotalCost = float64(quantity) * unitCost
				r.items[poID][i] = item
				return item, nil
			}
		}
	}
	return PurchaseOrderItem{}, httpx.ErrNotFound
}

func (r *memoryRepo) DeleteItem(ctx context.Context, itemID int64) error {
	for poID, items := range r.items {
		for i, item := range items {
			if item.ID == itemID {
				r.items[poID] = append(items[:i], items[i+1:]...)
				return nil
			}
		}
	}
	return httpx.ErrNotFound
}

func (r *memoryRepo) Balance(ctx context.Context, poID int64) (float64, error) {
	po, ok := r.pos[poID]
	if !ok {
		return 0, httpx.ErrNotFound
	}
	return po.Balance, nil
}

func (tx *memoryTx) Insert(ctx context.Context, po PurchaseOrder) (PurchaseOrder, error) {
	tx.repo.nextID++
	po.ID = tx.repo.nextID
	po.Balance = po.TotalAmount
	tx.repo.pos[po.ID] = &po
	return po, nil
}

func (tx *memoryTx) InsertItem(ctx context.Context, item PurchaseOrderItem) error {
	tx.repo.nextItemID++
	item.ID = tx.repo.nextItemID
	tx.repo.items[item.PurchaseOrderID] = append(tx.repo.items[item.PurchaseOrderID], item)
	return nil
}

func (tx *memoryTx) ProductExists(ctx context.Context, productID int64) (bool, error) {
	_, ok := tx.repo.products[productID]
	return ok, nil
}

func (tx *memoryTx) ListItems(ctx context.Context, poID int64) ([]PurchaseOrderItem, error) {
	return append([]PurchaseOrderItem(nil), tx.repo.items[poID]...), nil
}

func (tx *memoryTx) UpdateStatus(ctx context.Context, id int64, status POStatus) (PurchaseOrder, error) {
	po, ok := tx.repo.pos[id]
	if !ok {
		return PurchaseOrder{}, httpx.ErrNotFound
	}
	po.Status = status
	return *po, nil
}

func (tx *memoryTx) RestockWithAverageCost(ctx context.Context, productID int64, qty int, unitCost float64) error {
	p, ok := tx.repo.products[productID]
	if !ok {
		return httpx.ErrNotFound
	}
	next := inventory.ApplyRestock(inventory.Stock{
		ProductID: productID,
		Quantity:  p.stock,
		CostPrice: p.costPrice,
		Price:     p.price,
	}, qty, unitCost)
	p.stock = next.Quantity
	p.costPrice = next.CostPrice
	p.price = next.Price
	return nil
}

func (tx *memoryTx) DecrementStockClamped(ctx context.Context, productID int64, qty int) error {
	p, ok := tx.repo.products[productID]
	if !ok {
		return httpx.ErrNotFound
	}
	p.stock -= qty
	if p.stock < 0 {
		p.stock = 0
	}
	return nil
}

func (tx *memoryTx) CompletedPaidTotal(ctx context.Context, poID int64) (float64, error) {
	return tx.repo.paid[poID], nil
}

func (tx *memoryTx) CountPaymentRows(ctx context.Context, poID int64) (int, error) {
	return tx.repo.payRows[poID], nil
}

func (tx *memoryTx) SyncAggregates(ctx context.Context, poID int64, paid, balance float64) error {
	po, ok := tx.repo.pos[poID]
	if !ok {
		return httpx.ErrNotFound
	}
	po.PaymentAmount = paid
	po.Balance = balance
	if balance == 0 {
		po.Status = StatusCompleted
	}
	return nil
}

func (tx *memoryTx) ItemDispositions(ctx context.Context, poID int64) ([]ItemDisposition, error) {
	var result []ItemDisposition
	for _, item := range tx.repo.items[poID] {
		d := ItemDisposition{ProductID: item.ProductID, Quantity: item.Quantity}
		if p, ok := tx.repo.products[item.ProductID]; ok {
			d.Stock = p.stock
			d.SoldCount = p.soldCount
		}
		for otherID, items := range tx.repo.items {
			if otherID == poID {
				continue
			}
			for _, other := range items {
				if other.ProductID == item.ProductID {
					d.OtherPOCount++
				}
			}
		}
		result = append(result, d)
	}
	return result, nil
}

func (tx *memoryTx) HardDeleteProduct(ctx context.Context, productID int64) error {
	delete(tx.repo.products, productID)
	return nil
}

func (tx *memoryTx) HardDelete(ctx context.Context, poID int64) error {
	delete(tx.repo.pos, poID)
	delete(tx.repo.items, poID)
	return nil
}

type stubLedger struct {
	created []payments.CreatePaymentRequest
	repo    *memoryRepo
}

func (l *stubLedger) Create(ctx context.Context, req payments.CreatePaymentRequest) (payments.Result, error) {
	l.created = append(l.created, req)
	if req.PurchaseOrderID != nil {
		poID := *req.PurchaseOrderID
		l.repo.paid[poID] += req.Amount
		l.repo.payRows[poID]++
		po := l.repo.pos[poID]
		po.PaymentAmount = l.repo.paid[poID]
		po.Balance = po.TotalAmount - po.PaymentAmount
		if po.Balance <= 0 {
			po.Balance = 0
			po.Status = StatusCompleted
		}
	}
	return payments.Result{}, nil
}

func createPO(t *testing.T, svc *Service, total float64, items ...CreatePOItemRequest) PurchaseOrder {
	t.Helper()
	po, err := svc.Create(context.Background(), CreatePORequest{SupplierID: 1, Total: total, Items: items})
	require.NoError(t, err)
	return po
}

func TestReceiveRestocksAtWeightedAverage(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 0, costPrice: 0, price: 9}
	svc := NewService(repo, &stubLedger{repo: repo})
	ctx := context.Background()

	po := createPO(t, svc, 24, CreatePOItemRequest{ProductID: 1, Quantity: 4, UnitCost: 6})
	require.Equal(t, StatusPending, po.Status)
	require.Equal(t, 0, repo.products[1].stock)

	po, err := svc.UpdateStatus(ctx, po.ID, UpdatePOStatusRequest{Status: "received"})
	require.NoError(t, err)
	require.Equal(t, StatusReceived, po.Status)
	require.Equal(t, 4, repo.products[1].stock)
	require.InDelta(t, 6.0, repo.products[1].costPrice, 0.001)
	// Receiving onto zero stock leaves the selling price alone.
	require.InDelta(t, 9.0, repo.products[1].price, 0.001)
}

func TestReceiveTwiceDoesNotDoubleRestock(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 0, price: 10}
	svc := NewService(repo, &stubLedger{repo: repo})
	ctx := context.Background()

	po := createPO(t, svc, 24, CreatePOItemRequest{ProductID: 1, Quantity: 4, UnitCost: 6})

	_, err := svc.UpdateStatus(ctx, po.ID, UpdatePOStatusRequest{Status: "received"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, po.ID, UpdatePOStatusRequest{Status: "received"})
	require.NoError(t, err)
	require.Equal(t, 4, repo.products[1].stock)
}

func TestCancelFromReceivedRemovesStockClamped(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 0, price: 10}
	svc := NewService(repo, &stubLedger{repo: repo})
	ctx := context.Background()

	po := createPO(t, svc, 24, CreatePOItemRequest{ProductID: 1, Quantity: 4, UnitCost: 6})
	_, err := svc.UpdateStatus(ctx, po.ID, UpdatePOStatusRequest{Status: "received"})
	require.NoError(t, err)

	// Some of the received stock was lost elsewhere; reversal clamps at 0.
	repo.products[1].stock = 3

	_, err = svc.UpdateStatus(ctx, po.ID, UpdatePOStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	require.Equal(t, 0, repo.products[1].stock)
}

func TestCancelBlockedWhenGoodsSold(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 4, soldCount: 2}
	svc := NewService(repo, &stubLedger{repo: repo})
	ctx := context.Background()

	po := createPO(t, svc, 24, CreatePOItemRequest{ProductID: 1, Quantity: 4, UnitCost: 6})

	_, err := svc.UpdateStatus(ctx, po.ID, UpdatePOStatusRequest{Status: "cancelled"})
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Contains(t, err.Error(), "2 sold")
}

func TestRemoveBlockedByPaymentHistory(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 4}
	ledger := &stubLedger{repo: repo}
	svc := NewService(repo, ledger)
	ctx := context.Background()

	po := createPO(t, svc, 100, CreatePOItemRequest{ProductID: 1, Quantity: 4, UnitCost: 25})

	_, err := svc.UpdatePayment(ctx, po.ID, UpdatePOPaymentRequest{PaymentAmount: 100})
	require.NoError(t, err)

	err = svc.Remove(ctx, po.ID)
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Contains(t, err.Error(), "payments exist")
}

func TestRemoveBlockedWhileReceived(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 0}
	svc := NewService(repo, &stubLedger{repo: repo})
	ctx := context.Background()

	po := createPO(t, svc, 24, CreatePOItemRequest{ProductID: 1, Quantity: 4, UnitCost: 6})
	_, err := svc.UpdateStatus(ctx, po.ID, UpdatePOStatusRequest{Status: "received"})
	require.NoError(t, err)

	err = svc.Remove(ctx, po.ID)
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestRemoveBlockedByOutstandingBalance(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 4}
	svc := NewService(repo, &stubLedger{repo: repo})
	ctx := context.Background()

	po := createPO(t, svc, 100, CreatePOItemRequest{ProductID: 1, Quantity: 4, UnitCost: 25})

	err := svc.Remove(ctx, po.ID)
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Contains(t, err.Error(), "100.00")
}

func TestRemoveCancelledUnpaidDespiteStaleBalance(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 4, soldCount: 0}
	svc := NewService(repo, &stubLedger{repo: repo})
	ctx := context.Background()

	po := createPO(t, svc, 100, CreatePOItemRequest{ProductID: 1, Quantity: 4, UnitCost: 25})
	_, err := svc.UpdateStatus(ctx, po.ID, UpdatePOStatusRequest{Status: "cancelled"})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, po.ID))
	_, err = svc.Get(ctx, po.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestRemoveDeletesUnreferencedUnsoldProducts(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 4}
	repo.products[2] = &memoryProduct{stock: 10, soldCount: 0}
	svc := NewService(repo, &stubLedger{repo: repo})
	ctx := context.Background()

	// Product 2 also belongs to a second order, so only its stock shrinks.
	po := createPO(t, svc, 0,
		CreatePOItemRequest{ProductID: 1, Quantity: 4, UnitCost: 5},
		CreatePOItemRequest{ProductID: 2, Quantity: 3, UnitCost: 5})
	createPO(t, svc, 0, CreatePOItemRequest{ProductID: 2, Quantity: 1, UnitCost: 5})

	require.NoError(t, svc.Remove(ctx, po.ID))

	_, exists := repo.products[1]
	require.False(t, exists)
	require.Equal(t, 7, repo.products[2].stock)
}

func TestUpdatePaymentFlowsThroughLedger(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 4}
	ledger := &stubLedger{repo: repo}
	svc := NewService(repo, ledger)
	ctx := context.Background()

	po := createPO(t, svc, 100, CreatePOItemRequest{ProductID: 1, Quantity: 4, UnitCost: 25})

	updated, err := svc.UpdatePayment(ctx, po.ID, UpdatePOPaymentRequest{PaymentAmount: 40})
	require.NoError(t, err)
	require.Len(t, ledger.created, 1)
	require.InDelta(t, 40, updated.PaymentAmount, 0.001)
	require.InDelta(t, 60, updated.Balance, 0.001)
	require.Equal(t, StatusPending, updated.Status)

	updated, err = svc.UpdatePayment(ctx, po.ID, UpdatePOPaymentRequest{PaymentAmount: 60})
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, updated.Status)
	require.InDelta(t, 0, updated.Balance, 0.001)
}

func TestUpdateItemBlockedByOutstandingBalance(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 4}
	svc := NewService(repo, &stubLedger{repo: repo})
	ctx := context.Background()

	po := createPO(t, svc, 100, CreatePOItemRequest{ProductID: 1, Quantity: 4, UnitCost: 25})
	itemID := repo.items[po.ID][0].ID

	_, err := svc.UpdateItem(ctx, itemID, UpdatePOItemRequest{Quantity: 2, UnitCost: 25})
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Contains(t, err.Error(), "outstanding balance")

	// Paying the order off unfreezes the lines.
	_, err = svc.UpdatePayment(ctx, po.ID, UpdatePOPaymentRequest{PaymentAmount: 100})
	require.NoError(t, err)

	item, err := svc.UpdateItem(ctx, itemID, UpdatePOItemRequest{Quantity: 2, UnitCost: 30})
	require.NoError(t, err)
	require.Equal(t, 2, item.Quantity)
	require.InDelta(t, 60, item.TotalCost, 0.001)
}

func TestRemoveItemBlockedByOutstandingBalance(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 4}
	svc := NewService(repo, &stubLedger{repo: repo})
	ctx := context.Background()

	po := createPO(t, svc, 100, CreatePOItemRequest{ProductID: 1, Quantity: 4, UnitCost: 25})
	itemID := repo.items[po.ID][0].ID

	err := svc.RemoveItem(ctx, itemID)
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Len(t, repo.items[po.ID], 1)

	_, err = svc.UpdatePayment(ctx, po.ID, UpdatePOPaymentRequest{PaymentAmount: 100})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveItem(ctx, itemID))
	require.Empty(t, repo.items[po.ID])
}
