package orders

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

type memoryProduct struct {
	stock int
	price float64
}

type memoryRepo struct {
	products       map[int64]*memoryProduct
	orders         map[int64]*Order
	items          map[int64][]OrderItem
	paid           map[int64]float64
	activePayments map[int64]int
	nextID         int64
	nextItemID     int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		products:       make(map[int64]*memoryProduct),
		orders:         make(map[int64]*Order),
		items:          make(map[int64][]OrderItem),
		paid:           make(map[int64]float64),
		activePayments: make(map[int64]int),
	}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapshot := make(map[int64]memoryProduct, len(r.products))
	for id, p := range r.products {
		snapshot[id] = *p
	}
	err := fn(ctx, &memoryTx{repo: r})
	if err != nil {
		// Roll stock mutations back the way an aborted transaction would.
		for id, p := range snapshot {
			cp := p
			r.products[id] = &cp
		}
	}
	return err
}

func (r *memoryRepo) Get(ctx context.Context, id int64, includeDeleted bool) (Order, error) {
	o, ok := r.orders[id]
	if !ok || (!includeDeleted && o.DeletedAt != nil) {
		return Order{}, httpx.ErrNotFound
	}
	result := *o
	result.Items = append([]OrderItem(nil), r.items[id]...)
	return result, nil
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter) ([]OrderWithCustomer, int, error) {
	var result []OrderWithCustomer
	for _, o := range r.orders {
		if o.DeletedAt != nil && !filter.IncludeDeleted {
			continue
		}
		if filter.Status != "" && string(o.Status) != filter.Status {
			continue
		}
		result = append(result, OrderWithCustomer{Order: *o})
	}
	return result, len(result), nil
}

func (r *memoryRepo) ListPayments(ctx context.Context, orderID int64) ([]PaymentSummary, error) {
	return nil, nil
}

func (r *memoryRepo) CompletedPaidTotal(ctx context.Context, orderID int64) (float64, error) {
	return r.paid[orderID], nil
}

func (r *memoryRepo) UpdateFields(ctx context.Context, id int64, status OrderStatus, paymentMethod, notes *string) (Order, error) {
	return (&memoryTx{repo: r}).UpdateFields(ctx, id, status, paymentMethod, notes)
}

func (r *memoryRepo) Restore(ctx context.Context, id int64) error {
	o, ok := r.orders[id]
	if !ok || o.DeletedAt == nil {
		return httpx.ErrNotFound
	}
	o.DeletedAt = nil
	return nil
}

func (r *memoryRepo) ClearBin(ctx context.Context) (int64, error) {
	var n int64
	for id, o := range r.orders {
		if o.DeletedAt != nil {
			delete(r.orders, id)
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

func (r *memoryRepo) GetItem(ctx context.Context, itemID int64) (OrderItem, error) {
	for _, items := range r.items {
		for _, item := range items {
			if item.ID == itemID {
				return item, nil
			}
		}
	}
	return OrderItem{}, httpx.ErrNotFound
}

func (r *memoryRepo) ListItemRows(ctx context.Context, orderID int64, limit, offset int) ([]OrderItem, int, error) {
	var result []OrderItem
	for id, items := range r.items {
		if orderID != 0 && id != orderID {
			continue
		}
		result = append(result, items...)
	}
	return result, len(result), nil
}

func (r *memoryRepo) UpdateItem(ctx context.Context, itemID int64, quantity int, unitPrice, discount float64) (OrderItem, error) {
	for orderID, items := range r.items {
		for i, item := range items {
			if item.ID == itemID {
				item.Quantity = quantity
				item.UnitPrice = unitPrice
				item.Discount = discount
				r.items[orderID][i] = item
				return item, nil
			}
		}
	}
	return OrderItem{}, httpx.ErrNotFound
}

func (r *memoryRepo) DeleteItem(ctx context.Context, itemID int64) error {
	for orderID, items := range r.items {
		for i, item := range items {
			if item.ID == itemID {
				r.items[orderID] = append(items[:i], items[i+1:]...)
				return nil
			}
		}
	}
	return httpx.ErrNotFound
}

func (r *memoryRepo) ActivePaymentCount(ctx context.Context, orderID int64) (int, error) {
	return r.activePayments[orderID], nil
}

func (tx *memoryTx) InsertOrder(ctx context.Context, o Order) (Order, error) {
	tx.repo.nextID++
	o.ID = tx.repo.nextID
	o.OrderDate = time.Now()
	tx.repo.orders[o.ID] = &o
	return o, nil
}

func (tx *memoryTx) InsertItem(ctx context.Context, item OrderItem) error {
	tx.repo.nextItemID++
	item.ID = tx.repo.nextItemID
	tx.repo.items[item.OrderID] = append(tx.repo.items[item.OrderID], item)
	return nil
}

func (tx *memoryTx) GetProductForSale(ctx context.Context, productID int64) (int, float64, error) {
	p, ok := tx.repo.products[productID]
	if !ok {
		return 0, 0, httpx.ErrNotFound
	}
	return p.stock, p.price, nil
}

func (tx *memoryTx) DecrementStock(ctx context.Context, productID int64, qty int) error {
	p, ok := tx.repo.products[productID]
	if !ok || p.stock < qty {
		return httpx.ErrInsufficientStock
	}
	p.stock -= qty
	return nil
}

func (tx *memoryTx) IncrementStock(ctx context.Context, productID int64, qty int) error {
	p, ok := tx.repo.products[productID]
	if !ok {
		return httpx.ErrNotFound
	}
	p.stock += qty
	return nil
}

func (tx *memoryTx) ListItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	return append([]OrderItem(nil), tx.repo.items[orderID]...), nil
}

func (tx *memoryTx) UpdateFields(ctx context.Context, id int64, status OrderStatus, paymentMethod, notes *string) (Order, error) {
	o, ok := tx.repo.orders[id]
	if !ok || o.DeletedAt != nil {
		return Order{}, httpx.ErrNotFound
	}
	o.Status = status
	if paymentMethod != nil {
		o.PaymentMethod = *paymentMethod
	}
	if notes != nil {
		o.Notes = *notes
	}
	return *o, nil
}

func (tx *memoryTx) SoftDelete(ctx context.Context, id int64) error {
	o, ok := tx.repo.orders[id]
	if !ok || o.DeletedAt != nil {
		return httpx.ErrNotFound
	}
	now := time.Now()
	o.DeletedAt = &now
	return nil
}

func TestCreateDecrementsStockPerLine(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 10, price: 20}
	repo.products[2] = &memoryProduct{stock: 5, price: 8}
	svc := NewService(repo)

	order, err := svc.Create(context.Background(), CreateOrderRequest{
		CustomerID: 1,
		Total:      76,
		Items: []CreateOrderItemRequest{
			{ProductID: 1, Quantity: 3, Price: 20},
			{ProductID: 2, Quantity: 2, Price: 8},
		},
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, order.Status)
	require.Len(t, order.Items, 2)
	require.Equal(t, 7, repo.products[1].stock)
	require.Equal(t, 3, repo.products[2].stock)
}

func TestCreateInsufficientStockRollsBackWholeOrder(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 10, price: 20}
	repo.products[2] = &memoryProduct{stock: 1, price: 8}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateOrderRequest{
		CustomerID: 1,
		Total:      100,
		Items: []CreateOrderItemRequest{
			{ProductID: 1, Quantity: 3, Price: 20},
			{ProductID: 2, Quantity: 2, Price: 8},
		},
	})
	require.ErrorIs(t, err, httpx.ErrInsufficientStock)

	// The first line's decrement must not survive the failed order.
	require.Equal(t, 10, repo.products[1].stock)
	require.Equal(t, 1, repo.products[2].stock)
}

func TestCreateRejectsDiscountAboveLineTotal(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 10, price: 20}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), CreateOrderRequest{
		CustomerID: 1,
		Total:      60,
		Items: []CreateOrderItemRequest{
			{ProductID: 1, Quantity: 3, Price: 20, Discount: 75, DiscountType: "usd"},
		},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateComputesPercentDiscount(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 10, price: 20}
	svc := NewService(repo)

	order, err := svc.Create(context.Background(), CreateOrderRequest{
		CustomerID: 1,
		Total:      54,
		Items: []CreateOrderItemRequest{
			{ProductID: 1, Quantity: 3, Price: 20, Discount: 10, DiscountType: "percent"},
		},
	})
	require.NoError(t, err)
	require.InDelta(t, 6.0, order.Items[0].Discount, 0.001)
}

func TestCancelRestoresStock(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 10, price: 20}
	svc := NewService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateOrderRequest{
		CustomerID: 1,
		Total:      60,
		Items:      []CreateOrderItemRequest{{ProductID: 1, Quantity: 4, Price: 20}},
	})
	require.NoError(t, err)
	require.Equal(t, 6, repo.products[1].stock)

	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	require.Equal(t, 10, repo.products[1].stock)

	// Cancelling an already cancelled order must not restock again.
	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: "cancelled"})
	require.NoError(t, err)
	require.Equal(t, 10, repo.products[1].stock)
}

func TestRemoveRejectsOutstandingBalance(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 10, price: 20}
	svc := NewService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateOrderRequest{
		CustomerID: 1,
		Total:      100,
		Items:      []CreateOrderItemRequest{{ProductID: 1, Quantity: 2, Price: 50}},
	})
	require.NoError(t, err)
	repo.paid[order.ID] = 75

	err = svc.Remove(ctx, order.ID)
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Contains(t, err.Error(), "25.00")
}

func TestRemoveFullyPaidRestocksAndSoftDeletes(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 10, price: 20}
	svc := NewService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateOrderRequest{
		CustomerID: 1,
		Total:      100,
		Items:      []CreateOrderItemRequest{{ProductID: 1, Quantity: 2, Price: 50}},
	})
	require.NoError(t, err)
	repo.paid[order.ID] = 100

	require.NoError(t, svc.Remove(ctx, order.ID))
	require.Equal(t, 10, repo.products[1].stock)
	require.NotNil(t, repo.orders[order.ID].DeletedAt)
}

func TestRemoveCancelledOrderBlockedByPaymentHistory(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 10, price: 20}
	svc := NewService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateOrderRequest{
		CustomerID: 1,
		Total:      100,
		Items:      []CreateOrderItemRequest{{ProductID: 1, Quantity: 2, Price: 50}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, order.ID, UpdateStatusRequest{Status: "cancelled"})
	require.NoError(t, err)

	repo.paid[order.ID] = 10
	err = svc.Remove(ctx, order.ID)
	require.ErrorIs(t, err, httpx.ErrConflict)

	// Without payment history deletion proceeds, with no second restock.
	repo.paid[order.ID] = 0
	require.NoError(t, svc.Remove(ctx, order.ID))
	require.Equal(t, 10, repo.products[1].stock)
	require.NotNil(t, repo.orders[order.ID].DeletedAt)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	_, err := svc.UpdateStatus(context.Background(), 1, UpdateStatusRequest{Status: "shipped"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateItemBlockedOncePaymentExists(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 10, price: 20}
	svc := NewService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateOrderRequest{
		CustomerID: 1,
		Total:      60,
		Items:      []CreateOrderItemRequest{{ProductID: 1, Quantity: 3, Price: 20}},
	})
	require.NoError(t, err)
	itemID := repo.items[order.ID][0].ID

	// Before any payment the line is still editable.
	updated, err := svc.UpdateItem(ctx, itemID, UpdateOrderItemRequest{Quantity: 2, UnitPrice: 20})
	require.NoError(t, err)
	require.Equal(t, 2, updated.Quantity)

	repo.activePayments[order.ID] = 1
	_, err = svc.UpdateItem(ctx, itemID, UpdateOrderItemRequest{Quantity: 1, UnitPrice: 20})
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Equal(t, 2, repo.items[order.ID][0].Quantity)
}

func TestRemoveItemBlockedOncePaymentExists(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 10, price: 20}
	svc := NewService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateOrderRequest{
		CustomerID: 1,
		Total:      60,
		Items:      []CreateOrderItemRequest{{ProductID: 1, Quantity: 3, Price: 20}},
	})
	require.NoError(t, err)
	itemID := repo.items[order.ID][0].ID

	repo.activePayments[order.ID] = 1
	require.ErrorIs(t, svc.RemoveItem(ctx, itemID), httpx.ErrConflict)
	require.Len(t, repo.items[order.ID], 1)

	repo.activePayments[order.ID] = 0
	require.NoError(t, svc.RemoveItem(ctx, itemID))
	require.Empty(t, repo.items[order.ID])
}

func TestUpdateItemRejectsDiscountAboveLineTotal(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &memoryProduct{stock: 10, price: 20}
	svc := NewService(repo)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateOrderRequest{
		CustomerID: 1,
		Total:      60,
		Items:      []CreateOrderItemRequest{{ProductID: 1, Quantity: 3, Price: 20}},
	})
	require.NoError(t, err)
	itemID := repo.items[order.ID][0].ID

	_, err = svc.UpdateItem(ctx, itemID, UpdateOrderItemRequest{Quantity: 1, UnitPrice: 20, Discount: 30})
	require.ErrorIs(t, err, httpx.ErrValidation)
}
