package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/abed1srour/POS-backend/internal/inventory"
	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

type memoryRepo struct {
	products map[int64]*Product
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[int64]*Product)}
}

func (r *memoryRepo) List(ctx context.Context, filter ListFilter) ([]ProductWithRefs, int, error) {
	var result []ProductWithRefs
	for _, p := range r.products {
		if p.DeletedAt != nil && !filter.IncludeDeleted && !filter.DeletedOnly {
			continue
		}
		result = append(result, ProductWithRefs{Product: *p})
	}
	return result, len(result), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64, includeDeleted bool) (Product, error) {
	p, ok := r.products[id]
	if !ok || (!includeDeleted && p.DeletedAt != nil) {
		return Product{}, httpx.ErrNotFound
	}
	return *p, nil
}

func (r *memoryRepo) Create(ctx context.Context, req CreateProductRequest) (Product, error) {
	r.nextID++
	p := Product{ID: r.nextID, Name: req.Name, Price: req.Price, CostPrice: req.CostPrice, QuantityInStock: req.Stock}
	r.products[p.ID] = &p
	return p, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, req UpdateProductRequest) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, httpx.ErrNotFound
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	return *p, nil
}

func (r *memoryRepo) SetStock(ctx context.Context, id int64, quantity int) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, httpx.ErrNotFound
	}
	p.QuantityInStock = quantity
	return *p, nil
}

func (r *memoryRepo) Restock(ctx context.Context, id int64, quantity int, costPrice float64) (inventory.Stock, error) {
	p, ok := r.products[id]
	if !ok {
		return inventory.Stock{}, httpx.ErrNotFound
	}
	next := inventory.ApplyRestock(inventory.Stock{
		ProductID: id,
		Quantity:  p.QuantityInStock,
		CostPrice: p.CostPrice,
		Price:     p.Price,
	}, quantity, costPrice)
	p.QuantityInStock = next.Quantity
	p.CostPrice = next.CostPrice
	p.Price = next.Price
	return next, nil
}

func (r *memoryRepo) SoftDelete(ctx context.Context, id int64) error {
	if _, ok := r.products[id]; !ok {
		return httpx.ErrNotFound
	}
	now := time.Now()
	r.products[id].DeletedAt = &now
	return nil
}

func (r *memoryRepo) Restore(ctx context.Context, id int64) error {
	p, ok := r.products[id]
	if !ok || p.DeletedAt == nil {
		return httpx.ErrNotFound
	}
	p.DeletedAt = nil
	return nil
}

func (r *memoryRepo) ClearBin(ctx context.Context) (ClearBinReport, error) {
	var report ClearBinReport
	for id, p := range r.products {
		if p.DeletedAt != nil {
			report.TotalSoftDeleted++
			report.Deleted++
			delete(r.products, id)
		}
	}
	return report, nil
}

func TestUpdateStockSubtractGuard(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProductRequest{Name: "cable", Stock: 5})
	require.NoError(t, err)

	_, err = svc.UpdateStock(ctx, p.ID, UpdateStockRequest{Quantity: 8, Operation: "subtract"})
	require.ErrorIs(t, err, httpx.ErrInsufficientStock)

	updated, err := svc.UpdateStock(ctx, p.ID, UpdateStockRequest{Quantity: 3, Operation: "subtract"})
	require.NoError(t, err)
	require.Equal(t, 2, updated.QuantityInStock)

	updated, err = svc.UpdateStock(ctx, p.ID, UpdateStockRequest{Quantity: 10, Operation: "add"})
	require.NoError(t, err)
	require.Equal(t, 12, updated.QuantityInStock)

	updated, err = svc.UpdateStock(ctx, p.ID, UpdateStockRequest{Quantity: 7})
	require.NoError(t, err)
	require.Equal(t, 7, updated.QuantityInStock)
}

func TestRestockUsesWeightedAverage(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProductRequest{Name: "ssd", Price: 10, CostPrice: 5, Stock: 10})
	require.NoError(t, err)

	stock, err := svc.Restock(ctx, p.ID, RestockRequest{Quantity: 10, CostPrice: 7})
	require.NoError(t, err)
	require.Equal(t, 20, stock.Quantity)
	require.InDelta(t, 6.0, stock.CostPrice, 0.001)
	require.InDelta(t, 12.0, stock.Price, 0.001)
}
