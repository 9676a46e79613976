package catalog

import (
	"context"
	"fmt"

	"github.com/abed1srour/POS-backend/internal/inventory"
	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

// RepositoryPort abstracts the product store for the service.
type RepositoryPort interface {
	List(ctx context.Context, filter ListFilter) ([]ProductWithRefs, int, error)
	Get(ctx context.Context, id int64, includeDeleted bool) (Product, error)
	Create(ctx context.Context, req CreateProductRequest) (Product, error)
	Update(ctx context.Context, id int64, req UpdateProductRequest) (Product, error)
	SetStock(ctx context.Context, id int64, quantity int) (Product, error)
	Restock(ctx context.Context, id int64, quantity int, costPrice float64) (inventory.Stock, error)
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	ClearBin(ctx context.Context) (ClearBinReport, error)
}

// Service implements the product catalog.
type Service struct {
	repo RepositoryPort
}

// NewService constructs Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]ProductWithRefs, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id, false)
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (Product, error) {
	return s.repo.Create(ctx, req)
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (Product, error) {
	return s.repo.Update(ctx, id, req)
}

// UpdateStock adjusts the stock level with a set, add or subtract
// operation. Subtracting below zero is rejected.
func (s *Service) UpdateStock(ctx context.Context, id int64, req UpdateStockRequest) (Product, error) {
	existing, err := s.repo.Get(ctx, id, false)
	if err != nil {
		return Product{}, err
	}

	next := req.Quantity
	switch req.Operation {
	case "add":
		next = existing.QuantityInStock + req.Quantity
	case "subtract":
		next = existing.QuantityInStock - req.Quantity
		if next < 0 {
			return Product{}, fmt.Errorf("%w: product %d has %d in stock, cannot subtract %d",
				httpx.ErrInsufficientStock, id, existing.QuantityInStock, req.Quantity)
		}
	}
	return s.repo.SetStock(ctx, id, next)
}

// Restock adds stock at the given unit cost using weighted average
// costing; the selling price is rescaled to hold the margin ratio.
func (s *Service) Restock(ctx context.Context, id int64, req RestockRequest) (inventory.Stock, error) {
	return s.repo.Restock(ctx, id, req.Quantity, req.CostPrice)
}

func (s *Service) Remove(ctx context.Context, id int64) error {
	if _, err := s.repo.Get(ctx, id, false); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) Restore(ctx context.Context, id int64) (Product, error) {
	if err := s.repo.Restore(ctx, id); err != nil {
		return Product{}, err
	}
	return s.repo.Get(ctx, id, false)
}

func (s *Service) ClearBin(ctx context.Context) (ClearBinReport, error) {
	return s.repo.ClearBin(ctx)
}
