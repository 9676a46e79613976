package orders

import (
	"context"
	"fmt"

	"github.com/abed1srour/POS-backend/internal/platform/httpx"
)

// Service implements order fulfillment: creation with guarded stock
// decrements, cancellation restock, and balance-gated deletion.
type Service struct {
	repo RepositoryPort
}

// NewService constructs Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// lineDiscount resolves a request discount into a flat amount and
// rejects discounts exceeding the line total.
func lineDiscount(item CreateOrderItemRequest) (float64, error) {
	lineTotal := float64(item.Quantity) * item.Price
	discount := item.Discount
	if item.DiscountType == "percent" {
		discount = lineTotal * item.Discount / 100
	}
	if discount > lineTotal {
		return 0, fmt.Errorf("%w: discount %.2f exceeds line total %.2f for product %d",
			httpx.ErrValidation, discount, lineTotal, item.ProductID)
	}
	return discount, nil
}

// Create inserts the order and its items, decrementing stock per line.
// Any line failure rolls the whole order back.
func (s *Service) Create(ctx context.Context, req CreateOrderRequest) (Order, error) {
	status := OrderStatus(req.Status)
	if status == "" {
		status = StatusPending
	}

	var created Order
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.InsertOrder(ctx, Order{
			CustomerID:       req.CustomerID,
			TotalAmount:      req.Total,
			Status:           status,
			PaymentMethod:    req.PaymentMethod,
			Notes:            req.Notes,
			DeliveryRequired: req.DeliveryEnabled,
			DeliveryFee:      req.DeliveryAmount,
		})
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for _, item := range req.Items {
			stock, _, err := tx.GetProductForSale(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if stock < item.Quantity {
				return fmt.Errorf("%w: product %d has %d in stock, requested %d",
					httpx.ErrInsufficientStock, item.ProductID, stock, item.Quantity)
			}

			discount, err := lineDiscount(item)
			if err != nil {
				return err
			}

			if err := tx.InsertItem(ctx, OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.Price,
				Discount:  discount,
			}); err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
			if err := tx.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		created = order
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return s.repo.Get(ctx, created.ID, false)
}

// UpdateStatus writes a new status. Entering 'cancelled' from any other
// state restocks every item in the same transaction as the status write.
func (s *Service) UpdateStatus(ctx context.Context, id int64, req UpdateStatusRequest) (Order, error) {
	newStatus := OrderStatus(req.Status)
	if !ValidStatus(newStatus) {
		return Order{}, fmt.Errorf("%w: unknown order status %q", httpx.ErrValidation, req.Status)
	}

	existing, err := s.repo.Get(ctx, id, false)
	if err != nil {
		return Order{}, err
	}

	if newStatus == StatusCancelled && existing.Status != StatusCancelled {
		err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			items, err := tx.ListItems(ctx, id)
			if err != nil {
				return fmt.Errorf("list order items: %w", err)
			}
			for _, item := range items {
				if err := tx.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
			_, err = tx.UpdateFields(ctx, id, newStatus, req.PaymentMethod, req.Notes)
			return err
		})
		if err != nil {
			return Order{}, err
		}
		return s.repo.Get(ctx, id, false)
	}

	return s.repo.UpdateFields(ctx, id, newStatus, req.PaymentMethod, req.Notes)
}

// Remove soft-deletes an order. Cancelled orders may only be deleted
// when no completed payment was ever recorded; all other orders must be
// fully paid, and their items are restocked before deletion.
func (s *Service) Remove(ctx context.Context, id int64) error {
	existing, err := s.repo.Get(ctx, id, false)
	if err != nil {
		return err
	}

	paid, err := s.repo.CompletedPaidTotal(ctx, id)
	if err != nil {
		return fmt.Errorf("sum order payments: %w", err)
	}

	if existing.Status == StatusCancelled {
		if paid > 0 {
			return fmt.Errorf("%w: cancelled order has %.2f in completed payments, resolve payments first",
				httpx.ErrConflict, paid)
		}
		return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
			return tx.SoftDelete(ctx, id)
		})
	}

	remaining := existing.TotalAmount - paid
	if remaining < 0 {
		remaining = 0
	}
	if remaining > 0 {
		return fmt.Errorf("%w: order has a remaining balance of %.2f, must be fully paid before deletion",
			httpx.ErrConflict, remaining)
	}

	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		items, err := tx.ListItems(ctx, id)
		if err != nil {
			return fmt.Errorf("list order items: %w", err)
		}
		for _, item := range items {
			if err := tx.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return tx.SoftDelete(ctx, id)
	})
}

// Restore reverses a soft delete. Stock is not re-decremented; the
// restored order keeps whatever stock state deletion left behind.
func (s *Service) Restore(ctx context.Context, id int64) (Order, error) {
	if err := s.repo.Restore(ctx, id); err != nil {
		return Order{}, err
	}
	return s.repo.Get(ctx, id, false)
}

// Get returns an order with items, payments, and derived paid totals.
func (s *Service) Get(ctx context.Context, id int64) (OrderDetail, error) {
	order, err := s.repo.Get(ctx, id, false)
	if err != nil {
		return OrderDetail{}, err
	}
	pays, err := s.repo.ListPayments(ctx, id)
	if err != nil {
		return OrderDetail{}, fmt.Errorf("list order payments: %w", err)
	}
	paid, err := s.repo.CompletedPaidTotal(ctx, id)
	if err != nil {
		return OrderDetail{}, fmt.Errorf("sum order payments: %w", err)
	}
	remaining := order.TotalAmount - paid
	if remaining < 0 {
		remaining = 0
	}
	return OrderDetail{
		Order:     order,
		TotalPaid: paid,
		Remaining: remaining,
		Payments:  pays,
	}, nil
}

// ListItems returns a page of order lines, optionally scoped to one order.
func (s *Service) ListItems(ctx context.Context, orderID int64, limit, offset int) ([]OrderItem, int, error) {
	return s.repo.ListItemRows(ctx, orderID, limit, offset)
}

// GetItem returns a single order line.
func (s *Service) GetItem(ctx context.Context, itemID int64) (OrderItem, error) {
	return s.repo.GetItem(ctx, itemID)
}

// UpdateItem rewrites a line. Once the order has any live payment the
// lines are frozen and the update is rejected.
func (s *Service) UpdateItem(ctx context.Context, itemID int64, req UpdateOrderItemRequest) (OrderItem, error) {
	existing, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return OrderItem{}, err
	}

	count, err := s.repo.ActivePaymentCount(ctx, existing.OrderID)
	if err != nil {
		return OrderItem{}, fmt.Errorf("count order payments: %w", err)
	}
	if count > 0 {
		return OrderItem{}, fmt.Errorf("%w: order %d has recorded payments, items can no longer be modified",
			httpx.ErrConflict, existing.OrderID)
	}

	lineTotal := float64(req.Quantity) * req.UnitPrice
	if req.Discount > lineTotal {
		return OrderItem{}, fmt.Errorf("%w: discount %.2f exceeds line total %.2f",
			httpx.ErrValidation, req.Discount, lineTotal)
	}

	return s.repo.UpdateItem(ctx, itemID, req.Quantity, req.UnitPrice, req.Discount)
}

// RemoveItem deletes a line, subject to the same payment freeze.
func (s *Service) RemoveItem(ctx context.Context, itemID int64) error {
	existing, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return err
	}

	count, err := s.repo.ActivePaymentCount(ctx, existing.OrderID)
	if err != nil {
		return fmt.Errorf("count order payments: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: order %d has recorded payments, items can no longer be deleted",
			httpx.ErrConflict, existing.OrderID)
	}

	return s.repo.DeleteItem(ctx, itemID)
}

// List returns a page of orders.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]OrderWithCustomer, int, error) {
	return s.repo.List(ctx, filter)
}

// ClearBin permanently purges soft-deleted orders.
func (s *Service) ClearBin(ctx context.Context) (int64, error) {
	return s.repo.ClearBin(ctx)
}
