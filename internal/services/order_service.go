package services

import (
	"context"
	"fmt"

	"agrihub/internal/models"
	"agrihub/internal/repository"

	"gorm.io/gorm"
)

// PlacedOrders is the result of a checkout: one order per former basket line.
type PlacedOrders struct {
	Orders []models.Order `json:"orders"`
	*CartSummary
}

type OrderService interface {
	PlaceOrder(ctx context.Context, actor Actor, addressID uint) (*PlacedOrders, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Order, error)
	Cancel(ctx context.Context, userID, orderID uint) (*models.Order, error)
	UpdateStatus(ctx context.Context, actor Actor, orderID uint, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	tx          repository.Transactor
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	addressRepo repository.AddressRepository
	notifier    NotificationService
}

func NewOrderService(
	tx repository.Transactor,
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	addressRepo repository.AddressRepository,
	notifier NotificationService,
) OrderService {
	return &orderService{
		tx:          tx,
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		addressRepo: addressRepo,
		notifier:    notifier,
	}
}

// PlaceOrder turns every basket line into a Pending order shipped to addressID and empties the basket.
// Unit prices are copied from the products at this moment.
func (s *orderService) PlaceOrder(ctx context.Context, actor Actor, addressID uint) (*PlacedOrders, error) {
	var placed PlacedOrders

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		address, err := s.addressRepo.WithTx(tx).GetForUser(ctx, addressID, actor.UserID)
		if err != nil {
			return notFound(err, "address")
		}

		items, err := cartRepo.ListByUser(ctx, actor.UserID)
		if err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}
		if len(items) == 0 {
			verr := NewValidationError()
			verr.Add("cart", "Your basket is empty.")
			return verr
		}

		orders := make([]models.Order, 0, len(items))
		for _, item := range items {
			order := models.Order{
				UserID:    actor.UserID,
				AddressID: address.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.Product.PricePerUnit,
				Status:    models.OrderPending,
			}
			if err := orderRepo.Create(ctx, &order); err != nil {
				return fmt.Errorf("failed to create order: %w", err)
			}
			order.Address = *address
			order.Product = item.Product
			orders = append(orders, order)
		}

		if err := cartRepo.DeleteByUser(ctx, actor.UserID); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		placed.Orders = orders
		placed.CartSummary = SummarizeCart(items)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.OrdersPlaced(ctx, actor.Username, placed.Orders)
	return &placed, nil
}

func (s *orderService) ListForUser(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// Cancel lets the buyer withdraw their own order while it has not left the farm.
func (s *orderService) Cancel(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "order")
	}
	if order.UserID != userID {
		return nil, fmt.Errorf("order: %w", ErrNotFound)
	}
	return s.transition(ctx, order, models.OrderCancelled)
}

// UpdateStatus moves an order along the delivery workflow. Only farmers may do it.
func (s *orderService) UpdateStatus(ctx context.Context, actor Actor, orderID uint, status models.OrderStatus) (*models.Order, error) {
	if !actor.HasRole(models.RoleFarmerSeller) {
		return nil, fmt.Errorf("only farmers can update order status: %w", ErrForbidden)
	}
	if !status.Valid() {
		verr := NewValidationError()
		verr.Add("status", fmt.Sprintf("Select a valid choice. %q is not one of the available choices.", status))
		return nil, verr
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "order")
	}
	return s.transition(ctx, order, status)
}

func (s *orderService) transition(ctx context.Context, order *models.Order, next models.OrderStatus) (*models.Order, error) {
	if !order.Status.CanTransitionTo(next) {
		verr := NewValidationError()
		verr.Add("status", fmt.Sprintf("An order that is %s cannot become %s.", order.Status, next))
		return nil, verr
	}

	if err := s.orderRepo.UpdateStatus(ctx, order.ID, next); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	order.Status = next
	return order, nil
}
