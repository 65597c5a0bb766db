package services

import (
	"context"
	"errors"
	"fmt"

	"marketplace-service/internal/models"
	"marketplace-service/internal/repositories/postgres"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidQuantity   = errors.New("quantity must be greater than 0")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOrderNotUpdatable = errors.New("order can no longer be updated")
)

// OrderService owns the order lifecycle: creation with stock validation and
// total computation, status transitions, cancellation with stock restore.
type OrderService interface {
	CreateOrder(ctx context.Context, userID uint, req models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, orderID uint) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListUserOrders(ctx context.Context, userID uint) ([]models.Order, error)
	GetUserOrder(ctx context.Context, userID, orderID uint) (*models.Order, error)
	UpdateStatus(ctx context.Context, userID, orderID uint, status models.OrderStatus) (*models.Order, error)
	CancelOrder(ctx context.Context, userID, orderID uint) (*models.Order, error)
	DeleteOrder(ctx context.Context, userID, orderID uint) error
}

type orderService struct {
	orders   postgres.OrderRepository
	products postgres.ProductRepository
	users    postgres.UserRepository
}

func NewOrderService(orders postgres.OrderRepository, products postgres.ProductRepository, users postgres.UserRepository) OrderService {
	return &orderService{orders: orders, products: products, users: users}
}

func (s *orderService) CreateOrder(ctx context.Context, userID uint, req models.CreateOrderRequest) (*models.Order, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	status := req.Status
	if status == "" {
		status = models.OrderStatusPending
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid order status %q", status)
	}

	// Validate every line item before touching anything.
	totalQuantity := 0
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, item.ProductID)
		}
		if item.Quantity > product.Quantity {
			return nil, fmt.Errorf("%w for product %s", ErrInsufficientStock, product.Name)
		}
		totalQuantity += item.Quantity
	}

	order := &models.Order{
		UserID:   user.ID,
		Status:   status,
		Quantity: totalQuantity,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	var totalAmount float64
	items := make([]models.OrderProduct, 0, len(req.Items))
	for _, item := range req.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, item.ProductID)
		}

		totalAmount += product.Price * float64(item.Quantity)
		items = append(items, models.OrderProduct{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  item.Quantity,
		})

		product.Quantity -= item.Quantity
		if err := s.products.Save(ctx, product); err != nil {
			return nil, err
		}
	}
	if err := s.orders.CreateOrderProducts(ctx, items); err != nil {
		return nil, err
	}

	order.TotalAmount = totalAmount
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}

	order.User = *user
	order.OrderProducts = items
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.FindAll(ctx)
}

func (s *orderService) ListUserOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.orders.FindByUserID(ctx, userID)
}

func (s *orderService) GetUserOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	order, err := s.orders.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, userID, orderID uint, status models.OrderStatus) (*models.Order, error) {
	order, err := s.orders.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if order.Status.IsTerminal() {
		return nil, ErrOrderNotUpdatable
	}

	order.Status = status
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) CancelOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	order, err := s.orders.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, ErrOrderNotFound
	}
	if order.Status.IsTerminal() {
		return nil, ErrOrderNotUpdatable
	}

	// Return the reserved stock before flipping the status.
	for _, item := range order.OrderProducts {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			continue
		}
		product.Quantity += item.Quantity
		if err := s.products.Save(ctx, product); err != nil {
			return nil, err
		}
	}

	order.Status = models.OrderStatusCancelled
	if err := s.orders.Save(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, userID, orderID uint) error {
	if _, err := s.orders.FindByIDForUser(ctx, orderID, userID); err != nil {
		return ErrOrderNotFound
	}
	return s.orders.Delete(ctx, orderID)
}
