package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/pawmart/pawmart-orders-service/internal/config"
	"github.com/pawmart/pawmart-orders-service/internal/errors"
	"github.com/pawmart/pawmart-orders-service/internal/models"
	"github.com/pawmart/pawmart-orders-service/internal/repository"
)

// OrderEventPublisher publishes order lifecycle events.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error
	PublishOrderDeleted(ctx context.Context, orderID, userID string) error
	PublishPaymentVerified(ctx context.Context, payment *models.Payment) error
}

// OrderService owns the order lifecycle: creation against live stock and
// pricing, the status state machine, and deletion rules.
type OrderService struct {
	orderRepo  repository.OrderRepository
	orderCache repository.OrderCache
	catalog    repository.ProductCatalog
	publisher  OrderEventPublisher
	config     *config.Config
	logger     *zap.Logger
	clock      Clock
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	orderCache repository.OrderCache,
	catalog repository.ProductCatalog,
	publisher OrderEventPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:  orderRepo,
		orderCache: orderCache,
		catalog:    catalog,
		publisher:  publisher,
		config:     cfg,
		logger:     logger.Named("order-service"),
		clock:      systemClock{},
	}
}

// CreateOrder validates the request against the catalog, snapshots prices,
// and persists the order atomically. Prices are the product's discounted
// price when one exists, otherwise the original price, frozen at this
// moment and never recomputed.
func (s *OrderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	s.logger.Info("Creating order",
		zap.String("user_id", req.UserID),
		zap.Int("item_count", len(req.Items)))

	if err := ValidateCreateOrderRequest(req); err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, reqItem := range req.Items {
		product, err := s.catalog.GetByID(ctx, reqItem.ProductID)
		if err != nil {
			return nil, err
		}

		if product.Stock < reqItem.Quantity {
			return nil, errors.NewInsufficientStockError(product.ID, product.Stock, reqItem.Quantity)
		}

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			Quantity:  reqItem.Quantity,
			Price:     product.EffectivePrice(),
		})
	}

	now := s.clock.Now()
	order := &models.Order{
		ID:              repository.GenerateOrderID(),
		UserID:          req.UserID,
		Status:          models.OrderStatusPending,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		OrderDate:       now,
		UpdatedAt:       now,
	}
	order.CalculateTotal()

	// The repository re-validates stock inside the transaction, so a
	// concurrent order cannot slip between the check above and the commit.
	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error("Failed to create order",
			zap.String("user_id", req.UserID),
			zap.Error(err))
		return nil, err
	}

	if s.config.Features.EnableOrderCaching {
		if err := s.orderCache.Set(ctx, order); err != nil {
			s.logger.Warn("Failed to cache order", zap.String("order_id", order.ID), zap.Error(err))
		}
	}

	if s.config.Features.EnableOrderEvents {
		if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
			s.logger.Warn("Failed to publish order created event",
				zap.String("order_id", order.ID), zap.Error(err))
		}
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.String("total", order.Total.String()))

	return order, nil
}

// GetOrder retrieves an order by ID, consulting the cache first.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	if s.config.Features.EnableOrderCaching {
		if order, err := s.orderCache.Get(ctx, id); err == nil && order != nil {
			return order, nil
		}
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.config.Features.EnableOrderCaching {
		s.orderCache.Set(ctx, order)
	}

	return order, nil
}

// UpdateOrderStatus applies a status change through the transition table.
// Delivered and cancelled orders accept no further changes; a request for
// the status the order already has succeeds without touching the store.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, newStatus models.OrderStatus) (*models.Order, error) {
	if !models.ValidOrderStatus(newStatus) {
		return nil, errors.NewValidationError("status", "unknown order status "+string(newStatus))
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status == newStatus {
		return order, nil
	}

	if !models.CanTransition(order.Status, newStatus) {
		return nil, errors.NewConflictError(
			"cannot change status of a " + string(order.Status) + " order")
	}

	previous := order.Status
	if err := s.orderRepo.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, err
	}
	order.Status = newStatus

	if s.config.Features.EnableOrderCaching {
		s.orderCache.Delete(ctx, id)
	}

	if s.config.Features.EnableOrderEvents {
		if err := s.publisher.PublishOrderStatusChanged(ctx, order, previous); err != nil {
			s.logger.Warn("Failed to publish status change event",
				zap.String("order_id", id), zap.Error(err))
		}
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", id),
		zap.String("previous", string(previous)),
		zap.String("status", string(newStatus)))

	return order, nil
}

// DeleteOrder removes an order. Only pending or cancelled orders can be
// deleted; anything in fulfilment stays on record.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !order.CanDelete() {
		return errors.NewConflictError("only pending or cancelled orders can be deleted")
	}

	if err := s.orderRepo.Delete(ctx, id); err != nil {
		return err
	}

	if s.config.Features.EnableOrderCaching {
		s.orderCache.Delete(ctx, id)
	}

	if s.config.Features.EnableOrderEvents {
		if err := s.publisher.PublishOrderDeleted(ctx, id, order.UserID); err != nil {
			s.logger.Warn("Failed to publish order deleted event",
				zap.String("order_id", id), zap.Error(err))
		}
	}

	return nil
}

// GetUserOrders retrieves orders for a user, newest first.
func (s *OrderService) GetUserOrders(ctx context.Context, userID string, limit, offset int) ([]*models.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	return s.orderRepo.GetByUserID(ctx, userID, limit, offset)
}
