package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/pawmart/pawmart-orders-service/internal/config"
	"github.com/pawmart/pawmart-orders-service/internal/errors"
	"github.com/pawmart/pawmart-orders-service/internal/models"
)

type orderTestEnv struct {
	service   *OrderService
	orderRepo *mockOrderRepository
	catalog   *mockProductCatalog
	cache     *mockOrderCache
	publisher *mockPublisher
}

func newOrderTestEnv() *orderTestEnv {
	catalog := newMockProductCatalog()
	orderRepo := newMockOrderRepository(catalog)
	cache := newMockOrderCache()
	publisher := &mockPublisher{}

	cfg := &config.Config{
		Features: config.FeatureFlags{
			EnableOrderCaching: true,
			EnableOrderEvents:  true,
		},
	}

	return &orderTestEnv{
		service:   NewOrderService(orderRepo, cache, catalog, publisher, cfg, zap.NewNop()),
		orderRepo: orderRepo,
		catalog:   catalog,
		cache:     cache,
		publisher: publisher,
	}
}

func (e *orderTestEnv) addProduct(id string, price int64, stock int) {
	e.catalog.products[id] = &models.Product{
		ID:            id,
		Name:          id,
		OriginalPrice: decimal.NewFromInt(price),
		Stock:         stock,
	}
}

func (e *orderTestEnv) addOrder(id string, status models.OrderStatus) *models.Order {
	order := &models.Order{
		ID:     id,
		UserID: "user_1",
		Status: status,
		Total:  decimal.NewFromInt(50),
	}
	e.orderRepo.orders[id] = order
	return order
}

func TestCreateOrder_ComputesTotalFromSnapshots(t *testing.T) {
	env := newOrderTestEnv()
	env.addProduct("prod_a", 10, 100)
	env.addProduct("prod_b", 30, 100)

	order, err := env.service.CreateOrder(context.Background(), &models.CreateOrderRequest{
		UserID:          "user_1",
		ShippingAddress: "12 Bark Lane",
		Items: []models.CreateOrderRequestItem{
			{ProductID: "prod_a", Quantity: 2},
			{ProductID: "prod_b", Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	if !order.Total.Equal(decimal.NewFromInt(50)) {
		t.Errorf("Expected total 50, got %s", order.Total)
	}

	sum := decimal.Zero
	for _, item := range order.Items {
		sum = sum.Add(item.TotalPrice())
	}
	if !order.Total.Equal(sum) {
		t.Errorf("Total %s does not match sum of item totals %s", order.Total, sum)
	}

	if order.Status != models.OrderStatusPending {
		t.Errorf("Expected new order to be pending, got %s", order.Status)
	}
	if order.OrderDate.IsZero() {
		t.Error("Expected order date to be set")
	}
}

func TestCreateOrder_SnapshotsDiscountedPrice(t *testing.T) {
	env := newOrderTestEnv()
	env.addProduct("prod_a", 10, 100)
	discounted := decimal.NewFromInt(7)
	env.catalog.products["prod_a"].DiscountedPrice = &discounted

	order, err := env.service.CreateOrder(context.Background(), &models.CreateOrderRequest{
		UserID:          "user_1",
		ShippingAddress: "12 Bark Lane",
		Items:           []models.CreateOrderRequestItem{{ProductID: "prod_a", Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	if !order.Items[0].Price.Equal(discounted) {
		t.Errorf("Expected snapshotted price 7, got %s", order.Items[0].Price)
	}
	if !order.Total.Equal(decimal.NewFromInt(21)) {
		t.Errorf("Expected total 21, got %s", order.Total)
	}
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	env := newOrderTestEnv()

	_, err := env.service.CreateOrder(context.Background(), &models.CreateOrderRequest{
		UserID:          "user_1",
		ShippingAddress: "12 Bark Lane",
		Items:           []models.CreateOrderRequestItem{},
	})
	if errors.KindOf(err) != errors.KindValidation {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	env := newOrderTestEnv()

	_, err := env.service.CreateOrder(context.Background(), &models.CreateOrderRequest{
		UserID:          "user_1",
		ShippingAddress: "12 Bark Lane",
		Items:           []models.CreateOrderRequestItem{{ProductID: "prod_missing", Quantity: 1}},
	})
	if !errors.IsNotFound(err) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	env := newOrderTestEnv()
	env.addProduct("prod_a", 10, 10)

	_, err := env.service.CreateOrder(context.Background(), &models.CreateOrderRequest{
		UserID:          "user_1",
		ShippingAddress: "12 Bark Lane",
		Items:           []models.CreateOrderRequestItem{{ProductID: "prod_a", Quantity: 20}},
	})
	if !errors.IsConflict(err) {
		t.Fatalf("Expected conflict error, got %v", err)
	}

	want := "insufficient stock for product prod_a. Available: 10, Requested: 20"
	if err.Error() != want {
		t.Errorf("Error message = %q, want %q", err.Error(), want)
	}

	if len(env.orderRepo.orders) != 0 {
		t.Error("Expected no order to be persisted")
	}
	if env.catalog.products["prod_a"].Stock != 10 {
		t.Error("Expected stock to be untouched")
	}
}

func TestCreateOrder_MixedItemsOneShortLeavesNothing(t *testing.T) {
	env := newOrderTestEnv()
	env.addProduct("prod_a", 10, 100)
	env.addProduct("prod_b", 30, 0)

	_, err := env.service.CreateOrder(context.Background(), &models.CreateOrderRequest{
		UserID:          "user_1",
		ShippingAddress: "12 Bark Lane",
		Items: []models.CreateOrderRequestItem{
			{ProductID: "prod_a", Quantity: 1},
			{ProductID: "prod_b", Quantity: 1},
		},
	})
	if !errors.IsConflict(err) {
		t.Fatalf("Expected conflict error, got %v", err)
	}

	if len(env.orderRepo.orders) != 0 {
		t.Error("Expected no order to be persisted")
	}
	if env.catalog.products["prod_a"].Stock != 100 {
		t.Error("Expected stock of prod_a to be untouched")
	}
}

func TestUpdateOrderStatus_TerminalStates(t *testing.T) {
	tests := []struct {
		name string
		from models.OrderStatus
		to   models.OrderStatus
	}{
		{"delivered to pending", models.OrderStatusDelivered, models.OrderStatusPending},
		{"delivered to processing", models.OrderStatusDelivered, models.OrderStatusProcessing},
		{"delivered to cancelled", models.OrderStatusDelivered, models.OrderStatusCancelled},
		{"cancelled to pending", models.OrderStatusCancelled, models.OrderStatusPending},
		{"cancelled to shipped", models.OrderStatusCancelled, models.OrderStatusShipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newOrderTestEnv()
			env.addOrder("ord_1", tt.from)

			_, err := env.service.UpdateOrderStatus(context.Background(), "ord_1", tt.to)
			if !errors.IsConflict(err) {
				t.Errorf("Expected conflict error, got %v", err)
			}
			if env.orderRepo.orders["ord_1"].Status != tt.from {
				t.Error("Expected status to be unchanged")
			}
		})
	}
}

func TestUpdateOrderStatus_SelfTransitionIsNoOp(t *testing.T) {
	for _, status := range []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
	} {
		env := newOrderTestEnv()
		env.addOrder("ord_1", status)

		order, err := env.service.UpdateOrderStatus(context.Background(), "ord_1", status)
		if err != nil {
			t.Errorf("Self-transition on %s returned error: %v", status, err)
			continue
		}
		if order.Status != status {
			t.Errorf("Expected status %s, got %s", status, order.Status)
		}
		if env.orderRepo.updateStatusCalls != 0 {
			t.Errorf("Expected no store write for self-transition on %s", status)
		}
	}
}

func TestUpdateOrderStatus_LenientForwardAndBackward(t *testing.T) {
	// Everything outside the two terminal states is permitted, including
	// state skips.
	env := newOrderTestEnv()
	env.addOrder("ord_1", models.OrderStatusPending)

	order, err := env.service.UpdateOrderStatus(context.Background(), "ord_1", models.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("UpdateOrderStatus() error = %v", err)
	}
	if order.Status != models.OrderStatusDelivered {
		t.Errorf("Expected delivered, got %s", order.Status)
	}
}

func TestUpdateOrderStatus_UnknownOrder(t *testing.T) {
	env := newOrderTestEnv()

	_, err := env.service.UpdateOrderStatus(context.Background(), "ord_missing", models.OrderStatusProcessing)
	if !errors.IsNotFound(err) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestUpdateOrderStatus_UnknownStatusValue(t *testing.T) {
	env := newOrderTestEnv()
	env.addOrder("ord_1", models.OrderStatusPending)

	_, err := env.service.UpdateOrderStatus(context.Background(), "ord_1", "refunded")
	if errors.KindOf(err) != errors.KindValidation {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestDeleteOrder(t *testing.T) {
	tests := []struct {
		name      string
		status    models.OrderStatus
		wantError bool
	}{
		{"pending can be deleted", models.OrderStatusPending, false},
		{"cancelled can be deleted", models.OrderStatusCancelled, false},
		{"processing cannot be deleted", models.OrderStatusProcessing, true},
		{"shipped cannot be deleted", models.OrderStatusShipped, true},
		{"delivered cannot be deleted", models.OrderStatusDelivered, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newOrderTestEnv()
			env.addOrder("ord_1", tt.status)

			err := env.service.DeleteOrder(context.Background(), "ord_1")
			if tt.wantError {
				if !errors.IsConflict(err) {
					t.Errorf("Expected conflict error, got %v", err)
				}
				if _, ok := env.orderRepo.orders["ord_1"]; !ok {
					t.Error("Expected order to remain")
				}
				return
			}

			if err != nil {
				t.Fatalf("DeleteOrder() error = %v", err)
			}
			if _, ok := env.orderRepo.orders["ord_1"]; ok {
				t.Error("Expected order to be removed")
			}
		})
	}
}

func TestDeleteOrder_UnknownOrder(t *testing.T) {
	env := newOrderTestEnv()

	err := env.service.DeleteOrder(context.Background(), "ord_missing")
	if !errors.IsNotFound(err) {
		t.Errorf("Expected not found error, got %v", err)
	}
}

func TestValidateCreateOrderRequest(t *testing.T) {
	tests := []struct {
		name        string
		request     models.CreateOrderRequest
		shouldError bool
	}{
		{
			name: "valid request",
			request: models.CreateOrderRequest{
				UserID:          "user_1",
				ShippingAddress: "12 Bark Lane",
				Items:           []models.CreateOrderRequestItem{{ProductID: "prod_a", Quantity: 1}},
			},
			shouldError: false,
		},
		{
			name: "missing user ID",
			request: models.CreateOrderRequest{
				ShippingAddress: "12 Bark Lane",
				Items:           []models.CreateOrderRequestItem{{ProductID: "prod_a", Quantity: 1}},
			},
			shouldError: true,
		},
		{
			name: "empty items",
			request: models.CreateOrderRequest{
				UserID:          "user_1",
				ShippingAddress: "12 Bark Lane",
			},
			shouldError: true,
		},
		{
			name: "zero quantity",
			request: models.CreateOrderRequest{
				UserID:          "user_1",
				ShippingAddress: "12 Bark Lane",
				Items:           []models.CreateOrderRequestItem{{ProductID: "prod_a", Quantity: 0}},
			},
			shouldError: true,
		},
		{
			name: "negative quantity",
			request: models.CreateOrderRequest{
				UserID:          "user_1",
				ShippingAddress: "12 Bark Lane",
				Items:           []models.CreateOrderRequestItem{{ProductID: "prod_a", Quantity: -1}},
			},
			shouldError: true,
		},
		{
			name: "missing shipping address",
			request: models.CreateOrderRequest{
				UserID: "user_1",
				Items:  []models.CreateOrderRequestItem{{ProductID: "prod_a", Quantity: 1}},
			},
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCreateOrderRequest(&tt.request)
			if tt.shouldError && errors.KindOf(err) != errors.KindValidation {
				t.Errorf("Expected validation error, got %v", err)
			}
			if !tt.shouldError && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}
