package service

import (
	"context"
	"sync"
	"time"

	"github.com/pawmart/pawmart-orders-service/internal/errors"
	"github.com/pawmart/pawmart-orders-service/internal/gateway"
	"github.com/pawmart/pawmart-orders-service/internal/models"
)

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

// mockOrderRepository keeps orders in a map and emulates the storage
// layer's conditional stock decrement against the shared mock catalog.
type mockOrderRepository struct {
	mu                sync.Mutex
	orders            map[string]*models.Order
	catalog           *mockProductCatalog
	updateStatusCalls int
}

func newMockOrderRepository(catalog *mockProductCatalog) *mockOrderRepository {
	return &mockOrderRepository{
		orders:  make(map[string]*models.Order),
		catalog: catalog,
	}
}

func (m *mockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.catalog != nil {
		for _, item := range order.Items {
			product, ok := m.catalog.products[item.ProductID]
			if !ok {
				return errors.NewNotFoundError("product", item.ProductID)
			}
			if product.Stock < item.Quantity {
				return errors.NewInsufficientStockError(item.ProductID, product.Stock, item.Quantity)
			}
		}
		for _, item := range order.Items {
			m.catalog.products[item.ProductID].Stock -= item.Quantity
		}
	}

	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.orders[id]
	if !ok {
		return nil, errors.NewNotFoundError("order", id)
	}
	copied := *order
	return &copied, nil
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateStatusCalls++
	order, ok := m.orders[id]
	if !ok {
		return errors.NewNotFoundError("order", id)
	}
	order.Status = status
	return nil
}

func (m *mockOrderRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[id]; !ok {
		return errors.NewNotFoundError("order", id)
	}
	delete(m.orders, id)
	return nil
}

func (m *mockOrderRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*models.Order, 0)
	for _, order := range m.orders {
		if order.UserID == userID {
			copied := *order
			result = append(result, &copied)
		}
	}
	return result, nil
}

type mockProductCatalog struct {
	products map[string]*models.Product
}

func newMockProductCatalog() *mockProductCatalog {
	return &mockProductCatalog{products: make(map[string]*models.Product)}
}

func (m *mockProductCatalog) GetByID(ctx context.Context, id string) (*models.Product, error) {
	product, ok := m.products[id]
	if !ok {
		return nil, errors.NewNotFoundError("product", id)
	}
	copied := *product
	return &copied, nil
}

type mockPaymentRepository struct {
	mu       sync.Mutex
	payments map[string]*models.Payment
}

func newMockPaymentRepository() *mockPaymentRepository {
	return &mockPaymentRepository{payments: make(map[string]*models.Payment)}
}

func (m *mockPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *payment
	m.payments[payment.Reference] = &copied
	return nil
}

func (m *mockPaymentRepository) GetByReference(ctx context.Context, reference string) (*models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	payment, ok := m.payments[reference]
	if !ok {
		return nil, errors.NewNotFoundError("payment", reference)
	}
	copied := *payment
	return &copied, nil
}

func (m *mockPaymentRepository) MarkVerified(ctx context.Context, reference string, status models.PaymentStatus, gatewayResponse string, verifiedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	payment, ok := m.payments[reference]
	if !ok || payment.Status != models.PaymentStatusPending {
		return false, nil
	}
	payment.Status = status
	payment.GatewayResponse = gatewayResponse
	payment.VerifiedAt = &verifiedAt
	return true, nil
}

type mockGateway struct {
	mu              sync.Mutex
	initializeCalls int
	verifyCalls     int
	verifyStatus    string
	verifyResponse  string
	initializeErr   error
	verifyErr       error
}

func (m *mockGateway) Initialize(ctx context.Context, req *gateway.InitializeRequest) (*gateway.InitializeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.initializeCalls++
	if m.initializeErr != nil {
		return nil, m.initializeErr
	}
	return &gateway.InitializeResult{
		AuthorizationURL: "https://checkout.example.com/" + req.Reference,
		AccessCode:       "ac_" + req.Reference,
	}, nil
}

func (m *mockGateway) Verify(ctx context.Context, reference string) (*gateway.VerifyResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.verifyCalls++
	if m.verifyErr != nil {
		return nil, m.verifyErr
	}
	return &gateway.VerifyResult{Status: m.verifyStatus, GatewayResponse: m.verifyResponse}, nil
}

func (m *mockGateway) verifyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verifyCalls
}

type mockPublisher struct {
	mu     sync.Mutex
	events []string
}

func (m *mockPublisher) record(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *mockPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	m.record("order.created")
	return nil
}

func (m *mockPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previous models.OrderStatus) error {
	m.record("order.status_changed")
	return nil
}

func (m *mockPublisher) PublishOrderDeleted(ctx context.Context, orderID, userID string) error {
	m.record("order.deleted")
	return nil
}

func (m *mockPublisher) PublishPaymentVerified(ctx context.Context, payment *models.Payment) error {
	m.record("payment.verified")
	return nil
}

type mockOrderCache struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func newMockOrderCache() *mockOrderCache {
	return &mockOrderCache{orders: make(map[string]*models.Order)}
}

func (m *mockOrderCache) Get(ctx context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order, ok := m.orders[id]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, nil
}

func (m *mockOrderCache) Set(ctx context.Context, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *mockOrderCache) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, id)
	return nil
}
