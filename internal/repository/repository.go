package repository

import (
	"context"
	"time"

	"github.com/pawmart/pawmart-orders-service/internal/models"
)

// OrderRepository is the durable store for orders.
type OrderRepository interface {
	// Create persists the order and all of its items atomically, decrementing
	// catalog stock for each item in the same transaction. Either everything
	// is written or nothing is.
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error
	Delete(ctx context.Context, id string) error
	GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*models.Order, error)
}

// PaymentRepository is the durable store for payments, keyed by id and by
// the globally unique gateway reference.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByReference(ctx context.Context, reference string) (*models.Payment, error)
	// MarkVerified applies a terminal status to a still-pending payment.
	// It returns false when the payment was no longer pending, meaning a
	// concurrent verifier already applied an outcome.
	MarkVerified(ctx context.Context, reference string, status models.PaymentStatus, gatewayResponse string, verifiedAt time.Time) (bool, error)
}

// ProductCatalog is the read-only view of products the catalog service owns.
type ProductCatalog interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// OrderCache is a best-effort read cache in front of OrderRepository.
type OrderCache interface {
	Get(ctx context.Context, id string) (*models.Order, error)
	Set(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id string) error
}

var (
	_ OrderRepository   = (*PostgresOrderRepository)(nil)
	_ PaymentRepository = (*PostgresPaymentRepository)(nil)
	_ ProductCatalog    = (*PostgresProductCatalog)(nil)
	_ OrderCache        = (*RedisOrderCache)(nil)
)
