package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the closed set of order lifecycle states.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is a known status value.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an order may move from one status to
// another. Delivered and cancelled are terminal: once there, an order only
// accepts a self-transition (a no-op). Every other pair is permitted,
// including skipping intermediate states.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case OrderStatusDelivered, OrderStatusCancelled:
		return false
	}
	return true
}

// IsTerminal reports whether no further status change is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Order is an order record. Total always equals the sum of item totals;
// items are immutable once the order is created.
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Status          OrderStatus     `json:"status"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress string          `json:"shipping_address"`
	Total           decimal.Decimal `json:"total_amount"`
	OrderDate       time.Time       `json:"order_date"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// OrderItem carries the price the product had when the order was created.
// The snapshot is never recomputed from the catalog.
type OrderItem struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// TotalPrice is the line total for the item.
func (i OrderItem) TotalPrice() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CalculateTotal recomputes Total from the item snapshots.
func (o *Order) CalculateTotal() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalPrice())
	}
	o.Total = total
}

// CanDelete reports whether the order may be removed. Orders that have
// entered fulfilment stay on record.
func (o *Order) CanDelete() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusCancelled
}

// CreateOrderRequest is the payload for order creation.
type CreateOrderRequest struct {
	UserID          string                   `json:"user_id"`
	ShippingAddress string                   `json:"shipping_address"`
	Items           []CreateOrderRequestItem `json:"items"`
}

// CreateOrderRequestItem names a product and how many of it. Prices are
// never accepted from the client; they are snapshotted from the catalog.
type CreateOrderRequestItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// UpdateOrderStatusRequest is the payload for a status change.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status"`
}
