package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/pawmart/pawmart-orders-service/internal/config"
	"github.com/pawmart/pawmart-orders-service/internal/models"
	"github.com/pawmart/pawmart-orders-service/internal/service"
)

// ShippingEventType represents the type of shipping event.
type ShippingEventType string

const (
	ShippingEventDispatched ShippingEventType = "shipment.dispatched"
	ShippingEventDelivered  ShippingEventType = "shipment.delivered"
)

// ShippingEvent represents a shipping-related event from the fulfillment
// service.
type ShippingEvent struct {
	ID         string            `json:"id"`
	Type       ShippingEventType `json:"type"`
	ShipmentID string            `json:"shipment_id"`
	OrderID    string            `json:"order_id"`
	Carrier    string            `json:"carrier,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
}

// ShippingConsumer consumes shipping events and advances orders through
// the shipped and delivered states.
type ShippingConsumer struct {
	reader       *kafka.Reader
	orderService *service.OrderService
	logger       *zap.Logger
	stopCh       chan struct{}
}

// NewShippingConsumer creates a new Kafka-based shipping event consumer.
func NewShippingConsumer(cfg config.KafkaConfig, orderService *service.OrderService, logger *zap.Logger) *ShippingConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.ShippingTopic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})

	return &ShippingConsumer{
		reader:       reader,
		orderService: orderService,
		logger:       logger.Named("shipping-consumer"),
		stopCh:       make(chan struct{}),
	}
}

// Start begins consuming events. It blocks until the context is cancelled
// or Stop is called.
func (c *ShippingConsumer) Start(ctx context.Context) error {
	c.logger.Info("Starting shipping consumer")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info("Shipping consumer stopped")
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.logger.Error("Failed to read message", zap.Error(err))
				continue
			}

			c.handleMessage(ctx, msg)
		}
	}
}

// Stop stops the consumer.
func (c *ShippingConsumer) Stop() {
	close(c.stopCh)
	c.reader.Close()
}

func (c *ShippingConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	c.logger.Debug("Received message",
		zap.String("topic", msg.Topic),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset))

	var event ShippingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	switch event.Type {
	case ShippingEventDispatched:
		c.advanceOrder(ctx, &event, models.OrderStatusShipped)
	case ShippingEventDelivered:
		c.advanceOrder(ctx, &event, models.OrderStatusDelivered)
	default:
		c.logger.Debug("Ignoring unknown event type", zap.String("type", string(event.Type)))
	}
}

func (c *ShippingConsumer) advanceOrder(ctx context.Context, event *ShippingEvent, status models.OrderStatus) {
	c.logger.Info("Handling shipping event",
		zap.String("shipment_id", event.ShipmentID),
		zap.String("order_id", event.OrderID),
		zap.String("new_status", string(status)))

	if _, err := c.orderService.UpdateOrderStatus(ctx, event.OrderID, status); err != nil {
		c.logger.Error("Failed to update order status",
			zap.String("order_id", event.OrderID),
			zap.Error(err))
	}
}
