package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/pawmart/pawmart-orders-service/internal/config"
	"github.com/pawmart/pawmart-orders-service/internal/models"
	"github.com/pawmart/pawmart-orders-service/internal/service"
)

// Ensure KafkaPublisher implements service.OrderEventPublisher
var _ service.OrderEventPublisher = (*KafkaPublisher)(nil)

// EventType represents the type of domain event.
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
	EventTypeOrderDeleted       EventType = "order.deleted"
	EventTypePaymentVerified    EventType = "payment.verified"
)

// Event is the envelope every published message shares.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	OrderID   string          `json:"order_id"`
	UserID    string          `json:"user_id,omitempty"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// KafkaPublisher publishes order and payment events to Kafka.
type KafkaPublisher struct {
	ordersWriter   *kafka.Writer
	paymentsWriter *kafka.Writer
	logger         *zap.Logger
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	newWriter := func(topic string) *kafka.Writer {
		return &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			WriteTimeout: 10 * time.Second,
			RequiredAcks: kafka.RequireOne,
		}
	}

	return &KafkaPublisher{
		ordersWriter:   newWriter(cfg.OrdersTopic),
		paymentsWriter: newWriter(cfg.PaymentsTopic),
		logger:         logger.Named("kafka-publisher"),
	}
}

// PublishOrderCreated publishes an order created event.
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	event := newEvent(EventTypeOrderCreated, order.ID, order.UserID, data)
	return p.publish(ctx, p.ordersWriter, event)
}

// PublishOrderStatusChanged publishes an order status change event.
func (p *KafkaPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error {
	payload := struct {
		Order          *models.Order      `json:"order"`
		PreviousStatus models.OrderStatus `json:"previous_status"`
		NewStatus      models.OrderStatus `json:"new_status"`
	}{
		Order:          order,
		PreviousStatus: previousStatus,
		NewStatus:      order.Status,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	event := newEvent(EventTypeOrderStatusChanged, order.ID, order.UserID, data)
	return p.publish(ctx, p.ordersWriter, event)
}

// PublishOrderDeleted publishes an order deleted event.
func (p *KafkaPublisher) PublishOrderDeleted(ctx context.Context, orderID, userID string) error {
	payload := struct {
		OrderID string `json:"order_id"`
	}{OrderID: orderID}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	event := newEvent(EventTypeOrderDeleted, orderID, userID, data)
	return p.publish(ctx, p.ordersWriter, event)
}

// PublishPaymentVerified publishes the outcome of a payment reconciliation.
func (p *KafkaPublisher) PublishPaymentVerified(ctx context.Context, payment *models.Payment) error {
	data, err := json.Marshal(payment)
	if err != nil {
		return err
	}

	event := newEvent(EventTypePaymentVerified, payment.OrderID, "", data)
	return p.publish(ctx, p.paymentsWriter, event)
}

func newEvent(eventType EventType, orderID, userID string, data []byte) *Event {
	return &Event{
		ID:        "evt_" + uuid.NewString(),
		Type:      eventType,
		OrderID:   orderID,
		UserID:    userID,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, writer *kafka.Writer, event *Event) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.String("order_id", event.OrderID),
			zap.Error(err))
		return err
	}

	p.logger.Info("Event published",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("order_id", event.OrderID))

	return nil
}

// Close closes the Kafka writers.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	if err := p.ordersWriter.Close(); err != nil {
		return err
	}
	return p.paymentsWriter.Close()
}
