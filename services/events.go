package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/nuthu-archive/storefront-api/logger"
	"github.com/nuthu-archive/storefront-api/models"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventOrderCreated = "order.created"
	EventOrderPaid    = "order.paid"
	EventOrderFailed  = "order.failed"
)

type OrderEvent struct {
	Type          string    `json:"type"`
	OrderID       uint      `json:"orderId"`
	TotalAmount   float64   `json:"totalAmount"`
	Currency      string    `json:"currency"`
	Email         string    `json:"email,omitempty"`
	PaymentStatus string    `json:"paymentStatus"`
	OccurredAt    time.Time `json:"occurredAt"`
}

func newOrderEvent(eventType string, order *models.Order) OrderEvent {
	event := OrderEvent{
		Type:          eventType,
		OrderID:       order.ID,
		TotalAmount:   order.TotalAmount,
		Currency:      order.Currency,
		PaymentStatus: order.PaymentStatus,
		OccurredAt:    time.Now().UTC(),
	}
	if order.CustomerEmail != nil {
		event.Email = *order.CustomerEmail
	}
	return event
}

// EventPublisher ships order lifecycle events to downstream consumers
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
	Close() error
}

type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	logger.Log.Info("Kafka producer initialized", zap.String("topic", topic), zap.Strings("brokers", brokers))
	return &KafkaPublisher{writer: w, topic: topic}
}

func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.OrderID), 10)),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}

	logger.Info(ctx, "Order event published", zap.String("type", event.Type), zap.Uint("order_id", event.OrderID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher drops events when no broker is configured
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderEvent(context.Context, OrderEvent) error { return nil }
func (NoopPublisher) Close() error                                        { return nil }
