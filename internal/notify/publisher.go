package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange             = "marketplace.events"
	NotificationRoutingKey     = "order.notification.v1"
	EventTypeOrderNotification = "OrderNotification"
)

// OrderNotification is the event consumed by delivery channels (push
// services, e-mail workers). Each channel fans out to its own targets.
type OrderNotification struct {
	EventType string    `json:"eventType"`
	EventID   string    `json:"eventId"`
	UserID    string    `json:"userId"`
	OrderID   string    `json:"orderId"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

func (p *Publisher) PublishOrderNotification(ctx context.Context, userID, orderID, title, message string) error {
	ev := OrderNotification{
		EventType: EventTypeOrderNotification,
		EventID:   uuid.NewString(),
		UserID:    userID,
		OrderID:   orderID,
		Title:     title,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal OrderNotification: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		NotificationRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}
