package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"lunch-menu/logger"
	"lunch-menu/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeOrders = "orders_topic"

	RoutingOrderCreated = "order.created"
	RoutingOrderDeleted = "order.deleted"
)

// OrderCreatedMessage is the body of an order.created event.
type OrderCreatedMessage struct {
	OrderID      string    `json:"order_id"`
	CustomerName string    `json:"customer_name"`
	Registration string    `json:"registration"`
	Observations string    `json:"observations,omitempty"`
	Items        []string  `json:"items"`
	CreatedAt    time.Time `json:"created_at"`
}

// OrderDeletedMessage is the body of an order.deleted event.
type OrderDeletedMessage struct {
	OrderID   string    `json:"order_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

func NewOrderCreatedMessage(o *models.Order) OrderCreatedMessage {
	items := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, it.DishName)
	}
	return OrderCreatedMessage{
		OrderID:      o.ID,
		CustomerName: o.UserName,
		Registration: o.Registration,
		Observations: o.Observations,
		Items:        items,
		CreatedAt:    o.CreatedAt,
	}
}

// Publisher sends order events to the orders topic exchange.
type Publisher struct {
	conn *amqp.Connection
	log  *logger.Logger

	mu sync.Mutex // guards ch
	ch *amqp.Channel
}

// Dial connects to the broker and declares the orders exchange.
func Dial(url string, log *logger.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		ExchangeOrders, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", ExchangeOrders, err)
	}
	log.Info("rabbitmq_connected", "", "Connected to RabbitMQ", slog.String("exchange", ExchangeOrders))
	return &Publisher{conn: conn, ch: ch, log: log}, nil
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, o *models.Order) error {
	return p.publish(ctx, RoutingOrderCreated, NewOrderCreatedMessage(o))
}

func (p *Publisher) PublishOrderDeleted(ctx context.Context, orderID string) error {
	return p.publish(ctx, RoutingOrderDeleted, OrderDeletedMessage{OrderID: orderID, DeletedAt: time.Now().UTC()})
}

func (p *Publisher) publish(ctx context.Context, routingKey string, message any) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", routingKey, err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	p.mu.Lock()
	err = p.ch.PublishWithContext(ctx,
		ExchangeOrders, // exchange
		routingKey,     // routing key
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	p.log.Debug("message_published", logger.RequestID(ctx), "Published order event",
		slog.String("routing_key", routingKey), slog.Int("message_size", len(body)))
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}
