package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"lunch-menu/logger"
	"lunch-menu/models"
)

// SubmitState is where a submission attempt currently is.
type SubmitState string

const (
	StateIdle       SubmitState = "idle"
	StateValidating SubmitState = "validating"
	StateSubmitting SubmitState = "submitting"
)

// OrderWorkflow turns a cart and a form into a stored order: open check,
// field validation, order row, then one item row per cart line.
type OrderWorkflow struct {
	store    Store
	status   OpenChecker
	rules    []FieldRule
	events   EventPublisher
	notifier Notifier
	log      *logger.Logger
}

func NewOrderWorkflow(store Store, status OpenChecker, events EventPublisher, notifier Notifier, log *logger.Logger) *OrderWorkflow {
	if events == nil {
		events = NopEvents
	}
	if notifier == nil {
		notifier = NopNotifier
	}
	return &OrderWorkflow{
		store:    store,
		status:   status,
		rules:    OrderFormRules,
		events:   events,
		notifier: notifier,
		log:      log,
	}
}

// Submit places the order. On success the cart is cleared. On any failure the
// cart is left as it was. If the item rows cannot be written the order row is
// deleted again so no empty order is left behind.
func (w *OrderWorkflow) Submit(ctx context.Context, cart *Cart, form models.OrderForm) (*models.Order, error) {
	requestID := logger.RequestID(ctx)
	if !w.status.IsOpen() {
		return nil, ErrStoreClosed
	}

	w.trace(requestID, StateValidating)
	form = NormalizeForm(form)
	if err := ValidateOrder(w.rules, form, cart.Len()); err != nil {
		w.trace(requestID, StateIdle)
		return nil, err
	}

	w.trace(requestID, StateSubmitting)
	lines := cart.Lines()
	order, err := w.store.CreateOrder(ctx, form)
	if err != nil {
		w.log.Error("order_create_failed", requestID, "Failed to create order", err)
		w.trace(requestID, StateIdle)
		return nil, fmt.Errorf("%w: create order: %v", ErrSubmitFailed, err)
	}
	if err := w.store.AddOrderItems(ctx, order.ID, lines); err != nil {
		w.log.Error("order_items_failed", requestID, "Failed to add order items", err,
			slog.String("order_id", order.ID))
		if delErr := w.store.DeleteOrder(context.WithoutCancel(ctx), order.ID); delErr != nil {
			w.log.Error("order_compensation_failed", requestID, "Failed to remove partial order", delErr,
				slog.String("order_id", order.ID))
		}
		w.trace(requestID, StateIdle)
		return nil, fmt.Errorf("%w: add items: %v", ErrSubmitFailed, err)
	}

	order.Items = make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		order.Items = append(order.Items, models.OrderItem{DishID: l.ID, DishName: l.Name})
	}
	cart.Clear()
	w.trace(requestID, StateIdle)
	w.log.Info("order_placed", requestID, "Order placed",
		slog.String("order_id", order.ID), slog.Int("items", len(order.Items)))

	if err := w.events.PublishOrderCreated(ctx, order); err != nil {
		w.log.Error("order_event_failed", requestID, "Failed to publish order.created", err,
			slog.String("order_id", order.ID))
	}
	if err := w.notifier.NotifyOrder(ctx, order); err != nil {
		w.log.Error("order_notify_failed", requestID, "Failed to notify staff", err,
			slog.String("order_id", order.ID))
	}
	return order, nil
}

func (w *OrderWorkflow) trace(requestID string, s SubmitState) {
	w.log.Debug("order_state", requestID, "Submission state", slog.String("state", string(s)))
}

// Ordering is the customer side: carts and order placement.
type Ordering struct {
	store    Store
	carts    *CartBook
	status   OpenChecker
	workflow *OrderWorkflow
}

func NewOrdering(store Store, carts *CartBook, status OpenChecker, workflow *OrderWorkflow) *Ordering {
	return &Ordering{store: store, carts: carts, status: status, workflow: workflow}
}

// AddToCart puts an optional dish in the visitor's cart and returns the new
// cart size. Only optional dishes are orderable, and only while open.
func (o *Ordering) AddToCart(ctx context.Context, visitorID, dishID string) (int, error) {
	if !o.status.IsOpen() {
		return 0, ErrStoreClosed
	}
	dish, err := o.store.GetDish(ctx, models.DishOptional, dishID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, ErrNotOrderable
		}
		return 0, err
	}
	var size int
	err = o.carts.With(visitorID, func(c *Cart) error {
		if err := c.Add(models.CartLine{ID: dish.ID, Name: dish.Name}); err != nil {
			size = c.Len()
			return err
		}
		size = c.Len()
		return nil
	})
	return size, err
}

// RemoveFromCart drops a line; removing an absent dish is ErrNotFound.
func (o *Ordering) RemoveFromCart(visitorID, dishID string) (int, error) {
	var size int
	err := o.carts.With(visitorID, func(c *Cart) error {
		removed := c.Remove(dishID)
		size = c.Len()
		if !removed {
			return ErrNotFound
		}
		return nil
	})
	return size, err
}

func (o *Ordering) Cart(visitorID string) []models.CartLine {
	return o.carts.Lines(visitorID)
}

// PlaceOrder submits the visitor's cart. The cart stays locked for the whole
// submission so concurrent edits from the same visitor wait.
func (o *Ordering) PlaceOrder(ctx context.Context, visitorID string, form models.OrderForm) (*models.Order, error) {
	var order *models.Order
	err := o.carts.With(visitorID, func(c *Cart) error {
		var err error
		order, err = o.workflow.Submit(ctx, c, form)
		return err
	})
	return order, err
}

// OrderBook is the admin side of orders.
type OrderBook struct {
	store  Store
	events EventPublisher
	log    *logger.Logger
}

func NewOrderBook(store Store, events EventPublisher, log *logger.Logger) *OrderBook {
	if events == nil {
		events = NopEvents
	}
	return &OrderBook{store: store, events: events, log: log}
}

// List returns all orders, newest first.
func (b *OrderBook) List(ctx context.Context) ([]models.Order, error) {
	orders, err := b.store.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (b *OrderBook) Delete(ctx context.Context, id string) error {
	if err := b.store.DeleteOrder(ctx, id); err != nil {
		return err
	}
	if err := b.events.PublishOrderDeleted(ctx, id); err != nil {
		b.log.Error("order_event_failed", logger.RequestID(ctx), "Failed to publish order.deleted", err,
			slog.String("order_id", id))
	}
	return nil
}
