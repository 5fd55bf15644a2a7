package services

import (
	"context"
	"fmt"
	"time"

	"lunch-menu/db"
	"lunch-menu/models"
)

func (s *PgStore) CreateOrder(ctx context.Context, form models.OrderForm) (*models.Order, error) {
	o := models.Order{
		UserName:     form.Name,
		Registration: form.Registration,
		Observations: form.Observations,
	}
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO orders (user_name, registration, observations) VALUES ($1, $2, $3)
		RETURNING id::text, created_at`,
		form.Name, form.Registration, form.Observations,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// AddOrderItems inserts one row per cart line in a single transaction.
func (s *PgStore) AddOrderItems(ctx context.Context, orderID string, lines []models.CartLine) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, l := range lines {
		if !validID(l.ID) {
			return fmt.Errorf("order item references unknown dish %s", l.ID)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items (order_id, dish_id) VALUES ($1, $2)`,
			orderID, l.ID,
		); err != nil {
			return fmt.Errorf("insert order item %s: %w", l.ID, err)
		}
	}
	return tx.Commit(ctx)
}

func (s *PgStore) DeleteOrder(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	tag, err := db.Pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListOrders returns all orders newest first. Items whose dish was deleted
// keep a placeholder name.
func (s *PgStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT o.id::text, o.user_name, o.registration, COALESCE(o.observations, ''), o.created_at,
		       oi.id IS NOT NULL, COALESCE(oi.dish_id::text, ''), d.name
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id
		LEFT JOIN optional_dishes d ON d.id = oi.dish_id
		ORDER BY o.created_at DESC, o.id, oi.created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		var (
			id, name, reg, obs string
			createdAt          time.Time
			hasItem            bool
			dishID             string
			dishName           *string
		)
		if err := rows.Scan(&id, &name, &reg, &obs, &createdAt, &hasItem, &dishID, &dishName); err != nil {
			return nil, err
		}
		if n := len(out); n == 0 || out[n-1].ID != id {
			out = append(out, models.Order{
				ID:           id,
				UserName:     name,
				Registration: reg,
				Observations: obs,
				CreatedAt:    createdAt,
				Items:        []models.OrderItem{},
			})
		}
		if !hasItem {
			continue
		}
		item := models.OrderItem{DishID: dishID, DishName: MsgItemUnavailable}
		if dishName != nil {
			item.DishName = *dishName
		} else {
			item.DishID = ""
		}
		last := &out[len(out)-1]
		last.Items = append(last.Items, item)
	}
	return out, rows.Err()
}
