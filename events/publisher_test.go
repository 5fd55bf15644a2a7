package events

import (
	"encoding/json"
	"testing"
	"time"

	"lunch-menu/models"
)

func TestNewOrderCreatedMessage(t *testing.T) {
	created := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	o := &models.Order{
		ID:           "0b7f",
		UserName:     "Ana",
		Registration: "4321",
		CreatedAt:    created,
		Items: []models.OrderItem{
			{DishID: "a", DishName: "Bife acebolado"},
			{DishName: "Item indisponível"},
		},
	}
	msg := NewOrderCreatedMessage(o)
	if msg.OrderID != "0b7f" || msg.CustomerName != "Ana" || msg.Registration != "4321" {
		t.Errorf("unexpected header fields: %+v", msg)
	}
	if len(msg.Items) != 2 || msg.Items[0] != "Bife acebolado" {
		t.Errorf("Items = %v", msg.Items)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		t.Fatal(err)
	}
	if _, ok := fields["observations"]; ok {
		t.Errorf("empty observations should be omitted: %s", body)
	}
	if fields["order_id"] != "0b7f" {
		t.Errorf("order_id = %v", fields["order_id"])
	}
}

func TestNewOrderCreatedMessage_NoItems(t *testing.T) {
	msg := NewOrderCreatedMessage(&models.Order{ID: "x"})
	if msg.Items == nil {
		t.Error("Items should be an empty slice so it encodes as []")
	}
}
