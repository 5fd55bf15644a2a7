package models

import "time"

// CartLine is a dish reference held in a visitor's cart until submission.
type CartLine struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OrderForm is what the customer types in before submitting the cart.
type OrderForm struct {
	Name         string `json:"name"`
	Registration string `json:"registration"`
	Observations string `json:"observations"`
}

// Order is a row from orders with its line items.
type Order struct {
	ID           string      `json:"id"`
	UserName     string      `json:"user_name"`
	Registration string      `json:"registration"`
	Observations string      `json:"observations"`
	CreatedAt    time.Time   `json:"created_at"`
	Items        []OrderItem `json:"items"`
}

type OrderItem struct {
	DishID   string `json:"dish_id,omitempty"`
	DishName string `json:"dish_name"`
}
