package models

// DishKind selects one of the three dish collections.
type DishKind string

const (
	DishMain     DishKind = "main"
	DishOptional DishKind = "optional"
	DishSalad    DishKind = "salad"
)

// DishKinds lists the collections in menu display order.
var DishKinds = []DishKind{DishMain, DishSalad, DishOptional}

func (k DishKind) Valid() bool {
	switch k {
	case DishMain, DishOptional, DishSalad:
		return true
	}
	return false
}

// Dish is a menu item. DayOfWeek is 1 (Monday) .. 6 (Saturday); 0 is reserved
// for Sunday and never shown.
type Dish struct {
	ID          string   `json:"id"`
	Kind        DishKind `json:"kind"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ImageURL    string   `json:"image_url"`
	DayOfWeek   int      `json:"day_of_week"`
}

type NewDish struct {
	Kind        DishKind `json:"kind" validate:"required,oneof=main optional salad"`
	Name        string   `json:"name" validate:"required,max=120"`
	Description string   `json:"description" validate:"max=500"`
	ImageURL    string   `json:"image_url" validate:"omitempty,url,max=1000"`
	DayOfWeek   int      `json:"day_of_week" validate:"min=1,max=6"`
}

// OperatingWindow is the single opening/closing hours record (HH:MM, 24h).
type OperatingWindow struct {
	ID          string `json:"id"`
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
}
