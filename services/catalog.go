package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lunch-menu/models"

	"github.com/go-playground/validator/v10"
)

const (
	FirstMenuDay = 1
	LastMenuDay  = 6
)

var validate = validator.New()

// GroupByDay buckets dishes by day 1..6. Every day is present, with an empty
// slice when nothing is served; dishes on other days are dropped. Input
// order is kept within a day.
func GroupByDay(items []models.Dish) map[int][]models.Dish {
	grouped := make(map[int][]models.Dish, LastMenuDay)
	for day := FirstMenuDay; day <= LastMenuDay; day++ {
		grouped[day] = []models.Dish{}
	}
	for _, it := range items {
		if it.DayOfWeek < FirstMenuDay || it.DayOfWeek > LastMenuDay {
			continue
		}
		grouped[it.DayOfWeek] = append(grouped[it.DayOfWeek], it)
	}
	return grouped
}

// DayMenu is everything served on one day.
type DayMenu struct {
	Day      int           `json:"day"`
	DayName  string        `json:"day_name"`
	Main     []models.Dish `json:"main_dishes"`
	Salads   []models.Dish `json:"salads"`
	Optional []models.Dish `json:"optional_dishes"`
}

// WeekMenu holds the three collections grouped by day.
type WeekMenu struct {
	Main     map[int][]models.Dish
	Salads   map[int][]models.Dish
	Optional map[int][]models.Dish
}

func (w *WeekMenu) Day(day int) DayMenu {
	dm := DayMenu{
		Day:      day,
		Main:     w.Main[day],
		Salads:   w.Salads[day],
		Optional: w.Optional[day],
	}
	if day >= 0 && day < len(DayNames) {
		dm.DayName = DayNames[day]
	}
	if dm.Main == nil {
		dm.Main = []models.Dish{}
	}
	if dm.Salads == nil {
		dm.Salads = []models.Dish{}
	}
	if dm.Optional == nil {
		dm.Optional = []models.Dish{}
	}
	return dm
}

// Days returns the menus for days 1..6 in order.
func (w *WeekMenu) Days() []DayMenu {
	out := make([]DayMenu, 0, LastMenuDay)
	for day := FirstMenuDay; day <= LastMenuDay; day++ {
		out = append(out, w.Day(day))
	}
	return out
}

type Catalog struct {
	store Store
}

func NewCatalog(store Store) *Catalog {
	return &Catalog{store: store}
}

// Week loads all three collections and groups them by day.
func (c *Catalog) Week(ctx context.Context) (*WeekMenu, error) {
	all, err := c.All(ctx)
	if err != nil {
		return nil, err
	}
	return &WeekMenu{
		Main:     GroupByDay(all[models.DishMain]),
		Salads:   GroupByDay(all[models.DishSalad]),
		Optional: GroupByDay(all[models.DishOptional]),
	}, nil
}

// Menu is the grouped menu for a single day.
func (c *Catalog) Menu(ctx context.Context, day int) (DayMenu, error) {
	if day < FirstMenuDay || day > LastMenuDay {
		return DayMenu{}, ErrNotFound
	}
	week, err := c.Week(ctx)
	if err != nil {
		return DayMenu{}, err
	}
	return week.Day(day), nil
}

// All lists every dish per kind, ordered by day.
func (c *Catalog) All(ctx context.Context) (map[models.DishKind][]models.Dish, error) {
	out := make(map[models.DishKind][]models.Dish, len(models.DishKinds))
	for _, kind := range models.DishKinds {
		list, err := c.store.ListDishes(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("list %s dishes: %w", kind, err)
		}
		if list == nil {
			list = []models.Dish{}
		}
		out[kind] = list
	}
	return out, nil
}

func (c *Catalog) Get(ctx context.Context, kind models.DishKind, id string) (*models.Dish, error) {
	if !kind.Valid() {
		return nil, ErrNotFound
	}
	return c.store.GetDish(ctx, kind, id)
}

// Add validates and stores a new dish, returning its id.
func (c *Catalog) Add(ctx context.Context, in models.NewDish) (string, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return "", fmt.Errorf("%w: %s failed on %s", ErrInvalidDish, strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidDish, err)
	}
	return c.store.AddDish(ctx, in)
}

func (c *Catalog) Delete(ctx context.Context, kind models.DishKind, id string) error {
	if !kind.Valid() {
		return ErrNotFound
	}
	return c.store.DeleteDish(ctx, kind, id)
}
