package services

import (
	"context"
	"errors"
	"fmt"

	"lunch-menu/db"
	"lunch-menu/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PgStore is the PostgreSQL Store and AuthStore. It uses the shared db.Pool.
type PgStore struct{}

func NewPgStore() *PgStore {
	return &PgStore{}
}

var dishTables = map[models.DishKind]string{
	models.DishMain:     "main_dishes",
	models.DishOptional: "optional_dishes",
	models.DishSalad:    "salads",
}

func dishTable(kind models.DishKind) (string, error) {
	t, ok := dishTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown dish kind %q: %w", kind, ErrInvalidDish)
	}
	return t, nil
}

// validID reports whether id can be compared against a uuid column without
// a cast error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *PgStore) ListDishes(ctx context.Context, kind models.DishKind) ([]models.Dish, error) {
	table, err := dishTable(kind)
	if err != nil {
		return nil, err
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT id::text, name, COALESCE(description, ''), COALESCE(image_url, ''), day_of_week
		FROM `+table+`
		ORDER BY day_of_week, created_at`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.Dish
	for rows.Next() {
		d := models.Dish{Kind: kind}
		if err := rows.Scan(&d.ID, &d.Name, &d.Description, &d.ImageURL, &d.DayOfWeek); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

func (s *PgStore) GetDish(ctx context.Context, kind models.DishKind, id string) (*models.Dish, error) {
	table, err := dishTable(kind)
	if err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, ErrNotFound
	}
	d := models.Dish{Kind: kind}
	err = db.Pool.QueryRow(ctx, `
		SELECT id::text, name, COALESCE(description, ''), COALESCE(image_url, ''), day_of_week
		FROM `+table+` WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.Name, &d.Description, &d.ImageURL, &d.DayOfWeek)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *PgStore) AddDish(ctx context.Context, in models.NewDish) (string, error) {
	table, err := dishTable(in.Kind)
	if err != nil {
		return "", err
	}
	var id string
	err = db.Pool.QueryRow(ctx, `
		INSERT INTO `+table+` (name, description, image_url, day_of_week) VALUES ($1, $2, $3, $4)
		RETURNING id::text`,
		in.Name, in.Description, in.ImageURL, in.DayOfWeek,
	).Scan(&id)
	return id, err
}

func (s *PgStore) DeleteDish(ctx context.Context, kind models.DishKind, id string) error {
	table, err := dishTable(kind)
	if err != nil {
		return err
	}
	if !validID(id) {
		return ErrNotFound
	}
	tag, err := db.Pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PgStore) GetOperatingWindow(ctx context.Context) (*models.OperatingWindow, error) {
	var w models.OperatingWindow
	err := db.Pool.QueryRow(ctx, `
		SELECT id::text, to_char(opening_time, 'HH24:MI'), to_char(closing_time, 'HH24:MI')
		FROM admin_settings
		ORDER BY created_at
		LIMIT 1`,
	).Scan(&w.ID, &w.OpeningTime, &w.ClosingTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &w, nil
}

// UpdateOperatingWindow rewrites the single settings row, creating it if the
// table was emptied by hand.
func (s *PgStore) UpdateOperatingWindow(ctx context.Context, w models.OperatingWindow) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE admin_settings SET opening_time = $1::time, closing_time = $2::time, updated_at = now()`,
		w.OpeningTime, w.ClosingTime,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO admin_settings (opening_time, closing_time) VALUES ($1::time, $2::time)`,
		w.OpeningTime, w.ClosingTime,
	)
	return err
}
