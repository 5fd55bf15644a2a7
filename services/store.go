package services

import (
	"context"
	"time"

	"lunch-menu/models"
)

// Store is the persistence collaborator behind the menu, hours and order
// flows. PgStore is the production implementation; MemStore backs local runs
// and tests.
type Store interface {
	ListDishes(ctx context.Context, kind models.DishKind) ([]models.Dish, error)
	GetDish(ctx context.Context, kind models.DishKind, id string) (*models.Dish, error)
	AddDish(ctx context.Context, in models.NewDish) (string, error)
	DeleteDish(ctx context.Context, kind models.DishKind, id string) error

	GetOperatingWindow(ctx context.Context) (*models.OperatingWindow, error)
	UpdateOperatingWindow(ctx context.Context, w models.OperatingWindow) error

	CreateOrder(ctx context.Context, form models.OrderForm) (*models.Order, error)
	AddOrderItems(ctx context.Context, orderID string, lines []models.CartLine) error
	DeleteOrder(ctx context.Context, id string) error
	ListOrders(ctx context.Context) ([]models.Order, error)
}

// AuthStore holds admin credentials, sessions, reset tokens and login
// throttling state.
type AuthStore interface {
	AdminByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	UpsertAdmin(ctx context.Context, email, passwordHash string) error
	SetAdminPassword(ctx context.Context, adminID, passwordHash string) error

	CreateSession(ctx context.Context, s models.Session) error
	SessionByToken(ctx context.Context, token string) (*models.Session, error)
	DeleteSession(ctx context.Context, token string) error
	// DeleteExpiredSessions removes sessions whose expiry is at or before now.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	CreatePasswordReset(ctx context.Context, token, adminID string, expiresAt time.Time) error
	// ConsumePasswordReset marks the token used and returns its admin id.
	// Unknown, used or expired tokens return ErrResetTokenInvalid.
	ConsumePasswordReset(ctx context.Context, token string, now time.Time) (string, error)

	LoginThrottleWaitSeconds(ctx context.Context, email string) (int, error)
	RecordLoginFailed(ctx context.Context, email string) error
	RecordLoginSuccess(ctx context.Context, email string) error
}

// EventPublisher announces order lifecycle events to other systems.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, o *models.Order) error
	PublishOrderDeleted(ctx context.Context, orderID string) error
}

// Notifier tells restaurant staff about a newly placed order.
type Notifier interface {
	NotifyOrder(ctx context.Context, o *models.Order) error
}

type nopEvents struct{}

func (nopEvents) PublishOrderCreated(context.Context, *models.Order) error { return nil }
func (nopEvents) PublishOrderDeleted(context.Context, string) error        { return nil }

// NopEvents is used when no broker is configured.
var NopEvents EventPublisher = nopEvents{}

type nopNotifier struct{}

func (nopNotifier) NotifyOrder(context.Context, *models.Order) error { return nil }

// NopNotifier is used when no staff chat is configured.
var NopNotifier Notifier = nopNotifier{}
