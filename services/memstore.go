package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"lunch-menu/models"

	"github.com/google/uuid"
)

// MemStore keeps everything in process memory. It backs STORAGE=memory runs
// and the tests; data is lost on restart.
type MemStore struct {
	mu       sync.Mutex
	now      func() time.Time
	dishes   map[models.DishKind][]models.Dish
	window   models.OperatingWindow
	orders   []memOrder
	admins   map[string]*models.AdminUser
	sessions map[string]models.Session
	resets   map[string]memReset
	throttle map[string]*memThrottle
}

type memOrder struct {
	order   models.Order
	dishIDs []string
}

type memReset struct {
	adminID   string
	expiresAt time.Time
	used      bool
}

type memThrottle struct {
	failCount     int
	cooldownUntil time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{
		now:      time.Now,
		dishes:   make(map[models.DishKind][]models.Dish),
		window:   models.OperatingWindow{ID: uuid.NewString(), OpeningTime: "11:00", ClosingTime: "14:00"},
		admins:   make(map[string]*models.AdminUser),
		sessions: make(map[string]models.Session),
		resets:   make(map[string]memReset),
		throttle: make(map[string]*memThrottle),
	}
}

// SetClock replaces the time source used for created_at and throttling.
func (s *MemStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

func (s *MemStore) ListDishes(_ context.Context, kind models.DishKind) ([]models.Dish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]models.Dish(nil), s.dishes[kind]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DayOfWeek < out[j].DayOfWeek })
	return out, nil
}

func (s *MemStore) GetDish(_ context.Context, kind models.DishKind, id string) (*models.Dish, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.dishes[kind] {
		if d.ID == id {
			d := d
			return &d, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) AddDish(_ context.Context, in models.NewDish) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := models.Dish{
		ID:          uuid.NewString(),
		Kind:        in.Kind,
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		DayOfWeek:   in.DayOfWeek,
	}
	s.dishes[in.Kind] = append(s.dishes[in.Kind], d)
	return d.ID, nil
}

func (s *MemStore) DeleteDish(_ context.Context, kind models.DishKind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.dishes[kind]
	for i, d := range list {
		if d.ID == id {
			s.dishes[kind] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemStore) GetOperatingWindow(context.Context) (*models.OperatingWindow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.window
	return &w, nil
}

func (s *MemStore) UpdateOperatingWindow(_ context.Context, w models.OperatingWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.window.OpeningTime = w.OpeningTime
	s.window.ClosingTime = w.ClosingTime
	return nil
}

func (s *MemStore) CreateOrder(_ context.Context, form models.OrderForm) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := models.Order{
		ID:           uuid.NewString(),
		UserName:     form.Name,
		Registration: form.Registration,
		Observations: form.Observations,
		CreatedAt:    s.now(),
	}
	s.orders = append(s.orders, memOrder{order: o})
	return &o, nil
}

func (s *MemStore) AddOrderItems(_ context.Context, orderID string, lines []models.CartLine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i := range s.orders {
		if s.orders[i].order.ID == orderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("order %s: %w", orderID, ErrNotFound)
	}
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if !s.hasDishLocked(models.DishOptional, l.ID) {
			return fmt.Errorf("order item references unknown dish %s", l.ID)
		}
		ids = append(ids, l.ID)
	}
	s.orders[idx].dishIDs = append(s.orders[idx].dishIDs, ids...)
	return nil
}

func (s *MemStore) hasDishLocked(kind models.DishKind, id string) bool {
	for _, d := range s.dishes[kind] {
		if d.ID == id {
			return true
		}
	}
	return false
}

func (s *MemStore) DeleteOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].order.ID == id {
			s.orders = append(s.orders[:i:i], s.orders[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemStore) ListOrders(context.Context) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make(map[string]string, len(s.dishes[models.DishOptional]))
	for _, d := range s.dishes[models.DishOptional] {
		names[d.ID] = d.Name
	}
	out := make([]models.Order, 0, len(s.orders))
	for i := len(s.orders) - 1; i >= 0; i-- {
		o := s.orders[i].order
		o.Items = make([]models.OrderItem, 0, len(s.orders[i].dishIDs))
		for _, id := range s.orders[i].dishIDs {
			name, ok := names[id]
			if !ok {
				o.Items = append(o.Items, models.OrderItem{DishName: MsgItemUnavailable})
				continue
			}
			o.Items = append(o.Items, models.OrderItem{DishID: id, DishName: name})
		}
		out = append(out, o)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemStore) AdminByEmail(_ context.Context, email string) (*models.AdminUser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.admins[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *MemStore) UpsertAdmin(_ context.Context, email, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(email)
	if a, ok := s.admins[key]; ok {
		a.PasswordHash = passwordHash
		return nil
	}
	s.admins[key] = &models.AdminUser{ID: uuid.NewString(), Email: key, PasswordHash: passwordHash}
	return nil
}

func (s *MemStore) SetAdminPassword(_ context.Context, adminID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if a.ID == adminID {
			a.PasswordHash = passwordHash
			for token, sess := range s.sessions {
				if sess.AdminID == adminID {
					delete(s.sessions, token)
				}
			}
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemStore) CreateSession(_ context.Context, sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	return nil
}

func (s *MemStore) SessionByToken(_ context.Context, token string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *MemStore) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *MemStore) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for token, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, token)
			n++
		}
	}
	return n, nil
}

func (s *MemStore) CreatePasswordReset(_ context.Context, token, adminID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets[token] = memReset{adminID: adminID, expiresAt: expiresAt}
	return nil
}

func (s *MemStore) ConsumePasswordReset(_ context.Context, token string, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resets[token]
	if !ok || r.used || !now.Before(r.expiresAt) {
		return "", ErrResetTokenInvalid
	}
	r.used = true
	s.resets[token] = r
	return r.adminID, nil
}

func (s *MemStore) LoginThrottleWaitSeconds(_ context.Context, email string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	th, ok := s.throttle[email]
	if !ok {
		return 0, nil
	}
	now := s.now()
	if now.Before(th.cooldownUntil) {
		return int(th.cooldownUntil.Sub(now).Seconds()) + 1, nil
	}
	return 0, nil
}

func (s *MemStore) RecordLoginFailed(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	th, ok := s.throttle[email]
	if !ok {
		th = &memThrottle{}
		s.throttle[email] = th
	}
	th.failCount++
	th.cooldownUntil = s.now().Add(time.Duration(CooldownSecondsForFailCount(th.failCount)) * time.Second)
	return nil
}

func (s *MemStore) RecordLoginSuccess(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.throttle, email)
	return nil
}
