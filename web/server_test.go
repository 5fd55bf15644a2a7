package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"lunch-menu/logger"
	"lunch-menu/models"
	"lunch-menu/services"
)

var (
	monday = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	sunday = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "segredo123"
)

type testEnv struct {
	srv      *httptest.Server
	client   *http.Client
	store    *services.MemStore
	optional string // id of a seeded optional dish
	main     string // id of a seeded main dish
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	ctx := context.Background()
	log := logger.Nop()

	store := services.NewMemStore()
	store.SetClock(func() time.Time { return now })
	optID, err := store.AddDish(ctx, models.NewDish{Kind: models.DishOptional, Name: "Omelete", DayOfWeek: 1})
	if err != nil {
		t.Fatal(err)
	}
	mainID, err := store.AddDish(ctx, models.NewDish{Kind: models.DishMain, Name: "Feijoada", DayOfWeek: 1})
	if err != nil {
		t.Fatal(err)
	}

	monitor := services.NewStatusMonitor(store, time.UTC, time.Minute, log)
	monitor.SetClock(func() time.Time { return now })
	if err := monitor.Refresh(ctx); err != nil {
		t.Fatal(err)
	}

	carts := services.NewCartBook(time.Hour)
	workflow := services.NewOrderWorkflow(store, monitor, nil, nil, log)
	auth := services.NewAuth(store, nil, services.AuthOptions{}, log)
	if _, err := auth.EnsureAdmin(ctx, adminEmail, adminPassword); err != nil {
		t.Fatal(err)
	}

	s := NewServer(Deps{
		Catalog:        services.NewCatalog(store),
		Ordering:       services.NewOrdering(store, carts, monitor, workflow),
		Orders:         services.NewOrderBook(store, nil, log),
		Hours:          services.NewHours(store, monitor, log),
		Status:         monitor,
		Auth:           auth,
		Log:            log,
		RestaurantName: "Restaurante Teste",
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testEnv{srv: srv, client: client, store: store, optional: optID, main: mainID}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.srv.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func (e *testEnv) cartCount(t *testing.T) int {
	t.Helper()
	resp, data := e.do(t, http.MethodGet, "/cart", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /cart status = %d", resp.StatusCode)
	}
	return decode[cartResponse](t, data).Count
}

func (e *testEnv) signIn(t *testing.T) {
	t.Helper()
	resp, data := e.do(t, http.MethodPost, "/admin", signInRequest{Email: adminEmail, Password: adminPassword})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sign in status = %d: %s", resp.StatusCode, data)
	}
}

func TestRootRedirectsToMenu(t *testing.T) {
	e := newTestEnv(t, monday)
	resp, _ := e.do(t, http.MethodGet, "/", nil)
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("status = %d, want 302", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/menu" {
		t.Errorf("Location = %q, want /menu", loc)
	}
}

func TestGetMenu(t *testing.T) {
	e := newTestEnv(t, monday)
	resp, data := e.do(t, http.MethodGet, "/menu", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	m := decode[menuResponse](t, data)
	if !m.Status.Open {
		t.Error("store should be open on Monday at noon")
	}
	if m.Today != 1 {
		t.Errorf("today = %d, want 1", m.Today)
	}
	if len(m.Days) != 6 {
		t.Fatalf("days = %d, want 6", len(m.Days))
	}
	if len(m.Days[0].Optional) != 1 || len(m.Days[0].Main) != 1 {
		t.Errorf("Monday menu = %+v", m.Days[0])
	}
	if m.Days[5].Salads == nil {
		t.Error("empty buckets should be present, not null")
	}
}

func TestGetMenuDay(t *testing.T) {
	e := newTestEnv(t, monday)
	tests := []struct {
		path string
		want int
	}{
		{"/menu/1", http.StatusOK},
		{"/menu/6", http.StatusOK},
		{"/menu/0", http.StatusNotFound},
		{"/menu/7", http.StatusNotFound},
	}
	for _, tt := range tests {
		resp, _ := e.do(t, http.MethodGet, tt.path, nil)
		if resp.StatusCode != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, resp.StatusCode, tt.want)
		}
	}
}

func TestAddToCart_StoreClosed(t *testing.T) {
	e := newTestEnv(t, sunday)
	resp, data := e.do(t, http.MethodPost, "/cart", addToCartRequest{ID: e.optional})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	if got := decode[errorBody](t, data).Error; got != services.MsgStoreClosed {
		t.Errorf("error = %q, want %q", got, services.MsgStoreClosed)
	}
	if n := e.cartCount(t); n != 0 {
		t.Errorf("cart size = %d, want 0", n)
	}
}

func TestAddToCart_OpenAndDuplicate(t *testing.T) {
	e := newTestEnv(t, monday)
	resp, data := e.do(t, http.MethodPost, "/cart", addToCartRequest{ID: e.optional})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", resp.StatusCode, data)
	}
	if got := decode[cartChangeResponse](t, data).Count; got != 1 {
		t.Errorf("count = %d, want 1", got)
	}

	resp, data = e.do(t, http.MethodPost, "/cart", addToCartRequest{ID: e.optional})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate status = %d, want 409", resp.StatusCode)
	}
	if got := decode[errorBody](t, data).Error; got != services.MsgAlreadyInCart {
		t.Errorf("duplicate error = %q", got)
	}
	if n := e.cartCount(t); n != 1 {
		t.Errorf("cart size = %d, want 1", n)
	}

	resp, _ = e.do(t, http.MethodDelete, "/cart/"+e.optional, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove status = %d", resp.StatusCode)
	}
	if n := e.cartCount(t); n != 0 {
		t.Errorf("cart size after remove = %d, want 0", n)
	}
	resp, _ = e.do(t, http.MethodDelete, "/cart/"+e.optional, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second remove status = %d, want 404", resp.StatusCode)
	}
}

func TestAddToCart_MainDishRejected(t *testing.T) {
	e := newTestEnv(t, monday)
	resp, _ := e.do(t, http.MethodPost, "/cart", addToCartRequest{ID: e.main})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPlaceOrder_Validation(t *testing.T) {
	tests := []struct {
		name      string
		fillCart  bool
		form      models.OrderForm
		wantField string
		wantMsg   string
	}{
		{"bad registration", true, models.OrderForm{Name: "Ana", Registration: "12a4"}, "registration", services.MsgInvalidRegistration},
		{"bad name", true, models.OrderForm{Name: "Ana 2", Registration: "1234"}, "name", services.MsgInvalidName},
		{"empty cart", false, models.OrderForm{Name: "Ana", Registration: "1234"}, "cart", services.MsgEmptyCart},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t, monday)
			if tt.fillCart {
				e.do(t, http.MethodPost, "/cart", addToCartRequest{ID: e.optional})
			}
			resp, data := e.do(t, http.MethodPost, "/orders", tt.form)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400: %s", resp.StatusCode, data)
			}
			got := decode[errorBody](t, data)
			if got.Field != tt.wantField || got.Error != tt.wantMsg {
				t.Errorf("got %+v, want field %q message %q", got, tt.wantField, tt.wantMsg)
			}
			orders, _ := e.store.ListOrders(context.Background())
			if len(orders) != 0 {
				t.Errorf("orders stored = %d, want 0", len(orders))
			}
		})
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	e := newTestEnv(t, monday)
	e.do(t, http.MethodPost, "/cart", addToCartRequest{ID: e.optional})
	resp, data := e.do(t, http.MethodPost, "/orders", models.OrderForm{Name: "José", Registration: "1234", Observations: "Sem sal."})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", resp.StatusCode, data)
	}
	placed := decode[orderPlacedResponse](t, data)
	if placed.Message != services.MsgOrderPlaced || placed.Order == nil || len(placed.Order.Items) != 1 {
		t.Errorf("unexpected response %s", data)
	}
	if n := e.cartCount(t); n != 0 {
		t.Errorf("cart size after order = %d, want 0", n)
	}
	orders, _ := e.store.ListOrders(context.Background())
	if len(orders) != 1 || orders[0].Items[0].DishName != "Omelete" {
		t.Errorf("stored orders = %+v", orders)
	}
}

func TestDashboard_RequiresSession(t *testing.T) {
	e := newTestEnv(t, monday)
	for _, path := range []string{"/admin/dashboard", "/admin/dashboard/orders", "/admin/dashboard/orders/report.pdf"} {
		resp, data := e.do(t, http.MethodGet, path, nil)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s = %d, want 401", path, resp.StatusCode)
			continue
		}
		if got := decode[errorBody](t, data).Redirect; got != "/admin" {
			t.Errorf("redirect = %q, want /admin", got)
		}
	}
}

func TestSignIn_WrongPassword(t *testing.T) {
	e := newTestEnv(t, monday)
	resp, data := e.do(t, http.MethodPost, "/admin", signInRequest{Email: adminEmail, Password: "errada"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	if got := decode[errorBody](t, data).Error; got != services.MsgLoginFailed {
		t.Errorf("error = %q", got)
	}
	resp, _ = e.do(t, http.MethodPost, "/admin", signInRequest{Email: adminEmail, Password: adminPassword})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("retry during cooldown = %d, want 429", resp.StatusCode)
	}
}

func TestAdminFlow(t *testing.T) {
	e := newTestEnv(t, monday)
	e.signIn(t)

	resp, data := e.do(t, http.MethodGet, "/admin/dashboard", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status = %d: %s", resp.StatusCode, data)
	}
	dash := decode[dashboardResponse](t, data)
	if dash.Admin != adminEmail || dash.Settings == nil || dash.Settings.OpeningTime != "11:00" {
		t.Errorf("dashboard = %+v", dash)
	}

	// Hours.
	resp, _ = e.do(t, http.MethodPut, "/admin/dashboard/settings", settingsRequest{OpeningTime: "14:00", ClosingTime: "11:00"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("inverted window status = %d, want 400", resp.StatusCode)
	}
	resp, data = e.do(t, http.MethodPut, "/admin/dashboard/settings", settingsRequest{OpeningTime: "13:00", ClosingTime: "15:00"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("settings status = %d: %s", resp.StatusCode, data)
	}
	if got := decode[settingsResponse](t, data).Settings; got.OpeningTime != "13:00" {
		t.Errorf("settings = %+v", got)
	}
	resp, _ = e.do(t, http.MethodPost, "/cart", addToCartRequest{ID: e.optional})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("add before new opening time = %d, want 409", resp.StatusCode)
	}
	e.do(t, http.MethodPut, "/admin/dashboard/settings", settingsRequest{OpeningTime: "11:00", ClosingTime: "14:00"})

	// Dishes.
	resp, _ = e.do(t, http.MethodPost, "/admin/dashboard/dishes", models.NewDish{Kind: models.DishSalad, Name: "Caesar", DayOfWeek: 9})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad day status = %d, want 400", resp.StatusCode)
	}
	resp, data = e.do(t, http.MethodPost, "/admin/dashboard/dishes", models.NewDish{Kind: models.DishSalad, Name: "Caesar", DayOfWeek: 2})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add dish status = %d: %s", resp.StatusCode, data)
	}
	saladID := decode[dishAddedResponse](t, data).ID
	resp, _ = e.do(t, http.MethodDelete, "/admin/dashboard/dishes/salad/"+saladID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete dish status = %d", resp.StatusCode)
	}
	resp, _ = e.do(t, http.MethodDelete, "/admin/dashboard/dishes/salad/"+saladID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("delete missing dish status = %d, want 404", resp.StatusCode)
	}

	// Orders.
	e.do(t, http.MethodPost, "/cart", addToCartRequest{ID: e.optional})
	resp, data = e.do(t, http.MethodPost, "/orders", models.OrderForm{Name: "Ana", Registration: "4321"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("place order status = %d: %s", resp.StatusCode, data)
	}
	orderID := decode[orderPlacedResponse](t, data).Order.ID

	resp, data = e.do(t, http.MethodGet, "/admin/dashboard/orders", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("orders status = %d", resp.StatusCode)
	}
	if orders := decode[[]models.Order](t, data); len(orders) != 1 {
		t.Errorf("orders = %d, want 1", len(orders))
	}

	resp, data = e.do(t, http.MethodGet, "/admin/dashboard/orders/report.pdf", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("report status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("report content type = %q", ct)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("report body is not a PDF")
	}

	resp, _ = e.do(t, http.MethodDelete, "/admin/dashboard/orders/"+orderID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete order status = %d", resp.StatusCode)
	}
	resp, _ = e.do(t, http.MethodDelete, "/admin/dashboard/orders/"+orderID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("delete missing order status = %d, want 404", resp.StatusCode)
	}

	// Sign out ends the session.
	resp, _ = e.do(t, http.MethodPost, "/admin/logout", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("logout status = %d", resp.StatusCode)
	}
	resp, _ = e.do(t, http.MethodGet, "/admin/dashboard", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("dashboard after logout = %d, want 401", resp.StatusCode)
	}
}

func TestPasswordResetEndpoints(t *testing.T) {
	e := newTestEnv(t, monday)
	resp, _ := e.do(t, http.MethodPost, "/admin/password-reset", passwordResetRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty email status = %d, want 400", resp.StatusCode)
	}
	resp, data := e.do(t, http.MethodPost, "/admin/password-reset", passwordResetRequest{Email: adminEmail})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("reset request status = %d: %s", resp.StatusCode, data)
	}
	resp, data = e.do(t, http.MethodPost, "/admin/reset-password", resetPasswordRequest{Token: "nope", Password: "novasenha1"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad token status = %d", resp.StatusCode)
	}
	if got := decode[errorBody](t, data).Error; got != services.MsgResetInvalid {
		t.Errorf("error = %q", got)
	}
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t, monday)
	resp, _ := e.do(t, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	s := NewServer(Deps{Log: logger.Nop(), Ping: func(context.Context) error { return errors.New("down") }})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status with failing ping = %d, want 503", rec.Code)
	}
}

func TestVisitorCookieIssuedOnce(t *testing.T) {
	e := newTestEnv(t, monday)
	resp, _ := e.do(t, http.MethodGet, "/cart", nil)
	var first string
	for _, c := range resp.Cookies() {
		if c.Name == visitorCookie {
			first = c.Value
		}
	}
	if first == "" {
		t.Fatal("visitor cookie not set")
	}
	resp, _ = e.do(t, http.MethodGet, "/cart", nil)
	for _, c := range resp.Cookies() {
		if c.Name == visitorCookie {
			t.Errorf("visitor cookie re-issued: %q", c.Value)
		}
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header missing")
	}
}
