package web

import (
	"context"
	"net/http"
	"time"

	"lunch-menu/logger"
	"lunch-menu/services"

	"github.com/gorilla/mux"
)

const (
	visitorCookie = "visitor_id"
	sessionCookie = "admin_session"

	adminLoginPath = "/admin"
	dashboardPath  = "/admin/dashboard"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Catalog  *services.Catalog
	Ordering *services.Ordering
	Orders   *services.OrderBook
	Hours    *services.Hours
	Status   *services.StatusMonitor
	Auth     *services.Auth
	Log      *logger.Logger

	Location       *time.Location
	RestaurantName string
	RequestTimeout time.Duration
	SecureCookies  bool
	// Ping checks the storage backend for /health. Nil means always healthy.
	Ping func(ctx context.Context) error
}

type Server struct {
	Deps
}

func NewServer(d Deps) *Server {
	if d.Location == nil {
		d.Location = time.UTC
	}
	if d.RequestTimeout <= 0 {
		d.RequestTimeout = 15 * time.Second
	}
	return &Server{Deps: d}
}

// Handler builds the router with all middleware applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.recoverPanics, s.logRequests, s.withTimeout)

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/menu", http.StatusFound)
	}).Methods(http.MethodGet)
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	public := r.NewRoute().Subrouter()
	public.Use(s.withVisitor)
	public.HandleFunc("/menu", s.getMenu).Methods(http.MethodGet)
	public.HandleFunc("/menu/{day:[0-9]+}", s.getMenuDay).Methods(http.MethodGet)
	public.HandleFunc("/cart", s.getCart).Methods(http.MethodGet)
	public.HandleFunc("/cart", s.addToCart).Methods(http.MethodPost)
	public.HandleFunc("/cart/{id}", s.removeFromCart).Methods(http.MethodDelete)
	public.HandleFunc("/orders", s.placeOrder).Methods(http.MethodPost)

	r.HandleFunc(adminLoginPath, s.signIn).Methods(http.MethodPost)
	r.HandleFunc("/admin/logout", s.signOut).Methods(http.MethodPost)
	r.HandleFunc("/admin/password-reset", s.requestPasswordReset).Methods(http.MethodPost)
	r.HandleFunc("/admin/reset-password", s.resetPassword).Methods(http.MethodPost)

	admin := r.PathPrefix(dashboardPath).Subrouter()
	admin.Use(s.requireAdmin)
	admin.HandleFunc("", s.dashboard).Methods(http.MethodGet)
	admin.HandleFunc("/dishes", s.addDish).Methods(http.MethodPost)
	admin.HandleFunc("/dishes/{kind}/{id}", s.deleteDish).Methods(http.MethodDelete)
	admin.HandleFunc("/settings", s.updateSettings).Methods(http.MethodPut)
	admin.HandleFunc("/orders", s.listOrders).Methods(http.MethodGet)
	admin.HandleFunc("/orders/report.pdf", s.ordersReport).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}", s.deleteOrder).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Página não encontrada")
	})
	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.Ping != nil {
		if err := s.Ping(r.Context()); err != nil {
			s.Log.Error("health_check_failed", logger.RequestID(r.Context()), "Storage ping failed", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
