package web

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"lunch-menu/logger"
	"lunch-menu/models"
	"lunch-menu/services"

	"github.com/gorilla/mux"
)

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password"`
}

type settingsRequest struct {
	OpeningTime string `json:"opening_time" validate:"required"`
	ClosingTime string `json:"closing_time" validate:"required"`
}

type signInResponse struct {
	Email    string `json:"email"`
	Redirect string `json:"redirect"`
}

type dashboardResponse struct {
	Admin    string                            `json:"admin"`
	Status   services.StoreStatus              `json:"status"`
	Settings *models.OperatingWindow           `json:"settings"`
	Dishes   map[models.DishKind][]models.Dish `json:"dishes"`
	Orders   []models.Order                    `json:"orders"`
}

type dishAddedResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type settingsResponse struct {
	Message  string                  `json:"message"`
	Settings *models.OperatingWindow `json:"settings"`
}

func (s *Server) setSessionCookie(w http.ResponseWriter, value string, expires time.Time) {
	c := &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
	} else {
		c.Expires = expires
	}
	http.SetCookie(w, c)
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, services.MsgLoginFailed)
		return
	}
	sess, err := s.Auth.SignIn(r.Context(), req.Email, req.Password)
	var throttled *services.ThrottleError
	switch {
	case err == nil:
		s.setSessionCookie(w, sess.Token, sess.ExpiresAt)
		writeJSON(w, http.StatusOK, signInResponse{Email: sess.Email, Redirect: dashboardPath})
	case errors.As(err, &throttled):
		writeError(w, http.StatusTooManyRequests, services.LoginThrottledMessage(throttled.WaitSeconds))
	case errors.Is(err, services.ErrInvalidCredential):
		writeError(w, http.StatusUnauthorized, services.MsgLoginFailed)
	default:
		s.internalError(w, r, "admin_sign_in_failed", err)
	}
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if err := s.Auth.SignOut(r.Context(), c.Value); err != nil {
			s.Log.Error("admin_sign_out_failed", logger.RequestID(r.Context()), "Failed to delete session", err)
		}
	}
	s.setSessionCookie(w, "", time.Time{})
	writeJSON(w, http.StatusOK, signInResponse{Redirect: adminLoginPath})
}

func (s *Server) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, services.MsgResetEmailRequired)
		return
	}
	err := s.Auth.RequestPasswordReset(r.Context(), req.Email)
	switch {
	case err == nil:
		writeMessage(w, http.StatusOK, services.MsgResetSent)
	case errors.Is(err, services.ErrEmailRequired):
		writeError(w, http.StatusBadRequest, services.MsgResetEmailRequired)
	default:
		s.Log.Error("password_reset_failed", logger.RequestID(r.Context()), "Failed to send reset mail", err)
		writeError(w, http.StatusInternalServerError, services.MsgResetFailed)
	}
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, services.MsgResetInvalid)
		return
	}
	err := s.Auth.ResetPassword(r.Context(), req.Token, req.Password)
	switch {
	case err == nil:
		writeMessage(w, http.StatusOK, services.MsgPasswordChanged)
	case errors.Is(err, services.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, services.MsgWeakPassword)
	case errors.Is(err, services.ErrResetTokenInvalid):
		writeError(w, http.StatusBadRequest, services.MsgResetInvalid)
	default:
		s.internalError(w, r, "password_change_failed", err)
	}
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dishes, err := s.Catalog.All(ctx)
	if err != nil {
		s.internalError(w, r, "dashboard_load_failed", err)
		return
	}
	orders, err := s.Orders.List(ctx)
	if err != nil {
		s.internalError(w, r, "dashboard_load_failed", err)
		return
	}
	window, err := s.Hours.Window(ctx)
	if err != nil {
		s.internalError(w, r, "dashboard_load_failed", err)
		return
	}
	var admin string
	if sess := services.SessionFrom(ctx); sess != nil {
		admin = sess.Email
	}
	writeJSON(w, http.StatusOK, dashboardResponse{
		Admin:    admin,
		Status:   s.Status.Status(),
		Settings: window,
		Dishes:   dishes,
		Orders:   orders,
	})
}

func (s *Server) addDish(w http.ResponseWriter, r *http.Request) {
	var in models.NewDish
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, services.MsgDishAddFailed+": "+err.Error())
		return
	}
	id, err := s.Catalog.Add(r.Context(), in)
	if errors.Is(err, services.ErrInvalidDish) {
		writeError(w, http.StatusBadRequest, services.MsgDishAddFailed+": "+err.Error())
		return
	}
	if err != nil {
		s.Log.Error("dish_add_failed", logger.RequestID(r.Context()), "Failed to add dish", err)
		writeError(w, http.StatusInternalServerError, services.MsgDishAddFailed)
		return
	}
	writeJSON(w, http.StatusCreated, dishAddedResponse{ID: id, Message: services.MsgDishAdded})
}

func (s *Server) deleteDish(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	err := s.Catalog.Delete(r.Context(), models.DishKind(vars["kind"]), vars["id"])
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, http.StatusNotFound, services.MsgDishNotFound)
		return
	}
	if err != nil {
		s.Log.Error("dish_delete_failed", logger.RequestID(r.Context()), "Failed to delete dish", err)
		writeError(w, http.StatusInternalServerError, services.MsgDishDeleteFailed)
		return
	}
	writeMessage(w, http.StatusOK, services.MsgDishDeleted)
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, services.MsgHoursFailed)
		return
	}
	window, err := s.Hours.Update(r.Context(), models.OperatingWindow{
		OpeningTime: req.OpeningTime,
		ClosingTime: req.ClosingTime,
	})
	if errors.Is(err, services.ErrInvalidWindow) {
		writeError(w, http.StatusBadRequest, services.MsgHoursFailed)
		return
	}
	if err != nil {
		s.Log.Error("hours_update_failed", logger.RequestID(r.Context()), "Failed to update hours", err)
		writeError(w, http.StatusInternalServerError, services.MsgHoursFailed)
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Message: services.MsgHoursUpdated, Settings: window})
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.Orders.List(r.Context())
	if err != nil {
		s.internalError(w, r, "orders_list_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	err := s.Orders.Delete(r.Context(), mux.Vars(r)["id"])
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, http.StatusNotFound, services.MsgOrderDeleteFail)
		return
	}
	if err != nil {
		s.Log.Error("order_delete_failed", logger.RequestID(r.Context()), "Failed to delete order", err)
		writeError(w, http.StatusInternalServerError, services.MsgOrderDeleteFail)
		return
	}
	writeMessage(w, http.StatusOK, services.MsgOrderDeleted)
}

func (s *Server) ordersReport(w http.ResponseWriter, r *http.Request) {
	orders, err := s.Orders.List(r.Context())
	if err != nil {
		s.internalError(w, r, "orders_report_failed", err)
		return
	}
	var buf bytes.Buffer
	if err := services.WriteOrdersReport(&buf, orders, s.Location, services.ReportTitle(s.RestaurantName)); err != nil {
		s.internalError(w, r, "orders_report_failed", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+services.ReportFileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
