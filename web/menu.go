package web

import (
	"errors"
	"net/http"
	"strconv"

	"lunch-menu/logger"
	"lunch-menu/models"
	"lunch-menu/services"

	"github.com/gorilla/mux"
)

type menuResponse struct {
	Restaurant string               `json:"restaurant"`
	Status     services.StoreStatus `json:"status"`
	Today      int                  `json:"today"`
	Days       []services.DayMenu   `json:"days"`
}

type dayMenuResponse struct {
	Status services.StoreStatus `json:"status"`
	Menu   services.DayMenu     `json:"menu"`
}

type cartResponse struct {
	Items []models.CartLine `json:"items"`
	Count int               `json:"count"`
}

type cartChangeResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

type addToCartRequest struct {
	ID string `json:"id" validate:"required"`
}

type orderPlacedResponse struct {
	Message string        `json:"message"`
	Order   *models.Order `json:"order"`
}

func (s *Server) getMenu(w http.ResponseWriter, r *http.Request) {
	week, err := s.Catalog.Week(r.Context())
	if err != nil {
		s.internalError(w, r, "menu_load_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, menuResponse{
		Restaurant: s.RestaurantName,
		Status:     s.Status.Status(),
		Today:      services.MenuDay(s.Status.Now()),
		Days:       week.Days(),
	})
}

func (s *Server) getMenuDay(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(mux.Vars(r)["day"])
	if err != nil {
		writeError(w, http.StatusNotFound, "Dia inválido")
		return
	}
	menu, err := s.Catalog.Menu(r.Context(), day)
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Dia inválido")
		return
	}
	if err != nil {
		s.internalError(w, r, "menu_load_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, dayMenuResponse{Status: s.Status.Status(), Menu: menu})
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	lines := s.Ordering.Cart(visitorID(r))
	writeJSON(w, http.StatusOK, cartResponse{Items: lines, Count: len(lines)})
}

func (s *Server) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	count, err := s.Ordering.AddToCart(r.Context(), visitorID(r), req.ID)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, cartChangeResponse{Message: services.MsgItemAdded, Count: count})
	case errors.Is(err, services.ErrStoreClosed):
		writeError(w, http.StatusConflict, services.MsgStoreClosed)
	case errors.Is(err, services.ErrAlreadyInCart):
		writeJSON(w, http.StatusConflict, errorBody{Error: services.MsgAlreadyInCart})
	case errors.Is(err, services.ErrNotOrderable):
		writeError(w, http.StatusBadRequest, services.MsgNotOrderable)
	default:
		s.internalError(w, r, "cart_add_failed", err)
	}
}

func (s *Server) removeFromCart(w http.ResponseWriter, r *http.Request) {
	count, err := s.Ordering.RemoveFromCart(visitorID(r), mux.Vars(r)["id"])
	if errors.Is(err, services.ErrNotFound) {
		writeError(w, http.StatusNotFound, services.MsgDishNotFound)
		return
	}
	if err != nil {
		s.internalError(w, r, "cart_remove_failed", err)
		return
	}
	writeJSON(w, http.StatusOK, cartChangeResponse{Message: services.MsgItemRemoved, Count: count})
}

func (s *Server) placeOrder(w http.ResponseWriter, r *http.Request) {
	var form models.OrderForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	order, err := s.Ordering.PlaceOrder(r.Context(), visitorID(r), form)
	var verr *services.ValidationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, orderPlacedResponse{Message: services.MsgOrderPlaced, Order: order})
	case errors.Is(err, services.ErrStoreClosed):
		writeError(w, http.StatusConflict, services.MsgStoreClosed)
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Message, Field: verr.Field})
	default:
		// the workflow has already logged the cause
		writeError(w, http.StatusInternalServerError, services.MsgOrderFailed)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, action string, err error) {
	s.Log.Error(action, logger.RequestID(r.Context()), "Request failed", err)
	writeError(w, http.StatusInternalServerError, services.MsgInternalError)
}
