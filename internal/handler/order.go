package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rahmatdika/ekantin/internal/auth"
	"github.com/rahmatdika/ekantin/internal/cart"
	"github.com/rahmatdika/ekantin/internal/middleware"
	"github.com/rahmatdika/ekantin/internal/model"
	"github.com/rahmatdika/ekantin/internal/order"
	"github.com/rahmatdika/ekantin/internal/store"
)

// OrderHandler covers checkout, shopper history and the vendor's order
// queue.
type OrderHandler struct {
	orders    *order.Service
	carts     *cart.Service
	locations *store.LocationStore
	logger    *slog.Logger
}

func NewOrderHandler(os *order.Service, cs *cart.Service, ls *store.LocationStore, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: os, carts: cs, locations: ls, logger: logger}
}

type checkoutRequest struct {
	KantinID     string `json:"kantinId"`
	CustomerName string `json:"customerName"`
	PaymentProof string `json:"paymentProof"`
}

// Checkout turns the session's cart into an order and empties the cart.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess := sessionID(w, r)

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.KantinID == "" {
		writeError(w, http.StatusBadRequest, "kantinId is required")
		return
	}

	c, err := h.carts.Get(sess)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	loc, err := h.locations.Get(sess)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load location")
		return
	}

	t, err := h.orders.Checkout(r.Context(), order.CheckoutInput{
		SessionID:    sess,
		KantinID:     req.KantinID,
		CustomerName: req.CustomerName,
		PaymentProof: req.PaymentProof,
		Cart:         c,
		Location:     loc,
	})
	middleware.RecordOrderOperation("checkout", err)
	switch {
	case errors.Is(err, order.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	case errors.Is(err, order.ErrMissingProof):
		writeError(w, http.StatusBadRequest, "payment proof is required")
		return
	case err != nil:
		h.logger.Error("checkout", "error", err)
		writeError(w, http.StatusInternalServerError, "checkout failed")
		return
	}

	if err := h.carts.Clear(sess); err != nil {
		h.logger.Error("clear cart after checkout", "error", err)
	}
	writeJSON(w, http.StatusCreated, t)
}

// History lists the session's past orders, newest first.
func (h *OrderHandler) History(w http.ResponseWriter, r *http.Request) {
	sess := sessionID(w, r)
	txns, err := h.orders.History(sess)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

// Track looks an order up by its code, for anyone holding the code.
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	t, err := h.orders.FindByCode(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// KantinOrders lists the authenticated vendor's order queue.
func (h *OrderHandler) KantinOrders(w http.ResponseWriter, r *http.Request) {
	kantinID := auth.KantinID(r.Context())
	txns, err := h.orders.ListForKantin(r.Context(), kantinID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load orders")
		return
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves one of the vendor's orders along the status flow.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	kantinID := auth.KantinID(r.Context())
	orderID := r.PathValue("id")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	t, err := h.orders.UpdateStatus(r.Context(), kantinID, orderID, req.Status)
	middleware.RecordOrderOperation("status_update", err)
	switch {
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
		return
	case errors.Is(err, order.ErrNotYours):
		writeError(w, http.StatusForbidden, "order belongs to another kantin")
		return
	case err != nil:
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, t)
}
