package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rahmatdika/ekantin/internal/cart"
	"github.com/rahmatdika/ekantin/internal/kantin"
	"github.com/rahmatdika/ekantin/internal/location"
	"github.com/rahmatdika/ekantin/internal/menu"
	"github.com/rahmatdika/ekantin/internal/model"
	"github.com/rahmatdika/ekantin/internal/store"
)

// CartHandler manages the per-session cart and delivery location.
type CartHandler struct {
	carts     *cart.Service
	kantins   *kantin.Service
	menus     *menu.Service
	locations *store.LocationStore
	logger    *slog.Logger
}

func NewCartHandler(cs *cart.Service, ks *kantin.Service, ms *menu.Service, ls *store.LocationStore, logger *slog.Logger) *CartHandler {
	return &CartHandler{carts: cs, kantins: ks, menus: ms, locations: ls, logger: logger}
}

// Get returns the cart plus the session's delivery location.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess := sessionID(w, r)

	c, err := h.carts.Get(sess)
	if err != nil {
		h.logger.Error("load cart", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	loc, err := h.locations.Get(sess)
	if err != nil {
		h.logger.Error("load location", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}

	items := make([]model.CartItem, 0, len(c))
	for _, item := range c {
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":    items,
		"subtotal": c.Subtotal(),
		"location": loc,
	})
}

type setQuantityRequest struct {
	KantinID string `json:"kantinId"`
	Quantity int    `json:"quantity"`
}

// SetQuantity reconciles and persists the requested quantity for one menu.
// The response carries what was actually persisted, which may be clamped.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	sess := sessionID(w, r)
	menuID := r.PathValue("menu_id")

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.KantinID == "" {
		writeError(w, http.StatusBadRequest, "kantinId is required")
		return
	}

	k, err := h.kantins.GetByID(r.Context(), req.KantinID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load kantin")
		return
	}
	if k == nil || k.SpreadsheetAPIURL == "" {
		writeError(w, http.StatusNotFound, "kantin not found")
		return
	}

	menus, err := h.menus.List(r.Context(), k.SpreadsheetAPIURL)
	if err != nil {
		h.logger.Warn("menu fetch failed", "kantin", req.KantinID, "error", err)
		writeError(w, http.StatusBadGateway, "menu is unavailable right now")
		return
	}
	m := menu.Find(menus, menuID)
	if m == nil {
		writeError(w, http.StatusNotFound, "menu not found")
		return
	}

	qty, err := h.carts.SetQuantity(sess, *m, req.Quantity)
	if errors.Is(err, cart.ErrUnavailable) {
		writeError(w, http.StatusConflict, "menu is no longer available")
		return
	}
	if err != nil {
		h.logger.Error("set quantity", "menu", menuID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"menuId":   menuID,
		"quantity": qty,
	})
}

// Remove deletes one line from the cart.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	sess := sessionID(w, r)
	if err := h.carts.Remove(sess, r.PathValue("menu_id")); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update cart")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

// Clear empties the cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sess := sessionID(w, r)
	if err := h.carts.Clear(sess); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear cart")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

type setLocationRequest struct {
	Meja string `json:"meja"`
}

// SetLocation records the scanned table QR for this session. An empty meja
// value switches back to take away.
func (h *CartHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	sess := sessionID(w, r)

	var req setLocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	loc := location.Parse(req.Meja, time.Now().UTC())
	if loc == nil {
		if err := h.locations.Clear(sess); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to clear location")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"location": nil})
		return
	}

	if err := h.locations.Set(sess, *loc); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save location")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"location": loc})
}
