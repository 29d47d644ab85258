package handler

import (
	"log/slog"
	"net/http"

	"github.com/rahmatdika/ekantin/internal/kantin"
	"github.com/rahmatdika/ekantin/internal/menu"
	"github.com/rahmatdika/ekantin/internal/model"
)

// StorefrontHandler serves the public shopper-facing views of the vendor
// directory and menus.
type StorefrontHandler struct {
	kantins *kantin.Service
	menus   *menu.Service
	logger  *slog.Logger
}

func NewStorefrontHandler(ks *kantin.Service, ms *menu.Service, logger *slog.Logger) *StorefrontHandler {
	return &StorefrontHandler{kantins: ks, menus: ms, logger: logger}
}

// ListKantins returns the vendor directory with credentials stripped.
func (h *StorefrontHandler) ListKantins(w http.ResponseWriter, r *http.Request) {
	kantins, err := h.kantins.List(r.Context())
	if err != nil {
		h.logger.Error("list kantins", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load kantins")
		return
	}

	public := make([]model.Kantin, 0, len(kantins))
	for _, k := range kantins {
		public = append(public, k.Public())
	}
	writeJSON(w, http.StatusOK, public)
}

// GetKantin returns one vendor and its live menu.
func (h *StorefrontHandler) GetKantin(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	k, err := h.kantins.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get kantin", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load kantin")
		return
	}
	if k == nil {
		writeError(w, http.StatusNotFound, "kantin not found")
		return
	}

	menus := []model.Menu{}
	if k.SpreadsheetAPIURL != "" {
		menus, err = h.menus.List(r.Context(), k.SpreadsheetAPIURL)
		if err != nil {
			// The vendor page still renders without its menu.
			h.logger.Warn("menu fetch failed", "kantin", id, "error", err)
			menus = []model.Menu{}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"kantin": k.Public(),
		"menus":  menus,
	})
}

// GetMenus returns just the vendor's menu list.
func (h *StorefrontHandler) GetMenus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	k, err := h.kantins.GetByID(r.Context(), id)
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
		h.logger.Warn("menu fetch failed", "kantin", id, "error", err)
		writeError(w, http.StatusBadGateway, "menu is unavailable right now")
		return
	}
	writeJSON(w, http.StatusOK, menus)
}
