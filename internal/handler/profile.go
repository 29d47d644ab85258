package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rahmatdika/ekantin/internal/auth"
	"github.com/rahmatdika/ekantin/internal/kantin"
	"github.com/rahmatdika/ekantin/internal/model"
)

// ProfileHandler is the authenticated vendor's own profile surface.
type ProfileHandler struct {
	kantins *kantin.Service
	logger  *slog.Logger
}

func NewProfileHandler(ks *kantin.Service, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{kantins: ks, logger: logger}
}

// Get returns the vendor's own profile, credentials included.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	k, err := h.kantins.GetByID(r.Context(), auth.KantinID(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	if k == nil {
		writeError(w, http.StatusNotFound, "kantin not found")
		return
	}
	writeJSON(w, http.StatusOK, k)
}

type profileRequest struct {
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	WhatsApp       string                 `json:"whatsapp"`
	CoverImage     string                 `json:"coverImage"`
	QRISImage      string                 `json:"qrisImage"`
	OperatingHours []model.OperatingHours `json:"operatingHours"`
}

// Update lets the vendor edit its storefront fields. Credentials and the
// sheet endpoints stay under super-admin control.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	kantinID := auth.KantinID(r.Context())
	existing, err := h.kantins.GetByID(r.Context(), kantinID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "kantin not found")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	k := *existing
	k.Name = strings.TrimSpace(req.Name)
	k.Description = req.Description
	k.WhatsApp = req.WhatsApp
	k.CoverImage = req.CoverImage
	k.QRISImage = req.QRISImage
	k.OperatingHours = req.OperatingHours

	if err := h.kantins.Update(r.Context(), k); err != nil {
		h.logger.Error("update profile", "id", kantinID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	writeJSON(w, http.StatusOK, k)
}

type openRequest struct {
	IsOpen bool `json:"isOpen"`
}

// SetOpen flips the storefront open flag.
func (h *ProfileHandler) SetOpen(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	k, err := h.kantins.SetOpen(r.Context(), auth.KantinID(r.Context()), req.IsOpen)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update status")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isOpen": k.IsOpen})
}
