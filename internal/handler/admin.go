package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rahmatdika/ekantin/internal/kantin"
	"github.com/rahmatdika/ekantin/internal/model"
)

// AdminHandler is the super-admin's vendor directory management surface.
type AdminHandler struct {
	kantins *kantin.Service
	logger  *slog.Logger
}

func NewAdminHandler(ks *kantin.Service, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{kantins: ks, logger: logger}
}

// ListKantins returns the full directory including credentials, this route
// sits behind the super-admin check.
func (h *AdminHandler) ListKantins(w http.ResponseWriter, r *http.Request) {
	kantins, err := h.kantins.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load kantins")
		return
	}
	if kantins == nil {
		kantins = []model.Kantin{}
	}
	writeJSON(w, http.StatusOK, kantins)
}

type kantinRequest struct {
	Name              string                 `json:"name"`
	Description       string                 `json:"description"`
	OwnerID           string                 `json:"ownerId"`
	Email             string                 `json:"email"`
	Password          string                 `json:"password"`
	SpreadsheetAPIURL string                 `json:"spreadsheetApiUrl"`
	SpreadsheetURL    string                 `json:"spreadsheetUrl"`
	WhatsApp          string                 `json:"whatsapp"`
	CoverImage        string                 `json:"coverImage"`
	QRISImage         string                 `json:"qrisImage"`
	IsOpen            bool                   `json:"isOpen"`
	OperatingHours    []model.OperatingHours `json:"operatingHours"`
}

func (req *kantinRequest) apply(k *model.Kantin) {
	k.Name = strings.TrimSpace(req.Name)
	k.Description = req.Description
	k.OwnerID = req.OwnerID
	k.Email = strings.TrimSpace(req.Email)
	k.Password = req.Password
	k.SpreadsheetAPIURL = strings.TrimSpace(req.SpreadsheetAPIURL)
	k.SpreadsheetURL = req.SpreadsheetURL
	k.WhatsApp = req.WhatsApp
	k.CoverImage = req.CoverImage
	k.QRISImage = req.QRISImage
	k.IsOpen = req.IsOpen
	k.OperatingHours = req.OperatingHours
}

// CreateKantin registers a new vendor in the directory.
func (h *AdminHandler) CreateKantin(w http.ResponseWriter, r *http.Request) {
	var req kantinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	k := model.Kantin{
		ID:        "kantin-" + uuid.NewString()[:8],
		CreatedAt: time.Now().UTC(),
	}
	req.apply(&k)

	if err := h.kantins.Create(r.Context(), k); err != nil {
		h.logger.Error("create kantin", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create kantin")
		return
	}
	writeJSON(w, http.StatusCreated, k)
}

// UpdateKantin rewrites a vendor's directory entry.
func (h *AdminHandler) UpdateKantin(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := h.kantins.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load kantin")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "kantin not found")
		return
	}

	var req kantinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	k := *existing
	req.apply(&k)
	if err := h.kantins.Update(r.Context(), k); err != nil {
		h.logger.Error("update kantin", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update kantin")
		return
	}
	writeJSON(w, http.StatusOK, k)
}

// DeleteKantin removes a vendor from the directory.
func (h *AdminHandler) DeleteKantin(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.kantins.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete kantin", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete kantin")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
