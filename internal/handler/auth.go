package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rahmatdika/ekantin/internal/auth"
	"github.com/rahmatdika/ekantin/internal/kantin"
)

// AuthHandler issues bearer tokens for the vendor and super-admin surfaces.
type AuthHandler struct {
	kantins *kantin.Service
	tokens  *auth.Tokens
	admin   auth.SuperAdmin
	logger  *slog.Logger
}

func NewAuthHandler(ks *kantin.Service, tokens *auth.Tokens, admin auth.SuperAdmin, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{kantins: ks, tokens: tokens, admin: admin, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// KantinLogin authenticates a vendor against the directory sheet.
func (h *AuthHandler) KantinLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	k, err := h.kantins.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, kantin.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		h.logger.Error("kantin login", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	sess := auth.Session{Role: auth.RoleKantin, KantinID: k.ID, KantinName: k.Name}
	token, err := h.tokens.Issue(sess, time.Now())
	if err != nil {
		h.logger.Error("issue token", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":  token,
		"kantin": k.Public(),
	})
}

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminLogin authenticates the configured super-admin.
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if !h.admin.Check(req.Username, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(auth.Session{Role: auth.RoleSuperAdmin}, time.Now())
	if err != nil {
		h.logger.Error("issue token", "error", err)
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}
