package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rahmatdika/ekantin/internal/model"
	"github.com/rahmatdika/ekantin/internal/push"
	"github.com/rahmatdika/ekantin/internal/store"
)

// PushHandler registers browser push subscriptions for order updates.
type PushHandler struct {
	service *push.Service
	subs    *store.PushStore
	logger  *slog.Logger
}

func NewPushHandler(service *push.Service, subs *store.PushStore, logger *slog.Logger) *PushHandler {
	return &PushHandler{service: service, subs: subs, logger: logger}
}

// VAPIDKey hands the public key to the subscribing browser.
func (h *PushHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": h.service.VAPIDPublicKey()})
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// Subscribe stores the browser's push subscription under its session.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	sess := sessionID(w, r)

	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		writeError(w, http.StatusBadRequest, "endpoint and keys are required")
		return
	}

	err := h.subs.Save(model.PushSubscription{
		SessionID: sess,
		Endpoint:  req.Endpoint,
		P256dhKey: req.Keys.P256dh,
		AuthKey:   req.Keys.Auth,
	})
	if err != nil {
		h.logger.Error("save subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "subscribed"})
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// Unsubscribe drops a push subscription.
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := h.subs.DeleteByEndpoint(req.Endpoint); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove subscription")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
}
