package push

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/rahmatdika/ekantin/internal/model"
	"github.com/rahmatdika/ekantin/internal/store"
)

var statusBodies = map[string]string{
	model.StatusPending:    "Pesanan kamu sedang menunggu konfirmasi.",
	model.StatusProcessing: "Pesanan kamu sedang disiapkan.",
	model.StatusReady:      "Pesanan kamu siap diambil!",
	model.StatusCompleted:  "Pesanan kamu selesai. Terima kasih!",
	model.StatusCancelled:  "Pesanan kamu dibatalkan.",
}

// StatusNotifier pushes order status changes to the shopper session that
// placed the order. Expired endpoints are pruned as they turn up.
type StatusNotifier struct {
	service *Service
	subs    *store.PushStore
	logger  *slog.Logger
}

func NewStatusNotifier(service *Service, subs *store.PushStore, logger *slog.Logger) *StatusNotifier {
	return &StatusNotifier{
		service: service,
		subs:    subs,
		logger:  logger.With("component", "push"),
	}
}

// OrderStatusChanged notifies every subscription of the order's session.
// Failures are logged and swallowed; a missed notification never fails the
// status update itself.
func (n *StatusNotifier) OrderStatusChanged(t model.Transaction) {
	if t.SessionID == "" {
		return
	}
	subs, err := n.subs.ListBySession(t.SessionID)
	if err != nil {
		n.logger.Error("list subscriptions", "error", err)
		return
	}

	body, ok := statusBodies[t.Status]
	if !ok {
		body = "Status pesanan kamu berubah."
	}
	payload := Payload{
		Title: fmt.Sprintf("Pesanan %s", t.Code),
		Body:  body,
		URL:   "/riwayat?kode=" + t.Code,
		Tag:   "order-" + t.ID,
	}

	for i := range subs {
		sub := &subs[i]
		err := n.service.Send(sub, payload)
		if errors.Is(err, ErrExpired) {
			if delErr := n.subs.DeleteByEndpoint(sub.Endpoint); delErr != nil {
				n.logger.Error("prune subscription", "error", delErr)
			}
			continue
		}
		if err != nil {
			n.logger.Warn("push failed", "order", t.ID, "error", err)
		}
	}
}
