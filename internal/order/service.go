package order

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rahmatdika/ekantin/internal/model"
	"github.com/rahmatdika/ekantin/internal/sheet"
	"github.com/rahmatdika/ekantin/internal/store"
	"github.com/rahmatdika/ekantin/internal/sync"
)

var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrMissingProof = errors.New("payment proof is required")
	ErrNotFound     = errors.New("order not found")
	ErrNotYours     = errors.New("order belongs to another kantin")
)

// DefaultDeliveryFee is added to the subtotal when the order is delivered
// to a table, in rupiah.
const DefaultDeliveryFee int64 = 2000

// StatusListener is told after a status change has been committed.
type StatusListener interface {
	OrderStatusChanged(t model.Transaction)
}

// txnLocal scopes the transaction cache to one vendor for the syncer.
type txnLocal struct {
	store    *store.TransactionStore
	kantinID string
}

func (l txnLocal) Upsert(t model.Transaction) error { return l.store.Upsert(t) }
func (l txnLocal) Delete(id string) error           { return l.store.Delete(id) }
func (l txnLocal) ReplaceAll(txns []model.Transaction) error {
	return l.store.ReplaceByKantin(l.kantinID, txns)
}
func (l txnLocal) SetPendingSync(id string, pending bool) error {
	return l.store.SetPendingSync(id, pending)
}

// txnRemote adapts one vendor's Pesanan sheet to the syncer.
type txnRemote struct {
	client    *sheet.Client
	scriptURL string
	kantinID  string
}

func (r txnRemote) FetchAll(ctx context.Context) ([]model.Transaction, error) {
	rows, err := r.client.Fetch(ctx, r.scriptURL, sheet.SheetTransactions)
	if err != nil {
		return nil, err
	}
	txns := make([]model.Transaction, 0, len(rows))
	for _, row := range rows {
		t := DecodeRow(row)
		if t.ID == "" {
			continue
		}
		if t.KantinID == "" {
			// The vendor's own sheet holds only its own orders.
			t.KantinID = r.kantinID
		}
		txns = append(txns, t)
	}
	return txns, nil
}

func (r txnRemote) Create(ctx context.Context, t model.Transaction) error {
	return r.client.Create(ctx, r.scriptURL, sheet.SheetTransactions, EncodeRow(t))
}

func (r txnRemote) Update(ctx context.Context, t model.Transaction) error {
	return r.client.Update(ctx, r.scriptURL, sheet.SheetTransactions, t.ID, EncodeRow(t))
}

func (r txnRemote) Delete(ctx context.Context, id string) error {
	return r.client.Delete(ctx, r.scriptURL, sheet.SheetTransactions, id)
}

type Service struct {
	txns        *store.TransactionStore
	kantins     *store.KantinStore
	client      *sheet.Client
	notify      sync.Notifier
	listener    StatusListener
	logger      *slog.Logger
	deliveryFee int64
}

func NewService(txns *store.TransactionStore, kantins *store.KantinStore, client *sheet.Client, notify sync.Notifier, listener StatusListener, logger *slog.Logger) *Service {
	return &Service{
		txns:        txns,
		kantins:     kantins,
		client:      client,
		notify:      notify,
		listener:    listener,
		logger:      logger.With("component", "order"),
		deliveryFee: DefaultDeliveryFee,
	}
}

func (s *Service) syncerFor(k model.Kantin) *sync.Syncer[model.Transaction] {
	local := txnLocal{store: s.txns, kantinID: k.ID}
	remote := txnRemote{client: s.client, scriptURL: k.SpreadsheetAPIURL, kantinID: k.ID}
	return sync.New[model.Transaction]("transaction", local, remote, s.notify, s.logger)
}

// CheckoutInput is everything a shopper submits at checkout.
type CheckoutInput struct {
	SessionID    string
	KantinID     string
	CustomerName string
	PaymentProof string
	Cart         model.Cart
	Location     *model.DeliveryLocation
}

// Checkout turns a cart into an order. The order is committed locally and
// mirrored to the vendor's sheet on a best-effort basis.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*model.Transaction, error) {
	if len(in.Cart) == 0 {
		return nil, ErrEmptyCart
	}
	if in.PaymentProof == "" {
		return nil, ErrMissingProof
	}

	k, err := s.kantins.GetByID(in.KantinID)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, fmt.Errorf("kantin %s not found", in.KantinID)
	}

	total := in.Cart.Subtotal()
	if in.Location != nil {
		total += s.deliveryFee
	}

	items := make([]model.CartItem, 0, len(in.Cart))
	for _, item := range in.Cart {
		items = append(items, item)
	}

	t := model.Transaction{
		ID:               NewID(),
		Code:             NewCode(),
		KantinID:         k.ID,
		KantinName:       k.Name,
		CustomerName:     in.CustomerName,
		Items:            items,
		Total:            total,
		PaymentProof:     in.PaymentProof,
		DeliveryLocation: in.Location,
		Status:           model.StatusPending,
		SessionID:        in.SessionID,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.syncerFor(*k).Create(ctx, t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateStatus moves one of the vendor's orders along the status flow.
func (s *Service) UpdateStatus(ctx context.Context, kantinID, orderID, status string) (*model.Transaction, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("unknown status %q", status)
	}

	t, err := s.txns.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrNotFound
	}
	if t.KantinID != kantinID {
		return nil, ErrNotYours
	}
	if err := CanTransition(t.Status, status); err != nil {
		return nil, err
	}

	k, err := s.kantins.GetByID(kantinID)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, fmt.Errorf("kantin %s not found", kantinID)
	}

	t.Status = status
	if err := s.syncerFor(*k).Update(ctx, *t); err != nil {
		return nil, err
	}
	if s.listener != nil {
		s.listener.OrderStatusChanged(*t)
	}
	return t, nil
}

// ListForKantin returns a vendor's orders, refreshed from its sheet when
// possible.
func (s *Service) ListForKantin(ctx context.Context, kantinID string) ([]model.Transaction, error) {
	k, err := s.kantins.GetByID(kantinID)
	if err != nil {
		return nil, err
	}
	if k != nil && k.SpreadsheetAPIURL != "" {
		if txns, err := s.syncerFor(*k).Refresh(ctx); err == nil {
			return txns, nil
		}
	}
	return s.txns.ListByKantin(kantinID)
}

// History returns the orders a shopper session placed, newest first.
func (s *Service) History(sessionID string) ([]model.Transaction, error) {
	return s.txns.ListBySession(sessionID)
}

// FindByCode looks an order up by code or id. On a cache miss it walks the
// vendors and refreshes their sheets until the order turns up.
func (s *Service) FindByCode(ctx context.Context, code string) (*model.Transaction, error) {
	t, err := s.txns.FindByCode(code)
	if err != nil {
		return nil, err
	}
	if t != nil {
		return t, nil
	}

	kantins, err := s.kantins.List()
	if err != nil {
		return nil, err
	}
	for _, k := range kantins {
		if k.SpreadsheetAPIURL == "" {
			continue
		}
		if _, err := s.syncerFor(k).Refresh(ctx); err != nil {
			continue
		}
		if t, err := s.txns.FindByCode(code); err == nil && t != nil {
			return t, nil
		}
	}
	return nil, nil
}
