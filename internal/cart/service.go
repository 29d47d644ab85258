package cart

import (
	"fmt"
	"log/slog"

	"github.com/rahmatdika/ekantin/internal/model"
)

// Store is the cart persistence the service writes through to.
type Store interface {
	Get(sessionID string) (model.Cart, error)
	Upsert(sessionID string, item model.CartItem) error
	Remove(sessionID, menuID string) error
	Clear(sessionID string) error
}

// Notifier is told after every write-through so dependent views (badge,
// totals) can recompute.
type Notifier interface {
	CartChanged(sessionID string)
}

// Service applies reconciled quantity changes to a session's cart.
type Service struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger
}

func NewService(store Store, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{store: store, notifier: notifier, logger: logger}
}

// Get returns the session's cart mapping.
func (s *Service) Get(sessionID string) (model.Cart, error) {
	return s.store.Get(sessionID)
}

// SetQuantity reconciles the requested quantity against stock and the
// current cart, persists the result immediately, and returns what was
// persisted. There is no separate confirm step.
func (s *Service) SetQuantity(sessionID string, m model.Menu, requested int) (int, error) {
	c, err := s.store.Get(sessionID)
	if err != nil {
		return 0, fmt.Errorf("load cart: %w", err)
	}

	qty, err := Reconcile(m, c, requested)
	if err != nil {
		return 0, err
	}

	item := model.CartItem{
		MenuID:   m.ID,
		MenuName: m.Name,
		Quantity: qty,
		Price:    m.Price,
	}
	if err := s.store.Upsert(sessionID, item); err != nil {
		return 0, fmt.Errorf("upsert cart item: %w", err)
	}

	s.notifier.CartChanged(sessionID)
	return qty, nil
}

// Remove deletes one line from the cart.
func (s *Service) Remove(sessionID, menuID string) error {
	if err := s.store.Remove(sessionID, menuID); err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	s.notifier.CartChanged(sessionID)
	return nil
}

// Clear empties the cart, as checkout and the explicit clear action do.
func (s *Service) Clear(sessionID string) error {
	if err := s.store.Clear(sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.notifier.CartChanged(sessionID)
	return nil
}
