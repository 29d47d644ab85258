package cart

import (
	"errors"

	"github.com/rahmatdika/ekantin/internal/model"
)

// ErrUnavailable is returned when the item cannot be sold at all: the vendor
// flagged it off, or tracked stock has run out.
var ErrUnavailable = errors.New("menu item is unavailable")

// Unavailable reports whether a menu item can be added to a cart. An item
// with no tracked quantity is never unavailable on stock grounds.
func Unavailable(m model.Menu) bool {
	if !m.Available {
		return true
	}
	return m.Quantity != nil && *m.Quantity < 1
}

// InitialQuantity is what a quantity selector shows before the shopper
// touches it: the existing cart quantity, or 1.
func InitialQuantity(c model.Cart, menuID string) int {
	if item, ok := c[menuID]; ok {
		return item.Quantity
	}
	return 1
}

// MaxQuantity is the highest quantity the selector may reach for a tracked
// item: stock minus whatever the cart already holds beyond the selector's
// own pending value. The persisted cart quantity and the selector's value
// can differ transiently, which is why both terms appear. Returns nil when
// stock is untracked.
func MaxQuantity(m model.Menu, cartQty, displayed int) *int {
	if m.Quantity == nil {
		return nil
	}
	max := *m.Quantity - (cartQty - displayed)
	return &max
}

// Reconcile computes the quantity to persist for a requested selector value.
// The result is clamped to a minimum of 1 (removal is a separate explicit
// action) and, for tracked items, to the remaining headroom. It returns
// ErrUnavailable when the item cannot be sold, and the reconciled quantity
// otherwise.
func Reconcile(m model.Menu, c model.Cart, requested int) (int, error) {
	if Unavailable(m) {
		return 0, ErrUnavailable
	}

	qty := requested
	if qty < 1 {
		qty = 1
	}

	cartQty := 0
	if item, ok := c[m.ID]; ok {
		cartQty = item.Quantity
	}
	displayed := InitialQuantity(c, m.ID)

	if max := MaxQuantity(m, cartQty, displayed); max != nil && qty > *max {
		qty = *max
	}
	if qty < 1 {
		// Stock shrank below what the cart already holds.
		return 0, ErrUnavailable
	}
	return qty, nil
}
