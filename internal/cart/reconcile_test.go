package cart

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/rahmatdika/ekantin/internal/model"
)

func intp(n int) *int { return &n }

func TestUnavailable(t *testing.T) {
	tests := []struct {
		name string
		m    model.Menu
		want bool
	}{
		{"flag off", model.Menu{Available: false}, true},
		{"flag off with stock", model.Menu{Available: false, Quantity: intp(10)}, true},
		{"zero stock wins over flag", model.Menu{Available: true, Quantity: intp(0)}, true},
		{"negative stock", model.Menu{Available: true, Quantity: intp(-2)}, true},
		{"untracked stock", model.Menu{Available: true}, false},
		{"in stock", model.Menu{Available: true, Quantity: intp(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unavailable(tt.m); got != tt.want {
				t.Errorf("Unavailable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInitialQuantity(t *testing.T) {
	c := model.Cart{"m1": {MenuID: "m1", Quantity: 4}}
	if got := InitialQuantity(c, "m1"); got != 4 {
		t.Errorf("existing entry: got %d, want 4", got)
	}
	if got := InitialQuantity(c, "m2"); got != 1 {
		t.Errorf("no entry: got %d, want 1", got)
	}
}

func TestMaxQuantityFormula(t *testing.T) {
	// Cart holds 3 of item A, stock is 5, selector shows 3:
	// max reachable = 5 - (3 - 3) = 5, i.e. two more increments.
	m := model.Menu{ID: "a", Available: true, Quantity: intp(5)}
	max := MaxQuantity(m, 3, 3)
	if max == nil || *max != 5 {
		t.Fatalf("MaxQuantity = %v, want 5", max)
	}

	if MaxQuantity(model.Menu{ID: "a", Available: true}, 3, 3) != nil {
		t.Error("untracked stock should have no max")
	}
}

func TestReconcile(t *testing.T) {
	stock5 := model.Menu{ID: "a", Name: "Ayam Geprek", Price: 15000, Available: true, Quantity: intp(5)}
	untracked := model.Menu{ID: "b", Name: "Es Teh", Price: 5000, Available: true}

	tests := []struct {
		name      string
		m         model.Menu
		cart      model.Cart
		requested int
		want      int
		wantErr   error
	}{
		{"fresh add", stock5, model.Cart{}, 1, 1, nil},
		{"increment within stock", stock5, model.Cart{"a": {MenuID: "a", Quantity: 3}}, 4, 4, nil},
		{"increment clamps to headroom", stock5, model.Cart{"a": {MenuID: "a", Quantity: 3}}, 9, 5, nil},
		{"decrement clamps to one", stock5, model.Cart{"a": {MenuID: "a", Quantity: 2}}, 0, 1, nil},
		{"untracked never clamps", untracked, model.Cart{"b": {MenuID: "b", Quantity: 40}}, 100, 100, nil},
		{"zero stock rejected", model.Menu{ID: "a", Available: true, Quantity: intp(0)}, model.Cart{}, 1, 0, ErrUnavailable},
		{"flag off rejected", model.Menu{ID: "a", Available: false}, model.Cart{}, 1, 0, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Reconcile(tt.m, tt.cart, tt.requested)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("qty = %d, want %d", got, tt.want)
			}
		})
	}
}

// fakeStore is an in-memory cart Store.
type fakeStore struct {
	carts map[string]model.Cart
}

func newFakeStore() *fakeStore {
	return &fakeStore{carts: make(map[string]model.Cart)}
}

func (f *fakeStore) Get(sessionID string) (model.Cart, error) {
	c := model.Cart{}
	for k, v := range f.carts[sessionID] {
		c[k] = v
	}
	return c, nil
}

func (f *fakeStore) Upsert(sessionID string, item model.CartItem) error {
	if f.carts[sessionID] == nil {
		f.carts[sessionID] = model.Cart{}
	}
	f.carts[sessionID][item.MenuID] = item
	return nil
}

func (f *fakeStore) Remove(sessionID, menuID string) error {
	delete(f.carts[sessionID], menuID)
	return nil
}

func (f *fakeStore) Clear(sessionID string) error {
	delete(f.carts, sessionID)
	return nil
}

type countingNotifier struct{ n int }

func (c *countingNotifier) CartChanged(string) { c.n++ }

func TestServiceWriteThrough(t *testing.T) {
	store := newFakeStore()
	notifier := &countingNotifier{}
	svc := NewService(store, notifier, slog.New(slog.DiscardHandler))

	m := model.Menu{ID: "a", Name: "Ayam Geprek", Price: 15000, Available: true, Quantity: intp(5)}

	qty, err := svc.SetQuantity("sess", m, 3)
	if err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if qty != 3 {
		t.Errorf("qty = %d, want 3", qty)
	}
	if notifier.n != 1 {
		t.Errorf("notifications = %d, want 1", notifier.n)
	}

	// Beyond headroom: persisted value is the clamped one.
	qty, err = svc.SetQuantity("sess", m, 50)
	if err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	if qty != 5 {
		t.Errorf("clamped qty = %d, want 5", qty)
	}
	c, _ := store.Get("sess")
	if c["a"].Quantity != 5 {
		t.Errorf("persisted qty = %d, want 5", c["a"].Quantity)
	}
	if c["a"].Price != 15000 || c["a"].MenuName != "Ayam Geprek" {
		t.Errorf("snapshot fields not persisted: %+v", c["a"])
	}

	if err := svc.Remove("sess", "a"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	c, _ = store.Get("sess")
	if len(c) != 0 {
		t.Errorf("cart not empty after remove: %v", c)
	}
	if notifier.n != 3 {
		t.Errorf("notifications = %d, want 3", notifier.n)
	}
}

func TestServiceStockShrankBelowCart(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, &countingNotifier{}, slog.New(slog.DiscardHandler))

	// Shopper cached 4 in the cart; another shopper bought the rest and the
	// selector re-renders with fresh stock of 2.
	store.Upsert("sess", model.CartItem{MenuID: "a", Quantity: 4})
	m := model.Menu{ID: "a", Name: "Ayam Geprek", Price: 15000, Available: true, Quantity: intp(2)}

	qty, err := svc.SetQuantity("sess", m, 5)
	if err != nil {
		t.Fatalf("SetQuantity: %v", err)
	}
	// Headroom: 2 - (4 - 4) = 2.
	if qty != 2 {
		t.Errorf("qty = %d, want 2", qty)
	}
}
