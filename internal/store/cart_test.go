package store

import (
	"testing"
	"time"

	"github.com/rahmatdika/ekantin/internal/model"
)

func TestCartStoreWriteThrough(t *testing.T) {
	cs := NewCartStore(openTestDB(t))

	cart, err := cs.Get("sess-1")
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if len(cart) != 0 {
		t.Errorf("fresh session cart has %d items", len(cart))
	}

	item := model.CartItem{MenuID: "menu-1", MenuName: "Es Teh", Quantity: 1, Price: 5000}
	if err := cs.Upsert("sess-1", item); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	item.Quantity = 3
	if err := cs.Upsert("sess-1", item); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if err := cs.Upsert("sess-1", model.CartItem{MenuID: "menu-2", MenuName: "Bakso", Quantity: 1, Price: 12000}); err != nil {
		t.Fatalf("upsert second: %v", err)
	}

	cart, _ = cs.Get("sess-1")
	if len(cart) != 2 {
		t.Fatalf("got %d items, want 2", len(cart))
	}
	if cart["menu-1"].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", cart["menu-1"].Quantity)
	}
	if cart.Subtotal() != 3*5000+12000 {
		t.Errorf("subtotal = %d", cart.Subtotal())
	}

	// Carts are per session.
	other, _ := cs.Get("sess-2")
	if len(other) != 0 {
		t.Errorf("other session sees %d items", len(other))
	}

	if err := cs.Remove("sess-1", "menu-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	cart, _ = cs.Get("sess-1")
	if _, ok := cart["menu-1"]; ok {
		t.Error("removed item still present")
	}

	if err := cs.Clear("sess-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	cart, _ = cs.Get("sess-1")
	if len(cart) != 0 {
		t.Errorf("cart not empty after clear: %d items", len(cart))
	}
}

func TestLocationStoreOnePerSession(t *testing.T) {
	ls := NewLocationStore(openTestDB(t))

	loc, err := ls.Get("sess-1")
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if loc != nil {
		t.Errorf("fresh session has location %+v", loc)
	}

	scanned := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := ls.Set("sess-1", model.DeliveryLocation{Name: "Gedung A", TableNumber: "Meja 1", ScannedAt: scanned}); err != nil {
		t.Fatalf("set: %v", err)
	}
	// Scanning a second QR replaces the first.
	if err := ls.Set("sess-1", model.DeliveryLocation{Name: "Gedung B", TableNumber: "Meja 7", ScannedAt: scanned.Add(time.Minute)}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	loc, _ = ls.Get("sess-1")
	if loc == nil || loc.Name != "Gedung B" || loc.TableNumber != "Meja 7" {
		t.Errorf("location = %+v", loc)
	}

	if err := ls.Clear("sess-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	loc, _ = ls.Get("sess-1")
	if loc != nil {
		t.Errorf("location survived clear: %+v", loc)
	}
}

func TestPushStoreEndpointMoves(t *testing.T) {
	ps := NewPushStore(openTestDB(t))

	sub := model.PushSubscription{
		SessionID: "sess-1",
		Endpoint:  "https://push.example/ep-1",
		P256dhKey: "p256dh",
		AuthKey:   "auth",
	}
	if err := ps.Save(sub); err != nil {
		t.Fatalf("save: %v", err)
	}

	// Same browser endpoint re-registered under a new session.
	sub.SessionID = "sess-2"
	if err := ps.Save(sub); err != nil {
		t.Fatalf("re-save: %v", err)
	}

	old, _ := ps.ListBySession("sess-1")
	if len(old) != 0 {
		t.Errorf("old session still owns %d subscriptions", len(old))
	}
	moved, err := ps.ListBySession("sess-2")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(moved) != 1 || moved[0].Endpoint != sub.Endpoint {
		t.Errorf("moved = %+v", moved)
	}

	if err := ps.DeleteByEndpoint(sub.Endpoint); err != nil {
		t.Fatalf("delete: %v", err)
	}
	left, _ := ps.ListBySession("sess-2")
	if len(left) != 0 {
		t.Errorf("subscription survived delete: %+v", left)
	}
}
