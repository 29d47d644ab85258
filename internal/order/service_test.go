package order

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rahmatdika/ekantin/internal/database"
	"github.com/rahmatdika/ekantin/internal/model"
	"github.com/rahmatdika/ekantin/internal/sheet"
	"github.com/rahmatdika/ekantin/internal/store"
)

type quietNotifier struct{}

func (quietNotifier) SyncSuccess(entity, action, id string)            {}
func (quietNotifier) SyncWarning(entity, action, id string, err error) {}

type recordingListener struct {
	changed []model.Transaction
}

func (l *recordingListener) OrderStatusChanged(t model.Transaction) {
	l.changed = append(l.changed, t)
}

func newTestService(t *testing.T, scriptURL string) (*Service, *store.TransactionStore, *recordingListener) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.DiscardHandler)
	ks := store.NewKantinStore(db)
	ts := store.NewTransactionStore(db)
	if err := ks.Upsert(model.Kantin{
		ID:                "k1",
		Name:              "Kantin Bu Sri",
		SpreadsheetAPIURL: scriptURL,
		CreatedAt:         time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed kantin: %v", err)
	}

	listener := &recordingListener{}
	client := sheet.NewClient(logger, sheet.WithRetries(0))
	svc := NewService(ts, ks, client, quietNotifier{}, listener, logger)
	return svc, ts, listener
}

func okSheet(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testCart() model.Cart {
	return model.Cart{
		"menu-1": {MenuID: "menu-1", MenuName: "Nasi Goreng", Quantity: 2, Price: 15000},
		"menu-2": {MenuID: "menu-2", MenuName: "Es Teh", Quantity: 1, Price: 5000},
	}
}

func TestCheckout(t *testing.T) {
	svc, ts, _ := newTestService(t, okSheet(t).URL)

	got, err := svc.Checkout(context.Background(), CheckoutInput{
		SessionID:    "sess-1",
		KantinID:     "k1",
		CustomerName: "Andi",
		PaymentProof: "https://drive.google.com/uc?id=proof-1",
		Cart:         testCart(),
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if got.Total != 35000 {
		t.Errorf("total = %d, want subtotal 35000 for take away", got.Total)
	}
	if got.Status != model.StatusPending {
		t.Errorf("status = %q", got.Status)
	}
	if !strings.HasPrefix(got.Code, "EK-") {
		t.Errorf("code = %q", got.Code)
	}
	if len(got.Items) != 2 {
		t.Errorf("items = %+v", got.Items)
	}

	cached, _ := ts.GetByID(got.ID)
	if cached == nil {
		t.Fatal("order not cached")
	}
	if cached.PendingSync {
		t.Error("pending_sync set after clean checkout")
	}
	if cached.SessionID != "sess-1" {
		t.Errorf("session = %q", cached.SessionID)
	}
}

func TestCheckoutAddsDeliveryFee(t *testing.T) {
	svc, _, _ := newTestService(t, okSheet(t).URL)

	got, err := svc.Checkout(context.Background(), CheckoutInput{
		SessionID:    "sess-1",
		KantinID:     "k1",
		PaymentProof: "proof",
		Cart:         testCart(),
		Location:     &model.DeliveryLocation{Name: "Gedung A", TableNumber: "Meja 1"},
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if got.Total != 35000+DefaultDeliveryFee {
		t.Errorf("total = %d, want %d", got.Total, 35000+DefaultDeliveryFee)
	}
	if got.DeliveryLocation == nil {
		t.Error("location dropped")
	}
}

func TestCheckoutValidation(t *testing.T) {
	svc, _, _ := newTestService(t, okSheet(t).URL)
	ctx := context.Background()

	if _, err := svc.Checkout(ctx, CheckoutInput{KantinID: "k1", PaymentProof: "p", Cart: model.Cart{}}); err != ErrEmptyCart {
		t.Errorf("empty cart err = %v", err)
	}
	if _, err := svc.Checkout(ctx, CheckoutInput{KantinID: "k1", Cart: testCart()}); err != ErrMissingProof {
		t.Errorf("missing proof err = %v", err)
	}
	if _, err := svc.Checkout(ctx, CheckoutInput{KantinID: "ghost", PaymentProof: "p", Cart: testCart()}); err == nil {
		t.Error("unknown kantin accepted")
	}
}

func TestCheckoutSurvivesSheetOutage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()
	svc, ts, _ := newTestService(t, srv.URL)

	got, err := svc.Checkout(context.Background(), CheckoutInput{
		SessionID:    "sess-1",
		KantinID:     "k1",
		PaymentProof: "proof",
		Cart:         testCart(),
	})
	if err != nil {
		t.Fatalf("checkout failed on sheet outage: %v", err)
	}

	cached, _ := ts.GetByID(got.ID)
	if cached == nil {
		t.Fatal("order lost")
	}
	if !cached.PendingSync {
		t.Error("pending_sync not flagged")
	}
}

func TestUpdateStatus(t *testing.T) {
	svc, ts, listener := newTestService(t, okSheet(t).URL)
	seed := model.Transaction{
		ID: "txn-1", Code: "EK-ABC234", KantinID: "k1", Status: model.StatusPending,
		SessionID: "sess-1", CreatedAt: time.Now().UTC(),
	}
	if err := ts.Upsert(seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Forward skip is allowed: pending straight to ready.
	got, err := svc.UpdateStatus(context.Background(), "k1", "txn-1", model.StatusReady)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != model.StatusReady {
		t.Errorf("status = %q", got.Status)
	}
	if len(listener.changed) != 1 || listener.changed[0].Status != model.StatusReady {
		t.Errorf("listener saw %+v", listener.changed)
	}

	// Backwards is not.
	if _, err := svc.UpdateStatus(context.Background(), "k1", "txn-1", model.StatusPending); err == nil {
		t.Error("backwards transition accepted")
	}

	// Terminal states stay terminal.
	if _, err := svc.UpdateStatus(context.Background(), "k1", "txn-1", model.StatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), "k1", "txn-1", model.StatusCancelled); err == nil {
		t.Error("left a terminal state")
	}
}

func TestUpdateStatusOwnership(t *testing.T) {
	svc, ts, _ := newTestService(t, okSheet(t).URL)
	ts.Upsert(model.Transaction{
		ID: "txn-1", Code: "EK-ABC234", KantinID: "k2", Status: model.StatusPending,
		CreatedAt: time.Now().UTC(),
	})

	if _, err := svc.UpdateStatus(context.Background(), "k1", "txn-1", model.StatusProcessing); err != ErrNotYours {
		t.Errorf("err = %v, want ErrNotYours", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), "k1", "ghost", model.StatusProcessing); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), "k1", "txn-1", "shipped"); err == nil {
		t.Error("unknown status accepted")
	}
}

func TestFindByCodeRefreshesVendorSheets(t *testing.T) {
	remote := sheet.Row{
		"id": "txn-9", "code": "EK-REMOTE", "kantinId": "k1",
		"items": "[]", "total": 10000, "status": "pending",
		"createdAt": "2025-03-01T08:00:00Z",
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []sheet.Row{remote}})
	}))
	defer srv.Close()
	svc, _, _ := newTestService(t, srv.URL)

	got, err := svc.FindByCode(context.Background(), "ek-remote")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil || got.ID != "txn-9" {
		t.Errorf("got %+v", got)
	}

	missing, err := svc.FindByCode(context.Background(), "EK-NOPE")
	if err != nil {
		t.Fatalf("find missing: %v", err)
	}
	if missing != nil {
		t.Errorf("got %+v for unknown code", missing)
	}
}
