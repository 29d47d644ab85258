package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rahmatdika/ekantin/internal/auth"
	"github.com/rahmatdika/ekantin/internal/cart"
	"github.com/rahmatdika/ekantin/internal/handler"
	"github.com/rahmatdika/ekantin/internal/kantin"
	"github.com/rahmatdika/ekantin/internal/menu"
	"github.com/rahmatdika/ekantin/internal/middleware"
	"github.com/rahmatdika/ekantin/internal/order"
	"github.com/rahmatdika/ekantin/internal/push"
	"github.com/rahmatdika/ekantin/internal/sheet"
	"github.com/rahmatdika/ekantin/internal/store"
	"github.com/rahmatdika/ekantin/internal/upload"
	ws "github.com/rahmatdika/ekantin/internal/websocket"
)

// Config carries everything the server needs from the environment.
type Config struct {
	AdminScriptURL string
	JWTSecret      string
	AdminUser      string
	AdminPassHash  string
	Push           push.Config
}

type Server struct {
	db          *sql.DB
	hub         *ws.Hub
	tokens      *auth.Tokens
	storefrontH *handler.StorefrontHandler
	cartH       *handler.CartHandler
	orderH      *handler.OrderHandler
	authH       *handler.AuthHandler
	adminH      *handler.AdminHandler
	profileH    *handler.ProfileHandler
	uploadH     *handler.UploadHandler
	pushH       *handler.PushHandler
	rateLimiter *middleware.RateLimiter
	logger      *slog.Logger
}

// hubNotifier fans sync outcomes out to connected storefronts and the
// failure counter.
type hubNotifier struct {
	hub *ws.Hub
}

func (n hubNotifier) SyncSuccess(entity, action, id string) {
	n.hub.Broadcast(ws.NewMessage(entity, action, id, nil))
}

func (n hubNotifier) SyncWarning(entity, action, id string, err error) {
	middleware.RecordSyncFailure(entity, action)
	n.hub.Broadcast(ws.NewMessage(entity, action+"_pending", id, map[string]any{
		"warning": "saved locally, sheet sync pending",
	}))
}

// cartNotifier tells one shopper session its cart changed.
type cartNotifier struct {
	hub *ws.Hub
}

func (n cartNotifier) CartChanged(sessionID string) {
	n.hub.BroadcastToSession(sessionID, ws.NewMessage("cart", "changed", "", nil))
}

func New(db *sql.DB, cfg Config, uploader upload.Uploader, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	notify := hubNotifier{hub: hub}

	kantinStore := store.NewKantinStore(db)
	txnStore := store.NewTransactionStore(db)
	cartStore := store.NewCartStore(db)
	locationStore := store.NewLocationStore(db)
	pushStore := store.NewPushStore(db)

	client := sheet.NewClient(logger.With("component", "sheet"))
	kantinSvc := kantin.NewService(kantinStore, client, cfg.AdminScriptURL, notify, logger)
	menuSvc := menu.NewService(client, logger.With("component", "menu"))
	cartSvc := cart.NewService(cartStore, cartNotifier{hub: hub}, logger.With("component", "cart"))

	var statusListener order.StatusListener
	var pushH *handler.PushHandler
	if cfg.Push.Enabled() {
		pushSvc := push.NewService(cfg.Push)
		statusListener = push.NewStatusNotifier(pushSvc, pushStore, logger)
		pushH = handler.NewPushHandler(pushSvc, pushStore, logger.With("component", "push_handler"))
	}

	orderSvc := order.NewService(txnStore, kantinStore, client, notify, statusListener, logger)
	tokens := auth.NewTokens(cfg.JWTSecret)
	admin := auth.SuperAdmin{Username: cfg.AdminUser, PasswordHash: cfg.AdminPassHash}

	return &Server{
		db:          db,
		hub:         hub,
		tokens:      tokens,
		storefrontH: handler.NewStorefrontHandler(kantinSvc, menuSvc, logger.With("component", "storefront")),
		cartH:       handler.NewCartHandler(cartSvc, kantinSvc, menuSvc, locationStore, logger.With("component", "cart_handler")),
		orderH:      handler.NewOrderHandler(orderSvc, cartSvc, locationStore, logger.With("component", "order_handler")),
		authH:       handler.NewAuthHandler(kantinSvc, tokens, admin, logger.With("component", "auth")),
		adminH:      handler.NewAdminHandler(kantinSvc, logger.With("component", "admin")),
		profileH:    handler.NewProfileHandler(kantinSvc, logger.With("component", "profile")),
		uploadH:     handler.NewUploadHandler(uploader, logger.With("component", "upload")),
		pushH:       pushH,
		rateLimiter: middleware.NewRateLimiter(10, time.Minute),
		logger:      logger,
	}
}

// Hub exposes the websocket hub for shutdown accounting.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public storefront routes
	mux.HandleFunc("GET /api/kantins", s.storefrontH.ListKantins)
	mux.HandleFunc("GET /api/kantins/{id}", s.storefrontH.GetKantin)
	mux.HandleFunc("GET /api/kantins/{id}/menus", s.storefrontH.GetMenus)

	// Session cart and delivery location
	mux.HandleFunc("GET /api/cart", s.cartH.Get)
	mux.HandleFunc("PUT /api/cart/items/{menu_id}", s.cartH.SetQuantity)
	mux.HandleFunc("DELETE /api/cart/items/{menu_id}", s.cartH.Remove)
	mux.HandleFunc("DELETE /api/cart", s.cartH.Clear)
	mux.HandleFunc("PUT /api/cart/location", s.cartH.SetLocation)

	// Checkout, history and tracking
	mux.HandleFunc("POST /api/orders", s.orderH.Checkout)
	mux.HandleFunc("GET /api/orders", s.orderH.History)
	mux.HandleFunc("GET /api/orders/{code}", s.orderH.Track)
	mux.HandleFunc("POST /api/uploads", s.uploadH.Upload)

	// Push notifications
	if s.pushH != nil {
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
	}

	// Logins, rate limited by client IP
	mux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.KantinLogin))
	mux.HandleFunc("POST /api/auth/admin/login", s.rateLimitedHandler(s.authH.AdminLogin))

	// Vendor routes
	kantinMux := http.NewServeMux()
	kantinMux.HandleFunc("GET /api/kantin/profile", s.profileH.Get)
	kantinMux.HandleFunc("PUT /api/kantin/profile", s.profileH.Update)
	kantinMux.HandleFunc("PUT /api/kantin/open", s.profileH.SetOpen)
	kantinMux.HandleFunc("GET /api/kantin/orders", s.orderH.KantinOrders)
	kantinMux.HandleFunc("PATCH /api/kantin/orders/{id}/status", s.orderH.UpdateStatus)

	requireAuth := middleware.RequireAuth(s.tokens)
	mux.Handle("/api/kantin/", requireAuth(middleware.RequireKantin(kantinMux)))

	// Super-admin routes
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("GET /api/admin/kantins", s.adminH.ListKantins)
	adminMux.HandleFunc("POST /api/admin/kantins", s.adminH.CreateKantin)
	adminMux.HandleFunc("PUT /api/admin/kantins/{id}", s.adminH.UpdateKantin)
	adminMux.HandleFunc("DELETE /api/admin/kantins/{id}", s.adminH.DeleteKantin)
	mux.Handle("/api/admin/", requireAuth(middleware.RequireSuperAdmin(adminMux)))

	// Real-time updates
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	// Operational endpoints
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())

	logged := middleware.RequestLogger(s.logger.With("component", "http"))
	return logged(middleware.Metrics(mux))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "degraded"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
