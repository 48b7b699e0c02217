package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkadlec/spajz/internal/backup"
	"github.com/mkadlec/spajz/internal/barcode"
	"github.com/mkadlec/spajz/internal/handler"
	"github.com/mkadlec/spajz/internal/middleware"
	"github.com/mkadlec/spajz/internal/push"
	"github.com/mkadlec/spajz/internal/store"
	ws "github.com/mkadlec/spajz/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	foodH         *handler.FoodHandler
	settingsH     *handler.SettingsHandler
	pushH         *handler.PushHandler
	barcodeH      *handler.BarcodeHandler
	backupH       *handler.BackupHandler
	pushScheduler *push.Scheduler
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

// checkBroadcaster forwards completed expiration checks to WebSocket clients.
type checkBroadcaster struct {
	hub *ws.Hub
}

func (b checkBroadcaster) CheckCompleted(report push.CheckReport) {
	b.hub.Broadcast(ws.NewMessage("expiration", "checked", "", map[string]any{
		"expired":       report.Expired,
		"expiring_soon": report.ExpiringSoon,
		"notified":      report.Notified,
		"removed":       report.Removed,
	}))
}

// New wires stores, services, and handlers. A nil pushCfg disables push
// delivery: the dispatcher stays up but reports every dispatch as a no-op.
func New(db *sql.DB, pushCfg *push.Config, backupCfg backup.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	foodStore := store.NewFoodStore(db)
	settingsStore := store.NewSettingsStore(db)
	pushStore := store.NewPushStore(db)

	pushLogger := logger.With("component", "push")

	var pushSvc *push.Service
	var sender push.Sender
	if pushCfg != nil {
		pushSvc = push.NewService(*pushCfg)
		sender = pushSvc
	}
	dispatcher := push.NewDispatcher(sender, pushStore, pushLogger)
	scheduler := push.NewScheduler(dispatcher, foodStore, settingsStore, pushStore, checkBroadcaster{hub: hub}, logger.With("component", "scheduler"))

	backupMgr := backup.NewManager(backupCfg, db, logger.With("component", "backup"))

	return &Server{
		db:            db,
		hub:           hub,
		foodH:         handler.NewFoodHandler(foodStore, hub, logger.With("component", "food")),
		settingsH:     handler.NewSettingsHandler(settingsStore, hub, logger.With("component", "settings")),
		pushH:         handler.NewPushHandler(pushStore, pushSvc, dispatcher, scheduler, pushLogger),
		barcodeH:      handler.NewBarcodeHandler(barcode.NewClient(), logger.With("component", "barcode")),
		backupH:       handler.NewBackupHandler(backupMgr, logger.With("component", "backup")),
		pushScheduler: scheduler,
		rateLimiter:   middleware.NewRateLimiter(),
		logger:        logger,
	}
}

// PushScheduler returns the expiration check scheduler for lifecycle control.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Foods API
	mux.HandleFunc("GET /api/foods", s.foodH.List)
	mux.HandleFunc("POST /api/foods", s.foodH.Create)
	mux.HandleFunc("PUT /api/foods/{id}", s.foodH.Update)
	mux.HandleFunc("DELETE /api/foods/{id}", s.foodH.Delete)

	// Settings API
	mux.HandleFunc("GET /api/settings", s.settingsH.Get)
	mux.HandleFunc("PUT /api/settings", s.settingsH.Update)

	// Push API
	mux.HandleFunc("GET /api/push/vapid-public-key", s.pushH.GetVAPIDKey)
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("DELETE /api/push/subscribe", s.pushH.Unsubscribe)
	mux.HandleFunc("POST /api/push/test", s.pushH.TestNotification)
	mux.HandleFunc("POST /api/expiration/check", s.pushH.RunCheck)

	// Barcode lookup, rate limited to be polite to Open Food Facts
	mux.Handle("GET /api/barcode/{code}", s.rateLimited(s.barcodeH.Lookup, 30, time.Minute))

	// Backups API
	mux.HandleFunc("POST /api/backups", s.backupH.Create)
	mux.HandleFunc("GET /api/backups", s.backupH.List)

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.HandlerFunc, limit int, window time.Duration) http.Handler {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	return middleware.RateLimit(s.rateLimiter, keyFunc, limit, window)(h)
}
