package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mkadlec/spajz/internal/push"
	"github.com/mkadlec/spajz/internal/store"
)

type PushHandler struct {
	pushStore  *store.PushStore
	service    *push.Service
	dispatcher *push.Dispatcher
	scheduler  *push.Scheduler
	logger     *slog.Logger
}

func NewPushHandler(ps *store.PushStore, svc *push.Service, dispatcher *push.Dispatcher, scheduler *push.Scheduler, logger *slog.Logger) *PushHandler {
	return &PushHandler{pushStore: ps, service: svc, dispatcher: dispatcher, scheduler: scheduler, logger: logger}
}

// GetVAPIDKey handles GET /api/push/vapid-public-key
func (h *PushHandler) GetVAPIDKey(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "push notifications not configured"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": h.service.VAPIDPublicKey()})
}

type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// Subscribe handles POST /api/push/subscribe
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.Endpoint == "" || req.Keys.P256dh == "" || req.Keys.Auth == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid subscription data"})
		return
	}

	if _, err := h.pushStore.Create(req.Endpoint, req.Keys.P256dh, req.Keys.Auth); err != nil {
		h.logger.Error("create push subscription", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to subscribe"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"message": "subscribed"})
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// Unsubscribe handles DELETE /api/push/subscribe
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if req.Endpoint == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "endpoint is required"})
		return
	}

	if err := h.pushStore.DeleteByEndpoint(req.Endpoint); err != nil {
		h.logger.Error("delete push subscription", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to unsubscribe"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TestNotification handles POST /api/push/test
func (h *PushHandler) TestNotification(w http.ResponseWriter, r *http.Request) {
	subs, err := h.pushStore.List()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list subscriptions"})
		return
	}

	payload := push.Payload{
		Title: "Špajz",
		Body:  "Push notifikace fungují!",
		Tag:   "test",
	}

	report := h.dispatcher.Dispatch(payload, subs)
	writeJSON(w, http.StatusOK, report)
}

// RunCheck handles POST /api/expiration/check — runs the daily cycle on
// demand and returns its summary.
func (h *PushHandler) RunCheck(w http.ResponseWriter, r *http.Request) {
	report := h.scheduler.RunExpirationCheck()
	writeJSON(w, http.StatusOK, report)
}
