package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mkadlec/spajz/internal/store"
	"github.com/mkadlec/spajz/internal/websocket"
)

type SettingsHandler struct {
	settingsStore *store.SettingsStore
	hub           *websocket.Hub
	logger        *slog.Logger
}

func NewSettingsHandler(ss *store.SettingsStore, hub *websocket.Hub, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{settingsStore: ss, hub: hub, logger: logger}
}

type settingsResponse struct {
	NotifyDaysBefore int `json:"notifyDaysBefore"`
}

// Get handles GET /api/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	days, err := h.settingsStore.NotifyDaysBefore()
	if err != nil {
		h.logger.Error("get settings", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch settings"})
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{NotifyDaysBefore: days})
}

type updateSettingsRequest struct {
	NotifyDaysBefore *int `json:"notifyDaysBefore"`
}

// Update handles PUT /api/settings
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	if req.NotifyDaysBefore != nil {
		if *req.NotifyDaysBefore < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "notifyDaysBefore must be a positive number"})
			return
		}
		if err := h.settingsStore.SetNotifyDaysBefore(*req.NotifyDaysBefore); err != nil {
			h.logger.Error("update settings", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update settings"})
			return
		}
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("settings", "updated", "", nil))
	}

	h.Get(w, r)
}
