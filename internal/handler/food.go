package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mkadlec/spajz/internal/model"
	"github.com/mkadlec/spajz/internal/store"
	"github.com/mkadlec/spajz/internal/websocket"
)

type FoodHandler struct {
	foodStore *store.FoodStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewFoodHandler(fs *store.FoodStore, hub *websocket.Hub, logger *slog.Logger) *FoodHandler {
	return &FoodHandler{foodStore: fs, hub: hub, logger: logger}
}

type foodRequest struct {
	Name           string `json:"name"`
	AddedDate      string `json:"addedDate"`
	ExpirationDate string `json:"expirationDate"`
}

func (r foodRequest) validate(requireAll bool) string {
	if requireAll {
		if strings.TrimSpace(r.Name) == "" || r.ExpirationDate == "" {
			return "name and expirationDate are required"
		}
	}
	for _, date := range []string{r.AddedDate, r.ExpirationDate} {
		if date == "" {
			continue
		}
		if _, err := time.Parse(model.DateFormat, date); err != nil {
			return "dates must use the YYYY-MM-DD format"
		}
	}
	return ""
}

// List handles GET /api/foods
func (h *FoodHandler) List(w http.ResponseWriter, r *http.Request) {
	foods, err := h.foodStore.List()
	if err != nil {
		h.logger.Error("list foods", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to fetch foods"})
		return
	}
	if foods == nil {
		foods = []model.FoodItem{}
	}
	writeJSON(w, http.StatusOK, foods)
}

// Create handles POST /api/foods
func (h *FoodHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req foodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(true); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	food, err := h.foodStore.Create(strings.TrimSpace(req.Name), req.AddedDate, req.ExpirationDate)
	if err != nil {
		h.logger.Error("create food", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to add food"})
		return
	}

	h.broadcast(websocket.NewMessage("food", "created", food.ID, nil))
	writeJSON(w, http.StatusCreated, food)
}

// Update handles PUT /api/foods/{id}
func (h *FoodHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req foodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if msg := req.validate(false); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	food, err := h.foodStore.Update(id, strings.TrimSpace(req.Name), req.AddedDate, req.ExpirationDate)
	if err != nil {
		h.logger.Error("update food", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update food"})
		return
	}
	if food == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "food not found"})
		return
	}

	h.broadcast(websocket.NewMessage("food", "updated", food.ID, nil))
	writeJSON(w, http.StatusOK, food)
}

// Delete handles DELETE /api/foods/{id}
func (h *FoodHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	deleted, err := h.foodStore.Delete(id)
	if err != nil {
		h.logger.Error("delete food", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete food"})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "food not found"})
		return
	}

	h.broadcast(websocket.NewMessage("food", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (h *FoodHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
