package handler

import (
	"log/slog"
	"net/http"

	"github.com/mkadlec/spajz/internal/backup"
)

type BackupHandler struct {
	manager *backup.Manager
	logger  *slog.Logger
}

func NewBackupHandler(manager *backup.Manager, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{manager: manager, logger: logger}
}

// Create handles POST /api/backups
func (h *BackupHandler) Create(w http.ResponseWriter, r *http.Request) {
	info, err := h.manager.Create()
	if err != nil {
		h.logger.Error("create backup", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create backup"})
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// List handles GET /api/backups
func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	infos, err := h.manager.List()
	if err != nil {
		h.logger.Error("list backups", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list backups"})
		return
	}
	if infos == nil {
		infos = []backup.Info{}
	}
	writeJSON(w, http.StatusOK, infos)
}
