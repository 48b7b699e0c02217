package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mkadlec/spajz/internal/barcode"
)

type BarcodeHandler struct {
	client *barcode.Client
	logger *slog.Logger
}

func NewBarcodeHandler(client *barcode.Client, logger *slog.Logger) *BarcodeHandler {
	return &BarcodeHandler{client: client, logger: logger}
}

// Lookup handles GET /api/barcode/{code}
func (h *BarcodeHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "barcode is required"})
		return
	}

	product, err := h.client.Lookup(r.Context(), code)
	if errors.Is(err, barcode.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
		return
	}
	if err != nil {
		h.logger.Error("barcode lookup", "code", code, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to lookup barcode"})
		return
	}

	writeJSON(w, http.StatusOK, product)
}
