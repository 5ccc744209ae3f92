package shipments

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

type Handler struct {
	repo   *ShipmentRepository
	logger *slog.Logger
}

func NewHandler(repo *ShipmentRepository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

func (h *Handler) HandleListShipments(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("order_id")
	if orderID == "" {
		h.writeError(w, http.StatusBadRequest, "missing order_id")
		return
	}

	shipments, err := h.repo.ListByOrder(r.Context(), orderID)
	if err != nil {
		h.logger.Error("failed to list shipments", "error", err, "order_id", orderID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("shipments listed", "order_id", orderID, "count", len(shipments))
	h.writeJSON(w, http.StatusOK, shipments)
}

func (h *Handler) HandleFulfillmentItems(w http.ResponseWriter, r *http.Request) {
	fulfillmentID := r.PathValue("id")
	if fulfillmentID == "" {
		h.writeError(w, http.StatusBadRequest, "missing fulfillment id")
		return
	}

	items, err := h.repo.FulfillmentItems(r.Context(), fulfillmentID)
	if err != nil {
		h.logger.Error("failed to list fulfillment items", "error", err, "fulfillment_id", fulfillmentID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, items)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
