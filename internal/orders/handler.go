package orders

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ruifgomes/orderdesk/internal/domain"
	"github.com/ruifgomes/orderdesk/internal/grouping"
	"github.com/ruifgomes/orderdesk/internal/messaging"
	"github.com/ruifgomes/orderdesk/internal/reconcile"
)

// ShipmentSource is the slice of the shipments service the grouping endpoint
// needs: the shipments of an order, and the claimed line items of a
// fulfillment that has no shipment.
type ShipmentSource interface {
	ListShipments(ctx context.Context, orderID string) ([]domain.Shipment, error)
	FulfillmentItems(ctx context.Context, fulfillmentID string) ([]domain.FulfillmentLineItem, error)
}

type Handler struct {
	repo      *OrderRepository
	shipments ShipmentSource
	producer  *messaging.Producer
	logger    *slog.Logger
}

func NewHandler(repo *OrderRepository, shipments ShipmentSource, producer *messaging.Producer, logger *slog.Logger) *Handler {
	return &Handler{
		repo:      repo,
		shipments: shipments,
		producer:  producer,
		logger:    logger,
	}
}

type createOrderRequest struct {
	CustomerID    string                `json:"customer_id"`
	Email         string                `json:"email"`
	Items         []createOrderItem     `json:"items"`
	ShippingLines []domain.ShippingLine `json:"shipping_lines"`
}

type createOrderItem struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Note      string `json:"note"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Items) == 0 {
		h.writeError(w, http.StatusBadRequest, "order needs at least one item")
		return
	}

	order := &domain.Order{
		CustomerID:    req.CustomerID,
		Email:         req.Email,
		Status:        domain.OrderStatusPending,
		ShippingLines: req.ShippingLines,
		CreatedAt:     time.Now().UTC(),
	}
	for _, item := range req.Items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		order.LineItems = append(order.LineItems, domain.LineItem{
			VariantID: item.VariantID,
			Quantity:  qty,
			Note:      item.Note,
		})
	}

	if err := h.repo.Create(r.Context(), order); err != nil {
		if errors.Is(err, ErrUnknownVariant) {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("failed to create order", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("order created", "order_id", order.ID, "customer_id", order.CustomerID)
	h.writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.writeJSON(w, http.StatusOK, order)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("orders listed", "count", len(orders))
	h.writeJSON(w, http.StatusOK, orders)
}

// HandleGroups renders the order detail sections: it joins the order's line
// items with the shipments service's view of shipments and fulfillment line
// items, then partitions them.
func (h *Handler) HandleGroups(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	shipments, err := h.shipments.ListShipments(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list shipments", "error", err, "order_id", id)
		h.writeError(w, http.StatusBadGateway, "shipments service unavailable")
		return
	}

	// Shipments cover shipping fulfillments; none/pickup fulfillments keep
	// their claimed items in a separate record that has to be fetched per
	// fulfillment.
	shipped := make(map[string]bool, len(shipments))
	for _, s := range shipments {
		shipped[s.FulfillmentID] = true
	}

	fulfillmentItems := make(map[string][]domain.FulfillmentLineItem)
	for _, f := range order.Fulfillments {
		if shipped[f.ID] {
			continue
		}
		if f.DeliveryMethod != domain.DeliveryMethodNone && f.DeliveryMethod != domain.DeliveryMethodPickup {
			continue
		}
		items, err := h.shipments.FulfillmentItems(r.Context(), f.ID)
		if err != nil {
			h.logger.Error("failed to fetch fulfillment items", "error", err, "fulfillment_id", f.ID)
			h.writeError(w, http.StatusBadGateway, "shipments service unavailable")
			return
		}
		fulfillmentItems[f.ID] = items
	}

	items := make([]*domain.LineItem, len(order.LineItems))
	for i := range order.LineItems {
		items[i] = &order.LineItems[i]
	}

	groups := grouping.Group(items, order.Fulfillments, shipments, fulfillmentItems)

	h.logger.Info("line item groups computed", "order_id", id, "groups", len(groups))
	h.writeJSON(w, http.StatusOK, groups)
}

// HandleUpdateItems applies a reconciled edit to an order. The request body
// is the reconciler's output: removals carry an id with every other field
// null, mutations carry current values, additions carry a variant id.
func (h *Handler) HandleUpdateItems(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	var req reconcile.UpdateItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	for _, change := range req.Items {
		if change.ID == nil && change.VariantID == nil {
			h.writeError(w, http.StatusBadRequest, "item change needs an id or a variant id")
			return
		}
	}

	order, summary, err := h.repo.ApplyUpdate(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, ErrUnknownVariant) {
			h.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.logger.Error("failed to apply order update", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if h.producer != nil {
		event := domain.OrderUpdatedEvent{
			OrderID:      order.ID,
			CustomerID:   order.CustomerID,
			Email:        order.Email,
			ItemsAdded:   summary.ItemsAdded,
			ItemsRemoved: summary.ItemsRemoved,
			ItemsChanged: summary.ItemsChanged,
			Total:        order.Total,
			SendEmail:    req.SendEmail,
			Timestamp:    time.Now().UTC(),
		}
		if err := h.producer.Publish(r.Context(), order.ID, event); err != nil {
			h.logger.Error("failed to publish order updated event", "error", err, "order_id", order.ID)
		}
	}

	h.logger.Info("order updated",
		"order_id", order.ID,
		"items_added", summary.ItemsAdded,
		"items_removed", summary.ItemsRemoved,
		"items_changed", summary.ItemsChanged,
	)
	h.writeJSON(w, http.StatusOK, order)
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
