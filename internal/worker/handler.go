// Package worker processes order-updated events: when an edit was submitted
// with the notify flag set, the customer gets a summary email through the
// email service.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ruifgomes/orderdesk/internal/domain"
)

type NotificationHandler struct {
	emailServiceURL string
	httpClient      *http.Client
	logger          *slog.Logger
}

func NewNotificationHandler(emailServiceURL string, client *http.Client, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{
		emailServiceURL: emailServiceURL,
		httpClient:      client,
		logger:          logger,
	}
}

func (h *NotificationHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderUpdatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order updated event: %w", err)
	}

	h.logger.Info("processing order updated event",
		"order_id", event.OrderID,
		"items_added", event.ItemsAdded,
		"items_removed", event.ItemsRemoved,
		"items_changed", event.ItemsChanged,
	)

	if !event.SendEmail {
		h.logger.Info("notification skipped", "order_id", event.OrderID)
		return nil
	}

	if err := h.sendUpdateEmail(ctx, event); err != nil {
		h.logger.Error("failed to send update email", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send update email: %w", err)
	}

	h.logger.Info("order update notification sent", "order_id", event.OrderID)
	return nil
}

func (h *NotificationHandler) sendUpdateEmail(ctx context.Context, event domain.OrderUpdatedEvent) error {
	to := event.Email
	if to == "" {
		to = event.CustomerID + "@example.com"
	}

	body := map[string]string{
		"to":      to,
		"subject": "Order Updated: " + event.OrderID,
		"body": fmt.Sprintf(
			"Your order %s was updated: %d item(s) added, %d removed, %d changed. New total: %d.",
			event.OrderID, event.ItemsAdded, event.ItemsRemoved, event.ItemsChanged, event.Total,
		),
	}

	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	return nil
}
