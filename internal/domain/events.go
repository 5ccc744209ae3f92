package domain

import "time"

// OrderUpdatedEvent is published after an order edit is applied. The counts
// summarize the applied diff; SendEmail mirrors the edit request's flag and
// tells the notification worker whether to contact the customer.
type OrderUpdatedEvent struct {
	OrderID      string    `json:"order_id"`
	CustomerID   string    `json:"customer_id"`
	Email        string    `json:"email,omitempty"`
	ItemsAdded   int       `json:"items_added"`
	ItemsRemoved int       `json:"items_removed"`
	ItemsChanged int       `json:"items_changed"`
	Total        int64     `json:"total"`
	SendEmail    bool      `json:"send_email"`
	Timestamp    time.Time `json:"timestamp"`
}
