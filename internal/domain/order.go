package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// LineItem is one product/variant entry within an order. ID is empty for
// items the user has added but not yet saved; the orders service assigns it
// on persistence.
type LineItem struct {
	ID               string `json:"id,omitempty"`
	VariantID        string `json:"variant_id"`
	Title            string `json:"title"`
	Quantity         int    `json:"quantity"`
	UnitPrice        int64  `json:"unit_price"`
	Note             string `json:"note,omitempty"`
	Thumbnail        string `json:"thumbnail,omitempty"`
	RequiresShipping bool   `json:"requires_shipping"`

	// Inventory snapshot, display-only.
	InventoryQuantity int  `json:"inventory_quantity"`
	InventoryTracked  bool `json:"inventory_tracked"`
}

// Total is always derived; it is never stored independently of its operands.
func (li LineItem) Total() int64 {
	return int64(li.Quantity) * li.UnitPrice
}

// Persisted reports whether the item has been saved by the orders service.
func (li LineItem) Persisted() bool {
	return li.ID != ""
}

const ShippingLineTypeCustom = "custom"

// ShippingLine is one shipping-fee entry. Manually entered fees always carry
// the "custom" type tag.
type ShippingLine struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Price int64  `json:"price"`
	Type  string `json:"type"`
}

func (sl ShippingLine) Persisted() bool {
	return sl.ID != ""
}

type Order struct {
	ID            string         `json:"id"`
	CustomerID    string         `json:"customer_id"`
	Email         string         `json:"email,omitempty"`
	Status        OrderStatus    `json:"status"`
	Total         int64          `json:"total"`
	LineItems     []LineItem     `json:"line_items"`
	ShippingLines []ShippingLine `json:"shipping_lines"`
	Fulfillments  []Fulfillment  `json:"fulfillments"`
	CreatedAt     time.Time      `json:"created_at"`
}
