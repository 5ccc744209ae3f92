package domain

import "time"

type DeliveryMethod string

const (
	DeliveryMethodNone     DeliveryMethod = "none"
	DeliveryMethodPickup   DeliveryMethod = "pickup"
	DeliveryMethodShipping DeliveryMethod = "shipping"
)

type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "pending"
	ShipmentStatusShipped   ShipmentStatus = "shipped"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
	ShipmentStatusCancelled ShipmentStatus = "cancelled"
)

// Fulfillment commits a subset of an order's line items to one delivery
// method. It is written by the fulfillment flow and read-only here.
type Fulfillment struct {
	ID             string         `json:"id"`
	OrderID        string         `json:"order_id"`
	DeliveryMethod DeliveryMethod `json:"delivery_method"`
	ShipmentStatus ShipmentStatus `json:"shipment_status"`
	CreatedAt      time.Time      `json:"created_at"`
}

// FulfillmentLineItem links a fulfillment to an order line item by id. Only
// none/pickup fulfillments need this record; shipping fulfillments carry
// their items on the shipment instead.
type FulfillmentLineItem struct {
	FulfillmentID string `json:"fulfillment_id"`
	LineItemID    string `json:"line_item_id"`
	Quantity      int    `json:"quantity"`
}

// ShipmentLineItem references an order line item by variant id. Shipment
// creation does not track original line-item identity, so the grouper
// matches these back by variant.
type ShipmentLineItem struct {
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// Shipment records the physical hand-off for a shipping fulfillment.
type Shipment struct {
	ID             string             `json:"id"`
	OrderID        string             `json:"order_id"`
	FulfillmentID  string             `json:"fulfillment_id"`
	DeliveryStatus ShipmentStatus     `json:"delivery_status"`
	TrackingNumber string             `json:"tracking_number,omitempty"`
	Carrier        string             `json:"carrier,omitempty"`
	LocationID     string             `json:"location_id,omitempty"`
	Items          []ShipmentLineItem `json:"items"`
	CreatedAt      time.Time          `json:"created_at"`
}
