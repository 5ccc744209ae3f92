package shipments

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/ruifgomes/orderdesk/internal/domain"
)

type ShipmentRepository struct {
	db *sql.DB
}

func NewShipmentRepository(db *sql.DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

func (r *ShipmentRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.Shipment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, fulfillment_id, delivery_status, tracking_number, carrier, location_id, created_at
		FROM shipments
		WHERE order_id = $1
		ORDER BY created_at
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	shipmentMap := make(map[string]*domain.Shipment)
	var shipmentIDs []string

	for rows.Next() {
		var s domain.Shipment
		if err := rows.Scan(&s.ID, &s.OrderID, &s.FulfillmentID, &s.DeliveryStatus, &s.TrackingNumber, &s.Carrier, &s.LocationID, &s.CreatedAt); err != nil {
			return nil, err
		}
		s.Items = []domain.ShipmentLineItem{}
		shipmentMap[s.ID] = &s
		shipmentIDs = append(shipmentIDs, s.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(shipmentIDs) == 0 {
		return []domain.Shipment{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT shipment_id, variant_id, quantity
		FROM shipment_line_items
		WHERE shipment_id = ANY($1)
	`, pq.Array(shipmentIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var shipmentID string
		var item domain.ShipmentLineItem
		if err := itemRows.Scan(&shipmentID, &item.VariantID, &item.Quantity); err != nil {
			return nil, err
		}
		shipment := shipmentMap[shipmentID]
		shipment.Items = append(shipment.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	shipments := make([]domain.Shipment, 0, len(shipmentIDs))
	for _, id := range shipmentIDs {
		shipments = append(shipments, *shipmentMap[id])
	}

	return shipments, nil
}

func (r *ShipmentRepository) FulfillmentItems(ctx context.Context, fulfillmentID string) ([]domain.FulfillmentLineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT fulfillment_id, line_item_id, quantity
		FROM fulfillment_line_items
		WHERE fulfillment_id = $1
	`, fulfillmentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []domain.FulfillmentLineItem{}
	for rows.Next() {
		var item domain.FulfillmentLineItem
		if err := rows.Scan(&item.FulfillmentID, &item.LineItemID, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
