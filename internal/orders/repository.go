package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ruifgomes/orderdesk/internal/domain"
	"github.com/ruifgomes/orderdesk/internal/reconcile"
)

// ErrUnknownVariant is returned when an edit or create references a variant
// id that has no catalog row.
var ErrUnknownVariant = errors.New("unknown variant")

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// UpdateSummary counts the effects of an applied edit, for the
// order-updated event.
type UpdateSummary struct {
	ItemsAdded   int
	ItemsRemoved int
	ItemsChanged int
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	order.ID = uuid.New().String()

	for i := range order.LineItems {
		item := &order.LineItems[i]
		variant, err := variantByID(ctx, tx, item.VariantID)
		if err != nil {
			return err
		}
		item.ID = uuid.New().String()
		item.Title = variant.title
		item.UnitPrice = variant.unitPrice
		item.Thumbnail = variant.thumbnail
		item.RequiresShipping = variant.requiresShipping
		item.InventoryQuantity = variant.inventoryQuantity
		item.InventoryTracked = variant.inventoryTracked
	}

	order.Total = orderTotal(order.LineItems, order.ShippingLines)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, email, status, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
	`, order.ID, order.CustomerID, order.Email, order.Status, order.Total, order.CreatedAt)
	if err != nil {
		return err
	}

	for _, item := range order.LineItems {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO line_items (id, order_id, variant_id, title, quantity, unit_price, note, thumbnail, requires_shipping)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`, item.ID, order.ID, item.VariantID, item.Title, item.Quantity, item.UnitPrice, item.Note, item.Thumbnail, item.RequiresShipping)
		if err != nil {
			return err
		}
	}

	for i := range order.ShippingLines {
		line := &order.ShippingLines[i]
		line.ID = uuid.New().String()
		if line.Type == "" {
			line.Type = domain.ShippingLineTypeCustom
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO shipping_lines (id, order_id, title, price, type)
			VALUES ($1, $2, $3, $4, $5)
		`, line.ID, order.ID, line.Title, line.Price, line.Type)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, customer_id, email, status, total, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.CustomerID, &order.Email, &order.Status, &order.Total, &order.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	order.LineItems, err = r.lineItems(ctx, id)
	if err != nil {
		return nil, err
	}

	order.ShippingLines, err = r.shippingLines(ctx, id)
	if err != nil {
		return nil, err
	}

	order.Fulfillments, err = r.fulfillments(ctx, id)
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_id, email, status, total, created_at
		FROM orders
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.CustomerID, &order.Email, &order.Status, &order.Total, &order.CreatedAt); err != nil {
			return nil, err
		}
		order.LineItems = []domain.LineItem{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT li.order_id, li.id, li.variant_id, li.title, li.quantity, li.unit_price, li.note, li.thumbnail, li.requires_shipping,
		       v.inventory_quantity, v.inventory_tracked
		FROM line_items li
		JOIN variants v ON v.id = li.variant_id
		WHERE li.order_id = ANY($1)
		ORDER BY li.position
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID string
		var item domain.LineItem
		if err := itemRows.Scan(&orderID, &item.ID, &item.VariantID, &item.Title, &item.Quantity, &item.UnitPrice, &item.Note, &item.Thumbnail, &item.RequiresShipping,
			&item.InventoryQuantity, &item.InventoryTracked); err != nil {
			return nil, err
		}
		order := orderMap[orderID]
		order.LineItems = append(order.LineItems, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}

// ApplyUpdate applies a reconciled edit transactionally: removals first,
// then mutations and insertions, then the recomputed order total. Returns
// the updated order, or nil if the order does not exist.
func (r *OrderRepository) ApplyUpdate(ctx context.Context, orderID string, req reconcile.UpdateItemsRequest) (*domain.Order, *UpdateSummary, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, nil
	}

	summary := &UpdateSummary{}

	for _, change := range req.Items {
		switch {
		case change.IsRemoval():
			result, err := tx.ExecContext(ctx, `
				DELETE FROM line_items WHERE id = $1 AND order_id = $2
			`, *change.ID, orderID)
			if err != nil {
				return nil, nil, err
			}
			n, err := result.RowsAffected()
			if err != nil {
				return nil, nil, err
			}
			summary.ItemsRemoved += int(n)

		case change.ID != nil:
			result, err := tx.ExecContext(ctx, `
				UPDATE line_items
				SET quantity = $1, note = $2
				WHERE id = $3 AND order_id = $4
				  AND (quantity IS DISTINCT FROM $1 OR note IS DISTINCT FROM $2)
			`, deref(change.Quantity, 1), deref(change.Note, ""), *change.ID, orderID)
			if err != nil {
				return nil, nil, err
			}
			n, err := result.RowsAffected()
			if err != nil {
				return nil, nil, err
			}
			summary.ItemsChanged += int(n)

		default:
			variant, err := variantByID(ctx, tx, deref(change.VariantID, ""))
			if err != nil {
				return nil, nil, err
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO line_items (id, order_id, variant_id, title, quantity, unit_price, note, thumbnail, requires_shipping)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`, uuid.New().String(), orderID, variant.id, variant.title, deref(change.Quantity, 1), variant.unitPrice, deref(change.Note, ""), variant.thumbnail, variant.requiresShipping)
			if err != nil {
				return nil, nil, err
			}
			summary.ItemsAdded++
		}
	}

	for _, change := range req.ShippingLines {
		switch {
		case change.IsRemoval():
			_, err := tx.ExecContext(ctx, `
				DELETE FROM shipping_lines WHERE id = $1 AND order_id = $2
			`, *change.ID, orderID)
			if err != nil {
				return nil, nil, err
			}

		case change.ID != nil:
			_, err := tx.ExecContext(ctx, `
				UPDATE shipping_lines SET title = $1, price = $2
				WHERE id = $3 AND order_id = $4
			`, deref(change.Title, ""), deref(change.Price, 0), *change.ID, orderID)
			if err != nil {
				return nil, nil, err
			}

		default:
			_, err := tx.ExecContext(ctx, `
				INSERT INTO shipping_lines (id, order_id, title, price, type)
				VALUES ($1, $2, $3, $4, $5)
			`, uuid.New().String(), orderID, deref(change.Title, ""), deref(change.Price, 0), domain.ShippingLineTypeCustom)
			if err != nil {
				return nil, nil, err
			}
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE orders
		SET total = (
			SELECT COALESCE(SUM(quantity * unit_price), 0) FROM line_items WHERE order_id = $1
		) + (
			SELECT COALESCE(SUM(price), 0) FROM shipping_lines WHERE order_id = $1
		),
		updated_at = NOW()
		WHERE id = $1
	`, orderID)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}

	order, err := r.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	return order, summary, nil
}

func (r *OrderRepository) lineItems(ctx context.Context, orderID string) ([]domain.LineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT li.id, li.variant_id, li.title, li.quantity, li.unit_price, li.note, li.thumbnail, li.requires_shipping,
		       v.inventory_quantity, v.inventory_tracked
		FROM line_items li
		JOIN variants v ON v.id = li.variant_id
		WHERE li.order_id = $1
		ORDER BY li.position
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []domain.LineItem{}
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(&item.ID, &item.VariantID, &item.Title, &item.Quantity, &item.UnitPrice, &item.Note, &item.Thumbnail, &item.RequiresShipping,
			&item.InventoryQuantity, &item.InventoryTracked); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

func (r *OrderRepository) shippingLines(ctx context.Context, orderID string) ([]domain.ShippingLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, price, type
		FROM shipping_lines
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	lines := []domain.ShippingLine{}
	for rows.Next() {
		var line domain.ShippingLine
		if err := rows.Scan(&line.ID, &line.Title, &line.Price, &line.Type); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return lines, rows.Err()
}

func (r *OrderRepository) fulfillments(ctx context.Context, orderID string) ([]domain.Fulfillment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, delivery_method, shipment_status, created_at
		FROM fulfillments
		WHERE order_id = $1
		ORDER BY created_at
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	fulfillments := []domain.Fulfillment{}
	for rows.Next() {
		var f domain.Fulfillment
		if err := rows.Scan(&f.ID, &f.OrderID, &f.DeliveryMethod, &f.ShipmentStatus, &f.CreatedAt); err != nil {
			return nil, err
		}
		fulfillments = append(fulfillments, f)
	}

	return fulfillments, rows.Err()
}

type variantRow struct {
	id                string
	title             string
	unitPrice         int64
	thumbnail         string
	requiresShipping  bool
	inventoryQuantity int
	inventoryTracked  bool
}

func variantByID(ctx context.Context, tx *sql.Tx, id string) (*variantRow, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty variant id", ErrUnknownVariant)
	}

	v := &variantRow{}
	err := tx.QueryRowContext(ctx, `
		SELECT id, title, unit_price, thumbnail, requires_shipping, inventory_quantity, inventory_tracked
		FROM variants
		WHERE id = $1
	`, id).Scan(&v.id, &v.title, &v.unitPrice, &v.thumbnail, &v.requiresShipping, &v.inventoryQuantity, &v.inventoryTracked)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, id)
		}
		return nil, err
	}

	return v, nil
}

func orderTotal(items []domain.LineItem, lines []domain.ShippingLine) int64 {
	var total int64
	for _, item := range items {
		total += item.Total()
	}
	for _, line := range lines {
		total += line.Price
	}
	return total
}

func deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
