// Package reconcile diffs an edited in-memory copy of an order's line items
// and shipping lines against the original snapshot. It gates submit
// enablement (HasChanges) and synthesizes the update request the orders
// service applies (BuildUpdateRequest).
//
// Both functions are pure and total over well-formed input. An item carrying
// neither an id nor a variant id is a caller bug, not a runtime condition.
package reconcile

import (
	"strconv"

	"github.com/ruifgomes/orderdesk/internal/domain"
)

// ItemChange is one entry of an update request's item list. The consuming
// API distinguishes "field unspecified" from "field cleared" via null, so
// every field below marshals as an explicit null when unset. A removal is
// the id with every other field null; build these through newItemRemoval and
// newItemMutation only, so the null convention stays inside this package.
type ItemChange struct {
	ID        *string `json:"id"`
	VariantID *string `json:"variant_id"`
	Quantity  *int    `json:"quantity"`
	Note      *string `json:"note"`
}

// IsRemoval reports whether the entry is a deletion sentinel.
func (c ItemChange) IsRemoval() bool {
	return c.ID != nil && c.VariantID == nil && c.Quantity == nil && c.Note == nil
}

type ShippingLineChange struct {
	ID    *string `json:"id"`
	Title *string `json:"title"`
	Price *int64  `json:"price"`
}

func (c ShippingLineChange) IsRemoval() bool {
	return c.ID != nil && c.Title == nil && c.Price == nil
}

// UpdateItemsRequest is the payload of an order edit submission. Items and
// ShippingLines each list removals first, then mutations/additions, so a
// consumer applying entries sequentially never sees a transient duplicate
// variant.
type UpdateItemsRequest struct {
	Items         []ItemChange         `json:"items"`
	ShippingLines []ShippingLineChange `json:"shipping_lines"`
	SendEmail     bool                 `json:"send_email"`
}

// HasChanges reports whether the working copy differs from the original in
// any effective way. Comparison is keyed, not positional: reordering items
// without touching quantity, price, or note is not a change. Safe to call on
// every keystroke.
func HasChanges(origItems, curItems []domain.LineItem, origLines, curLines []domain.ShippingLine) bool {
	if len(origItems) != len(curItems) || len(origLines) != len(curLines) {
		return true
	}

	origByKey := make(map[string]domain.LineItem, len(origItems))
	for _, item := range origItems {
		origByKey[itemKey(item)] = item
	}

	for _, item := range curItems {
		orig, ok := origByKey[itemKey(item)]
		if !ok {
			return true
		}
		if item.Quantity != orig.Quantity || item.UnitPrice != orig.UnitPrice || item.Note != orig.Note {
			return true
		}
	}

	origLineByKey := make(map[string]domain.ShippingLine, len(origLines))
	origNew := 0
	for _, line := range origLines {
		key := shippingLineKey(line, origNew)
		if !line.Persisted() {
			origNew++
		}
		origLineByKey[key] = line
	}

	curNew := 0
	for _, line := range curLines {
		key := shippingLineKey(line, curNew)
		if !line.Persisted() {
			curNew++
		}
		orig, ok := origLineByKey[key]
		if !ok {
			return true
		}
		if line.Title != orig.Title || line.Price != orig.Price {
			return true
		}
	}

	return false
}

// BuildUpdateRequest computes the removal and mutation lists for a
// submission. Calling it with an unedited working copy still yields a valid
// no-op request; the caller gates submission on HasChanges separately.
func BuildUpdateRequest(origItems, curItems []domain.LineItem, origLines, curLines []domain.ShippingLine, sendEmail bool) UpdateItemsRequest {
	req := UpdateItemsRequest{
		Items:         []ItemChange{},
		ShippingLines: []ShippingLineChange{},
		SendEmail:     sendEmail,
	}

	currentIDs := make(map[string]bool, len(curItems))
	for _, item := range curItems {
		if item.Persisted() {
			currentIDs[item.ID] = true
		}
	}
	for _, item := range origItems {
		if item.Persisted() && !currentIDs[item.ID] {
			req.Items = append(req.Items, newItemRemoval(item.ID))
		}
	}
	for _, item := range curItems {
		req.Items = append(req.Items, newItemMutation(item))
	}

	currentLineIDs := make(map[string]bool, len(curLines))
	for _, line := range curLines {
		if line.Persisted() {
			currentLineIDs[line.ID] = true
		}
	}
	for _, line := range origLines {
		if line.Persisted() && !currentLineIDs[line.ID] {
			req.ShippingLines = append(req.ShippingLines, newShippingLineRemoval(line.ID))
		}
	}
	for _, line := range curLines {
		req.ShippingLines = append(req.ShippingLines, newShippingLineMutation(line))
	}

	return req
}

func newItemRemoval(id string) ItemChange {
	return ItemChange{ID: ptr(id)}
}

func newItemMutation(item domain.LineItem) ItemChange {
	c := ItemChange{Quantity: ptr(item.Quantity)}
	if item.Persisted() {
		c.ID = ptr(item.ID)
	} else {
		// Variant id is only sent for genuinely new items.
		c.VariantID = ptr(item.VariantID)
	}
	if item.Note != "" {
		c.Note = ptr(item.Note)
	}
	return c
}

func newShippingLineRemoval(id string) ShippingLineChange {
	return ShippingLineChange{ID: ptr(id)}
}

func newShippingLineMutation(line domain.ShippingLine) ShippingLineChange {
	c := ShippingLineChange{
		Title: ptr(line.Title),
		Price: ptr(line.Price),
	}
	if line.Persisted() {
		c.ID = ptr(line.ID)
	}
	return c
}

// itemKey identifies an item across the two snapshots: persisted items by
// id, new items by a synthetic key scoped to their variant. Pending items
// sharing a variant collapse to one key, so callers must merge such
// duplicates before comparing; Session.AddItem does.
func itemKey(item domain.LineItem) string {
	if item.Persisted() {
		return "id:" + item.ID
	}
	return "new:" + item.VariantID
}

// shippingLineKey falls back to the line's position among the unpersisted
// lines of its snapshot; unlike items they carry no variant to key by.
// Counting only unpersisted lines keeps the key stable when persisted and
// pending lines are interleaved and then reordered.
func shippingLineKey(line domain.ShippingLine, newPos int) string {
	if line.Persisted() {
		return "id:" + line.ID
	}
	return "new:" + strconv.Itoa(newPos)
}

func ptr[T any](v T) *T {
	return &v
}
