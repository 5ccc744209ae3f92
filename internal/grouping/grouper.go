// Package grouping partitions an order's line items into the display groups
// the back-office detail view renders: one group per fulfillment that claims
// items, plus catch-all groups for unfulfilled items split by whether they
// require shipping.
package grouping

import (
	"github.com/ruifgomes/orderdesk/internal/domain"
)

type GroupKind string

const (
	GroupKindFulfillment      GroupKind = "fulfillment"
	GroupKindRequiresShipping GroupKind = "requires_shipping"
	GroupKindNoShipping       GroupKind = "no_shipping"
)

// LineItemGroup is one rendered section of the order detail view. Items hold
// pointers into the caller's slice, never copies, so in-place quantity/note
// edits propagate to the grouped view.
type LineItemGroup struct {
	Kind        GroupKind           `json:"kind"`
	Fulfillment *domain.Fulfillment `json:"fulfillment,omitempty"`
	Shipment    *domain.Shipment    `json:"shipment,omitempty"`
	Items       []*domain.LineItem  `json:"items"`
}

// Group partitions items into an ordered list of groups.
//
// Fulfillments are walked in input order. A fulfillment with a shipment
// resolves its items by variant id (shipment line items do not carry order
// line-item ids); a none/pickup fulfillment resolves by line-item id against
// fulfillmentItems. Each resolved item is claimed at most once. Fulfillments
// resolving nothing emit no group; leftovers land in the requires-shipping
// or no-shipping group, preserving their relative order.
//
// An order where every partition comes up empty yields an empty list. The
// caller renders an empty state for that, it is not an error.
func Group(
	items []*domain.LineItem,
	fulfillments []domain.Fulfillment,
	shipments []domain.Shipment,
	fulfillmentItems map[string][]domain.FulfillmentLineItem,
) []LineItemGroup {
	claimed := make(map[string]bool, len(items))
	groups := []LineItemGroup{}

	shipmentByFulfillment := make(map[string]*domain.Shipment, len(shipments))
	for i := range shipments {
		if _, ok := shipmentByFulfillment[shipments[i].FulfillmentID]; !ok {
			shipmentByFulfillment[shipments[i].FulfillmentID] = &shipments[i]
		}
	}

	for fi := range fulfillments {
		f := &fulfillments[fi]

		var resolved []*domain.LineItem
		shipment := shipmentByFulfillment[f.ID]

		switch {
		case shipment != nil:
			resolved = claimByVariant(items, shipment.Items, claimed)
		case f.DeliveryMethod == domain.DeliveryMethodNone || f.DeliveryMethod == domain.DeliveryMethodPickup:
			resolved = claimByLineItemID(items, fulfillmentItems[f.ID], claimed)
		default:
			// Shipping fulfillment with no shipment record: nothing to
			// claim, no group. See the open question in DESIGN.md before
			// changing this.
			continue
		}

		if len(resolved) == 0 {
			continue
		}

		groups = append(groups, LineItemGroup{
			Kind:        GroupKindFulfillment,
			Fulfillment: f,
			Shipment:    shipment,
			Items:       resolved,
		})
	}

	var requiresShipping, noShipping []*domain.LineItem
	for _, item := range items {
		if item.Persisted() && claimed[item.ID] {
			continue
		}
		if item.RequiresShipping {
			requiresShipping = append(requiresShipping, item)
		} else {
			noShipping = append(noShipping, item)
		}
	}

	if len(requiresShipping) > 0 {
		groups = append(groups, LineItemGroup{Kind: GroupKindRequiresShipping, Items: requiresShipping})
	}
	if len(noShipping) > 0 {
		groups = append(groups, LineItemGroup{Kind: GroupKindNoShipping, Items: noShipping})
	}

	return groups
}

// claimByVariant resolves shipment line items back to order line items by
// variant id. The first unclaimed order item with a matching variant wins;
// two order items sharing a variant both match the first occurrence, which
// mirrors how shipments were recorded upstream.
func claimByVariant(items []*domain.LineItem, shipmentItems []domain.ShipmentLineItem, claimed map[string]bool) []*domain.LineItem {
	var resolved []*domain.LineItem
	for _, si := range shipmentItems {
		for _, item := range items {
			if item.VariantID != si.VariantID {
				continue
			}
			if item.Persisted() && !claimed[item.ID] {
				claimed[item.ID] = true
				resolved = append(resolved, item)
			}
			break
		}
	}
	return resolved
}

func claimByLineItemID(items []*domain.LineItem, fulfillmentItems []domain.FulfillmentLineItem, claimed map[string]bool) []*domain.LineItem {
	var resolved []*domain.LineItem
	for _, fli := range fulfillmentItems {
		for _, item := range items {
			if item.ID != fli.LineItemID {
				continue
			}
			if !claimed[item.ID] {
				claimed[item.ID] = true
				resolved = append(resolved, item)
			}
			break
		}
	}
	return resolved
}
