package grouping

import (
	"testing"

	"github.com/ruifgomes/orderdesk/internal/domain"
)

func lineItems(items ...domain.LineItem) []*domain.LineItem {
	out := make([]*domain.LineItem, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}

func TestGroup_NoFulfillments(t *testing.T) {
	t.Run("splits unfulfilled items by shipping requirement", func(t *testing.T) {
		items := lineItems(
			domain.LineItem{ID: "li-1", VariantID: "v-1", Quantity: 1, RequiresShipping: true},
			domain.LineItem{ID: "li-2", VariantID: "v-2", Quantity: 2, RequiresShipping: false},
			domain.LineItem{ID: "li-3", VariantID: "v-3", Quantity: 3, RequiresShipping: true},
		)

		groups := Group(items, nil, nil, nil)

		if len(groups) != 2 {
			t.Fatalf("expected 2 groups, got %d", len(groups))
		}
		if groups[0].Kind != GroupKindRequiresShipping {
			t.Errorf("expected requires_shipping first, got %s", groups[0].Kind)
		}
		if len(groups[0].Items) != 2 || groups[0].Items[0].ID != "li-1" || groups[0].Items[1].ID != "li-3" {
			t.Errorf("requires_shipping group lost relative order: %+v", groups[0].Items)
		}
		if groups[1].Kind != GroupKindNoShipping {
			t.Errorf("expected no_shipping second, got %s", groups[1].Kind)
		}
		if len(groups[1].Items) != 1 || groups[1].Items[0].ID != "li-2" {
			t.Errorf("unexpected no_shipping items: %+v", groups[1].Items)
		}
	})

	t.Run("covers every item exactly once", func(t *testing.T) {
		items := lineItems(
			domain.LineItem{ID: "li-1", VariantID: "v-1", RequiresShipping: true},
			domain.LineItem{ID: "li-2", VariantID: "v-2", RequiresShipping: false},
		)

		groups := Group(items, nil, nil, nil)

		seen := map[string]int{}
		for _, g := range groups {
			for _, item := range g.Items {
				seen[item.ID]++
			}
		}
		if len(seen) != 2 || seen["li-1"] != 1 || seen["li-2"] != 1 {
			t.Errorf("items duplicated or omitted: %v", seen)
		}
	})

	t.Run("empty order yields empty list", func(t *testing.T) {
		groups := Group(nil, nil, nil, nil)
		if len(groups) != 0 {
			t.Fatalf("expected no groups, got %d", len(groups))
		}
	})
}

func TestGroup_ShipmentBackedFulfillment(t *testing.T) {
	fulfillments := []domain.Fulfillment{
		{ID: "ful-1", DeliveryMethod: domain.DeliveryMethodShipping},
	}
	shipments := []domain.Shipment{
		{ID: "shp-1", FulfillmentID: "ful-1", Items: []domain.ShipmentLineItem{{VariantID: "v-500", Quantity: 1}}},
	}

	t.Run("claims items by variant id", func(t *testing.T) {
		items := lineItems(
			domain.LineItem{ID: "li-1", VariantID: "v-500", RequiresShipping: true},
			domain.LineItem{ID: "li-2", VariantID: "v-600", RequiresShipping: true},
		)

		groups := Group(items, fulfillments, shipments, nil)

		if len(groups) != 2 {
			t.Fatalf("expected 2 groups, got %d", len(groups))
		}
		if groups[0].Kind != GroupKindFulfillment {
			t.Fatalf("expected fulfillment group first, got %s", groups[0].Kind)
		}
		if groups[0].Shipment == nil || groups[0].Shipment.ID != "shp-1" {
			t.Error("expected shipment attached to fulfillment group")
		}
		if len(groups[0].Items) != 1 || groups[0].Items[0].ID != "li-1" {
			t.Errorf("expected only variant v-500 item claimed, got %+v", groups[0].Items)
		}
		if len(groups[1].Items) != 1 || groups[1].Items[0].ID != "li-2" {
			t.Errorf("expected variant v-600 item left unfulfilled, got %+v", groups[1].Items)
		}
	})

	t.Run("group items reference the input, not copies", func(t *testing.T) {
		items := lineItems(domain.LineItem{ID: "li-1", VariantID: "v-500", RequiresShipping: true})

		groups := Group(items, fulfillments, shipments, nil)

		items[0].Note = "edited"
		if groups[0].Items[0].Note != "edited" {
			t.Error("grouped item did not reflect in-place edit")
		}
	})

	t.Run("duplicate variant matches first occurrence only", func(t *testing.T) {
		items := lineItems(
			domain.LineItem{ID: "li-1", VariantID: "v-500", RequiresShipping: true},
			domain.LineItem{ID: "li-2", VariantID: "v-500", RequiresShipping: true},
		)
		dup := []domain.Shipment{
			{ID: "shp-1", FulfillmentID: "ful-1", Items: []domain.ShipmentLineItem{
				{VariantID: "v-500", Quantity: 1},
				{VariantID: "v-500", Quantity: 1},
			}},
		}

		groups := Group(items, fulfillments, dup, nil)

		if len(groups[0].Items) != 1 || groups[0].Items[0].ID != "li-1" {
			t.Errorf("expected first occurrence claimed once, got %+v", groups[0].Items)
		}
	})
}

func TestGroup_PickupFulfillment(t *testing.T) {
	items := lineItems(
		domain.LineItem{ID: "li-1", VariantID: "v-1", RequiresShipping: true},
		domain.LineItem{ID: "li-2", VariantID: "v-2", RequiresShipping: true},
	)
	fulfillments := []domain.Fulfillment{
		{ID: "ful-1", DeliveryMethod: domain.DeliveryMethodPickup},
	}
	fulfillmentItems := map[string][]domain.FulfillmentLineItem{
		"ful-1": {{FulfillmentID: "ful-1", LineItemID: "li-2", Quantity: 1}},
	}

	groups := Group(items, fulfillments, nil, fulfillmentItems)

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Kind != GroupKindFulfillment || len(groups[0].Items) != 1 || groups[0].Items[0].ID != "li-2" {
		t.Errorf("pickup fulfillment should claim li-2 by line-item id, got %+v", groups[0].Items)
	}
	if groups[0].Shipment != nil {
		t.Error("pickup fulfillment has no shipment")
	}
	if groups[1].Kind != GroupKindRequiresShipping || groups[1].Items[0].ID != "li-1" {
		t.Errorf("li-1 should remain unfulfilled, got %+v", groups[1].Items)
	}
}

func TestGroup_EdgeCases(t *testing.T) {
	t.Run("shipping fulfillment without shipment emits no group", func(t *testing.T) {
		items := lineItems(domain.LineItem{ID: "li-1", VariantID: "v-1", RequiresShipping: true})
		fulfillments := []domain.Fulfillment{
			{ID: "ful-orphan", DeliveryMethod: domain.DeliveryMethodShipping},
		}

		groups := Group(items, fulfillments, nil, nil)

		if len(groups) != 1 || groups[0].Kind != GroupKindRequiresShipping {
			t.Fatalf("orphan fulfillment must be dropped, got %+v", groups)
		}
	})

	t.Run("fulfillment resolving nothing emits no group", func(t *testing.T) {
		items := lineItems(domain.LineItem{ID: "li-1", VariantID: "v-1", RequiresShipping: true})
		fulfillments := []domain.Fulfillment{
			{ID: "ful-1", DeliveryMethod: domain.DeliveryMethodPickup},
		}

		groups := Group(items, fulfillments, nil, map[string][]domain.FulfillmentLineItem{})

		if len(groups) != 1 || groups[0].Kind != GroupKindRequiresShipping {
			t.Fatalf("empty fulfillment group must be skipped, got %+v", groups)
		}
	})

	t.Run("unpersisted items are never claimed", func(t *testing.T) {
		items := lineItems(
			domain.LineItem{VariantID: "v-500", RequiresShipping: true},
		)
		fulfillments := []domain.Fulfillment{
			{ID: "ful-1", DeliveryMethod: domain.DeliveryMethodShipping},
		}
		shipments := []domain.Shipment{
			{ID: "shp-1", FulfillmentID: "ful-1", Items: []domain.ShipmentLineItem{{VariantID: "v-500"}}},
		}

		groups := Group(items, fulfillments, shipments, nil)

		if len(groups) != 1 || groups[0].Kind != GroupKindRequiresShipping {
			t.Fatalf("unpersisted item must stay unfulfilled, got %+v", groups)
		}
	})

	t.Run("claimed items are disjoint across fulfillments", func(t *testing.T) {
		items := lineItems(
			domain.LineItem{ID: "li-1", VariantID: "v-1", RequiresShipping: true},
		)
		fulfillments := []domain.Fulfillment{
			{ID: "ful-1", DeliveryMethod: domain.DeliveryMethodShipping},
			{ID: "ful-2", DeliveryMethod: domain.DeliveryMethodShipping},
		}
		shipments := []domain.Shipment{
			{ID: "shp-1", FulfillmentID: "ful-1", Items: []domain.ShipmentLineItem{{VariantID: "v-1"}}},
			{ID: "shp-2", FulfillmentID: "ful-2", Items: []domain.ShipmentLineItem{{VariantID: "v-1"}}},
		}

		groups := Group(items, fulfillments, shipments, nil)

		if len(groups) != 1 {
			t.Fatalf("expected a single group, got %d", len(groups))
		}
		if groups[0].Fulfillment.ID != "ful-1" {
			t.Errorf("first fulfillment should win the claim, got %s", groups[0].Fulfillment.ID)
		}
	})
}
