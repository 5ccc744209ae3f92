package reconcile

import (
	"testing"

	"github.com/ruifgomes/orderdesk/internal/domain"
)

func newTestOrder() *domain.Order {
	return &domain.Order{
		ID: "ord-1",
		LineItems: []domain.LineItem{
			{ID: "li-1", VariantID: "v-1", Quantity: 2, UnitPrice: 100},
			{ID: "li-2", VariantID: "v-2", Quantity: 1, UnitPrice: 250},
		},
		ShippingLines: []domain.ShippingLine{
			{ID: "sl-1", Title: "Standard", Price: 500, Type: domain.ShippingLineTypeCustom},
		},
	}
}

func TestSession(t *testing.T) {
	t.Run("fresh session has no changes", func(t *testing.T) {
		s := NewSession(newTestOrder())
		if s.HasChanges() {
			t.Error("unedited session must report no changes")
		}
	})

	t.Run("mutators do not touch the original snapshot", func(t *testing.T) {
		order := newTestOrder()
		s := NewSession(order)

		s.SetQuantity(0, 5)
		s.RemoveItem(1)

		if !s.HasChanges() {
			t.Error("expected changes after edits")
		}
		if order.LineItems[0].Quantity != 2 || len(order.LineItems) != 2 {
			t.Error("session must not mutate the loaded order")
		}
	})

	t.Run("adding the same unpersisted variant twice bumps quantity", func(t *testing.T) {
		s := NewSession(newTestOrder())

		s.AddItem(domain.LineItem{VariantID: "v-9", Quantity: 1, UnitPrice: 50})
		s.AddItem(domain.LineItem{VariantID: "v-9", Quantity: 2, UnitPrice: 50})

		items := s.Items()
		if len(items) != 3 {
			t.Fatalf("expected 3 items, got %d", len(items))
		}
		if items[2].Quantity != 3 {
			t.Errorf("expected merged quantity 3, got %d", items[2].Quantity)
		}
	})

	t.Run("remove then re-add persisted item is a no-op diff", func(t *testing.T) {
		order := newTestOrder()
		s := NewSession(order)

		removed := s.Items()[1]
		s.RemoveItem(1)
		s.AddItem(removed)

		if s.HasChanges() {
			t.Error("restoring the original item must compare as unchanged")
		}
		req := s.BuildRequest(false)
		for _, c := range req.Items {
			if c.IsRemoval() {
				t.Errorf("no removal expected, got %+v", c)
			}
		}
	})

	t.Run("shipping line edit flows into the request", func(t *testing.T) {
		s := NewSession(newTestOrder())

		s.SetShippingLine("Express", 30000)

		if !s.HasChanges() {
			t.Error("expected shipping edit to be detected")
		}
		req := s.BuildRequest(true)
		if len(req.ShippingLines) != 1 {
			t.Fatalf("expected single shipping mutation, got %d", len(req.ShippingLines))
		}
		c := req.ShippingLines[0]
		if c.ID == nil || *c.ID != "sl-1" || *c.Title != "Express" || *c.Price != 30000 {
			t.Errorf("unexpected shipping mutation: %+v", c)
		}
		if !req.SendEmail {
			t.Error("send_email flag lost")
		}
	})
}
