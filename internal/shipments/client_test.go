package shipments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_ListShipments(t *testing.T) {
	t.Run("decodes shipments with nested items", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/shipments" {
				t.Errorf("expected /shipments, got %s", r.URL.Path)
			}
			if r.URL.Query().Get("order_id") != "ord-1" {
				t.Errorf("expected order_id=ord-1, got %q", r.URL.RawQuery)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id":"shp-1","order_id":"ord-1","fulfillment_id":"ful-1","delivery_status":"shipped","items":[{"variant_id":"VAR-001","quantity":2}],"created_at":"2026-01-10T12:00:00Z"}]`))
		}))
		defer server.Close()

		client := NewClient(server.URL, server.Client())
		shipments, err := client.ListShipments(context.Background(), "ord-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(shipments) != 1 {
			t.Fatalf("expected 1 shipment, got %d", len(shipments))
		}
		if shipments[0].FulfillmentID != "ful-1" {
			t.Errorf("unexpected fulfillment id: %s", shipments[0].FulfillmentID)
		}
		if len(shipments[0].Items) != 1 || shipments[0].Items[0].VariantID != "VAR-001" {
			t.Errorf("unexpected items: %+v", shipments[0].Items)
		}
	})

	t.Run("non-200 response is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL, server.Client())
		if _, err := client.ListShipments(context.Background(), "ord-1"); err == nil {
			t.Error("expected error for 500 response")
		}
	})
}

func TestClient_FulfillmentItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fulfillments/ful-1/items" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"fulfillment_id":"ful-1","line_item_id":"li-1","quantity":1}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	items, err := client.FulfillmentItems(context.Background(), "ful-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 1 || items[0].LineItemID != "li-1" {
		t.Errorf("unexpected items: %+v", items)
	}
}
