package shipments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ruifgomes/orderdesk/internal/domain"
)

// Client is the typed HTTP client the orders service uses to reach this
// service. Errors are returned as-is for the caller to surface; there is no
// retry here.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

func (c *Client) ListShipments(ctx context.Context, orderID string) ([]domain.Shipment, error) {
	u := c.baseURL + "/shipments?order_id=" + url.QueryEscape(orderID)

	var shipments []domain.Shipment
	if err := c.getJSON(ctx, u, &shipments); err != nil {
		return nil, fmt.Errorf("list shipments for order %s: %w", orderID, err)
	}

	return shipments, nil
}

func (c *Client) FulfillmentItems(ctx context.Context, fulfillmentID string) ([]domain.FulfillmentLineItem, error) {
	u := c.baseURL + "/fulfillments/" + url.PathEscape(fulfillmentID) + "/items"

	var items []domain.FulfillmentLineItem
	if err := c.getJSON(ctx, u, &items); err != nil {
		return nil, fmt.Errorf("list items for fulfillment %s: %w", fulfillmentID, err)
	}

	return items, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("shipments service returned status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
