package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/example/storefront/internal/shop"
)

// CheckoutResponse is the result of a committed checkout.
type CheckoutResponse struct {
	Message string     `json:"message"`
	Order   shop.Order `json:"order"`
}

// Checkout converts the current cart into an order. idempotencyKey is sent
// as the Idempotency-Key header; the server returns the originally committed
// order when a key is replayed, so an ambiguous failure can be retried with
// the same key without risking a duplicate order.
func (c *Client) Checkout(ctx context.Context, idempotencyKey string) (CheckoutResponse, error) {
	var resp CheckoutResponse
	if err := c.do(ctx, http.MethodPost, "/checkout", nil, struct{}{}, idempotencyKey, &resp); err != nil {
		return CheckoutResponse{}, err
	}
	if err := resp.Order.Validate(); err != nil {
		return CheckoutResponse{}, err
	}
	return resp, nil
}

// ListOrders fetches the user's order summaries, newest first.
func (c *Client) ListOrders(ctx context.Context) ([]shop.Order, error) {
	var orders []shop.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, nil, "", &orders); err != nil {
		return nil, err
	}
	for _, o := range orders {
		if err := o.Validate(); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// GetOrder fetches one of the user's orders with its items.
func (c *Client) GetOrder(ctx context.Context, id string) (shop.Order, error) {
	var order shop.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil, "", &order); err != nil {
		return shop.Order{}, err
	}
	if err := order.Validate(); err != nil {
		return shop.Order{}, err
	}
	return order, nil
}
