package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/example/storefront/internal/shop"
)

// Action is a cart item mutation verb.
type Action string

const (
	ActionIncrease Action = "increase"
	ActionDecrease Action = "decrease"
	ActionRemove   Action = "remove"
)

// cartPayload is the wire shape of GET /cart. The server's grand_total is
// cross-checked against the recomputed item sum and never trusted on its own.
type cartPayload struct {
	Items      []shop.CartItem `json:"items"`
	GrandTotal int             `json:"grand_total"`
}

// GetCart fetches the authoritative cart.
func (c *Client) GetCart(ctx context.Context) (shop.Cart, error) {
	var payload cartPayload
	if err := c.do(ctx, http.MethodGet, "/cart", nil, nil, "", &payload); err != nil {
		return shop.Cart{}, err
	}

	cart := shop.Cart{Items: payload.Items}
	if cart.Items == nil {
		cart.Items = []shop.CartItem{}
	}
	if err := cart.Validate(); err != nil {
		return shop.Cart{}, err
	}
	if got := cart.GrandTotal(); got != payload.GrandTotal {
		return shop.Cart{}, fmt.Errorf("%w: grand_total %d does not match item sum %d",
			shop.ErrBadResponse, payload.GrandTotal, got)
	}
	return cart, nil
}

// AddCartItem adds quantity units of a product to the cart. The server
// merges into an existing line for the same product and re-validates the
// combined quantity against stock.
func (c *Client) AddCartItem(ctx context.Context, productID string, quantity int) (string, error) {
	body := struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}{ProductID: productID, Quantity: quantity}

	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/cart/items", nil, body, "", &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// UpdateCartItem applies one mutation verb to a cart line.
func (c *Client) UpdateCartItem(ctx context.Context, itemID string, action Action) (string, error) {
	body := struct {
		Action Action `json:"action"`
	}{Action: action}

	var resp struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/cart/items/"+url.PathEscape(itemID), nil, body, "", &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}
