// Package shop defines the storefront data model shared by the API client,
// the cart store and the reference server. All monetary values are integer
// cents; all ids are opaque strings owned by the server.
package shop

import (
	"fmt"
	"time"
)

// Category is read-only from the client's perspective.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ImageURL string `json:"image_url,omitempty"`
}

// Validate rejects categories that violate the wire schema.
func (c Category) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: category missing id", ErrBadResponse)
	}
	if c.Slug == "" {
		return fmt.Errorf("%w: category %s missing slug", ErrBadResponse, c.ID)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: category %s missing name", ErrBadResponse, c.ID)
	}
	return nil
}

// Review is created once via review submission and never mutated.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	Author    string    `json:"author"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (r Review) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: review missing id", ErrBadResponse)
	}
	if r.ProductID == "" {
		return fmt.Errorf("%w: review %s missing product_id", ErrBadResponse, r.ID)
	}
	if r.Rating < 1 || r.Rating > 5 {
		return fmt.Errorf("%w: review %s rating %d out of range", ErrBadResponse, r.ID, r.Rating)
	}
	return nil
}

// Product is mutated only by the catalog service; the client writes to it
// only indirectly through review submission.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	Stock       int      `json:"stock"`
	Category    Category `json:"category"`
	ImageURL    string   `json:"image_url,omitempty"`
	Reviews     []Review `json:"reviews,omitempty"`
}

func (p Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: product missing id", ErrBadResponse)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: product %s missing name", ErrBadResponse, p.ID)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: product %s has negative price %d", ErrBadResponse, p.ID, p.Price)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: product %s has negative stock %d", ErrBadResponse, p.ID, p.Stock)
	}
	for _, r := range p.Reviews {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CartItem is one line of the server-held cart. An item with quantity 0 is a
// schema violation: the server removes such items instead of retaining them.
type CartItem struct {
	ID       string  `json:"id"`
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Total is derived, never stored.
func (i CartItem) Total() int {
	return i.Quantity * i.Product.Price
}

func (i CartItem) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("%w: cart item missing id", ErrBadResponse)
	}
	if i.Quantity < 1 {
		return fmt.Errorf("%w: cart item %s has quantity %d", ErrBadResponse, i.ID, i.Quantity)
	}
	return i.Product.Validate()
}

// Cart is the client's view of the authoritative server cart.
type Cart struct {
	Items []CartItem `json:"items"`
}

// GrandTotal is recomputed from the items on every call so it can never
// drift from them.
func (c Cart) GrandTotal() int {
	total := 0
	for _, item := range c.Items {
		total += item.Total()
	}
	return total
}

func (c Cart) Validate() error {
	for _, item := range c.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// OrderStatus is the server-owned order state enumeration.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// ParseOrderStatus rejects statuses outside the server's enumerated set.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPending, StatusProcessing, StatusDelivered, StatusCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown order status %q", ErrBadResponse, s)
}

// OrderItem is a frozen snapshot of a cart item at checkout time.
type OrderItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
	Price    int     `json:"price"`
	Total    int     `json:"total"`
}

func (i OrderItem) Validate() error {
	if i.Quantity < 1 {
		return fmt.Errorf("%w: order item has quantity %d", ErrBadResponse, i.Quantity)
	}
	if i.Price < 0 {
		return fmt.Errorf("%w: order item has negative price %d", ErrBadResponse, i.Price)
	}
	if i.Total != i.Quantity*i.Price {
		return fmt.Errorf("%w: order item total %d != %d x %d", ErrBadResponse, i.Total, i.Quantity, i.Price)
	}
	if i.Product.ID == "" {
		return fmt.Errorf("%w: order item missing product", ErrBadResponse)
	}
	return nil
}

// Order is immutable once created; the client only reads it. Order listings
// carry summaries without items.
type Order struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Items     []OrderItem `json:"items,omitempty"`
	Status    OrderStatus `json:"status"`
	Total     int         `json:"total"`
	CreatedAt time.Time   `json:"created_at"`
}

func (o Order) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("%w: order missing id", ErrBadResponse)
	}
	if _, err := ParseOrderStatus(string(o.Status)); err != nil {
		return err
	}
	if len(o.Items) == 0 {
		// Summary form: items omitted, total taken on faith from the server.
		return nil
	}
	sum := 0
	for _, item := range o.Items {
		if err := item.Validate(); err != nil {
			return err
		}
		sum += item.Total
	}
	if o.Total != sum {
		return fmt.Errorf("%w: order %s total %d != item sum %d", ErrBadResponse, o.ID, o.Total, sum)
	}
	return nil
}
