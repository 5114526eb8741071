// Package session drives the cart mutation protocol, the checkout
// orchestration and review submission on top of the API client and the cart
// store. Every mutation, successful or not, is followed by a cart refresh
// instead of an optimistic local update: the server is the sole source of
// truth for stock and prices, and refreshing is what keeps the snapshot from
// drifting when either changes concurrently.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/example/storefront/internal/cartstore"
	"github.com/example/storefront/internal/client"
	"github.com/example/storefront/internal/shop"
)

// API is the slice of the commerce client the session drives.
type API interface {
	GetProduct(ctx context.Context, id string) (shop.Product, error)
	AddCartItem(ctx context.Context, productID string, quantity int) (string, error)
	UpdateCartItem(ctx context.Context, itemID string, action client.Action) (string, error)
	Checkout(ctx context.Context, idempotencyKey string) (client.CheckoutResponse, error)
	SubmitReview(ctx context.Context, productID string, rating int, comment string) (string, error)
}

// Session coordinates one user's cart and checkout flow. It is safe for
// concurrent use; each logical action carries its own in-flight guard so a
// control can be disabled while its own request is pending without blocking
// unrelated actions.
type Session struct {
	api      API
	cart     *cartstore.Store
	validate *validator.Validate

	mu       sync.Mutex
	inflight map[string]bool
}

func New(api API, cart *cartstore.Store) *Session {
	return &Session{
		api:      api,
		cart:     cart,
		validate: validator.New(),
		inflight: make(map[string]bool),
	}
}

// Cart exposes the session's cart store.
func (s *Session) Cart() *cartstore.Store {
	return s.cart
}

// begin marks a logical action in flight. It reports false when the same
// action is already pending.
func (s *Session) begin(op string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[op] {
		return false
	}
	s.inflight[op] = true
	return true
}

func (s *Session) end(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, op)
}

// refreshAfterMutation re-fetches the cart regardless of how the mutation
// went, so the snapshot reflects server truth. A failed refresh keeps the
// previous snapshot and is only worth a log line here; the store records the
// error for the caller to render.
func (s *Session) refreshAfterMutation(ctx context.Context) {
	if _, err := s.cart.Refresh(ctx); err != nil {
		log.Printf("[Session] cart refresh after mutation failed: %v", err)
	}
}

type addItemInput struct {
	ProductID string `validate:"required"`
	Quantity  int    `validate:"required,gt=0"`
}

// AddItem puts quantity units of a product in the cart. The quantity is
// validated client-side before any request is sent; the server re-validates
// it against stock as the authoritative check.
func (s *Session) AddItem(ctx context.Context, productID string, quantity int) (string, error) {
	if err := s.validate.Struct(addItemInput{ProductID: productID, Quantity: quantity}); err != nil {
		return "", fmt.Errorf("%w: got %d", shop.ErrInvalidQuantity, quantity)
	}

	op := "add-item:" + productID
	if !s.begin(op) {
		return "", shop.ErrBusy
	}
	defer s.end(op)

	message, err := s.api.AddCartItem(ctx, productID, quantity)
	s.refreshAfterMutation(ctx)
	if err != nil {
		return "", err
	}
	return message, nil
}

// Mutate applies increase, decrease or remove to a cart line. Failures are
// non-fatal: no optimistic change was made, so there is nothing to roll
// back, and the follow-up refresh keeps the snapshot honest either way.
func (s *Session) Mutate(ctx context.Context, itemID string, action client.Action) (string, error) {
	switch action {
	case client.ActionIncrease, client.ActionDecrease, client.ActionRemove:
	default:
		return "", fmt.Errorf("%w: unknown action %q", shop.ErrValidation, action)
	}
	if itemID == "" {
		return "", fmt.Errorf("%w: item id is required", shop.ErrValidation)
	}

	op := "mutate:" + itemID
	if !s.begin(op) {
		return "", shop.ErrBusy
	}
	defer s.end(op)

	message, err := s.api.UpdateCartItem(ctx, itemID, action)
	s.refreshAfterMutation(ctx)
	if err != nil {
		return "", err
	}
	return message, nil
}

// CheckoutResult is a committed checkout.
type CheckoutResult struct {
	Message string
	Order   shop.Order
}

// Checkout converts the non-empty cart into an order. At most one checkout
// is in flight at a time; a concurrent call gets shop.ErrBusy. Each attempt
// carries a fresh idempotency key, and the server replays the committed
// result for a reused key, so a timeout can be retried safely.
//
// On success the server has already emptied the authoritative cart, so the
// local snapshot is reset rather than reconciled. On failure the cart is
// unchanged; the caller should Refresh if it wants an updated view, since a
// concurrent stock change may be the cause.
func (s *Session) Checkout(ctx context.Context) (CheckoutResult, error) {
	if !s.begin("checkout") {
		return CheckoutResult{}, shop.ErrBusy
	}
	defer s.end("checkout")

	resp, err := s.api.Checkout(ctx, uuid.NewString())
	if err != nil {
		return CheckoutResult{}, err
	}

	s.cart.Reset()
	return CheckoutResult{Message: resp.Message, Order: resp.Order}, nil
}

type reviewInput struct {
	Rating  int    `validate:"required,min=1,max=5"`
	Comment string `validate:"required"`
}

// ReviewResult carries the server message and the re-fetched product with
// the new review visible.
type ReviewResult struct {
	Message string
	Product shop.Product
}

// SubmitReview posts a rating and comment for a product and re-fetches the
// product so the new review is visible. On failure the caller's form state
// is untouched and can be resubmitted as-is.
func (s *Session) SubmitReview(ctx context.Context, productID string, rating int, comment string) (ReviewResult, error) {
	if productID == "" {
		return ReviewResult{}, fmt.Errorf("%w: product id is required", shop.ErrValidation)
	}
	if err := s.validate.Struct(reviewInput{Rating: rating, Comment: comment}); err != nil {
		return ReviewResult{}, fmt.Errorf("%w: rating must be 1-5 and comment non-empty", shop.ErrValidation)
	}

	op := "review:" + productID
	if !s.begin(op) {
		return ReviewResult{}, shop.ErrBusy
	}
	defer s.end(op)

	message, err := s.api.SubmitReview(ctx, productID, rating, comment)
	if err != nil {
		return ReviewResult{}, err
	}

	product, err := s.api.GetProduct(ctx, productID)
	if err != nil {
		// The review is committed; only the refresh failed.
		log.Printf("[Session] product refresh after review failed: %v", err)
		return ReviewResult{Message: message}, err
	}
	return ReviewResult{Message: message, Product: product}, nil
}
