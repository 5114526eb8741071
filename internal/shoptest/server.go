// Package shoptest is an in-memory reference implementation of the commerce
// API the client consumes. It carries the authoritative semantics the client
// relies on: stock bounds, quantity-zero removal, atomic checkout with stock
// decrement and cart reset, and idempotency-key dedup. Tests run it behind
// httptest; cmd/shopd serves it directly for local development.
package shoptest

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/shop"
)

const tokenExpiry = time.Hour

type user struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
}

type cartLine struct {
	ID        string
	ProductID string
	Quantity  int
}

// Server holds the whole shop state behind one mutex; every handler runs its
// read-check-write cycle under it, which is what makes checkout atomic.
type Server struct {
	tokens *auth.TokenService

	mu         sync.Mutex
	categories []shop.Category
	products   map[string]*shop.Product
	users      map[string]*user     // by id
	usernames  map[string]string    // username -> user id
	carts      map[string][]cartLine
	orders     map[string]*shop.Order
	receipts   map[string]string // userID+"\n"+idempotencyKey -> order id
}

func NewServer(secret string) *Server {
	return &Server{
		tokens:    auth.NewTokenService(secret, tokenExpiry),
		products:  make(map[string]*shop.Product),
		users:     make(map[string]*user),
		usernames: make(map[string]string),
		carts:     make(map[string][]cartLine),
		orders:    make(map[string]*shop.Order),
		receipts:  make(map[string]string),
	}
}

// SeedCategory registers a category.
func (s *Server) SeedCategory(name, slug string) shop.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := shop.Category{ID: uuid.NewString(), Name: name, Slug: slug}
	s.categories = append(s.categories, c)
	return c
}

// SeedProduct registers a product in a category. Price is in cents.
func (s *Server) SeedProduct(category shop.Category, name, description string, price, stock int) shop.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &shop.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Price:       price,
		Stock:       stock,
		Category:    category,
	}
	s.products[p.ID] = p
	return *p
}

// SeedUser creates an account and returns its id.
func (s *Server) SeedUser(username, email, password string) (string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.usernames[username]; taken {
		return "", fmt.Errorf("username %s already exists", username)
	}
	u := &user{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	s.users[u.ID] = u
	s.usernames[u.Username] = u.ID
	return u.ID, nil
}

// TokenFor mints a credential for a seeded user.
func (s *Server) TokenFor(userID string) (string, error) {
	s.mu.Lock()
	u, ok := s.users[userID]
	s.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("unknown user %s", userID)
	}
	return s.tokens.Issue(u.ID, u.Username)
}

// Stock reports a product's current stock. Test helper.
func (s *Server) Stock(productID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[productID]; ok {
		return p.Stock
	}
	return -1
}

// SetStock overrides a product's stock, emulating a concurrent admin change.
func (s *Server) SetStock(productID string, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[productID]; ok {
		p.Stock = stock
	}
}

// renderProduct copies the current product state for a response payload.
func (s *Server) renderProduct(p *shop.Product) shop.Product {
	out := *p
	out.Reviews = append([]shop.Review(nil), p.Reviews...)
	return out
}

// userOrders returns the user's orders newest first.
func (s *Server) userOrders(userID string) []*shop.Order {
	var orders []*shop.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders
}
