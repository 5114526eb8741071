package shoptest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/example/storefront/internal/shop"
)

// Catalog

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	categories := append([]shop.Category(nil), s.categories...)
	s.mu.Unlock()
	respondJSON(w, http.StatusOK, categories)
}

func (s *Server) handleCategoryProducts(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	s.mu.Lock()
	defer s.mu.Unlock()

	var category *shop.Category
	for i := range s.categories {
		if s.categories[i].Slug == slug {
			category = &s.categories[i]
			break
		}
	}
	if category == nil {
		respondError(w, http.StatusNotFound, "not_found", "Category not found")
		return
	}

	query := r.URL.Query()
	q := strings.ToLower(query.Get("q"))
	minPrice, ok := parsePriceParam(w, query.Get("min_price"), "min_price")
	if !ok {
		return
	}
	maxPrice, ok := parsePriceParam(w, query.Get("max_price"), "max_price")
	if !ok {
		return
	}

	products := []shop.Product{}
	for _, p := range s.products {
		if p.Category.ID != category.ID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		if minPrice >= 0 && p.Price < minPrice {
			continue
		}
		if maxPrice >= 0 && p.Price > maxPrice {
			continue
		}
		products = append(products, s.renderProduct(p))
	}

	switch query.Get("sort") {
	case "price_asc":
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case "price_desc":
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"category": *category,
		"products": products,
	})
}

// parsePriceParam reports -1 for an absent bound.
func parsePriceParam(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return -1, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		respondError(w, http.StatusBadRequest, "validation", fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return v, true
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "Product not found")
		return
	}
	respondJSON(w, http.StatusOK, s.renderProduct(p))
}

// Reviews

func (s *Server) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "validation", "Invalid request body")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondError(w, http.StatusBadRequest, "validation", "Rating must be between 1 and 5")
		return
	}
	if strings.TrimSpace(req.Comment) == "" {
		respondError(w, http.StatusBadRequest, "validation", "Comment is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "Product not found")
		return
	}

	u := s.users[userID(r)]
	p.Reviews = append(p.Reviews, shop.Review{
		ID:        uuid.NewString(),
		ProductID: p.ID,
		Author:    u.Username,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	})

	respondJSON(w, http.StatusOK, map[string]string{"message": "Review added"})
}

// Cart

type cartItemPayload struct {
	ID       string       `json:"id"`
	Product  shop.Product `json:"product"`
	Quantity int          `json:"quantity"`
}

// renderCart builds the cart payload. Lines whose product disappeared from
// the catalog are dropped. Caller holds the lock.
func (s *Server) renderCart(uid string) ([]cartItemPayload, int) {
	items := []cartItemPayload{}
	grandTotal := 0
	for _, line := range s.carts[uid] {
		p, ok := s.products[line.ProductID]
		if !ok {
			continue
		}
		items = append(items, cartItemPayload{
			ID:       line.ID,
			Product:  s.renderProduct(p),
			Quantity: line.Quantity,
		})
		grandTotal += line.Quantity * p.Price
	}
	return items, grandTotal
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items, grandTotal := s.renderCart(userID(r))
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]any{
		"items":       items,
		"grand_total": grandTotal,
	})
}

func (s *Server) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "validation", "Invalid request body")
		return
	}
	if req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "validation", "Quantity must be a positive integer")
		return
	}

	uid := userID(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[req.ProductID]
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "Product not found")
		return
	}

	inCart := 0
	lineIdx := -1
	for i, line := range s.carts[uid] {
		if line.ProductID == req.ProductID {
			inCart = line.Quantity
			lineIdx = i
			break
		}
	}
	if inCart+req.Quantity > p.Stock {
		respondError(w, http.StatusBadRequest, "stock_exceeded",
			fmt.Sprintf("Only %d items available for %s", p.Stock, p.Name))
		return
	}

	if lineIdx >= 0 {
		s.carts[uid][lineIdx].Quantity += req.Quantity
	} else {
		s.carts[uid] = append(s.carts[uid], cartLine{
			ID:        uuid.NewString(),
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		})
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": p.Name + " added to cart"})
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "validation", "Invalid request body")
		return
	}

	uid := userID(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	lineIdx := -1
	for i, line := range s.carts[uid] {
		if line.ID == itemID {
			lineIdx = i
			break
		}
	}
	if lineIdx < 0 {
		respondError(w, http.StatusNotFound, "not_found", "Item not found")
		return
	}
	line := &s.carts[uid][lineIdx]
	p := s.products[line.ProductID]

	switch req.Action {
	case "increase":
		if p == nil || line.Quantity >= p.Stock {
			respondError(w, http.StatusBadRequest, "stock_exceeded", "Stock limit reached")
			return
		}
		line.Quantity++
		respondJSON(w, http.StatusOK, map[string]string{"message": "Quantity increased"})
	case "decrease":
		line.Quantity--
		if line.Quantity <= 0 {
			s.carts[uid] = append(s.carts[uid][:lineIdx], s.carts[uid][lineIdx+1:]...)
			respondJSON(w, http.StatusOK, map[string]string{"message": "Item removed"})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"message": "Quantity decreased"})
	case "remove":
		s.carts[uid] = append(s.carts[uid][:lineIdx], s.carts[uid][lineIdx+1:]...)
		respondJSON(w, http.StatusOK, map[string]string{"message": "Item removed"})
	default:
		respondError(w, http.StatusBadRequest, "invalid_action", "Invalid action")
	}
}

// Checkout

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get("Idempotency-Key")
	if key == "" {
		respondError(w, http.StatusBadRequest, "validation", "Missing Idempotency-Key header")
		return
	}

	uid := userID(r)
	receiptKey := uid + "\n" + key

	s.mu.Lock()
	defer s.mu.Unlock()

	// Replaying a committed key returns the original order without touching
	// stock or the cart again.
	if orderID, seen := s.receipts[receiptKey]; seen {
		respondJSON(w, http.StatusOK, map[string]any{
			"message": "Order placed successfully",
			"order":   *s.orders[orderID],
		})
		return
	}

	lines := s.carts[uid]
	if len(lines) == 0 {
		respondError(w, http.StatusBadRequest, "empty_cart", "Cart is empty")
		return
	}

	// Re-validate stock at the instant of checkout; time may have passed
	// since the client's last cart refresh.
	for _, line := range lines {
		p, ok := s.products[line.ProductID]
		if !ok || line.Quantity > p.Stock {
			stock := 0
			name := line.ProductID
			if ok {
				stock, name = p.Stock, p.Name
			}
			respondError(w, http.StatusBadRequest, "stock_exceeded",
				fmt.Sprintf("Only %d items available for %s", stock, name))
			return
		}
	}

	items := make([]shop.OrderItem, 0, len(lines))
	total := 0
	for _, line := range lines {
		p := s.products[line.ProductID]
		item := shop.OrderItem{
			Product:  s.renderProduct(p),
			Quantity: line.Quantity,
			Price:    p.Price,
			Total:    line.Quantity * p.Price,
		}
		items = append(items, item)
		total += item.Total
		p.Stock -= line.Quantity
	}

	order := &shop.Order{
		ID:        uuid.NewString(),
		UserID:    uid,
		Items:     items,
		Status:    shop.StatusPending,
		Total:     total,
		CreatedAt: time.Now().UTC(),
	}
	s.orders[order.ID] = order
	s.carts[uid] = nil
	s.receipts[receiptKey] = order.ID

	respondJSON(w, http.StatusOK, map[string]any{
		"message": "Order placed successfully",
		"order":   *order,
	})
}

// Orders

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summaries := []shop.Order{}
	for _, o := range s.userOrders(userID(r)) {
		summary := *o
		summary.Items = nil
		summaries = append(summaries, summary)
	}
	respondJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.UserID != userID(r) {
		respondError(w, http.StatusNotFound, "not_found", "Order not found")
		return
	}
	respondJSON(w, http.StatusOK, *o)
}
