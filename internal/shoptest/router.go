package shoptest

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type contextKey string

const userContextKey contextKey = "user"

// Handler returns the HTTP surface of the reference server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Public catalog reads and account endpoints.
	r.Get("/categories", s.handleListCategories)
	r.Get("/category/{slug}", s.handleCategoryProducts)
	r.Get("/product/{id}", s.handleGetProduct)
	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/login", s.handleLogin)

	// Everything touching a user's cart, orders or reviews needs a credential.
	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/product/{id}/reviews", s.handleSubmitReview)
		r.Get("/cart", s.handleGetCart)
		r.Post("/cart/items", s.handleAddCartItem)
		r.Post("/cart/items/{itemID}", s.handleUpdateCartItem)
		r.Post("/checkout", s.handleCheckout)
		r.Get("/orders", s.handleListOrders)
		r.Get("/orders/{id}", s.handleGetOrder)
	})

	return r
}

// requireAuth validates the bearer credential and stores the user id in the
// request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}

		claims, err := s.tokens.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respondError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userID(r *http.Request) string {
	id, _ := r.Context().Value(userContextKey).(string)
	return id
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{"error": message, "code": code})
}
