package shoptest

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/example/storefront/internal/auth"
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "validation", "Invalid request body")
		return
	}
	if req.Username == "" {
		respondError(w, http.StatusBadRequest, "validation", "Username is required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}

	s.mu.Lock()
	if _, taken := s.usernames[req.Username]; taken {
		s.mu.Unlock()
		respondError(w, http.StatusBadRequest, "validation", "Username already exists")
		return
	}
	u := &user{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	s.users[u.ID] = u
	s.usernames[u.Username] = u.ID
	s.mu.Unlock()

	token, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "", "Failed to issue token")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "User created successfully",
		"token":   token,
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "validation", "Invalid request body")
		return
	}

	s.mu.Lock()
	var account *user
	if id, ok := s.usernames[req.Username]; ok {
		account = s.users[id]
	}
	s.mu.Unlock()

	if account == nil || !auth.CheckPassword(req.Password, account.PasswordHash) {
		respondError(w, http.StatusUnauthorized, "unauthorized", "Invalid credentials")
		return
	}

	token, err := s.tokens.Issue(account.ID, account.Username)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "", "Failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Login successful",
		"token":   token,
	})
}
