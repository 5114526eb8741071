package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/storefront/internal/shoptest"
)

func main() {
	addr := getEnv("LISTEN_ADDR", ":8080")
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("[ShopD] JWT_SECRET environment variable is required")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("[ShopD] JWT_SECRET must be at least 32 characters long")
	}

	server := shoptest.NewServer(jwtSecret)
	seedDemoCatalog(server)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Handler(),
	}

	go func() {
		log.Printf("[ShopD] Reference commerce API listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[ShopD] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[ShopD] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	httpServer.Shutdown(shutdownCtx)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// seedDemoCatalog loads a small fixture catalog so the CLI has something to
// browse out of the box. Prices are cents.
func seedDemoCatalog(s *shoptest.Server) {
	electronics := s.SeedCategory("Electronics", "electronics")
	books := s.SeedCategory("Books", "books")

	s.SeedProduct(electronics, "Wireless Mouse", "Two-button optical mouse", 2499, 40)
	s.SeedProduct(electronics, "Mechanical Keyboard", "Tenkeyless, brown switches", 8999, 15)
	s.SeedProduct(electronics, "USB-C Hub", "7-in-1 hub with HDMI", 3499, 25)
	s.SeedProduct(books, "The Go Programming Language", "Donovan & Kernighan", 4200, 30)
	s.SeedProduct(books, "Designing Data-Intensive Applications", "Kleppmann", 4900, 12)

	if _, err := s.SeedUser("demo", "demo@example.com", "demo-password"); err != nil {
		log.Printf("[ShopD] Failed to seed demo user: %v", err)
	} else {
		log.Println("[ShopD] Seeded demo user (demo / demo-password)")
	}
}
