package shoptest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	server *Server
	http   *httptest.Server
	token  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	server := NewServer("shoptest-secret-key-for-tests-only")
	userID, err := server.SeedUser("bob", "bob@example.com", "hunter2hunter2")
	require.NoError(t, err)
	token, err := server.TokenFor(userID)
	require.NoError(t, err)
	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)
	return &testEnv{server: server, http: httpServer, token: token}
}

// request sends a JSON request and decodes the response body into a map.
func (e *testEnv) request(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, e.http.URL+path, reqBody)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.http.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

// ============================================
// Auth Tests
// ============================================

func TestServer_CartRequiresCredential(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.request(t, http.MethodGet, "/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", body["code"])

	status, body = env.request(t, http.MethodGet, "/cart", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthorized", body["code"])
}

func TestServer_SignupAndLogin(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.request(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"username": "carol", "email": "carol@example.com", "password": "long-enough-pw",
	})
	require.Equal(t, http.StatusCreated, status)
	assert.NotEmpty(t, body["token"])

	// Duplicate username is rejected.
	status, body = env.request(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"username": "carol", "email": "other@example.com", "password": "long-enough-pw",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Username already exists", body["error"])

	status, body = env.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "carol", "password": "long-enough-pw",
	})
	require.Equal(t, http.StatusOK, status)
	token := body["token"].(string)
	require.NotEmpty(t, token)

	status, _ = env.request(t, http.MethodGet, "/cart", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = env.request(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "carol", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Invalid credentials", body["error"])
}

// ============================================
// Catalog Filter Tests
// ============================================

func TestServer_CategoryProductFilters(t *testing.T) {
	env := newTestEnv(t)
	office := env.server.SeedCategory("Office", "office")
	env.server.SeedProduct(office, "Red Stapler", "A red stapler", 700, 10)
	env.server.SeedProduct(office, "Blue Pen", "Writes in blue ink", 150, 10)
	env.server.SeedProduct(office, "Notebook", "Ruled paper, red cover", 300, 10)

	names := func(body map[string]any) []string {
		var out []string
		for _, raw := range body["products"].([]any) {
			out = append(out, raw.(map[string]any)["name"].(string))
		}
		return out
	}

	// Substring match covers name and description.
	status, body := env.request(t, http.MethodGet, "/category/office?q=red", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.ElementsMatch(t, []string{"Red Stapler", "Notebook"}, names(body))

	// Price bounds are inclusive.
	status, body = env.request(t, http.MethodGet, "/category/office?min_price=150&max_price=300", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.ElementsMatch(t, []string{"Blue Pen", "Notebook"}, names(body))

	status, body = env.request(t, http.MethodGet, "/category/office?sort=price_desc", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []string{"Red Stapler", "Notebook", "Blue Pen"}, names(body))

	status, body = env.request(t, http.MethodGet, "/category/no-such-slug", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", body["code"])
}

// ============================================
// Cart Semantics Tests
// ============================================

func TestServer_AddToCartMergesAndBoundsStock(t *testing.T) {
	env := newTestEnv(t)
	office := env.server.SeedCategory("Office", "office")
	pen := env.server.SeedProduct(office, "Pen", "A pen", 150, 4)

	add := func(qty int) (int, map[string]any) {
		return env.request(t, http.MethodPost, "/cart/items", env.token,
			map[string]any{"product_id": pen.ID, "quantity": qty})
	}

	status, _ := add(3)
	require.Equal(t, http.StatusOK, status)

	// 3 in cart + 2 requested > 4 stock.
	status, body := add(2)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "stock_exceeded", body["code"])

	status, _ = add(1)
	require.Equal(t, http.StatusOK, status)

	status, cart := env.request(t, http.MethodGet, "/cart", env.token, nil)
	require.Equal(t, http.StatusOK, status)
	items := cart["items"].([]any)
	require.Len(t, items, 1) // merged into one line
	assert.Equal(t, float64(4), items[0].(map[string]any)["quantity"])
	assert.Equal(t, float64(600), cart["grand_total"])
}

func TestServer_AddToCartRejectsBadQuantity(t *testing.T) {
	env := newTestEnv(t)
	office := env.server.SeedCategory("Office", "office")
	pen := env.server.SeedProduct(office, "Pen", "A pen", 150, 4)

	for _, qty := range []any{0, -1, 2.5} {
		status, body := env.request(t, http.MethodPost, "/cart/items", env.token,
			map[string]any{"product_id": pen.ID, "quantity": qty})
		assert.Equal(t, http.StatusBadRequest, status, "quantity %v", qty)
		assert.Equal(t, "validation", body["code"])
	}
}

func TestServer_UpdateCartUnknownActionRejected(t *testing.T) {
	env := newTestEnv(t)
	office := env.server.SeedCategory("Office", "office")
	pen := env.server.SeedProduct(office, "Pen", "A pen", 150, 4)

	status, _ := env.request(t, http.MethodPost, "/cart/items", env.token,
		map[string]any{"product_id": pen.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, status)
	status, cart := env.request(t, http.MethodGet, "/cart", env.token, nil)
	require.Equal(t, http.StatusOK, status)
	itemID := cart["items"].([]any)[0].(map[string]any)["id"].(string)

	status, body := env.request(t, http.MethodPost, "/cart/items/"+itemID, env.token,
		map[string]any{"action": "quadruple"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_action", body["code"])
}

// ============================================
// Checkout Tests
// ============================================

func TestServer_CheckoutRequiresIdempotencyKey(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequest(http.MethodPost, env.http.URL+"/checkout", bytes.NewReader([]byte("{}")))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.token)
	resp, err := env.http.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_CheckoutIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	office := env.server.SeedCategory("Office", "office")
	pen := env.server.SeedProduct(office, "Pen", "A pen", 150, 4)
	pad := env.server.SeedProduct(office, "Pad", "A pad", 300, 2)

	for _, p := range []string{pen.ID, pad.ID} {
		status, _ := env.request(t, http.MethodPost, "/cart/items", env.token,
			map[string]any{"product_id": p, "quantity": 2})
		require.Equal(t, http.StatusOK, status)
	}

	// One item over stock blocks the whole checkout; nothing is decremented.
	env.server.SetStock(pad.ID, 1)
	status, body := checkoutWithKey(t, env, "key-a")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "stock_exceeded", body["code"])
	assert.Equal(t, 4, env.server.Stock(pen.ID))

	// With stock back, the same cart commits in full.
	env.server.SetStock(pad.ID, 2)
	status, body = checkoutWithKey(t, env, "key-b")
	require.Equal(t, http.StatusOK, status)
	order := body["order"].(map[string]any)
	assert.Equal(t, float64(900), order["total"])
	assert.Equal(t, "pending", order["status"])
	assert.Equal(t, 2, env.server.Stock(pen.ID))
	assert.Equal(t, 0, env.server.Stock(pad.ID))

	status, cart := env.request(t, http.MethodGet, "/cart", env.token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, cart["items"])
}

func checkoutWithKey(t *testing.T, env *testEnv, key string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, env.http.URL+"/checkout", bytes.NewReader([]byte("{}")))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+env.token)
	req.Header.Set("Idempotency-Key", key)
	resp, err := env.http.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestServer_CheckoutReplayReturnsSameOrder(t *testing.T) {
	env := newTestEnv(t)
	office := env.server.SeedCategory("Office", "office")
	pen := env.server.SeedProduct(office, "Pen", "A pen", 150, 4)

	status, _ := env.request(t, http.MethodPost, "/cart/items", env.token,
		map[string]any{"product_id": pen.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, status)

	status, first := checkoutWithKey(t, env, "same-key")
	require.Equal(t, http.StatusOK, status)
	status, second := checkoutWithKey(t, env, "same-key")
	require.Equal(t, http.StatusOK, status)

	firstID := first["order"].(map[string]any)["id"]
	secondID := second["order"].(map[string]any)["id"]
	assert.Equal(t, firstID, secondID)
	assert.Equal(t, 3, env.server.Stock(pen.ID))
}

// ============================================
// Review Tests
// ============================================

func TestServer_ReviewValidation(t *testing.T) {
	env := newTestEnv(t)
	office := env.server.SeedCategory("Office", "office")
	pen := env.server.SeedProduct(office, "Pen", "A pen", 150, 4)

	path := fmt.Sprintf("/product/%s/reviews", pen.ID)

	status, body := env.request(t, http.MethodPost, path, env.token,
		map[string]any{"rating": 6, "comment": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", body["code"])

	status, body = env.request(t, http.MethodPost, path, env.token,
		map[string]any{"rating": 4, "comment": "   "})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "validation", body["code"])

	status, _ = env.request(t, http.MethodPost, path, env.token,
		map[string]any{"rating": 4, "comment": "writes well"})
	require.Equal(t, http.StatusOK, status)

	status, product := env.request(t, http.MethodGet, "/product/"+pen.ID, "", nil)
	require.Equal(t, http.StatusOK, status)
	reviews := product["reviews"].([]any)
	require.Len(t, reviews, 1)
	assert.Equal(t, "bob", reviews[0].(map[string]any)["author"])
}
