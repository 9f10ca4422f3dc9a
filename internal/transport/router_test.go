package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"dacsan-be/internal/catalog"
	"dacsan-be/internal/checkout"
	"dacsan-be/internal/middleware"
	"dacsan-be/internal/order"
	"dacsan-be/internal/session"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router http.Handler
	store  *order.MemoryStore
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	products, err := catalog.NewStaticStore(catalog.DefaultProducts(), catalog.DefaultCategories())
	require.NoError(t, err)

	store := order.NewMemoryStore()
	registry := session.NewRegistry(order.NewService(store))
	h := NewHandler(products, registry, []string{"http://localhost:3000"}, time.Second)

	return &testEnv{
		router: NewRouter(h, RouterConfig{
			Issuer:         session.NewIssuer("test-secret", time.Hour),
			Limiter:        middleware.NewLimiter(),
			AllowedOrigins: []string{"http://localhost:3000"},
		}),
		store: store,
	}
}

// client remembers the session token issued on its first request.
type client struct {
	t     *testing.T
	env   *testEnv
	token string
}

func (e *testEnv) client(t *testing.T) *client {
	return &client{t: t, env: e}
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(c.t, json.NewEncoder(&buf).Encode(b))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.env.router.ServeHTTP(w, req)

	if tok := w.Header().Get(session.TokenHeader); tok != "" {
		c.token = tok
	}
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type checkoutBody struct {
	State             string             `json:"state"`
	Mode              string             `json:"mode"`
	Lines             []lineView         `json:"lines"`
	TotalPrice        int64              `json:"total_price"`
	TotalPriceDisplay string             `json:"total_price_display"`
	TotalItems        int                `json:"total_items"`
	Customer          order.CustomerInfo `json:"customer"`
	CanSubmit         bool               `json:"can_submit"`
	Missing           []string           `json:"missing"`
	LastResult        *struct {
		Failed  bool   `json:"failed"`
		Message string `json:"message"`
	} `json:"last_result"`
}

var fullCustomer = order.CustomerInfo{
	Name:    "Trần Thị Hồng",
	Phone:   "0912345678",
	Email:   "hong@example.vn",
	Address: "25 Trần Hưng Đạo, Huế",
	Note:    "Giao giờ hành chính",
}

func TestHealth(t *testing.T) {
	w := newEnv(t).client(t).do(http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "metrics")
}

func TestCatalogRoutes(t *testing.T) {
	c := newEnv(t).client(t)

	t.Run("ListProducts", func(t *testing.T) {
		w := c.do(http.MethodGet, "/api/v1/products", nil)
		require.Equal(t, http.StatusOK, w.Code)

		products := decode[[]map[string]any](t, w)
		require.Len(t, products, 3)
		assert.Equal(t, "1", products[0]["id"])
		assert.Equal(t, "130.000 ₫", products[0]["price_display"])
		assert.Equal(t, "20.000 ₫", products[0]["savings_display"])
	})

	t.Run("GetProduct", func(t *testing.T) {
		w := c.do(http.MethodGet, "/api/v1/products/3", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Nem Nắm", decode[map[string]any](t, w)["category"])
	})

	t.Run("ProductNotFound", func(t *testing.T) {
		w := c.do(http.MethodGet, "/api/v1/products/404", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "product_not_found", decode[ErrorResponse](t, w).Code)
	})

	t.Run("Categories", func(t *testing.T) {
		w := c.do(http.MethodGet, "/api/v1/categories", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]catalog.Category](t, w), 3)
	})
}

func TestCartRoutes(t *testing.T) {
	c := newEnv(t).client(t)

	w := c.do(http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "1"})
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotEmpty(t, c.token)

	c.do(http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "1"})
	w = c.do(http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "3"})

	body := decode[checkoutBody](t, w)
	require.Len(t, body.Lines, 2)
	assert.Equal(t, 2, body.Lines[0].Quantity)
	assert.Equal(t, int64(2*130000+85000), body.TotalPrice)
	assert.Equal(t, "345.000 ₫", body.TotalPriceDisplay)
	assert.Equal(t, 3, body.TotalItems)

	w = c.do(http.MethodPatch, "/api/v1/cart/items/1", UpdateQuantityRequestDTO{Delta: -5})
	body = decode[checkoutBody](t, w)
	require.Len(t, body.Lines, 1)
	assert.Equal(t, "3", body.Lines[0].ProductID)

	w = c.do(http.MethodDelete, "/api/v1/cart/items/missing", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[checkoutBody](t, w).Lines, 1)

	w = c.do(http.MethodDelete, "/api/v1/cart", nil)
	assert.Empty(t, decode[checkoutBody](t, w).Lines)

	t.Run("UnknownProduct", func(t *testing.T) {
		w := c.do(http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "999"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("BadJSON", func(t *testing.T) {
		w := c.do(http.MethodPost, "/api/v1/cart/items", "{")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("MissingProductID", func(t *testing.T) {
		w := c.do(http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSessionsAreIsolated(t *testing.T) {
	env := newEnv(t)
	a, b := env.client(t), env.client(t)

	a.do(http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "1"})
	w := b.do(http.MethodGet, "/api/v1/cart", nil)

	assert.NotEqual(t, a.token, b.token)
	assert.Empty(t, decode[checkoutBody](t, w).Lines)
}

func TestCheckoutFlow(t *testing.T) {
	env := newEnv(t)
	c := env.client(t)

	c.do(http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "1"})
	c.do(http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "2"})

	w := c.do(http.MethodPost, "/api/v1/checkout/cart/open", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cart_open", decode[checkoutBody](t, w).State)

	w = c.do(http.MethodPost, "/api/v1/checkout/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[checkoutBody](t, w)
	assert.Equal(t, "form_open", body.State)
	assert.Equal(t, "cart", body.Mode)
	assert.False(t, body.CanSubmit)

	// address missing: submission is refused
	partial := fullCustomer
	partial.Address = ""
	w = c.do(http.MethodPut, "/api/v1/checkout/customer", partial)
	body = decode[checkoutBody](t, w)
	assert.False(t, body.CanSubmit)
	assert.Equal(t, []string{"address"}, body.Missing)

	w = c.do(http.MethodPost, "/api/v1/checkout/submit", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Empty(t, env.store.Orders())

	// receipt is not available before an order exists
	w = c.do(http.MethodGet, "/api/v1/checkout/receipt/qr", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = c.do(http.MethodPut, "/api/v1/checkout/customer", fullCustomer)
	assert.True(t, decode[checkoutBody](t, w).CanSubmit)

	w = c.do(http.MethodPost, "/api/v1/checkout/submit", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Order struct {
			ID           string `json:"id"`
			DisplayID    string `json:"display_id"`
			Total        int64  `json:"total"`
			TotalDisplay string `json:"total_display"`
			Status       string `json:"status"`
			OrderDate    string `json:"order_date"`
			Email        string `json:"email"`
		} `json:"order"`
		Checkout checkoutBody `json:"checkout"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.Order.ID)
	assert.True(t, strings.HasPrefix(resp.Order.DisplayID, "DH"))
	assert.NotEqual(t, resp.Order.ID, resp.Order.DisplayID)
	assert.Equal(t, int64(380000), resp.Order.Total)
	assert.Equal(t, "380.000 ₫", resp.Order.TotalDisplay)
	assert.Equal(t, "pending", resp.Order.Status)
	assert.NotEmpty(t, resp.Order.OrderDate)
	assert.Equal(t, "hong@example.vn", resp.Order.Email)

	assert.Equal(t, "success", resp.Checkout.State)
	assert.Empty(t, resp.Checkout.Lines)
	assert.Equal(t, order.CustomerInfo{}, resp.Checkout.Customer)

	stored := env.store.Orders()
	require.Len(t, stored, 1)
	assert.Equal(t, resp.Order.ID, stored[0].ID)

	w = c.do(http.MethodGet, "/api/v1/checkout/receipt/qr", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = c.do(http.MethodPost, "/api/v1/checkout/dismiss", nil)
	assert.Equal(t, "idle", decode[checkoutBody](t, w).State)
}

func TestCheckoutPersistFailure(t *testing.T) {
	env := newEnv(t)
	env.store.FailWith(errors.New(`pq: password authentication failed for user "orders_admin" at 10.0.3.4`))
	c := env.client(t)

	c.do(http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "3"})
	c.do(http.MethodPost, "/api/v1/checkout/cart/open", nil)
	c.do(http.MethodPost, "/api/v1/checkout/start", nil)
	c.do(http.MethodPut, "/api/v1/checkout/customer", fullCustomer)

	w := c.do(http.MethodPost, "/api/v1/checkout/submit", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	errBody := decode[ErrorResponse](t, w)
	assert.Equal(t, "persistence_failure", errBody.Code)
	assert.Equal(t, checkout.FailureMessage, errBody.Error)
	assert.NotContains(t, w.Body.String(), "orders_admin")
	assert.NotContains(t, w.Body.String(), "10.0.3.4")

	w = c.do(http.MethodGet, "/api/v1/checkout", nil)
	body := decode[checkoutBody](t, w)
	assert.Equal(t, "form_open", body.State)
	require.Len(t, body.Lines, 1)
	assert.Equal(t, fullCustomer, body.Customer)
	require.NotNil(t, body.LastResult)
	assert.True(t, body.LastResult.Failed)

	env.store.FailWith(nil)
	w = c.do(http.MethodPost, "/api/v1/checkout/submit", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestBuyNowAbandon(t *testing.T) {
	c := newEnv(t).client(t)
	c.do(http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "3"})

	w := c.do(http.MethodPost, "/api/v1/checkout/buy-now", AddItemRequestDTO{ProductID: "1"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[checkoutBody](t, w)
	assert.Equal(t, "buy_now", body.Mode)
	require.Len(t, body.Lines, 1)
	assert.Equal(t, "1", body.Lines[0].ProductID)

	w = c.do(http.MethodPost, "/api/v1/checkout/close", nil)
	body = decode[checkoutBody](t, w)
	assert.Equal(t, "idle", body.State)
	assert.Empty(t, body.Lines)
}

func TestInvalidTransitions(t *testing.T) {
	c := newEnv(t).client(t)

	w := c.do(http.MethodPost, "/api/v1/checkout/dismiss", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_transition", decode[ErrorResponse](t, w).Code)

	c.do(http.MethodPost, "/api/v1/checkout/cart/open", nil)
	w = c.do(http.MethodPost, "/api/v1/checkout/start", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "cart_empty", decode[ErrorResponse](t, w).Code)
}

func TestEventsWebsocket(t *testing.T) {
	env := newEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	c := env.client(t)
	c.do(http.MethodGet, "/api/v1/cart", nil)
	require.NotEmpty(t, c.token)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events"
	header := http.Header{}
	header.Set("Authorization", "Bearer "+c.token)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first checkoutBody
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "idle", first.State)
	assert.Equal(t, 0, first.TotalItems)

	c.do(http.MethodPost, "/api/v1/cart/items", AddItemRequestDTO{ProductID: "2"})

	var next checkoutBody
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, 1, next.TotalItems)
	assert.Equal(t, "250.000 ₫", next.TotalPriceDisplay)
}
