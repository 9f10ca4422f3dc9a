package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dacsan-be/internal/config"
	"dacsan-be/internal/order"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		AppPort:        "0",
		SessionSecret:  "test-secret",
		SessionTTL:     time.Hour,
		AllowedOrigins: []string{"http://localhost:3000"},
		CatalogSource:  config.CatalogStatic,
		OrderStore:     config.OrderStoreMemory,
		StoreTimeout:   time.Second,
	}
}

func TestSetup(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		a, err := setup(context.Background(), memoryConfig())
		require.NoError(t, err)
		defer a.close()

		rr := httptest.NewRecorder()
		a.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rr.Code)

		rr = httptest.NewRecorder()
		a.handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var products []map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &products))
		assert.Len(t, products, 3)
		assert.NotEmpty(t, rr.Header().Get("X-Session-Token"))
	})

	t.Run("WithRedis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := memoryConfig()
		cfg.RedisAddr = mr.Addr()

		a, err := setup(context.Background(), cfg)
		require.NoError(t, err)
		defer a.close()
		assert.NotNil(t, a.registry)
	})

	t.Run("RedisDown", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.RedisAddr = "127.0.0.1:1"

		_, err := setup(context.Background(), cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis ping")
	})
}

func TestBuildCatalog(t *testing.T) {
	t.Run("Static", func(t *testing.T) {
		store, err := buildCatalog(context.Background(), memoryConfig(), nil)
		require.NoError(t, err)

		p, err := store.GetProduct(context.Background(), "2")
		require.NoError(t, err)
		assert.Equal(t, int64(250000), p.Price)
	})

	t.Run("PostgresUnavailable", func(t *testing.T) {
		pg, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer pg.Close()

		mock.ExpectQuery("SELECT (.+) FROM products").WillReturnError(assert.AnError)

		cfg := memoryConfig()
		cfg.CatalogSource = config.CatalogPostgres

		_, err = buildCatalog(context.Background(), cfg, pg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load catalog")
	})

	t.Run("Unknown", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.CatalogSource = "csv"

		_, err := buildCatalog(context.Background(), cfg, nil)
		assert.Error(t, err)
	})
}

func TestBuildOrderStore(t *testing.T) {
	t.Run("Memory", func(t *testing.T) {
		store, closeFn, err := buildOrderStore(context.Background(), memoryConfig(), nil)
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &order.MemoryStore{}, store)
	})

	t.Run("Postgres", func(t *testing.T) {
		pg, _, err := sqlmock.New()
		require.NoError(t, err)
		defer pg.Close()

		cfg := memoryConfig()
		cfg.OrderStore = config.OrderStorePostgres

		store, closeFn, err := buildOrderStore(context.Background(), cfg, pg)
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &order.PostgresStore{}, store)
	})

	t.Run("Unknown", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.OrderStore = "s3"

		_, closeFn, err := buildOrderStore(context.Background(), cfg, nil)
		require.Error(t, err)
		assert.NotNil(t, closeFn)
	})
}

func TestRun_InvalidConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.SessionSecret = ""

	err := run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")
}

func TestRun_GracefulShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, memoryConfig()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestNewServer(t *testing.T) {
	srv := newServer("9090", http.NotFoundHandler())

	assert.Equal(t, ":9090", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadHeaderTimeout)
	assert.NotZero(t, srv.IdleTimeout)
}
