package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dacsan-be/internal/catalog"
	"dacsan-be/internal/config"
	"dacsan-be/internal/db"
	"dacsan-be/internal/logger"
	"dacsan-be/internal/middleware"
	"dacsan-be/internal/order"
	"dacsan-be/internal/session"
	"dacsan-be/internal/transport"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 15 * time.Second
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.L()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	a, err := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	bg, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.registry.Run(bg, sweepInterval)
	go a.limiter.Run(bg)

	srv := newServer(cfg.AppPort, a.handler)
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening",
			zap.String("addr", srv.Addr),
			zap.String("catalog", cfg.CatalogSource),
			zap.String("order_store", cfg.OrderStore),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	// stops the sweep loop, which flushes pending session snapshots on exit
	cancel()
	a.registry.Flush(shutdownCtx)
	return nil
}

type app struct {
	handler  http.Handler
	registry *session.Registry
	limiter  *middleware.Limiter
	closers  []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// setup builds every backend named by cfg and the HTTP router on top of them.
func setup(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			a.close()
		}
	}()

	var pg *sql.DB
	if cfg.NeedsPostgres() {
		conn, err := db.NewDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		pg = conn
		a.closers = append(a.closers, func() { _ = conn.Close() })
	}

	products, err := buildCatalog(ctx, cfg, pg)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := buildOrderStore(ctx, cfg, pg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStore)

	orders := order.NewService(
		order.NewBreakerStore(store, order.BreakerSettings{Name: cfg.OrderStore}),
		order.WithTimeout(cfg.StoreTimeout),
	)

	var regOpts []session.Option
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis ping (%s): %w", cfg.RedisAddr, err)
		}
		regOpts = append(regOpts, session.WithStore(session.NewRedisStore(rdb, cfg.SessionTTL)))
	}
	a.registry = session.NewRegistry(orders, regOpts...)
	a.limiter = middleware.NewLimiter()

	h := transport.NewHandler(products, a.registry, cfg.AllowedOrigins, cfg.StoreTimeout)
	a.handler = transport.NewRouter(h, transport.RouterConfig{
		Issuer:         session.NewIssuer(cfg.SessionSecret, cfg.SessionTTL),
		Limiter:        a.limiter,
		AllowedOrigins: cfg.AllowedOrigins,
		SecureCookie:   cfg.AppEnv == "production",
	})

	ok = true
	return a, nil
}

func buildCatalog(ctx context.Context, cfg *config.Config, pg *sql.DB) (catalog.Store, error) {
	switch cfg.CatalogSource {
	case config.CatalogStatic:
		return catalog.NewStaticStore(catalog.DefaultProducts(), catalog.DefaultCategories())
	case config.CatalogPostgres:
		cached := catalog.NewCached(catalog.NewRepository(pg))
		if err := cached.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("load catalog: %w", err)
		}
		return cached, nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.CatalogSource)
	}
}

func buildOrderStore(ctx context.Context, cfg *config.Config, pg *sql.DB) (order.Store, func(), error) {
	noop := func() {}

	switch cfg.OrderStore {
	case config.OrderStoreMemory:
		logger.L().Warn("orders are kept in memory and lost on restart")
		return order.NewMemoryStore(), noop, nil

	case config.OrderStorePostgres:
		return order.NewPostgresStore(pg), noop, nil

	case config.OrderStoreFirestore:
		client, err := order.NewFirestoreClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
		if err != nil {
			return nil, noop, err
		}
		return order.NewFirestoreStore(client), func() { _ = client.Close() }, nil

	case config.OrderStoreMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, noop, fmt.Errorf("mongo connect: %w", err)
		}
		closeFn := func() { _ = client.Disconnect(context.Background()) }

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
			closeFn()
			return nil, noop, fmt.Errorf("mongo ping: %w", err)
		}
		return order.NewMongoStore(client.Database(cfg.MongoDBName)), closeFn, nil

	default:
		return nil, noop, fmt.Errorf("unknown order store %q", cfg.OrderStore)
	}
}

func newServer(port string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + port,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
