package order

import (
	"context"
	"errors"
	"time"

	"dacsan-be/internal/logger"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// ErrStoreUnavailable is returned without calling the store while the breaker is open.
var ErrStoreUnavailable = errors.New("order store unavailable")

// BreakerStore fails fast after consecutive store failures. It never retries.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker[string]
}

type BreakerSettings struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

func NewBreakerStore(next Store, cfg BreakerSettings) *BreakerStore {
	if cfg.Name == "" {
		cfg.Name = "order-store"
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Duplicates and cancelled requests say nothing about store health.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, ErrDuplicateOrder) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.L().Warn("order store breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &BreakerStore{next: next, cb: gobreaker.NewCircuitBreaker[string](settings)}
}

func (b *BreakerStore) Persist(ctx context.Context, o *Order) (string, error) {
	id, err := b.cb.Execute(func() (string, error) {
		return b.next.Persist(ctx, o)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", errors.Join(ErrStoreUnavailable, err)
	}
	return id, err
}

func (b *BreakerStore) State() string {
	return b.cb.State().String()
}
