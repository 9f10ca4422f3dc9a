package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dacsan-be/internal/cart"
	"dacsan-be/internal/logger"
	"dacsan-be/internal/metrics"
	"dacsan-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	// Submit persists a pending order built from lines. On success the returned order
	// carries the store id, a display id and the local submission time.
	Submit(ctx context.Context, lines []cart.Line, info CustomerInfo) (*Order, error)
}

type service struct {
	store   Store
	timeout time.Duration
	now     func() time.Time
}

type Option func(*service)

// WithTimeout bounds each store write. Zero leaves it to the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(s *service) { s.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

func NewService(store Store, opts ...Option) Service {
	s := &service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Submit(ctx context.Context, lines []cart.Line, info CustomerInfo) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Submit"),
	)

	info = info.Normalize()
	if missing := info.Missing(); len(missing) > 0 {
		log.Warn("submit rejected", zap.Strings("missing", missing))
		return nil, fmt.Errorf("%w: %s", ErrValidationUnmet, strings.Join(missing, ", "))
	}
	if len(lines) == 0 {
		log.Warn("submit rejected: empty cart")
		return nil, ErrEmptyOrder
	}

	o := NewOrder(lines, info)

	persistCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		persistCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	timer := metrics.StartTimer()
	id, err := s.store.Persist(persistCtx, o)
	metrics.PersistLatency.Observe(timer.Duration())

	if err != nil {
		metrics.OrdersFailed.Inc()
		log.Error("failed to persist order",
			zap.Error(err),
			zap.Int("items", len(o.Items)),
			zap.Int64("total", o.Total),
			zap.Duration("duration", timer.Duration()),
		)
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	now := s.now()
	o.ID = id
	o.DisplayID = utils.DisplayID(now)
	o.OrderDate = now

	metrics.OrdersSubmitted.Inc()
	log.Info("order submitted",
		zap.String("order_id", o.ID),
		zap.String("display_id", o.DisplayID),
		zap.String("phone_fp", logger.Fingerprint(o.Phone)),
		zap.Int("items", len(o.Items)),
		zap.Int64("total", o.Total),
		zap.Duration("duration", timer.Duration()),
	)

	return o, nil
}
