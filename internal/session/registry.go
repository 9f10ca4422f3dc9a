package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"dacsan-be/internal/checkout"
	"dacsan-be/internal/logger"
	"dacsan-be/internal/metrics"
	"dacsan-be/internal/order"

	"go.uber.org/zap"
)

type entry struct {
	session  *checkout.Session
	lastSeen time.Time
}

// Registry maps session ids to live checkout sessions. Idle sessions are evicted
// from memory; with a Store they are restored on the next request.
type Registry struct {
	orders  order.Service
	store   Store
	idleTTL time.Duration
	ioTime  time.Duration

	mu       sync.Mutex
	sessions map[string]*entry

	pendingMu sync.Mutex
	pending   map[string]checkout.Saved
	notify    chan struct{}
}

type Option func(*Registry)

func WithStore(s Store) Option {
	return func(r *Registry) { r.store = s }
}

func WithIdleTTL(d time.Duration) Option {
	return func(r *Registry) { r.idleTTL = d }
}

func NewRegistry(orders order.Service, opts ...Option) *Registry {
	r := &Registry{
		orders:   orders,
		idleTTL:  30 * time.Minute,
		ioTime:   2 * time.Second,
		sessions: make(map[string]*entry),
		pending:  make(map[string]checkout.Saved),
		notify:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the session for id, creating or restoring it when absent.
func (r *Registry) Get(ctx context.Context, id string) *checkout.Session {
	if s := r.lookup(id); s != nil {
		return s
	}

	var opts []checkout.Option
	if r.store != nil {
		opts = append(opts, checkout.OnChange(func(snap checkout.Snapshot) {
			r.enqueue(id, checkout.Saved{
				Lines:    snap.Lines,
				Customer: snap.Customer,
				State:    snap.State,
				Mode:     snap.Mode,
			})
		}))
	}
	s := checkout.NewSession(id, r.orders, opts...)
	r.restore(ctx, s)

	r.mu.Lock()
	defer r.mu.Unlock()

	// another request may have created it while the store was read
	if e, ok := r.sessions[id]; ok {
		e.lastSeen = time.Now()
		return e.session
	}
	r.sessions[id] = &entry{session: s, lastSeen: time.Now()}
	metrics.SessionsActive.Set(int64(len(r.sessions)))
	return s
}

func (r *Registry) lookup(id string) *checkout.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.sessions[id]; ok {
		e.lastSeen = time.Now()
		return e.session
	}
	return nil
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle since before now-idleTTL. Sessions with a submission
// in flight or an open event stream are kept.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, e := range r.sessions {
		if now.Sub(e.lastSeen) <= r.idleTTL {
			continue
		}
		if e.session.Subscribers() > 0 {
			e.lastSeen = now
			continue
		}
		if e.session.Snapshot().State == checkout.StateSubmitting {
			continue
		}
		delete(r.sessions, id)
		evicted++
	}
	metrics.SessionsActive.Set(int64(len(r.sessions)))
	return evicted
}

// Run sweeps idle sessions and writes pending snapshots until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Flush(context.Background())
			return
		case now := <-ticker.C:
			if n := r.Sweep(now); n > 0 {
				logger.L().Debug("idle sessions evicted", zap.Int("count", n))
			}
		case <-r.notify:
			r.Flush(ctx)
		}
	}
}

// Flush writes every pending snapshot to the store.
func (r *Registry) Flush(ctx context.Context) {
	if r.store == nil {
		return
	}

	r.pendingMu.Lock()
	batch := r.pending
	r.pending = make(map[string]checkout.Saved)
	r.pendingMu.Unlock()

	for id, saved := range batch {
		sctx, cancel := context.WithTimeout(ctx, r.ioTime)
		err := r.store.Save(sctx, id, saved)
		cancel()
		if err != nil {
			logger.L().Warn("failed to save session", zap.String("session_id", id), zap.Error(err))
		}
	}
}

func (r *Registry) restore(ctx context.Context, s *checkout.Session) {
	if r.store == nil {
		return
	}

	lctx, cancel := context.WithTimeout(ctx, r.ioTime)
	defer cancel()

	saved, err := r.store.Load(lctx, s.ID())
	if errors.Is(err, ErrSnapshotMiss) {
		return
	}
	if err != nil {
		logger.FromCtx(ctx).Warn("failed to restore session, starting empty", zap.Error(err))
		return
	}
	s.Restore(saved)
}

func (r *Registry) enqueue(id string, saved checkout.Saved) {
	r.pendingMu.Lock()
	r.pending[id] = saved
	r.pendingMu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
}
