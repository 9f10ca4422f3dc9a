package metrics

import (
	"sync/atomic"
	"time"
)

type Counter struct {
	value uint64
}

func (c *Counter) Inc() {
	atomic.AddUint64(&c.value, 1)
}

func (c *Counter) Add(n uint64) {
	atomic.AddUint64(&c.value, n)
}

func (c *Counter) Load() uint64 {
	return atomic.LoadUint64(&c.value)
}

// Gauge is a value that can go up and down.
type Gauge struct {
	value int64
}

func (g *Gauge) Inc() {
	atomic.AddInt64(&g.value, 1)
}

func (g *Gauge) Dec() {
	atomic.AddInt64(&g.value, -1)
}

func (g *Gauge) Set(v int64) {
	atomic.StoreInt64(&g.value, v)
}

func (g *Gauge) Load() int64 {
	return atomic.LoadInt64(&g.value)
}

// Latest keeps the most recently observed duration.
type Latest struct {
	nanos int64
}

func (l *Latest) Observe(d time.Duration) {
	atomic.StoreInt64(&l.nanos, int64(d))
}

func (l *Latest) Load() time.Duration {
	return time.Duration(atomic.LoadInt64(&l.nanos))
}

type Timer struct {
	start time.Time
}

func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

var (
	OrdersSubmitted Counter
	OrdersFailed    Counter
	SessionsActive  Gauge
	PersistLatency  Latest
)

// Snapshot reports the process wide values for the health endpoint.
func Snapshot() map[string]any {
	return map[string]any{
		"orders_submitted": OrdersSubmitted.Load(),
		"orders_failed":    OrdersFailed.Load(),
		"sessions_active":  SessionsActive.Load(),
		"last_persist_ms":  PersistLatency.Load().Milliseconds(),
	}
}
