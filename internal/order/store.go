package order

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store writes an order and returns the identifier it was recorded under.
// A write either fully succeeds or leaves nothing behind.
type Store interface {
	Persist(ctx context.Context, o *Order) (string, error)
}

// MemoryStore keeps orders in process. Used for local runs and tests.
type MemoryStore struct {
	mu     sync.Mutex
	orders map[string]Order
	seq    []string
	fail   error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[string]Order)}
}

// FailWith makes every following Persist return err until called with nil.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}

func (m *MemoryStore) Persist(ctx context.Context, o *Order) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fail != nil {
		return "", m.fail
	}

	id := uuid.NewString()
	stored := *o
	stored.ID = id
	stored.Items = append([]Item(nil), o.Items...)
	m.orders[id] = stored
	m.seq = append(m.seq, id)
	return id, nil
}

// Orders returns the stored orders in write order.
func (m *MemoryStore) Orders() []Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Order, 0, len(m.seq))
	for _, id := range m.seq {
		out = append(out, m.orders[id])
	}
	return out
}
