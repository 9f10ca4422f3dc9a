package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"dacsan-be/internal/cart"
	"dacsan-be/internal/catalog"
	"dacsan-be/internal/logger"
	"dacsan-be/internal/order"

	"go.uber.org/zap"
)

// Session owns one shopper's cart, order form and checkout state.
//
//	idle -> cart_open -> form_open -> submitting -> success -> idle
//	idle -> form_open                  (buy now)
//	submitting -> form_open            (persist failed)
//	cart_open -> idle, form_open -> idle
//
// Cart edits are accepted in every state but submitting. Only one submission may
// be in flight.
type Session struct {
	id     string
	orders order.Service
	now    func() time.Time

	mu       sync.Mutex
	cart     *cart.Cart
	customer order.CustomerInfo
	state    State
	mode     Mode
	last     *Result

	subs     map[int]chan Snapshot
	nextSub  int
	onChange func(Snapshot)
}

type Option func(*Session)

// OnChange registers fn to be called with the new snapshot after every change.
// fn runs with the session locked and must not call back into the session.
func OnChange(fn func(Snapshot)) Option {
	return func(s *Session) { s.onChange = fn }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func NewSession(id string, orders order.Service, opts ...Option) *Session {
	s := &Session{
		id:     id,
		orders: orders,
		now:    time.Now,
		cart:   cart.New(),
		state:  StateIdle,
		subs:   make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) ID() string {
	return s.id
}

// --- cart ---

// Cart edits are rejected with ErrSubmissionInFlight while an order is being
// written, so a successful submission clears exactly the lines it sent.

func (s *Session) AddToCart(p catalog.Product) error {
	return s.edit(func() { s.cart.Add(p) })
}

func (s *Session) UpdateQuantity(productID string, delta int) error {
	return s.edit(func() { s.cart.UpdateQuantity(productID, delta) })
}

func (s *Session) RemoveFromCart(productID string) error {
	return s.edit(func() { s.cart.Remove(productID) })
}

func (s *Session) ClearCart() error {
	return s.edit(func() { s.cart.Clear() })
}

// --- flow ---

func (s *Session) OpenCart() error {
	return s.transition(func() error {
		if s.state != StateIdle {
			return ErrInvalidTransition
		}
		s.state = StateCartOpen
		return nil
	})
}

func (s *Session) CloseCart() error {
	return s.transition(func() error {
		if s.state != StateCartOpen {
			return ErrInvalidTransition
		}
		s.state = StateIdle
		return nil
	})
}

// Checkout moves from the open cart to the order form.
func (s *Session) Checkout() error {
	return s.transition(func() error {
		if s.state != StateCartOpen {
			return ErrInvalidTransition
		}
		if s.cart.IsEmpty() {
			return ErrCartEmpty
		}
		s.state = StateFormOpen
		s.mode = ModeCart
		return nil
	})
}

// BuyNow replaces the cart with a single unit of p and opens the order form.
func (s *Session) BuyNow(p catalog.Product) error {
	return s.transition(func() error {
		if s.state != StateIdle {
			return ErrInvalidTransition
		}
		s.cart.BuyNow(p)
		s.state = StateFormOpen
		s.mode = ModeBuyNow
		return nil
	})
}

func (s *Session) SetCustomer(info order.CustomerInfo) error {
	return s.transition(func() error {
		if s.state == StateSubmitting {
			return ErrSubmissionInFlight
		}
		s.customer = info
		return nil
	})
}

// CloseForm abandons the order form. A buy-now cart is discarded.
func (s *Session) CloseForm() error {
	return s.transition(func() error {
		if s.state != StateFormOpen {
			return ErrInvalidTransition
		}
		if s.mode == ModeBuyNow {
			s.cart.Clear()
		}
		s.state = StateIdle
		s.mode = ModeNone
		return nil
	})
}

// Dismiss closes the success view.
func (s *Session) Dismiss() error {
	return s.transition(func() error {
		if s.state != StateSuccess {
			return ErrInvalidTransition
		}
		s.state = StateIdle
		return nil
	})
}

// Submit persists the current cart as an order. The session is not locked while
// the store is written. On failure the cart and form are left as they are and the
// form reopens; on success both are cleared.
func (s *Session) Submit(ctx context.Context) (*order.Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "checkout"),
		zap.String("method", "Submit"),
	)

	s.mu.Lock()
	switch {
	case s.state == StateSubmitting:
		s.mu.Unlock()
		return nil, ErrSubmissionInFlight
	case s.state != StateFormOpen:
		s.mu.Unlock()
		return nil, ErrInvalidTransition
	case s.cart.IsEmpty():
		s.mu.Unlock()
		return nil, ErrCartEmpty
	}
	if missing := s.customer.Missing(); len(missing) > 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", order.ErrValidationUnmet, strings.Join(missing, ", "))
	}

	lines := s.cart.Lines()
	info := s.customer
	s.state = StateSubmitting
	s.changedLocked()
	s.mu.Unlock()

	o, err := s.orders.Submit(ctx, lines, info)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = StateFormOpen
		s.last = &Result{Failed: true, Message: FailureMessage, At: s.now()}
		s.changedLocked()
		log.Warn("submission failed, form reopened", zap.Error(err))
		return nil, err
	}

	s.cart.Clear()
	s.customer = order.CustomerInfo{}
	s.state = StateSuccess
	s.mode = ModeNone
	s.last = &Result{Order: o, At: s.now()}
	s.changedLocked()
	log.Info("submission succeeded", zap.String("display_id", o.DisplayID))
	return o, nil
}

// --- reads ---

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canSubmitLocked()
}

func (s *Session) LastResult() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Subscribe returns a channel receiving a snapshot after every change. A slow
// subscriber misses intermediate snapshots. cancel closes the channel.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers returns the number of open subscriptions.
func (s *Session) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Saved returns the state to persist between process restarts.
func (s *Session) Saved() Saved {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Saved{
		Lines:    s.cart.Lines(),
		Customer: s.customer,
		State:    s.state,
		Mode:     s.mode,
	}
}

// Restore loads a saved session. A submission that was in flight when the state
// was saved has an unknown outcome, so the form is reopened; a success view is
// not restored.
func (s *Session) Restore(saved Saved) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Restore(saved.Lines)
	s.customer = saved.Customer
	s.mode = saved.Mode

	switch saved.State {
	case StateCartOpen, StateFormOpen:
		s.state = saved.State
	case StateSubmitting:
		s.state = StateFormOpen
	default:
		s.state = StateIdle
		s.mode = ModeNone
	}
	if s.state == StateFormOpen && s.cart.IsEmpty() {
		s.state = StateIdle
		s.mode = ModeNone
	}
}

// --- internals ---

func (s *Session) edit(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateSubmitting {
		return ErrSubmissionInFlight
	}
	fn()
	s.changedLocked()
	return nil
}

func (s *Session) transition(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(); err != nil {
		if !errors.Is(err, ErrInvalidTransition) {
			return err
		}
		return fmt.Errorf("%w: %s", err, s.state)
	}
	s.changedLocked()
	return nil
}

func (s *Session) canSubmitLocked() bool {
	return s.customer.Complete() && !s.cart.IsEmpty()
}

func (s *Session) snapshotLocked() Snapshot {
	lines := s.cart.Lines()
	return Snapshot{
		State:      s.state,
		Mode:       s.mode,
		Lines:      lines,
		TotalPrice: cart.TotalPrice(lines),
		TotalItems: cart.TotalItems(lines),
		Customer:   s.customer,
		CanSubmit:  s.canSubmitLocked(),
		Missing:    s.customer.Missing(),
		LastResult: s.last,
	}
}

func (s *Session) changedLocked() {
	if len(s.subs) == 0 && s.onChange == nil {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
	if s.onChange != nil {
		s.onChange(snap)
	}
}
