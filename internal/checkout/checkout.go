// Package checkout turns a cart and a signed-in identity into an order. The
// orchestrator owns the submission lifecycle; the gateways it calls stay
// ignorant of it.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"storefront/internal/auth"
	"storefront/internal/cart"
	"storefront/internal/orders"
)

type State int32

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

var (
	ErrUnauthenticated = errors.New("checkout requires a signed-in identity")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrSubmitInFlight  = errors.New("a checkout submission is already in flight")
)

// GatewayError wraps a failure from the order gateway. The cart is left
// untouched when one occurs.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("order gateway failure: %v", e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// Cart is the slice of the cart store the orchestrator needs.
type Cart interface {
	Items() []cart.Line
	Total() float64
	Clear(ctx context.Context)
}

type OrderCreator interface {
	Create(ctx context.Context, userID string, items []cart.Line, total float64) (orders.Order, error)
}

type IdentitySource interface {
	Current() (auth.Identity, bool)
}

// Orchestrator runs one submission at a time. A failed submission returns the
// orchestrator to a retryable state with the cart intact; a successful one
// clears the cart.
type Orchestrator struct {
	cart     Cart
	orders   OrderCreator
	identity IdentitySource
	state    atomic.Int32
}

func NewOrchestrator(c Cart, o OrderCreator, ident IdentitySource) (*Orchestrator, error) {
	if c == nil {
		return nil, fmt.Errorf("cart is nil")
	}
	if o == nil {
		return nil, fmt.Errorf("order gateway is nil")
	}
	if ident == nil {
		return nil, fmt.Errorf("identity source is nil")
	}
	return &Orchestrator{cart: c, orders: o, identity: ident}, nil
}

func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

// Submit validates the preconditions in order, creates the order and clears
// the cart on success. Exactly one submission may be in flight; concurrent
// calls get ErrSubmitInFlight without touching anything.
func (o *Orchestrator) Submit(ctx context.Context) (orders.Order, error) {
	for {
		current := o.state.Load()
		if State(current) == StateSubmitting {
			return orders.Order{}, ErrSubmitInFlight
		}
		if o.state.CompareAndSwap(current, int32(StateSubmitting)) {
			break
		}
	}

	ident, signedIn := o.identity.Current()
	if !signedIn {
		o.state.Store(int32(StateIdle))
		return orders.Order{}, ErrUnauthenticated
	}

	items := o.cart.Items()
	if len(items) == 0 {
		o.state.Store(int32(StateIdle))
		return orders.Order{}, ErrEmptyCart
	}

	total := o.cart.Total()
	order, err := o.orders.Create(ctx, ident.UID, items, total)
	if err != nil {
		o.state.Store(int32(StateFailed))
		return orders.Order{}, &GatewayError{Err: err}
	}

	o.cart.Clear(ctx)
	o.state.Store(int32(StateSucceeded))
	return order, nil
}
