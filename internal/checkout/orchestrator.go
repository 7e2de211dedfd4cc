package checkout

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/YARN-DEV/NOREG/internal/domain"
	"github.com/YARN-DEV/NOREG/internal/payment"
	"github.com/YARN-DEV/NOREG/internal/pricing"
)

// Cart is the slice of the cart store the orchestrator needs: a stable key
// for the busy guard, a snapshot of contents, and the clear trigger.
type Cart interface {
	Key() string
	Items() []domain.CartItem
	Clear()
}

// Request is one user-initiated checkout submission.
type Request struct {
	Customer     domain.CustomerInfo
	Provider     string
	PaymentToken string
}

// Orchestrator drives a single checkout run through
// IDLE → VALIDATING → BUILDING → DISPATCHING → SUCCEEDED|FAILED.
// At most one run per cart may be in flight; a second submission is
// rejected with ErrBusy, never queued.
type Orchestrator struct {
	builder  *Builder
	adapters map[string]payment.Adapter
	taxRate  decimal.Decimal
	timeout  time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewOrchestrator(builder *Builder, adapters map[string]payment.Adapter, taxRate decimal.Decimal, timeout time.Duration) *Orchestrator {
	return &Orchestrator{
		builder:  builder,
		adapters: adapters,
		taxRate:  taxRate,
		timeout:  timeout,
		inflight: make(map[string]struct{}),
	}
}

// Run executes one checkout for the cart. On success the payment session is
// returned to the caller, who follows the redirect or displays the charge
// result. A failed run surfaces exactly one terminal error and never touches
// the cart.
func (o *Orchestrator) Run(ctx context.Context, cart Cart, req Request) (*domain.PaymentSession, error) {
	if !o.acquire(cart.Key()) {
		return nil, ErrBusy
	}
	defer o.release(cart.Key())

	status := domain.CheckoutStatusIdle
	advance := func(to domain.CheckoutStatus) {
		if !domain.CanTransitionTo(status, to) {
			// state machine bug, not user input
			log.Printf("checkout %s: illegal transition %s -> %s", cart.Key(), status, to)
		}
		status = to
	}

	advance(domain.CheckoutStatusValidating)
	items := cart.Items()
	if len(items) == 0 {
		advance(domain.CheckoutStatusFailed)
		return nil, NewValidationError("cart is empty, nothing to checkout")
	}
	if err := req.Customer.Validate(); err != nil {
		advance(domain.CheckoutStatusFailed)
		return nil, NewValidationError("invalid customer info: %v", err)
	}

	advance(domain.CheckoutStatusBuilding)
	breakdown := pricing.Compute(items, o.taxRate)
	order, err := o.builder.Build(items, req.Customer, breakdown)
	if err != nil {
		advance(domain.CheckoutStatusFailed)
		return nil, err
	}
	order.PaymentToken = req.PaymentToken

	advance(domain.CheckoutStatusDispatching)
	session, err := o.dispatch(ctx, req.Provider, order)
	if err != nil {
		advance(domain.CheckoutStatusFailed)
		log.Printf("checkout %s: dispatch to %s failed: %v", cart.Key(), req.Provider, err)
		return nil, err
	}

	advance(domain.CheckoutStatusSucceeded)
	if session.Synchronous() && chargeSucceeded(session.Status) {
		// synchronous capture confirmed, the purchase is complete
		cart.Clear()
	}
	return session, nil
}

// dispatch selects the adapter and awaits it under the configured timeout.
// The adapter runs in its own goroutine with a buffered result channel so a
// late response after timeout is discarded, never applied.
func (o *Orchestrator) dispatch(ctx context.Context, provider string, order *domain.NormalizedOrder) (*domain.PaymentSession, error) {
	adapter, ok := o.adapters[provider]
	if !ok {
		return nil, payment.NewConfigurationError("unknown payment provider %q", provider)
	}

	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	type outcome struct {
		session *domain.PaymentSession
		err     error
	}
	results := make(chan outcome, 1)
	go func() {
		session, err := adapter.CreateSession(cctx, order)
		results <- outcome{session: session, err: err}
	}()

	select {
	case out := <-results:
		if out.err != nil {
			if payment.KindOf(out.err) == payment.KindTimeout {
				log.Printf("checkout: provider %s timed out: %v", provider, out.err)
			}
			return nil, out.err
		}
		return out.session, nil
	case <-cctx.Done():
		err := payment.NewTimeoutError(cctx.Err(), "provider %s did not respond within %s", provider, o.timeout)
		log.Printf("checkout: %v", err)
		return nil, err
	}
}

// Complete clears the cart after the shopper confirms completion of a
// redirect-based flow by arriving at the success destination.
func (o *Orchestrator) Complete(cart Cart) {
	cart.Clear()
}

func (o *Orchestrator) acquire(key string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inflight[key]; busy {
		return false
	}
	o.inflight[key] = struct{}{}
	return true
}

func (o *Orchestrator) release(key string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, key)
}

// chargeSucceeded interprets provider-neutral charge statuses that mean the
// money moved. Anything else leaves the cart intact for the shopper.
func chargeSucceeded(status string) bool {
	switch strings.ToUpper(status) {
	case "SUCCEEDED", "COMPLETED", "APPROVED":
		return true
	}
	return false
}
