package payment

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/YARN-DEV/NOREG/internal/domain"
)

// StripeAdapter drives Stripe hosted checkout. Given a plain order it
// creates a Checkout Session and returns its hosted page URL; given an
// order carrying a tokenized payment method it confirms a PaymentIntent
// directly and returns the charge outcome.
type StripeAdapter struct {
	secretKey string
	api       *client.API
}

// NewStripeAdapter builds the adapter. backends may be nil for the live
// Stripe API; tests point it at a stub server.
func NewStripeAdapter(secretKey string, backends *stripe.Backends) *StripeAdapter {
	a := &StripeAdapter{secretKey: secretKey}
	if secretKey != "" {
		a.api = &client.API{}
		a.api.Init(secretKey, backends)
	}
	return a
}

func (a *StripeAdapter) Name() string {
	return ProviderStripe
}

func (a *StripeAdapter) CreateSession(ctx context.Context, order *domain.NormalizedOrder) (*domain.PaymentSession, error) {
	if a.secretKey == "" {
		return nil, NewConfigurationError("stripe secret key not configured")
	}

	if order.PaymentToken != "" {
		return a.charge(ctx, order)
	}
	return a.hostedSession(ctx, order)
}

func (a *StripeAdapter) hostedSession(ctx context.Context, order *domain.NormalizedOrder) (*domain.PaymentSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String("usd"),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(li.Name),
				},
				UnitAmount: stripe.Int64(li.UnitAmountMinorUnits),
			},
			Quantity: stripe.Int64(int64(li.Quantity)),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		CustomerEmail:      stripe.String(order.Customer.Email),
		SuccessURL:         stripe.String(successURLWithSessionID(order.SuccessURL)),
		CancelURL:          stripe.String(order.CancelURL),
	}
	params.Context = ctx
	params.SetIdempotencyKey(order.IdempotencyKey)
	params.AddMetadata("customer_name", order.Customer.FullName())

	sess, err := a.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, a.translate(ctx, err, "create checkout session")
	}
	if sess.URL == "" {
		return nil, NewProviderError(nil, "checkout session %s has no redirect URL", sess.ID)
	}

	return &domain.PaymentSession{RedirectURL: sess.URL}, nil
}

func (a *StripeAdapter) charge(ctx context.Context, order *domain.NormalizedOrder) (*domain.PaymentSession, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(order.TotalMinorUnits()),
		Currency:      stripe.String("usd"),
		PaymentMethod: stripe.String(order.PaymentToken),
		Confirm:       stripe.Bool(true),
		ReceiptEmail:  stripe.String(order.Customer.Email),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(order.IdempotencyKey)

	intent, err := a.api.PaymentIntents.New(params)
	if err != nil {
		return nil, a.translate(ctx, err, "confirm payment intent")
	}

	return &domain.PaymentSession{
		ChargeID: intent.ID,
		Status:   string(intent.Status),
	}, nil
}

// successURLWithSessionID appends Stripe's session template token to the
// provider-agnostic success URL. Stripe substitutes the real session ID on
// redirect; the token is Stripe wire shape and must not leave this adapter.
func successURLWithSessionID(base string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "session_id={CHECKOUT_SESSION_ID}"
}

func (a *StripeAdapter) translate(ctx context.Context, err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
		return NewTimeoutError(err, "stripe %s timed out", op)
	}
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return NewProviderError(err, "stripe %s refused: %s", op, stripeErr.Msg)
	}
	return NewProviderError(err, "stripe %s failed", op)
}
