// Package payment translates provider-agnostic normalized orders into
// provider-specific payment sessions. Every provider quirk (field names,
// endpoints, auth) stays behind the Adapter interface; nothing outside
// this package may depend on a specific provider's wire shapes.
package payment

import (
	"context"

	"github.com/YARN-DEV/NOREG/internal/domain"
)

// Provider identifiers as selected by the caller at checkout time.
const (
	ProviderStripe      = "stripe"
	ProviderSquare      = "square"
	ProviderMarketplace = "marketplace"
)

// Adapter creates a payment session for a normalized order. The call is
// network-bound (except for constant adapters) and honors ctx cancellation;
// the caller bounds it with a timeout.
//
// An adapter whose required configuration is missing must fail fast with a
// configuration error before attempting any network call, never silently
// fall back to another provider.
type Adapter interface {
	Name() string
	CreateSession(ctx context.Context, order *domain.NormalizedOrder) (*domain.PaymentSession, error)
}
