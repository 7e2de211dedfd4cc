package payment

import (
	"context"

	"github.com/YARN-DEV/NOREG/internal/domain"
)

// MarketplaceAdapter redirects checkout to an external marketplace listing.
// No network call is made: the session is the configured URL. It still goes
// through the common Adapter contract so the orchestrator treats it exactly
// like the card processors.
type MarketplaceAdapter struct {
	url string
}

func NewMarketplaceAdapter(url string) *MarketplaceAdapter {
	return &MarketplaceAdapter{url: url}
}

func (a *MarketplaceAdapter) Name() string {
	return ProviderMarketplace
}

func (a *MarketplaceAdapter) CreateSession(_ context.Context, order *domain.NormalizedOrder) (*domain.PaymentSession, error) {
	if a.url == "" {
		return nil, NewConfigurationError("marketplace redirect URL not configured")
	}
	if len(order.LineItems) == 0 {
		return nil, NewProviderError(nil, "order has no line items")
	}
	return &domain.PaymentSession{RedirectURL: a.url}, nil
}
