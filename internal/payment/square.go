package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/YARN-DEV/NOREG/internal/domain"
)

const (
	squareProductionBase = "https://connect.squareup.com"
	squareSandboxBase    = "https://connect.squareupsandbox.com"
	squareVersion        = "2024-06-04"
)

// SquareConfig holds the deployment secrets for the Square adapter.
type SquareConfig struct {
	AccessToken string
	LocationID  string
	Environment string // "production" or "sandbox"
	BaseURL     string // overrides environment base when set (tests)
}

// SquareAdapter drives Square checkout over plain HTTP. Orders without a
// payment token become hosted payment links; orders carrying a tokenized
// card become direct payments.
type SquareAdapter struct {
	cfg  SquareConfig
	doer Doer
}

func NewSquareAdapter(cfg SquareConfig, client Doer) *SquareAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &SquareAdapter{
		cfg:  cfg,
		doer: newBreakerDoer("square", client),
	}
}

func (a *SquareAdapter) Name() string {
	return ProviderSquare
}

func (a *SquareAdapter) CreateSession(ctx context.Context, order *domain.NormalizedOrder) (*domain.PaymentSession, error) {
	if a.cfg.AccessToken == "" || a.cfg.LocationID == "" {
		return nil, NewConfigurationError("square access token or location ID not configured")
	}

	if order.PaymentToken != "" {
		return a.payment(ctx, order)
	}
	return a.paymentLink(ctx, order)
}

type squareMoney struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type squareError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

func (a *SquareAdapter) paymentLink(ctx context.Context, order *domain.NormalizedOrder) (*domain.PaymentSession, error) {
	names := make([]string, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		names = append(names, li.Name)
	}

	body := map[string]interface{}{
		"idempotency_key": order.IdempotencyKey,
		"quick_pay": map[string]interface{}{
			"name": strings.Join(names, ", "),
			"price_money": squareMoney{
				Amount:   order.TotalMinorUnits(),
				Currency: "USD",
			},
			"location_id": a.cfg.LocationID,
		},
		"checkout_options": map[string]interface{}{
			"redirect_url": order.SuccessURL,
		},
	}

	var out struct {
		PaymentLink struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"payment_link"`
		Errors []squareError `json:"errors"`
	}
	if err := a.post(ctx, "/v2/online-checkout/payment-links", body, &out); err != nil {
		return nil, err
	}
	if len(out.Errors) > 0 {
		return nil, NewProviderError(nil, "square refused payment link: %s", out.Errors[0].Detail)
	}
	if out.PaymentLink.URL == "" {
		return nil, NewProviderError(nil, "square payment link response missing URL")
	}

	return &domain.PaymentSession{RedirectURL: out.PaymentLink.URL}, nil
}

func (a *SquareAdapter) payment(ctx context.Context, order *domain.NormalizedOrder) (*domain.PaymentSession, error) {
	body := map[string]interface{}{
		"source_id":       order.PaymentToken,
		"idempotency_key": order.IdempotencyKey,
		"amount_money": squareMoney{
			Amount:   order.TotalMinorUnits(),
			Currency: "USD",
		},
		"location_id":         a.cfg.LocationID,
		"buyer_email_address": order.Customer.Email,
	}

	var out struct {
		Payment struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"payment"`
		Errors []squareError `json:"errors"`
	}
	if err := a.post(ctx, "/v2/payments", body, &out); err != nil {
		return nil, err
	}
	if len(out.Errors) > 0 {
		return nil, NewProviderError(nil, "square refused payment: %s", out.Errors[0].Detail)
	}
	if out.Payment.ID == "" {
		return nil, NewProviderError(nil, "square payment response missing payment")
	}

	return &domain.PaymentSession{
		ChargeID: out.Payment.ID,
		Status:   out.Payment.Status,
	}, nil
}

func (a *SquareAdapter) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return NewProviderError(err, "marshal square request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL()+path, bytes.NewReader(payload))
	if err != nil {
		return NewProviderError(err, "build square request")
	}
	req.Header.Set("Authorization", "Bearer "+a.cfg.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Square-Version", squareVersion)

	resp, err := a.doer.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return NewTimeoutError(err, "square %s timed out", path)
		}
		return NewProviderError(err, "square %s unreachable", path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return NewProviderError(err, "read square response")
	}

	if err := json.Unmarshal(data, out); err != nil {
		return NewProviderError(err, "square %s returned malformed response (status %d)", path, resp.StatusCode)
	}
	if resp.StatusCode >= 500 {
		return NewProviderError(nil, "square %s failed with status %d", path, resp.StatusCode)
	}
	return nil
}

func (a *SquareAdapter) baseURL() string {
	if a.cfg.BaseURL != "" {
		return a.cfg.BaseURL
	}
	if a.cfg.Environment == "sandbox" {
		return squareSandboxBase
	}
	return squareProductionBase
}
