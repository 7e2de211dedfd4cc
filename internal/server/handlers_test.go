package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YARN-DEV/NOREG/internal/cartstore"
	"github.com/YARN-DEV/NOREG/internal/checkout"
	"github.com/YARN-DEV/NOREG/internal/domain"
	"github.com/YARN-DEV/NOREG/internal/payment"
)

type memoryMirror struct {
	m    sync.RWMutex
	data map[string][]byte
}

func (m *memoryMirror) Get(_ context.Context, key string) ([]byte, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, cartstore.ErrMirrorNotFound
	}
	return v, nil
}

func (m *memoryMirror) Set(_ context.Context, key string, data []byte) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.data[key] = data
	return nil
}

type stubAdapter struct {
	m       sync.Mutex
	session *domain.PaymentSession
	err     error
	block   chan struct{}
	calls   int
}

func (a *stubAdapter) Name() string { return "stub" }

func (a *stubAdapter) CreateSession(ctx context.Context, _ *domain.NormalizedOrder) (*domain.PaymentSession, error) {
	a.m.Lock()
	a.calls++
	block := a.block
	a.m.Unlock()
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, payment.NewTimeoutError(ctx.Err(), "stub cancelled")
		}
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.session, nil
}

func (a *stubAdapter) callCount() int {
	a.m.Lock()
	defer a.m.Unlock()
	return a.calls
}

type testShop struct {
	srv     *httptest.Server
	client  *http.Client
	adapter *stubAdapter
}

func newTestShop(t *testing.T) *testShop {
	t.Helper()

	mirror := &memoryMirror{data: make(map[string][]byte)}
	carts := cartstore.NewManager(mirror)
	t.Cleanup(carts.Close)

	adapter := &stubAdapter{}
	adapters := map[string]payment.Adapter{
		"stub":        adapter,
		"marketplace": payment.NewMarketplaceAdapter(""),
	}

	taxRate := decimal.RequireFromString("0.08")
	builder := checkout.NewBuilder("https://shop.example/success", "https://shop.example/cancel")
	orchestrator := checkout.NewOrchestrator(builder, adapters, taxRate, time.Second)

	router := NewRouter(
		NewCartHandler(carts, taxRate),
		NewCheckoutHandler(carts, orchestrator),
		5*time.Second,
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testShop{
		srv:     srv,
		client:  &http.Client{Jar: jar},
		adapter: adapter,
	}
}

func (s *testShop) do(t *testing.T, method, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func (s *testShop) addItem(t *testing.T, id, title, price string) {
	t.Helper()
	resp, _ := s.do(t, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"id":     id,
		"title":  title,
		"author": "Some Author",
		"price":  price,
		"image":  "/covers/" + id + ".jpg",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func (s *testShop) checkoutBody(provider string) map[string]interface{} {
	return map[string]interface{}{
		"provider": provider,
		"customer": map[string]string{
			"email":     "reader@example.com",
			"firstName": "Pat",
			"lastName":  "Reader",
		},
	}
}

func TestCart_AddAndGet(t *testing.T) {
	shop := newTestShop(t)

	shop.addItem(t, "b1", "Go in Practice", "12.50")
	shop.addItem(t, "b1", "Go in Practice", "12.50")
	shop.addItem(t, "b2", "Networked Services", "9.99")

	resp, body := shop.do(t, http.MethodGet, "/api/v1/cart", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cart CartResponseDTO
	require.NoError(t, json.Unmarshal(body, &cart))
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.True(t, cart.Ready)
	assert.Equal(t, "34.99", cart.Price.Subtotal.StringFixed(2))
	assert.Equal(t, "2.80", cart.Price.Tax.StringFixed(2))
	assert.Equal(t, "37.79", cart.Price.Total.StringFixed(2))
}

func TestCart_RemoveAbsentIsOK(t *testing.T) {
	shop := newTestShop(t)
	shop.addItem(t, "b1", "Keep Me", "10.00")

	resp, body := shop.do(t, http.MethodDelete, "/api/v1/cart/items/ghost", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cart CartResponseDTO
	require.NoError(t, json.Unmarshal(body, &cart))
	assert.Len(t, cart.Items, 1)
}

func TestCart_InvalidItemRejected(t *testing.T) {
	shop := newTestShop(t)

	resp, _ := shop.do(t, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"title": "No ID",
		"price": "5.00",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = shop.do(t, http.MethodPost, "/api/v1/cart/items", map[string]interface{}{
		"id":    "b1",
		"price": "-1.00",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCheckout_EmptyCartIs400(t *testing.T) {
	shop := newTestShop(t)

	resp, _ := shop.do(t, http.MethodPost, "/api/v1/checkout", shop.checkoutBody("stub"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCheckout_RedirectFlow(t *testing.T) {
	shop := newTestShop(t)
	shop.adapter.session = &domain.PaymentSession{RedirectURL: "https://pay.example/xyz"}
	shop.addItem(t, "b1", "Go in Practice", "12.50")

	resp, body := shop.do(t, http.MethodPost, "/api/v1/checkout", shop.checkoutBody("stub"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session domain.PaymentSession
	require.NoError(t, json.Unmarshal(body, &session))
	assert.Equal(t, "https://pay.example/xyz", session.RedirectURL)

	// cart survives until the shopper lands on the success page
	_, cartBody := shop.do(t, http.MethodGet, "/api/v1/cart", nil)
	var cart CartResponseDTO
	require.NoError(t, json.Unmarshal(cartBody, &cart))
	assert.Len(t, cart.Items, 1)

	resp, _ = shop.do(t, http.MethodPost, "/api/v1/checkout/complete", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, cartBody = shop.do(t, http.MethodGet, "/api/v1/cart", nil)
	require.NoError(t, json.Unmarshal(cartBody, &cart))
	assert.Empty(t, cart.Items)
}

func TestCheckout_UnknownProviderIs503(t *testing.T) {
	shop := newTestShop(t)
	shop.addItem(t, "b1", "Go in Practice", "12.50")

	resp, body := shop.do(t, http.MethodPost, "/api/v1/checkout", shop.checkoutBody("paypal"))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var e ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "configuration_error", e.Code)
	assert.NotContains(t, e.Error, "paypal", "raw configuration details stay out of user responses")
}

func TestCheckout_MisconfiguredProviderIs503(t *testing.T) {
	shop := newTestShop(t)
	shop.addItem(t, "b1", "Go in Practice", "12.50")

	resp, _ := shop.do(t, http.MethodPost, "/api/v1/checkout", shop.checkoutBody("marketplace"))
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestCheckout_ProviderRefusalIs402(t *testing.T) {
	shop := newTestShop(t)
	shop.adapter.err = payment.NewProviderError(nil, "card declined")
	shop.addItem(t, "b1", "Go in Practice", "12.50")

	resp, body := shop.do(t, http.MethodPost, "/api/v1/checkout", shop.checkoutBody("stub"))
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

	var e ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "provider_error", e.Code)
}

func TestCheckout_BusyIs409(t *testing.T) {
	shop := newTestShop(t)
	block := make(chan struct{})
	shop.adapter.block = block
	shop.adapter.session = &domain.PaymentSession{RedirectURL: "https://pay.example/xyz"}
	shop.addItem(t, "b1", "Go in Practice", "12.50")

	type result struct {
		status int
	}
	results := make(chan result, 1)
	go func() {
		resp, _ := shop.do(t, http.MethodPost, "/api/v1/checkout", shop.checkoutBody("stub"))
		results <- result{status: resp.StatusCode}
	}()

	require.Eventually(t, func() bool { return shop.adapter.callCount() == 1 },
		time.Second, 5*time.Millisecond)

	resp, body := shop.do(t, http.MethodPost, "/api/v1/checkout", shop.checkoutBody("stub"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var e ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "busy", e.Code)

	close(block)
	first := <-results
	assert.Equal(t, http.StatusOK, first.status)
}

func TestSessions_AreIsolatedByCookie(t *testing.T) {
	shop := newTestShop(t)
	shop.addItem(t, "b1", "Mine", "10.00")

	// a second client without the cookie gets its own cart
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	other := &http.Client{Jar: jar}

	req, err := http.NewRequest(http.MethodGet, shop.srv.URL+"/api/v1/cart", nil)
	require.NoError(t, err)
	resp, err := other.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var cart CartResponseDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cart))
	assert.Empty(t, cart.Items, fmt.Sprintf("fresh session %v must start empty", resp.Cookies()))
}
