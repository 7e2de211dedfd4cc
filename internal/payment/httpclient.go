package payment

import (
	"net/http"

	"github.com/sony/gobreaker/v2"
)

// Doer is the minimal HTTP client surface adapters need; *http.Client and
// test fakes both satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// breakerDoer wraps a Doer in a circuit breaker so a flapping provider
// stops consuming checkout attempts until it recovers.
type breakerDoer struct {
	client Doer
	cb     *gobreaker.CircuitBreaker[*http.Response]
}

func newBreakerDoer(name string, client Doer) *breakerDoer {
	return &breakerDoer{
		client: client,
		cb: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name: name,
		}),
	}
}

func (b *breakerDoer) Do(req *http.Request) (*http.Response, error) {
	return b.cb.Execute(func() (*http.Response, error) {
		return b.client.Do(req)
	})
}
