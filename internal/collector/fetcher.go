package collector

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"StockBoard/internal/model"
)

// ErrNoQuote is returned when a provider answers but has no usable data for a symbol.
var ErrNoQuote = errors.New("no quote data")

// Fetcher defines the interface for fetching a single symbol's quote.
// Implementations perform exactly one provider query per call.
type Fetcher interface {
	FetchQuote(ctx context.Context, symbol string) (*model.Quote, error)
	Name() string
}

const defaultTimeout = 30 * time.Second

func newTransport(proxyURL string) *http.Transport {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return transport
}

func newHTTPClient(proxyURL string) *http.Client {
	return &http.Client{
		Timeout:   defaultTimeout,
		Transport: newTransport(proxyURL),
	}
}
