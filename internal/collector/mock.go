package collector

import (
	"context"
	"fmt"

	"StockBoard/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Quotes  map[string]model.Quote
	Errors  map[string]error
	Default *model.Quote // returned for symbols missing from Quotes
	Calls   []string
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchQuote(_ context.Context, symbol string) (*model.Quote, error) {
	m.Calls = append(m.Calls, symbol)
	if err, ok := m.Errors[symbol]; ok {
		return nil, err
	}
	q, ok := m.Quotes[symbol]
	if !ok {
		if m.Default == nil {
			return nil, fmt.Errorf("mock %s: %w", symbol, ErrNoQuote)
		}
		q = *m.Default
	}
	q.Symbol = symbol
	return &q, nil
}
