package collector

import (
	"context"
	"fmt"
	"net/http"

	"StockBoard/internal/model"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/equity"
)

// FinanceGoFetcher implements Fetcher on top of the piquette/finance-go client.
// Its backend goes through the same cookie and crumb session as the Yahoo fetchers.
type FinanceGoFetcher struct {
	Client equity.Client
}

// NewFinanceGoFetcher creates a finance-go backed fetcher with optional proxy support.
func NewFinanceGoFetcher(proxyURL string) *FinanceGoFetcher {
	return newFinanceGoFetcher(finance.YFinURL, newTransport(proxyURL))
}

func newFinanceGoFetcher(baseURL string, base http.RoundTripper) *FinanceGoFetcher {
	return &FinanceGoFetcher{Client: equity.Client{B: &finance.BackendConfiguration{
		Type:       finance.YFinBackend,
		URL:        baseURL,
		HTTPClient: newYahooSessionClient(base),
	}}}
}

func (f *FinanceGoFetcher) Name() string { return "finance-go" }

func (f *FinanceGoFetcher) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	it := f.Client.ListP(&equity.Params{
		Params:  finance.Params{Context: &ctx},
		Symbols: []string{YahooSymbol(symbol)},
	})
	if !it.Next() {
		if err := it.Err(); err != nil {
			return nil, fmt.Errorf("finance-go fetch: %w", err)
		}
		return nil, fmt.Errorf("finance-go %s: %w", symbol, ErrNoQuote)
	}
	q := it.Equity()

	name := q.LongName
	if name == "" {
		name = q.ShortName
	}
	return &model.Quote{
		Symbol:        symbol,
		Name:          name,
		Currency:      q.CurrencyID,
		Price:         q.RegularMarketPrice,
		PreviousClose: q.RegularMarketPreviousClose,
		Change:        q.RegularMarketChange,
		ChangePercent: q.RegularMarketChangePercent,
		HasChange:     q.RegularMarketChange != 0 || q.RegularMarketChangePercent != 0,
		Volume:        int64(q.RegularMarketVolume),
		MarketCap:     float64(q.MarketCap),
		Fundamentals:  valuation(q.TrailingPE, q.TrailingAnnualDividendYield),
	}, nil
}
