package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"StockBoard/internal/model"
)

const yahooHost = "https://query1.finance.yahoo.com"

// yahooGet performs one GET against the Yahoo Finance API and decodes the JSON body into out.
func yahooGet(ctx context.Context, client *http.Client, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", yahooUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("yahoo decode: %w", err)
	}
	return nil
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// YahooQuoteFetcher implements Fetcher using the Yahoo Finance v7 quote API.
// Unlike the chart API it reports market capitalization, P/E and dividend yield.
type YahooQuoteFetcher struct {
	Client *http.Client
}

// NewYahooQuoteFetcher creates a quote fetcher with optional proxy support.
func NewYahooQuoteFetcher(proxyURL string) *YahooQuoteFetcher {
	return newYahooQuoteFetcher(newTransport(proxyURL))
}

func newYahooQuoteFetcher(base http.RoundTripper) *YahooQuoteFetcher {
	return &YahooQuoteFetcher{Client: newYahooSessionClient(base)}
}

func (f *YahooQuoteFetcher) Name() string { return "yahoo-quote" }

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			LongName                   string  `json:"longName"`
			ShortName                  string  `json:"shortName"`
			Currency                   string  `json:"currency"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			RegularMarketChange        float64 `json:"regularMarketChange"`
			RegularMarketChangePercent float64 `json:"regularMarketChangePercent"`
			RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
			RegularMarketVolume        int64   `json:"regularMarketVolume"`
			MarketCap                  float64 `json:"marketCap"`
			TrailingPE                 float64 `json:"trailingPE"`
			DividendYield              float64 `json:"trailingAnnualDividendYield"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteResponse"`
}

func (f *YahooQuoteFetcher) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", yahooHost, url.QueryEscape(YahooSymbol(symbol)))

	var resp yahooQuoteResponse
	if err := yahooGet(ctx, f.Client, u, &resp); err != nil {
		return nil, err
	}
	if e := resp.QuoteResponse.Error; e != nil {
		return nil, fmt.Errorf("yahoo api error: %s", e.Description)
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoQuote)
	}

	r := resp.QuoteResponse.Result[0]
	name := r.LongName
	if name == "" {
		name = r.ShortName
	}
	return &model.Quote{
		Symbol:        symbol,
		Name:          name,
		Currency:      r.Currency,
		Price:         r.RegularMarketPrice,
		PreviousClose: r.RegularMarketPreviousClose,
		Change:        r.RegularMarketChange,
		ChangePercent: r.RegularMarketChangePercent,
		HasChange:     r.RegularMarketChange != 0 || r.RegularMarketChangePercent != 0,
		Volume:        r.RegularMarketVolume,
		MarketCap:     r.MarketCap,
		Fundamentals:  valuation(r.TrailingPE, r.DividendYield),
	}, nil
}

// YahooChartFetcher implements Fetcher using the Yahoo Finance v8 chart API.
// The chart meta block carries price, previous close and volume but no market cap.
type YahooChartFetcher struct {
	Client *http.Client
}

// NewYahooChartFetcher creates a chart fetcher with optional proxy support.
func NewYahooChartFetcher(proxyURL string) *YahooChartFetcher {
	return &YahooChartFetcher{Client: newHTTPClient(proxyURL)}
}

func (f *YahooChartFetcher) Name() string { return "yahoo-chart" }

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				Currency           string  `json:"currency"`
				LongName           string  `json:"longName"`
				ShortName          string  `json:"shortName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				RegularMarketVol   int64   `json:"regularMarketVolume"`
			} `json:"meta"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

func (f *YahooChartFetcher) FetchQuote(ctx context.Context, symbol string) (*model.Quote, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", yahooHost, url.PathEscape(YahooSymbol(symbol)))

	var chart yahooChart
	if err := yahooGet(ctx, f.Client, u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoQuote)
	}

	meta := chart.Chart.Result[0].Meta
	prev := meta.PreviousClose
	if prev == 0 {
		prev = meta.ChartPreviousClose
	}
	name := meta.LongName
	if name == "" {
		name = meta.ShortName
	}
	return &model.Quote{
		Symbol:        symbol,
		Name:          name,
		Currency:      meta.Currency,
		Price:         meta.RegularMarketPrice,
		PreviousClose: prev,
		Volume:        meta.RegularMarketVol,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
